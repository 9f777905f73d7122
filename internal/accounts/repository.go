package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reservo/reservo/internal/shared"
)

const uniqueViolation = "23505"

// RepositoryPort defines data access methods for accounts.
type RepositoryPort interface {
	// Insert stores a new account, failing with shared.ErrDuplicateIdentifier
	// when the identifier is taken.
	Insert(ctx context.Context, account Account) (Account, error)
	// FindByIdentifier returns shared.ErrNotFound for unknown identifiers.
	FindByIdentifier(ctx context.Context, identifier string) (Account, error)
}

type dbtx interface {
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PGRepository implements RepositoryPort using PostgreSQL.
type PGRepository struct {
	db dbtx
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{db: pool}
}

// Insert relies on the primary key so concurrent registrations of the same
// identifier resolve to exactly one row.
func (r *PGRepository) Insert(ctx context.Context, account Account) (Account, error) {
	const query = `INSERT INTO accounts (identifier, display_name, password_hash, role)
VALUES ($1, $2, $3, $4)
RETURNING created_at`
	err := r.db.QueryRow(ctx, query, account.Identifier, account.DisplayName, account.PasswordHash, string(account.Role)).
		Scan(&account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Account{}, shared.ErrDuplicateIdentifier
		}
		return Account{}, fmt.Errorf("accounts: insert: %w", err)
	}
	return account, nil
}

// FindByIdentifier fetches an account by identifier.
func (r *PGRepository) FindByIdentifier(ctx context.Context, identifier string) (Account, error) {
	const query = `SELECT identifier, display_name, password_hash, role, created_at
FROM accounts WHERE identifier = $1`
	var (
		account Account
		role    string
	)
	err := r.db.QueryRow(ctx, query, identifier).
		Scan(&account.Identifier, &account.DisplayName, &account.PasswordHash, &role, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrNotFound
		}
		return Account{}, fmt.Errorf("accounts: find: %w", err)
	}
	account.Role = shared.Role(role)
	return account, nil
}

var _ RepositoryPort = (*PGRepository)(nil)
