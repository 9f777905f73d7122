package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"

	"github.com/reservo/reservo/internal/shared"
)

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// Service is the credential store: registration and password verification.
type Service struct {
	repo      RepositoryPort
	cost      int
	dummyHash []byte
	validate  *validator.Validate
}

// NewService constructs a Service hashing with the given bcrypt cost. A cost
// outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewService(repo RepositoryPort, cost int) (*Service, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("reservo-unknown-account"), cost)
	if err != nil {
		return nil, fmt.Errorf("accounts: dummy hash: %w", err)
	}
	return &Service{repo: repo, cost: cost, dummyHash: dummy, validate: shared.NewValidator()}, nil
}

type registration struct {
	Identifier  string `json:"identifier" validate:"required,storable,max=50"`
	DisplayName string `json:"display_name" validate:"required,storable,max=100"`
	Password    string `json:"password" validate:"required"`
}

// Register creates a regular account.
func (s *Service) Register(ctx context.Context, identifier, displayName, password string) (Account, error) {
	return s.Provision(ctx, identifier, displayName, password, shared.RoleRegular)
}

// Provision creates an account with an explicit role. It is the administrative
// path used for bootstrapping admins; signup goes through Register.
func (s *Service) Provision(ctx context.Context, identifier, displayName, password string, role shared.Role) (Account, error) {
	if !role.Valid() {
		return Account{}, shared.InvalidRequest("unknown role")
	}
	switch {
	case !shared.StorableText(identifier):
		return Account{}, shared.InvalidRequest("identifier contains invalid characters")
	case !shared.StorableText(displayName):
		return Account{}, shared.InvalidRequest("display_name contains invalid characters")
	}
	form := registration{
		Identifier:  NormalizeIdentifier(identifier),
		DisplayName: norm.NFC.String(strings.TrimSpace(displayName)),
		Password:    password,
	}
	if err := s.validate.Struct(form); err != nil {
		return Account{}, shared.ValidationError(err)
	}
	if len(password) > maxPasswordBytes {
		return Account{}, shared.InvalidRequest("password must be at most 72 bytes")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Account{}, fmt.Errorf("accounts: hash password: %w", err)
	}
	return s.repo.Insert(ctx, Account{
		Identifier:   form.Identifier,
		DisplayName:  form.DisplayName,
		PasswordHash: string(hash),
		Role:         role,
	})
}

// Verify checks a password against the stored digest. Unknown identifiers and
// wrong passwords both return shared.ErrInvalidCredentials, and both pay for a
// bcrypt comparison.
func (s *Service) Verify(ctx context.Context, identifier, password string) (Account, error) {
	normalized := NormalizeIdentifier(identifier)
	if !shared.StorableText(identifier) || !shared.StorableText(normalized) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return Account{}, shared.ErrInvalidCredentials
	}
	account, err := s.repo.FindByIdentifier(ctx, normalized)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return Account{}, shared.ErrInvalidCredentials
		}
		return Account{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Account{}, shared.ErrInvalidCredentials
	}
	return account, nil
}

// Lookup returns the account for identifier.
func (s *Service) Lookup(ctx context.Context, identifier string) (Account, error) {
	return s.repo.FindByIdentifier(ctx, NormalizeIdentifier(identifier))
}

// NormalizeIdentifier trims surrounding whitespace and applies NFC so visually
// identical identifiers collide.
func NormalizeIdentifier(identifier string) string {
	return norm.NFC.String(strings.TrimSpace(identifier))
}
