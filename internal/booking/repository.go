package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reservo/reservo/internal/platform/db"
	"github.com/reservo/reservo/internal/shared"
)

// admissionTx is the subset of pgx.Tx used by a single admission.
type admissionTx interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGRepository is the Postgres Store. Admission takes the row lock on the
// slot's counter, so concurrent admissions on one key serialize while other
// keys proceed independently.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const (
	ensureCounterSQL = `INSERT INTO slot_counters (slot_date, slot_time, booked)
VALUES ($1, $2, 0)
ON CONFLICT (slot_date, slot_time) DO NOTHING`

	claimSeatSQL = `UPDATE slot_counters SET booked = booked + 1
WHERE slot_date = $1 AND slot_time = $2 AND booked < $3
RETURNING booked`

	insertReservationSQL = `INSERT INTO reservations (id, identifier, slot_date, slot_time, party_size, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	selectReservationSQL = `SELECT id, identifier, slot_date, slot_time, party_size, notes, created_at FROM reservations`
	orderReservationSQL  = ` ORDER BY slot_date, slot_time, created_at, id`
)

// TryReserve admits res inside one read-committed transaction. The
// conditional increment re-evaluates its predicate after acquiring the row
// lock, so a waiter observes the winner's committed count.
func (r *PGRepository) TryReserve(ctx context.Context, res Reservation, capacity int) (Reservation, error) {
	err := db.ReadCommitted(ctx, r.pool, func(tx pgx.Tx) error {
		return admit(ctx, tx, res, capacity)
	})
	if err != nil {
		return Reservation{}, err
	}
	return res, nil
}

func admit(ctx context.Context, tx admissionTx, res Reservation, capacity int) error {
	if _, err := tx.Exec(ctx, ensureCounterSQL, res.Slot.Date, res.Slot.Time); err != nil {
		return fmt.Errorf("booking: ensure counter: %w", err)
	}
	var booked int
	if err := tx.QueryRow(ctx, claimSeatSQL, res.Slot.Date, res.Slot.Time, capacity).Scan(&booked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shared.ErrSlotFull
		}
		return fmt.Errorf("booking: claim seat: %w", err)
	}
	if _, err := tx.Exec(ctx, insertReservationSQL,
		res.ID, res.Identifier, res.Slot.Date, res.Slot.Time, res.PartySize, res.Notes, res.CreatedAt,
	); err != nil {
		return fmt.Errorf("booking: insert reservation: %w", err)
	}
	return nil
}

// Occupancy returns the committed count for key.
func (r *PGRepository) Occupancy(ctx context.Context, key SlotKey) (int, error) {
	var booked int
	err := r.pool.QueryRow(ctx, `SELECT booked FROM slot_counters WHERE slot_date = $1 AND slot_time = $2`,
		key.Date, key.Time).Scan(&booked)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("booking: occupancy: %w", err)
	}
	return booked, nil
}

// ListForAccount returns reservations owned by identifier.
func (r *PGRepository) ListForAccount(ctx context.Context, identifier string) ([]Reservation, error) {
	return r.list(ctx, selectReservationSQL+` WHERE identifier = $1`+orderReservationSQL, identifier)
}

// ListAll returns every reservation.
func (r *PGRepository) ListAll(ctx context.Context) ([]Reservation, error) {
	return r.list(ctx, selectReservationSQL+orderReservationSQL)
}

// Get returns the reservation with id or shared.ErrNotFound.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (Reservation, error) {
	res, err := scanReservation(r.pool.QueryRow(ctx, selectReservationSQL+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Reservation{}, shared.ErrNotFound
	}
	if err != nil {
		return Reservation{}, fmt.Errorf("booking: get: %w", err)
	}
	return res, nil
}

func (r *PGRepository) list(ctx context.Context, query string, args ...any) ([]Reservation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("booking: list: %w", err)
	}
	defer rows.Close()
	var out []Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("booking: scan: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("booking: list: %w", err)
	}
	return out, nil
}

func scanReservation(row pgx.Row) (Reservation, error) {
	var res Reservation
	err := row.Scan(&res.ID, &res.Identifier, &res.Slot.Date, &res.Slot.Time, &res.PartySize, &res.Notes, &res.CreatedAt)
	return res, err
}
