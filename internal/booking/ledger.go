package booking

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Ledger is the admission-control store. TryReserve is the only path that
// creates a reservation: it must test occupancy and record the reservation
// as one indivisible step per slot key, returning shared.ErrSlotFull when
// the slot already holds capacity reservations. Calls on different keys must
// not contend.
type Ledger interface {
	TryReserve(ctx context.Context, res Reservation, capacity int) (Reservation, error)
	Occupancy(ctx context.Context, key SlotKey) (int, error)
}

// Catalog is the read side over admitted reservations.
type Catalog interface {
	ListForAccount(ctx context.Context, identifier string) ([]Reservation, error)
	ListAll(ctx context.Context) ([]Reservation, error)
	Get(ctx context.Context, id uuid.UUID) (Reservation, error)
}

// Store combines the write and read sides over one storage backend.
type Store interface {
	Ledger
	Catalog
}

// sortReservations orders by slot ascending, then creation time, then id so
// the order is total.
func sortReservations(list []Reservation) {
	slices.SortFunc(list, func(a, b Reservation) int {
		if c := strings.Compare(a.Slot.Date, b.Slot.Date); c != 0 {
			return c
		}
		if c := strings.Compare(a.Slot.Time, b.Slot.Time); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}
