package booking

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/reservo/reservo/internal/shared"
)

// MemoryLedger is a process-local Store. Admission for a slot runs under a
// mutex dedicated to that slot; the shared maps are guarded separately and
// only for the duration of a single read or write.
type MemoryLedger struct {
	locksMu sync.Mutex
	locks   map[string]*slotLock

	mu       sync.RWMutex
	byID     map[uuid.UUID]Reservation
	bySlot   map[SlotKey][]uuid.UUID
	byIdent  map[string][]uuid.UUID
	inFlight func(SlotKey)
}

type slotLock struct {
	mu   sync.Mutex
	refs int
}

// NewMemoryLedger constructs an empty MemoryLedger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		locks:   make(map[string]*slotLock),
		byID:    make(map[uuid.UUID]Reservation),
		bySlot:  make(map[SlotKey][]uuid.UUID),
		byIdent: make(map[string][]uuid.UUID),
	}
}

// TryReserve admits res if its slot holds fewer than capacity reservations.
func (l *MemoryLedger) TryReserve(ctx context.Context, res Reservation, capacity int) (Reservation, error) {
	if err := ctx.Err(); err != nil {
		return Reservation{}, err
	}
	unlock := l.lockSlot(res.Slot)
	defer unlock()

	l.mu.RLock()
	count := len(l.bySlot[res.Slot])
	l.mu.RUnlock()
	if count >= capacity {
		return Reservation{}, shared.ErrSlotFull
	}
	if l.inFlight != nil {
		l.inFlight(res.Slot)
	}

	l.mu.Lock()
	l.byID[res.ID] = res
	l.bySlot[res.Slot] = append(l.bySlot[res.Slot], res.ID)
	l.byIdent[res.Identifier] = append(l.byIdent[res.Identifier], res.ID)
	l.mu.Unlock()
	return res, nil
}

// Occupancy returns the number of reservations held for key.
func (l *MemoryLedger) Occupancy(ctx context.Context, key SlotKey) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.bySlot[key]), nil
}

// ListForAccount returns reservations owned by identifier.
func (l *MemoryLedger) ListForAccount(ctx context.Context, identifier string) ([]Reservation, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := l.byIdent[identifier]
	out := make([]Reservation, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.byID[id])
	}
	sortReservations(out)
	return out, nil
}

// ListAll returns every reservation.
func (l *MemoryLedger) ListAll(ctx context.Context) ([]Reservation, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Reservation, 0, len(l.byID))
	for _, res := range l.byID {
		out = append(out, res)
	}
	sortReservations(out)
	return out, nil
}

// Get returns the reservation with id or shared.ErrNotFound.
func (l *MemoryLedger) Get(ctx context.Context, id uuid.UUID) (Reservation, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	res, ok := l.byID[id]
	if !ok {
		return Reservation{}, shared.ErrNotFound
	}
	return res, nil
}

// lockSlot acquires the slot's mutex, creating it on first use. Entries are
// reference counted and dropped once no caller holds or waits on them.
func (l *MemoryLedger) lockSlot(key SlotKey) func() {
	name := shared.SlotLockKey(key.Date, key.Time)
	l.locksMu.Lock()
	lock, ok := l.locks[name]
	if !ok {
		lock = &slotLock{}
		l.locks[name] = lock
	}
	lock.refs++
	l.locksMu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		l.locksMu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, name)
		}
		l.locksMu.Unlock()
	}
}
