package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/reservo/reservo/internal/shared"
)

func newReservation(identifier string, key SlotKey) Reservation {
	return Reservation{
		ID:         uuid.New(),
		Identifier: identifier,
		Slot:       key,
		PartySize:  1,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestMemoryLedgerCapacityUnderConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t)
	const capacity, extra = 3, 17
	ledger := NewMemoryLedger()
	key := SlotKey{Date: "2025-06-01", Time: "18:00"}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
		full     int
		start    = make(chan struct{})
	)
	for i := 0; i < capacity+extra; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := ledger.TryReserve(context.Background(), newReservation(fmt.Sprintf("user%d", i), key), capacity)
			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				admitted++
			case shared.ErrSlotFull:
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	require.Equal(t, capacity, admitted)
	require.Equal(t, extra, full)
	count, err := ledger.Occupancy(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, capacity, count)
	all, err := ledger.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, capacity)
	require.Empty(t, ledger.locks)
}

func TestMemoryLedgerSlotsDoNotContend(t *testing.T) {
	defer goleak.VerifyNone(t)
	ledger := NewMemoryLedger()
	slow := SlotKey{Date: "2025-06-01", Time: "18:00"}
	fast := SlotKey{Date: "2025-06-01", Time: "19:00"}

	entered := make(chan struct{})
	release := make(chan struct{})
	ledger.inFlight = func(key SlotKey) {
		if key == slow {
			close(entered)
			<-release
		}
	}

	done := make(chan error, 1)
	go func() {
		_, err := ledger.TryReserve(context.Background(), newReservation("alice", slow), 3)
		done <- err
	}()
	<-entered

	// The slow slot is mid-admission; another slot must still be admitted.
	_, err := ledger.TryReserve(context.Background(), newReservation("bob", fast), 3)
	require.NoError(t, err)

	close(release)
	require.NoError(t, <-done)
}

func TestMemoryLedgerCatalog(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()
	late := newReservation("alice", SlotKey{Date: "2025-06-02", Time: "09:00"})
	early := newReservation("alice", SlotKey{Date: "2025-06-01", Time: "20:00"})
	other := newReservation("bob", SlotKey{Date: "2025-06-01", Time: "08:00"})
	for _, res := range []Reservation{late, early, other} {
		_, err := ledger.TryReserve(ctx, res, 3)
		require.NoError(t, err)
	}

	mine, err := ledger.ListForAccount(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, []Reservation{early, late}, mine)

	all, err := ledger.ListAll(ctx)
	require.NoError(t, err)
	require.Equal(t, []Reservation{other, early, late}, all)

	got, err := ledger.Get(ctx, other.ID)
	require.NoError(t, err)
	require.Equal(t, other, got)
	_, err = ledger.Get(ctx, uuid.New())
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestMemoryLedgerRespectsCancelledContext(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ledger.TryReserve(ctx, newReservation("alice", SlotKey{Date: "2025-06-01", Time: "18:00"}), 3)
	require.ErrorIs(t, err, context.Canceled)
}
