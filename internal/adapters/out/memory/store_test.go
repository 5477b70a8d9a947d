package memory_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"optideliver/internal/adapters/out/memory"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/order"
	"optideliver/internal/core/domain/model/slot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func newSlot(t *testing.T, capacity int) *slot.Slot {
	t.Helper()
	w, err := slot.NewWindow(base.Add(2*time.Hour), base.Add(4*time.Hour))
	require.NoError(t, err)
	s, err := slot.NewSlot(kernel.NewUUID(), "north", w, capacity)
	require.NoError(t, err)
	return s
}

func newOrder(t *testing.T) *order.Order {
	t.Helper()
	a, err := order.NewAddress("north", "110001", order.Residential, nil)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), a)
	require.NoError(t, err)
	return o
}

func TestSlotRepository_ConcurrentReserveOnLastUnit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(kernel.FixedClock{At: base})
	repo := store.Slots()
	s := newSlot(t, 1)
	require.NoError(t, repo.Add(ctx, s))

	var wg sync.WaitGroup
	var admitted atomic.Int32
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, err := repo.TryReserve(ctx, s.ID()); err == nil && ok {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), admitted.Load())
	got, err := repo.Get(ctx, s.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, got.Available())
}

func TestSlotRepository_NotAppliedConditions(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore(nil).Slots()

	_, ok, err := repo.TryReserve(ctx, kernel.NewUUID())
	require.NoError(t, err)
	assert.False(t, ok)

	inactive := newSlot(t, 2)
	inactive.Deactivate()
	require.NoError(t, repo.Add(ctx, inactive))
	_, ok, err = repo.TryReserve(ctx, inactive.ID())
	require.NoError(t, err)
	assert.False(t, ok)

	released, err := repo.Release(ctx, inactive.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, released.Available())

	_, err = repo.Release(ctx, kernel.NewUUID())
	require.ErrorIs(t, err, slot.ErrSlotNotFound)
}

func TestSlotRepository_UpdateMetadataKeepsCounter(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore(nil).Slots()
	s := newSlot(t, 3)
	require.NoError(t, repo.Add(ctx, s))
	_, _, err := repo.TryReserve(ctx, s.ID())
	require.NoError(t, err)

	// s still believes available == 3
	require.NoError(t, s.MoveToArea("south"))
	require.NoError(t, repo.UpdateMetadata(ctx, s))

	got, err := repo.Get(ctx, s.ID())
	require.NoError(t, err)
	assert.Equal(t, "south", got.Area())
	assert.Equal(t, 2, got.Available())
}

func TestOrderRepository_BindingIsConditional(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil)
	s, o := newSlot(t, 2), newOrder(t)
	require.NoError(t, store.Slots().Add(ctx, s))
	require.NoError(t, store.Orders().Add(ctx, o))

	require.NoError(t, store.Orders().BindSlot(ctx, o.ID(), s.ID(), s.Window().Start()))
	require.ErrorIs(t, store.Orders().BindSlot(ctx, o.ID(), s.ID(), s.Window().Start()), order.ErrOrderAlreadyBound)

	n, err := store.Orders().CountBySlot(ctx, s.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.ErrorIs(t, store.Slots().Delete(ctx, s.ID()), slot.ErrSlotHasBookings)

	cleared, err := store.Orders().UnbindSlot(ctx, o.ID(), s.ID())
	require.NoError(t, err)
	assert.True(t, cleared)
	cleared, err = store.Orders().UnbindSlot(ctx, o.ID(), s.ID())
	require.NoError(t, err)
	assert.False(t, cleared)
}

func TestSlotRepository_DriftAndCompareAndSet(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(kernel.FixedClock{At: base})
	s := newSlot(t, 3)
	require.NoError(t, store.Slots().Add(ctx, s))
	_, _, err := store.Slots().TryReserve(ctx, s.ID())
	require.NoError(t, err)

	drifts, err := store.Slots().ListDrift(ctx, base.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, 1, drifts[0].Difference())

	applied, err := store.Slots().CompareAndSetAvailable(ctx, s.ID(), 2, 3, base)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = store.Slots().CompareAndSetAvailable(ctx, s.ID(), 2, 3, base)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestUnitOfWork_RollbackRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil)
	uow := store.UnitOfWorkFactory().Create()
	s := newSlot(t, 1)

	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.SlotRepository().Add(ctx, s))
	require.NoError(t, uow.Rollback(ctx))

	_, err := store.Slots().Get(ctx, s.ID())
	require.ErrorIs(t, err, slot.ErrSlotNotFound)
	require.ErrorIs(t, uow.Commit(ctx), memory.ErrNoTransaction)
}

func TestUnitOfWork_RollbackKeepsWritesOutsideTheUnit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil)
	edited, other := newSlot(t, 3), newSlot(t, 2)
	require.NoError(t, store.Slots().Add(ctx, edited))
	require.NoError(t, store.Slots().Add(ctx, other))

	uow := store.UnitOfWorkFactory().Create()
	require.NoError(t, uow.Begin(ctx))

	loaded, err := uow.SlotRepository().Get(ctx, edited.ID())
	require.NoError(t, err)
	require.NoError(t, loaded.MoveToArea("south"))
	require.NoError(t, uow.SlotRepository().UpdateMetadata(ctx, loaded))
	o := newOrder(t)
	require.NoError(t, uow.OrderRepository().Add(ctx, o))

	// admission runs outside the unit
	_, ok, err := store.Slots().TryReserve(ctx, edited.ID())
	require.NoError(t, err)
	require.True(t, ok)
	_, ok, err = store.Slots().TryReserve(ctx, other.ID())
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, uow.Rollback(ctx))

	got, err := store.Slots().Get(ctx, edited.ID())
	require.NoError(t, err)
	assert.Equal(t, "north", got.Area())
	assert.Equal(t, 2, got.Available())

	got, err = store.Slots().Get(ctx, other.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, got.Available())

	_, err = store.Orders().Get(ctx, o.ID())
	require.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestUnitOfWork_RollbackUndoesOwnReservation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil)
	s := newSlot(t, 2)
	require.NoError(t, store.Slots().Add(ctx, s))

	uow := store.UnitOfWorkFactory().Create()
	require.NoError(t, uow.Begin(ctx))
	_, ok, err := uow.SlotRepository().TryReserve(ctx, s.ID())
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, uow.Rollback(ctx))

	got, err := store.Slots().Get(ctx, s.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, got.Available())
}
