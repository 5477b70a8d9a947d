package commands_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"optideliver/internal/adapters/out/memory"
	"optideliver/internal/core/application/usecases/commands"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/slot"
	"optideliver/internal/core/ports"
	"optideliver/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type movingClock struct {
	at time.Time
}

func (c *movingClock) Now() time.Time {
	return c.at
}

type reconcileFixture struct {
	store   *memory.Store
	clock   *movingClock
	factory commands.UoWFactory
	slot    *slot.Slot
}

// newLeakedSlot leaves a slot with one reserved unit and no bound order,
// the state a crash between reserve and bind leaves behind.
func newLeakedSlot(t *testing.T) reconcileFixture {
	t.Helper()

	clock := &movingClock{at: now}
	store := memory.NewStore(clock)

	w, err := slot.NewWindow(monday9, monday9.Add(time.Hour))
	require.NoError(t, err)
	s, err := slot.NewSlot(kernel.NewUUID(), "north", w, 3)
	require.NoError(t, err)
	require.NoError(t, store.Slots().Add(t.Context(), s))

	_, ok, err := store.Slots().TryReserve(t.Context(), s.ID())
	require.NoError(t, err)
	require.True(t, ok)

	return reconcileFixture{
		store: store,
		clock: clock,
		factory: commands.UoWFactoryFunc(func() commands.UoW {
			return store.UnitOfWorkFactory().Create()
		}),
		slot: s,
	}
}

func (r reconcileFixture) available(t *testing.T) int {
	t.Helper()
	s, err := r.store.Slots().Get(t.Context(), r.slot.ID())
	require.NoError(t, err)
	return s.Available()
}

func TestReconcileSlotCapacityCommandHandler_Handle_RequiresTwoPasses(t *testing.T) {
	// Arrange
	rf := newLeakedSlot(t)
	events := new(MockSlotEventRecorder)
	events.On("Record", mock.Anything, mock.MatchedBy(func(e ports.SlotEvent) bool {
		return e.Kind == ports.SlotEventReconciled && e.SlotID.IsEqual(rf.slot.ID()) && e.Available == 3
	})).Return(nil).Once()

	reg := prometheus.NewPedanticRegistry()
	m := metrics.New("test", reg)
	handler := commands.NewReconcileSlotCapacityCommandHandler(rf.factory, events, m, rf.clock, time.Minute, zap.NewNop())
	cmd := commands.NewReconcileSlotCapacityCommand(true)

	// Act: the slot was just written, so it is inside the grace period.
	result, err := handler.Handle(t.Context(), cmd)
	require.NoError(t, err)
	assert.Equal(t, commands.ReconcileSlotCapacityResult{}, result)

	rf.clock.at = now.Add(2 * time.Minute)
	first, err := handler.Handle(t.Context(), cmd)
	require.NoError(t, err)

	rf.clock.at = now.Add(4 * time.Minute)
	second, err := handler.Handle(t.Context(), cmd)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, commands.ReconcileSlotCapacityResult{Suspected: 1}, first)
	assert.Equal(t, commands.ReconcileSlotCapacityResult{Confirmed: 1, Fixed: 1}, second)
	assert.Equal(t, 3, rf.available(t))
	events.AssertExpectations(t)
	expected := `
# HELP test_reconciliation_corrections_total Availability corrections written by reconciliation.
# TYPE test_reconciliation_corrections_total counter
test_reconciliation_corrections_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_reconciliation_corrections_total"))
}

func TestReconcileSlotCapacityCommandHandler_Handle_ReportOnly(t *testing.T) {
	rf := newLeakedSlot(t)
	handler := commands.NewReconcileSlotCapacityCommandHandler(rf.factory, nil, nil, rf.clock, time.Minute, zap.NewNop())
	cmd := commands.NewReconcileSlotCapacityCommand(false)

	rf.clock.at = now.Add(2 * time.Minute)
	_, err := handler.Handle(t.Context(), cmd)
	require.NoError(t, err)
	second, err := handler.Handle(t.Context(), cmd)
	require.NoError(t, err)
	third, err := handler.Handle(t.Context(), cmd)
	require.NoError(t, err)

	assert.Equal(t, 1, second.Confirmed)
	assert.Equal(t, 0, second.Fixed)
	assert.Equal(t, 1, third.Confirmed, "unfixed drift stays confirmed")
	assert.Equal(t, 2, rf.available(t))
}

// A write between passes resets the observation.
func TestReconcileSlotCapacityCommandHandler_Handle_ActivityResetsObservation(t *testing.T) {
	rf := newLeakedSlot(t)
	handler := commands.NewReconcileSlotCapacityCommandHandler(rf.factory, nil, nil, rf.clock, time.Minute, zap.NewNop())
	cmd := commands.NewReconcileSlotCapacityCommand(true)

	rf.clock.at = now.Add(2 * time.Minute)
	first, err := handler.Handle(t.Context(), cmd)
	require.NoError(t, err)
	require.Equal(t, 1, first.Suspected)

	// another leaked reservation changes available and updated_at
	_, ok, err := rf.store.Slots().TryReserve(context.Background(), rf.slot.ID())
	require.NoError(t, err)
	require.True(t, ok)

	rf.clock.at = now.Add(4 * time.Minute)
	second, err := handler.Handle(t.Context(), cmd)
	require.NoError(t, err)

	assert.Equal(t, commands.ReconcileSlotCapacityResult{Suspected: 1}, second)
	assert.Equal(t, 1, rf.available(t))
}

func TestReconcileSlotCapacityCommandHandler_Handle_ConsistentSlotIsIgnored(t *testing.T) {
	f := newFixture(t)
	s := f.addSlot(t, 2)
	bookN(t, f, s.ID(), 1)

	clock := &movingClock{at: now.Add(time.Hour)}
	handler := commands.NewReconcileSlotCapacityCommandHandler(f.factory, nil, nil, clock, time.Minute, zap.NewNop())

	for range 3 {
		result, err := handler.Handle(t.Context(), commands.NewReconcileSlotCapacityCommand(true))
		require.NoError(t, err)
		assert.Equal(t, commands.ReconcileSlotCapacityResult{}, result)
	}
	assert.Equal(t, 1, f.available(t, s.ID()))
}
