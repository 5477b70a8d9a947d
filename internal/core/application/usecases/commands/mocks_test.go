package commands_test

import (
	"context"
	"testing"
	"time"

	"optideliver/internal/adapters/out/memory"
	"optideliver/internal/core/application/admission"
	"optideliver/internal/core/application/usecases/commands"
	"optideliver/internal/core/domain/model/identity"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/order"
	"optideliver/internal/core/domain/model/prediction"
	"optideliver/internal/core/domain/model/slot"
	"optideliver/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock implementations for testing.
type MockUoW struct {
	mock.Mock
}

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) SlotRepository() ports.SlotRepository {
	args := m.Called()
	return args.Get(0).(ports.SlotRepository)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockUoWFactory struct {
	mock.Mock
}

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockSlotAdmission struct {
	mock.Mock
}

func (m *MockSlotAdmission) Reserve(ctx context.Context, slotID kernel.UUID) (*slot.Slot, error) {
	args := m.Called(ctx, slotID)
	s, _ := args.Get(0).(*slot.Slot)
	return s, args.Error(1)
}

func (m *MockSlotAdmission) Release(ctx context.Context, slotID kernel.UUID) (*slot.Slot, error) {
	args := m.Called(ctx, slotID)
	s, _ := args.Get(0).(*slot.Slot)
	return s, args.Error(1)
}

func (m *MockSlotAdmission) Compensate(ctx context.Context, slotID kernel.UUID) (*slot.Slot, error) {
	args := m.Called(ctx, slotID)
	s, _ := args.Get(0).(*slot.Slot)
	return s, args.Error(1)
}

func (m *MockSlotAdmission) AdjustCapacity(ctx context.Context, slotID kernel.UUID, capacity int) (*slot.Slot, error) {
	args := m.Called(ctx, slotID, capacity)
	s, _ := args.Get(0).(*slot.Slot)
	return s, args.Error(1)
}

type MockSlotAdvisor struct {
	mock.Mock
}

func (m *MockSlotAdvisor) Rank(
	ctx context.Context,
	candidates []prediction.Candidate,
	pctx prediction.Context,
) []prediction.Prediction {
	args := m.Called(ctx, candidates, pctx)
	return args.Get(0).([]prediction.Prediction)
}

func (m *MockSlotAdvisor) RecordPreference(ctx context.Context, feedback prediction.Feedback) error {
	args := m.Called(ctx, feedback)
	return args.Error(0)
}

type MockSlotEventRecorder struct {
	mock.Mock
}

func (m *MockSlotEventRecorder) Record(ctx context.Context, event ports.SlotEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// failingOrders wraps a real order repository and fails selected writes.
type failingOrders struct {
	ports.OrderRepository
	bindErr error
	addErr  error
}

func (f *failingOrders) BindSlot(ctx context.Context, orderID, slotID kernel.UUID, at time.Time) error {
	if f.bindErr != nil {
		return f.bindErr
	}
	return f.OrderRepository.BindSlot(ctx, orderID, slotID, at)
}

func (f *failingOrders) Add(ctx context.Context, o *order.Order) error {
	if f.addErr != nil {
		return f.addErr
	}
	return f.OrderRepository.Add(ctx, o)
}

// uowWithOrders swaps the order repository of a real unit of work.
type uowWithOrders struct {
	ports.UnitOfWork
	orders ports.OrderRepository
}

func (u uowWithOrders) OrderRepository() ports.OrderRepository {
	return u.orders
}

var (
	monday9 = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	now     = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

// fixture wires handlers over the in-memory store the way the composition
// root wires them over PostgreSQL.
type fixture struct {
	store     *memory.Store
	clock     kernel.Clock
	admission *admission.Controller
	factory   commands.UoWFactory
	admin     identity.Principal
	sender    identity.Principal
	logger    *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := kernel.FixedClock{At: now}
	store := memory.NewStore(clock)
	logger := zap.NewNop()

	return &fixture{
		store:     store,
		clock:     clock,
		admission: admission.NewController(store.Slots(), nil, nil, clock, logger),
		factory: commands.UoWFactoryFunc(func() commands.UoW {
			return store.UnitOfWorkFactory().Create()
		}),
		admin:  principal(t, identity.RoleAdmin),
		sender: principal(t, identity.RoleSender),
		logger: logger,
	}
}

func principal(t *testing.T, role identity.Role) identity.Principal {
	t.Helper()
	p, err := identity.NewPrincipal(kernel.NewUUID(), role)
	require.NoError(t, err)
	return p
}

func (f *fixture) addSlot(t *testing.T, capacity int) *slot.Slot {
	t.Helper()
	w, err := slot.NewWindow(monday9, monday9.Add(2*time.Hour))
	require.NoError(t, err)
	s, err := slot.NewSlot(kernel.NewUUID(), "north", w, capacity)
	require.NoError(t, err)
	require.NoError(t, f.store.Slots().Add(t.Context(), s))
	return s
}

func (f *fixture) addOrder(t *testing.T, sender identity.Principal) *order.Order {
	t.Helper()
	addr, err := order.NewAddress("north", "110001", order.Residential, nil)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), sender.UserID(), addr)
	require.NoError(t, err)
	require.NoError(t, f.store.Orders().Add(t.Context(), o))
	return o
}

func (f *fixture) available(t *testing.T, slotID kernel.UUID) int {
	t.Helper()
	s, err := f.store.Slots().Get(t.Context(), slotID)
	require.NoError(t, err)
	return s.Available()
}

func (f *fixture) order(t *testing.T, orderID kernel.UUID) *order.Order {
	t.Helper()
	o, err := f.store.Orders().Get(t.Context(), orderID)
	require.NoError(t, err)
	return o
}

func (f *fixture) withOrders(orders ports.OrderRepository) commands.UoWFactory {
	return commands.UoWFactoryFunc(func() commands.UoW {
		return uowWithOrders{UnitOfWork: f.store.UnitOfWorkFactory().Create(), orders: orders}
	})
}
