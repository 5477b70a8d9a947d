package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"optideliver/internal/adapters/out/postgres/orderrepo"
	"optideliver/internal/adapters/out/postgres/pgtest"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/order"
	"optideliver/internal/core/domain/model/slot"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	m.Called(id, aggregate)
}

// OrderRepositoryIntegrationTestSuite verifies order persistence and the
// conditional binding writes against PostgreSQL.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	database   *pgtest.Database
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
}

func TestOrderRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Truncate())

	suite.tracker = new(MockAggregateTracker)
	suite.repository = orderrepo.NewGormOrderRepository(suite.database.DB, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Terminate(context.Background()))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ValidOrder_Success() {
	ctx := context.Background()
	testOrder := suite.createTestOrder()
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()

	err := suite.repository.Add(ctx, testOrder)
	suite.Require().NoError(err)

	got, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.True(got.SenderID().IsEqual(testOrder.SenderID()))
	suite.Equal("north", got.Address().Area())
	suite.Equal("110045", got.Address().PostalCode())
	suite.Equal(order.Commercial, got.Address().Type())
	suite.Require().NotNil(got.Address().Location())
	suite.InDelta(28.61, got.Address().Location().Lat(), 1e-9)
	suite.Equal(order.Pending, got.Status())
	suite.Nil(got.SlotID())
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, order.ErrOrderNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_PersistsStatus() {
	ctx := context.Background()
	testOrder := suite.persistedOrder()
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()

	suite.Require().NoError(testOrder.Cancel())
	suite.Require().NoError(suite.repository.Update(ctx, testOrder))

	got, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Cancelled, got.Status())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_NonExistentOrder_ReturnsNotFound() {
	err := suite.repository.Update(context.Background(), suite.createTestOrder())
	suite.Require().ErrorIs(err, order.ErrOrderNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestBindSlot_OnlyOnce() {
	ctx := context.Background()
	testOrder := suite.persistedOrder()
	first, second := suite.insertSlot(), suite.insertSlot()
	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)

	suite.Require().NoError(suite.repository.BindSlot(ctx, testOrder.ID(), first, start))

	err := suite.repository.BindSlot(ctx, testOrder.ID(), second, start)
	suite.Require().ErrorIs(err, order.ErrOrderAlreadyBound)

	got, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.True(got.IsBoundTo(first))
	suite.Require().NotNil(got.ScheduledDeliveryAt())
	suite.True(got.ScheduledDeliveryAt().Equal(start))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestBindSlot_Failures() {
	ctx := context.Background()
	slotID := suite.insertSlot()

	err := suite.repository.BindSlot(ctx, kernel.NewUUID(), slotID, time.Now())
	suite.Require().ErrorIs(err, order.ErrOrderNotFound)

	pending := suite.persistedOrder()
	err = suite.repository.BindSlot(ctx, pending.ID(), kernel.NewUUID(), time.Now())
	suite.Require().ErrorIs(err, slot.ErrSlotNotFound)

	cancelled := suite.persistedOrder()
	suite.tracker.On("TrackAggregate", cancelled.ID(), cancelled).Once()
	suite.Require().NoError(cancelled.Cancel())
	suite.Require().NoError(suite.repository.Update(ctx, cancelled))
	err = suite.repository.BindSlot(ctx, cancelled.ID(), slotID, time.Now())
	suite.Require().ErrorIs(err, order.ErrOrderNotBindable)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUnbindSlot_IsConditional() {
	ctx := context.Background()
	testOrder := suite.persistedOrder()
	slotID := suite.insertSlot()
	suite.Require().NoError(suite.repository.BindSlot(ctx, testOrder.ID(), slotID, time.Now()))

	cleared, err := suite.repository.UnbindSlot(ctx, testOrder.ID(), kernel.NewUUID())
	suite.Require().NoError(err)
	suite.False(cleared)

	cleared, err = suite.repository.UnbindSlot(ctx, testOrder.ID(), slotID)
	suite.Require().NoError(err)
	suite.True(cleared)

	cleared, err = suite.repository.UnbindSlot(ctx, testOrder.ID(), slotID)
	suite.Require().NoError(err)
	suite.False(cleared)

	got, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Nil(got.SlotID())
	suite.Nil(got.ScheduledDeliveryAt())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestSlotWideOperations() {
	ctx := context.Background()
	slotID := suite.insertSlot()
	a, b := suite.persistedOrder(), suite.persistedOrder()
	suite.persistedOrder()
	start := time.Now().Add(time.Hour).Truncate(time.Second)
	suite.Require().NoError(suite.repository.BindSlot(ctx, a.ID(), slotID, start))
	suite.Require().NoError(suite.repository.BindSlot(ctx, b.ID(), slotID, start))

	n, err := suite.repository.CountBySlot(ctx, slotID)
	suite.Require().NoError(err)
	suite.Equal(2, n)

	bound, err := suite.repository.ListBySlot(ctx, slotID)
	suite.Require().NoError(err)
	suite.Len(bound, 2)

	moved := start.Add(3 * time.Hour)
	touched, err := suite.repository.RescheduleBySlot(ctx, slotID, moved)
	suite.Require().NoError(err)
	suite.Equal(int64(2), touched)
	got, err := suite.repository.Get(ctx, a.ID())
	suite.Require().NoError(err)
	suite.True(got.ScheduledDeliveryAt().Equal(moved))

	cleared, err := suite.repository.ClearSlot(ctx, slotID)
	suite.Require().NoError(err)
	suite.Equal(int64(2), cleared)

	n, err = suite.repository.CountBySlot(ctx, slotID)
	suite.Require().NoError(err)
	suite.Zero(n)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestDelete() {
	ctx := context.Background()
	testOrder := suite.persistedOrder()

	suite.Require().NoError(suite.repository.Delete(ctx, testOrder.ID()))
	suite.Require().ErrorIs(suite.repository.Delete(ctx, testOrder.ID()), order.ErrOrderNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) createTestOrder() *order.Order {
	location, err := kernel.NewGeoPoint(28.61, 77.20)
	suite.Require().NoError(err)
	address, err := order.NewAddress("north", "110045", order.Commercial, &location)
	suite.Require().NoError(err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), address)
	suite.Require().NoError(err)
	return o
}

func (suite *OrderRepositoryIntegrationTestSuite) persistedOrder() *order.Order {
	o := suite.createTestOrder()
	suite.tracker.On("TrackAggregate", o.ID(), o).Once()
	suite.Require().NoError(suite.repository.Add(context.Background(), o))
	return o
}

func (suite *OrderRepositoryIntegrationTestSuite) insertSlot() kernel.UUID {
	id := kernel.NewUUID()
	start := time.Now().Add(24 * time.Hour)
	suite.Require().NoError(suite.database.DB.Exec(`
		INSERT INTO time_slots (id, area, start_time, end_time, capacity, available)
		VALUES (?, 'north', ?, ?, 10, 10)`,
		id.Bytes(), start, start.Add(2*time.Hour),
	).Error)
	return id
}
