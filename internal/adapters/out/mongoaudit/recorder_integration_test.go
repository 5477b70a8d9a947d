package mongoaudit_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"optideliver/internal/adapters/out/mongoaudit"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/ports"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
)

type SlotEventRecorderIntegrationTestSuite struct {
	suite.Suite
	container testcontainers.Container
	client    *mongo.Client
	db        *mongo.Database
	recorder  *mongoaudit.SlotEventRecorder
}

func TestSlotEventRecorderIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(SlotEventRecorderIntegrationTestSuite))
}

func (suite *SlotEventRecorderIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	suite.Require().NoError(err)
	suite.container = container

	endpoint, err := container.Endpoint(ctx, "")
	suite.Require().NoError(err)

	suite.client, err = mongoaudit.Connect(ctx, fmt.Sprintf("mongodb://%s", endpoint))
	suite.Require().NoError(err)
	suite.db = suite.client.Database("optideliver_test")
	suite.recorder = mongoaudit.NewSlotEventRecorder(suite.db)
	suite.Require().NoError(suite.recorder.EnsureIndexes(ctx))
}

func (suite *SlotEventRecorderIntegrationTestSuite) TearDownSuite() {
	ctx := context.Background()
	suite.Require().NoError(suite.client.Disconnect(ctx))
	suite.Require().NoError(suite.container.Terminate(ctx))
}

func (suite *SlotEventRecorderIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Collection(mongoaudit.CollectionName).Drop(context.Background()))
}

func (suite *SlotEventRecorderIntegrationTestSuite) TestRecordAndHistory() {
	ctx := context.Background()
	slotID := kernel.NewUUID()
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	suite.Require().NoError(suite.recorder.Record(ctx, ports.SlotEvent{
		SlotID: slotID, Kind: ports.SlotEventReserved, Capacity: 2, Available: 1, OccurredAt: base,
	}))
	suite.Require().NoError(suite.recorder.Record(ctx, ports.SlotEvent{
		SlotID: slotID, Kind: ports.SlotEventReleased, Capacity: 2, Available: 2, OccurredAt: base.Add(time.Minute),
	}))
	suite.Require().NoError(suite.recorder.Record(ctx, ports.SlotEvent{
		SlotID: kernel.NewUUID(), Kind: ports.SlotEventReserved, Capacity: 1, Available: 0, OccurredAt: base,
	}))

	history, err := suite.recorder.History(ctx, slotID, 10)

	suite.Require().NoError(err)
	suite.Require().Len(history, 2)
	suite.Equal(string(ports.SlotEventReleased), history[0].Kind)
	suite.Equal(2, history[0].Available)
	suite.True(history[0].OccurredAt.Equal(base.Add(time.Minute)))
	suite.Equal(string(ports.SlotEventReserved), history[1].Kind)
}

func (suite *SlotEventRecorderIntegrationTestSuite) TestRecord_DefaultsOccurredAt() {
	ctx := context.Background()
	slotID := kernel.NewUUID()
	before := time.Now().Add(-time.Second)

	suite.Require().NoError(suite.recorder.Record(ctx, ports.SlotEvent{
		SlotID: slotID, Kind: ports.SlotEventReconciled, Reason: "drift 1",
	}))

	history, err := suite.recorder.History(ctx, slotID, 1)
	suite.Require().NoError(err)
	suite.Require().Len(history, 1)
	suite.True(history[0].OccurredAt.After(before))
	suite.Equal("drift 1", history[0].Reason)
}

func (suite *SlotEventRecorderIntegrationTestSuite) TestNoopRecorder() {
	suite.NoError(mongoaudit.NoopRecorder{}.Record(context.Background(), ports.SlotEvent{}))
}
