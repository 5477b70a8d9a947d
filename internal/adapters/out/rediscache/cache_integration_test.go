package rediscache_test

import (
	"context"
	"testing"
	"time"

	"optideliver/internal/adapters/out/rediscache"
	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/domain/model/prediction"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type RankingCacheIntegrationTestSuite struct {
	suite.Suite
	container testcontainers.Container
	client    *redis.Client
	cache     *rediscache.RankingCache
}

func TestRankingCacheIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RankingCacheIntegrationTestSuite))
}

func (suite *RankingCacheIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	suite.Require().NoError(err)
	suite.container = container

	endpoint, err := container.Endpoint(ctx, "")
	suite.Require().NoError(err)

	suite.client = redis.NewClient(&redis.Options{Addr: endpoint})
	suite.cache = rediscache.NewRankingCache(suite.client)
}

func (suite *RankingCacheIntegrationTestSuite) TearDownSuite() {
	ctx := context.Background()
	suite.Require().NoError(suite.client.Close())
	suite.Require().NoError(suite.container.Terminate(ctx))
}

func (suite *RankingCacheIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.client.FlushAll(context.Background()).Err())
}

func (suite *RankingCacheIntegrationTestSuite) TestSetThenGet() {
	ctx := context.Background()
	predictions := []prediction.Prediction{
		{SlotID: kernel.NewUUID(), Confidence: 0.8, Rank: 1, Explanation: "usually home", Source: prediction.SourceAdvisor},
		{SlotID: kernel.NewUUID(), Confidence: 0.5, Rank: 2, Source: prediction.SourceHeuristic},
	}

	suite.Require().NoError(suite.cache.Set(ctx, "ranking:a", predictions, time.Minute))
	got, ok, err := suite.cache.Get(ctx, "ranking:a")

	suite.Require().NoError(err)
	suite.True(ok)
	suite.Equal(predictions, got)

	ttl, err := suite.client.TTL(ctx, "ranking:a").Result()
	suite.Require().NoError(err)
	suite.Greater(ttl, time.Duration(0))
}

func (suite *RankingCacheIntegrationTestSuite) TestGet_Miss() {
	got, ok, err := suite.cache.Get(context.Background(), "ranking:missing")

	suite.Require().NoError(err)
	suite.False(ok)
	suite.Nil(got)
}

func (suite *RankingCacheIntegrationTestSuite) TestGet_CorruptEntry() {
	ctx := context.Background()
	suite.Require().NoError(suite.client.Set(ctx, "ranking:bad", "not json", time.Minute).Err())

	_, ok, err := suite.cache.Get(ctx, "ranking:bad")

	suite.Error(err)
	suite.False(ok)
}

func (suite *RankingCacheIntegrationTestSuite) TestSet_Expires() {
	ctx := context.Background()
	suite.Require().NoError(suite.cache.Set(ctx, "ranking:short", []prediction.Prediction{}, 50*time.Millisecond))

	suite.Eventually(func() bool {
		_, ok, err := suite.cache.Get(ctx, "ranking:short")
		return err == nil && !ok
	}, 2*time.Second, 20*time.Millisecond)
}
