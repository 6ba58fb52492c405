//go:build integration

package rollout_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"muster/internal/facts"
	"muster/internal/rollout"
	id "muster/pkg/domain"
	"muster/pkg/testutil/containers"
)

const cacheTTL = 2 * time.Minute

const (
	seedFact id.FactID = 10
	waveFact id.FactID = 11
)

type RolloutCacheSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	catalog *rollout.MemoryCatalog
	service *rollout.Service
}

func TestRolloutCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RolloutCacheSuite))
}

func (s *RolloutCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *RolloutCacheSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.redis.Client.FlushAll(ctx).Err())

	store := facts.NewMemoryStore()
	store.PutMachine(facts.Machine{ID: 1, ProjectID: 1, Status: "active", FactIDs: []id.FactID{id.UniversalFactID, seedFact}})
	store.PutMachine(facts.Machine{ID: 2, ProjectID: 1, Status: "active", FactIDs: []id.FactID{id.UniversalFactID, waveFact}})

	s.catalog = rollout.NewMemoryCatalog()
	s.catalog.PutSchedule(rollout.Schedule{
		ID:   1,
		Name: "weekly",
		Delays: []rollout.Delay{
			{Offset: 0, Duration: 1, FactIDs: []id.FactID{waveFact}},
		},
	})
	s.catalog.PutDeployment(rollout.Deployment{
		ID:              5,
		Name:            "toolbox",
		Enabled:         true,
		ProjectID:       1,
		IncludedFactIDs: []id.FactID{seedFact},
		StartDate:       "2024-01-01", // a Monday
		ScheduleID:      1,
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := rollout.NewCache(s.redis.Client, cacheTTL, logger)
	svc, err := rollout.NewService(s.catalog, store,
		rollout.WithLogger(logger),
		rollout.WithCache(cache),
	)
	s.Require().NoError(err)
	s.service = svc
}

// widenSchedule grows the horizon so a recompute after this call yields a
// visibly different timeline than the one cached before it.
func (s *RolloutCacheSuite) widenSchedule() {
	s.catalog.PutSchedule(rollout.Schedule{
		ID:   1,
		Name: "weekly",
		Delays: []rollout.Delay{
			{Offset: 0, Duration: 1, FactIDs: []id.FactID{waveFact}},
			{Offset: 5, Duration: 1, FactIDs: []id.FactID{waveFact}},
		},
	})
}

func (s *RolloutCacheSuite) TestTimelineIsMemoized() {
	ctx := context.Background()
	asOf := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := s.service.RolloutTimeline(ctx, 5, asOf)
	s.Require().NoError(err)
	s.Require().NotNil(first)

	// The entry lands under the documented key with the configured TTL.
	ttl, err := s.redis.Client.TTL(ctx, "rollout:5:2024-01-01").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, cacheTTL)

	// Edit the catalog. A recompute would now see the wider schedule, so
	// an identical second result proves it came from the cache.
	s.widenSchedule()

	second, err := s.service.RolloutTimeline(ctx, 5, asOf)
	s.Require().NoError(err)
	s.Require().NotNil(second)
	s.Equal(first.XLabels, second.XLabels)
	s.Equal(first.Series, second.Series)
}

func (s *RolloutCacheSuite) TestCorruptEntryFallsBackToRecompute() {
	ctx := context.Background()
	asOf := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := s.service.RolloutTimeline(ctx, 5, asOf)
	s.Require().NoError(err)
	s.Require().NotNil(first)

	s.Require().NoError(s.redis.Client.Set(ctx, "rollout:5:2024-01-01", "{not json", cacheTTL).Err())

	recomputed, err := s.service.RolloutTimeline(ctx, 5, asOf)
	s.Require().NoError(err)
	s.Require().NotNil(recomputed)
	s.Equal(first.XLabels, recomputed.XLabels)
	s.Equal(first.Series, recomputed.Series)

	// The recompute repaired the entry: the next read is a clean hit.
	raw, err := s.redis.Client.Get(ctx, "rollout:5:2024-01-01").Result()
	s.Require().NoError(err)
	s.Contains(raw, "x_labels")
}

func (s *RolloutCacheSuite) TestDistinctAsOfDatesCacheSeparately() {
	ctx := context.Background()

	_, err := s.service.RolloutTimeline(ctx, 5, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	_, err = s.service.RolloutTimeline(ctx, 5, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)

	keys, err := s.redis.Client.Keys(ctx, "rollout:5:*").Result()
	s.Require().NoError(err)
	s.ElementsMatch([]string{"rollout:5:2024-01-01", "rollout:5:2024-01-02"}, keys)
}
