package rollout_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muster/internal/facts"
	"muster/internal/rollout"
	id "muster/pkg/domain"
	dErrors "muster/pkg/domain-errors"
)

const rolloutFact id.FactID = 100

func newService(t *testing.T, catalog *rollout.MemoryCatalog, store *facts.MemoryStore) *rollout.Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := rollout.NewService(catalog, store, rollout.WithLogger(logger))
	require.NoError(t, err)
	return svc
}

func TestRolloutTimeline(t *testing.T) {
	ctx := context.Background()
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	setup := func() (*rollout.MemoryCatalog, *facts.MemoryStore) {
		catalog := rollout.NewMemoryCatalog()
		catalog.PutSchedule(rollout.Schedule{ID: 1, Name: "single wave", Delays: []rollout.Delay{
			{Offset: 0, Duration: 1, FactIDs: []id.FactID{rolloutFact}},
		}})
		catalog.PutDeployment(rollout.Deployment{
			ID: 1, Name: "tools", Enabled: true, ProjectID: 1,
			StartDate: "2024-01-01", ScheduleID: 1,
		})

		store := facts.NewMemoryStore()
		store.PutMachine(facts.Machine{ID: 1, ProjectID: 1, Status: "active", FactIDs: []id.FactID{rolloutFact}})
		store.PutMachine(facts.Machine{ID: 2, ProjectID: 1, Status: "active", FactIDs: []id.FactID{rolloutFact}})
		store.PutMachine(facts.Machine{ID: 3, ProjectID: 2, Status: "active", FactIDs: []id.FactID{rolloutFact}})
		return catalog, store
	}

	t.Run("computes the project-scoped curve", func(t *testing.T) {
		catalog, store := setup()
		svc := newService(t, catalog, store)

		timeline, err := svc.RolloutTimeline(ctx, 1, monday)
		require.NoError(t, err)
		require.NotNil(t, timeline)
		// Machine 3 belongs to another project.
		assert.Equal(t, []int{2}, timeline.Series[rollout.SeriesProvided])
	})

	t.Run("unknown deployment is not found", func(t *testing.T) {
		catalog, store := setup()
		svc := newService(t, catalog, store)

		_, err := svc.RolloutTimeline(ctx, 99, monday)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("deployment without a schedule is not staged", func(t *testing.T) {
		catalog, store := setup()
		catalog.PutDeployment(rollout.Deployment{
			ID: 2, Name: "unstaged", Enabled: true, ProjectID: 1, StartDate: "2024-01-01",
		})
		svc := newService(t, catalog, store)

		timeline, err := svc.RolloutTimeline(ctx, 2, monday)
		require.NoError(t, err)
		assert.Nil(t, timeline)
	})

	t.Run("dangling schedule reference is not staged", func(t *testing.T) {
		catalog, store := setup()
		catalog.PutDeployment(rollout.Deployment{
			ID: 3, Name: "dangling", Enabled: true, ProjectID: 1,
			StartDate: "2024-01-01", ScheduleID: 77,
		})
		svc := newService(t, catalog, store)

		timeline, err := svc.RolloutTimeline(ctx, 3, monday)
		require.NoError(t, err)
		assert.Nil(t, timeline)
	})

	t.Run("disabled deployment is not staged", func(t *testing.T) {
		catalog, store := setup()
		catalog.PutDeployment(rollout.Deployment{
			ID: 4, Name: "paused", Enabled: false, ProjectID: 1,
			StartDate: "2024-01-01", ScheduleID: 1,
		})
		svc := newService(t, catalog, store)

		timeline, err := svc.RolloutTimeline(ctx, 4, monday)
		require.NoError(t, err)
		assert.Nil(t, timeline)
	})

	t.Run("missing start date violates an invariant", func(t *testing.T) {
		catalog, store := setup()
		catalog.PutDeployment(rollout.Deployment{
			ID: 5, Name: "dateless", Enabled: true, ProjectID: 1, ScheduleID: 1,
		})
		svc := newService(t, catalog, store)

		_, err := svc.RolloutTimeline(ctx, 5, monday)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}
