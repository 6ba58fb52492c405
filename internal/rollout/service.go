package rollout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"muster/internal/facts"
	platmetrics "muster/internal/platform/metrics"
	id "muster/pkg/domain"
	dErrors "muster/pkg/domain-errors"
	"muster/pkg/platform/sentinel"
)

// PopulationSource provides the machine inventory the calculator buckets.
type PopulationSource interface {
	Machines(ctx context.Context) ([]facts.Machine, error)
}

// Service computes and memoizes rollout timelines.
type Service struct {
	catalog  Catalog
	machines PopulationSource

	cache   *Cache
	logger  *slog.Logger
	metrics *platmetrics.Metrics
	tracer  trace.Tracer
}

// Option configures the service.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithCache attaches a redis-backed timeline cache.
func WithCache(cache *Cache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithMetrics attaches the server-wide metrics.
func WithMetrics(m *platmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService constructs the rollout service.
func NewService(catalog Catalog, machines PopulationSource, opts ...Option) (*Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("rollout catalog is required")
	}
	if machines == nil {
		return nil, fmt.Errorf("population source is required")
	}
	svc := &Service{
		catalog:  catalog,
		machines: machines,
		tracer:   otel.Tracer("muster/rollout"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) recordCache(result string) {
	if s.metrics != nil {
		s.metrics.RolloutCacheHit.WithLabelValues(result).Inc()
	}
}

// RolloutTimeline computes the day-by-day provided curve for a deployment.
// A disabled deployment or one without an attached schedule is not staged:
// the result is (nil, nil), not an error.
func (s *Service) RolloutTimeline(ctx context.Context, deploymentID id.DeploymentID, asOf time.Time) (*Timeline, error) {
	ctx, span := s.tracer.Start(ctx, "rollout.RolloutTimeline",
		trace.WithAttributes(attribute.Int64("deployment.id", int64(deploymentID))))
	defer span.End()

	dep, err := s.catalog.DeploymentByID(ctx, deploymentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "deployment not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load deployment")
	}
	if !dep.Enabled || dep.ScheduleID == 0 {
		return nil, nil
	}

	schedule, err := s.catalog.ScheduleByID(ctx, dep.ScheduleID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load schedule")
	}

	start, err := time.Parse(DateLayout, dep.StartDate)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "deployment has no valid start date")
	}

	if cached := s.cache.Get(ctx, deploymentID, asOf); cached != nil {
		s.recordCache("hit")
		return cached, nil
	}
	if s.cache == nil {
		s.recordCache("bypass")
	} else {
		s.recordCache("miss")
	}

	all, err := s.machines.Machines(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load machine population")
	}
	population := make([]facts.Machine, 0, len(all))
	for _, m := range all {
		if m.ProjectID == dep.ProjectID {
			population = append(population, m)
		}
	}

	timeline := ComputeTimeline(*dep, schedule, population, start, asOf)
	if timeline == nil {
		return nil, nil
	}
	span.SetAttributes(attribute.Int("rollout.horizon_days", len(timeline.XLabels)))
	s.cache.Set(ctx, deploymentID, asOf, timeline)

	if s.logger != nil {
		s.logger.Debug("rollout timeline computed",
			"deployment_id", int64(deploymentID),
			"schedule_id", int64(dep.ScheduleID),
			"population", len(population),
			"horizon_days", len(timeline.XLabels),
		)
	}
	return timeline, nil
}
