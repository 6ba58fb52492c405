package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"muster/internal/audit"
	"muster/internal/policy/metrics"
	"muster/internal/targeting"
	id "muster/pkg/domain"
	dErrors "muster/pkg/domain-errors"
	"muster/pkg/platform/sentinel"
)

const gatherTimeout = 5 * time.Second

// Service orchestrates policy resolution for a machine check-in: gather the
// machine's synchronized state, derive its fact-set memberships, evaluate
// the enabled policies.
type Service struct {
	catalog Catalog
	facts   FactSource
	deriver Deriver

	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor audit.Publisher
	tracer  trace.Tracer
}

// Option configures the service.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAuditPublisher attaches an audit sink.
func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

// NewService constructs the policy resolution service.
func NewService(catalog Catalog, facts FactSource, deriver Deriver, opts ...Option) (*Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("policy catalog is required")
	}
	if facts == nil {
		return nil, fmt.Errorf("fact source is required")
	}
	if deriver == nil {
		return nil, fmt.Errorf("deriver is required")
	}
	svc := &Service{
		catalog: catalog,
		facts:   facts,
		deriver: deriver,
		tracer:  otel.Tracer("muster/policy"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// machineState is the gathered input to one resolution.
type machineState struct {
	factIDs   []id.FactID
	projectID id.ProjectID
}

// gather fetches the machine's facts and project in parallel with shared
// cancellation.
func (s *Service) gather(ctx context.Context, machineID id.MachineID) (*machineState, error) {
	ctx, cancel := context.WithTimeout(ctx, gatherTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	state := &machineState{}

	g.Go(func() error {
		start := time.Now()
		factIDs, err := s.facts.MachineFacts(ctx, machineID)
		s.metrics.ObserveGatherLatency("facts", time.Since(start))
		if err != nil {
			return err
		}
		state.factIDs = factIDs
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		projectID, err := s.facts.MachineProject(ctx, machineID)
		s.metrics.ObserveGatherLatency("project", time.Since(start))
		if err != nil {
			return err
		}
		state.projectID = projectID
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "machine not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "gather machine state")
	}
	return state, nil
}

// ResolveMachine computes the install and remove lists for a machine from
// its synchronized facts plus derived fact-set facts.
func (s *Service) ResolveMachine(ctx context.Context, machineID id.MachineID) (*Resolution, error) {
	ctx, span := s.tracer.Start(ctx, "policy.ResolveMachine",
		trace.WithAttributes(attribute.Int64("machine.id", int64(machineID))))
	defer span.End()
	start := time.Now()

	state, err := s.gather(ctx, machineID)
	if err != nil {
		s.metrics.IncrementResolutions("error")
		return nil, err
	}

	derived, err := s.deriver.DeriveSets(ctx, state.factIDs)
	if err != nil {
		s.metrics.IncrementResolutions("error")
		return nil, err
	}

	policies, err := s.catalog.EnabledPolicies(ctx)
	if err != nil {
		s.metrics.IncrementResolutions("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load policies")
	}

	machineFacts := targeting.NewFactSet(append(state.factIDs, derived...))
	resolution := Resolve(machineFacts, state.projectID, policies)

	outcome := "assigned"
	if len(resolution.Install) == 0 && len(resolution.Remove) == 0 {
		outcome = "empty"
	}
	s.metrics.IncrementResolutions(outcome)
	s.metrics.ObserveResolveLatency(time.Since(start))
	span.SetAttributes(
		attribute.Int("policy.install_count", len(resolution.Install)),
		attribute.Int("policy.remove_count", len(resolution.Remove)),
	)

	audit.Emit(ctx, s.auditor, audit.Event{
		Category:  audit.CategoryOperations,
		MachineID: machineID,
		Action:    "policy_resolved",
		Detail:    fmt.Sprintf("install=%d remove=%d", len(resolution.Install), len(resolution.Remove)),
	})
	if s.logger != nil {
		s.logger.Debug("policy resolution complete",
			"machine_id", int64(machineID),
			"install", len(resolution.Install),
			"remove", len(resolution.Remove),
		)
	}
	return &resolution, nil
}
