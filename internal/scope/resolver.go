package scope

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"muster/internal/audit"
	"muster/internal/facts"
	platmetrics "muster/internal/platform/metrics"
	id "muster/pkg/domain"
	dErrors "muster/pkg/domain-errors"
	"muster/pkg/platform/sentinel"
	"muster/pkg/requestcontext"
)

// PopulationSource provides the machine inventory visibility is computed
// over.
type PopulationSource interface {
	Machines(ctx context.Context) ([]facts.Machine, error)
}

// Resolver answers visibility questions for an operator preference.
type Resolver struct {
	catalog  Catalog
	machines PopulationSource

	activeStatuses []string
	logger         *slog.Logger
	metrics        *platmetrics.Metrics
	auditor        audit.Publisher
}

// Option configures the resolver.
type Option func(*Resolver)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithMetrics attaches the server-wide metrics.
func WithMetrics(m *platmetrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithAuditPublisher attaches an audit sink for visibility violations.
func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(r *Resolver) { r.auditor = publisher }
}

// WithActiveStatuses overrides the machine statuses that participate in
// visibility sets.
func WithActiveStatuses(statuses []string) Option {
	return func(r *Resolver) {
		if len(statuses) > 0 {
			r.activeStatuses = statuses
		}
	}
}

// NewResolver constructs the scope resolver.
func NewResolver(catalog Catalog, machines PopulationSource, opts ...Option) (*Resolver, error) {
	if catalog == nil {
		return nil, fmt.Errorf("scope catalog is required")
	}
	if machines == nil {
		return nil, fmt.Errorf("population source is required")
	}
	r := &Resolver{
		catalog:        catalog,
		machines:       machines,
		activeStatuses: []string{"active", "provisioned"},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Resolver) isActive(status string) bool {
	for _, s := range r.activeStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// memberSet collects the active machines carrying an included fact, minus
// those carrying an excluded fact.
func (r *Resolver) memberSet(population []facts.Machine, included, excluded []id.FactID) map[id.MachineID]struct{} {
	members := make(map[id.MachineID]struct{})
	for _, m := range population {
		if !r.isActive(m.Status) {
			continue
		}
		if !m.CarriesAny(included) {
			continue
		}
		if m.CarriesAny(excluded) {
			continue
		}
		members[m.ID] = struct{}{}
	}
	return members
}

// VisibleMachineIDs resolves a preference into a machine visibility set.
// An operator with neither a domain nor a scope selected sees everything.
// With both selected, visibility is the intersection of the two sets.
func (r *Resolver) VisibleMachineIDs(ctx context.Context, pref Preference) (Visibility, error) {
	if pref.DomainID == 0 && pref.ScopeID == 0 {
		return Visibility{Unrestricted: true}, nil
	}

	population, err := r.machines.Machines(ctx)
	if err != nil {
		return Visibility{}, dErrors.Wrap(err, dErrors.CodeInternal, "load machine population")
	}

	var domainSet, scopeSet map[id.MachineID]struct{}
	if pref.DomainID != 0 {
		domain, err := r.catalog.DomainByID(ctx, pref.DomainID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return Visibility{}, dErrors.New(dErrors.CodeNotFound, "domain not found")
			}
			return Visibility{}, dErrors.Wrap(err, dErrors.CodeInternal, "load domain")
		}
		domainSet = r.memberSet(population, domain.IncludedFactIDs, domain.ExcludedFactIDs)
	}
	if pref.ScopeID != 0 {
		selected, err := r.catalog.ScopeByID(ctx, pref.ScopeID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return Visibility{}, dErrors.New(dErrors.CodeNotFound, "scope not found")
			}
			return Visibility{}, dErrors.Wrap(err, dErrors.CodeInternal, "load scope")
		}
		scopeSet = r.memberSet(population, selected.IncludedFactIDs, selected.ExcludedFactIDs)
	}

	switch {
	case domainSet != nil && scopeSet != nil:
		intersection := make(map[id.MachineID]struct{})
		for machineID := range domainSet {
			if _, ok := scopeSet[machineID]; ok {
				intersection[machineID] = struct{}{}
			}
		}
		return restrict(intersection), nil
	case domainSet != nil:
		return restrict(domainSet), nil
	default:
		return restrict(scopeSet), nil
	}
}

// VisibleFactIDs returns the distinct facts carried by the operator's
// visible machines, ascending.
func (r *Resolver) VisibleFactIDs(ctx context.Context, pref Preference) ([]id.FactID, error) {
	visibility, err := r.VisibleMachineIDs(ctx, pref)
	if err != nil {
		return nil, err
	}
	population, err := r.machines.Machines(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load machine population")
	}

	seen := make(map[id.FactID]struct{})
	for _, m := range population {
		if !visibility.Contains(m.ID) {
			continue
		}
		for _, factID := range m.FactIDs {
			seen[factID] = struct{}{}
		}
	}
	ordered := make([]id.FactID, 0, len(seen))
	for factID := range seen {
		ordered = append(ordered, factID)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	return ordered, nil
}

// VisibleProjectIDs returns the distinct projects of the operator's
// visible machines, ascending.
func (r *Resolver) VisibleProjectIDs(ctx context.Context, pref Preference) ([]id.ProjectID, error) {
	visibility, err := r.VisibleMachineIDs(ctx, pref)
	if err != nil {
		return nil, err
	}
	population, err := r.machines.Machines(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load machine population")
	}

	seen := make(map[id.ProjectID]struct{})
	for _, m := range population {
		if visibility.Contains(m.ID) {
			seen[m.ProjectID] = struct{}{}
		}
	}
	ordered := make([]id.ProjectID, 0, len(seen))
	for projectID := range seen {
		ordered = append(ordered, projectID)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	return ordered, nil
}

// DomainTags returns the facts attached directly to the preferred domain.
// These widen visibility independently of machine membership.
func (r *Resolver) DomainTags(ctx context.Context, pref Preference) ([]id.FactID, error) {
	if pref.DomainID == 0 {
		return nil, nil
	}
	domain, err := r.catalog.DomainByID(ctx, pref.DomainID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "domain not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load domain")
	}
	return append([]id.FactID{}, domain.TagFactIDs...), nil
}

// AssertVisible rejects access to a machine outside the operator's
// visibility. An unrestricted operator always passes; a restriction that
// resolved to no machines at all restricts nothing.
func (r *Resolver) AssertVisible(ctx context.Context, pref Preference, machineID id.MachineID) error {
	visibility, err := r.VisibleMachineIDs(ctx, pref)
	if err != nil {
		return err
	}
	if visibility.Unrestricted || len(visibility.MachineIDs) == 0 || visibility.Contains(machineID) {
		return nil
	}

	if r.metrics != nil {
		r.metrics.ScopeDenials.Inc()
	}
	audit.Emit(ctx, r.auditor, audit.Event{
		Category:   audit.CategorySecurity,
		OperatorID: requestcontext.OperatorID(ctx),
		MachineID:  machineID,
		Action:     "visibility_denied",
		Detail:     fmt.Sprintf("domain=%d scope=%d", int64(pref.DomainID), int64(pref.ScopeID)),
	})
	if r.logger != nil {
		r.logger.WarnContext(ctx, "visibility assertion rejected",
			"machine_id", int64(machineID),
			"domain_id", int64(pref.DomainID),
			"scope_id", int64(pref.ScopeID),
		)
	}
	return dErrors.New(dErrors.CodeForbidden, "machine is outside the operator's visibility")
}
