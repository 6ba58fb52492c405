package factset

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"muster/internal/facts"
	"muster/internal/targeting"
	id "muster/pkg/domain"
	dErrors "muster/pkg/domain-errors"
	"muster/pkg/platform/sentinel"
)

// Resolver derives fact-set membership for machines and guards every
// fact-set mutation against reference cycles.
//
// The cycle check and the commit form one atomic unit: all mutations
// serialize on a single writer mutex so two concurrent edits cannot each
// pass the check and together admit a cycle.
type Resolver struct {
	sets   Store
	facts  facts.Store
	logger *slog.Logger

	// mu serializes mutations (check-then-act on the reference graph).
	// Derivation reads a consistent snapshot and does not take it.
	mu sync.Mutex
}

// Option configures the resolver.
type Option func(*Resolver)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// NewResolver constructs the fact-set resolver.
func NewResolver(sets Store, factStore facts.Store, opts ...Option) (*Resolver, error) {
	if sets == nil {
		return nil, errors.New("fact-set store is required")
	}
	if factStore == nil {
		return nil, errors.New("fact store is required")
	}
	r := &Resolver{sets: sets, facts: factStore}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// snapshot loads the enabled fact-sets, the facts their predicates mention,
// and the reserved SET category.
func (r *Resolver) snapshot(ctx context.Context) ([]FactSet, map[id.FactID]*facts.Fact, id.CategoryID, error) {
	all, err := r.sets.FactSets(ctx)
	if err != nil {
		return nil, nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "load fact-sets")
	}
	var enabled []FactSet
	var referenced []id.FactID
	for _, set := range all {
		if !set.Enabled {
			continue
		}
		enabled = append(enabled, set)
		referenced = append(referenced, set.references()...)
	}

	factsByID, err := r.facts.FactsByIDs(ctx, referenced)
	if err != nil {
		return nil, nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "load referenced facts")
	}

	setCategory, err := r.facts.CategoryByName(ctx, id.SetCategoryName)
	if err != nil {
		return nil, nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "load SET category")
	}
	return enabled, factsByID, setCategory.ID, nil
}

// sortedEnabled returns the enabled fact-sets in dependency order.
func (r *Resolver) sortedEnabled(ctx context.Context) ([]FactSet, error) {
	enabled, factsByID, setCategoryID, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	order, err := BuildGraph(enabled, factsByID, setCategoryID).TopoSort()
	if err != nil {
		// A committed cycle should be unreachable given the mutation
		// guard; refuse to derive rather than guess an order.
		return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "fact-set graph is cyclic")
	}

	byID := make(map[id.FactSetID]FactSet, len(enabled))
	for _, set := range enabled {
		byID[set.ID] = set
	}
	sorted := make([]FactSet, 0, len(order))
	for _, setID := range order {
		sorted = append(sorted, byID[setID])
	}
	return sorted, nil
}

// DeriveSets runs one forward-chaining sweep over the enabled fact-sets in
// dependency order. Each matched set's companion fact joins the working
// collection before later sets evaluate, so a set can depend on a set
// evaluated earlier in the same pass. Returns the synthesized fact IDs in
// evaluation order.
//
// This is deliberately a single pass over a DAG, not a fixed-point
// iteration: a set referencing a set sorted after it does not see that
// set's companion fact.
func (r *Resolver) DeriveSets(ctx context.Context, seed []id.FactID) ([]id.FactID, error) {
	sorted, err := r.sortedEnabled(ctx)
	if err != nil {
		return nil, err
	}

	working := targeting.NewFactSet(seed)
	derived := make([]id.FactID, 0, len(sorted))
	for _, set := range sorted {
		if !targeting.Eligible(working, set.IncludedFactIDs, set.ExcludedFactIDs) {
			continue
		}
		if working.Contains(set.CompanionFactID) {
			continue
		}
		working.Add(set.CompanionFactID)
		derived = append(derived, set.CompanionFactID)
	}
	return derived, nil
}

// DeriveForMachine loads the machine's synchronized facts and derives its
// fact-set memberships.
func (r *Resolver) DeriveForMachine(ctx context.Context, machineID id.MachineID) ([]id.FactID, error) {
	seed, err := r.facts.MachineFacts(ctx, machineID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "machine not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load machine facts")
	}
	return r.DeriveSets(ctx, seed)
}

// checkAcyclic verifies that the enabled graph stays a DAG when proposed
// replaces (or joins) the current definitions. Caller must hold mu.
func (r *Resolver) checkAcyclic(ctx context.Context, proposed FactSet) error {
	enabled, factsByID, setCategoryID, err := r.snapshot(ctx)
	if err != nil {
		return err
	}

	speculative := make([]FactSet, 0, len(enabled)+1)
	for _, set := range enabled {
		if set.ID == proposed.ID {
			continue
		}
		speculative = append(speculative, set)
	}
	if proposed.Enabled {
		speculative = append(speculative, proposed)
	}

	// The proposed predicates may reference facts the committed sets do
	// not; fetch any that are missing from the snapshot.
	var missing []id.FactID
	for _, factID := range proposed.references() {
		if _, ok := factsByID[factID]; !ok {
			missing = append(missing, factID)
		}
	}
	if len(missing) > 0 {
		extra, err := r.facts.FactsByIDs(ctx, missing)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "load proposed facts")
		}
		for factID, fact := range extra {
			factsByID[factID] = fact
		}
	}

	if _, err := BuildGraph(speculative, factsByID, setCategoryID).TopoSort(); err != nil {
		var cycle *CycleError
		if errors.As(err, &cycle) {
			return dErrors.Wrap(cycle, dErrors.CodeInvariantViolation,
				"mutation would create a fact-set cycle")
		}
		return err
	}
	return nil
}
