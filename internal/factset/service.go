package factset

import (
	"context"
	"errors"
	"strings"

	"muster/internal/facts"
	id "muster/pkg/domain"
	dErrors "muster/pkg/domain-errors"
	"muster/pkg/platform/sentinel"
)

// Lifecycle mutations. Every write path runs under the resolver's writer
// mutex so the cycle check and the commit are atomic, and every write keeps
// the set and its companion SET fact in sync.

// CreateParams describes a new fact-set.
type CreateParams struct {
	Name            string
	Enabled         bool
	IncludedFactIDs []id.FactID
	ExcludedFactIDs []id.FactID
}

// Create registers a fact-set together with its companion fact. The
// proposed references are rejected if they would close a cycle.
func (r *Resolver) Create(ctx context.Context, params CreateParams) (*FactSet, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "fact-set name must not be empty")
	}
	if name == id.UniversalFactValue {
		return nil, dErrors.New(dErrors.CodeValidation, "fact-set name is reserved")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.sets.FactSetByName(ctx, name); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "fact-set name already in use")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "check fact-set name")
	}

	proposed := FactSet{
		Name:            name,
		Enabled:         params.Enabled,
		IncludedFactIDs: params.IncludedFactIDs,
		ExcludedFactIDs: params.ExcludedFactIDs,
	}
	if err := r.checkAcyclic(ctx, proposed); err != nil {
		return nil, err
	}

	setCategory, err := r.facts.CategoryByName(ctx, id.SetCategoryName)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load SET category")
	}
	companion, err := r.facts.FindOrCreateFact(ctx, &facts.Fact{
		CategoryID: setCategory.ID,
		Value:      name,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create companion fact")
	}
	proposed.CompanionFactID = companion.ID

	created, err := r.sets.CreateFactSet(ctx, &proposed)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create fact-set")
	}
	if r.logger != nil {
		r.logger.Info("fact-set created", "name", name, "fact_set_id", int64(created.ID))
	}
	return created, nil
}

// UpdateReferences replaces a fact-set's include/exclude lists. The new
// references are speculatively inserted into the graph and rejected with
// the unresolved cycle members if the sort fails; no partial state commits.
func (r *Resolver) UpdateReferences(ctx context.Context, setID id.FactSetID, included, excluded []id.FactID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.sets.FactSetByID(ctx, setID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "fact-set not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "load fact-set")
	}

	proposed := *current
	proposed.IncludedFactIDs = included
	proposed.ExcludedFactIDs = excluded
	if err := r.checkAcyclic(ctx, proposed); err != nil {
		return err
	}

	if err := r.sets.UpdateFactSet(ctx, &proposed); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update fact-set")
	}
	return nil
}

// SetEnabled enables or disables a fact-set. Re-enabling re-checks the
// graph: the set's references re-enter it.
func (r *Resolver) SetEnabled(ctx context.Context, setID id.FactSetID, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.sets.FactSetByID(ctx, setID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "fact-set not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "load fact-set")
	}

	proposed := *current
	proposed.Enabled = enabled
	if enabled {
		if err := r.checkAcyclic(ctx, proposed); err != nil {
			return err
		}
	}
	if err := r.sets.UpdateFactSet(ctx, &proposed); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update fact-set")
	}
	return nil
}

// Rename changes a fact-set's name and renames the companion fact with it.
func (r *Resolver) Rename(ctx context.Context, setID id.FactSetID, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return dErrors.New(dErrors.CodeValidation, "fact-set name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.sets.FactSetByID(ctx, setID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "fact-set not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "load fact-set")
	}
	if current.Name == newName {
		return nil
	}
	if _, err := r.sets.FactSetByName(ctx, newName); err == nil {
		return dErrors.New(dErrors.CodeConflict, "fact-set name already in use")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "check fact-set name")
	}

	companion, err := r.facts.FactByID(ctx, current.CompanionFactID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "load companion fact")
	}
	if err := r.facts.UpdateFact(ctx, companion.ID, newName, companion.Description); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "rename companion fact")
	}

	renamed := *current
	renamed.Name = newName
	if err := r.sets.UpdateFactSet(ctx, &renamed); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "rename fact-set")
	}
	return nil
}

// Delete removes a fact-set and its companion fact. This is the only
// sanctioned path that deletes a SET fact.
func (r *Resolver) Delete(ctx context.Context, setID id.FactSetID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.sets.FactSetByID(ctx, setID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "fact-set not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "load fact-set")
	}

	if err := r.sets.DeleteFactSet(ctx, setID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete fact-set")
	}
	if err := r.facts.DeleteFact(ctx, current.CompanionFactID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete companion fact")
	}
	if r.logger != nil {
		r.logger.Info("fact-set deleted", "name", current.Name, "fact_set_id", int64(setID))
	}
	return nil
}
