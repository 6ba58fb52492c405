package scope_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muster/internal/audit"
	"muster/internal/facts"
	"muster/internal/scope"
	id "muster/pkg/domain"
	dErrors "muster/pkg/domain-errors"
)

const (
	officeFact  id.FactID = 100
	branchFact  id.FactID = 101
	laptopFact  id.FactID = 102
	retiredFact id.FactID = 103
)

// Fleet: machines 1-3 in the office, 4-5 in the branch; 2 and 4 are
// laptops; 5 is decommissioned.
func fixtureStore() *facts.MemoryStore {
	store := facts.NewMemoryStore()
	store.PutMachine(facts.Machine{ID: 1, ProjectID: 1, Status: "active", FactIDs: []id.FactID{officeFact}})
	store.PutMachine(facts.Machine{ID: 2, ProjectID: 1, Status: "active", FactIDs: []id.FactID{officeFact, laptopFact}})
	store.PutMachine(facts.Machine{ID: 3, ProjectID: 2, Status: "active", FactIDs: []id.FactID{officeFact}})
	store.PutMachine(facts.Machine{ID: 4, ProjectID: 2, Status: "active", FactIDs: []id.FactID{branchFact, laptopFact}})
	store.PutMachine(facts.Machine{ID: 5, ProjectID: 2, Status: "decommissioned", FactIDs: []id.FactID{branchFact, retiredFact}})
	return store
}

func fixtureCatalog() *scope.MemoryCatalog {
	catalog := scope.NewMemoryCatalog()
	catalog.PutDomain(scope.Domain{
		ID: 1, Name: "office",
		IncludedFactIDs: []id.FactID{officeFact},
		TagFactIDs:      []id.FactID{laptopFact},
	})
	catalog.PutDomain(scope.Domain{
		ID: 2, Name: "branch",
		IncludedFactIDs: []id.FactID{branchFact},
	})
	catalog.PutScope(scope.Scope{
		ID: 1, Name: "laptops",
		IncludedFactIDs: []id.FactID{laptopFact},
	})
	catalog.PutScope(scope.Scope{
		ID: 2, Name: "office minus laptops",
		IncludedFactIDs: []id.FactID{officeFact},
		ExcludedFactIDs: []id.FactID{laptopFact},
	})
	return catalog
}

func newResolver(t *testing.T, opts ...scope.Option) *scope.Resolver {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]scope.Option{scope.WithLogger(logger)}, opts...)
	r, err := scope.NewResolver(fixtureCatalog(), fixtureStore(), opts...)
	require.NoError(t, err)
	return r
}

func TestVisibleMachineIDs(t *testing.T) {
	ctx := context.Background()
	r := newResolver(t)

	t.Run("no preference sees everything", func(t *testing.T) {
		v, err := r.VisibleMachineIDs(ctx, scope.Preference{})
		require.NoError(t, err)
		assert.True(t, v.Unrestricted)
	})

	t.Run("domain only", func(t *testing.T) {
		v, err := r.VisibleMachineIDs(ctx, scope.Preference{DomainID: 1})
		require.NoError(t, err)
		assert.False(t, v.Unrestricted)
		assert.Equal(t, []id.MachineID{1, 2, 3}, v.MachineIDs)
	})

	t.Run("scope only", func(t *testing.T) {
		v, err := r.VisibleMachineIDs(ctx, scope.Preference{ScopeID: 1})
		require.NoError(t, err)
		assert.Equal(t, []id.MachineID{2, 4}, v.MachineIDs)
	})

	t.Run("domain and scope intersect, not union", func(t *testing.T) {
		v, err := r.VisibleMachineIDs(ctx, scope.Preference{DomainID: 1, ScopeID: 1})
		require.NoError(t, err)
		assert.Equal(t, []id.MachineID{2}, v.MachineIDs)
	})

	t.Run("scope exclusion removes members", func(t *testing.T) {
		v, err := r.VisibleMachineIDs(ctx, scope.Preference{ScopeID: 2})
		require.NoError(t, err)
		assert.Equal(t, []id.MachineID{1, 3}, v.MachineIDs)
	})

	t.Run("inactive machines never participate", func(t *testing.T) {
		v, err := r.VisibleMachineIDs(ctx, scope.Preference{DomainID: 2})
		require.NoError(t, err)
		// Machine 5 carries the branch fact but is decommissioned.
		assert.Equal(t, []id.MachineID{4}, v.MachineIDs)
	})

	t.Run("unknown domain is not found", func(t *testing.T) {
		_, err := r.VisibleMachineIDs(ctx, scope.Preference{DomainID: 99})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestVisibleFactAndProjectIDs(t *testing.T) {
	ctx := context.Background()
	r := newResolver(t)

	t.Run("facts are the union over visible machines", func(t *testing.T) {
		factIDs, err := r.VisibleFactIDs(ctx, scope.Preference{DomainID: 1})
		require.NoError(t, err)
		assert.Equal(t, []id.FactID{officeFact, laptopFact}, factIDs)
	})

	t.Run("projects are distinct", func(t *testing.T) {
		projectIDs, err := r.VisibleProjectIDs(ctx, scope.Preference{DomainID: 1})
		require.NoError(t, err)
		assert.Equal(t, []id.ProjectID{1, 2}, projectIDs)
	})
}

func TestDomainTags(t *testing.T) {
	ctx := context.Background()
	r := newResolver(t)

	tags, err := r.DomainTags(ctx, scope.Preference{DomainID: 1})
	require.NoError(t, err)
	assert.Equal(t, []id.FactID{laptopFact}, tags)

	tags, err = r.DomainTags(ctx, scope.Preference{})
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestAssertVisible(t *testing.T) {
	ctx := context.Background()
	sink := audit.NewMemorySink()
	r := newResolver(t, scope.WithAuditPublisher(sink))

	t.Run("unrestricted always passes", func(t *testing.T) {
		assert.NoError(t, r.AssertVisible(ctx, scope.Preference{}, 5))
	})

	t.Run("visible machine passes", func(t *testing.T) {
		assert.NoError(t, r.AssertVisible(ctx, scope.Preference{DomainID: 1}, 2))
	})

	t.Run("hidden machine is forbidden and audited", func(t *testing.T) {
		err := r.AssertVisible(ctx, scope.Preference{DomainID: 1}, 4)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

		events := sink.Events()
		require.NotEmpty(t, events)
		last := events[len(events)-1]
		assert.Equal(t, audit.CategorySecurity, last.Category)
		assert.Equal(t, "visibility_denied", last.Action)
		assert.Equal(t, id.MachineID(4), last.MachineID)
	})

	t.Run("empty restriction restricts nothing", func(t *testing.T) {
		// A scope whose include list matches no machine resolves to an
		// empty set, which does not block access.
		catalog := fixtureCatalog()
		catalog.PutScope(scope.Scope{ID: 3, Name: "vacant", IncludedFactIDs: []id.FactID{999}})
		empty, err := scope.NewResolver(catalog, fixtureStore())
		require.NoError(t, err)
		assert.NoError(t, empty.AssertVisible(ctx, scope.Preference{ScopeID: 3}, 1))
	})
}

func TestVisibilityJSON(t *testing.T) {
	t.Run("unrestricted marshals to the sentinel", func(t *testing.T) {
		raw, err := json.Marshal(scope.Visibility{Unrestricted: true})
		require.NoError(t, err)
		assert.JSONEq(t, `"*"`, string(raw))
	})

	t.Run("restricted marshals to the id array", func(t *testing.T) {
		raw, err := json.Marshal(scope.Visibility{MachineIDs: []id.MachineID{1, 2}})
		require.NoError(t, err)
		assert.JSONEq(t, `[1,2]`, string(raw))
	})

	t.Run("round trip", func(t *testing.T) {
		var v scope.Visibility
		require.NoError(t, json.Unmarshal([]byte(`"*"`), &v))
		assert.True(t, v.Unrestricted)
		require.NoError(t, json.Unmarshal([]byte(`[3,4]`), &v))
		assert.Equal(t, []id.MachineID{3, 4}, v.MachineIDs)
	})
}
