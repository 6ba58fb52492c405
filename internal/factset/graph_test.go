package factset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muster/internal/facts"
	id "muster/pkg/domain"
)

func TestTopoSort_OrdersDependenciesFirst(t *testing.T) {
	g := NewGraph()
	g.AddNode(1, "laptops")
	g.AddNode(2, "eu-laptops")
	g.AddNode(3, "eu-dev-laptops")
	// eu-dev-laptops -> eu-laptops -> laptops
	g.AddEdge(3, 2)
	g.AddEdge(2, 1)

	order, err := g.TopoSort()
	require.NoError(t, err)
	assert.Equal(t, []id.FactSetID{1, 2, 3}, order)
}

func TestTopoSort_IsDeterministic(t *testing.T) {
	build := func() *Graph {
		g := NewGraph()
		g.AddNode(4, "delta")
		g.AddNode(2, "bravo")
		g.AddNode(1, "alpha")
		g.AddNode(3, "charlie")
		g.AddEdge(3, 1)
		return g
	}

	first, err := build().TopoSort()
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := build().TopoSort()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	// Independent nodes come out in name order.
	assert.Equal(t, []id.FactSetID{1, 2, 4, 3}, first)
}

func TestTopoSort_ReportsCycleMembers(t *testing.T) {
	g := NewGraph()
	g.AddNode(1, "alpha")
	g.AddNode(2, "bravo")
	g.AddNode(3, "standalone")
	g.AddEdge(1, 2)
	g.AddEdge(2, 1)

	_, err := g.TopoSort()
	require.Error(t, err)
	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"alpha", "bravo"}, cycle.Names)
	assert.Contains(t, cycle.Error(), "alpha, bravo")
}

func TestBuildGraph_SkipsSelfAndUniversal(t *testing.T) {
	const setCategory id.CategoryID = 1
	factsByID := map[id.FactID]*facts.Fact{
		id.UniversalFactID: {ID: id.UniversalFactID, CategoryID: setCategory, Value: id.UniversalFactValue},
		20:                 {ID: 20, CategoryID: setCategory, Value: "alpha"},
		21:                 {ID: 21, CategoryID: setCategory, Value: "bravo"},
		30:                 {ID: 30, CategoryID: 2, Value: "alpha"}, // not a SET fact
	}
	sets := []FactSet{
		{ID: 1, Name: "alpha", Enabled: true, IncludedFactIDs: []id.FactID{id.UniversalFactID, 20, 30}},
		{ID: 2, Name: "bravo", Enabled: true, IncludedFactIDs: []id.FactID{20}, ExcludedFactIDs: []id.FactID{21}},
	}

	g := BuildGraph(sets, factsByID, setCategory)
	order, err := g.TopoSort()
	require.NoError(t, err)
	// alpha references itself (skipped) and the universal fact (skipped);
	// bravo references alpha via fact 20 and itself via fact 21 (skipped).
	assert.Equal(t, []id.FactSetID{1, 2}, order)
}
