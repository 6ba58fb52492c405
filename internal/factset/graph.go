package factset

import (
	"sort"
	"strings"

	"muster/internal/facts"
	id "muster/pkg/domain"
)

// Graph is the explicit dependency graph over fact-sets: an edge A -> B
// means A's predicates reference B's companion fact, so B must be evaluated
// before A in a derivation pass.
type Graph struct {
	names map[id.FactSetID]string
	edges map[id.FactSetID]map[id.FactSetID]struct{}
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		names: make(map[id.FactSetID]string),
		edges: make(map[id.FactSetID]map[id.FactSetID]struct{}),
	}
}

// AddNode registers a fact-set vertex.
func (g *Graph) AddNode(setID id.FactSetID, name string) {
	g.names[setID] = name
	if g.edges[setID] == nil {
		g.edges[setID] = make(map[id.FactSetID]struct{})
	}
}

// AddEdge records that from depends on to. Self-edges are ignored.
func (g *Graph) AddEdge(from, to id.FactSetID) {
	if from == to {
		return
	}
	if g.edges[from] == nil {
		g.edges[from] = make(map[id.FactSetID]struct{})
	}
	g.edges[from][to] = struct{}{}
}

// BuildGraph scans every enabled fact-set's predicates for SET-category
// facts naming another enabled set and records the resulting edges. The
// universal fact and references to the set's own name are skipped.
func BuildGraph(sets []FactSet, factsByID map[id.FactID]*facts.Fact, setCategoryID id.CategoryID) *Graph {
	graph := NewGraph()

	byName := make(map[string]id.FactSetID, len(sets))
	for _, set := range sets {
		graph.AddNode(set.ID, set.Name)
		byName[set.Name] = set.ID
	}

	for _, set := range sets {
		for _, factID := range set.references() {
			if factID == id.UniversalFactID {
				continue
			}
			fact, ok := factsByID[factID]
			if !ok || fact.CategoryID != setCategoryID {
				continue
			}
			referenced, ok := byName[fact.Value]
			if !ok {
				continue
			}
			graph.AddEdge(set.ID, referenced)
		}
	}
	return graph
}

// CycleError reports a dependency cycle. Names holds the fact-set names left
// unresolved by the topological sort, in ascending name order.
type CycleError struct {
	Names []string
}

func (e *CycleError) Error() string {
	return "fact-set reference cycle among: " + strings.Join(e.Names, ", ")
}

// TopoSort orders the graph dependencies-first (a set appears after every
// set it references). Ties break by name so the order is deterministic
// regardless of map iteration. Returns a CycleError naming the unresolved
// remainder when the graph is cyclic.
func (g *Graph) TopoSort() ([]id.FactSetID, error) {
	indegree := make(map[id.FactSetID]int, len(g.names))
	dependents := make(map[id.FactSetID][]id.FactSetID, len(g.names))
	for setID := range g.names {
		indegree[setID] = 0
	}
	for from, tos := range g.edges {
		for to := range tos {
			indegree[from]++
			dependents[to] = append(dependents[to], from)
		}
	}

	ready := make([]id.FactSetID, 0, len(g.names))
	for setID, deg := range indegree {
		if deg == 0 {
			ready = append(ready, setID)
		}
	}
	g.sortByName(ready)

	order := make([]id.FactSetID, 0, len(g.names))
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		released := make([]id.FactSetID, 0, len(dependents[next]))
		for _, dependent := range dependents[next] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				released = append(released, dependent)
			}
		}
		g.sortByName(released)
		ready = append(ready, released...)
	}

	if len(order) < len(g.names) {
		resolved := make(map[id.FactSetID]struct{}, len(order))
		for _, setID := range order {
			resolved[setID] = struct{}{}
		}
		var unresolved []string
		for setID, name := range g.names {
			if _, ok := resolved[setID]; !ok {
				unresolved = append(unresolved, name)
			}
		}
		sort.Strings(unresolved)
		return nil, &CycleError{Names: unresolved}
	}
	return order, nil
}

func (g *Graph) sortByName(setIDs []id.FactSetID) {
	sort.Slice(setIDs, func(i, j int) bool {
		ni, nj := g.names[setIDs[i]], g.names[setIDs[j]]
		if ni == nj {
			return setIDs[i] < setIDs[j]
		}
		return ni < nj
	})
}
