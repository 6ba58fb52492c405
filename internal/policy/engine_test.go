package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muster/internal/targeting"
	id "muster/pkg/domain"
)

const (
	laptopFact  id.FactID = 10
	serverFact  id.FactID = 11
	devFact     id.FactID = 12
	legacyFact  id.FactID = 13
	projectMain id.ProjectID = 1
	projectAlt  id.ProjectID = 2
)

func app(name, pkgs string) Application {
	return Application{
		Name:              name,
		PackagesByProject: map[id.ProjectID]string{projectMain: pkgs},
	}
}

func installed(res Resolution) []string {
	out := make([]string, 0, len(res.Install))
	for _, a := range res.Install {
		out = append(out, a.Package)
	}
	return out
}

func removed(res Resolution) []string {
	out := make([]string, 0, len(res.Remove))
	for _, a := range res.Remove {
		out = append(out, a.Package)
	}
	return out
}

func TestResolve_FirstMatchingGroupWins(t *testing.T) {
	p := Policy{
		ID:              1,
		Name:            "editors",
		Enabled:         true,
		IncludedFactIDs: []id.FactID{id.UniversalFactID},
		Groups: []Group{
			{ID: 2, Priority: 20, IncludedFactIDs: []id.FactID{id.UniversalFactID},
				Applications: []Application{app("vim", "vim=2:9.0")}},
			{ID: 1, Priority: 10, IncludedFactIDs: []id.FactID{devFact},
				Applications: []Application{app("emacs", "emacs=1:28.2")}},
		},
	}

	t.Run("lower priority evaluated first", func(t *testing.T) {
		machine := targeting.NewFactSet([]id.FactID{devFact})
		res := Resolve(machine, projectMain, []Policy{p})
		assert.Equal(t, []string{"emacs=1:28.2"}, installed(res))
	})

	t.Run("falls through to the catch-all group", func(t *testing.T) {
		machine := targeting.NewFactSet([]id.FactID{laptopFact})
		res := Resolve(machine, projectMain, []Policy{p})
		assert.Equal(t, []string{"vim=2:9.0"}, installed(res))
	})
}

func TestResolve_TopLevelPredicateGatesGroups(t *testing.T) {
	p := Policy{
		ID:              1,
		Name:            "server-tools",
		Enabled:         true,
		IncludedFactIDs: []id.FactID{serverFact},
		Groups: []Group{
			{ID: 1, Priority: 10, IncludedFactIDs: []id.FactID{id.UniversalFactID},
				Applications: []Application{app("htop", "htop=3.2")}},
		},
	}

	machine := targeting.NewFactSet([]id.FactID{laptopFact})
	res := Resolve(machine, projectMain, []Policy{p})
	assert.Empty(t, res.Install)
	assert.Empty(t, res.Remove)
}

func TestResolve_MatchedPolicyNoMatchingGroup(t *testing.T) {
	p := Policy{
		ID:              1,
		Name:            "narrow",
		Enabled:         true,
		Exclusive:       true,
		IncludedFactIDs: []id.FactID{id.UniversalFactID},
		Groups: []Group{
			{ID: 1, Priority: 10, IncludedFactIDs: []id.FactID{devFact},
				Applications: []Application{app("gdb", "gdb=13.1")}},
		},
	}

	// No eligible group: no installs, and crucially no removals either,
	// even for an exclusive policy.
	machine := targeting.NewFactSet([]id.FactID{laptopFact})
	res := Resolve(machine, projectMain, []Policy{p})
	assert.Empty(t, res.Install)
	assert.Empty(t, res.Remove)
}

func TestResolve_ExclusiveRemovesOtherGroups(t *testing.T) {
	p := Policy{
		ID:              7,
		Name:            "browser",
		Enabled:         true,
		Exclusive:       true,
		IncludedFactIDs: []id.FactID{id.UniversalFactID},
		Groups: []Group{
			{ID: 1, Priority: 10, IncludedFactIDs: []id.FactID{devFact},
				Applications: []Application{app("firefox-beta", "firefox-beta=121.0b9")}},
			{ID: 2, Priority: 20, IncludedFactIDs: []id.FactID{id.UniversalFactID},
				Applications: []Application{app("firefox", "firefox=120.0")}},
			{ID: 3, Priority: 30, IncludedFactIDs: []id.FactID{legacyFact},
				Applications: []Application{app("firefox-esr", "firefox-esr=115.6")}},
		},
	}

	machine := targeting.NewFactSet([]id.FactID{devFact})
	res := Resolve(machine, projectMain, []Policy{p})

	assert.Equal(t, []string{"firefox-beta=121.0b9"}, installed(res))
	// Every non-matched group's packages become removal candidates,
	// including groups whose own predicate would not have matched.
	assert.ElementsMatch(t, []string{"firefox=120.0", "firefox-esr=115.6"}, removed(res))
	for _, rm := range res.Remove {
		assert.Equal(t, id.PolicyID(7), rm.RuleID)
		assert.Equal(t, "browser", rm.RuleName)
	}
}

func TestResolve_NonExclusiveNeverRemoves(t *testing.T) {
	p := Policy{
		ID:              1,
		Name:            "shells",
		Enabled:         true,
		IncludedFactIDs: []id.FactID{id.UniversalFactID},
		Groups: []Group{
			{ID: 1, Priority: 10, IncludedFactIDs: []id.FactID{devFact},
				Applications: []Application{app("zsh", "zsh=5.9")}},
			{ID: 2, Priority: 20, IncludedFactIDs: []id.FactID{id.UniversalFactID},
				Applications: []Application{app("bash", "bash=5.2")}},
		},
	}

	machine := targeting.NewFactSet([]id.FactID{devFact})
	res := Resolve(machine, projectMain, []Policy{p})
	assert.Equal(t, []string{"zsh=5.9"}, installed(res))
	assert.Empty(t, res.Remove)
}

func TestResolve_RemovalsNotDeduplicated(t *testing.T) {
	// Two exclusive policies whose non-matched groups carry the same
	// package. The engine reports both; callers collapse duplicates.
	mk := func(policyID id.PolicyID, name string) Policy {
		return Policy{
			ID:              policyID,
			Name:            name,
			Enabled:         true,
			Exclusive:       true,
			IncludedFactIDs: []id.FactID{id.UniversalFactID},
			Groups: []Group{
				{ID: 1, Priority: 10, IncludedFactIDs: []id.FactID{id.UniversalFactID},
					Applications: []Application{app("modern", "tool=2.0")}},
				{ID: 2, Priority: 20, IncludedFactIDs: []id.FactID{legacyFact},
					Applications: []Application{app("old", "tool=1.0")}},
			},
		}
	}

	machine := targeting.NewFactSet([]id.FactID{devFact})
	res := Resolve(machine, projectMain, []Policy{mk(1, "alpha"), mk(2, "beta")})

	require.Len(t, res.Remove, 2)
	assert.Equal(t, "tool=1.0", res.Remove[0].Package)
	assert.Equal(t, "tool=1.0", res.Remove[1].Package)
	assert.NotEqual(t, res.Remove[0].RuleID, res.Remove[1].RuleID)
}

func TestResolve_DisabledPolicySkipped(t *testing.T) {
	p := Policy{
		ID:              1,
		Name:            "dormant",
		Enabled:         false,
		IncludedFactIDs: []id.FactID{id.UniversalFactID},
		Groups: []Group{
			{ID: 1, Priority: 10, IncludedFactIDs: []id.FactID{id.UniversalFactID},
				Applications: []Application{app("x", "x=1")}},
		},
	}

	machine := targeting.NewFactSet([]id.FactID{devFact})
	res := Resolve(machine, projectMain, []Policy{p})
	assert.Empty(t, res.Install)
}

func TestResolve_EmptyIncludeListMatchesNothing(t *testing.T) {
	p := Policy{
		ID:      1,
		Name:    "unbound",
		Enabled: true,
		Groups: []Group{
			{ID: 1, Priority: 10, IncludedFactIDs: []id.FactID{id.UniversalFactID},
				Applications: []Application{app("x", "x=1")}},
		},
	}

	machine := targeting.NewFactSet([]id.FactID{devFact, laptopFact})
	res := Resolve(machine, projectMain, []Policy{p})
	assert.Empty(t, res.Install)
}

func TestResolve_ProjectScopedPackages(t *testing.T) {
	application := Application{
		Name: "agent",
		PackagesByProject: map[id.ProjectID]string{
			projectMain: "agent=3.1\nagent-plugins=3.1",
			projectAlt:  "agent=2.9",
		},
	}
	p := Policy{
		ID:              1,
		Name:            "agents",
		Enabled:         true,
		IncludedFactIDs: []id.FactID{id.UniversalFactID},
		Groups: []Group{
			{ID: 1, Priority: 10, IncludedFactIDs: []id.FactID{id.UniversalFactID},
				Applications: []Application{application}},
		},
	}
	machine := targeting.NewFactSet(nil)

	t.Run("multi-line specifiers split per package", func(t *testing.T) {
		res := Resolve(machine, projectMain, []Policy{p})
		assert.Equal(t, []string{"agent=3.1", "agent-plugins=3.1"}, installed(res))
	})

	t.Run("other project gets its own build", func(t *testing.T) {
		res := Resolve(machine, projectAlt, []Policy{p})
		assert.Equal(t, []string{"agent=2.9"}, installed(res))
	})

	t.Run("unmapped project contributes nothing", func(t *testing.T) {
		res := Resolve(machine, id.ProjectID(99), []Policy{p})
		assert.Empty(t, res.Install)
	})
}

func TestResolve_PoliciesEvaluatedByName(t *testing.T) {
	mk := func(policyID id.PolicyID, name, pkg string) Policy {
		return Policy{
			ID:              policyID,
			Name:            name,
			Enabled:         true,
			IncludedFactIDs: []id.FactID{id.UniversalFactID},
			Groups: []Group{
				{ID: 1, Priority: 10, IncludedFactIDs: []id.FactID{id.UniversalFactID},
					Applications: []Application{app(name, pkg)}},
			},
		}
	}
	machine := targeting.NewFactSet(nil)
	res := Resolve(machine, projectMain, []Policy{
		mk(3, "zeta", "z=1"),
		mk(1, "alpha", "a=1"),
		mk(2, "mid", "m=1"),
	})
	assert.Equal(t, []string{"a=1", "m=1", "z=1"}, installed(res))
}
