// Package policy orders and evaluates install/remove rule groups against a
// machine's fact set.
package policy

import (
	"strings"

	id "muster/pkg/domain"
)

// Application references a software bundle. Its package field resolves to a
// newline-delimited list of package specifiers, keyed by project: the same
// bundle can map to different package builds per project.
type Application struct {
	Name              string
	PackagesByProject map[id.ProjectID]string
}

// packages returns the project-scoped package specifiers, one per line,
// trimmed, empty lines skipped.
func (a Application) packages(projectID id.ProjectID) []string {
	raw, ok := a.PackagesByProject[projectID]
	if !ok {
		return nil
	}
	lines := strings.Split(raw, "\n")
	specs := make([]string, 0, len(lines))
	for _, line := range lines {
		spec := strings.TrimSpace(line)
		if spec == "" {
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}

// Group is one priority rung of a policy: its own include/exclude fact
// lists and the applications it assigns.
type Group struct {
	ID              id.PolicyGroupID
	Priority        int
	IncludedFactIDs []id.FactID
	ExcludedFactIDs []id.FactID
	Applications    []Application
}

// Policy is a top-level targeting rule owning an ordered sequence of
// groups. Priorities are unique within a policy. When Exclusive is set, the
// packages of every non-matched group become removal candidates.
type Policy struct {
	ID              id.PolicyID
	Name            string
	Enabled         bool
	Exclusive       bool
	IncludedFactIDs []id.FactID
	ExcludedFactIDs []id.FactID
	Groups          []Group
}

// Assignment is one package decision attributed to the policy that made it.
type Assignment struct {
	Package  string      `json:"package"`
	RuleName string      `json:"rule_name"`
	RuleID   id.PolicyID `json:"rule_id"`
}

// Resolution is the full outcome for one machine.
type Resolution struct {
	Install []Assignment `json:"install"`
	Remove  []Assignment `json:"remove"`
}
