package policy

import (
	"sort"

	"muster/internal/targeting"
	id "muster/pkg/domain"
)

// Resolve evaluates every enabled policy against the machine's facts and
// project. This is pure domain logic: no I/O, no side effects.
//
// Per policy: the top-level predicate gates the whole policy; groups are
// scanned in ascending priority and the first eligible group wins. An
// exclusive policy turns every other group's packages into removal
// candidates tagged with the same policy identity. A policy whose top-level
// predicate matches but whose groups all miss contributes nothing.
//
// Policies are independent: there is no cross-policy conflict resolution,
// and neither list is de-duplicated here. Collapsing duplicates is the
// caller's responsibility.
func Resolve(machineFacts targeting.FactSet, projectID id.ProjectID, policies []Policy) Resolution {
	ordered := make([]Policy, 0, len(policies))
	for _, p := range policies {
		if p.Enabled {
			ordered = append(ordered, p)
		}
	}
	// Stable evaluation order: ascending policy name.
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	resolution := Resolution{Install: []Assignment{}, Remove: []Assignment{}}
	for _, p := range ordered {
		if !targeting.Eligible(machineFacts, p.IncludedFactIDs, p.ExcludedFactIDs) {
			continue
		}

		groups := append([]Group{}, p.Groups...)
		sort.Slice(groups, func(i, j int) bool { return groups[i].Priority < groups[j].Priority })

		for _, group := range groups {
			if !targeting.Eligible(machineFacts, group.IncludedFactIDs, group.ExcludedFactIDs) {
				continue
			}

			for _, app := range group.Applications {
				for _, pkg := range app.packages(projectID) {
					resolution.Install = append(resolution.Install, Assignment{
						Package:  pkg,
						RuleName: p.Name,
						RuleID:   p.ID,
					})
				}
			}

			if p.Exclusive {
				for _, other := range groups {
					if other.ID == group.ID {
						continue
					}
					for _, app := range other.Applications {
						for _, pkg := range app.packages(projectID) {
							resolution.Remove = append(resolution.Remove, Assignment{
								Package:  pkg,
								RuleName: p.Name,
								RuleID:   p.ID,
							})
						}
					}
				}
			}

			// First match wins: later groups of this policy are not
			// evaluated.
			break
		}
	}
	return resolution
}
