// Package factset implements named fact groups that reference each other
// through SET-category facts: the dependency graph over those references,
// cycle-safe mutation, and the forward derivation pass that synthesizes
// membership facts for a machine.
package factset

import (
	id "muster/pkg/domain"
)

// FactSet is a named group defined by include/exclude fact predicates. Each
// fact-set owns exactly one companion fact: a SET-category fact bearing the
// set's name. Other entities reference the set by including that fact.
type FactSet struct {
	ID              id.FactSetID
	Name            string
	Enabled         bool
	IncludedFactIDs []id.FactID
	ExcludedFactIDs []id.FactID
	CompanionFactID id.FactID
}

// references returns every fact ID the set's predicates mention.
func (fs FactSet) references() []id.FactID {
	refs := make([]id.FactID, 0, len(fs.IncludedFactIDs)+len(fs.ExcludedFactIDs))
	refs = append(refs, fs.IncludedFactIDs...)
	refs = append(refs, fs.ExcludedFactIDs...)
	return refs
}
