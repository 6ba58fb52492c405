// Package targeting evaluates "does entity X apply to machine M" for fact
// lists. Policies, fact-sets, deployments, domains and scopes all target
// machines through the same two predicates.
package targeting

import (
	id "muster/pkg/domain"
)

// FactSet is a membership view over a machine's fact IDs.
type FactSet map[id.FactID]struct{}

// NewFactSet builds a membership set from a fact ID slice.
func NewFactSet(factIDs []id.FactID) FactSet {
	set := make(FactSet, len(factIDs))
	for _, factID := range factIDs {
		set[factID] = struct{}{}
	}
	return set
}

// Add inserts a fact into the set.
func (s FactSet) Add(factID id.FactID) { s[factID] = struct{}{} }

// Contains reports membership.
func (s FactSet) Contains(factID id.FactID) bool {
	_, ok := s[factID]
	return ok
}

// AnyMatch reports whether candidates is non-empty and contains the
// universal fact or any fact the machine carries.
//
// An empty candidate list yields false: no match without an explicit
// inclusion. This is enforced behavior, not an accident of iteration -- an
// entity with nothing in its include list targets nothing.
func AnyMatch(machineFacts FactSet, candidates []id.FactID) bool {
	for _, candidate := range candidates {
		if candidate == id.UniversalFactID {
			return true
		}
		if machineFacts.Contains(candidate) {
			return true
		}
	}
	return false
}

// Eligible reports whether the machine matches the include list and not the
// exclude list. Both sides use any-of semantics: one carried fact from a
// list is enough.
func Eligible(machineFacts FactSet, included, excluded []id.FactID) bool {
	return AnyMatch(machineFacts, included) && !AnyMatch(machineFacts, excluded)
}
