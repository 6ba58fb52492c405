// Package scope restricts what an operator can see. Domains and scopes are
// fact-defined machine sets; an operator's preference picks at most one of
// each, and visibility is their intersection.
package scope

import (
	"encoding/json"
	"sort"

	id "muster/pkg/domain"
)

// Domain is an organizational slice of the fleet. TagFactIDs are facts
// attached directly to the domain itself, not derived from membership.
type Domain struct {
	ID              id.DomainID
	Name            string
	IncludedFactIDs []id.FactID
	ExcludedFactIDs []id.FactID
	TagFactIDs      []id.FactID
}

// Scope is a second, orthogonal fact-defined slice.
type Scope struct {
	ID              id.ScopeID
	Name            string
	IncludedFactIDs []id.FactID
	ExcludedFactIDs []id.FactID
}

// Preference is an operator's active domain/scope selection. It is always
// passed explicitly; there is no ambient current-operator state. Zero IDs
// mean no selection.
type Preference struct {
	DomainID id.DomainID
	ScopeID  id.ScopeID
}

// Visibility is the outcome of resolving a preference: either the
// unrestricted sentinel or an ordered machine set.
type Visibility struct {
	Unrestricted bool
	MachineIDs   []id.MachineID
}

// Contains reports whether the machine is visible. Unrestricted visibility
// contains every machine.
func (v Visibility) Contains(machineID id.MachineID) bool {
	if v.Unrestricted {
		return true
	}
	for _, m := range v.MachineIDs {
		if m == machineID {
			return true
		}
	}
	return false
}

// unrestrictedSentinel is the wire form of see-everything visibility.
const unrestrictedSentinel = "*"

// MarshalJSON encodes unrestricted visibility as the sentinel "*", and a
// restricted one as the ordered machine id array.
func (v Visibility) MarshalJSON() ([]byte, error) {
	if v.Unrestricted {
		return json.Marshal(unrestrictedSentinel)
	}
	machineIDs := v.MachineIDs
	if machineIDs == nil {
		machineIDs = []id.MachineID{}
	}
	return json.Marshal(machineIDs)
}

// UnmarshalJSON accepts either the "*" sentinel or a machine id array.
func (v *Visibility) UnmarshalJSON(data []byte) error {
	var sentinelValue string
	if err := json.Unmarshal(data, &sentinelValue); err == nil && sentinelValue == unrestrictedSentinel {
		*v = Visibility{Unrestricted: true}
		return nil
	}
	var machineIDs []id.MachineID
	if err := json.Unmarshal(data, &machineIDs); err != nil {
		return err
	}
	*v = Visibility{MachineIDs: machineIDs}
	return nil
}

// restrict builds a Visibility from a machine set, ordered ascending.
func restrict(machineIDs map[id.MachineID]struct{}) Visibility {
	ordered := make([]id.MachineID, 0, len(machineIDs))
	for machineID := range machineIDs {
		ordered = append(ordered, machineID)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	return Visibility{MachineIDs: ordered}
}
