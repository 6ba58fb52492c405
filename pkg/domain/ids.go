// Package domain holds the typed identifiers shared across modules.
//
// IDs are distinct named types so the compiler rejects cross-assignment
// (a FactID can never be passed where a MachineID is expected). Machine,
// fact and catalog identifiers are integers because they originate in the
// fleet inventory, and machine IDs additionally feed the rollout bucketing
// arithmetic. Operator identities come from the auth layer and are UUIDs.
package domain

import (
	"strconv"

	"github.com/google/uuid"

	dErrors "muster/pkg/domain-errors"
)

// Inventory and catalog identifiers.
type (
	FactID        int64
	CategoryID    int64
	FactSetID     int64
	MachineID     int64
	ProjectID     int64
	PolicyID      int64
	PolicyGroupID int64
	ScheduleID    int64
	DeploymentID  int64
	DomainID      int64
	ScopeID       int64
)

// OperatorID identifies an authenticated administrator.
type OperatorID uuid.UUID

// UniversalFactID is the reserved "All Systems" fact. It satisfies every
// non-empty include list.
const UniversalFactID FactID = 1

// UniversalFactValue is the value of the reserved universal fact.
const UniversalFactValue = "All Systems"

// SetCategoryName is the reserved category whose facts name fact-sets.
const SetCategoryName = "SET"

func parseInt64(kind, s string) (int64, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be empty")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id: "+s)
	}
	return n, nil
}

// ParseMachineID validates a positive decimal machine identifier.
func ParseMachineID(s string) (MachineID, error) {
	n, err := parseInt64("machine", s)
	return MachineID(n), err
}

// ParseFactID validates a positive decimal fact identifier.
func ParseFactID(s string) (FactID, error) {
	n, err := parseInt64("fact", s)
	return FactID(n), err
}

// ParseDeploymentID validates a positive decimal deployment identifier.
func ParseDeploymentID(s string) (DeploymentID, error) {
	n, err := parseInt64("deployment", s)
	return DeploymentID(n), err
}

// ParseFactSetID validates a positive decimal fact-set identifier.
func ParseFactSetID(s string) (FactSetID, error) {
	n, err := parseInt64("fact-set", s)
	return FactSetID(n), err
}

// ParseDomainID validates a positive decimal domain identifier.
func ParseDomainID(s string) (DomainID, error) {
	n, err := parseInt64("domain", s)
	return DomainID(n), err
}

// ParseScopeID validates a positive decimal scope identifier.
func ParseScopeID(s string) (ScopeID, error) {
	n, err := parseInt64("scope", s)
	return ScopeID(n), err
}

// ParseOperatorID validates a non-nil operator UUID.
func ParseOperatorID(s string) (OperatorID, error) {
	if s == "" {
		return OperatorID{}, dErrors.New(dErrors.CodeInvalidInput, "operator id must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return OperatorID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid operator id: "+s)
	}
	if u == uuid.Nil {
		return OperatorID{}, dErrors.New(dErrors.CodeInvalidInput, "operator id must not be nil")
	}
	return OperatorID(u), nil
}

func (id MachineID) String() string    { return strconv.FormatInt(int64(id), 10) }
func (id FactID) String() string       { return strconv.FormatInt(int64(id), 10) }
func (id FactSetID) String() string    { return strconv.FormatInt(int64(id), 10) }
func (id PolicyID) String() string     { return strconv.FormatInt(int64(id), 10) }
func (id DeploymentID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id ProjectID) String() string    { return strconv.FormatInt(int64(id), 10) }

func (id OperatorID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the operator ID is unset.
func (id OperatorID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
