// Package audit captures structured events from the decision modules:
// which machine resolved which rules, and which visibility assertions were
// rejected. Events are transport-agnostic so sinks can fan out.
package audit

import (
	"time"

	id "muster/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategorySecurity covers events relevant to security monitoring.
	// Examples: visibility violations, rejected operator tokens.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and
	// operational visibility. Examples: policy resolutions, fact-set
	// mutations.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Category   EventCategory `json:"category"`
	Timestamp  time.Time     `json:"timestamp"`
	OperatorID id.OperatorID `json:"operator_id,omitempty"`
	MachineID  id.MachineID  `json:"machine_id,omitempty"`
	Action     string        `json:"action"`
	Detail     string        `json:"detail,omitempty"`
}
