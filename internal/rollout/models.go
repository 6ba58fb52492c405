// Package rollout stages a deployment's targeted population over calendar
// time. A schedule's delays admit machines in business-day buckets instead
// of all at once; the calculator turns that into a day-indexed cumulative
// curve suitable for charting.
package rollout

import (
	"sort"

	id "muster/pkg/domain"
)

// Delay is one rung of a schedule: Offset business days after the rollout
// start, the machines carrying a fact in FactIDs become eligible, staggered
// over Duration business days.
type Delay struct {
	Offset   int
	Duration int
	FactIDs  []id.FactID
}

// Schedule owns an ordered sequence of delays.
type Schedule struct {
	ID     id.ScheduleID
	Name   string
	Delays []Delay
}

// orderedDelays returns the delays in ascending offset order without
// mutating the schedule.
func (s *Schedule) orderedDelays() []Delay {
	delays := append([]Delay{}, s.Delays...)
	sort.SliceStable(delays, func(i, j int) bool { return delays[i].Offset < delays[j].Offset })
	return delays
}

// Deployment is a targeted software rollout. ScheduleID zero means no
// staging applies.
type Deployment struct {
	ID              id.DeploymentID
	Name            string
	Enabled         bool
	ProjectID       id.ProjectID
	IncludedFactIDs []id.FactID
	ExcludedFactIDs []id.FactID
	StartDate       string // YYYY-MM-DD
	ScheduleID      id.ScheduleID
}

// Timeline is the charted outcome: one label per calendar day of the
// horizon, and for each series one cumulative machine count per label.
type Timeline struct {
	XLabels []string         `json:"x_labels"`
	Series  map[string][]int `json:"series"`
}

const (
	// SeriesProvided is the full projected curve across the horizon.
	SeriesProvided = "provided"
	// SeriesToDate is the projected curve truncated at the as-of date.
	// Present only when the as-of date falls inside the horizon.
	SeriesToDate = "to date"
)
