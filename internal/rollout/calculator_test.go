package rollout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muster/internal/facts"
	id "muster/pkg/domain"
)

const (
	waveOneFact id.FactID = 100
	waveTwoFact id.FactID = 101
)

func machine(machineID id.MachineID, factIDs ...id.FactID) facts.Machine {
	return facts.Machine{ID: machineID, ProjectID: 1, Status: "active", FactIDs: factIDs}
}

func TestComputeTimeline_NilSchedule(t *testing.T) {
	dep := Deployment{ID: 1, Enabled: true}
	assert.Nil(t, ComputeTimeline(dep, nil, nil, date(2024, 1, 1), time.Time{}))
	assert.Nil(t, ComputeTimeline(dep, &Schedule{ID: 1}, nil, date(2024, 1, 1), time.Time{}))
}

// Two-wave schedule over a population of ten machines evenly split mod 2.
// Wave one admits its fact-holders all at once (duration 1 has a single
// bucket); wave two staggers over two business days starting Thursday.
func TestComputeTimeline_TwoWaveSchedule(t *testing.T) {
	schedule := &Schedule{ID: 1, Name: "two waves", Delays: []Delay{
		{Offset: 0, Duration: 1, FactIDs: []id.FactID{waveOneFact}},
		{Offset: 3, Duration: 2, FactIDs: []id.FactID{waveTwoFact}},
	}}
	dep := Deployment{ID: 1, Enabled: true, ProjectID: 1, ScheduleID: 1}

	population := []facts.Machine{
		machine(1, waveOneFact),
		machine(2, waveOneFact, waveTwoFact),
		machine(3, waveTwoFact),
		machine(4, waveTwoFact),
		machine(5, waveTwoFact),
		machine(6, waveTwoFact),
		machine(7, waveTwoFact),
		machine(8, waveTwoFact),
		machine(9, waveTwoFact),
		machine(10, waveTwoFact),
	}

	monday := date(2024, 1, 1)
	timeline := ComputeTimeline(dep, schedule, population, monday, time.Time{})
	require.NotNil(t, timeline)

	// Window one covers Mon..Wed (inter-delay gap of 3 business days),
	// window two covers Thu..Sun (duration 2, weekend emitted flat).
	assert.Equal(t, []string{
		"2024-01-01", "2024-01-02", "2024-01-03",
		"2024-01-04", "2024-01-05", "2024-01-06", "2024-01-07",
	}, timeline.XLabels)

	// Day 0: both wave-one machines. Thursday: even wave-two machines
	// (bucket 0), machine 2 excluded since wave one already covers it.
	// Friday: odd wave-two machines (bucket 1). Weekend: flat.
	assert.Equal(t, []int{2, 2, 2, 6, 10, 10, 10}, timeline.Series[SeriesProvided])
}

func TestComputeTimeline_WeekendNeverAdmits(t *testing.T) {
	schedule := &Schedule{ID: 1, Delays: []Delay{
		{Offset: 0, Duration: 5, FactIDs: []id.FactID{waveOneFact}},
	}}
	dep := Deployment{ID: 1, Enabled: true, ProjectID: 1, ScheduleID: 1}

	population := make([]facts.Machine, 0, 10)
	for i := 1; i <= 10; i++ {
		population = append(population, machine(id.MachineID(i), waveOneFact))
	}

	friday := date(2024, 1, 5)
	timeline := ComputeTimeline(dep, schedule, population, friday, time.Time{})
	require.NotNil(t, timeline)

	// Fri, Sat, Sun, Mon..Thu: seven calendar days for five business days.
	require.Len(t, timeline.XLabels, 7)
	provided := timeline.Series[SeriesProvided]

	// Saturday and Sunday emit points but admit nobody.
	assert.Equal(t, provided[0], provided[1])
	assert.Equal(t, provided[0], provided[2])

	// Every machine is admitted by the end of the window.
	assert.Equal(t, 10, provided[6])

	// Monotone cumulative curve.
	for i := 1; i < len(provided); i++ {
		assert.GreaterOrEqual(t, provided[i], provided[i-1])
	}
}

func TestComputeTimeline_BucketDeterminism(t *testing.T) {
	schedule := &Schedule{ID: 1, Delays: []Delay{
		{Offset: 0, Duration: 3, FactIDs: []id.FactID{waveOneFact}},
	}}
	dep := Deployment{ID: 1, Enabled: true, ProjectID: 1, ScheduleID: 1}

	// Machines 3 and 6 share a bucket (both 0 mod 3): they must always be
	// admitted on the same relative day, across repeated runs.
	population := []facts.Machine{
		machine(3, waveOneFact),
		machine(6, waveOneFact),
		machine(4, waveOneFact),
	}

	monday := date(2024, 1, 1)
	first := ComputeTimeline(dep, schedule, population, monday, time.Time{})
	require.NotNil(t, first)
	assert.Equal(t, []int{2, 3, 3}, first.Series[SeriesProvided])

	for i := 0; i < 10; i++ {
		again := ComputeTimeline(dep, schedule, population, monday, time.Time{})
		assert.Equal(t, first.Series[SeriesProvided], again.Series[SeriesProvided])
	}
}

func TestComputeTimeline_DeploymentIncludedCountsFromDayZero(t *testing.T) {
	schedule := &Schedule{ID: 1, Delays: []Delay{
		{Offset: 0, Duration: 2, FactIDs: []id.FactID{waveTwoFact}},
	}}
	dep := Deployment{
		ID: 1, Enabled: true, ProjectID: 1, ScheduleID: 1,
		IncludedFactIDs: []id.FactID{waveOneFact},
	}

	population := []facts.Machine{
		machine(2, waveOneFact),              // covered before staging starts
		machine(4, waveTwoFact),              // bucket 0
		machine(5, waveTwoFact),              // bucket 1
		machine(6, waveOneFact, waveTwoFact), // never re-admitted
	}

	monday := date(2024, 1, 1)
	timeline := ComputeTimeline(dep, schedule, population, monday, time.Time{})
	require.NotNil(t, timeline)
	assert.Equal(t, []int{3, 4}, timeline.Series[SeriesProvided])
}

func TestComputeTimeline_ExcludedMachinesNeverCounted(t *testing.T) {
	const quarantined id.FactID = 200
	schedule := &Schedule{ID: 1, Delays: []Delay{
		{Offset: 0, Duration: 1, FactIDs: []id.FactID{waveOneFact}},
	}}
	dep := Deployment{
		ID: 1, Enabled: true, ProjectID: 1, ScheduleID: 1,
		ExcludedFactIDs: []id.FactID{quarantined},
	}

	population := []facts.Machine{
		machine(1, waveOneFact),
		machine(2, waveOneFact, quarantined),
	}

	timeline := ComputeTimeline(dep, schedule, population, date(2024, 1, 1), time.Time{})
	require.NotNil(t, timeline)
	assert.Equal(t, []int{1}, timeline.Series[SeriesProvided])
}

func TestComputeTimeline_ToDateSeries(t *testing.T) {
	schedule := &Schedule{ID: 1, Delays: []Delay{
		{Offset: 0, Duration: 5, FactIDs: []id.FactID{waveOneFact}},
	}}
	dep := Deployment{ID: 1, Enabled: true, ProjectID: 1, ScheduleID: 1}
	population := []facts.Machine{machine(1, waveOneFact), machine(2, waveOneFact)}
	monday := date(2024, 1, 1)

	t.Run("asOf inside the horizon truncates", func(t *testing.T) {
		timeline := ComputeTimeline(dep, schedule, population, monday, date(2024, 1, 3))
		require.NotNil(t, timeline)
		toDate, ok := timeline.Series[SeriesToDate]
		require.True(t, ok)
		assert.Len(t, toDate, 3)
		assert.Equal(t, timeline.Series[SeriesProvided][:3], toDate)
	})

	t.Run("asOf outside the horizon omits the series", func(t *testing.T) {
		timeline := ComputeTimeline(dep, schedule, population, monday, date(2024, 3, 1))
		require.NotNil(t, timeline)
		_, ok := timeline.Series[SeriesToDate]
		assert.False(t, ok)
	})
}

func TestComputeTimeline_WeekendStartNormalizes(t *testing.T) {
	schedule := &Schedule{ID: 1, Delays: []Delay{
		{Offset: 0, Duration: 1, FactIDs: []id.FactID{waveOneFact}},
	}}
	dep := Deployment{ID: 1, Enabled: true, ProjectID: 1, ScheduleID: 1}
	population := []facts.Machine{machine(1, waveOneFact)}

	saturday := date(2024, 1, 6)
	timeline := ComputeTimeline(dep, schedule, population, saturday, time.Time{})
	require.NotNil(t, timeline)
	assert.Equal(t, []string{"2024-01-08"}, timeline.XLabels)
	assert.Equal(t, []int{1}, timeline.Series[SeriesProvided])
}
