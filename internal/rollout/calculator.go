package rollout

import (
	"time"

	"muster/internal/facts"
	"muster/internal/targeting"
	id "muster/pkg/domain"
)

// Timeline computes the cumulative "provided" curve for a deployment over
// the horizon its schedule spans.
//
// The population is every machine that could ever be admitted; the
// deployment's exclusion list and each delay's fact list narrow it here.
// Machines matching the deployment's own included facts count from day
// zero. Each delay then staggers its fact-holders over business-day
// buckets: on the k-th business day of the delay's window, machines with
// `id mod duration == k` are admitted, unless the cumulative fact set
// already covers them. Weekends emit points but never advance the bucket.
//
// The result is monotonically non-decreasing. When asOf falls inside the
// horizon, a second series holds the same curve truncated at asOf.
func ComputeTimeline(dep Deployment, schedule *Schedule, population []facts.Machine, start, asOf time.Time) *Timeline {
	if schedule == nil || len(schedule.Delays) == 0 {
		return nil
	}
	delays := schedule.orderedDelays()

	factSets := make(map[id.MachineID]targeting.FactSet, len(population))
	eligible := make([]facts.Machine, 0, len(population))
	for _, m := range population {
		set := targeting.NewFactSet(m.FactIDs)
		if targeting.AnyMatch(set, dep.ExcludedFactIDs) {
			continue
		}
		factSets[m.ID] = set
		eligible = append(eligible, m)
	}

	cumulative := append([]id.FactID{}, dep.IncludedFactIDs...)
	count := 0
	for _, m := range eligible {
		if targeting.AnyMatch(factSets[m.ID], cumulative) {
			count++
		}
	}

	timeline := &Timeline{Series: map[string][]int{}}
	provided := []int{}

	rolling := AddBusinessDays(start, 0)
	for i, delay := range delays {
		windowLen := delay.Duration
		if i < len(delays)-1 {
			windowLen = delays[i+1].Offset - delay.Offset
		}
		windowEnd := AddBusinessDays(rolling, windowLen)

		bucket := 0
		for day := rolling; day.Before(windowEnd); day = day.AddDate(0, 0, 1) {
			if IsBusinessDay(day) {
				if delay.Duration > 0 {
					for _, m := range eligible {
						set := factSets[m.ID]
						if int(int64(m.ID)%int64(delay.Duration)) != bucket {
							continue
						}
						if !targeting.AnyMatch(set, delay.FactIDs) {
							continue
						}
						if targeting.AnyMatch(set, cumulative) {
							// Already covered by an earlier rung.
							continue
						}
						count++
					}
				}
				bucket++
			}
			timeline.XLabels = append(timeline.XLabels, day.Format(DateLayout))
			provided = append(provided, count)
		}

		cumulative = append(cumulative, delay.FactIDs...)
		rolling = windowEnd
	}

	timeline.Series[SeriesProvided] = provided
	if !asOf.IsZero() && len(timeline.XLabels) > 0 {
		asOfLabel := asOf.Format(DateLayout)
		if asOfLabel >= timeline.XLabels[0] && asOfLabel <= timeline.XLabels[len(timeline.XLabels)-1] {
			elapsed := 0
			for _, label := range timeline.XLabels {
				if label > asOfLabel {
					break
				}
				elapsed++
			}
			timeline.Series[SeriesToDate] = provided[:elapsed]
		}
	}
	return timeline
}
