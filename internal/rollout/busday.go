package rollout

import "time"

// DateLayout is the wire and cache format for rollout dates.
const DateLayout = "2006-01-02"

// IsBusinessDay reports whether d is a weekday. Holidays are not modeled;
// schedules count Monday through Friday only.
func IsBusinessDay(d time.Time) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// AddBusinessDays advances d by n business days. n zero normalizes a
// weekend date forward to the next Monday, so the result is always a
// business day.
func AddBusinessDays(d time.Time, n int) time.Time {
	for !IsBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	for ; n > 0; n-- {
		d = d.AddDate(0, 0, 1)
		for !IsBusinessDay(d) {
			d = d.AddDate(0, 0, 1)
		}
	}
	return d
}
