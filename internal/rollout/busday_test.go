package rollout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsBusinessDay(t *testing.T) {
	// 2024-01-01 is a Monday.
	assert.True(t, IsBusinessDay(date(2024, 1, 1)))
	assert.True(t, IsBusinessDay(date(2024, 1, 5)))  // Friday
	assert.False(t, IsBusinessDay(date(2024, 1, 6))) // Saturday
	assert.False(t, IsBusinessDay(date(2024, 1, 7))) // Sunday
}

func TestAddBusinessDays(t *testing.T) {
	monday := date(2024, 1, 1)

	t.Run("zero on a weekday is identity", func(t *testing.T) {
		assert.Equal(t, monday, AddBusinessDays(monday, 0))
	})

	t.Run("zero on a weekend normalizes to Monday", func(t *testing.T) {
		saturday := date(2024, 1, 6)
		sunday := date(2024, 1, 7)
		nextMonday := date(2024, 1, 8)
		assert.Equal(t, nextMonday, AddBusinessDays(saturday, 0))
		assert.Equal(t, nextMonday, AddBusinessDays(sunday, 0))
	})

	t.Run("weekdays advance one per step", func(t *testing.T) {
		assert.Equal(t, date(2024, 1, 2), AddBusinessDays(monday, 1))
		assert.Equal(t, date(2024, 1, 5), AddBusinessDays(monday, 4))
	})

	t.Run("weekend is skipped", func(t *testing.T) {
		friday := date(2024, 1, 5)
		assert.Equal(t, date(2024, 1, 8), AddBusinessDays(friday, 1))
		assert.Equal(t, date(2024, 1, 12), AddBusinessDays(monday, 9))
	})
}
