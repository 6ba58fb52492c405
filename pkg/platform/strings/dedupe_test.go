package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	t.Run("removes duplicates and empties", func(t *testing.T) {
		got := DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
		assert.Equal(t, []string{"foo", "bar"}, got)
	})

	t.Run("preserves order", func(t *testing.T) {
		got := DedupeAndTrim([]string{"c", "a", "b", "a"})
		assert.Equal(t, []string{"c", "a", "b"}, got)
	})

	t.Run("empty input passes through", func(t *testing.T) {
		assert.Empty(t, DedupeAndTrim(nil))
	})
}

func TestSplitList(t *testing.T) {
	t.Run("splits on commas and newlines", func(t *testing.T) {
		got := SplitList("site-a, site-b\nsite-c\r\nsite-a")
		assert.Equal(t, []string{"site-a", "site-b", "site-c"}, got)
	})

	t.Run("blank input yields nothing", func(t *testing.T) {
		assert.Empty(t, SplitList("  \n , "))
	})
}
