package targeting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	id "muster/pkg/domain"
)

const (
	factA id.FactID = 10
	factB id.FactID = 11
	factC id.FactID = 12
)

func TestAnyMatch(t *testing.T) {
	machine := NewFactSet([]id.FactID{factB})

	t.Run("any-of, not all-of", func(t *testing.T) {
		// Machine holds only B out of [A, B]: still a match.
		assert.True(t, AnyMatch(machine, []id.FactID{factA, factB}))
	})

	t.Run("no carried fact means no match", func(t *testing.T) {
		assert.False(t, AnyMatch(machine, []id.FactID{factA, factC}))
	})

	t.Run("universal fact matches every machine", func(t *testing.T) {
		empty := NewFactSet(nil)
		assert.True(t, AnyMatch(empty, []id.FactID{id.UniversalFactID}))
	})
}

// An empty include list is never eligible. Documented as enforced behavior:
// entities target nothing until they are given an explicit inclusion.
func TestAnyMatch_EmptyListNeverMatches(t *testing.T) {
	machine := NewFactSet([]id.FactID{factA, factB, factC})
	assert.False(t, AnyMatch(machine, nil))
	assert.False(t, AnyMatch(machine, []id.FactID{}))
}

func TestEligible(t *testing.T) {
	machine := NewFactSet([]id.FactID{factA, factB})

	t.Run("included and not excluded", func(t *testing.T) {
		assert.True(t, Eligible(machine, []id.FactID{factA}, []id.FactID{factC}))
	})

	t.Run("exclusion wins over inclusion", func(t *testing.T) {
		assert.False(t, Eligible(machine, []id.FactID{factA}, []id.FactID{factB}))
	})

	t.Run("universal include with specific exclude", func(t *testing.T) {
		assert.False(t, Eligible(machine, []id.FactID{id.UniversalFactID}, []id.FactID{factA}))
	})

	t.Run("empty exclude list excludes nothing", func(t *testing.T) {
		assert.True(t, Eligible(machine, []id.FactID{factB}, nil))
	})
}
