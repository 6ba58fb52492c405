package facts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRaw_Normal(t *testing.T) {
	t.Run("single trimmed fact", func(t *testing.T) {
		got := ParseRaw(KindNormal, "  site-berlin  ")
		assert.Equal(t, []FactInput{{Value: "site-berlin"}}, got)
	})

	t.Run("blank yields nothing", func(t *testing.T) {
		assert.Empty(t, ParseRaw(KindNormal, "   "))
	})
}

func TestParseRaw_List(t *testing.T) {
	got := ParseRaw(KindList, "lab-1, lab-2\nlab-3\nlab-1")
	assert.Equal(t, []FactInput{
		{Value: "lab-1"},
		{Value: "lab-2"},
		{Value: "lab-3"},
	}, got)
}

func TestParseRaw_Dotted(t *testing.T) {
	t.Run("left-added grows prefixes", func(t *testing.T) {
		got := ParseRaw(KindLeftAdded, "eu.berlin.lab1")
		assert.Equal(t, []FactInput{
			{Value: "eu"},
			{Value: "eu.berlin"},
			{Value: "eu.berlin.lab1"},
		}, got)
	})

	t.Run("right-added grows suffixes", func(t *testing.T) {
		got := ParseRaw(KindRightAdded, "eu.berlin.lab1")
		assert.Equal(t, []FactInput{
			{Value: "lab1"},
			{Value: "berlin.lab1"},
			{Value: "eu.berlin.lab1"},
		}, got)
	})

	t.Run("no dots yields the value itself", func(t *testing.T) {
		got := ParseRaw(KindLeftAdded, "standalone")
		assert.Equal(t, []FactInput{{Value: "standalone"}}, got)
	})
}

func TestParseRaw_Structured(t *testing.T) {
	t.Run("single object", func(t *testing.T) {
		got := ParseRaw(KindStructured, `{"value": "rack-7", "description": "dc east"}`)
		assert.Equal(t, []FactInput{{Value: "rack-7", Description: "dc east"}}, got)
	})

	t.Run("array of objects", func(t *testing.T) {
		got := ParseRaw(KindStructured, `[{"value": "a"}, {"value": "b", "description": "second"}]`)
		assert.Equal(t, []FactInput{
			{Value: "a"},
			{Value: "b", Description: "second"},
		}, got)
	})

	t.Run("malformed JSON is dropped, not raised", func(t *testing.T) {
		assert.Empty(t, ParseRaw(KindStructured, `{"value": "broken`))
		assert.Empty(t, ParseRaw(KindStructured, `[{"value": 42}]`))
	})

	t.Run("entries without a value are skipped", func(t *testing.T) {
		got := ParseRaw(KindStructured, `[{"value": ""}, {"value": "kept"}]`)
		assert.Equal(t, []FactInput{{Value: "kept"}}, got)
	})
}
