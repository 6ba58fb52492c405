// Package facts defines the fact inventory: immutable (category, value)
// attributes, the categories that classify them, and the per-machine sets of
// synchronized facts that every other decision module consumes.
package facts

import (
	id "muster/pkg/domain"
)

// CategoryKind selects how raw client text is turned into facts.
type CategoryKind string

const (
	// KindNormal produces exactly one fact from the raw text.
	KindNormal CategoryKind = "normal"
	// KindList splits on commas and newlines, one fact per item.
	KindList CategoryKind = "list"
	// KindLeftAdded produces one fact per progressively longer dotted
	// prefix: "a.b.c" yields "a", "a.b", "a.b.c".
	KindLeftAdded CategoryKind = "left_added"
	// KindRightAdded produces one fact per progressively longer dotted
	// suffix: "a.b.c" yields "c", "b.c", "a.b.c".
	KindRightAdded CategoryKind = "right_added"
	// KindStructured parses a JSON {value, description} object or an
	// array of such objects.
	KindStructured CategoryKind = "structured"
)

// CategorySort records who authors facts of a category.
type CategorySort string

const (
	// SortBasic facts are system-assigned and protected from deletion.
	SortBasic CategorySort = "basic"
	// SortClient facts are reported by managed machines.
	SortClient CategorySort = "client"
	// SortTag facts are server-assigned labels.
	SortTag CategorySort = "tag"
)

// Category classifies facts and declares their encoding.
type Category struct {
	ID   id.CategoryID
	Name string
	Kind CategoryKind
	Sort CategorySort
}

// Protected reports whether facts in this category may not be deleted.
// Basic facts are system-owned; SET facts are companions of fact-sets and
// must only disappear through fact-set deletion so the pair stays in sync.
func (c Category) Protected() bool {
	return c.Sort == SortBasic || c.Name == id.SetCategoryName
}

// Fact is an atomic (category, value) datum a machine can carry. Identity is
// the (CategoryID, Value) pair; the numeric ID is the storage handle. Facts
// are immutable once created except for value/description correction.
type Fact struct {
	ID          id.FactID
	CategoryID  id.CategoryID
	Value       string
	Description string
	Latitude    *float64
	Longitude   *float64
}

// FactInput is a fact candidate decoded from raw client text, before it is
// assigned an ID.
type FactInput struct {
	Value       string
	Description string
}

// Machine is the inventory view of a managed machine: its project, its
// lifecycle status, and the facts it currently carries.
type Machine struct {
	ID        id.MachineID
	ProjectID id.ProjectID
	Status    string
	FactIDs   []id.FactID
}

// CarriesAny reports whether the machine carries at least one of the given
// facts. The universal fact is NOT special here; universality is a targeting
// concern (see internal/targeting).
func (m Machine) CarriesAny(factIDs []id.FactID) bool {
	if len(factIDs) == 0 {
		return false
	}
	carried := make(map[id.FactID]struct{}, len(m.FactIDs))
	for _, f := range m.FactIDs {
		carried[f] = struct{}{}
	}
	for _, f := range factIDs {
		if _, ok := carried[f]; ok {
			return true
		}
	}
	return false
}
