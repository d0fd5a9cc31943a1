package selector

import (
	"slices"

	"github.com/samber/lo"
)

// ActiveSet is the selection result keyed by compound identifier. Entries
// keep insertion order. Two compounds with the same structure are both kept.
type ActiveSet struct {
	entries []Active
	pos     map[string]int
}

// NewActiveSet constructs an empty set.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{pos: make(map[string]int)}
}

// Add inserts a; it reports false and leaves the set unchanged when the
// identifier is already present.
func (s *ActiveSet) Add(a Active) bool {
	if _, ok := s.pos[a.ID]; ok {
		return false
	}
	s.pos[a.ID] = len(s.entries)
	s.entries = append(s.entries, a)
	return true
}

// Len returns the number of selected compounds.
func (s *ActiveSet) Len() int { return len(s.entries) }

// Contains reports whether id was selected.
func (s *ActiveSet) Contains(id string) bool {
	_, ok := s.pos[id]
	return ok
}

// Get returns the entry for id.
func (s *ActiveSet) Get(id string) (Active, bool) {
	i, ok := s.pos[id]
	if !ok {
		return Active{}, false
	}
	return s.entries[i], true
}

// Entries returns the selection in insertion order.
func (s *ActiveSet) Entries() []Active { return slices.Clone(s.entries) }

// IDs returns selected identifiers in insertion order.
func (s *ActiveSet) IDs() []string {
	return lo.Map(s.entries, func(a Active, _ int) string { return a.ID })
}

// ByStructure returns the structure → identifier view. Compounds sharing a
// structure collapse to the one selected last.
func (s *ActiveSet) ByStructure() map[string]string {
	out := make(map[string]string, len(s.entries))
	for _, a := range s.entries {
		out[a.SMILES] = a.ID
	}
	return out
}
