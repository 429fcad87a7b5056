// Package manifest models the expected state of a file tree: a mapping
// from slash-separated relative path to Entry, read from and written to
// the fixed-column depot manifest text format.
package manifest

import (
	"iter"
	"maps"
	"slices"
)

// Manifest is immutable once built. Use New or Parse to construct one.
type Manifest struct {
	entries map[string]Entry
}

func New(entries map[string]Entry) *Manifest {
	return &Manifest{entries: maps.Clone(entries)}
}

func (m *Manifest) Lookup(path string) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	e, ok := m.entries[path]
	return e, ok
}

func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Paths returns every path in lexical order. Parents sort before
// their children.
func (m *Manifest) Paths() []string {
	if m == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(m.entries))
}

func (m *Manifest) All() iter.Seq2[string, Entry] {
	return func(yield func(string, Entry) bool) {
		for _, p := range m.Paths() {
			if !yield(p, m.entries[p]) {
				return
			}
		}
	}
}

func (m *Manifest) Dirs() []string {
	return m.filter(KindDirectory)
}

func (m *Manifest) Files() []string {
	return m.filter(KindFile)
}

func (m *Manifest) filter(kind Kind) []string {
	var out []string
	for p, e := range m.All() {
		if e.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

// TotalSize sums the declared sizes of all file entries.
func (m *Manifest) TotalSize() uint64 {
	var total uint64
	for _, e := range m.All() {
		if !e.IsDir() {
			total += e.Size
		}
	}
	return total
}
