package manifest

type DiffResult struct {
	Missing []string
	Changed []string
	Extra   []string
}

func (d DiffResult) Empty() bool {
	return len(d.Missing) == 0 &&
		len(d.Changed) == 0 &&
		len(d.Extra) == 0
}

// Diff compares the tree described by have against want. Missing and
// Changed are what a resync would need to transfer; Extra is present
// in have only. All lists are sorted.
func Diff(want, have *Manifest) DiffResult {
	var result DiffResult

	for path, we := range want.All() {
		he, exists := have.Lookup(path)
		switch {
		case !exists:
			result.Missing = append(result.Missing, path)
		case !sameEntry(we, he):
			result.Changed = append(result.Changed, path)
		}
	}

	for path := range have.All() {
		if _, exists := want.Lookup(path); !exists {
			result.Extra = append(result.Extra, path)
		}
	}

	return result
}

func sameEntry(a, b Entry) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.IsDir() {
		return true
	}
	return a.Size == b.Size && a.Hash == b.Hash
}
