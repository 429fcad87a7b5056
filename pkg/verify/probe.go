package verify

import (
	"errors"
	"log/slog"

	"github.com/tqbf/shasync/pkg/manifest"
)

// CatalogPath is the addressables catalog rewritten by every game
// update, which makes it a cheap stand-in for the whole tree.
const CatalogPath = "LimbusCompany_Data/StreamingAssets/aa/catalog.json"

// IsUpToDate checks only CatalogPath. Content mismatches mean the tree
// is stale; every other failure is returned because it means the probe
// itself could not answer.
func IsUpToDate(m *manifest.Manifest, root string) (bool, error) {
	return IsUpToDateAt(m, root, CatalogPath)
}

func IsUpToDateAt(
	m *manifest.Manifest,
	root, probe string,
) (bool, error) {
	err := CheckPath(m, root, probe, nil)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrMismatchedContent):
		slog.Debug("probe stale", "path", probe, "err", err)
		return false, nil
	}
	return false, err
}
