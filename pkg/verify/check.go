// Package verify checks on-disk trees against a manifest and copies
// trees while verifying every byte transferred.
package verify

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"

	"github.com/tqbf/shasync/pkg/checksum"
	"github.com/tqbf/shasync/pkg/manifest"
	"github.com/tqbf/shasync/pkg/paths"
)

// CheckPath verifies that rel under root matches its manifest entry.
// File bytes are streamed through sink while hashing; nil means no sink.
func CheckPath(
	m *manifest.Manifest,
	root, rel string,
	sink checksum.Sink,
) error {
	entry, ok := m.Lookup(rel)
	if !ok {
		return pathErr(rel, ErrUnknownFile)
	}

	full, err := paths.Resolve(root, rel)
	if err != nil {
		return pathErr(rel, fmt.Errorf("%w: %w", ErrUnsafePath, err))
	}

	// A regular file where a parent directory should be surfaces as
	// ENOTDIR; the path still does not exist.
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return pathErr(rel, ErrFileDoesNotExist)
	}
	if err != nil {
		return pathErr(rel, err)
	}

	if info.IsDir() != entry.IsDir() {
		return pathErr(rel, &TypeError{WantedDir: entry.IsDir()})
	}

	switch {
	case info.IsDir() && entry.Size == 0:
		return nil
	case info.Mode().IsRegular():
		return checkFile(full, rel, entry, info, sink)
	}
	return pathErr(rel, ErrImpossible)
}

func checkFile(
	full, rel string,
	entry manifest.Entry,
	info fs.FileInfo,
	sink checksum.Sink,
) error {
	if uint64(info.Size()) != entry.Size {
		return pathErr(rel, fmt.Errorf(
			"%w: size %d, want %d",
			ErrMismatchedContent, info.Size(), entry.Size,
		))
	}

	sum, err := checksum.DigestFile(full, sink)
	if err != nil {
		return pathErr(rel, err)
	}
	if sum != entry.Hash {
		return pathErr(rel, fmt.Errorf(
			"%w: sha %s, want %s",
			ErrMismatchedContent, sum, entry.Hash,
		))
	}
	return nil
}
