package verify

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownFile       = errors.New("file is not listed in the manifest")
	ErrFileDoesNotExist  = errors.New("file should exist but does not")
	ErrMismatchedType    = errors.New("file type does not match the manifest")
	ErrMismatchedContent = errors.New("file does not match the checksum")
	ErrUnsafePath        = errors.New("manifest path escapes the root")

	// ErrImpossible means the checks reached a state they consider
	// unreachable. It indicates a defect, not a stale tree.
	ErrImpossible = errors.New("unexpected file state")
)

// TypeError reports a kind mismatch. WantedDir is true when the manifest
// declares a directory and a file was found.
type TypeError struct {
	WantedDir bool
}

func (e *TypeError) Error() string {
	if e.WantedDir {
		return "expected directory but got a file"
	}
	return "expected file but got a directory"
}

func (e *TypeError) Is(target error) bool {
	return target == ErrMismatchedType
}

type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func pathErr(path string, err error) error {
	return &PathError{Path: path, Err: err}
}

// Stale reports whether err means the tree differs from the manifest,
// as opposed to the verification itself failing.
func Stale(err error) bool {
	return errors.Is(err, ErrFileDoesNotExist) ||
		errors.Is(err, ErrMismatchedType) ||
		errors.Is(err, ErrMismatchedContent)
}
