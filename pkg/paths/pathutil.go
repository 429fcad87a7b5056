package paths

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ValidateRelPath rejects manifest names that could not safely be
// joined onto a root: empty, absolute, NUL-bearing or escaping names.
// Backslashes count as separators and drive letters as absolute on every
// host, so a name is judged the same wherever it is verified.
func ValidateRelPath(p string) error {
	if p == "" {
		return fmt.Errorf("empty path")
	}
	if strings.ContainsRune(p, 0) {
		return fmt.Errorf("path contains null byte")
	}
	slashed := strings.ReplaceAll(p, `\`, "/")
	if path.IsAbs(slashed) || filepath.IsAbs(p) ||
		filepath.VolumeName(p) != "" || hasDriveLetter(slashed) {
		return fmt.Errorf("absolute path not allowed: %s", p)
	}
	cleaned := path.Clean(slashed)
	if cleaned == "." {
		return fmt.Errorf("path resolves to current directory")
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf(
			"path escapes base directory: %s", p,
		)
	}
	return nil
}

func hasDriveLetter(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0] | 0x20
	return c >= 'a' && c <= 'z'
}

// Resolve joins a slash-separated relative path onto root using the
// host separator, refusing anything that would land outside root.
func Resolve(root, rel string) (string, error) {
	if err := ValidateRelPath(rel); err != nil {
		return "", err
	}
	full := filepath.Join(root, filepath.FromSlash(rel))
	if !IsWithinDir(root, full) {
		return "", fmt.Errorf("path escapes base directory: %s", rel)
	}
	return full, nil
}

func IsWithinDir(dir, full string) bool {
	rel, err := filepath.Rel(dir, full)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel != ".." &&
		!strings.HasPrefix(rel, "../") &&
		!filepath.IsAbs(rel)
}
