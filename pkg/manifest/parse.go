package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Column layout of a data line. Lines shorter than minLineLen after the
// header are footers or blank lines and are skipped.
const (
	sizeStart = 0
	sizeEnd   = 14
	hashStart = 22
	hashEnd   = 63
	nameStart = 69

	minLineLen   = 70
	maxLineBytes = 1 << 20

	// directorySHA marks directory entries on the wire.
	directorySHA = "0000000000000000000000000000000000000000"
)

var (
	headerRe = regexp.MustCompile(
		`^\s*Size\s*Chunks\s*File SHA\s*Flags Name\s*$`,
	)

	ErrParse    = errors.New("malformed manifest")
	ErrNoHeader = fmt.Errorf("%w: header line not found", ErrParse)
)

type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads manifest text. Everything up to and including the header
// line is ignored. When a name appears twice the later line wins.
func Parse(r io.Reader) (*Manifest, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), maxLineBytes)

	entries := make(map[string]Entry)
	afterHeader := false
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if !afterHeader {
			afterHeader = headerRe.MatchString(line)
			continue
		}
		if len(line) < minLineLen {
			continue
		}

		name, entry, err := parseLine(line)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Err: err}
		}
		entries[name] = entry
	}
	if err := scanner.Err(); errors.Is(err, bufio.ErrTooLong) {
		return nil, &ParseError{Line: lineNo + 1, Err: fmt.Errorf(
			"%w: line longer than %d bytes", ErrParse, maxLineBytes,
		)}
	} else if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if !afterHeader {
		return nil, &ParseError{Err: ErrNoHeader}
	}

	return &Manifest{entries: entries}, nil
}

func ParseString(s string) (*Manifest, error) {
	return Parse(strings.NewReader(s))
}

func parseLine(line string) (string, Entry, error) {
	sizeField := strings.TrimSpace(line[sizeStart:sizeEnd])
	hash := strings.TrimSpace(line[hashStart:hashEnd])
	name := strings.TrimSpace(line[nameStart:])

	size, err := strconv.ParseUint(
		strings.TrimPrefix(sizeField, "+"), 10, 64,
	)
	if err != nil {
		return "", Entry{}, fmt.Errorf(
			"%w: size %q: %w", ErrParse, sizeField, err,
		)
	}

	if hash == directorySHA {
		return name, Directory(size), nil
	}
	return name, File(size, hash), nil
}
