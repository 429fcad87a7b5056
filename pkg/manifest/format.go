package manifest

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	headerLine = "          Size Chunks File SHA" +
		"                                 Flags Name"

	chunkBytes = 1 << 20

	flagsFile      = 0
	flagsDirectory = 64
)

// Write emits m in the text format Parse reads, entries sorted by path.
func Write(w io.Writer, m *Manifest, title string) error {
	bw := bufio.NewWriter(w)

	files := m.Files()
	fmt.Fprintf(bw, "Content Manifest for %s\n\n", title)
	fmt.Fprintf(bw, "Total number of files  : %d\n", len(files))
	fmt.Fprintf(bw, "Total number of chunks : %d\n", totalChunks(m))
	fmt.Fprintf(bw, "Total bytes on disk    : %d\n\n", m.TotalSize())
	fmt.Fprintf(bw, "%s\n", headerLine)

	for name, e := range m.All() {
		line, err := formatLine(name, e)
		if err != nil {
			return err
		}
		bw.WriteString(line)
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

func formatLine(name string, e Entry) (string, error) {
	if name == "" || strings.TrimSpace(name) != name ||
		strings.ContainsAny(name, "\r\n") {
		return "", fmt.Errorf("unrepresentable name %q", name)
	}

	hash, flags := e.Hash, flagsFile
	if e.IsDir() {
		hash, flags = directorySHA, flagsDirectory
	}
	if len(hash) != len(directorySHA) ||
		strings.ContainsAny(hash, " \t") {
		return "", fmt.Errorf(
			"%s: hash %q is not %d characters",
			name, hash, len(directorySHA),
		)
	}
	if !e.IsDir() && hash == directorySHA {
		return "", fmt.Errorf(
			"%s: file hash collides with the directory marker",
			name,
		)
	}

	line := fmt.Sprintf(
		"%14d %6d %s %5d %s",
		e.Size, chunks(e), hash, flags, name,
	)
	if line[nameStart:] != name {
		return "", fmt.Errorf(
			"%s: size %d does not fit the size column",
			name, e.Size,
		)
	}
	return line, nil
}

func chunks(e Entry) uint64 {
	if e.IsDir() {
		return 0
	}
	return (e.Size + chunkBytes - 1) / chunkBytes
}

func totalChunks(m *Manifest) uint64 {
	var n uint64
	for _, e := range m.All() {
		n += chunks(e)
	}
	return n
}
