// Package checksum computes the SHA-1 content hash used by manifests,
// optionally streaming every chunk through a Sink so that a single
// read pass can both verify and copy a file.
package checksum

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	chunkSize = 8 << 10

	// HexSize is the length of a digest as returned by Digest.
	HexSize = sha1.Size * 2
)

// Digest hashes r until EOF and returns the uppercase hex digest.
// When sink is non-nil it sees each chunk first, followed by one
// empty chunk once r is exhausted.
func Digest(r io.Reader, sink Sink) (string, error) {
	if sink == nil {
		sink = Discard
	}

	h := sha1.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if serr := sink.Accept(buf[:n]); serr != nil {
				return "", fmt.Errorf("sink: %w", serr)
			}
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read: %w", err)
		}
	}
	if err := sink.Accept(buf[:0]); err != nil {
		return "", fmt.Errorf("sink: %w", err)
	}

	return strings.ToUpper(hex.EncodeToString(h.Sum(nil))), nil
}

func DigestFile(path string, sink Sink) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return Digest(f, sink)
}

func DigestBytes(b []byte) string {
	sum := sha1.Sum(b)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
