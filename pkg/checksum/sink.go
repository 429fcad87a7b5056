package checksum

import (
	"bufio"
	"io"
)

// Sink receives every chunk the engine reads, before the chunk is
// folded into the hash. A zero-length chunk marks end of stream.
type Sink interface {
	Accept(chunk []byte) error
}

type SinkFunc func(chunk []byte) error

func (f SinkFunc) Accept(chunk []byte) error {
	return f(chunk)
}

type discard struct{}

func (discard) Accept([]byte) error { return nil }

var Discard Sink = discard{}

// WriterSink buffers chunks into w and flushes when it sees the
// terminal empty chunk.
type WriterSink struct {
	bw      *bufio.Writer
	written int64
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{bw: bufio.NewWriterSize(w, chunkSize)}
}

func (s *WriterSink) Accept(chunk []byte) error {
	if len(chunk) == 0 {
		return s.bw.Flush()
	}
	n, err := s.bw.Write(chunk)
	s.written += int64(n)
	return err
}

func (s *WriterSink) Written() int64 {
	return s.written
}
