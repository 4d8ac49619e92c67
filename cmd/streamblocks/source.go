package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/streamblocks"
)

const defaultChunkSize = 4096

var _ streamblocks.Source = (*readerSource)(nil)

// readerSource feeds a reader to the processor in fixed-size chunks.
// Chunks split lines and multi-byte characters arbitrarily, the way
// network streams do.
type readerSource struct {
	r      io.Reader
	closer io.Closer
	buf    []byte
}

func newReaderSource(r io.Reader, chunkSize int) *readerSource {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	s := &readerSource{r: r, buf: make([]byte, chunkSize)}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

func (s *readerSource) Next() (streamblocks.Chunk, error) {
	for {
		n, err := s.r.Read(s.buf)
		if n > 0 {
			return streamblocks.Chunk{Text: string(s.buf[:n])}, nil
		}
		if errors.Is(err, io.EOF) {
			return streamblocks.Chunk{}, io.EOF
		}
		if err != nil {
			return streamblocks.Chunk{}, fmt.Errorf("read input: %w", err)
		}
	}
}

func (s *readerSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// openInput opens the named file, or returns stdin when no file is given
// or the name is "-".
func openInput(stdin io.Reader, args []string) (io.Reader, error) {
	if len(args) == 0 || args[0] == "-" {
		return stdin, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}
