package mock

import (
	"io"

	"github.com/fwojciec/streamblocks"
)

// Source is a test double for streamblocks.Source.
// NextFn panics when nil to catch missing setup. CloseFn is nil-safe
// because callers commonly defer Close.
type Source struct {
	NextFn  func() (streamblocks.Chunk, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Source) Next() (streamblocks.Chunk, error) {
	return s.NextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Source) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Chunks returns a Source that yields each text as one chunk, then io.EOF.
func Chunks(texts ...string) *Source {
	i := 0
	return &Source{
		NextFn: func() (streamblocks.Chunk, error) {
			if i >= len(texts) {
				return streamblocks.Chunk{}, io.EOF
			}
			i++
			return streamblocks.Chunk{Text: texts[i-1]}, nil
		},
	}
}
