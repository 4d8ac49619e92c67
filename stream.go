package streamblocks

import (
	"errors"
	"fmt"
	"io"
)

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, pulling chunks.
	StreamStateComplete                     // Next() returned io.EOF.
	StreamStateError                        // Source returned non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// Stream pairs a Source with a Processor behind a pull-based iterator.
// Next pulls chunks from the source only when no processed events are
// pending, so the processor never runs ahead of the caller.
//
// When the source ends, Next finalizes the processor and delivers the
// remaining events, then io.EOF. When the source fails, the processor is
// still finalized: events for any in-flight block are delivered before the
// source error is returned.
type Stream struct {
	src     Source
	proc    *Processor
	state   StreamState
	pending []Event
	err     error // terminal source error, returned after pending drains
}

// NewStream creates a Stream over src and p.
func NewStream(src Source, p *Processor) *Stream {
	return &Stream{src: src, proc: p, state: StreamStateNew}
}

// Next returns the next event. It returns io.EOF after stream-end has been
// delivered.
func (s *Stream) Next() (Event, error) {
	for {
		if len(s.pending) > 0 {
			e := s.pending[0]
			s.pending = s.pending[1:]
			return e, nil
		}
		switch s.state {
		case StreamStateComplete:
			return nil, io.EOF
		case StreamStateError:
			return nil, s.err
		case StreamStateClosed:
			return nil, ErrStreamClosed
		}
		s.state = StreamStateStreaming

		c, err := s.src.Next()
		if errors.Is(err, io.EOF) {
			s.pending = s.proc.Finalize()
			s.state = StreamStateComplete
			continue
		}
		if err != nil {
			s.pending = s.proc.Finalize()
			s.state = StreamStateError
			s.err = fmt.Errorf("source: %w", err)
			continue
		}
		events, err := s.proc.FeedChunk(c)
		if err != nil {
			s.state = StreamStateError
			s.err = err
			continue
		}
		s.pending = events
	}
}

// takePending removes and returns the events processed but not yet
// returned by Next.
func (s *Stream) takePending() []Event {
	events := s.pending
	s.pending = nil
	return events
}

// State returns the current stream state.
func (s *Stream) State() StreamState {
	return s.state
}

// Close closes the source. Subsequent Next calls return ErrStreamClosed
// unless a terminal state was reached first.
func (s *Stream) Close() error {
	if s.state != StreamStateComplete && s.state != StreamStateError {
		s.state = StreamStateClosed
		s.pending = nil
	}
	return s.src.Close()
}
