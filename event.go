package streamblocks

import "time"

// Event is a sealed interface representing an observable processing event.
// Events are emitted in the exact order the processor produces them.
// Per-block failures are events (EventBlockRejected), never Go errors.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
	// EventTime returns the timestamp assigned at emission.
	EventTime() time.Time
}

// Section identifies which part of an open block a line belongs to.
type Section string

const (
	SectionHeader  Section = "header"
	SectionContent Section = "content"
)

// EventStreamStarted is emitted once, before any other event of a stream.
type EventStreamStarted struct {
	StreamID  string
	Timestamp time.Time
}

func (EventStreamStarted) event() {}

// EventTime returns the emission timestamp.
func (e EventStreamStarted) EventTime() time.Time { return e.Timestamp }

// EventText carries one complete line of text outside any block,
// including its line terminator when present.
type EventText struct {
	Text       string
	LineNumber int
	Timestamp  time.Time
}

func (EventText) event() {}

// EventTime returns the emission timestamp.
func (e EventText) EventTime() time.Time { return e.Timestamp }

// EventOriginal passes through the upstream adapter's chunk object
// unchanged. It precedes the events derived from that chunk's text.
type EventOriginal struct {
	Chunk     any
	Timestamp time.Time
}

func (EventOriginal) event() {}

// EventTime returns the emission timestamp.
func (e EventOriginal) EventTime() time.Time { return e.Timestamp }

// EventBlockOpened signals that an opening marker was recognized. BlockID
// and BlockType are empty when the grammar declares them in the header.
type EventBlockOpened struct {
	BlockID    string
	BlockType  string
	Syntax     string
	LineNumber int
	Inline     map[string]any
	Timestamp  time.Time
}

func (EventBlockOpened) event() {}

// EventTime returns the emission timestamp.
func (e EventBlockOpened) EventTime() time.Time { return e.Timestamp }

// EventBlockContent carries one line accumulated into the open block.
type EventBlockContent struct {
	BlockID    string
	Section    Section
	Line       string
	LineNumber int
	Timestamp  time.Time
}

func (EventBlockContent) event() {}

// EventTime returns the emission timestamp.
func (e EventBlockContent) EventTime() time.Time { return e.Timestamp }

// EventBlockExtracted carries a block that passed the validation pipeline.
type EventBlockExtracted struct {
	Block     Block
	Timestamp time.Time
}

func (EventBlockExtracted) event() {}

// EventTime returns the emission timestamp.
func (e EventBlockExtracted) EventTime() time.Time { return e.Timestamp }

// EventBlockRejected carries the reason an opened block produced no Block.
type EventBlockRejected struct {
	BlockID   string
	BlockType string
	Rejection BlockRejection
	Timestamp time.Time
}

func (EventBlockRejected) event() {}

// EventTime returns the emission timestamp.
func (e EventBlockRejected) EventTime() time.Time { return e.Timestamp }

// EventStreamFinished is emitted once, after Finalize has flushed the input.
type EventStreamFinished struct {
	StreamID  string
	Lines     int
	Extracted int
	Rejected  int
	Timestamp time.Time
}

func (EventStreamFinished) event() {}

// EventTime returns the emission timestamp.
func (e EventStreamFinished) EventTime() time.Time { return e.Timestamp }

// Interface compliance checks.
var (
	_ Event = EventStreamStarted{}
	_ Event = EventText{}
	_ Event = EventOriginal{}
	_ Event = EventBlockOpened{}
	_ Event = EventBlockContent{}
	_ Event = EventBlockExtracted{}
	_ Event = EventBlockRejected{}
	_ Event = EventStreamFinished{}
)
