package streamblocks

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ParseState is the position of the processor relative to blocks.
type ParseState int

const (
	StateOutside   ParseState = iota // Between blocks.
	StateInHeader                    // Accumulating header lines.
	StateInContent                   // Accumulating content lines.
)

func (s ParseState) String() string {
	switch s {
	case StateOutside:
		return "outside"
	case StateInHeader:
		return "in_header"
	case StateInContent:
		return "in_content"
	default:
		return fmt.Sprintf("ParseState(%d)", int(s))
	}
}

// openBlock is the block currently being accumulated.
type openBlock struct {
	opening   Opening
	startLine int
	header    []string
	content   strings.Builder
	size      int
}

func (b *openBlock) partial() string {
	var sb strings.Builder
	for _, l := range b.header {
		sb.WriteString(l)
	}
	sb.WriteString(b.content.String())
	return sb.String()
}

// Processor incrementally extracts blocks from a text stream. It is
// push-driven: Feed each fragment, then Finalize once. A Processor serves
// one stream at a time and is not safe for concurrent use; create one per
// stream. Every call runs all transitions for its input before returning.
type Processor struct {
	cfg      Config
	syntax   Syntax
	registry *Registry
	policy   emissionPolicy
	logger   *slog.Logger

	lines  lineBuffer
	state  ParseState
	lineNo int
	cur    *openBlock

	// skipping is set after a size overflow; lines are discarded until
	// the overflowing block's close marker.
	skipping bool
	skipOpen Opening

	vctx      *ValidationContext
	started   bool
	finalized bool
	extracted int
	rejected  int

	out []Event
}

// NewProcessor creates a Processor over registry. Building a processor
// freezes the registry.
func NewProcessor(registry *Registry, cfg Config) (*Processor, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required: %w", ErrValidation)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	registry.freeze()
	return &Processor{
		cfg:      cfg,
		syntax:   cfg.Syntax,
		registry: registry,
		policy:   newEmissionPolicy(cfg),
		logger:   cfg.Logger.With("stream_id", cfg.StreamID, "syntax", cfg.Syntax.Name()),
		vctx:     NewValidationContext(cfg.StreamID),
	}, nil
}

// State returns the current parse state.
func (p *Processor) State() ParseState { return p.state }

// LineNumber returns the number of logical lines consumed so far.
func (p *Processor) LineNumber() int { return p.lineNo }

// Feed processes one text fragment and returns the events it produced.
func (p *Processor) Feed(text string) ([]Event, error) {
	return p.FeedChunk(Chunk{Text: text})
}

// FeedChunk processes one chunk. When the chunk carries an Original object
// and original passthrough is enabled, EventOriginal precedes the events
// derived from its text.
func (p *Processor) FeedChunk(c Chunk) ([]Event, error) {
	if p.finalized {
		return nil, ErrProcessorFinalized
	}
	p.start()
	if c.Original != nil {
		p.emit(EventOriginal{Chunk: c.Original})
	}
	for _, line := range p.lines.write(c.Text) {
		p.consume(line)
	}
	p.guardPartial()
	return p.drain(), nil
}

// Finalize flushes the trailing partial line, rejects a still-open block as
// unclosed, and emits stream-end. Calls after the first return no events.
func (p *Processor) Finalize() []Event {
	if p.finalized {
		return nil
	}
	p.start()
	if rest, ok := p.lines.flush(); ok {
		p.consume(rest)
	}
	if p.state != StateOutside {
		p.reject(ReasonUnclosedBlock, errors.New("block not closed before end of stream"))
	}
	p.skipping = false
	p.finalized = true
	p.emit(EventStreamFinished{
		StreamID:  p.cfg.StreamID,
		Lines:     p.lineNo,
		Extracted: p.extracted,
		Rejected:  p.rejected,
	})
	return p.drain()
}

// Reset discards the stream cursor so the processor can serve a new stream
// with the same configuration.
func (p *Processor) Reset() {
	p.lines.reset()
	p.state = StateOutside
	p.lineNo = 0
	p.cur = nil
	p.skipping = false
	p.skipOpen = Opening{}
	p.vctx = NewValidationContext(p.cfg.StreamID)
	p.started = false
	p.finalized = false
	p.extracted = 0
	p.rejected = 0
	p.out = nil
}

func (p *Processor) start() {
	if p.started {
		return
	}
	p.started = true
	p.emit(EventStreamStarted{StreamID: p.cfg.StreamID})
}

func (p *Processor) consume(line string) {
	p.lineNo++

	if p.state == StateOutside {
		if p.skipping {
			if p.syntax.DetectClose(p.skipOpen, line) {
				p.skipping = false
				p.skipOpen = Opening{}
			}
			return
		}
		if open, ok := p.syntax.DetectOpen(line); ok {
			p.open(open)
			return
		}
		p.emit(EventText{Text: line, LineNumber: p.lineNo})
		return
	}

	if p.syntax.DetectClose(p.cur.opening, line) {
		p.close()
		return
	}

	if p.cur.size+len(line) > p.cfg.MaxBlockSize {
		p.overflow(p.lineNo)
		return
	}
	p.cur.size += len(line)

	section := SectionContent
	if p.state == StateInHeader {
		section = SectionHeader
		p.cur.header = append(p.cur.header, line)
		if p.syntax.HeaderComplete(p.cur.header) {
			p.state = StateInContent
		}
	} else {
		p.cur.content.WriteString(line)
	}
	p.emit(EventBlockContent{
		BlockID:    p.cur.opening.ID,
		Section:    section,
		Line:       line,
		LineNumber: p.lineNo,
	})
}

// maxMarkerLen bounds the length of any open or close marker line. A
// partial line longer than this is content, whatever follows it.
const maxMarkerLen = 256

// guardPartial applies the size limit to the buffered partial line. Inside
// a block an unterminated line that can no longer be a close marker counts
// toward the block size; while skipping such a line is dropped.
func (p *Processor) guardPartial() {
	n := p.lines.len()
	if n <= maxMarkerLen {
		return
	}
	if p.state != StateOutside && p.cur.size+n > p.cfg.MaxBlockSize {
		p.overflow(p.lineNo + 1)
	}
	if p.skipping {
		p.lines.discard()
	}
}

func (p *Processor) open(o Opening) {
	p.cur = &openBlock{opening: o, startLine: p.lineNo}
	p.state = StateInHeader
	if p.syntax.HeaderComplete(nil) {
		p.state = StateInContent
	}
	p.emit(EventBlockOpened{
		BlockID:    o.ID,
		BlockType:  o.Type,
		Syntax:     p.syntax.Name(),
		LineNumber: p.lineNo,
		Inline:     o.Inline,
	})
}

func (p *Processor) close() {
	b := p.cur
	if b.opening.Type != "" {
		if _, ok := p.registry.Lookup(b.opening.Type); !ok {
			p.reject(ReasonUnknownBlockType, fmt.Errorf("%q: %w", b.opening.Type, ErrUnknownBlockType))
			return
		}
	}
	h, err := p.syntax.ParseHeader(b.opening, b.header)
	if err != nil {
		p.reject(ReasonInvalidHeader, err)
		return
	}
	if h.Type == "" {
		p.reject(ReasonInvalidHeader, errors.New("header does not declare a block type"))
		return
	}

	block, err := p.registry.Extract(p.vctx, Candidate{
		ID:         h.ID,
		Type:       h.Type,
		Syntax:     p.syntax.Name(),
		Header:     h.Fields,
		RawContent: b.content.String(),
		StartLine:  b.startLine,
		EndLine:    p.lineNo,
	})
	if err != nil {
		reason := ReasonValidationFailed
		var xe *ExtractError
		if errors.As(err, &xe) {
			reason = xe.Reason
			err = xe.Err
		}
		p.rejectAs(h.ID, h.Type, reason, err)
		return
	}

	p.cur = nil
	p.state = StateOutside
	p.extracted++
	p.emit(EventBlockExtracted{Block: block})
}

// overflow rejects the open block for exceeding the size limit at line and
// starts skipping to its close marker.
func (p *Processor) overflow(line int) {
	p.skipping = true
	p.skipOpen = p.cur.opening
	p.rejectAt(line, p.cur.opening.ID, p.cur.opening.Type, ReasonMaxSizeExceeded,
		fmt.Errorf("block exceeds max size of %d bytes", p.cfg.MaxBlockSize))
}

func (p *Processor) reject(reason RejectReason, err error) {
	p.rejectAs(p.cur.opening.ID, p.cur.opening.Type, reason, err)
}

func (p *Processor) rejectAs(id, blockType string, reason RejectReason, err error) {
	p.rejectAt(p.lineNo, id, blockType, reason, err)
}

// rejectAt emits the rejection for the open block and returns to outside.
func (p *Processor) rejectAt(line int, id, blockType string, reason RejectReason, err error) {
	b := p.cur
	if b == nil {
		p.logger.Error("rejection without open block", "reason", reason, "line", line)
		return
	}
	rej := BlockRejection{
		Reason:         reason,
		Message:        err.Error(),
		PartialContent: b.partial(),
		LineNumber:     line,
		StartLine:      b.startLine,
	}
	var se *SchemaError
	if errors.As(err, &se) {
		rej.Errors = se.Errors
	}

	p.cur = nil
	p.state = StateOutside
	p.rejected++
	p.logger.Warn("block rejected",
		"block_id", id,
		"block_type", blockType,
		"reason", reason,
		"line", line,
		"error", rej.Message,
	)
	p.emit(EventBlockRejected{BlockID: id, BlockType: blockType, Rejection: rej})
}

func (p *Processor) emit(e Event) {
	if e, ok := p.policy.apply(e, p.cfg.Now()); ok {
		p.out = append(p.out, e)
	}
}

func (p *Processor) drain() []Event {
	out := p.out
	p.out = nil
	return out
}
