// Package json encodes processing events as JSON lines and decodes them
// back. Each line is one event object with a "type" discriminator.
package json

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/streamblocks"
)

// Event type discriminators on the wire.
const (
	typeStreamStarted  = "stream_started"
	typeText           = "text"
	typeOriginal       = "original"
	typeBlockOpened    = "block_opened"
	typeBlockContent   = "block_content"
	typeBlockExtracted = "block_extracted"
	typeBlockRejected  = "block_rejected"
	typeStreamFinished = "stream_finished"
)

// eventDTO is the JSON representation of an Event with a type discriminator.
type eventDTO struct {
	Type       string          `json:"type"`
	Timestamp  time.Time       `json:"timestamp"`
	StreamID   *string         `json:"stream_id,omitempty"`
	Text       *string         `json:"text,omitempty"`
	LineNumber *int            `json:"line_number,omitempty"`
	Chunk      json.RawMessage `json:"chunk,omitempty"`
	BlockID    *string         `json:"block_id,omitempty"`
	BlockType  *string         `json:"block_type,omitempty"`
	Syntax     *string         `json:"syntax,omitempty"`
	Inline     map[string]any  `json:"inline,omitempty"`
	Section    *string         `json:"section,omitempty"`
	Block      *blockDTO       `json:"block,omitempty"`
	Rejection  *rejectionDTO   `json:"rejection,omitempty"`
	Stats      *statsDTO       `json:"stats,omitempty"`
}

type blockDTO struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Syntax     string         `json:"syntax"`
	Metadata   any            `json:"metadata"`
	Content    any            `json:"content"`
	RawContent string         `json:"raw_content"`
	Header     map[string]any `json:"header,omitempty"`
	StartLine  int            `json:"start_line"`
	EndLine    int            `json:"end_line"`
}

type rejectionDTO struct {
	Reason         string          `json:"reason"`
	Message        string          `json:"message"`
	PartialContent string          `json:"partial_content"`
	LineNumber     int             `json:"line_number"`
	StartLine      int             `json:"start_line"`
	Errors         []fieldErrorDTO `json:"errors,omitempty"`
}

type fieldErrorDTO struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type statsDTO struct {
	Lines     int `json:"lines"`
	Extracted int `json:"extracted"`
	Rejected  int `json:"rejected"`
}

func ptr[T any](v T) *T { return &v }

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// MarshalEvent serializes one Event.
func MarshalEvent(e streamblocks.Event) ([]byte, error) {
	dto, err := marshalEvent(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(dto)
}

func marshalEvent(e streamblocks.Event) (eventDTO, error) {
	dto := eventDTO{Timestamp: e.EventTime()}
	switch ev := e.(type) {
	case streamblocks.EventStreamStarted:
		dto.Type = typeStreamStarted
		dto.StreamID = ptr(ev.StreamID)
	case streamblocks.EventText:
		dto.Type = typeText
		dto.Text = ptr(ev.Text)
		dto.LineNumber = ptr(ev.LineNumber)
	case streamblocks.EventOriginal:
		dto.Type = typeOriginal
		raw, err := json.Marshal(ev.Chunk)
		if err != nil {
			return eventDTO{}, fmt.Errorf("original chunk: %w", err)
		}
		dto.Chunk = raw
	case streamblocks.EventBlockOpened:
		dto.Type = typeBlockOpened
		dto.BlockID = ptr(ev.BlockID)
		dto.BlockType = ptr(ev.BlockType)
		dto.Syntax = ptr(ev.Syntax)
		dto.LineNumber = ptr(ev.LineNumber)
		dto.Inline = ev.Inline
	case streamblocks.EventBlockContent:
		dto.Type = typeBlockContent
		dto.BlockID = ptr(ev.BlockID)
		dto.Section = ptr(string(ev.Section))
		dto.Text = ptr(ev.Line)
		dto.LineNumber = ptr(ev.LineNumber)
	case streamblocks.EventBlockExtracted:
		dto.Type = typeBlockExtracted
		b := ev.Block
		dto.Block = &blockDTO{
			ID:         b.ID,
			Type:       b.Type,
			Syntax:     b.Syntax,
			Metadata:   b.Metadata,
			Content:    b.Content,
			RawContent: b.RawContent,
			Header:     b.Header,
			StartLine:  b.StartLine,
			EndLine:    b.EndLine,
		}
	case streamblocks.EventBlockRejected:
		dto.Type = typeBlockRejected
		dto.BlockID = ptr(ev.BlockID)
		dto.BlockType = ptr(ev.BlockType)
		r := ev.Rejection
		rej := &rejectionDTO{
			Reason:         string(r.Reason),
			Message:        r.Message,
			PartialContent: r.PartialContent,
			LineNumber:     r.LineNumber,
			StartLine:      r.StartLine,
		}
		for _, fe := range r.Errors {
			rej.Errors = append(rej.Errors, fieldErrorDTO{Field: fe.Field, Message: fe.Message})
		}
		dto.Rejection = rej
	case streamblocks.EventStreamFinished:
		dto.Type = typeStreamFinished
		dto.StreamID = ptr(ev.StreamID)
		dto.Stats = &statsDTO{Lines: ev.Lines, Extracted: ev.Extracted, Rejected: ev.Rejected}
	default:
		return eventDTO{}, fmt.Errorf("unknown event type: %T", e)
	}
	return dto, nil
}

// UnmarshalEvent deserializes one Event. Metadata, content and original
// chunks come back as generic JSON values.
func UnmarshalEvent(data []byte) (streamblocks.Event, error) {
	var dto eventDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return unmarshalEvent(dto)
}

func unmarshalEvent(dto eventDTO) (streamblocks.Event, error) {
	ts := dto.Timestamp
	switch dto.Type {
	case typeStreamStarted:
		return streamblocks.EventStreamStarted{StreamID: deref(dto.StreamID), Timestamp: ts}, nil
	case typeText:
		return streamblocks.EventText{Text: deref(dto.Text), LineNumber: deref(dto.LineNumber), Timestamp: ts}, nil
	case typeOriginal:
		return streamblocks.EventOriginal{Chunk: dto.Chunk, Timestamp: ts}, nil
	case typeBlockOpened:
		return streamblocks.EventBlockOpened{
			BlockID:    deref(dto.BlockID),
			BlockType:  deref(dto.BlockType),
			Syntax:     deref(dto.Syntax),
			LineNumber: deref(dto.LineNumber),
			Inline:     dto.Inline,
			Timestamp:  ts,
		}, nil
	case typeBlockContent:
		return streamblocks.EventBlockContent{
			BlockID:    deref(dto.BlockID),
			Section:    streamblocks.Section(deref(dto.Section)),
			Line:       deref(dto.Text),
			LineNumber: deref(dto.LineNumber),
			Timestamp:  ts,
		}, nil
	case typeBlockExtracted:
		if dto.Block == nil {
			return nil, fmt.Errorf("%s: missing block", dto.Type)
		}
		b := dto.Block
		return streamblocks.EventBlockExtracted{
			Block: streamblocks.Block{
				ID:         b.ID,
				Type:       b.Type,
				Syntax:     b.Syntax,
				Metadata:   b.Metadata,
				Content:    b.Content,
				RawContent: b.RawContent,
				Header:     b.Header,
				StartLine:  b.StartLine,
				EndLine:    b.EndLine,
			},
			Timestamp: ts,
		}, nil
	case typeBlockRejected:
		if dto.Rejection == nil {
			return nil, fmt.Errorf("%s: missing rejection", dto.Type)
		}
		r := dto.Rejection
		rej := streamblocks.BlockRejection{
			Reason:         streamblocks.RejectReason(r.Reason),
			Message:        r.Message,
			PartialContent: r.PartialContent,
			LineNumber:     r.LineNumber,
			StartLine:      r.StartLine,
		}
		for _, fe := range r.Errors {
			rej.Errors = append(rej.Errors, streamblocks.FieldError{Field: fe.Field, Message: fe.Message})
		}
		return streamblocks.EventBlockRejected{
			BlockID:   deref(dto.BlockID),
			BlockType: deref(dto.BlockType),
			Rejection: rej,
			Timestamp: ts,
		}, nil
	case typeStreamFinished:
		stats := deref(dto.Stats)
		return streamblocks.EventStreamFinished{
			StreamID:  deref(dto.StreamID),
			Lines:     stats.Lines,
			Extracted: stats.Extracted,
			Rejected:  stats.Rejected,
			Timestamp: ts,
		}, nil
	default:
		return nil, fmt.Errorf("unknown event type: %q", dto.Type)
	}
}

// Encoder writes events as JSON lines.
type Encoder struct {
	enc *json.Encoder
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Encoder{enc: enc}
}

// Encode writes one event followed by a newline.
func (e *Encoder) Encode(ev streamblocks.Event) error {
	dto, err := marshalEvent(ev)
	if err != nil {
		return err
	}
	return e.enc.Encode(dto)
}

// Decoder reads events written by an Encoder.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16<<20)
	return &Decoder{scanner: s}
}

// Decode returns the next event, or io.EOF when the input is exhausted.
// Blank lines are skipped.
func (d *Decoder) Decode() (streamblocks.Event, error) {
	for d.scanner.Scan() {
		d.line++
		data := d.scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		e, err := UnmarshalEvent(data)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", d.line, err)
		}
		return e, nil
	}
	if err := d.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
