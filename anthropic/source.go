package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/streamblocks"
)

// source implements [streamblocks.Source] by parsing SSE events from an
// HTTP response body.
type source struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	ctx     context.Context
	done    bool
	err     error // terminal error, if any
}

// Interface compliance check.
var _ streamblocks.Source = (*source)(nil)

func newSource(ctx context.Context, body io.ReadCloser) *source {
	return &source{
		body:    body,
		scanner: bufio.NewScanner(body),
		ctx:     ctx,
	}
}

// NewSource reads an SSE stream from r. Exported for callers replaying a
// recorded response.
func NewSource(ctx context.Context, r io.ReadCloser) streamblocks.Source {
	return newSource(ctx, r)
}

// Next reads the next SSE event. Returns io.EOF after message_stop.
func (s *source) Next() (streamblocks.Chunk, error) {
	if s.done {
		if s.err != nil {
			return streamblocks.Chunk{}, s.err
		}
		return streamblocks.Chunk{}, io.EOF
	}

	for {
		eventType, data, err := s.readSSEEvent()
		if err != nil {
			return streamblocks.Chunk{}, s.terminate(err)
		}

		switch eventType {
		case "ping":
			continue
		case "message_stop":
			s.done = true
			return streamblocks.Chunk{}, io.EOF
		case "error":
			return streamblocks.Chunk{}, s.terminate(parseError(data))
		}

		text, err := deltaText(eventType, data)
		if err != nil {
			return streamblocks.Chunk{}, s.terminate(err)
		}
		return streamblocks.Chunk{
			Text:     text,
			Original: Event{Type: eventType, Data: json.RawMessage(data)},
		}, nil
	}
}

// Close closes the underlying HTTP response body.
func (s *source) Close() error {
	return s.body.Close()
}

// terminate records a terminal error.
func (s *source) terminate(err error) error {
	s.done = true
	switch {
	case err == io.EOF:
		// message_stop ends a healthy stream; raw EOF means it was cut off.
		s.err = fmt.Errorf("anthropic: unexpected end of stream")
	case s.ctx.Err() != nil:
		s.err = fmt.Errorf("anthropic: %w", s.ctx.Err())
	default:
		s.err = err
	}
	return s.err
}

// readSSEEvent reads lines until a complete SSE event is assembled.
// Returns the event type and the data payload.
func (s *source) readSSEEvent() (string, string, error) {
	var eventType string
	var dataBuf strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			// Empty line signals end of event.
			if dataBuf.Len() > 0 {
				return eventType, dataBuf.String(), nil
			}
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			eventType = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimPrefix(line, "data: "))
		}
		// Ignore comments (lines starting with ':') and unknown fields.
	}

	if err := s.scanner.Err(); err != nil {
		return "", "", fmt.Errorf("anthropic: %w", err)
	}

	if dataBuf.Len() > 0 {
		return eventType, dataBuf.String(), nil
	}
	return "", "", io.EOF
}

// deltaText returns the text carried by a content_block_delta event.
// Thinking and other deltas carry no text.
func deltaText(eventType, data string) (string, error) {
	if eventType != "content_block_delta" {
		return "", nil
	}
	var evt sseContentBlockDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return "", fmt.Errorf("anthropic: failed to parse content_block_delta: %w", err)
	}
	if evt.Delta.Type != "text_delta" {
		return "", nil
	}
	return evt.Delta.Text, nil
}

func parseError(data string) error {
	var evt sseError
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse error event: %w", err)
	}
	return fmt.Errorf("anthropic: %s: %s", evt.Error.Type, evt.Error.Message)
}
