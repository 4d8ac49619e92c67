package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/fwojciec/streamblocks"
	"google.golang.org/genai"
)

// source implements [streamblocks.Source] by wrapping the genai SDK's
// streaming iterator.
type source struct {
	ctx  context.Context
	pull func() (*genai.GenerateContentResponse, error, bool)
	stop func()
	done bool
	err  error
}

// Interface compliance check.
var _ streamblocks.Source = (*source)(nil)

// NewSource wraps a genai streaming iterator. Exported for testing and for
// callers that drive the SDK themselves.
func NewSource(ctx context.Context, iterFn iter.Seq2[*genai.GenerateContentResponse, error]) streamblocks.Source {
	next, stop := iter.Pull2(iterFn)
	return &source{ctx: ctx, pull: next, stop: stop}
}

// Next returns the next response as a chunk. Responses without text (thought
// only, usage only) still yield a chunk so their Original is observable.
func (s *source) Next() (streamblocks.Chunk, error) {
	for {
		if s.done {
			if s.err != nil {
				return streamblocks.Chunk{}, s.err
			}
			return streamblocks.Chunk{}, io.EOF
		}
		if err := s.ctx.Err(); err != nil {
			return streamblocks.Chunk{}, s.fail(err)
		}

		resp, err, ok := s.pull()
		if !ok {
			s.done = true
			continue
		}
		if err != nil {
			return streamblocks.Chunk{}, s.fail(err)
		}
		if resp == nil {
			continue
		}
		if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && len(resp.Candidates) == 0 {
			return streamblocks.Chunk{}, s.fail(fmt.Errorf("prompt blocked: %s", fb.BlockReason))
		}
		return streamblocks.Chunk{Text: responseText(resp), Original: resp}, nil
	}
}

func (s *source) fail(err error) error {
	s.done = true
	s.err = fmt.Errorf("gemini: %w", err)
	return s.err
}

// Close stops the underlying iterator.
func (s *source) Close() error {
	s.stop()
	return nil
}

// responseText joins the text parts of the first candidate, skipping
// thoughts.
func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}
