package syntax

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fwojciec/streamblocks"
)

var identRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Interface compliance check.
var _ streamblocks.Syntax = (*DelimiterPreamble)(nil)

// DelimiterPreamble recognizes single-line markers that carry the block id,
// type and optional positional parameters inline:
//
//	!!t1:task:high
//	content lines
//	!!end
//
// Parameters are exposed as param_0, param_1, ... There is no header phase.
type DelimiterPreamble struct {
	delimiter string
}

// NewDelimiterPreamble creates the grammar with the given marker prefix.
func NewDelimiterPreamble(delimiter string) *DelimiterPreamble {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return &DelimiterPreamble{delimiter: delimiter}
}

func (s *DelimiterPreamble) Name() string { return NameDelimiterPreamble }

func (s *DelimiterPreamble) DetectOpen(line string) (streamblocks.Opening, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), s.delimiter)
	if !ok {
		return streamblocks.Opening{}, false
	}
	parts := strings.Split(rest, ":")
	if len(parts) < 2 || !identRe.MatchString(parts[0]) || !identRe.MatchString(parts[1]) {
		return streamblocks.Opening{}, false
	}
	o := streamblocks.Opening{ID: parts[0], Type: parts[1], Marker: s.delimiter}
	if params := parts[2:]; len(params) > 0 {
		o.Inline = make(map[string]any, len(params))
		for i, p := range params {
			o.Inline[fmt.Sprintf("param_%d", i)] = p
		}
	}
	return o, true
}

func (s *DelimiterPreamble) DetectClose(_ streamblocks.Opening, line string) bool {
	return strings.TrimSpace(line) == s.delimiter+"end"
}

// HeaderComplete always reports true: the preamble is the whole header.
func (s *DelimiterPreamble) HeaderComplete([]string) bool { return true }

func (s *DelimiterPreamble) ParseHeader(open streamblocks.Opening, _ []string) (streamblocks.Header, error) {
	fields := make(map[string]any, len(open.Inline)+2)
	for k, v := range open.Inline {
		fields[k] = v
	}
	fields["id"] = open.ID
	fields["block_type"] = open.Type
	return streamblocks.Header{ID: open.ID, Type: open.Type, Fields: fields}, nil
}
