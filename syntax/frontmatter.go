package syntax

import (
	"strings"

	"github.com/fwojciec/streamblocks"
)

// Interface compliance check.
var _ streamblocks.Syntax = (*DelimiterFrontmatter)(nil)

// DelimiterFrontmatter recognizes bare start/end markers with a YAML
// frontmatter header declaring the block id and type:
//
//	!!start
//	---
//	id: f1
//	block_type: files_operations
//	---
//	content lines
//	!!end
type DelimiterFrontmatter struct {
	delimiter string
}

// NewDelimiterFrontmatter creates the grammar with the given marker prefix.
func NewDelimiterFrontmatter(delimiter string) *DelimiterFrontmatter {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return &DelimiterFrontmatter{delimiter: delimiter}
}

func (s *DelimiterFrontmatter) Name() string { return NameDelimiterFrontmatter }

// DetectOpen matches the start marker. Id and type are only known once the
// frontmatter is parsed.
func (s *DelimiterFrontmatter) DetectOpen(line string) (streamblocks.Opening, bool) {
	if strings.TrimSpace(line) != s.delimiter+"start" {
		return streamblocks.Opening{}, false
	}
	return streamblocks.Opening{Marker: s.delimiter}, true
}

func (s *DelimiterFrontmatter) DetectClose(_ streamblocks.Opening, line string) bool {
	return strings.TrimSpace(line) == s.delimiter+"end"
}

func (s *DelimiterFrontmatter) HeaderComplete(lines []string) bool {
	return frontmatterComplete(lines)
}

func (s *DelimiterFrontmatter) ParseHeader(_ streamblocks.Opening, lines []string) (streamblocks.Header, error) {
	fields, err := parseFrontmatter(lines)
	if err != nil {
		return streamblocks.Header{}, err
	}
	return streamblocks.Header{
		ID:     stringField(fields, "id"),
		Type:   stringField(fields, "block_type"),
		Fields: fields,
	}, nil
}
