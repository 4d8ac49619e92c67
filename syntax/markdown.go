package syntax

import (
	"fmt"
	"strings"

	"github.com/fwojciec/streamblocks"
)

// Interface compliance check.
var _ streamblocks.Syntax = (*MarkdownFrontmatter)(nil)

// MarkdownFrontmatter recognizes fenced code blocks whose info string names
// the block type, with a YAML frontmatter header inside the fence:
//
//	```patch
//	---
//	id: p1
//	file: main.go
//	---
//	content lines
//	```
//
// Backtick and tilde fences of three or more characters are accepted; the
// closing fence must use the same character and be at least as long. With
// an empty info string the type comes from the frontmatter block_type.
type MarkdownFrontmatter struct{}

// NewMarkdownFrontmatter creates the grammar.
func NewMarkdownFrontmatter() *MarkdownFrontmatter {
	return &MarkdownFrontmatter{}
}

func (s *MarkdownFrontmatter) Name() string { return NameMarkdownFrontmatter }

func (s *MarkdownFrontmatter) DetectOpen(line string) (streamblocks.Opening, bool) {
	l := trimEOL(line)
	fence, info, ok := splitFence(l)
	if !ok {
		return streamblocks.Opening{}, false
	}
	// Backtick fences may not carry backticks in the info string.
	if fence[0] == '`' && strings.ContainsRune(info, '`') {
		return streamblocks.Opening{}, false
	}
	typ, _, _ := strings.Cut(strings.TrimSpace(info), " ")
	return streamblocks.Opening{Type: typ, Marker: fence}, true
}

func (s *MarkdownFrontmatter) DetectClose(open streamblocks.Opening, line string) bool {
	fence, info, ok := splitFence(strings.TrimSpace(line))
	if !ok || strings.TrimSpace(info) != "" {
		return false
	}
	if open.Marker == "" {
		return true
	}
	return fence[0] == open.Marker[0] && len(fence) >= len(open.Marker)
}

func (s *MarkdownFrontmatter) HeaderComplete(lines []string) bool {
	return frontmatterComplete(lines)
}

func (s *MarkdownFrontmatter) ParseHeader(open streamblocks.Opening, lines []string) (streamblocks.Header, error) {
	fields, err := parseFrontmatter(lines)
	if err != nil {
		return streamblocks.Header{}, err
	}
	typ := open.Type
	declared := stringField(fields, "block_type")
	switch {
	case typ == "":
		typ = declared
	case declared == "":
		fields["block_type"] = typ
	case declared != typ:
		return streamblocks.Header{}, fmt.Errorf("frontmatter block_type %q conflicts with fence type %q", declared, typ)
	}
	return streamblocks.Header{
		ID:     stringField(fields, "id"),
		Type:   typ,
		Fields: fields,
	}, nil
}

// splitFence splits a line starting with a run of at least three backticks
// or tildes into the fence and the remaining info string.
func splitFence(l string) (fence, info string, ok bool) {
	if len(l) < 3 || (l[0] != '`' && l[0] != '~') {
		return "", "", false
	}
	c := l[0]
	n := 0
	for n < len(l) && l[n] == c {
		n++
	}
	if n < 3 {
		return "", "", false
	}
	return l[:n], l[n:], true
}
