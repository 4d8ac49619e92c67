// Package syntax implements the block grammars understood by the
// processor: delimiter markers with an inline preamble, delimiter markers
// with a YAML frontmatter header, and markdown code fences with a YAML
// frontmatter header.
//
// The set is closed: Parse maps a configuration name to one of the three.
package syntax

import (
	"fmt"
	"strings"

	"github.com/fwojciec/streamblocks"
	"gopkg.in/yaml.v3"
)

// Grammar names as used in configuration and events.
const (
	NameDelimiterPreamble    = "delimiter-preamble"
	NameDelimiterFrontmatter = "delimiter-frontmatter"
	NameMarkdownFrontmatter  = "markdown-frontmatter"
)

// DefaultDelimiter prefixes the markers of both delimiter grammars.
const DefaultDelimiter = "!!"

const frontmatterFence = "---"

// Names lists the supported grammar names.
func Names() []string {
	return []string{NameDelimiterPreamble, NameDelimiterFrontmatter, NameMarkdownFrontmatter}
}

// Parse returns the grammar registered under name, using the default
// delimiter for the delimiter grammars.
func Parse(name string) (streamblocks.Syntax, error) {
	switch name {
	case NameDelimiterPreamble:
		return NewDelimiterPreamble(DefaultDelimiter), nil
	case NameDelimiterFrontmatter:
		return NewDelimiterFrontmatter(DefaultDelimiter), nil
	case NameMarkdownFrontmatter:
		return NewMarkdownFrontmatter(), nil
	default:
		return nil, fmt.Errorf("unknown syntax %q: must be one of %s: %w",
			name, strings.Join(Names(), ", "), streamblocks.ErrValidation)
	}
}

// trimEOL strips the line terminator.
func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// frontmatterComplete reports whether lines hold a complete frontmatter
// block. A first line other than the fence ends the header immediately;
// ParseHeader then rejects it.
func frontmatterComplete(lines []string) bool {
	if len(lines) == 0 {
		return false
	}
	if strings.TrimSpace(lines[0]) != frontmatterFence {
		return true
	}
	return len(lines) >= 2 && strings.TrimSpace(lines[len(lines)-1]) == frontmatterFence
}

// parseFrontmatter decodes a fenced YAML frontmatter into fields.
func parseFrontmatter(lines []string) (map[string]any, error) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontmatterFence {
		return nil, fmt.Errorf("missing %q frontmatter", frontmatterFence)
	}
	if len(lines) < 2 || strings.TrimSpace(lines[len(lines)-1]) != frontmatterFence {
		return nil, fmt.Errorf("unterminated frontmatter")
	}
	body := strings.Join(lines[1:len(lines)-1], "")
	fields := map[string]any{}
	if strings.TrimSpace(body) == "" {
		return fields, nil
	}
	if err := yaml.Unmarshal([]byte(body), &fields); err != nil {
		return nil, fmt.Errorf("frontmatter: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("frontmatter must be a mapping")
	}
	return fields, nil
}

// stringField returns fields[key] as a string, formatting scalars.
func stringField(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
