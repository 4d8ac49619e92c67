// Package goldmark renders the prose around blocks and the text content of
// extracted blocks as ANSI-styled terminal output, using goldmark for
// parsing and lipgloss for styling.
package goldmark

import (
	"fmt"
	"strings"

	"github.com/fwojciec/streamblocks"
	"gopkg.in/yaml.v3"
)

const defaultWidth = 80

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width. Code blocks are
// rendered at full width without reflow.
func Render(source string, width int, theme streamblocks.Theme) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	return newRenderer(theme, width).render([]byte(source))
}

// RenderContent renders a block's parsed content. Text is rendered as
// markdown; structured values are dumped as YAML in a code gutter.
func RenderContent(content any, width int, theme streamblocks.Theme) string {
	switch c := content.(type) {
	case nil:
		return ""
	case string:
		return Render(c, width, theme)
	case fmt.Stringer:
		return Render(c.String(), width, theme)
	}
	data, err := yaml.Marshal(content)
	if err != nil {
		return Render(fmt.Sprintf("%v", content), width, theme)
	}
	r := newRenderer(theme, width)
	return strings.TrimRight(r.code("yaml", strings.Split(strings.TrimRight(string(data), "\n"), "\n")), "\n")
}
