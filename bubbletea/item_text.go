package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/streamblocks"
	"github.com/fwojciec/streamblocks/goldmark"
)

var _ Item = (*TextItem)(nil)

// TextItem renders a run of text lines found between blocks as markdown.
// Paragraphs that ended before the last blank line are rendered once per
// width and cached; only the trailing paragraph is re-rendered as lines
// arrive.
type TextItem struct {
	content strings.Builder
	theme   streamblocks.Theme

	settled        string
	settledByWidth map[int]string
}

// NewTextItem creates an empty text run.
func NewTextItem(theme streamblocks.Theme) *TextItem {
	return &TextItem{theme: theme, settledByWidth: make(map[int]string)}
}

// AppendLine adds one line of text, terminator included.
func (t *TextItem) AppendLine(line string) {
	t.content.WriteString(line)
	t.settle()
}

// Text returns the raw accumulated text.
func (t *TextItem) Text() string { return t.content.String() }

func (t *TextItem) Update(tea.Msg) (Item, tea.Cmd) { return t, nil }

func (t *TextItem) View(width int) string {
	settled := t.renderSettled(width)
	trailing := t.trailing()
	if unclosedFence(trailing) {
		trailing += "\n```"
	}
	rendered := goldmark.Render(trailing, width, t.theme)
	if strings.TrimSpace(rendered) == "" {
		return settled
	}
	if settled == "" {
		return rendered
	}
	return strings.TrimRight(settled, "\n") + "\n\n" + strings.TrimLeft(rendered, "\n")
}

// settle moves the settled prefix forward to the last blank line that is
// not inside an open code fence.
func (t *TextItem) settle() {
	raw := t.content.String()
	for end := len(raw); ; {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			return
		}
		candidate := raw[:idx]
		if !unclosedFence(candidate) {
			if candidate != t.settled {
				t.settled = candidate
				clear(t.settledByWidth)
			}
			return
		}
		end = idx
	}
}

func (t *TextItem) renderSettled(width int) string {
	if width <= 0 || t.settled == "" {
		return ""
	}
	if cached, ok := t.settledByWidth[width]; ok {
		return cached
	}
	rendered := goldmark.Render(t.settled, width, t.theme)
	t.settledByWidth[width] = rendered
	return rendered
}

func (t *TextItem) trailing() string {
	raw := t.content.String()
	if t.settled == "" {
		return raw
	}
	return strings.TrimPrefix(raw, t.settled+"\n\n")
}

// unclosedFence reports an odd number of backtick fences in s.
func unclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
