package goldmark

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/streamblocks"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type ansiRenderer struct {
	width int

	bold      lipgloss.Style
	italic    lipgloss.Style
	accent    lipgloss.Style
	muted     lipgloss.Style
	underline lipgloss.Style
	codeBg    lipgloss.Style
}

func newRenderer(theme streamblocks.Theme, width int) *ansiRenderer {
	if width <= 0 {
		width = defaultWidth
	}
	return &ansiRenderer{
		width:     width,
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		accent:    lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		underline: lipgloss.NewStyle().Underline(true),
		codeBg:    lipgloss.NewStyle().Background(ansiColor(theme.CodeBg)),
	}
}

// ansiColor maps a theme index to a lipgloss color. -1 means no color.
func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *ansiRenderer) render(source []byte) string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))
	var buf bytes.Buffer
	r.children(doc, source, &buf)
	return strings.TrimRight(buf.String(), "\n")
}

func (r *ansiRenderer) children(node ast.Node, source []byte, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.block(c, source, buf)
		if c.NextSibling() != nil && c.Kind() != ast.KindHTMLBlock {
			buf.WriteString("\n")
		}
	}
}

func (r *ansiRenderer) block(node ast.Node, source []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		buf.WriteString(r.wrap(r.inline(n, source), r.width))
		buf.WriteString("\n")

	case *ast.Heading:
		buf.WriteString(r.wrap(r.accent.Render(r.inline(n, source)), r.width))
		buf.WriteString("\n")

	case *ast.FencedCodeBlock:
		buf.WriteString(r.code(string(n.Language(source)), lineValues(n, source)))

	case *ast.CodeBlock:
		buf.WriteString(r.code("", lineValues(n, source)))

	case *ast.List:
		r.list(n, source, buf, 0)

	case *ast.Blockquote:
		var inner bytes.Buffer
		r.children(n, source, &inner)
		bar := r.muted.Render("▌") + " "
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			buf.WriteString(bar + line + "\n")
		}

	case *ast.ThematicBreak:
		buf.WriteString(r.muted.Render(strings.Repeat("─", min(r.width, 40))))
		buf.WriteString("\n")

	case *ast.HTMLBlock:
		for _, line := range lineValues(n, source) {
			buf.WriteString(line + "\n")
		}

	default:
		r.children(node, source, buf)
	}
}

// code renders lines behind a gutter, with an optional language label.
// Lines are never reflowed.
func (r *ansiRenderer) code(lang string, lines []string) string {
	var sb strings.Builder
	if lang != "" {
		sb.WriteString(r.muted.Render(lang))
		sb.WriteString("\n")
	}
	gutter := r.muted.Render("│") + " "
	for _, line := range lines {
		sb.WriteString(gutter + r.codeBg.Render(line) + "\n")
	}
	return sb.String()
}

func lineValues(n ast.Node, source []byte) []string {
	lines := n.Lines()
	out := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, strings.TrimRight(string(seg.Value(source)), "\n"))
	}
	return out
}

func (r *ansiRenderer) list(node *ast.List, source []byte, buf *bytes.Buffer, depth int) {
	n := node.Start
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "- "
		if node.IsOrdered() {
			marker = fmt.Sprintf("%d. ", n)
			n++
		}
		indent := strings.Repeat("  ", depth)

		var pending bytes.Buffer
		flush := func() {
			if pending.Len() == 0 {
				return
			}
			r.listItem(buf, indent+marker, pending.String())
			pending.Reset()
			marker = strings.Repeat(" ", len(marker))
		}
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				pending.WriteString(r.inline(in, source))
			case *ast.List:
				flush()
				r.list(in, source, buf, depth+1)
			default:
				r.block(ic, source, &pending)
			}
		}
		flush()
	}
}

// listItem writes an item with continuation lines aligned under its text.
func (r *ansiRenderer) listItem(buf *bytes.Buffer, prefix, content string) {
	wrapped := r.wrap(content, max(r.width-len(prefix), 10))
	pad := strings.Repeat(" ", len(prefix))
	for i, line := range strings.Split(wrapped, "\n") {
		if i == 0 {
			buf.WriteString(prefix + line + "\n")
			continue
		}
		buf.WriteString(pad + line + "\n")
	}
}

func (r *ansiRenderer) wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

// inline collects styled inline text from a node's children.
func (r *ansiRenderer) inline(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.inlineNode(c, source, &buf)
	}
	return buf.String()
}

func (r *ansiRenderer) inlineNode(node ast.Node, source []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		switch {
		case n.HardLineBreak():
			buf.WriteByte('\n')
		case n.SoftLineBreak():
			buf.WriteByte(' ')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Emphasis:
		inner := r.inline(n, source)
		if n.Level == 1 {
			buf.WriteString(r.italic.Render(inner))
		} else {
			buf.WriteString(r.bold.Render(inner))
		}

	case *ast.CodeSpan:
		buf.WriteString(r.bold.Render(r.inline(n, source)))

	case *ast.Link:
		buf.WriteString(r.underline.Render(r.inline(n, source)))
		buf.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))

	case *ast.AutoLink:
		buf.WriteString(r.underline.Render(string(n.URL(source))))

	case *ast.Image:
		buf.WriteString(r.underline.Render(r.inline(n, source)))
		buf.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(source))
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.inlineNode(c, source, buf)
		}
	}
}
