package bubbletea

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/streamblocks"
	"github.com/fwojciec/streamblocks/goldmark"
	"github.com/mattn/go-runewidth"
)

var _ Item = (*BlockItem)(nil)

// BlockStatus is the outcome shown on a block card.
type BlockStatus int

const (
	StatusOpen BlockStatus = iota
	StatusExtracted
	StatusRejected
)

// BlockItem renders one block as a collapsible card. While the block is
// open it shows the lines accumulated so far; once closed it shows either
// the parsed content or the rejection.
type BlockItem struct {
	id        string
	blockType string
	startLine int
	lines     []string

	status    BlockStatus
	block     streamblocks.Block
	rejection streamblocks.BlockRejection

	collapsed bool
	focused   bool
	theme     streamblocks.Theme
	styles    Styles
}

// NewBlockItem creates a card for a block that has just been opened.
func NewBlockItem(e streamblocks.EventBlockOpened, theme streamblocks.Theme, styles Styles) *BlockItem {
	return &BlockItem{
		id:        e.BlockID,
		blockType: e.BlockType,
		startLine: e.LineNumber,
		collapsed: true,
		theme:     theme,
		styles:    styles,
	}
}

// Status returns the card's current outcome.
func (b *BlockItem) Status() BlockStatus { return b.status }

// Collapsed reports whether the card body is hidden.
func (b *BlockItem) Collapsed() bool { return b.collapsed }

// AppendLine adds a header or content line of the open block.
func (b *BlockItem) AppendLine(line string) {
	b.lines = append(b.lines, line)
}

// Extract marks the block as extracted.
func (b *BlockItem) Extract(block streamblocks.Block) {
	b.status = StatusExtracted
	b.block = block
	b.id = block.ID
	b.blockType = block.Type
	if block.StartLine > 0 {
		b.startLine = block.StartLine
	}
}

// Reject marks the block as rejected.
func (b *BlockItem) Reject(e streamblocks.EventBlockRejected) {
	b.status = StatusRejected
	b.rejection = e.Rejection
	if e.BlockID != "" {
		b.id = e.BlockID
	}
	if e.BlockType != "" {
		b.blockType = e.BlockType
	}
	if e.Rejection.StartLine > 0 {
		b.startLine = e.Rejection.StartLine
	}
}

func (b *BlockItem) Update(msg tea.Msg) (Item, tea.Cmd) {
	switch msg := msg.(type) {
	case ToggleMsg:
		b.collapsed = !b.collapsed
	case FocusMsg:
		b.focused = msg.Focused
	}
	return b, nil
}

func (b *BlockItem) View(width int) string {
	inner := max(width-2, 10)
	content := b.header(inner)
	if !b.collapsed {
		if body := b.body(inner); body != "" {
			content += "\n" + body
		}
	}
	style := b.styles.Card
	if b.focused {
		style = b.styles.Focused
	}
	return style.Width(max(width-1, 1)).Render(content)
}

func (b *BlockItem) header(width int) string {
	indicator := "▶"
	if !b.collapsed {
		indicator = "▼"
	}
	var mark, label string
	markStyle := b.styles.Muted
	switch b.status {
	case StatusExtracted:
		mark, label, markStyle = "✓", "extracted", b.styles.Extracted
	case StatusRejected:
		mark, label, markStyle = "✗", string(b.rejection.Reason), b.styles.Rejected
	default:
		mark, label = "…", "open"
	}

	name := b.blockType
	if name == "" {
		name = "block"
	}
	if b.id != "" {
		name += " " + b.id
	}
	title := fmt.Sprintf("%s %s %s", indicator, mark, name)
	suffix := fmt.Sprintf(" %s · line %d", label, b.startLine)

	// Truncate the title first so the status label stays visible.
	titleWidth := max(width-runewidth.StringWidth(suffix), 4)
	title = runewidth.Truncate(title, titleWidth, "…")
	return b.styles.BlockHeader.Render(title) + markStyle.Render(suffix)
}

func (b *BlockItem) body(width int) string {
	switch b.status {
	case StatusExtracted:
		return goldmark.RenderContent(b.block.Content, width, b.theme)
	case StatusRejected:
		var sb strings.Builder
		sb.WriteString(b.styles.Rejected.Render(b.rejection.Message))
		for _, fe := range b.rejection.Errors {
			sb.WriteString("\n")
			sb.WriteString(b.styles.Rejected.Render("  " + fe.String()))
		}
		if partial := strings.TrimRight(b.rejection.PartialContent, "\n"); partial != "" {
			sb.WriteString("\n")
			sb.WriteString(b.styles.Muted.Render(truncateLines(partial, width)))
		}
		return sb.String()
	default:
		if len(b.lines) == 0 {
			return ""
		}
		raw := strings.TrimRight(strings.Join(b.lines, ""), "\n")
		return b.styles.Muted.Render(truncateLines(raw, width))
	}
}

// truncateLines cuts every line of s to width display cells.
func truncateLines(s string, width int) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = runewidth.Truncate(strings.TrimRight(line, "\r"), width, "…")
	}
	return strings.Join(lines, "\n")
}
