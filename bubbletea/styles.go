package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/streamblocks"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	BlockHeader lipgloss.Style
	Extracted   lipgloss.Style
	Rejected    lipgloss.Style
	Muted       lipgloss.Style
	Accent      lipgloss.Style
	Card        lipgloss.Style
	Focused     lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t streamblocks.Theme) Styles {
	return Styles{
		BlockHeader: lipgloss.NewStyle().Foreground(ansiColor(t.BlockHeader)).Bold(true),
		Extracted:   lipgloss.NewStyle().Foreground(ansiColor(t.Extracted)),
		Rejected:    lipgloss.NewStyle().Foreground(ansiColor(t.Rejected)),
		Muted:       lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:      lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		Card: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(ansiColor(t.Muted)).
			PaddingLeft(1),
		Focused: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(ansiColor(t.Accent)).
			PaddingLeft(1),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
