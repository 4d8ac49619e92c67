package bubbletea

import tea "github.com/charmbracelet/bubbletea"

// Item is a renderable element of the stream view.
// Unlike tea.Model, View takes a width parameter so the root model
// controls layout and items are testable in isolation.
type Item interface {
	Update(tea.Msg) (Item, tea.Cmd)
	View(width int) string
}

// ToggleMsg tells a collapsible item to toggle its collapsed state.
type ToggleMsg struct{}

// FocusMsg tells a collapsible item whether it holds keyboard focus.
type FocusMsg struct{ Focused bool }
