// Package bubbletea provides a Bubble Tea TUI that shows a processed stream
// as it arrives: prose between blocks is rendered as markdown and every
// block becomes a collapsible card showing its outcome.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/streamblocks"
)

// RunFunc produces the events to display. The onEvent callback is called
// for each event in order. The function blocks until the stream ends or
// the context is cancelled.
type RunFunc func(ctx context.Context, onEvent func(streamblocks.Event)) error

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits. When ctx is cancelled the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// StreamEventMsg wraps a processing event for delivery to the model.
type StreamEventMsg struct {
	Event streamblocks.Event
}

// StreamDoneMsg signals that the run function returned.
type StreamDoneMsg struct {
	Err error
}
