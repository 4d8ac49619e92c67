package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/streamblocks"
	"github.com/rivo/uniseg"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the stream viewer. The stream starts
// when the program initializes.
type Model struct {
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model
	Spinner  spinner.Model

	theme  streamblocks.Theme
	styles Styles

	items  []Item
	focus  int        // index of the focused block card (-1 = none)
	active *BlockItem // card of the currently open block

	streamID  string
	lines     int
	extracted int
	rejected  int

	run     RunFunc
	ctx     context.Context
	cancel  context.CancelFunc
	eventCh chan streamblocks.Event
	doneCh  chan error

	running bool
	err     error
	ready   bool
}

// New creates a viewer that displays the events produced by run.
func New(run RunFunc, theme streamblocks.Theme) Model {
	ctx, cancel := context.WithCancel(context.Background())
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = NewStyles(theme).Muted
	return Model{
		Spinner: sp,
		theme:   theme,
		styles:  NewStyles(theme),
		focus:   -1,
		run:     run,
		ctx:     ctx,
		cancel:  cancel,
		eventCh: make(chan streamblocks.Event, 256),
		doneCh:  make(chan error, 1),
		running: true,
	}
}

// Running returns whether the stream is still being consumed.
func (m Model) Running() bool { return m.running }

// Err returns the error the stream ended with, if any.
func (m Model) Err() error { return m.err }

// Items returns the rendered items in stream order.
func (m Model) Items() []Item { return m.items }

// Counts returns the number of extracted and rejected blocks seen so far.
func (m Model) Counts() (extracted, rejected int) { return m.extracted, m.rejected }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.Spinner.Tick,
		startStream(m.ctx, m.run, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamEventMsg:
		m = m.processEvent(msg.Event)
		m = m.refresh(true)
		return m, listenForEvent(m.eventCh, m.doneCh)

	case StreamDoneMsg:
		m.running = false
		m.cancel()
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
		}
		m = m.refresh(false)
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.Viewport.View() + "\n" + m.statusLine()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	statusHeight := 1
	vpHeight := max(msg.Height-statusHeight-1, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			m.cancel()
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyTab:
		if m.focus >= 0 {
			item, cmd := m.items[m.focus].Update(ToggleMsg{})
			m.items[m.focus] = item
			m = m.refresh(false)
			return m, cmd
		}
		return m, nil

	case tea.KeyShiftTab:
		m = m.cycleFocusPrev()
		m = m.refresh(false)
		return m, nil

	case tea.KeyRunes:
		if string(msg.Runes) == "q" && !m.running {
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// processEvent routes an event to the item it belongs to.
func (m Model) processEvent(evt streamblocks.Event) Model {
	switch e := evt.(type) {
	case streamblocks.EventStreamStarted:
		m.streamID = e.StreamID

	case streamblocks.EventText:
		m.lines = max(m.lines, e.LineNumber)
		if n := len(m.items); n > 0 {
			if t, ok := m.items[n-1].(*TextItem); ok {
				t.AppendLine(e.Text)
				return m
			}
		}
		t := NewTextItem(m.theme)
		t.AppendLine(e.Text)
		m.items = append(m.items, t)

	case streamblocks.EventBlockOpened:
		m.lines = max(m.lines, e.LineNumber)
		m.active = NewBlockItem(e, m.theme, m.styles)
		m.items = append(m.items, m.active)
		m = m.setFocus(len(m.items) - 1)

	case streamblocks.EventBlockContent:
		m.lines = max(m.lines, e.LineNumber)
		if m.active != nil {
			m.active.AppendLine(e.Line)
		}

	case streamblocks.EventBlockExtracted:
		m.extracted++
		m.lines = max(m.lines, e.Block.EndLine)
		m.closeActive(streamblocks.EventBlockOpened{
			BlockID:    e.Block.ID,
			BlockType:  e.Block.Type,
			LineNumber: e.Block.StartLine,
		}).Extract(e.Block)
		m.active = nil

	case streamblocks.EventBlockRejected:
		m.rejected++
		m.lines = max(m.lines, e.Rejection.LineNumber)
		m.closeActive(streamblocks.EventBlockOpened{
			BlockID:    e.BlockID,
			BlockType:  e.BlockType,
			LineNumber: e.Rejection.StartLine,
		}).Reject(e)
		m.active = nil

	case streamblocks.EventStreamFinished:
		m.lines = e.Lines
		m.extracted = e.Extracted
		m.rejected = e.Rejected
	}
	return m
}

// closeActive returns the card of the open block, creating one when the
// opening event was not delivered.
func (m *Model) closeActive(opened streamblocks.EventBlockOpened) *BlockItem {
	if m.active != nil {
		return m.active
	}
	b := NewBlockItem(opened, m.theme, m.styles)
	m.items = append(m.items, b)
	*m = m.setFocus(len(m.items) - 1)
	return b
}

func (m Model) setFocus(idx int) Model {
	if m.focus >= 0 && m.focus < len(m.items) {
		m.items[m.focus].Update(FocusMsg{Focused: false})
	}
	m.focus = idx
	if idx >= 0 {
		m.items[idx].Update(FocusMsg{Focused: true})
	}
	return m
}

// cycleFocusPrev moves focus to the previous block card, wrapping around.
func (m Model) cycleFocusPrev() Model {
	n := len(m.items)
	if n == 0 {
		return m
	}
	start := m.focus - 1
	if start < 0 {
		start = n - 1
	}
	for i := range n {
		idx := (start - i + n) % n
		if _, ok := m.items[idx].(*BlockItem); ok {
			return m.setFocus(idx)
		}
	}
	return m
}

func (m Model) refresh(follow bool) Model {
	if !m.ready {
		return m
	}
	atBottom := m.Viewport.AtBottom()
	m.Viewport.SetContent(m.renderContent())
	if follow && atBottom {
		m.Viewport.GotoBottom()
	}
	return m
}

func (m Model) renderContent() string {
	var b strings.Builder
	for i, item := range m.items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(item.View(m.Viewport.Width))
	}
	return b.String()
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Rejected.Render(fmt.Sprintf("Error: %v", m.err))
	}
	var left string
	if m.running {
		left = m.Spinner.View() + " Streaming..."
	} else {
		left = "Done · Tab to expand, q to quit"
	}
	right := fmt.Sprintf("%d lines · %d extracted · %d rejected", m.lines, m.extracted, m.rejected)
	gap := m.Viewport.Width - lipgloss.Width(left) - uniseg.StringWidth(right)
	if gap < 1 {
		gap = 1
	}
	return m.styles.Muted.Render(left) + strings.Repeat(" ", gap) + m.styles.Muted.Render(right)
}

// startStream runs the stream in a goroutine and signals completion.
func startStream(ctx context.Context, run RunFunc, eventCh chan<- streamblocks.Event, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		err := run(ctx, func(e streamblocks.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- err
		return nil
	}
}

// listenForEvent waits for the next event from the channel.
// When the channel closes, it reads the error from doneCh and returns
// StreamDoneMsg.
func listenForEvent(ch <-chan streamblocks.Event, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return StreamDoneMsg{Err: <-doneCh}
		}
		return StreamEventMsg{Event: evt}
	}
}
