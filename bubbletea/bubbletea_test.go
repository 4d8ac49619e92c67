package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/streamblocks"
	bt "github.com/fwojciec/streamblocks/bubbletea"
	"github.com/stretchr/testify/require"
)

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, run bt.RunFunc) bt.Model {
	t.Helper()
	return initModelWithSize(t, run, 80, 24)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, run bt.RunFunc, width, height int) bt.Model {
	t.Helper()
	m := bt.New(run, streamblocks.DefaultTheme())
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// send delivers events to the model in order.
func send(t *testing.T, m bt.Model, events ...streamblocks.Event) bt.Model {
	t.Helper()
	for _, e := range events {
		m = updateModel(t, m, bt.StreamEventMsg{Event: e})
	}
	return m
}

// nopRun produces no events.
func nopRun(context.Context, func(streamblocks.Event)) error {
	return nil
}

func opened(id, blockType string, line int) streamblocks.EventBlockOpened {
	return streamblocks.EventBlockOpened{BlockID: id, BlockType: blockType, Syntax: "delimiter_preamble", LineNumber: line}
}

func extracted(id, blockType string, start, end int, content any) streamblocks.EventBlockExtracted {
	return streamblocks.EventBlockExtracted{Block: streamblocks.Block{
		ID:        id,
		Type:      blockType,
		Content:   content,
		StartLine: start,
		EndLine:   end,
	}}
}
