package anthropic_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/streamblocks"
	"github.com/fwojciec/streamblocks/anthropic"
	"github.com/stretchr/testify/require"
)

// sseResponse is a helper to build SSE responses for tests.
type sseResponse struct {
	events []sseEvent
}

type sseEvent struct {
	event string
	data  string
}

func (s sseResponse) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		for _, evt := range s.events {
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.event, evt.data)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

const (
	messageStart = `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","content":[],"model":"claude-sonnet-4-20250514","stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":10,"output_tokens":1}}}`
	messageDelta = `{"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":5}}`
	messageStop  = `{"type":"message_stop"}`
)

func textDelta(index int, text string) sseEvent {
	return sseEvent{"content_block_delta", fmt.Sprintf(`{"type":"content_block_delta","index":%d,"delta":{"type":"text_delta","text":%q}}`, index, text)}
}

// textStreamResponse streams the given text deltas inside one text block.
func textStreamResponse(deltas ...string) sseResponse {
	events := []sseEvent{
		{"message_start", messageStart},
		{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`},
		{"ping", `{"type":"ping"}`},
	}
	for _, d := range deltas {
		events = append(events, textDelta(0, d))
	}
	events = append(events,
		sseEvent{"content_block_stop", `{"type":"content_block_stop","index":0}`},
		sseEvent{"message_delta", messageDelta},
		sseEvent{"message_stop", messageStop},
	)
	return sseResponse{events: events}
}

func sourceFromSSE(t *testing.T, resp sseResponse) streamblocks.Source {
	t.Helper()
	srv := httptest.NewServer(resp.handler())
	t.Cleanup(srv.Close)
	client := anthropic.New("test-key", anthropic.WithBaseURL(srv.URL))
	src, err := client.Source(context.Background(), streamblocks.Request{Prompt: "Hi"})
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })
	return src
}
