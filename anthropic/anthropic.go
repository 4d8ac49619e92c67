// Package anthropic implements [streamblocks.Provider] for the Anthropic
// Messages API.
//
// It connects to the Messages API via SSE and exposes the generated text
// through the pull-based [streamblocks.Source] interface. Every SSE event
// becomes one chunk: text deltas carry their text, other events carry none,
// and the decoded [Event] is attached as the chunk's Original.
package anthropic

import "encoding/json"

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 8192
	apiVersion       = "2023-06-01"
	messagesPath     = "/v1/messages"
)

// Event is one server-sent event as received from the API.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// apiRequest is the JSON body sent to the Anthropic Messages API.
type apiRequest struct {
	Model       string            `json:"model"`
	MaxTokens   int               `json:"max_tokens"`
	Stream      bool              `json:"stream"`
	System      []apiContentBlock `json:"system,omitempty"`
	Messages    []apiMessage      `json:"messages"`
	Temperature *float64          `json:"temperature,omitempty"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SSE response types.

type sseContentBlockDelta struct {
	Type  string   `json:"type"`
	Index int      `json:"index"`
	Delta sseDelta `json:"delta"`
}

type sseDelta struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Thinking string `json:"thinking,omitempty"`
}

type sseError struct {
	Type  string         `json:"type"`
	Error sseErrorDetail `json:"error"`
}

type sseErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// apiErrorResponse is the JSON body returned on non-200 HTTP responses.
type apiErrorResponse struct {
	Type  string         `json:"type"`
	Error sseErrorDetail `json:"error"`
}
