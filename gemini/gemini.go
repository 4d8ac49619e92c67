// Package gemini implements [streamblocks.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK. Streaming uses the SDK's
// iter.Seq2 iterator, wrapped into the pull-based [streamblocks.Source]
// interface. Each response becomes one chunk whose text joins the
// response's non-thought text parts and whose Original is the response.
package gemini

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 65536
)
