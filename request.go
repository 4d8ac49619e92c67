package streamblocks

// Request carries model selection and generation parameters for a Provider.
// The provider uses its own defaults when fields are zero/nil.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	Prompt       string
	MaxTokens    int      // 0 = provider default
	Temperature  *float64 // nil = provider default
}
