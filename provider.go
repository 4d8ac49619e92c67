package streamblocks

import "context"

// Chunk is one normalized fragment from an upstream text source. Text has
// no alignment guarantee with lines, markers or characters. Original is the
// adapter's raw chunk object, surfaced as EventOriginal when enabled.
type Chunk struct {
	Text     string
	Original any
}

// Source is a pull-based upstream text feed. Next returns io.EOF once no
// more text follows. Cancellation flows through the context passed to
// Provider.Source.
type Source interface {
	Next() (Chunk, error)
	Close() error
}

// Provider is a strategy pattern interface for generative text sources.
type Provider interface {
	Source(ctx context.Context, req Request) (Source, error)
}
