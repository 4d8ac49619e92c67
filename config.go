package streamblocks

import (
	"fmt"
	"log/slog"
	"time"
)

// DefaultMaxBlockSize bounds a block's header and content at 1 MiB.
const DefaultMaxBlockSize = 1 << 20

// Config holds the immutable per-processor settings.
type Config struct {
	// Syntax is the active grammar. Required.
	Syntax Syntax

	// EmitTextDeltas emits EventText for lines outside blocks.
	EmitTextDeltas bool
	// EmitBlockContent emits EventBlockContent for every accumulated line.
	EmitBlockContent bool
	// EmitOriginalEvents emits EventOriginal for chunks carrying an
	// Original object.
	EmitOriginalEvents bool

	// MaxBlockSize bounds a block's header and content, in bytes.
	// 0 = DefaultMaxBlockSize.
	MaxBlockSize int

	// StreamID identifies the stream in start/finish events and in the
	// validation context.
	StreamID string

	// Logger receives block rejections and invariant violations.
	// nil = discard.
	Logger *slog.Logger

	// Now stamps events. nil = time.Now.
	Now func() time.Time
}

// DefaultConfig returns a Config for syn with text and block-content events
// enabled and original passthrough disabled.
func DefaultConfig(syn Syntax) Config {
	return Config{
		Syntax:           syn,
		EmitTextDeltas:   true,
		EmitBlockContent: true,
		MaxBlockSize:     DefaultMaxBlockSize,
	}
}

// Validate checks the Config for programming errors.
func (c Config) Validate() error {
	if c.Syntax == nil {
		return fmt.Errorf("syntax is required: %w", ErrValidation)
	}
	if c.MaxBlockSize < 0 {
		return fmt.Errorf("max_block_size must be non-negative, got %d: %w", c.MaxBlockSize, ErrValidation)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.MaxBlockSize == 0 {
		c.MaxBlockSize = DefaultMaxBlockSize
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}
