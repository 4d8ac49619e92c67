package streamblocks

import "fmt"

// ValidationContext is mutable state shared by the validators of every
// block in one stream, e.g. for cross-block invariants like uniqueness.
type ValidationContext struct {
	StreamID string
	values   map[string]any
}

// NewValidationContext creates an empty context for one stream.
func NewValidationContext(streamID string) *ValidationContext {
	return &ValidationContext{StreamID: streamID, values: make(map[string]any)}
}

// Value returns the value stored under key.
func (c *ValidationContext) Value(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// SetValue stores a value under key.
func (c *ValidationContext) SetValue(key string, v any) {
	c.values[key] = v
}

const uniqueIDsKey = "streamblocks.unique_ids"

// UniqueBlockIDs returns a validator that fails when a block reuses the ID
// of an earlier extracted block in the same stream. Blocks with an empty ID
// are not checked.
func UniqueBlockIDs() Validator {
	return func(ctx *ValidationContext, b Block) error {
		if b.ID == "" {
			return nil
		}
		seen, _ := ctx.Value(uniqueIDsKey)
		ids, ok := seen.(map[string]int)
		if !ok {
			ids = make(map[string]int)
			ctx.SetValue(uniqueIDsKey, ids)
		}
		if line, dup := ids[b.ID]; dup {
			return fmt.Errorf("duplicate block id %q (first seen at line %d)", b.ID, line)
		}
		ids[b.ID] = b.StartLine
		return nil
	}
}

// Validate checks universal constraints on Request.
// Provider implementations may apply additional provider-specific validation.
func (r Request) Validate() error {
	if r.Prompt == "" {
		return fmt.Errorf("prompt must not be empty: %w", ErrValidation)
	}
	if r.Temperature != nil {
		if *r.Temperature < 0 || *r.Temperature > 2 {
			return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *r.Temperature, ErrValidation)
		}
	}
	if r.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d: %w", r.MaxTokens, ErrValidation)
	}
	return nil
}
