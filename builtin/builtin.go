// Package builtin provides the built-in block types: file operation lists,
// patches, tool calls and user-facing messages.
package builtin

import (
	"fmt"

	"github.com/fwojciec/streamblocks"
)

// Block type names.
const (
	TypeFilesOperations = "files_operations"
	TypePatch           = "patch"
	TypeToolCall        = "tool_call"
	TypeMessage         = "message"
)

// Types returns the built-in block type names in registration order.
func Types() []string {
	return []string{TypeFilesOperations, TypePatch, TypeToolCall, TypeMessage}
}

// Register adds every built-in block type to reg.
func Register(reg *streamblocks.Registry) error {
	for _, e := range entries() {
		if err := reg.Register(e.BlockType, e.Metadata, e.Content, e.Validators...); err != nil {
			return fmt.Errorf("builtin: %w", err)
		}
	}
	return nil
}

func entries() []streamblocks.RegistryEntry {
	return []streamblocks.RegistryEntry{
		filesOperationsEntry(),
		patchEntry(),
		toolCallEntry(),
		messageEntry(),
	}
}

// Base holds the header fields common to every built-in type.
type Base struct {
	ID          string `yaml:"id"`
	BlockType   string `yaml:"block_type"`
	Description string `yaml:"description,omitempty"`
}
