package builtin

import (
	"strings"

	"github.com/fwojciec/streamblocks"
	"github.com/fwojciec/streamblocks/schema"
)

// ToolCallMetadata is the header of a tool_call block.
type ToolCallMetadata struct {
	Base     `yaml:",inline"`
	ToolName string `yaml:"tool_name"`
}

func (m ToolCallMetadata) Validate() error {
	if strings.TrimSpace(m.ToolName) == "" {
		return streamblocks.NewSchemaError("tool_name", "is required")
	}
	return nil
}

// ToolParams is the content of a tool_call block: YAML parameters.
type ToolParams map[string]any

func toolCallEntry() streamblocks.RegistryEntry {
	return streamblocks.RegistryEntry{
		BlockType: TypeToolCall,
		Metadata:  schema.Struct[ToolCallMetadata](),
		Content:   schema.YAML[ToolParams](),
	}
}
