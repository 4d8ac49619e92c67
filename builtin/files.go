package builtin

import (
	"fmt"
	"strings"

	"github.com/fwojciec/streamblocks"
	"github.com/fwojciec/streamblocks/schema"
)

// Action is the operation applied to a file.
type Action string

const (
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

var actionCodes = map[string]Action{
	"C": ActionCreate,
	"E": ActionEdit,
	"D": ActionDelete,
}

// FileOperation is one line of a files_operations block.
type FileOperation struct {
	Path   string `yaml:"path" json:"path"`
	Action Action `yaml:"action" json:"action"`
}

// FilesOperations is the content of a files_operations block: one
// "path:C|E|D" entry per line.
type FilesOperations struct {
	Operations []FileOperation `yaml:"operations" json:"operations"`
}

// FilesMetadata is the header of a files_operations block.
type FilesMetadata struct {
	Base `yaml:",inline"`
}

func filesOperationsEntry() streamblocks.RegistryEntry {
	return streamblocks.RegistryEntry{
		BlockType: TypeFilesOperations,
		Metadata:  schema.Struct[FilesMetadata](),
		Content:   schema.ContentFunc(parseFilesOperations),
	}
}

func parseFilesOperations(raw string) (any, error) {
	var ops FilesOperations
	se := &streamblocks.SchemaError{}
	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		field := fmt.Sprintf("line %d", i+1)
		idx := strings.LastIndexByte(line, ':')
		if idx <= 0 {
			se.Errors = append(se.Errors, streamblocks.FieldError{Field: field, Message: "expected path:C|E|D"})
			continue
		}
		path, code := strings.TrimSpace(line[:idx]), strings.ToUpper(strings.TrimSpace(line[idx+1:]))
		action, ok := actionCodes[code]
		if !ok {
			se.Errors = append(se.Errors, streamblocks.FieldError{Field: field, Message: fmt.Sprintf("unknown action %q", code)})
			continue
		}
		ops.Operations = append(ops.Operations, FileOperation{Path: path, Action: action})
	}
	if len(se.Errors) > 0 {
		return nil, se
	}
	if len(ops.Operations) == 0 {
		return nil, streamblocks.NewSchemaError("", "at least one file operation is required")
	}
	return ops, nil
}
