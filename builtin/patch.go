package builtin

import (
	"fmt"
	"strings"

	"github.com/fwojciec/streamblocks"
	"github.com/fwojciec/streamblocks/schema"
)

// PatchMetadata is the header of a patch block.
type PatchMetadata struct {
	Base `yaml:",inline"`
	File string `yaml:"file"`
}

func (m PatchMetadata) Validate() error {
	if strings.TrimSpace(m.File) == "" {
		return streamblocks.NewSchemaError("file", "is required")
	}
	return nil
}

// Patch is the content of a patch block: a unified diff.
type Patch struct {
	Diff    string `yaml:"diff" json:"diff"`
	Hunks   int    `yaml:"hunks" json:"hunks"`
	Added   int    `yaml:"added" json:"added"`
	Removed int    `yaml:"removed" json:"removed"`
}

func patchEntry() streamblocks.RegistryEntry {
	return streamblocks.RegistryEntry{
		BlockType: TypePatch,
		Metadata:  schema.Struct[PatchMetadata](),
		Content:   schema.ContentFunc(parsePatch),
	}
}

func parsePatch(raw string) (any, error) {
	p := Patch{Diff: raw}
	se := &streamblocks.SchemaError{}
	for i, line := range strings.Split(strings.TrimRight(raw, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			p.Hunks++
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			if p.Hunks > 0 {
				countChange(&p, line)
			}
		case strings.HasPrefix(line, "diff "), strings.HasPrefix(line, "index "), strings.HasPrefix(line, `\`):
		case line == "", strings.HasPrefix(line, " "), strings.HasPrefix(line, "+"), strings.HasPrefix(line, "-"):
			if p.Hunks == 0 && line != "" {
				se.Errors = append(se.Errors, streamblocks.FieldError{
					Field:   fmt.Sprintf("line %d", i+1),
					Message: "change before first hunk header",
				})
				continue
			}
			countChange(&p, line)
		default:
			se.Errors = append(se.Errors, streamblocks.FieldError{
				Field:   fmt.Sprintf("line %d", i+1),
				Message: "not a unified diff line",
			})
		}
	}
	if len(se.Errors) > 0 {
		return nil, se
	}
	if p.Hunks == 0 {
		return nil, streamblocks.NewSchemaError("", "patch has no hunks")
	}
	return p, nil
}

func countChange(p *Patch, line string) {
	switch {
	case strings.HasPrefix(line, "+"):
		p.Added++
	case strings.HasPrefix(line, "-"):
		p.Removed++
	}
}
