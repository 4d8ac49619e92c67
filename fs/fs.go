// Package fs registers block types from JSON Schema files found on disk.
//
// A directory tree is searched for files matching Pattern. A file named
// <type>.metadata.schema.json validates the header of blocks of that type,
// and <type>.content.schema.json validates their content. Either may be
// missing: a type without a metadata schema accepts any header, and one
// without a content schema keeps its content as text. A content schema may
// set "x-content-format" to "yaml" to decode YAML content.
package fs

import (
	"encoding/json"
	"fmt"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/streamblocks"
	"github.com/fwojciec/streamblocks/jsonschema"
	"github.com/fwojciec/streamblocks/schema"
)

// Pattern matches schema files relative to the search root.
const Pattern = "**/*.schema.json"

const (
	metadataSuffix = ".metadata.schema.json"
	contentSuffix  = ".content.schema.json"
	formatKeyword  = "x-content-format"
)

// SchemaFile is a schema document found on disk.
type SchemaFile struct {
	BlockType string
	Role      string // "metadata" or "content"
	Path      string
}

// Discover lists the schema files under root, sorted by path. Files that
// match Pattern but follow neither naming convention are ignored.
func Discover(root string) ([]SchemaFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("fs: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fs: %s is not a directory: %w", root, streamblocks.ErrValidation)
	}

	var files []SchemaFile
	err = doublestar.GlobWalk(os.DirFS(root), Pattern, func(p string, d iofs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		name := path.Base(p)
		f := SchemaFile{Path: filepath.Join(root, filepath.FromSlash(p))}
		switch {
		case strings.HasSuffix(name, metadataSuffix):
			f.BlockType, f.Role = strings.TrimSuffix(name, metadataSuffix), "metadata"
		case strings.HasSuffix(name, contentSuffix):
			f.BlockType, f.Role = strings.TrimSuffix(name, contentSuffix), "content"
		default:
			return nil
		}
		if f.BlockType == "" {
			return nil
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fs: walk %s: %w", root, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// LoadSchemas registers one block type per discovered type name and
// returns the registered names, sorted. Two files declaring the same type
// and role are an error.
func LoadSchemas(reg *streamblocks.Registry, root string) ([]string, error) {
	files, err := Discover(root)
	if err != nil {
		return nil, err
	}

	type pair struct {
		metadata streamblocks.MetadataSchema
		content  streamblocks.ContentSchema
	}
	types := make(map[string]*pair)
	for _, f := range files {
		p, ok := types[f.BlockType]
		if !ok {
			p = &pair{}
			types[f.BlockType] = p
		}
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("fs: %w", err)
		}
		switch f.Role {
		case "metadata":
			if p.metadata != nil {
				return nil, fmt.Errorf("fs: duplicate metadata schema for %q at %s: %w", f.BlockType, f.Path, streamblocks.ErrValidation)
			}
			s, err := jsonschema.New(data)
			if err != nil {
				return nil, fmt.Errorf("fs: %s: %w", f.Path, err)
			}
			p.metadata = s
		case "content":
			if p.content != nil {
				return nil, fmt.Errorf("fs: duplicate content schema for %q at %s: %w", f.BlockType, f.Path, streamblocks.ErrValidation)
			}
			format, err := contentFormat(data)
			if err != nil {
				return nil, fmt.Errorf("fs: %s: %w", f.Path, err)
			}
			s, err := jsonschema.New(data, jsonschema.WithFormat(format))
			if err != nil {
				return nil, fmt.Errorf("fs: %s: %w", f.Path, err)
			}
			p.content = s
		}
	}

	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := types[name]
		if p.metadata == nil {
			p.metadata = schema.Any()
		}
		if p.content == nil {
			p.content = schema.Text()
		}
		if err := reg.Register(name, p.metadata, p.content); err != nil {
			return nil, fmt.Errorf("fs: %w", err)
		}
	}
	return names, nil
}

func contentFormat(data []byte) (jsonschema.Format, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("invalid schema document: %w", err)
	}
	raw, ok := doc[formatKeyword]
	if !ok {
		return jsonschema.FormatJSON, nil
	}
	var format string
	if err := json.Unmarshal(raw, &format); err != nil {
		return "", fmt.Errorf("%s must be a string: %w", formatKeyword, streamblocks.ErrValidation)
	}
	return jsonschema.Format(format), nil
}
