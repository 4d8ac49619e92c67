// Package jsonschema implements the metadata and content schema contracts
// with JSON Schema documents, using github.com/xeipuuv/gojsonschema.
//
// Content is decoded from raw text before validation: as JSON by default,
// or as YAML for schemas built with FormatYAML.
package jsonschema

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/streamblocks"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Format is the textual encoding of block content.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// rootField is the field gojsonschema reports for errors on the document
// itself.
const rootField = "(root)"

// Interface compliance checks.
var (
	_ streamblocks.MetadataSchema = (*Schema)(nil)
	_ streamblocks.ContentSchema  = (*Schema)(nil)
)

// Schema validates values against a compiled JSON Schema document.
type Schema struct {
	schema *gojsonschema.Schema
	format Format
}

// Option configures a [Schema].
type Option func(*Schema)

// WithFormat sets the content encoding. Default is FormatJSON.
func WithFormat(f Format) Option {
	return func(s *Schema) { s.format = f }
}

// New compiles a JSON Schema document.
func New(document []byte, opts ...Option) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return nil, fmt.Errorf("jsonschema: compile: %w", err)
	}
	s := &Schema{schema: compiled, format: FormatJSON}
	for _, o := range opts {
		o(s)
	}
	switch s.format {
	case FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("jsonschema: unknown format %q: %w", s.format, streamblocks.ErrValidation)
	}
	return s, nil
}

// ValidateMetadata validates header fields and returns them unchanged.
func (s *Schema) ValidateMetadata(fields map[string]any) (any, error) {
	if err := s.validate(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// ParseContent decodes raw content in the schema's format, validates the
// decoded document and returns it.
func (s *Schema) ParseContent(raw string) (any, error) {
	var doc any
	switch s.format {
	case FormatYAML:
		if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, streamblocks.NewSchemaError("", fmt.Sprintf("invalid YAML: %v", err))
		}
	default:
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, streamblocks.NewSchemaError("", fmt.Sprintf("invalid JSON: %v", err))
		}
	}
	if err := s.validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Schema) validate(v any) error {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(v))
	if err != nil {
		return streamblocks.NewSchemaError("", err.Error())
	}
	if result.Valid() {
		return nil
	}
	se := &streamblocks.SchemaError{}
	for _, re := range result.Errors() {
		field := re.Field()
		if field == rootField {
			field = ""
		}
		se.Errors = append(se.Errors, streamblocks.FieldError{Field: field, Message: re.Description()})
	}
	return se
}
