// Package schema provides typed implementations of the metadata and content
// schema contracts. Values are decoded into Go types with gopkg.in/yaml.v3
// or encoding/json; types implementing Validator are checked after
// decoding.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/streamblocks"
	"gopkg.in/yaml.v3"
)

// Validator is implemented by decoded types that check their own fields.
// Returning a *streamblocks.SchemaError preserves field-level detail.
type Validator interface {
	Validate() error
}

// Interface compliance checks.
var (
	_ streamblocks.MetadataSchema = Any()
	_ streamblocks.ContentSchema  = Text()
	_ streamblocks.MetadataSchema = Struct[struct{}]()
	_ streamblocks.ContentSchema  = JSON[struct{}]()
	_ streamblocks.ContentSchema  = YAML[struct{}]()
)

type anySchema struct{}

// Any accepts every header and returns the raw fields as metadata.
func Any() streamblocks.MetadataSchema { return anySchema{} }

func (anySchema) ValidateMetadata(fields map[string]any) (any, error) {
	return fields, nil
}

type textSchema struct{ nonEmpty bool }

// Text accepts any content and returns it unchanged.
func Text() streamblocks.ContentSchema { return textSchema{} }

// NonEmptyText accepts content with at least one non-space character.
func NonEmptyText() streamblocks.ContentSchema { return textSchema{nonEmpty: true} }

func (s textSchema) ParseContent(raw string) (any, error) {
	if s.nonEmpty && strings.TrimSpace(raw) == "" {
		return nil, streamblocks.NewSchemaError("", "content must not be empty")
	}
	return raw, nil
}

// StructSchema decodes header fields into T.
type StructSchema[T any] struct{}

// Struct returns a metadata schema decoding header fields into T via their
// yaml tags. Unknown fields are ignored.
func Struct[T any]() StructSchema[T] { return StructSchema[T]{} }

func (StructSchema[T]) ValidateMetadata(fields map[string]any) (any, error) {
	data, err := yaml.Marshal(fields)
	if err != nil {
		return nil, streamblocks.NewSchemaError("", err.Error())
	}
	var v T
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, decodeError(err)
	}
	if err := validate(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// JSONSchema parses content as a JSON document into T.
type JSONSchema[T any] struct{}

// JSON returns a content schema decoding raw content as JSON into T.
func JSON[T any]() JSONSchema[T] { return JSONSchema[T]{} }

func (JSONSchema[T]) ParseContent(raw string) (any, error) {
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return nil, streamblocks.NewSchemaError(te.Field, fmt.Sprintf("cannot decode %s into %s", te.Value, te.Type))
		}
		return nil, streamblocks.NewSchemaError("", fmt.Sprintf("invalid JSON: %v", err))
	}
	if err := validate(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// YAMLSchema parses content as a YAML document into T.
type YAMLSchema[T any] struct{}

// YAML returns a content schema decoding raw content as YAML into T.
func YAML[T any]() YAMLSchema[T] { return YAMLSchema[T]{} }

func (YAMLSchema[T]) ParseContent(raw string) (any, error) {
	var v T
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, decodeError(err)
	}
	if err := validate(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// ContentFunc adapts a parse function to the content schema contract.
type ContentFunc func(raw string) (any, error)

func (f ContentFunc) ParseContent(raw string) (any, error) { return f(raw) }

// MetadataFunc adapts a validation function to the metadata schema contract.
type MetadataFunc func(fields map[string]any) (any, error)

func (f MetadataFunc) ValidateMetadata(fields map[string]any) (any, error) { return f(fields) }

func validate[T any](v *T) error {
	val, ok := any(v).(Validator)
	if !ok {
		return nil
	}
	if err := val.Validate(); err != nil {
		var se *streamblocks.SchemaError
		if errors.As(err, &se) {
			return se
		}
		return streamblocks.NewSchemaError("", err.Error())
	}
	return nil
}

// decodeError converts a yaml decode failure into field errors, one per
// reported problem.
func decodeError(err error) error {
	var te *yaml.TypeError
	if errors.As(err, &te) {
		se := &streamblocks.SchemaError{}
		for _, msg := range te.Errors {
			se.Errors = append(se.Errors, streamblocks.FieldError{Message: msg})
		}
		return se
	}
	return streamblocks.NewSchemaError("", err.Error())
}
