package streamblocks

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for misuse of the public contract. Per-block failures are
// never reported through these; they become EventBlockRejected.
var (
	// ErrValidation indicates a configuration or request failed validation.
	ErrValidation = errors.New("validation error")

	// ErrRegistryFrozen indicates a registry mutation after streaming began.
	ErrRegistryFrozen = errors.New("registry frozen: register block types before streaming")

	// ErrDuplicateBlockType indicates a block type was registered twice.
	ErrDuplicateBlockType = errors.New("block type already registered")

	// ErrUnknownBlockType indicates a lookup for an unregistered block type.
	ErrUnknownBlockType = errors.New("unknown block type")

	// ErrProcessorFinalized indicates Feed was called after Finalize.
	ErrProcessorFinalized = errors.New("processor finalized")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)

// FieldError is a single field-level schema failure. Field is empty for
// errors about the value as a whole.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// SchemaError is the structured failure a schema reports.
type SchemaError struct {
	Errors []FieldError
}

// NewSchemaError builds a SchemaError with a single field error.
func NewSchemaError(field, msg string) *SchemaError {
	return &SchemaError{Errors: []FieldError{{Field: field, Message: msg}}}
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.String()
	}
	return strings.Join(parts, "; ")
}

// ExtractError is a failure of one validation pipeline stage.
type ExtractError struct {
	Reason RejectReason
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }
