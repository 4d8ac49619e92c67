package streamblocks

import (
	"fmt"
	"slices"
	"sync"
)

// MetadataSchema validates raw header fields into a typed metadata value.
// Field-level failures should be reported as *SchemaError.
type MetadataSchema interface {
	ValidateMetadata(fields map[string]any) (any, error)
}

// ContentSchema parses raw accumulated content into a typed value.
// Field-level failures should be reported as *SchemaError.
type ContentSchema interface {
	ParseContent(raw string) (any, error)
}

// Validator is a cross-cutting check run on an assembled block. The
// context is shared by every block of one stream.
type Validator func(ctx *ValidationContext, b Block) error

// RegistryEntry binds a block type to its schemas and validators.
type RegistryEntry struct {
	BlockType  string
	Metadata   MetadataSchema
	Content    ContentSchema
	Validators []Validator
}

// Registry maps block types to schemas and validators. It is mutable until
// the first Processor is built from it and read-only afterwards; a frozen
// registry may be shared by any number of processors.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
	global  []Validator
	frozen  bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*RegistryEntry)}
}

// Register adds a block type with its schemas and optional validators.
func (r *Registry) Register(blockType string, metadata MetadataSchema, content ContentSchema, validators ...Validator) error {
	if blockType == "" {
		return fmt.Errorf("block type must not be empty: %w", ErrValidation)
	}
	if metadata == nil || content == nil {
		return fmt.Errorf("block type %q: metadata and content schemas are required: %w", blockType, ErrValidation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("register %q: %w", blockType, ErrRegistryFrozen)
	}
	if _, ok := r.entries[blockType]; ok {
		return fmt.Errorf("register %q: %w", blockType, ErrDuplicateBlockType)
	}
	r.entries[blockType] = &RegistryEntry{
		BlockType:  blockType,
		Metadata:   metadata,
		Content:    content,
		Validators: slices.Clone(validators),
	}
	return nil
}

// AddValidator appends a validator to a registered block type.
func (r *Registry) AddValidator(blockType string, v Validator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("add validator to %q: %w", blockType, ErrRegistryFrozen)
	}
	e, ok := r.entries[blockType]
	if !ok {
		return fmt.Errorf("add validator to %q: %w", blockType, ErrUnknownBlockType)
	}
	e.Validators = append(e.Validators, v)
	return nil
}

// AddGlobalValidator appends a validator that runs for every block type,
// after the type's own validators.
func (r *Registry) AddGlobalValidator(v Validator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("add global validator: %w", ErrRegistryFrozen)
	}
	r.global = append(r.global, v)
	return nil
}

// Lookup returns a copy of the entry for blockType.
func (r *Registry) Lookup(blockType string) (RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[blockType]
	if !ok {
		return RegistryEntry{}, false
	}
	return *e, true
}

// Types returns the registered block types in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.entries))
	for t := range r.entries {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Frozen reports whether the registry has become read-only.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

func (r *Registry) freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Candidate is a closed block awaiting validation.
type Candidate struct {
	ID         string
	Type       string
	Syntax     string
	Header     map[string]any
	RawContent string
	StartLine  int
	EndLine    int
}

// Extract runs the validation pipeline over a candidate: registry lookup,
// metadata schema, content schema, then validators in order. The first
// failing stage aborts with an *ExtractError carrying its reason.
func (r *Registry) Extract(ctx *ValidationContext, c Candidate) (Block, error) {
	entry, ok := r.Lookup(c.Type)
	if !ok {
		return Block{}, &ExtractError{
			Reason: ReasonUnknownBlockType,
			Err:    fmt.Errorf("%q: %w", c.Type, ErrUnknownBlockType),
		}
	}

	fields := c.Header
	if fields == nil {
		fields = map[string]any{}
	}
	meta, err := entry.Metadata.ValidateMetadata(fields)
	if err != nil {
		return Block{}, &ExtractError{Reason: ReasonInvalidMetadata, Err: err}
	}

	content, err := entry.Content.ParseContent(c.RawContent)
	if err != nil {
		return Block{}, &ExtractError{Reason: ReasonInvalidContent, Err: err}
	}

	b := Block{
		ID:         c.ID,
		Type:       c.Type,
		Syntax:     c.Syntax,
		Metadata:   meta,
		Content:    content,
		RawContent: c.RawContent,
		Header:     fields,
		StartLine:  c.StartLine,
		EndLine:    c.EndLine,
	}

	r.mu.RLock()
	validators := slices.Concat(entry.Validators, r.global)
	r.mu.RUnlock()
	for _, v := range validators {
		if err := v(ctx, b); err != nil {
			return Block{}, &ExtractError{Reason: ReasonValidationFailed, Err: err}
		}
	}
	return b, nil
}
