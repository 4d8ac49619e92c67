// Package mock provides test doubles for streamblocks interfaces using
// function fields.
package mock

import (
	"context"

	"github.com/fwojciec/streamblocks"
)

// Interface compliance checks.
var (
	_ streamblocks.Provider       = (*Provider)(nil)
	_ streamblocks.Source         = (*Source)(nil)
	_ streamblocks.Syntax         = (*Syntax)(nil)
	_ streamblocks.MetadataSchema = (*MetadataSchema)(nil)
	_ streamblocks.ContentSchema  = (*ContentSchema)(nil)
)

// Provider is a test double for streamblocks.Provider.
// Set SourceFn before calling Source.
type Provider struct {
	SourceFn func(ctx context.Context, req streamblocks.Request) (streamblocks.Source, error)
}

// Source delegates to SourceFn.
func (p *Provider) Source(ctx context.Context, req streamblocks.Request) (streamblocks.Source, error) {
	return p.SourceFn(ctx, req)
}

// MetadataSchema is a test double for streamblocks.MetadataSchema.
type MetadataSchema struct {
	ValidateMetadataFn func(fields map[string]any) (any, error)
}

// ValidateMetadata delegates to ValidateMetadataFn.
func (s *MetadataSchema) ValidateMetadata(fields map[string]any) (any, error) {
	return s.ValidateMetadataFn(fields)
}

// ContentSchema is a test double for streamblocks.ContentSchema.
type ContentSchema struct {
	ParseContentFn func(raw string) (any, error)
}

// ParseContent delegates to ParseContentFn.
func (s *ContentSchema) ParseContent(raw string) (any, error) {
	return s.ParseContentFn(raw)
}
