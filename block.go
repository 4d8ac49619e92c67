package streamblocks

// Block is a validated structured region extracted from the stream.
// A Block is immutable once emitted.
type Block struct {
	ID     string
	Type   string
	Syntax string

	// Metadata and Content hold the values produced by the registered
	// schemas; their concrete types depend on Type.
	Metadata any
	Content  any

	// RawContent is the exact accumulated content text before parsing.
	RawContent string

	// Header holds the raw header fields the metadata schema validated.
	Header map[string]any

	StartLine int // line of the opening marker
	EndLine   int // line of the closing marker
}

// RejectReason classifies why an opened block produced no Block.
type RejectReason string

const (
	ReasonInvalidHeader    RejectReason = "invalid_header"
	ReasonInvalidMetadata  RejectReason = "invalid_metadata"
	ReasonInvalidContent   RejectReason = "invalid_content"
	ReasonValidationFailed RejectReason = "validation_failed"
	ReasonMaxSizeExceeded  RejectReason = "max_size_exceeded"
	ReasonUnclosedBlock    RejectReason = "unclosed_block"
	ReasonUnknownBlockType RejectReason = "unknown_block_type"
)

// BlockRejection describes a recoverable failure to extract one block.
type BlockRejection struct {
	Reason  RejectReason
	Message string

	// PartialContent is every header and content line accumulated before
	// the failure.
	PartialContent string

	// LineNumber is the 1-based line at which the failure was detected.
	LineNumber int
	StartLine  int

	// Errors lists field-level schema errors, when the failing stage
	// reported them.
	Errors []FieldError
}
