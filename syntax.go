package streamblocks

// Opening is what a grammar recognized on a block's opening line.
type Opening struct {
	ID     string
	Type   string
	Inline map[string]any

	// Marker is the grammar-specific opening token, e.g. the fence that
	// must be matched by the closing line.
	Marker string
}

// Header is the parsed header of a block: identifiers resolved from the
// opening marker and the header lines, plus every raw header field.
type Header struct {
	ID     string
	Type   string
	Fields map[string]any
}

// Syntax recognizes block boundaries and headers for one textual
// convention. Lines passed in include their terminator, if any.
//
// The processor only calls these methods; it never inspects the concrete
// grammar. Implementations must be stateless so one value can serve many
// processors.
type Syntax interface {
	// Name identifies the grammar in events and configuration.
	Name() string

	// DetectOpen reports whether line opens a block.
	DetectOpen(line string) (Opening, bool)

	// DetectClose reports whether line closes the block opened by open.
	DetectClose(open Opening, line string) bool

	// HeaderComplete reports whether the accumulated header lines form a
	// complete header. It is called with no lines right after the opening
	// marker; returning true there means the grammar has no header phase.
	HeaderComplete(lines []string) bool

	// ParseHeader decodes the header lines into raw fields. An error means
	// the header is structurally unparseable.
	ParseHeader(open Opening, lines []string) (Header, error)
}
