package streamblocks

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the viewer
// automatically matches any color scheme. -1 means no color.
type Theme struct {
	BlockHeader int // Block type/id header
	Extracted   int // Extracted block indicator
	Rejected    int // Rejection indicator and message
	Muted       int // Status bar, line numbers, content previews
	CodeBg      int // Code block background
	Accent      int // Headings, links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		BlockHeader: 3,
		Extracted:   2,
		Rejected:    1,
		Muted:       8,
		CodeBg:      0,
		Accent:      5,
	}
}
