package streamblocks

// Exported for testing.

type LineBuffer = lineBuffer

func (b *LineBuffer) Write(fragment string) []string { return b.write(fragment) }

func (b *LineBuffer) Flush() (string, bool) { return b.flush() }

// Pending returns the size of the buffered partial line.
func (p *Processor) Pending() int { return p.lines.len() }

func (b *LineBuffer) Discard() { b.discard() }

func (b *LineBuffer) Len() int { return b.len() }
