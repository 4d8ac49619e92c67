package mock

import "github.com/fwojciec/streamblocks"

// Syntax is a test double for streamblocks.Syntax.
// NameFn defaults to "mock"; the other functions panic when nil.
type Syntax struct {
	NameFn           func() string
	DetectOpenFn     func(line string) (streamblocks.Opening, bool)
	DetectCloseFn    func(open streamblocks.Opening, line string) bool
	HeaderCompleteFn func(lines []string) bool
	ParseHeaderFn    func(open streamblocks.Opening, lines []string) (streamblocks.Header, error)
}

// Name delegates to NameFn. Returns "mock" when NameFn is not set.
func (s *Syntax) Name() string {
	if s.NameFn == nil {
		return "mock"
	}
	return s.NameFn()
}

// DetectOpen delegates to DetectOpenFn.
func (s *Syntax) DetectOpen(line string) (streamblocks.Opening, bool) {
	return s.DetectOpenFn(line)
}

// DetectClose delegates to DetectCloseFn.
func (s *Syntax) DetectClose(open streamblocks.Opening, line string) bool {
	return s.DetectCloseFn(open, line)
}

// HeaderComplete delegates to HeaderCompleteFn.
func (s *Syntax) HeaderComplete(lines []string) bool {
	return s.HeaderCompleteFn(lines)
}

// ParseHeader delegates to ParseHeaderFn.
func (s *Syntax) ParseHeader(open streamblocks.Opening, lines []string) (streamblocks.Header, error) {
	return s.ParseHeaderFn(open, lines)
}
