package streamblocks

import (
	"bytes"
	"strings"
)

// lineBuffer reassembles logical lines from arbitrarily split fragments.
// It works on bytes: a line is complete once its '\n' arrives, so a
// multi-byte UTF-8 sequence split across fragments is never decoded before
// it is whole.
type lineBuffer struct {
	pending []byte
	// dropping discards input up to the next '\n'; the line it ends is
	// returned empty.
	dropping bool
}

// write appends a fragment and returns every line it completed, each
// including its terminator. A trailing partial line stays buffered.
func (b *lineBuffer) write(fragment string) []string {
	if fragment == "" {
		return nil
	}
	var lines []string
	if b.dropping {
		i := strings.IndexByte(fragment, '\n')
		if i < 0 {
			return nil
		}
		b.dropping = false
		lines = append(lines, "")
		fragment = fragment[i+1:]
	}
	b.pending = append(b.pending, fragment...)

	start := 0
	for {
		i := bytes.IndexByte(b.pending[start:], '\n')
		if i < 0 {
			break
		}
		end := start + i + 1
		lines = append(lines, string(b.pending[start:end]))
		start = end
	}
	if start > 0 {
		n := copy(b.pending, b.pending[start:])
		b.pending = b.pending[:n]
	}
	return lines
}

// flush returns the buffered partial line, if any, and empties the buffer.
func (b *lineBuffer) flush() (string, bool) {
	if b.dropping {
		b.dropping = false
		return "", true
	}
	if len(b.pending) == 0 {
		return "", false
	}
	s := string(b.pending)
	b.pending = b.pending[:0]
	return s, true
}

// len returns the size of the buffered partial line in bytes.
func (b *lineBuffer) len() int { return len(b.pending) }

// discard drops the buffered partial line and the rest of it still to come.
func (b *lineBuffer) discard() {
	b.pending = b.pending[:0]
	b.dropping = true
}

func (b *lineBuffer) reset() {
	b.pending = b.pending[:0]
	b.dropping = false
}
