// Package document models an immutable text snapshot and converts between
// byte offsets and line/character positions.
package document

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// Position is a zero-based line and character location. Character counts
// Unicode code points from the start of the line.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// String formats the position as 1-based "line:col" for display.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character+1)
}

// Before reports whether p sorts strictly before o.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Character < o.Character
}

// Range is a half-open span [Start, End) over one Document snapshot.
// The byte offsets it was computed from are kept alongside the positions.
type Range struct {
	Start       Position `json:"start"`
	End         Position `json:"end"`
	StartOffset int      `json:"start_offset"`
	EndOffset   int      `json:"end_offset"`
}

// Len returns the length of the range in bytes.
func (r Range) Len() int {
	return r.EndOffset - r.StartOffset
}

// Document is a read-only text snapshot. Lines are split on "\n" or
// "\r\n"; a lone "\r" is ordinary content.
type Document struct {
	text       string
	lineStarts []int // byte offset of each line's first byte
	lineEnds   []int // byte offset just past each line's content (before \r?\n)
}

// New indexes text into a Document.
func New(text string) *Document {
	d := &Document{text: text}
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '\n' {
			continue
		}
		end := i
		if end > start && text[end-1] == '\r' {
			end--
		}
		d.lineStarts = append(d.lineStarts, start)
		d.lineEnds = append(d.lineEnds, end)
		start = i + 1
	}
	d.lineStarts = append(d.lineStarts, start)
	d.lineEnds = append(d.lineEnds, len(text))
	return d
}

// Text returns the full document text.
func (d *Document) Text() string {
	return d.text
}

// Len returns the text length in bytes.
func (d *Document) Len() int {
	return len(d.text)
}

// LineCount returns the number of lines. An empty document has one empty line.
func (d *Document) LineCount() int {
	return len(d.lineStarts)
}

// Line returns the content of line i without its terminator.
// Out-of-range indexes return "".
func (d *Document) Line(i int) string {
	if i < 0 || i >= len(d.lineStarts) {
		return ""
	}
	return d.text[d.lineStarts[i]:d.lineEnds[i]]
}

// Lines returns every line without terminators.
func (d *Document) Lines() []string {
	lines := make([]string, len(d.lineStarts))
	for i := range lines {
		lines[i] = d.text[d.lineStarts[i]:d.lineEnds[i]]
	}
	return lines
}

// LineOffset returns the byte offset at which line i starts, clamped to
// the document bounds.
func (d *Document) LineOffset(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(d.lineStarts) {
		return len(d.text)
	}
	return d.lineStarts[i]
}

// PositionAt converts a byte offset to a position. Offsets outside the text
// are clamped; an offset inside a line terminator or in the middle of a
// multi-byte character maps to the nearest preceding character boundary.
func (d *Document) PositionAt(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.text) {
		offset = len(d.text)
	}

	line := sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	}) - 1

	start := d.lineStarts[line]
	if offset > d.lineEnds[line] {
		offset = d.lineEnds[line]
	}
	for offset > start && offset < len(d.text) && !utf8.RuneStart(d.text[offset]) {
		offset--
	}
	return Position{Line: line, Character: utf8.RuneCountInString(d.text[start:offset])}
}

// OffsetAt converts a position back to a byte offset. Positions past the
// end of a line clamp to the line end; lines past the end clamp to the
// document end.
func (d *Document) OffsetAt(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(d.lineStarts) {
		return len(d.text)
	}
	offset := d.lineStarts[pos.Line]
	end := d.lineEnds[pos.Line]
	for n := 0; n < pos.Character && offset < end; n++ {
		_, size := utf8.DecodeRuneInString(d.text[offset:end])
		offset += size
	}
	return offset
}

// RangeAt builds a Range from a half-open byte interval.
func (d *Document) RangeAt(start, end int) Range {
	return Range{
		Start:       d.PositionAt(start),
		End:         d.PositionAt(end),
		StartOffset: start,
		EndOffset:   end,
	}
}
