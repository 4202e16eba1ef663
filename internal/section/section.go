// Package section splits a review document into its original, suggestion
// and developer regions using separator lines.
package section

import (
	"strings"
)

// MinSeparatorLen is the shortest run of '-' or '=' that counts as a
// separator.
const MinSeparatorLen = 4

// Kind identifies a region of a review document.
type Kind int

const (
	Header Kind = iota
	Original
	Suggestion
	Developer
)

func (k Kind) String() string {
	switch k {
	case Header:
		return "header"
	case Original:
		return "original"
	case Suggestion:
		return "suggestion"
	case Developer:
		return "developer"
	default:
		return "unknown"
	}
}

// Sections holds the text of each region, lines rejoined with "\n".
type Sections struct {
	Header     string
	Original   string
	Suggestion string
	Developer  string
}

// Get returns the text for k.
func (s Sections) Get(k Kind) string {
	switch k {
	case Header:
		return s.Header
	case Original:
		return s.Original
	case Suggestion:
		return s.Suggestion
	case Developer:
		return s.Developer
	default:
		return ""
	}
}

// Bounds are the line indices of the three separators. The header is
// line 0; Original spans (0, First), Suggestion (First, Second) and
// Developer (Second, Third).
type Bounds struct {
	First  int
	Second int
	Third  int
}

// KindOf reports which region line i belongs to. Separator lines and lines
// after Third report ok=false.
func (b Bounds) KindOf(i int) (Kind, bool) {
	switch {
	case i == 0:
		return Header, true
	case i < b.First:
		return Original, true
	case i > b.First && i < b.Second:
		return Suggestion, true
	case i > b.Second && i < b.Third:
		return Developer, true
	default:
		return 0, false
	}
}

// IsSeparator reports whether line, once trimmed, is MinSeparatorLen or more
// of a single repeated '-' or '='. Mixed runs do not qualify.
func IsSeparator(line string) bool {
	line = strings.TrimSpace(line)
	if len(line) < MinSeparatorLen {
		return false
	}
	c := line[0]
	if c != '-' && c != '=' {
		return false
	}
	for i := 1; i < len(line); i++ {
		if line[i] != c {
			return false
		}
	}
	return true
}

// Locate finds the first three separators at or after line 1. ok is false
// when fewer than three exist.
func Locate(lines []string) (Bounds, bool) {
	var found [3]int
	n := 0
	for i := 1; i < len(lines) && n < len(found); i++ {
		if IsSeparator(lines[i]) {
			found[n] = i
			n++
		}
	}
	if n < len(found) {
		return Bounds{}, false
	}
	return Bounds{First: found[0], Second: found[1], Third: found[2]}, true
}

// Split partitions lines into sections. Everything from the third separator
// on is discarded. ok is false when the document lacks three separators, in
// which case no section text is produced.
func Split(lines []string) (Sections, bool) {
	b, ok := Locate(lines)
	if !ok {
		return Sections{}, false
	}
	return Sections{
		Header:     lines[0],
		Original:   strings.Join(lines[1:b.First], "\n"),
		Suggestion: strings.Join(lines[b.First+1:b.Second], "\n"),
		Developer:  strings.Join(lines[b.Second+1:b.Third], "\n"),
	}, true
}
