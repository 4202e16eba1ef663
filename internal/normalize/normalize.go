// Package normalize rewrites a review document so every marker sits on a
// line of its own.
package normalize

import (
	"regexp"
	"strings"

	"github.com/zjrosen/patchlens/internal/matcher"
)

var (
	markerRe    = regexp.MustCompile(`<BUGS>|<BUGE>|<FIXS>|<FIXE>`)
	blankRunsRe = regexp.MustCompile(`\n{3,}`)
)

// Normalize puts each marker on its own line, collapses runs of blank lines
// to a single blank line, trims surrounding whitespace and ends the text
// with exactly one newline. Applying it to its own output is a no-op.
//
// A newline is only inserted next to a marker when one is not already
// there, so markers that already sit alone on a line are left as they are.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 16)

	last := 0
	for _, loc := range markerRe.FindAllStringIndex(text, -1) {
		b.WriteString(text[last:loc[0]])
		if s := b.String(); s != "" && s[len(s)-1] != '\n' {
			b.WriteByte('\n')
		}
		b.WriteString(text[loc[0]:loc[1]])
		if rest := text[loc[1]:]; rest != "" && !startsLine(rest) {
			b.WriteByte('\n')
		}
		last = loc[1]
	}
	b.WriteString(text[last:])

	out := blankRunsRe.ReplaceAllString(b.String(), "\n\n")
	return strings.TrimSpace(out) + "\n"
}

// startsLine reports whether s begins with a line terminator.
func startsLine(s string) bool {
	return strings.HasPrefix(s, "\n") || strings.HasPrefix(s, "\r\n")
}

// CountMarkers returns how many markers text contains.
func CountMarkers(text string) int {
	n := 0
	for _, m := range matcher.Markers {
		n += strings.Count(text, string(m))
	}
	return n
}
