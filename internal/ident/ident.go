// Package ident extracts lexical identifiers from text.
package ident

import (
	"regexp"
	"sort"
)

// identifierRe matches a name-like token. The \b anchors keep a token from
// starting mid-word, so "0x1F" yields nothing.
var identifierRe = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*\b`)

// Set is a set of distinct identifiers.
type Set map[string]struct{}

// NewSet returns a set holding ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s Set) Add(id string) { s[id] = struct{}{} }

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Len() int { return len(s) }

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Minus returns the members of s not in any of others.
func (s Set) Minus(others ...Set) Set {
	out := make(Set)
outer:
	for id := range s {
		for _, o := range others {
			if o.Has(id) {
				continue outer
			}
		}
		out.Add(id)
	}
	return out
}

// Intersect returns the members of s also in o.
func (s Set) Intersect(o Set) Set {
	out := make(Set)
	for id := range s {
		if o.Has(id) {
			out.Add(id)
		}
	}
	return out
}

// Extract returns every distinct identifier in text. Text without
// identifiers yields an empty set.
func Extract(text string) Set {
	s := make(Set)
	for _, m := range identifierRe.FindAllString(text, -1) {
		s.Add(m)
	}
	return s
}

// Occurrences counts each identifier in text.
func Occurrences(text string) map[string]int {
	counts := make(map[string]int)
	for _, m := range identifierRe.FindAllString(text, -1) {
		counts[m]++
	}
	return counts
}
