package highlight

import (
	"github.com/zjrosen/patchlens/internal/classify"
	"github.com/zjrosen/patchlens/internal/matcher"
)

// MarkerBinding ties a marker to the style that paints it.
type MarkerBinding struct {
	Marker matcher.Marker
	Style  StyleID
}

// ClassBinding ties an identifier class to the style that paints it.
type ClassBinding struct {
	Class classify.Class
	Style StyleID
}

var MarkerBindings = []MarkerBinding{
	{Marker: matcher.BugStart, Style: StyleBugStart},
	{Marker: matcher.BugEnd, Style: StyleBugEnd},
	{Marker: matcher.FixStart, Style: StyleFixStart},
	{Marker: matcher.FixEnd, Style: StyleFixEnd},
}

var ClassBindings = []ClassBinding{
	{Class: classify.DevOnly, Style: StyleDevOnly},
	{Class: classify.SuggOnly, Style: StyleSuggOnly},
	{Class: classify.Both, Style: StyleBoth},
}

// IsClassStyle reports whether id is driven by classification.
func IsClassStyle(id StyleID) bool {
	for _, b := range ClassBindings {
		if b.Style == id {
			return true
		}
	}
	return false
}
