// Package surface stores the ranges most recently applied to each document
// surface, one list per style.
package surface

import (
	"context"
	"unicode/utf8"

	"github.com/zjrosen/patchlens/internal/cachemanager"
	"github.com/zjrosen/patchlens/internal/document"
	"github.com/zjrosen/patchlens/internal/highlight"
	"github.com/zjrosen/patchlens/internal/log"
)

type key string

func makeKey(id string, style highlight.StyleID) key {
	return key(id + "/" + string(style))
}

// Store keeps applied ranges keyed by surface and style. Applying replaces
// the previous list for that pair. Entries never expire; Forget drops them.
type Store struct {
	cache cachemanager.CacheManager[key, []document.Range]
}

func NewStore() *Store {
	return &Store{
		cache: cachemanager.NewInMemoryCacheManager[key, []document.Range](
			"surface ranges", cachemanager.NoExpiration, cachemanager.DefaultCleanupInterval),
	}
}

// Apply replaces the ranges for (id, style).
func (s *Store) Apply(id string, style highlight.StyleID, ranges []document.Range) {
	copied := make([]document.Range, len(ranges))
	copy(copied, ranges)
	s.cache.Set(context.Background(), makeKey(id, style), copied, cachemanager.NoExpiration)
}

// Ranges returns the ranges for (id, style) and whether the style has ever
// been applied to the surface.
func (s *Store) Ranges(id string, style highlight.StyleID) ([]document.Range, bool) {
	return s.cache.Get(context.Background(), makeKey(id, style))
}

// Snapshot returns every applied style for id.
func (s *Store) Snapshot(id string) map[highlight.StyleID][]document.Range {
	out := make(map[highlight.StyleID][]document.Range)
	for _, style := range highlight.AllStyles {
		if ranges, ok := s.Ranges(id, style); ok {
			out[style] = ranges
		}
	}
	return out
}

// Forget drops every style applied to id.
func (s *Store) Forget(id string) {
	keys := make([]key, 0, len(highlight.AllStyles))
	for _, style := range highlight.AllStyles {
		keys = append(keys, makeKey(id, style))
	}
	if err := s.cache.Delete(context.Background(), keys...); err != nil {
		log.ErrorErr(log.CatCache, "Forget surface failed", err, "surface", id)
	}
}

// Surface returns a handle that applies styles to id.
func (s *Store) Surface(id string) highlight.Surface {
	return &handle{store: s, id: id}
}

type handle struct {
	store *Store
	id    string
}

func (h *handle) ApplyStyle(style highlight.StyleID, ranges []document.Range) {
	h.store.Apply(h.id, style, ranges)
}

// Span is a painted run within one line, in byte offsets of that line.
type Span struct {
	Start int
	End   int
	Style highlight.StyleID
}

// LineSpans projects the stored ranges for id onto line i of doc. Later
// styles in highlight.AllStyles override earlier ones where they overlap.
// The result is sorted and non-overlapping.
func (s *Store) LineSpans(id string, doc *document.Document, i int) []Span {
	line := doc.Line(i)
	if line == "" {
		return nil
	}
	lineStart := doc.LineOffset(i)
	lineEnd := lineStart + len(line)

	owner := make([]highlight.StyleID, len(line))
	for _, style := range highlight.AllStyles {
		ranges, _ := s.Ranges(id, style)
		for _, r := range ranges {
			if r.EndOffset <= lineStart || r.StartOffset >= lineEnd {
				continue
			}
			// Ranges kept from an older snapshot may split a rune.
			from := runeFloor(line, max(r.StartOffset, lineStart)-lineStart)
			to := runeCeil(line, min(r.EndOffset, lineEnd)-lineStart)
			for b := from; b < to; b++ {
				owner[b] = style
			}
		}
	}

	var spans []Span
	for b := 0; b < len(owner); {
		if owner[b] == "" {
			b++
			continue
		}
		start, style := b, owner[b]
		for b < len(owner) && owner[b] == style {
			b++
		}
		spans = append(spans, Span{Start: start, End: b, Style: style})
	}
	return spans
}

// runeFloor moves b back to the start of the rune containing it.
func runeFloor(line string, b int) int {
	for b > 0 && b < len(line) && !utf8.RuneStart(line[b]) {
		b--
	}
	return b
}

// runeCeil moves b forward to the next rune start or the end of line.
func runeCeil(line string, b int) int {
	for b < len(line) && !utf8.RuneStart(line[b]) {
		b++
	}
	return b
}
