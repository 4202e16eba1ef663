// Package matcher finds marker tags and literal words in a document and
// returns their spans as document ranges.
package matcher

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/zjrosen/patchlens/internal/cachemanager"
	"github.com/zjrosen/patchlens/internal/document"
	"github.com/zjrosen/patchlens/internal/log"
)

// Marker is one of the four literal tags that delimit bug and fix regions.
type Marker string

const (
	BugStart Marker = "<BUGS>"
	BugEnd   Marker = "<BUGE>"
	FixStart Marker = "<FIXS>"
	FixEnd   Marker = "<FIXE>"
)

// Markers lists every marker in a stable order.
var Markers = []Marker{BugStart, BugEnd, FixStart, FixEnd}

func (m Marker) String() string { return string(m) }

// IsMarker reports whether s is exactly one of the four markers.
func IsMarker(s string) bool {
	for _, m := range Markers {
		if string(m) == s {
			return true
		}
	}
	return false
}

// MatchMarker returns every occurrence of m in doc, left to right. Markers
// are matched as bare substrings with no word-boundary requirement.
func MatchMarker(doc *document.Document, m Marker) []document.Range {
	ranges := []document.Range{}
	if m == "" {
		return ranges
	}
	text := doc.Text()
	needle := string(m)
	for from := 0; from <= len(text); {
		i := strings.Index(text[from:], needle)
		if i < 0 {
			break
		}
		start := from + i
		end := start + len(needle)
		ranges = append(ranges, doc.RangeAt(start, end))
		from = end
	}
	return ranges
}

// patternTTL bounds how long an unused compiled pattern stays cached.
const patternTTL = 5 * time.Minute

// Matcher finds whole-word occurrences of literal word lists. Compiled
// patterns are memoised by word list; ranges are never cached.
type Matcher struct {
	patterns *cachemanager.ReadThroughCache[string, *regexp.Regexp, []string]
}

// New returns a Matcher with its own pattern cache.
func New() *Matcher {
	cache := cachemanager.NewInMemoryCacheManager[string, *regexp.Regexp](
		"word patterns", patternTTL, cachemanager.DefaultCleanupInterval)
	return NewWithCache(cache)
}

// NewWithCache returns a Matcher backed by cache. A nil cache compiles the
// pattern on every call.
func NewWithCache(cache cachemanager.CacheManager[string, *regexp.Regexp]) *Matcher {
	return &Matcher{
		patterns: cachemanager.NewReadThroughCache(cache, patternKey, compileWords, patternTTL),
	}
}

// MatchWords returns every non-overlapping, case-sensitive, word-bounded
// occurrence of any of words in doc, left to right. Words are matched
// literally. An empty word list yields an empty result.
func (m *Matcher) MatchWords(ctx context.Context, doc *document.Document, words []string) []document.Range {
	ranges := []document.Range{}
	words = normalizeWords(words)
	if len(words) == 0 || doc.Len() == 0 {
		return ranges
	}

	re, err := m.patterns.Get(ctx, words)
	if err != nil {
		log.ErrorErr(log.CatHighlight, "Compile word pattern failed", err, "words", len(words))
		return ranges
	}
	hits, misses := m.patterns.Stats()
	log.Debug(log.CatCache, "Word pattern lookup", "words", len(words), "hits", hits, "misses", misses)

	for _, loc := range re.FindAllStringIndex(doc.Text(), -1) {
		ranges = append(ranges, doc.RangeAt(loc[0], loc[1]))
	}
	return ranges
}

// Pattern returns the regular expression source used for words.
func Pattern(words []string) string {
	words = normalizeWords(words)
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return `\b(?:` + strings.Join(quoted, "|") + `)\b`
}

// patternKey expects words already normalized.
func patternKey(words []string) string {
	return strings.Join(words, "\x00")
}

func compileWords(_ context.Context, words []string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(Pattern(words))
	if err != nil {
		return nil, fmt.Errorf("compiling %d words: %w", len(words), err)
	}
	return re, nil
}

// normalizeWords drops empty entries, sorts and de-duplicates so that equal
// word lists share one cache key.
func normalizeWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			out = append(out, w)
		}
	}
	sort.Strings(out)
	n := 0
	for i, w := range out {
		if i > 0 && w == out[n-1] {
			continue
		}
		out[n] = w
		n++
	}
	return out[:n]
}
