// Package report summarises the identifiers a review document introduces:
// which section they come from, how often they occur, which appear inside
// fix regions, and how far the developer patch strays from the suggestion.
package report

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/patchlens/internal/classify"
	"github.com/zjrosen/patchlens/internal/document"
	"github.com/zjrosen/patchlens/internal/ident"
	"github.com/zjrosen/patchlens/internal/log"
	"github.com/zjrosen/patchlens/internal/matcher"
	"github.com/zjrosen/patchlens/internal/section"
	"github.com/zjrosen/patchlens/internal/tracing"
)

// fixRegionRe captures the text between a fix start and the nearest fix end.
var fixRegionRe = regexp.MustCompile(`(?s)<FIXS>(.*?)<FIXE>`)

// Kind is a lexical guess at what an identifier names.
type Kind string

const (
	KindCall     Kind = "call"
	KindConstant Kind = "constant"
	KindName     Kind = "name"
)

// Keyword is one classified identifier.
type Keyword struct {
	Name        string         `json:"name"`
	Class       classify.Class `json:"-"`
	ClassName   string         `json:"class"`
	Occurrences int            `json:"occurrences"`
	Kind        Kind           `json:"kind"`
}

// FixKeyword is an identifier found inside a fix region that the original
// section does not contain.
type FixKeyword struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// DiffLine is one line of the suggestion to developer diff.
type DiffLine struct {
	Op   diffmatchpatch.Operation `json:"op"`
	Text string                   `json:"text"`
}

// Report is the analysis of one document.
type Report struct {
	Header      string                 `json:"header"`
	Structured  bool                   `json:"structured"`
	Markers     map[matcher.Marker]int `json:"markers"`
	Keywords    []Keyword              `json:"keywords"`
	FixKeywords []FixKeyword           `json:"fix_keywords"`
	Similarity  float64                `json:"similarity"`
	Diff        []DiffLine             `json:"diff,omitempty"`
}

// Analyze builds the report for doc. Documents without three separators
// produce a report with only the header and marker counts.
func Analyze(ctx context.Context, doc *document.Document) Report {
	_, span := otel.Tracer("github.com/zjrosen/patchlens/internal/report").Start(ctx, tracing.SpanAnalyze)
	defer span.End()

	r := Report{
		Header:      strings.TrimSpace(doc.Line(0)),
		Markers:     make(map[matcher.Marker]int, len(matcher.Markers)),
		Keywords:    []Keyword{},
		FixKeywords: []FixKeyword{},
	}
	for _, m := range matcher.Markers {
		r.Markers[m] = len(matcher.MatchMarker(doc, m))
	}

	sections, ok := section.Split(doc.Lines())
	r.Structured = ok
	if !ok {
		log.Debug(log.CatReport, "Analyze without structure", "lines", doc.LineCount())
		return r
	}

	orig := ident.Extract(sections.Original)
	c := classify.Classify(orig, ident.Extract(sections.Suggestion), ident.Extract(sections.Developer))
	counts := ident.Occurrences(doc.Text())
	kinds := guessKinds(doc.Text())

	for _, class := range classify.Classes {
		for _, name := range c.Words(class) {
			r.Keywords = append(r.Keywords, Keyword{
				Name:        name,
				Class:       class,
				ClassName:   class.String(),
				Occurrences: counts[name],
				Kind:        kinds[name],
			})
		}
	}
	sort.Slice(r.Keywords, func(i, j int) bool { return r.Keywords[i].Name < r.Keywords[j].Name })

	fix := ident.Extract(fixRegions(sections.Suggestion) + "\n" + fixRegions(sections.Developer))
	for _, name := range fix.Minus(orig).Sorted() {
		r.FixKeywords = append(r.FixKeywords, FixKeyword{Name: name, Kind: kinds[name]})
	}

	r.Similarity = Similarity(sections.Suggestion, sections.Developer)
	r.Diff = LineDiff(sections.Suggestion, sections.Developer)

	span.SetAttributes(
		attribute.Int(tracing.AttrKeywordCount, len(r.Keywords)),
		attribute.Float64(tracing.AttrSimilarity, r.Similarity),
	)
	log.Debug(log.CatReport, "Analyze complete",
		"keywords", len(r.Keywords), "fix_keywords", len(r.FixKeywords), "similarity", r.Similarity)
	return r
}

// fixRegions joins the contents of every fix region in text.
func fixRegions(text string) string {
	var parts []string
	for _, m := range fixRegionRe.FindAllStringSubmatch(text, -1) {
		parts = append(parts, m[1])
	}
	return strings.Join(parts, "\n")
}

var callRe = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// guessKinds labels every identifier in text. A name followed by "(" anywhere
// is a call; an all-caps name is a constant; anything else is a plain name.
func guessKinds(text string) map[string]Kind {
	kinds := make(map[string]Kind)
	for name := range ident.Extract(text) {
		kinds[name] = KindName
		if isConstant(name) {
			kinds[name] = KindConstant
		}
	}
	for _, m := range callRe.FindAllStringSubmatch(text, -1) {
		kinds[m[1]] = KindCall
	}
	return kinds
}

func isConstant(name string) bool {
	letters := 0
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= 'A' && r <= 'Z':
			letters++
		}
	}
	return letters > 1
}

// Similarity returns 1 - levenshtein(a, b) / max(len(a), len(b)), counting
// runes. Two empty texts are identical.
func Similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	return 1 - float64(dmp.DiffLevenshtein(diffs))/float64(longest)
}

// LineDiff returns a line-level diff from a to b.
func LineDiff(a, b string) []DiffLine {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out []DiffLine
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, DiffLine{Op: d.Type, Text: strings.TrimSuffix(line, "\n")})
		}
	}
	return out
}
