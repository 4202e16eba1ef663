// Package highlight computes the highlight ranges of a review document and
// hands them to a Surface, one call per style.
package highlight

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/patchlens/internal/classify"
	"github.com/zjrosen/patchlens/internal/document"
	"github.com/zjrosen/patchlens/internal/ident"
	"github.com/zjrosen/patchlens/internal/log"
	"github.com/zjrosen/patchlens/internal/matcher"
	"github.com/zjrosen/patchlens/internal/section"
	"github.com/zjrosen/patchlens/internal/tracing"
)

// Surface receives style applications. Each call replaces whatever ranges
// the surface held for style; an empty slice clears it.
type Surface interface {
	ApplyStyle(style StyleID, ranges []document.Range)
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(style StyleID, ranges []document.Range)

func (f SurfaceFunc) ApplyStyle(style StyleID, ranges []document.Range) { f(style, ranges) }

// Options configures an Engine.
type Options struct {
	// ClearOnInvalidStructure clears the classification styles when the
	// document lacks three separators. When false they keep whatever the
	// previous refresh applied.
	ClearOnInvalidStructure bool

	// Tracer defaults to the global otel tracer.
	Tracer trace.Tracer

	// Matcher defaults to matcher.New().
	Matcher *matcher.Matcher
}

// DefaultOptions clears stale classification ranges.
func DefaultOptions() Options {
	return Options{ClearOnInvalidStructure: true}
}

// Engine runs refreshes. It holds no per-document state.
type Engine struct {
	clearOnInvalid bool
	tracer         trace.Tracer
	matcher        *matcher.Matcher
}

func NewEngine(opts Options) *Engine {
	e := &Engine{
		clearOnInvalid: opts.ClearOnInvalidStructure,
		tracer:         opts.Tracer,
		matcher:        opts.Matcher,
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer("github.com/zjrosen/patchlens/internal/highlight")
	}
	if e.matcher == nil {
		e.matcher = matcher.New()
	}
	return e
}

// Result summarises one refresh.
type Result struct {
	// Structured is true when three separators were found.
	Structured bool

	// Counts holds the number of ranges applied per style. Styles that were
	// not applied are absent.
	Counts map[StyleID]int

	Sections       section.Sections
	Classification classify.Classification
}

// Applied reports whether style was applied in this refresh.
func (r Result) Applied(style StyleID) bool {
	_, ok := r.Counts[style]
	return ok
}

// Refresh recomputes every highlight for doc from scratch and applies it to
// surface. Marker styles are always applied. Classification styles are
// applied when the document has a valid structure, and cleared or left
// alone otherwise depending on Options.ClearOnInvalidStructure.
func (e *Engine) Refresh(ctx context.Context, doc *document.Document, surface Surface) Result {
	ctx, span := e.tracer.Start(ctx, tracing.SpanRefresh, trace.WithAttributes(
		attribute.Int(tracing.AttrDocumentBytes, doc.Len()),
		attribute.Int(tracing.AttrDocumentLines, doc.LineCount()),
	))
	defer span.End()

	res := Result{Counts: make(map[StyleID]int, len(AllStyles))}
	apply := func(style StyleID, ranges []document.Range) {
		surface.ApplyStyle(style, ranges)
		res.Counts[style] = len(ranges)
	}

	for _, b := range MarkerBindings {
		apply(b.Style, matcher.MatchMarker(doc, b.Marker))
	}
	span.AddEvent(tracing.EventMarkersApplied)

	sections, ok := section.Split(doc.Lines())
	res.Structured = ok
	span.SetAttributes(attribute.Bool(tracing.AttrStructured, ok))

	if !ok {
		span.AddEvent(tracing.EventStructureMissing)
		if e.clearOnInvalid {
			for _, b := range ClassBindings {
				apply(b.Style, []document.Range{})
			}
		}
		log.Debug(log.CatHighlight, "Refresh without structure",
			"lines", doc.LineCount(), "cleared", e.clearOnInvalid)
		e.recordCounts(span, res)
		return res
	}

	res.Sections = sections
	res.Classification = classify.Classify(
		ident.Extract(sections.Original),
		ident.Extract(sections.Suggestion),
		ident.Extract(sections.Developer),
	)

	for _, b := range ClassBindings {
		words := res.Classification.Words(b.Class)
		apply(b.Style, e.matcher.MatchWords(ctx, doc, words))
	}
	span.AddEvent(tracing.EventClassesApplied)

	log.Debug(log.CatHighlight, "Refresh complete",
		"lines", doc.LineCount(),
		"dev_only", res.Classification.DevOnly.Len(),
		"sugg_only", res.Classification.SuggOnly.Len(),
		"both", res.Classification.Both.Len())
	e.recordCounts(span, res)
	return res
}

func (e *Engine) recordCounts(span trace.Span, res Result) {
	attrs := make([]attribute.KeyValue, 0, len(res.Counts))
	for _, id := range AllStyles {
		if n, ok := res.Counts[id]; ok {
			attrs = append(attrs, attribute.Int(tracing.AttrStylePrefix+string(id), n))
		}
	}
	span.SetAttributes(attrs...)
}
