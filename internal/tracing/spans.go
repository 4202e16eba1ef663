package tracing

// Span names.
const (
	SpanRefresh   = "highlight.refresh"
	SpanNormalize = "workspace.normalize"
	SpanAnalyze   = "report.analyze"
)

// Span attribute keys.
const (
	AttrSurfaceID     = "surface.id"
	AttrSurfacePath   = "surface.path"
	AttrDocumentBytes = "document.bytes"
	AttrDocumentLines = "document.lines"
	AttrStructured    = "highlight.structured"
	AttrStylePrefix   = "highlight.ranges."
	AttrEventKind     = "workspace.event"
	AttrKeywordCount  = "report.keywords"
	AttrSimilarity    = "report.similarity"
	AttrErrorMessage  = "error.message"
)

// Span event names.
const (
	EventMarkersApplied   = "markers.applied"
	EventStructureMissing = "structure.missing"
	EventClassesApplied   = "classes.applied"
)
