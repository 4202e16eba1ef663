package tracing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.False(t, cfg.Enabled, "tracing should be disabled by default")
	require.Equal(t, "file", cfg.Exporter)
	require.Equal(t, "", cfg.FilePath)
	require.Equal(t, DefaultOTLPEndpoint, cfg.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, "patchlens", cfg.ServiceName)
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: false})
	require.NoError(t, err)
	require.False(t, provider.Enabled())

	ctx, span := provider.Tracer().Start(context.Background(), SpanRefresh)
	require.NotNil(t, ctx)
	require.False(t, span.SpanContext().IsValid(), "no-op spans carry no IDs")
	span.End()

	require.Equal(t, "", TraceID(ctx))
	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_FileExporter(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "nested", "traces.jsonl")

	provider, err := NewProvider(Config{
		Enabled:     true,
		Exporter:    "file",
		FilePath:    tracePath,
		SampleRate:  1.0,
		ServiceName: "test-service",
	})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	ctx, span := provider.Tracer().Start(context.Background(), SpanRefresh)
	require.True(t, span.SpanContext().IsValid())
	require.NotEmpty(t, TraceID(ctx))
	span.SetAttributes(attribute.Int(AttrDocumentLines, 12))
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))

	data, err := os.ReadFile(tracePath)
	require.NoError(t, err)

	var rec SpanRecord
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &rec))
	require.Equal(t, SpanRefresh, rec.Name)
	require.Equal(t, float64(12), rec.Attributes[AttrDocumentLines])
}

func TestNewProvider_FileExporterRequiresPath(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: "file"})
	require.ErrorContains(t, err, "file_path required")
}

func TestNewProvider_NoneExporter(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: true, Exporter: "none"})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	_, span := provider.Tracer().Start(context.Background(), "x")
	require.True(t, span.SpanContext().IsValid())
	span.End()
	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_UnsupportedExporter(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: "zipkin"})
	require.ErrorContains(t, err, "unsupported exporter type: zipkin")
}

func TestJSONLExporter_WritesRecords(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewWriterExporter(&buf)
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	tracer := tp.Tracer("test")

	ctx, parent := tracer.Start(context.Background(), "parent")
	_, child := tracer.Start(ctx, "child")
	child.AddEvent(EventStructureMissing, trace.WithAttributes(attribute.Int(AttrDocumentLines, 2)))
	child.SetStatus(codes.Error, "boom")
	child.End()
	parent.End()

	require.NoError(t, tp.Shutdown(context.Background()))

	var records []SpanRecord
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.Len(t, records, 2)

	childRec, parentRec := records[0], records[1]
	require.Equal(t, "child", childRec.Name)
	require.Equal(t, parentRec.SpanID, childRec.ParentSpanID)
	require.Equal(t, parentRec.TraceID, childRec.TraceID)
	require.Equal(t, "ERROR", childRec.Status)
	require.Equal(t, "boom", childRec.StatusMsg)
	require.Len(t, childRec.Events, 1)
	require.Equal(t, EventStructureMissing, childRec.Events[0].Name)
	require.Equal(t, float64(2), childRec.Events[0].Attributes[AttrDocumentLines])
	require.Equal(t, "UNSET", parentRec.Status)
	require.Empty(t, parentRec.ParentSpanID)
}

func TestJSONLExporter_ShutdownStopsExport(t *testing.T) {
	exporter := NewWriterExporter(&bytes.Buffer{})
	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.ExportSpans(context.Background(), nil))

	tp := sdktrace.NewTracerProvider()
	_, span := tp.Tracer("t").Start(context.Background(), "s")
	span.End()
	ro, ok := span.(sdktrace.ReadOnlySpan)
	require.True(t, ok)
	require.Error(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{ro}))
}
