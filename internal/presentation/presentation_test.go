package presentation

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/patchlens/internal/document"
	"github.com/zjrosen/patchlens/internal/highlight"
	"github.com/zjrosen/patchlens/internal/report"
	"github.com/zjrosen/patchlens/internal/surface"
)

const reviewText = "Fix bounds check\n" +
	"x := len(a) <BUGS>a[i]<BUGE>\n" +
	"----\n" +
	"<FIXS>if check(x) {}<FIXE>\n" +
	"----\n" +
	"<FIXS>if check(len(a)) {}<FIXE>\n" +
	"----\n"

func refreshed(t *testing.T, text string, opts highlight.Options) RangesDTO {
	t.Helper()
	store := surface.NewStore()
	doc := document.New(text)
	res := highlight.NewEngine(opts).Refresh(context.Background(), doc, store.Surface("s"))
	return FromSnapshot("review.patch", doc, res, store.Snapshot("s"))
}

func styleByName(t *testing.T, dto RangesDTO, name string) StyleRangesDTO {
	t.Helper()
	for _, s := range dto.Styles {
		if s.Style == name {
			return s
		}
	}
	t.Fatalf("style %s missing", name)
	return StyleRangesDTO{}
}

func TestFromSnapshot(t *testing.T) {
	dto := refreshed(t, reviewText, highlight.DefaultOptions())

	require.True(t, dto.Structured)
	require.Len(t, dto.Styles, len(highlight.AllStyles))

	bugs := styleByName(t, dto, "bugs")
	require.True(t, bugs.Applied)
	require.Equal(t, []RangeDTO{{Start: "2:13", End: "2:19", StartOffset: 29, EndOffset: 35, Text: "<BUGS>"}}, bugs.Ranges)

	both := styleByName(t, dto, "both")
	require.NotEmpty(t, both.Ranges)
	for _, r := range both.Ranges {
		require.Contains(t, []string{"FIXS", "FIXE", "if", "check"}, r.Text)
	}
}

func TestFromSnapshot_LegacyUnstructured(t *testing.T) {
	dto := refreshed(t, "no sections <FIXS>x<FIXE>", highlight.Options{})

	require.False(t, dto.Structured)
	require.True(t, styleByName(t, dto, "fixs").Applied)
	require.False(t, styleByName(t, dto, "dev_only").Applied)
	require.NotNil(t, styleByName(t, dto, "dev_only").Ranges, "JSON prints [] rather than null")
}

func TestFormatRanges_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf).FormatRanges(refreshed(t, reviewText, highlight.DefaultOptions())))

	var decoded RangesDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "review.patch", decoded.Path)
	require.Len(t, decoded.Styles, 7)
}

func TestFormatRangesText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf).FormatRangesText(refreshed(t, reviewText, highlight.DefaultOptions())))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "review.patch: structured\n"))
	require.Contains(t, out, "bugs (1)\n  2:13-2:19  <BUGS>\n")
	require.Contains(t, out, "fixs (2)\n")
}

func TestFormatRangesText_Unchanged(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf).FormatRangesText(refreshed(t, "plain", highlight.Options{})))

	require.Contains(t, buf.String(), "review.patch: no sections\n")
	require.Contains(t, buf.String(), "both (unchanged)\n")
}

func TestFormatReport(t *testing.T) {
	var buf bytes.Buffer
	r := report.Analyze(context.Background(), document.New(reviewText))
	require.NoError(t, NewFormatter(&buf).FormatReport(r))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "Fix bounds check", decoded["header"])
	require.Equal(t, true, decoded["structured"])
}
