// Package presentation converts refresh results and reports into the shapes
// printed by the headless commands.
package presentation

import (
	"github.com/zjrosen/patchlens/internal/document"
	"github.com/zjrosen/patchlens/internal/highlight"
)

// RangeDTO is one highlighted span. Start and End are 1-based "line:col".
type RangeDTO struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
	Text        string `json:"text"`
}

// StyleRangesDTO is the range list of one style. Applied is false when the
// refresh left the style untouched.
type StyleRangesDTO struct {
	Style   string     `json:"style"`
	Applied bool       `json:"applied"`
	Ranges  []RangeDTO `json:"ranges"`
}

// RangesDTO is the output of one refresh.
type RangesDTO struct {
	Path       string           `json:"path"`
	Structured bool             `json:"structured"`
	Styles     []StyleRangesDTO `json:"styles"`
}

// FromSnapshot builds the DTO for doc from the ranges applied to it, listing
// every style in paint order.
func FromSnapshot(path string, doc *document.Document, res highlight.Result, snapshot map[highlight.StyleID][]document.Range) RangesDTO {
	out := RangesDTO{
		Path:       path,
		Structured: res.Structured,
		Styles:     make([]StyleRangesDTO, 0, len(highlight.AllStyles)),
	}
	text := doc.Text()
	for _, style := range highlight.AllStyles {
		ranges, applied := snapshot[style]
		dto := StyleRangesDTO{
			Style:   string(style),
			Applied: applied,
			Ranges:  make([]RangeDTO, 0, len(ranges)),
		}
		for _, r := range ranges {
			dto.Ranges = append(dto.Ranges, RangeDTO{
				Start:       r.Start.String(),
				End:         r.End.String(),
				StartOffset: r.StartOffset,
				EndOffset:   r.EndOffset,
				Text:        text[r.StartOffset:r.EndOffset],
			})
		}
		out.Styles = append(out.Styles, dto)
	}
	return out
}
