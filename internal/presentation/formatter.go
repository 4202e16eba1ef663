package presentation

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/zjrosen/patchlens/internal/report"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatRanges writes ranges as indented JSON.
func (f *Formatter) FormatRanges(ranges RangesDTO) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ranges)
}

// FormatRangesText writes one block per style:
//
//	bugs (1)
//	  2:13-2:19  <BUGS>
func (f *Formatter) FormatRangesText(ranges RangesDTO) error {
	state := "structured"
	if !ranges.Structured {
		state = "no sections"
	}
	if _, err := fmt.Fprintf(f.writer, "%s: %s\n", ranges.Path, state); err != nil {
		return err
	}
	for _, s := range ranges.Styles {
		if !s.Applied {
			if _, err := fmt.Fprintf(f.writer, "%s (unchanged)\n", s.Style); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(f.writer, "%s (%d)\n", s.Style, len(s.Ranges)); err != nil {
			return err
		}
		for _, r := range s.Ranges {
			if _, err := fmt.Fprintf(f.writer, "  %s-%s  %s\n", r.Start, r.End, r.Text); err != nil {
				return err
			}
		}
	}
	return nil
}

// FormatReport writes the keyword report as indented JSON.
func (f *Formatter) FormatReport(r report.Report) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}
