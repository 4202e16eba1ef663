package report

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/patchlens/internal/classify"
	"github.com/zjrosen/patchlens/internal/matcher"
)

// Markdown renders the report for display through glamour or as plain text.
func (r Report) Markdown() string {
	var b strings.Builder

	header := r.Header
	if header == "" {
		header = "Untitled review"
	}
	fmt.Fprintf(&b, "# %s\n\n", header)

	b.WriteString("| Marker | Count |\n|---|---|\n")
	for _, m := range matcher.Markers {
		fmt.Fprintf(&b, "| `%s` | %d |\n", m, r.Markers[m])
	}
	b.WriteString("\n")

	if !r.Structured {
		b.WriteString("_No original, suggestion and developer sections found. " +
			"Separate them with lines of `----` or `====`._\n")
		return b.String()
	}

	b.WriteString("## Keywords\n\n")
	if len(r.Keywords) == 0 {
		b.WriteString("_No identifiers outside the original section._\n\n")
	} else {
		b.WriteString("| Keyword | Section | Occurrences | Kind |\n|---|---|---|---|\n")
		for _, k := range r.Keywords {
			fmt.Fprintf(&b, "| `%s` | %s | %d | %s |\n", k.Name, sectionLabel(k.Class), k.Occurrences, k.Kind)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Fix keywords\n\n")
	if len(r.FixKeywords) == 0 {
		b.WriteString("_None._\n\n")
	} else {
		for _, k := range r.FixKeywords {
			fmt.Fprintf(&b, "- `%s` (%s)\n", k.Name, k.Kind)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Suggestion vs developer\n\nSimilarity: **%.0f%%**\n\n", r.Similarity*100)
	if len(r.Diff) > 0 {
		b.WriteString("```diff\n")
		for _, d := range r.Diff {
			switch d.Op {
			case diffmatchpatch.DiffInsert:
				b.WriteString("+ ")
			case diffmatchpatch.DiffDelete:
				b.WriteString("- ")
			default:
				b.WriteString("  ")
			}
			b.WriteString(d.Text)
			b.WriteString("\n")
		}
		b.WriteString("```\n")
	}

	return b.String()
}

func sectionLabel(class classify.Class) string {
	switch class {
	case classify.DevOnly:
		return "developer only"
	case classify.SuggOnly:
		return "suggestion only"
	case classify.Both:
		return "suggestion + developer"
	default:
		return class.String()
	}
}
