package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zjrosen/patchlens/internal/presentation"
	"github.com/zjrosen/patchlens/internal/report"
	"github.com/zjrosen/patchlens/internal/ui/markdown"
	"github.com/zjrosen/patchlens/internal/workspace"
)

var (
	analyzeRaw  bool
	analyzeJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Print the keyword report of a review document",
	Long: `Print the keyword report of FILE: the header line, marker counts, each
identifier with the sections it appears in, the identifiers inside the
fixes, and how similar the suggested and developer fixes are.

The report is rendered as styled markdown when stdout is a terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeRaw, "raw", false, "print the markdown source without rendering")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ws := workspace.New()
	defer ws.Shutdown()

	s, err := ws.Open(args[0])
	if err != nil {
		return err
	}
	r := report.Analyze(cmd.Context(), s.Document())

	out := cmd.OutOrStdout()
	if analyzeJSON {
		return presentation.NewFormatter(out).FormatReport(r)
	}

	md := r.Markdown()
	width, tty := terminalWidth(out)
	if analyzeRaw || !tty {
		_, err := fmt.Fprint(out, md)
		return err
	}

	renderer, err := markdown.New(cfg.UI.MarkdownStyle, width)
	if err != nil {
		return err
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

// terminalWidth reports whether w is a terminal and, if so, its width.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) { //nolint:gosec // G115: file descriptors fit in int
		return 0, false
	}
	width, _, err := term.GetSize(int(f.Fd())) //nolint:gosec // G115
	if err != nil || width <= 0 {
		width = 80
	}
	return width, true
}
