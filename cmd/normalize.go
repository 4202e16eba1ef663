package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zjrosen/patchlens/internal/log"
	"github.com/zjrosen/patchlens/internal/workspace"
)

var normalizeOutput string

var normalizeCmd = &cobra.Command{
	Use:   "normalize [FILE]",
	Short: "Put every marker token on its own line",
	Long: `Print FILE with a line break inserted before and after each
<BUGS>, <BUGE>, <FIXS> and <FIXE> token that does not already have one.

Without FILE the text is read from stdin.

Examples:
  patchlens normalize review.patch
  patchlens normalize review.patch -o review.normalized.patch
  cat review.patch | patchlens normalize`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeOutput, "output", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	ws := workspace.New()
	defer ws.Shutdown()

	if len(args) == 1 {
		s, err := ws.Open(args[0])
		if err != nil {
			return err
		}
		if err := ws.SetActive(s.ID); err != nil {
			return err
		}
	} else {
		text, err := readPiped(cmd.InOrStdin())
		if err != nil {
			return err
		}
		if text != "" {
			s := ws.OpenUntitled("stdin", text, "")
			if err := ws.SetActive(s.ID); err != nil {
				return err
			}
		}
	}

	// With nothing opened this reports workspace.ErrNoActiveSurface.
	out, err := ws.NormalizeActive(cmd.Context())
	if err != nil {
		return err
	}
	text := out.Document().Text()

	if normalizeOutput == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), text)
		return err
	}
	if dir := filepath.Dir(normalizeOutput); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(normalizeOutput, []byte(text), 0o644); err != nil { //nolint:gosec // G306: normalized copy of a user document
		return fmt.Errorf("writing %s: %w", normalizeOutput, err)
	}
	log.Info(log.CatWorkspace, "Wrote normalized document", "path", normalizeOutput, "bytes", len(text))
	return nil
}

// readPiped reads r unless it is an interactive terminal, which would
// block waiting for input nobody intends to type.
func readPiped(r io.Reader) (string, error) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // G115: file descriptors fit in int
		return "", nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}
