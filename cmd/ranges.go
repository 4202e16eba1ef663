package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/patchlens/internal/highlight"
	"github.com/zjrosen/patchlens/internal/log"
	"github.com/zjrosen/patchlens/internal/presentation"
	"github.com/zjrosen/patchlens/internal/surface"
	"github.com/zjrosen/patchlens/internal/watcher"
	"github.com/zjrosen/patchlens/internal/workspace"
)

var (
	rangesFormat string
	rangesWatch  bool
)

var rangesCmd = &cobra.Command{
	Use:   "ranges FILE",
	Short: "Print the highlight ranges of a document",
	Long: `Run one refresh over FILE and print the ranges of all seven styles.

Positions are 1-based line:column, columns counted in code points.
Styles a refresh leaves alone (the classification styles of a document
without sections, when clearing is disabled) are reported as unchanged.

Examples:
  patchlens ranges review.patch
  patchlens ranges review.patch --format json | jq '.styles[] | select(.style == "both")'
  patchlens ranges review.patch --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runRanges,
}

func init() {
	rangesCmd.Flags().StringVarP(&rangesFormat, "format", "f", "text", "output format: text or json")
	rangesCmd.Flags().BoolVarP(&rangesWatch, "watch", "w", false, "print again every time the file changes")
	rootCmd.AddCommand(rangesCmd)
}

func runRanges(cmd *cobra.Command, args []string) error {
	if rangesFormat != "text" && rangesFormat != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", rangesFormat)
	}

	ws := workspace.New()
	defer ws.Shutdown()

	s, err := ws.Open(args[0])
	if err != nil {
		return err
	}

	store := surface.NewStore()
	opts := cfg.HighlightOptions()
	opts.Tracer = tracer
	dispatcher := workspace.NewDispatcher(ws, highlight.NewEngine(opts), store)

	formatter := presentation.NewFormatter(cmd.OutOrStdout())
	emit := func(r workspace.Refreshed) error {
		dto := presentation.FromSnapshot(args[0], s.Document(), r.Result, store.Snapshot(r.SurfaceID))
		if rangesFormat == "json" {
			return formatter.FormatRanges(dto)
		}
		return formatter.FormatRangesText(dto)
	}

	ctx := cmd.Context()
	r, _ := dispatcher.Refresh(ctx, s.ID)
	if err := emit(r); err != nil {
		return err
	}
	if !rangesWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchRanges(ctx, cmd, ws, dispatcher, s, emit)
}

// watchRanges reloads s on every change and prints each refresh until ctx
// is done.
func watchRanges(ctx context.Context, cmd *cobra.Command, ws *workspace.Workspace, dispatcher *workspace.Dispatcher,
	s *workspace.Surface, emit func(workspace.Refreshed) error) error {
	if err := ws.SetActive(s.ID); err != nil {
		return err
	}

	w, err := watcher.New(watcher.Config{Debounce: cfg.Watch.Debounce})
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() { _ = w.Stop() }()
	if err := w.Add(s.Path); err != nil {
		return err
	}

	changes := w.Broker().Subscribe(ctx)
	events := ws.Broker().Subscribe(ctx)
	w.Start()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-changes:
			if !ok {
				return nil
			}
			switch ev.Type {
			case watcher.FileChanged:
				if _, err := ws.Reload(ev.Payload.Path); err != nil {
					log.ErrorErr(log.CatWatcher, "Reload failed", err, "path", ev.Payload.Path)
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "reload failed: %v\n", err)
				}
			case watcher.WatcherError:
				log.ErrorErr(log.CatWatcher, "Watcher error", ev.Payload.Error)
			}

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if r, refreshed := dispatcher.Handle(ctx, ev); refreshed {
				if err := emit(r); err != nil {
					return err
				}
			}
		}
	}
}
