package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/patchlens/internal/app"
	"github.com/zjrosen/patchlens/internal/config"
	"github.com/zjrosen/patchlens/internal/log"
	"github.com/zjrosen/patchlens/internal/tracing"
	"github.com/zjrosen/patchlens/internal/watcher"
	"github.com/zjrosen/patchlens/internal/workspace"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const (
	defaultConfigPath = ".patchlens/config.yaml"
	debugLogFile      = "patchlens-debug.log"
)

var (
	version = "dev"
	cfgFile string
	debug   bool
	cfg     config.Config

	// tracer is set by setup before any command runs.
	tracer trace.Tracer

	// cleanups run after the command returns, in reverse order.
	cleanups []func()
)

var rootCmd = &cobra.Command{
	Use:   "patchlens [files...]",
	Short: "Highlight markers and keywords in patch review documents",
	Long: `patchlens highlights the <BUGS>/<BUGE>/<FIXS>/<FIXE> markers of patch
review documents and classifies the identifiers of the suggested and
developer fixes, painting each class with its own style.

Run without a subcommand to open the files in the terminal viewer.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .patchlens/config.yaml or ~/.config/patchlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false,
		"write a debug log (also enabled by PATCHLENS_DEBUG)")
	rootCmd.Flags().Bool("no-watch", false,
		"do not reload documents when their files change")
}

func initConfig() {
	for key, value := range config.DefaultKeys() {
		viper.SetDefault(key, value)
	}
	viper.SetEnvPrefix("PATCHLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .patchlens/config.yaml (current directory)
		// 2. ~/.config/patchlens/config.yaml (user config)
		if _, err := os.Stat(defaultConfigPath); err == nil {
			viper.SetConfigFile(defaultConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "patchlens"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .patchlens/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if writeErr := config.WriteDefaultConfig(defaultConfigPath); writeErr == nil {
				viper.SetConfigFile(defaultConfigPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func debugEnabled() bool {
	return debug || os.Getenv("PATCHLENS_DEBUG") != ""
}

// setup validates the config and starts logging and tracing for every
// command.
func setup(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if debugEnabled() {
		if !cmd.HasParent() {
			closeLog, err := log.InitWithTeaLog(debugLogFile, "patchlens")
			if err != nil {
				return fmt.Errorf("opening debug log: %w", err)
			}
			cleanups = append(cleanups, closeLog)
		} else {
			// Headless commands keep stdout for their output.
			log.InitWriter(cmd.ErrOrStderr())
			cleanups = append(cleanups, log.Close)
		}
		if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
			log.SetMinLevel(level)
		}
		log.Info(log.CatConfig, "Loaded config", "path", viper.ConfigFileUsed())
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	tracer = provider.Tracer()
	cleanups = append(cleanups, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Tracing shutdown failed", err)
		}
	})
	return nil
}

func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

// configPath is where style edits are saved.
func configPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return defaultConfigPath
}

func runApp(cmd *cobra.Command, args []string) error {
	ws := workspace.New()
	for _, path := range args {
		if _, err := ws.Open(path); err != nil {
			ws.Shutdown()
			return err
		}
	}
	if surfaces := ws.Surfaces(); len(surfaces) > 0 {
		_ = ws.SetActive(surfaces[0].ID)
	}

	noWatch, _ := cmd.Flags().GetBool("no-watch")
	var w *watcher.Watcher
	if cfg.Watch.Enabled && !noWatch {
		w = startWatcher(ws)
	}

	zone.NewGlobal()
	model := app.New(ws, app.Options{
		Config:  cfg,
		Watcher: w,
		Debug:   debugEnabled(),
		Tracer:  tracer,
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()

	// Clean up watcher and workspace resources
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// startWatcher watches every open file. Failures are logged and the viewer
// runs without reloads.
func startWatcher(ws *workspace.Workspace) *watcher.Watcher {
	w, err := watcher.New(watcher.Config{Debounce: cfg.Watch.Debounce})
	if err != nil {
		log.ErrorErr(log.CatWatcher, "Failed to start watcher", err)
		return nil
	}
	for _, s := range ws.Surfaces() {
		if err := w.Add(s.Path); err != nil {
			log.ErrorErr(log.CatWatcher, "Failed to watch file", err, "path", s.Path)
		}
	}
	w.Start()
	return w
}

// Execute runs the root command
func Execute() error {
	defer runCleanups()
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
