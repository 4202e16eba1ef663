// Package config provides configuration types, defaults, validation and
// persistence for patchlens.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/zjrosen/patchlens/internal/highlight"
	"github.com/zjrosen/patchlens/internal/log"
	"github.com/zjrosen/patchlens/internal/tracing"
)

// Config holds all configuration options for patchlens.
type Config struct {
	Styles    map[string]highlight.Spec `mapstructure:"styles"`
	Highlight HighlightConfig           `mapstructure:"highlight"`
	Watch     WatchConfig               `mapstructure:"watch"`
	UI        UIConfig                  `mapstructure:"ui"`
	Tracing   tracing.Config            `mapstructure:"tracing"`
	LogLevel  string                    `mapstructure:"log_level"`
}

// HighlightConfig controls the refresh engine.
type HighlightConfig struct {
	// ClearOnInvalidStructure clears the identifier styles when a document
	// loses its section structure. When false the last ranges stay painted.
	ClearOnInvalidStructure bool `mapstructure:"clear_on_invalid_structure"`
}

// WatchConfig controls reloading documents when their files change.
type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// UIConfig holds terminal viewer options.
type UIConfig struct {
	ShowLineNumbers bool   `mapstructure:"show_line_numbers"`
	ShowSections    bool   `mapstructure:"show_sections"`  // Section gutter labels (O/S/D)
	MarkdownStyle   string `mapstructure:"markdown_style"` // "dark" (default) or "light"
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	styles := make(map[string]highlight.Spec)
	for id, spec := range highlight.DefaultSpecs() {
		styles[string(id)] = spec
	}

	tc := tracing.DefaultConfig()
	tc.FilePath = DefaultTracesFilePath()

	return Config{
		Styles: styles,
		Highlight: HighlightConfig{
			ClearOnInvalidStructure: true,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 250 * time.Millisecond,
		},
		UI: UIConfig{
			ShowLineNumbers: true,
			ShowSections:    true,
			MarkdownStyle:   "dark",
		},
		Tracing:  tc,
		LogLevel: "debug",
	}
}

// DefaultKeys flattens Defaults into dotted viper keys so that a config file
// overriding one field keeps the defaults of its siblings.
func DefaultKeys() map[string]any {
	d := Defaults()
	keys := map[string]any{
		"highlight.clear_on_invalid_structure": d.Highlight.ClearOnInvalidStructure,
		"watch.enabled":                        d.Watch.Enabled,
		"watch.debounce":                       d.Watch.Debounce,
		"ui.show_line_numbers":                 d.UI.ShowLineNumbers,
		"ui.show_sections":                     d.UI.ShowSections,
		"ui.markdown_style":                    d.UI.MarkdownStyle,
		"tracing.enabled":                      d.Tracing.Enabled,
		"tracing.exporter":                     d.Tracing.Exporter,
		"tracing.file_path":                    d.Tracing.FilePath,
		"tracing.otlp_endpoint":                d.Tracing.OTLPEndpoint,
		"tracing.sample_rate":                  d.Tracing.SampleRate,
		"tracing.service_name":                 d.Tracing.ServiceName,
		"log_level":                            d.LogLevel,
	}
	for name, spec := range d.Styles {
		keys["styles."+name+".background"] = spec.Background
		keys["styles."+name+".foreground"] = spec.Foreground
		keys["styles."+name+".rounded"] = spec.Rounded
	}
	return keys
}

// StyleSpecs converts the configured styles to registry input.
func (c Config) StyleSpecs() map[highlight.StyleID]highlight.Spec {
	out := make(map[highlight.StyleID]highlight.Spec, len(c.Styles))
	for name, spec := range c.Styles {
		out[highlight.StyleID(strings.ToLower(name))] = spec
	}
	return out
}

// HighlightOptions converts the config to engine options.
func (c Config) HighlightOptions() highlight.Options {
	return highlight.Options{ClearOnInvalidStructure: c.Highlight.ClearOnInvalidStructure}
}

// DefaultTracesFilePath returns ~/.config/patchlens/traces/traces.jsonl, or
// "" when the home directory is unknown.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "patchlens", "traces", "traces.jsonl")
}

var hexColorRe = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// ValidColor reports whether s is a #RGB or #RRGGBB color.
func ValidColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := ValidateStyles(c.Styles); err != nil {
		return err
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		return err
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	switch c.UI.MarkdownStyle {
	case "", "dark", "light":
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", c.UI.MarkdownStyle)
	}
	if c.LogLevel != "" {
		if _, err := log.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}
	return nil
}

// ValidateStyles rejects unknown style names and malformed colors.
func ValidateStyles(styles map[string]highlight.Spec) error {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := highlight.ParseStyleID(name); err != nil {
			return fmt.Errorf("styles.%s: %w", name, err)
		}
		spec := styles[name]
		if spec.Background != "" && !ValidColor(spec.Background) {
			return fmt.Errorf("styles.%s.background: invalid color %q (use #RGB or #RRGGBB)", name, spec.Background)
		}
		if spec.Foreground != "" && !ValidColor(spec.Foreground) {
			return fmt.Errorf("styles.%s.foreground: invalid color %q (use #RGB or #RRGGBB)", name, spec.Foreground)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	switch tc.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
	}

	if tc.Enabled {
		if tc.Exporter == "file" && tc.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tc.Exporter == "otlp" && tc.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# patchlens configuration

# Highlight colors. Each style has a background, an optional foreground,
# and a rounded flag (rendered bold in the terminal).
styles:
  bugs:                    # <BUGS> markers
    background: "#5C1F1F"
    rounded: true
  buge:                    # <BUGE> markers
    background: "#1F5C1F"
    rounded: true
  fixs:                    # <FIXS> markers
    background: "#1F1F5C"
    rounded: true
  fixe:                    # <FIXE> markers
    background: "#1F5C1F"
    rounded: true
  dev_only:                # identifiers only the developer patch introduces
    background: "#552255"
    rounded: false
  sugg_only:               # identifiers only the suggestion introduces
    background: "#6B4F55"
    rounded: false
  both:                    # identifiers both patches introduce
    background: "#4D4D4D"
    rounded: false

highlight:
  # Clear identifier highlights when the document loses its three
  # separator lines. Set to false to keep the last highlights painted.
  clear_on_invalid_structure: true

# Reload open documents when their files change on disk
watch:
  enabled: true
  debounce: 250ms

ui:
  show_line_numbers: true
  show_sections: true      # O/S/D gutter labels for each section
  # markdown_style: dark   # Report rendering style: "dark" (default) or "light"

# log_level: debug         # Minimum level written to the debug log

# Tracing writes one span per highlight refresh.
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/patchlens/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
