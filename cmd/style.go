package cmd

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zjrosen/patchlens/internal/config"
	"github.com/zjrosen/patchlens/internal/highlight"
)

var (
	styleForeground string
	styleRounded    bool
)

var styleCmd = &cobra.Command{
	Use:   "style",
	Short: "Show or change highlight styles",
}

var styleSetCmd = &cobra.Command{
	Use:   "set NAME COLOR",
	Short: "Save the background color of a style to the config file",
	Long: `Save the background COLOR (#RGB or #RRGGBB) of style NAME to the config
file in use, keeping its other settings and comments.

Styles: bugs, buge, fixs, fixe, dev_only, sugg_only, both.

Examples:
  patchlens style set both '#1F5C1F'
  patchlens style set bugs '#5C1F1F' --foreground '#FFFFFF' --rounded`,
	Args: cobra.ExactArgs(2),
	RunE: runStyleSet,
}

var styleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured styles",
	Args:  cobra.NoArgs,
	RunE:  runStyleList,
}

func init() {
	styleSetCmd.Flags().StringVar(&styleForeground, "foreground", "", "text color (empty clears it)")
	styleSetCmd.Flags().BoolVar(&styleRounded, "rounded", false, "render the style bold")
	styleCmd.AddCommand(styleSetCmd, styleListCmd)
	rootCmd.AddCommand(styleCmd)
}

func runStyleSet(cmd *cobra.Command, args []string) error {
	id, err := highlight.ParseStyleID(args[0])
	if err != nil {
		return err
	}

	spec := cfg.StyleSpecs()[id]
	spec.Background = args[1]
	if cmd.Flags().Changed("foreground") {
		spec.Foreground = styleForeground
	}
	if cmd.Flags().Changed("rounded") {
		spec.Rounded = styleRounded
	}

	path := configPath()
	if err := config.SaveStyle(path, id, spec); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", id, path)
	return err
}

func runStyleList(cmd *cobra.Command, _ []string) error {
	specs := cfg.StyleSpecs()
	registry := highlight.NewRegistry(specs)

	ids := make([]string, 0, len(specs))
	for id := range specs {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	name := lipgloss.NewStyle().Width(10)
	for _, id := range ids {
		spec := specs[highlight.StyleID(id)]
		line := name.Render(id) + " " + spec.Background
		if spec.Foreground != "" {
			line += " on " + spec.Foreground
		}
		if spec.Rounded {
			line += " rounded"
		}
		line += "  " + registry.Style(highlight.StyleID(id)).Render(" "+id+" ")
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return err
		}
	}
	return nil
}
