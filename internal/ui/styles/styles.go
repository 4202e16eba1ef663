// Package styles contains Lip Gloss style definitions for the viewer chrome.
// Highlight colors live in the highlight registry and are configurable.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"} // Document text
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BBBBBB"} // Titles, labels
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Hints, gutters, footers

	// Semantic color names - Border
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	StatusInfoColor    = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	// Section gutter colors (Catppuccin Mocha)
	SectionHeaderColor     = lipgloss.AdaptiveColor{Light: "#9CA0B0", Dark: "#6C7086"} // overlay0
	SectionOriginalColor   = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"} // yellow
	SectionSuggestionColor = lipgloss.AdaptiveColor{Light: "#8839EF", Dark: "#CBA6F7"} // mauve
	SectionDeveloperColor  = lipgloss.AdaptiveColor{Light: "#179299", Dark: "#94E2D5"} // teal
	SeparatorColor         = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#45475A"} // surface1

	// Tab bar
	TabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}).
			Background(lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#1A5276"})

	TabInactiveStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(TextSecondaryColor).
				Background(lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#2D3436"})

	TabModifiedStyle = lipgloss.NewStyle().Foreground(StatusWarningColor)

	// Gutter and footer
	LineNumberStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
	FooterStyle     = lipgloss.NewStyle().Foreground(TextMutedColor)
	TitleStyle      = lipgloss.NewStyle().Bold(true).Foreground(TextSecondaryColor)

	// Notice colors
	NoticeBorderSuccessColor = StatusSuccessColor
	NoticeBorderErrorColor   = StatusErrorColor
	NoticeBorderInfoColor    = StatusInfoColor
	NoticeBorderWarnColor    = StatusWarningColor
)
