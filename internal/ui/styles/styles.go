// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"}
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // hints, legends, footers
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}

	// Borders
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	// Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Formula tokens (Catppuccin Mocha)
	SegmentColor     = lipgloss.AdaptiveColor{Light: "#4C4F69", Dark: "#CDD6F4"} // text
	ClassColor       = lipgloss.AdaptiveColor{Light: "#179299", Dark: "#94E2D5"} // teal
	BoundaryColor    = lipgloss.AdaptiveColor{Light: "#FE640B", Dark: "#FAB387"} // peach
	VariableColor    = lipgloss.AdaptiveColor{Light: "#8839EF", Dark: "#CBA6F7"} // mauve
	MappingColor     = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"} // yellow
	PlaceholderColor = lipgloss.AdaptiveColor{Light: "#9CA0B0", Dark: "#6C7086"} // overlay0
	OperatorColor    = lipgloss.AdaptiveColor{Light: "#D20F39", Dark: "#F38BA8"} // red
	CursorColor      = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"} // blue

	SegmentStyle     = lipgloss.NewStyle().Foreground(SegmentColor)
	ClassStyle       = lipgloss.NewStyle().Foreground(ClassColor)
	BoundaryStyle    = lipgloss.NewStyle().Foreground(BoundaryColor).Bold(true)
	VariableStyle    = lipgloss.NewStyle().Foreground(VariableColor).Italic(true)
	MappingStyle     = lipgloss.NewStyle().Foreground(MappingColor)
	PlaceholderStyle = lipgloss.NewStyle().Foreground(PlaceholderColor)
	OperatorStyle    = lipgloss.NewStyle().Foreground(OperatorColor)
	CursorStyle      = lipgloss.NewStyle().Foreground(CursorColor).Bold(true)
	SelectedStyle    = lipgloss.NewStyle().Reverse(true)
	LegendStyle      = lipgloss.NewStyle().Foreground(TextMutedColor)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	ErrorTextStyle   = lipgloss.NewStyle().Foreground(StatusErrorColor)
	WarningTextStyle = lipgloss.NewStyle().Foreground(StatusWarningColor)
	SuccessTextStyle = lipgloss.NewStyle().Foreground(StatusSuccessColor)
)
