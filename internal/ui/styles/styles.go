// Package styles defines the visual styling for the application.
package styles

import "github.com/charmbracelet/lipgloss"

// Color definitions for the dashboard theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("205") // Pink
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	// Heat scale, coldest first.
	Heat = []lipgloss.Color{"238", "24", "31", "142", "214", "202", "196"}

	// Correlation sign colors
	Positive = lipgloss.Color("203") // Salmon
	Negative = lipgloss.Color("75")  // Sky

	// Status colors
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow

	// Background colors
	BgDark   = lipgloss.Color("235")
	BgAccent = lipgloss.Color("236")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary).
	MarginBottom(1)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// BlurredBorderStyle creates an unfocused border.
var BlurredBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 1)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpKeyStyle styles keyboard shortcut keys.
var HelpKeyStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// HelpDescStyle styles help descriptions.
var HelpDescStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// HelpSeparatorStyle styles separators in help text.
var HelpSeparatorStyle = lipgloss.NewStyle().
	Foreground(Subtle)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// TableHeaderStyle styles table headers.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(Subtle)

// RankStyle styles the position column of ranking tables.
var RankStyle = lipgloss.NewStyle().
	Foreground(TextMuted).
	Width(4).
	Align(lipgloss.Right)

// NumberStyle right-aligns numeric table cells.
var NumberStyle = lipgloss.NewStyle().
	Foreground(TextPrimary).
	Align(lipgloss.Right)

// BorderCellStyle draws state outlines on the density map.
var BorderCellStyle = lipgloss.NewStyle().
	Foreground(Secondary)

// EmptyStateStyle frames the panel shown when there is nothing to display.
var EmptyStateStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Warning).
	Foreground(TextSecondary).
	Padding(1, 3)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// SelectorActiveStyle highlights the selected state in the selector.
var SelectorActiveStyle = lipgloss.NewStyle().
	Background(Primary).
	Foreground(lipgloss.Color("229")).
	Bold(true).
	Padding(0, 1)

// SelectorInactiveStyle styles the other entries of the state selector.
var SelectorInactiveStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Padding(0, 1)

// HeatStyle returns the foreground style for an intensity in [0, 1].
func HeatStyle(intensity float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(Heat[HeatLevel(intensity)])
}

// HeatLevel maps an intensity in [0, 1] to an index into Heat. Zero stays
// at the coldest level so empty cells are distinguishable.
func HeatLevel(intensity float64) int {
	if intensity <= 0 {
		return 0
	}
	level := 1 + int(intensity*float64(len(Heat)-2)+0.5)
	return min(level, len(Heat)-1)
}

// CorrelationStyle colors a coefficient by sign and strength. NaN values
// render muted.
func CorrelationStyle(r float64) lipgloss.Style {
	switch {
	case r != r:
		return lipgloss.NewStyle().Foreground(TextMuted)
	case r >= 0.7:
		return lipgloss.NewStyle().Foreground(Positive).Bold(true)
	case r >= 0.3:
		return lipgloss.NewStyle().Foreground(Positive)
	case r <= -0.7:
		return lipgloss.NewStyle().Foreground(Negative).Bold(true)
	case r <= -0.3:
		return lipgloss.NewStyle().Foreground(Negative)
	default:
		return lipgloss.NewStyle().Foreground(TextSecondary)
	}
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
