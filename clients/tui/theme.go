// Package tui provides the terminal keypad for calcpad.
package tui

import "github.com/charmbracelet/lipgloss"

// Adaptive colors (light/dark terminal detection).
var (
	ColorDigit    = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#F9FAFB"}
	ColorDigitBg  = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#374151"}
	ColorControl  = lipgloss.AdaptiveColor{Light: "#374151", Dark: "#D1D5DB"}
	ColorError    = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#FF6B6B"}
	ColorMuted    = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	ColorStatusBg = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#1F2937"}
	ColorStatusFg = lipgloss.AdaptiveColor{Light: "#374151", Dark: "#D1D5DB"}
	ColorBorder   = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#4B5563"}
)

// Theme groups the styles used to render the keypad.
type Theme struct {
	Display    lipgloss.Style
	Expression lipgloss.Style
	Digit      lipgloss.Style
	Operator   lipgloss.Style
	Control    lipgloss.Style
	Focused    lipgloss.Style
	Error      lipgloss.Style
	StatusBar  lipgloss.Style
}

// NewTheme builds the keypad theme; accent colors the operator keys.
func NewTheme(accent string) Theme {
	accentColor := lipgloss.Color(accent)
	return Theme{
		Display: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Bold(true).
			Align(lipgloss.Right).
			Padding(0, 1),

		Expression: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Align(lipgloss.Right),

		Digit: lipgloss.NewStyle().
			Foreground(ColorDigit).
			Background(ColorDigitBg).
			Align(lipgloss.Center),

		Operator: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#111827")).
			Background(accentColor).
			Bold(true).
			Align(lipgloss.Center),

		Control: lipgloss.NewStyle().
			Foreground(ColorControl).
			Align(lipgloss.Center),

		Focused: lipgloss.NewStyle().
			Reverse(true).
			Bold(true).
			Align(lipgloss.Center),

		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),

		StatusBar: lipgloss.NewStyle().
			Background(ColorStatusBg).
			Foreground(ColorStatusFg).
			Padding(0, 1),
	}
}
