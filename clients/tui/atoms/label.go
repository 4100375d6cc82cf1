package atoms

import "github.com/charmbracelet/lipgloss"

// Keycap renders a keypad button label centered in width cells.
func Keycap(label string, width int, style lipgloss.Style) string {
	return style.Width(width).Render(label)
}
