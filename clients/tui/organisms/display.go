package organisms

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dohr-michael/calcpad/internal/calc"
)

// DisplayPanel renders the calculator screen: the pending expression on a
// muted line above the display text.
type DisplayPanel struct {
	state      calc.State
	width      int
	style      lipgloss.Style
	expression lipgloss.Style
}

// NewDisplayPanel creates a display of the given outer width.
func NewDisplayPanel(width int, style, expression lipgloss.Style) DisplayPanel {
	return DisplayPanel{width: width, style: style, expression: expression}
}

// SetState updates the rendered state.
func (p *DisplayPanel) SetState(s calc.State) { p.state = s }

// Text returns the display text.
func (p DisplayPanel) Text() string { return p.state.Display() }

// Expression returns the pending "first op" prefix, or "".
func (p DisplayPanel) Expression() string {
	if p.state.Operator == calc.OpNone {
		return ""
	}
	return strings.TrimSpace(p.state.First + " " + p.state.Operator.String())
}

// View renders the display box.
func (p DisplayPanel) View() string {
	inner := p.width - p.style.GetHorizontalFrameSize()
	if inner < 1 {
		inner = 1
	}
	text := clipLeft(p.Text(), inner)
	expr := clipLeft(p.Expression(), inner)

	body := lipgloss.JoinVertical(lipgloss.Right,
		p.expression.Width(inner).Render(expr),
		lipgloss.NewStyle().Width(inner).Align(lipgloss.Right).Render(text),
	)
	return p.style.Width(p.width - p.style.GetHorizontalBorderSize()).Render(body)
}

// clipLeft keeps the rightmost n runes of s, where the least significant digits live.
func clipLeft(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
