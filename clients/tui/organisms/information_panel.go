package organisms

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// InformationPanel displays the status bar with mode, pad, press count and last error.
type InformationPanel struct {
	mode    Mode
	padID   string
	presses int
	err     error
	width   int
	style   lipgloss.Style
	errSt   lipgloss.Style
}

// NewInformationPanel creates a new status bar panel.
func NewInformationPanel(style, errStyle lipgloss.Style) InformationPanel {
	return InformationPanel{style: style, errSt: errStyle}
}

// SetMode updates the displayed mode.
func (p *InformationPanel) SetMode(mode Mode) { p.mode = mode }

// SetPad updates the pad ID shown in remote mode.
func (p *InformationPanel) SetPad(id string) { p.padID = id }

// AddPress counts one key press.
func (p *InformationPanel) AddPress() { p.presses++ }

// SetError records the last error (nil clears it).
func (p *InformationPanel) SetError(err error) { p.err = err }

// SetWidth updates the rendering width.
func (p *InformationPanel) SetWidth(w int) { p.width = w }

// Presses returns the number of presses seen.
func (p *InformationPanel) Presses() int { return p.presses }

// Err returns the last error.
func (p *InformationPanel) Err() error { return p.err }

// View renders the status bar.
func (p InformationPanel) View() string {
	bar := fmt.Sprintf(" %s", p.mode)
	if p.padID != "" {
		bar += " | " + p.padID
	}
	bar += fmt.Sprintf(" | %d keys", p.presses)

	line := p.style.Width(p.width).Render(bar)
	if p.err != nil {
		line += "\n" + p.errSt.Render(p.err.Error())
	}
	return line
}
