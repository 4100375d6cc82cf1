package organisms

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dohr-michael/calcpad/clients/tui/atoms"
	"github.com/dohr-michael/calcpad/internal/calc"
)

// gridColumns is the width of the keypad in unit cells.
const gridColumns = 4

// KeypadStyles are the per-kind keycap styles.
type KeypadStyles struct {
	Digit    lipgloss.Style
	Operator lipgloss.Style
	Control  lipgloss.Style
	Focused  lipgloss.Style
}

type cell struct {
	key  calc.Key
	span int
}

// KeypadPanel renders the button grid and tracks the focused button.
type KeypadPanel struct {
	rows      [][]cell
	row, col  int
	cellWidth int
	styles    KeypadStyles
}

// NewKeypadPanel lays out calc.Keypad on a four-column grid. Rows with fewer
// keys widen their leftmost keys.
func NewKeypadPanel(cellWidth int, styles KeypadStyles) KeypadPanel {
	rows := make([][]cell, len(calc.Keypad))
	for i, keys := range calc.Keypad {
		extra := gridColumns - len(keys)
		rows[i] = make([]cell, len(keys))
		for j, k := range keys {
			span := 1
			if j < extra {
				span++
			}
			rows[i][j] = cell{key: k, span: span}
		}
	}
	return KeypadPanel{rows: rows, cellWidth: cellWidth, styles: styles}
}

// Focused returns the key under the cursor.
func (p KeypadPanel) Focused() calc.Key {
	return p.rows[p.row][p.col].key
}

// Move shifts the cursor by dr rows and dc columns, wrapping at the edges.
func (p *KeypadPanel) Move(dr, dc int) {
	if dr != 0 {
		p.row = wrap(p.row+dr, len(p.rows))
		if p.col >= len(p.rows[p.row]) {
			p.col = len(p.rows[p.row]) - 1
		}
	}
	if dc != 0 {
		p.col = wrap(p.col+dc, len(p.rows[p.row]))
	}
}

// Focus moves the cursor onto k if it is on the keypad.
func (p *KeypadPanel) Focus(k calc.Key) bool {
	for i, row := range p.rows {
		for j, c := range row {
			if c.key == k {
				p.row, p.col = i, j
				return true
			}
		}
	}
	return false
}

// Width returns the rendered width of a full row.
func (p KeypadPanel) Width() int {
	return gridColumns*p.cellWidth + gridColumns - 1
}

// View renders the keypad grid.
func (p KeypadPanel) View() string {
	lines := make([]string, 0, len(p.rows))
	for i, row := range p.rows {
		caps := make([]string, 0, len(row))
		for j, c := range row {
			width := c.span*p.cellWidth + c.span - 1
			caps = append(caps, atoms.Keycap(c.key.String(), width, p.styleFor(c.key, i == p.row && j == p.col)))
		}
		lines = append(lines, strings.Join(caps, " "))
	}
	return strings.Join(lines, "\n")
}

func (p KeypadPanel) styleFor(k calc.Key, focused bool) lipgloss.Style {
	if focused {
		return p.styles.Focused
	}
	switch k.Kind {
	case calc.KindDigit:
		return p.styles.Digit
	case calc.KindOperator:
		return p.styles.Operator
	}
	return p.styles.Control
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
