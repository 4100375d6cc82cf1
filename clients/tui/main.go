package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dohr-michael/calcpad/clients/tui/organisms"
	"github.com/dohr-michael/calcpad/internal/calc"
)

// cellWidth is the width of a single keycap.
const cellWidth = 6

// Options configures the keypad model.
type Options struct {
	Accent   string
	ShowHelp bool
}

// MainModel is the root bubbletea model for the calcpad keypad.
type MainModel struct {
	backend Backend
	state   calc.State
	keys    keyMap
	help    help.Model

	showHelp bool

	// Presses run one at a time so the backend sees them in typing order.
	inflight bool
	queue    []calc.Key

	display organisms.DisplayPanel
	keypad  organisms.KeypadPanel
	info    organisms.InformationPanel
}

// NewMainModel creates the root model.
func NewMainModel(backend Backend, opts Options) MainModel {
	theme := NewTheme(opts.Accent)

	keypad := organisms.NewKeypadPanel(cellWidth, organisms.KeypadStyles{
		Digit:    theme.Digit,
		Operator: theme.Operator,
		Control:  theme.Control,
		Focused:  theme.Focused,
	})

	info := organisms.NewInformationPanel(theme.StatusBar, theme.Error)
	info.SetMode(backend.Mode())
	info.SetPad(backend.PadID())
	info.SetWidth(keypad.Width())

	display := organisms.NewDisplayPanel(keypad.Width(), theme.Display, theme.Expression)
	state := backend.State()
	display.SetState(state)

	return MainModel{
		backend:  backend,
		state:    state,
		keys:     defaultKeyMap(),
		help:     help.New(),
		showHelp: opts.ShowHelp,
		display:  display,
		keypad:   keypad,
		info:     info,
	}
}

// Init starts following the pad when the backend can change under us.
func (m MainModel) Init() tea.Cmd {
	return m.follow()
}

// State returns the last state reported by the backend.
func (m MainModel) State() calc.State {
	return m.state
}

// Update processes all incoming messages.
func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StateMsg:
		m.state = msg.State
		m.display.SetState(msg.State)
		m.info.AddPress()
		m.info.SetError(nil)
		return m.next()

	case PressErrorMsg:
		m.info.SetError(msg.Err)
		return m.next()

	case PadStateMsg:
		m.state = msg.State
		m.display.SetState(msg.State)
		return m, m.follow()

	case DetachedMsg:
		m.info.SetError(msg.Err)
		return m, nil
	}
	return m, nil
}

func (m MainModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.keypad.Move(-1, 0)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.keypad.Move(1, 0)
		return m, nil
	case key.Matches(msg, m.keys.Left):
		m.keypad.Move(0, -1)
		return m, nil
	case key.Matches(msg, m.keys.Right):
		m.keypad.Move(0, 1)
		return m, nil
	case key.Matches(msg, m.keys.Press):
		return m.submit(m.keypad.Focused())
	case key.Matches(msg, m.keys.Delete):
		return m.pressKey(calc.ControlKey(calc.ControlDelete))
	case key.Matches(msg, m.keys.Clear):
		return m.pressKey(calc.ControlKey(calc.ControlClear))
	}

	// Typed calculator symbols: digits, ".", operators and "=".
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		if k, err := calc.ParseKey(string(msg.Runes)); err == nil {
			return m.pressKey(k)
		}
	}
	return m, nil
}

func (m MainModel) pressKey(k calc.Key) (tea.Model, tea.Cmd) {
	m.keypad.Focus(k)
	return m.submit(k)
}

// submit sends k to the backend, or queues it behind the press in flight.
func (m MainModel) submit(k calc.Key) (tea.Model, tea.Cmd) {
	if m.inflight {
		m.queue = append(m.queue, k)
		return m, nil
	}
	m.inflight = true
	return m, m.press(k)
}

// next starts the oldest queued press once the previous one has answered.
func (m MainModel) next() (tea.Model, tea.Cmd) {
	m.inflight = false
	if len(m.queue) == 0 {
		return m, nil
	}
	k := m.queue[0]
	m.queue = m.queue[1:]
	return m.submit(k)
}

// follow waits for the next state pushed to the pad, or nil when the
// backend only changes through our own presses.
func (m MainModel) follow() tea.Cmd {
	f, ok := m.backend.(Follower)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		s, err := f.Follow()
		if err != nil {
			return DetachedMsg{Err: err}
		}
		return PadStateMsg{State: s}
	}
}

// press runs the key on the backend off the update loop.
func (m MainModel) press(k calc.Key) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		s, err := backend.Press(k)
		if err != nil {
			return PressErrorMsg{Key: k, Err: err}
		}
		return StateMsg{State: s}
	}
}

// View renders the display, keypad, status bar and help line.
func (m MainModel) View() string {
	var b strings.Builder
	b.WriteString(m.display.View())
	b.WriteString("\n")
	b.WriteString(m.keypad.View())
	b.WriteString("\n\n")
	b.WriteString(m.info.View())
	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		b.WriteString("\n")
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return b.String()
}
