package tui

import "github.com/dohr-michael/calcpad/internal/calc"

// StateMsg carries the state produced by a key press.
type StateMsg struct {
	State calc.State
}

// PressErrorMsg reports a failed key press; the state is left as it was.
type PressErrorMsg struct {
	Key calc.Key
	Err error
}

// PadStateMsg carries a pad state observed on the gateway, whoever pressed.
type PadStateMsg struct {
	State calc.State
}

// DetachedMsg reports that pad updates stopped arriving.
type DetachedMsg struct {
	Err error
}
