package calc

import "unicode/utf8"

// DefaultDisplay is shown when every slot is empty.
const DefaultDisplay = "0"

// State is the full calculator state. The zero value is the initial state.
//
// Transitions are pure: each method returns the next State and leaves the
// receiver untouched, so callers own the dispatch loop.
type State struct {
	First    string   `json:"first" yaml:"first"`
	Second   string   `json:"second" yaml:"second"`
	Operator Operator `json:"operator" yaml:"operator"`
	Result   string   `json:"result" yaml:"result"`
}

// AppendDigit appends d to the operand currently receiving input.
func (s State) AppendDigit(d rune) State {
	if s.Operator == OpNone {
		s.First += string(d)
	} else {
		s.Second += string(d)
	}
	return s
}

// Clear returns the initial state.
func (s State) Clear() State {
	return State{}
}

// DeleteLastChar drops the last character of the active operand.
// Deleting from an empty operand is a no-op.
func (s State) DeleteLastChar() State {
	if s.Operator == OpNone {
		s.First = dropLast(s.First)
	} else {
		s.Second = dropLast(s.Second)
	}
	return s
}

// SelectOperator evaluates the pending computation when both operands are
// present, then records op as the pending operator.
func (s State) SelectOperator(op Operator) State {
	if s.First != "" && s.Second != "" {
		s = s.Evaluate()
	}
	s.Operator = op
	return s
}

// Evaluate computes First <op> Second when both operands are present and an
// operator is pending. The result text replaces the first operand so the next
// operator chains from it. Non-finite results propagate as text.
func (s State) Evaluate() State {
	if s.First == "" || s.Second == "" {
		return s
	}
	v, ok := s.Operator.apply(ParseNumber(s.First), ParseNumber(s.Second))
	if !ok {
		return s
	}
	text := FormatNumber(v)
	return State{First: text, Result: text}
}

// Display is the text shown on screen: the second operand, else the first,
// else the last result, else "0".
func (s State) Display() string {
	switch {
	case s.Second != "":
		return s.Second
	case s.First != "":
		return s.First
	case s.Result != "":
		return s.Result
	}
	return DefaultDisplay
}

// IsInitial reports whether s equals the initial state.
func (s State) IsInitial() bool {
	return s == State{}
}

func dropLast(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
