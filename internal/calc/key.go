package calc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKey is returned when a symbol does not map to any keypad key.
var ErrUnknownKey = errors.New("unknown key")

// Kind classifies a keypad key.
type Kind uint8

const (
	KindDigit Kind = iota + 1
	KindOperator
	KindControl
)

// Control is a non-arithmetic keypad action.
type Control uint8

const (
	ControlClear Control = iota + 1
	ControlDelete
	ControlEquals
)

// Control key symbols as printed on the keypad.
const (
	SymbolClear  = "CLEAR"
	SymbolDelete = "DEL"
	SymbolEquals = "="
)

func (c Control) String() string {
	switch c {
	case ControlClear:
		return SymbolClear
	case ControlDelete:
		return SymbolDelete
	case ControlEquals:
		return SymbolEquals
	}
	return ""
}

// Key is a classified keypad press. Exactly one of Digit, Operator or
// Control is meaningful, selected by Kind.
type Key struct {
	Kind     Kind
	Digit    rune
	Operator Operator
	Control  Control
}

// DigitKey returns a digit-class key.
func DigitKey(d rune) Key { return Key{Kind: KindDigit, Digit: d} }

// OperatorKey returns an operator key.
func OperatorKey(op Operator) Key { return Key{Kind: KindOperator, Operator: op} }

// ControlKey returns a control key.
func ControlKey(c Control) Key { return Key{Kind: KindControl, Control: c} }

// String returns the keypad symbol of k.
func (k Key) String() string {
	switch k.Kind {
	case KindDigit:
		return string(k.Digit)
	case KindOperator:
		return k.Operator.String()
	case KindControl:
		return k.Control.String()
	}
	return ""
}

// ParseKey classifies a keypad symbol. It is the only place where symbol
// text is inspected; everything past it works on Key.
//
// Accepted symbols: 0-9 and "." (digit class), + - * /, CLEAR (C, AC),
// DEL (BACKSPACE), = (ENTER). Matching is case-insensitive.
func ParseKey(symbol string) (Key, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if len(s) == 1 && (isDigit(s[0]) || s[0] == '.') {
		return DigitKey(rune(s[0])), nil
	}
	for _, op := range Operators {
		if s == op.String() {
			return OperatorKey(op), nil
		}
	}
	switch s {
	case SymbolClear, "C", "AC":
		return ControlKey(ControlClear), nil
	case SymbolDelete, "BACKSPACE":
		return ControlKey(ControlDelete), nil
	case SymbolEquals, "ENTER":
		return ControlKey(ControlEquals), nil
	}
	return Key{}, fmt.Errorf("%w: %q", ErrUnknownKey, symbol)
}

// ParseKeys classifies every symbol in order. Symbols may be given as
// separate arguments or as whitespace/comma separated strings; a run of
// single-character keys such as "12+3=" is split into its characters.
func ParseKeys(symbols ...string) ([]Key, error) {
	var keys []Key
	for _, arg := range symbols {
		for _, sym := range strings.FieldsFunc(arg, isSeparator) {
			k, err := ParseKey(sym)
			if err == nil {
				keys = append(keys, k)
				continue
			}
			run, runErr := parseRun(sym)
			if runErr != nil {
				return nil, err
			}
			keys = append(keys, run...)
		}
	}
	return keys, nil
}

func parseRun(sym string) ([]Key, error) {
	keys := make([]Key, 0, len(sym))
	for _, r := range sym {
		k, err := ParseKey(string(r))
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func isSeparator(r rune) bool {
	return r == ',' || r == ' ' || r == '\t' || r == '\n'
}

// Keypad is the on-screen button layout, row by row.
var Keypad = [][]Key{
	{ControlKey(ControlClear), ControlKey(ControlDelete)},
	{DigitKey('7'), DigitKey('8'), DigitKey('9'), OperatorKey(OpDivide)},
	{DigitKey('4'), DigitKey('5'), DigitKey('6'), OperatorKey(OpMultiply)},
	{DigitKey('1'), DigitKey('2'), DigitKey('3'), OperatorKey(OpSubtract)},
	{DigitKey('0'), ControlKey(ControlEquals), OperatorKey(OpAdd)},
}

// Apply dispatches k onto the matching transition.
func (s State) Apply(k Key) State {
	switch k.Kind {
	case KindDigit:
		return s.AppendDigit(k.Digit)
	case KindOperator:
		return s.SelectOperator(k.Operator)
	case KindControl:
		switch k.Control {
		case ControlClear:
			return s.Clear()
		case ControlDelete:
			return s.DeleteLastChar()
		case ControlEquals:
			return s.Evaluate()
		}
	}
	return s
}

// Press applies keys in order and returns the final state.
func (s State) Press(keys ...Key) State {
	for _, k := range keys {
		s = s.Apply(k)
	}
	return s
}
