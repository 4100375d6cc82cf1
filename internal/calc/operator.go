// Package calc implements the keypad calculator: two operand slots, a pending
// operator and the last result, driven by pure state transitions.
package calc

import "fmt"

// Operator is the pending binary operator.
type Operator uint8

const (
	// OpNone means the first operand is still being entered.
	OpNone Operator = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
)

// Operators lists the selectable operators in keypad order.
var Operators = []Operator{OpAdd, OpSubtract, OpMultiply, OpDivide}

// String returns the keypad symbol of the operator ("" for OpNone).
func (o Operator) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	default:
		return ""
	}
}

// ParseOperator maps a keypad symbol to an Operator.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "+":
		return OpAdd, nil
	case "-":
		return OpSubtract, nil
	case "*":
		return OpMultiply, nil
	case "/":
		return OpDivide, nil
	case "":
		return OpNone, nil
	}
	return OpNone, fmt.Errorf("%w: operator %q", ErrUnknownKey, s)
}

// apply computes a <op> b with IEEE-754 semantics; ok is false for OpNone.
func (o Operator) apply(a, b float64) (float64, bool) {
	switch o {
	case OpAdd:
		return a + b, true
	case OpSubtract:
		return a - b, true
	case OpMultiply:
		return a * b, true
	case OpDivide:
		return a / b, true
	}
	return 0, false
}

// MarshalText encodes the operator as its keypad symbol.
func (o Operator) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes a keypad symbol.
func (o *Operator) UnmarshalText(b []byte) error {
	op, err := ParseOperator(string(b))
	if err != nil {
		return err
	}
	*o = op
	return nil
}
