package object

import "strconv"

// Number is the only numeric type: an IEEE-754 double. Integer-looking
// values print without a fractional part.
type Number struct {
	value float64
}

// NewNumber returns a Number wrapping the given float64.
func NewNumber(value float64) *Number {
	return &Number{value: value}
}

// Value returns the native float64.
func (n *Number) Value() float64 { return n.value }

func (n *Number) Type() Type { return NUMBER }

func (n *Number) Inspect() string {
	return strconv.FormatFloat(n.value, 'g', -1, 64)
}

func (n *Number) Interface() interface{} { return n.value }

func (n *Number) Equals(other Object) bool {
	o, ok := other.(*Number)
	return ok && o.value == n.value
}

func (n *Number) IsTruthy() bool { return true }
