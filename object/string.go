package object

import "strconv"

// String wraps a native string.
type String struct {
	value string
}

// NewString returns a String wrapping the given native string.
func NewString(value string) *String {
	return &String{value: value}
}

// Value returns the native string.
func (s *String) Value() string { return s.value }

func (s *String) Type() Type { return STRING }

func (s *String) Inspect() string { return strconv.Quote(s.value) }

func (s *String) Interface() interface{} { return s.value }

func (s *String) Equals(other Object) bool {
	o, ok := other.(*String)
	return ok && o.value == s.value
}

func (s *String) IsTruthy() bool { return true }
