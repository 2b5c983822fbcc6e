package compiler

import (
	"fmt"

	"github.com/deepnoodle-ai/lualite/token"
)

// ErrorKind categorizes compile errors.
type ErrorKind int

const (
	// UnknownVariable: a name was read that was never assigned in the
	// enclosing function and is not a parameter.
	UnknownVariable ErrorKind = iota

	// UnknownFunction: a call names a function that is not declared
	// anywhere in the program.
	UnknownFunction

	// InvalidAssignmentTarget: the left side of "=" is not a name or an
	// index expression.
	InvalidAssignmentTarget

	// WrongArgumentCount: a call passes a different number of arguments
	// than the callee declares.
	WrongArgumentCount

	// TooManyRegisters: the function needs more registers than the
	// instruction encoding can address.
	TooManyRegisters
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownVariable:
		return "unknown variable"
	case UnknownFunction:
		return "unknown function"
	case InvalidAssignmentTarget:
		return "invalid assignment target"
	case WrongArgumentCount:
		return "wrong argument count"
	case TooManyRegisters:
		return "too many registers"
	default:
		return "error"
	}
}

// Error is a compile error with a kind and the source position it refers to.
type Error struct {
	Kind     ErrorKind
	Message  string
	Position token.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("compile error: %s (%s)", e.Message, e.Position)
}

func newError(kind ErrorKind, pos token.Position, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
	}
}
