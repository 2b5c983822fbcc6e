package vm

import "fmt"

// ErrorKind categorizes runtime errors.
type ErrorKind int

const (
	// TypeMismatch: an operation received operands of the wrong type, e.g.
	// arithmetic on a bool or ordering a number against a string.
	TypeMismatch ErrorKind = iota

	// IndexOutOfBounds: an index access outside a list's range.
	IndexOutOfBounds

	// StackOverflow: the call depth limit was exceeded.
	StackOverflow

	// ArityMismatch: a host-initiated call passed the wrong number of
	// arguments. Script-level calls are arity-checked at compile time.
	ArityMismatch

	// FunctionNotFound: the host called a name the program does not define.
	FunctionNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case TypeMismatch:
		return "type mismatch"
	case IndexOutOfBounds:
		return "index out of bounds"
	case StackOverflow:
		return "stack overflow"
	case ArityMismatch:
		return "arity mismatch"
	case FunctionNotFound:
		return "function not found"
	default:
		return "error"
	}
}

// Error is a runtime error with a kind usable for programmatic handling.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
