// Package object defines the value types that lualite scripts operate on.
//
// There are exactly five kinds of value: nil, booleans, numbers (IEEE-754
// doubles, the only numeric kind), strings, and lists. Lists are mutable
// references; passing a list never copies it.
package object

// Type of an object as a string.
type Type string

// Object type constants.
const (
	NIL    Type = "nil"
	BOOL   Type = "bool"
	NUMBER Type = "number"
	STRING Type = "string"
	LIST   Type = "list"
)

// Object is the interface implemented by all lualite values.
type Object interface {
	// Type of the object.
	Type() Type

	// Inspect returns a string representation of the given object.
	Inspect() string

	// Interface converts the given object to a native Go value.
	Interface() interface{}

	// Equals returns true if the given object is equal to this object.
	// Objects of different types are never equal.
	Equals(other Object) bool

	// IsTruthy returns true if the object is considered "truthy".
	// Only nil and false are not truthy.
	IsTruthy() bool
}
