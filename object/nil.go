package object

// NilType is the nil value. There is only one instance: Nil.
type NilType struct{}

// Nil is the singleton nil value.
var Nil = &NilType{}

func (n *NilType) Type() Type { return NIL }

func (n *NilType) Inspect() string { return "nil" }

func (n *NilType) Interface() interface{} { return nil }

func (n *NilType) Equals(other Object) bool {
	_, ok := other.(*NilType)
	return ok
}

func (n *NilType) IsTruthy() bool { return false }
