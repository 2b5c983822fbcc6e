package object

// Bool wraps a native bool. The two instances are the singletons True and
// False; FromBool returns the appropriate one.
type Bool struct {
	value bool
}

var (
	// True is the singleton true value.
	True = &Bool{value: true}

	// False is the singleton false value.
	False = &Bool{value: false}
)

// FromBool returns the singleton for the given native bool.
func FromBool(value bool) *Bool {
	if value {
		return True
	}
	return False
}

// Value returns the native bool.
func (b *Bool) Value() bool { return b.value }

func (b *Bool) Type() Type { return BOOL }

func (b *Bool) Inspect() string {
	if b.value {
		return "true"
	}
	return "false"
}

func (b *Bool) Interface() interface{} { return b.value }

func (b *Bool) Equals(other Object) bool {
	o, ok := other.(*Bool)
	return ok && o.value == b.value
}

func (b *Bool) IsTruthy() bool { return b.value }
