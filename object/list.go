package object

import (
	"fmt"
	"strings"
)

// List is a mutable sequence of objects. Lists are reference values: a list
// passed into a script function or stored elsewhere is shared, not copied,
// so index stores are visible to every holder of the reference.
type List struct {
	items []Object
}

// NewList returns a List holding the given items. The slice is owned by the
// List after the call.
func NewList(items []Object) *List {
	return &List{items: items}
}

// Len returns the number of items in the list.
func (l *List) Len() int { return len(l.items) }

// Get returns the item at the given index. The bool result reports whether
// the index was in range.
func (l *List) Get(index int) (Object, bool) {
	if index < 0 || index >= len(l.items) {
		return nil, false
	}
	return l.items[index], true
}

// Set stores an item at the given index. An index equal to the current
// length appends. The bool result reports whether the store happened.
func (l *List) Set(index int, value Object) bool {
	if index < 0 || index > len(l.items) {
		return false
	}
	if index == len(l.items) {
		l.items = append(l.items, value)
		return true
	}
	l.items[index] = value
	return true
}

// Items returns the underlying slice. Mutating it mutates the list.
func (l *List) Items() []Object { return l.items }

func (l *List) Type() Type { return LIST }

func (l *List) Inspect() string {
	var out strings.Builder
	out.WriteString("[")
	for i, item := range l.items {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(item.Inspect())
	}
	out.WriteString("]")
	return out.String()
}

func (l *List) Interface() interface{} {
	items := make([]interface{}, 0, len(l.items))
	for _, item := range l.items {
		items = append(items, item.Interface())
	}
	return items
}

// Equals is identity equality: two lists are equal only if they are the
// same list.
func (l *List) Equals(other Object) bool {
	o, ok := other.(*List)
	return ok && o == l
}

func (l *List) IsTruthy() bool { return true }

func (l *List) String() string {
	return fmt.Sprintf("list(%s)", l.Inspect())
}
