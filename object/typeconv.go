package object

import "fmt"

// FromGoType converts a native Go value to a lualite Object. Numeric types
// all map to Number, since scripts have a single numeric kind. Slices map
// to List with elements converted recursively. Objects pass through
// unchanged.
func FromGoType(value any) (Object, error) {
	switch value := value.(type) {
	case nil:
		return Nil, nil
	case Object:
		return value, nil
	case bool:
		return FromBool(value), nil
	case float64:
		return NewNumber(value), nil
	case float32:
		return NewNumber(float64(value)), nil
	case int:
		return NewNumber(float64(value)), nil
	case int32:
		return NewNumber(float64(value)), nil
	case int64:
		return NewNumber(float64(value)), nil
	case uint:
		return NewNumber(float64(value)), nil
	case string:
		return NewString(value), nil
	case []Object:
		return NewList(value), nil
	case []any:
		items := make([]Object, 0, len(value))
		for _, item := range value {
			obj, err := FromGoType(item)
			if err != nil {
				return nil, err
			}
			items = append(items, obj)
		}
		return NewList(items), nil
	case []float64:
		items := make([]Object, 0, len(value))
		for _, item := range value {
			items = append(items, NewNumber(item))
		}
		return NewList(items), nil
	case []int:
		items := make([]Object, 0, len(value))
		for _, item := range value {
			items = append(items, NewNumber(float64(item)))
		}
		return NewList(items), nil
	case []string:
		items := make([]Object, 0, len(value))
		for _, item := range value {
			items = append(items, NewString(item))
		}
		return NewList(items), nil
	default:
		return nil, fmt.Errorf("type error: unsupported Go type %T", value)
	}
}

// AsObjects converts a slice of arbitrary Go values, failing on the first
// value with no lualite representation.
func AsObjects(values []any) ([]Object, error) {
	objects := make([]Object, 0, len(values))
	for i, value := range values {
		obj, err := FromGoType(value)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		objects = append(objects, obj)
	}
	return objects, nil
}
