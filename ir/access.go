package ir

import (
	"math"
	"time"
)

// As reports node reinterpreted as T.  Supported types are bool,
// string, []byte, int64, int, float64, time.Time, *Node, []*Node and
// any.  Integers widen to float64; nothing narrows.  String, bool and
// bytes need an exact type match.
//
// As never panics: a nil node, a type mismatch or an unsupported T all
// give the zero value and false.
func As[T any](node *Node) (T, bool) {
	var zero T
	if node == nil {
		return zero, false
	}
	var v any
	switch any(zero).(type) {
	case bool:
		if node.Type != BoolType {
			return zero, false
		}
		v = node.Bool
	case string:
		if node.Type != StringType {
			return zero, false
		}
		v = node.String
	case []byte:
		if node.Type != BytesType {
			return zero, false
		}
		v = node.Bytes
	case int64:
		if node.Type != NumberType || node.Int64 == nil {
			return zero, false
		}
		v = *node.Int64
	case int:
		if node.Type != NumberType || node.Int64 == nil {
			return zero, false
		}
		i := *node.Int64
		if i < math.MinInt || i > math.MaxInt {
			return zero, false
		}
		v = int(i)
	case float64:
		if node.Type != NumberType {
			return zero, false
		}
		switch {
		case node.Float64 != nil:
			v = *node.Float64
		case node.Int64 != nil:
			v = float64(*node.Int64)
		default:
			return zero, false
		}
	case time.Time:
		if node.Type != TimeType {
			return zero, false
		}
		v = node.Time
	case *Node:
		v = node
	case []*Node:
		if node.Type != ArrayType {
			return zero, false
		}
		v = node.Values
	default:
		v = ToAny(node)
		if v == nil {
			// null only fits interface types
			return zero, node.Type == NullType && any(zero) == nil
		}
	}
	res, ok := v.(T)
	return res, ok
}

// GetAs looks up key in the object node and reports its value as T.
// It gives false if node is not an object, if key is absent, or if the
// value does not convert; see [As].
func GetAs[T any](node *Node, key string) (T, bool) {
	return As[T](Get(node, key))
}

// GetObject looks up key in node and reports it if it is an object.
// This is how callers step into nested archived objects.
func GetObject(node *Node, key string) (*Node, bool) {
	child := Get(node, key)
	if child == nil || child.Type != ObjectType {
		return nil, false
	}
	return child, true
}

// GetIndexAs looks up key in node, which must hold an array, and
// reports element index as T.
func GetIndexAs[T any](node *Node, key string, index int) (T, bool) {
	var zero T
	arr, ok := GetAs[[]*Node](node, key)
	if !ok || index < 0 || index >= len(arr) {
		return zero, false
	}
	return As[T](arr[index])
}
