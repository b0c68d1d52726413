package ir

// ToAny converts node to plain Go values: nil, bool, int64, float64,
// string, []byte, time.Time, []any for arrays and sets, and
// map[string]any for objects.  Object key order is lost.
func ToAny(node *Node) any {
	if node == nil {
		return nil
	}
	switch node.Type {
	case BoolType:
		return node.Bool
	case NumberType:
		if node.Int64 != nil {
			return *node.Int64
		}
		if node.Float64 != nil {
			return *node.Float64
		}
		return nil
	case StringType:
		return node.String
	case BytesType:
		return node.Bytes
	case TimeType:
		return node.Time
	case ArrayType, SetType:
		res := make([]any, len(node.Values))
		for i, v := range node.Values {
			res[i] = ToAny(v)
		}
		return res
	case ObjectType:
		res := make(map[string]any, len(node.Fields))
		for i, f := range node.Fields {
			res[f.String] = ToAny(node.Values[i])
		}
		return res
	default:
		return nil
	}
}
