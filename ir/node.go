package ir

import (
	"bytes"
	"maps"
	"slices"
	"time"
)

type Node struct {
	Type   Type
	Fields []*Node
	Values []*Node

	Tag     string
	Ordered bool

	String  string
	Bool    bool
	Float64 *float64
	Int64   *int64
	Bytes   []byte
	Time    time.Time
}

func (y *Node) WithTag(tag string) *Node {
	y.Tag = tag
	return y
}

// Clone returns a deep copy of y.  Subtrees shared within y are copied
// once and remain shared in the result.
func (y *Node) Clone() *Node {
	return y.cloneWith(map[*Node]*Node{})
}

func (y *Node) cloneWith(seen map[*Node]*Node) *Node {
	if y == nil {
		return nil
	}
	if res, ok := seen[y]; ok {
		return res
	}
	dst := &Node{}
	seen[y] = dst
	dst.Type = y.Type
	dst.Tag = y.Tag
	dst.Ordered = y.Ordered
	if y.Values != nil {
		dst.Values = make([]*Node, len(y.Values))
		for i, yv := range y.Values {
			dst.Values[i] = yv.cloneWith(seen)
		}
	}
	if y.Fields != nil {
		dst.Fields = make([]*Node, len(y.Fields))
		for i, yf := range y.Fields {
			dst.Fields[i] = yf.cloneWith(seen)
		}
	}
	dst.String = y.String
	dst.Bool = y.Bool
	if y.Float64 != nil {
		f := *y.Float64
		dst.Float64 = &f
	}
	if y.Int64 != nil {
		i := *y.Int64
		dst.Int64 = &i
	}
	if y.Bytes != nil {
		dst.Bytes = bytes.Clone(y.Bytes)
	}
	dst.Time = y.Time
	return dst
}

func FromString(v string) *Node {
	return &Node{Type: StringType, String: v}
}

func FromInt(v int64) *Node {
	return &Node{
		Type:  NumberType,
		Int64: &v,
	}
}

func FromFloat(f float64) *Node {
	return &Node{
		Type:    NumberType,
		Float64: &f,
	}
}

func FromBool(v bool) *Node {
	return &Node{
		Type: BoolType,
		Bool: v,
	}
}

func FromBytes(v []byte) *Node {
	if v == nil {
		v = []byte{}
	}
	return &Node{
		Type:  BytesType,
		Bytes: v,
	}
}

func FromTime(t time.Time) *Node {
	return &Node{
		Type: TimeType,
		Time: t,
	}
}

func Null() *Node {
	return &Node{Type: NullType}
}

func ToMap(node *Node) map[string]*Node {
	if node.Type != ObjectType {
		return nil
	}
	res := make(map[string]*Node, len(node.Fields))
	for i := range node.Fields {
		res[node.Fields[i].String] = node.Values[i]
	}
	return res
}

// FromMap builds an object with keys in sorted order.
func FromMap(yMap map[string]*Node) *Node {
	keys := slices.Sorted(maps.Keys(yMap))
	kvs := make([]KeyVal, len(keys))
	for i, key := range keys {
		kvs[i] = KeyVal{Key: key, Val: yMap[key]}
	}
	return FromKeyVals(kvs)
}

type KeyVal struct {
	Key string
	Val *Node
}

func FromKeyVals(kvs []KeyVal) *Node {
	res := &Node{Type: ObjectType}
	res.Fields = make([]*Node, len(kvs))
	res.Values = make([]*Node, len(kvs))
	for i := range kvs {
		res.Fields[i] = FromString(kvs[i].Key)
		res.Values[i] = kvs[i].Val
	}
	return res
}

func FromSlice(ySlice []*Node) *Node {
	res := &Node{
		Type: ArrayType,
	}
	res.Values = make([]*Node, len(ySlice))
	copy(res.Values, ySlice)
	return res
}

// FromSet builds a set.  Unordered sets are sorted by [Compare] and
// duplicates are dropped; ordered sets keep ySlice as given.
func FromSet(ySlice []*Node, ordered bool) *Node {
	res := &Node{
		Type:    SetType,
		Ordered: ordered,
	}
	res.Values = make([]*Node, len(ySlice))
	copy(res.Values, ySlice)
	if ordered {
		return res
	}
	slices.SortStableFunc(res.Values, Compare)
	res.Values = slices.CompactFunc(res.Values, func(a, b *Node) bool {
		return Compare(a, b) == 0
	})
	return res
}

func Get(y *Node, field string) *Node {
	if y == nil || y.Type != ObjectType {
		return nil
	}
	n := len(y.Fields)
	for i := range n {
		if y.Fields[i].String == field {
			return y.Values[i]
		}
	}
	return nil
}

// Set replaces the value at field, appending the field if absent.
func (y *Node) Set(field string, v *Node) {
	for i := range y.Fields {
		if y.Fields[i].String == field {
			y.Values[i] = v
			return
		}
	}
	y.Fields = append(y.Fields, FromString(field))
	y.Values = append(y.Values, v)
}

func (y *Node) Visit(f func(y *Node, isPost bool) (bool, error)) error {
	dive, err := f(y, false)
	if err != nil {
		return err
	}
	if dive {
		for _, yy := range y.Values {
			if err := yy.Visit(f); err != nil {
				return err
			}
		}
	}
	if _, err := f(y, true); err != nil {
		return err
	}
	return nil
}
