package plist

import (
	"fmt"
	"time"
)

type Kind int

const (
	NullKind Kind = iota
	BoolKind
	IntegerKind
	RealKind
	StringKind
	DataKind
	DateKind
	ArrayKind
	DictKind
	SetKind
	UIDKind
)

func (k Kind) String() string {
	s, ok := map[Kind]string{
		NullKind:    "null",
		BoolKind:    "bool",
		IntegerKind: "integer",
		RealKind:    "real",
		StringKind:  "string",
		DataKind:    "data",
		DateKind:    "date",
		ArrayKind:   "array",
		DictKind:    "dict",
		SetKind:     "set",
		UIDKind:     "uid",
	}[k]
	if ok {
		return s
	}
	return fmt.Sprintf("<kind %d>", int(k))
}

// Value is a parsed property list value.
//
// Dicts keep Keys[i] paired with Values[i] in document order.  Sets
// carry Ordered, which is true for sets written with the ordered set
// marker.
type Value struct {
	Kind    Kind
	Keys    []string
	Values  []*Value
	Ordered bool

	Bool   bool
	Int    int64
	Real   float64
	String string
	Data   []byte
	Date   time.Time
	UID    uint64
}

func Null() *Value { return &Value{Kind: NullKind} }

func Bool(v bool) *Value { return &Value{Kind: BoolKind, Bool: v} }

func Int(v int64) *Value { return &Value{Kind: IntegerKind, Int: v} }

func Real(v float64) *Value { return &Value{Kind: RealKind, Real: v} }

func String(v string) *Value { return &Value{Kind: StringKind, String: v} }

func Data(v []byte) *Value { return &Value{Kind: DataKind, Data: v} }

func Date(v time.Time) *Value { return &Value{Kind: DateKind, Date: v} }

func UID(v uint64) *Value { return &Value{Kind: UIDKind, UID: v} }

func Array(vs ...*Value) *Value { return &Value{Kind: ArrayKind, Values: vs} }

func Set(ordered bool, vs ...*Value) *Value {
	return &Value{Kind: SetKind, Ordered: ordered, Values: vs}
}

// KV is a dict entry used to build dicts in order.
type KV struct {
	Key string
	Val *Value
}

func Dict(kvs ...KV) *Value {
	res := &Value{
		Kind:   DictKind,
		Keys:   make([]string, len(kvs)),
		Values: make([]*Value, len(kvs)),
	}
	for i := range kvs {
		res.Keys[i] = kvs[i].Key
		res.Values[i] = kvs[i].Val
	}
	return res
}

// Get returns the value under key in a dict, or nil.
func (v *Value) Get(key string) *Value {
	if v == nil || v.Kind != DictKind {
		return nil
	}
	for i, k := range v.Keys {
		if k == key {
			return v.Values[i]
		}
	}
	return nil
}

// Has reports whether a dict contains key.
func (v *Value) Has(key string) bool {
	return v.Get(key) != nil
}

// IsContainer reports whether v has child values.
func (v *Value) IsContainer() bool {
	switch v.Kind {
	case ArrayKind, DictKind, SetKind:
		return true
	}
	return false
}
