package keyedarchive

import (
	"bytes"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/signadot/keyedarchive/debug"
	"github.com/signadot/keyedarchive/ir"
	"github.com/signadot/keyedarchive/plist"
)

// normalizer rewrites resolved property list values into ir nodes.  A
// value reachable along several paths is normalized once and the
// resulting node is shared.
type normalizer struct {
	trail
	memo    map[*plist.Value]*ir.Node
	active  map[*plist.Value]bool
	unknown map[string]bool
	log     *slog.Logger
}

func newNormalizer(ds *decodeState) *normalizer {
	return &normalizer{
		trail:   trail{maxDepth: ds.maxDepth},
		memo:    map[*plist.Value]*ir.Node{},
		active:  map[*plist.Value]bool{},
		unknown: map[string]bool{},
		log:     ds.log,
	}
}

// Normalize converts a resolved value into an ir tree.  Foundation
// containers become native objects, arrays and sets, and the remaining
// archived objects become objects tagged with "!" and their class
// name, with "$class" removed.
func Normalize(v *plist.Value, opts ...DecodeOption) (*ir.Node, error) {
	return newNormalizer(newDecodeState(opts)).normalize(v)
}

func (n *normalizer) normalize(v *plist.Value) (*ir.Node, error) {
	if v == nil {
		return nil, n.fail(ErrMalformedArchive, -1, "missing value")
	}
	if res, ok := n.memo[v]; ok {
		return res, nil
	}
	if n.active[v] {
		return nil, n.fail(ErrCyclicReference, -1, "value contains itself")
	}
	if err := n.enter(); err != nil {
		return nil, err
	}
	n.active[v] = true
	res, err := n.convert(v)
	delete(n.active, v)
	n.leave()
	if err != nil {
		return nil, err
	}
	if debug.Normalize() {
		debug.Logf("normalize %s: %s -> %s\n", n.String(), v.Kind, res.Type)
	}
	n.memo[v] = res
	return res, nil
}

func (n *normalizer) convert(v *plist.Value) (*ir.Node, error) {
	switch v.Kind {
	case plist.NullKind:
		return ir.Null(), nil
	case plist.BoolKind:
		return ir.FromBool(v.Bool), nil
	case plist.IntegerKind:
		return ir.FromInt(v.Int), nil
	case plist.RealKind:
		return ir.FromFloat(v.Real), nil
	case plist.StringKind:
		return ir.FromString(v.String), nil
	case plist.DataKind:
		return ir.FromBytes(bytes.Clone(v.Data)), nil
	case plist.DateKind:
		return ir.FromTime(v.Date), nil
	case plist.UIDKind:
		return nil, n.fail(ErrMalformedArchive, refIndex(v.UID),
			fmt.Sprintf("unresolved reference %d", v.UID))
	case plist.ArrayKind:
		vals, err := n.elements(v.Values)
		if err != nil {
			return nil, err
		}
		return ir.FromSlice(vals), nil
	case plist.SetKind:
		vals, err := n.elements(v.Values)
		if err != nil {
			return nil, err
		}
		return ir.FromSet(vals, v.Ordered), nil
	case plist.DictKind:
		return n.object(v)
	default:
		return nil, n.fail(ErrMalformedArchive, -1, fmt.Sprintf("unknown value kind %s", v.Kind))
	}
}

func (n *normalizer) elements(vs []*plist.Value) ([]*ir.Node, error) {
	res := make([]*ir.Node, len(vs))
	for i, c := range vs {
		n.pushIndex(i)
		nc, err := n.normalize(c)
		n.pop()
		if err != nil {
			return nil, err
		}
		res[i] = nc
	}
	return res, nil
}

func (n *normalizer) object(v *plist.Value) (*ir.Node, error) {
	class, name := ClassOf(v)
	switch class {
	case DictionaryClass:
		return n.dictionary(v, name)
	case ArrayClass:
		objs, err := n.payload(v, name, "NS.objects")
		if err != nil {
			return nil, err
		}
		return ir.FromSlice(objs), nil
	case SetClass, OrderedSetClass:
		objs, err := n.payload(v, name, "NS.objects")
		if err != nil {
			return nil, err
		}
		return ir.FromSet(objs, class == OrderedSetClass), nil
	case StringClass:
		if s := v.Get("NS.string"); s != nil && s.Kind == plist.StringKind {
			return ir.FromString(s.String), nil
		}
		if b := v.Get("NS.bytes"); b != nil && b.Kind == plist.DataKind && utf8.Valid(b.Data) {
			return ir.FromString(string(b.Data)), nil
		}
	case DataClass:
		for _, key := range []string{"NS.data", "NS.bytes"} {
			if d := v.Get(key); d != nil && d.Kind == plist.DataKind {
				return ir.FromBytes(bytes.Clone(d.Data)), nil
			}
		}
	case DateClass:
		if t := v.Get("NS.time"); t != nil {
			switch t.Kind {
			case plist.RealKind:
				return n.date(t.Real)
			case plist.IntegerKind:
				return n.date(float64(t.Int))
			}
		}
	case NullClass:
		return ir.Null(), nil
	}
	if class != PlainClass {
		n.log.Debug("class payload not recognized, decoding as plain object",
			"class", name, "path", n.String())
	}
	return n.plain(v, name)
}

func (n *normalizer) date(secs float64) (*ir.Node, error) {
	n.pushField("NS.time")
	defer n.pop()
	t, err := plist.FromAppleTime(secs)
	if err != nil {
		return nil, n.fail(ErrMalformedArchive, -1, err.Error())
	}
	return ir.FromTime(t), nil
}

// payload normalizes the array under key in a container object.
func (n *normalizer) payload(v *plist.Value, class, key string) ([]*ir.Node, error) {
	arr := v.Get(key)
	if arr == nil {
		return nil, n.fail(ErrMalformedMutableContainer, -1, fmt.Sprintf("%s without %s", class, key))
	}
	if arr.Kind != plist.ArrayKind {
		return nil, n.fail(ErrMalformedMutableContainer, -1,
			fmt.Sprintf("%s has %s %s, not an array", class, key, arr.Kind))
	}
	n.pushField(key)
	defer n.pop()
	return n.elements(arr.Values)
}

func (n *normalizer) dictionary(v *plist.Value, class string) (*ir.Node, error) {
	keys, err := n.payload(v, class, "NS.keys")
	if err != nil {
		return nil, err
	}
	vals, err := n.payload(v, class, "NS.objects")
	if err != nil {
		return nil, err
	}
	if len(keys) != len(vals) {
		return nil, n.fail(ErrMalformedMutableContainer, -1,
			fmt.Sprintf("%s has %d keys and %d objects", class, len(keys), len(vals)))
	}
	kvs := make([]ir.KeyVal, 0, len(keys))
	at := make(map[string]int, len(keys))
	for i, k := range keys {
		if k.Type != ir.StringType {
			return nil, n.fail(ErrMalformedMutableContainer, -1,
				fmt.Sprintf("%s key %d is %s, not a string", class, i, k.Type))
		}
		if j, ok := at[k.String]; ok {
			kvs[j].Val = vals[i]
			continue
		}
		at[k.String] = len(kvs)
		kvs = append(kvs, ir.KeyVal{Key: k.String, Val: vals[i]})
	}
	return ir.FromKeyVals(kvs), nil
}

func (n *normalizer) plain(v *plist.Value, class string) (*ir.Node, error) {
	if class != "" && !n.unknown[class] {
		n.unknown[class] = true
		n.log.Debug("decoding archived class as object", "class", class)
		if debug.Classes() {
			debug.Logf("class %s at %s\n", class, n.String())
		}
	}
	kvs := make([]ir.KeyVal, 0, len(v.Keys))
	for i, key := range v.Keys {
		if key == "$class" {
			continue
		}
		n.pushField(key)
		val, err := n.normalize(v.Values[i])
		n.pop()
		if err != nil {
			return nil, err
		}
		kvs = append(kvs, ir.KeyVal{Key: key, Val: val})
	}
	res := ir.FromKeyVals(kvs)
	if class != "" {
		res.Tag = "!" + class
	}
	return res, nil
}
