package plist

import (
	"fmt"
	"maps"
	"slices"
	"time"

	goplist "howett.net/plist"
)

// ParseText parses an XML, OpenStep or GNUstep property list.
//
// Dict keys come back sorted: the text decoder does not report
// document order.  Text formats have no set type.
func ParseText(data []byte) (*Value, error) {
	var raw any
	if _, err := goplist.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return fromNative(raw, 0)
}

func fromNative(raw any, depth int) (*Value, error) {
	if depth > maxBinaryDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrParse, maxBinaryDepth)
	}
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case goplist.UID:
		return UID(uint64(x)), nil
	case uint64:
		// values above MaxInt64 keep their low 64 bits, as in binary plists
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case int:
		return Int(int64(x)), nil
	case float64:
		return Real(x), nil
	case float32:
		return Real(float64(x)), nil
	case string:
		return String(x), nil
	case []byte:
		return Data(x), nil
	case time.Time:
		return Date(x.UTC()), nil
	case []any:
		vs := make([]*Value, len(x))
		for i, c := range x {
			v, err := fromNative(c, depth+1)
			if err != nil {
				return nil, err
			}
			vs[i] = v
		}
		return Array(vs...), nil
	case map[string]any:
		keys := slices.Sorted(maps.Keys(x))
		kvs := make([]KV, len(keys))
		for i, k := range keys {
			v, err := fromNative(x[k], depth+1)
			if err != nil {
				return nil, err
			}
			kvs[i] = KV{Key: k, Val: v}
		}
		return Dict(kvs...), nil
	}
	return nil, fmt.Errorf("%w: value of type %T", ErrUnsupported, raw)
}

// Parse parses a binary or text property list.
func Parse(data []byte) (*Value, error) {
	if IsBinary(data) {
		return ParseBinary(data)
	}
	return ParseText(data)
}

