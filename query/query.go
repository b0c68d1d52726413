package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/signadot/keyedarchive/debug"
	"github.com/signadot/keyedarchive/ir"

	"github.com/expr-lang/expr"
)

var ErrQuery = errors.New("query error")

// Eval evaluates an expr-lang expression against a decoded tree.  The
// expression sees the tree as "root" along with the entries of vars,
// and may call getpath, listpath and classname with "$"-rooted paths.
func Eval(src string, doc *ir.Node, vars map[string]any) (*ir.Node, error) {
	env := make(map[string]any, len(vars)+1)
	maps.Copy(env, vars)
	env["root"] = ir.ToAny(doc)
	if debug.Query() {
		debug.Logf("query %q with %d vars\n", src, len(vars))
	}
	prg, err := expr.Compile(src, append(exprOpts(doc), expr.Env(env))...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	res, err := expr.Run(prg, env)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return FromAny(res)
}

// FromAny converts an expression result to a node.
func FromAny(v any) (*ir.Node, error) {
	switch x := v.(type) {
	case nil:
		return ir.Null(), nil
	case *ir.Node:
		return x, nil
	case bool:
		return ir.FromBool(x), nil
	case int:
		return ir.FromInt(int64(x)), nil
	case int8:
		return ir.FromInt(int64(x)), nil
	case int16:
		return ir.FromInt(int64(x)), nil
	case int32:
		return ir.FromInt(int64(x)), nil
	case int64:
		return ir.FromInt(x), nil
	case uint:
		return ir.FromInt(int64(x)), nil
	case uint8:
		return ir.FromInt(int64(x)), nil
	case uint16:
		return ir.FromInt(int64(x)), nil
	case uint32:
		return ir.FromInt(int64(x)), nil
	case uint64:
		return ir.FromInt(int64(x)), nil
	case float32:
		return ir.FromFloat(float64(x)), nil
	case float64:
		return ir.FromFloat(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return ir.FromInt(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrQuery, err)
		}
		return ir.FromFloat(f), nil
	case string:
		return ir.FromString(x), nil
	case []byte:
		return ir.FromBytes(x), nil
	case time.Time:
		return ir.FromTime(x), nil
	case []any:
		vals := make([]*ir.Node, len(x))
		for i := range x {
			n, err := FromAny(x[i])
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			vals[i] = n
		}
		return ir.FromSlice(vals), nil
	case map[string]any:
		keys := slices.Sorted(maps.Keys(x))
		kvs := make([]ir.KeyVal, len(keys))
		for i, k := range keys {
			n, err := FromAny(x[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			kvs[i] = ir.KeyVal{Key: k, Val: n}
		}
		return ir.FromKeyVals(kvs), nil
	default:
		return nil, fmt.Errorf("%w: unsupported result type %T", ErrQuery, v)
	}
}
