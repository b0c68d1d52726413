package query

import (
	"fmt"
	"strings"

	"github.com/signadot/keyedarchive/ir"

	"github.com/expr-lang/expr"
)

func exprOpts(doc *ir.Node) []expr.Option {
	return []expr.Option{
		expr.Function("getpath", func(params ...any) (any, error) {
			path := params[0].(string)
			res, err := doc.GetPath(path)
			if err != nil {
				return nil, err
			}
			return ir.ToAny(res), nil
		},
			new(func(string) any)),
		expr.Function("listpath", func(params ...any) (any, error) {
			path := params[0].(string)
			yRes, err := doc.ListPath(nil, path)
			if err != nil {
				return nil, err
			}
			res := make([]any, len(yRes))
			for i, item := range yRes {
				res[i] = ir.ToAny(item)
			}
			return res, nil
		},
			new(func(string) []any)),
		expr.Function("classname", func(params ...any) (any, error) {
			path := params[0].(string)
			res, err := doc.GetPath(path)
			if err != nil {
				return nil, err
			}
			if res == nil {
				return nil, fmt.Errorf("nothing at %s", path)
			}
			return strings.TrimPrefix(res.Tag, "!"), nil
		},
			new(func(string) string)),
	}
}
