package libdiff

import (
	"strconv"
	"strings"
	"time"

	"github.com/signadot/keyedarchive/ir"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// we use an index keyed object and
//
//  1. record the type of each node, for scalar types we use the summary
//     value <type>-<value> where <value> is the string representation
//  2. diff the sequence of summaries
//  3. For every matching summary in the result, if that type is not
//     scalar, we recurse
//  4. For every non-matching summary, we add an index keyed item with
//     the corresponding diff operation tagged
//
// Indexes count every kept, deleted, inserted or replaced element once,
// so the same keys serve the reversed diff.
func DiffArrayByIndex(from, to *ir.Node, df DiffFunc) *ir.Node {
	m := map[string]rune{}
	fromRunes := mapValues(m, from)
	toRunes := mapValues(m, to)
	diffCfg := diffpatch.New()
	diffs := diffCfg.DiffMainRunes(fromRunes, toRunes, false)
	res := &indexDiff{}

	fi, ti, ri := 0, 0, 0
	delIndex := -1
	for i := range diffs {
		diff := &diffs[i]
		switch diff.Type {
		case diffpatch.DiffDelete:
			for range []rune(diff.Text) {
				res.add(ri, MakeDiff(from.Values[fi], nil))
				delIndex = ri
				ri++
				fi++
			}
		case diffpatch.DiffEqual:
			delIndex = -1
			for range []rune(diff.Text) {
				if di := df(from.Values[fi], to.Values[ti]); di != nil {
					res.add(ri, di)
				}
				ri++
				fi++
				ti++
			}
		case diffpatch.DiffInsert:
			for range []rune(diff.Text) {
				if delIndex != -1 && delIndex == ri-1 {
					res.set(ri-1, MakeDiff(from.Values[fi-1], to.Values[ti]))
				} else {
					res.add(ri, MakeDiff(nil, to.Values[ti]))
					ri++
				}
				ti++
				delIndex = -1
			}
		}
	}
	if len(res.kvs) == 0 {
		return diffTags(from, to)
	}
	tag := ArrayDiffTag
	if from.Tag != to.Tag {
		tag += "." + MakeTagDiff(from.Tag, to.Tag)[1:]
	}
	return ir.FromKeyVals(res.kvs).WithTag(tag)
}

// indexDiff collects index keyed operations in increasing order.
type indexDiff struct {
	kvs []ir.KeyVal
}

func (d *indexDiff) add(i int, op *ir.Node) {
	d.kvs = append(d.kvs, ir.KeyVal{Key: strconv.Itoa(i), Val: op})
}

func (d *indexDiff) set(i int, op *ir.Node) {
	d.kvs[len(d.kvs)-1] = ir.KeyVal{Key: strconv.Itoa(i), Val: op}
}

func mapValues(m map[string]rune, node *ir.Node) []rune {
	rs := make([]rune, len(node.Values))
	for i, v := range node.Values {
		sum := summaryStr(v)
		r, ok := m[sum]
		if !ok {
			r = rune(len(m))
			m[sum] = r
		}
		rs[i] = r
	}
	return rs
}

func summaryStr(node *ir.Node) string {
	switch node.Type {
	case ir.ObjectType, ir.ArrayType, ir.SetType, ir.NullType:
		return node.Type.String()
	case ir.BoolType:
		return node.Type.String() + "-" + strconv.FormatBool(node.Bool)
	case ir.StringType:
		if strings.Contains(node.String, "\n") {
			return node.Type.String() + "/m"
		}
		return node.Type.String() + "-" + node.String
	case ir.NumberType:
		if node.Int64 != nil {
			return node.Type.String() + "-i-" + strconv.FormatInt(*node.Int64, 10)
		}
		if node.Float64 != nil {
			return node.Type.String() + "-f-" + strconv.FormatFloat(*node.Float64, 'f', -1, 64)
		}
		return node.Type.String()
	case ir.BytesType:
		return node.Type.String() + "-" + strconv.FormatUint(node.Hash(), 16)
	case ir.TimeType:
		return node.Type.String() + "-" + node.Time.UTC().Format(time.RFC3339Nano)
	default:
		return node.Type.String()
	}
}
