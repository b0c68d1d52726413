package libdiff

import (
	"github.com/signadot/keyedarchive/ir"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// 1 diff field names
// for every different field name add  node
// for every same field name, recurse on the value
func DiffObject(from, to *ir.Node, df DiffFunc) *ir.Node {
	fieldMap := map[string]rune{}
	runeMap := map[rune]string{}
	fromRunes := mapFieldsTo(fieldMap, runeMap, from)
	toRunes := mapFieldsTo(fieldMap, runeMap, to)
	diffCfg := diffpatch.New()
	diffs := diffCfg.DiffMainRunes(fromRunes, toRunes, false)
	resMap := map[string]*ir.Node{}
	fi, ti := 0, 0
	for i := range diffs {
		diff := &diffs[i]
		switch diff.Type {
		case diffpatch.DiffDelete:
			for _, r := range diff.Text {
				f := runeMap[r]
				if _, moved := resMap[f]; moved {
					diffMoved(resMap, f, from.Values[fi], ir.Get(to, f), df)
				} else {
					resMap[f] = MakeDiff(from.Values[fi], nil)
				}
				fi++
			}
		case diffpatch.DiffEqual:
			for _, r := range diff.Text {
				fRes := df(from.Values[fi], to.Values[ti])
				if fRes != nil {
					resMap[runeMap[r]] = fRes
				}
				fi++
				ti++
			}
		case diffpatch.DiffInsert:
			for _, r := range diff.Text {
				f := runeMap[r]
				if _, moved := resMap[f]; moved {
					diffMoved(resMap, f, ir.Get(from, f), to.Values[ti], df)
				} else {
					resMap[f] = MakeDiff(nil, to.Values[ti])
				}
				ti++
			}
		}
	}
	if len(resMap) == 0 {
		return diffTags(from, to)
	}
	res := ir.FromMap(resMap)
	if from.Tag != to.Tag {
		res = res.WithTag(MakeTagDiff(from.Tag, to.Tag))
	}
	return res
}

// diffMoved handles a field present on both sides at different
// positions; field order is not part of the diff.
func diffMoved(resMap map[string]*ir.Node, f string, from, to *ir.Node, df DiffFunc) {
	if d := df(from, to); d != nil {
		resMap[f] = d
		return
	}
	delete(resMap, f)
}

func mapFieldsTo(m map[string]rune, im map[rune]string, node *ir.Node) []rune {
	rs := make([]rune, len(node.Fields))
	for i := range node.Fields {
		f := node.Fields[i].String
		r, ok := m[f]
		if !ok {
			r = rune(len(m))
			m[f] = r
			im[r] = f
		}
		rs[i] = r
	}
	return rs
}
