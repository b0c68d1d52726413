package libdiff

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/signadot/keyedarchive/ir"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// DiffString diffs two strings by runes.  Operations are keyed by rune
// offset, counting kept, deleted and inserted text alike.
func DiffString(from, to *ir.Node) *ir.Node {
	diffCfg := diffpatch.New()
	doMultiLine := strings.Contains(from.String, "\n") && strings.Contains(to.String, "\n")
	diffs := diffCfg.DiffMain(from.String, to.String, doMultiLine)
	diffSize := 0
	res := &indexDiff{}
	ri := 0
	delIndex := -1
	for i := range diffs {
		diff := &diffs[i]
		n := utf8.RuneCountInString(diff.Text)
		switch diff.Type {
		case diffpatch.DiffInsert:
			to := ir.FromString(diff.Text)
			if delIndex != -1 {
				// insert after delete -> make replace
				from := res.kvs[len(res.kvs)-1].Val
				from.Tag = ""
				res.set(delIndex, MakeDiff(from, to))
				if len(diff.Text) > len(from.String) {
					diffSize += len(diff.Text) - len(from.String)
				}
			} else {
				res.add(ri, to.WithTag(InsertTag))
				diffSize += len(diff.Text)
			}
			ri += n
			delIndex = -1
		case diffpatch.DiffDelete:
			res.add(ri, ir.FromString(diff.Text).WithTag(DeleteTag))
			diffSize += len(diff.Text)
			delIndex = ri
			ri += n
		case diffpatch.DiffEqual:
			ri += n
			delIndex = -1
		}
	}
	if diffSize == 0 {
		return diffTags(from, to)
	}
	if diffSize > min(len(from.String), len(to.String))/2 {
		return MakeDiff(from, to)
	}
	tag := StringDiffTag + "(" + strconv.FormatBool(doMultiLine) + ")"
	if from.Tag != to.Tag {
		tag += "." + MakeTagDiff(from.Tag, to.Tag)[1:]
	}
	return ir.FromKeyVals(res.kvs).WithTag(tag)
}
