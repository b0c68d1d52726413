package libdiff

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/signadot/keyedarchive/ir"
)

var (
	ErrPatch   = errors.New("cannot patch")
	ErrBadDiff = errors.New("invalid diff")
)

// PatchFunc applies diff to doc; path locates doc for error messages.
type PatchFunc func(doc, diff *ir.Node, path string) (*ir.Node, error)

// Patch applies a diff made by [Diff] to doc.  doc is not modified;
// unchanged subtrees of doc are shared with the result.
func Patch(doc, diff *ir.Node) (*ir.Node, error) {
	return patch(doc, diff, "$")
}

func patch(doc, diff *ir.Node, path string) (*ir.Node, error) {
	if diff == nil {
		return doc, nil
	}
	head, tagDiff := cutTagDiff(diff.Tag)
	op, args := splitTag(head)
	switch op {
	case InsertTag:
		return nil, fmt.Errorf("%w: %s at %s replaces an existing value", ErrBadDiff, InsertTag, path)
	case DeleteTag:
		return nil, fmt.Errorf("%w: %s at %s outside a container", ErrBadDiff, DeleteTag, path)
	case ReplaceTag:
		from, to := ir.Get(diff, "from"), ir.Get(diff, "to")
		if diff.Type != ir.ObjectType || from == nil || to == nil {
			return nil, fmt.Errorf("%w: %s at %s needs from and to", ErrBadDiff, ReplaceTag, path)
		}
		if Diff(doc, from) != nil {
			return nil, fmt.Errorf("%w: unexpected value at %s", ErrPatch, path)
		}
		return to.Clone(), nil
	case ArrayDiffTag:
		res, err := PatchArrayByIndex(doc, diff, path, patch)
		if err != nil {
			return nil, err
		}
		return retag(res, tagDiff, path)
	case StringDiffTag:
		res, err := PatchStringRunes(doc, diff, path)
		if err != nil {
			return nil, err
		}
		return retag(res, tagDiff, path)
	case TagInsertTag, TagDeleteTag, TagReplaceTag:
		res := doc
		if diff.Type != ir.NullType {
			var err error
			res, err = PatchObject(doc, diff, path, patch)
			if err != nil {
				return nil, err
			}
		}
		return retag(res, head[1:], path)
	case "":
		return PatchObject(doc, diff, path, patch)
	default:
		return nil, fmt.Errorf("%w: unknown operation %q at %s", ErrBadDiff, op, path)
	}
}

// cutTagDiff splits "!arraydiff.retag(A,B)" into the operation and the
// tag change.
func cutTagDiff(tag string) (string, string) {
	for _, head := range []string{ArrayDiffTag, StringDiffTag + "(true)", StringDiffTag + "(false)"} {
		if rest, ok := strings.CutPrefix(tag, head); ok {
			return head, strings.TrimPrefix(rest, ".")
		}
	}
	return tag, ""
}

func retag(node *ir.Node, tagDiff, path string) (*ir.Node, error) {
	if tagDiff == "" {
		return node, nil
	}
	op, args := splitTag("!" + tagDiff)
	want, tag := "", ""
	switch {
	case op == TagInsertTag && len(args) == 1:
		tag = "!" + args[0]
	case op == TagDeleteTag && len(args) == 1:
		want = "!" + args[0]
	case op == TagReplaceTag && len(args) == 2:
		want, tag = "!"+args[0], "!"+args[1]
	default:
		return nil, fmt.Errorf("%w: bad tag change %q at %s", ErrBadDiff, tagDiff, path)
	}
	if node.Tag != want {
		return nil, fmt.Errorf("%w: tag %q at %s, expected %q", ErrPatch, node.Tag, path, want)
	}
	cp := *node
	cp.Tag = tag
	return &cp, nil
}

func PatchObject(doc, diff *ir.Node, path string, pf PatchFunc) (*ir.Node, error) {
	if doc.Type != ir.ObjectType || diff.Type != ir.ObjectType {
		return nil, fmt.Errorf("%w: object diff on %s at %s", ErrPatch, doc.Type, path)
	}
	kvs := make([]ir.KeyVal, len(doc.Fields))
	at := make(map[string]int, len(doc.Fields))
	for i, f := range doc.Fields {
		kvs[i] = ir.KeyVal{Key: f.String, Val: doc.Values[i]}
		at[f.String] = i
	}
	removed := map[int]bool{}
	for i, f := range diff.Fields {
		op := diff.Values[i]
		fPath := ir.AppendField(path, f.String)
		head, args := splitTag(op.Tag)
		j, ok := at[f.String]
		switch head {
		case InsertTag:
			if ok {
				return nil, fmt.Errorf("%w: %s already present", ErrPatch, fPath)
			}
			kvs = append(kvs, ir.KeyVal{Key: f.String, Val: restore(op, args)})
		case DeleteTag:
			if !ok {
				return nil, fmt.Errorf("%w: %s missing", ErrPatch, fPath)
			}
			if Diff(kvs[j].Val, restore(op, args)) != nil {
				return nil, fmt.Errorf("%w: unexpected value at %s", ErrPatch, fPath)
			}
			removed[j] = true
		default:
			if !ok {
				return nil, fmt.Errorf("%w: %s missing", ErrPatch, fPath)
			}
			v, err := pf(kvs[j].Val, op, fPath)
			if err != nil {
				return nil, err
			}
			kvs[j].Val = v
		}
	}
	res := make([]ir.KeyVal, 0, len(kvs))
	for i := range kvs {
		if !removed[i] {
			res = append(res, kvs[i])
		}
	}
	return ir.FromKeyVals(res).WithTag(doc.Tag), nil
}

func restore(op *ir.Node, args []string) *ir.Node {
	return op.Clone().WithTag(argTag(args))
}

// opIndex parses the key of an index keyed operation.
func opIndex(f *ir.Node, last int, path string) (int, error) {
	k, err := strconv.Atoi(f.String)
	if err != nil || k < last {
		return 0, fmt.Errorf("%w: bad index %q at %s", ErrBadDiff, f.String, path)
	}
	return k, nil
}

func PatchArrayByIndex(doc, diff *ir.Node, path string, pf PatchFunc) (*ir.Node, error) {
	if doc.Type != ir.ArrayType && doc.Type != ir.SetType {
		return nil, fmt.Errorf("%w: array diff on %s at %s", ErrPatch, doc.Type, path)
	}
	docVals := doc.Values
	res := make([]*ir.Node, 0, len(docVals))
	fi, ri := 0, 0
	for i, f := range diff.Fields {
		k, err := opIndex(f, ri, path)
		if err != nil {
			return nil, err
		}
		n := k - ri
		if fi+n > len(docVals) {
			return nil, fmt.Errorf("%w: index %d past the end of %s", ErrPatch, k, path)
		}
		res = append(res, docVals[fi:fi+n]...)
		fi += n
		ri = k

		op := diff.Values[i]
		head, args := splitTag(op.Tag)
		if head == InsertTag {
			res = append(res, restore(op, args))
			ri++
			continue
		}
		if fi >= len(docVals) {
			return nil, fmt.Errorf("%w: index %d past the end of %s", ErrPatch, k, path)
		}
		elPath := ir.AppendIndex(path, fi)
		switch head {
		case DeleteTag:
			if Diff(docVals[fi], restore(op, args)) != nil {
				return nil, fmt.Errorf("%w: unexpected value at %s", ErrPatch, elPath)
			}
		default:
			v, err := pf(docVals[fi], op, elPath)
			if err != nil {
				return nil, err
			}
			res = append(res, v)
		}
		fi++
		ri++
	}
	res = append(res, docVals[fi:]...)
	if doc.Type == ir.SetType {
		return ir.FromSet(res, doc.Ordered).WithTag(doc.Tag), nil
	}
	return ir.FromSlice(res).WithTag(doc.Tag), nil
}

func PatchStringRunes(doc, diff *ir.Node, path string) (*ir.Node, error) {
	if doc.Type != ir.StringType {
		return nil, fmt.Errorf("%w: string diff on %s at %s", ErrPatch, doc.Type, path)
	}
	txt := []rune(doc.String)
	res := make([]rune, 0, len(txt))
	fi, ri := 0, 0
	for i, f := range diff.Fields {
		k, err := opIndex(f, ri, path)
		if err != nil {
			return nil, err
		}
		n := k - ri
		if fi+n > len(txt) {
			return nil, fmt.Errorf("%w: offset %d past the end of %s", ErrPatch, k, path)
		}
		res = append(res, txt[fi:fi+n]...)
		fi += n
		ri = k

		op := diff.Values[i]
		head, _ := splitTag(op.Tag)
		switch head {
		case DeleteTag:
			del := []rune(op.String)
			if op.Type != ir.StringType || !runesHasPrefix(txt[fi:], del) {
				return nil, fmt.Errorf("%w: at %s expected %q", ErrPatch, path, op.String)
			}
			fi += len(del)
			ri += len(del)
		case InsertTag:
			if op.Type != ir.StringType {
				return nil, fmt.Errorf("%w: strdiff insert of %s at %s", ErrBadDiff, op.Type, path)
			}
			add := []rune(op.String)
			res = append(res, add...)
			ri += len(add)
		case ReplaceTag:
			from, to := ir.Get(op, "from"), ir.Get(op, "to")
			if from == nil || to == nil || from.Type != ir.StringType || to.Type != ir.StringType {
				return nil, fmt.Errorf("%w: %s at %s needs from and to", ErrBadDiff, ReplaceTag, path)
			}
			del, add := []rune(from.String), []rune(to.String)
			if !runesHasPrefix(txt[fi:], del) {
				return nil, fmt.Errorf("%w: at %s expected %q", ErrPatch, path, from.String)
			}
			res = append(res, add...)
			fi += len(del)
			ri += len(del) + len(add)
		default:
			return nil, fmt.Errorf("%w: unexpected strdiff operation %q at %s", ErrBadDiff, op.Tag, path)
		}
	}
	res = append(res, txt[fi:]...)
	return ir.FromString(string(res)).WithTag(doc.Tag), nil
}

func runesHasPrefix(rs, prefix []rune) bool {
	if len(prefix) > len(rs) {
		return false
	}
	for i := range prefix {
		if rs[i] != prefix[i] {
			return false
		}
	}
	return true
}
