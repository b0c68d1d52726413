package libdiff

import (
	"fmt"

	"github.com/signadot/keyedarchive/ir"
)

// Reverse gives the diff that undoes diff.
func Reverse(diff *ir.Node) (*ir.Node, error) {
	if diff == nil {
		return nil, nil
	}
	head, tagDiff := cutTagDiff(diff.Tag)
	op, args := splitTag(head)
	switch op {
	case DeleteTag:
		return withTag(diff, joinTag(InsertTag, args)), nil
	case InsertTag:
		return withTag(diff, joinTag(DeleteTag, args)), nil
	case ReplaceTag:
		from, to := ir.Get(diff, "from"), ir.Get(diff, "to")
		if diff.Type != ir.ObjectType || from == nil || to == nil {
			return nil, fmt.Errorf("%w: missing from/to in %s", ErrBadDiff, ReplaceTag)
		}
		return MakeDiff(to, from), nil
	case TagDeleteTag, TagInsertTag, TagReplaceTag:
		tag, err := reverseTag(head)
		if err != nil {
			return nil, err
		}
		if diff.Type == ir.NullType {
			return ir.Null().WithTag(tag), nil
		}
		res, err := reverseFields(diff)
		if err != nil {
			return nil, err
		}
		return res.WithTag(tag), nil
	case ArrayDiffTag, StringDiffTag, "":
		res, err := reverseFields(diff)
		if err != nil {
			return nil, err
		}
		tag := head
		if tagDiff != "" {
			rt, err := reverseTag("!" + tagDiff)
			if err != nil {
				return nil, err
			}
			tag += "." + rt[1:]
		}
		return res.WithTag(tag), nil
	default:
		return nil, fmt.Errorf("%w: unknown operation %q", ErrBadDiff, op)
	}
}

func reverseFields(diff *ir.Node) (*ir.Node, error) {
	if diff.Type != ir.ObjectType {
		return nil, fmt.Errorf("%w: expected object, got %s", ErrBadDiff, diff.Type)
	}
	kvs := make([]ir.KeyVal, len(diff.Fields))
	for i, f := range diff.Fields {
		v, err := Reverse(diff.Values[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.String, err)
		}
		kvs[i] = ir.KeyVal{Key: f.String, Val: v}
	}
	return ir.FromKeyVals(kvs), nil
}

func reverseTag(tag string) (string, error) {
	head, args := splitTag(tag)
	switch head {
	case TagInsertTag:
		return joinTag(TagDeleteTag, args), nil
	case TagDeleteTag:
		return joinTag(TagInsertTag, args), nil
	case TagReplaceTag:
		if len(args) != 2 {
			return "", fmt.Errorf("%w: wrong number of args for %s: %d", ErrBadDiff, TagReplaceTag, len(args))
		}
		return joinTag(TagReplaceTag, []string{args[1], args[0]}), nil
	default:
		return "", fmt.Errorf("%w: %q is not a tag change", ErrBadDiff, tag)
	}
}

func withTag(node *ir.Node, tag string) *ir.Node {
	cp := *node
	cp.Tag = tag
	return &cp
}
