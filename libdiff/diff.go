package libdiff

import (
	"bytes"

	"github.com/signadot/keyedarchive/ir"
)

// DiffFunc diffs two values, giving nil when they are equal.
type DiffFunc func(from, to *ir.Node) *ir.Node

// Diff gives a tagged tree describing how to turn from into to, or nil
// when they are equal.
func Diff(from, to *ir.Node) *ir.Node {
	if from == to {
		return nil
	}
	if from.Type != to.Type {
		return MakeDiff(from, to)
	}
	switch from.Type {
	case ir.ObjectType:
		return DiffObject(from, to, Diff)
	case ir.ArrayType:
		return DiffArrayByIndex(from, to, Diff)
	case ir.SetType:
		if from.Ordered != to.Ordered {
			return MakeDiff(from, to)
		}
		return DiffArrayByIndex(from, to, Diff)
	case ir.StringType:
		return DiffString(from, to)
	case ir.NumberType:
		return DiffNumber(from, to)
	case ir.BoolType:
		if from.Bool != to.Bool {
			return MakeDiff(from, to)
		}
	case ir.BytesType:
		if !bytes.Equal(from.Bytes, to.Bytes) {
			return MakeDiff(from, to)
		}
	case ir.TimeType:
		if !from.Time.Equal(to.Time) {
			return MakeDiff(from, to)
		}
	}
	return diffTags(from, to)
}

func diffTags(from, to *ir.Node) *ir.Node {
	if from.Tag == to.Tag {
		return nil
	}
	return ir.Null().WithTag(MakeTagDiff(from.Tag, to.Tag))
}
