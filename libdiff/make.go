package libdiff

import (
	"strings"

	"github.com/signadot/keyedarchive/ir"
)

// MakeDiff records a whole-value change: an insertion when from is nil,
// a deletion when to is nil, and a replacement otherwise.  Inserted and
// deleted values keep their class tag as the operation's argument.
func MakeDiff(from, to *ir.Node) *ir.Node {
	switch {
	case from == nil:
		return to.Clone().WithTag(opTag(InsertTag, to.Tag))
	case to == nil:
		return from.Clone().WithTag(opTag(DeleteTag, from.Tag))
	default:
		return ir.FromKeyVals([]ir.KeyVal{
			{Key: "from", Val: from},
			{Key: "to", Val: to},
		}).WithTag(ReplaceTag)
	}
}

func opTag(op, tag string) string {
	if tag == "" {
		return op
	}
	return op + "(" + tag[1:] + ")"
}

// MakeTagDiff gives the tag recording a change of tag from from to to.
func MakeTagDiff(from, to string) string {
	switch {
	case from == "":
		return TagInsertTag + "(" + to[1:] + ")"
	case to == "":
		return TagDeleteTag + "(" + from[1:] + ")"
	default:
		return TagReplaceTag + "(" + from[1:] + "," + to[1:] + ")"
	}
}

// splitTag splits "!op(a,b)" into "!op" and its arguments.
func splitTag(tag string) (string, []string) {
	i := strings.IndexByte(tag, '(')
	if i == -1 || !strings.HasSuffix(tag, ")") {
		return tag, nil
	}
	return tag[:i], strings.Split(tag[i+1:len(tag)-1], ",")
}

func joinTag(head string, args []string) string {
	if len(args) == 0 {
		return head
	}
	return head + "(" + strings.Join(args, ",") + ")"
}

// argTag restores the class tag carried as an operation argument.
func argTag(args []string) string {
	if len(args) != 1 || args[0] == "" {
		return ""
	}
	return "!" + args[0]
}
