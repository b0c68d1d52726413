package keyedarchive

import (
	"fmt"
	"math"

	"github.com/signadot/keyedarchive/ir"
)

type segment struct {
	field string
	index int // -1 for fields
}

// trail tracks the structural path of the value being decoded, for
// error messages, and the nesting depth.
type trail struct {
	segs     []segment
	maxDepth int
	depth    int
}

func (t *trail) pushField(f string) { t.segs = append(t.segs, segment{field: f, index: -1}) }
func (t *trail) pushIndex(i int)    { t.segs = append(t.segs, segment{index: i}) }
func (t *trail) pop()               { t.segs = t.segs[:len(t.segs)-1] }

func (t *trail) String() string {
	p := "$"
	for _, s := range t.segs {
		if s.index < 0 {
			p = ir.AppendField(p, s.field)
			continue
		}
		p = ir.AppendIndex(p, s.index)
	}
	return p
}

func (t *trail) enter() error {
	if t.depth >= t.maxDepth {
		return t.fail(ErrTooDeep, -1, fmt.Sprintf("limit %d", t.maxDepth))
	}
	t.depth++
	return nil
}

func (t *trail) leave() { t.depth-- }

func (t *trail) fail(err error, ref int64, msg string) *DecodeError {
	return &DecodeError{
		Path:    t.String(),
		Ref:     ref,
		Message: msg,
		Err:     err,
	}
}

func refIndex(uid uint64) int64 {
	if uid > math.MaxInt64 {
		return -1
	}
	return int64(uid)
}
