package encode

import (
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/signadot/keyedarchive/ir"
)

// textEncoder writes the indented text form:
//
//	!Person
//	name: ann
//	tags:
//	  - a
//	  - b
//	seen: !set [1, 2]
type textEncoder struct {
	w   io.Writer
	es  *EncState
	err error
}

func encodeText(node *ir.Node, w io.Writer, es *EncState) error {
	te := &textEncoder{w: w, es: es}
	if es.wire || !isBlock(node) {
		te.inline(node)
		te.write("\n")
		return te.err
	}
	if tag := te.tag(node); tag != "" {
		te.write(tag + "\n")
	}
	te.block(node, 0)
	return te.err
}

func (te *textEncoder) write(s string) {
	if te.err != nil {
		return
	}
	te.err = writeString(te.w, s)
}

func (te *textEncoder) indent(depth int) {
	te.write(strings.Repeat(" ", te.es.indent*depth))
}

func isBlock(node *ir.Node) bool {
	switch node.Type {
	case ir.ObjectType, ir.ArrayType, ir.SetType:
		return len(node.Values) > 0
	}
	return false
}

func (te *textEncoder) tag(node *ir.Node) string {
	var parts []string
	if node.Tag != "" && !te.es.noTags {
		parts = append(parts, node.Tag)
	}
	if node.Type == ir.SetType {
		if node.Ordered {
			parts = append(parts, "!orderedset")
		} else {
			parts = append(parts, "!set")
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return applyColor(te.es, node.Type, TagColor, strings.Join(parts, " "))
}

// block writes the entries of a non-empty container, one per line.
func (te *textEncoder) block(node *ir.Node, depth int) {
	sep := applyColor(te.es, ir.ObjectType, SepColor, ":")
	dash := applyColor(te.es, node.Type, SepColor, "-")
	for i, v := range node.Values {
		te.indent(depth)
		if node.Type == ir.ObjectType {
			te.write(applyColor(te.es, ir.ObjectType, FieldColor, quoteString(node.Fields[i].String)) + sep)
		} else {
			te.write(dash)
		}
		if !isBlock(v) {
			te.write(" ")
			te.inline(v)
			te.write("\n")
			continue
		}
		if tag := te.tag(v); tag != "" {
			te.write(" " + tag)
		}
		te.write("\n")
		te.block(v, depth+1)
	}
}

func (te *textEncoder) inline(node *ir.Node) {
	if tag := te.tag(node); tag != "" {
		te.write(tag + " ")
	}
	switch node.Type {
	case ir.ObjectType:
		te.write(applyColor(te.es, ir.ObjectType, SepColor, "{"))
		for i, v := range node.Values {
			if i > 0 {
				te.write(applyColor(te.es, ir.ObjectType, SepColor, ",") + " ")
			}
			te.write(applyColor(te.es, ir.ObjectType, FieldColor, quoteString(node.Fields[i].String)))
			te.write(applyColor(te.es, ir.ObjectType, SepColor, ":") + " ")
			te.inline(v)
		}
		te.write(applyColor(te.es, ir.ObjectType, SepColor, "}"))
	case ir.ArrayType, ir.SetType:
		te.write(applyColor(te.es, node.Type, SepColor, "["))
		for i, v := range node.Values {
			if i > 0 {
				te.write(applyColor(te.es, node.Type, SepColor, ",") + " ")
			}
			te.inline(v)
		}
		te.write(applyColor(te.es, node.Type, SepColor, "]"))
	default:
		s, err := leafString(node)
		if err != nil {
			if te.err == nil {
				te.err = err
			}
			return
		}
		te.write(applyValueColor(te.es, node.Type, s))
	}
}

func leafString(node *ir.Node) (string, error) {
	switch node.Type {
	case ir.NullType:
		return "null", nil
	case ir.BoolType:
		return strconv.FormatBool(node.Bool), nil
	case ir.NumberType:
		if node.Int64 != nil {
			return strconv.FormatInt(*node.Int64, 10), nil
		}
		if node.Float64 != nil {
			return formatFloat(*node.Float64), nil
		}
		return "", fmt.Errorf("%w: number without value", ErrEncoding)
	case ir.StringType:
		return quoteString(node.String), nil
	case ir.BytesType:
		return "!bytes " + base64.StdEncoding.EncodeToString(node.Bytes), nil
	case ir.TimeType:
		return "!time " + node.Time.UTC().Format(time.RFC3339Nano), nil
	default:
		return "", fmt.Errorf("%w: unexpected type %s", ErrEncoding, node.Type)
	}
}

// formatFloat keeps a decimal point or exponent so reals stay
// distinguishable from integers.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func quoteString(v string) string {
	if needsQuote(v) {
		return strconv.Quote(v)
	}
	return v
}

func needsQuote(v string) bool {
	if v == "" {
		return true
	}
	switch v {
	case "null", "true", "false", "~":
		return true
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return true
	}
	switch v[0] {
	case '!', '*', '&', '%', '@', '#', '{', '[', '-', '"', '\'', ' ', '|', '>', '?', '`':
		return true
	}
	if v[len(v)-1] == ' ' {
		return true
	}
	for _, r := range v {
		switch {
		case r == ':', r == ',', r == '}', r == ']', r == '#':
			return true
		case r < 0x20, r == 0x7f:
			return true
		}
	}
	return false
}
