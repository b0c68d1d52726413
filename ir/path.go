package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Paths select nodes in a decoded tree.  A path starts with "$" for the
// root and continues with segments:
//
//	.name or .'quoted.name'   object field
//	[3]                       array or set element
//	[-1]                      element counted from the end
//	[*]                       every element (ListPath only)
//	..                        the node and every container below it (ListPath only)
//
// Fields holding any of ' . * $ [ ] \ are quoted; inside quotes a
// backslash escapes the next byte.

// AppendField extends a "$"-rooted path string with an object field.
func AppendField(path, field string) string {
	return path + "." + pathString(field)
}

// AppendIndex extends a "$"-rooted path string with an array index.
func AppendIndex(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func pathString(f string) string {
	if f != "" && strings.IndexAny(f, "'.*$[]\\") == -1 {
		return f
	}
	return "'" + quoteEscaper.Replace(f) + "'"
}

type SegmentKind uint8

const (
	FieldSegment SegmentKind = iota
	IndexSegment
	AllSegment
	DescendSegment
)

type Segment struct {
	Kind  SegmentKind
	Field string
	Index int
}

// Path is a parsed path, root first.
type Path []Segment

func (p Path) String() string {
	var sb strings.Builder
	sb.WriteByte('$')
	for _, s := range p {
		switch s.Kind {
		case FieldSegment:
			sb.WriteString("." + pathString(s.Field))
		case IndexSegment:
			sb.WriteString("[" + strconv.Itoa(s.Index) + "]")
		case AllSegment:
			sb.WriteString("[*]")
		case DescendSegment:
			sb.WriteString("..")
		}
	}
	return sb.String()
}

func ParsePath(p string) (Path, error) {
	if len(p) == 0 || p[0] != '$' {
		return nil, fmt.Errorf("path %q should start with '$'", p)
	}
	var res Path
	rest := p[1:]
	for len(rest) > 0 {
		var (
			seg Segment
			err error
		)
		switch {
		case strings.HasPrefix(rest, ".."):
			seg.Kind = DescendSegment
			rest = rest[2:]
			// "..name" reads as ".." then ".name"
			if len(rest) > 0 && rest[0] != '.' && rest[0] != '[' {
				rest = "." + rest
			}
		case rest[0] == '.':
			seg.Kind = FieldSegment
			seg.Field, rest, err = parseField(rest[1:])
		case rest[0] == '[':
			seg, rest, err = parseIndex(rest[1:])
		default:
			err = fmt.Errorf("expected '.' or '[' at %q", rest)
		}
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", p, err)
		}
		res = append(res, seg)
	}
	return res, nil
}

func parseIndex(frag string) (Segment, string, error) {
	i := strings.IndexByte(frag, ']')
	if i == -1 {
		return Segment{}, "", fmt.Errorf("missing ']'")
	}
	is, rest := frag[:i], frag[i+1:]
	if is == "*" {
		return Segment{Kind: AllSegment}, rest, nil
	}
	n, err := strconv.Atoi(is)
	if err != nil {
		return Segment{}, "", fmt.Errorf("bad index %q", is)
	}
	return Segment{Kind: IndexSegment, Index: n}, rest, nil
}

func parseField(frag string) (field, rest string, err error) {
	if len(frag) == 0 {
		return "", "", fmt.Errorf("expected field at end of path")
	}
	if frag[0] != '\'' {
		i := strings.IndexAny(frag, ".[")
		if i == -1 {
			return frag, "", nil
		}
		if i == 0 {
			return "", "", fmt.Errorf("empty field")
		}
		return frag[:i], frag[i:], nil
	}
	var sb strings.Builder
	for i := 1; i < len(frag); i++ {
		switch c := frag[i]; {
		case c == '\\' && i+1 < len(frag):
			i++
			sb.WriteByte(frag[i])
		case c == '\'':
			return sb.String(), frag[i+1:], nil
		default:
			sb.WriteByte(c)
		}
	}
	return "", "", fmt.Errorf("unterminated quoted field")
}

// element returns the i'th value of an array or set; negative i counts
// from the end.
func element(y *Node, i int) (*Node, bool) {
	if i < 0 {
		i += len(y.Values)
	}
	if i < 0 || i >= len(y.Values) {
		return nil, false
	}
	return y.Values[i], true
}

// GetPath returns the node at path.  A field missing from an object gives
// nil and no error; indexing out of range or through the wrong type is
// an error.  The result is a copy.
func (y *Node) GetPath(path string) (*Node, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	res := y
	for i, s := range p {
		switch s.Kind {
		case FieldSegment:
			if res.Type != ObjectType {
				return nil, fmt.Errorf("%s: expected object, got %s", p[:i], res.Type)
			}
			res = Get(res, s.Field)
			if res == nil {
				return nil, nil
			}
		case IndexSegment:
			if res.Type != ArrayType && res.Type != SetType {
				return nil, fmt.Errorf("%s: expected array, got %s", p[:i], res.Type)
			}
			v, ok := element(res, s.Index)
			if !ok {
				return nil, fmt.Errorf("%s: index %d out of bounds (len %d)", p[:i], s.Index, len(res.Values))
			}
			res = v
		default:
			return nil, fmt.Errorf("%s: %s not allowed in get", p[:i+1], Path{s})
		}
	}
	return res.Clone(), nil
}

// ListPath appends copies of every node matching path to dst.  Segments
// that do not apply to a node select nothing below it.
func (y *Node) ListPath(dst []*Node, path string) ([]*Node, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return y.listPath(dst, p), nil
}

func (y *Node) listPath(dst []*Node, p Path) []*Node {
	if y == nil {
		return dst
	}
	if len(p) == 0 {
		return append(dst, y.Clone())
	}
	s, rest := p[0], p[1:]
	switch s.Kind {
	case FieldSegment:
		if v := Get(y, s.Field); v != nil {
			dst = v.listPath(dst, rest)
		}
	case IndexSegment:
		if y.Type == ArrayType || y.Type == SetType {
			if v, ok := element(y, s.Index); ok {
				dst = v.listPath(dst, rest)
			}
		}
	case AllSegment:
		if y.Type == ArrayType || y.Type == SetType {
			for _, v := range y.Values {
				dst = v.listPath(dst, rest)
			}
		}
	case DescendSegment:
		if y.Type.IsLeaf() {
			return dst
		}
		dst = y.listPath(dst, rest)
		for _, v := range y.Values {
			dst = v.listPath(dst, p)
		}
	}
	return dst
}
