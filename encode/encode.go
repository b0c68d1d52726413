package encode

import (
	"errors"
	"fmt"
	"io"

	"github.com/signadot/keyedarchive/format"
	"github.com/signadot/keyedarchive/ir"
)

var ErrEncoding = errors.New("encoding error")

type EncState struct {
	indent int
	format format.Format
	wire   bool
	noTags bool

	Color func(ir.Type, ColorAttr, string) string
}

// Encode writes node to w in the format chosen by opts, text by
// default.  Output other than CBOR ends in a newline.
func Encode(node *ir.Node, w io.Writer, opts ...EncodeOption) error {
	es := &EncState{
		indent: 2,
	}
	for _, opt := range opts {
		opt(es)
	}
	if node == nil {
		return fmt.Errorf("%w: nil node", ErrEncoding)
	}
	switch es.format {
	case format.TextFormat:
		return encodeText(node, w, es)
	case format.JSONFormat:
		return encodeJSON(node, w, es)
	case format.YAMLFormat:
		return encodeYAML(node, w, es)
	case format.CBORFormat:
		return encodeCBOR(node, w)
	default:
		return fmt.Errorf("%w: %s", format.ErrBadFormat, es.format)
	}
}

func writeString(w io.Writer, s string) error {
	_, err := w.Write([]byte(s))
	return err
}

// Color application helpers

func applyColor(es *EncState, nodeType ir.Type, attr ColorAttr, v string) string {
	if es.Color == nil {
		return v
	}
	return es.Color(nodeType, attr, v)
}

func applyValueColor(es *EncState, nodeType ir.Type, v string) string {
	return applyColor(es, nodeType, ValueColor, v)
}
