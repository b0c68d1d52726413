package encode

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/signadot/keyedarchive/ir"
)

// encodeJSON writes node as JSON with object keys in order.  Sets
// become arrays; class tags are dropped.
func encodeJSON(node *ir.Node, w io.Writer, es *EncState) error {
	d, err := node.MarshalJSON()
	if err != nil {
		return err
	}
	if es.wire {
		return writeString(w, string(d)+"\n")
	}
	buf := bytes.NewBuffer(nil)
	if err := json.Indent(buf, d, "", strings.Repeat(" ", es.indent)); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}
