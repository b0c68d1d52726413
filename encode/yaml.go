package encode

import (
	"encoding/base64"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/signadot/keyedarchive/ir"
)

func encodeYAML(node *ir.Node, w io.Writer, es *EncState) error {
	enc := yaml.NewEncoder(w, yaml.Indent(es.indent), yaml.Flow(es.wire))
	if err := enc.Encode(toYAML(node)); err != nil {
		return err
	}
	return enc.Close()
}

// toYAML converts node to values the yaml encoder writes in order.
func toYAML(node *ir.Node) any {
	switch node.Type {
	case ir.ObjectType:
		res := make(yaml.MapSlice, len(node.Fields))
		for i, f := range node.Fields {
			res[i] = yaml.MapItem{Key: f.String, Value: toYAML(node.Values[i])}
		}
		return res
	case ir.ArrayType, ir.SetType:
		res := make([]any, len(node.Values))
		for i, v := range node.Values {
			res[i] = toYAML(v)
		}
		return res
	case ir.BytesType:
		return base64.StdEncoding.EncodeToString(node.Bytes)
	default:
		return ir.ToAny(node)
	}
}
