package query

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/keyedarchive/ir"
)

func doc() *ir.Node {
	return ir.FromKeyVals([]ir.KeyVal{
		{Key: "name", Val: ir.FromString("ann")},
		{Key: "age", Val: ir.FromInt(30)},
		{Key: "tags", Val: ir.FromSlice([]*ir.Node{ir.FromString("a"), ir.FromString("b")})},
		{Key: "boss", Val: ir.FromKeyVals([]ir.KeyVal{
			{Key: "name", Val: ir.FromString("bob")},
		}).WithTag("!Person")},
	})
}

func TestEval(t *testing.T) {
	tests := []struct {
		src  string
		want *ir.Node
	}{
		{`root.name`, ir.FromString("ann")},
		{`root.age + 1`, ir.FromInt(31)},
		{`root.age > 18 && len(root.tags) == 2`, ir.FromBool(true)},
		{`getpath("$.tags[1]")`, ir.FromString("b")},
		{`getpath("$.boss").name`, ir.FromString("bob")},
		{`classname("$.boss")`, ir.FromString("Person")},
		{`filter(root.tags, # != "a")`, ir.FromSlice([]*ir.Node{ir.FromString("b")})},
		{`limit * 2`, ir.FromInt(6)},
	}
	for _, tc := range tests {
		got, err := Eval(tc.src, doc(), map[string]any{"limit": 3})
		if err != nil {
			t.Errorf("%s: %v", tc.src, err)
			continue
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", tc.src, diff)
		}
	}
}

func TestEvalErrors(t *testing.T) {
	for _, src := range []string{`root.name +`, `getpath("$.tags.x")`, `classname("$.missing")`} {
		if _, err := Eval(src, doc(), nil); !errors.Is(err, ErrQuery) {
			t.Errorf("%s: expected query error, got %v", src, err)
		}
	}
}

func TestFromAny(t *testing.T) {
	got, err := FromAny(map[string]any{
		"b": []any{1, 2.5, nil},
		"a": true,
		"c": []any{json.Number("7"), json.Number("1.5")},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := ir.FromKeyVals([]ir.KeyVal{
		{Key: "a", Val: ir.FromBool(true)},
		{Key: "b", Val: ir.FromSlice([]*ir.Node{ir.FromInt(1), ir.FromFloat(2.5), ir.Null()})},
		{Key: "c", Val: ir.FromSlice([]*ir.Node{ir.FromInt(7), ir.FromFloat(1.5)})},
	})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromAny() mismatch (-want +got):\n%s", diff)
	}
	if _, err := FromAny(struct{}{}); !errors.Is(err, ErrQuery) {
		t.Errorf("expected query error, got %v", err)
	}
}
