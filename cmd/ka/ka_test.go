package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/keyedarchive/ir"
	"github.com/signadot/keyedarchive/plist"

	jsonpatch "github.com/evanphx/json-patch"
)

func writeArchive(t *testing.T) string {
	t.Helper()
	b := plist.NewArchiveBuilder()
	root := b.Dictionary(
		[]string{"name", "count", "items"},
		[]*plist.Value{b.AddString("ann"), plist.Int(2), b.Array(plist.Int(1), plist.Int(2))})
	d, err := plist.EncodeBinary(b.Root(root))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "a.plist")
	if err := os.WriteFile(path, d, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMainCommand(t *testing.T) {
	cmd := MainCommand()
	if cmd == nil {
		t.Fatal("nil command")
	}
}

func TestGetRoot(t *testing.T) {
	path := writeArchive(t)
	got, err := getRoot(&MainConfig{}, nil, path)
	if err != nil {
		t.Fatal(err)
	}
	want := ir.FromKeyVals([]ir.KeyVal{
		{Key: "name", Val: ir.FromString("ann")},
		{Key: "count", Val: ir.FromInt(2)},
		{Key: "items", Val: ir.FromSlice([]*ir.Node{ir.FromInt(1), ir.FromInt(2)})},
	})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("getRoot() mismatch (-want +got):\n%s", diff)
	}
	if _, err := getRoot(&MainConfig{}, nil, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyPatch(t *testing.T) {
	path := writeArchive(t)
	root, err := getRoot(&MainConfig{}, nil, path)
	if err != nil {
		t.Fatal(err)
	}
	ops, err := jsonpatch.DecodePatch([]byte(`[
		{"op": "replace", "path": "/name", "value": "bob"},
		{"op": "add", "path": "/items/2", "value": 3.5},
		{"op": "remove", "path": "/count"}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	got, err := applyPatch(ops, root)
	if err != nil {
		t.Fatal(err)
	}
	want := ir.FromKeyVals([]ir.KeyVal{
		{Key: "items", Val: ir.FromSlice([]*ir.Node{ir.FromInt(1), ir.FromInt(2), ir.FromFloat(3.5)})},
		{Key: "name", Val: ir.FromString("bob")},
	})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("applyPatch() mismatch (-want +got):\n%s", diff)
	}
}

func TestVarFunc(t *testing.T) {
	vars := map[string]any{}
	for _, a := range []string{"n=3", "s=hello", `l=[1,"a"]`} {
		if err := varFunc(vars, a); err != nil {
			t.Fatalf("varFunc(%q): %v", a, err)
		}
	}
	want := map[string]any{"n": 3.0, "s": "hello", "l": []any{1.0, "a"}}
	if diff := cmp.Diff(want, vars); diff != "" {
		t.Errorf("vars mismatch (-want +got):\n%s", diff)
	}
	for _, a := range []string{"novalue", "=1", "root=1"} {
		if err := varFunc(vars, a); err == nil {
			t.Errorf("varFunc(%q): expected error", a)
		}
	}
}

func TestObjectPath(t *testing.T) {
	for in, want := range map[string]string{
		"$.a":   "$.a",
		"a.b":   "$.a.b",
		".a":    "$.a",
		"[0].a": "$[0].a",
		"$[1]":  "$[1]",
	} {
		got, err := objectPath(in)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("objectPath(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := objectPath(""); err == nil {
		t.Error("expected error for empty path")
	}
}
