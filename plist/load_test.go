package plist

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func TestReadCompressed(t *testing.T) {
	data, err := EncodeBinary(Array(String("a"), Int(1)))
	if err != nil {
		t.Fatal(err)
	}

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	zs := enc.EncodeAll(data, nil)
	enc.Close()

	for name, in := range map[string][]byte{"plain": data, "gzip": gz.Bytes(), "zstd": zs} {
		t.Run(name, func(t *testing.T) {
			v, err := Read(bytes.NewReader(in))
			if err != nil {
				t.Fatal(err)
			}
			if v.Kind != ArrayKind || len(v.Values) != 2 || v.Values[0].String != "a" {
				t.Errorf("unexpected value %+v", v)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.plist")
	if err := os.WriteFile(path, []byte(xmlArchive), 0o644); err != nil {
		t.Fatal(err)
	}
	v, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !v.Has("$objects") {
		t.Errorf("missing $objects")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
