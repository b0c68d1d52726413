package format

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	for _, f := range AllFormats() {
		got, err := ParseFormat(f.String())
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", f, err)
		}
		if got != f {
			t.Errorf("ParseFormat(%q) = %s", f, got)
		}
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, ErrBadFormat) {
		t.Errorf("expected bad format, got %v", err)
	}
}

func TestFormatUnmarshalText(t *testing.T) {
	var f Format
	if err := f.UnmarshalText([]byte("j")); err != nil {
		t.Fatal(err)
	}
	if !f.IsJSON() || f.Suffix() != ".json" {
		t.Errorf("unexpected format %s", f)
	}
}
