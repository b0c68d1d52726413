package plist

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestBinaryRoundTrip(t *testing.T) {
	when := time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC)
	long := make([]*Value, 20)
	for i := range long {
		long[i] = Int(int64(i * 1000))
	}
	shared := String("shared")
	tests := []struct {
		name string
		in   *Value
	}{
		{"null", Null()},
		{"true", Bool(true)},
		{"false", Bool(false)},
		{"small int", Int(7)},
		{"wide int", Int(1 << 40)},
		{"negative int", Int(-3)},
		{"real", Real(3.0)},
		{"date", Date(when)},
		{"distant future", Date(time.Date(4001, time.January, 1, 0, 0, 0, 0, time.UTC))},
		{"distant past", Date(time.Date(0, time.December, 30, 0, 0, 0, 0, time.UTC))},
		{"data", Data([]byte{0, 1, 2, 0xff})},
		{"ascii", String("hello")},
		{"unicode", String("héllo ☃")},
		{"long string", String(strings.Repeat("x", 300))},
		{"uid", UID(42)},
		{"wide uid", UID(70000)},
		{"array", Array(Int(1), String("two"), Real(3.5))},
		{"long array", Array(long...)},
		{"ordered set", Set(true, Int(3), Int(1), Int(2))},
		{"unordered set", Set(false, Int(3), Int(1), Int(2))},
		{"dict", Dict(
			KV{Key: "b", Val: Int(1)},
			KV{Key: "a", Val: Array(shared, shared)},
		)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeBinary(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			got, err := ParseBinary(data)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.in, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBinarySetOrderedFlag(t *testing.T) {
	for _, ordered := range []bool{true, false} {
		data, err := EncodeBinary(Set(ordered, Int(3), Int(1), Int(2)))
		if err != nil {
			t.Fatal(err)
		}
		got, err := ParseBinary(data)
		if err != nil {
			t.Fatal(err)
		}
		if got.Kind != SetKind || got.Ordered != ordered {
			t.Errorf("set kind %s ordered %v, want ordered %v", got.Kind, got.Ordered, ordered)
		}
		for i, want := range []int64{3, 1, 2} {
			if got.Values[i].Int != want {
				t.Errorf("set[%d] = %d, want %d", i, got.Values[i].Int, want)
			}
		}
	}
}

// handBuilt lays out objects, an offset table with 1 byte offsets and a
// trailer with 1 byte object refs.
func handBuilt(objects ...[]byte) []byte {
	data := []byte(binaryMagic)
	offsets := make([]byte, len(objects))
	for i, obj := range objects {
		offsets[i] = byte(len(data))
		data = append(data, obj...)
	}
	tableOffset := len(data)
	data = append(data, offsets...)
	var tr [trailerSize]byte
	tr[6] = 1
	tr[7] = 1
	binary.BigEndian.PutUint64(tr[8:], uint64(len(objects)))
	binary.BigEndian.PutUint64(tr[24:], uint64(tableOffset))
	return append(data, tr[:]...)
}

func TestBinaryUIDWidths(t *testing.T) {
	data := handBuilt(
		[]byte{0xA3, 1, 2, 3},
		[]byte{0x80, 0x05},
		[]byte{0x81, 0x01, 0x02},
		[]byte{0x83, 0x00, 0x01, 0x00, 0x00},
	)
	got, err := ParseBinary(data)
	if err != nil {
		t.Fatal(err)
	}
	want := Array(UID(5), UID(258), UID(65536))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestBinaryErrors(t *testing.T) {
	good, err := EncodeBinary(Array(Int(1), Int(2)))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"no header", []byte("not a plist at all, really not"), ErrParse},
		{"truncated", good[:20], ErrParse},
		{"self reference", handBuilt([]byte{0xA1, 0}), ErrParse},
		{"ref out of range", handBuilt([]byte{0xA1, 9}), ErrParse},
		{"bad marker", handBuilt([]byte{0x95}), ErrUnsupported},
		{"non string key", handBuilt([]byte{0xD1, 1, 1}, []byte{0x10, 1}), ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBinary(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseDispatch(t *testing.T) {
	data, err := EncodeBinary(Dict(KV{Key: "k", Val: String("v")}))
	if err != nil {
		t.Fatal(err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Get("k").String != "v" {
		t.Errorf("got %v", got.Get("k"))
	}
}
