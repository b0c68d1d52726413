package plist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"
)

type binaryWriter struct {
	flat    []*Value
	index   map[*Value]uint64
	refSize int
}

// EncodeBinary encodes v as a "bplist00" binary property list.  A
// *Value reachable along several paths is written once.
func EncodeBinary(v *Value) ([]byte, error) {
	w := &binaryWriter{index: map[*Value]uint64{}}
	if err := w.flatten(v, 0); err != nil {
		return nil, err
	}
	w.refSize = sizeFor(uint64(len(w.flat)))

	buf := bytes.NewBuffer([]byte(binaryMagic))
	offsets := make([]uint64, len(w.flat))
	for i, obj := range w.flat {
		offsets[i] = uint64(buf.Len())
		if err := w.writeObject(buf, obj); err != nil {
			return nil, err
		}
	}
	tableOffset := uint64(buf.Len())
	offSize := sizeFor(tableOffset)
	for _, off := range offsets {
		writeSized(buf, off, offSize)
	}
	var tr [trailerSize]byte
	tr[6] = byte(offSize)
	tr[7] = byte(w.refSize)
	binary.BigEndian.PutUint64(tr[8:], uint64(len(w.flat)))
	binary.BigEndian.PutUint64(tr[16:], 0)
	binary.BigEndian.PutUint64(tr[24:], tableOffset)
	buf.Write(tr[:])
	return buf.Bytes(), nil
}

func (w *binaryWriter) flatten(v *Value, depth int) error {
	if v == nil {
		return fmt.Errorf("%w: nil value", ErrUnsupported)
	}
	if _, ok := w.index[v]; ok {
		return nil
	}
	if depth > maxBinaryDepth {
		return fmt.Errorf("%w: nesting deeper than %d", ErrUnsupported, maxBinaryDepth)
	}
	w.index[v] = uint64(len(w.flat))
	w.flat = append(w.flat, v)
	switch v.Kind {
	case DictKind:
		if len(v.Keys) != len(v.Values) {
			return fmt.Errorf("%w: dict with %d keys and %d values", ErrUnsupported, len(v.Keys), len(v.Values))
		}
		for _, k := range v.Keys {
			ks := String(k)
			w.index[ks] = uint64(len(w.flat))
			w.flat = append(w.flat, ks)
		}
		fallthrough
	case ArrayKind, SetKind:
		for _, c := range v.Values {
			if err := w.flatten(c, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func sizeFor(n uint64) int {
	switch {
	case n <= math.MaxUint8:
		return 1
	case n <= math.MaxUint16:
		return 2
	case n <= math.MaxUint32:
		return 4
	}
	return 8
}

func writeSized(buf *bytes.Buffer, v uint64, size int) {
	for i := size - 1; i >= 0; i-- {
		buf.WriteByte(byte(v >> (8 * i)))
	}
}

func writeHeader(buf *bytes.Buffer, hi byte, n uint64) {
	if n < extendedCount {
		buf.WriteByte(hi<<4 | byte(n))
		return
	}
	buf.WriteByte(hi<<4 | extendedCount)
	writeInt(buf, int64(n))
}

func writeInt(buf *bytes.Buffer, i int64) {
	if i < 0 {
		buf.WriteByte(markerInt<<4 | 3)
		writeSized(buf, uint64(i), 8)
		return
	}
	size := sizeFor(uint64(i))
	lo := map[int]byte{1: 0, 2: 1, 4: 2, 8: 3}[size]
	buf.WriteByte(markerInt<<4 | lo)
	writeSized(buf, uint64(i), size)
}

func (w *binaryWriter) writeRef(buf *bytes.Buffer, v *Value) {
	writeSized(buf, w.index[v], w.refSize)
}

func (w *binaryWriter) writeObject(buf *bytes.Buffer, v *Value) error {
	switch v.Kind {
	case NullKind:
		buf.WriteByte(simpleNull)
	case BoolKind:
		if v.Bool {
			buf.WriteByte(simpleTrue)
		} else {
			buf.WriteByte(simpleFalse)
		}
	case IntegerKind:
		writeInt(buf, v.Int)
	case RealKind:
		buf.WriteByte(markerReal<<4 | 3)
		writeSized(buf, math.Float64bits(v.Real), 8)
	case DateKind:
		buf.WriteByte(markerDate<<4 | 3)
		writeSized(buf, math.Float64bits(ToAppleTime(v.Date)), 8)
	case DataKind:
		writeHeader(buf, markerData, uint64(len(v.Data)))
		buf.Write(v.Data)
	case StringKind:
		if isASCII(v.String) {
			writeHeader(buf, markerASCII, uint64(len(v.String)))
			buf.WriteString(v.String)
			break
		}
		units := utf16.Encode([]rune(v.String))
		writeHeader(buf, markerUTF16, uint64(len(units)))
		for _, u := range units {
			writeSized(buf, uint64(u), 2)
		}
	case UIDKind:
		size := sizeFor(v.UID)
		buf.WriteByte(markerUID<<4 | byte(size-1))
		writeSized(buf, v.UID, size)
	case ArrayKind, SetKind:
		hi := byte(markerArray)
		if v.Kind == SetKind {
			hi = markerSet
			if v.Ordered {
				hi = markerOrdSet
			}
		}
		writeHeader(buf, hi, uint64(len(v.Values)))
		for _, c := range v.Values {
			w.writeRef(buf, c)
		}
	case DictKind:
		writeHeader(buf, markerDict, uint64(len(v.Keys)))
		base := w.index[v] + 1
		for i := range v.Keys {
			writeSized(buf, base+uint64(i), w.refSize)
		}
		for _, c := range v.Values {
			w.writeRef(buf, c)
		}
	default:
		return fmt.Errorf("%w: cannot encode kind %s", ErrUnsupported, v.Kind)
	}
	return nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
