package plist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"
)

const (
	binaryMagic    = "bplist00"
	trailerSize    = 32
	maxBinaryDepth = 1 << 14
)

// object markers, high nibble
const (
	markerSimple  = 0x0
	markerInt     = 0x1
	markerReal    = 0x2
	markerDate    = 0x3
	markerData    = 0x4
	markerASCII   = 0x5
	markerUTF16   = 0x6
	markerUTF8    = 0x7
	markerUID     = 0x8
	markerArray   = 0xA
	markerOrdSet  = 0xB
	markerSet     = 0xC
	markerDict    = 0xD
	simpleNull    = 0x00
	simpleFalse   = 0x08
	simpleTrue    = 0x09
	simpleFill    = 0x0F
	extendedCount = 0xF
)

// IsBinary reports whether data starts with the binary plist header.
func IsBinary(data []byte) bool {
	return bytes.HasPrefix(data, []byte(binaryMagic))
}

type trailer struct {
	offsetIntSize     int
	objectRefSize     int
	numObjects        uint64
	topObject         uint64
	offsetTableOffset uint64
}

type binaryReader struct {
	data []byte
	trailer
	offsets []uint64
	objects []*Value
	active  []bool
	depth   int
}

// ParseBinary parses a "bplist00" binary property list.
//
// Objects referenced more than once are parsed once and shared.  Sets
// written with the ordered set marker have Ordered set.
func ParseBinary(data []byte) (*Value, error) {
	if !IsBinary(data) {
		return nil, fmt.Errorf("%w: missing %q header", ErrParse, binaryMagic)
	}
	if len(data) < len(binaryMagic)+trailerSize+1 {
		return nil, fmt.Errorf("%w: binary plist too short (%d bytes)", ErrParse, len(data))
	}
	r := &binaryReader{data: data}
	if err := r.readTrailer(); err != nil {
		return nil, err
	}
	if err := r.readOffsets(); err != nil {
		return nil, err
	}
	return r.readObject(r.topObject)
}

func (r *binaryReader) readTrailer() error {
	tr := r.data[len(r.data)-trailerSize:]
	r.offsetIntSize = int(tr[6])
	r.objectRefSize = int(tr[7])
	r.numObjects = binary.BigEndian.Uint64(tr[8:16])
	r.topObject = binary.BigEndian.Uint64(tr[16:24])
	r.offsetTableOffset = binary.BigEndian.Uint64(tr[24:32])

	if r.offsetIntSize < 1 || r.offsetIntSize > 8 {
		return fmt.Errorf("%w: invalid offset size %d", ErrParse, r.offsetIntSize)
	}
	if r.objectRefSize < 1 || r.objectRefSize > 8 {
		return fmt.Errorf("%w: invalid object ref size %d", ErrParse, r.objectRefSize)
	}
	if r.numObjects == 0 {
		return fmt.Errorf("%w: no objects", ErrParse)
	}
	if r.topObject >= r.numObjects {
		return fmt.Errorf("%w: top object %d out of range (%d objects)", ErrParse, r.topObject, r.numObjects)
	}
	tableEnd := uint64(len(r.data) - trailerSize)
	if r.offsetTableOffset < uint64(len(binaryMagic)) || r.offsetTableOffset > tableEnd {
		return fmt.Errorf("%w: offset table at %d out of range", ErrParse, r.offsetTableOffset)
	}
	if r.numObjects > (tableEnd-r.offsetTableOffset)/uint64(r.offsetIntSize) {
		return fmt.Errorf("%w: offset table for %d objects overruns trailer", ErrParse, r.numObjects)
	}
	return nil
}

func (r *binaryReader) readOffsets() error {
	r.offsets = make([]uint64, r.numObjects)
	r.objects = make([]*Value, r.numObjects)
	r.active = make([]bool, r.numObjects)
	pos := r.offsetTableOffset
	for i := range r.offsets {
		off := readSized(r.data[pos : pos+uint64(r.offsetIntSize)])
		if off < uint64(len(binaryMagic)) || off >= r.offsetTableOffset {
			return fmt.Errorf("%w: object %d offset %d out of range", ErrParse, i, off)
		}
		r.offsets[i] = off
		pos += uint64(r.offsetIntSize)
	}
	return nil
}

func readSized(b []byte) uint64 {
	var res uint64
	for _, c := range b {
		res = res<<8 | uint64(c)
	}
	return res
}

func (r *binaryReader) slice(start, n uint64) ([]byte, error) {
	end := start + n
	if end < start || end > r.offsetTableOffset {
		return nil, fmt.Errorf("%w: object data [%d:%d] out of range", ErrParse, start, end)
	}
	return r.data[start:end], nil
}

func (r *binaryReader) readObject(ref uint64) (*Value, error) {
	if ref >= r.numObjects {
		return nil, fmt.Errorf("%w: object ref %d out of range (%d objects)", ErrParse, ref, r.numObjects)
	}
	if v := r.objects[ref]; v != nil {
		return v, nil
	}
	if r.active[ref] {
		return nil, fmt.Errorf("%w: object %d contains itself", ErrParse, ref)
	}
	if r.depth >= maxBinaryDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrParse, maxBinaryDepth)
	}
	r.active[ref] = true
	r.depth++
	v, err := r.parseObject(r.offsets[ref])
	r.depth--
	r.active[ref] = false
	if err != nil {
		return nil, err
	}
	r.objects[ref] = v
	return v, nil
}

func (r *binaryReader) parseObject(off uint64) (*Value, error) {
	marker := r.data[off]
	hi, lo := marker>>4, marker&0x0F
	switch hi {
	case markerSimple:
		switch marker {
		case simpleNull, simpleFill:
			return Null(), nil
		case simpleFalse:
			return Bool(false), nil
		case simpleTrue:
			return Bool(true), nil
		}
		return nil, fmt.Errorf("%w: marker 0x%02x at %d", ErrUnsupported, marker, off)

	case markerInt:
		i, _, err := r.readInt(off)
		if err != nil {
			return nil, err
		}
		return Int(i), nil

	case markerReal:
		switch lo {
		case 2:
			b, err := r.slice(off+1, 4)
			if err != nil {
				return nil, err
			}
			return Real(float64(math.Float32frombits(binary.BigEndian.Uint32(b)))), nil
		case 3:
			b, err := r.slice(off+1, 8)
			if err != nil {
				return nil, err
			}
			return Real(math.Float64frombits(binary.BigEndian.Uint64(b))), nil
		}
		return nil, fmt.Errorf("%w: real of 2^%d bytes at %d", ErrUnsupported, lo, off)

	case markerDate:
		if lo != 3 {
			return nil, fmt.Errorf("%w: date marker 0x%02x at %d", ErrParse, marker, off)
		}
		b, err := r.slice(off+1, 8)
		if err != nil {
			return nil, err
		}
		t, err := FromAppleTime(math.Float64frombits(binary.BigEndian.Uint64(b)))
		if err != nil {
			return nil, fmt.Errorf("date at %d: %w", off, err)
		}
		return Date(t), nil

	case markerData:
		n, start, err := r.readCount(off)
		if err != nil {
			return nil, err
		}
		b, err := r.slice(start, n)
		if err != nil {
			return nil, err
		}
		return Data(bytes.Clone(b)), nil

	case markerASCII, markerUTF8:
		n, start, err := r.readCount(off)
		if err != nil {
			return nil, err
		}
		b, err := r.slice(start, n)
		if err != nil {
			return nil, err
		}
		return String(string(b)), nil

	case markerUTF16:
		n, start, err := r.readCount(off)
		if err != nil {
			return nil, err
		}
		if n > math.MaxUint64/2 {
			return nil, fmt.Errorf("%w: utf16 length %d at %d", ErrParse, n, off)
		}
		b, err := r.slice(start, 2*n)
		if err != nil {
			return nil, err
		}
		units := make([]uint16, n)
		for i := range units {
			units[i] = binary.BigEndian.Uint16(b[2*i:])
		}
		return String(string(utf16.Decode(units))), nil

	case markerUID:
		b, err := r.slice(off+1, uint64(lo)+1)
		if err != nil {
			return nil, err
		}
		if len(b) > 8 {
			if readSized(b[:len(b)-8]) != 0 {
				return nil, fmt.Errorf("%w: uid wider than 64 bits at %d", ErrUnsupported, off)
			}
			b = b[len(b)-8:]
		}
		return UID(readSized(b)), nil

	case markerArray, markerOrdSet, markerSet:
		refs, err := r.readRefs(off)
		if err != nil {
			return nil, err
		}
		vs := make([]*Value, len(refs))
		for i, ref := range refs {
			if vs[i], err = r.readObject(ref); err != nil {
				return nil, err
			}
		}
		if hi == markerArray {
			return Array(vs...), nil
		}
		return Set(hi == markerOrdSet, vs...), nil

	case markerDict:
		return r.parseDict(off)
	}
	return nil, fmt.Errorf("%w: marker 0x%02x at %d", ErrUnsupported, marker, off)
}

// readInt reads an integer object at off and the offset just past it.
// 16 byte integers keep their low 64 bits.
func (r *binaryReader) readInt(off uint64) (int64, uint64, error) {
	marker := r.data[off]
	if marker>>4 != markerInt {
		return 0, 0, fmt.Errorf("%w: expected int marker at %d, got 0x%02x", ErrParse, off, marker)
	}
	lo := marker & 0x0F
	if lo > 4 {
		return 0, 0, fmt.Errorf("%w: int of 2^%d bytes at %d", ErrUnsupported, lo, off)
	}
	n := uint64(1) << lo
	b, err := r.slice(off+1, n)
	if err != nil {
		return 0, 0, err
	}
	switch n {
	case 1, 2, 4:
		return int64(readSized(b)), off + 1 + n, nil
	case 8:
		return int64(binary.BigEndian.Uint64(b)), off + 1 + n, nil
	default:
		return int64(binary.BigEndian.Uint64(b[8:])), off + 1 + n, nil
	}
}

// readCount reads the length of a sized object at off and where its
// payload starts.
func (r *binaryReader) readCount(off uint64) (uint64, uint64, error) {
	lo := r.data[off] & 0x0F
	if lo != extendedCount {
		return uint64(lo), off + 1, nil
	}
	if off+1 >= r.offsetTableOffset {
		return 0, 0, fmt.Errorf("%w: truncated count at %d", ErrParse, off)
	}
	n, start, err := r.readInt(off + 1)
	if err != nil {
		return 0, 0, err
	}
	if n < 0 {
		return 0, 0, fmt.Errorf("%w: negative count %d at %d", ErrParse, n, off)
	}
	return uint64(n), start, nil
}

func (r *binaryReader) readRefs(off uint64) ([]uint64, error) {
	n, start, err := r.readCount(off)
	if err != nil {
		return nil, err
	}
	if r.data[off]>>4 == markerDict {
		if n > math.MaxUint64/2 {
			return nil, fmt.Errorf("%w: dict size %d at %d", ErrParse, n, off)
		}
		n *= 2
	}
	size := uint64(r.objectRefSize)
	if n > (r.offsetTableOffset-start)/size {
		return nil, fmt.Errorf("%w: %d object refs at %d overrun object data", ErrParse, n, off)
	}
	b, err := r.slice(start, n*size)
	if err != nil {
		return nil, err
	}
	refs := make([]uint64, n)
	for i := range refs {
		refs[i] = readSized(b[uint64(i)*size : uint64(i+1)*size])
	}
	return refs, nil
}

func (r *binaryReader) parseDict(off uint64) (*Value, error) {
	refs, err := r.readRefs(off)
	if err != nil {
		return nil, err
	}
	n := len(refs) / 2
	res := &Value{
		Kind:   DictKind,
		Keys:   make([]string, 0, n),
		Values: make([]*Value, 0, n),
	}
	seen := make(map[string]int, n)
	for i := 0; i < n; i++ {
		k, err := r.readObject(refs[i])
		if err != nil {
			return nil, err
		}
		if k.Kind != StringKind {
			return nil, fmt.Errorf("%w: dict key of kind %s at %d", ErrUnsupported, k.Kind, off)
		}
		v, err := r.readObject(refs[n+i])
		if err != nil {
			return nil, err
		}
		if j, ok := seen[k.String]; ok {
			res.Values[j] = v
			continue
		}
		seen[k.String] = len(res.Keys)
		res.Keys = append(res.Keys, k.String)
		res.Values = append(res.Values, v)
	}
	return res, nil
}
