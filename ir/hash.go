package ir

import (
	"encoding/binary"
	"hash/maphash"
	"math"
)

var hashSeed = maphash.MakeSeed()

// Hash returns a 64-bit hash of the node and its tag.  Hashes are
// stable within a process.
// It panics if n is nil.
func (n *Node) Hash() uint64 {
	if n == nil {
		panic("ir: Hash called on nil node")
	}

	var h maphash.Hash
	h.SetSeed(hashSeed)

	h.WriteByte(byte(n.Type))
	h.WriteString(n.Tag)
	h.WriteByte(0)

	var b [8]byte
	switch n.Type {
	case NullType:
	case BoolType:
		if n.Bool {
			h.WriteByte(1)
		} else {
			h.WriteByte(0)
		}
	case NumberType:
		if n.Int64 != nil {
			h.WriteByte(0)
			binary.LittleEndian.PutUint64(b[:], uint64(*n.Int64))
			h.Write(b[:])
		} else if n.Float64 != nil {
			h.WriteByte(1)
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(*n.Float64))
			h.Write(b[:])
		}
	case StringType:
		h.WriteString(n.String)
	case BytesType:
		h.Write(n.Bytes)
	case TimeType:
		binary.LittleEndian.PutUint64(b[:], uint64(n.Time.Unix()))
		h.Write(b[:])
		binary.LittleEndian.PutUint64(b[:], uint64(n.Time.Nanosecond()))
		h.Write(b[:])
	case ArrayType, SetType:
		if n.Ordered {
			h.WriteByte(1)
		}
		for _, v := range n.Values {
			binary.LittleEndian.PutUint64(b[:], v.Hash())
			h.Write(b[:])
		}
	case ObjectType:
		for i, field := range n.Fields {
			binary.LittleEndian.PutUint64(b[:], field.Hash())
			h.Write(b[:])

			binary.LittleEndian.PutUint64(b[:], n.Values[i].Hash())
			h.Write(b[:])
		}
	}
	return h.Sum64()
}
