package wire

import (
	"golang.org/x/exp/constraints"
)

// MaxVarintLen is the longest valid varint: ceil(64/7) bytes.
const MaxVarintLen = 10

// DECODER METHODS

// DecodeVarint decodes an unsigned LEB128 varint at 64-bit width.
//
// 32-bit semantic types are read at the same width because negative int32 and
// enum values are sign-extended to ten bytes on the wire; callers truncate.
func (d *Decoder) DecodeVarint() (uint64, error) {
	var v uint64
	for i := 0; i < MaxVarintLen; i++ {
		if d.pos >= d.end {
			return 0, ErrUnexpectedEOF
		}
		b := d.buf[d.pos]
		d.pos++

		// The tenth byte may only contribute bit 63.
		if i == MaxVarintLen-1 && b > 1 {
			return 0, ErrMalformedVarint
		}

		v |= uint64(b&0x7f) << (7 * uint(i))
		if b < 0x80 {
			return v, nil
		}
	}
	return 0, ErrMalformedVarint
}

// ENCODER METHODS

// EncodeVarint encodes a uint64 as varint
func (e *Encoder) EncodeVarint(v uint64) {
	e.buf = AppendVarint(e.buf, v)
}

// EncodeZigZag32 encodes v with sint32 semantics.
func (e *Encoder) EncodeZigZag32(v int32) {
	e.buf = AppendVarint(e.buf, EncodeZigZag32(v))
}

// EncodeZigZag64 encodes v with sint64 semantics.
func (e *Encoder) EncodeZigZag64(v int64) {
	e.buf = AppendVarint(e.buf, EncodeZigZag64(v))
}

// UTILITY FUNCTIONS

// AppendVarint appends v to b as an unsigned LEB128 varint, least significant
// group first.
func AppendVarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// DecodeZigZag32 decodes a zigzag-encoded 32-bit integer
func DecodeZigZag32(encoded uint64) int32 {
	return int32((uint32(encoded) >> 1) ^ uint32(-int32(encoded&1)))
}

// DecodeZigZag64 decodes a zigzag-encoded 64-bit integer
func DecodeZigZag64(encoded uint64) int64 {
	return int64((encoded >> 1) ^ uint64(-int64(encoded&1)))
}

// EncodeZigZag32 encodes a signed 32-bit integer using zigzag encoding
func EncodeZigZag32(v int32) uint64 {
	return uint64((uint32(v) << 1) ^ uint32(v>>31))
}

// EncodeZigZag64 encodes a signed 64-bit integer using zigzag encoding
func EncodeZigZag64(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// VarintSize returns the number of bytes needed to encode the given varint
func VarintSize[T constraints.Unsigned](x T) int {
	v := uint64(x)
	switch {
	case v < 1<<7:
		return 1
	case v < 1<<14:
		return 2
	case v < 1<<21:
		return 3
	case v < 1<<28:
		return 4
	case v < 1<<35:
		return 5
	case v < 1<<42:
		return 6
	case v < 1<<49:
		return 7
	case v < 1<<56:
		return 8
	case v < 1<<63:
		return 9
	default:
		return 10
	}
}
