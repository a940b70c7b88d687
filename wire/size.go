package wire

import (
	"errors"
	"fmt"

	"github.com/anirudhraja/tagwire/schema"
)

// ErrBufferTooSmall is returned by MarshalTo when the destination cannot hold
// the encoding.
var ErrBufferTooSmall = errors.New("buffer too small")

// Size returns the number of bytes Marshal(m) produces.
func Size(m *Instance) int {
	return MarshalOptions{}.Size(m)
}

// Size returns the number of bytes o.Marshal(m) produces without encoding
// anything.
func (o MarshalOptions) Size(m *Instance) int {
	if m == nil {
		return 0
	}
	stack := []sizeFrame{{inst: m}}
	for {
		top := &stack[len(stack)-1]
		if child := top.advance(); child != nil {
			stack = append(stack, sizeFrame{inst: child})
			continue
		}

		n := top.size
		if !o.DiscardUnknown {
			n += len(top.inst.unknown)
		}
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			return n
		}
		stack[len(stack)-1].closeChild(n)
	}
}

// MarshalTo encodes m into the start of dst and returns the number of bytes
// written. dst is left untouched when it is shorter than the encoding.
func (o MarshalOptions) MarshalTo(dst []byte, m *Instance) (int, error) {
	n := o.Size(m)
	if n > len(dst) {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, n, len(dst))
	}
	// The capacity limit keeps appends inside dst.
	o.MarshalAppend(dst[:0:n], m)
	return n, nil
}

// sizeFrame mirrors encodeFrame, accumulating byte counts instead of writing.
type sizeFrame struct {
	inst    *Instance
	field   int
	elem    int
	entries []Entry
	size    int // bytes of inst counted so far

	// Pending embedded message: the tag of the field it is written under and,
	// for map values, the size of the entry's key field.
	tag     int
	inEntry bool
	keySize int
}

func (fr *sizeFrame) next() {
	fr.field++
	fr.elem = 0
	fr.entries = nil
}

// closeChild adds a completed embedded message of n bytes to fr.
func (fr *sizeFrame) closeChild(n int) {
	n += VarintSize(uint64(n))
	if fr.inEntry {
		entry := fr.keySize + tagSize(mapValueNumber) + n
		n = VarintSize(uint64(entry)) + entry
	}
	fr.size += fr.tag + n
}

// advance counts fields of fr until it reaches an embedded message, which it
// returns. It returns nil once every field is counted.
func (fr *sizeFrame) advance() *Instance {
	fields := fr.inst.desc.Fields
	for fr.field < len(fields) {
		f := fields[fr.field]
		num := FieldNumber(f.Number)

		switch {
		case f.IsMap():
			if fr.elem == 0 {
				fr.entries = fr.inst.entries(f)
			}
			for fr.elem < len(fr.entries) {
				ent := fr.entries[fr.elem]
				fr.elem++
				key := tagSize(mapKeyNumber) + scalarSize(ent.Key)
				if f.Type == schema.TypeMessage {
					fr.tag, fr.inEntry, fr.keySize = tagSize(num), true, key
					return ent.Value.msg
				}
				entry := key + tagSize(mapValueNumber) + scalarSize(ent.Value)
				fr.size += tagSize(num) + VarintSize(uint64(entry)) + entry
			}

		case f.Label == schema.LabelPacked:
			list := fr.inst.lists[f.Number]
			if len(list) > 0 {
				n := 0
				for _, v := range list {
					n += scalarSize(v)
				}
				fr.size += tagSize(num) + VarintSize(uint64(n)) + n
			}

		case f.IsList():
			list := fr.inst.lists[f.Number]
			for fr.elem < len(list) {
				v := list[fr.elem]
				fr.elem++
				if f.Type == schema.TypeMessage {
					fr.tag, fr.inEntry = tagSize(num), false
					return v.msg
				}
				fr.size += tagSize(num) + scalarSize(v)
			}

		default:
			v, ok := fr.inst.values[f.Number]
			if ok && f.Type == schema.TypeMessage {
				fr.next()
				fr.tag, fr.inEntry = tagSize(num), false
				return v.msg
			}
			if ok {
				fr.size += tagSize(num) + scalarSize(v)
			}
		}
		fr.next()
	}
	return nil
}

// tagSize returns the encoded size of a tag for num. The wire type occupies
// the low three bits and never changes the length.
func tagSize(num FieldNumber) int {
	return VarintSize(uint64(MakeTag(num, WireVarint)))
}

// scalarSize returns the size of v as written by encodeScalarValue.
func scalarSize(v Value) int {
	switch v.typ {
	case schema.TypeSint32:
		return VarintSize(EncodeZigZag32(int32(v.num)))
	case schema.TypeSint64:
		return VarintSize(EncodeZigZag64(int64(v.num)))
	case schema.TypeString, schema.TypeBytes:
		return BytesSize(v.bytes)
	case schema.TypeFloat, schema.TypeFixed32, schema.TypeSfixed32:
		return 4
	case schema.TypeDouble, schema.TypeFixed64, schema.TypeSfixed64:
		return 8
	default:
		return VarintSize(v.num)
	}
}
