package wire

import (
	"fmt"

	"github.com/anirudhraja/tagwire/schema"
)

// ===== PROTOBUF WIRE FORMAT TYPES =====

// WireType represents the on-the-wire encoding family of a field value.
type WireType int8

const (
	WireVarint     WireType = 0 // bool, int32, int64, uint32, uint64, sint32, sint64, enum
	WireFixed64    WireType = 1 // fixed64, sfixed64, double
	WireBytes      WireType = 2 // string, bytes, embedded messages, packed repeated fields
	WireStartGroup WireType = 3 // deprecated, always rejected
	WireEndGroup   WireType = 4 // deprecated, always rejected
	WireFixed32    WireType = 5 // fixed32, sfixed32, float
)

func (w WireType) String() string {
	switch w {
	case WireVarint:
		return "varint"
	case WireFixed64:
		return "fixed64"
	case WireBytes:
		return "bytes"
	case WireStartGroup:
		return "start-group"
	case WireEndGroup:
		return "end-group"
	case WireFixed32:
		return "fixed32"
	default:
		return fmt.Sprintf("wiretype(%d)", int8(w))
	}
}

// IsValid reports whether w is one of the four wire types this codec reads.
func (w WireType) IsValid() bool {
	switch w {
	case WireVarint, WireFixed64, WireBytes, WireFixed32:
		return true
	}
	return false
}

const maxFieldNumber = schema.MaxFieldNumber

// FieldNumber represents a protobuf field number
type FieldNumber int32

// IsValid reports whether n may appear in a tag.
func (n FieldNumber) IsValid() bool {
	return int32(n) >= schema.MinFieldNumber && int32(n) <= schema.MaxFieldNumber
}

// Tag represents a protobuf field tag (field number + wire type)
type Tag uint64

// MakeTag creates a tag from field number and wire type
func MakeTag(fieldNumber FieldNumber, wireType WireType) Tag {
	return Tag(uint64(fieldNumber)<<3 | uint64(wireType&0x7))
}

// ParseTag parses a tag into field number and wire type
func ParseTag(tag Tag) (FieldNumber, WireType) {
	return FieldNumber(tag >> 3), WireType(tag & 0x7)
}

// wireTypeOf returns the wire type every value of t is encoded with. Packed
// runs use WireBytes regardless of the element type.
func wireTypeOf(t schema.Type) WireType {
	switch t {
	case schema.TypeString, schema.TypeBytes, schema.TypeMessage:
		return WireBytes
	case schema.TypeFloat, schema.TypeFixed32, schema.TypeSfixed32:
		return WireFixed32
	case schema.TypeDouble, schema.TypeFixed64, schema.TypeSfixed64:
		return WireFixed64
	default:
		return WireVarint
	}
}
