package wire

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/exp/constraints"

	"github.com/anirudhraja/tagwire/schema"
)

// Value is a single typed field value: a scalar, a byte string or a nested
// message instance.
//
// Signed 32-bit types are stored sign-extended to 64 bits, uint32 and
// fixed32 zero-extended, floating point values as their IEEE 754 bits.
type Value struct {
	typ   schema.Type
	num   uint64
	bytes []byte
	msg   *Instance
}

// Bool returns a bool value.
func Bool(v bool) Value {
	var n uint64
	if v {
		n = 1
	}
	return Value{typ: schema.TypeBool, num: n}
}

func Int32(v int32) Value { return Value{typ: schema.TypeInt32, num: uint64(int64(v))} }
func Int64(v int64) Value { return Value{typ: schema.TypeInt64, num: uint64(v)} }
func Uint32(v uint32) Value { return Value{typ: schema.TypeUint32, num: uint64(v)} }
func Uint64(v uint64) Value { return Value{typ: schema.TypeUint64, num: v} }
func Sint32(v int32) Value { return Value{typ: schema.TypeSint32, num: uint64(int64(v))} }
func Sint64(v int64) Value { return Value{typ: schema.TypeSint64, num: uint64(v)} }
func Fixed32(v uint32) Value { return Value{typ: schema.TypeFixed32, num: uint64(v)} }
func Fixed64(v uint64) Value { return Value{typ: schema.TypeFixed64, num: v} }
func Sfixed32(v int32) Value { return Value{typ: schema.TypeSfixed32, num: uint64(int64(v))} }
func Sfixed64(v int64) Value { return Value{typ: schema.TypeSfixed64, num: uint64(v)} }
func Float(v float32) Value { return Value{typ: schema.TypeFloat, num: uint64(math.Float32bits(v))} }
func Double(v float64) Value { return Value{typ: schema.TypeDouble, num: math.Float64bits(v)} }
func String(v string) Value { return Value{typ: schema.TypeString, bytes: []byte(v)} }
func Bytes(v []byte) Value { return Value{typ: schema.TypeBytes, bytes: v} }
func MessageValue(m *Instance) Value { return Value{typ: schema.TypeMessage, msg: m} }

// Enum returns an enum value. Any integer type is accepted so generated-style
// named enum types can be passed directly; the number is truncated to 32 bits.
func Enum[T constraints.Integer](v T) Value {
	return Value{typ: schema.TypeEnum, num: uint64(int64(int32(v)))}
}

// zeroValue returns the zero value of t. Message zero values have no instance.
func zeroValue(t schema.Type) Value {
	return Value{typ: t}
}

// Type returns the semantic type of v.
func (v Value) Type() schema.Type { return v.typ }

// IsValid reports whether v holds a value of any type.
func (v Value) IsValid() bool { return v.typ != "" }

func (v Value) Bool() bool { return v.num != 0 }
func (v Value) Int32() int32 { return int32(v.num) }
func (v Value) Int64() int64 { return int64(v.num) }
func (v Value) Uint32() uint32 { return uint32(v.num) }
func (v Value) Uint64() uint64 { return v.num }
func (v Value) Float32() float32 { return math.Float32frombits(uint32(v.num)) }
func (v Value) Float64() float64 { return math.Float64frombits(v.num) }
func (v Value) Bytes() []byte { return v.bytes }
func (v Value) Message() *Instance { return v.msg }

// Enum returns the enum number held by v.
func (v Value) Enum() int32 { return int32(v.num) }

// String returns the payload of a string value, or a readable rendering of
// any other value.
func (v Value) String() string {
	switch v.typ {
	case schema.TypeString:
		return string(v.bytes)
	case schema.TypeBytes:
		return fmt.Sprintf("%x", v.bytes)
	case schema.TypeBool:
		return strconv.FormatBool(v.Bool())
	case schema.TypeInt32, schema.TypeSint32, schema.TypeSfixed32, schema.TypeEnum:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case schema.TypeInt64, schema.TypeSint64, schema.TypeSfixed64:
		return strconv.FormatInt(v.Int64(), 10)
	case schema.TypeUint32, schema.TypeFixed32, schema.TypeUint64, schema.TypeFixed64:
		return strconv.FormatUint(v.num, 10)
	case schema.TypeFloat:
		return strconv.FormatFloat(float64(v.Float32()), 'g', -1, 32)
	case schema.TypeDouble:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case schema.TypeMessage:
		if v.msg == nil {
			return "<nil>"
		}
		return "{" + v.msg.Descriptor().Name + "}"
	default:
		return "<invalid>"
	}
}

// IsZero reports whether v is the zero value of its type. Negative zero is
// not zero: its bits differ and it is emitted.
func (v Value) IsZero() bool {
	switch v.typ {
	case schema.TypeString, schema.TypeBytes:
		return len(v.bytes) == 0
	case schema.TypeMessage:
		return v.msg == nil
	default:
		return v.num == 0
	}
}

// Equal reports whether v and o have the same type and payload. Messages are
// compared structurally and floats by bits.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case schema.TypeString, schema.TypeBytes:
		return bytes.Equal(v.bytes, o.bytes)
	case schema.TypeMessage:
		return v.msg.Equal(o.msg)
	default:
		return v.num == o.num
	}
}

// MapKey is a comparable map key. Keys order by their typed value: signed
// integers numerically, unsigned numerically, false before true and strings
// bytewise.
type MapKey struct {
	typ schema.Type
	num uint64
	str string
}

// MapKey converts v into a key. It panics for types that cannot key a map.
func (v Value) MapKey() MapKey {
	if !v.typ.IsMapKey() {
		panic(fmt.Sprintf("wire: %s value cannot be a map key", v.typ))
	}
	if v.typ == schema.TypeString {
		return MapKey{typ: v.typ, str: string(v.bytes)}
	}
	return MapKey{typ: v.typ, num: v.num}
}

// Value converts k back into a field value.
func (k MapKey) Value() Value {
	if k.typ == schema.TypeString {
		return String(k.str)
	}
	return Value{typ: k.typ, num: k.num}
}

// Type returns the key type.
func (k MapKey) Type() schema.Type { return k.typ }

func (k MapKey) String() string { return k.Value().String() }

func (k MapKey) signed() bool {
	switch k.typ {
	case schema.TypeInt32, schema.TypeInt64, schema.TypeSint32, schema.TypeSint64,
		schema.TypeSfixed32, schema.TypeSfixed64:
		return true
	}
	return false
}

// Less reports whether k sorts before o. Keys of different types order by
// type name.
func (k MapKey) Less(o MapKey) bool {
	if k.typ != o.typ {
		return k.typ < o.typ
	}
	switch {
	case k.typ == schema.TypeString:
		return k.str < o.str
	case k.signed():
		return int64(k.num) < int64(o.num)
	default:
		return k.num < o.num
	}
}

// Entry is one key/value pair of a map field.
type Entry struct {
	Key   Value
	Value Value
}
