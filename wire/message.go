package wire

import (
	"fmt"
	"unicode/utf8"

	"github.com/anirudhraja/tagwire/schema"
)

// DefaultRecursionLimit bounds message nesting on decode when
// UnmarshalOptions.RecursionLimit is zero.
const DefaultRecursionLimit = 10000

// UnmarshalOptions configures decoding.
type UnmarshalOptions struct {
	// PreserveUnknown keeps the raw bytes of fields missing from the
	// descriptor on the instance; Marshal writes them back after the known
	// fields. By default they are discarded.
	PreserveUnknown bool

	// ValidateUTF8 rejects string fields that are not valid UTF-8 with
	// ErrInvalidUTF8. By default strings are passed through as raw bytes.
	ValidateUTF8 bool

	// RecursionLimit is the maximum depth of nested messages. Zero means
	// DefaultRecursionLimit.
	RecursionLimit int
}

func (o UnmarshalOptions) depth() int {
	if o.RecursionLimit > 0 {
		return o.RecursionLimit
	}
	return DefaultRecursionLimit
}

// Unmarshal decodes b as a message of type desc with default options.
func Unmarshal(b []byte, desc *schema.Message) (*Instance, error) {
	return UnmarshalOptions{}.Unmarshal(b, desc)
}

// UnmarshalLength decodes the first length bytes of b as a message of type
// desc with default options.
func UnmarshalLength(b []byte, length int, desc *schema.Message) (*Instance, error) {
	return UnmarshalOptions{}.UnmarshalLength(b, length, desc)
}

// Unmarshal decodes all of b as a message of type desc.
func (o UnmarshalOptions) Unmarshal(b []byte, desc *schema.Message) (*Instance, error) {
	m := NewInstance(desc)
	if err := o.decodeMessage(NewDecoder(b), m, o.depth()); err != nil {
		return nil, err
	}
	return m, nil
}

// UnmarshalLength decodes exactly length bytes from the start of b, for a
// message framed inside a larger buffer. A buffer shorter than length fails
// with ErrTruncatedMessage before anything is read.
func (o UnmarshalOptions) UnmarshalLength(b []byte, length int, desc *schema.Message) (*Instance, error) {
	if length < 0 || length > len(b) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedMessage, length, len(b))
	}
	m := NewInstance(desc)
	if err := o.decodeMessage(&Decoder{buf: b, end: length}, m, o.depth()); err != nil {
		return nil, err
	}
	return m, nil
}

// Merge decodes b into m. Singular fields present in b overwrite those in m,
// repeated fields are appended and map entries inserted. m is unchanged when
// b fails to decode.
func (o UnmarshalOptions) Merge(b []byte, m *Instance) error {
	// Decode failures depend only on b and the descriptor, so a clean pass
	// over a scratch instance guarantees the second pass succeeds.
	if err := o.decodeMessage(NewDecoder(b), NewInstance(m.desc), o.depth()); err != nil {
		return err
	}
	return o.decodeMessage(NewDecoder(b), m, o.depth())
}

// DecodeMessage decodes the decoder's remaining input into m with default
// options.
func (d *Decoder) DecodeMessage(m *Instance) error {
	var o UnmarshalOptions
	return o.decodeMessage(d, m, o.depth())
}

// decodeMessage reads fields until d is exhausted. depth is the number of
// further nesting levels allowed below m.
func (o UnmarshalOptions) decodeMessage(d *Decoder, m *Instance, depth int) error {
	for !d.Done() {
		tagStart := d.pos
		num, wt, err := d.DecodeTag()
		if err != nil {
			return err
		}

		f := m.desc.FieldByNumber(int32(num))
		if f == nil {
			raw, err := d.skipUnknown(tagStart, wt)
			if err != nil {
				return fmt.Errorf("unknown field %d: %w", num, err)
			}
			if o.PreserveUnknown {
				m.unknown = append(m.unknown, raw...)
			}
			continue
		}

		if err := o.decodeField(d, m, f, wt, depth); err != nil {
			return wrapWithField(err, f.Name)
		}
	}
	return nil
}

func (o UnmarshalOptions) decodeField(d *Decoder, m *Instance, f *schema.Field, wt WireType, depth int) error {
	switch {
	case f.IsMap():
		if wt != WireBytes {
			return mismatch(f.Type, wt)
		}
		return o.decodeMapEntry(d, m, f, depth)

	case f.IsList():
		// Conforming decoders accept packed and unpacked runs for any
		// packable type, whatever the declared encoding.
		if wt == WireBytes && f.Type.IsPackable() {
			return o.decodePacked(d, m, f)
		}
		v, err := o.decodeValue(d, f, wt, depth)
		if err != nil {
			return err
		}
		m.appendValues(f, v)
		return nil

	case f.Type == schema.TypeMessage:
		if wt != WireBytes {
			return mismatch(f.Type, wt)
		}
		// A repeated occurrence of a singular message merges into the
		// instance decoded so far.
		return o.decodeNested(d, m.mutable(f), depth)

	default:
		v, err := o.decodeScalar(d, f.Type, wt)
		if err != nil {
			return err
		}
		m.store(f, v)
		return nil
	}
}

// decodeValue decodes one element of a list: a fresh message or a scalar.
func (o UnmarshalOptions) decodeValue(d *Decoder, f *schema.Field, wt WireType, depth int) (Value, error) {
	if f.Type != schema.TypeMessage {
		return o.decodeScalar(d, f.Type, wt)
	}
	if wt != WireBytes {
		return Value{}, mismatch(f.Type, wt)
	}
	child := NewInstance(f.Message)
	if err := o.decodeNested(d, child, depth); err != nil {
		return Value{}, err
	}
	return MessageValue(child), nil
}

// decodeNested decodes a length-delimited embedded message into child.
func (o UnmarshalOptions) decodeNested(d *Decoder, child *Instance, depth int) error {
	if depth <= 0 {
		return ErrRecursionLimit
	}
	start, n, err := d.DecodeLengthDelimited()
	if err != nil {
		return err
	}
	return o.decodeMessage(d.window(start, n), child, depth-1)
}

func (o UnmarshalOptions) decodePacked(d *Decoder, m *Instance, f *schema.Field) error {
	start, n, err := d.DecodeLengthDelimited()
	if err != nil {
		return err
	}
	pd := d.window(start, n)
	wt := wireTypeOf(f.Type)
	var vals []Value
	for !pd.Done() {
		v, err := o.decodeScalar(pd, f.Type, wt)
		if err != nil {
			return err
		}
		vals = append(vals, v)
	}
	m.appendValues(f, vals...)
	return nil
}

// decodeScalar decodes a non-message value of type typ. Every varint is read
// at 64-bit width and narrowed afterwards.
func (o UnmarshalOptions) decodeScalar(d *Decoder, typ schema.Type, wt WireType) (Value, error) {
	if want := wireTypeOf(typ); wt != want {
		return Value{}, mismatch(typ, wt)
	}

	switch wt {
	case WireVarint:
		x, err := d.DecodeVarint()
		if err != nil {
			return Value{}, err
		}
		return varintValue(typ, x), nil

	case WireFixed32:
		x, err := d.DecodeFixed32()
		if err != nil {
			return Value{}, err
		}
		if typ == schema.TypeSfixed32 {
			return Value{typ: typ, num: uint64(int64(int32(x)))}, nil
		}
		return Value{typ: typ, num: uint64(x)}, nil

	case WireFixed64:
		x, err := d.DecodeFixed64()
		if err != nil {
			return Value{}, err
		}
		return Value{typ: typ, num: x}, nil

	default:
		b, err := d.DecodeBytes()
		if err != nil {
			return Value{}, err
		}
		if typ == schema.TypeString && o.ValidateUTF8 && !utf8.Valid(b) {
			return Value{}, ErrInvalidUTF8
		}
		return Value{typ: typ, bytes: b}, nil
	}
}

// varintValue narrows a 64-bit varint to typ.
func varintValue(typ schema.Type, x uint64) Value {
	switch typ {
	case schema.TypeBool:
		if x != 0 {
			x = 1
		}
	case schema.TypeInt32, schema.TypeEnum:
		x = uint64(int64(int32(x)))
	case schema.TypeUint32:
		x = uint64(uint32(x))
	case schema.TypeSint32:
		x = uint64(int64(DecodeZigZag32(x)))
	case schema.TypeSint64:
		x = uint64(DecodeZigZag64(x))
	}
	return Value{typ: typ, num: x}
}

func mismatch(typ schema.Type, wt WireType) error {
	return fmt.Errorf("%w: %s field encoded as %s", ErrWireTypeMismatch, typ, wt)
}

// MarshalOptions configures encoding. Output is always deterministic: fields
// in declaration order, map entries sorted by key.
type MarshalOptions struct {
	// DiscardUnknown drops unknown fields preserved on decode.
	DiscardUnknown bool
}

// Marshal encodes m with default options.
func Marshal(m *Instance) []byte {
	return MarshalOptions{}.Marshal(m)
}

// Marshal encodes m.
func (o MarshalOptions) Marshal(m *Instance) []byte {
	e := NewEncoder()
	o.encode(e, m)
	return e.Bytes()
}

// MarshalAppend appends the encoding of m to b.
func (o MarshalOptions) MarshalAppend(b []byte, m *Instance) []byte {
	e := &Encoder{buf: b}
	o.encode(e, m)
	return e.Bytes()
}

// EncodeMessage writes the fields of m into the current segment with default
// options.
func (e *Encoder) EncodeMessage(m *Instance) {
	MarshalOptions{}.encode(e, m)
}

// encodeFrame tracks progress through one instance.
type encodeFrame struct {
	inst    *Instance
	field   int     // index into inst.desc.Fields
	elem    int     // next list element or map entry of the current field
	entries []Entry // sorted entries of the current map field
	joins   int     // segments to close when the pending child completes
}

func (fr *encodeFrame) next() {
	fr.field++
	fr.elem = 0
	fr.entries = nil
}

// encode walks m and its nested instances with an explicit frame stack. Each
// embedded message gets its own segment, closed by Join once its frame is
// popped.
func (o MarshalOptions) encode(e *Encoder, m *Instance) {
	if m == nil {
		return
	}
	stack := []encodeFrame{{inst: m}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if child := advance(e, top); child != nil {
			stack = append(stack, encodeFrame{inst: child})
			continue
		}

		if !o.DiscardUnknown {
			e.EncodeRaw(top.inst.unknown)
		}
		stack = stack[:len(stack)-1]
		if len(stack) > 0 {
			parent := &stack[len(stack)-1]
			for ; parent.joins > 0; parent.joins-- {
				e.Join()
			}
		}
	}
}

// advance encodes fields of fr until it reaches an embedded message. It
// opens the child's segment, records how many segments the parent must close
// afterwards and returns the child. It returns nil once every field is
// written.
func advance(e *Encoder, fr *encodeFrame) *Instance {
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
				e.EncodeTag(num, WireBytes)
				e.Fork()
				encodeScalar(e, mapKeyNumber, ent.Key)
				if f.Type == schema.TypeMessage {
					e.EncodeTag(mapValueNumber, WireBytes)
					e.Fork()
					fr.joins = 2
					return ent.Value.msg
				}
				encodeScalar(e, mapValueNumber, ent.Value)
				e.Join()
			}

		case f.Label == schema.LabelPacked:
			list := fr.inst.lists[f.Number]
			if len(list) > 0 {
				e.EncodeTag(num, WireBytes)
				e.Fork()
				for _, v := range list {
					encodeScalarValue(e, v)
				}
				e.Join()
			}

		case f.IsList():
			list := fr.inst.lists[f.Number]
			for fr.elem < len(list) {
				v := list[fr.elem]
				fr.elem++
				if f.Type == schema.TypeMessage {
					e.EncodeTag(num, WireBytes)
					e.Fork()
					fr.joins = 1
					return v.msg
				}
				encodeScalar(e, num, v)
			}

		default:
			v, ok := fr.inst.values[f.Number]
			if ok && f.Type == schema.TypeMessage {
				fr.next()
				e.EncodeTag(num, WireBytes)
				e.Fork()
				fr.joins = 1
				return v.msg
			}
			if ok {
				encodeScalar(e, num, v)
			}
		}
		fr.next()
	}
	return nil
}

func encodeScalar(e *Encoder, num FieldNumber, v Value) {
	e.EncodeTag(num, wireTypeOf(v.typ))
	encodeScalarValue(e, v)
}

// encodeScalarValue writes v without a tag.
func encodeScalarValue(e *Encoder, v Value) {
	switch v.typ {
	case schema.TypeSint32:
		e.EncodeZigZag32(int32(v.num))
	case schema.TypeSint64:
		e.EncodeZigZag64(int64(v.num))
	case schema.TypeString, schema.TypeBytes:
		e.EncodeBytes(v.bytes)
	case schema.TypeFloat, schema.TypeFixed32, schema.TypeSfixed32:
		e.EncodeFixed32(uint32(v.num))
	case schema.TypeDouble, schema.TypeFixed64, schema.TypeSfixed64:
		e.EncodeFixed64(v.num)
	default:
		e.EncodeVarint(v.num)
	}
}
