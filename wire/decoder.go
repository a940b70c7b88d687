package wire

import (
	"fmt"
)

// Decoder handles low-level protobuf wire format decoding. It reads from
// buf[pos:end]; nested decoders share buf and narrow end to the payload of a
// length-delimited field.
type Decoder struct {
	buf []byte
	pos int
	end int
}

// NewDecoder creates a new wire format decoder
func NewDecoder(data []byte) *Decoder {
	return &Decoder{
		buf: data,
		pos: 0,
		end: len(data),
	}
}

// window returns a decoder over n bytes starting at start. The end is clamped
// to the parent's end so a nested reader never sees past its enclosing
// message.
func (d *Decoder) window(start, n int) *Decoder {
	end := start + n
	if end > d.end {
		end = d.end
	}
	return &Decoder{buf: d.buf, pos: start, end: end}
}

// Position returns the offset of the next unread byte.
func (d *Decoder) Position() int {
	return d.pos
}

// Remaining returns the number of unread bytes before the end.
func (d *Decoder) Remaining() int {
	return d.end - d.pos
}

// End returns the offset one past the last readable byte.
func (d *Decoder) End() int {
	return d.end
}

// Done reports whether every byte has been consumed.
func (d *Decoder) Done() bool {
	return d.pos >= d.end
}

// DecodeTag reads a field tag. Field number 0, numbers above the 29-bit
// limit and the group and reserved wire types are rejected.
func (d *Decoder) DecodeTag() (FieldNumber, WireType, error) {
	v, err := d.DecodeVarint()
	if err != nil {
		return 0, 0, err
	}
	if v>>3 == 0 || v>>3 > uint64(maxFieldNumber) {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidFieldNumber, v>>3)
	}
	num, wt := ParseTag(Tag(v))
	if !wt.IsValid() {
		return 0, 0, fmt.Errorf("%w: %d for field %d", ErrInvalidWireType, int8(wt), num)
	}
	return num, wt, nil
}

// Skip advances past n bytes.
func (d *Decoder) Skip(n int) error {
	if n < 0 || n > d.end-d.pos {
		return ErrUnexpectedEOF
	}
	d.pos += n
	return nil
}

// Sub returns a decoder over the next length bytes and advances d past them.
// A length beyond the remaining input fails with ErrTruncatedMessage.
func (d *Decoder) Sub(length int) (*Decoder, error) {
	if length < 0 || length > d.end-d.pos {
		return nil, ErrTruncatedMessage
	}
	sub := d.window(d.pos, length)
	d.pos += length
	return sub, nil
}
