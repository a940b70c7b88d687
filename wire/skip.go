package wire

import (
	"fmt"
)

// SkipField advances past one value of the given wire type without
// interpreting it: a varint is read and dropped, fixed values advance by 4 or
// 8 bytes and length-delimited values by their declared length.
func (d *Decoder) SkipField(wt WireType) error {
	switch wt {
	case WireVarint:
		_, err := d.DecodeVarint()
		return err
	case WireFixed64:
		return d.Skip(8)
	case WireBytes:
		_, _, err := d.DecodeLengthDelimited()
		return err
	case WireFixed32:
		return d.Skip(4)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidWireType, int8(wt))
	}
}

// skipUnknown skips the value of a field whose tag started at tagStart and
// returns the raw tag and value bytes. The slice shares the input buffer.
func (d *Decoder) skipUnknown(tagStart int, wt WireType) ([]byte, error) {
	if err := d.SkipField(wt); err != nil {
		return nil, err
	}
	return d.buf[tagStart:d.pos:d.pos], nil
}
