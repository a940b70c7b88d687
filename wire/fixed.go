package wire

import (
	"encoding/binary"
)

// DECODER METHODS

// DecodeFixed32 decodes 4 little-endian bytes.
func (d *Decoder) DecodeFixed32() (uint32, error) {
	if d.end-d.pos < 4 {
		return 0, ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v, nil
}

// DecodeFixed64 decodes 8 little-endian bytes.
func (d *Decoder) DecodeFixed64() (uint64, error) {
	if d.end-d.pos < 8 {
		return 0, ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint64(d.buf[d.pos:])
	d.pos += 8
	return v, nil
}

// ENCODER METHODS

// EncodeFixed32 encodes a 32-bit fixed-width value
func (e *Encoder) EncodeFixed32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

// EncodeFixed64 encodes a 64-bit fixed-width value
func (e *Encoder) EncodeFixed64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}
