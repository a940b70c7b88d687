package wire

// DECODER METHODS

// DecodeLengthDelimited reads a length prefix and returns the bounds of the
// payload that follows without copying it. The decoder is advanced past the
// payload. A length beyond the remaining input fails with ErrTruncatedMessage.
func (d *Decoder) DecodeLengthDelimited() (start, length int, err error) {
	n, err := d.DecodeVarint()
	if err != nil {
		return 0, 0, err
	}
	if n > uint64(d.end-d.pos) {
		return 0, 0, ErrTruncatedMessage
	}
	start, length = d.pos, int(n)
	d.pos += length
	return start, length, nil
}

// DecodeRawBytes decodes a length-delimited payload as a slice sharing the
// underlying buffer. The capacity is clipped so appends cannot overwrite
// trailing input.
func (d *Decoder) DecodeRawBytes() ([]byte, error) {
	start, length, err := d.DecodeLengthDelimited()
	if err != nil {
		return nil, err
	}
	return d.buf[start : start+length : start+length], nil
}

// DecodeBytes decodes a length-delimited payload into a fresh copy.
func (d *Decoder) DecodeBytes() ([]byte, error) {
	raw, err := d.DecodeRawBytes()
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(raw))
	copy(data, raw)
	return data, nil
}

// ENCODER METHODS

// EncodeBytes encodes a byte array as length-delimited
func (e *Encoder) EncodeBytes(data []byte) {
	e.buf = AppendVarint(e.buf, uint64(len(data)))
	e.buf = append(e.buf, data...)
}

// EncodeString encodes a string as length-delimited bytes
func (e *Encoder) EncodeString(s string) {
	e.buf = AppendVarint(e.buf, uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// EncodeRaw appends data without a length prefix.
func (e *Encoder) EncodeRaw(data []byte) {
	e.buf = append(e.buf, data...)
}

// UTILITY FUNCTIONS

// BytesSize returns the size needed to encode the given bytes
func BytesSize(data []byte) int {
	return VarintSize(uint64(len(data))) + len(data)
}
