package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/testing/protopack"
)

func TestDecoderFixed(t *testing.T) {
	in := protopack.Message{
		protopack.Uint32(0xdeadbeef),
		protopack.Uint64(0x0102030405060708),
	}.Marshal()

	d := NewDecoder(in)
	v32, err := d.DecodeFixed32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), v32)

	v64, err := d.DecodeFixed64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), v64)
	assert.True(t, d.Done())
}

func TestDecoderFixedPastEnd(t *testing.T) {
	_, err := NewDecoder([]byte{1, 2, 3}).DecodeFixed32()
	assert.ErrorIs(t, err, ErrUnexpectedEOF)

	_, err = NewDecoder([]byte{1, 2, 3, 4, 5, 6, 7}).DecodeFixed64()
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestDecoderLengthDelimited(t *testing.T) {
	in := []byte{0x03, 'a', 'b', 'c', 0xff}
	d := NewDecoder(in)
	start, n, err := d.DecodeLengthDelimited()
	require.NoError(t, err)
	assert.Equal(t, 1, start)
	assert.Equal(t, 3, n)
	assert.Equal(t, 4, d.Position())
	assert.Equal(t, 1, d.Remaining())
}

func TestDecoderLengthBeyondRemaining(t *testing.T) {
	_, _, err := NewDecoder([]byte{0x05, 'a', 'b'}).DecodeLengthDelimited()
	assert.ErrorIs(t, err, ErrTruncatedMessage)

	// A huge declared length must not overflow the bounds check.
	in := protopack.Message{protopack.Uvarint(1 << 62)}.Marshal()
	_, _, err = NewDecoder(in).DecodeLengthDelimited()
	assert.ErrorIs(t, err, ErrTruncatedMessage)
}

func TestDecoderNestedEndIsClamped(t *testing.T) {
	// An inner decoder never reads past its parent's end, even when the
	// buffer continues.
	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	parent := &Decoder{buf: buf, pos: 0, end: 4}
	child := parent.window(2, 10)
	assert.Equal(t, 4, child.End())
	assert.Equal(t, 2, child.Remaining())

	_, err := child.DecodeFixed32()
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestDecoderSub(t *testing.T) {
	d := NewDecoder([]byte{0x08, 0x01, 0x10, 0x02})
	sub, err := d.Sub(2)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Position())

	num, wt, err := sub.DecodeTag()
	require.NoError(t, err)
	assert.Equal(t, FieldNumber(1), num)
	assert.Equal(t, WireVarint, wt)
	_, err = sub.DecodeVarint()
	require.NoError(t, err)
	assert.True(t, sub.Done())

	_, err = d.Sub(3)
	assert.ErrorIs(t, err, ErrTruncatedMessage)
}

func TestDecoderBytesAreCopied(t *testing.T) {
	in := []byte{0x02, 'h', 'i'}
	got, err := NewDecoder(in).DecodeBytes()
	require.NoError(t, err)
	in[1] = 'x'
	assert.Equal(t, []byte("hi"), got)

	raw, err := NewDecoder(in).DecodeRawBytes()
	require.NoError(t, err)
	assert.Equal(t, 2, cap(raw))
}

func TestSkipField(t *testing.T) {
	tests := []struct {
		name string
		wt   WireType
		in   protopack.Message
		err  error
	}{
		{"varint", WireVarint, protopack.Message{protopack.Varint(-1)}, nil},
		{"fixed32", WireFixed32, protopack.Message{protopack.Uint32(1)}, nil},
		{"fixed64", WireFixed64, protopack.Message{protopack.Float64(1.5)}, nil},
		{"bytes", WireBytes, protopack.Message{protopack.String("skip me")}, nil},
		{"short fixed32", WireFixed32, protopack.Message{protopack.Raw{1, 2}}, ErrUnexpectedEOF},
		{"short fixed64", WireFixed64, protopack.Message{protopack.Raw{1, 2, 3, 4}}, ErrUnexpectedEOF},
		{"short bytes", WireBytes, protopack.Message{protopack.Raw{0x09, 'a'}}, ErrTruncatedMessage},
		{"group", WireStartGroup, protopack.Message{}, ErrInvalidWireType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(tt.in.Marshal())
			err := d.SkipField(tt.wt)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.True(t, d.Done())
		})
	}
}

func TestSkipUnknownReturnsRawField(t *testing.T) {
	in := protopack.Message{
		protopack.Tag{Number: 99, Type: protopack.BytesType}, protopack.Bytes{1, 2, 3},
		protopack.Tag{Number: 1, Type: protopack.VarintType}, protopack.Varint(5),
	}.Marshal()

	d := NewDecoder(in)
	num, wt, err := d.DecodeTag()
	require.NoError(t, err)
	assert.Equal(t, FieldNumber(99), num)

	raw, err := d.skipUnknown(0, wt)
	require.NoError(t, err)
	assert.Equal(t, protopack.Message{
		protopack.Tag{Number: 99, Type: protopack.BytesType}, protopack.Bytes{1, 2, 3},
	}.Marshal(), raw)
}
