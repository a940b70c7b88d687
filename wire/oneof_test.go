package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/testing/protopack"
)

func TestOneofSetClearsSiblings(t *testing.T) {
	m := NewInstance(choiceDesc)
	assert.Equal(t, "", m.WhichOneof("kind"))

	mustSet(t, m, "number", Int32(5))
	assert.Equal(t, "number", m.WhichOneof("kind"))

	mustSet(t, m, "text", String("hello"))
	assert.Equal(t, "text", m.WhichOneof("kind"))
	assert.False(t, m.Has("number"))

	leaf, err := m.Mutable("leaf")
	require.NoError(t, err)
	mustSet(t, leaf, "id", Int32(1))
	assert.Equal(t, "leaf", m.WhichOneof("kind"))
	assert.False(t, m.Has("text"))

	assert.Equal(t, protopack.Message{
		protopack.Tag{Number: 4, Type: protopack.BytesType}, protopack.LengthPrefix{
			protopack.Tag{Number: 2, Type: protopack.VarintType}, protopack.Varint(1),
		},
	}.Marshal(), Marshal(m))
}

func TestOneofZeroMemberIsEmitted(t *testing.T) {
	m := NewInstance(choiceDesc)
	mustSet(t, m, "number", Int32(0))
	assert.Equal(t, "number", m.WhichOneof("kind"))

	b := Marshal(m)
	assert.Equal(t, protopack.Message{
		protopack.Tag{Number: 2, Type: protopack.VarintType}, protopack.Varint(0),
	}.Marshal(), b)

	decoded, err := Unmarshal(b, choiceDesc)
	require.NoError(t, err)
	assert.Equal(t, "number", decoded.WhichOneof("kind"))
	assert.True(t, m.Equal(decoded))
}

func TestOneofDecodeLastWins(t *testing.T) {
	in := protopack.Message{
		protopack.Tag{Number: 3, Type: protopack.BytesType}, protopack.String("first"),
		protopack.Tag{Number: 1, Type: protopack.BytesType}, protopack.String("t"),
		protopack.Tag{Number: 2, Type: protopack.VarintType}, protopack.Varint(42),
	}.Marshal()

	m, err := Unmarshal(in, choiceDesc)
	require.NoError(t, err)
	assert.Equal(t, "number", m.WhichOneof("kind"))
	assert.Equal(t, int32(42), m.Get("number").Int32())
	assert.False(t, m.Has("text"))
	assert.Equal(t, "t", m.Get("tag").String())

	// Re-encoding emits only the surviving member.
	assert.Equal(t, protopack.Message{
		protopack.Tag{Number: 1, Type: protopack.BytesType}, protopack.String("t"),
		protopack.Tag{Number: 2, Type: protopack.VarintType}, protopack.Varint(42),
	}.Marshal(), Marshal(m))
}

func TestOneofMessageMemberMergesOnlyWhenActive(t *testing.T) {
	in := protopack.Message{
		protopack.Tag{Number: 4, Type: protopack.BytesType}, protopack.LengthPrefix{
			protopack.Tag{Number: 1, Type: protopack.BytesType}, protopack.String("a"),
		},
		protopack.Tag{Number: 3, Type: protopack.BytesType}, protopack.String("between"),
		protopack.Tag{Number: 4, Type: protopack.BytesType}, protopack.LengthPrefix{
			protopack.Tag{Number: 2, Type: protopack.VarintType}, protopack.Varint(7),
		},
	}.Marshal()

	m, err := Unmarshal(in, choiceDesc)
	require.NoError(t, err)
	assert.Equal(t, "leaf", m.WhichOneof("kind"))
	leaf := m.Get("leaf").Message()
	assert.False(t, leaf.Has("name"))
	assert.Equal(t, int32(7), leaf.Get("id").Int32())
}

func TestClearOneof(t *testing.T) {
	m := NewInstance(choiceDesc)
	mustSet(t, m, "text", String("x"))
	m.ClearOneof("kind")
	assert.Equal(t, "", m.WhichOneof("kind"))
	assert.False(t, m.Has("text"))
	assert.Empty(t, Marshal(m))

	mustSet(t, m, "number", Int32(3))
	m.Clear("number")
	assert.Equal(t, "", m.WhichOneof("kind"))

	// Clearing a non-member leaves the group alone.
	mustSet(t, m, "number", Int32(3))
	m.Clear("tag")
	assert.Equal(t, "number", m.WhichOneof("kind"))
}
