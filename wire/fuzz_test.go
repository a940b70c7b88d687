package wire

import (
	"testing"

	"google.golang.org/protobuf/testing/protopack"
)

func FuzzUnmarshal(f *testing.F) {
	seed := NewInstance(allTypesDesc)
	_ = seed.Set("f_sint32", Sint32(-9))
	_ = seed.Set("f_string", String("seed"))
	_ = seed.Append("packed_int32", Int32(1), Int32(-1))
	_ = seed.PutEntry("counts", String("k"), Int64(3))
	leaf, _ := seed.Mutable("leaf")
	_ = leaf.Set("id", Int32(2))

	f.Add(Marshal(seed))
	f.Add(Marshal(buildChain(8)))
	f.Add([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01})
	f.Add(protopack.Message{
		protopack.Tag{Number: 22, Type: protopack.BytesType}, protopack.Denormalized{Count: 3, Value: protopack.LengthPrefix{}},
	}.Marshal())

	f.Fuzz(func(t *testing.T, b []byte) {
		for _, opts := range []UnmarshalOptions{{}, {PreserveUnknown: true, ValidateUTF8: true, RecursionLimit: 16}} {
			m, err := opts.Unmarshal(b, allTypesDesc)
			if err != nil {
				continue
			}

			// Whatever decodes must re-encode to something that decodes to the
			// same instance.
			again, err := opts.Unmarshal(Marshal(m), allTypesDesc)
			if err != nil {
				t.Fatalf("re-decoding canonical encoding: %v", err)
			}
			if !m.Equal(again) {
				t.Fatalf("canonical encoding does not round trip")
			}
		}

		_, _ = Unmarshal(b, nodeDesc)
		_, _ = Unmarshal(b, choiceDesc)
	})
}
