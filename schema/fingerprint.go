package schema

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Fingerprint is a BLAKE3 digest of a message shape and every shape reachable
// from it. Two descriptors with the same fingerprint encode and decode
// identically.
type Fingerprint [32]byte

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// FingerprintOf computes the fingerprint of msg. Field and message names are
// part of the digest; field order is too, since it fixes emission order.
func FingerprintOf(msg *Message) Fingerprint {
	h := blake3.New()
	Walk(msg, func(m *Message) bool {
		fmt.Fprintf(h, "message %q {\n", m.Name)
		for _, o := range m.Oneofs {
			fmt.Fprintf(h, "  oneof %q\n", o.Name)
		}
		for _, f := range m.Fields {
			fmt.Fprintf(h, "  %d %q %s %s key=%q oneof=%q optional=%t",
				f.Number, f.Name, f.Label, f.Type, f.MapKey, f.Oneof, f.Optional)
			if f.Message != nil {
				fmt.Fprintf(h, " message=%q", f.Message.Name)
			}
			if f.Enum != nil {
				fmt.Fprintf(h, " enum=%q", f.Enum.Name)
			}
			h.Write([]byte{'\n'})
		}
		h.Write([]byte("}\n"))
		return true
	})
	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp
}
