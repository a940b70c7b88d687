package tagwire

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/anirudhraja/tagwire/catalog"
	"github.com/anirudhraja/tagwire/registry"
	"github.com/anirudhraja/tagwire/schema"
	"github.com/anirudhraja/tagwire/wire"
)

func newCatalogCodec(t *testing.T, opts ...Option) *Codec {
	t.Helper()
	r, err := catalog.New()
	if err != nil {
		t.Fatalf("catalog.New failed: %v", err)
	}
	return New(append([]Option{WithRegistry(r)}, opts...)...)
}

func TestCodec_Register(t *testing.T) {
	codec := New()

	t.Run("empty_registry", func(t *testing.T) {
		if got := codec.ListMessages(); len(got) != 0 {
			t.Errorf("Expected no messages, got %v", got)
		}
	})

	t.Run("register_catalog", func(t *testing.T) {
		if err := codec.Register(catalog.All()...); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if _, err := codec.NewInstance("d2m.ClientHello"); err != nil {
			t.Errorf("NewInstance failed: %v", err)
		}
		if len(codec.ListEnums()) == 0 {
			t.Error("Expected enums to be registered")
		}
	})

	t.Run("invalid_descriptor", func(t *testing.T) {
		bad := &schema.Message{
			Name:   "test.Bad",
			Fields: []*schema.Field{{Name: "x", Number: 0, Type: schema.TypeInt32}},
		}
		err := codec.Register(bad)
		if !errors.Is(err, schema.ErrInvalidDescriptor) {
			t.Errorf("Expected ErrInvalidDescriptor, got %v", err)
		}
	})
}

func TestCodec_NewInstance(t *testing.T) {
	codec := newCatalogCodec(t)

	t.Run("short_name", func(t *testing.T) {
		inst, err := codec.NewInstance("VersionRange")
		if err != nil {
			t.Fatalf("NewInstance failed: %v", err)
		}
		if inst.Descriptor() != catalog.VersionRange {
			t.Errorf("Expected %s, got %s", catalog.VersionRange.Name, inst.Descriptor().Name)
		}
	})

	t.Run("unknown_message", func(t *testing.T) {
		_, err := codec.NewInstance("d2m.Nope")
		if !errors.Is(err, registry.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := newCatalogCodec(t)

	hello, err := codec.NewInstance("d2m.ClientHello")
	if err != nil {
		t.Fatalf("NewInstance failed: %v", err)
	}
	if err := hello.Set("version", wire.Uint32(1)); err != nil {
		t.Fatal(err)
	}
	if err := hello.Set("response", wire.Bytes([]byte{0xde, 0xad})); err != nil {
		t.Fatal(err)
	}
	if err := hello.Set("device_slots_exhausted_policy", wire.Enum(1)); err != nil {
		t.Fatal(err)
	}

	data := codec.Marshal(hello)
	if size := codec.Size(hello); size != len(data) {
		t.Errorf("Expected size %d, got %d", len(data), size)
	}
	got, err := codec.Unmarshal(data, "d2m.ClientHello")
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !hello.Equal(got) {
		t.Errorf("Round trip mismatch: %x", data)
	}
	if got.Get("device_slots_exhausted_policy").Enum() != 1 {
		t.Errorf("Expected DROP_LEAST_RECENT, got %v", got.Get("device_slots_exhausted_policy"))
	}
}

func TestCodec_Unmarshal(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	codec := newCatalogCodec(t, WithLogger(logger))

	t.Run("empty_data", func(t *testing.T) {
		inst, err := codec.Unmarshal(nil, "csp_e2e_fs.ForwardSecurityEnvelope")
		if err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if len(inst.SetFields()) != 0 {
			t.Errorf("Expected no set fields, got %d", len(inst.SetFields()))
		}
	})

	t.Run("unknown_message", func(t *testing.T) {
		_, err := codec.Unmarshal([]byte{0x08, 0x01}, "nope.Missing")
		if !errors.Is(err, registry.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		// session_id claims 5 bytes, 2 follow.
		_, err := codec.Unmarshal([]byte{0x0a, 0x05, 0x01, 0x02}, "csp_e2e_fs.ForwardSecurityEnvelope")
		if !errors.Is(err, wire.ErrTruncatedMessage) {
			t.Fatalf("Expected ErrTruncatedMessage, got %v", err)
		}
		var fe *wire.FieldError
		if !errors.As(err, &fe) || fe.Path() != "session_id" {
			t.Errorf("Expected error at session_id, got %v", err)
		}
		if !strings.Contains(logs.String(), "decode failed") {
			t.Errorf("Expected a debug log entry, got %q", logs.String())
		}
	})

	t.Run("wire_type_mismatch", func(t *testing.T) {
		// fssk sent as a varint inside init.
		_, err := codec.Unmarshal([]byte{0x12, 0x02, 0x08, 0x01}, "csp_e2e_fs.ForwardSecurityEnvelope")
		if !errors.Is(err, wire.ErrWireTypeMismatch) {
			t.Fatalf("Expected ErrWireTypeMismatch, got %v", err)
		}
		if !strings.Contains(err.Error(), "init.fssk") {
			t.Errorf("Expected path init.fssk in %q", err.Error())
		}
	})
}

func TestCodec_UnmarshalLength(t *testing.T) {
	codec := newCatalogCodec(t)

	ids, _ := codec.NewInstance("common.Identities")
	if err := ids.Append("identities", wire.String("AAAAAAAA")); err != nil {
		t.Fatal(err)
	}
	msg := codec.Marshal(ids)
	framed := append(append([]byte{}, msg...), 0xff, 0xff, 0xff)

	got, err := codec.UnmarshalLength(framed, len(msg), "common.Identities")
	if err != nil {
		t.Fatalf("UnmarshalLength failed: %v", err)
	}
	if got.Len("identities") != 1 {
		t.Errorf("Expected one identity, got %d", got.Len("identities"))
	}

	_, err = codec.UnmarshalLength(msg, len(msg)+1, "common.Identities")
	if !errors.Is(err, wire.ErrTruncatedMessage) {
		t.Errorf("Expected ErrTruncatedMessage, got %v", err)
	}
}

func TestCodec_PreserveUnknown(t *testing.T) {
	codec := newCatalogCodec(t, WithUnmarshalOptions(wire.UnmarshalOptions{PreserveUnknown: true}))

	// VersionRange with an extra field 3 from a newer revision.
	data := []byte{0x08, 0x80, 0x02, 0x18, 0x07}
	got, err := codec.Unmarshal(data, "csp_e2e_fs.VersionRange")
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !bytes.Equal(got.Unknown(), []byte{0x18, 0x07}) {
		t.Errorf("Expected preserved field 3, got %x", got.Unknown())
	}
	if out := codec.Marshal(got); !bytes.Equal(out, data) {
		t.Errorf("Expected %x, got %x", data, out)
	}
}
