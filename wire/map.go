package wire

import (
	"fmt"
	"slices"

	"github.com/anirudhraja/tagwire/schema"
)

// Map entries are encoded as a repeated length-delimited message with the key
// in field 1 and the value in field 2.
const (
	mapKeyNumber   FieldNumber = 1
	mapValueNumber FieldNumber = 2
)

// PutEntry inserts or replaces the entry for key in a map field.
func (m *Instance) PutEntry(name string, key, value Value) error {
	f, err := m.field(name)
	if err != nil {
		return err
	}
	if !f.IsMap() {
		return fmt.Errorf("%w: field %s is not a map", ErrTypeMismatch, f.Name)
	}
	if key.typ != f.MapKey {
		return fmt.Errorf("%w: map %s has %s keys, got %s", ErrTypeMismatch, f.Name, f.MapKey, key.typ)
	}
	if err := m.checkValue(f, value); err != nil {
		return err
	}
	m.putEntry(f, key.MapKey(), value)
	return nil
}

func (m *Instance) putEntry(f *schema.Field, key MapKey, value Value) {
	if m.maps == nil {
		m.maps = make(map[int32]map[MapKey]Value)
	}
	entries := m.maps[f.Number]
	if entries == nil {
		entries = make(map[MapKey]Value)
		m.maps[f.Number] = entries
	}
	entries[key] = value
}

// Entry returns the value stored under key in a map field.
func (m *Instance) Entry(name string, key Value) (Value, bool) {
	f := m.desc.FieldByName(name)
	if f == nil || !f.IsMap() || key.typ != f.MapKey {
		return Value{}, false
	}
	v, ok := m.maps[f.Number][key.MapKey()]
	return v, ok
}

// DeleteEntry removes key from a map field.
func (m *Instance) DeleteEntry(name string, key Value) {
	f := m.desc.FieldByName(name)
	if f == nil || !f.IsMap() || key.typ != f.MapKey {
		return
	}
	entries := m.maps[f.Number]
	delete(entries, key.MapKey())
	if len(entries) == 0 {
		delete(m.maps, f.Number)
	}
}

// Entries returns the entries of a map field sorted by key.
func (m *Instance) Entries(name string) []Entry {
	f := m.desc.FieldByName(name)
	if f == nil || !f.IsMap() {
		return nil
	}
	return m.entries(f)
}

func (m *Instance) entries(f *schema.Field) []Entry {
	entries := m.maps[f.Number]
	if len(entries) == 0 {
		return nil
	}
	keys := make([]MapKey, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b MapKey) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = Entry{Key: k.Value(), Value: entries[k]}
	}
	return out
}

// decodeMapEntry decodes one entry and inserts it, replacing an earlier entry
// with the same key. Missing keys and values take their type's zero value;
// a missing message value becomes an empty instance. Unknown entry fields are
// skipped.
func (o UnmarshalOptions) decodeMapEntry(d *Decoder, m *Instance, f *schema.Field, depth int) error {
	start, n, err := d.DecodeLengthDelimited()
	if err != nil {
		return err
	}
	ed := d.window(start, n)

	key := zeroValue(f.MapKey)
	value := zeroValue(f.Type)
	for !ed.Done() {
		num, wt, err := ed.DecodeTag()
		if err != nil {
			return err
		}

		switch num {
		case mapKeyNumber:
			key, err = o.decodeScalar(ed, f.MapKey, wt)
			if err != nil {
				return wrapWithField(err, "key")
			}
		case mapValueNumber:
			if f.Type == schema.TypeMessage {
				if wt != WireBytes {
					return wrapWithField(mismatch(f.Type, wt), "value")
				}
				if value.msg == nil {
					value = MessageValue(NewInstance(f.Message))
				}
				err = o.decodeNested(ed, value.msg, depth)
			} else {
				value, err = o.decodeScalar(ed, f.Type, wt)
			}
			if err != nil {
				return wrapWithField(err, "value")
			}
		default:
			if err := ed.SkipField(wt); err != nil {
				return err
			}
		}
	}

	if f.Type == schema.TypeMessage && value.msg == nil {
		value = MessageValue(NewInstance(f.Message))
	}
	m.putEntry(f, key.MapKey(), value)
	return nil
}
