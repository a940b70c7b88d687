package wire

import (
	"bytes"
	"fmt"

	"github.com/anirudhraja/tagwire/schema"
)

// Instance holds the decoded values of one message, keyed by field number.
//
// Singular fields without presence are never stored at their zero value, so
// Has reports false for them and they are not emitted.
type Instance struct {
	desc    *schema.Message
	values  map[int32]Value
	lists   map[int32][]Value
	maps    map[int32]map[MapKey]Value
	oneofs  map[string]int32
	unknown []byte
}

// NewInstance returns an empty instance of desc.
func NewInstance(desc *schema.Message) *Instance {
	return &Instance{desc: desc}
}

// Descriptor returns the message descriptor of m.
func (m *Instance) Descriptor() *schema.Message {
	return m.desc
}

func (m *Instance) field(name string) (*schema.Field, error) {
	f := m.desc.FieldByName(name)
	if f == nil {
		return nil, fmt.Errorf("%w: %s has no field %q", ErrUnknownField, m.desc.Name, name)
	}
	return f, nil
}

// checkValue verifies that v may be stored in f.
func (m *Instance) checkValue(f *schema.Field, v Value) error {
	if v.typ != f.Type {
		return fmt.Errorf("%w: field %s is %s, got %s", ErrTypeMismatch, f.Name, f.Type, v.typ)
	}
	if f.Type != schema.TypeMessage {
		return nil
	}
	if v.msg == nil {
		return fmt.Errorf("%w: field %s: nil message", ErrTypeMismatch, f.Name)
	}
	if v.msg.desc != f.Message {
		return fmt.Errorf("%w: field %s expects %s, got %s", ErrTypeMismatch, f.Name, f.Message.Name, v.msg.desc.Name)
	}
	if v.msg.reaches(m) {
		return fmt.Errorf("%w: field %s: instance would contain itself", ErrTypeMismatch, f.Name)
	}
	return nil
}

// reaches reports whether target is m or nested anywhere below m.
func (m *Instance) reaches(target *Instance) bool {
	stack := []*Instance{m}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == target {
			return true
		}
		for _, v := range cur.values {
			if v.msg != nil {
				stack = append(stack, v.msg)
			}
		}
		for _, list := range cur.lists {
			for _, v := range list {
				if v.msg != nil {
					stack = append(stack, v.msg)
				}
			}
		}
		for _, entries := range cur.maps {
			for _, v := range entries {
				if v.msg != nil {
					stack = append(stack, v.msg)
				}
			}
		}
	}
	return false
}

// Set assigns a singular field. Setting a oneof member clears its siblings.
// Setting the zero value of a field without presence clears it.
func (m *Instance) Set(name string, v Value) error {
	f, err := m.field(name)
	if err != nil {
		return err
	}
	if f.Label != schema.LabelSingular {
		return fmt.Errorf("%w: field %s is %s", ErrTypeMismatch, f.Name, f.Label)
	}
	if err := m.checkValue(f, v); err != nil {
		return err
	}
	m.store(f, v)
	return nil
}

// store assigns an already checked singular value.
func (m *Instance) store(f *schema.Field, v Value) {
	if f.Oneof != "" {
		m.selectOneof(f)
	}
	if !f.HasPresence() && v.IsZero() {
		delete(m.values, f.Number)
		return
	}
	if m.values == nil {
		m.values = make(map[int32]Value)
	}
	m.values[f.Number] = v
}

// Get returns the value of a singular field, or its type's zero value when
// unset. Unset message fields yield a Value whose Message is nil.
func (m *Instance) Get(name string) Value {
	f := m.desc.FieldByName(name)
	if f == nil || f.Label != schema.LabelSingular {
		return Value{}
	}
	if v, ok := m.values[f.Number]; ok {
		return v
	}
	return zeroValue(f.Type)
}

// Has reports whether a field is set: a stored singular value, or a non-empty
// list or map.
func (m *Instance) Has(name string) bool {
	f := m.desc.FieldByName(name)
	if f == nil {
		return false
	}
	return m.has(f)
}

func (m *Instance) has(f *schema.Field) bool {
	switch {
	case f.IsList():
		return len(m.lists[f.Number]) > 0
	case f.IsMap():
		return len(m.maps[f.Number]) > 0
	default:
		_, ok := m.values[f.Number]
		return ok
	}
}

// Clear unsets a field of any cardinality.
func (m *Instance) Clear(name string) {
	f := m.desc.FieldByName(name)
	if f == nil {
		return
	}
	m.clear(f)
}

func (m *Instance) clear(f *schema.Field) {
	delete(m.values, f.Number)
	delete(m.lists, f.Number)
	delete(m.maps, f.Number)
	if f.Oneof != "" && m.oneofs[f.Oneof] == f.Number {
		delete(m.oneofs, f.Oneof)
	}
}

// Mutable returns the instance stored in a singular message field, creating
// and setting an empty one first when the field is unset.
func (m *Instance) Mutable(name string) (*Instance, error) {
	f, err := m.field(name)
	if err != nil {
		return nil, err
	}
	if f.Label != schema.LabelSingular || f.Type != schema.TypeMessage {
		return nil, fmt.Errorf("%w: field %s is not a singular message", ErrTypeMismatch, f.Name)
	}
	return m.mutable(f), nil
}

func (m *Instance) mutable(f *schema.Field) *Instance {
	if v, ok := m.values[f.Number]; ok && v.msg != nil {
		return v.msg
	}
	child := NewInstance(f.Message)
	m.store(f, MessageValue(child))
	return child
}

// Append adds values to a repeated field.
func (m *Instance) Append(name string, vs ...Value) error {
	f, err := m.field(name)
	if err != nil {
		return err
	}
	if !f.IsList() {
		return fmt.Errorf("%w: field %s is not repeated", ErrTypeMismatch, f.Name)
	}
	for _, v := range vs {
		if err := m.checkValue(f, v); err != nil {
			return err
		}
	}
	m.appendValues(f, vs...)
	return nil
}

func (m *Instance) appendValues(f *schema.Field, vs ...Value) {
	if len(vs) == 0 {
		return
	}
	if m.lists == nil {
		m.lists = make(map[int32][]Value)
	}
	m.lists[f.Number] = append(m.lists[f.Number], vs...)
}

// List returns the elements of a repeated field in order.
func (m *Instance) List(name string) []Value {
	f := m.desc.FieldByName(name)
	if f == nil {
		return nil
	}
	return m.lists[f.Number]
}

// Len returns the number of elements of a repeated or map field, or 1 for a
// set singular field.
func (m *Instance) Len(name string) int {
	f := m.desc.FieldByName(name)
	if f == nil {
		return 0
	}
	switch {
	case f.IsList():
		return len(m.lists[f.Number])
	case f.IsMap():
		return len(m.maps[f.Number])
	case m.has(f):
		return 1
	default:
		return 0
	}
}

// SetFields returns the fields that are set, in declaration order.
func (m *Instance) SetFields() []*schema.Field {
	var out []*schema.Field
	for _, f := range m.desc.Fields {
		if m.has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Unknown returns the raw bytes of fields that were not in the descriptor,
// kept only when decoding with PreserveUnknown.
func (m *Instance) Unknown() []byte {
	return m.unknown
}

// ClearUnknown drops preserved unknown fields.
func (m *Instance) ClearUnknown() {
	m.unknown = nil
}

// Equal reports whether m and o have the same descriptor and the same set
// fields, compared by value. Map fields compare as sets of entries.
func (m *Instance) Equal(o *Instance) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.desc != o.desc || !bytes.Equal(m.unknown, o.unknown) {
		return false
	}
	if len(m.values) != len(o.values) || len(m.lists) != len(o.lists) || len(m.maps) != len(o.maps) {
		return false
	}
	for n, v := range m.values {
		ov, ok := o.values[n]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	for n, list := range m.lists {
		olist := o.lists[n]
		if len(list) != len(olist) {
			return false
		}
		for i := range list {
			if !list[i].Equal(olist[i]) {
				return false
			}
		}
	}
	for n, entries := range m.maps {
		oentries := o.maps[n]
		if len(entries) != len(oentries) {
			return false
		}
		for k, v := range entries {
			ov, ok := oentries[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
	}
	return true
}
