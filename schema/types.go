package schema

import (
	"sync"
)

// Field number limits shared by descriptors and the wire codec.
const (
	MinFieldNumber      int32 = 1
	MaxFieldNumber      int32 = 1<<29 - 1
	FirstReservedNumber int32 = 19000
	LastReservedNumber  int32 = 19999
)

// Message describes one message shape: its fields in declaration order and the
// oneof groups it declares. A Message must not be modified once it has been
// validated or handed to the codec.
type Message struct {
	Name   string   `json:"name"`   // fully qualified, e.g. "d2m.ClientHello"
	Fields []*Field `json:"fields"` // declaration order, which is also emission order
	Oneofs []*Oneof `json:"oneofs"` // oneof groups

	once  sync.Once
	index *messageIndex
}

// Field describes a single field of a message.
//
// For map fields Label is LabelMap, MapKey holds the key type and Type, Message
// and Enum describe the value.
type Field struct {
	Name     string     `json:"name"`               // "session_id"
	Number   int32      `json:"number"`             // 1
	Label    FieldLabel `json:"label"`              // singular, repeated, packed, map
	Type     Type       `json:"type"`               // value type
	Message  *Message   `json:"-"`                  // for TypeMessage
	Enum     *Enum      `json:"-"`                  // for TypeEnum, optional
	MapKey   Type       `json:"map_key,omitempty"`  // for LabelMap
	Oneof    string     `json:"oneof,omitempty"`    // owning oneof group, if any
	Optional bool       `json:"optional,omitempty"` // explicit presence tracking
}

// Oneof declares a group of fields of which at most one may be set. Members
// are the fields whose Oneof names this group.
type Oneof struct {
	Name string `json:"name"` // "content"
}

// FieldLabel represents the cardinality of a field.
type FieldLabel int

const (
	LabelSingular FieldLabel = iota
	LabelRepeated
	LabelPacked
	LabelMap
)

func (l FieldLabel) String() string {
	switch l {
	case LabelSingular:
		return "singular"
	case LabelRepeated:
		return "repeated"
	case LabelPacked:
		return "packed"
	case LabelMap:
		return "map"
	default:
		return "invalid"
	}
}

// Type represents the semantic type of a field value.
type Type string

const (
	TypeBool     Type = "bool"
	TypeInt32    Type = "int32"
	TypeInt64    Type = "int64"
	TypeUint32   Type = "uint32"
	TypeUint64   Type = "uint64"
	TypeSint32   Type = "sint32"
	TypeSint64   Type = "sint64"
	TypeFixed32  Type = "fixed32"
	TypeFixed64  Type = "fixed64"
	TypeSfixed32 Type = "sfixed32"
	TypeSfixed64 Type = "sfixed64"
	TypeFloat    Type = "float"
	TypeDouble   Type = "double"
	TypeString   Type = "string"
	TypeBytes    Type = "bytes"
	TypeEnum     Type = "enum"
	TypeMessage  Type = "message"
)

var packedEligible = map[Type]struct{}{
	TypeBool:     {},
	TypeInt32:    {},
	TypeInt64:    {},
	TypeUint32:   {},
	TypeUint64:   {},
	TypeSint32:   {},
	TypeSint64:   {},
	TypeFixed32:  {},
	TypeFixed64:  {},
	TypeSfixed32: {},
	TypeSfixed64: {},
	TypeFloat:    {},
	TypeDouble:   {},
	TypeEnum:     {},
}

// IsPackable reports whether repeated values of t may be encoded as one
// length-delimited run.
func (t Type) IsPackable() bool {
	_, ok := packedEligible[t]
	return ok
}

// IsMapKey reports whether t may be used as a map key: any integral type,
// bool or string.
func (t Type) IsMapKey() bool {
	switch t {
	case TypeFloat, TypeDouble, TypeBytes, TypeEnum, TypeMessage:
		return false
	}
	return t.IsValid()
}

// IsValid reports whether t is one of the declared types.
func (t Type) IsValid() bool {
	return t.IsPackable() || t == TypeString || t == TypeBytes || t == TypeMessage
}

// IsList reports whether the field holds a list of values.
func (f *Field) IsList() bool {
	return f.Label == LabelRepeated || f.Label == LabelPacked
}

// IsMap reports whether the field is an associative map.
func (f *Field) IsMap() bool {
	return f.Label == LabelMap
}

// HasPresence reports whether a set field is emitted even when it holds its
// type's zero value. Message fields, oneof members and fields declared
// optional track presence; every other singular field is omitted at zero.
func (f *Field) HasPresence() bool {
	if f.Label != LabelSingular {
		return false
	}
	return f.Optional || f.Oneof != "" || f.Type == TypeMessage
}

// Enum represents an enum definition. Enums are open: numbers without a
// declared name are still valid values.
type Enum struct {
	Name   string       `json:"name"`   // "d2m.DeviceSlotState"
	Values []*EnumValue `json:"values"` // enum values
}

// EnumValue represents an enum value
type EnumValue struct {
	Name   string `json:"name"`   // "NEW"
	Number int32  `json:"number"` // 0
}

// ValueName returns the declared name for number, or "" when undeclared.
func (e *Enum) ValueName(number int32) string {
	for _, v := range e.Values {
		if v.Number == number {
			return v.Name
		}
	}
	return ""
}

type messageIndex struct {
	byNumber map[int32]*Field
	byName   map[string]*Field
	oneofs   map[string]*Oneof
	members  map[string][]*Field
}

func (m *Message) lookup() *messageIndex {
	m.once.Do(func() {
		idx := &messageIndex{
			byNumber: make(map[int32]*Field, len(m.Fields)),
			byName:   make(map[string]*Field, len(m.Fields)),
			oneofs:   make(map[string]*Oneof, len(m.Oneofs)),
			members:  make(map[string][]*Field, len(m.Oneofs)),
		}
		for _, f := range m.Fields {
			if _, dup := idx.byNumber[f.Number]; !dup {
				idx.byNumber[f.Number] = f
			}
			if _, dup := idx.byName[f.Name]; !dup {
				idx.byName[f.Name] = f
			}
			if f.Oneof != "" {
				idx.members[f.Oneof] = append(idx.members[f.Oneof], f)
			}
		}
		for _, o := range m.Oneofs {
			idx.oneofs[o.Name] = o
		}
		m.index = idx
	})
	return m.index
}

// FieldByNumber returns the field with the given number, or nil.
func (m *Message) FieldByNumber(number int32) *Field {
	return m.lookup().byNumber[number]
}

// FieldByName returns the field with the given name, or nil.
func (m *Message) FieldByName(name string) *Field {
	return m.lookup().byName[name]
}

// OneofByName returns the declared oneof group with the given name, or nil.
func (m *Message) OneofByName(name string) *Oneof {
	return m.lookup().oneofs[name]
}

// OneofMembers returns the member fields of the named group in declaration
// order.
func (m *Message) OneofMembers(name string) []*Field {
	return m.lookup().members[name]
}
