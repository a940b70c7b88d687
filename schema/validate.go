package schema

import (
	"errors"
	"fmt"
)

// ErrInvalidDescriptor is returned by Validate for descriptors that violate
// the schema rules.
var ErrInvalidDescriptor = errors.New("invalid descriptor")

// Validate checks msg and every message reachable from it. Recursive shapes
// are visited once.
func Validate(msg *Message) error {
	var err error
	Walk(msg, func(m *Message) bool {
		err = validateMessage(m)
		return err == nil
	})
	return err
}

// Walk calls fn for msg and each message reachable through its fields, depth
// first in declaration order, visiting each message once. Walk stops when fn
// returns false.
func Walk(msg *Message, fn func(*Message) bool) {
	if msg == nil {
		return
	}
	seen := map[*Message]bool{msg: true}
	stack := []*Message{msg}
	for len(stack) > 0 {
		m := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(m) {
			return
		}
		for i := len(m.Fields) - 1; i >= 0; i-- {
			next := m.Fields[i].Message
			if next != nil && !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
}

func invalid(m *Message, format string, args ...any) error {
	return fmt.Errorf("%w: message %s: %s", ErrInvalidDescriptor, m.Name, fmt.Sprintf(format, args...))
}

func validateMessage(m *Message) error {
	if m.Name == "" {
		return fmt.Errorf("%w: message without a name", ErrInvalidDescriptor)
	}

	declared := make(map[string]bool, len(m.Oneofs))
	for _, o := range m.Oneofs {
		if o == nil || o.Name == "" {
			return invalid(m, "oneof without a name")
		}
		if declared[o.Name] {
			return invalid(m, "duplicate oneof %q", o.Name)
		}
		declared[o.Name] = true
	}

	numbers := make(map[int32]string, len(m.Fields))
	names := make(map[string]bool, len(m.Fields))
	populated := make(map[string]bool, len(m.Oneofs))
	for _, f := range m.Fields {
		if f == nil {
			return invalid(m, "nil field")
		}
		if err := validateField(m, f); err != nil {
			return err
		}
		if prev, dup := numbers[f.Number]; dup {
			return invalid(m, "fields %q and %q share number %d", prev, f.Name, f.Number)
		}
		numbers[f.Number] = f.Name
		if names[f.Name] {
			return invalid(m, "duplicate field name %q", f.Name)
		}
		names[f.Name] = true
		if f.Oneof != "" {
			if !declared[f.Oneof] {
				return invalid(m, "field %q names undeclared oneof %q", f.Name, f.Oneof)
			}
			populated[f.Oneof] = true
		}
	}
	for name := range declared {
		if !populated[name] {
			return invalid(m, "oneof %q has no members", name)
		}
	}
	return nil
}

func validateField(m *Message, f *Field) error {
	if f.Name == "" {
		return invalid(m, "field %d without a name", f.Number)
	}
	switch {
	case f.Number < MinFieldNumber || f.Number > MaxFieldNumber:
		return invalid(m, "field %q: number %d out of range", f.Name, f.Number)
	case f.Number >= FirstReservedNumber && f.Number <= LastReservedNumber:
		return invalid(m, "field %q: number %d is reserved", f.Name, f.Number)
	}
	if !f.Type.IsValid() {
		return invalid(m, "field %q: unknown type %q", f.Name, f.Type)
	}
	if f.Type == TypeMessage && f.Message == nil {
		return invalid(m, "field %q: message type without descriptor", f.Name)
	}
	if f.Type != TypeMessage && f.Message != nil {
		return invalid(m, "field %q: descriptor set on %s field", f.Name, f.Type)
	}

	switch f.Label {
	case LabelSingular:
	case LabelRepeated:
	case LabelPacked:
		if !f.Type.IsPackable() {
			return invalid(m, "field %q: %s values cannot be packed", f.Name, f.Type)
		}
	case LabelMap:
		if !f.MapKey.IsMapKey() {
			return invalid(m, "field %q: %q is not a valid map key type", f.Name, f.MapKey)
		}
	default:
		return invalid(m, "field %q: unknown label %d", f.Name, f.Label)
	}
	if f.Label != LabelMap && f.MapKey != "" {
		return invalid(m, "field %q: map key type on %s field", f.Name, f.Label)
	}
	if f.Label != LabelSingular && (f.Oneof != "" || f.Optional) {
		return invalid(m, "field %q: only singular fields can be optional or oneof members", f.Name)
	}
	if f.Optional && f.Oneof != "" {
		return invalid(m, "field %q: oneof members cannot also be optional", f.Name)
	}
	return nil
}
