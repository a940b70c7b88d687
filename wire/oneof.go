package wire

import (
	"github.com/anirudhraja/tagwire/schema"
)

// WhichOneof returns the name of the member of group that is set, or "" when
// none is.
func (m *Instance) WhichOneof(group string) string {
	num, ok := m.oneofs[group]
	if !ok {
		return ""
	}
	f := m.desc.FieldByNumber(num)
	if f == nil {
		return ""
	}
	return f.Name
}

// ClearOneof unsets whichever member of group is set.
func (m *Instance) ClearOneof(group string) {
	num, ok := m.oneofs[group]
	if !ok {
		return
	}
	delete(m.values, num)
	delete(m.oneofs, group)
}

// selectOneof makes f the active member of its group, dropping the value of
// the previously active sibling.
func (m *Instance) selectOneof(f *schema.Field) {
	if prev, ok := m.oneofs[f.Oneof]; ok && prev != f.Number {
		delete(m.values, prev)
	}
	if m.oneofs == nil {
		m.oneofs = make(map[string]int32)
	}
	m.oneofs[f.Oneof] = f.Number
}
