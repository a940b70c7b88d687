package wire

import (
	"github.com/anirudhraja/tagwire/schema"
)

var colorEnum = &schema.Enum{
	Name: "test.Color",
	Values: []*schema.EnumValue{
		{Name: "COLOR_UNSPECIFIED", Number: 0},
		{Name: "RED", Number: 1},
		{Name: "GREEN", Number: 2},
	},
}

var leafDesc = &schema.Message{
	Name: "test.Leaf",
	Fields: []*schema.Field{
		{Name: "name", Number: 1, Type: schema.TypeString},
		{Name: "id", Number: 2, Type: schema.TypeInt32},
	},
}

var allTypesDesc = &schema.Message{
	Name: "test.AllTypes",
	Fields: []*schema.Field{
		{Name: "f_bool", Number: 1, Type: schema.TypeBool},
		{Name: "f_int32", Number: 2, Type: schema.TypeInt32},
		{Name: "f_int64", Number: 3, Type: schema.TypeInt64},
		{Name: "f_uint32", Number: 4, Type: schema.TypeUint32},
		{Name: "f_uint64", Number: 5, Type: schema.TypeUint64},
		{Name: "f_sint32", Number: 6, Type: schema.TypeSint32},
		{Name: "f_sint64", Number: 7, Type: schema.TypeSint64},
		{Name: "f_fixed32", Number: 8, Type: schema.TypeFixed32},
		{Name: "f_fixed64", Number: 9, Type: schema.TypeFixed64},
		{Name: "f_sfixed32", Number: 10, Type: schema.TypeSfixed32},
		{Name: "f_sfixed64", Number: 11, Type: schema.TypeSfixed64},
		{Name: "f_float", Number: 12, Type: schema.TypeFloat},
		{Name: "f_double", Number: 13, Type: schema.TypeDouble},
		{Name: "f_string", Number: 14, Type: schema.TypeString},
		{Name: "f_bytes", Number: 15, Type: schema.TypeBytes},
		{Name: "f_enum", Number: 16, Type: schema.TypeEnum, Enum: colorEnum},
		{Name: "opt_int32", Number: 17, Type: schema.TypeInt32, Optional: true},
		{Name: "packed_int32", Number: 18, Label: schema.LabelPacked, Type: schema.TypeInt32},
		{Name: "unpacked_sint64", Number: 19, Label: schema.LabelRepeated, Type: schema.TypeSint64},
		{Name: "names", Number: 20, Label: schema.LabelRepeated, Type: schema.TypeString},
		{Name: "leaves", Number: 21, Label: schema.LabelRepeated, Type: schema.TypeMessage, Message: leafDesc},
		{Name: "leaf", Number: 22, Type: schema.TypeMessage, Message: leafDesc},
		{Name: "counts", Number: 23, Label: schema.LabelMap, MapKey: schema.TypeString, Type: schema.TypeInt64},
		{Name: "leaf_by_id", Number: 24, Label: schema.LabelMap, MapKey: schema.TypeInt32, Type: schema.TypeMessage, Message: leafDesc},
		{Name: "packed_double", Number: 25, Label: schema.LabelPacked, Type: schema.TypeDouble},
		{Name: "packed_fixed32", Number: 26, Label: schema.LabelPacked, Type: schema.TypeFixed32},
	},
}

var choiceDesc = &schema.Message{
	Name: "test.Choice",
	Fields: []*schema.Field{
		{Name: "tag", Number: 1, Type: schema.TypeString},
		{Name: "number", Number: 2, Type: schema.TypeInt32, Oneof: "kind"},
		{Name: "text", Number: 3, Type: schema.TypeString, Oneof: "kind"},
		{Name: "leaf", Number: 4, Type: schema.TypeMessage, Message: leafDesc, Oneof: "kind"},
	},
	Oneofs: []*schema.Oneof{{Name: "kind"}},
}

// nodeDesc is a recursive shape used for nesting tests.
var nodeDesc = func() *schema.Message {
	m := &schema.Message{Name: "test.Node"}
	m.Fields = []*schema.Field{
		{Name: "value", Number: 1, Type: schema.TypeInt32},
		{Name: "child", Number: 2, Type: schema.TypeMessage, Message: m},
	}
	return m
}()

// buildChain returns a Node nested depth levels below the root, with value
// set to the level number.
func buildChain(depth int) *Instance {
	root := NewInstance(nodeDesc)
	cur := root
	for i := 0; i < depth; i++ {
		if err := cur.Set("value", Int32(int32(i+1))); err != nil {
			panic(err)
		}
		next, err := cur.Mutable("child")
		if err != nil {
			panic(err)
		}
		cur = next
	}
	return root
}
