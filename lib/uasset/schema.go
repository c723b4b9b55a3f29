// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

// SchemaType is the declared wire type of one schema slot, with the
// nested type information containers need: element types for arrays
// and sets, both sides for maps, the struct type name for structs,
// and the enum name for enum-valued slots.
type SchemaType struct {
	Name       string
	Inner      *SchemaType
	Key        *SchemaType
	Value      *SchemaType
	StructType string
	EnumName   string
}

// SchemaProperty describes the property occupying one global schema
// slot: its name, its duplication index (static arrays expand to one
// slot per element, same name, counting duplication indices up), and
// its declared type.
type SchemaProperty struct {
	Name     string
	DupIndex int
	Type     SchemaType
}

// UnversionedSchema supplies declared property types when an asset is
// saved without inline tags. Implementations resolve a type's full
// ancestry (the super chain) so global slot indices cover inherited
// properties; lib/usmap loads the standard mapping-file form.
//
// All three lookups fail with an error wrapping [ErrNoSchemaMapping]
// when the schema does not know the requested type or slot.
type UnversionedSchema interface {
	// PropertyCount returns the total slot count for a type,
	// inherited slots included.
	PropertyCount(typeName string) (int, error)

	// PropertyAt returns the property occupying the given global slot.
	PropertyAt(typeName string, index int) (SchemaProperty, error)

	// GlobalIndex maps a property back to its global slot.
	GlobalIndex(typeName, propertyName string, dupIndex int) (int, error)
}

// valueForSchemaType builds the zero payload a schema slot describes,
// seeding the nested type information the tag would otherwise carry.
func valueForSchemaType(st SchemaType) Value {
	value := newValue(st.Name)
	switch typed := value.(type) {
	case *ArrayValue:
		if st.Inner != nil {
			typed.InnerType = st.Inner.Name
			typed.StructTypeName = st.Inner.StructType
		}
	case *SetValue:
		if st.Inner != nil {
			typed.InnerType = st.Inner.Name
			typed.StructTypeName = st.Inner.StructType
		}
	case *MapValue:
		if st.Key != nil {
			typed.KeyType = st.Key.Name
			typed.KeyStructType = st.Key.StructType
		}
		if st.Value != nil {
			typed.ValueType = st.Value.Name
			typed.ValueStructType = st.Value.StructType
		}
	case *StructValue:
		typed.StructType = st.StructType
	}
	return value
}
