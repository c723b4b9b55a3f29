// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

// readExportProperties decodes an export's leading property list in
// whichever mode the asset uses: tagged with a None sentinel, or
// schema-driven when the package is unversioned.
func readExportProperties(cc *codecContext, a *Asset, e *Export, r *Reader) ([]*Property, error) {
	if cc.unversioned {
		return readUnversionedProperties(cc, r, a.ClassNameOf(e))
	}
	return readPropertyList(cc, r)
}

func writeExportProperties(cc *codecContext, a *Asset, e *Export, w *Writer, properties []*Property) error {
	if cc.unversioned {
		return writeUnversionedProperties(cc, w, a.ClassNameOf(e), properties)
	}
	return writePropertyList(cc, w, properties)
}

// captureExtras copies whatever remains of the payload range. Every
// variant calls this last so bytes past the modeled fields round-trip.
func captureExtras(r *Reader, start, size int) ([]byte, error) {
	rest, err := r.Bytes(size - (r.Offset() - start))
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), rest...), nil
}

// StructExport is a UStruct-derived export: a property list, the
// parent struct reference, child fields, and the compiled script blob.
// Field lists are child export references before the FProperties
// switch and inline [FProperty] records after it.
type StructExport struct {
	Properties []*Property

	// GuardValue is the int32 between the property list and the
	// struct data, zero in every known asset. Preserved verbatim.
	GuardValue int32

	SuperStruct      PackageIndex
	Children         []PackageIndex
	LoadedProperties []*FProperty

	// ScriptBytecodeSize is the in-memory instruction count;
	// ScriptBytecode holds the on-disk blob, re-emitted unparsed.
	ScriptBytecodeSize int32
	ScriptBytecode     []byte

	Extras []byte
}

func (*StructExport) Kind() string { return "Struct" }

func (s *StructExport) decodePayload(cc *codecContext, a *Asset, e *Export, r *Reader, size int) error {
	start := r.Offset()
	if err := s.decodeStruct(cc, a, e, r); err != nil {
		return err
	}
	extras, err := captureExtras(r, start, size)
	if err != nil {
		return err
	}
	s.Extras = extras
	return nil
}

func (s *StructExport) encodePayload(cc *codecContext, a *Asset, e *Export, w *Writer) error {
	if err := s.encodeStruct(cc, a, e, w); err != nil {
		return err
	}
	w.Raw(s.Extras)
	return nil
}

// decodeStruct reads the shared UStruct fields without consuming
// trailing extras, so subclasses can append their own data.
func (s *StructExport) decodeStruct(cc *codecContext, a *Asset, e *Export, r *Reader) error {
	properties, err := readExportProperties(cc, a, e, r)
	if err != nil {
		return err
	}
	s.Properties = properties
	if s.GuardValue, err = r.I32(); err != nil {
		return err
	}

	raw, err := r.I32()
	if err != nil {
		return err
	}
	s.SuperStruct = PackageIndex(raw)
	if err := cc.checkIndex(s.SuperStruct); err != nil {
		return err
	}

	childCount, err := r.I32()
	if err != nil {
		return err
	}
	if childCount < 0 {
		return malformed("struct export declares %d children", childCount)
	}
	s.Children = make([]PackageIndex, childCount)
	for i := range s.Children {
		raw, err := r.I32()
		if err != nil {
			return err
		}
		s.Children[i] = PackageIndex(raw)
		if err := cc.checkIndex(s.Children[i]); err != nil {
			return err
		}
	}

	if cc.ctx.Custom(CustomVersionCore) >= CoreFProperties {
		fieldCount, err := r.I32()
		if err != nil {
			return err
		}
		if fieldCount < 0 {
			return malformed("struct export declares %d loaded fields", fieldCount)
		}
		s.LoadedProperties = make([]*FProperty, fieldCount)
		for i := range s.LoadedProperties {
			field, err := readSingleField(cc, r)
			if err != nil {
				return err
			}
			if field == nil {
				return invalidProperty("loaded field %d is the None sentinel", i)
			}
			s.LoadedProperties[i] = field
		}
	}

	if s.ScriptBytecodeSize, err = r.I32(); err != nil {
		return err
	}
	storageSize, err := r.I32()
	if err != nil {
		return err
	}
	if storageSize < 0 {
		return malformed("struct export declares %d script bytes", storageSize)
	}
	blob, err := r.Bytes(int(storageSize))
	if err != nil {
		return err
	}
	s.ScriptBytecode = append([]byte(nil), blob...)
	return nil
}

func (s *StructExport) encodeStruct(cc *codecContext, a *Asset, e *Export, w *Writer) error {
	if err := writeExportProperties(cc, a, e, w, s.Properties); err != nil {
		return err
	}
	w.I32(s.GuardValue)
	w.I32(int32(s.SuperStruct))
	w.I32(int32(len(s.Children)))
	for _, child := range s.Children {
		w.I32(int32(child))
	}
	if cc.ctx.Custom(CustomVersionCore) >= CoreFProperties {
		w.I32(int32(len(s.LoadedProperties)))
		for _, field := range s.LoadedProperties {
			if err := writeSingleField(cc, w, field); err != nil {
				return err
			}
		}
	}
	w.I32(s.ScriptBytecodeSize)
	w.I32(int32(len(s.ScriptBytecode)))
	w.Raw(s.ScriptBytecode)
	return nil
}

// FunctionExport is a UFunction: a struct plus the function flags.
type FunctionExport struct {
	StructExport
	FunctionFlags uint32
}

func (*FunctionExport) Kind() string { return "Function" }

func (f *FunctionExport) decodePayload(cc *codecContext, a *Asset, e *Export, r *Reader, size int) error {
	start := r.Offset()
	if err := f.decodeStruct(cc, a, e, r); err != nil {
		return err
	}
	var err error
	if f.FunctionFlags, err = r.U32(); err != nil {
		return err
	}
	extras, err := captureExtras(r, start, size)
	if err != nil {
		return err
	}
	f.Extras = extras
	return nil
}

func (f *FunctionExport) encodePayload(cc *codecContext, a *Asset, e *Export, w *Writer) error {
	if err := f.encodeStruct(cc, a, e, w); err != nil {
		return err
	}
	w.U32(f.FunctionFlags)
	w.Raw(f.Extras)
	return nil
}

// FuncMapEntry is one (function name, function export) pair from a
// class's function map. Order is serialized and preserved.
type FuncMapEntry struct {
	Name     NameRef
	Function PackageIndex
}

// SerializedInterface is one implemented-interface record on a class.
type SerializedInterface struct {
	Class           PackageIndex
	PointerOffset   int32
	ImplementedByK2 bool
}

// ClassExport is a UClass: a struct plus the function map, class
// flags, interface list, and the default-object reference.
type ClassExport struct {
	StructExport

	FuncMap         []FuncMapEntry
	ClassFlags      uint32
	ClassWithin     PackageIndex
	ClassConfigName NameRef
	Interfaces      []SerializedInterface
	ClassGeneratedBy PackageIndex
	DeprecatedForceScriptOrder bool

	// DummyName sits between the script-order flag and the cooked
	// flag; it resolves to "None" in every known asset.
	DummyName NameRef

	// Cooked is serialized from [VerAddCookedToUClass].
	Cooked             bool
	ClassDefaultObject PackageIndex
}

func (*ClassExport) Kind() string { return "Class" }

func (c *ClassExport) decodePayload(cc *codecContext, a *Asset, e *Export, r *Reader, size int) error {
	start := r.Offset()
	if err := c.decodeStruct(cc, a, e, r); err != nil {
		return err
	}

	readIndex := func(dst *PackageIndex) error {
		raw, err := r.I32()
		if err != nil {
			return err
		}
		*dst = PackageIndex(raw)
		return cc.checkIndex(*dst)
	}

	funcCount, err := r.I32()
	if err != nil {
		return err
	}
	if funcCount < 0 {
		return malformed("class export declares %d function map entries", funcCount)
	}
	c.FuncMap = make([]FuncMapEntry, funcCount)
	for i := range c.FuncMap {
		if c.FuncMap[i].Name, _, err = cc.readNameRef(r); err != nil {
			return err
		}
		if err := readIndex(&c.FuncMap[i].Function); err != nil {
			return err
		}
	}

	if c.ClassFlags, err = r.U32(); err != nil {
		return err
	}
	if err := readIndex(&c.ClassWithin); err != nil {
		return err
	}
	if c.ClassConfigName, _, err = cc.readNameRef(r); err != nil {
		return err
	}

	interfaceCount, err := r.I32()
	if err != nil {
		return err
	}
	if interfaceCount < 0 {
		return malformed("class export declares %d interfaces", interfaceCount)
	}
	c.Interfaces = make([]SerializedInterface, interfaceCount)
	for i := range c.Interfaces {
		entry := &c.Interfaces[i]
		if err := readIndex(&entry.Class); err != nil {
			return err
		}
		if entry.PointerOffset, err = r.I32(); err != nil {
			return err
		}
		if entry.ImplementedByK2, err = r.Bool32(); err != nil {
			return err
		}
	}

	if err := readIndex(&c.ClassGeneratedBy); err != nil {
		return err
	}
	if c.DeprecatedForceScriptOrder, err = r.Bool32(); err != nil {
		return err
	}
	if c.DummyName, _, err = cc.readNameRef(r); err != nil {
		return err
	}
	if cc.ctx.Supports(VerAddCookedToUClass) {
		if c.Cooked, err = r.Bool32(); err != nil {
			return err
		}
	}
	if err := readIndex(&c.ClassDefaultObject); err != nil {
		return err
	}

	extras, err := captureExtras(r, start, size)
	if err != nil {
		return err
	}
	c.Extras = extras
	return nil
}

func (c *ClassExport) encodePayload(cc *codecContext, a *Asset, e *Export, w *Writer) error {
	if err := c.encodeStruct(cc, a, e, w); err != nil {
		return err
	}
	w.I32(int32(len(c.FuncMap)))
	for _, entry := range c.FuncMap {
		w.NameRefRaw(entry.Name)
		w.I32(int32(entry.Function))
	}
	w.U32(c.ClassFlags)
	w.I32(int32(c.ClassWithin))
	w.NameRefRaw(c.ClassConfigName)
	w.I32(int32(len(c.Interfaces)))
	for _, entry := range c.Interfaces {
		w.I32(int32(entry.Class))
		w.I32(entry.PointerOffset)
		w.Bool32(entry.ImplementedByK2)
	}
	w.I32(int32(c.ClassGeneratedBy))
	w.Bool32(c.DeprecatedForceScriptOrder)
	w.NameRefRaw(c.DummyName)
	if cc.ctx.Supports(VerAddCookedToUClass) {
		w.Bool32(c.Cooked)
	}
	w.I32(int32(c.ClassDefaultObject))
	w.Raw(c.Extras)
	return nil
}

// UserDefinedStructExport is a UScriptStruct or editor-authored
// struct: the struct body plus the script-struct flags.
type UserDefinedStructExport struct {
	StructExport
	StructFlags uint32
}

func (*UserDefinedStructExport) Kind() string { return "UserDefinedStruct" }

func (u *UserDefinedStructExport) decodePayload(cc *codecContext, a *Asset, e *Export, r *Reader, size int) error {
	start := r.Offset()
	if err := u.decodeStruct(cc, a, e, r); err != nil {
		return err
	}
	var err error
	if u.StructFlags, err = r.U32(); err != nil {
		return err
	}
	extras, err := captureExtras(r, start, size)
	if err != nil {
		return err
	}
	u.Extras = extras
	return nil
}

func (u *UserDefinedStructExport) encodePayload(cc *codecContext, a *Asset, e *Export, w *Writer) error {
	if err := u.encodeStruct(cc, a, e, w); err != nil {
		return err
	}
	w.U32(u.StructFlags)
	w.Raw(u.Extras)
	return nil
}

// PropertyExport is a legacy UProperty object export, used before the
// FProperties switch moved field records inline. The common header is
// followed by the same per-type references an [FProperty] tail
// carries, minus the nested fields: element and key/value properties
// are sibling exports here, referenced by index where at all.
type PropertyExport struct {
	propertyType string

	Properties []*Property
	GuardValue int32

	ArrayDim      int32
	PropertyFlags uint64
	RepNotifyFunc NameRef

	// BlueprintReplicationCondition is serialized from
	// [VerPropertiesSerializeRepCondition].
	BlueprintReplicationCondition uint8

	Enum              PackageIndex // Byte / Enum
	UnderlyingProp    PackageIndex // Enum
	PropertyClass     PackageIndex // object reference family
	MetaClass         PackageIndex // Class / SoftClass
	Struct            PackageIndex // Struct
	SignatureFunction PackageIndex // delegate family
	BoolSize          uint8        // Bool
	NativeBool        uint8        // Bool

	Extras []byte
}

func (*PropertyExport) Kind() string { return "Property" }

// PropertyType returns the class name this export was classified by,
// e.g. "ObjectProperty".
func (p *PropertyExport) PropertyType() string { return p.propertyType }

func (p *PropertyExport) decodePayload(cc *codecContext, a *Asset, e *Export, r *Reader, size int) error {
	start := r.Offset()
	properties, err := readExportProperties(cc, a, e, r)
	if err != nil {
		return err
	}
	p.Properties = properties
	if p.GuardValue, err = r.I32(); err != nil {
		return err
	}

	if p.ArrayDim, err = r.I32(); err != nil {
		return err
	}
	if p.PropertyFlags, err = r.U64(); err != nil {
		return err
	}
	if p.RepNotifyFunc, _, err = cc.readNameRef(r); err != nil {
		return err
	}
	if cc.ctx.Supports(VerPropertiesSerializeRepCondition) {
		if p.BlueprintReplicationCondition, err = r.U8(); err != nil {
			return err
		}
	}
	if err := p.decodeTypeTail(cc, r); err != nil {
		return err
	}

	extras, err := captureExtras(r, start, size)
	if err != nil {
		return err
	}
	p.Extras = extras
	return nil
}

func (p *PropertyExport) encodePayload(cc *codecContext, a *Asset, e *Export, w *Writer) error {
	if err := writeExportProperties(cc, a, e, w, p.Properties); err != nil {
		return err
	}
	w.I32(p.GuardValue)
	w.I32(p.ArrayDim)
	w.U64(p.PropertyFlags)
	w.NameRefRaw(p.RepNotifyFunc)
	if cc.ctx.Supports(VerPropertiesSerializeRepCondition) {
		w.U8(p.BlueprintReplicationCondition)
	}
	p.encodeTypeTail(w)
	w.Raw(p.Extras)
	return nil
}

func (p *PropertyExport) decodeTypeTail(cc *codecContext, r *Reader) error {
	readIndex := func(dst *PackageIndex) error {
		raw, err := r.I32()
		if err != nil {
			return err
		}
		*dst = PackageIndex(raw)
		return cc.checkIndex(*dst)
	}
	var err error
	switch p.propertyType {
	case "ByteProperty":
		return readIndex(&p.Enum)
	case "EnumProperty":
		if err := readIndex(&p.Enum); err != nil {
			return err
		}
		return readIndex(&p.UnderlyingProp)
	case "BoolProperty":
		if p.BoolSize, err = r.U8(); err != nil {
			return err
		}
		p.NativeBool, err = r.U8()
		return err
	case "ObjectProperty", "WeakObjectProperty", "LazyObjectProperty", "SoftObjectProperty", "InterfaceProperty":
		return readIndex(&p.PropertyClass)
	case "ClassProperty":
		if err := readIndex(&p.PropertyClass); err != nil {
			return err
		}
		return readIndex(&p.MetaClass)
	case "SoftClassProperty":
		if err := readIndex(&p.PropertyClass); err != nil {
			return err
		}
		return readIndex(&p.MetaClass)
	case "StructProperty":
		return readIndex(&p.Struct)
	case "DelegateProperty", "MulticastDelegateProperty", "MulticastInlineDelegateProperty", "MulticastSparseDelegateProperty":
		return readIndex(&p.SignatureFunction)
	}
	return nil
}

func (p *PropertyExport) encodeTypeTail(w *Writer) {
	switch p.propertyType {
	case "ByteProperty":
		w.I32(int32(p.Enum))
	case "EnumProperty":
		w.I32(int32(p.Enum))
		w.I32(int32(p.UnderlyingProp))
	case "BoolProperty":
		w.U8(p.BoolSize)
		w.U8(p.NativeBool)
	case "ObjectProperty", "WeakObjectProperty", "LazyObjectProperty", "SoftObjectProperty", "InterfaceProperty":
		w.I32(int32(p.PropertyClass))
	case "ClassProperty", "SoftClassProperty":
		w.I32(int32(p.PropertyClass))
		w.I32(int32(p.MetaClass))
	case "StructProperty":
		w.I32(int32(p.Struct))
	case "DelegateProperty", "MulticastDelegateProperty", "MulticastInlineDelegateProperty", "MulticastSparseDelegateProperty":
		w.I32(int32(p.SignatureFunction))
	}
}
