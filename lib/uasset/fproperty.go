// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

// FProperty is one serialized field record inside a struct or class
// export, introduced when class field lists moved from property
// exports to inline records ([CoreFProperties]). The common header is
// shared by every field type; the per-type tail mirrors the property
// payload variants (class references, nested element fields, bool
// packing bytes).
type FProperty struct {
	TypeName string
	Name     NameRef
	Flags    uint32

	ArrayDim      int32
	ElementSize   int32
	PropertyFlags uint64
	RepIndex      uint16
	RepNotifyFunc NameRef

	// BlueprintReplicationCondition is the lifetime condition byte.
	BlueprintReplicationCondition uint8

	// Per-type tail. Which fields are live depends on TypeName.
	PropertyClass     PackageIndex // object reference family
	MetaClass         PackageIndex // Class / SoftClass
	Struct            PackageIndex // StructProperty
	Enum              PackageIndex // ByteProperty / EnumProperty
	SignatureFunction PackageIndex // delegate family
	FieldPathClass    NameRef      // FieldPathProperty
	BoolSize          uint8        // BoolProperty
	NativeBool        uint8        // BoolProperty

	Inner      *FProperty // ArrayProperty / SetProperty element
	Key, Value *FProperty // MapProperty sides
	Underlying *FProperty // EnumProperty underlying integer field
}

// readSingleField decodes one "serialize single field" record: the
// field type name, then the field body. The None type name stands for
// an absent field and decodes as nil.
func readSingleField(cc *codecContext, r *Reader) (*FProperty, error) {
	_, typeName, err := cc.readNameRef(r)
	if err != nil {
		return nil, err
	}
	if typeName == noneName {
		return nil, nil
	}
	field := &FProperty{TypeName: typeName}
	if err := field.decodeBody(cc, r); err != nil {
		return nil, err
	}
	return field, nil
}

// writeSingleField encodes one field record, or the None sentinel for
// a nil field.
func writeSingleField(cc *codecContext, w *Writer, field *FProperty) error {
	if field == nil {
		w.NameRefRaw(cc.names.Intern(noneName, false))
		return nil
	}
	w.NameRefRaw(cc.names.Intern(field.TypeName, false))
	return field.encodeBody(cc, w)
}

func (f *FProperty) decodeBody(cc *codecContext, r *Reader) error {
	var err error
	if f.Name, _, err = cc.readNameRef(r); err != nil {
		return err
	}
	if f.Flags, err = r.U32(); err != nil {
		return err
	}
	if f.ArrayDim, err = r.I32(); err != nil {
		return err
	}
	if f.ElementSize, err = r.I32(); err != nil {
		return err
	}
	if f.PropertyFlags, err = r.U64(); err != nil {
		return err
	}
	if f.RepIndex, err = r.U16(); err != nil {
		return err
	}
	if f.RepNotifyFunc, _, err = cc.readNameRef(r); err != nil {
		return err
	}
	if f.BlueprintReplicationCondition, err = r.U8(); err != nil {
		return err
	}
	return f.decodeTail(cc, r)
}

func (f *FProperty) encodeBody(cc *codecContext, w *Writer) error {
	w.NameRefRaw(f.Name)
	w.U32(f.Flags)
	w.I32(f.ArrayDim)
	w.I32(f.ElementSize)
	w.U64(f.PropertyFlags)
	w.U16(f.RepIndex)
	w.NameRefRaw(f.RepNotifyFunc)
	w.U8(f.BlueprintReplicationCondition)
	return f.encodeTail(cc, w)
}

func (f *FProperty) decodeTail(cc *codecContext, r *Reader) error {
	readIndex := func(dst *PackageIndex) error {
		raw, err := r.I32()
		if err != nil {
			return err
		}
		*dst = PackageIndex(raw)
		return cc.checkIndex(*dst)
	}
	var err error
	switch f.TypeName {
	case "ObjectProperty", "WeakObjectProperty", "LazyObjectProperty", "SoftObjectProperty", "InterfaceProperty":
		return readIndex(&f.PropertyClass)
	case "ClassProperty", "SoftClassProperty":
		if err := readIndex(&f.PropertyClass); err != nil {
			return err
		}
		return readIndex(&f.MetaClass)
	case "StructProperty":
		return readIndex(&f.Struct)
	case "ByteProperty":
		return readIndex(&f.Enum)
	case "EnumProperty":
		if err := readIndex(&f.Enum); err != nil {
			return err
		}
		f.Underlying, err = readSingleField(cc, r)
		return err
	case "BoolProperty":
		if f.BoolSize, err = r.U8(); err != nil {
			return err
		}
		f.NativeBool, err = r.U8()
		return err
	case "ArrayProperty":
		f.Inner, err = readSingleField(cc, r)
		return err
	case "SetProperty":
		f.Inner, err = readSingleField(cc, r)
		return err
	case "MapProperty":
		if f.Key, err = readSingleField(cc, r); err != nil {
			return err
		}
		f.Value, err = readSingleField(cc, r)
		return err
	case "DelegateProperty", "MulticastDelegateProperty", "MulticastInlineDelegateProperty", "MulticastSparseDelegateProperty":
		return readIndex(&f.SignatureFunction)
	case "FieldPathProperty":
		f.FieldPathClass, _, err = cc.readNameRef(r)
		return err
	}
	return nil
}

func (f *FProperty) encodeTail(cc *codecContext, w *Writer) error {
	switch f.TypeName {
	case "ObjectProperty", "WeakObjectProperty", "LazyObjectProperty", "SoftObjectProperty", "InterfaceProperty":
		w.I32(int32(f.PropertyClass))
	case "ClassProperty", "SoftClassProperty":
		w.I32(int32(f.PropertyClass))
		w.I32(int32(f.MetaClass))
	case "StructProperty":
		w.I32(int32(f.Struct))
	case "ByteProperty":
		w.I32(int32(f.Enum))
	case "EnumProperty":
		w.I32(int32(f.Enum))
		return writeSingleField(cc, w, f.Underlying)
	case "BoolProperty":
		w.U8(f.BoolSize)
		w.U8(f.NativeBool)
	case "ArrayProperty", "SetProperty":
		return writeSingleField(cc, w, f.Inner)
	case "MapProperty":
		if err := writeSingleField(cc, w, f.Key); err != nil {
			return err
		}
		return writeSingleField(cc, w, f.Value)
	case "DelegateProperty", "MulticastDelegateProperty", "MulticastInlineDelegateProperty", "MulticastSparseDelegateProperty":
		w.I32(int32(f.SignatureFunction))
	case "FieldPathProperty":
		w.NameRefRaw(f.FieldPathClass)
	}
	return nil
}
