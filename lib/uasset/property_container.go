// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

// arrayBody is the element storage shared by Array and Set payloads,
// which serialize their elements identically — including the
// special-cased array-of-structs encoding.
//
// From [VerInnerArrayTagInfo] on, a struct-element array does not tag
// each element; instead one shared inner tag carries the element
// struct type, guid, and a byte length for the whole element run. An
// empty array of this shape still serializes that tag — a synthesized
// placeholder holding only the declared type and guid — purely so a
// later decode of the empty array can reconstruct a valid header.
// The placeholder fields live here (ElemName, StructTypeName,
// StructGuid) and survive round-trips of empty arrays.
type arrayBody struct {
	// InnerType is the element wire type name. Tags older than the
	// inner-type gates leave it empty, in which case the payload is
	// kept as opaque bytes.
	InnerType string

	Elements []Value

	// Shared inner tag state for struct-element arrays.
	ElemName        NameRef
	ElemDuplication int32
	StructTypeName  string
	StructGuid      Guid
	ElemHasGuid     bool
	ElemGuid        Guid

	// Raw holds the undecodable payload when no inner type is known.
	Raw []byte
}

// structElementsInline reports whether elements use the shared inner
// tag encoding. Unversioned assets never do; their types come from
// the schema and elements are bare.
func (b *arrayBody) structElementsInline(cc *codecContext) bool {
	return !cc.unversioned && b.InnerType == "StructProperty" && cc.ctx.Supports(VerInnerArrayTagInfo)
}

// decodeElements reads count plus elements, consuming exactly avail
// bytes when the inner type is unknown.
func (b *arrayBody) decodeElements(cc *codecContext, r *Reader, avail int) error {
	start := r.Offset()
	count, err := r.I32()
	if err != nil {
		return err
	}
	if count < 0 {
		return invalidProperty("container declares negative element count %d", count)
	}

	if b.InnerType == "" {
		raw, err := r.Bytes(avail - (r.Offset() - start))
		if err != nil {
			return err
		}
		b.Raw = append([]byte(nil), raw...)
		return nil
	}

	if b.structElementsInline(cc) {
		return b.decodeStructElements(cc, r, int(count))
	}

	b.Elements = make([]Value, count)
	for i := range b.Elements {
		element := newValue(b.InnerType)
		b.configureElement(element)
		if err := element.decodeValue(cc, r, 0, false); err != nil {
			return err
		}
		b.Elements[i] = element
	}
	return nil
}

// decodeStructElements reads the shared inner tag and then count bare
// struct bodies.
func (b *arrayBody) decodeStructElements(cc *codecContext, r *Reader, count int) error {
	elemName, _, err := cc.readNameRef(r)
	if err != nil {
		return err
	}
	b.ElemName = elemName
	_, elemType, err := cc.readNameRef(r)
	if err != nil {
		return err
	}
	if elemType != "StructProperty" {
		return invalidProperty("struct array inner tag declares element type %q", elemType)
	}
	declaredSize, err := r.I32()
	if err != nil {
		return err
	}
	if b.ElemDuplication, err = r.I32(); err != nil {
		return err
	}
	_, structType, err := cc.readNameRef(r)
	if err != nil {
		return err
	}
	b.StructTypeName = structType
	if cc.ctx.Supports(VerStructGuidInPropertyTag) {
		if b.StructGuid, err = r.Guid(); err != nil {
			return err
		}
	}
	if cc.ctx.Supports(VerPropertyGuidInPropertyTag) {
		flag, err := r.U8()
		if err != nil {
			return err
		}
		if flag != 0 {
			if b.ElemGuid, err = r.Guid(); err != nil {
				return err
			}
			b.ElemHasGuid = true
		}
	}

	start := r.Offset()
	b.Elements = make([]Value, count)
	for i := range b.Elements {
		element := &StructValue{StructType: b.StructTypeName, Guid: b.StructGuid}
		if err := element.decodeValue(cc, r, 0, false); err != nil {
			return err
		}
		b.Elements[i] = element
	}
	if consumed := r.Offset() - start; consumed != int(declaredSize) {
		return invalidProperty("struct array elements occupy %d bytes, inner tag declared %d", consumed, declaredSize)
	}
	return nil
}

// encodeElements writes count plus elements, mirroring decodeElements
// shape for shape.
func (b *arrayBody) encodeElements(cc *codecContext, w *Writer) error {
	if b.InnerType == "" {
		w.I32(int32(len(b.Elements)))
		w.Raw(b.Raw)
		return nil
	}
	w.I32(int32(len(b.Elements)))

	if b.structElementsInline(cc) {
		return b.encodeStructElements(cc, w)
	}

	for _, element := range b.Elements {
		if element.TypeName() != b.InnerType {
			return invalidProperty("container element type %q contradicts declared inner type %q",
				element.TypeName(), b.InnerType)
		}
		if err := element.encodeValue(cc, w, false); err != nil {
			return err
		}
	}
	return nil
}

func (b *arrayBody) encodeStructElements(cc *codecContext, w *Writer) error {
	if b.StructTypeName == "" {
		return invalidProperty("struct array cannot encode: no declared struct type for inner tag")
	}
	w.NameRefRaw(b.ElemName)
	w.NameRefRaw(cc.names.Intern("StructProperty", false))
	sizeAt := w.ReserveI32()
	w.I32(b.ElemDuplication)
	w.NameRefRaw(cc.names.Intern(b.StructTypeName, false))
	if cc.ctx.Supports(VerStructGuidInPropertyTag) {
		w.Guid(b.StructGuid)
	}
	if cc.ctx.Supports(VerPropertyGuidInPropertyTag) {
		if b.ElemHasGuid {
			w.U8(1)
			w.Guid(b.ElemGuid)
		} else {
			w.U8(0)
		}
	}

	start := w.Len()
	for _, element := range b.Elements {
		structElement, ok := element.(*StructValue)
		if !ok {
			return invalidProperty("struct array element is %q, want StructProperty", element.TypeName())
		}
		if err := structElement.encodeValue(cc, w, false); err != nil {
			return err
		}
	}
	w.PatchI32(sizeAt, int32(w.Len()-start))
	return nil
}

// configureElement seeds schema-derived inner types on freshly built
// container elements during unversioned decode.
func (b *arrayBody) configureElement(element Value) {
	if structElement, ok := element.(*StructValue); ok && structElement.StructType == "" {
		structElement.StructType = b.StructTypeName
		structElement.Guid = b.StructGuid
	}
}

// ArrayValue is an ArrayProperty payload.
type ArrayValue struct {
	arrayBody
}

// NewStructArray builds an empty array of the named struct type with
// the placeholder inner tag synthesized, ready for elements to be
// appended or for encoding as an empty array.
func NewStructArray(name NameRef, structType string) *ArrayValue {
	return &ArrayValue{arrayBody: arrayBody{
		InnerType:      "StructProperty",
		ElemName:       name,
		StructTypeName: structType,
	}}
}

func (*ArrayValue) TypeName() string { return "ArrayProperty" }

func (v *ArrayValue) IsZero() bool { return len(v.Elements) == 0 && len(v.Raw) == 0 }

func (v *ArrayValue) decodeTagExtras(cc *codecContext, r *Reader) error {
	if !cc.ctx.Supports(VerArrayPropertyInnerTags) {
		return nil
	}
	_, innerType, err := cc.readNameRef(r)
	if err != nil {
		return err
	}
	v.InnerType = innerType
	return nil
}

func (v *ArrayValue) encodeTagExtras(cc *codecContext, w *Writer) error {
	if !cc.ctx.Supports(VerArrayPropertyInnerTags) {
		return nil
	}
	if v.InnerType == "" {
		return invalidProperty("array cannot encode: no declared inner type")
	}
	w.NameRefRaw(cc.names.Intern(v.InnerType, false))
	return nil
}

func (v *ArrayValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	return v.decodeElements(cc, r, size)
}

func (v *ArrayValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	return v.encodeElements(cc, w)
}

// SetValue is a SetProperty payload: element storage identical to an
// array, prefixed by the "elements to remove" list that incremental
// cooks leave behind. Removed elements are retained in the model so a
// file that carries them re-encodes byte-identically; they are almost
// always absent.
type SetValue struct {
	arrayBody
	Removed []Value
}

func (*SetValue) TypeName() string { return "SetProperty" }

func (v *SetValue) IsZero() bool {
	return len(v.Elements) == 0 && len(v.Removed) == 0 && len(v.Raw) == 0
}

func (v *SetValue) decodeTagExtras(cc *codecContext, r *Reader) error {
	if !cc.ctx.Supports(VerPropertyTagSetMapSupport) {
		return nil
	}
	_, innerType, err := cc.readNameRef(r)
	if err != nil {
		return err
	}
	v.InnerType = innerType
	return nil
}

func (v *SetValue) encodeTagExtras(cc *codecContext, w *Writer) error {
	if !cc.ctx.Supports(VerPropertyTagSetMapSupport) {
		return nil
	}
	if v.InnerType == "" {
		return invalidProperty("set cannot encode: no declared inner type")
	}
	w.NameRefRaw(cc.names.Intern(v.InnerType, false))
	return nil
}

func (v *SetValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	start := r.Offset()
	removedCount, err := r.I32()
	if err != nil {
		return err
	}
	if removedCount < 0 {
		return invalidProperty("set declares negative removed-element count %d", removedCount)
	}
	if v.InnerType == "" {
		raw, err := r.Bytes(size - (r.Offset() - start))
		if err != nil {
			return err
		}
		v.Raw = append([]byte(nil), raw...)
		return nil
	}
	v.Removed = make([]Value, removedCount)
	for i := range v.Removed {
		element := newValue(v.InnerType)
		v.configureElement(element)
		if err := element.decodeValue(cc, r, 0, false); err != nil {
			return err
		}
		v.Removed[i] = element
	}
	return v.decodeElements(cc, r, size-(r.Offset()-start))
}

func (v *SetValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	if v.InnerType == "" {
		w.I32(0)
		w.Raw(v.Raw)
		return nil
	}
	w.I32(int32(len(v.Removed)))
	for _, element := range v.Removed {
		if err := element.encodeValue(cc, w, false); err != nil {
			return err
		}
	}
	return v.encodeElements(cc, w)
}

// MapEntry is one key/value pair of a MapValue, in serialized order.
type MapEntry struct {
	Key   Value
	Value Value
}

// MapValue is a MapProperty payload: the tag carries the key and
// value type names, the payload carries a removed-keys list followed
// by the live pairs.
type MapValue struct {
	KeyType   string
	ValueType string

	// Schema-derived struct types for unversioned decode of struct
	// keys or values.
	KeyStructType   string
	ValueStructType string

	RemovedKeys []Value
	Entries     []MapEntry

	// Raw holds the payload verbatim when the pair types are unknown
	// (tags older than the set/map gate).
	Raw []byte
}

func (*MapValue) TypeName() string { return "MapProperty" }

func (v *MapValue) IsZero() bool {
	return len(v.Entries) == 0 && len(v.RemovedKeys) == 0 && len(v.Raw) == 0
}

func (v *MapValue) decodeTagExtras(cc *codecContext, r *Reader) error {
	if !cc.ctx.Supports(VerPropertyTagSetMapSupport) {
		return nil
	}
	_, keyType, err := cc.readNameRef(r)
	if err != nil {
		return err
	}
	_, valueType, err := cc.readNameRef(r)
	if err != nil {
		return err
	}
	v.KeyType, v.ValueType = keyType, valueType
	return nil
}

func (v *MapValue) encodeTagExtras(cc *codecContext, w *Writer) error {
	if !cc.ctx.Supports(VerPropertyTagSetMapSupport) {
		return nil
	}
	if v.KeyType == "" || v.ValueType == "" {
		return invalidProperty("map cannot encode: no declared key/value types")
	}
	w.NameRefRaw(cc.names.Intern(v.KeyType, false))
	w.NameRefRaw(cc.names.Intern(v.ValueType, false))
	return nil
}

// newMapSide builds a key or value slot, seeding struct types from
// the schema-derived fields.
func (v *MapValue) newMapSide(typeName, structType string) Value {
	value := newValue(typeName)
	if structValue, ok := value.(*StructValue); ok && structValue.StructType == "" {
		structValue.StructType = structType
	}
	return value
}

func (v *MapValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	start := r.Offset()
	removedCount, err := r.I32()
	if err != nil {
		return err
	}
	if removedCount < 0 {
		return invalidProperty("map declares negative removed-key count %d", removedCount)
	}
	if v.KeyType == "" || v.ValueType == "" {
		raw, err := r.Bytes(size - (r.Offset() - start))
		if err != nil {
			return err
		}
		v.Raw = append([]byte(nil), raw...)
		return nil
	}
	v.RemovedKeys = make([]Value, removedCount)
	for i := range v.RemovedKeys {
		key := v.newMapSide(v.KeyType, v.KeyStructType)
		if err := key.decodeValue(cc, r, 0, false); err != nil {
			return err
		}
		v.RemovedKeys[i] = key
	}
	count, err := r.I32()
	if err != nil {
		return err
	}
	if count < 0 {
		return invalidProperty("map declares negative entry count %d", count)
	}
	v.Entries = make([]MapEntry, count)
	for i := range v.Entries {
		key := v.newMapSide(v.KeyType, v.KeyStructType)
		if err := key.decodeValue(cc, r, 0, false); err != nil {
			return err
		}
		value := v.newMapSide(v.ValueType, v.ValueStructType)
		if err := value.decodeValue(cc, r, 0, false); err != nil {
			return err
		}
		v.Entries[i] = MapEntry{Key: key, Value: value}
	}
	return nil
}

func (v *MapValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	if v.KeyType == "" || v.ValueType == "" {
		w.I32(0)
		w.Raw(v.Raw)
		return nil
	}
	w.I32(int32(len(v.RemovedKeys)))
	for _, key := range v.RemovedKeys {
		if err := key.encodeValue(cc, w, false); err != nil {
			return err
		}
	}
	w.I32(int32(len(v.Entries)))
	for _, entry := range v.Entries {
		if err := entry.Key.encodeValue(cc, w, false); err != nil {
			return err
		}
		if err := entry.Value.encodeValue(cc, w, false); err != nil {
			return err
		}
	}
	return nil
}
