// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

// BoolValue is a BoolProperty payload. The value byte lives in the
// tag when the property is standalone, and inline when the value is a
// container element; the declared payload length is zero in the tagged
// form.
type BoolValue struct {
	Val bool
}

func (*BoolValue) TypeName() string { return "BoolProperty" }

func (v *BoolValue) IsZero() bool { return !v.Val }

func (v *BoolValue) decodeTagExtras(cc *codecContext, r *Reader) error {
	b, err := r.U8()
	if err != nil {
		return err
	}
	v.Val = b != 0
	return nil
}

func (v *BoolValue) encodeTagExtras(cc *codecContext, w *Writer) error {
	if v.Val {
		w.U8(1)
	} else {
		w.U8(0)
	}
	return nil
}

func (v *BoolValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	if header {
		return nil
	}
	b, err := r.U8()
	if err != nil {
		return err
	}
	v.Val = b != 0
	return nil
}

func (v *BoolValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	if header {
		return nil
	}
	if v.Val {
		w.U8(1)
	} else {
		w.U8(0)
	}
	return nil
}

// ByteValue is a ByteProperty payload. The on-disk shape is ambiguous:
// a 1-byte literal when the tag's enum name is None, an 8-byte name
// reference into the enum's value names otherwise, and a legacy form
// whose declared length is zero even though one of those payloads
// follows. For the legacy form the name-reference interpretation is
// attempted first (do the next 8 bytes look like an in-bounds table
// index and a non-negative instance number), falling back to the
// 1-byte read. The heuristic is reproduced from the upstream loader
// verbatim; the true intent is undocumented there.
type ByteValue struct {
	// EnumType is the tag's enum type name; the None name means the
	// value is a bare byte.
	EnumType NameRef

	// Exactly one of the two forms is live, selected by IsName.
	IsName  bool
	NameVal NameRef
	ByteVal uint8

	// legacyZeroLength records that the tag declared length zero and
	// the payload was recovered by sniffing. Re-encode writes the same
	// zero length so the byte stream round-trips.
	legacyZeroLength bool
}

func (*ByteValue) TypeName() string { return "ByteProperty" }

func (v *ByteValue) IsZero() bool {
	if v.IsName {
		return false
	}
	return v.ByteVal == 0
}

func (v *ByteValue) declaredZeroSize() bool { return v.legacyZeroLength }

func (v *ByteValue) decodeTagExtras(cc *codecContext, r *Reader) error {
	ref, _, err := cc.readNameRef(r)
	if err != nil {
		return err
	}
	v.EnumType = ref
	return nil
}

func (v *ByteValue) encodeTagExtras(cc *codecContext, w *Writer) error {
	w.NameRefRaw(v.EnumType)
	return nil
}

func (v *ByteValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	if !header {
		b, err := r.U8()
		if err != nil {
			return err
		}
		v.ByteVal = b
		return nil
	}
	switch size {
	case 1:
		b, err := r.U8()
		if err != nil {
			return err
		}
		v.ByteVal = b
	case 8:
		ref, _, err := cc.readNameRef(r)
		if err != nil {
			return err
		}
		v.IsName = true
		v.NameVal = ref
	case 0:
		v.legacyZeroLength = true
		if v.sniffNameRef(cc, r) {
			ref, _, err := cc.readNameRef(r)
			if err != nil {
				return err
			}
			v.IsName = true
			v.NameVal = ref
			return nil
		}
		b, err := r.U8()
		if err != nil {
			return err
		}
		v.ByteVal = b
	default:
		return invalidProperty("byte property declares impossible length %d", size)
	}
	return nil
}

// sniffNameRef peeks the next 8 bytes without consuming them and
// reports whether they plausibly form a name reference: an index
// inside the table and a non-negative instance number.
func (v *ByteValue) sniffNameRef(cc *codecContext, r *Reader) bool {
	if r.Remaining() < 8 {
		return false
	}
	at := r.Offset()
	index, _ := r.I32()
	number, _ := r.I32()
	_ = r.Seek(at)
	return index >= 0 && int(index) < cc.names.Len() && number >= 0
}

func (v *ByteValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	if !header {
		w.U8(v.ByteVal)
		return nil
	}
	if v.IsName {
		w.NameRefRaw(v.NameVal)
	} else {
		w.U8(v.ByteVal)
	}
	return nil
}

// EnumValue is an EnumProperty payload: the tag names the enum type,
// the payload names the chosen value. In the unversioned encoding the
// value is instead the enum's underlying ordinal byte, since the
// schema already knows the enum's names.
type EnumValue struct {
	EnumType NameRef
	Val      NameRef

	ByOrdinal bool
	Ordinal   uint8
}

func (*EnumValue) TypeName() string { return "EnumProperty" }

func (v *EnumValue) IsZero() bool {
	return v.ByOrdinal && v.Ordinal == 0
}

func (v *EnumValue) decodeTagExtras(cc *codecContext, r *Reader) error {
	ref, _, err := cc.readNameRef(r)
	if err != nil {
		return err
	}
	v.EnumType = ref
	return nil
}

func (v *EnumValue) encodeTagExtras(cc *codecContext, w *Writer) error {
	w.NameRefRaw(v.EnumType)
	return nil
}

func (v *EnumValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	if cc.unversioned {
		ordinal, err := r.U8()
		if err != nil {
			return err
		}
		v.ByOrdinal = true
		v.Ordinal = ordinal
		return nil
	}
	ref, _, err := cc.readNameRef(r)
	if err != nil {
		return err
	}
	v.Val = ref
	return nil
}

func (v *EnumValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	if cc.unversioned {
		w.U8(v.Ordinal)
		return nil
	}
	w.NameRefRaw(v.Val)
	return nil
}

// StrValue is a StrProperty payload: one length-prefixed string.
type StrValue struct {
	Val string
}

func (*StrValue) TypeName() string { return "StrProperty" }

func (v *StrValue) IsZero() bool { return v.Val == "" }

func (v *StrValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	s, err := r.FString()
	if err != nil {
		return err
	}
	v.Val = s
	return nil
}

func (v *StrValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	w.FString(v.Val)
	return nil
}

// NameValue is a NameProperty payload: one table reference.
type NameValue struct {
	Val NameRef
}

func (*NameValue) TypeName() string { return "NameProperty" }

func (v *NameValue) IsZero() bool { return false }

func (v *NameValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	ref, _, err := cc.readNameRef(r)
	if err != nil {
		return err
	}
	v.Val = ref
	return nil
}

func (v *NameValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	w.NameRefRaw(v.Val)
	return nil
}

// ObjectValue is an ObjectProperty payload: one package index,
// validated against the owning asset's tables at decode time.
type ObjectValue struct {
	Val PackageIndex
}

func (*ObjectValue) TypeName() string { return "ObjectProperty" }

func (v *ObjectValue) IsZero() bool { return v.Val.IsNull() }

func (v *ObjectValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	raw, err := r.I32()
	if err != nil {
		return err
	}
	v.Val = PackageIndex(raw)
	return cc.checkIndex(v.Val)
}

func (v *ObjectValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	w.I32(int32(v.Val))
	return nil
}

// InterfaceValue is an InterfaceProperty payload: the implementing
// object's package index.
type InterfaceValue struct {
	Val PackageIndex
}

func (*InterfaceValue) TypeName() string { return "InterfaceProperty" }

func (v *InterfaceValue) IsZero() bool { return v.Val.IsNull() }

func (v *InterfaceValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	raw, err := r.I32()
	if err != nil {
		return err
	}
	v.Val = PackageIndex(raw)
	return cc.checkIndex(v.Val)
}

func (v *InterfaceValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	w.I32(int32(v.Val))
	return nil
}

// WeakObjectValue is a WeakObjectProperty payload.
type WeakObjectValue struct {
	Val PackageIndex
}

func (*WeakObjectValue) TypeName() string { return "WeakObjectProperty" }

func (v *WeakObjectValue) IsZero() bool { return v.Val.IsNull() }

func (v *WeakObjectValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	raw, err := r.I32()
	if err != nil {
		return err
	}
	v.Val = PackageIndex(raw)
	return cc.checkIndex(v.Val)
}

func (v *WeakObjectValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	w.I32(int32(v.Val))
	return nil
}

// LazyObjectValue is a LazyObjectProperty payload: the referenced
// object's persistent guid.
type LazyObjectValue struct {
	Val Guid
}

func (*LazyObjectValue) TypeName() string { return "LazyObjectProperty" }

func (v *LazyObjectValue) IsZero() bool { return v.Val.IsZero() }

func (v *LazyObjectValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	g, err := r.Guid()
	if err != nil {
		return err
	}
	v.Val = g
	return nil
}

func (v *LazyObjectValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	w.Guid(v.Val)
	return nil
}

// AssetObjectValue is the pre-soft-object-path AssetObjectProperty:
// a bare path string.
type AssetObjectValue struct {
	Path string
}

func (*AssetObjectValue) TypeName() string { return "AssetObjectProperty" }

func (v *AssetObjectValue) IsZero() bool { return v.Path == "" }

func (v *AssetObjectValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	s, err := r.FString()
	if err != nil {
		return err
	}
	v.Path = s
	return nil
}

func (v *AssetObjectValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	w.FString(v.Path)
	return nil
}

// softKind distinguishes SoftObjectProperty from SoftClassProperty;
// the payloads are identical.
type softKind int

const (
	softObject softKind = iota
	softClass
)

// SoftObjectValue is a SoftObjectProperty or SoftClassProperty
// payload. Three historical shapes exist: a flat path string, a
// (path name, subpath string) pair, and the unified (package name,
// asset name, subpath) triple; the version context picks one.
type SoftObjectValue struct {
	soft softKind

	// PackageName and AssetName carry the unified form
	// ([UE5SoftObjectPathUnifiedNames] and later).
	PackageName NameRef
	AssetName   NameRef

	// PathName carries the middle form ([VerAddedSoftObjectPath] up
	// to the unified split).
	PathName NameRef

	// SubPath is shared by both structured forms; LegacyPath carries
	// the original flat string.
	SubPath    string
	LegacyPath string
}

func (v *SoftObjectValue) TypeName() string {
	if v.soft == softClass {
		return "SoftClassProperty"
	}
	return "SoftObjectProperty"
}

func (v *SoftObjectValue) IsZero() bool { return false }

func (v *SoftObjectValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	switch {
	case cc.ctx.SupportsUE5(UE5SoftObjectPathUnifiedNames):
		packageName, _, err := cc.readNameRef(r)
		if err != nil {
			return err
		}
		assetName, _, err := cc.readNameRef(r)
		if err != nil {
			return err
		}
		subPath, err := r.FString()
		if err != nil {
			return err
		}
		v.PackageName, v.AssetName, v.SubPath = packageName, assetName, subPath
	case cc.ctx.Supports(VerAddedSoftObjectPath):
		pathName, _, err := cc.readNameRef(r)
		if err != nil {
			return err
		}
		subPath, err := r.FString()
		if err != nil {
			return err
		}
		v.PathName, v.SubPath = pathName, subPath
	default:
		path, err := r.FString()
		if err != nil {
			return err
		}
		v.LegacyPath = path
	}
	return nil
}

func (v *SoftObjectValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	switch {
	case cc.ctx.SupportsUE5(UE5SoftObjectPathUnifiedNames):
		w.NameRefRaw(v.PackageName)
		w.NameRefRaw(v.AssetName)
		w.FString(v.SubPath)
	case cc.ctx.Supports(VerAddedSoftObjectPath):
		w.NameRefRaw(v.PathName)
		w.FString(v.SubPath)
	default:
		w.FString(v.LegacyPath)
	}
	return nil
}

// DelegateValue is a DelegateProperty payload: the bound object and
// function name.
type DelegateValue struct {
	Object   PackageIndex
	Function NameRef
}

func (*DelegateValue) TypeName() string { return "DelegateProperty" }

func (v *DelegateValue) IsZero() bool { return v.Object.IsNull() }

func (v *DelegateValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	raw, err := r.I32()
	if err != nil {
		return err
	}
	v.Object = PackageIndex(raw)
	if err := cc.checkIndex(v.Object); err != nil {
		return err
	}
	function, _, err := cc.readNameRef(r)
	if err != nil {
		return err
	}
	v.Function = function
	return nil
}

func (v *DelegateValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	w.I32(int32(v.Object))
	w.NameRefRaw(v.Function)
	return nil
}

// MulticastDelegateValue covers the three multicast delegate variants,
// which share one wire shape: a count followed by bound (object,
// function) pairs.
type MulticastDelegateValue struct {
	kind     string
	Bindings []DelegateValue
}

func (v *MulticastDelegateValue) TypeName() string { return v.kind }

func (v *MulticastDelegateValue) IsZero() bool { return len(v.Bindings) == 0 }

func (v *MulticastDelegateValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	count, err := r.I32()
	if err != nil {
		return err
	}
	if count < 0 {
		return invalidProperty("multicast delegate declares negative binding count %d", count)
	}
	v.Bindings = make([]DelegateValue, count)
	for i := range v.Bindings {
		if err := v.Bindings[i].decodeValue(cc, r, 0, false); err != nil {
			return err
		}
	}
	return nil
}

func (v *MulticastDelegateValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	w.I32(int32(len(v.Bindings)))
	for i := range v.Bindings {
		if err := v.Bindings[i].encodeValue(cc, w, false); err != nil {
			return err
		}
	}
	return nil
}

// FieldPathValue is a FieldPathProperty payload: the path of field
// names from the owning struct down to the field, plus the resolved
// owner reference.
type FieldPathValue struct {
	Path  []NameRef
	Owner PackageIndex
}

func (*FieldPathValue) TypeName() string { return "FieldPathProperty" }

func (v *FieldPathValue) IsZero() bool { return len(v.Path) == 0 && v.Owner.IsNull() }

func (v *FieldPathValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	count, err := r.I32()
	if err != nil {
		return err
	}
	if count < 0 {
		return invalidProperty("field path declares negative segment count %d", count)
	}
	v.Path = make([]NameRef, count)
	for i := range v.Path {
		ref, _, err := cc.readNameRef(r)
		if err != nil {
			return err
		}
		v.Path[i] = ref
	}
	raw, err := r.I32()
	if err != nil {
		return err
	}
	v.Owner = PackageIndex(raw)
	return cc.checkIndex(v.Owner)
}

func (v *FieldPathValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	w.I32(int32(len(v.Path)))
	for _, ref := range v.Path {
		w.NameRefRaw(ref)
	}
	w.I32(int32(v.Owner))
	return nil
}

// RawValue is the opaque fallback for type names outside the
// registry: the payload bytes verbatim, framed by the tag's declared
// length. It round-trips unchanged.
type RawValue struct {
	Type string
	Data []byte
}

func (v *RawValue) TypeName() string { return v.Type }

func (v *RawValue) IsZero() bool { return len(v.Data) == 0 }

func (v *RawValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	b, err := r.Bytes(size)
	if err != nil {
		return err
	}
	v.Data = append([]byte(nil), b...)
	return nil
}

func (v *RawValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	w.Raw(v.Data)
	return nil
}
