// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

import "fmt"

// codecContext carries the per-asset state every property variant
// needs while decoding or encoding: the name table for reference
// resolution, the version context for gated fields, table sizes for
// object index validation, and the schema when running unversioned.
// It is built by the asset pipeline and passed explicitly; no variant
// reads ambient global state.
type codecContext struct {
	names       *NameTable
	ctx         *VersionContext
	schema      UnversionedSchema
	importCount int
	exportCount int

	// unversioned marks schema-driven decoding: property lists have
	// no inline tags and no None sentinel, and struct members recurse
	// through the schema instead of tags.
	unversioned bool
}

// readNameRef decodes a name reference and resolves it against the
// table, failing with [ErrInvalidIndex] on an out-of-bounds index.
func (cc *codecContext) readNameRef(r *Reader) (NameRef, string, error) {
	ref, err := r.NameRefRaw()
	if err != nil {
		return NameRef{}, "", err
	}
	value, err := cc.names.Resolve(ref)
	if err != nil {
		return NameRef{}, "", err
	}
	return ref, value, nil
}

// checkIndex validates a decoded object reference against the current
// table sizes.
func (cc *codecContext) checkIndex(index PackageIndex) error {
	switch {
	case index.IsExport() && index.ExportPosition() >= cc.exportCount:
		return invalidIndex("object index %s outside export table of %d entries", index, cc.exportCount)
	case index.IsImport() && index.ImportPosition() >= cc.importCount:
		return invalidIndex("object index %s outside import table of %d entries", index, cc.importCount)
	}
	return nil
}

// Value is one property payload variant. Implementations decode and
// encode exactly the bytes their wire shape occupies.
//
// The header flag distinguishes a standalone tagged property (true)
// from a bare element inside a container (false): a few variants keep
// part of their state in the tag (Bool's value byte, Byte's enum name)
// and read or write it only when the tag is theirs.
type Value interface {
	// TypeName returns the wire type name, e.g. "IntProperty".
	TypeName() string

	// IsZero reports whether the value is structurally empty. The
	// unversioned header build uses this to populate the zero mask.
	IsZero() bool

	decodeValue(cc *codecContext, r *Reader, size int, header bool) error
	encodeValue(cc *codecContext, w *Writer, header bool) error
}

// tagExtras is implemented by variants whose tag carries extra fields
// between the duplication index and the property guid (struct type
// names, container inner types, Bool's value byte, Byte's enum name).
type tagExtras interface {
	decodeTagExtras(cc *codecContext, r *Reader) error
	encodeTagExtras(cc *codecContext, w *Writer) error
}

// Property is one decoded tagged value: the tag fields plus the typed
// payload. Container payloads own nested Property values, forming a
// strictly downward tree.
type Property struct {
	Name             NameRef
	DuplicationIndex int32

	// HasGuid and Guid carry the optional per-property tag guid,
	// present only at or past [VerPropertyGuidInPropertyTag].
	HasGuid bool
	Guid    Guid

	Value Value
}

// TypeName returns the payload's wire type name.
func (p *Property) TypeName() string {
	return p.Value.TypeName()
}

// valueFactory constructs an empty (zero) payload for one variant.
type valueFactory func() Value

// valueRegistry is the single dispatch table mapping wire type names
// to variant constructors. Decode, encode, and zero-value
// materialization all go through it so the three paths cannot drift.
var valueRegistry = map[string]valueFactory{
	"Int8Property":   func() Value { return &Int8Value{} },
	"Int16Property":  func() Value { return &Int16Value{} },
	"IntProperty":    func() Value { return &IntValue{} },
	"Int64Property":  func() Value { return &Int64Value{} },
	"UInt16Property": func() Value { return &UInt16Value{} },
	"UInt32Property": func() Value { return &UInt32Value{} },
	"UInt64Property": func() Value { return &UInt64Value{} },
	"FloatProperty":  func() Value { return &FloatValue{} },
	"DoubleProperty": func() Value { return &DoubleValue{} },

	"BoolProperty": func() Value { return &BoolValue{} },
	"ByteProperty": func() Value { return &ByteValue{} },
	"EnumProperty": func() Value { return &EnumValue{} },

	"StrProperty":  func() Value { return &StrValue{} },
	"NameProperty": func() Value { return &NameValue{} },
	"TextProperty": func() Value { return &TextValue{History: TextHistoryNone} },

	"ObjectProperty":     func() Value { return &ObjectValue{} },
	"InterfaceProperty":  func() Value { return &InterfaceValue{} },
	"WeakObjectProperty": func() Value { return &WeakObjectValue{} },
	"LazyObjectProperty": func() Value { return &LazyObjectValue{} },
	"SoftObjectProperty": func() Value { return &SoftObjectValue{} },
	"SoftClassProperty":  func() Value { return &SoftObjectValue{soft: softClass} },
	"AssetObjectProperty": func() Value {
		return &AssetObjectValue{}
	},

	"DelegateProperty":                func() Value { return &DelegateValue{} },
	"MulticastDelegateProperty":       func() Value { return &MulticastDelegateValue{kind: "MulticastDelegateProperty"} },
	"MulticastInlineDelegateProperty": func() Value { return &MulticastDelegateValue{kind: "MulticastInlineDelegateProperty"} },
	"MulticastSparseDelegateProperty": func() Value { return &MulticastDelegateValue{kind: "MulticastSparseDelegateProperty"} },
	"FieldPathProperty":               func() Value { return &FieldPathValue{} },

	"ArrayProperty":  func() Value { return &ArrayValue{} },
	"SetProperty":    func() Value { return &SetValue{} },
	"MapProperty":    func() Value { return &MapValue{} },
	"StructProperty": func() Value { return &StructValue{} },
}

// newValue constructs the zero payload for a wire type name. Type
// names outside the registry come back as an opaque [RawValue] so an
// unrecognized but well-framed property still round-trips; the tag's
// serialized length frames it.
func newValue(typeName string) Value {
	if factory, ok := valueRegistry[typeName]; ok {
		return factory()
	}
	return &RawValue{Type: typeName}
}

// readProperty decodes one tagged property. The None sentinel name
// ends a property list and returns (nil, nil).
func readProperty(cc *codecContext, r *Reader) (*Property, error) {
	nameRef, name, err := cc.readNameRef(r)
	if err != nil {
		return nil, err
	}
	if name == noneName {
		return nil, nil
	}

	_, typeName, err := cc.readNameRef(r)
	if err != nil {
		return nil, propertyError(name, err)
	}
	size, err := r.I32()
	if err != nil {
		return nil, propertyError(name, err)
	}
	if size < 0 {
		return nil, invalidProperty("property %q declares negative length %d", name, size)
	}
	duplication, err := r.I32()
	if err != nil {
		return nil, propertyError(name, err)
	}

	property := &Property{
		Name:             nameRef,
		DuplicationIndex: duplication,
		Value:            newValue(typeName),
	}

	if extras, ok := property.Value.(tagExtras); ok {
		if err := extras.decodeTagExtras(cc, r); err != nil {
			return nil, propertyError(name, err)
		}
	}

	if cc.ctx.Supports(VerPropertyGuidInPropertyTag) {
		flag, err := r.U8()
		if err != nil {
			return nil, propertyError(name, err)
		}
		if flag != 0 {
			guid, err := r.Guid()
			if err != nil {
				return nil, propertyError(name, err)
			}
			property.HasGuid = true
			property.Guid = guid
		}
	}

	start := r.Offset()
	if err := property.Value.decodeValue(cc, r, int(size), true); err != nil {
		return nil, propertyError(name, err)
	}
	if consumed := r.Offset() - start; consumed != int(size) {
		// The one sanctioned mismatch is the legacy zero-length byte
		// property, whose payload exists despite the declared length.
		if zs, ok := property.Value.(zeroDeclared); !ok || !zs.declaredZeroSize() {
			return nil, invalidProperty("property %q (%s): payload declared %d bytes, decoder consumed %d",
				name, typeName, size, consumed)
		}
	}
	return property, nil
}

// zeroDeclared is implemented by values that must re-encode with a
// declared length of zero regardless of the bytes their payload
// actually occupies (the legacy byte-property shape).
type zeroDeclared interface {
	declaredZeroSize() bool
}

// writeProperty encodes one tagged property, reserving the length
// field and patching it once the payload size is known. An encode-time
// inconsistency is always fatal; nothing is guessed.
func writeProperty(cc *codecContext, w *Writer, property *Property) error {
	w.NameRefRaw(property.Name)
	typeRef := cc.names.Intern(property.TypeName(), false)
	w.NameRefRaw(typeRef)
	sizeAt := w.ReserveI32()
	w.I32(property.DuplicationIndex)

	if extras, ok := property.Value.(tagExtras); ok {
		if err := extras.encodeTagExtras(cc, w); err != nil {
			return err
		}
	}

	if cc.ctx.Supports(VerPropertyGuidInPropertyTag) {
		if property.HasGuid {
			w.U8(1)
			w.Guid(property.Guid)
		} else {
			w.U8(0)
		}
	}

	payloadStart := w.Len()
	if err := property.Value.encodeValue(cc, w, true); err != nil {
		return err
	}
	if zs, ok := property.Value.(zeroDeclared); ok && zs.declaredZeroSize() {
		w.PatchI32(sizeAt, 0)
	} else {
		w.PatchI32(sizeAt, int32(w.Len()-payloadStart))
	}
	return nil
}

// readPropertyList decodes tagged properties until the None sentinel.
// Order is preserved; it is observable and must round-trip.
func readPropertyList(cc *codecContext, r *Reader) ([]*Property, error) {
	var properties []*Property
	for {
		property, err := readProperty(cc, r)
		if err != nil {
			return nil, err
		}
		if property == nil {
			return properties, nil
		}
		properties = append(properties, property)
	}
}

// writePropertyList encodes properties in order and terminates with
// the None sentinel.
func writePropertyList(cc *codecContext, w *Writer, properties []*Property) error {
	for _, property := range properties {
		if err := writeProperty(cc, w, property); err != nil {
			return err
		}
	}
	w.NameRefRaw(cc.names.Intern(noneName, false))
	return nil
}

// noneName is the sentinel table string that terminates every tagged
// property list.
const noneName = "None"

// propertyError wraps a nested decode error with the owning
// property's name so failures deep in a container tree stay
// attributable.
func propertyError(name string, err error) error {
	return fmt.Errorf("property %q: %w", name, err)
}
