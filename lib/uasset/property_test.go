// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

import (
	"bytes"
	"reflect"
	"testing"
)

func testCodec(object ObjectVersion, ue5 UE5Version) *codecContext {
	return &codecContext{
		names:       NewNameTable(),
		ctx:         NewVersionContext(object, ue5, nil),
		importCount: 8,
		exportCount: 8,
	}
}

// roundTripProperties encodes a list, decodes it with a fresh pass
// over the same names, and re-encodes, demanding byte equality.
func roundTripProperties(t *testing.T, cc *codecContext, properties []*Property) []*Property {
	t.Helper()
	w := NewWriter()
	if err := writePropertyList(cc, w, properties); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := readPropertyList(cc, NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	again := NewWriter()
	if err := writePropertyList(cc, again, decoded); err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(again.Bytes(), w.Bytes()) {
		t.Fatalf("re-encoded property list differs from original\n first: %x\nsecond: %x", w.Bytes(), again.Bytes())
	}
	return decoded
}

func TestIntPropertyBelowGuidGate(t *testing.T) {
	cc := testCodec(VerInnerArrayTagInfo, UE5VersionNone)
	health := NewIntProperty(cc.names.Intern("Health", false), 100)

	w := NewWriter()
	if err := writeProperty(cc, w, health); err != nil {
		t.Fatalf("encode: %v", err)
	}
	// name(8) + type(8) + size(4) + dup(4) + payload(4); no guid byte.
	if got, want := w.Len(), 28; got != want {
		t.Fatalf("encoded width = %d, want %d", got, want)
	}

	decoded, err := readProperty(cc, NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	value, ok := decoded.Value.(*IntValue)
	if !ok || value.Val != 100 {
		t.Fatalf("decoded value = %#v, want IntValue 100", decoded.Value)
	}
	if decoded.HasGuid {
		t.Fatalf("property below the gate decoded with a guid")
	}
}

func TestIntPropertyAtGuidGate(t *testing.T) {
	cc := testCodec(VerPropertyGuidInPropertyTag, UE5VersionNone)
	health := NewIntProperty(cc.names.Intern("Health", false), 100)

	w := NewWriter()
	if err := writeProperty(cc, w, health); err != nil {
		t.Fatalf("encode: %v", err)
	}
	// The gate adds the presence byte even when no guid follows.
	if got, want := w.Len(), 29; got != want {
		t.Fatalf("encoded width = %d, want %d", got, want)
	}

	health.HasGuid = true
	health.Guid = NewGuid(1, 2, 3, 4)
	w = NewWriter()
	if err := writeProperty(cc, w, health); err != nil {
		t.Fatalf("encode with guid: %v", err)
	}
	if got, want := w.Len(), 29+16; got != want {
		t.Fatalf("encoded width with guid = %d, want %d", got, want)
	}
	decoded, err := readProperty(cc, NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.HasGuid || decoded.Guid != health.Guid {
		t.Fatalf("guid did not round trip: %+v", decoded)
	}
}

func TestScalarListRoundTrip(t *testing.T) {
	cc := testCodec(VerCorrectLicenseeFlag, UE5VersionNone)
	intern := func(s string) NameRef { return cc.names.Intern(s, false) }

	properties := []*Property{
		NewIntProperty(intern("Health"), 100),
		{Name: intern("Label"), Value: &StrValue{Val: "hello"}},
		{Name: intern("Target"), Value: &ObjectValue{Val: ImportIndex(1)}},
		{Name: intern("Scale"), Value: &FloatValue{}},
		{Name: intern("Alive"), Value: &BoolValue{Val: true}},
	}
	decoded := roundTripProperties(t, cc, properties)
	if !reflect.DeepEqual(decoded, properties) {
		t.Fatalf("decoded list differs:\n got %#v\nwant %#v", decoded, properties)
	}
}

func TestDuplicationIndexPreserved(t *testing.T) {
	cc := testCodec(VerCorrectLicenseeFlag, UE5VersionNone)
	name := cc.names.Intern("Slot", false)
	properties := []*Property{
		NewIntProperty(name, 1),
		{Name: name, DuplicationIndex: 1, Value: &IntValue{}},
		{Name: name, DuplicationIndex: 2, Value: &IntValue{}},
	}
	properties[1].Value.(*IntValue).Val = 2
	properties[2].Value.(*IntValue).Val = 3

	decoded := roundTripProperties(t, cc, properties)
	for i, p := range decoded {
		if got, want := p.DuplicationIndex, int32(i); got != want {
			t.Fatalf("entry %d duplication index = %d, want %d", i, got, want)
		}
	}
}

func TestIntArrayRoundTrip(t *testing.T) {
	cc := testCodec(VerCorrectLicenseeFlag, UE5VersionNone)
	array := &ArrayValue{arrayBody: arrayBody{InnerType: "IntProperty"}}
	for _, v := range []int32{5, 10, 15} {
		array.Elements = append(array.Elements, &IntValue{numericValue[int32]{Val: v}})
	}
	properties := []*Property{{Name: cc.names.Intern("Values", false), Value: array}}

	decoded := roundTripProperties(t, cc, properties)
	got, ok := decoded[0].Value.(*ArrayValue)
	if !ok || len(got.Elements) != 3 {
		t.Fatalf("decoded array = %#v", decoded[0].Value)
	}
	if v := got.Elements[2].(*IntValue).Val; v != 15 {
		t.Fatalf("element 2 = %d, want 15", v)
	}
}

func TestEmptyStructArrayPlaceholder(t *testing.T) {
	cc := testCodec(VerCorrectLicenseeFlag, UE5VersionNone)
	name := cc.names.Intern("Points", false)
	properties := []*Property{{Name: name, Value: NewStructArray(name, "Vector")}}

	decoded := roundTripProperties(t, cc, properties)
	array, ok := decoded[0].Value.(*ArrayValue)
	if !ok {
		t.Fatalf("decoded value = %#v", decoded[0].Value)
	}
	if len(array.Elements) != 0 {
		t.Fatalf("empty array decoded %d elements", len(array.Elements))
	}
	// The synthesized placeholder tag preserves the element type.
	if array.InnerType != "StructProperty" || array.StructTypeName != "Vector" {
		t.Fatalf("placeholder lost type info: inner=%q struct=%q", array.InnerType, array.StructTypeName)
	}
}

func TestByteLengthZeroSniffsNameRef(t *testing.T) {
	cc := testCodec(VerInnerArrayTagInfo, UE5VersionNone)
	intern := func(s string) NameRef { return cc.names.Intern(s, false) }
	propName := intern("Rarity")
	typeName := intern("ByteProperty")
	enumType := intern("ERarity")
	enumValue := intern("ERarity::Epic")

	// Hand-built legacy shape: declared size 0, 8-byte payload.
	w := NewWriter()
	w.NameRefRaw(propName)
	w.NameRefRaw(typeName)
	w.I32(0) // declared size
	w.I32(0) // duplication index
	w.NameRefRaw(enumType)
	w.NameRefRaw(enumValue) // payload despite size 0

	decoded, err := readProperty(cc, NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	value, ok := decoded.Value.(*ByteValue)
	if !ok || !value.IsName || value.NameVal != enumValue {
		t.Fatalf("decoded = %#v, want name-reference form %v", decoded.Value, enumValue)
	}

	// Re-encode keeps the declared zero size and the full payload.
	again := NewWriter()
	if err := writeProperty(cc, again, decoded); err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(again.Bytes(), w.Bytes()) {
		t.Fatalf("legacy byte property did not round trip:\n got %x\nwant %x", again.Bytes(), w.Bytes())
	}
}

func TestByteLengthZeroFallsBackToLiteral(t *testing.T) {
	cc := testCodec(VerInnerArrayTagInfo, UE5VersionNone)
	intern := func(s string) NameRef { return cc.names.Intern(s, false) }

	w := NewWriter()
	w.NameRefRaw(intern("Flags"))
	w.NameRefRaw(intern("ByteProperty"))
	w.I32(0)
	w.I32(0)
	w.NameRefRaw(intern("None"))
	w.U8(7) // single literal byte; too short to be a name reference

	decoded, err := readProperty(cc, NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	value, ok := decoded.Value.(*ByteValue)
	if !ok || value.IsName || value.ByteVal != 7 {
		t.Fatalf("decoded = %#v, want literal byte 7", decoded.Value)
	}
}

func TestUnknownTypeRoundTripsRaw(t *testing.T) {
	cc := testCodec(VerCorrectLicenseeFlag, UE5VersionNone)
	intern := func(s string) NameRef { return cc.names.Intern(s, false) }

	w := NewWriter()
	w.NameRefRaw(intern("Custom"))
	w.NameRefRaw(intern("FrobProperty"))
	sizeAt := w.ReserveI32()
	w.I32(0)
	w.U8(0) // no guid
	payloadStart := w.Len()
	w.Raw([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	w.PatchI32(sizeAt, int32(w.Len()-payloadStart))

	decoded, err := readProperty(cc, NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	raw, ok := decoded.Value.(*RawValue)
	if !ok || raw.TypeName() != "FrobProperty" {
		t.Fatalf("decoded = %#v, want RawValue FrobProperty", decoded.Value)
	}

	again := NewWriter()
	if err := writeProperty(cc, again, decoded); err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(again.Bytes(), w.Bytes()) {
		t.Fatalf("raw property did not round trip")
	}
}
