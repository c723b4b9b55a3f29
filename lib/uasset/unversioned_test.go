// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

import (
	"bytes"
	"errors"
	"testing"
)

// testSchema is a fixed in-memory schema keyed by type name.
type testSchema struct {
	types map[string][]SchemaProperty
}

func (s *testSchema) PropertyCount(typeName string) (int, error) {
	props, ok := s.types[typeName]
	if !ok {
		return 0, noSchema("unknown type %q", typeName)
	}
	return len(props), nil
}

func (s *testSchema) PropertyAt(typeName string, index int) (SchemaProperty, error) {
	props, ok := s.types[typeName]
	if !ok || index < 0 || index >= len(props) {
		return SchemaProperty{}, noSchema("type %q has no slot %d", typeName, index)
	}
	return props[index], nil
}

func (s *testSchema) GlobalIndex(typeName, propertyName string, dupIndex int) (int, error) {
	for i, p := range s.types[typeName] {
		if p.Name == propertyName && p.DupIndex == dupIndex {
			return i, nil
		}
	}
	return 0, noSchema("type %q has no property %q dup %d", typeName, propertyName, dupIndex)
}

func intSlot(name string) SchemaProperty {
	return SchemaProperty{Name: name, Type: SchemaType{Name: "IntProperty"}}
}

func unversionedCodec(schema UnversionedSchema) *codecContext {
	cc := testCodec(VerCorrectLicenseeFlag, UE5LargeWorldCoordinates)
	cc.schema = schema
	cc.unversioned = true
	return cc
}

func TestUnversionedRoundTrip(t *testing.T) {
	schema := &testSchema{types: map[string][]SchemaProperty{
		"Pickup": {
			intSlot("Count"), intSlot("MaxCount"), intSlot("Weight"),
			intSlot("Durability"), intSlot("Charge"),
		},
	}}
	cc := unversionedCodec(schema)
	intern := func(s string) NameRef { return cc.names.Intern(s, false) }

	// Slots 0, 2, 4 present; slot 2 structurally zero.
	properties := []*Property{
		NewIntProperty(intern("Count"), 3),
		NewIntProperty(intern("Weight"), 0),
		NewIntProperty(intern("Charge"), 12),
	}

	w := NewWriter()
	if err := writeUnversionedProperties(cc, w, "Pickup", properties); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := readUnversionedProperties(cc, NewReader(w.Bytes()), "Pickup")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("decoded %d properties, want 3", len(decoded))
	}
	wantNames := []string{"Count", "Weight", "Charge"}
	wantValues := []int32{3, 0, 12}
	for i, p := range decoded {
		name, _ := cc.names.Resolve(p.Name)
		if name != wantNames[i] {
			t.Fatalf("slot %d name = %q, want %q", i, name, wantNames[i])
		}
		if got := p.Value.(*IntValue).Val; got != wantValues[i] {
			t.Fatalf("slot %d value = %d, want %d", i, got, wantValues[i])
		}
	}
	if !decoded[1].Value.IsZero() {
		t.Fatalf("zero-masked slot decoded non-zero")
	}

	again := NewWriter()
	if err := writeUnversionedProperties(cc, again, "Pickup", decoded); err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(again.Bytes(), w.Bytes()) {
		t.Fatalf("unversioned set did not round trip:\n got %x\nwant %x", again.Bytes(), w.Bytes())
	}
}

func TestUnversionedUnknownPropertyIsFatal(t *testing.T) {
	schema := &testSchema{types: map[string][]SchemaProperty{
		"Pickup": {intSlot("Count")},
	}}
	cc := unversionedCodec(schema)
	properties := []*Property{NewIntProperty(cc.names.Intern("Bogus", false), 1)}

	err := writeUnversionedProperties(cc, NewWriter(), "Pickup", properties)
	if !errors.Is(err, ErrNoSchemaMapping) {
		t.Fatalf("encode error = %v, want ErrNoSchemaMapping", err)
	}
}

func TestBuildHeaderSplitsLongRuns(t *testing.T) {
	slots := make([]slotState, 200)
	for i := range slots {
		slots[i] = slotState{index: i}
	}
	header := buildUnversionedHeader(slots, 0)

	total := 0
	for i, fragment := range header.Fragments {
		if fragment.ValueNum > fragmentRunMax {
			t.Fatalf("fragment %d carries %d values, max is %d", i, fragment.ValueNum, fragmentRunMax)
		}
		total += fragment.ValueNum
		if fragment.IsLast != (i == len(header.Fragments)-1) {
			t.Fatalf("is-last set on fragment %d of %d", i, len(header.Fragments))
		}
	}
	if total != 200 {
		t.Fatalf("fragments cover %d slots, want 200", total)
	}

	// Wire round trip.
	w := NewWriter()
	header.writeTo(w)
	parsed, err := parseUnversionedHeader(NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed.Fragments) != len(header.Fragments) {
		t.Fatalf("parsed %d fragments, want %d", len(parsed.Fragments), len(header.Fragments))
	}
	if parsed.Fragments[1].FirstIndex != header.Fragments[1].FirstIndex {
		t.Fatalf("parsed first index = %d, want %d",
			parsed.Fragments[1].FirstIndex, header.Fragments[1].FirstIndex)
	}
}

func TestBuildHeaderLongSkip(t *testing.T) {
	// One value far past the 127-slot skip limit.
	header := buildUnversionedHeader([]slotState{{index: 300}}, 0)
	skip := 0
	for _, fragment := range header.Fragments {
		if fragment.SkipNum > fragmentRunMax {
			t.Fatalf("fragment skips %d slots, max is %d", fragment.SkipNum, fragmentRunMax)
		}
		skip += fragment.SkipNum
	}
	if skip != 300 {
		t.Fatalf("fragments skip %d slots, want 300", skip)
	}
	last := header.Fragments[len(header.Fragments)-1]
	if last.ValueNum != 1 || !last.IsLast {
		t.Fatalf("final fragment = %+v, want one value, is-last", last)
	}
}

func TestSkipOnlyHeaderForEmptySet(t *testing.T) {
	header := buildUnversionedHeader(nil, 300)
	if header.HasValues() {
		t.Fatalf("empty set built a header with values")
	}
	covered := 0
	for _, fragment := range header.Fragments {
		covered += fragment.SkipNum
	}
	if covered != 300 {
		t.Fatalf("skip-only header covers %d slots, want 300", covered)
	}

	w := NewWriter()
	header.writeTo(w)
	parsed, err := parseUnversionedHeader(NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.HasValues() {
		t.Fatalf("parsed skip-only header reports values")
	}
}

func TestZeroMaskWordSizes(t *testing.T) {
	cases := []struct{ bits, want int }{
		{0, 0}, {1, 1}, {8, 1}, {9, 2}, {16, 2}, {17, 4}, {32, 4}, {33, 8},
	}
	for _, c := range cases {
		if got := zeroMaskBytes(c.bits); got != c.want {
			t.Fatalf("zeroMaskBytes(%d) = %d, want %d", c.bits, got, c.want)
		}
	}
}

func TestFragmentPackUnpack(t *testing.T) {
	cases := []Fragment{
		{},
		{SkipNum: 127, ValueNum: 127, IsLast: true, HasZeros: true},
		{SkipNum: 3, ValueNum: 1},
		{ValueNum: 80, HasZeros: true},
	}
	for _, f := range cases {
		got := unpackFragment(f.pack())
		if got.SkipNum != f.SkipNum || got.ValueNum != f.ValueNum ||
			got.IsLast != f.IsLast || got.HasZeros != f.HasZeros {
			t.Fatalf("pack/unpack mangled %+v into %+v", f, got)
		}
	}
}
