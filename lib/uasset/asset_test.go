// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

import (
	"bytes"
	"errors"
	"testing"
)

// buildTestAsset authors a minimal 4.27 package: one package import,
// one class import, one normal export with a small property list.
func buildTestAsset(t *testing.T) *Asset {
	t.Helper()
	ctx, err := VersionContextForEngine(Engine4_27)
	if err != nil {
		t.Fatalf("version context: %v", err)
	}
	a := NewAsset(ctx)
	intern := func(s string) NameRef { return a.Names.Intern(s, false) }

	pkg := a.AddImport(Import{
		ClassPackage: intern("/Script/CoreUObject"),
		ClassName:    intern("Package"),
		ObjectName:   intern("/Game/TestAsset"),
	})
	class := a.FindOrAddImport("/Script/Engine", "Actor", "Actor")

	a.Exports = append(a.Exports, &Export{
		ClassIndex:  class,
		OuterIndex:  pkg,
		ObjectName:  intern("TestActor"),
		ObjectFlags: 1,
		Payload: &NormalExport{
			Properties: []*Property{
				NewIntProperty(intern("Health"), 100),
				{Name: intern("Label"), Value: &StrValue{Val: "spawned"}},
			},
		},
	})
	a.DependsMap = [][]PackageIndex{nil}
	return a
}

func TestAssetEncodeDecodeRoundTrip(t *testing.T) {
	authored := buildTestAsset(t)
	encoded, err := authored.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodeAsset(encoded, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.PayloadErrors) != 0 {
		t.Fatalf("decode contained payload errors: %v", decoded.PayloadErrors)
	}
	if got, want := len(decoded.Imports), 2; got != want {
		t.Fatalf("decoded %d imports, want %d", got, want)
	}
	if got, want := len(decoded.Exports), 1; got != want {
		t.Fatalf("decoded %d exports, want %d", got, want)
	}

	normal, ok := decoded.Exports[0].Payload.(*NormalExport)
	if !ok {
		t.Fatalf("export payload = %T, want *NormalExport", decoded.Exports[0].Payload)
	}
	if got, want := len(normal.Properties), 2; got != want {
		t.Fatalf("decoded %d properties, want %d", got, want)
	}
	name, _ := decoded.Names.Resolve(normal.Properties[0].Name)
	if name != "Health" {
		t.Fatalf("property 0 name = %q, want Health", name)
	}
	if got := normal.Properties[0].Value.(*IntValue).Val; got != 100 {
		t.Fatalf("Health = %d, want 100", got)
	}

	// A decoded asset re-encodes byte for byte.
	again, err := decoded.Encode()
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(again, encoded) {
		t.Fatalf("re-encoded asset differs: %d vs %d bytes", len(again), len(encoded))
	}
}

func TestAssetEditThenRoundTrip(t *testing.T) {
	authored := buildTestAsset(t)
	encoded, err := authored.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	a, err := DecodeAsset(encoded, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Surgical edit: bump a value and append a property whose name and
	// type are new to the table.
	normal := a.Exports[0].Payload.(*NormalExport)
	normal.Properties[0].Value.(*IntValue).Val = 250
	normal.Properties = append(normal.Properties, &Property{
		Name:  a.Names.Intern("Armor", false),
		Value: &FloatValue{numericValue[float32]{Val: 0.5}},
	})

	edited, err := a.Encode()
	if err != nil {
		t.Fatalf("encode edited: %v", err)
	}
	back, err := DecodeAsset(edited, nil)
	if err != nil {
		t.Fatalf("decode edited: %v", err)
	}
	got := back.Exports[0].Payload.(*NormalExport)
	if len(got.Properties) != 3 {
		t.Fatalf("edited export has %d properties, want 3", len(got.Properties))
	}
	if v := got.Properties[0].Value.(*IntValue).Val; v != 250 {
		t.Fatalf("edited Health = %d, want 250", v)
	}
	if name, _ := back.Names.Resolve(got.Properties[2].Name); name != "Armor" {
		t.Fatalf("appended property name = %q, want Armor", name)
	}
}

func TestPayloadFailureIsContained(t *testing.T) {
	ctx, err := VersionContextForEngine(Engine4_27)
	if err != nil {
		t.Fatalf("version context: %v", err)
	}
	a := NewAsset(ctx)
	intern := func(s string) NameRef { return a.Names.Intern(s, false) }

	pkg := a.AddImport(Import{
		ClassPackage: intern("/Script/CoreUObject"),
		ClassName:    intern("Package"),
		ObjectName:   intern("/Game/Broken"),
	})
	class := a.FindOrAddImport("/Script/Engine", "DataTable", "DataTable")

	// Payload bytes that cannot parse as a data table: the leading
	// name index is far outside the table.
	garbage := bytes.Repeat([]byte{0xFF}, 16)
	a.Exports = append(a.Exports, &Export{
		ClassIndex: class,
		OuterIndex: pkg,
		ObjectName: intern("Broken"),
		Payload:    &RawExport{Data: garbage},
	})
	a.DependsMap = [][]PackageIndex{nil}

	encoded, err := a.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeAsset(encoded, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	// The failure is recorded, the payload degrades to raw, and the
	// asset still re-encodes byte-identically.
	if _, ok := decoded.PayloadErrors[0]; !ok {
		t.Fatalf("payload failure was not recorded")
	}
	raw, ok := decoded.Exports[0].Payload.(*RawExport)
	if !ok {
		t.Fatalf("contained payload = %T, want *RawExport", decoded.Exports[0].Payload)
	}
	if !bytes.Equal(raw.Data, garbage) {
		t.Fatalf("contained payload bytes differ")
	}
	again, err := decoded.Encode()
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(again, encoded) {
		t.Fatalf("contained asset did not round trip")
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
	if _, err := DecodeAsset(data, nil); !errors.Is(err, ErrMalformedFile) {
		t.Fatalf("bad magic error = %v, want ErrMalformedFile", err)
	}
}

func TestFindOrAddImportDeduplicates(t *testing.T) {
	ctx, err := VersionContextForEngine(Engine4_27)
	if err != nil {
		t.Fatalf("version context: %v", err)
	}
	a := NewAsset(ctx)
	first := a.FindOrAddImport("/Script/Engine", "Actor", "Actor")
	second := a.FindOrAddImport("/Script/Engine", "Actor", "Actor")
	if first != second {
		t.Fatalf("repeated lookup created a new import: %d then %d", first, second)
	}
	if len(a.Imports) != 1 {
		t.Fatalf("import table has %d entries, want 1", len(a.Imports))
	}
	third := a.FindOrAddImport("/Script/Engine", "Class", "Actor")
	if third == first {
		t.Fatalf("different class reused import %d", first)
	}
}
