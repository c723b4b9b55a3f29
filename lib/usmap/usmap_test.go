// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package usmap

import (
	"errors"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/uassetkit/uassetkit/lib/uasset"
)

// fixtureBody builds the decompressed table section of a mapping file
// describing a two-level hierarchy:
//
//	ItemBase: Weight(int) at 0, Rarity(enum ERarity:byte) at 1
//	Weapon(ItemBase): Damage(float) at 0, Sockets(name)[2] at 1..2
func fixtureBody(version uint8) []byte {
	w := uasset.NewWriter()
	names := []string{
		"ItemBase", "Weight", "Rarity", "ERarity", "Common", "Epic",
		"Weapon", "Damage", "Sockets",
	}
	w.U32(uint32(len(names)))
	for _, n := range names {
		if version >= VersionLongNames {
			w.U16(uint16(len(n)))
		} else {
			w.U8(uint8(len(n)))
		}
		w.Raw([]byte(n))
	}

	// One enum: ERarity { Common, Epic }.
	w.U32(1)
	w.U32(3)
	if version >= VersionLargeEnums {
		w.U16(2)
	} else {
		w.U8(2)
	}
	w.U32(4)
	w.U32(5)

	w.U32(2)

	// ItemBase: no super, two slots, two serialized properties.
	w.U32(0)
	w.U32(0xFFFFFFFF)
	w.U16(2)
	w.U16(2)
	w.U16(0) // slot
	w.U8(1)  // dim
	w.U32(1) // Weight
	w.U8(2)  // IntProperty
	w.U16(1)
	w.U8(1)
	w.U32(2) // Rarity
	w.U8(26) // EnumProperty
	w.U8(0)  // underlying ByteProperty
	w.U32(3) // ERarity

	// Weapon: super ItemBase, three slots (Sockets is a static array
	// of two), two serialized properties.
	w.U32(6)
	w.U32(0)
	w.U16(3)
	w.U16(2)
	w.U16(0)
	w.U8(1)
	w.U32(7) // Damage
	w.U8(3)  // FloatProperty
	w.U16(1)
	w.U8(2)
	w.U32(8) // Sockets
	w.U8(5)  // NameProperty

	return w.Bytes()
}

func fixtureFile(t *testing.T, version, method uint8) []byte {
	t.Helper()
	body := fixtureBody(version)
	payload := body
	if method == compressionZstd {
		encoder, err := zstd.NewWriter(nil)
		if err != nil {
			t.Fatalf("zstd writer: %v", err)
		}
		payload = encoder.EncodeAll(body, nil)
	}

	w := uasset.NewWriter()
	w.U16(mappingsMagic)
	w.U8(version)
	if version >= VersionPackageVersioning {
		w.I32(0) // no versioning block
	}
	w.U8(method)
	w.U32(uint32(len(payload)))
	w.U32(uint32(len(body)))
	w.Raw(payload)
	return w.Bytes()
}

func TestLoadResolvesInheritedSlots(t *testing.T) {
	m, err := Load(fixtureFile(t, VersionLargeEnums, compressionNone))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	count, err := m.PropertyCount("Weapon")
	if err != nil || count != 5 {
		t.Fatalf("PropertyCount(Weapon) = %d, %v; want 5", count, err)
	}

	// Own slots first, then the super's.
	cases := []struct {
		index int
		name  string
		dup   int
		typ   string
	}{
		{0, "Damage", 0, "FloatProperty"},
		{1, "Sockets", 0, "NameProperty"},
		{2, "Sockets", 1, "NameProperty"},
		{3, "Weight", 0, "IntProperty"},
		{4, "Rarity", 0, "EnumProperty"},
	}
	for _, c := range cases {
		slot, err := m.PropertyAt("Weapon", c.index)
		if err != nil {
			t.Fatalf("PropertyAt(Weapon, %d): %v", c.index, err)
		}
		if slot.Name != c.name || slot.DupIndex != c.dup || slot.Type.Name != c.typ {
			t.Fatalf("slot %d = %q dup %d type %q, want %q dup %d type %q",
				c.index, slot.Name, slot.DupIndex, slot.Type.Name, c.name, c.dup, c.typ)
		}
		// The reverse lookup agrees.
		back, err := m.GlobalIndex("Weapon", c.name, c.dup)
		if err != nil || back != c.index {
			t.Fatalf("GlobalIndex(Weapon, %q, %d) = %d, %v; want %d",
				c.name, c.dup, back, err, c.index)
		}
	}

	rarity, _ := m.PropertyAt("Weapon", 4)
	if rarity.Type.EnumName != "ERarity" || rarity.Type.Inner == nil ||
		rarity.Type.Inner.Name != "ByteProperty" {
		t.Fatalf("enum slot type = %+v, want ERarity over ByteProperty", rarity.Type)
	}
	if got := m.Enum("ERarity"); len(got) != 2 || got[1] != "Epic" {
		t.Fatalf("Enum(ERarity) = %v", got)
	}
}

func TestLoadInitialVersionLayout(t *testing.T) {
	m, err := Load(fixtureFile(t, VersionInitial, compressionNone))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	count, err := m.PropertyCount("ItemBase")
	if err != nil || count != 2 {
		t.Fatalf("PropertyCount(ItemBase) = %d, %v; want 2", count, err)
	}
}

func TestLoadZstdBody(t *testing.T) {
	m, err := Load(fixtureFile(t, VersionLargeEnums, compressionZstd))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := m.Structs["Weapon"]; !ok {
		t.Fatalf("zstd fixture lost the struct table")
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	data := fixtureFile(t, VersionLargeEnums, compressionNone)
	data[0] = 0x00
	if _, err := Load(data); !errors.Is(err, ErrMalformedMappings) {
		t.Fatalf("bad magic error = %v, want ErrMalformedMappings", err)
	}
}

func TestLoadOodleIsUnimplemented(t *testing.T) {
	data := fixtureFile(t, VersionLargeEnums, compressionNone)
	// Method byte follows magic, version, and the versioning flag.
	data[2+1+4] = compressionOodle
	if _, err := Load(data); !errors.Is(err, uasset.ErrUnimplementedVariant) {
		t.Fatalf("oodle error = %v, want ErrUnimplementedVariant", err)
	}
}

func TestUnknownTypeHasNoMapping(t *testing.T) {
	m, err := Load(fixtureFile(t, VersionLargeEnums, compressionNone))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := m.PropertyCount("Ghost"); !errors.Is(err, uasset.ErrNoSchemaMapping) {
		t.Fatalf("unknown type error = %v, want ErrNoSchemaMapping", err)
	}
	if _, err := m.GlobalIndex("Weapon", "Ghost", 0); !errors.Is(err, uasset.ErrNoSchemaMapping) {
		t.Fatalf("unknown property error = %v, want ErrNoSchemaMapping", err)
	}
}
