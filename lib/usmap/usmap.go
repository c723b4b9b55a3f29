// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package usmap

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/uassetkit/uassetkit/lib/uasset"
)

// ErrMalformedMappings marks a mapping file that fails a structural
// check: bad magic, a truncated table, or an out-of-range string
// index.
var ErrMalformedMappings = errors.New("usmap: malformed mappings file")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedMappings, fmt.Sprintf(format, args...))
}

const mappingsMagic uint16 = 0x30C4

// File format revisions. Each revision widens one table field; the
// loader accepts all of them.
const (
	// VersionInitial is the original layout.
	VersionInitial uint8 = 0
	// VersionPackageVersioning adds an optional block recording the
	// engine versions the dump was taken from.
	VersionPackageVersioning uint8 = 1
	// VersionLongNames widens string-pool length prefixes to 16 bits.
	VersionLongNames uint8 = 2
	// VersionLargeEnums widens enum entry counts to 16 bits.
	VersionLargeEnums uint8 = 3
)

// Compression wrapper methods. Only none and zstd are modeled; the
// other two identify proprietary or out-of-stack codecs.
const (
	compressionNone   uint8 = 0
	compressionOodle  uint8 = 1
	compressionBrotli uint8 = 2
	compressionZstd   uint8 = 3
)

// noNameIndex is the string-pool index meaning "no name".
const noNameIndex uint32 = 0xFFFFFFFF

// Enum is one enumeration definition: the type name and its entry
// names in declaration order.
type Enum struct {
	Name    string
	Entries []string
}

// Struct is one struct schema. Slots holds this struct's own slots
// only; inherited slots resolve through Super. A slot left empty in
// the file (a property stripped from cooked serialization) stays
// zero-valued.
type Struct struct {
	Name  string
	Super string
	Slots []uasset.SchemaProperty
}

// Mappings is a loaded mapping file. It implements
// uasset.UnversionedSchema.
type Mappings struct {
	Version uint8
	Names   []string
	Enums   []Enum
	Structs map[string]*Struct
}

var zstdDecoder *zstd.Decoder

func init() {
	var err error
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("usmap: zstd decoder initialization failed: " + err.Error())
	}
}

// Load parses a .usmap file.
func Load(data []byte) (*Mappings, error) {
	r := uasset.NewReader(data)

	magic, err := r.U16()
	if err != nil {
		return nil, malformed("reading magic: %v", err)
	}
	if magic != mappingsMagic {
		return nil, malformed("magic %#04x, want %#04x", magic, mappingsMagic)
	}
	version, err := r.U8()
	if err != nil {
		return nil, malformed("reading version: %v", err)
	}
	if version > VersionLargeEnums {
		return nil, fmt.Errorf("%w: mappings version %d", uasset.ErrUnimplementedVariant, version)
	}

	if version >= VersionPackageVersioning {
		if err := skipPackageVersioning(r); err != nil {
			return nil, err
		}
	}

	method, err := r.U8()
	if err != nil {
		return nil, malformed("reading compression method: %v", err)
	}
	compressedSize, err := r.U32()
	if err != nil {
		return nil, malformed("reading compressed size: %v", err)
	}
	decompressedSize, err := r.U32()
	if err != nil {
		return nil, malformed("reading decompressed size: %v", err)
	}
	compressed, err := r.Bytes(int(compressedSize))
	if err != nil {
		return nil, malformed("mappings body: %v", err)
	}

	body, err := decompressBody(method, compressed, int(decompressedSize))
	if err != nil {
		return nil, err
	}

	m := &Mappings{Version: version, Structs: make(map[string]*Struct)}
	if err := m.decodeTables(uasset.NewReader(body)); err != nil {
		return nil, err
	}
	return m, nil
}

// skipPackageVersioning consumes the optional versioning block. The
// recorded versions describe the dumping game's engine, which callers
// already know from the asset itself, so the block is validated but
// not retained.
func skipPackageVersioning(r *uasset.Reader) error {
	present, err := r.I32()
	if err != nil {
		return malformed("reading versioning flag: %v", err)
	}
	if present == 0 {
		return nil
	}
	// Object version, UE5 version, custom version container, net CL.
	if err := r.Skip(8); err != nil {
		return malformed("versioning block: %v", err)
	}
	customCount, err := r.I32()
	if err != nil {
		return malformed("versioning block: %v", err)
	}
	if customCount < 0 {
		return malformed("negative custom version count %d", customCount)
	}
	if err := r.Skip(int(customCount) * 20); err != nil {
		return malformed("versioning block: %v", err)
	}
	if err := r.Skip(4); err != nil {
		return malformed("versioning block: %v", err)
	}
	return nil
}

func decompressBody(method uint8, compressed []byte, decompressedSize int) ([]byte, error) {
	switch method {
	case compressionNone:
		if len(compressed) != decompressedSize {
			return nil, malformed("uncompressed body is %d bytes, header says %d",
				len(compressed), decompressedSize)
		}
		return compressed, nil
	case compressionZstd:
		body, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, decompressedSize))
		if err != nil {
			return nil, malformed("zstd body: %v", err)
		}
		if len(body) != decompressedSize {
			return nil, malformed("zstd body is %d bytes, header says %d", len(body), decompressedSize)
		}
		return body, nil
	case compressionOodle:
		return nil, fmt.Errorf("%w: oodle-compressed mappings", uasset.ErrUnimplementedVariant)
	case compressionBrotli:
		return nil, fmt.Errorf("%w: brotli-compressed mappings", uasset.ErrUnimplementedVariant)
	default:
		return nil, malformed("unknown compression method %d", method)
	}
}

func (m *Mappings) decodeTables(r *uasset.Reader) error {
	if err := m.decodeNames(r); err != nil {
		return err
	}
	if err := m.decodeEnums(r); err != nil {
		return err
	}
	return m.decodeStructs(r)
}

func (m *Mappings) decodeNames(r *uasset.Reader) error {
	count, err := r.U32()
	if err != nil {
		return malformed("reading name count: %v", err)
	}
	m.Names = make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		var length int
		if m.Version >= VersionLongNames {
			v, err := r.U16()
			if err != nil {
				return malformed("name %d length: %v", i, err)
			}
			length = int(v)
		} else {
			v, err := r.U8()
			if err != nil {
				return malformed("name %d length: %v", i, err)
			}
			length = int(v)
		}
		raw, err := r.Bytes(length)
		if err != nil {
			return malformed("name %d body: %v", i, err)
		}
		m.Names = append(m.Names, string(raw))
	}
	return nil
}

// nameAt resolves a string-pool index; noNameIndex resolves to "".
func (m *Mappings) nameAt(index uint32) (string, error) {
	if index == noNameIndex {
		return "", nil
	}
	if int(index) >= len(m.Names) {
		return "", malformed("name index %d past pool of %d", index, len(m.Names))
	}
	return m.Names[index], nil
}

func (m *Mappings) decodeEnums(r *uasset.Reader) error {
	count, err := r.U32()
	if err != nil {
		return malformed("reading enum count: %v", err)
	}
	m.Enums = make([]Enum, 0, count)
	for i := uint32(0); i < count; i++ {
		nameIdx, err := r.U32()
		if err != nil {
			return malformed("enum %d name: %v", i, err)
		}
		name, err := m.nameAt(nameIdx)
		if err != nil {
			return err
		}
		var entryCount int
		if m.Version >= VersionLargeEnums {
			v, err := r.U16()
			if err != nil {
				return malformed("enum %q entry count: %v", name, err)
			}
			entryCount = int(v)
		} else {
			v, err := r.U8()
			if err != nil {
				return malformed("enum %q entry count: %v", name, err)
			}
			entryCount = int(v)
		}
		entries := make([]string, 0, entryCount)
		for j := 0; j < entryCount; j++ {
			entryIdx, err := r.U32()
			if err != nil {
				return malformed("enum %q entry %d: %v", name, j, err)
			}
			entry, err := m.nameAt(entryIdx)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		m.Enums = append(m.Enums, Enum{Name: name, Entries: entries})
	}
	return nil
}

func (m *Mappings) decodeStructs(r *uasset.Reader) error {
	count, err := r.U32()
	if err != nil {
		return malformed("reading struct count: %v", err)
	}
	for i := uint32(0); i < count; i++ {
		nameIdx, err := r.U32()
		if err != nil {
			return malformed("struct %d name: %v", i, err)
		}
		name, err := m.nameAt(nameIdx)
		if err != nil {
			return err
		}
		superIdx, err := r.U32()
		if err != nil {
			return malformed("struct %q super: %v", name, err)
		}
		super, err := m.nameAt(superIdx)
		if err != nil {
			return err
		}
		slotCount, err := r.U16()
		if err != nil {
			return malformed("struct %q slot count: %v", name, err)
		}
		serializedCount, err := r.U16()
		if err != nil {
			return malformed("struct %q property count: %v", name, err)
		}

		s := &Struct{
			Name:  name,
			Super: super,
			Slots: make([]uasset.SchemaProperty, slotCount),
		}
		for j := 0; j < int(serializedCount); j++ {
			if err := m.decodeStructProperty(r, s, j); err != nil {
				return err
			}
		}
		m.Structs[name] = s
	}
	return nil
}

// decodeStructProperty reads one serialized property record and fills
// the slot range it occupies: a static array of dimension n takes n
// consecutive slots sharing the property name, with duplication
// indices counting up from zero.
func (m *Mappings) decodeStructProperty(r *uasset.Reader, s *Struct, pos int) error {
	slot, err := r.U16()
	if err != nil {
		return malformed("struct %q property %d slot: %v", s.Name, pos, err)
	}
	arrayDim, err := r.U8()
	if err != nil {
		return malformed("struct %q property %d dim: %v", s.Name, pos, err)
	}
	nameIdx, err := r.U32()
	if err != nil {
		return malformed("struct %q property %d name: %v", s.Name, pos, err)
	}
	name, err := m.nameAt(nameIdx)
	if err != nil {
		return err
	}
	typ, err := m.decodeType(r)
	if err != nil {
		return fmt.Errorf("struct %q property %q: %w", s.Name, name, err)
	}

	if int(slot)+int(arrayDim) > len(s.Slots) {
		return malformed("struct %q property %q spans slots %d..%d of %d",
			s.Name, name, slot, int(slot)+int(arrayDim)-1, len(s.Slots))
	}
	for d := 0; d < int(arrayDim); d++ {
		s.Slots[int(slot)+d] = uasset.SchemaProperty{
			Name:     name,
			DupIndex: d,
			Type:     typ,
		}
	}
	return nil
}

// Property type identifiers as stored in mapping files. The order is
// a historical artifact of the dumping tools and never changes.
var propertyTypeNames = []string{
	"ByteProperty", "BoolProperty", "IntProperty", "FloatProperty",
	"ObjectProperty", "NameProperty", "DelegateProperty", "DoubleProperty",
	"ArrayProperty", "StructProperty", "StrProperty", "TextProperty",
	"InterfaceProperty", "MulticastDelegateProperty", "WeakObjectProperty",
	"LazyObjectProperty", "AssetObjectProperty", "SoftObjectProperty",
	"UInt64Property", "UInt32Property", "UInt16Property", "Int64Property",
	"Int16Property", "Int8Property", "MapProperty", "SetProperty",
	"EnumProperty", "FieldPathProperty", "OptionalProperty",
}

func (m *Mappings) decodeType(r *uasset.Reader) (uasset.SchemaType, error) {
	id, err := r.U8()
	if err != nil {
		return uasset.SchemaType{}, malformed("reading type id: %v", err)
	}
	if int(id) >= len(propertyTypeNames) {
		return uasset.SchemaType{}, malformed("unknown property type id %d", id)
	}
	typ := uasset.SchemaType{Name: propertyTypeNames[id]}

	switch typ.Name {
	case "EnumProperty":
		inner, err := m.decodeType(r)
		if err != nil {
			return uasset.SchemaType{}, err
		}
		typ.Inner = &inner
		enumIdx, err := r.U32()
		if err != nil {
			return uasset.SchemaType{}, malformed("enum type name: %v", err)
		}
		typ.EnumName, err = m.nameAt(enumIdx)
		if err != nil {
			return uasset.SchemaType{}, err
		}

	case "StructProperty":
		structIdx, err := r.U32()
		if err != nil {
			return uasset.SchemaType{}, malformed("struct type name: %v", err)
		}
		typ.StructType, err = m.nameAt(structIdx)
		if err != nil {
			return uasset.SchemaType{}, err
		}

	case "ArrayProperty", "SetProperty", "OptionalProperty":
		inner, err := m.decodeType(r)
		if err != nil {
			return uasset.SchemaType{}, err
		}
		typ.Inner = &inner

	case "MapProperty":
		key, err := m.decodeType(r)
		if err != nil {
			return uasset.SchemaType{}, err
		}
		value, err := m.decodeType(r)
		if err != nil {
			return uasset.SchemaType{}, err
		}
		typ.Key = &key
		typ.Value = &value
	}
	return typ, nil
}

// Enum returns the entries of a named enum, or nil when the mappings
// do not define it.
func (m *Mappings) Enum(name string) []string {
	for i := range m.Enums {
		if m.Enums[i].Name == name {
			return m.Enums[i].Entries
		}
	}
	return nil
}
