// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

import "strings"

// Export is one object defined inside the asset: the table record
// every variant shares, plus the variant payload decoded from the
// export data section.
type Export struct {
	ClassIndex    PackageIndex
	SuperIndex    PackageIndex
	TemplateIndex PackageIndex // serialized from [VerTemplateIndexInCookedExports]
	OuterIndex    PackageIndex
	ObjectName    NameRef
	ObjectFlags   uint32

	// SerialSize and SerialOffset locate the payload in the export
	// data section. 32-bit before [Ver64BitExportMapSerialSizes].
	// Both are recomputed on encode; the decoded values are kept so a
	// raw-preserved export can be re-emitted at its original size.
	SerialSize   int64
	SerialOffset int64

	ForcedExport bool
	NotForClient bool
	NotForServer bool

	// PackageGuid is serialized until [UE5RemoveObjectExportPackageGuid];
	// IsInheritedInstance from [UE5TrackObjectExportIsInherited].
	PackageGuid         Guid
	IsInheritedInstance bool

	PackageFlags                 uint32
	NotAlwaysLoadedForEditorGame bool // from [VerLoadForEditorGame]
	IsAsset                      bool // from [VerCookedAssetsInEditorSupport]
	GeneratePublicHash           bool // from [UE5OptionalResources]

	// Dependency-ordering indices, from [VerPreloadDependencies].
	FirstExportDependency        int32
	SerializationBeforeSerializationDependencies int32
	CreateBeforeSerializationDependencies        int32
	SerializationBeforeCreateDependencies        int32
	CreateBeforeCreateDependencies               int32

	Payload ExportPayload
}

// ExportPayload is the variant data of one export. The set is closed;
// classification is by the export's class name, with [RawExport] as
// the containment fallback for payloads that fail to decode.
type ExportPayload interface {
	Kind() string
	decodePayload(cc *codecContext, a *Asset, e *Export, r *Reader, size int) error
	encodePayload(cc *codecContext, a *Asset, e *Export, w *Writer) error
}

// decodeEntry reads the table record (not the payload).
func (e *Export) decodeEntry(cc *codecContext, r *Reader) error {
	readIndex := func(dst *PackageIndex) error {
		raw, err := r.I32()
		if err != nil {
			return err
		}
		*dst = PackageIndex(raw)
		return nil
	}
	if err := readIndex(&e.ClassIndex); err != nil {
		return err
	}
	if err := readIndex(&e.SuperIndex); err != nil {
		return err
	}
	if cc.ctx.Supports(VerTemplateIndexInCookedExports) {
		if err := readIndex(&e.TemplateIndex); err != nil {
			return err
		}
	}
	if err := readIndex(&e.OuterIndex); err != nil {
		return err
	}
	var err error
	if e.ObjectName, _, err = cc.readNameRef(r); err != nil {
		return err
	}
	if e.ObjectFlags, err = r.U32(); err != nil {
		return err
	}
	if cc.ctx.Supports(Ver64BitExportMapSerialSizes) {
		if e.SerialSize, err = r.I64(); err != nil {
			return err
		}
		if e.SerialOffset, err = r.I64(); err != nil {
			return err
		}
	} else {
		size, err := r.I32()
		if err != nil {
			return err
		}
		offset, err := r.I32()
		if err != nil {
			return err
		}
		e.SerialSize, e.SerialOffset = int64(size), int64(offset)
	}
	if e.ForcedExport, err = r.Bool32(); err != nil {
		return err
	}
	if e.NotForClient, err = r.Bool32(); err != nil {
		return err
	}
	if e.NotForServer, err = r.Bool32(); err != nil {
		return err
	}
	if !cc.ctx.SupportsUE5(UE5RemoveObjectExportPackageGuid) {
		if e.PackageGuid, err = r.Guid(); err != nil {
			return err
		}
	}
	if cc.ctx.SupportsUE5(UE5TrackObjectExportIsInherited) {
		if e.IsInheritedInstance, err = r.Bool32(); err != nil {
			return err
		}
	}
	if e.PackageFlags, err = r.U32(); err != nil {
		return err
	}
	if cc.ctx.Supports(VerLoadForEditorGame) {
		if e.NotAlwaysLoadedForEditorGame, err = r.Bool32(); err != nil {
			return err
		}
	}
	if cc.ctx.Supports(VerCookedAssetsInEditorSupport) {
		if e.IsAsset, err = r.Bool32(); err != nil {
			return err
		}
	}
	if cc.ctx.SupportsUE5(UE5OptionalResources) {
		if e.GeneratePublicHash, err = r.Bool32(); err != nil {
			return err
		}
	}
	if cc.ctx.Supports(VerPreloadDependencies) {
		for _, dst := range []*int32{
			&e.FirstExportDependency,
			&e.SerializationBeforeSerializationDependencies,
			&e.CreateBeforeSerializationDependencies,
			&e.SerializationBeforeCreateDependencies,
			&e.CreateBeforeCreateDependencies,
		} {
			if *dst, err = r.I32(); err != nil {
				return err
			}
		}
	}
	return nil
}

// encodeEntry writes the table record. The serial size and offset
// fields are written from the struct; the asset encode pass patches
// them after payloads land.
func (e *Export) encodeEntry(cc *codecContext, w *Writer) (sizeAt, offsetAt Placeholder) {
	w.I32(int32(e.ClassIndex))
	w.I32(int32(e.SuperIndex))
	if cc.ctx.Supports(VerTemplateIndexInCookedExports) {
		w.I32(int32(e.TemplateIndex))
	}
	w.I32(int32(e.OuterIndex))
	w.NameRefRaw(e.ObjectName)
	w.U32(e.ObjectFlags)
	if cc.ctx.Supports(Ver64BitExportMapSerialSizes) {
		sizeAt = w.ReserveI64()
		offsetAt = w.ReserveI64()
	} else {
		sizeAt = w.ReserveI32()
		offsetAt = w.ReserveI32()
	}
	w.Bool32(e.ForcedExport)
	w.Bool32(e.NotForClient)
	w.Bool32(e.NotForServer)
	if !cc.ctx.SupportsUE5(UE5RemoveObjectExportPackageGuid) {
		w.Guid(e.PackageGuid)
	}
	if cc.ctx.SupportsUE5(UE5TrackObjectExportIsInherited) {
		w.Bool32(e.IsInheritedInstance)
	}
	w.U32(e.PackageFlags)
	if cc.ctx.Supports(VerLoadForEditorGame) {
		w.Bool32(e.NotAlwaysLoadedForEditorGame)
	}
	if cc.ctx.Supports(VerCookedAssetsInEditorSupport) {
		w.Bool32(e.IsAsset)
	}
	if cc.ctx.SupportsUE5(UE5OptionalResources) {
		w.Bool32(e.GeneratePublicHash)
	}
	if cc.ctx.Supports(VerPreloadDependencies) {
		w.I32(e.FirstExportDependency)
		w.I32(e.SerializationBeforeSerializationDependencies)
		w.I32(e.CreateBeforeSerializationDependencies)
		w.I32(e.SerializationBeforeCreateDependencies)
		w.I32(e.CreateBeforeCreateDependencies)
	}
	return sizeAt, offsetAt
}

// payloadForClass picks the variant for an export's class name.
func payloadForClass(className string) ExportPayload {
	switch className {
	case "Class", "BlueprintGeneratedClass", "WidgetBlueprintGeneratedClass", "AnimBlueprintGeneratedClass":
		return &ClassExport{}
	case "Function":
		return &FunctionExport{}
	case "Enum", "UserDefinedEnum":
		return &EnumExport{}
	case "DataTable":
		return &DataTableExport{}
	case "StringTable":
		return &StringTableExport{}
	case "UserDefinedStruct", "ScriptStruct":
		return &UserDefinedStructExport{}
	case "Level":
		return &LevelExport{}
	case "World":
		return &WorldExport{}
	}
	if strings.HasSuffix(className, "Property") {
		return &PropertyExport{propertyType: className}
	}
	return &NormalExport{}
}

// NormalExport is the common case: an object carrying an ordered
// tagged (or schema-driven) property list. Extras preserves whatever
// trailing bytes follow the list inside the payload range — native
// serialization this codec does not model — so the export re-encodes
// byte for byte.
type NormalExport struct {
	Properties []*Property
	Extras     []byte
}

func (*NormalExport) Kind() string { return "Normal" }

func (n *NormalExport) decodePayload(cc *codecContext, a *Asset, e *Export, r *Reader, size int) error {
	start := r.Offset()
	properties, err := readExportProperties(cc, a, e, r)
	if err != nil {
		return err
	}
	n.Properties = properties
	extras, err := captureExtras(r, start, size)
	if err != nil {
		return err
	}
	n.Extras = extras
	return nil
}

func (n *NormalExport) encodePayload(cc *codecContext, a *Asset, e *Export, w *Writer) error {
	if err := writeExportProperties(cc, a, e, w, n.Properties); err != nil {
		return err
	}
	w.Raw(n.Extras)
	return nil
}

// RawExport is the containment fallback: the payload's on-disk byte
// range, unparsed. A failed export decode degrades to this so the
// rest of the asset stays usable and the bytes round-trip unchanged.
type RawExport struct {
	Data []byte
}

func (*RawExport) Kind() string { return "Raw" }

func (raw *RawExport) decodePayload(cc *codecContext, a *Asset, e *Export, r *Reader, size int) error {
	b, err := r.Bytes(size)
	if err != nil {
		return err
	}
	raw.Data = append([]byte(nil), b...)
	return nil
}

func (raw *RawExport) encodePayload(cc *codecContext, a *Asset, e *Export, w *Writer) error {
	w.Raw(raw.Data)
	return nil
}
