// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

import (
	"fmt"
	"sort"
)

// Asset is one fully decoded package: the summary, the tables, and the
// export payloads. An Asset is owned by exactly one goroutine at a
// time; decode builds it in a single forward pass (with section seeks
// driven by summary offsets) and encode emits a fresh byte stream with
// every count and offset recomputed.
type Asset struct {
	Summary  *PackageSummary
	Versions *VersionContext
	Names    *NameTable
	Imports  []Import
	Exports  []*Export

	// DependsMap carries one dependency list per export, aligned with
	// the export table.
	DependsMap [][]PackageIndex

	// SoftPackageReferences is the soft package reference section.
	SoftPackageReferences []NameRef

	// PreloadDependencies is the preload dependency section, raw
	// object indices in serialized order.
	PreloadDependencies []PackageIndex

	// Schema answers unversioned property layout questions; nil for
	// tagged assets.
	Schema UnversionedSchema

	// PayloadErrors records export payloads that failed to decode and
	// were contained as [RawExport], keyed by export table position.
	// The asset remains usable and re-encodes those payloads verbatim.
	PayloadErrors map[int]error

	// segments is the header section layout observed at decode time:
	// modeled sections plus raw gaps, in file order. Encode replays it.
	segments []headerSegment

	// payloadGaps holds padding bytes found between export payloads,
	// keyed by the export position they precede.
	payloadGaps map[int][]byte

	// trailing is everything after the last export payload (bulk
	// data), re-emitted verbatim.
	trailing []byte
}

type segmentKind int

const (
	segRaw segmentKind = iota
	segNames
	segImports
	segExports
	segDepends
	segSoftRefs
	segPreload
)

// headerSegment is one span of the header region. Raw segments carry
// their bytes; modeled segments are re-encoded from the tables.
type headerSegment struct {
	kind  segmentKind
	start int // original offset
	end   int
	raw   []byte
}

// DecodeOptions supplies what the file itself cannot: version
// counters for unversioned packages and a schema for unversioned
// property lists.
type DecodeOptions struct {
	// Versions overrides the serialized counters. Required when the
	// package was saved with all-zero versions; ignored otherwise.
	Versions *VersionContext

	// Schema resolves unversioned property layouts. Required when the
	// package flags carry unversioned properties.
	Schema UnversionedSchema
}

// UsesUnversionedProperties reports whether export properties use the
// schema-driven encoding.
func (a *Asset) UsesUnversionedProperties() bool {
	return a.Summary.PackageFlags&PackageFlagUnversionedProperties != 0
}

// codec builds the shared per-pass context.
func (a *Asset) codec() *codecContext {
	return &codecContext{
		names:       a.Names,
		ctx:         a.Versions,
		schema:      a.Schema,
		importCount: len(a.Imports),
		exportCount: len(a.Exports),
		unversioned: a.UsesUnversionedProperties(),
	}
}

// ClassNameOf resolves an export's class name: the object name of the
// import or export its class index points at. Empty for a null index.
func (a *Asset) ClassNameOf(e *Export) string {
	return a.ObjectName(e.ClassIndex)
}

// ObjectName resolves an object index to the referenced object's name.
func (a *Asset) ObjectName(index PackageIndex) string {
	var ref NameRef
	switch {
	case index.IsImport() && index.ImportPosition() < len(a.Imports):
		ref = a.Imports[index.ImportPosition()].ObjectName
	case index.IsExport() && index.ExportPosition() < len(a.Exports):
		ref = a.Exports[index.ExportPosition()].ObjectName
	default:
		return ""
	}
	name, err := a.Names.Resolve(ref)
	if err != nil {
		return ""
	}
	return name
}

// NewAsset creates an empty asset targeting the given version
// context, with the canonical section layout (names, imports,
// exports, depends map) and a summary whose legacy file version
// matches the counters. Intended for authoring from scratch; decoded
// assets carry the layout their file actually used.
func NewAsset(ctx *VersionContext) *Asset {
	legacy := legacyVersionNoTextureAlloc
	if ctx.UE5() != UE5VersionNone {
		legacy = legacyVersionWithUE5Counter
	}
	return &Asset{
		Summary: &PackageSummary{
			LegacyFileVersion: legacy,
			FolderName:        "None",
			Generations:       nil,
		},
		Versions:      ctx,
		Names:         NewNameTable(),
		PayloadErrors: make(map[int]error),
		payloadGaps:   make(map[int][]byte),
		segments: []headerSegment{
			{kind: segNames},
			{kind: segImports},
			{kind: segExports},
			{kind: segDepends},
		},
	}
}

// DecodeAsset decodes a complete asset file from memory. Table and
// summary failures are fatal; a failing export payload is contained as
// a [RawExport] and recorded in [Asset.PayloadErrors].
func DecodeAsset(data []byte, opts *DecodeOptions) (*Asset, error) {
	if opts == nil {
		opts = &DecodeOptions{}
	}
	r := NewReader(data)

	summary, ctx, err := decodeSummary(r)
	if err != nil {
		return nil, err
	}
	if summary.Unversioned {
		if opts.Versions == nil {
			return nil, malformed("package has no version counters and no version context was supplied")
		}
		ctx = opts.Versions
		if err := summary.decodeRest(ctx, r); err != nil {
			return nil, err
		}
	}

	a := &Asset{
		Summary:       summary,
		Versions:      ctx,
		Names:         NewNameTable(),
		Schema:        opts.Schema,
		PayloadErrors: make(map[int]error),
		payloadGaps:   make(map[int][]byte),
	}
	if a.UsesUnversionedProperties() && a.Schema == nil {
		return nil, noSchema("package uses unversioned properties and no schema was supplied")
	}

	// Name table.
	nameSeg := headerSegment{kind: segNames, start: int(summary.NameOffset)}
	if err := r.Seek(nameSeg.start); err != nil {
		return nil, err
	}
	for i := 0; i < int(summary.NameCount); i++ {
		if err := a.Names.readEntry(r, ctx); err != nil {
			return nil, fmt.Errorf("name table entry %d: %w", i, err)
		}
	}
	nameSeg.end = r.Offset()

	cc := a.codec()
	cc.importCount = int(summary.ImportCount)
	cc.exportCount = int(summary.ExportCount)

	// Import table.
	importSeg := headerSegment{kind: segImports, start: int(summary.ImportOffset)}
	if err := r.Seek(importSeg.start); err != nil {
		return nil, err
	}
	a.Imports = make([]Import, summary.ImportCount)
	for i := range a.Imports {
		if err := a.Imports[i].decode(cc, r); err != nil {
			return nil, fmt.Errorf("import table entry %d: %w", i, err)
		}
	}
	importSeg.end = r.Offset()

	// Export table.
	exportSeg := headerSegment{kind: segExports, start: int(summary.ExportOffset)}
	if err := r.Seek(exportSeg.start); err != nil {
		return nil, err
	}
	a.Exports = make([]*Export, summary.ExportCount)
	for i := range a.Exports {
		a.Exports[i] = &Export{}
		if err := a.Exports[i].decodeEntry(cc, r); err != nil {
			return nil, fmt.Errorf("export table entry %d: %w", i, err)
		}
	}
	exportSeg.end = r.Offset()

	segments := []headerSegment{nameSeg, importSeg, exportSeg}

	// Depends map.
	if summary.DependsOffset > 0 {
		seg := headerSegment{kind: segDepends, start: int(summary.DependsOffset)}
		if err := r.Seek(seg.start); err != nil {
			return nil, err
		}
		a.DependsMap = make([][]PackageIndex, summary.ExportCount)
		for i := range a.DependsMap {
			count, err := r.I32()
			if err != nil {
				return nil, fmt.Errorf("depends map entry %d: %w", i, err)
			}
			if count < 0 {
				return nil, malformed("depends map entry %d declares %d dependencies", i, count)
			}
			deps := make([]PackageIndex, count)
			for j := range deps {
				raw, err := r.I32()
				if err != nil {
					return nil, err
				}
				deps[j] = PackageIndex(raw)
			}
			a.DependsMap[i] = deps
		}
		seg.end = r.Offset()
		segments = append(segments, seg)
	}

	// Soft package references.
	if summary.SoftPackageReferencesCount > 0 && summary.SoftPackageReferencesOffset > 0 {
		seg := headerSegment{kind: segSoftRefs, start: int(summary.SoftPackageReferencesOffset)}
		if err := r.Seek(seg.start); err != nil {
			return nil, err
		}
		a.SoftPackageReferences = make([]NameRef, summary.SoftPackageReferencesCount)
		for i := range a.SoftPackageReferences {
			if a.SoftPackageReferences[i], _, err = cc.readNameRef(r); err != nil {
				return nil, fmt.Errorf("soft package reference %d: %w", i, err)
			}
		}
		seg.end = r.Offset()
		segments = append(segments, seg)
	}

	// Preload dependencies.
	if summary.PreloadDependencyCount > 0 && summary.PreloadDependencyOffset > 0 {
		seg := headerSegment{kind: segPreload, start: int(summary.PreloadDependencyOffset)}
		if err := r.Seek(seg.start); err != nil {
			return nil, err
		}
		a.PreloadDependencies = make([]PackageIndex, summary.PreloadDependencyCount)
		for i := range a.PreloadDependencies {
			raw, err := r.I32()
			if err != nil {
				return nil, err
			}
			a.PreloadDependencies[i] = PackageIndex(raw)
		}
		seg.end = r.Offset()
		segments = append(segments, seg)
	}

	headerEnd := int(summary.TotalHeaderSize)
	if headerEnd <= 0 || headerEnd > len(data) {
		return nil, malformed("total header size %d outside file of %d bytes", headerEnd, len(data))
	}
	a.segments, err = fillSegmentGaps(data, segments, headerEnd)
	if err != nil {
		return nil, err
	}

	if err := a.decodePayloads(cc, data, headerEnd); err != nil {
		return nil, err
	}
	return a, nil
}

// fillSegmentGaps sorts modeled segments and inserts raw segments for
// every unmodeled span of the header region after the summary.
func fillSegmentGaps(data []byte, segments []headerSegment, headerEnd int) ([]headerSegment, error) {
	sort.Slice(segments, func(i, j int) bool { return segments[i].start < segments[j].start })
	var out []headerSegment
	cursor := 0
	if len(segments) > 0 {
		// Everything before the first modeled section is the summary,
		// re-encoded rather than preserved.
		cursor = segments[0].start
	}
	for _, seg := range segments {
		if seg.start < cursor {
			return nil, malformed("overlapping header sections at offset %d", seg.start)
		}
		if seg.start > cursor {
			out = append(out, headerSegment{
				kind: segRaw, start: cursor, end: seg.start,
				raw: append([]byte(nil), data[cursor:seg.start]...),
			})
		}
		out = append(out, seg)
		cursor = seg.end
	}
	if cursor > headerEnd {
		return nil, malformed("header sections run past declared header size %d", headerEnd)
	}
	if cursor < headerEnd {
		out = append(out, headerSegment{
			kind: segRaw, start: cursor, end: headerEnd,
			raw: append([]byte(nil), data[cursor:headerEnd]...),
		})
	}
	return out, nil
}

// payloadOrder returns export positions sorted by original serial
// offset, the order payloads occupy the data section.
func (a *Asset) payloadOrder() []int {
	order := make([]int, len(a.Exports))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return a.Exports[order[i]].SerialOffset < a.Exports[order[j]].SerialOffset
	})
	return order
}

// decodePayloads reads every export payload, containing per-export
// failures as raw exports. Padding between payloads is preserved.
func (a *Asset) decodePayloads(cc *codecContext, data []byte, headerEnd int) error {
	cursor := headerEnd
	for _, pos := range a.payloadOrder() {
		e := a.Exports[pos]
		start := int(e.SerialOffset)
		size := int(e.SerialSize)
		if start < 0 || size < 0 || start+size > len(data) {
			return malformed("export %d payload [%d, %d) outside file of %d bytes",
				pos, start, start+size, len(data))
		}
		if start > cursor {
			a.payloadGaps[pos] = append([]byte(nil), data[cursor:start]...)
		}
		cursor = start + size

		payload := payloadForClass(a.ClassNameOf(e))
		r := NewReader(data[start : start+size])
		err := payload.decodePayload(cc, a, e, r, size)
		if err == nil && r.Remaining() > 0 {
			err = invalidProperty("export %d payload left %d undecoded bytes", pos, r.Remaining())
		}
		if err != nil {
			a.PayloadErrors[pos] = err
			raw := &RawExport{}
			rr := NewReader(data[start : start+size])
			if rerr := raw.decodePayload(cc, a, e, rr, size); rerr != nil {
				return rerr
			}
			payload = raw
		}
		e.Payload = payload
	}
	if cursor < len(data) {
		a.trailing = append([]byte(nil), data[cursor:]...)
	}
	return nil
}

// Encode emits the asset as a fresh byte stream. Section counts and
// offsets are recomputed; raw-preserved spans are replayed in their
// original order and the summary offsets that point into them are
// shifted by however much the preceding sections grew or shrank.
func (a *Asset) Encode() ([]byte, error) {
	cc := a.codec()

	// Payloads first: encoding them interns any names an edit added,
	// and the name table section must be complete before it is written.
	payloads := make([][]byte, len(a.Exports))
	for _, pos := range a.payloadOrder() {
		e := a.Exports[pos]
		pw := NewWriter()
		if err := e.Payload.encodePayload(cc, a, e, pw); err != nil {
			return nil, fmt.Errorf("export %d (%s): %w", pos, e.Payload.Kind(), err)
		}
		payloads[pos] = pw.Bytes()
	}

	w := NewWriter()
	patches, err := a.Summary.encodeSummary(a.Versions, w)
	if err != nil {
		return nil, err
	}

	// Tracks old-offset → new-offset for raw-span interior pointers.
	type shift struct {
		oldStart, oldEnd, newStart int
	}
	var shifts []shift

	s := a.Summary
	preloadRelocated := false
	var exportSizeAt, exportOffsetAt []Placeholder
	for _, seg := range a.segments {
		newStart := w.Len()
		shifts = append(shifts, shift{seg.start, seg.end, newStart})
		switch seg.kind {
		case segRaw:
			w.Raw(seg.raw)
		case segNames:
			for i := 0; i < a.Names.Len(); i++ {
				a.Names.writeEntry(w, a.Versions, i)
			}
			s.NameCount = int32(a.Names.Len())
			s.NameOffset = int32(newStart)
			w.PatchI32(patches.nameCount, s.NameCount)
			w.PatchI32(patches.nameOffset, s.NameOffset)
		case segImports:
			for i := range a.Imports {
				a.Imports[i].encode(cc, w)
			}
			s.ImportCount = int32(len(a.Imports))
			s.ImportOffset = int32(newStart)
			w.PatchI32(patches.importCount, s.ImportCount)
			w.PatchI32(patches.importOffset, s.ImportOffset)
		case segExports:
			exportSizeAt = make([]Placeholder, len(a.Exports))
			exportOffsetAt = make([]Placeholder, len(a.Exports))
			for i, e := range a.Exports {
				exportSizeAt[i], exportOffsetAt[i] = e.encodeEntry(cc, w)
			}
			s.ExportCount = int32(len(a.Exports))
			s.ExportOffset = int32(newStart)
			w.PatchI32(patches.exportCount, s.ExportCount)
			w.PatchI32(patches.exportOffset, s.ExportOffset)
		case segDepends:
			// One list per export, absent lists padded empty.
			for i := range a.Exports {
				var deps []PackageIndex
				if i < len(a.DependsMap) {
					deps = a.DependsMap[i]
				}
				w.I32(int32(len(deps)))
				for _, dep := range deps {
					w.I32(int32(dep))
				}
			}
			s.DependsOffset = int32(newStart)
			w.PatchI32(patches.dependsOffset, s.DependsOffset)
		case segSoftRefs:
			for _, ref := range a.SoftPackageReferences {
				w.NameRefRaw(ref)
			}
			s.SoftPackageReferencesCount = int32(len(a.SoftPackageReferences))
			s.SoftPackageReferencesOffset = int32(newStart)
			if patches.hasSoftRefFields {
				w.PatchI32(patches.softPackageReferencesCount, s.SoftPackageReferencesCount)
				w.PatchI32(patches.softPackageReferencesOffset, s.SoftPackageReferencesOffset)
			}
		case segPreload:
			for _, dep := range a.PreloadDependencies {
				w.I32(int32(dep))
			}
			s.PreloadDependencyCount = int32(len(a.PreloadDependencies))
			s.PreloadDependencyOffset = int32(newStart)
			preloadRelocated = true
		}
	}
	if len(a.Exports) > 0 && exportSizeAt == nil {
		return nil, malformed("asset has exports but no export table segment")
	}

	headerEnd := w.Len()
	w.PatchI32(patches.totalHeaderSize, int32(headerEnd))

	// Export payloads, original file order, recomputing size/offset.
	for _, pos := range a.payloadOrder() {
		e := a.Exports[pos]
		if gap, ok := a.payloadGaps[pos]; ok {
			w.Raw(gap)
		}
		offset := w.Len()
		w.Raw(payloads[pos])
		e.SerialOffset = int64(offset)
		e.SerialSize = int64(w.Len() - offset)
		if a.Versions.Supports(Ver64BitExportMapSerialSizes) {
			w.PatchI64(exportSizeAt[pos], e.SerialSize)
			w.PatchI64(exportOffsetAt[pos], e.SerialOffset)
		} else {
			w.PatchI32(exportSizeAt[pos], int32(e.SerialSize))
			w.PatchI32(exportOffsetAt[pos], int32(e.SerialOffset))
		}
	}

	trailingStart := w.Len()
	w.Raw(a.trailing)

	// Shift the summary offsets that point into replayed spans.
	adjust := func(old int32) int32 {
		if old <= 0 {
			return old
		}
		for _, sh := range shifts {
			if int(old) >= sh.oldStart && int(old) < sh.oldEnd {
				return int32(sh.newStart + (int(old) - sh.oldStart))
			}
		}
		return old
	}
	s.GatherableTextDataOffset = adjust(s.GatherableTextDataOffset)
	s.SoftObjectPathsOffset = adjust(s.SoftObjectPathsOffset)
	s.SearchableNamesOffset = adjust(s.SearchableNamesOffset)
	s.ThumbnailTableOffset = adjust(s.ThumbnailTableOffset)
	s.AssetRegistryDataOffset = adjust(s.AssetRegistryDataOffset)
	s.WorldTileInfoDataOffset = adjust(s.WorldTileInfoDataOffset)
	if !preloadRelocated {
		s.PreloadDependencyOffset = adjust(s.PreloadDependencyOffset)
	}
	s.DataResourceOffset = adjust(s.DataResourceOffset)
	s.TotalHeaderSize = int32(headerEnd)
	if s.BulkDataStartOffset > 0 {
		s.BulkDataStartOffset = int64(trailingStart)
	}

	// Re-emit the summary now that the shifted fields are final. The
	// summary length is stable for a given context, so splicing the
	// fresh bytes over the old span is safe.
	sw := NewWriter()
	sp, err := s.encodeSummary(a.Versions, sw)
	if err != nil {
		return nil, err
	}
	sw.PatchI32(sp.totalHeaderSize, s.TotalHeaderSize)
	sw.PatchI32(sp.nameCount, s.NameCount)
	sw.PatchI32(sp.nameOffset, s.NameOffset)
	sw.PatchI32(sp.exportCount, s.ExportCount)
	sw.PatchI32(sp.exportOffset, s.ExportOffset)
	sw.PatchI32(sp.importCount, s.ImportCount)
	sw.PatchI32(sp.importOffset, s.ImportOffset)
	sw.PatchI32(sp.dependsOffset, s.DependsOffset)
	if sp.hasSoftRefFields {
		sw.PatchI32(sp.softPackageReferencesCount, s.SoftPackageReferencesCount)
		sw.PatchI32(sp.softPackageReferencesOffset, s.SoftPackageReferencesOffset)
	}
	out := w.Bytes()
	if sw.Len() > len(out) {
		return nil, malformed("summary of %d bytes exceeds encoded file of %d bytes", sw.Len(), len(out))
	}
	copy(out[:sw.Len()], sw.Bytes())
	return out, nil
}
