// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

// packageMagic opens every asset file, little-endian on the wire.
const packageMagic uint32 = 0x9E2A83C1

// Legacy file versions. The field predates the ordinal counters; only
// the three modern values are loadable.
const (
	legacyVersionOldest         int32 = -6
	legacyVersionNoTextureAlloc int32 = -7
	legacyVersionWithUE5Counter int32 = -8
)

// PackageFlagFilterEditorOnly marks a cooked package stripped of
// editor-only data; several summary fields are absent when set.
const PackageFlagFilterEditorOnly uint32 = 0x80000000

// PackageFlagUnversionedProperties marks a package whose export
// properties use the schema-driven unversioned encoding instead of
// inline tags.
const PackageFlagUnversionedProperties uint32 = 0x00002000

// EngineVersionRecord is the structured build version stamped into
// summaries at or past [VerEngineVersionObject].
type EngineVersionRecord struct {
	Major      uint16
	Minor      uint16
	Patch      uint16
	Changelist uint32
	Branch     string
}

func (ev *EngineVersionRecord) decode(r *Reader) error {
	var err error
	if ev.Major, err = r.U16(); err != nil {
		return err
	}
	if ev.Minor, err = r.U16(); err != nil {
		return err
	}
	if ev.Patch, err = r.U16(); err != nil {
		return err
	}
	if ev.Changelist, err = r.U32(); err != nil {
		return err
	}
	ev.Branch, err = r.FString()
	return err
}

func (ev *EngineVersionRecord) encode(w *Writer) {
	w.U16(ev.Major)
	w.U16(ev.Minor)
	w.U16(ev.Patch)
	w.U32(ev.Changelist)
	w.FString(ev.Branch)
}

// Generation is one (export count, name count) snapshot from the
// summary's generations array.
type Generation struct {
	ExportCount int32
	NameCount   int32
}

// PackageSummary is the decoded header block. Section offsets and
// counts are recomputed on encode; the remaining fields round-trip
// verbatim. Offsets the encoder does not relocate (they point into
// trailing blobs kept raw) are adjusted by the header size delta.
type PackageSummary struct {
	LegacyFileVersion int32
	LegacyUE3Version  int32

	// Unversioned records that the file carried all-zero version
	// counters; the counters in the version context came from the
	// caller, and encode writes zeros again.
	Unversioned bool

	TotalHeaderSize int32
	FolderName      string
	PackageFlags    uint32

	NameCount  int32
	NameOffset int32

	SoftObjectPathsCount  int32
	SoftObjectPathsOffset int32

	LocalizationId string

	GatherableTextDataCount  int32
	GatherableTextDataOffset int32

	ExportCount   int32
	ExportOffset  int32
	ImportCount   int32
	ImportOffset  int32
	DependsOffset int32

	SoftPackageReferencesCount  int32
	SoftPackageReferencesOffset int32
	SearchableNamesOffset       int32
	ThumbnailTableOffset        int32

	PackageGuid         Guid
	PersistentGuid      Guid
	OwnerPersistentGuid Guid

	Generations []Generation

	SavedByEngineVersion        EngineVersionRecord
	CompatibleWithEngineVersion EngineVersionRecord

	// EngineChangelist is the pre-[VerEngineVersionObject] form.
	EngineChangelist uint32

	CompressionFlags uint32
	PackageSource    uint32

	AdditionalPackagesToCook []string

	// NumTextureAllocations survives only in legacy version -6 files.
	NumTextureAllocations int32

	AssetRegistryDataOffset int32
	BulkDataStartOffset     int64

	WorldTileInfoDataOffset int32

	ChunkIDs []int32

	PreloadDependencyCount  int32
	PreloadDependencyOffset int32

	NamesReferencedFromExportDataCount int32
	PayloadTocOffset                   int64
	DataResourceOffset                 int32
}

// FilterEditorOnly reports whether the package was cooked with
// editor-only data stripped.
func (s *PackageSummary) FilterEditorOnly() bool {
	return s.PackageFlags&PackageFlagFilterEditorOnly != 0
}

// decodeSummary reads the header block and returns the summary plus
// the version context built from the serialized counters. For
// unversioned packages the counters decode as zero and the returned
// context is nil; the caller must supply one.
func decodeSummary(r *Reader) (*PackageSummary, *VersionContext, error) {
	magic, err := r.U32()
	if err != nil {
		return nil, nil, err
	}
	if magic != packageMagic {
		return nil, nil, malformed("bad package magic 0x%08X", magic)
	}

	s := &PackageSummary{}
	if s.LegacyFileVersion, err = r.I32(); err != nil {
		return nil, nil, err
	}
	if s.LegacyFileVersion > legacyVersionOldest || s.LegacyFileVersion < legacyVersionWithUE5Counter {
		return nil, nil, malformed("unsupported legacy file version %d", s.LegacyFileVersion)
	}
	if s.LegacyUE3Version, err = r.I32(); err != nil {
		return nil, nil, err
	}

	objectRaw, err := r.I32()
	if err != nil {
		return nil, nil, err
	}
	var ue5Raw int32
	if s.LegacyFileVersion <= legacyVersionWithUE5Counter {
		if ue5Raw, err = r.I32(); err != nil {
			return nil, nil, err
		}
	}
	licensee, err := r.I32()
	if err != nil {
		return nil, nil, err
	}

	customCount, err := r.I32()
	if err != nil {
		return nil, nil, err
	}
	if customCount < 0 {
		return nil, nil, malformed("summary declares %d custom versions", customCount)
	}
	custom := make([]CustomVersion, customCount)
	for i := range custom {
		if custom[i].Key, err = r.Guid(); err != nil {
			return nil, nil, err
		}
		if custom[i].Version, err = r.I32(); err != nil {
			return nil, nil, err
		}
	}

	var ctx *VersionContext
	if objectRaw == 0 && ue5Raw == 0 && licensee == 0 && customCount == 0 {
		s.Unversioned = true
	} else {
		if ObjectVersion(objectRaw) < VerOldestLoadablePackage {
			return nil, nil, malformed("object version %d below oldest loadable %d", objectRaw, VerOldestLoadablePackage)
		}
		ctx = NewVersionContext(ObjectVersion(objectRaw), UE5Version(ue5Raw), custom)
		ctx.licensee = licensee
	}

	if s.TotalHeaderSize, err = r.I32(); err != nil {
		return nil, nil, err
	}
	if s.FolderName, err = r.FString(); err != nil {
		return nil, nil, err
	}
	if s.PackageFlags, err = r.U32(); err != nil {
		return nil, nil, err
	}
	if s.NameCount, err = r.I32(); err != nil {
		return nil, nil, err
	}
	if s.NameOffset, err = r.I32(); err != nil {
		return nil, nil, err
	}
	if s.Unversioned {
		// The remaining gates need real counters. The asset pipeline
		// re-enters through decodeRest with the caller's context.
		return s, nil, nil
	}
	if err := s.decodeRest(ctx, r); err != nil {
		return nil, nil, err
	}
	return s, ctx, nil
}

// decodeRest reads everything after the name table fields, once a
// version context exists to answer the gates.
func (s *PackageSummary) decodeRest(ctx *VersionContext, r *Reader) error {
	var err error
	if ctx.SupportsUE5(UE5AddSoftObjectPathList) {
		if s.SoftObjectPathsCount, err = r.I32(); err != nil {
			return err
		}
		if s.SoftObjectPathsOffset, err = r.I32(); err != nil {
			return err
		}
	}
	if ctx.Supports(VerAddedLocalizationID) && !s.FilterEditorOnly() {
		if s.LocalizationId, err = r.FString(); err != nil {
			return err
		}
	}
	if ctx.Supports(VerTextInPackages) {
		if s.GatherableTextDataCount, err = r.I32(); err != nil {
			return err
		}
		if s.GatherableTextDataOffset, err = r.I32(); err != nil {
			return err
		}
	}
	if s.ExportCount, err = r.I32(); err != nil {
		return err
	}
	if s.ExportOffset, err = r.I32(); err != nil {
		return err
	}
	if s.ImportCount, err = r.I32(); err != nil {
		return err
	}
	if s.ImportOffset, err = r.I32(); err != nil {
		return err
	}
	if s.ExportCount < 0 || s.ImportCount < 0 {
		return malformed("summary declares %d exports, %d imports", s.ExportCount, s.ImportCount)
	}
	if s.DependsOffset, err = r.I32(); err != nil {
		return err
	}
	if ctx.Supports(VerStringAssetProperties) {
		if s.SoftPackageReferencesCount, err = r.I32(); err != nil {
			return err
		}
		if s.SoftPackageReferencesOffset, err = r.I32(); err != nil {
			return err
		}
	}
	if ctx.Supports(VerAddedSearchableNames) {
		if s.SearchableNamesOffset, err = r.I32(); err != nil {
			return err
		}
	}
	if s.ThumbnailTableOffset, err = r.I32(); err != nil {
		return err
	}
	if s.PackageGuid, err = r.Guid(); err != nil {
		return err
	}
	if !s.FilterEditorOnly() {
		if ctx.Supports(VerAddedPackageOwner) {
			if s.PersistentGuid, err = r.Guid(); err != nil {
				return err
			}
		}
		if ctx.Supports(VerAddedPackageOwner) && !ctx.Supports(VerNonOuterPackageImport) {
			if s.OwnerPersistentGuid, err = r.Guid(); err != nil {
				return err
			}
		}
	}

	generationCount, err := r.I32()
	if err != nil {
		return err
	}
	if generationCount < 0 {
		return malformed("summary declares %d generations", generationCount)
	}
	s.Generations = make([]Generation, generationCount)
	for i := range s.Generations {
		if s.Generations[i].ExportCount, err = r.I32(); err != nil {
			return err
		}
		if s.Generations[i].NameCount, err = r.I32(); err != nil {
			return err
		}
	}

	if ctx.Supports(VerEngineVersionObject) {
		if err := s.SavedByEngineVersion.decode(r); err != nil {
			return err
		}
	} else {
		if s.EngineChangelist, err = r.U32(); err != nil {
			return err
		}
	}
	if ctx.Supports(VerCompatibleEngineVersion) {
		if err := s.CompatibleWithEngineVersion.decode(r); err != nil {
			return err
		}
	} else {
		s.CompatibleWithEngineVersion = s.SavedByEngineVersion
	}

	if s.CompressionFlags, err = r.U32(); err != nil {
		return err
	}
	compressedChunks, err := r.I32()
	if err != nil {
		return err
	}
	if compressedChunks != 0 {
		// Whole-package compression was removed from the engine; files
		// carrying it predate anything loadable.
		return unimplemented("summary carries %d compressed chunks", compressedChunks)
	}
	if s.PackageSource, err = r.U32(); err != nil {
		return err
	}

	cookCount, err := r.I32()
	if err != nil {
		return err
	}
	if cookCount < 0 {
		return malformed("summary declares %d additional cook packages", cookCount)
	}
	s.AdditionalPackagesToCook = make([]string, cookCount)
	for i := range s.AdditionalPackagesToCook {
		if s.AdditionalPackagesToCook[i], err = r.FString(); err != nil {
			return err
		}
	}

	if s.LegacyFileVersion > legacyVersionNoTextureAlloc {
		if s.NumTextureAllocations, err = r.I32(); err != nil {
			return err
		}
	}
	if s.AssetRegistryDataOffset, err = r.I32(); err != nil {
		return err
	}
	if s.BulkDataStartOffset, err = r.I64(); err != nil {
		return err
	}
	if ctx.Supports(VerWorldLevelInfo) {
		if s.WorldTileInfoDataOffset, err = r.I32(); err != nil {
			return err
		}
	}
	if ctx.Supports(VerChunkIDArray) {
		chunkCount, err := r.I32()
		if err != nil {
			return err
		}
		if chunkCount < 0 {
			return malformed("summary declares %d chunk ids", chunkCount)
		}
		s.ChunkIDs = make([]int32, chunkCount)
		for i := range s.ChunkIDs {
			if s.ChunkIDs[i], err = r.I32(); err != nil {
				return err
			}
		}
	} else if ctx.Supports(VerAddedChunkID) {
		chunk, err := r.I32()
		if err != nil {
			return err
		}
		s.ChunkIDs = []int32{chunk}
	}
	if ctx.Supports(VerPreloadDependencies) {
		if s.PreloadDependencyCount, err = r.I32(); err != nil {
			return err
		}
		if s.PreloadDependencyOffset, err = r.I32(); err != nil {
			return err
		}
	}
	if ctx.SupportsUE5(UE5NamesReferencedFromExportData) {
		if s.NamesReferencedFromExportDataCount, err = r.I32(); err != nil {
			return err
		}
	}
	if ctx.SupportsUE5(UE5PayloadToc) {
		if s.PayloadTocOffset, err = r.I64(); err != nil {
			return err
		}
	}
	if ctx.SupportsUE5(UE5DataResources) {
		if s.DataResourceOffset, err = r.I32(); err != nil {
			return err
		}
	}
	return nil
}

// summaryPatches collects the placeholders for every recomputed count
// and offset in an encoded summary.
type summaryPatches struct {
	totalHeaderSize Placeholder
	nameCount       Placeholder
	nameOffset      Placeholder
	exportCount     Placeholder
	exportOffset    Placeholder
	importCount     Placeholder
	importOffset    Placeholder
	dependsOffset   Placeholder

	softPackageReferencesCount  Placeholder
	softPackageReferencesOffset Placeholder

	hasSoftRefFields bool
}

// encodeSummary writes the header block, reserving the section counts
// and offsets the asset encoder patches once the sections land.
func (s *PackageSummary) encodeSummary(ctx *VersionContext, w *Writer) (*summaryPatches, error) {
	w.U32(packageMagic)
	w.I32(s.LegacyFileVersion)
	w.I32(s.LegacyUE3Version)

	if s.Unversioned {
		w.I32(0)
		if s.LegacyFileVersion <= legacyVersionWithUE5Counter {
			w.I32(0)
		}
		w.I32(0)
		w.I32(0)
	} else {
		w.I32(int32(ctx.ObjectVersion()))
		if s.LegacyFileVersion <= legacyVersionWithUE5Counter {
			w.I32(int32(ctx.UE5()))
		}
		w.I32(ctx.Licensee())
		custom := ctx.CustomVersions()
		w.I32(int32(len(custom)))
		for _, cv := range custom {
			w.Guid(cv.Key)
			w.I32(cv.Version)
		}
	}

	p := &summaryPatches{}
	p.totalHeaderSize = w.ReserveI32()
	w.FString(s.FolderName)
	w.U32(s.PackageFlags)
	p.nameCount = w.ReserveI32()
	p.nameOffset = w.ReserveI32()

	if ctx.SupportsUE5(UE5AddSoftObjectPathList) {
		w.I32(s.SoftObjectPathsCount)
		w.I32(s.SoftObjectPathsOffset)
	}
	if ctx.Supports(VerAddedLocalizationID) && !s.FilterEditorOnly() {
		w.FString(s.LocalizationId)
	}
	if ctx.Supports(VerTextInPackages) {
		w.I32(s.GatherableTextDataCount)
		w.I32(s.GatherableTextDataOffset)
	}
	p.exportCount = w.ReserveI32()
	p.exportOffset = w.ReserveI32()
	p.importCount = w.ReserveI32()
	p.importOffset = w.ReserveI32()
	p.dependsOffset = w.ReserveI32()
	if ctx.Supports(VerStringAssetProperties) {
		p.softPackageReferencesCount = w.ReserveI32()
		p.softPackageReferencesOffset = w.ReserveI32()
		p.hasSoftRefFields = true
	}
	if ctx.Supports(VerAddedSearchableNames) {
		w.I32(s.SearchableNamesOffset)
	}
	w.I32(s.ThumbnailTableOffset)
	w.Guid(s.PackageGuid)
	if !s.FilterEditorOnly() {
		if ctx.Supports(VerAddedPackageOwner) {
			w.Guid(s.PersistentGuid)
		}
		if ctx.Supports(VerAddedPackageOwner) && !ctx.Supports(VerNonOuterPackageImport) {
			w.Guid(s.OwnerPersistentGuid)
		}
	}

	w.I32(int32(len(s.Generations)))
	for _, g := range s.Generations {
		w.I32(g.ExportCount)
		w.I32(g.NameCount)
	}

	if ctx.Supports(VerEngineVersionObject) {
		s.SavedByEngineVersion.encode(w)
	} else {
		w.U32(s.EngineChangelist)
	}
	if ctx.Supports(VerCompatibleEngineVersion) {
		s.CompatibleWithEngineVersion.encode(w)
	}

	w.U32(s.CompressionFlags)
	w.I32(0) // compressed chunks, always empty
	w.U32(s.PackageSource)

	w.I32(int32(len(s.AdditionalPackagesToCook)))
	for _, pkg := range s.AdditionalPackagesToCook {
		w.FString(pkg)
	}

	if s.LegacyFileVersion > legacyVersionNoTextureAlloc {
		w.I32(s.NumTextureAllocations)
	}
	w.I32(s.AssetRegistryDataOffset)
	w.I64(s.BulkDataStartOffset)
	if ctx.Supports(VerWorldLevelInfo) {
		w.I32(s.WorldTileInfoDataOffset)
	}
	if ctx.Supports(VerChunkIDArray) {
		w.I32(int32(len(s.ChunkIDs)))
		for _, id := range s.ChunkIDs {
			w.I32(id)
		}
	} else if ctx.Supports(VerAddedChunkID) {
		var chunk int32
		if len(s.ChunkIDs) > 0 {
			chunk = s.ChunkIDs[0]
		}
		w.I32(chunk)
	}
	if ctx.Supports(VerPreloadDependencies) {
		w.I32(s.PreloadDependencyCount)
		w.I32(s.PreloadDependencyOffset)
	}
	if ctx.SupportsUE5(UE5NamesReferencedFromExportData) {
		w.I32(s.NamesReferencedFromExportDataCount)
	}
	if ctx.SupportsUE5(UE5PayloadToc) {
		w.I64(s.PayloadTocOffset)
	}
	if ctx.SupportsUE5(UE5DataResources) {
		w.I32(s.DataResourceOffset)
	}
	return p, nil
}
