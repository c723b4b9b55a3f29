// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

// ObjectVersion is the primary ordinal serialization counter written
// in every package summary. Each named constant marks the revision
// that introduced a layout change; components compare the decoded
// counter against these names and never against raw offsets, which is
// the contract that keeps the codec extensible when new thresholds
// appear.
//
// The values are the engine's own ordinals and are protocol
// constants. Only revisions this codec consults (or that bound an
// engine release the inference table recognizes) are listed; the
// counter itself is an open range and unknown values pass through
// untouched.
type ObjectVersion int32

const (
	// ObjectVersionUnknown is the zero value: the asset was saved
	// unversioned and the true version must come from the caller or
	// from engine-version inference.
	ObjectVersionUnknown ObjectVersion = 0

	// VerOldestLoadablePackage is the floor below which no modern
	// runtime loads a package. Decoding rejects anything older.
	VerOldestLoadablePackage ObjectVersion = 214

	// VerWorldLevelInfo added the world tile info offset to the
	// package summary.
	VerWorldLevelInfo ObjectVersion = 224

	// VerAddedChunkID added a single streaming chunk id to the
	// summary.
	VerAddedChunkID ObjectVersion = 278

	// VerArrayPropertyInnerTags added the inner element type name to
	// array property tags.
	VerArrayPropertyInnerTags ObjectVersion = 282

	// VerChunkIDArray replaced the summary's single chunk id with an
	// array of chunk ids.
	VerChunkIDArray ObjectVersion = 326

	// VerEngineVersionObject replaced the summary's bare changelist
	// number with a structured engine version record.
	VerEngineVersionObject ObjectVersion = 336

	// VerLoadForEditorGame added the not-always-loaded-for-editor
	// flag to export table entries.
	VerLoadForEditorGame ObjectVersion = 365

	// VerTextHistory switched text properties from flat strings to
	// the typed history encoding.
	VerTextHistory ObjectVersion = 368

	// VerEnumClassSupport replaced the enum export's namespace flag
	// with the cpp-form byte.
	VerEnumClassSupport ObjectVersion = 390

	// VerStringAssetProperties added the soft package reference
	// count and offset to the summary.
	VerStringAssetProperties ObjectVersion = 437

	// VerTightlyPackedEnums attached explicit values to serialized
	// enum entries (previously names with implicit positions).
	VerTightlyPackedEnums ObjectVersion = 463

	// VerStructGuidInPropertyTag added the struct guid to struct
	// property tags.
	VerStructGuidInPropertyTag ObjectVersion = 441

	// VerCompatibleEngineVersion added the compatible-with engine
	// version record to the summary alongside the saved-by record.
	VerCompatibleEngineVersion ObjectVersion = 444

	// VerTextInPackages added gatherable text data counts to the
	// summary.
	VerTextInPackages ObjectVersion = 459

	// VerPropertiesSerializeRepCondition added the blueprint
	// replication condition byte to serialized property fields.
	VerPropertiesSerializeRepCondition ObjectVersion = 472

	// VerCookedAssetsInEditorSupport added the is-asset flag to
	// export table entries.
	VerCookedAssetsInEditorSupport ObjectVersion = 485

	// VerAddCookedToUClass added the cooked flag to serialized
	// class exports.
	VerAddCookedToUClass ObjectVersion = 487

	// VerInnerArrayTagInfo introduced the compact array-of-structs
	// encoding: one shared inner tag for the whole array instead of
	// one tag per element.
	VerInnerArrayTagInfo ObjectVersion = 500

	// VerPropertyGuidInPropertyTag added the optional per-property
	// guid (presence byte plus 16 bytes) to every property tag.
	VerPropertyGuidInPropertyTag ObjectVersion = 503

	// VerNameHashesSerialized added the two 16-bit hashes after each
	// name table string.
	VerNameHashesSerialized ObjectVersion = 504

	// VerPreloadDependencies added preload dependency counts to the
	// summary and the five dependency indices to export entries.
	VerPreloadDependencies ObjectVersion = 507

	// VerTemplateIndexInCookedExports added the template object
	// index to export table entries.
	VerTemplateIndexInCookedExports ObjectVersion = 508

	// VerPropertyTagSetMapSupport added inner type names to set
	// property tags and key/value type names to map property tags.
	VerPropertyTagSetMapSupport ObjectVersion = 509

	// VerAddedSearchableNames added the searchable names offset to
	// the summary.
	VerAddedSearchableNames ObjectVersion = 510

	// Ver64BitExportMapSerialSizes widened export serial sizes and
	// offsets from 32 to 64 bits.
	Ver64BitExportMapSerialSizes ObjectVersion = 511

	// VerAddedSoftObjectPath introduced the structured soft object
	// path encoding (previously a flat string).
	VerAddedSoftObjectPath ObjectVersion = 514

	// VerAddedLocalizationID added the localization id string to
	// uncooked package summaries.
	VerAddedLocalizationID ObjectVersion = 516

	// VerAddedPackageOwner added the persistent guid (and, until
	// VerNonOuterPackageImport, the owner guid) to the summary.
	VerAddedPackageOwner ObjectVersion = 518

	// VerNonOuterPackageImport added the package name field to
	// import table entries and removed the summary's owner guid.
	VerNonOuterPackageImport ObjectVersion = 520

	// VerAssetRegistryDependencyFlags extended the asset registry
	// dependency block with per-dependency flags.
	VerAssetRegistryDependencyFlags ObjectVersion = 521

	// VerCorrectLicenseeFlag is the final revision of this counter;
	// later layout changes moved to the UE5 counter.
	VerCorrectLicenseeFlag ObjectVersion = 522
)

// Supports reports whether the context's object version is at or past
// the named threshold. Reads more naturally than a bare comparison at
// gate sites: ctx.Supports(VerInnerArrayTagInfo).
func (v ObjectVersion) Supports(threshold ObjectVersion) bool {
	return v >= threshold
}
