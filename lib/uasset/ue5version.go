// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

// UE5Version is the second ordinal serialization counter, introduced
// alongside generation 5 of the engine. Packages from earlier
// generations carry [UE5VersionNone]; the summary only serializes
// this counter when its legacy file version is at least as new as
// [legacyVersionWithUE5Counter].
type UE5Version int32

const (
	// UE5VersionNone means the package predates the second counter.
	UE5VersionNone UE5Version = 0

	// UE5InitialVersion is the first value of the counter.
	UE5InitialVersion UE5Version = 1000

	// UE5NamesReferencedFromExportData added the count of name table
	// entries referenced by export payloads to the summary.
	UE5NamesReferencedFromExportData UE5Version = 1001

	// UE5PayloadToc added the payload table-of-contents offset to
	// the summary.
	UE5PayloadToc UE5Version = 1002

	// UE5OptionalResources added the optional flag to import entries
	// and the public-hash flag to export entries.
	UE5OptionalResources UE5Version = 1003

	// UE5LargeWorldCoordinates widened the core math structs
	// (vectors, rotators, boxes) from 32-bit to 64-bit floats.
	UE5LargeWorldCoordinates UE5Version = 1004

	// UE5RemoveObjectExportPackageGuid dropped the per-export
	// package guid from export table entries.
	UE5RemoveObjectExportPackageGuid UE5Version = 1005

	// UE5TrackObjectExportIsInherited added the inherited-instance
	// flag to export table entries.
	UE5TrackObjectExportIsInherited UE5Version = 1006

	// UE5SoftObjectPathUnifiedNames split soft object paths into a
	// (package name, asset name) pair of name references.
	UE5SoftObjectPathUnifiedNames UE5Version = 1007

	// UE5AddSoftObjectPathList added the soft object path list
	// count and offset to the summary.
	UE5AddSoftObjectPathList UE5Version = 1008

	// UE5DataResources added the data resource table offset to the
	// summary.
	UE5DataResources UE5Version = 1009

	// UE5ScriptSerializationOffset added script offset bookkeeping
	// to struct exports.
	UE5ScriptSerializationOffset UE5Version = 1010

	// UE5PropertyTagExtension added the extension block to property
	// tags for overridable serialization.
	UE5PropertyTagExtension UE5Version = 1011

	// UE5PropertyTagCompleteTypeName replaced the tag's flat type
	// name with a structured type-name tree. Property decoding past
	// this revision is not modeled yet and reports
	// [ErrUnimplementedVariant].
	UE5PropertyTagCompleteTypeName UE5Version = 1012

	// UE5AssetRegistryPackageBuildDependencies extended the asset
	// registry block with build dependencies.
	UE5AssetRegistryPackageBuildDependencies UE5Version = 1013
)

// Supports reports whether the counter is at or past the named
// threshold. [UE5VersionNone] supports nothing.
func (v UE5Version) Supports(threshold UE5Version) bool {
	return v != UE5VersionNone && v >= threshold
}
