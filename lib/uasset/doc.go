// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

// Package uasset decodes and re-encodes the tagged-property binary
// asset format that the engine uses to persist serialized object
// graphs (class instances, data tables, blueprints) inside archive
// containers.
//
// The package is a pure codec: byte buffers are handed in and out
// complete, there is no I/O and no threading policy. One [Asset]
// exclusively owns its name table, import/export tables, and version
// context; processing many assets in parallel means one asset per
// goroutine with no shared state.
//
// The layers, leaves first:
//
//   - Name table: every string an asset uses is interned into an
//     ordered, deduplicated table. All other layers refer to strings
//     only through [NameRef], a weak (index, instance-number) pair
//     resolved against the owning asset.
//
//   - Index resolver: [PackageIndex], one signed integer that is
//     null, the Nth export, or the Nth import. The only way objects
//     reference each other within an asset.
//
//   - Version context: the two ordinal engine counters plus the
//     custom-version set decoded from the summary. Every optional
//     field in the format is gated by a named threshold comparison
//     against this context — never by raw byte offsets.
//
//   - Property codec: a type-tagged dispatcher over the format's
//     property variants (scalars, strings, text, object references,
//     struct/array/set/map containers, engine composite types). One
//     registry maps type names to constructors so the decode, encode,
//     and zero-value paths cannot drift apart.
//
//   - Unversioned header codec: the run-length fragment bitstream
//     that replaces inline type tags when an asset is saved without
//     them; property types then come from an externally supplied
//     [UnversionedSchema].
//
//   - Export/import table model: the per-asset object tables that
//     property values reference through the index resolver, with a
//     closed set of export variants (normal objects, classes,
//     functions, enums, data tables, string tables, levels, raw
//     fallback).
//
// Decode walks: summary, name batch, imports, exports, depends map,
// then each export's property list in table order. Encode runs the
// same pipeline in reverse, recomputing section offsets and patching
// placeholder lengths through [Writer] as true sizes become known.
//
// Error containment follows the format's practical failure modes: a
// single export whose property list fails to decode is retained as an
// opaque raw byte range and round-trips unchanged, while name table,
// import/export table, or summary failures poison the whole asset.
// See the Err* sentinels for the taxonomy.
package uasset
