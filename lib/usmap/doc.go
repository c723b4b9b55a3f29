// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

// Package usmap loads .usmap mapping files, the standard dump of a
// game's reflection data used to decode assets saved with unversioned
// property headers.
//
// A mapping file carries three tables behind an optional compression
// wrapper: a string pool, enum definitions, and struct schemas. Each
// struct schema lists its serialized properties with their declared
// types and the slot indices the unversioned header refers to, plus
// the name of its super struct so inherited slots resolve through the
// ancestry chain.
//
// The loaded [Mappings] implements uasset.UnversionedSchema and plugs
// directly into uasset.DecodeOptions.
package usmap
