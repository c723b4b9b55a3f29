// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

// Package omap provides an insertion-ordered map that is addressable
// both by key and by position.
//
// The asset codec needs this shape in several places where a plain Go
// map loses required information and a slice loses O(1) key lookup:
//
//   - The name table: an ordered sequence of unique strings where
//     every serialized name reference is a position, but interning
//     must detect duplicates by value.
//   - Override tables: property-name → struct-type mappings whose
//     iteration order is observable in encoded output and must be
//     stable across decode/encode round trips.
//
// The zero value is not usable; create instances with [New]. Maps are
// not safe for concurrent mutation — they follow the codec's
// single-owner model where each asset exclusively owns its tables.
package omap
