// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the toolkit's standard CBOR encoding
// configuration.
//
// Two serialization concerns live in the toolkit with a clear
// boundary:
//
//   - The asset wire formats themselves are hand-written binary
//     codecs (lib/uasset, lib/pak, lib/iostore); CBOR never touches
//     them.
//   - Tool-side records — cache snapshots, dump output envelopes —
//     are CBOR, encoded through this package.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2):
// sorted map keys, smallest integer encoding, no indefinite-length
// items. Same logical data always produces identical bytes, which is
// what makes CBOR records usable as content-addressed cache values.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations:
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
package codec
