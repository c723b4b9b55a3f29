// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

// Package assetcache keeps content-addressed snapshots of decoded
// assets so repeated inspection of the same bytes skips the decode
// pass.
//
// Cache keys are keyed BLAKE3 digests of the raw asset bytes; values
// are deterministic CBOR records summarizing the decode: inferred
// engine version, table sizes, per-export class and payload facts,
// and which payloads failed containment. A key is valid forever —
// identical input bytes always decode identically — so the cache
// needs no invalidation beyond deletion.
package assetcache
