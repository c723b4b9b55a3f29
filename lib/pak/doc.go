// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

// Package pak reads and writes PAK archive containers, the mounted
// file store game builds ship assets in.
//
// A PAK file is a sequence of data records followed by an index and a
// fixed-layout footer. Each record duplicates its index entry as a
// local header before the payload, which may be split into
// independently compressed (and optionally AES-encrypted) blocks.
// The index maps mount-relative paths to entries; newer archive
// versions split it into a path-hash index and a full directory
// index, with entries bit-packed into a compact encoded form.
//
// [Open] accepts every archive version from 3 through 11. [Builder]
// writes version 9 archives with the classic path-keyed index, the
// most widely readable form that still carries named compression
// methods.
package pak
