// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

// Package iostore reads IoStore containers, the chunked successor to
// PAK archives: a .utoc table of contents describing chunks stored in
// a .ucas data file.
//
// The table of contents maps 12-byte chunk ids to spans of a
// container-wide uncompressed stream, which is materialized from
// fixed-size compression blocks. Chunk lookup goes through a
// perfect-hash seed table; a negative seed addresses its slot
// directly, and chunks that defeated the hash build sit on a
// linear-probe overflow list. An optional AES-encrypted directory
// index maps file paths onto chunk ids.
//
// The package is a read-only byte supplier: [Container.Get] returns a
// chunk's bytes, [Container.Read] resolves a path through the
// directory index first.
package iostore
