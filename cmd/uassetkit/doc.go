// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

// The uassetkit command is the command-line front end for the asset
// codec libraries: summarize and dump asset packages, apply batch
// edits, list and extract pak archives and IoStore containers, and
// inspect property mapping files.
package main
