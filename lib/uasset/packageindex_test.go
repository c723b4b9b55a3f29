// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

import "testing"

func TestPackageIndexSignLaw(t *testing.T) {
	var zero PackageIndex
	if !zero.IsNull() || zero.IsExport() || zero.IsImport() {
		t.Fatalf("zero index classified wrong: null=%v export=%v import=%v",
			zero.IsNull(), zero.IsExport(), zero.IsImport())
	}

	for position := 0; position < 5; position++ {
		exp := ExportIndex(position)
		if !exp.IsExport() || exp.IsImport() || exp.IsNull() {
			t.Fatalf("ExportIndex(%d) = %d classified wrong", position, exp)
		}
		if got := exp.ExportPosition(); got != position {
			t.Fatalf("ExportIndex(%d).ExportPosition() = %d", position, got)
		}

		imp := ImportIndex(position)
		if !imp.IsImport() || imp.IsExport() || imp.IsNull() {
			t.Fatalf("ImportIndex(%d) = %d classified wrong", position, imp)
		}
		if got := imp.ImportPosition(); got != position {
			t.Fatalf("ImportIndex(%d).ImportPosition() = %d", position, got)
		}
	}

	// The two domains never collide.
	if ExportIndex(0) == ImportIndex(0) {
		t.Fatalf("export 0 and import 0 share a wire value")
	}
}

func TestCodecContextCheckIndexBounds(t *testing.T) {
	cc := &codecContext{importCount: 2, exportCount: 3}
	for _, index := range []PackageIndex{0, ExportIndex(0), ExportIndex(2), ImportIndex(0), ImportIndex(1)} {
		if err := cc.checkIndex(index); err != nil {
			t.Fatalf("checkIndex(%d): %v", index, err)
		}
	}
	for _, index := range []PackageIndex{ExportIndex(3), ImportIndex(2)} {
		if err := cc.checkIndex(index); err == nil {
			t.Fatalf("checkIndex(%d) accepted an out-of-bounds reference", index)
		}
	}
}
