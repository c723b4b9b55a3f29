// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

import "fmt"

// PackageIndex is the format's single way for objects to reference
// each other within an asset: one signed 32-bit integer. Zero is the
// null reference, positive N is the Nth export (1-based), negative N
// is the Nth import (1-based, negated).
type PackageIndex int32

// NullIndex is the null object reference.
const NullIndex PackageIndex = 0

// ExportIndex builds a reference to the export at zero-based table
// position n.
func ExportIndex(n int) PackageIndex {
	return PackageIndex(n + 1)
}

// ImportIndex builds a reference to the import at zero-based table
// position n.
func ImportIndex(n int) PackageIndex {
	return PackageIndex(-(n + 1))
}

// IsNull reports whether the reference is null.
func (i PackageIndex) IsNull() bool {
	return i == 0
}

// IsExport reports whether the reference points into the export table.
func (i PackageIndex) IsExport() bool {
	return i > 0
}

// IsImport reports whether the reference points into the import table.
func (i PackageIndex) IsImport() bool {
	return i < 0
}

// ExportPosition returns the zero-based export table position. Only
// valid when IsExport.
func (i PackageIndex) ExportPosition() int {
	return int(i) - 1
}

// ImportPosition returns the zero-based import table position. Only
// valid when IsImport.
func (i PackageIndex) ImportPosition() int {
	return int(-i) - 1
}

// String renders the sign convention for logs and errors.
func (i PackageIndex) String() string {
	switch {
	case i.IsNull():
		return "null"
	case i.IsExport():
		return fmt.Sprintf("export[%d]", i.ExportPosition())
	default:
		return fmt.Sprintf("import[%d]", i.ImportPosition())
	}
}
