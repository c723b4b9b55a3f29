// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

import (
	"bytes"
	"errors"
	"testing"
)

func TestNameTableInternDeduplicates(t *testing.T) {
	table := NewNameTable()
	first := table.Intern("Health", false)
	second := table.Intern("Health", false)
	if first != second {
		t.Fatalf("repeated intern returned %v, want %v", second, first)
	}
	if table.Len() != 1 {
		t.Fatalf("table length = %d, want 1", table.Len())
	}
}

func TestNameTableForcedDuplicate(t *testing.T) {
	table := NewNameTable()
	first := table.Intern("Mesh", false)
	forced := table.Intern("Mesh", true)
	if forced.Index == first.Index {
		t.Fatalf("forced duplicate reused slot %d", first.Index)
	}
	if table.Len() != 2 {
		t.Fatalf("table length = %d, want 2", table.Len())
	}
	// Lookups keep resolving to the earliest slot.
	ref, ok := table.Lookup("Mesh")
	if !ok || ref.Index != first.Index {
		t.Fatalf("lookup after forced duplicate = %v, %v; want index %d", ref, ok, first.Index)
	}
	value, err := table.Resolve(forced)
	if err != nil || value != "Mesh" {
		t.Fatalf("resolve forced slot = %q, %v", value, err)
	}
}

func TestNameTableResolveOutOfBounds(t *testing.T) {
	table := NewNameTable()
	table.Intern("Only", false)
	for _, ref := range []NameRef{{Index: -1}, {Index: 1}, {Index: 99}} {
		if _, err := table.Resolve(ref); !errors.Is(err, ErrInvalidIndex) {
			t.Fatalf("resolve %v: error = %v, want ErrInvalidIndex", ref, err)
		}
	}
}

func TestNameEntryRoundTripWithHashes(t *testing.T) {
	ctx := NewVersionContext(VerCorrectLicenseeFlag, UE5VersionNone, nil)

	source := NewNameTable()
	source.Intern("Health", false)
	source.Intern("Ünïcode", false)

	w := NewWriter()
	for i := 0; i < source.Len(); i++ {
		source.writeEntry(w, ctx, i)
	}

	decoded := NewNameTable()
	r := NewReader(w.Bytes())
	for i := 0; i < source.Len(); i++ {
		if err := decoded.readEntry(r, ctx); err != nil {
			t.Fatalf("readEntry %d: %v", i, err)
		}
	}
	if got, want := decoded.Strings(), source.Strings(); len(got) != len(want) {
		t.Fatalf("decoded %d entries, want %d", len(got), len(want))
	} else {
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("entry %d = %q, want %q", i, got[i], want[i])
			}
		}
	}

	// Decoded hashes replay verbatim: a second write is byte-identical.
	again := NewWriter()
	for i := 0; i < decoded.Len(); i++ {
		decoded.writeEntry(again, ctx, i)
	}
	if !bytes.Equal(again.Bytes(), w.Bytes()) {
		t.Fatalf("re-encoded name entries differ from original")
	}
}

func TestNameEntryNoHashesBeforeGate(t *testing.T) {
	old := NewVersionContext(VerInnerArrayTagInfo, UE5VersionNone, nil)
	table := NewNameTable()
	table.Intern("Plain", false)

	w := NewWriter()
	table.writeEntry(w, old, 0)
	// int32 length + "Plain\0" and nothing else.
	if got, want := w.Len(), 4+6; got != want {
		t.Fatalf("entry width = %d, want %d (no trailing hashes)", got, want)
	}
}
