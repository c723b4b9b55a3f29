// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

import (
	"hash/crc32"
	"strings"

	"github.com/uassetkit/uassetkit/lib/omap"
)

// NameRef is a weak reference into an asset's name table: the entry
// index plus an instance number that disambiguates repeated uses of
// one string (a serialized number of N+1 renders as "Name_N"; zero
// means no suffix). The instance number is never itself stored in the
// table.
//
// A NameRef is only meaningful against the table it was decoded from.
// Comparing references from two different assets without resolving
// them through their owning tables compares unrelated indices.
type NameRef struct {
	Index  int32
	Number int32
}

// WithNumber returns a copy of the reference with a different instance
// number; the table entry is unchanged.
func (n NameRef) WithNumber(number int32) NameRef {
	return NameRef{Index: n.Index, Number: number}
}

// nameEntry is one stored table slot: the unique string plus the two
// serialized 16-bit hashes. Hashes decoded from the file are kept
// verbatim so re-encoding an untouched table is byte-identical even if
// the saving tool hashed differently than we do.
type nameEntry struct {
	value     string
	hashes    [2]uint16
	hasHashes bool
}

// NameTable interns every string an asset uses into an ordered,
// deduplicated sequence. All other layers hold [NameRef] indices into
// it; the table owns the strings.
type NameTable struct {
	entries []nameEntry
	// lookup maps a string to its first position. Forced duplicates
	// (Intern with allowDuplicate) append entries without touching it,
	// so lookups keep returning the earliest slot, matching how the
	// engine resolves repeated table strings.
	lookup *omap.Map[string, int32]
}

// NewNameTable creates an empty table.
func NewNameTable() *NameTable {
	return &NameTable{lookup: omap.New[string, int32]()}
}

// Len returns the number of entries.
func (t *NameTable) Len() int {
	return len(t.entries)
}

// Intern inserts value and returns a reference to it. An already
// present string is reused unless allowDuplicate forces a fresh slot;
// forcing exists for replaying tables where the engine itself emitted
// the same string twice, and is never the right call for new content.
func (t *NameTable) Intern(value string, allowDuplicate bool) NameRef {
	if !allowDuplicate {
		if index, ok := t.lookup.Get(value); ok {
			return NameRef{Index: index}
		}
	}
	index := int32(len(t.entries))
	t.entries = append(t.entries, nameEntry{value: value})
	if !t.lookup.Contains(value) {
		t.lookup.Set(value, index)
	}
	return NameRef{Index: index}
}

// Lookup returns a reference to value if it is already interned.
func (t *NameTable) Lookup(value string) (NameRef, bool) {
	if index, ok := t.lookup.Get(value); ok {
		return NameRef{Index: index}, true
	}
	return NameRef{}, false
}

// Resolve returns the string a reference points at. An index outside
// the table is content corruption and reports [ErrInvalidIndex]; the
// instance number does not participate (it is a property of the use
// site, not the table).
func (t *NameTable) Resolve(ref NameRef) (string, error) {
	if ref.Index < 0 || int(ref.Index) >= len(t.entries) {
		return "", invalidIndex("name index %d outside table of %d entries", ref.Index, len(t.entries))
	}
	return t.entries[ref.Index].value, nil
}

// Strings returns every entry in table order. Used by tooling that
// dumps or diffs tables; the slice is freshly allocated.
func (t *NameTable) Strings() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.value
	}
	return out
}

// readEntry decodes one serialized table slot: the string, then the
// two 16-bit hashes once the object version serializes them.
func (t *NameTable) readEntry(r *Reader, ctx *VersionContext) error {
	value, err := r.FString()
	if err != nil {
		return err
	}
	entry := nameEntry{value: value}
	if ctx.Supports(VerNameHashesSerialized) {
		for i := range entry.hashes {
			h, err := r.U16()
			if err != nil {
				return err
			}
			entry.hashes[i] = h
		}
		entry.hasHashes = true
	}
	t.entries = append(t.entries, entry)
	if !t.lookup.Contains(value) {
		t.lookup.Set(value, int32(len(t.entries)-1))
	}
	return nil
}

// writeEntry encodes one table slot. Hashes decoded from the file are
// replayed verbatim; entries interned after decode get freshly
// computed ones.
func (t *NameTable) writeEntry(w *Writer, ctx *VersionContext, index int) {
	entry := t.entries[index]
	w.FString(entry.value)
	if ctx.Supports(VerNameHashesSerialized) {
		if !entry.hasHashes {
			entry.hashes[0] = uint16(nameHashNonCasePreserving(entry.value))
			entry.hashes[1] = uint16(nameHashCasePreserving(entry.value))
		}
		w.U16(entry.hashes[0])
		w.U16(entry.hashes[1])
	}
}

// The per-string hashes stored after each table entry. Each character
// feeds the CRC as a 4-byte little-endian group, which is how the
// engine's string CRC treats one-byte text.

func nameHashCasePreserving(s string) uint32 {
	return strCrc32(s)
}

func nameHashNonCasePreserving(s string) uint32 {
	return strCrc32(strings.ToUpper(s))
}

func strCrc32(s string) uint32 {
	crc := ^uint32(0)
	for _, c := range s {
		crc = crc32.IEEETable[byte(crc)^byte(c)] ^ (crc >> 8)
		c >>= 8
		crc = crc32.IEEETable[byte(crc)^byte(c)] ^ (crc >> 8)
		c >>= 8
		crc = crc32.IEEETable[byte(crc)^byte(c)] ^ (crc >> 8)
		c >>= 8
		crc = crc32.IEEETable[byte(crc)^byte(c)] ^ (crc >> 8)
	}
	return ^crc
}
