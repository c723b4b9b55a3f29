// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package pak

import (
	"bytes"
	"crypto/sha1"
	"testing"

	"github.com/uassetkit/uassetkit/lib/uasset"
)

// TestSplitIndexArchive handcrafts a version 11 archive: one entry in
// the bit-packed encoded form, located through the full directory
// index.
func TestSplitIndexArchive(t *testing.T) {
	payload := []byte("split index payload")
	a := &Archive{
		Version: versionFnv64BugFix,
		Methods: []Method{MethodNone, MethodZlib, MethodGzip, MethodZstd, MethodLZ4},
	}

	w := uasset.NewWriter()
	local := &Entry{
		Method:           MethodNone,
		CompressedSize:   int64(len(payload)),
		UncompressedSize: int64(len(payload)),
		Hash:             sha1.Sum(payload),
	}
	if err := a.writeEntryRecord(w, local); err != nil {
		t.Fatalf("local header: %v", err)
	}
	w.Raw(payload)

	// Encoded entry: method None, 32-bit offset 0, 32-bit size.
	ew := uasset.NewWriter()
	ew.U32(uint32(encodedOffset32Bit | encodedUncompressed32Bit))
	ew.U32(0)
	ew.U32(uint32(len(payload)))
	encoded := ew.Bytes()

	dw := uasset.NewWriter()
	dw.I32(1)
	dw.FString("/")
	dw.I32(1)
	dw.FString("hello.bin")
	dw.I32(0) // offset of the encoded entry
	directory := dw.Bytes()
	directoryHash := sha1.Sum(directory)
	directoryOffset := int64(w.Len())
	w.Raw(directory)

	iw := uasset.NewWriter()
	iw.FString(defaultMountPoint)
	iw.I32(1)
	iw.U64(0) // path hash seed
	iw.I32(0) // no path hash index
	iw.I32(1) // full directory index present
	iw.I64(directoryOffset)
	iw.I64(int64(len(directory)))
	iw.Raw(directoryHash[:])
	iw.I32(int32(len(encoded)))
	iw.Raw(encoded)
	iw.I32(0) // no plain entries
	index := iw.Bytes()
	indexHash := sha1.Sum(index)
	indexOffset := int64(w.Len())
	w.Raw(index)

	w.Raw(make([]byte, 16))
	w.U8(0)
	w.U32(archiveMagic)
	w.I32(a.Version)
	w.I64(indexOffset)
	w.I64(int64(len(index)))
	w.Raw(indexHash[:])
	for slot := 1; slot <= 5; slot++ {
		name := make([]byte, 32)
		if slot < len(a.Methods) {
			copy(name, a.Methods[slot])
		}
		w.Raw(name)
	}

	opened, err := Open(w.Bytes(), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened.Version != versionFnv64BugFix {
		t.Fatalf("version = %d, want %d", opened.Version, versionFnv64BugFix)
	}
	got, err := opened.Read("hello.bin")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("read %q, want %q", got, payload)
	}
}
