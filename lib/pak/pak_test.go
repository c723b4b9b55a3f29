// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package pak

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"testing"

	"github.com/uassetkit/uassetkit/lib/uasset"
)

// compressibleData yields a payload every method can shrink.
func compressibleData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i / 64)
	}
	return data
}

func TestBuildOpenReadRoundTrip(t *testing.T) {
	files := map[string]struct {
		data   []byte
		method Method
	}{
		"Game/Content/raw.bin":   {[]byte("already compressed bytes"), MethodNone},
		"Game/Content/a.uasset":  {compressibleData(4096), MethodZlib},
		"Game/Content/b.uasset":  {compressibleData(8192), MethodZstd},
		"Game/Content/c.uasset":  {compressibleData(2048), MethodLZ4},
		"Game/Content/d.uasset":  {compressibleData(1024), MethodGzip},
		"Game/Content/empty.bin": {nil, MethodZstd},
	}

	b := NewBuilder()
	// A small block size forces multi-block entries.
	b.BlockSize = 1024
	for path, f := range files {
		b.Add(path, f.data, f.method)
	}
	archive, err := b.Bytes()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	a, err := Open(archive, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if a.Version != versionFrozenIndex {
		t.Fatalf("version = %d, want %d", a.Version, versionFrozenIndex)
	}
	if a.MountPoint != defaultMountPoint {
		t.Fatalf("mount point = %q", a.MountPoint)
	}
	if got, want := len(a.Paths()), len(files); got != want {
		t.Fatalf("archive has %d entries, want %d", got, want)
	}

	for path, f := range files {
		got, err := a.Read(path)
		if err != nil {
			t.Fatalf("read %q: %v", path, err)
		}
		if !bytes.Equal(got, f.data) {
			t.Fatalf("read %q: %d bytes, want %d", path, len(got), len(f.data))
		}
	}

	// The multi-block zstd entry carries one block per kilobyte.
	e, ok := a.Entry("Game/Content/b.uasset")
	if !ok {
		t.Fatalf("entry lookup failed")
	}
	if len(e.Blocks) != 8 {
		t.Fatalf("8 KiB entry has %d blocks, want 8", len(e.Blocks))
	}
	if e.Method != MethodZstd {
		t.Fatalf("entry method = %q, want Zstd", e.Method)
	}
}

func TestReadDetectsTamperedPayload(t *testing.T) {
	b := NewBuilder()
	b.Add("file.bin", compressibleData(512), MethodZlib)
	archive, err := b.Bytes()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	a, err := Open(archive, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	// Flip a payload byte inside the first block.
	e, _ := a.Entry("file.bin")
	archive[e.Blocks[0].Start+2] ^= 0xFF
	if _, err := a.Read("file.bin"); !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("tampered read error = %v, want ErrHashMismatch", err)
	}
}

func TestReadUnknownPath(t *testing.T) {
	b := NewBuilder()
	b.Add("file.bin", []byte("x"), MethodNone)
	archive, err := b.Bytes()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	a, err := Open(archive, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := a.Read("ghost.bin"); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("missing entry error = %v, want ErrEntryNotFound", err)
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	if _, err := Open(bytes.Repeat([]byte{0xAB}, 300), nil); !errors.Is(err, ErrMalformedArchive) {
		t.Fatalf("garbage open error = %v, want ErrMalformedArchive", err)
	}
}

func TestOodleIsUnimplemented(t *testing.T) {
	if _, err := compressBlock([]byte("x"), MethodOodle); !errors.Is(err, uasset.ErrUnimplementedVariant) {
		t.Fatalf("oodle compress error = %v, want ErrUnimplementedVariant", err)
	}
	if _, err := decompressBlock([]byte("x"), MethodOodle, 1); !errors.Is(err, uasset.ErrUnimplementedVariant) {
		t.Fatalf("oodle decompress error = %v, want ErrUnimplementedVariant", err)
	}
}

func TestECBRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	plain := compressibleData(64)
	data := make([]byte, len(plain))
	copy(data, plain)

	if err := encryptECB(key, data); err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Equal(data, plain) {
		t.Fatalf("encryption left the data unchanged")
	}
	if err := decryptECB(key, data); err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(data, plain) {
		t.Fatalf("decrypted data differs from plaintext")
	}
}

// TestEncryptedIndex handcrafts an archive whose index is AES
// encrypted and checks both the keyless failure and the keyed read.
func TestEncryptedIndex(t *testing.T) {
	key := bytes.Repeat([]byte{0x17}, 32)
	payload := []byte("secret content")

	a := &Archive{
		Version: versionFrozenIndex,
		Methods: []Method{MethodNone, MethodZlib, MethodGzip, MethodZstd, MethodLZ4},
	}
	e := &Entry{
		Path:             "hidden.bin",
		Method:           MethodNone,
		CompressedSize:   int64(len(payload)),
		UncompressedSize: int64(len(payload)),
		Hash:             sha1.Sum(payload),
	}

	w := uasset.NewWriter()
	if err := a.writeEntryRecord(w, e); err != nil {
		t.Fatalf("local header: %v", err)
	}
	w.Raw(payload)

	iw := uasset.NewWriter()
	iw.FString(defaultMountPoint)
	iw.I32(1)
	iw.FString(e.Path)
	if err := a.writeEntryRecord(iw, e); err != nil {
		t.Fatalf("index entry: %v", err)
	}
	// Pad the index plaintext to the AES block size before
	// encrypting; the hash covers the padded plaintext.
	plaintext := iw.Bytes()
	padded := make([]byte, alignBlock(len(plaintext)))
	copy(padded, plaintext)
	indexHash := sha1.Sum(padded)
	encrypted := make([]byte, len(padded))
	copy(encrypted, padded)
	if err := encryptECB(key, encrypted); err != nil {
		t.Fatalf("encrypt index: %v", err)
	}

	indexOffset := int64(w.Len())
	w.Raw(encrypted)
	w.Raw(make([]byte, 16))
	w.U8(1) // encrypted index
	w.U32(archiveMagic)
	w.I32(a.Version)
	w.I64(indexOffset)
	w.I64(int64(len(encrypted)))
	w.Raw(indexHash[:])
	w.U8(0)
	for slot := 1; slot <= 5; slot++ {
		name := make([]byte, 32)
		if slot < len(a.Methods) {
			copy(name, a.Methods[slot])
		}
		w.Raw(name)
	}
	archive := w.Bytes()

	if _, err := Open(archive, nil); !errors.Is(err, ErrKeyRequired) {
		t.Fatalf("keyless open error = %v, want ErrKeyRequired", err)
	}
	opened, err := Open(archive, &Options{AESKey: key})
	if err != nil {
		t.Fatalf("keyed open: %v", err)
	}
	got, err := opened.Read("hidden.bin")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("read %q, want %q", got, payload)
	}
}
