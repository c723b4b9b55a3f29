// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package iostore

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/uassetkit/uassetkit/lib/uasset"
)

func packBE5(w *uasset.Writer, v uint64) {
	w.Raw([]byte{byte(v >> 32), byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

func packLE(w *uasset.Writer, v uint64, width int) {
	for i := 0; i < width; i++ {
		w.U8(byte(v >> (8 * i)))
	}
}

// fixture builds a version 5 container with two chunks:
//
//	chunk A: 13 stored bytes in block 0, reached via a direct
//	         (negative) perfect-hash seed and the directory index
//	chunk B: 300 bytes zstd-compressed across blocks 1 and 2,
//	         reached via the overflow list
func fixture(t *testing.T) (toc, ucas, chunkA, chunkB []byte) {
	t.Helper()
	const blockSize = 256

	chunkA = []byte("hello iostore")
	chunkB = make([]byte, 300)
	for i := range chunkB {
		chunkB[i] = byte(i / 16)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	compressed1 := encoder.EncodeAll(chunkB[:blockSize], nil)
	compressed2 := encoder.EncodeAll(chunkB[blockSize:], nil)

	data := uasset.NewWriter()
	data.Raw(chunkA)
	data.Raw(compressed1)
	data.Raw(compressed2)
	ucas = data.Bytes()

	idA := ChunkID{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2}
	idB := ChunkID{2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2}

	// Directory index: root -> Game/ -> A.uasset.
	dw := uasset.NewWriter()
	dw.FString("../../../")
	dw.I32(2)
	dw.U32(invalidIndex) // root: no name
	dw.U32(1)            // first child: Game
	dw.U32(invalidIndex)
	dw.U32(invalidIndex)
	dw.U32(0) // Game
	dw.U32(invalidIndex)
	dw.U32(invalidIndex)
	dw.U32(0) // first file
	dw.I32(1)
	dw.U32(1) // A.uasset
	dw.U32(invalidIndex)
	dw.U32(0) // chunk A's table slot
	dw.I32(2)
	dw.FString("Game")
	dw.FString("A.uasset")
	directory := dw.Bytes()

	w := uasset.NewWriter()
	w.Raw(tocMagic[:])
	w.U8(versionPerfectHashWithOverflow)
	w.U8(0)
	w.U16(0)
	w.U32(144) // header size
	w.U32(2)   // entries
	w.U32(3)   // compression blocks
	w.U32(12)  // block entry size
	w.U32(1)   // method names
	w.U32(32)  // method name length
	w.U32(blockSize)
	w.U32(uint32(len(directory)))
	w.U32(1) // partitions
	w.U64(0xAA)
	w.Raw(make([]byte, 16)) // key guid
	w.U8(flagCompressed | flagIndexed)
	w.U8(0)
	w.U16(0)
	w.U32(1) // hash seeds
	w.U64(0) // partition size
	w.U32(1) // overflow entries
	w.U32(0)
	w.Raw(make([]byte, 40))

	w.Raw(idA[:])
	w.Raw(idB[:])
	packBE5(w, 0)
	packBE5(w, uint64(len(chunkA)))
	packBE5(w, blockSize)
	packBE5(w, uint64(len(chunkB)))
	w.I32(-1) // seed: direct slot 0
	w.U32(1)  // overflow: chunk B

	packLE(w, 0, 5)
	packLE(w, uint64(len(chunkA)), 3)
	packLE(w, uint64(len(chunkA)), 3)
	w.U8(0)
	packLE(w, uint64(len(chunkA)), 5)
	packLE(w, uint64(len(compressed1)), 3)
	packLE(w, blockSize, 3)
	w.U8(1)
	packLE(w, uint64(len(chunkA)+len(compressed1)), 5)
	packLE(w, uint64(len(compressed2)), 3)
	packLE(w, uint64(len(chunkB)-blockSize), 3)
	w.U8(1)

	method := make([]byte, 32)
	copy(method, "Zstd")
	w.Raw(method)
	w.Raw(directory)

	return w.Bytes(), ucas, chunkA, chunkB
}

func TestGetDirectSlot(t *testing.T) {
	toc, ucas, chunkA, _ := fixture(t)
	c, err := Open(toc, ucas, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, err := c.Get(ChunkID{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, chunkA) {
		t.Fatalf("chunk A = %q, want %q", got, chunkA)
	}
}

func TestGetOverflowMultiBlock(t *testing.T) {
	toc, ucas, _, chunkB := fixture(t)
	c, err := Open(toc, ucas, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, err := c.Get(ChunkID{2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, chunkB) {
		t.Fatalf("chunk B: %d bytes, want %d", len(got), len(chunkB))
	}
}

func TestReadThroughDirectoryIndex(t *testing.T) {
	toc, ucas, chunkA, _ := fixture(t)
	c, err := Open(toc, ucas, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if c.MountPoint != "../../../" {
		t.Fatalf("mount point = %q", c.MountPoint)
	}
	got, err := c.Read("Game/A.uasset")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, chunkA) {
		t.Fatalf("read %q, want %q", got, chunkA)
	}
}

func TestGetUnknownChunk(t *testing.T) {
	toc, ucas, _, _ := fixture(t)
	c, err := Open(toc, ucas, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := c.Get(ChunkID{9, 9, 9}); !errors.Is(err, ErrChunkNotFound) {
		t.Fatalf("unknown chunk error = %v, want ErrChunkNotFound", err)
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	toc, ucas, _, _ := fixture(t)
	toc[0] = 'X'
	if _, err := Open(toc, ucas, nil); !errors.Is(err, ErrMalformedContainer) {
		t.Fatalf("bad magic error = %v, want ErrMalformedContainer", err)
	}
}
