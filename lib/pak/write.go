// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package pak

import (
	"crypto/sha1"
	"fmt"
	"sort"

	"github.com/uassetkit/uassetkit/lib/uasset"
)

// defaultBlockSize is the compression block granularity. Runtime
// readers decompress blocks independently, so smaller blocks trade
// ratio for random access; 64 KiB is the conventional value.
const defaultBlockSize uint32 = 64 * 1024

// defaultMountPoint anchors entry paths relative to the engine
// content directory, the layout cooked builds expect.
const defaultMountPoint = "../../../"

// Builder accumulates entries and serializes a version 9 archive:
// named compression methods, classic path-keyed index, no
// encryption.
type Builder struct {
	MountPoint string
	BlockSize  uint32

	entries []builderEntry
}

type builderEntry struct {
	path   string
	data   []byte
	method Method
}

// NewBuilder returns a Builder with the conventional mount point and
// block size.
func NewBuilder() *Builder {
	return &Builder{MountPoint: defaultMountPoint, BlockSize: defaultBlockSize}
}

// Add queues one file. Compression happens during Bytes, so an
// incompressible entry surfaces there.
func (b *Builder) Add(path string, data []byte, method Method) {
	b.entries = append(b.entries, builderEntry{path: path, data: data, method: method})
}

// Bytes serializes the archive.
func (b *Builder) Bytes() ([]byte, error) {
	a := &Archive{
		Version: versionFrozenIndex,
		Methods: []Method{MethodNone, MethodZlib, MethodGzip, MethodZstd, MethodLZ4},
	}

	queued := make([]builderEntry, len(b.entries))
	copy(queued, b.entries)
	sort.Slice(queued, func(i, j int) bool { return queued[i].path < queued[j].path })

	w := uasset.NewWriter()
	index := make([]*Entry, 0, len(queued))
	for _, q := range queued {
		e, stored, err := b.buildEntry(q)
		if err != nil {
			return nil, fmt.Errorf("pak: entry %q: %w", q.path, err)
		}
		e.Offset = int64(w.Len())
		if err := a.writeEntryRecord(w, e); err != nil {
			return nil, fmt.Errorf("pak: entry %q: %w", q.path, err)
		}
		for _, block := range stored {
			w.Raw(block)
		}
		index = append(index, e)
	}

	iw := uasset.NewWriter()
	iw.FString(b.MountPoint)
	iw.I32(int32(len(index)))
	for _, e := range index {
		iw.FString(e.Path)
		if err := a.writeEntryRecord(iw, e); err != nil {
			return nil, fmt.Errorf("pak: index entry %q: %w", e.Path, err)
		}
	}
	indexData := iw.Bytes()
	indexOffset := int64(w.Len())
	w.Raw(indexData)
	indexHash := sha1.Sum(indexData)

	// Footer: key guid, index-encryption flag, magic, version, index
	// span and hash, frozen flag, five 32-byte method name slots.
	w.Raw(make([]byte, 16))
	w.U8(0)
	w.U32(archiveMagic)
	w.I32(a.Version)
	w.I64(indexOffset)
	w.I64(int64(len(indexData)))
	w.Raw(indexHash[:])
	w.U8(0)
	for slot := 1; slot <= 5; slot++ {
		name := make([]byte, 32)
		if slot < len(a.Methods) {
			copy(name, a.Methods[slot])
		}
		w.Raw(name)
	}
	return w.Bytes(), nil
}

// buildEntry compresses one queued file and fills its record. Block
// offsets stay entry-relative, the on-disk form for this version.
func (b *Builder) buildEntry(q builderEntry) (*Entry, [][]byte, error) {
	e := &Entry{
		Path:             q.path,
		Method:           q.method,
		UncompressedSize: int64(len(q.data)),
	}

	var stored [][]byte
	if q.method == MethodNone || len(q.data) == 0 {
		e.Method = MethodNone
		stored = [][]byte{q.data}
		e.CompressedSize = int64(len(q.data))
	} else {
		blockSize := int(b.BlockSize)
		if blockSize <= 0 {
			blockSize = int(defaultBlockSize)
		}
		e.BlockSize = uint32(blockSize)
		blockCount := (len(q.data) + blockSize - 1) / blockSize
		if blockCount == 0 {
			blockCount = 1
		}
		e.Blocks = make([]Block, 0, blockCount)

		// Header size depends on the block count, which is known
		// before compressing.
		relative := headerSizeFor(q.method, blockCount)
		for start := 0; start < len(q.data); start += blockSize {
			end := start + blockSize
			if end > len(q.data) {
				end = len(q.data)
			}
			compressed, err := compressBlock(q.data[start:end], q.method)
			if err != nil {
				return nil, nil, err
			}
			stored = append(stored, compressed)
			e.Blocks = append(e.Blocks, Block{Start: relative, End: relative + int64(len(compressed))})
			relative += int64(len(compressed))
			e.CompressedSize += int64(len(compressed))
		}
	}

	hash := sha1.New()
	for _, block := range stored {
		hash.Write(block)
	}
	copy(e.Hash[:], hash.Sum(nil))
	return e, stored, nil
}

// headerSizeFor mirrors Entry.headerSize for an entry still being
// assembled.
func headerSizeFor(method Method, blockCount int) int64 {
	size := int64(8+8+8+4+20) + 1 + 4
	if method != MethodNone {
		size += 4 + int64(blockCount)*16
	}
	return size
}
