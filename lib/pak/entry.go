// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package pak

import (
	"github.com/uassetkit/uassetkit/lib/uasset"
)

// Entry flag bits.
const (
	flagEncrypted uint8 = 1 << 0
	flagDeleted   uint8 = 1 << 1
)

// Block is one compression block. Offsets are file-absolute once an
// entry has been resolved (version 5 widened the on-disk form to
// entry-relative offsets; resolve normalizes both).
type Block struct {
	Start int64
	End   int64
}

// Entry is one archived file record.
type Entry struct {
	Path             string
	Offset           int64
	CompressedSize   int64
	UncompressedSize int64
	Method           Method
	Timestamp        int64
	Hash             [20]byte
	Blocks           []Block
	Flags            uint8
	BlockSize        uint32
}

// Encrypted reports whether the entry payload is AES encrypted.
func (e *Entry) Encrypted() bool { return e.Flags&flagEncrypted != 0 }

// Deleted reports whether the entry is a deletion record.
func (e *Entry) Deleted() bool { return e.Flags&flagDeleted != 0 }

// headerSize returns the serialized size of the entry record as
// duplicated before the payload, which is where block offsets start
// counting for entry-relative versions.
func (e *Entry) headerSize(version int32) int64 {
	size := int64(8 + 8 + 8) // offset, compressed size, uncompressed size
	size += 4                // method index or legacy flags
	if version < versionNoTimestamps {
		size += 8
	}
	size += 20
	if version >= versionCompressionEncryption {
		if e.Method != MethodNone {
			size += 4 + int64(len(e.Blocks))*16
		}
		size += 1 + 4
	}
	return size
}

// readEntryRecord parses a full (non-encoded) entry record.
func (a *Archive) readEntryRecord(r *uasset.Reader) (*Entry, error) {
	e := &Entry{}
	var err error
	if e.Offset, err = r.I64(); err != nil {
		return nil, malformed("entry offset: %v", err)
	}
	if e.CompressedSize, err = r.I64(); err != nil {
		return nil, malformed("entry compressed size: %v", err)
	}
	if e.UncompressedSize, err = r.I64(); err != nil {
		return nil, malformed("entry uncompressed size: %v", err)
	}

	if a.Version >= versionNamedCompression {
		index, err := r.U32()
		if err != nil {
			return nil, malformed("entry method index: %v", err)
		}
		if e.Method, err = a.methodAt(index); err != nil {
			return nil, err
		}
	} else {
		legacy, err := r.I32()
		if err != nil {
			return nil, malformed("entry method flags: %v", err)
		}
		if e.Method, err = legacyMethod(legacy); err != nil {
			return nil, err
		}
	}

	if a.Version < versionNoTimestamps {
		if e.Timestamp, err = r.I64(); err != nil {
			return nil, malformed("entry timestamp: %v", err)
		}
	}

	hash, err := r.Bytes(20)
	if err != nil {
		return nil, malformed("entry hash: %v", err)
	}
	copy(e.Hash[:], hash)

	if a.Version >= versionCompressionEncryption {
		if e.Method != MethodNone {
			count, err := r.I32()
			if err != nil {
				return nil, malformed("entry block count: %v", err)
			}
			if count < 0 {
				return nil, malformed("negative block count %d", count)
			}
			e.Blocks = make([]Block, count)
			for i := range e.Blocks {
				if e.Blocks[i].Start, err = r.I64(); err != nil {
					return nil, malformed("entry block %d: %v", i, err)
				}
				if e.Blocks[i].End, err = r.I64(); err != nil {
					return nil, malformed("entry block %d: %v", i, err)
				}
			}
		}
		if e.Flags, err = r.U8(); err != nil {
			return nil, malformed("entry flags: %v", err)
		}
		if e.BlockSize, err = r.U32(); err != nil {
			return nil, malformed("entry block size: %v", err)
		}
	}
	return e, nil
}

// writeEntryRecord emits the full record form, used both in the
// classic index and in the duplicated local header before each
// payload.
func (a *Archive) writeEntryRecord(w *uasset.Writer, e *Entry) error {
	w.I64(e.Offset)
	w.I64(e.CompressedSize)
	w.I64(e.UncompressedSize)
	index, err := a.methodIndex(e.Method)
	if err != nil {
		return err
	}
	w.U32(index)
	w.Raw(e.Hash[:])
	if e.Method != MethodNone {
		w.I32(int32(len(e.Blocks)))
		for _, b := range e.Blocks {
			w.I64(b.Start)
			w.I64(b.End)
		}
	}
	w.U8(e.Flags)
	w.U32(e.BlockSize)
	return nil
}

// Bit layout of the packed flags word leading an encoded entry.
const (
	encodedOffset32Bit       = 1 << 31
	encodedUncompressed32Bit = 1 << 30
	encodedSize32Bit         = 1 << 29
	encodedEncrypted         = 1 << 22
)

// decodeEntry parses the bit-packed entry form used by version 10+
// primary indexes. Block offsets come out entry-relative; resolve
// makes them absolute.
func (a *Archive) decodeEntry(r *uasset.Reader) (*Entry, error) {
	packed, err := r.U32()
	if err != nil {
		return nil, malformed("encoded entry: %v", err)
	}
	e := &Entry{}

	methodIndex := (packed >> 23) & 0x3F
	if e.Method, err = a.methodAt(methodIndex); err != nil {
		return nil, err
	}

	readSize := func(is32Bit bool) (int64, error) {
		if is32Bit {
			v, err := r.U32()
			return int64(v), err
		}
		return r.I64()
	}
	if e.Offset, err = readSize(packed&encodedOffset32Bit != 0); err != nil {
		return nil, malformed("encoded entry offset: %v", err)
	}
	if e.UncompressedSize, err = readSize(packed&encodedUncompressed32Bit != 0); err != nil {
		return nil, malformed("encoded entry size: %v", err)
	}
	if e.Method != MethodNone {
		if e.CompressedSize, err = readSize(packed&encodedSize32Bit != 0); err != nil {
			return nil, malformed("encoded entry compressed size: %v", err)
		}
	} else {
		e.CompressedSize = e.UncompressedSize
	}

	if packed&encodedEncrypted != 0 {
		e.Flags |= flagEncrypted
	}

	blockCount := int((packed >> 6) & 0xFFFF)
	if blockCount > 0 {
		if e.UncompressedSize < 65536 {
			e.BlockSize = uint32(e.UncompressedSize)
		} else {
			e.BlockSize = (packed & 0x3F) << 11
		}
	}

	switch {
	case blockCount == 1 && !e.Encrypted():
		// The single block spans the whole payload; its size is not
		// stored separately.
		start := e.headerSize(a.Version)
		e.Blocks = []Block{{Start: start, End: start + e.CompressedSize}}
	case blockCount > 0:
		alignment := int64(1)
		if e.Encrypted() {
			alignment = aesBlockSize
		}
		offset := e.headerSize(a.Version)
		e.Blocks = make([]Block, blockCount)
		for i := range e.Blocks {
			size, err := r.U32()
			if err != nil {
				return nil, malformed("encoded entry block %d: %v", i, err)
			}
			e.Blocks[i] = Block{Start: offset, End: offset + int64(size)}
			aligned := (int64(size) + alignment - 1) / alignment * alignment
			offset += aligned
		}
	}
	return e, nil
}

// resolve makes block offsets file-absolute. On-disk offsets are
// archive-absolute before version 5 and entry-relative from then on.
func (e *Entry) resolve(version int32) {
	if version < versionRelativeChunkOffsets {
		return
	}
	for i := range e.Blocks {
		e.Blocks[i].Start += e.Offset
		e.Blocks[i].End += e.Offset
	}
}
