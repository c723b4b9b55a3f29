// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package iostore

import (
	"crypto/aes"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"github.com/uassetkit/uassetkit/lib/pak"
	"github.com/uassetkit/uassetkit/lib/uasset"
)

var (
	// ErrMalformedContainer marks a table of contents that fails a
	// structural check.
	ErrMalformedContainer = errors.New("iostore: malformed container")

	// ErrChunkNotFound is returned by Get for chunk ids the table of
	// contents does not hold.
	ErrChunkNotFound = errors.New("iostore: chunk not found")

	// ErrKeyRequired marks an encrypted container opened without an
	// AES key.
	ErrKeyRequired = errors.New("iostore: container is encrypted and no key was given")
)

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedContainer, fmt.Sprintf(format, args...))
}

// tocMagic opens every table of contents.
var tocMagic = [16]byte{
	'-', '=', '=', '-', '-', '=', '=', '-',
	'-', '=', '=', '-', '-', '=', '=', '-',
}

// Table-of-contents versions.
const (
	versionInitial                 uint8 = 1
	versionDirectoryIndex          uint8 = 2
	versionPartitionSize           uint8 = 3
	versionPerfectHash             uint8 = 4
	versionPerfectHashWithOverflow uint8 = 5
)

// Container flag bits.
const (
	flagCompressed uint8 = 1 << 0
	flagEncrypted  uint8 = 1 << 1
	flagSigned     uint8 = 1 << 2
	flagIndexed    uint8 = 1 << 3
)

// ChunkID is the 12-byte chunk identifier: a 64-bit id, a 16-bit
// index, padding, and a type byte. The lookup treats it as opaque.
type ChunkID [12]byte

// String returns the id as 24 hex digits.
func (id ChunkID) String() string {
	return hex.EncodeToString(id[:])
}

// offsetLength is a chunk's span in the container-wide uncompressed
// stream, stored as two big-endian 5-byte fields.
type offsetLength struct {
	Offset uint64
	Length uint64
}

// compressedBlock is one fixed-size block of the uncompressed stream
// as stored in the data file.
type compressedBlock struct {
	Offset           uint64
	CompressedSize   uint32
	UncompressedSize uint32
	MethodIndex      uint8
}

// Options configures Open.
type Options struct {
	// AESKey decrypts the directory index and encrypted blocks.
	AESKey []byte
}

// Container is an opened IoStore container: a parsed table of
// contents over a borrowed data-file byte slice.
type Container struct {
	Version     uint8
	ContainerID uint64
	Flags       uint8
	BlockSize   uint32
	MountPoint  string
	Methods     []pak.Method

	chunkIDs  []ChunkID
	offsets   []offsetLength
	blocks    []compressedBlock
	seeds     []int32
	overflow  []uint32
	directory map[string]int
	byID      map[ChunkID]int

	data []byte
	key  []byte
}

// Open parses a table of contents over its data file. opts may be
// nil.
func Open(toc, data []byte, opts *Options) (*Container, error) {
	c := &Container{data: data, directory: make(map[string]int)}
	if opts != nil {
		c.key = opts.AESKey
	}
	r := uasset.NewReader(toc)

	magic, err := r.Bytes(16)
	if err != nil {
		return nil, malformed("reading magic: %v", err)
	}
	if [16]byte(magic) != tocMagic {
		return nil, malformed("bad magic %x", magic)
	}
	c.Version, _ = r.U8()
	if c.Version < versionInitial || c.Version > versionPerfectHashWithOverflow {
		return nil, fmt.Errorf("%w: table of contents version %d", uasset.ErrUnimplementedVariant, c.Version)
	}
	r.Skip(3) // reserved
	headerSize, _ := r.U32()
	entryCount, _ := r.U32()
	blockCount, _ := r.U32()
	blockEntrySize, _ := r.U32()
	methodCount, _ := r.U32()
	methodLength, _ := r.U32()
	c.BlockSize, _ = r.U32()
	directorySize, _ := r.U32()
	partitionCount, _ := r.U32()
	c.ContainerID, _ = r.U64()
	r.Skip(16) // encryption key guid
	c.Flags, _ = r.U8()
	r.Skip(3) // reserved
	seedCount, _ := r.U32()
	r.Skip(8) // partition size
	overflowCount, _ := r.U32()
	if err := r.Skip(4 + 40); err != nil { // reserved tail
		return nil, malformed("truncated header")
	}
	if blockEntrySize != 12 {
		return nil, malformed("compressed block entry size %d, want 12", blockEntrySize)
	}
	if partitionCount > 1 {
		return nil, fmt.Errorf("%w: multi-partition container", uasset.ErrUnimplementedVariant)
	}
	if err := r.Seek(int(headerSize)); err != nil {
		return nil, malformed("header size %d: %v", headerSize, err)
	}

	if err := c.parseChunkTables(r, int(entryCount)); err != nil {
		return nil, err
	}
	if c.Version >= versionPerfectHash {
		c.seeds = make([]int32, seedCount)
		for i := range c.seeds {
			if c.seeds[i], err = r.I32(); err != nil {
				return nil, malformed("hash seed %d: %v", i, err)
			}
		}
	}
	if c.Version >= versionPerfectHashWithOverflow {
		c.overflow = make([]uint32, overflowCount)
		for i := range c.overflow {
			if c.overflow[i], err = r.U32(); err != nil {
				return nil, malformed("overflow entry %d: %v", i, err)
			}
		}
	}
	if err := c.parseBlocks(r, int(blockCount)); err != nil {
		return nil, err
	}
	if err := c.parseMethods(r, int(methodCount), int(methodLength)); err != nil {
		return nil, err
	}
	if c.Flags&flagSigned != 0 {
		if err := skipSignatures(r, int(blockCount)); err != nil {
			return nil, err
		}
	}
	if directorySize > 0 && c.Flags&flagIndexed != 0 {
		index, err := r.Bytes(int(directorySize))
		if err != nil {
			return nil, malformed("directory index: %v", err)
		}
		if err := c.parseDirectoryIndex(index); err != nil {
			return nil, err
		}
	}

	// Fall back to a plain map when no perfect hash table shipped.
	if len(c.seeds) == 0 {
		c.byID = make(map[ChunkID]int, len(c.chunkIDs))
		for i, id := range c.chunkIDs {
			c.byID[id] = i
		}
	}
	return c, nil
}

func (c *Container) parseChunkTables(r *uasset.Reader, entryCount int) error {
	c.chunkIDs = make([]ChunkID, entryCount)
	for i := range c.chunkIDs {
		raw, err := r.Bytes(12)
		if err != nil {
			return malformed("chunk id %d: %v", i, err)
		}
		c.chunkIDs[i] = ChunkID(raw)
	}
	c.offsets = make([]offsetLength, entryCount)
	for i := range c.offsets {
		raw, err := r.Bytes(10)
		if err != nil {
			return malformed("chunk span %d: %v", i, err)
		}
		c.offsets[i] = offsetLength{
			Offset: unpackBE5(raw[0:5]),
			Length: unpackBE5(raw[5:10]),
		}
	}
	return nil
}

func (c *Container) parseBlocks(r *uasset.Reader, blockCount int) error {
	c.blocks = make([]compressedBlock, blockCount)
	for i := range c.blocks {
		raw, err := r.Bytes(12)
		if err != nil {
			return malformed("compression block %d: %v", i, err)
		}
		// Little-endian bit packing: 5-byte offset, 3-byte sizes, a
		// method byte.
		c.blocks[i] = compressedBlock{
			Offset:           unpackLE(raw[0:5]),
			CompressedSize:   uint32(unpackLE(raw[5:8])),
			UncompressedSize: uint32(unpackLE(raw[8:11])),
			MethodIndex:      raw[11],
		}
	}
	return nil
}

func (c *Container) parseMethods(r *uasset.Reader, count, length int) error {
	c.Methods = []pak.Method{pak.MethodNone}
	for i := 0; i < count; i++ {
		raw, err := r.Bytes(length)
		if err != nil {
			return malformed("method name %d: %v", i, err)
		}
		name := raw
		for len(name) > 0 && name[len(name)-1] == 0 {
			name = name[:len(name)-1]
		}
		c.Methods = append(c.Methods, pak.Method(name))
	}
	return nil
}

func skipSignatures(r *uasset.Reader, blockCount int) error {
	hashSize, err := r.I32()
	if err != nil || hashSize < 0 {
		return malformed("signature hash size: %v", err)
	}
	// Table signature, block signature, then one SHA1 per block.
	if err := r.Skip(int(hashSize)*2 + blockCount*20); err != nil {
		return malformed("signature section: %v", err)
	}
	return nil
}

// unpackBE5 reads a big-endian 5-byte integer.
func unpackBE5(b []byte) uint64 {
	return uint64(b[0])<<32 | uint64(b[1])<<24 | uint64(b[2])<<16 | uint64(b[3])<<8 | uint64(b[4])
}

// unpackLE reads a little-endian integer of up to 8 bytes.
func unpackLE(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// hashWithSeed is the FNV-1a variant the perfect-hash table is built
// with. A zero seed selects the standard offset basis.
func hashWithSeed(seed int32, id ChunkID) uint64 {
	hash := uint64(0xcbf29ce484222325)
	if seed != 0 {
		hash = uint64(seed)
	}
	for _, b := range id {
		hash = (hash * 0x00000100000001B3) ^ uint64(b)
	}
	return hash
}

// tocIndex resolves a chunk id to its table slot.
func (c *Container) tocIndex(id ChunkID) (int, bool) {
	if c.byID != nil {
		index, ok := c.byID[id]
		return index, ok
	}
	if len(c.seeds) == 0 {
		return 0, false
	}
	bucket := int(hashWithSeed(0, id) % uint64(len(c.seeds)))
	seed := c.seeds[bucket]
	var slot int
	switch {
	case seed < 0:
		// A negative seed addresses the slot directly.
		slot = int(-seed) - 1
	case seed > 0:
		slot = int(hashWithSeed(seed, id) % uint64(len(c.chunkIDs)))
	default:
		slot = -1
	}
	if slot >= 0 && slot < len(c.chunkIDs) && c.chunkIDs[slot] == id {
		return slot, true
	}
	// Chunks that defeated the perfect hash sit on the overflow list.
	for _, index := range c.overflow {
		if int(index) < len(c.chunkIDs) && c.chunkIDs[index] == id {
			return int(index), true
		}
	}
	return 0, false
}

// Chunks returns all chunk ids in table order.
func (c *Container) Chunks() []ChunkID {
	ids := make([]ChunkID, len(c.chunkIDs))
	copy(ids, c.chunkIDs)
	return ids
}

// Size returns the uncompressed byte count of one chunk, or false
// when the id is not in the container.
func (c *Container) Size(id ChunkID) (uint64, bool) {
	index, ok := c.tocIndex(id)
	if !ok {
		return 0, false
	}
	return c.offsets[index].Length, true
}

// Paths returns every directory-index path in sorted order. Empty
// when the container carries no index.
func (c *Container) Paths() []string {
	paths := make([]string, 0, len(c.directory))
	for path := range c.directory {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Get returns the bytes of one chunk, assembled from its compression
// blocks.
func (c *Container) Get(id ChunkID) ([]byte, error) {
	index, ok := c.tocIndex(id)
	if !ok {
		return nil, fmt.Errorf("%w: %x", ErrChunkNotFound, id[:])
	}
	span := c.offsets[index]
	if span.Length == 0 {
		return nil, nil
	}
	if c.BlockSize == 0 {
		return nil, malformed("zero block size")
	}

	firstBlock := span.Offset / uint64(c.BlockSize)
	lastBlock := (span.Offset + span.Length - 1) / uint64(c.BlockSize)
	if lastBlock >= uint64(len(c.blocks)) {
		return nil, malformed("chunk %x spans block %d of %d", id[:], lastBlock, len(c.blocks))
	}

	assembled := make([]byte, 0, span.Length+uint64(c.BlockSize))
	for b := firstBlock; b <= lastBlock; b++ {
		plain, err := c.readBlock(int(b))
		if err != nil {
			return nil, err
		}
		assembled = append(assembled, plain...)
	}
	start := span.Offset % uint64(c.BlockSize)
	if start+span.Length > uint64(len(assembled)) {
		return nil, malformed("chunk %x needs %d bytes, blocks yielded %d",
			id[:], start+span.Length, len(assembled))
	}
	return assembled[start : start+span.Length], nil
}

// readBlock materializes one compression block from the data file.
func (c *Container) readBlock(index int) ([]byte, error) {
	block := c.blocks[index]
	size := int(block.CompressedSize)
	readSize := size
	if c.Flags&flagEncrypted != 0 {
		readSize = (size + aes.BlockSize - 1) &^ (aes.BlockSize - 1)
	}
	if block.Offset+uint64(readSize) > uint64(len(c.data)) {
		return nil, malformed("block %d spans [%d, %d) in a %d byte data file",
			index, block.Offset, block.Offset+uint64(readSize), len(c.data))
	}
	raw := c.data[block.Offset : block.Offset+uint64(readSize)]

	if c.Flags&flagEncrypted != 0 {
		if c.key == nil {
			return nil, ErrKeyRequired
		}
		cipher, err := aes.NewCipher(c.key)
		if err != nil {
			return nil, malformed("aes key: %v", err)
		}
		decrypted := make([]byte, readSize)
		copy(decrypted, raw)
		for offset := 0; offset < readSize; offset += aes.BlockSize {
			cipher.Decrypt(decrypted[offset:offset+aes.BlockSize], decrypted[offset:offset+aes.BlockSize])
		}
		raw = decrypted[:size]
	}

	if int(block.MethodIndex) >= len(c.Methods) {
		return nil, malformed("block %d method index %d not in table", index, block.MethodIndex)
	}
	method := c.Methods[block.MethodIndex]
	if method == pak.MethodNone {
		if len(raw) != int(block.UncompressedSize) {
			return nil, malformed("stored block %d is %d bytes, want %d",
				index, len(raw), block.UncompressedSize)
		}
		return raw, nil
	}
	plain, err := pak.Decompress(raw, method, int(block.UncompressedSize))
	if err != nil {
		return nil, fmt.Errorf("iostore: block %d: %w", index, err)
	}
	return plain, nil
}

// Lookup resolves a directory-index path to its chunk id.
func (c *Container) Lookup(path string) (ChunkID, bool) {
	index, ok := c.directory[path]
	if !ok {
		return ChunkID{}, false
	}
	return c.chunkIDs[index], true
}

// Read resolves a path through the directory index and returns the
// chunk bytes.
func (c *Container) Read(path string) ([]byte, error) {
	id, ok := c.Lookup(path)
	if !ok {
		return nil, fmt.Errorf("%w: path %q", ErrChunkNotFound, path)
	}
	return c.Get(id)
}
