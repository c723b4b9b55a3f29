// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package pak

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/uassetkit/uassetkit/lib/uasset"
)

var (
	// ErrMalformedArchive marks a structurally impossible archive:
	// no recognizable footer, truncated index, out-of-range offsets.
	ErrMalformedArchive = errors.New("pak: malformed archive")

	// ErrHashMismatch marks stored data whose SHA1 does not match the
	// recorded hash.
	ErrHashMismatch = errors.New("pak: hash mismatch")

	// ErrEntryNotFound is returned by Read for paths the index does
	// not contain.
	ErrEntryNotFound = errors.New("pak: entry not found")

	// ErrKeyRequired marks an encrypted archive opened without an AES
	// key.
	ErrKeyRequired = errors.New("pak: archive is encrypted and no key was given")
)

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedArchive, fmt.Sprintf(format, args...))
}

const archiveMagic uint32 = 0x5A6F12E1

// Archive format versions. Each value names the feature that
// revision added.
const (
	versionInitial               int32 = 1
	versionNoTimestamps          int32 = 2
	versionCompressionEncryption int32 = 3
	versionIndexEncryption       int32 = 4
	versionRelativeChunkOffsets  int32 = 5
	versionDeleteRecords         int32 = 6
	versionEncryptionKeyGuid     int32 = 7
	versionNamedCompression      int32 = 8
	versionFrozenIndex           int32 = 9
	versionPathHashIndex         int32 = 10
	versionFnv64BugFix           int32 = 11
)

// Options configures Open.
type Options struct {
	// AESKey decrypts encrypted indexes and entries. 32 bytes.
	AESKey []byte
}

// Archive is an opened PAK container. It borrows the byte slice given
// to Open; entry payloads are materialized on Read.
type Archive struct {
	Version        int32
	MountPoint     string
	Methods        []Method
	Entries        []*Entry
	EncryptedIndex bool
	KeyGuid        [16]byte

	byPath map[string]*Entry
	data   []byte
	key    []byte
}

// The footer is recognized by trying each historical layout from the
// end of the file. Sizes never collide except version 8's five-name
// form against versions 10/11, which the version field resolves.
type footerLayout struct {
	size        int
	hasGuid     bool
	hasEncByte  bool
	hasFrozen   bool
	methodCount int
	minVersion  int32
	maxVersion  int32
}

var footerLayouts = []footerLayout{
	{size: 222, hasGuid: true, hasEncByte: true, hasFrozen: true, methodCount: 5,
		minVersion: versionFrozenIndex, maxVersion: versionFrozenIndex},
	{size: 221, hasGuid: true, hasEncByte: true, methodCount: 5,
		minVersion: versionNamedCompression, maxVersion: versionFnv64BugFix},
	{size: 189, hasGuid: true, hasEncByte: true, methodCount: 4,
		minVersion: versionNamedCompression, maxVersion: versionNamedCompression},
	{size: 61, hasGuid: true, hasEncByte: true,
		minVersion: versionEncryptionKeyGuid, maxVersion: versionEncryptionKeyGuid},
	{size: 45, hasEncByte: true,
		minVersion: versionIndexEncryption, maxVersion: versionDeleteRecords},
	{size: 44,
		minVersion: versionInitial, maxVersion: versionCompressionEncryption},
}

// Open parses the archive footer and index. opts may be nil.
func Open(data []byte, opts *Options) (*Archive, error) {
	a := &Archive{data: data, byPath: make(map[string]*Entry)}
	if opts != nil {
		a.key = opts.AESKey
	}

	indexOffset, indexSize, indexHash, err := a.parseFooter()
	if err != nil {
		return nil, err
	}
	if indexOffset < 0 || indexSize < 0 || indexOffset+indexSize > int64(len(data)) {
		return nil, malformed("index spans [%d, %d) in a %d byte file",
			indexOffset, indexOffset+indexSize, len(data))
	}

	// The recorded hash covers the index plaintext, so decryption
	// comes first.
	indexData := data[indexOffset : indexOffset+indexSize]
	if a.EncryptedIndex {
		if a.key == nil {
			return nil, ErrKeyRequired
		}
		decrypted := make([]byte, len(indexData))
		copy(decrypted, indexData)
		if err := decryptECB(a.key, decrypted); err != nil {
			return nil, malformed("index decrypt: %v", err)
		}
		indexData = decrypted
	}
	if got := sha1.Sum(indexData); !bytes.Equal(got[:], indexHash) {
		return nil, fmt.Errorf("%w: index", ErrHashMismatch)
	}

	if a.Version >= versionPathHashIndex {
		err = a.parseSplitIndex(indexData)
	} else {
		err = a.parseClassicIndex(indexData)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Archive) parseFooter() (indexOffset, indexSize int64, indexHash []byte, err error) {
	for _, layout := range footerLayouts {
		if len(a.data) < layout.size {
			continue
		}
		r := uasset.NewReader(a.data[len(a.data)-layout.size:])
		if layout.hasGuid {
			guid, _ := r.Bytes(16)
			copy(a.KeyGuid[:], guid)
		}
		encrypted := uint8(0)
		if layout.hasEncByte {
			encrypted, _ = r.U8()
		}
		magic, _ := r.U32()
		version, _ := r.I32()
		if magic != archiveMagic || version < layout.minVersion || version > layout.maxVersion {
			a.KeyGuid = [16]byte{}
			continue
		}

		a.Version = version
		a.EncryptedIndex = encrypted != 0
		indexOffset, _ = r.I64()
		indexSize, _ = r.I64()
		indexHash, _ = r.Bytes(20)
		if layout.hasFrozen {
			frozen, _ := r.U8()
			if frozen != 0 {
				return 0, 0, nil, fmt.Errorf("%w: frozen index", uasset.ErrUnimplementedVariant)
			}
		}

		a.Methods = []Method{MethodNone}
		for i := 0; i < layout.methodCount; i++ {
			raw, ferr := r.Bytes(32)
			if ferr != nil {
				return 0, 0, nil, malformed("footer method name %d: %v", i, ferr)
			}
			name := strings.TrimRight(string(raw), "\x00")
			a.Methods = append(a.Methods, Method(name))
		}
		if layout.methodCount == 0 {
			// Versions before the name table compress with the legacy
			// flag set.
			a.Methods = []Method{MethodNone, MethodZlib, MethodGzip}
		}
		return indexOffset, indexSize, indexHash, nil
	}
	return 0, 0, nil, malformed("no recognizable footer in %d bytes", len(a.data))
}

func (a *Archive) methodAt(index uint32) (Method, error) {
	if int(index) >= len(a.Methods) || a.Methods[index] == "" {
		return "", malformed("compression method index %d not in footer table", index)
	}
	return a.Methods[index], nil
}

func (a *Archive) methodIndex(m Method) (uint32, error) {
	for i, known := range a.Methods {
		if known == m {
			return uint32(i), nil
		}
	}
	return 0, malformed("compression method %q not in footer table", m)
}

// parseClassicIndex reads the pre-version-10 index: the mount point
// followed by path-keyed full entry records.
func (a *Archive) parseClassicIndex(indexData []byte) error {
	r := uasset.NewReader(indexData)
	mount, err := r.FString()
	if err != nil {
		return malformed("index mount point: %v", err)
	}
	a.MountPoint = mount
	count, err := r.I32()
	if err != nil {
		return malformed("index entry count: %v", err)
	}
	if count < 0 {
		return malformed("negative entry count %d", count)
	}
	for i := int32(0); i < count; i++ {
		path, err := r.FString()
		if err != nil {
			return malformed("index entry %d path: %v", i, err)
		}
		e, err := a.readEntryRecord(r)
		if err != nil {
			return fmt.Errorf("index entry %q: %w", path, err)
		}
		e.Path = path
		e.resolve(a.Version)
		a.addEntry(e)
	}
	return nil
}

// parseSplitIndex reads the version 10+ primary index and the full
// directory index it points at. Archives shipped with the directory
// index pruned carry only path hashes, which cannot be mapped back to
// path strings.
func (a *Archive) parseSplitIndex(indexData []byte) error {
	r := uasset.NewReader(indexData)
	mount, err := r.FString()
	if err != nil {
		return malformed("index mount point: %v", err)
	}
	a.MountPoint = mount
	if _, err := r.I32(); err != nil { // entry count
		return malformed("index entry count: %v", err)
	}
	if _, err := r.U64(); err != nil { // path hash seed
		return malformed("index hash seed: %v", err)
	}

	readSection := func(label string) ([]byte, bool, error) {
		present, err := r.I32()
		if err != nil {
			return nil, false, malformed("index %s flag: %v", label, err)
		}
		if present == 0 {
			return nil, false, nil
		}
		offset, err := r.I64()
		if err != nil {
			return nil, false, malformed("index %s offset: %v", label, err)
		}
		size, err := r.I64()
		if err != nil {
			return nil, false, malformed("index %s size: %v", label, err)
		}
		hash, err := r.Bytes(20)
		if err != nil {
			return nil, false, malformed("index %s hash: %v", label, err)
		}
		if offset < 0 || size < 0 || offset+size > int64(len(a.data)) {
			return nil, false, malformed("index %s spans [%d, %d)", label, offset, offset+size)
		}
		section := a.data[offset : offset+size]
		if a.EncryptedIndex {
			decrypted := make([]byte, len(section))
			copy(decrypted, section)
			if err := decryptECB(a.key, decrypted); err != nil {
				return nil, false, malformed("%s index decrypt: %v", label, err)
			}
			section = decrypted
		}
		if got := sha1.Sum(section); !bytes.Equal(got[:], hash) {
			return nil, false, fmt.Errorf("%w: %s index", ErrHashMismatch, label)
		}
		return section, true, nil
	}

	if _, _, err := readSection("path hash"); err != nil {
		return err
	}
	directory, hasDirectory, err := readSection("directory")
	if err != nil {
		return err
	}
	if !hasDirectory {
		return fmt.Errorf("%w: archive with pruned directory index", uasset.ErrUnimplementedVariant)
	}

	encodedSize, err := r.I32()
	if err != nil {
		return malformed("encoded entries size: %v", err)
	}
	encoded, err := r.Bytes(int(encodedSize))
	if err != nil {
		return malformed("encoded entries: %v", err)
	}
	plainCount, err := r.I32()
	if err != nil {
		return malformed("plain entry count: %v", err)
	}
	plain := make([]*Entry, 0, plainCount)
	for i := int32(0); i < plainCount; i++ {
		e, err := a.readEntryRecord(r)
		if err != nil {
			return fmt.Errorf("plain entry %d: %w", i, err)
		}
		plain = append(plain, e)
	}

	return a.parseDirectoryIndex(directory, encoded, plain)
}

// Entry location sentinel: the minimum int32 marks an invalid or
// deleted entry. Other negative values index the plain entry list.
const locationInvalid = int32(-1 << 31)

func (a *Archive) parseDirectoryIndex(directory, encoded []byte, plain []*Entry) error {
	r := uasset.NewReader(directory)
	dirCount, err := r.I32()
	if err != nil {
		return malformed("directory count: %v", err)
	}
	for i := int32(0); i < dirCount; i++ {
		dirName, err := r.FString()
		if err != nil {
			return malformed("directory %d name: %v", i, err)
		}
		fileCount, err := r.I32()
		if err != nil {
			return malformed("directory %q file count: %v", dirName, err)
		}
		for j := int32(0); j < fileCount; j++ {
			fileName, err := r.FString()
			if err != nil {
				return malformed("directory %q file %d: %v", dirName, j, err)
			}
			location, err := r.I32()
			if err != nil {
				return malformed("entry %q%q location: %v", dirName, fileName, err)
			}
			path := joinIndexPath(dirName, fileName)

			var e *Entry
			switch {
			case location == locationInvalid:
				continue
			case location >= 0:
				er := uasset.NewReader(encoded)
				if err := er.Seek(int(location)); err != nil {
					return malformed("entry %q encoded offset %d: %v", path, location, err)
				}
				if e, err = a.decodeEntry(er); err != nil {
					return fmt.Errorf("entry %q: %w", path, err)
				}
			default:
				index := -(location + 1)
				if int(index) >= len(plain) {
					return malformed("entry %q plain index %d of %d", path, index, len(plain))
				}
				e = plain[index]
			}
			e.Path = path
			e.resolve(a.Version)
			a.addEntry(e)
		}
	}
	return nil
}

// joinIndexPath combines a directory-index directory ("/" for the
// mount root) with a file name.
func joinIndexPath(dir, file string) string {
	if dir == "/" {
		return file
	}
	return strings.TrimPrefix(dir, "/") + file
}

func (a *Archive) addEntry(e *Entry) {
	a.Entries = append(a.Entries, e)
	a.byPath[e.Path] = e
}

// Paths returns all entry paths in sorted order.
func (a *Archive) Paths() []string {
	paths := make([]string, 0, len(a.Entries))
	for _, e := range a.Entries {
		paths = append(paths, e.Path)
	}
	sort.Strings(paths)
	return paths
}

// Entry returns the index record for a path.
func (a *Archive) Entry(path string) (*Entry, bool) {
	e, ok := a.byPath[path]
	return e, ok
}

// Read extracts one entry: decrypts, verifies the stored hash, and
// decompresses.
func (a *Archive) Read(path string) ([]byte, error) {
	e, ok := a.byPath[path]
	if !ok || e.Deleted() {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, path)
	}
	if e.Encrypted() && a.key == nil {
		return nil, ErrKeyRequired
	}

	blocks := e.Blocks
	if len(blocks) == 0 {
		start := e.Offset + e.headerSize(a.Version)
		blocks = []Block{{Start: start, End: start + e.CompressedSize}}
	}

	stored := make([][]byte, 0, len(blocks))
	for i, b := range blocks {
		size := int(b.End - b.Start)
		readSize := size
		if e.Encrypted() {
			readSize = alignBlock(size)
		}
		if b.Start < 0 || b.Start+int64(readSize) > int64(len(a.data)) {
			return nil, malformed("entry %q block %d spans [%d, %d)", path, i, b.Start, b.End)
		}
		raw := a.data[b.Start : b.Start+int64(readSize)]
		if e.Encrypted() {
			decrypted := make([]byte, readSize)
			copy(decrypted, raw)
			if err := decryptECB(a.key, decrypted); err != nil {
				return nil, malformed("entry %q decrypt: %v", path, err)
			}
			raw = decrypted[:size]
		}
		stored = append(stored, raw)
	}

	// Encoded (version 10+) entries carry no hash; only verify when
	// one was recorded.
	if e.Hash != ([20]byte{}) {
		hash := sha1.New()
		for _, b := range stored {
			hash.Write(b)
		}
		if !bytes.Equal(hash.Sum(nil), e.Hash[:]) {
			return nil, fmt.Errorf("%w: entry %q", ErrHashMismatch, path)
		}
	}

	if e.Method == MethodNone {
		if len(stored) == 1 {
			return stored[0], nil
		}
		return bytes.Join(stored, nil), nil
	}

	result := make([]byte, 0, e.UncompressedSize)
	remaining := e.UncompressedSize
	for i, b := range stored {
		want := remaining
		if e.BlockSize != 0 && int64(e.BlockSize) < want {
			want = int64(e.BlockSize)
		}
		plain, err := decompressBlock(b, e.Method, int(want))
		if err != nil {
			return nil, fmt.Errorf("entry %q block %d: %w", path, i, err)
		}
		result = append(result, plain...)
		remaining -= int64(len(plain))
	}
	if int64(len(result)) != e.UncompressedSize {
		return nil, malformed("entry %q decompressed to %d bytes, want %d",
			path, len(result), e.UncompressedSize)
	}
	return result, nil
}
