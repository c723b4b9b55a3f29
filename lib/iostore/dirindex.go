// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package iostore

import (
	"crypto/aes"

	"github.com/uassetkit/uassetkit/lib/uasset"
)

// The directory index is a serialized tree: directory entries linked
// by first-child/next-sibling indices, file entries chained per
// directory, and a shared string table for names. Entry index 0 is
// the unnamed root.

const invalidIndex uint32 = 0xFFFFFFFF

type directoryEntry struct {
	Name        uint32
	FirstChild  uint32
	NextSibling uint32
	FirstFile   uint32
}

type fileEntry struct {
	Name     uint32
	NextFile uint32
	UserData uint32 // table-of-contents entry index
}

func (c *Container) parseDirectoryIndex(index []byte) error {
	if c.Flags&flagEncrypted != 0 {
		if c.key == nil {
			return ErrKeyRequired
		}
		cipher, err := aes.NewCipher(c.key)
		if err != nil {
			return malformed("aes key: %v", err)
		}
		if len(index)%aes.BlockSize != 0 {
			return malformed("encrypted directory index of %d bytes is not block aligned", len(index))
		}
		decrypted := make([]byte, len(index))
		copy(decrypted, index)
		for offset := 0; offset < len(decrypted); offset += aes.BlockSize {
			cipher.Decrypt(decrypted[offset:offset+aes.BlockSize], decrypted[offset:offset+aes.BlockSize])
		}
		index = decrypted
	}

	r := uasset.NewReader(index)
	mount, err := r.FString()
	if err != nil {
		return malformed("directory index mount point: %v", err)
	}
	c.MountPoint = mount

	dirCount, err := r.I32()
	if err != nil || dirCount < 0 {
		return malformed("directory entry count: %v", err)
	}
	directories := make([]directoryEntry, dirCount)
	for i := range directories {
		if directories[i].Name, err = r.U32(); err != nil {
			return malformed("directory entry %d: %v", i, err)
		}
		directories[i].FirstChild, _ = r.U32()
		directories[i].NextSibling, _ = r.U32()
		if directories[i].FirstFile, err = r.U32(); err != nil {
			return malformed("directory entry %d: %v", i, err)
		}
	}

	fileCount, err := r.I32()
	if err != nil || fileCount < 0 {
		return malformed("file entry count: %v", err)
	}
	files := make([]fileEntry, fileCount)
	for i := range files {
		if files[i].Name, err = r.U32(); err != nil {
			return malformed("file entry %d: %v", i, err)
		}
		files[i].NextFile, _ = r.U32()
		if files[i].UserData, err = r.U32(); err != nil {
			return malformed("file entry %d: %v", i, err)
		}
	}

	stringCount, err := r.I32()
	if err != nil || stringCount < 0 {
		return malformed("string table count: %v", err)
	}
	strings := make([]string, stringCount)
	for i := range strings {
		if strings[i], err = r.FString(); err != nil {
			return malformed("string table entry %d: %v", i, err)
		}
	}

	if len(directories) == 0 {
		return nil
	}
	walker := &indexWalker{c: c, directories: directories, files: files, strings: strings}
	return walker.walk(0, "", 0)
}

type indexWalker struct {
	c           *Container
	directories []directoryEntry
	files       []fileEntry
	strings     []string
}

func (w *indexWalker) name(index uint32) (string, error) {
	if index == invalidIndex {
		return "", nil
	}
	if int(index) >= len(w.strings) {
		return "", malformed("name index %d past string table of %d", index, len(w.strings))
	}
	return w.strings[index], nil
}

// walk registers every file under the directory at dir, guarding
// against cyclic sibling or child links.
func (w *indexWalker) walk(dir uint32, prefix string, depth int) error {
	if depth > len(w.directories) {
		return malformed("directory tree deeper than its %d entries", len(w.directories))
	}
	for steps := 0; dir != invalidIndex; steps++ {
		if int(dir) >= len(w.directories) || steps > len(w.directories) {
			return malformed("directory link %d out of range", dir)
		}
		entry := w.directories[dir]
		name, err := w.name(entry.Name)
		if err != nil {
			return err
		}
		path := prefix
		if name != "" {
			path = prefix + name + "/"
		}

		for file, fileSteps := entry.FirstFile, 0; file != invalidIndex; fileSteps++ {
			if int(file) >= len(w.files) || fileSteps > len(w.files) {
				return malformed("file link %d out of range", file)
			}
			fileName, err := w.name(w.files[file].Name)
			if err != nil {
				return err
			}
			userData := w.files[file].UserData
			if int(userData) >= len(w.c.chunkIDs) {
				return malformed("file %q entry index %d of %d", path+fileName, userData, len(w.c.chunkIDs))
			}
			w.c.directory[path+fileName] = int(userData)
			file = w.files[file].NextFile
		}

		if entry.FirstChild != invalidIndex {
			if err := w.walk(entry.FirstChild, path, depth+1); err != nil {
				return err
			}
		}
		dir = entry.NextSibling
	}
	return nil
}
