// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package assetcache

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/uassetkit/uassetkit/lib/codec"
	"github.com/uassetkit/uassetkit/lib/uasset"
)

// snapshotVersion is bumped whenever the Snapshot layout changes in a
// way old records cannot satisfy; mismatched records read as misses.
const snapshotVersion = 1

// ExportSummary is the cached view of one export.
type ExportSummary struct {
	Name    string `cbor:"name"`
	Class   string `cbor:"class"`
	Kind    string `cbor:"kind"`
	Size    int64  `cbor:"size"`
	Failed  bool   `cbor:"failed,omitempty"`
	Failure string `cbor:"failure,omitempty"`
}

// Snapshot is the cached result of decoding one asset.
type Snapshot struct {
	Version       int             `cbor:"version"`
	Engine        string          `cbor:"engine"`
	ObjectVersion int32           `cbor:"object_version"`
	UE5Version    int32           `cbor:"ue5_version"`
	PackageFlags  uint32          `cbor:"package_flags"`
	Unversioned   bool            `cbor:"unversioned,omitempty"`
	NameCount     int             `cbor:"name_count"`
	ImportCount   int             `cbor:"import_count"`
	Exports       []ExportSummary `cbor:"exports"`
}

// Summarize builds the snapshot record for a decoded asset.
func Summarize(a *uasset.Asset) *Snapshot {
	s := &Snapshot{
		Version:       snapshotVersion,
		Engine:        uasset.InferEngineVersion(a.Versions).String(),
		ObjectVersion: int32(a.Versions.ObjectVersion()),
		UE5Version:    int32(a.Versions.UE5()),
		PackageFlags:  a.Summary.PackageFlags,
		Unversioned:   a.UsesUnversionedProperties(),
		NameCount:     a.Names.Len(),
		ImportCount:   len(a.Imports),
	}
	for pos, e := range a.Exports {
		name, _ := a.Names.Resolve(e.ObjectName)
		summary := ExportSummary{
			Name:  name,
			Class: a.ClassNameOf(e),
			Size:  e.SerialSize,
		}
		if e.Payload != nil {
			summary.Kind = e.Payload.Kind()
		}
		if err, ok := a.PayloadErrors[pos]; ok {
			summary.Failed = true
			summary.Failure = err.Error()
		}
		s.Exports = append(s.Exports, summary)
	}
	return s
}

// Cache is a directory of CBOR snapshot records keyed by asset hash.
// Entries are sharded by the first key byte, the usual layout for
// content stores that may hold many thousands of records.
type Cache struct {
	dir string
	log *slog.Logger
}

// Open prepares a cache rooted at dir, creating it if needed. A nil
// logger disables logging.
func Open(dir string, log *slog.Logger) (*Cache, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("assetcache: creating %s: %w", dir, err)
	}
	return &Cache{dir: dir, log: log}, nil
}

func (c *Cache) path(key Hash) string {
	hex := key.String()
	return filepath.Join(c.dir, hex[:2], hex+".cbor")
}

// Get loads the snapshot for a key. A missing or unreadable record is
// a miss, never an error: the caller decodes and re-puts.
func (c *Cache) Get(key Hash) (*Snapshot, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.log.Warn("cache read failed", "key", key.String(), "error", err)
		}
		return nil, false
	}
	var snapshot Snapshot
	if err := codec.Unmarshal(data, &snapshot); err != nil {
		c.log.Warn("cache record corrupt", "key", key.String(), "error", err)
		return nil, false
	}
	if snapshot.Version != snapshotVersion {
		return nil, false
	}
	return &snapshot, true
}

// Put stores a snapshot under its key.
func (c *Cache) Put(key Hash, snapshot *Snapshot) error {
	data, err := codec.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("assetcache: encoding record: %w", err)
	}
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("assetcache: creating shard: %w", err)
	}
	// Write-then-rename so readers never see a partial record.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("assetcache: writing record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("assetcache: committing record: %w", err)
	}
	c.log.Debug("cache record stored", "key", key.String(), "bytes", len(data))
	return nil
}

// Snapshot returns the cached summary for raw asset bytes, decoding
// and filling the cache on a miss.
func (c *Cache) Snapshot(data []byte, opts *uasset.DecodeOptions) (*Snapshot, error) {
	key := HashAsset(data)
	if snapshot, ok := c.Get(key); ok {
		c.log.Debug("cache hit", "key", key.String())
		return snapshot, nil
	}
	asset, err := uasset.DecodeAsset(data, opts)
	if err != nil {
		return nil, err
	}
	snapshot := Summarize(asset)
	if err := c.Put(key, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}
