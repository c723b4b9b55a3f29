// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package assetcache

import (
	"os"
	"testing"

	"github.com/uassetkit/uassetkit/lib/uasset"
)

func encodedTestAsset(t *testing.T) []byte {
	t.Helper()
	ctx, err := uasset.VersionContextForEngine(uasset.Engine4_27)
	if err != nil {
		t.Fatalf("version context: %v", err)
	}
	a := uasset.NewAsset(ctx)
	pkg := a.AddImport(uasset.Import{
		ClassPackage: a.Names.Intern("/Script/CoreUObject", false),
		ClassName:    a.Names.Intern("Package", false),
		ObjectName:   a.Names.Intern("/Game/Cached", false),
	})
	class := a.FindOrAddImport("/Script/Engine", "Actor", "Actor")
	a.Exports = append(a.Exports, &uasset.Export{
		ClassIndex: class,
		OuterIndex: pkg,
		ObjectName: a.Names.Intern("CachedActor", false),
		Payload: &uasset.NormalExport{
			Properties: []*uasset.Property{
				uasset.NewIntProperty(a.Names.Intern("Health", false), 75),
			},
		},
	})
	a.DependsMap = [][]uasset.PackageIndex{nil}

	data, err := a.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return data
}

func TestHashIsStableAndKeyed(t *testing.T) {
	data := []byte("asset bytes")
	first := HashAsset(data)
	second := HashAsset(data)
	if first != second {
		t.Fatalf("hash is not deterministic")
	}
	if first == (Hash{}) {
		t.Fatalf("hash of non-empty data is zero")
	}

	parsed, err := ParseHash(first.String())
	if err != nil || parsed != first {
		t.Fatalf("ParseHash(%q) = %v, %v", first.String(), parsed, err)
	}
}

func TestSnapshotMissDecodesAndStores(t *testing.T) {
	data := encodedTestAsset(t)
	cache, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	snapshot, err := cache.Snapshot(data, nil)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.Engine != "4.27" {
		t.Fatalf("engine = %q, want 4.27", snapshot.Engine)
	}
	if len(snapshot.Exports) != 1 {
		t.Fatalf("snapshot has %d exports, want 1", len(snapshot.Exports))
	}
	e := snapshot.Exports[0]
	if e.Name != "CachedActor" || e.Class != "Actor" || e.Failed {
		t.Fatalf("export summary = %+v", e)
	}

	// The record is now on disk and readable directly.
	stored, ok := cache.Get(HashAsset(data))
	if !ok {
		t.Fatalf("record missing after Snapshot")
	}
	if stored.Exports[0].Name != "CachedActor" {
		t.Fatalf("stored record differs: %+v", stored.Exports[0])
	}
}

func TestGetMissesOnCorruptRecord(t *testing.T) {
	cache, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := HashAsset([]byte("x"))
	snapshot := &Snapshot{Version: snapshotVersion, Engine: "4.27"}
	if err := cache.Put(key, snapshot); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, ok := cache.Get(key); !ok {
		t.Fatalf("fresh record did not read back")
	}

	if err := os.WriteFile(cache.path(key), []byte{0xFF, 0xFF}, 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	if _, ok := cache.Get(key); ok {
		t.Fatalf("corrupt record read as a hit")
	}
}

func TestGetMissesOnVersionBump(t *testing.T) {
	cache, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := HashAsset([]byte("y"))
	if err := cache.Put(key, &Snapshot{Version: snapshotVersion + 1}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, ok := cache.Get(key); ok {
		t.Fatalf("record from a future layout read as a hit")
	}
}
