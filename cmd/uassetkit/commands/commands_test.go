// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/uassetkit/uassetkit/lib/pak"
	"github.com/uassetkit/uassetkit/lib/uasset"
)

func TestParseMethod(t *testing.T) {
	cases := []struct {
		name string
		want pak.Method
	}{
		{"none", pak.MethodNone},
		{"Zlib", pak.MethodZlib},
		{"ZSTD", pak.MethodZstd},
		{"lz4", pak.MethodLZ4},
	}
	for _, tc := range cases {
		got, err := parseMethod(tc.name)
		if err != nil || got != tc.want {
			t.Errorf("parseMethod(%q) = %v, %v, want %v", tc.name, got, err, tc.want)
		}
	}
	if _, err := parseMethod("oodle"); err == nil {
		t.Fatalf("oodle accepted; only decode support exists")
	}
}

func TestDumpAsset(t *testing.T) {
	ctx, err := uasset.VersionContextForEngine(uasset.Engine4_27)
	if err != nil {
		t.Fatalf("version context: %v", err)
	}
	a := uasset.NewAsset(ctx)
	pkg := a.AddImport(uasset.Import{
		ClassPackage: a.Names.Intern("/Script/CoreUObject", false),
		ClassName:    a.Names.Intern("Package", false),
		ObjectName:   a.Names.Intern("/Game/Dumped", false),
	})
	class := a.FindOrAddImport("/Script/Engine", "Actor", "Actor")
	label := &uasset.StrValue{Val: "hello"}
	a.Exports = append(a.Exports, &uasset.Export{
		ClassIndex: class,
		OuterIndex: pkg,
		ObjectName: a.Names.Intern("Dumped", false),
		Payload: &uasset.NormalExport{
			Properties: []*uasset.Property{
				uasset.NewIntProperty(a.Names.Intern("Count", false), 3),
				{Name: a.Names.Intern("Label", false), Value: label},
			},
		},
	})
	a.DependsMap = [][]uasset.PackageIndex{nil}

	doc := dumpAsset(a)
	exports, ok := doc["exports"].([]map[string]any)
	if !ok || len(exports) != 1 {
		t.Fatalf("exports = %v", doc["exports"])
	}
	if exports[0]["name"] != "Dumped" || exports[0]["class"] != "Actor" {
		t.Fatalf("export = %v", exports[0])
	}
	properties, ok := exports[0]["properties"].([]map[string]any)
	if !ok || len(properties) != 2 {
		t.Fatalf("properties = %v", exports[0]["properties"])
	}
	if properties[0]["name"] != "Count" || properties[0]["value"] != int32(3) {
		t.Fatalf("Count = %v", properties[0])
	}
	if properties[1]["type"] != "StrProperty" || properties[1]["value"] != "hello" {
		t.Fatalf("Label = %v", properties[1])
	}
}

func TestPakCreateListExtract(t *testing.T) {
	source := t.TempDir()
	if err := os.MkdirAll(filepath.Join(source, "Game/Content"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	payload := bytes.Repeat([]byte("cooked content "), 512)
	if err := os.WriteFile(filepath.Join(source, "Game/Content/thing.uasset"), payload, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	archivePath := filepath.Join(t.TempDir(), "mod.pak")
	err := Root().Execute([]string{
		"pak", "create", "--output", archivePath, "--method", "zstd", source,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	outDir := t.TempDir()
	err = Root().Execute([]string{
		"pak", "extract", "--output", outDir, archivePath,
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	extracted, err := os.ReadFile(filepath.Join(outDir, "Game/Content/thing.uasset"))
	if err != nil {
		t.Fatalf("read extracted: %v", err)
	}
	if !bytes.Equal(extracted, payload) {
		t.Fatalf("extracted %d bytes differ from source %d", len(extracted), len(payload))
	}
}

func TestUnknownCommandSuggests(t *testing.T) {
	err := Root().Execute([]string{"mapings"})
	if err == nil {
		t.Fatalf("unknown command accepted")
	}
}
