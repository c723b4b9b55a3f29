// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeProfile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestLoadProfile(t *testing.T) {
	path := writeProfile(t, `
engine: "4.27"
mappings: /data/Game.usmap
keys:
  pakchunk0-WindowsNoEditor: "0x000102030405060708090a0b0c0d0e0f"
  "": 0f0e0d0c0b0a09080706050403020100
`)
	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if profile.Engine != "4.27" || profile.Mappings != "/data/Game.usmap" {
		t.Fatalf("profile = %+v", profile)
	}

	key, err := profile.AESKey("", "/paks/pakchunk0-WindowsNoEditor.pak")
	if err != nil {
		t.Fatalf("stem key: %v", err)
	}
	if key[0] != 0x00 || key[15] != 0x0f {
		t.Fatalf("stem key = %x", key)
	}

	// Unmatched stems fall back to the "" entry.
	key, err = profile.AESKey("", "/paks/other.pak")
	if err != nil {
		t.Fatalf("fallback key: %v", err)
	}
	if key[0] != 0x0f {
		t.Fatalf("fallback key = %x", key)
	}

	// A flag value beats both.
	flagKey, err := profile.AESKey("ffffffffffffffffffffffffffffffff", "/paks/other.pak")
	if err != nil {
		t.Fatalf("flag key: %v", err)
	}
	if !bytes.Equal(flagKey, bytes.Repeat([]byte{0xFF}, 16)) {
		t.Fatalf("flag key = %x", flagKey)
	}
}

func TestLoadProfileMissingIsEmpty(t *testing.T) {
	t.Setenv(ProfileEnvVar, "")
	profile, err := LoadProfile("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	key, err := profile.AESKey("", "anything.pak")
	if err != nil || key != nil {
		t.Fatalf("empty profile key = %x, %v", key, err)
	}
}

func TestLoadProfileRejectsBadKey(t *testing.T) {
	path := writeProfile(t, "keys:\n  game: \"abc\"\n")
	if _, err := LoadProfile(path); err == nil {
		t.Fatalf("short key accepted")
	}
	path = writeProfile(t, "keys:\n  game: \"zz\"\n")
	if _, err := LoadProfile(path); err == nil {
		t.Fatalf("non-hex key accepted")
	}
}
