// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProfileEnvVar names the environment variable consulted when no
// --profile flag is given. There is no automatic discovery beyond
// this: configuration comes from exactly one named file, so a run is
// reproducible from its command line and environment alone.
const ProfileEnvVar = "UASSETKIT_PROFILE"

// Profile is the optional per-game YAML configuration. All fields are
// defaults; command-line flags override them.
type Profile struct {
	// Engine is the release version assets were cooked with
	// (e.g. "4.27", "5.3"). Needed for packages saved without
	// version counters.
	Engine string `yaml:"engine,omitempty"`

	// Mappings is the path to a property mappings (.usmap) file,
	// needed to decode unversioned property data.
	Mappings string `yaml:"mappings,omitempty"`

	// Cache is a directory for decoded-asset snapshot records.
	// Empty disables caching.
	Cache string `yaml:"cache,omitempty"`

	// Keys maps archive stems (file name without extension) to
	// hex-encoded AES keys, with an optional 0x prefix. The empty
	// stem "" is the fallback key for archives with no entry.
	Keys map[string]string `yaml:"keys,omitempty"`
}

// LoadProfile reads the profile at path, falling back to the
// UASSETKIT_PROFILE environment variable. When neither names a file,
// an empty profile is returned: everything then comes from flags.
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		path = os.Getenv(ProfileEnvVar)
	}
	if path == "" {
		return &Profile{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	for stem, key := range profile.Keys {
		if _, err := decodeAESKey(key); err != nil {
			return nil, fmt.Errorf("profile %s: key for %q: %w", path, stem, err)
		}
	}
	return &profile, nil
}

// AESKey resolves the decryption key for an archive. An explicit
// flag value wins; otherwise the profile is consulted by archive
// stem, then by the "" fallback entry. A nil key with nil error means
// no key is configured.
func (p *Profile) AESKey(flagValue, archivePath string) ([]byte, error) {
	if flagValue != "" {
		return decodeAESKey(flagValue)
	}
	stem := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	if key, ok := p.Keys[stem]; ok {
		return decodeAESKey(key)
	}
	if key, ok := p.Keys[""]; ok {
		return decodeAESKey(key)
	}
	return nil, nil
}

// decodeAESKey parses a hex AES key with an optional 0x prefix.
func decodeAESKey(s string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	key, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid hex AES key: %w", err)
	}
	switch len(key) {
	case 16, 24, 32:
		return key, nil
	default:
		return nil, fmt.Errorf("AES key is %d bytes, want 16, 24, or 32", len(key))
	}
}
