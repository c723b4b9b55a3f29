// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/uassetkit/uassetkit/cmd/uassetkit/cli"
	"github.com/uassetkit/uassetkit/lib/uasset"
	"github.com/uassetkit/uassetkit/lib/usmap"
)

// decodeEnv collects the flags shared by every command that decodes
// asset bytes: the profile file plus per-invocation overrides.
type decodeEnv struct {
	profilePath string
	engine      string
	mappings    string
	cache       string
}

func (e *decodeEnv) bind(fs *pflag.FlagSet) {
	fs.StringVar(&e.profilePath, "profile", "", "YAML profile file (default $"+cli.ProfileEnvVar+")")
	fs.StringVar(&e.engine, "engine", "", "engine release version, e.g. 4.27 or 5.3")
	fs.StringVar(&e.mappings, "mappings", "", "property mappings (.usmap) file")
	fs.StringVar(&e.cache, "cache", "", "snapshot cache directory")
}

// resolve loads the profile and merges it under the flags. The
// returned options are ready for uasset.DecodeAsset; nil Schema and
// Versions mean the package must carry its own version counters and
// versioned properties.
func (e *decodeEnv) resolve() (*cli.Profile, *uasset.DecodeOptions, error) {
	profile, err := cli.LoadProfile(e.profilePath)
	if err != nil {
		return nil, nil, err
	}
	if e.engine == "" {
		e.engine = profile.Engine
	}
	if e.mappings == "" {
		e.mappings = profile.Mappings
	}
	if e.cache == "" {
		e.cache = profile.Cache
	}

	opts := &uasset.DecodeOptions{}
	if e.engine != "" {
		release, err := uasset.ParseEngineVersion(e.engine)
		if err != nil {
			return nil, nil, err
		}
		opts.Versions, err = uasset.VersionContextForEngine(release)
		if err != nil {
			return nil, nil, err
		}
	}
	if e.mappings != "" {
		data, err := os.ReadFile(e.mappings)
		if err != nil {
			return nil, nil, fmt.Errorf("reading mappings: %w", err)
		}
		opts.Schema, err = usmap.Load(data)
		if err != nil {
			return nil, nil, err
		}
	}
	return profile, opts, nil
}
