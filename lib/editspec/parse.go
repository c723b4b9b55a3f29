// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

// Package editspec parses and applies batch-edit specifications:
// declarative lists of property changes to apply to an asset.
//
// Specifications are authored on disk as JSONC (JSON extended with //
// line comments, /* block comments */, and trailing commas), the
// friendliest form for hand-maintained modding manifests. Each edit
// targets one export by object name and either sets an existing
// property, adds a new one, or removes one.
//
// The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes → Spec
//  2. Spec.Validate: structural checks (one action per edit, known
//     property types)
//  3. Apply: mutate a decoded uasset.Asset in place
package editspec

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// ErrInvalidSpec marks a specification that fails validation.
var ErrInvalidSpec = errors.New("editspec: invalid specification")

// Spec is one batch-edit document.
type Spec struct {
	// Engine optionally pins the engine version the asset is expected
	// to decode with; informational for tooling, not used by Apply.
	Engine string `json:"engine,omitempty"`

	Edits []Edit `json:"edits"`
}

// Edit is one change to one export. Exactly one of Set, Add, or
// Remove must be present.
type Edit struct {
	// Export is the object name of the export to modify.
	Export string `json:"export"`

	Set    *PropertyEdit `json:"set,omitempty"`
	Add    *PropertyEdit `json:"add,omitempty"`
	Remove *PropertyRef  `json:"remove,omitempty"`
}

// PropertyEdit names a property and the value to give it. Type is
// required for Add (the new tag's wire type) and ignored for Set,
// where the existing tag fixes the type.
type PropertyEdit struct {
	Property string `json:"property"`
	Dup      int    `json:"dup,omitempty"`
	Type     string `json:"type,omitempty"`
	Value    any    `json:"value"`
}

// PropertyRef names a property to remove.
type PropertyRef struct {
	Property string `json:"property"`
	Dup      int    `json:"dup,omitempty"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals and validates the result.
func Parse(data []byte) (*Spec, error) {
	stripped := jsonc.ToJSON(data)

	var spec Spec
	if err := json.Unmarshal(stripped, &spec); err != nil {
		return nil, fmt.Errorf("parsing edit spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// ReadFile reads a JSONC specification from disk.
func ReadFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// Validate checks the structural rules every edit must satisfy.
func (s *Spec) Validate() error {
	for i, edit := range s.Edits {
		if edit.Export == "" {
			return fmt.Errorf("%w: edit %d names no export", ErrInvalidSpec, i)
		}
		actions := 0
		for _, present := range []bool{edit.Set != nil, edit.Add != nil, edit.Remove != nil} {
			if present {
				actions++
			}
		}
		if actions != 1 {
			return fmt.Errorf("%w: edit %d has %d actions, want exactly one of set/add/remove",
				ErrInvalidSpec, i, actions)
		}
		if edit.Set != nil && edit.Set.Property == "" {
			return fmt.Errorf("%w: edit %d set names no property", ErrInvalidSpec, i)
		}
		if edit.Remove != nil && edit.Remove.Property == "" {
			return fmt.Errorf("%w: edit %d remove names no property", ErrInvalidSpec, i)
		}
		if edit.Add != nil {
			if edit.Add.Property == "" {
				return fmt.Errorf("%w: edit %d add names no property", ErrInvalidSpec, i)
			}
			if _, ok := addableTypes[edit.Add.Type]; !ok {
				return fmt.Errorf("%w: edit %d adds unsupported property type %q",
					ErrInvalidSpec, i, edit.Add.Type)
			}
		}
	}
	return nil
}
