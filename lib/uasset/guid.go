// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Guid is the engine's 16-byte identifier: four little-endian uint32
// components serialized back to back. It identifies custom-version
// features, packages, and individual properties.
type Guid [16]byte

// NewGuid builds a Guid from its four uint32 components, matching the
// component order the engine uses in source (A, B, C, D).
func NewGuid(a, b, c, d uint32) Guid {
	var g Guid
	binary.LittleEndian.PutUint32(g[0:4], a)
	binary.LittleEndian.PutUint32(g[4:8], b)
	binary.LittleEndian.PutUint32(g[8:12], c)
	binary.LittleEndian.PutUint32(g[12:16], d)
	return g
}

// Components returns the four uint32 components (A, B, C, D).
func (g Guid) Components() (a, b, c, d uint32) {
	return binary.LittleEndian.Uint32(g[0:4]),
		binary.LittleEndian.Uint32(g[4:8]),
		binary.LittleEndian.Uint32(g[8:12]),
		binary.LittleEndian.Uint32(g[12:16])
}

// IsZero reports whether every byte is zero. A zero Guid is the
// format's "no guid" value.
func (g Guid) IsZero() bool {
	return g == Guid{}
}

// String formats the guid the way the engine's digits form prints it:
// the four components as contiguous uppercase hex.
func (g Guid) String() string {
	a, b, c, d := g.Components()
	return fmt.Sprintf("%08X%08X%08X%08X", a, b, c, d)
}

// ParseGuid parses the 32-hex-digit form produced by [Guid.String].
// Dashes are tolerated and ignored so the common 8-4-4-4-12 rendering
// also parses.
func ParseGuid(s string) (Guid, error) {
	cleaned := strings.ReplaceAll(s, "-", "")
	if len(cleaned) != 32 {
		return Guid{}, fmt.Errorf("guid %q: want 32 hex digits, have %d", s, len(cleaned))
	}
	var components [4]uint32
	for i := range components {
		var v uint32
		if _, err := fmt.Sscanf(cleaned[i*8:i*8+8], "%08x", &v); err != nil {
			return Guid{}, fmt.Errorf("guid %q: %w", s, err)
		}
		components[i] = v
	}
	return NewGuid(components[0], components[1], components[2], components[3]), nil
}
