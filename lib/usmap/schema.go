// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package usmap

import (
	"fmt"

	"github.com/uassetkit/uassetkit/lib/uasset"
)

// The unversioned header indexes a flattened view of a type's schema:
// the most derived struct's slots come first, then each super's in
// turn. These methods walk the ancestry chain in that order. A super
// name the mappings do not define ends the chain — dumps routinely
// omit engine-internal bases that contribute no serialized slots.

func noMapping(format string, args ...any) error {
	return fmt.Errorf("%w: %s", uasset.ErrNoSchemaMapping, fmt.Sprintf(format, args...))
}

// chain returns the ancestry of typeName, derived-first. The walk is
// bounded so a corrupt super cycle cannot loop forever.
func (m *Mappings) chain(typeName string) ([]*Struct, error) {
	s, ok := m.Structs[typeName]
	if !ok {
		return nil, noMapping("unknown type %q", typeName)
	}
	var chain []*Struct
	seen := make(map[string]bool)
	for s != nil && !seen[s.Name] {
		seen[s.Name] = true
		chain = append(chain, s)
		s = m.Structs[s.Super]
	}
	return chain, nil
}

// PropertyCount returns the total slot count of a type, inherited
// slots included.
func (m *Mappings) PropertyCount(typeName string) (int, error) {
	chain, err := m.chain(typeName)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, s := range chain {
		total += len(s.Slots)
	}
	return total, nil
}

// PropertyAt returns the property occupying a global slot.
func (m *Mappings) PropertyAt(typeName string, index int) (uasset.SchemaProperty, error) {
	chain, err := m.chain(typeName)
	if err != nil {
		return uasset.SchemaProperty{}, err
	}
	remaining := index
	for _, s := range chain {
		if remaining < len(s.Slots) {
			slot := s.Slots[remaining]
			if slot.Name == "" && slot.Type.Name == "" {
				return uasset.SchemaProperty{}, noMapping(
					"type %q slot %d is not serialized", typeName, index)
			}
			return slot, nil
		}
		remaining -= len(s.Slots)
	}
	return uasset.SchemaProperty{}, noMapping("type %q has no slot %d", typeName, index)
}

// GlobalIndex maps a property back to its global slot.
func (m *Mappings) GlobalIndex(typeName, propertyName string, dupIndex int) (int, error) {
	chain, err := m.chain(typeName)
	if err != nil {
		return 0, err
	}
	offset := 0
	for _, s := range chain {
		for i, slot := range s.Slots {
			if slot.Name == propertyName && slot.DupIndex == dupIndex {
				return offset + i, nil
			}
		}
		offset += len(s.Slots)
	}
	return 0, noMapping("type %q has no property %q dup %d", typeName, propertyName, dupIndex)
}
