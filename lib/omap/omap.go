// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package omap

import "fmt"

// Map is an insertion-ordered map addressable by key and by position.
// Positions are dense: they run from 0 to Len()-1 with no holes, and
// removing an entry shifts every later entry down by one.
type Map[K comparable, V any] struct {
	keys   []K
	values []V
	index  map[K]int
}

// New creates an empty ordered map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{index: make(map[K]int)}
}

// WithCapacity creates an empty ordered map with storage preallocated
// for n entries. Use when the entry count is known up front (decoding
// a table whose count precedes its entries).
func WithCapacity[K comparable, V any](n int) *Map[K, V] {
	return &Map[K, V]{
		keys:   make([]K, 0, n),
		values: make([]V, 0, n),
		index:  make(map[K]int, n),
	}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Set inserts key with value at the end, or replaces the value in
// place if key is already present. Returns the entry's position.
func (m *Map[K, V]) Set(key K, value V) int {
	if position, ok := m.index[key]; ok {
		m.values[position] = value
		return position
	}
	position := len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
	m.index[key] = position
	return position
}

// Get returns the value for key and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	if position, ok := m.index[key]; ok {
		return m.values[position], true
	}
	var zero V
	return zero, false
}

// IndexOf returns the position of key, or -1 if absent.
func (m *Map[K, V]) IndexOf(key K) int {
	if position, ok := m.index[key]; ok {
		return position
	}
	return -1
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.index[key]
	return ok
}

// KeyAt returns the key at the given position. Positions outside
// [0, Len()) return an error rather than panicking: positions often
// come straight from decoded file content and must not be trusted.
func (m *Map[K, V]) KeyAt(position int) (K, error) {
	if position < 0 || position >= len(m.keys) {
		var zero K
		return zero, fmt.Errorf("omap: position %d out of range [0, %d)", position, len(m.keys))
	}
	return m.keys[position], nil
}

// ValueAt returns the value at the given position, with the same
// bounds behavior as [Map.KeyAt].
func (m *Map[K, V]) ValueAt(position int) (V, error) {
	if position < 0 || position >= len(m.values) {
		var zero V
		return zero, fmt.Errorf("omap: position %d out of range [0, %d)", position, len(m.values))
	}
	return m.values[position], nil
}

// Delete removes key if present and reports whether it was removed.
// Every entry after the removed position shifts down by one; this is
// O(n) and acceptable because the tables using omap are small
// relative to the data they describe.
func (m *Map[K, V]) Delete(key K) bool {
	position, ok := m.index[key]
	if !ok {
		return false
	}
	m.keys = append(m.keys[:position], m.keys[position+1:]...)
	m.values = append(m.values[:position], m.values[position+1:]...)
	delete(m.index, key)
	for i := position; i < len(m.keys); i++ {
		m.index[m.keys[i]] = i
	}
	return true
}

// Keys returns the keys in insertion order. The returned slice is the
// map's backing storage — callers must not modify it.
func (m *Map[K, V]) Keys() []K {
	return m.keys
}

// Values returns the values in insertion order. The returned slice is
// the map's backing storage — callers must not modify it.
func (m *Map[K, V]) Values() []V {
	return m.values
}

// Range calls fn for each entry in insertion order until fn returns
// false. The map must not be mutated during iteration.
func (m *Map[K, V]) Range(fn func(position int, key K, value V) bool) {
	for i, key := range m.keys {
		if !fn(i, key, m.values[i]) {
			return
		}
	}
}

// Clone returns a shallow copy: keys and values are copied, but value
// contents are shared if V is a pointer or reference type.
func (m *Map[K, V]) Clone() *Map[K, V] {
	clone := &Map[K, V]{
		keys:   append([]K(nil), m.keys...),
		values: append([]V(nil), m.values...),
		index:  make(map[K]int, len(m.index)),
	}
	for key, position := range m.index {
		clone.index[key] = position
	}
	return clone
}
