// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package omap

import "testing"

func TestSetPreservesInsertionOrder(t *testing.T) {
	m := New[string, int]()

	keys := []string{"Health", "Armor", "Speed", "Mana"}
	for i, key := range keys {
		position := m.Set(key, i*10)
		if position != i {
			t.Fatalf("Set(%q) position = %d, want %d", key, position, i)
		}
	}

	if m.Len() != len(keys) {
		t.Fatalf("Len = %d, want %d", m.Len(), len(keys))
	}

	for i, key := range m.Keys() {
		if key != keys[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, key, keys[i])
		}
	}
}

func TestSetReplacesInPlace(t *testing.T) {
	m := New[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)

	// Replacing "a" must keep its position and not append.
	position := m.Set("a", 100)
	if position != 0 {
		t.Fatalf("replacing Set position = %d, want 0", position)
	}
	if m.Len() != 2 {
		t.Fatalf("Len after replace = %d, want 2", m.Len())
	}
	if value, _ := m.Get("a"); value != 100 {
		t.Errorf("Get(a) = %d, want 100", value)
	}
}

func TestPositionLookups(t *testing.T) {
	m := New[string, string]()
	m.Set("ClassA", "/Game/A")
	m.Set("ClassB", "/Game/B")

	key, err := m.KeyAt(1)
	if err != nil {
		t.Fatalf("KeyAt(1) failed: %v", err)
	}
	if key != "ClassB" {
		t.Errorf("KeyAt(1) = %q, want ClassB", key)
	}

	value, err := m.ValueAt(0)
	if err != nil {
		t.Fatalf("ValueAt(0) failed: %v", err)
	}
	if value != "/Game/A" {
		t.Errorf("ValueAt(0) = %q, want /Game/A", value)
	}

	if m.IndexOf("ClassB") != 1 {
		t.Errorf("IndexOf(ClassB) = %d, want 1", m.IndexOf("ClassB"))
	}
	if m.IndexOf("missing") != -1 {
		t.Errorf("IndexOf(missing) = %d, want -1", m.IndexOf("missing"))
	}
}

func TestOutOfRangePositionsError(t *testing.T) {
	m := New[string, int]()
	m.Set("only", 1)

	for _, position := range []int{-1, 1, 99} {
		if _, err := m.KeyAt(position); err == nil {
			t.Errorf("KeyAt(%d) succeeded, want error", position)
		}
		if _, err := m.ValueAt(position); err == nil {
			t.Errorf("ValueAt(%d) succeeded, want error", position)
		}
	}
}

func TestDeleteShiftsPositions(t *testing.T) {
	m := New[string, int]()
	m.Set("a", 0)
	m.Set("b", 1)
	m.Set("c", 2)

	if !m.Delete("b") {
		t.Fatal("Delete(b) = false, want true")
	}
	if m.Delete("b") {
		t.Fatal("second Delete(b) = true, want false")
	}

	if m.Len() != 2 {
		t.Fatalf("Len after delete = %d, want 2", m.Len())
	}
	if m.IndexOf("c") != 1 {
		t.Errorf("IndexOf(c) after delete = %d, want 1", m.IndexOf("c"))
	}
	key, err := m.KeyAt(1)
	if err != nil {
		t.Fatalf("KeyAt(1) failed: %v", err)
	}
	if key != "c" {
		t.Errorf("KeyAt(1) after delete = %q, want c", key)
	}
}

func TestRangeStopsEarly(t *testing.T) {
	m := New[int, int]()
	for i := 0; i < 10; i++ {
		m.Set(i, i)
	}

	var visited int
	m.Range(func(position, key, value int) bool {
		visited++
		return visited < 3
	})
	if visited != 3 {
		t.Errorf("visited = %d, want 3", visited)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := New[string, int]()
	m.Set("a", 1)

	clone := m.Clone()
	clone.Set("b", 2)
	clone.Set("a", 99)

	if m.Len() != 1 {
		t.Errorf("original Len = %d after clone mutation, want 1", m.Len())
	}
	if value, _ := m.Get("a"); value != 1 {
		t.Errorf("original Get(a) = %d after clone mutation, want 1", value)
	}
}
