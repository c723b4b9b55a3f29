// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

import (
	"errors"
	"testing"
)

func TestFStringRoundTrip(t *testing.T) {
	cases := []string{"", "Health", "Engine/Content", "Ünïcode∆", "日本語"}
	for _, s := range cases {
		w := NewWriter()
		w.FString(s)
		r := NewReader(w.Bytes())
		got, err := r.FString()
		if err != nil {
			t.Fatalf("FString(%q): %v", s, err)
		}
		if got != s {
			t.Fatalf("FString round trip = %q, want %q", got, s)
		}
		if r.Remaining() != 0 {
			t.Fatalf("FString(%q) left %d bytes", s, r.Remaining())
		}
	}
}

func TestFStringWideUsesNegativeLength(t *testing.T) {
	w := NewWriter()
	w.FString("π")
	r := NewReader(w.Bytes())
	length, err := r.I32()
	if err != nil {
		t.Fatalf("length: %v", err)
	}
	if length >= 0 {
		t.Fatalf("wide string length = %d, want negative", length)
	}
}

func TestReaderPastEndIsMalformed(t *testing.T) {
	r := NewReader([]byte{1, 2})
	if _, err := r.U32(); !errors.Is(err, ErrMalformedFile) {
		t.Fatalf("short read error = %v, want ErrMalformedFile", err)
	}
}

func TestWriterReservePatch(t *testing.T) {
	w := NewWriter()
	w.U32(0xAABBCCDD)
	at := w.ReserveI32()
	w.Raw([]byte("payload"))
	w.PatchI32(at, int32(w.Len()-int(at)-4))

	r := NewReader(w.Bytes())
	if _, err := r.U32(); err != nil {
		t.Fatalf("prefix: %v", err)
	}
	patched, err := r.I32()
	if err != nil {
		t.Fatalf("patched field: %v", err)
	}
	if got, want := patched, int32(len("payload")); got != want {
		t.Fatalf("patched length = %d, want %d", got, want)
	}
}
