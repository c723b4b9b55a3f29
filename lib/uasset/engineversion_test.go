// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

import "testing"

func TestParseEngineVersion(t *testing.T) {
	v, err := ParseEngineVersion("4.27")
	if err != nil || v != Engine4_27 {
		t.Fatalf("ParseEngineVersion(4.27) = %v, %v", v, err)
	}
	if _, err := ParseEngineVersion("3.5"); err == nil {
		t.Fatalf("ParseEngineVersion(3.5) accepted an unknown release")
	}
}

func TestInferNarrowsByCustomVersion(t *testing.T) {
	// Object version 522 alone is ambiguous between 4.26 and 4.27;
	// the release-stream custom version disambiguates.
	cases := []struct {
		release int32
		want    EngineVersion
	}{
		{34, Engine4_26},
		{37, Engine4_27},
	}
	for _, c := range cases {
		ctx := NewVersionContext(VerCorrectLicenseeFlag, UE5VersionNone, []CustomVersion{
			{Key: CustomVersionRelease, Version: c.release},
		})
		if got := InferEngineVersion(ctx); got != c.want {
			t.Fatalf("release custom version %d inferred %v, want %v", c.release, got, c.want)
		}
	}
}

func TestInferFallsBackToFirstCandidate(t *testing.T) {
	// A release value no retail build ever shipped with ordinal 522:
	// narrowing empties the candidate set and the earliest ordinal
	// match wins.
	ctx := NewVersionContext(VerCorrectLicenseeFlag, UE5VersionNone, []CustomVersion{
		{Key: CustomVersionRelease, Version: 1},
	})
	if got := InferEngineVersion(ctx); got != Engine4_26 {
		t.Fatalf("inconsistent build inferred %v, want first candidate %v", got, Engine4_26)
	}
}

func TestInferWithoutCustomVersions(t *testing.T) {
	ctx := NewVersionContext(VerCorrectLicenseeFlag, UE5VersionNone, nil)
	if got := InferEngineVersion(ctx); got != Engine4_26 {
		t.Fatalf("bare ordinal inferred %v, want %v", got, Engine4_26)
	}
}

func TestVersionContextForEngineRoundTrip(t *testing.T) {
	ctx, err := VersionContextForEngine(Engine4_27)
	if err != nil {
		t.Fatalf("VersionContextForEngine: %v", err)
	}
	if got := ctx.ObjectVersion(); got != VerCorrectLicenseeFlag {
		t.Fatalf("4.27 object version = %d, want %d", got, VerCorrectLicenseeFlag)
	}
	if got := ctx.Custom(CustomVersionRelease); got != 37 {
		t.Fatalf("4.27 release custom version = %d, want 37", got)
	}
	if got := InferEngineVersion(ctx); got != Engine4_27 {
		t.Fatalf("inference on registry defaults = %v, want %v", got, Engine4_27)
	}
}

func TestCustomAbsentIsZero(t *testing.T) {
	ctx := NewVersionContext(VerCorrectLicenseeFlag, UE5VersionNone, nil)
	if got := ctx.Custom(CustomVersionCore); got != 0 {
		t.Fatalf("absent custom version = %d, want 0", got)
	}
}
