// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

import "fmt"

// EngineVersion names one retail engine release. Values are ordered so
// releases can be compared; the numeric values are internal and carry
// no wire meaning.
type EngineVersion int

const (
	// EngineUnknown means no release could be determined.
	EngineUnknown EngineVersion = iota
	Engine4_0
	Engine4_1
	Engine4_2
	Engine4_3
	Engine4_4
	Engine4_5
	Engine4_6
	Engine4_7
	Engine4_8
	Engine4_9
	Engine4_10
	Engine4_11
	Engine4_12
	Engine4_13
	Engine4_14
	Engine4_15
	Engine4_16
	Engine4_17
	Engine4_18
	Engine4_19
	Engine4_20
	Engine4_21
	Engine4_22
	Engine4_23
	Engine4_24
	Engine4_25
	Engine4_26
	Engine4_27
	Engine5_0
	Engine5_1
	Engine5_2
	Engine5_3
	Engine5_4
	Engine5_5

	// engineVersionPastLatest sorts after every recognized release.
	// Used as the "never superseded" bound in custom-version interval
	// arithmetic.
	engineVersionPastLatest
)

var engineVersionNames = map[EngineVersion]string{
	EngineUnknown: "unknown",
	Engine4_0:     "4.0", Engine4_1: "4.1", Engine4_2: "4.2",
	Engine4_3: "4.3", Engine4_4: "4.4", Engine4_5: "4.5",
	Engine4_6: "4.6", Engine4_7: "4.7", Engine4_8: "4.8",
	Engine4_9: "4.9", Engine4_10: "4.10", Engine4_11: "4.11",
	Engine4_12: "4.12", Engine4_13: "4.13", Engine4_14: "4.14",
	Engine4_15: "4.15", Engine4_16: "4.16", Engine4_17: "4.17",
	Engine4_18: "4.18", Engine4_19: "4.19", Engine4_20: "4.20",
	Engine4_21: "4.21", Engine4_22: "4.22", Engine4_23: "4.23",
	Engine4_24: "4.24", Engine4_25: "4.25", Engine4_26: "4.26",
	Engine4_27: "4.27", Engine5_0: "5.0", Engine5_1: "5.1",
	Engine5_2: "5.2", Engine5_3: "5.3", Engine5_4: "5.4",
	Engine5_5: "5.5",
}

// String returns the human form, e.g. "4.27".
func (v EngineVersion) String() string {
	if name, ok := engineVersionNames[v]; ok {
		return name
	}
	return fmt.Sprintf("EngineVersion(%d)", int(v))
}

// ParseEngineVersion parses the "major.minor" form produced by
// [EngineVersion.String].
func ParseEngineVersion(s string) (EngineVersion, error) {
	for v, name := range engineVersionNames {
		if name == s && v != EngineUnknown {
			return v, nil
		}
	}
	return EngineUnknown, fmt.Errorf("unrecognized engine version %q", s)
}

// releaseOrdinals is one row of the release table: the pair of ordinal
// counters every package saved by that release carries. Several
// releases share ordinals; that ambiguity is what custom-version
// narrowing exists to break.
type releaseOrdinals struct {
	release EngineVersion
	object  ObjectVersion
	ue5     UE5Version
}

// allEngineReleases lists every recognized release in order. The
// ordinal pairs mirror the engine's shipped serialization counters.
var allEngineReleases = []EngineVersion{
	Engine4_0, Engine4_1, Engine4_2, Engine4_3, Engine4_4, Engine4_5,
	Engine4_6, Engine4_7, Engine4_8, Engine4_9, Engine4_10, Engine4_11,
	Engine4_12, Engine4_13, Engine4_14, Engine4_15, Engine4_16,
	Engine4_17, Engine4_18, Engine4_19, Engine4_20, Engine4_21,
	Engine4_22, Engine4_23, Engine4_24, Engine4_25, Engine4_26,
	Engine4_27, Engine5_0, Engine5_1, Engine5_2, Engine5_3, Engine5_4,
	Engine5_5,
}

var releaseOrdinalTable = []releaseOrdinals{
	{Engine4_0, 342, UE5VersionNone},
	{Engine4_1, 352, UE5VersionNone},
	{Engine4_2, 363, UE5VersionNone},
	{Engine4_3, 382, UE5VersionNone},
	{Engine4_4, 385, UE5VersionNone},
	{Engine4_5, 401, UE5VersionNone},
	{Engine4_6, 413, UE5VersionNone},
	{Engine4_7, 434, UE5VersionNone},
	{Engine4_8, 451, UE5VersionNone},
	{Engine4_9, 482, UE5VersionNone},
	{Engine4_10, 482, UE5VersionNone},
	{Engine4_11, 498, UE5VersionNone},
	{Engine4_12, 504, UE5VersionNone},
	{Engine4_13, 505, UE5VersionNone},
	{Engine4_14, 508, UE5VersionNone},
	{Engine4_15, 510, UE5VersionNone},
	{Engine4_16, 513, UE5VersionNone},
	{Engine4_17, 513, UE5VersionNone},
	{Engine4_18, 514, UE5VersionNone},
	{Engine4_19, 516, UE5VersionNone},
	{Engine4_20, 516, UE5VersionNone},
	{Engine4_21, 517, UE5VersionNone},
	{Engine4_22, 517, UE5VersionNone},
	{Engine4_23, 517, UE5VersionNone},
	{Engine4_24, 518, UE5VersionNone},
	{Engine4_25, 518, UE5VersionNone},
	{Engine4_26, 522, UE5VersionNone},
	{Engine4_27, 522, UE5VersionNone},
	{Engine5_0, 522, 1004},
	{Engine5_1, 522, 1008},
	{Engine5_2, 522, 1009},
	{Engine5_3, 522, 1009},
	{Engine5_4, 522, 1012},
	{Engine5_5, 522, 1013},
}

// ordinalsForRelease returns the counter pair a given release writes.
func ordinalsForRelease(release EngineVersion) (ObjectVersion, UE5Version, bool) {
	for _, row := range releaseOrdinalTable {
		if row.release == release {
			return row.object, row.ue5, true
		}
	}
	return 0, 0, false
}

// InferEngineVersion guesses which retail release saved a package with
// the given version context. The routine is advisory: it never gates
// decode correctness, but downstream tooling uses it to pick default
// behaviors when an asset declares no explicit engine version.
//
// Ordinal counters alone often leave a tie (4.9/4.10, 4.19/4.20,
// 4.21-4.23, 4.24/4.25, 4.26/4.27, 5.2/5.3 share pairs). Ties are
// broken by intersecting each decoded custom version's
// introduced/superseded release interval with the candidate set. An
// intersection that eliminates every candidate marks an internally
// inconsistent (non-retail) build; the first ordinal-only candidate is
// returned rather than failing.
func InferEngineVersion(ctx *VersionContext) EngineVersion {
	var candidates []EngineVersion
	for _, row := range releaseOrdinalTable {
		if row.object == ctx.ObjectVersion() && row.ue5 == ctx.UE5() {
			candidates = append(candidates, row.release)
		}
	}
	if len(candidates) == 0 {
		return EngineUnknown
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	narrowed := append([]EngineVersion(nil), candidates...)
	for _, cv := range ctx.CustomVersions() {
		group := lookupCustomVersionGroup(cv.Key)
		if group == nil || len(group.perRelease) == 0 {
			continue
		}
		introduced, superseded := group.versionBounds(cv.Version)
		var kept []EngineVersion
		for _, candidate := range narrowed {
			if candidate >= introduced && candidate < superseded {
				kept = append(kept, candidate)
			}
		}
		narrowed = kept
		if len(narrowed) == 0 {
			// Inconsistent build: fall back to the ordinal answer.
			return candidates[0]
		}
	}
	return narrowed[0]
}

// lookupCustomVersionGroup finds the registry entry for a feature id,
// or nil when the feature is not recognized.
func lookupCustomVersionGroup(key Guid) *customVersionGroup {
	for _, group := range customVersionRegistry {
		if group.key == key {
			return group
		}
	}
	return nil
}
