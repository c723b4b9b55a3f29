// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

// CustomVersion is one (feature id, revision) entry from the
// summary's custom version container. Feature ids are 16-byte guids
// minted by whichever subsystem owns the feature; revisions count up
// independently per feature.
type CustomVersion struct {
	Key     Guid
	Version int32
}

// VersionContext is the versioning state every other component
// consults: the two ordinal counters plus the custom-version set.
// It is built once — at decode time from the summary, or by the
// caller via [NewVersionContext] / [VersionContextForEngine] — and is
// immutable afterwards, which is what makes sharing it across a whole
// decode or encode pass safe.
type VersionContext struct {
	object  ObjectVersion
	ue5     UE5Version
	custom  []CustomVersion
	byGuid  map[Guid]int32
	licensee int32
}

// NewVersionContext builds a context from explicit counters and a
// custom version set. The slice is copied; serialized order is
// preserved for round-tripping the container.
func NewVersionContext(object ObjectVersion, ue5 UE5Version, custom []CustomVersion) *VersionContext {
	ctx := &VersionContext{
		object: object,
		ue5:    ue5,
		custom: append([]CustomVersion(nil), custom...),
		byGuid: make(map[Guid]int32, len(custom)),
	}
	for _, cv := range custom {
		ctx.byGuid[cv.Key] = cv.Version
	}
	return ctx
}

// VersionContextForEngine builds a context whose ordinals and custom
// versions are the defaults for a named engine release, using the
// built-in registry. Use when authoring an asset from scratch or when
// the caller knows the target engine better than the file does.
func VersionContextForEngine(release EngineVersion) (*VersionContext, error) {
	object, ue5, ok := ordinalsForRelease(release)
	if !ok {
		return nil, malformed("unknown engine release %v", release)
	}
	var custom []CustomVersion
	for _, group := range customVersionRegistry {
		if value, ok := group.valueAt(release); ok {
			custom = append(custom, CustomVersion{Key: group.key, Version: value})
		}
	}
	return NewVersionContext(object, ue5, custom), nil
}

// ObjectVersion returns the primary ordinal counter.
func (c *VersionContext) ObjectVersion() ObjectVersion {
	return c.object
}

// UE5 returns the second ordinal counter, [UE5VersionNone] for
// packages that predate it.
func (c *VersionContext) UE5() UE5Version {
	return c.ue5
}

// Licensee returns the licensee version counter from the summary.
func (c *VersionContext) Licensee() int32 {
	return c.licensee
}

// Custom returns the revision for a feature id. An absent feature is
// revision 0 — "older than this feature existed" — and never an
// error.
func (c *VersionContext) Custom(key Guid) int32 {
	return c.byGuid[key]
}

// CustomVersions returns the custom version set in serialized order.
// The returned slice is a copy.
func (c *VersionContext) CustomVersions() []CustomVersion {
	return append([]CustomVersion(nil), c.custom...)
}

// Supports reports whether the object version meets the threshold.
func (c *VersionContext) Supports(threshold ObjectVersion) bool {
	return c.object.Supports(threshold)
}

// SupportsUE5 reports whether the UE5 counter meets the threshold.
func (c *VersionContext) SupportsUE5(threshold UE5Version) bool {
	return c.ue5.Supports(threshold)
}

// Known custom version feature ids. The component values mirror the
// engine's published declarations.
var (
	// CustomVersionCore gates core object serialization changes,
	// including the switch of field serialization to FProperties.
	CustomVersionCore = NewGuid(0x375EC13C, 0x06E448FB, 0xB50084F0, 0x262A717E)

	// CustomVersionEditor gates editor-stream serialization changes.
	CustomVersionEditor = NewGuid(0xE4B068ED, 0xF49442E9, 0xA231DA0B, 0x2E46BB41)

	// CustomVersionFramework gates gameplay-framework serialization
	// changes.
	CustomVersionFramework = NewGuid(0xCFFC743F, 0x43B04480, 0x939114DF, 0x171D2073)

	// CustomVersionRelease gates release-stream serialization
	// changes.
	CustomVersionRelease = NewGuid(0x9C54D522, 0xA8264FBE, 0x94210746, 0x61B482D0)

	// CustomVersionAnimPhys gates animation and physics
	// serialization changes, including the smart-name layout.
	CustomVersionAnimPhys = NewGuid(0x29E575DD, 0xE0A34627, 0x9D10D276, 0x232CDCEA)

	// CustomVersionSequencer gates sequencer serialization changes.
	CustomVersionSequencer = NewGuid(0x7B5AE74C, 0xD2704C10, 0xA9585798, 0x0B212621)

	// CustomVersionFortniteMain gates the fortnite main stream,
	// which ships layout changes ahead of numbered releases.
	CustomVersionFortniteMain = NewGuid(0x601D1886, 0xAC644F84, 0xAA16D3DE, 0x0DEAC7D6)

	// CustomVersionUE5Main gates the UE5 main stream.
	CustomVersionUE5Main = NewGuid(0x697DD581, 0xE64F41AB, 0xAA4A51EC, 0xBEB7B628)

	// CustomVersionUE5Release gates the UE5 release stream.
	CustomVersionUE5Release = NewGuid(0xD89B5E42, 0x24BD4D46, 0x8412ACA8, 0xDF641779)
)

// Named revisions within custom version groups that the codec
// consults directly.
const (
	// CoreEnumProperties is the CustomVersionCore revision that
	// widened serialized enum entry values from one byte to int64.
	CoreEnumProperties int32 = 2

	// CoreFProperties is the CustomVersionCore revision at which
	// class field lists moved from property exports to inline
	// FProperty records.
	CoreFProperties int32 = 4

	// AnimPhysSmartNameRefactor is the CustomVersionAnimPhys
	// revision that removed the 16-bit id from smart names.
	AnimPhysSmartNameRefactor int32 = 2

	// AnimPhysSmartNameRemovedGuid is the CustomVersionAnimPhys
	// revision that removed the guid from smart names.
	AnimPhysSmartNameRemovedGuid int32 = 5
)

// customVersionGroup is one registry entry: a feature id plus the
// revision in effect at each engine release the toolkit recognizes.
// Releases between listed entries inherit the previous revision;
// releases before the first entry are revision 0. Groups without a
// table are known by id but carry no per-release data, so they do
// not participate in narrowing or defaulting.
type customVersionGroup struct {
	key      Guid
	name     string
	perRelease []customVersionAt
}

type customVersionAt struct {
	release EngineVersion
	version int32
}

// valueAt returns the group's revision at the given release, and
// whether the group has any table data at or before it.
func (g *customVersionGroup) valueAt(release EngineVersion) (int32, bool) {
	if len(g.perRelease) == 0 {
		return 0, false
	}
	value := int32(0)
	found := false
	for _, at := range g.perRelease {
		if at.release > release {
			break
		}
		value = at.version
		found = true
	}
	if !found {
		// The release predates the feature: revision 0 by the
		// absence rule, but still table-backed.
		return 0, true
	}
	return value, true
}

// versionBounds returns the engine-release interval [introduced,
// superseded) during which the group reported exactly the given
// revision. An empty interval (introduced == superseded) means no
// recognized retail release produced that revision.
func (g *customVersionGroup) versionBounds(version int32) (introduced, superseded EngineVersion) {
	introduced = engineVersionPastLatest
	superseded = engineVersionPastLatest
	for _, release := range allEngineReleases {
		value, ok := g.valueAt(release)
		if !ok {
			continue
		}
		if value >= version && release < introduced {
			introduced = release
		}
		if value > version && release < superseded {
			superseded = release
		}
	}
	return introduced, superseded
}

// customVersionRegistry is the static registry consulted by
// engine-version inference and by [VersionContextForEngine]. Passed
// around via VersionContext rather than read as ambient global state
// by decode paths.
var customVersionRegistry = []*customVersionGroup{
	{
		key:  CustomVersionCore,
		name: "Core",
		perRelease: []customVersionAt{
			{Engine4_12, 1}, {Engine4_15, 2}, {Engine4_22, 3}, {Engine4_25, 4},
		},
	},
	{
		key:  CustomVersionEditor,
		name: "Editor",
		perRelease: []customVersionAt{
			{Engine4_12, 2}, {Engine4_13, 6}, {Engine4_14, 8}, {Engine4_15, 14},
			{Engine4_16, 17}, {Engine4_17, 20}, {Engine4_18, 23}, {Engine4_19, 28},
			{Engine4_20, 30}, {Engine4_21, 34}, {Engine4_22, 36}, {Engine4_23, 38},
			{Engine4_24, 40}, {Engine4_26, 43},
		},
	},
	{
		key:  CustomVersionFramework,
		name: "Framework",
		perRelease: []customVersionAt{
			{Engine4_12, 6}, {Engine4_13, 12}, {Engine4_14, 17}, {Engine4_15, 22},
			{Engine4_16, 23}, {Engine4_17, 28}, {Engine4_18, 30}, {Engine4_19, 33},
			{Engine4_20, 34}, {Engine4_21, 35},
		},
	},
	{
		key:  CustomVersionRelease,
		name: "Release",
		perRelease: []customVersionAt{
			{Engine4_11, 1}, {Engine4_13, 3}, {Engine4_14, 4}, {Engine4_15, 7},
			{Engine4_16, 9}, {Engine4_17, 10}, {Engine4_19, 12}, {Engine4_20, 17},
			{Engine4_21, 20}, {Engine4_23, 23}, {Engine4_24, 28}, {Engine4_25, 30},
			{Engine4_26, 34}, {Engine4_27, 37},
		},
	},
	{key: CustomVersionAnimPhys, name: "AnimPhys",
		perRelease: []customVersionAt{
			{Engine4_16, 3}, {Engine4_17, 7}, {Engine4_18, 12}, {Engine4_19, 16},
			{Engine4_20, 17},
		},
	},
	{key: CustomVersionSequencer, name: "Sequencer"},
	{key: CustomVersionFortniteMain, name: "FortniteMain"},
	{key: CustomVersionUE5Main, name: "UE5Main"},
	{key: CustomVersionUE5Release, name: "UE5Release"},
}
