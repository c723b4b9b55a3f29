// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package editspec

import (
	"errors"
	"testing"

	"github.com/uassetkit/uassetkit/lib/uasset"
)

// testAsset builds a small asset with one editable export carrying a
// Health int and a Title string.
func testAsset(t *testing.T) *uasset.Asset {
	t.Helper()
	ctx, err := uasset.VersionContextForEngine(uasset.Engine4_27)
	if err != nil {
		t.Fatalf("version context: %v", err)
	}
	a := uasset.NewAsset(ctx)
	pkg := a.AddImport(uasset.Import{
		ClassPackage: a.Names.Intern("/Script/CoreUObject", false),
		ClassName:    a.Names.Intern("Package", false),
		ObjectName:   a.Names.Intern("/Game/Edited", false),
	})
	class := a.FindOrAddImport("/Script/Engine", "Actor", "Actor")
	title := &uasset.StrValue{Val: "Rusty Sword"}
	a.Exports = append(a.Exports, &uasset.Export{
		ClassIndex: class,
		OuterIndex: pkg,
		ObjectName: a.Names.Intern("Sword", false),
		Payload: &uasset.NormalExport{
			Properties: []*uasset.Property{
				uasset.NewIntProperty(a.Names.Intern("Health", false), 75),
				{Name: a.Names.Intern("Title", false), Value: title},
			},
		},
	})
	a.DependsMap = [][]uasset.PackageIndex{nil}
	return a
}

func exportProps(t *testing.T, a *uasset.Asset) []*uasset.Property {
	t.Helper()
	payload, ok := a.Exports[0].Payload.(*uasset.NormalExport)
	if !ok {
		t.Fatalf("export payload is %T", a.Exports[0].Payload)
	}
	return payload.Properties
}

func TestParseStripsJSONC(t *testing.T) {
	source := []byte(`{
		// Pin the engine this was authored against.
		"engine": "4.27",
		"edits": [
			/* bump durability */
			{"export": "Sword", "set": {"property": "Health", "value": 100}},
		],
	}`)
	spec, err := Parse(source)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if spec.Engine != "4.27" {
		t.Fatalf("engine = %q, want 4.27", spec.Engine)
	}
	if len(spec.Edits) != 1 || spec.Edits[0].Set == nil {
		t.Fatalf("edits = %+v", spec.Edits)
	}
	if spec.Edits[0].Set.Value != float64(100) {
		t.Fatalf("value = %v (%T), want 100", spec.Edits[0].Set.Value, spec.Edits[0].Set.Value)
	}
}

func TestValidateRejectsBadEdits(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"no export", `{"edits": [{"set": {"property": "Health", "value": 1}}]}`},
		{"no action", `{"edits": [{"export": "Sword"}]}`},
		{"two actions", `{"edits": [{"export": "Sword",
			"set": {"property": "Health", "value": 1},
			"remove": {"property": "Title"}}]}`},
		{"add without type", `{"edits": [{"export": "Sword",
			"add": {"property": "Mana", "value": 1}}]}`},
		{"add container type", `{"edits": [{"export": "Sword",
			"add": {"property": "Tags", "type": "ArrayProperty", "value": 1}}]}`},
		{"set without property", `{"edits": [{"export": "Sword",
			"set": {"value": 1}}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.source))
			if !errors.Is(err, ErrInvalidSpec) {
				t.Fatalf("err = %v, want ErrInvalidSpec", err)
			}
		})
	}
}

func TestApplySetAddRemove(t *testing.T) {
	a := testAsset(t)
	spec, err := Parse([]byte(`{
		"edits": [
			{"export": "Sword", "set": {"property": "Health", "value": 120}},
			{"export": "Sword", "set": {"property": "Title", "value": "Gleaming Sword"}},
			{"export": "Sword", "add": {"property": "Mana", "type": "FloatProperty", "value": 12.5}},
			{"export": "Sword", "remove": {"property": "Title"}},
		],
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := Apply(a, spec); err != nil {
		t.Fatalf("apply: %v", err)
	}

	properties := exportProps(t, a)
	if len(properties) != 2 {
		t.Fatalf("export has %d properties, want 2", len(properties))
	}
	health, ok := properties[0].Value.(*uasset.IntValue)
	if !ok || health.Val != 120 {
		t.Fatalf("Health = %+v, want 120", properties[0].Value)
	}
	name, err := a.Names.Resolve(properties[1].Name)
	if err != nil || name != "Mana" {
		t.Fatalf("second property = %q, %v, want Mana", name, err)
	}
	mana, ok := properties[1].Value.(*uasset.FloatValue)
	if !ok || mana.Val != 12.5 {
		t.Fatalf("Mana = %+v, want 12.5", properties[1].Value)
	}

	// Edited assets still encode.
	if _, err := a.Encode(); err != nil {
		t.Fatalf("encode after apply: %v", err)
	}
}

func TestApplyFailures(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"unknown export", `{"edits": [{"export": "Shield",
			"set": {"property": "Health", "value": 1}}]}`},
		{"unknown property", `{"edits": [{"export": "Sword",
			"set": {"property": "Stamina", "value": 1}}]}`},
		{"duplicate add", `{"edits": [{"export": "Sword",
			"add": {"property": "Health", "type": "IntProperty", "value": 1}}]}`},
		{"remove missing", `{"edits": [{"export": "Sword",
			"remove": {"property": "Stamina"}}]}`},
		{"fractional int", `{"edits": [{"export": "Sword",
			"set": {"property": "Health", "value": 1.5}}]}`},
		{"int out of range", `{"edits": [{"export": "Sword",
			"set": {"property": "Health", "value": 3000000000}}]}`},
		{"type mismatch", `{"edits": [{"export": "Sword",
			"set": {"property": "Health", "value": "full"}}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec, err := Parse([]byte(tc.source))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if err := Apply(testAsset(t), spec); !errors.Is(err, ErrApply) {
				t.Fatalf("err = %v, want ErrApply", err)
			}
		})
	}
}

func TestApplyStopsAtFirstFailure(t *testing.T) {
	a := testAsset(t)
	spec, err := Parse([]byte(`{
		"edits": [
			{"export": "Sword", "set": {"property": "Health", "value": 5}},
			{"export": "Sword", "set": {"property": "Missing", "value": 1}},
			{"export": "Sword", "remove": {"property": "Health"}},
		],
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := Apply(a, spec); !errors.Is(err, ErrApply) {
		t.Fatalf("err = %v, want ErrApply", err)
	}
	// The first edit landed, the third never ran.
	properties := exportProps(t, a)
	if len(properties) != 2 {
		t.Fatalf("export has %d properties, want 2", len(properties))
	}
	if health := properties[0].Value.(*uasset.IntValue); health.Val != 5 {
		t.Fatalf("Health = %d, want 5", health.Val)
	}
}
