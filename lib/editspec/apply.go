// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package editspec

import (
	"errors"
	"fmt"
	"math"

	"github.com/uassetkit/uassetkit/lib/uasset"
)

// ErrApply marks an edit that could not be applied to the asset:
// unknown export, unknown property, or a value that does not fit the
// property's wire type.
var ErrApply = errors.New("editspec: edit failed")

func applyError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrApply, fmt.Sprintf(format, args...))
}

// addableTypes lists the wire types Add can create. Container and
// struct values need structure a flat JSON value cannot express.
var addableTypes = map[string]func() uasset.Value{
	"IntProperty":    func() uasset.Value { return &uasset.IntValue{} },
	"Int64Property":  func() uasset.Value { return &uasset.Int64Value{} },
	"UInt32Property": func() uasset.Value { return &uasset.UInt32Value{} },
	"FloatProperty":  func() uasset.Value { return &uasset.FloatValue{} },
	"DoubleProperty": func() uasset.Value { return &uasset.DoubleValue{} },
	"BoolProperty":   func() uasset.Value { return &uasset.BoolValue{} },
	"StrProperty":    func() uasset.Value { return &uasset.StrValue{} },
	"NameProperty":   func() uasset.Value { return &uasset.NameValue{} },
}

// Apply mutates a decoded asset in place. Edits apply in order; the
// first failure stops the batch and reports which edit failed.
func Apply(a *uasset.Asset, spec *Spec) error {
	for i, edit := range spec.Edits {
		if err := applyOne(a, &edit); err != nil {
			return fmt.Errorf("edit %d (export %q): %w", i, edit.Export, err)
		}
	}
	return nil
}

func applyOne(a *uasset.Asset, edit *Edit) error {
	properties, err := exportProperties(a, edit.Export)
	if err != nil {
		return err
	}

	switch {
	case edit.Set != nil:
		p := findProperty(a, *properties, edit.Set.Property, edit.Set.Dup)
		if p == nil {
			return applyError("no property %q dup %d", edit.Set.Property, edit.Set.Dup)
		}
		return assignValue(a, p.Value, edit.Set.Value)

	case edit.Add != nil:
		if existing := findProperty(a, *properties, edit.Add.Property, edit.Add.Dup); existing != nil {
			return applyError("property %q dup %d already present", edit.Add.Property, edit.Add.Dup)
		}
		construct, ok := addableTypes[edit.Add.Type]
		if !ok {
			return applyError("unsupported property type %q", edit.Add.Type)
		}
		value := construct()
		if err := assignValue(a, value, edit.Add.Value); err != nil {
			return err
		}
		*properties = append(*properties, &uasset.Property{
			Name:             a.Names.Intern(edit.Add.Property, false),
			DuplicationIndex: int32(edit.Add.Dup),
			Value:            value,
		})
		return nil

	case edit.Remove != nil:
		list := *properties
		for i, p := range list {
			if propertyMatches(a, p, edit.Remove.Property, edit.Remove.Dup) {
				*properties = append(list[:i], list[i+1:]...)
				return nil
			}
		}
		return applyError("no property %q dup %d", edit.Remove.Property, edit.Remove.Dup)
	}
	return applyError("edit has no action")
}

// exportProperties locates the editable property list of a named
// export. Only the payload variants that carry a plain tagged list
// are editable.
func exportProperties(a *uasset.Asset, exportName string) (*[]*uasset.Property, error) {
	for _, e := range a.Exports {
		name, err := a.Names.Resolve(e.ObjectName)
		if err != nil || name != exportName {
			continue
		}
		switch payload := e.Payload.(type) {
		case *uasset.NormalExport:
			return &payload.Properties, nil
		case *uasset.StructExport:
			return &payload.Properties, nil
		default:
			return nil, applyError("export payload %T is not editable", e.Payload)
		}
	}
	return nil, applyError("no export named %q", exportName)
}

func propertyMatches(a *uasset.Asset, p *uasset.Property, name string, dup int) bool {
	resolved, err := a.Names.Resolve(p.Name)
	return err == nil && resolved == name && p.DuplicationIndex == int32(dup)
}

func findProperty(a *uasset.Asset, list []*uasset.Property, name string, dup int) *uasset.Property {
	for _, p := range list {
		if propertyMatches(a, p, name, dup) {
			return p
		}
	}
	return nil
}

// assignValue pours a decoded JSON value into a property payload.
// JSON numbers arrive as float64; integral targets demand an
// integral value in range.
func assignValue(a *uasset.Asset, target uasset.Value, value any) error {
	switch typed := target.(type) {
	case *uasset.IntValue:
		n, err := integralValue(value, math.MinInt32, math.MaxInt32)
		if err != nil {
			return err
		}
		typed.Val = int32(n)
	case *uasset.Int64Value:
		n, err := integralValue(value, math.MinInt64, math.MaxInt64)
		if err != nil {
			return err
		}
		typed.Val = n
	case *uasset.UInt32Value:
		n, err := integralValue(value, 0, math.MaxUint32)
		if err != nil {
			return err
		}
		typed.Val = uint32(n)
	case *uasset.FloatValue:
		n, ok := value.(float64)
		if !ok {
			return applyError("value %v is not a number", value)
		}
		typed.Val = float32(n)
	case *uasset.DoubleValue:
		n, ok := value.(float64)
		if !ok {
			return applyError("value %v is not a number", value)
		}
		typed.Val = n
	case *uasset.BoolValue:
		b, ok := value.(bool)
		if !ok {
			return applyError("value %v is not a bool", value)
		}
		typed.Val = b
	case *uasset.StrValue:
		s, ok := value.(string)
		if !ok {
			return applyError("value %v is not a string", value)
		}
		typed.Val = s
	case *uasset.NameValue:
		s, ok := value.(string)
		if !ok {
			return applyError("value %v is not a string", value)
		}
		typed.Val = a.Names.Intern(s, false)
	default:
		return applyError("property type %T is not editable", target)
	}
	return nil
}

// integralValue checks that a JSON number is integral and in range.
func integralValue(value any, min, max int64) (int64, error) {
	n, ok := value.(float64)
	if !ok {
		return 0, applyError("value %v is not a number", value)
	}
	if n != math.Trunc(n) {
		return 0, applyError("value %v is not integral", value)
	}
	if n < float64(min) || n > float64(max) {
		return 0, applyError("value %v out of range [%d, %d]", value, min, max)
	}
	return int64(n), nil
}
