// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

// The numeric variants (8/16/32/64-bit signed and unsigned integers,
// both float widths) share one wire shape differing only in width, so
// they are one parameterized family rather than ten hand-rolled
// readers. Each named alias below pins the width and the wire type
// name; the shared decode and encode live on numericValue.

type numericKind interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

type numericValue[T numericKind] struct {
	Val T
}

func (v *numericValue[T]) IsZero() bool {
	return v.Val == 0
}

func (v *numericValue[T]) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	switch p := any(&v.Val).(type) {
	case *int8:
		x, err := r.I8()
		if err != nil {
			return err
		}
		*p = x
	case *int16:
		x, err := r.I16()
		if err != nil {
			return err
		}
		*p = x
	case *int32:
		x, err := r.I32()
		if err != nil {
			return err
		}
		*p = x
	case *int64:
		x, err := r.I64()
		if err != nil {
			return err
		}
		*p = x
	case *uint16:
		x, err := r.U16()
		if err != nil {
			return err
		}
		*p = x
	case *uint32:
		x, err := r.U32()
		if err != nil {
			return err
		}
		*p = x
	case *uint64:
		x, err := r.U64()
		if err != nil {
			return err
		}
		*p = x
	case *float32:
		x, err := r.F32()
		if err != nil {
			return err
		}
		*p = x
	case *float64:
		x, err := r.F64()
		if err != nil {
			return err
		}
		*p = x
	}
	return nil
}

func (v *numericValue[T]) encodeValue(cc *codecContext, w *Writer, header bool) error {
	switch p := any(&v.Val).(type) {
	case *int8:
		w.I8(*p)
	case *int16:
		w.I16(*p)
	case *int32:
		w.I32(*p)
	case *int64:
		w.I64(*p)
	case *uint16:
		w.U16(*p)
	case *uint32:
		w.U32(*p)
	case *uint64:
		w.U64(*p)
	case *float32:
		w.F32(*p)
	case *float64:
		w.F64(*p)
	}
	return nil
}

// Int8Value is an Int8Property payload.
type Int8Value struct{ numericValue[int8] }

// Int16Value is an Int16Property payload.
type Int16Value struct{ numericValue[int16] }

// IntValue is an IntProperty payload (the format's plain int is 32
// bits).
type IntValue struct{ numericValue[int32] }

// Int64Value is an Int64Property payload.
type Int64Value struct{ numericValue[int64] }

// UInt16Value is a UInt16Property payload.
type UInt16Value struct{ numericValue[uint16] }

// UInt32Value is a UInt32Property payload.
type UInt32Value struct{ numericValue[uint32] }

// UInt64Value is a UInt64Property payload.
type UInt64Value struct{ numericValue[uint64] }

// FloatValue is a FloatProperty payload.
type FloatValue struct{ numericValue[float32] }

// DoubleValue is a DoubleProperty payload.
type DoubleValue struct{ numericValue[float64] }

func (*Int8Value) TypeName() string   { return "Int8Property" }
func (*Int16Value) TypeName() string  { return "Int16Property" }
func (*IntValue) TypeName() string    { return "IntProperty" }
func (*Int64Value) TypeName() string  { return "Int64Property" }
func (*UInt16Value) TypeName() string { return "UInt16Property" }
func (*UInt32Value) TypeName() string { return "UInt32Property" }
func (*UInt64Value) TypeName() string { return "UInt64Property" }
func (*FloatValue) TypeName() string  { return "FloatProperty" }
func (*DoubleValue) TypeName() string { return "DoubleProperty" }

// NewIntProperty is a convenience constructor used by editing tools:
// a named IntProperty with the given value.
func NewIntProperty(name NameRef, value int32) *Property {
	return &Property{Name: name, Value: &IntValue{numericValue[int32]{Val: value}}}
}
