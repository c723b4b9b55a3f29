// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

// StructValue is a StructProperty payload: a nested value whose
// concrete shape depends on the struct type named in the tag. Types
// in structRegistry serialize as fixed binary records; everything
// else is a self-contained tagged property list terminated by the
// None sentinel, exactly like an export's own list.
type StructValue struct {
	// StructType is the struct type name from the tag (or, for
	// container elements and unversioned decode, from the shared
	// inner tag or the schema).
	StructType string

	// Guid is the struct guid from the tag, serialized at or past
	// [VerStructGuidInPropertyTag]. Zero for most cooked content.
	Guid Guid

	// Exactly one of the payload forms is live: Binary for
	// registered fixed-layout types, Fields for the tagged list, Raw
	// when a standalone unregistered struct failed list decoding and
	// was preserved verbatim.
	Binary Value
	Fields []*Property
	Raw    []byte
}

func (*StructValue) TypeName() string { return "StructProperty" }

func (v *StructValue) IsZero() bool {
	if v.Binary != nil {
		return v.Binary.IsZero()
	}
	return len(v.Fields) == 0 && len(v.Raw) == 0
}

func (v *StructValue) decodeTagExtras(cc *codecContext, r *Reader) error {
	_, structType, err := cc.readNameRef(r)
	if err != nil {
		return err
	}
	v.StructType = structType
	if cc.ctx.Supports(VerStructGuidInPropertyTag) {
		if v.Guid, err = r.Guid(); err != nil {
			return err
		}
	}
	return nil
}

func (v *StructValue) encodeTagExtras(cc *codecContext, w *Writer) error {
	if v.StructType == "" {
		return invalidProperty("struct cannot encode: no declared struct type")
	}
	w.NameRefRaw(cc.names.Intern(v.StructType, false))
	if cc.ctx.Supports(VerStructGuidInPropertyTag) {
		w.Guid(v.Guid)
	}
	return nil
}

func (v *StructValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	if factory, ok := structRegistry[v.StructType]; ok {
		v.Binary = factory(v.StructType)
		return v.Binary.decodeValue(cc, r, size, false)
	}

	if cc.unversioned {
		fields, err := readUnversionedProperties(cc, r, v.StructType)
		if err != nil {
			return err
		}
		v.Fields = fields
		return nil
	}

	start := r.Offset()
	fields, err := readPropertyList(cc, r)
	if err == nil {
		v.Fields = fields
		return nil
	}
	// A standalone struct of an unregistered binary type reads as a
	// broken property list. The tag's length frames it, so keep the
	// payload verbatim rather than poisoning the export. Container
	// elements have no per-element length and cannot fall back.
	if !header {
		return err
	}
	if seekErr := r.Seek(start); seekErr != nil {
		return seekErr
	}
	raw, rawErr := r.Bytes(size)
	if rawErr != nil {
		return rawErr
	}
	v.Raw = append([]byte(nil), raw...)
	return nil
}

func (v *StructValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	if v.Binary != nil {
		return v.Binary.encodeValue(cc, w, false)
	}
	if v.Raw != nil {
		w.Raw(v.Raw)
		return nil
	}
	if cc.unversioned {
		return writeUnversionedProperties(cc, w, v.StructType, v.Fields)
	}
	return writePropertyList(cc, w, v.Fields)
}

// Field returns the first field with the given name, resolved against
// the owning table. Editing helpers use it for surgical updates.
func (v *StructValue) Field(cc *codecContext, name string) *Property {
	for _, field := range v.Fields {
		if resolved, err := cc.names.Resolve(field.Name); err == nil && resolved == name {
			return field
		}
	}
	return nil
}

// structFactory builds the binary form for one registered struct
// type; the name parameter lets shared implementations (vectors,
// soft paths) know which type they are.
type structFactory func(name string) Value

// structRegistry maps struct type names to their fixed binary
// layouts. Struct types outside this table serialize as tagged
// property lists. Kept in one place for the same no-drift reason as
// valueRegistry.
var structRegistry = map[string]structFactory{
	"Vector":   newVectorStruct(3),
	"Rotator":  newVectorStruct(3),
	"Vector2D": newVectorStruct(2),
	"Vector4":  newVectorStruct(4),
	"Quat":     newVectorStruct(4),
	"Plane":    newVectorStruct(4),

	"IntPoint":  newIntVectorStruct(2),
	"IntVector": newIntVectorStruct(3),

	"Color":       func(name string) Value { return &ColorStruct{} },
	"LinearColor": func(name string) Value { return &LinearColorStruct{} },

	"Guid": func(name string) Value { return &GuidStruct{} },

	"DateTime":    newTickStruct,
	"Timespan":    newTickStruct,
	"FrameNumber": func(name string) Value { return &FrameNumberStruct{} },

	"Box": func(name string) Value { return &BoxStruct{} },

	"SoftObjectPath": newSoftPathStruct,
	"SoftClassPath":  newSoftPathStruct,
}

// VectorStruct covers the float vector family (Vector, Rotator,
// Vector2D, Vector4, Quat, Plane): dims little-endian floats, 32-bit
// historically, 64-bit once large world coordinates landed.
type VectorStruct struct {
	kind string
	Vals []float64
}

func newVectorStruct(dims int) structFactory {
	return func(name string) Value {
		return &VectorStruct{kind: name, Vals: make([]float64, dims)}
	}
}

func (v *VectorStruct) TypeName() string { return v.kind }

func (v *VectorStruct) IsZero() bool {
	for _, value := range v.Vals {
		if value != 0 {
			return false
		}
	}
	return true
}

func (v *VectorStruct) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	wide := cc.ctx.SupportsUE5(UE5LargeWorldCoordinates)
	for i := range v.Vals {
		if wide {
			value, err := r.F64()
			if err != nil {
				return err
			}
			v.Vals[i] = value
		} else {
			value, err := r.F32()
			if err != nil {
				return err
			}
			v.Vals[i] = float64(value)
		}
	}
	return nil
}

func (v *VectorStruct) encodeValue(cc *codecContext, w *Writer, header bool) error {
	wide := cc.ctx.SupportsUE5(UE5LargeWorldCoordinates)
	for _, value := range v.Vals {
		if wide {
			w.F64(value)
		} else {
			w.F32(float32(value))
		}
	}
	return nil
}

// IntVectorStruct covers IntPoint and IntVector: dims int32s.
type IntVectorStruct struct {
	kind string
	Vals []int32
}

func newIntVectorStruct(dims int) structFactory {
	return func(name string) Value {
		return &IntVectorStruct{kind: name, Vals: make([]int32, dims)}
	}
}

func (v *IntVectorStruct) TypeName() string { return v.kind }

func (v *IntVectorStruct) IsZero() bool {
	for _, value := range v.Vals {
		if value != 0 {
			return false
		}
	}
	return true
}

func (v *IntVectorStruct) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	for i := range v.Vals {
		value, err := r.I32()
		if err != nil {
			return err
		}
		v.Vals[i] = value
	}
	return nil
}

func (v *IntVectorStruct) encodeValue(cc *codecContext, w *Writer, header bool) error {
	for _, value := range v.Vals {
		w.I32(value)
	}
	return nil
}

// ColorStruct is the 4-byte BGRA color.
type ColorStruct struct {
	B, G, R, A uint8
}

func (*ColorStruct) TypeName() string { return "Color" }

func (v *ColorStruct) IsZero() bool { return *v == ColorStruct{} }

func (v *ColorStruct) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	b, err := r.Bytes(4)
	if err != nil {
		return err
	}
	v.B, v.G, v.R, v.A = b[0], b[1], b[2], b[3]
	return nil
}

func (v *ColorStruct) encodeValue(cc *codecContext, w *Writer, header bool) error {
	w.Raw([]byte{v.B, v.G, v.R, v.A})
	return nil
}

// LinearColorStruct is the 4-float RGBA color.
type LinearColorStruct struct {
	R, G, B, A float32
}

func (*LinearColorStruct) TypeName() string { return "LinearColor" }

func (v *LinearColorStruct) IsZero() bool { return *v == LinearColorStruct{} }

func (v *LinearColorStruct) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	for _, p := range []*float32{&v.R, &v.G, &v.B, &v.A} {
		value, err := r.F32()
		if err != nil {
			return err
		}
		*p = value
	}
	return nil
}

func (v *LinearColorStruct) encodeValue(cc *codecContext, w *Writer, header bool) error {
	w.F32(v.R)
	w.F32(v.G)
	w.F32(v.B)
	w.F32(v.A)
	return nil
}

// GuidStruct is a 16-byte guid payload.
type GuidStruct struct {
	Val Guid
}

func (*GuidStruct) TypeName() string { return "Guid" }

func (v *GuidStruct) IsZero() bool { return v.Val.IsZero() }

func (v *GuidStruct) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	g, err := r.Guid()
	if err != nil {
		return err
	}
	v.Val = g
	return nil
}

func (v *GuidStruct) encodeValue(cc *codecContext, w *Writer, header bool) error {
	w.Guid(v.Val)
	return nil
}

// TickStruct covers DateTime and Timespan: one signed 64-bit tick
// count.
type TickStruct struct {
	kind  string
	Ticks int64
}

func newTickStruct(name string) Value {
	return &TickStruct{kind: name}
}

func (v *TickStruct) TypeName() string { return v.kind }

func (v *TickStruct) IsZero() bool { return v.Ticks == 0 }

func (v *TickStruct) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	ticks, err := r.I64()
	if err != nil {
		return err
	}
	v.Ticks = ticks
	return nil
}

func (v *TickStruct) encodeValue(cc *codecContext, w *Writer, header bool) error {
	w.I64(v.Ticks)
	return nil
}

// FrameNumberStruct is one int32 frame counter.
type FrameNumberStruct struct {
	Val int32
}

func (*FrameNumberStruct) TypeName() string { return "FrameNumber" }

func (v *FrameNumberStruct) IsZero() bool { return v.Val == 0 }

func (v *FrameNumberStruct) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	value, err := r.I32()
	if err != nil {
		return err
	}
	v.Val = value
	return nil
}

func (v *FrameNumberStruct) encodeValue(cc *codecContext, w *Writer, header bool) error {
	w.I32(v.Val)
	return nil
}

// BoxStruct is an axis-aligned box: min and max vectors plus the
// validity byte.
type BoxStruct struct {
	Min, Max [3]float64
	IsValid  uint8
}

func (*BoxStruct) TypeName() string { return "Box" }

func (v *BoxStruct) IsZero() bool { return *v == BoxStruct{} }

func (v *BoxStruct) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	wide := cc.ctx.SupportsUE5(UE5LargeWorldCoordinates)
	for _, vec := range []*[3]float64{&v.Min, &v.Max} {
		for i := range vec {
			if wide {
				value, err := r.F64()
				if err != nil {
					return err
				}
				vec[i] = value
			} else {
				value, err := r.F32()
				if err != nil {
					return err
				}
				vec[i] = float64(value)
			}
		}
	}
	isValid, err := r.U8()
	if err != nil {
		return err
	}
	v.IsValid = isValid
	return nil
}

func (v *BoxStruct) encodeValue(cc *codecContext, w *Writer, header bool) error {
	wide := cc.ctx.SupportsUE5(UE5LargeWorldCoordinates)
	for _, vec := range []*[3]float64{&v.Min, &v.Max} {
		for _, value := range vec {
			if wide {
				w.F64(value)
			} else {
				w.F32(float32(value))
			}
		}
	}
	w.U8(v.IsValid)
	return nil
}

// SoftPathStruct covers SoftObjectPath and SoftClassPath binary
// payloads, which share the soft object property's wire shape.
type SoftPathStruct struct {
	kind string
	SoftObjectValue
}

func newSoftPathStruct(name string) Value {
	return &SoftPathStruct{kind: name}
}

func (v *SoftPathStruct) TypeName() string { return v.kind }
