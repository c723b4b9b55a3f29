// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

import "sort"

// fragmentRunMax is the largest skip or value run one fragment can
// carry; longer runs split into multiple fragments.
const fragmentRunMax = 127

// Fragment is one run-length unit of the unversioned header: skip
// that many schema slots, then materialize that many property values.
// FirstIndex is the in-memory global index of the first value slot;
// it is derived during parse and never serialized.
type Fragment struct {
	SkipNum    int
	ValueNum   int
	FirstIndex int
	IsLast     bool
	HasZeros   bool
}

// pack folds the fragment into its 16-bit wire form: skip count in
// the top 7 bits, the has-zeros flag, the value count, and the
// is-last flag in the bottom bit.
func (f Fragment) pack() uint16 {
	packed := uint16(f.SkipNum) << 9
	if f.HasZeros {
		packed |= 1 << 8
	}
	packed |= uint16(f.ValueNum) << 1
	if f.IsLast {
		packed |= 1
	}
	return packed
}

func unpackFragment(packed uint16) Fragment {
	return Fragment{
		SkipNum:  int(packed >> 9),
		HasZeros: packed&(1<<8) != 0,
		ValueNum: int(packed>>1) & fragmentRunMax,
		IsLast:   packed&1 != 0,
	}
}

// UnversionedHeader is the parsed "which properties are present"
// bitstream: the fragment sequence plus the packed zero mask, one bit
// per value slot across has-zeros fragments in emission order. Built
// once per export during encode, parsed once per export during
// decode, then consumed positionally as properties are read.
type UnversionedHeader struct {
	Fragments []Fragment
	ZeroMask  []byte
	zeroBits  int
}

// HasValues reports whether any fragment materializes properties.
func (h *UnversionedHeader) HasValues() bool {
	for _, fragment := range h.Fragments {
		if fragment.ValueNum > 0 {
			return true
		}
	}
	return false
}

// zeroBit returns the nth bit of the zero mask.
func (h *UnversionedHeader) zeroBit(n int) bool {
	return h.ZeroMask[n/8]&(1<<(n%8)) != 0
}

// zeroMaskBytes returns the serialized mask width for a bit count:
// the mask is loaded as one 8-bit word, one 16-bit word, or a run of
// 32-bit words, whichever is smallest.
func zeroMaskBytes(bits int) int {
	switch {
	case bits == 0:
		return 0
	case bits <= 8:
		return 1
	case bits <= 16:
		return 2
	default:
		return 4 * ((bits + 31) / 32)
	}
}

// parseUnversionedHeader reads fragments until the is-last marker,
// then the trailing zero mask sized by the has-zeros value count.
func parseUnversionedHeader(r *Reader) (*UnversionedHeader, error) {
	header := &UnversionedHeader{}
	globalIndex := 0
	for {
		packed, err := r.U16()
		if err != nil {
			return nil, err
		}
		fragment := unpackFragment(packed)
		globalIndex += fragment.SkipNum
		fragment.FirstIndex = globalIndex
		globalIndex += fragment.ValueNum
		if fragment.HasZeros {
			header.zeroBits += fragment.ValueNum
		}
		header.Fragments = append(header.Fragments, fragment)
		if fragment.IsLast {
			break
		}
	}
	maskLen := zeroMaskBytes(header.zeroBits)
	if maskLen > 0 {
		mask, err := r.Bytes(maskLen)
		if err != nil {
			return nil, err
		}
		header.ZeroMask = append([]byte(nil), mask...)
	}
	return header, nil
}

// writeTo serializes the header: packed fragments, then the mask.
func (h *UnversionedHeader) writeTo(w *Writer) {
	for _, fragment := range h.Fragments {
		w.U16(fragment.pack())
	}
	w.Raw(h.ZeroMask)
}

// slotState is one live property slot feeding the header build.
type slotState struct {
	index int
	zero  bool
}

// buildUnversionedHeader walks contiguous runs of present and absent
// global indices and emits one fragment per run, splitting any run
// longer than 127 slots. Fragments containing a structurally empty
// property set has-zeros and contribute one bit per member to the
// shared mask. With no live slots at all the header is a skip-only
// run covering every schema slot, so a decoder still sees a
// well-formed, is-last-terminated stream.
func buildUnversionedHeader(slots []slotState, totalSlots int) *UnversionedHeader {
	header := &UnversionedHeader{}

	if len(slots) == 0 {
		remaining := totalSlots
		for {
			skip := remaining
			if skip > fragmentRunMax {
				skip = fragmentRunMax
			}
			remaining -= skip
			fragment := Fragment{SkipNum: skip, IsLast: remaining == 0}
			header.Fragments = append(header.Fragments, fragment)
			if fragment.IsLast {
				break
			}
		}
		return header
	}

	sorted := append([]slotState(nil), slots...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].index < sorted[j].index })

	var zeroBits []bool
	cursor := 0
	position := 0
	for position < len(sorted) {
		// One value run: contiguous indices.
		runStart := position
		for position+1 < len(sorted) && sorted[position+1].index == sorted[position].index+1 {
			position++
		}
		position++
		run := sorted[runStart:position]

		skip := run[0].index - cursor
		for skip > fragmentRunMax {
			header.Fragments = append(header.Fragments, Fragment{SkipNum: fragmentRunMax})
			skip -= fragmentRunMax
		}

		for len(run) > 0 {
			take := len(run)
			if take > fragmentRunMax {
				take = fragmentRunMax
			}
			fragment := Fragment{
				SkipNum:    skip,
				ValueNum:   take,
				FirstIndex: run[0].index,
			}
			skip = 0
			for _, slot := range run[:take] {
				if slot.zero {
					fragment.HasZeros = true
				}
			}
			if fragment.HasZeros {
				for _, slot := range run[:take] {
					zeroBits = append(zeroBits, slot.zero)
				}
			}
			header.Fragments = append(header.Fragments, fragment)
			run = run[take:]
		}
		cursor = sorted[position-1].index + 1
	}
	header.Fragments[len(header.Fragments)-1].IsLast = true

	header.zeroBits = len(zeroBits)
	if maskLen := zeroMaskBytes(len(zeroBits)); maskLen > 0 {
		header.ZeroMask = make([]byte, maskLen)
		for i, bit := range zeroBits {
			if bit {
				header.ZeroMask[i/8] |= 1 << (i % 8)
			}
		}
	}
	return header
}

// readUnversionedProperties decodes one property set for the named
// owning type using the supplied schema: parse the header, then
// materialize each value slot in order, consulting the zero mask for
// present-but-empty slots, which occupy a slot without payload bytes
// (the unversioned counterpart of the versioned None sentinel).
func readUnversionedProperties(cc *codecContext, r *Reader, typeName string) ([]*Property, error) {
	if cc.schema == nil {
		return nil, noSchema("unversioned decode of %q with no schema supplied", typeName)
	}
	header, err := parseUnversionedHeader(r)
	if err != nil {
		return nil, err
	}

	var properties []*Property
	zeroCursor := 0
	for _, fragment := range header.Fragments {
		for offset := 0; offset < fragment.ValueNum; offset++ {
			slot := fragment.FirstIndex + offset
			schemaProperty, err := cc.schema.PropertyAt(typeName, slot)
			if err != nil {
				return nil, err
			}
			isZero := false
			if fragment.HasZeros {
				isZero = header.zeroBit(zeroCursor)
				zeroCursor++
			}
			value := valueForSchemaType(schemaProperty.Type)
			if !isZero {
				if err := value.decodeValue(cc, r, 0, false); err != nil {
					return nil, propertyError(schemaProperty.Name, err)
				}
			}
			properties = append(properties, &Property{
				Name:             cc.names.Intern(schemaProperty.Name, false),
				DuplicationIndex: int32(schemaProperty.DupIndex),
				Value:            value,
			})
		}
	}
	return properties, nil
}

// writeUnversionedProperties encodes one property set for the named
// owning type: map every live property to its global slot, build the
// header, then write the non-zero payloads in slot order. A property
// the schema does not know is a fatal encode error; nothing is
// guessed.
func writeUnversionedProperties(cc *codecContext, w *Writer, typeName string, properties []*Property) error {
	if cc.schema == nil {
		return noSchema("unversioned encode of %q with no schema supplied", typeName)
	}

	type slotProperty struct {
		state    slotState
		property *Property
	}
	slotted := make([]slotProperty, 0, len(properties))
	for _, property := range properties {
		name, err := cc.names.Resolve(property.Name)
		if err != nil {
			return err
		}
		index, err := cc.schema.GlobalIndex(typeName, name, int(property.DuplicationIndex))
		if err != nil {
			return err
		}
		slotted = append(slotted, slotProperty{
			state:    slotState{index: index, zero: property.Value.IsZero()},
			property: property,
		})
	}
	sort.Slice(slotted, func(i, j int) bool { return slotted[i].state.index < slotted[j].state.index })

	slots := make([]slotState, len(slotted))
	for i, sp := range slotted {
		slots[i] = sp.state
	}
	totalSlots := 0
	if len(slots) == 0 {
		count, err := cc.schema.PropertyCount(typeName)
		if err != nil {
			return err
		}
		totalSlots = count
	}
	header := buildUnversionedHeader(slots, totalSlots)
	header.writeTo(w)

	for _, sp := range slotted {
		if sp.state.zero {
			continue
		}
		if err := sp.property.Value.encodeValue(cc, w, false); err != nil {
			return err
		}
	}
	return nil
}
