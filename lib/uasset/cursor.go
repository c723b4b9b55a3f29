// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

import (
	"encoding/binary"
	"math"
	"unicode/utf16"
)

// Reader is the decode cursor: a straight-line pass over a complete
// in-memory byte buffer. Every read advances by exactly the bytes the
// field occupies; there is no buffering, no I/O, and no speculative
// lookahead. Reads past the end report [ErrMalformedFile] with the
// offending offset.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a cursor over data, positioned at the start. The
// buffer is not copied; the caller must not mutate it during decode.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the current cursor position.
func (r *Reader) Offset() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Seek moves the cursor to an absolute offset.
func (r *Reader) Seek(offset int) error {
	if offset < 0 || offset > len(r.data) {
		return malformed("seek to %d outside buffer of %d bytes", offset, len(r.data))
	}
	r.pos = offset
	return nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || r.pos+n > len(r.data) {
		return malformed("skip %d bytes at offset %d exceeds buffer of %d bytes", n, r.pos, len(r.data))
	}
	r.pos += n
	return nil
}

// Bytes reads exactly n bytes. The returned slice aliases the backing
// buffer; callers that retain it past the decode must copy.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, malformed("negative byte count %d at offset %d", n, r.pos)
	}
	if r.pos+n > len(r.data) {
		return nil, malformed("%d bytes wanted at offset %d, only %d remain", n, r.pos, len(r.data)-r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// U8 reads one unsigned byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// I8 reads one signed byte.
func (r *Reader) I8() (int8, error) {
	v, err := r.U8()
	return int8(v), err
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// I16 reads a little-endian int16.
func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// I32 reads a little-endian int32.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() (uint64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// I64 reads a little-endian int64.
func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

// F32 reads a little-endian IEEE 754 single.
func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	return math.Float32frombits(v), err
}

// F64 reads a little-endian IEEE 754 double.
func (r *Reader) F64() (float64, error) {
	v, err := r.U64()
	return math.Float64frombits(v), err
}

// Bool32 reads the format's 4-byte boolean: any non-zero value is
// true. Used by summary and export table fields.
func (r *Reader) Bool32() (bool, error) {
	v, err := r.U32()
	return v != 0, err
}

// Guid reads a 16-byte guid.
func (r *Reader) Guid() (Guid, error) {
	b, err := r.Bytes(16)
	if err != nil {
		return Guid{}, err
	}
	var g Guid
	copy(g[:], b)
	return g, nil
}

// FString reads the format's length-prefixed string: an int32 length
// including the terminator, positive for one-byte characters, negative
// for UTF-16LE code units, zero for the empty string.
func (r *Reader) FString() (string, error) {
	length, err := r.I32()
	if err != nil {
		return "", err
	}
	switch {
	case length == 0:
		return "", nil
	case length > 0:
		b, err := r.Bytes(int(length))
		if err != nil {
			return "", err
		}
		if b[length-1] != 0 {
			return "", malformed("string at offset %d missing NUL terminator", r.pos-int(length))
		}
		return string(b[:length-1]), nil
	default:
		units := -int(length)
		b, err := r.Bytes(units * 2)
		if err != nil {
			return "", err
		}
		decoded := make([]uint16, units)
		for i := range decoded {
			decoded[i] = binary.LittleEndian.Uint16(b[i*2:])
		}
		if decoded[units-1] != 0 {
			return "", malformed("wide string at offset %d missing NUL terminator", r.pos-units*2)
		}
		return string(utf16.Decode(decoded[:units-1])), nil
	}
}

// NameRefRaw reads the two int32s of a serialized name reference
// without bounds-checking against any table. Callers that have an
// owning asset use [Asset.ReadNameRef] instead.
func (r *Reader) NameRefRaw() (NameRef, error) {
	index, err := r.I32()
	if err != nil {
		return NameRef{}, err
	}
	number, err := r.I32()
	if err != nil {
		return NameRef{}, err
	}
	return NameRef{Index: index, Number: number}, nil
}

// Placeholder marks a reserved fixed-width field in a [Writer] whose
// true value is patched in once known.
type Placeholder int

// Writer is the encode cursor: an append-only buffer plus the single
// sanctioned backward-patch mechanism. Length and offset fields whose
// values depend on bytes not yet written are reserved with a
// [Placeholder] and patched after the payload lands; the patch writes
// into already-emitted bytes and never disturbs the forward position,
// which keeps interleaved container encodes safe.
type Writer struct {
	buf []byte
}

// NewWriter creates an empty encode buffer.
func NewWriter() *Writer {
	return &Writer{}
}

// Len returns the number of bytes written so far (the forward cursor).
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the encoded buffer. The slice aliases internal
// storage; it is valid until the next write.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Raw appends bytes verbatim.
func (w *Writer) Raw(b []byte) {
	w.buf = append(w.buf, b...)
}

// U8 appends one byte.
func (w *Writer) U8(v uint8) {
	w.buf = append(w.buf, v)
}

// I8 appends one signed byte.
func (w *Writer) I8(v int8) {
	w.U8(uint8(v))
}

// U16 appends a little-endian uint16.
func (w *Writer) U16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// I16 appends a little-endian int16.
func (w *Writer) I16(v int16) {
	w.U16(uint16(v))
}

// U32 appends a little-endian uint32.
func (w *Writer) U32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// I32 appends a little-endian int32.
func (w *Writer) I32(v int32) {
	w.U32(uint32(v))
}

// U64 appends a little-endian uint64.
func (w *Writer) U64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// I64 appends a little-endian int64.
func (w *Writer) I64(v int64) {
	w.U64(uint64(v))
}

// F32 appends a little-endian IEEE 754 single.
func (w *Writer) F32(v float32) {
	w.U32(math.Float32bits(v))
}

// F64 appends a little-endian IEEE 754 double.
func (w *Writer) F64(v float64) {
	w.U64(math.Float64bits(v))
}

// Bool32 appends the 4-byte boolean.
func (w *Writer) Bool32(v bool) {
	if v {
		w.U32(1)
	} else {
		w.U32(0)
	}
}

// Guid appends a 16-byte guid.
func (w *Writer) Guid(g Guid) {
	w.Raw(g[:])
}

// FString appends a length-prefixed string: empty as length 0, pure
// one-byte text as a positive length, anything else as negated UTF-16
// code units. Both forms include the NUL terminator in the count.
func (w *Writer) FString(s string) {
	if s == "" {
		w.I32(0)
		return
	}
	narrow := true
	for _, c := range s {
		if c > 0x7F {
			narrow = false
			break
		}
	}
	if narrow {
		w.I32(int32(len(s) + 1))
		w.Raw([]byte(s))
		w.U8(0)
		return
	}
	units := utf16.Encode([]rune(s))
	w.I32(int32(-(len(units) + 1)))
	for _, u := range units {
		w.U16(u)
	}
	w.U16(0)
}

// NameRefRaw appends the two int32s of a name reference.
func (w *Writer) NameRefRaw(n NameRef) {
	w.I32(n.Index)
	w.I32(n.Number)
}

// ReserveI32 reserves a 4-byte field to be patched later.
func (w *Writer) ReserveI32() Placeholder {
	at := Placeholder(len(w.buf))
	w.I32(0)
	return at
}

// ReserveI64 reserves an 8-byte field to be patched later.
func (w *Writer) ReserveI64() Placeholder {
	at := Placeholder(len(w.buf))
	w.I64(0)
	return at
}

// PatchI32 writes the true value of a reserved 4-byte field. The
// forward cursor is untouched.
func (w *Writer) PatchI32(at Placeholder, v int32) {
	binary.LittleEndian.PutUint32(w.buf[at:], uint32(v))
}

// PatchI64 writes the true value of a reserved 8-byte field.
func (w *Writer) PatchI64(at Placeholder, v int64) {
	binary.LittleEndian.PutUint64(w.buf[at:], uint64(v))
}

// SizeSince returns the bytes written after the reserved field's own
// storage — the usual "payload length" a placeholder is patched with.
func (w *Writer) SizeSince(after Placeholder, width int) int {
	return len(w.buf) - int(after) - width
}
