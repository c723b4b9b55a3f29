// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

// EnumEntry is one (name, value) pair of a serialized enum. Values
// were implicit positions before [VerTightlyPackedEnums] and one byte
// wide before the [CoreEnumProperties] revision; both legacy shapes
// normalize into the int64 field on decode and re-encode in their
// original width.
type EnumEntry struct {
	Name  NameRef
	Value int64
}

// Enum cpp-form values serialized in the enum export.
const (
	EnumCppFormRegular    uint8 = 0
	EnumCppFormNamespaced uint8 = 1
	EnumCppFormEnumClass  uint8 = 2
)

// EnumExport is a UEnum or editor-authored enum.
type EnumExport struct {
	Properties []*Property
	GuardValue int32
	Entries    []EnumEntry
	CppForm    uint8
	Extras     []byte
}

func (*EnumExport) Kind() string { return "Enum" }

func (en *EnumExport) decodePayload(cc *codecContext, a *Asset, e *Export, r *Reader, size int) error {
	start := r.Offset()
	properties, err := readExportProperties(cc, a, e, r)
	if err != nil {
		return err
	}
	en.Properties = properties
	if en.GuardValue, err = r.I32(); err != nil {
		return err
	}

	count, err := r.I32()
	if err != nil {
		return err
	}
	if count < 0 {
		return malformed("enum export declares %d entries", count)
	}
	en.Entries = make([]EnumEntry, count)
	for i := range en.Entries {
		entry := &en.Entries[i]
		if entry.Name, _, err = cc.readNameRef(r); err != nil {
			return err
		}
		switch {
		case !cc.ctx.Supports(VerTightlyPackedEnums):
			entry.Value = int64(i)
		case cc.ctx.Custom(CustomVersionCore) < CoreEnumProperties:
			v, err := r.U8()
			if err != nil {
				return err
			}
			entry.Value = int64(v)
		default:
			if entry.Value, err = r.I64(); err != nil {
				return err
			}
		}
	}

	if cc.ctx.Supports(VerEnumClassSupport) {
		if en.CppForm, err = r.U8(); err != nil {
			return err
		}
	} else {
		namespaced, err := r.Bool32()
		if err != nil {
			return err
		}
		if namespaced {
			en.CppForm = EnumCppFormNamespaced
		} else {
			en.CppForm = EnumCppFormRegular
		}
	}

	extras, err := captureExtras(r, start, size)
	if err != nil {
		return err
	}
	en.Extras = extras
	return nil
}

func (en *EnumExport) encodePayload(cc *codecContext, a *Asset, e *Export, w *Writer) error {
	if err := writeExportProperties(cc, a, e, w, en.Properties); err != nil {
		return err
	}
	w.I32(en.GuardValue)
	w.I32(int32(len(en.Entries)))
	for _, entry := range en.Entries {
		w.NameRefRaw(entry.Name)
		switch {
		case !cc.ctx.Supports(VerTightlyPackedEnums):
			// Implicit positional values; nothing on the wire.
		case cc.ctx.Custom(CustomVersionCore) < CoreEnumProperties:
			w.U8(uint8(entry.Value))
		default:
			w.I64(entry.Value)
		}
	}
	if cc.ctx.Supports(VerEnumClassSupport) {
		w.U8(en.CppForm)
	} else {
		w.Bool32(en.CppForm == EnumCppFormNamespaced)
	}
	w.Raw(en.Extras)
	return nil
}

// StringTableEntry is one localized (key, source string) pair.
type StringTableEntry struct {
	Key   string
	Value string
}

// StringTableExport is a string table asset: a namespace plus ordered
// key/value rows. Per-key metadata, if present, lands in Extras.
type StringTableExport struct {
	Properties []*Property
	GuardValue int32
	Namespace  string
	Entries    []StringTableEntry
	Extras     []byte
}

func (*StringTableExport) Kind() string { return "StringTable" }

func (st *StringTableExport) decodePayload(cc *codecContext, a *Asset, e *Export, r *Reader, size int) error {
	start := r.Offset()
	properties, err := readExportProperties(cc, a, e, r)
	if err != nil {
		return err
	}
	st.Properties = properties
	if st.GuardValue, err = r.I32(); err != nil {
		return err
	}
	if st.Namespace, err = r.FString(); err != nil {
		return err
	}

	count, err := r.I32()
	if err != nil {
		return err
	}
	if count < 0 {
		return malformed("string table declares %d entries", count)
	}
	st.Entries = make([]StringTableEntry, count)
	for i := range st.Entries {
		if st.Entries[i].Key, err = r.FString(); err != nil {
			return err
		}
		if st.Entries[i].Value, err = r.FString(); err != nil {
			return err
		}
	}

	extras, err := captureExtras(r, start, size)
	if err != nil {
		return err
	}
	st.Extras = extras
	return nil
}

func (st *StringTableExport) encodePayload(cc *codecContext, a *Asset, e *Export, w *Writer) error {
	if err := writeExportProperties(cc, a, e, w, st.Properties); err != nil {
		return err
	}
	w.I32(st.GuardValue)
	w.FString(st.Namespace)
	w.I32(int32(len(st.Entries)))
	for _, entry := range st.Entries {
		w.FString(entry.Key)
		w.FString(entry.Value)
	}
	w.Raw(st.Extras)
	return nil
}

// DataTableRow is one named row of a data table: a tagged (or
// schema-driven) property list typed by the table's row struct.
type DataTableRow struct {
	Name   NameRef
	Fields []*Property
}

// DataTableExport is a data table asset: the table's own properties
// (including the RowStruct reference) followed by the row data.
type DataTableExport struct {
	Properties []*Property
	GuardValue int32
	Rows       []DataTableRow
	Extras     []byte
}

func (*DataTableExport) Kind() string { return "DataTable" }

// rowStructName resolves the table's row struct type from the
// RowStruct object property, for schema lookup in unversioned assets.
// Empty when the reference is absent or does not resolve.
func (dt *DataTableExport) rowStructName(a *Asset) string {
	for _, p := range dt.Properties {
		if !a.nameIs(p.Name, "RowStruct") {
			continue
		}
		obj, ok := p.Value.(*ObjectValue)
		if !ok {
			return ""
		}
		return a.ObjectName(obj.Val)
	}
	return ""
}

func (dt *DataTableExport) decodePayload(cc *codecContext, a *Asset, e *Export, r *Reader, size int) error {
	start := r.Offset()
	properties, err := readExportProperties(cc, a, e, r)
	if err != nil {
		return err
	}
	dt.Properties = properties
	if dt.GuardValue, err = r.I32(); err != nil {
		return err
	}

	count, err := r.I32()
	if err != nil {
		return err
	}
	if count < 0 {
		return malformed("data table declares %d rows", count)
	}
	rowStruct := dt.rowStructName(a)
	dt.Rows = make([]DataTableRow, count)
	for i := range dt.Rows {
		row := &dt.Rows[i]
		if row.Name, _, err = cc.readNameRef(r); err != nil {
			return err
		}
		if cc.unversioned {
			if row.Fields, err = readUnversionedProperties(cc, r, rowStruct); err != nil {
				return err
			}
		} else {
			if row.Fields, err = readPropertyList(cc, r); err != nil {
				return err
			}
		}
	}

	extras, err := captureExtras(r, start, size)
	if err != nil {
		return err
	}
	dt.Extras = extras
	return nil
}

func (dt *DataTableExport) encodePayload(cc *codecContext, a *Asset, e *Export, w *Writer) error {
	if err := writeExportProperties(cc, a, e, w, dt.Properties); err != nil {
		return err
	}
	w.I32(dt.GuardValue)
	w.I32(int32(len(dt.Rows)))
	rowStruct := dt.rowStructName(a)
	for _, row := range dt.Rows {
		w.NameRefRaw(row.Name)
		if cc.unversioned {
			if err := writeUnversionedProperties(cc, w, rowStruct, row.Fields); err != nil {
				return err
			}
		} else {
			if err := writePropertyList(cc, w, row.Fields); err != nil {
				return err
			}
		}
	}
	w.Raw(dt.Extras)
	return nil
}

// LevelURL is the travel URL serialized inside a level export.
type LevelURL struct {
	Protocol string
	Host     string
	Map      string
	Portal   string
	Options  []string
	Port     int32
	Valid    int32
}

func (u *LevelURL) decode(r *Reader) error {
	var err error
	if u.Protocol, err = r.FString(); err != nil {
		return err
	}
	if u.Host, err = r.FString(); err != nil {
		return err
	}
	if u.Map, err = r.FString(); err != nil {
		return err
	}
	if u.Portal, err = r.FString(); err != nil {
		return err
	}
	count, err := r.I32()
	if err != nil {
		return err
	}
	if count < 0 {
		return malformed("level URL declares %d options", count)
	}
	u.Options = make([]string, count)
	for i := range u.Options {
		if u.Options[i], err = r.FString(); err != nil {
			return err
		}
	}
	if u.Port, err = r.I32(); err != nil {
		return err
	}
	u.Valid, err = r.I32()
	return err
}

func (u *LevelURL) encode(w *Writer) {
	w.FString(u.Protocol)
	w.FString(u.Host)
	w.FString(u.Map)
	w.FString(u.Portal)
	w.I32(int32(len(u.Options)))
	for _, opt := range u.Options {
		w.FString(opt)
	}
	w.I32(u.Port)
	w.I32(u.Valid)
}

// LevelExport is a persistent level: the actor list and travel URL.
// The model, components, and script references that follow are not
// modeled and land in Extras.
type LevelExport struct {
	Properties []*Property
	GuardValue int32
	Actors     []PackageIndex
	URL        LevelURL
	Extras     []byte
}

func (*LevelExport) Kind() string { return "Level" }

func (l *LevelExport) decodePayload(cc *codecContext, a *Asset, e *Export, r *Reader, size int) error {
	start := r.Offset()
	properties, err := readExportProperties(cc, a, e, r)
	if err != nil {
		return err
	}
	l.Properties = properties
	if l.GuardValue, err = r.I32(); err != nil {
		return err
	}

	count, err := r.I32()
	if err != nil {
		return err
	}
	if count < 0 {
		return malformed("level export declares %d actors", count)
	}
	l.Actors = make([]PackageIndex, count)
	for i := range l.Actors {
		raw, err := r.I32()
		if err != nil {
			return err
		}
		l.Actors[i] = PackageIndex(raw)
		if err := cc.checkIndex(l.Actors[i]); err != nil {
			return err
		}
	}
	if err := l.URL.decode(r); err != nil {
		return err
	}

	extras, err := captureExtras(r, start, size)
	if err != nil {
		return err
	}
	l.Extras = extras
	return nil
}

func (l *LevelExport) encodePayload(cc *codecContext, a *Asset, e *Export, w *Writer) error {
	if err := writeExportProperties(cc, a, e, w, l.Properties); err != nil {
		return err
	}
	w.I32(l.GuardValue)
	w.I32(int32(len(l.Actors)))
	for _, actor := range l.Actors {
		w.I32(int32(actor))
	}
	l.URL.encode(w)
	w.Raw(l.Extras)
	return nil
}

// WorldExport is a UWorld: a property list with the persistent level
// and streaming references serialized after it, kept raw.
type WorldExport struct {
	Properties []*Property
	Extras     []byte
}

func (*WorldExport) Kind() string { return "World" }

func (wd *WorldExport) decodePayload(cc *codecContext, a *Asset, e *Export, r *Reader, size int) error {
	start := r.Offset()
	properties, err := readExportProperties(cc, a, e, r)
	if err != nil {
		return err
	}
	wd.Properties = properties
	extras, err := captureExtras(r, start, size)
	if err != nil {
		return err
	}
	wd.Extras = extras
	return nil
}

func (wd *WorldExport) encodePayload(cc *codecContext, a *Asset, e *Export, w *Writer) error {
	if err := writeExportProperties(cc, a, e, w, wd.Properties); err != nil {
		return err
	}
	w.Raw(wd.Extras)
	return nil
}
