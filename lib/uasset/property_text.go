// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

// Text history kinds. The on-disk value is a signed byte; the empty
// history is -1.
const (
	TextHistoryNone             int8 = -1
	TextHistoryBase             int8 = 0
	TextHistoryStringTableEntry int8 = 11
)

// TextValue is a TextProperty payload: localization flags plus one
// typed history record. Only the history kinds that appear in cooked
// content are modeled (empty, base namespace/key/source, string table
// entry); the formatting and transform histories report
// [ErrUnimplementedVariant], which export-level containment turns
// into a raw export.
type TextValue struct {
	Flags   uint32
	History int8

	// History None: an optional culture-invariant display string.
	HasCultureInvariant bool
	CultureInvariant    string

	// History Base.
	Namespace    string
	Key          string
	SourceString string

	// History StringTableEntry.
	TableID  NameRef
	TableKey string
}

func (*TextValue) TypeName() string { return "TextProperty" }

func (v *TextValue) IsZero() bool {
	return v.History == TextHistoryNone && !v.HasCultureInvariant
}

func (v *TextValue) decodeValue(cc *codecContext, r *Reader, size int, header bool) error {
	if !cc.ctx.Supports(VerTextHistory) {
		return unimplemented("text property predating typed histories (object version %d)", cc.ctx.ObjectVersion())
	}
	flags, err := r.U32()
	if err != nil {
		return err
	}
	v.Flags = flags
	history, err := r.I8()
	if err != nil {
		return err
	}
	v.History = history

	switch history {
	case TextHistoryNone:
		has, err := r.Bool32()
		if err != nil {
			return err
		}
		v.HasCultureInvariant = has
		if has {
			if v.CultureInvariant, err = r.FString(); err != nil {
				return err
			}
		}
	case TextHistoryBase:
		if v.Namespace, err = r.FString(); err != nil {
			return err
		}
		if v.Key, err = r.FString(); err != nil {
			return err
		}
		if v.SourceString, err = r.FString(); err != nil {
			return err
		}
	case TextHistoryStringTableEntry:
		tableID, _, err := cc.readNameRef(r)
		if err != nil {
			return err
		}
		v.TableID = tableID
		if v.TableKey, err = r.FString(); err != nil {
			return err
		}
	default:
		return unimplemented("text history kind %d", history)
	}
	return nil
}

func (v *TextValue) encodeValue(cc *codecContext, w *Writer, header bool) error {
	if !cc.ctx.Supports(VerTextHistory) {
		return unimplemented("text property predating typed histories (object version %d)", cc.ctx.ObjectVersion())
	}
	w.U32(v.Flags)
	w.I8(v.History)
	switch v.History {
	case TextHistoryNone:
		w.Bool32(v.HasCultureInvariant)
		if v.HasCultureInvariant {
			w.FString(v.CultureInvariant)
		}
	case TextHistoryBase:
		w.FString(v.Namespace)
		w.FString(v.Key)
		w.FString(v.SourceString)
	case TextHistoryStringTableEntry:
		w.NameRefRaw(v.TableID)
		w.FString(v.TableKey)
	default:
		return unimplemented("text history kind %d", v.History)
	}
	return nil
}
