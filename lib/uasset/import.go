// Copyright 2026 The UAssetKit Authors
// SPDX-License-Identifier: Apache-2.0

package uasset

// Import describes one externally defined object the asset
// references: where its class lives, what the class is, its outer
// within that package, and its own name. The table is ordered and
// position-addressed; property values reach entries through negative
// [PackageIndex] values.
type Import struct {
	ClassPackage NameRef
	ClassName    NameRef
	Outer        PackageIndex
	ObjectName   NameRef

	// PackageName is serialized from [VerNonOuterPackageImport] on;
	// Optional from [UE5OptionalResources] on.
	PackageName NameRef
	Optional    bool
}

func (imp *Import) decode(cc *codecContext, r *Reader) error {
	var err error
	if imp.ClassPackage, _, err = cc.readNameRef(r); err != nil {
		return err
	}
	if imp.ClassName, _, err = cc.readNameRef(r); err != nil {
		return err
	}
	raw, err := r.I32()
	if err != nil {
		return err
	}
	imp.Outer = PackageIndex(raw)
	if imp.ObjectName, _, err = cc.readNameRef(r); err != nil {
		return err
	}
	if cc.ctx.Supports(VerNonOuterPackageImport) {
		if imp.PackageName, _, err = cc.readNameRef(r); err != nil {
			return err
		}
	}
	if cc.ctx.SupportsUE5(UE5OptionalResources) {
		if imp.Optional, err = r.Bool32(); err != nil {
			return err
		}
	}
	return nil
}

func (imp *Import) encode(cc *codecContext, w *Writer) {
	w.NameRefRaw(imp.ClassPackage)
	w.NameRefRaw(imp.ClassName)
	w.I32(int32(imp.Outer))
	w.NameRefRaw(imp.ObjectName)
	if cc.ctx.Supports(VerNonOuterPackageImport) {
		w.NameRefRaw(imp.PackageName)
	}
	if cc.ctx.SupportsUE5(UE5OptionalResources) {
		w.Bool32(imp.Optional)
	}
}

// AddImport appends an entry and returns its (negative) object index.
func (a *Asset) AddImport(imp Import) PackageIndex {
	a.Imports = append(a.Imports, imp)
	return ImportIndex(len(a.Imports) - 1)
}

// FindOrAddImport looks an import up by (class package, class name,
// object name) and appends a fresh entry when none matches, so a
// handler injecting a reference that may already exist never
// duplicates a row. A linear scan: import tables are small relative
// to the property data they anchor.
func (a *Asset) FindOrAddImport(classPackage, className, objectName string) PackageIndex {
	for i := range a.Imports {
		imp := &a.Imports[i]
		if a.nameIs(imp.ClassPackage, classPackage) &&
			a.nameIs(imp.ClassName, className) &&
			a.nameIs(imp.ObjectName, objectName) {
			return ImportIndex(i)
		}
	}
	return a.AddImport(Import{
		ClassPackage: a.Names.Intern(classPackage, false),
		ClassName:    a.Names.Intern(className, false),
		ObjectName:   a.Names.Intern(objectName, false),
	})
}

// nameIs reports whether a reference resolves to the given string.
func (a *Asset) nameIs(ref NameRef, value string) bool {
	resolved, err := a.Names.Resolve(ref)
	return err == nil && resolved == value
}
