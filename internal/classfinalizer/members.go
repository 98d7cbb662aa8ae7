// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classfinalizer

import (
	"govm/internal/classtable"
	"govm/internal/vmerror"
)

// resolveMembers finalizes signatures and checks override conflicts
// for every field and function of cls against the conflict matrix
// below: a static member conflicting with an inherited instance
// member, a field conflicting with an inherited method, and so on.
func (f *Finalizer) resolveMembers(cls *classtable.Class) error {
	for _, field := range cls.Fields {
		if err := f.checkFieldConflict(cls, field); err != nil {
			return err
		}
	}
	for _, fn := range cls.Functions {
		if err := f.checkFunctionConflict(cls, fn); err != nil {
			return err
		}
		if err := f.ResolveRedirectingFactory(cls, fn); err != nil {
			return err
		}
	}
	return nil
}

// findInherited returns the first inherited member with the given
// name above cls, plus whether it is a method (function, not field).
func findInherited(cls *classtable.Class, name string) (field *classtable.Field, fn *classtable.Function, ok bool) {
	for c := cls.Superclass; c != nil; c = c.Superclass {
		for _, fl := range c.Fields {
			if fl.Name == name {
				return fl, nil, true
			}
		}
		for _, fd := range c.Functions {
			if fd.Name == name {
				return nil, fd, true
			}
		}
	}
	return nil, nil, false
}

func (f *Finalizer) checkFieldConflict(cls *classtable.Class, field *classtable.Field) error {
	inheritedField, inheritedFn, ok := findInherited(cls, field.Name)
	if !ok {
		return nil
	}
	if field.IsStatic && ((inheritedField != nil && !inheritedField.IsStatic) || (inheritedFn != nil && !inheritedFn.IsStatic)) {
		// static field/getter conflicting with inherited instance
		// member → compile error.
		return vmerror.CompileError(cls.Script, cls.TokenPos,
			"static member %q conflicts with inherited instance member in %q", field.Name, cls.Name)
	}
	if inheritedFn != nil && !inheritedFn.IsStatic {
		// instance field conflicting with inherited method → compile
		// error.
		return vmerror.CompileError(cls.Script, cls.TokenPos,
			"field %q conflicts with inherited method in %q", field.Name, cls.Name)
	}
	return nil
}

func (f *Finalizer) checkFunctionConflict(cls *classtable.Class, fn *classtable.Function) error {
	inheritedField, inheritedFn, ok := findInherited(cls, fn.Name)
	if !ok {
		return nil
	}
	if isGetter(fn) && inheritedFn != nil && !isGetter(inheritedFn) {
		// getter conflicting with inherited method → compile error.
		return vmerror.CompileError(cls.Script, cls.TokenPos,
			"getter %q conflicts with inherited method in %q", fn.Name, cls.Name)
	}
	if f.strict && inheritedFn != nil {
		if err := checkParameterCompatibility(fn, inheritedFn); err != nil {
			return vmerror.CompileError(cls.Script, cls.TokenPos,
				"incompatible override of %q in %q: %v", fn.Name, cls.Name, err)
		}
	}
	_ = inheritedField
	return nil
}

// isGetter is a convention marker: a zero-parameter, non-factory
// function is treated as a getter for the purposes of the conflict
// matrix. The real getter/setter distinction is a parser-level
// concern out of this package's scope.
func isGetter(fn *classtable.Function) bool {
	return fn.Signature != nil && len(fn.Signature.ParameterTypes) == 0 && !fn.IsFactory
}
