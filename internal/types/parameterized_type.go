// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

// ParameterizedType is a reference to a class plus an optional
// type-argument vector — the common case for every ordinary class
// reference (`List<int>`, `Object`, a bare unapplied class name with a
// nil Arguments).
type ParameterizedType struct {
	baseType
	Class     ClassId
	Arguments *FlatTypeArguments // nil == no arguments (raw type)
}

func NewParameterizedType(cls ClassId, args *FlatTypeArguments) *ParameterizedType {
	return &ParameterizedType{Class: cls, Arguments: args}
}

func (t *ParameterizedType) Kind() TypeKind { return KindParameterized }

// TypeParameterType is an index into the flattened type-argument
// vector of a parameterized class, plus a declared bound.
type TypeParameterType struct {
	baseType
	// Owner is the class this parameter is declared on (or, for a
	// cloned mixin-application parameter, the synthesized class).
	Owner ClassId
	// Index is the position within the owner's flattened
	// type-argument vector.
	Index int
	Name  string
	Bound Type
}

func NewTypeParameterType(owner ClassId, index int, name string, bound Type) *TypeParameterType {
	return &TypeParameterType{Owner: owner, Index: index, Name: name, Bound: bound}
}

func (t *TypeParameterType) Kind() TypeKind { return KindTypeParameter }

// Substitute resolves this parameter against instantiator, which must
// supply at least Index+1 entries (the flattened vector of the class
// this parameter indexes into).
func (t *TypeParameterType) Substitute(instantiator TypeArguments) Type {
	flat := instantiator.Instantiate(nil)
	if flat == nil || t.Index >= len(flat.Args) {
		return Dynamic
	}
	return flat.Args[t.Index]
}

// BoundedType pairs a parameterized type with a bound that could not
// be checked at compile time; the check is postponed to the use site
// named by CheckSite.
type BoundedType struct {
	baseType
	Value     Type
	Bound     Type
	TypeParam *TypeParameterType
	// CheckSite names the checked-cast or argument site the residual
	// bound check is deferred to; empty until a concrete use site
	// binds it.
	CheckSite string
}

func NewBoundedType(value, bound Type, param *TypeParameterType) *BoundedType {
	return &BoundedType{Value: value, Bound: bound, TypeParam: param}
}

func (t *BoundedType) Kind() TypeKind { return KindBounded }

// MixinApplicationType is a super type plus an ordered sequence of
// mixin types. It appears only during parsing; class finalization
// rewrites it to a chain of synthesized application classes and it
// should never be observed post-finalization.
type MixinApplicationType struct {
	baseType
	Super  *ParameterizedType
	Mixins []*ParameterizedType
}

func NewMixinApplicationType(super *ParameterizedType, mixins []*ParameterizedType) *MixinApplicationType {
	return &MixinApplicationType{Super: super, Mixins: mixins}
}

func (t *MixinApplicationType) Kind() TypeKind { return KindMixinApplication }

// Dynamic is the canonical top/bottom-like "dynamic" type used to
// fill missing type-argument positions and to break F-bounded
// self-reference cycles by substitution.
var Dynamic Type = &dynamicType{}

type dynamicType struct{ baseType }

func (d *dynamicType) Kind() TypeKind { return KindParameterized }

func init() {
	dyn := Dynamic.(*dynamicType)
	dyn.state = FinalizedInstantiated
	dyn.canonical = true
}

// IsDynamic reports whether t is the canonical dynamic type.
func IsDynamic(t Type) bool {
	_, ok := t.(*dynamicType)
	return ok
}
