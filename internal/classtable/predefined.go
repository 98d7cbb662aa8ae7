// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classtable

import "govm/internal/types"

// Predefined cids for the built-in kinds that may not be extended
// outside the compiler-reserved core library: extending any of Number,
// Integer, Smi, Mint, Bigint, Double, Bool, Null, Array,
// ImmutableArray, GrowableObjectArray, any typed-data view, or
// WeakProperty is a fatal error.
const (
	CidObject types.ClassId = iota + 2 // 0 illegal, 1 is kFreeListElement
	CidNumber
	CidInteger
	CidSmi
	CidMint
	CidBigint
	CidDouble
	CidBool
	CidNull
	CidArray
	CidImmutableArray
	CidGrowableObjectArray
	CidTypedDataView
	CidWeakProperty
	cidPredefinedEnd
)

// RestrictedBuiltins is the set of built-in classes that may not be
// extended or implemented outside the core library.
var RestrictedBuiltins = map[types.ClassId]bool{
	CidNumber:              true,
	CidInteger:             true,
	CidSmi:                 true,
	CidMint:                true,
	CidBigint:              true,
	CidDouble:              true,
	CidBool:                true,
	CidNull:                true,
	CidArray:               true,
	CidImmutableArray:      true,
	CidGrowableObjectArray: true,
	CidTypedDataView:       true,
	CidWeakProperty:        true,
}

var predefinedNames = map[types.ClassId]string{
	CidObject:              "Object",
	CidNumber:              "Number",
	CidInteger:             "Integer",
	CidSmi:                 "Smi",
	CidMint:                "Mint",
	CidBigint:              "Bigint",
	CidDouble:              "Double",
	CidBool:                "Bool",
	CidNull:                "Null",
	CidArray:                "Array",
	CidImmutableArray:      "ImmutableArray",
	CidGrowableObjectArray: "GrowableObjectArray",
	CidTypedDataView:       "_TypedDataView",
	CidWeakProperty:        "WeakProperty",
}

// RegisterPredefined reserves every built-in cid in t, each pre-marked
// Finalized since built-ins need no class-finalizer pass.
func RegisterPredefined(t *Table) {
	for id, name := range predefinedNames {
		cls := NewClass(id, name, "core", 0)
		cls.State = Finalized
		cls.IsAbstract = id == CidObject || id == CidNumber
		t.ReserveAt(id, cls)
	}
	object := t.At(CidObject)
	for id := range predefinedNames {
		if id == CidObject {
			continue
		}
		cls := t.At(id)
		if cls.SuperType == nil {
			cls.Superclass = object
			object.AddSubclass(cls)
		}
	}
}
