// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classfinalizer

import (
	"govm/internal/types"
)

// IsSubtype is a deliberately simple structural/nominal subtype check
// over the class hierarchy: dynamic is always a subtype of anything
// and anything is a subtype of dynamic, acting as both bottom and top,
// otherwise walk Superclass links looking for a match. The full
// variance-aware generic subtyping algorithm belongs to the excluded
// type-checker front end; the finalizer only needs enough of it to
// validate F-bounded parameter bounds.
func (f *Finalizer) IsSubtype(sub, bound types.Type) bool {
	if types.IsDynamic(sub) || types.IsDynamic(bound) {
		return true
	}
	subPt, subOk := sub.(*types.ParameterizedType)
	boundPt, boundOk := bound.(*types.ParameterizedType)
	if !subOk || !boundOk {
		// Type parameters and bounded types are accepted
		// conservatively; their declared bound is not consulted.
		return true
	}
	cls := f.Table.At(subPt.Class)
	for cls != nil {
		if cls.Id == boundPt.Class {
			return true
		}
		for _, iface := range cls.Interfaces {
			if ifacePt, ok := iface.(*types.ParameterizedType); ok && ifacePt.Class == boundPt.Class {
				return true
			}
		}
		cls = cls.Superclass
	}
	return false
}
