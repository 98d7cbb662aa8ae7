// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import "govm/internal/classtable"

// NewWeakProperty allocates a weak key/value pair: Value is kept alive
// only as long as Key is otherwise reachable. A weak property's value
// is dropped (set to null) at the next scavenge if its key is
// unreachable from any strong root.
//
// Grounded on runtime/mfinal.go's special-record-per-object approach
// (other_examples/a176e911_yaofei517-go__..mfinal.go.go): a side
// table entry keyed by the owner, processed during the same GC pass
// that determines reachability, rather than a reference type the
// mutator dereferences directly.
func (h *Heap) NewWeakProperty(key, value *HeapObject) *HeapObject {
	wp := &HeapObject{
		Header:         h.headerFor(uint16(classtable.CidWeakProperty), 0),
		Space:          NewSpace,
		IsWeakProperty: true,
		WeakKey:        key,
		WeakValue:      value,
	}
	h.young.bumpAllocate(wp)
	return wp
}

// sweepFinalizers runs after a scavenge: any object that had a
// Finalizer attached and did not survive (absent from visited) is
// queued for RunPendingFinalizers, mirroring mfinal.go's "finalizer
// run once an object becomes unreachable"; its External byte count is
// left unchanged. A
// weak property that dies along with its key needs no handling here —
// the live-weak-property case (key dead, property itself still
// rooted) is cleared inline during the scavenge, in scavenger.go.
func (h *Heap) sweepFinalizers(dead []*HeapObject) {
	for _, obj := range dead {
		if obj.IsWeakProperty {
			continue
		}
		if obj.Finalizer != nil {
			h.pendingFinalizers = append(h.pendingFinalizers, obj)
		}
	}
}

// RunPendingFinalizers invokes and clears every finalizer queued by
// the most recent collection. Finalizers never run synchronously
// inside the scavenge, so callers drain this explicitly between
// safepoints.
func (h *Heap) RunPendingFinalizers() int {
	n := len(h.pendingFinalizers)
	for _, obj := range h.pendingFinalizers {
		if obj.Finalizer != nil {
			obj.Finalizer(obj)
			obj.Finalizer = nil
		}
	}
	h.pendingFinalizers = h.pendingFinalizers[:0]
	return n
}
