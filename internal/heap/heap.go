// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"govm/internal/gctrace"
	"govm/internal/tagged"
	"govm/internal/vmerror"
)

// Heap is one isolate's memory manager: a young-space scavenger, an
// old-space free list, the store buffer the write barrier feeds, and
// the finalizer/weak-property bookkeeping that rides along with a
// scavenge.
type Heap struct {
	young *Scavenger
	old   *OldSpace

	roots             []*Handle
	storeBuffer       []*HeapObject
	pendingFinalizers []*HeapObject

	trace *gctrace.Tracer

	scavengeCount int
}

// New builds a heap with the given young-space (per semispace) and
// old-space capacities in bytes.
func New(youngCapacity, oldCapacity int, log zerolog.Logger) *Heap {
	return &Heap{
		young: NewScavenger(youngCapacity),
		old:   NewOldSpace(tagged.ObjectAlignment, oldCapacity),
		trace: gctrace.New(log),
	}
}

func (h *Heap) headerFor(cid uint16, sizeBytes int) tagged.Header {
	hdr := tagged.Header(0).WithCid(cid)
	if units, ok := tagged.EncodeSize(tagged.AlignUp(sizeBytes, tagged.ObjectAlignment)); ok {
		hdr = hdr.WithSizeTag(units)
	}
	return hdr
}

func (h *Heap) addRoot(r *Handle)    { h.roots = append(h.roots, r) }
func (h *Heap) removeRoot(r *Handle) {
	for i, root := range h.roots {
		if root == r {
			h.roots = append(h.roots[:i], h.roots[i+1:]...)
			return
		}
	}
}

// NewHandleScope opens a fresh LIFO handle scope rooted at this heap.
func (h *Heap) NewHandleScope() *HandleScope {
	return &HandleScope{heap: h}
}

// Allocate is a young-space bump allocation that triggers a scavenge
// on exhaustion and, if the object still does not fit after
// scavenging, signals out-of-memory: a failed allocation after a
// scavenge has already run once is a hard out-of-memory error, not a
// retry loop.
func (h *Heap) Allocate(cid uint16, sizeBytes int) (*HeapObject, error) {
	sizeBytes = tagged.AlignUp(sizeBytes, tagged.ObjectAlignment)
	if !h.young.CanAllocate(sizeBytes) {
		h.Scavenge()
		if !h.young.CanAllocate(sizeBytes) {
			return nil, errors.Wrapf(vmerror.OutOfMemory, "heap: allocate %d bytes (cid %d)", sizeBytes, cid)
		}
	}
	obj := &HeapObject{Header: h.headerFor(cid, sizeBytes), Size: sizeBytes, Space: NewSpace}
	h.young.bumpAllocate(obj)
	return obj, nil
}

// AllocateExternal attributes externalBytes of off-heap memory (a
// typed-data buffer, say) to obj and installs fin to run when obj
// becomes unreachable. The external byte count is only recorded on
// obj; it is not charged against the young-space or old-space budget.
func (h *Heap) AllocateExternal(obj *HeapObject, externalBytes int, fin func(*HeapObject)) {
	obj.External = externalBytes
	obj.Finalizer = fin
}

// Scavenge runs one young-space collection, queues the finalizers of
// objects that died for RunPendingFinalizers (it does not run them),
// and prunes the store buffer.
func (h *Heap) Scavenge() {
	start := h.trace.ScavengeStart(h.young.BytesUsed())
	before := h.young.live
	visited, result := h.young.scavenge(h.roots, h.storeBuffer, h.old)

	var dead []*HeapObject
	for _, obj := range before {
		if !visited[obj] {
			dead = append(dead, obj)
		}
	}
	h.sweepFinalizers(dead)

	// Prune the store buffer: an entry whose pointers are now entirely
	// old-space (or nil) no longer needs to be rescanned, and its
	// remembered bit is cleared. The store buffer is consumed as
	// additional roots at the next scavenge, then pruned of entries
	// with no remaining young pointer.
	var kept []*HeapObject
	for _, holder := range h.storeBuffer {
		stillYoung := false
		for _, p := range holder.Pointers {
			if p != nil && p.Space == NewSpace {
				stillYoung = true
				break
			}
		}
		if stillYoung {
			kept = append(kept, holder)
		} else {
			holder.Header = holder.Header.WithRemembered(false)
		}
	}
	h.storeBuffer = kept

	h.scavengeCount++
	for _, obj := range result.FailedPromotions {
		h.trace.PromotionFailure(obj.Cid(), obj.Size)
	}
	h.trace.ScavengeEnd(start, gctrace.ScavengeResult{
		Retained:          result.Retained,
		Promoted:          result.Promoted,
		Reclaimed:         result.Reclaimed,
		PromotionFailures: result.PromotionFailures,
		YoungBytesAfter:   h.young.BytesUsed(),
		OldBytesAfter:     h.old.UsedBytes(),
	})
}

// YoungBytesUsed exposes the young-space accounting: to_space.top -
// to_space.start after a scavenge.
func (h *Heap) YoungBytesUsed() int { return h.young.BytesUsed() }
func (h *Heap) YoungCount() int     { return h.young.Count() }
func (h *Heap) OldBytesUsed() int   { return h.old.UsedBytes() }
func (h *Heap) ScavengeCount() int  { return h.scavengeCount }

// AllocOld bypasses the scavenger and allocates directly from the
// old-space free list — used for pre-tenured or promoted objects, and
// exercised directly by free-list round-trip tests.
func (h *Heap) AllocOld(sizeBytes int) *Block {
	sizeBytes = tagged.AlignUp(sizeBytes, tagged.ObjectAlignment)
	if blk := h.old.Alloc(sizeBytes); blk != nil {
		return blk
	}
	h.old.Grow(sizeBytes)
	return h.old.Alloc(sizeBytes)
}

func (h *Heap) FreeOld(addr uintptr, sizeBytes int) {
	h.old.Free(addr, tagged.AlignUp(sizeBytes, tagged.ObjectAlignment))
}
