// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import "govm/internal/tagged"

// numSmallClasses mirrors runtime's small-size-class count order of
// magnitude; old-space objects above this many alignment units fall
// through to the overflow list instead of a dedicated class.
//
// Grounded on cloudfly-readgo/runtime/mcentral.go's class-indexed
// mcentral array (`var mheap_ struct{ central [67*2]...}`): a fixed
// number of exact-size classes, plus an escape hatch for anything
// bigger.
const numSmallClasses = 256

// Block is one free or allocated region of old-space, identified by
// an opaque simulated address rather than a real pointer — this
// module models the allocator's bookkeeping, not physical memory.
type Block struct {
	Addr uintptr
	Size int
	next *Block
}

// PageProtector is the write-protection contract for old-space pages
// that may be mapped execute-only (code pages): a split that touches
// such a page must unprotect it for the duration of the mutation and
// reprotect it before returning. The default heap uses a no-op
// protector; a port backing a JIT would supply a real one.
type PageProtector interface {
	Unprotect(addr uintptr, size int)
	Protect(addr uintptr, size int)
}

type noopProtector struct{}

func (noopProtector) Unprotect(uintptr, int) {}
func (noopProtector) Protect(uintptr, int)   {}

// OldSpace is the segregated free-list allocator: classes indexed by
// size in units of object alignment, each holding same-size blocks; a
// single overflow list, scanned first-fit, for anything above the
// largest class. Splitting a block taken from the overflow list
// returns the remainder to its own class (or back to overflow).
type OldSpace struct {
	alignment int
	classes   [numSmallClasses][]*Block
	nonEmpty  [numSmallClasses / 64]uint64 // bitset of non-empty classes, kept in step with classes; Alloc does not read it
	overflow  []*Block

	protector PageProtector

	nextAddr  uintptr
	usedBytes int
	capacity  int // 0 means unbounded; AdoptPromoted enforces this as a budget, Grow does not check it
}

func NewOldSpace(alignment, capacityBytes int) *OldSpace {
	return &OldSpace{alignment: alignment, protector: noopProtector{}, capacity: capacityBytes, nextAddr: 1}
}

func (o *OldSpace) SetProtector(p PageProtector) { o.protector = p }

func (o *OldSpace) classOf(size int) int {
	c := size / o.alignment
	if c <= 0 || c >= numSmallClasses {
		return -1
	}
	return c
}

func (o *OldSpace) setBit(class int)   { o.nonEmpty[class/64] |= 1 << uint(class%64) }
func (o *OldSpace) clearBit(class int) { o.nonEmpty[class/64] &^= 1 << uint(class%64) }
func (o *OldSpace) bitSet(class int) bool {
	return o.nonEmpty[class/64]&(1<<uint(class%64)) != 0
}

// Grow seeds the allocator with one freshly "mapped" region, the
// moral equivalent of an mmap'd page added to the overflow list before
// any allocation can succeed.
func (o *OldSpace) Grow(size int) {
	addr := o.nextAddr
	o.nextAddr += uintptr(size)
	o.overflow = append(o.overflow, &Block{Addr: addr, Size: size})
}

// Alloc returns a block of exactly sizeBytes (rounded up to alignment)
// taken from the exact-size class or, failing that, split from the
// first large-enough block on the overflow list. It returns nil, and
// the caller should Grow first, when neither has one; blocks held in
// larger small classes are not split to serve a smaller request. sizeBytes must already be alignment-rounded by the caller
// (tagged.AlignUp), matching object-header size accounting.
func (o *OldSpace) Alloc(sizeBytes int) *Block {
	sizeBytes = tagged.AlignUp(sizeBytes, o.alignment)
	if class := o.classOf(sizeBytes); class > 0 {
		if list := o.classes[class]; len(list) > 0 {
			blk := list[len(list)-1]
			o.classes[class] = list[:len(list)-1]
			if len(o.classes[class]) == 0 {
				o.clearBit(class)
			}
			o.usedBytes += blk.Size
			return blk
		}
	}

	for i, blk := range o.overflow {
		if blk.Size < sizeBytes {
			continue
		}
		o.overflow = append(o.overflow[:i], o.overflow[i+1:]...)
		if remainder := blk.Size - sizeBytes; remainder > 0 {
			o.protector.Unprotect(blk.Addr, blk.Size)
			o.free(blk.Addr+uintptr(sizeBytes), remainder)
			o.protector.Protect(blk.Addr, blk.Size)
		}
		blk.Size = sizeBytes
		o.usedBytes += sizeBytes
		return blk
	}
	return nil
}

// Free returns a block to the allocator, placing it on its exact-size
// class when one exists or the overflow list otherwise.
func (o *OldSpace) Free(addr uintptr, sizeBytes int) {
	o.usedBytes -= sizeBytes
	o.free(addr, sizeBytes)
}

func (o *OldSpace) free(addr uintptr, sizeBytes int) {
	blk := &Block{Addr: addr, Size: sizeBytes}
	if class := o.classOf(sizeBytes); class > 0 {
		o.classes[class] = append(o.classes[class], blk)
		o.setBit(class)
		return
	}
	o.overflow = append(o.overflow, blk)
}

// AdoptPromoted books a promoted young object's size against the
// old-space budget, allocating a block for it and growing old-space
// first when no free block fits. It returns false precisely when a
// capacity is configured and the object would take usage past it: the
// promotion-failure path.
func (o *OldSpace) AdoptPromoted(obj *HeapObject) bool {
	size := tagged.AlignUp(obj.Size, o.alignment)
	if o.capacity > 0 && o.usedBytes+size > o.capacity {
		return false
	}
	if blk := o.Alloc(size); blk != nil {
		return true
	}
	o.Grow(size)
	return o.Alloc(size) != nil
}

// UsedBytes is the live old-space byte count, for invariants and
// tests.
func (o *OldSpace) UsedBytes() int { return o.usedBytes }
