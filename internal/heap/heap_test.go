// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"govm/internal/classtable"
	"govm/internal/tagged"
)

const testObjSize = tagged.ObjectAlignment * 2

// S3 — scavenge survival: allocate eight objects within a ten-object
// young-space budget, keep three of them alive through a handle scope,
// scavenge, and confirm the unreachable ones are reclaimed and the
// space accounting matches what survived.
func TestScavengeReclaimsUnreachableAndKeepsRoots(t *testing.T) {
	h := New(testObjSize*10, 1<<20, zerolog.Nop())
	scope := h.NewHandleScope()
	defer scope.Close()

	var kept []*Handle
	for i := 0; i < 3; i++ {
		obj, err := h.Allocate(uint16(classtable.CidObject), testObjSize)
		require.NoError(t, err)
		kept = append(kept, scope.NewHandle(obj))
	}
	for i := 0; i < 5; i++ {
		_, err := h.Allocate(uint16(classtable.CidObject), testObjSize)
		require.NoError(t, err)
	}

	h.Scavenge()

	require.Equal(t, 3, h.YoungCount())
	require.Equal(t, testObjSize*3, h.YoungBytesUsed())
	for _, hh := range kept {
		require.NotNil(t, hh.Obj)
		require.Equal(t, NewSpace, hh.Obj.Space)
	}
}

// S3 (continued) — an object surviving a second scavenge is promoted
// to old-space instead of copied again.
func TestSecondScavengePromotesSurvivors(t *testing.T) {
	h := New(testObjSize*10, 1<<20, zerolog.Nop())
	scope := h.NewHandleScope()
	defer scope.Close()

	obj, err := h.Allocate(uint16(classtable.CidObject), testObjSize)
	require.NoError(t, err)
	handle := scope.NewHandle(obj)

	h.Scavenge()
	require.Equal(t, NewSpace, handle.Obj.Space)
	require.Equal(t, 0, h.OldBytesUsed())

	h.Scavenge()
	require.Equal(t, OldSpace, handle.Obj.Space)
	require.Equal(t, testObjSize, h.OldBytesUsed())
	require.Equal(t, 0, h.YoungCount())
}

// Invariant 2 — no write barrier is needed for a store into a
// young-space object: StoreInto must never touch the store buffer
// when the holder itself is young.
func TestWriteBarrierSkipsYoungHolder(t *testing.T) {
	h := New(1<<20, 1<<20, zerolog.Nop())
	holder, err := h.Allocate(uint16(classtable.CidObject), testObjSize)
	require.NoError(t, err)
	holder.Pointers = make([]*HeapObject, 1)
	value, err := h.Allocate(uint16(classtable.CidObject), testObjSize)
	require.NoError(t, err)

	h.StoreInto(holder, 0, value)

	require.Equal(t, 0, h.StoreBufferLen())
	require.False(t, holder.Header.Remembered())
}

// Invariant 3 — an old-space holder storing a young pointer appears at
// most once in the store buffer no matter how many young stores it
// receives.
func TestWriteBarrierDedupesStoreBuffer(t *testing.T) {
	h := New(1<<20, 1<<20, zerolog.Nop())
	holder, err := h.Allocate(uint16(classtable.CidObject), testObjSize)
	require.NoError(t, err)
	holder.Space = OldSpace // simulate a promoted/pretenured object
	holder.Pointers = make([]*HeapObject, 3)

	for i := 0; i < 3; i++ {
		value, err := h.Allocate(uint16(classtable.CidObject), testObjSize)
		require.NoError(t, err)
		h.StoreInto(holder, i, value)
	}

	require.Equal(t, 1, h.StoreBufferLen())
	require.True(t, holder.Header.Remembered())
}

// Invariant 3 (continued) — the store buffer is pruned once none of a
// holder's pointers are young anymore.
func TestScavengePrunesStoreBufferEntryWithNoYoungPointers(t *testing.T) {
	h := New(1<<20, 1<<20, zerolog.Nop())
	holder, err := h.Allocate(uint16(classtable.CidObject), testObjSize)
	require.NoError(t, err)
	holder.Space = OldSpace
	holder.Pointers = make([]*HeapObject, 1)

	value, err := h.Allocate(uint16(classtable.CidObject), testObjSize)
	require.NoError(t, err)
	h.StoreInto(holder, 0, value)
	require.Equal(t, 1, h.StoreBufferLen())

	// The store buffer makes holder's pointer a root, so value
	// survives the first scavenge as a young object and the entry
	// must still be kept.
	h.Scavenge()
	require.Equal(t, 1, h.StoreBufferLen())
	require.Equal(t, NewSpace, holder.Pointers[0].Space)

	// Surviving a second scavenge promotes value to old-space, after
	// which holder has no remaining young pointer and is pruned.
	h.Scavenge()

	require.Equal(t, 0, h.StoreBufferLen())
	require.False(t, holder.Header.Remembered())
	require.Equal(t, OldSpace, holder.Pointers[0].Space)
}

// Invariant 6 — free-list round trip: free(alloc(size)) returns a
// block of exactly that size, landing it back in the expected class.
func TestOldSpaceFreeListRoundTrip(t *testing.T) {
	sizes := []int{tagged.ObjectAlignment, tagged.ObjectAlignment * 4, tagged.ObjectAlignment * 64}
	for _, size := range sizes {
		h := New(1<<10, 1<<20, zerolog.Nop())
		blk := h.AllocOld(size)
		require.NotNil(t, blk)
		require.Equal(t, size, blk.Size)

		h.FreeOld(blk.Addr, blk.Size)
		reblk := h.AllocOld(size)
		require.NotNil(t, reblk)
		require.Equal(t, size, reblk.Size)
		require.Equal(t, blk.Addr, reblk.Addr, "round-tripping the only free block of this size must return it unchanged")
	}
}

func TestOldSpaceSplitLeavesRemainderAvailable(t *testing.T) {
	h := New(1<<10, 1<<20, zerolog.Nop())
	big := tagged.ObjectAlignment * 10
	small := tagged.ObjectAlignment * 3

	h.old.Grow(big)
	blk := h.AllocOld(small)
	require.NotNil(t, blk)
	require.Equal(t, small, blk.Size)

	remainderSize := big - small
	remainder := h.AllocOld(remainderSize)
	require.NotNil(t, remainder)
	require.Equal(t, remainderSize, remainder.Size)
}

// Weak properties drop their value once the key becomes unreachable.
func TestWeakPropertyClearsWhenKeyDies(t *testing.T) {
	h := New(testObjSize*10, 1<<20, zerolog.Nop())
	key, err := h.Allocate(uint16(classtable.CidObject), testObjSize)
	require.NoError(t, err)
	value, err := h.Allocate(uint16(classtable.CidObject), testObjSize)
	require.NoError(t, err)
	wp := h.NewWeakProperty(key, value)
	scope := h.NewHandleScope()
	defer scope.Close()
	wpHandle := scope.NewHandle(wp)

	h.Scavenge()

	require.Nil(t, wpHandle.Obj.WeakKey)
	require.Nil(t, wpHandle.Obj.WeakValue)
}

func TestWeakPropertyKeepsValueWhenKeySurvives(t *testing.T) {
	h := New(testObjSize*10, 1<<20, zerolog.Nop())
	scope := h.NewHandleScope()
	defer scope.Close()

	key, err := h.Allocate(uint16(classtable.CidObject), testObjSize)
	require.NoError(t, err)
	scope.NewHandle(key) // key is rooted independently of the weak property
	value, err := h.Allocate(uint16(classtable.CidObject), testObjSize)
	require.NoError(t, err)
	wp := h.NewWeakProperty(key, value)
	wpHandle := scope.NewHandle(wp)

	h.Scavenge()

	require.NotNil(t, wpHandle.Obj.WeakKey)
	require.NotNil(t, wpHandle.Obj.WeakValue)
}

// Finalizers run for external allocations once their owner dies.
func TestFinalizerRunsAfterOwnerDies(t *testing.T) {
	h := New(testObjSize*10, 1<<20, zerolog.Nop())
	obj, err := h.Allocate(uint16(classtable.CidObject), testObjSize)
	require.NoError(t, err)

	ran := false
	h.AllocateExternal(obj, 4096, func(*HeapObject) { ran = true })

	h.Scavenge() // obj has no root, so it dies here

	require.Equal(t, 1, h.RunPendingFinalizers())
	require.True(t, ran)
}

func TestAllocateFailsOnceYoungSpaceExhaustedAfterScavenge(t *testing.T) {
	h := New(testObjSize, 1<<20, zerolog.Nop())
	scope := h.NewHandleScope()
	defer scope.Close()

	obj, err := h.Allocate(uint16(classtable.CidObject), testObjSize)
	require.NoError(t, err)
	scope.NewHandle(obj)

	_, err = h.Allocate(uint16(classtable.CidObject), testObjSize)
	require.Error(t, err, "the only resident object is rooted, so the retry after scavenging must still fail")
}
