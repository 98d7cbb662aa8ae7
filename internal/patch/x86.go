// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package patch

import (
	"encoding/binary"

	"golang.org/x/arch/x86/x86asm"

	"govm/internal/codeobj"
	"govm/internal/tagged"
)

// maxCallLen bounds the backward scan x86Backend uses to locate the
// call instruction immediately preceding a return address: x86's
// longest plausible near-call encoding (with a REX prefix) is 6 bytes.
const maxCallLen = 6

// x86Backend is the reference patch.Backend, built on
// golang.org/x/arch/x86/x86asm's instruction-length tables the same
// way the teacher's own assembler/disassembler backends
// (compile/internal/*, objdump) decode instruction boundaries rather
// than assuming a fixed width.
type x86Backend struct{}

// NewX86Backend returns the x86/x86-64 reference patcher.
func NewX86Backend() Backend { return x86Backend{} }

// locateCall scans backward from returnAddr for a byte offset that
// both decodes as a CALL rel32 and whose instruction length lands
// exactly on returnAddr, pattern-matching the small fixed instruction
// sequence the compiler emits around the return address.
func locateCall(code []byte, returnAddr uint32) (start int, inst x86asm.Inst, err error) {
	for length := 5; length <= maxCallLen; length++ {
		start := int(returnAddr) - length
		if start < 0 {
			continue
		}
		inst, err := x86asm.Decode(code[start:], 64)
		if err != nil || inst.Len != length {
			continue
		}
		if inst.Op != x86asm.CALL {
			continue
		}
		if _, ok := inst.Args[0].(x86asm.Rel); !ok {
			continue
		}
		return start, inst, nil
	}
	return 0, x86asm.Inst{}, &InstructionLengthError{ReturnAddr: returnAddr}
}

func (x86Backend) ReadCallTarget(code []byte, returnAddr uint32) (uint32, error) {
	start, inst, err := locateCall(code, returnAddr)
	if err != nil {
		return 0, err
	}
	rel, ok := inst.Args[0].(x86asm.Rel)
	if !ok {
		return 0, &InstructionLengthError{ReturnAddr: returnAddr}
	}
	return uint32(start) + uint32(inst.Len) + uint32(rel), nil
}

func (x86Backend) WriteCallTarget(code []byte, returnAddr uint32, target uint32) error {
	start, inst, err := locateCall(code, returnAddr)
	if err != nil {
		return err
	}
	rel := int32(target) - int32(start) - int32(inst.Len)
	binary.LittleEndian.PutUint32(code[start+inst.Len-4:start+inst.Len], uint32(rel))
	return nil
}

func (x86Backend) InsertCall(code []byte, addr uint32, target uint32) error {
	if int(addr)+5 > len(code) {
		return &InstructionLengthError{ReturnAddr: addr}
	}
	rel := int32(target) - int32(addr) - 5
	code[addr] = 0xE8 // CALL rel32
	binary.LittleEndian.PutUint32(code[addr+1:addr+5], uint32(rel))
	return nil
}

// ReadEdgeCounter and WriteEdgeCounter access the edge-counter Smi
// stored in the code object's object pool at the index encoded by the
// preceding load instruction. The reference backend keeps this
// indirection simple: the counter's pool index is the deopt id of the
// IC-call descriptor at returnAddr (see codeobj.PCDescriptor), since
// the compiler allocates one pool slot per profiled edge in program
// order.
func (x86Backend) ReadEdgeCounter(code *codeobj.CodeObject, returnAddr uint32) (int64, error) {
	desc, ok := code.DescriptorFor(returnAddr, codeobj.PCICCall)
	if !ok {
		return 0, &InstructionLengthError{ReturnAddr: returnAddr}
	}
	idx := int(desc.DeoptID)
	if idx < 0 || idx >= len(code.ObjectPool) {
		return 0, &InstructionLengthError{ReturnAddr: returnAddr}
	}
	return code.ObjectPool[idx].SmiValue(), nil
}

func (x86Backend) WriteEdgeCounter(code *codeobj.CodeObject, returnAddr uint32, count int64) error {
	desc, ok := code.DescriptorFor(returnAddr, codeobj.PCICCall)
	if !ok {
		return &InstructionLengthError{ReturnAddr: returnAddr}
	}
	idx := int(desc.DeoptID)
	if idx < 0 || idx >= len(code.ObjectPool) {
		return &InstructionLengthError{ReturnAddr: returnAddr}
	}
	code.ObjectPool[idx] = tagged.NewSmi(count)
	return nil
}

func (x86Backend) NeedsICacheFlush() bool { return true }
