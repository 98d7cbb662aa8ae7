// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inline

import "govm/internal/ssa"

// RecognizedIdentity builds the trivial hand-written body for a
// single-argument identity accessor (e.g. a boxed wrapper's unboxing
// getter): return the sole parameter unmodified. Always eligible for
// inlining via CalleeInfo.AlwaysInline regardless of the caller's
// accumulated size.
func RecognizedIdentity(name string) *ssa.Function {
	f := ssa.NewFunction(name)
	p := f.NewValue(ssa.OpParameter)
	f.Params = []*ssa.Value{p}
	ret := f.NewValue(ssa.OpReturn, p)
	f.Entry.AddValue(p)
	f.Entry.AddValue(ret)
	return f
}

// RecognizedConstantBool builds the hand-written body for a
// zero-argument predicate that always answers value — e.g. a
// finalized class's "is this the empty-list sentinel" check once CHA
// has proven the answer statically.
func RecognizedConstantBool(name string, value bool) *ssa.Function {
	f := ssa.NewFunction(name)
	c := f.NewValue(ssa.OpConstant)
	c.Const = value
	ret := f.NewValue(ssa.OpReturn, c)
	f.Entry.AddValue(c)
	f.Entry.AddValue(ret)
	return f
}

// RecognizedInfo describes a recognized method's size for the
// should-inline heuristic: always small, always call-site-free, and
// AlwaysInline so the size/call-site gates never reject it.
func RecognizedInfo(name string) CalleeInfo {
	return CalleeInfo{Name: name, InstructionCount: 1, CallSiteCount: 0, AlwaysInline: true}
}
