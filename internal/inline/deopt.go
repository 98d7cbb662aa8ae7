// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inline

import (
	"govm/internal/codeobj"
	"govm/internal/types"
)

// CodeRegistry resolves (classId, functionName) to the compiled code
// currently installed for that method, the lookup CHA invalidation
// needs before it can deoptimize anything.
type CodeRegistry interface {
	Lookup(classId types.ClassId, functionName string) *codeobj.CodeObject
}

// MapCodeRegistry is the in-memory CodeRegistry a single-process
// fixture run uses: one code object per (class, method) pair, keyed
// the way internal/classtable keys its class-member lookups.
type MapCodeRegistry struct {
	byKey map[registryKey]*codeobj.CodeObject
}

type registryKey struct {
	classId types.ClassId
	name    string
}

func NewMapCodeRegistry() *MapCodeRegistry {
	return &MapCodeRegistry{byKey: make(map[registryKey]*codeobj.CodeObject)}
}

func (r *MapCodeRegistry) Install(classId types.ClassId, functionName string, code *codeobj.CodeObject) {
	r.byKey[registryKey{classId, functionName}] = code
}

func (r *MapCodeRegistry) Lookup(classId types.ClassId, functionName string) *codeobj.CodeObject {
	return r.byKey[registryKey{classId, functionName}]
}

// CHADeoptimizer is the concrete classfinalizer.Deoptimizer this
// package installs so class-hierarchy-analysis invalidation reaches
// all the way into a method's installed code: it marks the code
// unoptimized, records a lazy-deopt jump in the code's PC-descriptor
// table at each return address on file (InstallLazyDeoptJump counts
// each newly added descriptor in the code's DeoptCount), and flags the
// method non-inlinable. No instruction bytes are patched here, and the
// non-inlinable flag is never cleared.
type CHADeoptimizer struct {
	Registry CodeRegistry
	Inliner  *Inliner

	// ReturnAddrs lists, per (classId, functionName), the live return
	// addresses DeoptimizeMethod marks through InstallLazyDeoptJump.
	// An empty list means no descriptor is written for that method.
	ReturnAddrs map[registryKey][]uint32
}

func NewCHADeoptimizer(reg CodeRegistry, in *Inliner) *CHADeoptimizer {
	return &CHADeoptimizer{Registry: reg, Inliner: in, ReturnAddrs: make(map[registryKey][]uint32)}
}

// RecordReturnAddr notes a live return address for (classId,
// functionName) so a later DeoptimizeMethod call patches it.
func (d *CHADeoptimizer) RecordReturnAddr(classId types.ClassId, functionName string, returnAddr uint32) {
	k := registryKey{classId, functionName}
	d.ReturnAddrs[k] = append(d.ReturnAddrs[k], returnAddr)
}

// DeoptimizeMethod implements classfinalizer.Deoptimizer.
func (d *CHADeoptimizer) DeoptimizeMethod(classId types.ClassId, functionName string) {
	code := d.Registry.Lookup(classId, functionName)
	if code == nil {
		return
	}
	code.IsOptimized = false
	for _, ret := range d.ReturnAddrs[registryKey{classId, functionName}] {
		code.InstallLazyDeoptJump(ret, int32(code.DeoptCount))
	}
	if d.Inliner != nil {
		d.Inliner.MarkNonInlinable(functionName)
	}
}
