// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classfinalizer

import "govm/internal/types"

// Deoptimizer is the narrow hook into the optimizing compiler/inliner
// (internal/inline, internal/codeobj — out of this package's direct
// dependency set to avoid an import cycle) that CHA invalidation
// drives: it deoptimizes any live optimized frames for a method and
// switches it back to unoptimized code.
type Deoptimizer interface {
	DeoptimizeMethod(classId types.ClassId, functionName string)
}

// SetDeoptimizer installs the hook CHA invalidation calls; nil (the
// default) makes invalidation a no-op bookkeeping pass, useful for
// tests of the finalizer in isolation from the inliner.
func (f *Finalizer) SetDeoptimizer(d Deoptimizer) { f.deopt = d }

// invalidateCHA handles class-hierarchy-analysis invalidation: when
// new classes join the hierarchy during finalization, every method of
// every previously finalized class that sits above one of the new
// classes in the hierarchy has its optimized code deoptimized, since
// inlining decisions based on the old hierarchy may no longer hold.
func (f *Finalizer) invalidateCHA(newClasses map[types.ClassId]bool) error {
	if f.deopt == nil || len(newClasses) == 0 {
		return nil
	}
	affected := map[types.ClassId]bool{}
	for cid := range newClasses {
		cls := f.Table.At(cid)
		if cls == nil {
			continue
		}
		for anc := cls.Superclass; anc != nil; anc = anc.Superclass {
			if anc.IsFinalized() && !newClasses[anc.Id] {
				affected[anc.Id] = true
			}
		}
	}
	for cid := range affected {
		cls := f.Table.At(cid)
		for _, fn := range cls.Functions {
			f.deopt.DeoptimizeMethod(cls.Id, fn.Name)
		}
	}
	return nil
}
