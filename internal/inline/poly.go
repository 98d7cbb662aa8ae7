// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inline

import "govm/internal/ssa"

// PolymorphicPlan is the decision DAG built for one polymorphic call
// site: a chain of class-id comparisons, one per expanded variant in
// descending execution-count order, each guarding a spliced copy of
// that variant's body, with any variants left over from the expansion
// cap collapsed into a single fallback inline-cache call. If every
// observed variant fits under the expansion cap, the last guard
// deoptimizes instead of falling back, since there is no IC call left
// to catch an unanticipated receiver class.
type PolymorphicPlan struct {
	Guards   []*ssa.BasicBlock // one block per expanded variant, each ending in OpBranch (OpTypeGuard for the last when Fallback is nil)
	Join     *ssa.BasicBlock   // the shared join-entry block every branch returns through
	Fallback *ssa.Value        // the polymorphic IC call covering unexpanded variants, or nil
}

// MaxPolymorphicVariants bounds how many of a call site's variants get
// a dedicated guarded branch before the rest fall back to the inline
// cache, so a megamorphic site doesn't blow up into one branch per
// observed class.
const MaxPolymorphicVariants = 4

// ExpandPolymorphic builds site's decision DAG inside caller, guarding
// each of the top MaxPolymorphicVariants variants (by descending
// Count, the order ssa.Value.Variants is already sorted in per
// internal/ssa's doc comment) with an OpClassIdLoad/OpStrictEq/
// OpBranch triple and splicing inlineBody(variant) behind the guard.
// Remaining variants are left to a single fallback polymorphic call.
func ExpandPolymorphic(caller *ssa.Function, site *CallSite, inlineBody func(variant ssa.CallVariant) *ssa.Function) (*PolymorphicPlan, error) {
	entry := site.Value.Block
	join := caller.NewBlock()

	variants := site.Value.Variants
	expandCount := len(variants)
	if expandCount > MaxPolymorphicVariants {
		expandCount = MaxPolymorphicVariants
	}

	plan := &PolymorphicPlan{Join: join}
	cur := entry
	receiver := site.Value.Args[0]
	allExpanded := expandCount == len(variants)

	for i := 0; i < expandCount; i++ {
		variant := variants[i]
		last := i == expandCount-1

		cidLoad := caller.NewValue(ssa.OpClassIdLoad, receiver)
		cur.AddValue(cidLoad)

		constCid := caller.NewValue(ssa.OpConstant)
		constCid.Const = variant.ClassID
		cur.AddValue(constCid)

		callee := inlineBody(variant)
		trueBlock := caller.NewBlock()

		if last && allExpanded {
			// No fallback remains to catch a receiver whose class
			// matches none of the known variants: the check must
			// deoptimize instead of branching around the body, then
			// fall unconditionally into the spliced body.
			guard := caller.NewValue(ssa.OpTypeGuard, cidLoad, constCid)
			cur.AddValue(guard)
			cur.AddEdge(trueBlock)
			plan.Guards = append(plan.Guards, cur)

			guardBody, err := spliceBody(caller, trueBlock, callee, []*ssa.Value{receiver})
			if err != nil {
				return nil, err
			}
			guardBody.AddEdge(join)
			return plan, nil
		}

		eq := caller.NewValue(ssa.OpStrictEq, cidLoad, constCid)
		cur.AddValue(eq)

		branch := caller.NewValue(ssa.OpBranch, eq)
		cur.AddValue(branch)

		guardBody, err := spliceBody(caller, trueBlock, callee, []*ssa.Value{receiver})
		if err != nil {
			return nil, err
		}
		guardBody.AddEdge(join)

		next := caller.NewBlock()
		cur.AddEdge(trueBlock)
		cur.AddEdge(next)
		plan.Guards = append(plan.Guards, cur)
		cur = next
	}

	fallback := caller.NewValue(ssa.OpPolymorphicCall, receiver)
	fallback.Variants = variants[expandCount:]
	cur.AddValue(fallback)
	plan.Fallback = fallback
	cur.AddEdge(join)

	return plan, nil
}
