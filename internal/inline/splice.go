// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inline

import "govm/internal/ssa"

// Splice replaces site's call instruction in caller with callee's
// body, substituting actuals for callee's parameter stubs, and wires
// the body's return value back into whatever consumed the call's
// result.
//
// Splicing happens block-at-a-time: the call site's block is split
// right after the call instruction, the values of callee's first block
// are appended to the call site's block, each further callee block's
// values go into a fresh block allocated by caller, and control flows:
// call-site block -> ... -> callee exit -> call-site suffix.
func Splice(caller *ssa.Function, site *CallSite, callee *ssa.Function, actuals []*ssa.Value) (*ssa.BasicBlock, error) {
	callBlock := site.Value.Block
	suffix := splitAfter(caller, callBlock, site.Value)

	body, err := spliceBody(caller, callBlock, callee, actuals)
	if err != nil {
		return nil, err
	}
	body.AddEdge(suffix)
	return suffix, nil
}

// splitAfter moves every value following target in block into a fresh
// successor block, preserving block's existing control-flow
// successors on the new block and leaving block ending right after
// target.
func splitAfter(f *ssa.Function, block *ssa.BasicBlock, target *ssa.Value) *ssa.BasicBlock {
	idx := -1
	for i, v := range block.Values {
		if v == target {
			idx = i
			break
		}
	}
	suffix := f.NewBlock()
	if idx >= 0 && idx+1 < len(block.Values) {
		suffix.Values = append(suffix.Values, block.Values[idx+1:]...)
		for _, v := range suffix.Values {
			v.Block = suffix
		}
		block.Values = block.Values[:idx+1]
	}
	suffix.Succs = block.Succs
	for _, s := range suffix.Succs {
		for i, p := range s.Preds {
			if p == block {
				s.Preds[i] = suffix
			}
		}
	}
	block.Succs = nil
	return suffix
}

// spliceBody moves callee's values, all but its OpReturn values, into
// caller: the first callee block's values are appended to entry and
// each further block's values go into a fresh block chained after the
// previous one. It returns the block that received the returning
// callee block's values (the last block when none returns). actuals
// are bound positionally to callee.Params: every argument that is one
// of callee.Params is replaced in place by the matching actual.
func spliceBody(caller *ssa.Function, entry *ssa.BasicBlock, callee *ssa.Function, actuals []*ssa.Value) (*ssa.BasicBlock, error) {
	paramBinding := make(map[*ssa.Value]*ssa.Value)
	for i, p := range callee.Params {
		if i < len(actuals) {
			paramBinding[p] = actuals[i]
		}
	}

	var exit *ssa.BasicBlock
	prev := entry
	first := true
	for _, b := range callee.Blocks {
		target := entry
		if !first {
			target = caller.NewBlock()
			prev.AddEdge(target)
		}
		first = false
		for _, v := range b.Values {
			for i, arg := range v.Args {
				if bound, ok := paramBinding[arg]; ok {
					v.Args[i] = bound
				}
			}
			if v.Op != ssa.OpReturn {
				target.AddValue(v)
			}
		}
		if hasReturn(b) {
			exit = target
		}
		prev = target
	}
	if exit == nil {
		exit = prev
	}
	return exit, nil
}

func hasReturn(b *ssa.BasicBlock) bool {
	for _, v := range b.Values {
		if v.Op == ssa.OpReturn {
			return true
		}
	}
	return false
}
