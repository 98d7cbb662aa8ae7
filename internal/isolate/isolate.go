// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package isolate bundles the state owned by one execution unit: its
// class table, its heap, its sticky long-jump error slot, and the
// write-barrier store buffer the heap already tracks internally.
// Unlike the source VM's
// thread-local `Isolate::Current()`, internal/isolate.Context is
// passed explicitly to every entry point — the idiomatic Go shape for
// state that would otherwise live in a goroutine-local, which Go does
// not have.
//
// Grounded on the teacher's compile/internal/types package-level state
// (a single process-wide set of tables and flags the whole compiler
// shares); this tree generalizes that into one bundle per isolate
// instance, since a single govm process can host more than one.
package isolate

import (
	"github.com/rs/zerolog"

	"govm/internal/classfinalizer"
	"govm/internal/classtable"
	"govm/internal/config"
	"govm/internal/heap"
	"govm/internal/inline"
	"govm/internal/types"
	"govm/internal/vmerror"
)

// Context is one isolate's state bundle.
type Context struct {
	Config    config.Config
	Log       zerolog.Logger
	Classes   *classtable.Table
	Canon     *types.Canonicalizer
	Finalizer *classfinalizer.Finalizer
	Heap      *heap.Heap
	Inliner   *inline.Inliner
	Code      *inline.MapCodeRegistry

	// sticky is the long-jump base per isolate: it lets the finalizer,
	// the inliner, and the parser abandon a whole phase on error. Set
	// by Fail, read and cleared by TakeError.
	sticky *vmerror.Error
}

// New builds a fresh isolate: an empty class table, a canonicalizer,
// a finalizer wired to it, a heap sized per cfg, and an inliner wired
// to a CHA deoptimizer that reaches into the code registry — the
// wiring the classfinalizer.Deoptimizer doc comment describes
// ("internal/inline, internal/codeobj ... out of [classfinalizer's]
// direct dependency set to avoid an import cycle"), installed through
// SetDeoptimizer.
func New(cfg config.Config, log zerolog.Logger) *Context {
	classes := classtable.New()
	canon := types.NewCanonicalizer()
	fin := classfinalizer.New(classes, canon, log)

	inliner := inline.New(cfg, log)
	code := inline.NewMapCodeRegistry()
	deopt := inline.NewCHADeoptimizer(code, inliner)
	fin.SetDeoptimizer(deopt)

	h := heap.New(cfg.YoungSpaceBytes, cfg.OldSpaceBytes, log)

	return &Context{
		Config:    cfg,
		Log:       log,
		Classes:   classes,
		Canon:     canon,
		Finalizer: fin,
		Heap:      h,
		Inliner:   inliner,
		Code:      code,
	}
}

// Fail sticks err as this isolate's pending error, the way a compile
// error or unwind abandons the enclosing phase. It does not itself
// transfer control; callers still
// need to return after calling Fail, the same discipline the source
// VM's LongJumpScope imposes through its stack-unwind, expressed here
// as an explicit early return instead of a C++ longjmp.
func (c *Context) Fail(err *vmerror.Error) {
	c.sticky = err
}

// Failed reports whether a sticky error is pending.
func (c *Context) Failed() bool { return c.sticky != nil }

// TakeError clears and returns the pending sticky error, or nil if
// none is set.
func (c *Context) TakeError() *vmerror.Error {
	err := c.sticky
	c.sticky = nil
	return err
}
