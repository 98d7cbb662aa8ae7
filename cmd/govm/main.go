// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command govm drives one isolate through class finalization and the
// optimizing inliner over a small built-in fixture, reporting what it
// did — a smoke-test harness rather than a full script loader, since
// there is no concrete source/snapshot file format to load yet.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"govm/internal/classtable"
	"govm/internal/config"
	"govm/internal/inline"
	"govm/internal/isolate"
	"govm/internal/ssa"
	"govm/internal/types"
)

func main() {
	fs := pflag.NewFlagSet("govm", pflag.ExitOnError)
	verbose := fs.Bool("verbose", false, "emit debug-level diagnostics")
	v := config.BindFlags(fs)
	fs.Parse(os.Args[1:])
	cfg := config.FromViper(v)

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(level)

	ctx := isolate.New(cfg, log)

	if err := runFixture(ctx); err != nil {
		log.Error().Err(err).Msg("fixture run failed")
		os.Exit(1)
	}
}

// runFixture exercises class finalization and the inliner over a
// minimal in-memory program: a class hierarchy with one mixin
// application, and a caller function with one hot static call site —
// enough to drive both internal/classfinalizer and internal/inline
// through their main paths end to end.
func runFixture(ctx *isolate.Context) error {
	classtable.RegisterPredefined(ctx.Classes)

	animal := classtable.NewClass(0, "Animal", "fixture.dart", 0)
	animal.SuperType = types.NewParameterizedType(classtable.CidObject, nil)
	ctx.Classes.Register(animal)
	ctx.Classes.AddPending(animal)

	flyable := classtable.NewClass(0, "Flyable", "fixture.dart", 0)
	flyable.SuperType = types.NewParameterizedType(classtable.CidObject, nil)
	ctx.Classes.Register(flyable)
	ctx.Classes.AddPending(flyable)

	bird := classtable.NewClass(0, "Bird", "fixture.dart", 0)
	ctx.Classes.Register(bird)
	bird.SuperType = types.NewMixinApplicationType(
		types.NewParameterizedType(animal.Id, nil),
		[]*types.ParameterizedType{types.NewParameterizedType(flyable.Id, nil)},
	)
	ctx.Classes.AddPending(bird)

	if err := ctx.Finalizer.FinalizePendingClasses(); err != nil {
		return err
	}
	finalized := 0
	for cid := 0; cid < ctx.Classes.Len(); cid++ {
		if cls := ctx.Classes.At(types.ClassId(cid)); cls != nil && cls.IsFinalized() {
			finalized++
		}
	}
	ctx.Log.Info().Int("class_count", finalized).Msg("classes finalized")

	leaf := inline.RecognizedIdentity("Box.value")
	caller := ssa.NewFunction("Caller.run")
	arg := caller.NewValue(ssa.OpParameter)
	caller.Entry.AddValue(arg)
	call := caller.NewValue(ssa.OpStaticCall, arg)
	call.Callee = "Box.value"
	call.ExecutionCount = 100
	caller.Entry.AddValue(call)
	ret := caller.NewValue(ssa.OpReturn, call)
	caller.Entry.AddValue(ret)

	resolve := func(name string) (*ssa.Function, inline.CalleeInfo, bool) {
		if name != "Box.value" {
			return nil, inline.CalleeInfo{}, false
		}
		return leaf, inline.RecognizedInfo(name), true
	}

	count, err := ctx.Inliner.Run(caller, resolve)
	if err != nil {
		return err
	}
	ctx.Log.Info().Int("inlined_call_sites", count).Msg("inliner pass complete")

	fmt.Printf("finalized %d classes, inlined %d call site(s)\n", finalized, count)
	return nil
}
