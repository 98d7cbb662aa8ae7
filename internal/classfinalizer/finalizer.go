// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package classfinalizer implements class finalization: resolving
// class references, flattening generic type-argument vectors,
// synthesizing mixin application classes, checking F-bounded type
// parameter bounds, and detecting cycles in super/mixin/typedef
// chains.
//
// Grounded on cmd/compile/internal/types2.Named's lazy, cycle-safe
// expansion (other_examples/fbf98873_trailofbits-go-panikint__...
// named.go.go) for the overall "mark being-finalized, detect
// self-reference, substitute and retry" shape, and on the teacher's
// cmd/compile/internal/types/utils.go (see
// _examples/ymm135-go/src/cmd_local/compile/internal/types/utils.go)
// for the Fatalf-style sticky-error reporting convention.
package classfinalizer

import (
	"fmt"

	"github.com/rs/zerolog"

	"govm/internal/classtable"
	"govm/internal/types"
	"govm/internal/vmerror"
)

// Finalizer runs FinalizePendingClasses to fixed point over one
// isolate's class table.
type Finalizer struct {
	Table  *classtable.Table
	Canon  *types.Canonicalizer
	Log    zerolog.Logger
	strict bool // error-on-bad-override, see ResolveRedirectingFactory

	// synthesized indexes mixin-application classes by composition
	// name so repeated requests for the same `S with M` reuse the
	// existing class instead of building a duplicate.
	synthesized map[string]*classtable.Class
	deopt       Deoptimizer
}

func New(table *classtable.Table, canon *types.Canonicalizer, log zerolog.Logger) *Finalizer {
	return &Finalizer{
		Table:       table,
		Canon:       canon,
		Log:         log,
		synthesized: make(map[string]*classtable.Class),
	}
}

// SetStrict toggles error-on-bad-override enforcement for redirecting
// factories and member overrides: when set, a redirecting factory or
// overriding member whose parameters aren't compatible with what it
// redirects to or overrides raises a compile error instead of passing
// silently.
func (f *Finalizer) SetStrict(strict bool) { f.strict = strict }

// FinalizePendingClasses runs the fixed-point loop over the class
// table's pending-classes list: resolve each class's super type and
// interfaces, synthesize any mixin-application classes it needs (which
// may itself enqueue new pending classes), and repeat until the list
// is empty. Once the fixed point is reached, every drained class's
// types are finalized and its members resolved, and CHA invalidation
// runs over the whole batch.
func (f *Finalizer) FinalizePendingClasses() error {
	var allDrained []*classtable.Class
	affectedForCHA := map[types.ClassId]bool{}

	for f.Table.HasPending() {
		batch := f.Table.DrainPending()
		for _, cls := range batch {
			if err := f.resolveSuperAndInterfaces(cls); err != nil {
				return err
			}
			if err := f.applyMixins(cls); err != nil {
				return err
			}
			allDrained = append(allDrained, cls)
			affectedForCHA[cls.Id] = true
		}
	}

	for _, cls := range allDrained {
		if err := f.finalizeTypesOf(cls); err != nil {
			return err
		}
	}
	for _, cls := range allDrained {
		if err := f.resolveMembers(cls); err != nil {
			return err
		}
		cls.AdvanceState(classtable.Finalized)
		f.Log.Debug().Str("class", cls.Name).Msg("class finalized")
	}

	return f.invalidateCHA(affectedForCHA)
}

// resolveSuperAndInterfaces walks cls's super-type chain and interface
// list, resolving unresolved class references against the declaring
// library (or imported prefix). A visited-set scoped to cls detects
// cycles and raises a compile error.
func (f *Finalizer) resolveSuperAndInterfaces(cls *classtable.Class) error {
	visited := map[types.ClassId]bool{cls.Id: true}
	cur := cls.SuperType
	link := cls
	for cur != nil {
		pt, ok := cur.(*types.ParameterizedType)
		if !ok {
			break // mixin-application super types are handled in applyMixins
		}
		if visited[pt.Class] {
			return vmerror.CompileError(cls.Script, cls.TokenPos,
				"cyclic class hierarchy involving %q", cls.Name)
		}
		visited[pt.Class] = true
		superCls := f.Table.At(pt.Class)
		if superCls == nil {
			return vmerror.CompileError(cls.Script, cls.TokenPos,
				"unresolved super class reference (cid %d) from %q", pt.Class, cls.Name)
		}
		if err := f.checkExtendRestriction(cls, superCls); err != nil {
			return err
		}
		link.Superclass = superCls
		superCls.AddSubclass(link)
		cur = superCls.SuperType
		link = superCls
	}

	for _, iface := range cls.Interfaces {
		pt, ok := iface.(*types.ParameterizedType)
		if !ok {
			continue
		}
		ifaceCls := f.Table.At(pt.Class)
		if ifaceCls == nil {
			return vmerror.CompileError(cls.Script, cls.TokenPos,
				"unresolved interface reference (cid %d) from %q", pt.Class, cls.Name)
		}
		if err := f.checkExtendRestriction(cls, ifaceCls); err != nil {
			return err
		}
		if superPt, ok := cls.SuperType.(*types.ParameterizedType); ok && superPt.Class == pt.Class {
			return vmerror.CompileError(cls.Script, cls.TokenPos,
				"%q implements its own super type %q", cls.Name, ifaceCls.Name)
		}
	}
	if err := checkDuplicateInterfaces(cls); err != nil {
		return err
	}

	cls.AdvanceState(classtable.TypeFinalized)
	return nil
}

func checkDuplicateInterfaces(cls *classtable.Class) error {
	seen := map[types.ClassId]bool{}
	for _, iface := range cls.Interfaces {
		pt, ok := iface.(*types.ParameterizedType)
		if !ok {
			continue
		}
		if seen[pt.Class] {
			return vmerror.CompileError(cls.Script, cls.TokenPos,
				"duplicate interface in %q", cls.Name)
		}
		seen[pt.Class] = true
	}
	return nil
}

// checkExtendRestriction enforces the restricted builtin list, relaxed
// inside the compiler-reserved core library.
func (f *Finalizer) checkExtendRestriction(cls, target *classtable.Class) error {
	if cls.Script == "core" {
		return nil
	}
	if classtable.RestrictedBuiltins[target.Id] {
		return vmerror.CompileError(cls.Script, cls.TokenPos,
			"%q may not extend or implement built-in class %q", cls.Name, target.Name)
	}
	return nil
}

func classKey(superName string, mixinNames []string) string {
	key := superName
	for _, m := range mixinNames {
		key += "&" + m
	}
	return key
}

func (f *Finalizer) String() string {
	return fmt.Sprintf("Finalizer{table=%s, synthesized=%d}", f.Table, len(f.synthesized))
}
