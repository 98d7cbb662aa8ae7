// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classfinalizer

import (
	"govm/internal/classtable"
	"govm/internal/vmerror"
)

// ResolveRedirectingFactory resolves a factory that redirects to
// another constructor or factory. Resolution walks the redirection
// chain, detects cycles, verifies parameter
// compatibility when error-on-bad-override is enabled, verifies
// const-ness, and on success updates the factory to point directly at
// the terminal target.
func (f *Finalizer) ResolveRedirectingFactory(origin *classtable.Class, fn *classtable.Function) error {
	if fn.RedirectsTo == nil {
		return nil
	}
	visited := map[*classtable.Function]bool{fn: true}
	cur := fn
	for cur.RedirectsTo != nil {
		next := cur.RedirectsTo
		if visited[next] {
			return vmerror.CompileError(origin.Script, origin.TokenPos,
				"cyclic factory redirection starting at %q", fn.Name)
		}
		visited[next] = true
		cur = next
	}
	terminal := cur

	if fn.IsConst && !terminal.IsConst {
		return vmerror.CompileError(origin.Script, origin.TokenPos,
			"const factory %q may only redirect to a const target, but %q is not const",
			fn.Name, terminal.Name)
	}

	if f.strict {
		if err := checkParameterCompatibility(fn, terminal); err != nil {
			return err
		}
	}

	// On success, update the factory to point directly at the
	// terminal target and record the terminal's result type, as is,
	// as the redirection type; no type arguments are substituted.
	fn.RedirectsTo = terminal
	if fn.Signature != nil && terminal.Signature != nil {
		fn.RedirectType = terminal.Signature.ResultType
	}
	return nil
}

// checkParameterCompatibility is the error-on-bad-override parameter
// check; it compares arity since the full variance-aware signature
// comparison belongs to the excluded front end.
func checkParameterCompatibility(fn, terminal *classtable.Function) error {
	if fn.Signature == nil || terminal.Signature == nil {
		return nil
	}
	if len(fn.Signature.ParameterTypes) != len(terminal.Signature.ParameterTypes) {
		return vmerror.CompileError("", 0,
			"factory %q redirects to %q with incompatible parameter count", fn.Name, terminal.Name)
	}
	return nil
}
