// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classfinalizer

import (
	"govm/internal/classtable"
	"govm/internal/types"
	"govm/internal/vmerror"
)

// checkBounds checks, for each type parameter of target, the argument
// against its declared bound. A bound that is itself a type parameter
// is substituted through the current arguments; type parameters nested
// inside a parameterized bound are not substituted. If the bound is
// still being finalized (mutual F-bounded dependency) the argument is wrapped in a
// BoundedType and the check deferred; otherwise a subtype check runs,
// and on failure the argument or bound being uninstantiated also
// defers via BoundedType, while a fully-instantiated failure is a hard
// bound error on the enclosing type.
func (f *Finalizer) checkBounds(origin *classtable.Class, target *classtable.Class, flat []types.Type) error {
	instantiator := &types.FlatTypeArguments{Args: flat}
	offset := target.NumTypeArguments - len(target.TypeParameters)

	for i, param := range target.TypeParameters {
		if param.Bound == nil || types.IsDynamic(param.Bound) {
			continue
		}
		argIndex := offset + i
		if argIndex >= len(flat) {
			continue
		}
		arg := flat[argIndex]

		bound := param.Bound
		if bpt, ok := bound.(*types.ParameterizedType); ok && bpt.State() == types.BeingFinalized {
			// Mutual F-bounded dependency: defer the check.
			flat[argIndex] = types.NewBoundedType(arg, bound, param)
			continue
		}
		instantiatedBound := instantiateBound(bound, instantiator)

		if f.IsSubtype(arg, instantiatedBound) {
			continue
		}

		argInstantiated := arg.State().IsFinalized()
		boundInstantiated := instantiatedBound.State().IsFinalized()
		if !argInstantiated || !boundInstantiated {
			flat[argIndex] = types.NewBoundedType(arg, instantiatedBound, param)
			continue
		}
		return vmerror.CompileError(origin.Script, origin.TokenPos,
			"type argument %d does not satisfy bound of %q in %q", argIndex, param.Name, target.Name)
	}
	return nil
}

func instantiateBound(bound types.Type, instantiator types.TypeArguments) types.Type {
	if tp, ok := bound.(*types.TypeParameterType); ok {
		return tp.Substitute(instantiator)
	}
	return bound
}
