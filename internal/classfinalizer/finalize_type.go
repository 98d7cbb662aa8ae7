// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classfinalizer

import (
	"govm/internal/classtable"
	"govm/internal/types"
	"govm/internal/vmerror"
)

// finalizeTypesOf finalizes every type attached to cls: its super
// type, interfaces, mixin (if any), field types, and function
// signatures.
func (f *Finalizer) finalizeTypesOf(cls *classtable.Class) error {
	if pt, ok := cls.SuperType.(*types.ParameterizedType); ok {
		finalized, err := f.finalizeType(cls, pt)
		if err != nil {
			return err
		}
		cls.SuperType = finalized
	}
	for _, param := range cls.TypeParameters {
		if pt, ok := param.Bound.(*types.ParameterizedType); ok {
			finalized, err := f.finalizeType(cls, pt)
			if err != nil {
				return err
			}
			param.Bound = finalized
		}
	}
	for i, iface := range cls.Interfaces {
		pt, ok := iface.(*types.ParameterizedType)
		if !ok {
			continue
		}
		finalized, err := f.finalizeType(cls, pt)
		if err != nil {
			return err
		}
		cls.Interfaces[i] = finalized
	}
	if pt, ok := cls.Mixin.(*types.ParameterizedType); ok {
		finalized, err := f.finalizeType(cls, pt)
		if err != nil {
			return err
		}
		cls.Mixin = finalized
	}
	for _, field := range cls.Fields {
		if pt, ok := field.Type.(*types.ParameterizedType); ok {
			finalized, err := f.finalizeType(cls, pt)
			if err != nil {
				return err
			}
			field.Type = finalized
		}
	}
	for _, fn := range cls.Functions {
		if fn.Signature == nil {
			continue
		}
		if pt, ok := fn.Signature.ResultType.(*types.ParameterizedType); ok {
			finalized, err := f.finalizeType(cls, pt)
			if err != nil {
				return err
			}
			fn.Signature.ResultType = finalized
		}
		for j, p := range fn.Signature.ParameterTypes {
			if pt, ok := p.(*types.ParameterizedType); ok {
				finalized, err := f.finalizeType(cls, pt)
				if err != nil {
					return err
				}
				fn.Signature.ParameterTypes[j] = finalized
			}
		}
	}
	return nil
}

// finalizeType finalizes a single ParameterizedType reference: its
// arguments are recursively finalized, its flattened type-argument
// vector is built and bound-checked, and the result is canonicalized.
func (f *Finalizer) finalizeType(origin *classtable.Class, t *types.ParameterizedType) (*types.ParameterizedType, error) {
	// 1. If already finalized, canonicalize and return.
	if t.State().IsFinalized() {
		return f.Canon.Canonicalize(t).(*types.ParameterizedType), nil
	}

	target := f.Table.At(t.Class)
	if target == nil {
		return nil, vmerror.CompileError(origin.Script, origin.TokenPos,
			"unresolved class reference (cid %d)", t.Class)
	}

	// 2. Mark the type "being-finalized" to detect F-bounded
	// self-reference.
	t.SetBeingFinalized()

	// 3. Finalize its own type arguments recursively.
	var parsedArgs []types.Type
	if t.Arguments != nil {
		parsedArgs = make([]types.Type, len(t.Arguments.Args))
		for i, a := range t.Arguments.Args {
			if pt, ok := a.(*types.ParameterizedType); ok {
				if pt.State() == types.BeingFinalized {
					// F-bounded cycle: substitute dynamic to break it.
					parsedArgs[i] = types.Dynamic
					continue
				}
				fin, err := f.finalizeType(origin, pt)
				if err != nil {
					return nil, err
				}
				parsedArgs[i] = fin
				continue
			}
			parsedArgs[i] = a
		}
	}

	// 4. Fill the flattened type-argument vector of length
	// num_type_arguments_of(class): a super-derived prefix, then the
	// parsed suffix, defaulting missing positions to dynamic.
	numTypeParams := len(target.TypeParameters)
	prefixLen := target.NumTypeArguments - numTypeParams
	flat := make([]types.Type, 0, target.NumTypeArguments)

	if prefixLen > 0 && target.Superclass != nil {
		superFlat := superFlattenedArgs(target.Superclass, parsedArgs, numTypeParams)
		flat = append(flat, superFlat...)
	}
	for i := 0; i < numTypeParams; i++ {
		if i < len(parsedArgs) {
			flat = append(flat, parsedArgs[i])
		} else {
			flat = append(flat, types.Dynamic)
		}
	}

	// 5. Check type-argument bounds.
	if err := f.checkBounds(origin, target, flat); err != nil {
		return nil, err
	}

	// 6. If the whole vector is semantically equivalent to
	// <dynamic,...>, null it out.
	var finalArgs *types.FlatTypeArguments
	if types.IsDynamicVector(flat, types.IsDynamic) {
		finalArgs = nil
	} else {
		finalArgs = &types.FlatTypeArguments{Args: flat}
	}

	t.Arguments = finalArgs
	// 7. Canonicalize and set finalized-instantiated or
	// finalized-uninstantiated.
	if finalArgs.IsInstantiated() {
		t.SetState(types.FinalizedInstantiated)
	} else {
		t.SetState(types.FinalizedUninstantiated)
	}
	return f.Canon.Canonicalize(t).(*types.ParameterizedType), nil
}

// superFlattenedArgs instantiates target's own flattened arguments
// through the current (not-yet-fully-finalized) arguments, forming the
// super-derived prefix of the flattened vector.
func superFlattenedArgs(target *classtable.Class, instantiator []types.Type, expectLen int) []types.Type {
	vec := &types.FlatTypeArguments{Args: instantiator}
	out := make([]types.Type, 0, expectLen)
	for i := 0; i < target.NumTypeArguments; i++ {
		if i < len(target.TypeParameters) {
			// target's own type parameters substitute through
			// instantiator.
			p := target.TypeParameters[i]
			out = append(out, p.Substitute(vec))
			continue
		}
		out = append(out, types.Dynamic)
	}
	return out
}
