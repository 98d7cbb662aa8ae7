// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classfinalizer

import (
	"govm/internal/classtable"
	"govm/internal/types"
	"govm/internal/vmerror"
)

// applyMixins rewrites a declaration `C extends S with M1, M2, …, Mn
// implements I` into a chain of synthesized classes, each generic in
// the super's parameters (cloned, to avoid name collision) followed by
// the mixin's own (cloned preserving name).
func (f *Finalizer) applyMixins(cls *classtable.Class) error {
	mat, ok := cls.SuperType.(*types.MixinApplicationType)
	if !ok {
		return nil // ordinary extends, nothing to synthesize
	}

	super := mat.Super
	for _, mixin := range mat.Mixins {
		synthesized, err := f.synthesizeApplication(cls, super, mixin)
		if err != nil {
			return err
		}
		super = types.NewParameterizedType(synthesized.Id, flatArgsOf(synthesized))
	}
	cls.SuperType = super
	cls.Superclass = f.Table.At(super.(*types.ParameterizedType).Class)
	cls.Superclass.AddSubclass(cls)
	return nil
}

// synthesizeApplication builds (or reuses) the class named
// `<super>&<mixin>`, concatenating the super-class name, an ampersand,
// and the mixin class name, and reusing an existing synthesized class
// by that name when possible.
func (f *Finalizer) synthesizeApplication(origin *classtable.Class, superRef, mixinRef *types.ParameterizedType) (*classtable.Class, error) {
	superCls := f.Table.At(superRef.Class)
	mixinCls := f.Table.At(mixinRef.Class)
	if superCls == nil || mixinCls == nil {
		return nil, vmerror.CompileError(origin.Script, origin.TokenPos,
			"unresolved super/mixin reference while applying mixin to %q", origin.Name)
	}
	// A synthesized super (an earlier link of the same chain) is named
	// from components that were already validated.
	if !superCls.IsSynthesized {
		if err := validateNameComponent(origin.Name, origin.Script, origin.TokenPos, superCls.Name); err != nil {
			return nil, err
		}
	}
	if err := validateNameComponent(origin.Name, origin.Script, origin.TokenPos, mixinCls.Name); err != nil {
		return nil, err
	}

	name := classKey(superCls.Name, []string{mixinCls.Name})
	if existing, ok := f.synthesized[name]; ok {
		return existing, nil
	}

	// Clone each super parameter under a fresh name (original name +
	// "`") and each mixin parameter preserving its declared name, to
	// avoid collision while letting the mixed-in body still refer to
	// its own parameters by name.
	synth := classtable.NewClass(0, name, origin.Script, origin.TokenPos)
	synth.IsSynthesized = true
	synth.IsMixinApplication = true
	synth.Mixin = mixinRef
	f.Table.Register(synth)
	f.synthesized[name] = synth

	var cloned []*types.TypeParameterType
	for i, p := range superCls.TypeParameters {
		bound := types.Dynamic // cloned super parameter bounds are not constrained further
		cp := types.NewTypeParameterType(synth.Id, i, p.Name+"`", bound)
		cloned = append(cloned, cp)
	}
	mixinStart := len(cloned)
	for i, p := range mixinCls.TypeParameters {
		if p.Bound != nil && !types.IsDynamic(p.Bound) {
			return nil, vmerror.CompileError(origin.Script, origin.TokenPos,
				"bounds for cloned mixin parameters are not yet supported (class %q)", name)
		}
		cp := types.NewTypeParameterType(synth.Id, mixinStart+i, p.Name, types.Dynamic)
		cloned = append(cloned, cp)
	}
	synth.TypeParameters = cloned
	synth.NumTypeArguments = len(cloned)
	synth.SuperType = types.NewParameterizedType(superCls.Id, nil)

	// If the mixin is itself a mixin-typedef — an alias for another
	// mixin application — insert an additional layer named with an
	// appended backtick, substituting the typedef's parameters with the
	// instantiator formed by this application's own arguments.
	if mixinCls.IsMixinTypedef {
		layerName := name + "`"
		if existing, ok := f.synthesized[layerName]; ok {
			return existing, nil
		}
		layer := classtable.NewClass(0, layerName, origin.Script, origin.TokenPos)
		layer.IsSynthesized = true
		layer.IsMixinApplication = true
		layer.IsMixinTypeApplied = true
		layer.Superclass = synth
		synth.AddSubclass(layer)
		layer.TypeParameters = cloned
		layer.NumTypeArguments = len(cloned)
		f.Table.Register(layer)
		f.synthesized[layerName] = layer
		return layer, nil
	}

	synth.Superclass = superCls
	superCls.AddSubclass(synth)
	f.Table.AddPending(synth)
	return synth, nil
}

func flatArgsOf(cls *classtable.Class) *types.FlatTypeArguments {
	if len(cls.TypeParameters) == 0 {
		return nil
	}
	args := make([]types.Type, len(cls.TypeParameters))
	for i, p := range cls.TypeParameters {
		args[i] = p
	}
	return &types.FlatTypeArguments{Args: args}
}
