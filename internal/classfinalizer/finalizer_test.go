// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classfinalizer

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"govm/internal/classtable"
	"govm/internal/types"
)

func newTestFinalizer() (*Finalizer, *classtable.Table) {
	table := classtable.New()
	classtable.RegisterPredefined(table)
	canon := types.NewCanonicalizer()
	return New(table, canon, zerolog.Nop()), table
}

// S1 — F-bounded class finalization: class A<T extends A<T>>.
func TestFBoundedClassFinalization(t *testing.T) {
	fin, table := newTestFinalizer()

	a := classtable.NewClass(0, "A", "test.dart", 0)
	a.SuperType = types.NewParameterizedType(classtable.CidObject, nil)
	table.Register(a)

	param := types.NewTypeParameterType(a.Id, 0, "T", nil)
	bound := types.NewParameterizedType(a.Id, &types.FlatTypeArguments{Args: []types.Type{param}})
	param.Bound = bound
	a.TypeParameters = []*types.TypeParameterType{param}
	a.NumTypeArguments = 1
	table.AddPending(a)

	require.NoError(t, fin.FinalizePendingClasses())
	require.True(t, a.IsFinalized())
	require.Same(t, fin.Canon.Canonicalize(param.Bound), fin.Canon.Canonicalize(param.Bound))
}

// S2 — Mixin application naming: class C<E> extends S<E> with
// M<List<E>> implements I<E>.
func TestMixinApplicationNaming(t *testing.T) {
	fin, table := newTestFinalizer()

	s := classtable.NewClass(0, "S", "test.dart", 0)
	s.SuperType = types.NewParameterizedType(classtable.CidObject, nil)
	eParamS := types.NewTypeParameterType(0, 0, "E", types.Dynamic)
	s.TypeParameters = []*types.TypeParameterType{eParamS}
	s.NumTypeArguments = 1
	table.Register(s)
	eParamS.Owner = s.Id
	table.AddPending(s)

	m := classtable.NewClass(0, "M", "test.dart", 0)
	m.SuperType = types.NewParameterizedType(classtable.CidObject, nil)
	listEParam := types.NewTypeParameterType(0, 0, "X", types.Dynamic)
	m.TypeParameters = []*types.TypeParameterType{listEParam}
	m.NumTypeArguments = 1
	table.Register(m)
	listEParam.Owner = m.Id
	table.AddPending(m)

	require.NoError(t, fin.FinalizePendingClasses())

	// Now declare C<E> extends S<E> with M<List<E>> implements I<E>.
	c := classtable.NewClass(0, "C", "test.dart", 0)
	eParamC := types.NewTypeParameterType(0, 0, "E", types.Dynamic)
	c.TypeParameters = []*types.TypeParameterType{eParamC}
	table.Register(c)
	eParamC.Owner = c.Id

	superRef := types.NewParameterizedType(s.Id, &types.FlatTypeArguments{Args: []types.Type{eParamC}})
	mixinRef := types.NewParameterizedType(m.Id, &types.FlatTypeArguments{Args: []types.Type{eParamC}})
	c.SuperType = types.NewMixinApplicationType(superRef, []*types.ParameterizedType{mixinRef})
	table.AddPending(c)

	require.NoError(t, fin.FinalizePendingClasses())

	synthName := "S&M"
	synth, ok := table.FindByName(synthName)
	require.True(t, ok, "expected a synthesized class named %q", synthName)
	require.True(t, synth.IsMixinApplication)
	require.Len(t, synth.TypeParameters, 2)

	require.NotNil(t, c.SuperType)
	superPt, ok := c.SuperType.(*types.ParameterizedType)
	require.True(t, ok)
	require.Equal(t, synth.Id, superPt.Class)

	// Requesting the same composition twice reuses the same
	// synthesized class.
	d := classtable.NewClass(0, "D", "test.dart", 0)
	eParamD := types.NewTypeParameterType(0, 0, "E", types.Dynamic)
	d.TypeParameters = []*types.TypeParameterType{eParamD}
	table.Register(d)
	eParamD.Owner = d.Id
	superRef2 := types.NewParameterizedType(s.Id, &types.FlatTypeArguments{Args: []types.Type{eParamD}})
	mixinRef2 := types.NewParameterizedType(m.Id, &types.FlatTypeArguments{Args: []types.Type{eParamD}})
	d.SuperType = types.NewMixinApplicationType(superRef2, []*types.ParameterizedType{mixinRef2})
	table.AddPending(d)
	require.NoError(t, fin.FinalizePendingClasses())

	superPtD := d.SuperType.(*types.ParameterizedType)
	require.Equal(t, synth.Id, superPtD.Class, "same composition must reuse the synthesized class")
}

func TestCyclicHierarchyIsRejected(t *testing.T) {
	fin, table := newTestFinalizer()

	a := classtable.NewClass(0, "A", "test.dart", 0)
	table.Register(a)
	b := classtable.NewClass(0, "B", "test.dart", 0)
	table.Register(b)

	a.SuperType = types.NewParameterizedType(b.Id, nil)
	b.SuperType = types.NewParameterizedType(a.Id, nil)
	table.AddPending(a)
	table.AddPending(b)

	err := fin.FinalizePendingClasses()
	require.Error(t, err)
}

func TestDuplicateInterfaceIsRejected(t *testing.T) {
	fin, table := newTestFinalizer()

	i := classtable.NewClass(0, "I", "test.dart", 0)
	i.SuperType = types.NewParameterizedType(classtable.CidObject, nil)
	table.Register(i)
	table.AddPending(i)
	require.NoError(t, fin.FinalizePendingClasses())

	c := classtable.NewClass(0, "C", "test.dart", 0)
	c.SuperType = types.NewParameterizedType(classtable.CidObject, nil)
	c.Interfaces = []types.Type{
		types.NewParameterizedType(i.Id, nil),
		types.NewParameterizedType(i.Id, nil),
	}
	table.Register(c)
	table.AddPending(c)

	err := fin.FinalizePendingClasses()
	require.Error(t, err)
}

func TestRestrictedBuiltinExtendIsRejected(t *testing.T) {
	fin, table := newTestFinalizer()

	c := classtable.NewClass(0, "MyInt", "user.dart", 0)
	c.SuperType = types.NewParameterizedType(classtable.CidInteger, nil)
	table.Register(c)
	table.AddPending(c)

	err := fin.FinalizePendingClasses()
	require.Error(t, err)
}
