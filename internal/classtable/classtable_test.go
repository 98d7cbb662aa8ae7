// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classtable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterPredefinedReservesFixedCids(t *testing.T) {
	table := New()
	RegisterPredefined(table)

	obj := table.At(CidObject)
	require.NotNil(t, obj)
	require.Equal(t, "Object", obj.Name)
	require.True(t, obj.IsFinalized())

	smi := table.At(CidSmi)
	require.NotNil(t, smi)
	require.Same(t, obj, smi.Superclass)
}

func TestPendingListDrainsOnce(t *testing.T) {
	table := New()
	a := NewClass(0, "A", "test.dart", 0)
	table.AddPending(a)
	require.True(t, table.HasPending())

	drained := table.DrainPending()
	require.Len(t, drained, 1)
	require.False(t, table.HasPending())
}

func TestClassStateMonotone(t *testing.T) {
	c := NewClass(0, "A", "test.dart", 0)
	c.AdvanceState(TypeFinalized)
	c.AdvanceState(Finalized)
	require.Panics(t, func() { c.AdvanceState(Allocated) })
}

func TestAddSubclassIsIdempotent(t *testing.T) {
	super := NewClass(1, "S", "test.dart", 0)
	sub := NewClass(2, "C", "test.dart", 0)
	super.AddSubclass(sub)
	super.AddSubclass(sub)
	require.Len(t, super.Subclasses, 1)
}

func TestFindByName(t *testing.T) {
	table := New()
	RegisterPredefined(table)
	cls, ok := table.FindByName("Bool")
	require.True(t, ok)
	require.Equal(t, CidBool, cls.Id)

	_, ok = table.FindByName("NoSuchClass")
	require.False(t, ok)
}
