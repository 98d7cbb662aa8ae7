// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ssa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPostOrderVisitsEachBlockOnce(t *testing.T) {
	f := NewFunction("Foo.bar")
	b1 := f.NewBlock()
	b2 := f.NewBlock()
	f.Entry.AddEdge(b1)
	f.Entry.AddEdge(b2)
	b1.AddEdge(b2)

	order := PostOrder(f)
	require.Len(t, order, 3)
	// b2 has no successors, so it must be visited (and appended)
	// before both of its predecessors.
	require.Equal(t, b2, order[0])
	require.Equal(t, f.Entry, order[len(order)-1])
}

func TestNewFunctionWithBlockIDsFromAvoidsCollision(t *testing.T) {
	caller := NewFunction("Caller")
	caller.NewBlock()
	caller.NewBlock()
	seed := caller.MaxBlockID()

	callee := NewFunctionWithBlockIDsFrom("Callee", seed)
	require.Equal(t, seed, callee.Entry.ID)

	for _, b := range caller.Blocks {
		require.NotEqual(t, callee.Entry.ID, b.ID)
	}
}
