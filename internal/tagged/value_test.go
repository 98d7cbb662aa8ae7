// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tagged

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSmiRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 12345, minSmi, maxSmi} {
		s := NewSmi(v)
		require.True(t, s.IsSmi())
		require.False(t, s.IsHeapPointer())
		require.Equal(t, v, s.SmiValue())
	}
}

func TestSmiOverflowPanics(t *testing.T) {
	require.Panics(t, func() { NewSmi(maxSmi + 1) })
	require.Panics(t, func() { NewSmi(minSmi - 1) })
}

func TestHeapPointerRoundTrip(t *testing.T) {
	addr := uintptr(0x1000)
	p := NewHeapPointer(addr)
	require.True(t, p.IsHeapPointer())
	require.False(t, p.IsSmi())
	require.Equal(t, addr, p.HeapAddr())
}

func TestHeapPointerRequiresAlignment(t *testing.T) {
	require.Panics(t, func() { NewHeapPointer(0x1001) })
}
