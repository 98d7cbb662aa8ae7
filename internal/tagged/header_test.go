// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tagged

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderBits(t *testing.T) {
	h := NewHeader(2000, 64)
	require.Equal(t, uint16(2000), h.Cid())
	require.False(t, h.MarkBit())
	require.False(t, h.Remembered())

	h = h.WithMarkBit(true).WithRemembered(true)
	require.True(t, h.MarkBit())
	require.True(t, h.Remembered())
	// Setting mark/remembered must not disturb the cid field.
	require.Equal(t, uint16(2000), h.Cid())
}

func TestSizeTagEncoding(t *testing.T) {
	units, ok := EncodeSize(64)
	require.True(t, ok)
	require.Equal(t, uint8(64/ObjectAlignment), units)

	_, ok = EncodeSize(13)
	require.False(t, ok, "sizes not a multiple of ObjectAlignment can't be encoded")

	_, ok = EncodeSize(ObjectAlignment * 256)
	require.False(t, ok, "8-bit size-tag field overflows for large fixed objects")
}

func TestFreeListElementCid(t *testing.T) {
	h := NewHeader(KFreeListElement, 32)
	require.True(t, h.IsFreeListElement())
}
