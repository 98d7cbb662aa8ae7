// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codeobj

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescriptorForReturnsMostSpecificMatch(t *testing.T) {
	c := New("Foo.bar")
	c.PCDescriptors = []PCDescriptor{
		{PC: 10, Kind: PCOptStaticCall, TokenPos: 1},
		{PC: 20, Kind: PCOptStaticCall, TokenPos: 2},
		{PC: 20, Kind: PCDeopt, TokenPos: 2},
	}

	d, ok := c.DescriptorFor(25, PCOptStaticCall)
	require.True(t, ok)
	require.Equal(t, uint32(20), d.PC)

	_, ok = c.DescriptorFor(5, PCOptStaticCall)
	require.False(t, ok)
}

func TestMaterializePrefixLen(t *testing.T) {
	entries := []DeoptEntry{
		{Kind: DeoptMaterializeObject},
		{Kind: DeoptMaterializeObject},
		{Kind: DeoptRetrieveRegister, FromIndex: 3},
		{Kind: DeoptMaterializeObject},
	}
	require.Equal(t, 2, MaterializePrefixLen(entries))
	require.True(t, IsObjectPrefix(entries, 2))
	require.False(t, IsObjectPrefix(entries, 3))
}

func TestInstallLazyDeoptJumpUpdatesExistingDescriptor(t *testing.T) {
	c := New("Foo.bar")
	c.PCDescriptors = []PCDescriptor{{PC: 42, Kind: PCReturn}}

	c.InstallLazyDeoptJump(42, 7)

	d, ok := c.DescriptorFor(42, PCLazyDeoptJump)
	require.True(t, ok)
	require.Equal(t, int32(7), d.DeoptID)
}

func TestInstallLazyDeoptJumpAppendsWhenAbsent(t *testing.T) {
	c := New("Foo.bar")
	c.InstallLazyDeoptJump(99, 1)
	require.Equal(t, 1, c.DeoptCount)
	_, ok := c.DescriptorFor(99, PCLazyDeoptJump)
	require.True(t, ok)
}
