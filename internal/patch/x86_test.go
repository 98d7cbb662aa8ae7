// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package patch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"govm/internal/codeobj"
	"govm/internal/tagged"
)

// assembleCall returns a byte sequence encoding `CALL rel32` at offset
// 0 targeting target, followed by pad bytes of filler (0x90, NOP) so
// the return address sits wherever the test needs it.
func assembleCall(target int32, pad int) []byte {
	buf := make([]byte, 5+pad)
	buf[0] = 0xE8
	rel := target - 5
	buf[1] = byte(rel)
	buf[2] = byte(rel >> 8)
	buf[3] = byte(rel >> 16)
	buf[4] = byte(rel >> 24)
	for i := 5; i < len(buf); i++ {
		buf[i] = 0x90
	}
	return buf
}

func TestReadWriteCallTargetRoundTrip(t *testing.T) {
	b := NewX86Backend()
	code := assembleCall(100, 20)

	target, err := b.ReadCallTarget(code, 5)
	require.NoError(t, err)
	require.Equal(t, uint32(100), target)

	require.NoError(t, b.WriteCallTarget(code, 5, 200))
	target, err = b.ReadCallTarget(code, 5)
	require.NoError(t, err)
	require.Equal(t, uint32(200), target)
}

func TestInsertCallThenReadBack(t *testing.T) {
	b := NewX86Backend()
	code := make([]byte, 10)
	require.NoError(t, b.InsertCall(code, 0, 50))

	target, err := b.ReadCallTarget(code, 5)
	require.NoError(t, err)
	require.Equal(t, uint32(50), target)
}

func TestEdgeCounterRoundTrip(t *testing.T) {
	b := NewX86Backend()
	code := codeobj.New("Foo.bar")
	code.ObjectPool = []tagged.Value{tagged.NewSmi(0)}
	code.PCDescriptors = []codeobj.PCDescriptor{
		{PC: 5, Kind: codeobj.PCICCall, DeoptID: 0},
	}

	require.NoError(t, b.WriteEdgeCounter(code, 5, 42))
	n, err := b.ReadEdgeCounter(code, 5)
	require.NoError(t, err)
	require.Equal(t, int64(42), n)
}
