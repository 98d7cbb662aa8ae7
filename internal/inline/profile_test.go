// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inline

import (
	"testing"

	"github.com/google/pprof/profile"
	"github.com/stretchr/testify/require"

	"govm/internal/ssa"
)

func TestApplyProfileHotnessAccumulatesMatchingSamples(t *testing.T) {
	_, site := buildCaller("hot")
	site.Value.ExecutionCount = 0
	sites := []*CallSite{site}

	fn := &profile.Function{Name: "hot"}
	loc := &profile.Location{Line: []profile.Line{{Function: fn}}}
	prof := &profile.Profile{
		Sample: []*profile.Sample{
			{Location: []*profile.Location{loc}, Value: []int64{7}},
			{Location: []*profile.Location{loc}, Value: []int64{3}},
		},
	}

	ApplyProfileHotness(prof, sites)
	require.Equal(t, int64(10), site.Value.ExecutionCount)
}

func TestApplyProfileHotnessIgnoresUnmatchedSamples(t *testing.T) {
	_, site := buildCaller("hot")
	site.Value.ExecutionCount = 0
	sites := []*CallSite{site}

	fn := &profile.Function{Name: "cold"}
	loc := &profile.Location{Line: []profile.Line{{Function: fn}}}
	prof := &profile.Profile{
		Sample: []*profile.Sample{
			{Location: []*profile.Location{loc}, Value: []int64{99}},
		},
	}

	ApplyProfileHotness(prof, sites)
	require.Equal(t, int64(0), site.Value.ExecutionCount)
}

func TestRecomputeHotnessNormalizesAgainstMax(t *testing.T) {
	a := &ssa.Value{Callee: "a", ExecutionCount: 50}
	b := &ssa.Value{Callee: "b", ExecutionCount: 200}
	sites := []*CallSite{{Value: a}, {Value: b}}

	RecomputeHotness(sites)
	require.Equal(t, 0.25, sites[0].HotnessRatio)
	require.Equal(t, 1.0, sites[1].HotnessRatio)
}
