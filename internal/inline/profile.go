// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inline

import (
	"io"

	"github.com/google/pprof/profile"
)

// LoadProfile decodes a gzip'd pprof profile.proto stream, the format
// the hotness-ratio computation is fed from when running against a
// profiled fixture rather than the synthetic Value.ExecutionCount
// CollectCallSites otherwise uses.
func LoadProfile(r io.Reader) (*profile.Profile, error) {
	return profile.Parse(r)
}

// ApplyProfileHotness walks prof's samples and, for every sample whose
// leaf frame names a function matching one of sites' call targets,
// adds that sample's first value (by pprof convention, the sample
// count for a CPU/call-count profile) onto the matching call site's
// ExecutionCount. Called before CollectCallSites buckets sites by
// hotness ratio so profile-guided counts flow through the same
// max-count normalization synthetic counts do.
func ApplyProfileHotness(prof *profile.Profile, sites []*CallSite) {
	byName := make(map[string][]*CallSite, len(sites))
	for _, s := range sites {
		byName[s.Value.Callee] = append(byName[s.Value.Callee], s)
	}
	if len(byName) == 0 || prof == nil {
		return
	}
	for _, sample := range prof.Sample {
		if len(sample.Location) == 0 || len(sample.Value) == 0 {
			continue
		}
		leaf := sample.Location[0]
		if len(leaf.Line) == 0 || leaf.Line[0].Function == nil {
			continue
		}
		name := leaf.Line[0].Function.Name
		matches, ok := byName[name]
		if !ok {
			continue
		}
		for _, m := range matches {
			m.Value.ExecutionCount += sample.Value[0]
		}
	}
}

// RecomputeHotness re-derives each site's HotnessRatio against the
// highest ExecutionCount in the batch, the same normalization
// CollectCallSites performs — call after ApplyProfileHotness has
// mutated the underlying Value.ExecutionCount fields in place.
func RecomputeHotness(sites []*CallSite) {
	var maxCount int64
	for _, s := range sites {
		if s.Value.ExecutionCount > maxCount {
			maxCount = s.Value.ExecutionCount
		}
	}
	if maxCount == 0 {
		return
	}
	for _, s := range sites {
		s.HotnessRatio = float64(s.Value.ExecutionCount) / float64(maxCount)
	}
}
