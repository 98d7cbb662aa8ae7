// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Canonicalizer holds the per-isolate canonical-type table: a canonical
// instance is unique within an isolate by structural equality. Buckets
// are keyed by a blake2b
// digest of the type's structural encoding — the same "hash identifies
// structural identity" approach runtime._type.hash uses (see
// other_examples/*-runtime-type.go.go, field doc: "哈希是动态类型的唯一标识"),
// with an explicit Equal fallback inside each bucket to survive a
// digest collision rather than trusting the hash alone.
type Canonicalizer struct {
	buckets map[[32]byte][]Type
}

func NewCanonicalizer() *Canonicalizer {
	return &Canonicalizer{buckets: make(map[[32]byte][]Type)}
}

// Canonicalize returns the unique representative structurally equal
// to t, registering t itself if none exists yet: for any two finalized
// types t1, t2, t1 == t2 (structural) ⇒ canonicalize(t1) ≡
// canonicalize(t2) (pointer-identical).
func (c *Canonicalizer) Canonicalize(t Type) Type {
	if t.IsMalformed() {
		// Malformed types are finalized but never canonical; they
		// are deliberately excluded from the canonical table so a
		// diagnostic type is never silently shared with a valid one.
		return t
	}
	key := digest(t)
	for _, existing := range c.buckets[key] {
		if Equal(existing, t) {
			return existing
		}
	}
	markCanonical(t)
	c.buckets[key] = append(c.buckets[key], t)
	return t
}

func markCanonical(t Type) {
	switch v := t.(type) {
	case *ParameterizedType:
		v.canonical = true
	case *TypeParameterType:
		v.canonical = true
	case *BoundedType:
		v.canonical = true
	case *MixinApplicationType:
		v.canonical = true
	}
}

// Equal is structural equality over the Type universe, the relation
// Canonicalize's buckets are partitioned by. Type parameters compare
// by owner and index only, so a bound such as `T extends A<T>` is
// never followed; Equal still tracks in-progress pairs and assumes
// equality co-inductively on revisiting one.
func Equal(a, b Type) bool {
	return equalSeen(a, b, map[pairKey]bool{})
}

type pairKey struct{ a, b Type }

func equalSeen(a, b Type, seen map[pairKey]bool) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	key := pairKey{a, b}
	if seen[key] {
		return true
	}
	seen[key] = true

	switch av := a.(type) {
	case *dynamicType:
		_, ok := b.(*dynamicType)
		return ok
	case *ParameterizedType:
		bv, ok := b.(*ParameterizedType)
		if !ok || av.Class != bv.Class {
			return false
		}
		return flatEqualSeen(av.Arguments, bv.Arguments, seen)
	case *TypeParameterType:
		bv := b.(*TypeParameterType)
		return av.Owner == bv.Owner && av.Index == bv.Index
	case *BoundedType:
		bv := b.(*BoundedType)
		return equalSeen(av.Value, bv.Value, seen) && equalSeen(av.Bound, bv.Bound, seen)
	case *MixinApplicationType:
		bv := b.(*MixinApplicationType)
		if !equalSeen(av.Super, bv.Super, seen) || len(av.Mixins) != len(bv.Mixins) {
			return false
		}
		for i := range av.Mixins {
			if !equalSeen(av.Mixins[i], bv.Mixins[i], seen) {
				return false
			}
		}
		return true
	}
	return false
}

func flatEqualSeen(a, b *FlatTypeArguments, seen map[pairKey]bool) bool {
	if a.IsNull() != b.IsNull() {
		return false
	}
	if a.IsNull() {
		return true
	}
	if len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if !equalSeen(a.Args[i], b.Args[i], seen) {
			return false
		}
	}
	return true
}

// digest computes a structural blake2b hash, used only to bucket
// Canonicalize's table — see Equal for the authoritative comparison.
func digest(t Type) [32]byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only errors for an over-long key, and we
		// never pass one.
		panic(err)
	}
	enc := &encoder{w: h, stack: map[Type]int{}}
	enc.encode(t)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

type byteWriter interface {
	Write(p []byte) (int, error)
}

// encoder walks the Type graph, emitting a back-reference marker
// instead of recursing when a type is already on the stack. A type
// parameter is encoded by owner and index only; its bound is not
// walked.
type encoder struct {
	w     byteWriter
	stack map[Type]int
}

const backrefMarker = ^uint32(0)

func (e *encoder) writeU32(v uint32) {
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], v)
	e.w.Write(u32[:])
}

func (e *encoder) encode(t Type) {
	if depth, ok := e.stack[t]; ok {
		e.writeU32(backrefMarker)
		e.writeU32(uint32(len(e.stack) - depth))
		return
	}
	e.stack[t] = len(e.stack)
	defer delete(e.stack, t)

	e.writeU32(uint32(t.Kind()))
	switch v := t.(type) {
	case *dynamicType:
		// no payload
	case *ParameterizedType:
		e.writeU32(uint32(v.Class))
		if v.Arguments.IsNull() {
			e.writeU32(0)
		} else {
			e.writeU32(uint32(len(v.Arguments.Args)) + 1)
			for _, a := range v.Arguments.Args {
				e.encode(a)
			}
		}
	case *TypeParameterType:
		e.writeU32(uint32(v.Owner))
		e.writeU32(uint32(v.Index))
	case *BoundedType:
		e.encode(v.Value)
		e.encode(v.Bound)
	case *MixinApplicationType:
		e.encode(v.Super)
		e.writeU32(uint32(len(v.Mixins)))
		for _, m := range v.Mixins {
			e.encode(m)
		}
	default:
		panic(fmt.Sprintf("types: unknown Type variant %T", t))
	}
}
