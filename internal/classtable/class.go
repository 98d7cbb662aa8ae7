// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package classtable implements the process-wide class table: an
// append-only array indexed by class id, holding the class-metadata
// record every declared class gets.
//
// Grounded on cmd/compile/internal/types2.Named's state machine (see
// other_examples/fbf98873_trailofbits-go-panikint__...named.go.go) for
// the allocated/finalizing/finalized progression, and on the teacher's
// cmd/compile/internal/types.Type field layout (see
// _examples/ymm135-go/src/cmd_local/compile/internal/types/utils.go)
// for the "one record per declared type with a flattened
// super/field/method view" shape.
package classtable

import (
	"sync"

	"govm/internal/types"
)

// ClassState is the monotone progression every class moves through:
// allocated → type-finalized → finalized.
type ClassState uint8

const (
	Allocated ClassState = iota
	TypeFinalized
	Finalized
)

func (s ClassState) String() string {
	switch s {
	case Allocated:
		return "allocated"
	case TypeFinalized:
		return "type-finalized"
	case Finalized:
		return "finalized"
	default:
		return "unknown-class-state"
	}
}

// Field is a declared instance or static field.
type Field struct {
	Name      string
	Type      types.Type
	IsStatic  bool
	IsFinal   bool
	IsConst   bool
	Offset    int // byte offset from object start; instance fields only
}

// Function is a declared method, getter, setter, constructor, or
// factory.
type Function struct {
	Name         string
	Signature    *SignatureClass
	IsStatic     bool
	IsAbstract   bool
	IsConst      bool // const constructor
	IsFactory    bool
	RedirectsTo  *Function // non-nil once a redirecting factory resolves
	RedirectType types.Type
}

// SignatureClass is the synthetic class capturing a function's static
// type. Signature classes may themselves be generic and are finalized
// like ordinary classes.
type SignatureClass struct {
	Class          *Class
	ParameterTypes []types.Type
	ResultType     types.Type
}

// Class is the per-class metadata record.
type Class struct {
	Id   types.ClassId
	Name string
	// Script names the declaring source (out-of-scope parser owns
	// the real representation).
	Script   string
	TokenPos int

	TypeParameters []*types.TypeParameterType
	SuperType      types.Type
	Mixin          types.Type // nil unless this is a mixin application
	Interfaces     []types.Type

	Fields    []*Field
	Functions []*Function

	// NumTypeArguments is the flattened type-argument vector length:
	// this class's own type parameters plus every supertype's.
	NumTypeArguments int
	InstanceSizeWords int
	NextFieldOffset   int

	// AllocationStub is an opaque reference to the C4 code object
	// that allocates instances of this class; the code-object model
	// itself is out of this package's concern.
	AllocationStub interface{}

	// CanonicalInstantiations is this class's own canonical-types
	// table, keyed by the instantiation's structural digest via
	// types.Canonicalizer semantics but scoped to this class alone.
	CanonicalInstantiations map[string]*types.ParameterizedType

	// Subclasses is the direct-subclass list, used by CHA invalidation
	// to walk downward from a changed class.
	Subclasses []*Class
	Superclass *Class

	State ClassState

	IsConst            bool
	IsAbstract         bool
	IsMixinApplication bool
	IsMixinTypedef     bool
	IsMixinTypeApplied bool
	IsSynthesized      bool
	IsMarkedForParsing bool
	IsPatch            bool
	IsImplemented      bool

	mu sync.Mutex
}

// NewClass allocates a class record in the Allocated state.
func NewClass(id types.ClassId, name, script string, tokenPos int) *Class {
	return &Class{
		Id:                      id,
		Name:                    name,
		Script:                  script,
		TokenPos:                tokenPos,
		CanonicalInstantiations: make(map[string]*types.ParameterizedType),
		State:                   Allocated,
	}
}

// AddSubclass records direct inheits for CHA invalidation, and is
// idempotent.
func (c *Class) AddSubclass(sub *Class) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.Subclasses {
		if s == sub {
			return
		}
	}
	c.Subclasses = append(c.Subclasses, sub)
}

// AdvanceState enforces the invariant that a class transitions
// monotonically through its finalization states. Moving to a state
// behind the current one is a programming error in the finalizer.
func (c *Class) AdvanceState(next ClassState) {
	if next < c.State {
		panic("classtable: class state must not regress")
	}
	c.State = next
}

// IsFinalized reports whether this class is immutable except for
// AddSubclass: once finalized, a class is immutable except for adding
// direct-subclass entries.
func (c *Class) IsFinalized() bool { return c.State == Finalized }
