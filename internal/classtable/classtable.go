// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classtable

import (
	"fmt"
	"sync"

	"govm/internal/tagged"
	"govm/internal/types"
)

// Table is the process-wide (in this port, per-isolate) append-only
// class table: an array indexed by cid. Built-in cids are reserved at
// VM start by RegisterPredefined; user classes are assigned cids by
// Register, before they are added to the pending classes list.
type Table struct {
	mu      sync.RWMutex
	classes []*Class // index 0 unused (IllegalClassId)
	next    types.ClassId
	pending []*Class
}

// New builds an empty table whose cid 0 is left unused; it reserves no
// built-in cids itself (see RegisterPredefined).
func New() *Table {
	t := &Table{
		classes: make([]*Class, 1, 256),
		next:    1,
	}
	return t
}

// Register appends cls at the next available cid, never below
// tagged.KNumPredefinedCids, and returns it. Used for user and
// synthesized classes, which are registered before they join the
// pending list; built-in classes go through ReserveAt.
func (t *Table) Register(cls *Class) types.ClassId {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.next
	if id < types.ClassId(tagged.KNumPredefinedCids) {
		id = types.ClassId(tagged.KNumPredefinedCids)
	}
	for types.ClassId(len(t.classes)) < id {
		t.classes = append(t.classes, nil)
	}
	t.next = id + 1
	cls.Id = id
	t.classes = append(t.classes, cls)
	return id
}

// ReserveAt registers cls at an explicit cid, used to reserve the
// built-in kinds at fixed, well-known ids below kNumPredefinedCids.
func (t *Table) ReserveAt(id types.ClassId, cls *Class) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for types.ClassId(len(t.classes)) <= id {
		t.classes = append(t.classes, nil)
	}
	cls.Id = id
	t.classes[id] = cls
	if t.next <= id {
		t.next = id + 1
	}
}

// At returns the class registered at cid, or nil if cid is out of
// range or a hole (e.g. an in-flight pending class).
func (t *Table) At(cid types.ClassId) *Class {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(cid) >= len(t.classes) {
		return nil
	}
	return t.classes[cid]
}

// Len reports the number of cid slots currently allocated, including
// holes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.classes)
}

// AddPending enqueues a user-loaded class awaiting finalization on the
// pending-classes list.
func (t *Table) AddPending(cls *Class) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cls.IsMarkedForParsing = true
	t.pending = append(t.pending, cls)
}

// DrainPending removes and returns every class currently pending,
// leaving the pending list empty. FinalizePendingClasses (see
// internal/classfinalizer) calls this once per fixed-point pass, since
// finalizing one class's super type can enqueue synthesized mixin
// application classes that must also be drained before the pass can be
// considered complete.
func (t *Table) DrainPending() []*Class {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.pending
	t.pending = nil
	return out
}

// HasPending reports whether any class is still awaiting finalization.
func (t *Table) HasPending() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.pending) > 0
}

// FindByName performs the linear lookup the (out-of-scope) library
// resolver needs when a class reference is not yet bound to a cid.
// Real library/prefix scoping lives in the excluded parser; this is a
// deliberately simple global-name fallback fixtures and tests can use
// directly.
func (t *Table) FindByName(name string) (*Class, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, c := range t.classes {
		if c != nil && c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// String implements a compact diagnostic dump, the kind of hook a
// disassembler or service-protocol collaborator would consume.
func (t *Table) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return fmt.Sprintf("classtable{len=%d, pending=%d}", len(t.classes), len(t.pending))
}
