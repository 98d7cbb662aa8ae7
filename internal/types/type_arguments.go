// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

// TypeArguments is a vector of type arguments, in one of two concrete
// representations: a flat ordered sequence, or a lazy instantiation
// pair. Both satisfy this interface so callers needn't know which
// representation they hold until they call Instantiate, which forces a
// lazy pair into a flat vector.
type TypeArguments interface {
	Len() int
	// IsNull reports the "<dynamic, dynamic, ...>" short-circuit
	// marker.
	IsNull() bool
	IsInstantiated() bool
	// Instantiate returns a flat vector. InstantiationPair resolves
	// its TypeParameter references; FlatTypeArguments returns itself
	// unchanged, ignoring instantiator.
	Instantiate(instantiator TypeArguments) *FlatTypeArguments
}

// FlatTypeArguments is the common-case representation: an ordered,
// already-substituted sequence of types.
type FlatTypeArguments struct {
	Args []Type
}

// NullTypeArguments is the canonical "<dynamic,...>" marker: when a
// whole argument vector is semantically equivalent to
// <dynamic, dynamic, …>, it is set to this null marker to short-circuit
// later subtype checks. A nil *FlatTypeArguments plays this role so
// every IsNull check is a plain nil comparison, the same shortcut the
// class-table canonical-instantiation table relies on.
var NullTypeArguments *FlatTypeArguments

func (f *FlatTypeArguments) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Args)
}

func (f *FlatTypeArguments) IsNull() bool { return f == nil }

func (f *FlatTypeArguments) IsInstantiated() bool {
	if f == nil {
		return true
	}
	for _, t := range f.Args {
		if t.State() == Allocated || t.State() == BeingFinalized {
			return false
		}
		if tp, ok := t.(*TypeParameterType); ok {
			_ = tp
			return false
		}
	}
	return true
}

func (f *FlatTypeArguments) Instantiate(TypeArguments) *FlatTypeArguments { return f }

// IsDynamicVector reports whether every argument is the dynamic type,
// the condition that triggers the null-marker short-circuit above.
func IsDynamicVector(args []Type, isDynamic func(Type) bool) bool {
	for _, a := range args {
		if !isDynamic(a) {
			return false
		}
	}
	return true
}

// InstantiationPair is the lazy representation: an uninstantiated
// vector paired with the instantiator vector substitution is deferred
// against. This avoids eagerly walking (and allocating) a flattened
// vector for every generic instantiation the way the flat
// representation would.
type InstantiationPair struct {
	Uninstantiated TypeArguments
	Instantiator   TypeArguments
}

func (p *InstantiationPair) Len() int { return p.Uninstantiated.Len() }

func (p *InstantiationPair) IsNull() bool { return p.Uninstantiated.IsNull() }

func (p *InstantiationPair) IsInstantiated() bool { return false }

// Instantiate substitutes every TypeParameterType in Uninstantiated
// against outer (which in turn may need p.Instantiator — lazy
// substitutions compose by chaining, never by eagerly flattening
// early).
func (p *InstantiationPair) Instantiate(outer TypeArguments) *FlatTypeArguments {
	base := p.Uninstantiated.Instantiate(p.Instantiator)
	if base == nil {
		return nil
	}
	out := make([]Type, len(base.Args))
	for i, t := range base.Args {
		if tp, ok := t.(*TypeParameterType); ok {
			out[i] = tp.Substitute(outer)
			continue
		}
		out[i] = t
	}
	return &FlatTypeArguments{Args: out}
}
