// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inline implements the VM's optimizing inliner: call-site
// collection over a sea-of-nodes-style SSA graph (internal/ssa),
// depth-bounded recursive inlining driven by a should-inline heuristic,
// callee graph construction and splicing, and polymorphic call
// expansion into a class-id-guarded decision DAG.
//
// Grounded on cmd/compile/internal/inline's overall phase shape (walk
// call sites, score, splice) though this tree's teacher
// (ymm135-go/src/cmd_local) predates that package; the SSA graph itself
// is internal/ssa (grounded on golang.org/x/tools/go/ssa).
package inline

import (
	"github.com/rs/zerolog"

	"govm/internal/config"
	"govm/internal/ssa"
	"govm/internal/vmerror"
)

// SiteKind classifies a collected call site.
type SiteKind uint8

const (
	SiteStatic SiteKind = iota
	SiteClosure
	SitePolymorphic
)

// CallSite is one collected call, annotated with a hotness ratio:
// site-count / max-count, or zero if no site executed.
type CallSite struct {
	Kind         SiteKind
	Value        *ssa.Value
	HotnessRatio float64
}

// CollectCallSites walks f's graph once in post-order and buckets
// every call instruction by kind, computing each site's hotness ratio
// against the batch's highest execution count.
func CollectCallSites(f *ssa.Function) (static, closure, poly []*CallSite) {
	var maxCount int64
	var all []*CallSite
	for _, b := range ssa.PostOrder(f) {
		for _, v := range b.Values {
			var kind SiteKind
			switch v.Op {
			case ssa.OpStaticCall:
				kind = SiteStatic
			case ssa.OpClosureCall:
				kind = SiteClosure
			case ssa.OpPolymorphicCall:
				kind = SitePolymorphic
			default:
				continue
			}
			if v.ExecutionCount > maxCount {
				maxCount = v.ExecutionCount
			}
			all = append(all, &CallSite{Kind: kind, Value: v})
		}
	}
	for _, cs := range all {
		if maxCount > 0 {
			cs.HotnessRatio = float64(cs.Value.ExecutionCount) / float64(maxCount)
		}
		switch cs.Kind {
		case SiteStatic:
			static = append(static, cs)
		case SiteClosure:
			closure = append(closure, cs)
		case SitePolymorphic:
			poly = append(poly, cs)
		}
	}
	return static, closure, poly
}

// CalleeInfo is the size/shape information the should-inline heuristic
// needs about a prospective callee, independent of any one call site.
type CalleeInfo struct {
	Name             string
	InstructionCount int
	CallSiteCount    int
	AlwaysInline     bool // recognized method with a hand-written inlined body
	DeoptCount       int
}

// Resolver builds the callee graph and size/shape metadata for a
// static or closure call target, returning ok=false for anything the
// inliner cannot see a body for (an external or not-yet-compiled
// function).
type Resolver func(name string) (callee *ssa.Function, info CalleeInfo, ok bool)

// Run processes every static and closure call site in caller,
// splicing in any callee ShouldInline accepts, and recurses into the
// spliced body up to Config.InlineDepthThreshold: each inlined body is
// itself scanned for further call sites at depth+1, swapping the roles
// of "current function being scanned" and "freshly spliced body" each
// round rather than recursing on the original caller.
func (in *Inliner) Run(caller *ssa.Function, resolve Resolver) (inlinedCount int, err error) {
	return in.runDepth(caller, 0, 0, resolve)
}

func (in *Inliner) runDepth(fn *ssa.Function, depth, inlinedSize int, resolve Resolver) (int, error) {
	if depth >= in.Config.InlineDepthThreshold {
		return 0, nil
	}
	static, closure, _ := CollectCallSites(fn)
	total := 0
	for _, site := range append(static, closure...) {
		callee, info, ok := resolve(site.Value.Callee)
		if frag, found := in.recognized[site.Value.Callee]; found {
			callee, info, ok = frag, RecognizedInfo(site.Value.Callee), true
		}
		if !ok {
			continue
		}
		constantActuals := 0
		for _, a := range site.Value.Args {
			if a.Op == ssa.OpConstant {
				constantActuals++
			}
		}
		if !in.ShouldInline(inlinedSize, site, info, constantActuals) {
			continue
		}
		actuals := make([]*ssa.Value, len(site.Value.Args))
		for i, a := range site.Value.Args {
			actuals[i] = ParameterStub(callee, a)
		}
		body, spliceErr := Splice(fn, site, callee, actuals)
		if spliceErr != nil {
			if verr, ok := spliceErr.(*vmerror.Error); ok {
				if failErr := FailInline(in, info.Name, verr); failErr != nil {
					return total, failErr
				}
				continue
			}
			return total, spliceErr
		}
		_ = body
		total++
		inlinedSize += info.InstructionCount
		sub, err := in.runDepth(callee, depth+1, inlinedSize, resolve)
		if err != nil {
			return total, err
		}
		total += sub
	}
	return total, nil
}

// Inliner runs the VM's depth-bounded inlining loop over one caller
// function at a time.
type Inliner struct {
	Config config.Config
	Log    zerolog.Logger

	// nonInlinable remembers callees flagged non-inlinable by a prior
	// failed attempt, so future calls to it short-circuit.
	nonInlinable map[string]bool

	// recognized holds the hand-written inlined-body fragments for
	// recognized methods.
	recognized map[string]*ssa.Function
}

func New(cfg config.Config, log zerolog.Logger) *Inliner {
	return &Inliner{
		Config:       cfg,
		Log:          log,
		nonInlinable: make(map[string]bool),
		recognized:   make(map[string]*ssa.Function),
	}
}

// RegisterRecognizedMethod installs a hand-written inlined-body
// fragment for name, always eligible for inlining regardless of size.
func (in *Inliner) RegisterRecognizedMethod(name string, fragment *ssa.Function) {
	in.recognized[name] = fragment
}

// IsInlinable reports whether callee has not been flagged
// non-inlinable by a previous failed attempt.
func (in *Inliner) IsInlinable(callee string) bool {
	return !in.nonInlinable[callee]
}

// MarkNonInlinable flags callee so future call sites short-circuit
// without re-attempting the inline.
func (in *Inliner) MarkNonInlinable(callee string) {
	in.nonInlinable[callee] = true
}

// ShouldInline is the should-inline heuristic, evaluated for one
// (caller accumulated size, call site, callee) triple.
func (in *Inliner) ShouldInline(callerInlinedSize int, site *CallSite, callee CalleeInfo, constantActuals int) bool {
	if !in.IsInlinable(callee.Name) {
		return false
	}
	if site.Value.InTryBlock {
		return false
	}
	if callee.DeoptCount >= in.Config.InlineDeoptThreshold {
		return false
	}
	if site.HotnessRatio < in.Config.InlineHotnessPercentile {
		return false
	}
	if callerInlinedSize >= in.Config.InlineCallerSizeCeiling {
		return false
	}
	if callee.AlwaysInline {
		return true
	}
	if callee.InstructionCount <= in.Config.InlineCalleeSizeThreshold {
		return true
	}
	if callee.CallSiteCount <= in.Config.InlineCallSitesThreshold {
		return true
	}
	if constantActuals >= in.Config.InlineConstantArgThreshold &&
		callee.InstructionCount <= in.Config.InlineConstantArgSize {
		return true
	}
	return false
}

// BuildCalleeGraph runs the IR builder (build, the caller-supplied
// thunk representing "parse + build SSA + minimal optimization") with
// a fresh block-id allocator seeded from the caller's maximum, so
// inlined callee blocks never collide with the caller's own.
func BuildCalleeGraph(caller *ssa.Function, calleeName string, build func(name string, blockIDSeed int) *ssa.Function) *ssa.Function {
	return build(calleeName, caller.MaxBlockID())
}

// ParameterStub builds one parameter stub for a splice: a constant
// instruction when the actual is a compile-time constant, or a
// parameter instruction rooted in the callee's graph entry otherwise.
func ParameterStub(callee *ssa.Function, actual *ssa.Value) *ssa.Value {
	if actual.Op == ssa.OpConstant {
		v := callee.NewValue(ssa.OpConstant)
		v.Const = actual.Const
		return v
	}
	v := callee.NewValue(ssa.OpParameter)
	callee.Entry.Values = append([]*ssa.Value{v}, callee.Entry.Values...)
	v.Block = callee.Entry
	return v
}

// AdaptOptionalParameters adapts a call's actual arguments to a
// callee's full optional-parameter list. positionalActuals are the
// present positional arguments beyond the required count;
// positionalDefaults/namedDefaults supply fallback values; namedActuals
// maps a named argument to its stub. It returns the full ordered stub
// list or an error if an argument-count constraint is violated.
func AdaptOptionalParameters(
	callee *ssa.Function,
	requiredStubs []*ssa.Value,
	optionalPositionalNames []string,
	positionalActuals []*ssa.Value,
	positionalDefaults map[string]*ssa.Value,
	optionalNamedNames []string,
	namedActuals map[string]*ssa.Value,
	namedDefaults map[string]*ssa.Value,
) ([]*ssa.Value, error) {
	if len(positionalActuals) > len(optionalPositionalNames) {
		return nil, vmerror.New(vmerror.KindCompileError, "", 0,
			"too many positional arguments for %q", callee.Name)
	}
	stubs := append([]*ssa.Value{}, requiredStubs...)
	for i, name := range optionalPositionalNames {
		if i < len(positionalActuals) {
			stubs = append(stubs, positionalActuals[i])
			continue
		}
		def, ok := positionalDefaults[name]
		if !ok {
			return nil, vmerror.New(vmerror.KindCompileError, "", 0,
				"missing default for optional positional parameter %q of %q", name, callee.Name)
		}
		stubs = append(stubs, def)
	}
	for name := range namedActuals {
		if !contains(optionalNamedNames, name) {
			return nil, vmerror.New(vmerror.KindCompileError, "", 0,
				"unexpected named argument %q for %q", name, callee.Name)
		}
	}
	for _, name := range optionalNamedNames {
		if v, ok := namedActuals[name]; ok {
			stubs = append(stubs, v)
			continue
		}
		def, ok := namedDefaults[name]
		if !ok {
			return nil, vmerror.New(vmerror.KindCompileError, "", 0,
				"missing default for optional named parameter %q of %q", name, callee.Name)
		}
		stubs = append(stubs, def)
	}
	return stubs, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// FailInline handles an error returned by Splice during inlining: a
// compile error flags callee non-inlinable and is absorbed (nil is
// returned); any other kind is returned as is. It does not undo
// changes Splice already made to the caller's graph.
func FailInline(in *Inliner, callee string, err *vmerror.Error) error {
	if err.Kind == vmerror.KindCompileError {
		in.MarkNonInlinable(callee)
		return nil // bailout absorbed
	}
	return err
}
