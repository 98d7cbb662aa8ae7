// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inline

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"govm/internal/codeobj"
	"govm/internal/config"
	"govm/internal/ssa"
	"govm/internal/types"
)

func newTestInliner() *Inliner {
	return New(config.Defaults(), zerolog.Nop())
}

func buildCaller(callee string, args ...*ssa.Value) (*ssa.Function, *CallSite) {
	f := ssa.NewFunction("Caller.run")
	call := f.NewValue(ssa.OpStaticCall, args...)
	call.Callee = callee
	call.ExecutionCount = 10
	f.Entry.AddValue(call)
	ret := f.NewValue(ssa.OpReturn, call)
	f.Entry.AddValue(ret)
	return f, &CallSite{Kind: SiteStatic, Value: call, HotnessRatio: 1}
}

func TestCollectCallSitesBucketsByKindAndHotness(t *testing.T) {
	f := ssa.NewFunction("Caller.run")
	hot := f.NewValue(ssa.OpStaticCall)
	hot.Callee = "hot"
	hot.ExecutionCount = 100
	cold := f.NewValue(ssa.OpStaticCall)
	cold.Callee = "cold"
	cold.ExecutionCount = 10
	poly := f.NewValue(ssa.OpPolymorphicCall)
	poly.ExecutionCount = 5
	f.Entry.AddValue(hot)
	f.Entry.AddValue(cold)
	f.Entry.AddValue(poly)

	static, _, polySites := CollectCallSites(f)
	require.Len(t, static, 2)
	require.Len(t, polySites, 1)
	require.Equal(t, 1.0, static[0].HotnessRatio)
	require.Equal(t, 0.1, static[1].HotnessRatio)
}

func TestShouldInlineRejectsColdSite(t *testing.T) {
	in := newTestInliner()
	_, site := buildCaller("leaf")
	site.HotnessRatio = 0.0
	ok := in.ShouldInline(0, site, CalleeInfo{Name: "leaf", InstructionCount: 5}, 0)
	require.False(t, ok)
}

func TestShouldInlineAcceptsSmallHotCallee(t *testing.T) {
	in := newTestInliner()
	_, site := buildCaller("leaf")
	ok := in.ShouldInline(0, site, CalleeInfo{Name: "leaf", InstructionCount: 5}, 0)
	require.True(t, ok)
}

func TestShouldInlineRejectsOversizeCallee(t *testing.T) {
	in := newTestInliner()
	_, site := buildCaller("big")
	big := CalleeInfo{
		Name:             "big",
		InstructionCount: in.Config.InlineCalleeSizeThreshold + 1,
		CallSiteCount:    in.Config.InlineCallSitesThreshold + 1,
	}
	require.False(t, in.ShouldInline(0, site, big, 0))
}

func TestShouldInlineAlwaysAcceptsRecognizedMethod(t *testing.T) {
	in := newTestInliner()
	_, site := buildCaller("Box.value")
	info := RecognizedInfo("Box.value")
	info.InstructionCount = 9999
	require.True(t, in.ShouldInline(0, site, info, 0))
}

func TestShouldInlineRejectsWhenCallerOverCeiling(t *testing.T) {
	in := newTestInliner()
	_, site := buildCaller("leaf")
	ceiling := in.Config.InlineCallerSizeCeiling
	require.False(t, in.ShouldInline(ceiling, site, CalleeInfo{Name: "leaf", InstructionCount: 1}, 0))
}

func TestShouldInlineRejectsAfterMarkNonInlinable(t *testing.T) {
	in := newTestInliner()
	_, site := buildCaller("leaf")
	in.MarkNonInlinable("leaf")
	require.False(t, in.ShouldInline(0, site, CalleeInfo{Name: "leaf", InstructionCount: 1}, 0))
}

func TestShouldInlineRejectsDeoptHeavyCallee(t *testing.T) {
	in := newTestInliner()
	_, site := buildCaller("flaky")
	info := CalleeInfo{Name: "flaky", InstructionCount: 1, DeoptCount: in.Config.InlineDeoptThreshold}
	require.False(t, in.ShouldInline(0, site, info, 0))
}

func TestShouldInlineRejectsCallInTryBlock(t *testing.T) {
	in := newTestInliner()
	_, site := buildCaller("leaf")
	site.Value.InTryBlock = true
	require.False(t, in.ShouldInline(0, site, CalleeInfo{Name: "leaf", InstructionCount: 1}, 0))
}

func TestSpliceInlinesIdentityCallee(t *testing.T) {
	arg := &ssa.Value{Op: ssa.OpParameter}
	caller, site := buildCaller("Box.value", arg)
	callee := RecognizedIdentity("Box.value")

	body, err := Splice(caller, site, callee, []*ssa.Value{arg})
	require.NoError(t, err)
	require.NotNil(t, body)

	// the call site's block was split; the return now lives in the
	// suffix block reached after the spliced body.
	var found bool
	for _, b := range caller.Blocks {
		for _, v := range b.Values {
			if v.Op == ssa.OpReturn {
				found = true
			}
		}
	}
	require.True(t, found)
}

func TestAdaptOptionalParametersFillsDefaults(t *testing.T) {
	callee := ssa.NewFunction("greet")
	required := []*ssa.Value{{Op: ssa.OpParameter}}
	def := &ssa.Value{Op: ssa.OpConstant, Const: "world"}

	stubs, err := AdaptOptionalParameters(
		callee, required,
		[]string{"name"}, nil, map[string]*ssa.Value{"name": def},
		nil, nil, nil,
	)
	require.NoError(t, err)
	require.Len(t, stubs, 2)
	require.Equal(t, def, stubs[1])
}

func TestAdaptOptionalParametersRejectsUnknownNamedArg(t *testing.T) {
	callee := ssa.NewFunction("greet")
	_, err := AdaptOptionalParameters(
		callee, nil,
		nil, nil, nil,
		[]string{"name"}, map[string]*ssa.Value{"bogus": {Op: ssa.OpConstant}}, nil,
	)
	require.Error(t, err)
}

func TestExpandPolymorphicBuildsOneGuardPerVariant(t *testing.T) {
	receiver := &ssa.Value{Op: ssa.OpParameter}
	caller, site := buildCaller("dispatch", receiver)
	site.Value.Op = ssa.OpPolymorphicCall
	site.Value.Variants = []ssa.CallVariant{
		{ClassID: 1, Target: "A.run", Count: 100},
		{ClassID: 2, Target: "B.run", Count: 10},
	}

	plan, err := ExpandPolymorphic(caller, site, func(v ssa.CallVariant) *ssa.Function {
		return RecognizedIdentity(v.Target)
	})
	require.NoError(t, err)
	require.Len(t, plan.Guards, 2)
	require.Nil(t, plan.Fallback)
	require.NotNil(t, plan.Join)
}

func TestExpandPolymorphicFallsBackBeyondCap(t *testing.T) {
	receiver := &ssa.Value{Op: ssa.OpParameter}
	caller, site := buildCaller("dispatch", receiver)
	site.Value.Op = ssa.OpPolymorphicCall
	for i := 0; i < MaxPolymorphicVariants+2; i++ {
		site.Value.Variants = append(site.Value.Variants, ssa.CallVariant{
			ClassID: uint16(i + 1), Target: "V.run", Count: int64(100 - i),
		})
	}

	plan, err := ExpandPolymorphic(caller, site, func(v ssa.CallVariant) *ssa.Function {
		return RecognizedIdentity(v.Target)
	})
	require.NoError(t, err)
	require.Len(t, plan.Guards, MaxPolymorphicVariants)
	require.NotNil(t, plan.Fallback)
}

type fakeCodeRegistry struct {
	code *codeobj.CodeObject
}

func (r *fakeCodeRegistry) Lookup(classId types.ClassId, functionName string) *codeobj.CodeObject {
	return r.code
}

func TestCHADeoptimizerMarksCodeUnoptimizedAndNonInlinable(t *testing.T) {
	code := codeobj.New("Base.run")
	code.IsOptimized = true
	reg := &fakeCodeRegistry{code: code}
	in := newTestInliner()
	d := NewCHADeoptimizer(reg, in)
	d.RecordReturnAddr(1, "Base.run", 0x100)

	d.DeoptimizeMethod(1, "Base.run")

	require.False(t, code.IsOptimized)
	require.False(t, in.IsInlinable("Base.run"))
	require.Len(t, code.PCDescriptors, 1)
	require.Equal(t, codeobj.PCLazyDeoptJump, code.PCDescriptors[0].Kind)
}

func TestRunInlinesStaticCallWithinDepthBudget(t *testing.T) {
	in := newTestInliner()
	arg := &ssa.Value{Op: ssa.OpParameter}
	caller, _ := buildCaller("Box.value", arg)

	resolve := func(name string) (*ssa.Function, CalleeInfo, bool) {
		if name != "Box.value" {
			return nil, CalleeInfo{}, false
		}
		return RecognizedIdentity(name), RecognizedInfo(name), true
	}

	count, err := in.Run(caller, resolve)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRunLeavesUnresolvedCallSiteAlone(t *testing.T) {
	in := newTestInliner()
	caller, _ := buildCaller("Unknown.method")

	resolve := func(name string) (*ssa.Function, CalleeInfo, bool) {
		return nil, CalleeInfo{}, false
	}

	count, err := in.Run(caller, resolve)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}
