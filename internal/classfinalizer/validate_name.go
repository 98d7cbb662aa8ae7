// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classfinalizer

import (
	"golang.org/x/mod/module"

	"govm/internal/vmerror"
)

// validateNameComponent checks that name is safe to use as one
// component of a synthesized class name: synthesized classes are named
// by concatenating the super and mixin names with an ampersand, so
// neither half may itself contain characters that would make the
// composed name ambiguous to split back apart.
//
// Reuses golang.org/x/mod/module's import-path character-class
// validation rather than hand-rolling one: a class/library name
// component and a Go import-path element are both "parse and validate
// a dotted identifier" problems of the same shape, and CheckImportPath
// already rejects the control characters, path separators, and
// empty/blank elements that would make `<a>&<b>` ambiguous or unsafe
// to use as a map key.
func validateNameComponent(origin, script string, tokenPos int, name string) error {
	if name == "" {
		return vmerror.CompileError(script, tokenPos,
			"empty class name while synthesizing mixin application for %q", origin)
	}
	if err := module.CheckImportPath("lib/" + name); err != nil {
		return vmerror.CompileError(script, tokenPos,
			"class name %q is not a valid mixin-application component for %q: %v", name, origin, err)
	}
	return nil
}
