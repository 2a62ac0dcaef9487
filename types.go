// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remoteprof

import (
	"remoteprof/binfmt"
	"remoteprof/core"
)

// StackFrame is one activation record resolved from a remote frame
// chain.
type StackFrame struct {
	Filename      string
	ShortFilename string
	Function      string
	Line          int64
}

// StackTrace is every frame sampled from one interpreter thread at
// approximately the same instant, outermost frame first.
type StackTrace struct {
	ThreadID int64
	OwnsGIL  bool
	Frames   []StackFrame
}

// ProcessInfo is the output of the process layout probe: the located
// binaries and the process's memory map, as of the moment the probe
// ran.
type ProcessInfo struct {
	MainBinary          *binfmt.Info
	SharedRuntimeBinary *binfmt.Info // nil if no companion shared library was found
	Regions             *core.RegionSet
	ExecutablePath      string
	Warnings            []string // recoverable problems hit while probing, surfaced via ProfilerSession.Warnings
}

// Symbol looks up name in the main binary first, then the shared
// runtime binary if present.
func (p *ProcessInfo) Symbol(name string) (core.Address, bool) {
	if a, ok := p.MainBinary.Symbol(name); ok {
		return a, ok
	}
	if p.SharedRuntimeBinary != nil {
		return p.SharedRuntimeBinary.Symbol(name)
	}
	return 0, false
}
