// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remote

import "remoteprof/core"

// fakeHandle backs a Handle with plain functions instead of an OS
// process, so higher-level packages can exercise the walker and
// locator logic against a hand-built memory image.
type fakeHandle struct {
	readFn    func(core.Address, int) ([]byte, error)
	regionsFn func() ([]core.MemoryRegion, error)
}

func (f *fakeHandle) readBytes(addr core.Address, n int) ([]byte, error) { return f.readFn(addr, n) }
func (f *fakeHandle) regions() ([]core.MemoryRegion, error)              { return f.regionsFn() }
func (f *fakeHandle) close() error                                      { return nil }

// NewFake builds a Handle whose reads and region listing are served by
// the given functions. It never touches a real process; it exists for
// tests that simulate a target's memory.
func NewFake(pid int, read func(core.Address, int) ([]byte, error), regions func() ([]core.MemoryRegion, error)) *Handle {
	return &Handle{Pid: pid, impl: &fakeHandle{readFn: read, regionsFn: regions}}
}
