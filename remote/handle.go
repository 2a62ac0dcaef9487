// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package remote opens a handle on a target process and reads its
// memory and memory map without stopping, tracing, or otherwise
// modifying it.
//
// Every exported read here is a blocking OS call; there are no
// cooperative suspension points and no retries. Callers that want retry
// behavior implement it at the session boundary, above this package.
package remote

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"remoteprof/core"
)

// Handle is an open reference to a target process, analogous to
// golang-debug's core.Process but for a live process rather than a core
// file. The zero value is not usable; construct with Open.
type Handle struct {
	Pid  int
	impl osHandle
}

// osHandle is implemented once per OS in read_<goos>.go.
type osHandle interface {
	readBytes(addr core.Address, n int) ([]byte, error)
	regions() ([]core.MemoryRegion, error)
	close() error
}

// Open acquires a handle on the process identified by pid. It does not
// stop, trace, or otherwise modify the target.
func Open(pid int) (*Handle, error) {
	impl, err := openOS(pid)
	if err != nil {
		return nil, err
	}
	return &Handle{Pid: pid, impl: impl}, nil
}

// Close releases any OS resources held for the target (e.g. a Windows
// process handle). It never affects the target process itself.
func (h *Handle) Close() error {
	return h.impl.close()
}

// ReadBytes copies the n bytes starting at addr in the target's address
// space into a freshly allocated local buffer.
func (h *Handle) ReadBytes(addr core.Address, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("remote: negative read length %d", n)
	}
	if n == 0 {
		return nil, nil
	}
	return h.impl.readBytes(addr, n)
}

// Regions enumerates the target's current virtual memory mappings.
func (h *Handle) Regions() ([]core.MemoryRegion, error) {
	return h.impl.regions()
}

// ReadStruct copies one fixed-layout record of type T starting at addr.
// T must have no implicit compiler padding that would desync it from the
// target's C layout; the layout package instead decodes the interpreter's
// own (richer) structures field-by-field via explicit byte offsets, and
// reserves ReadStruct for small, naturally-aligned helper records (plain
// same-width integers and pointers).
func ReadStruct[T any](h *Handle, addr core.Address, order binary.ByteOrder) (T, error) {
	var v T
	n := binary.Size(v)
	if n < 0 {
		var zero T
		return zero, fmt.Errorf("remote: type %T has no fixed binary size", v)
	}
	buf, err := h.ReadBytes(addr, n)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(buf) < n {
		var zero T
		return zero, &ErrReadFailed{Kind: ShortRead, Addr: uint64(addr), Len: n, Wrapped: fmt.Errorf("got %d of %d bytes", len(buf), n)}
	}
	if err := binary.Read(bytes.NewReader(buf), order, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// ReadPointer reads a pointer-to-T value stored at p and returns the
// value it points to.
func ReadPointer[T any](h *Handle, p core.Address, order binary.ByteOrder, ptrSize int) (T, error) {
	buf, err := h.ReadBytes(p, ptrSize)
	if err != nil {
		var zero T
		return zero, err
	}
	var addr core.Address
	switch ptrSize {
	case 4:
		addr = core.Address(order.Uint32(buf))
	case 8:
		addr = core.Address(order.Uint64(buf))
	default:
		var zero T
		return zero, fmt.Errorf("remote: unsupported pointer size %d", ptrSize)
	}
	return ReadStruct[T](h, addr, order)
}
