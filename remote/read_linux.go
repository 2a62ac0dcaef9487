// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package remote

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"remoteprof/core"
)

// linuxHandle reads target memory via process_vm_readv, falling back to
// /proc/<pid>/mem for the (rare) kernel that lacks it. Neither path
// attaches, stops, or ptraces the target.
type linuxHandle struct {
	pid int
	mem *os.File // lazily opened fallback to /proc/<pid>/mem
}

func openOS(pid int) (osHandle, error) {
	if !procExists(pid) {
		return nil, fmt.Errorf("%w: pid %d: %v", ErrCannotOpenProcess, pid, syscall.ESRCH)
	}
	return &linuxHandle{pid: pid}, nil
}

func procExists(pid int) bool {
	_, err := os.Stat(fmt.Sprintf("/proc/%d", pid))
	return err == nil
}

func (h *linuxHandle) close() error {
	if h.mem != nil {
		return h.mem.Close()
	}
	return nil
}

func (h *linuxHandle) readBytes(addr core.Address, n int) ([]byte, error) {
	buf := make([]byte, n)
	local := []unix.Iovec{{Base: &buf[0], Len: uint64(n)}}
	remote := []unix.RemoteIovec{{Base: uintptr(addr), Len: n}}
	got, err := unix.ProcessVMReadv(h.pid, local, remote, 0)
	if err == nil && got == n {
		return buf, nil
	}
	if err != nil && !errors.Is(err, unix.ENOSYS) && !errors.Is(err, unix.EPERM) {
		return nil, classifyLinuxErr(addr, n, err)
	}
	// Fall back to /proc/<pid>/mem, which works across a wider range of
	// kernel/ptrace-scope configurations than process_vm_readv.
	return h.readViaProcMem(addr, n)
}

func (h *linuxHandle) readViaProcMem(addr core.Address, n int) ([]byte, error) {
	if h.mem == nil {
		f, err := os.Open(fmt.Sprintf("/proc/%d/mem", h.pid))
		if err != nil {
			return nil, classifyLinuxErr(addr, n, err)
		}
		h.mem = f
	}
	buf := make([]byte, n)
	got, err := h.mem.ReadAt(buf, int64(addr))
	if err != nil {
		return nil, classifyLinuxErr(addr, n, err)
	}
	if got != n {
		return nil, &ErrReadFailed{Kind: ShortRead, Addr: uint64(addr), Len: n, Wrapped: fmt.Errorf("got %d of %d bytes", got, n)}
	}
	return buf, nil
}

func classifyLinuxErr(addr core.Address, n int, err error) error {
	kind := InvalidAddress
	switch {
	case errors.Is(err, os.ErrPermission), errors.Is(err, unix.EPERM):
		kind = PermissionDenied
	case errors.Is(err, syscall.ESRCH), errors.Is(err, os.ErrNotExist):
		kind = ProcessGone
	}
	return &ErrReadFailed{Kind: kind, Addr: uint64(addr), Len: n, Wrapped: err}
}
