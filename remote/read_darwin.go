// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build darwin

package remote

/*
#cgo LDFLAGS: -framework CoreFoundation
#include <mach/mach.h>
#include <mach/mach_vm.h>
#include <stdlib.h>

static kern_return_t open_task(pid_t pid, mach_port_t *task) {
	return task_for_pid(mach_task_self(), pid, task);
}

static kern_return_t read_mem(mach_port_t task, mach_vm_address_t addr, mach_vm_size_t size, void *dst, mach_vm_size_t *out_size) {
	return mach_vm_read_overwrite(task, addr, size, (mach_vm_address_t)dst, out_size);
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"remoteprof/core"
)

// darwinHandle reads target memory via the Mach task_for_pid / vm_read
// APIs instead of ptrace, which on Darwin cannot PEEKDATA arbitrary
// process memory without entitlements either. Acquiring the task port
// below requires the caller to hold the com.apple.security.cs.debugger
// entitlement or run as root.
type darwinHandle struct {
	pid  int
	task C.mach_port_t
}

func openOS(pid int) (osHandle, error) {
	var task C.mach_port_t
	kr := C.open_task(C.pid_t(pid), &task)
	if kr != C.KERN_SUCCESS {
		return nil, fmt.Errorf("%w: task_for_pid(%d): mach error %d (need root or debugger entitlement)", ErrCannotOpenProcess, pid, int(kr))
	}
	return &darwinHandle{pid: pid, task: task}, nil
}

func (h *darwinHandle) close() error {
	return nil
}

func (h *darwinHandle) readBytes(addr core.Address, n int) ([]byte, error) {
	buf := make([]byte, n)
	var outSize C.mach_vm_size_t
	kr := C.read_mem(h.task, C.mach_vm_address_t(addr), C.mach_vm_size_t(n), unsafe.Pointer(&buf[0]), &outSize)
	if kr != C.KERN_SUCCESS {
		return nil, &ErrReadFailed{Kind: InvalidAddress, Addr: uint64(addr), Len: n, Wrapped: fmt.Errorf("mach_vm_read_overwrite: kern_return_t %d", int(kr))}
	}
	if int(outSize) != n {
		return nil, &ErrReadFailed{Kind: ShortRead, Addr: uint64(addr), Len: n, Wrapped: fmt.Errorf("got %d of %d bytes", int(outSize), n)}
	}
	return buf, nil
}
