// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build windows

package remote

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"remoteprof/core"
)

// windowsHandle reads target memory with OpenProcess/ReadProcessMemory
// and enumerates its address space with VirtualQueryEx, following
// zhuweiyou-memoryscanner's Scanner in structure: a held process handle,
// a VirtualQueryEx loop advancing by region size, and a bitmask over
// MemoryBasicInformation.Protect to decide readability.
type windowsHandle struct {
	pid    int
	handle windows.Handle
}

func openOS(pid int) (osHandle, error) {
	h, err := windows.OpenProcess(windows.PROCESS_VM_READ|windows.PROCESS_QUERY_INFORMATION, false, uint32(pid))
	if err != nil {
		return nil, fmt.Errorf("%w: OpenProcess(%d): %v", ErrCannotOpenProcess, pid, err)
	}
	return &windowsHandle{pid: pid, handle: h}, nil
}

func (h *windowsHandle) close() error {
	return windows.CloseHandle(h.handle)
}

func (h *windowsHandle) readBytes(addr core.Address, n int) ([]byte, error) {
	buf := make([]byte, n)
	var nRead uintptr
	err := windows.ReadProcessMemory(h.handle, uintptr(addr), &buf[0], uintptr(n), &nRead)
	if err != nil {
		return nil, classifyWindowsErr(addr, n, err)
	}
	if int(nRead) != n {
		return nil, &ErrReadFailed{Kind: ShortRead, Addr: uint64(addr), Len: n, Wrapped: fmt.Errorf("got %d of %d bytes", nRead, n)}
	}
	return buf, nil
}

func classifyWindowsErr(addr core.Address, n int, err error) error {
	kind := InvalidAddress
	switch err {
	case windows.ERROR_ACCESS_DENIED:
		kind = PermissionDenied
	case windows.ERROR_INVALID_HANDLE, windows.ERROR_INVALID_PARAMETER:
		kind = ProcessGone
	}
	return &ErrReadFailed{Kind: kind, Addr: uint64(addr), Len: n, Wrapped: err}
}

// regions walks the target's address space with VirtualQueryEx, the same
// loop zhuweiyou-memoryscanner's Scan uses to step from one
// MemoryBasicInformation region to the next.
func (h *windowsHandle) regions() ([]core.MemoryRegion, error) {
	var out []core.MemoryRegion
	modules := moduleBaseNames(uint32(h.pid))

	var mbi windows.MemoryBasicInformation
	var addr uintptr
	for {
		err := windows.VirtualQueryEx(h.handle, addr, &mbi, unsafe.Sizeof(mbi))
		if err != nil {
			break
		}
		if mbi.State == windows.MEM_COMMIT {
			var perm core.Perm
			const (
				pageExecute          = 0x10
				pageExecuteRead      = 0x20
				pageExecuteReadWrite = 0x40
				pageExecuteWriteCopy = 0x80
				pageReadOnly         = 0x02
				pageReadWrite        = 0x04
				pageWriteCopy        = 0x08
			)
			switch mbi.Protect {
			case pageExecute, pageExecuteRead, pageExecuteReadWrite, pageExecuteWriteCopy:
				perm |= core.Exec
			}
			switch mbi.Protect {
			case pageReadOnly, pageExecuteRead:
				perm |= core.Read
			case pageReadWrite, pageExecuteReadWrite, pageWriteCopy, pageExecuteWriteCopy:
				perm |= core.Read | core.Write
			}
			out = append(out, core.MemoryRegion{
				Min:  core.Address(mbi.BaseAddress),
				Max:  core.Address(mbi.BaseAddress) + core.Address(mbi.RegionSize),
				Perm: perm,
				Path: modules[uint64(mbi.BaseAddress)],
			})
		}
		next := uintptr(mbi.BaseAddress) + mbi.RegionSize
		if next <= addr {
			break
		}
		addr = next
	}
	return out, nil
}

// moduleBaseNames maps each loaded module's base address to its path via
// CreateToolhelp32Snapshot, used to identify the python.exe / pythonXY.dll
// regions among the many anonymous mappings VirtualQueryEx reports.
func moduleBaseNames(pid uint32) map[uint64]string {
	out := map[uint64]string{}
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, pid)
	if err != nil {
		return out
	}
	defer windows.CloseHandle(snap)

	var me windows.ModuleEntry32
	me.Size = uint32(unsafe.Sizeof(me))
	if err := windows.Module32First(snap, &me); err != nil {
		return out
	}
	for {
		name := windows.UTF16ToString(me.ExePath[:])
		out[uint64(me.ModBaseAddr)] = name
		if err := windows.Module32Next(snap, &me); err != nil {
			break
		}
	}
	return out
}
