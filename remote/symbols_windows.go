// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build windows

package remote

import (
	"fmt"
	"syscall"
	"unsafe"

	"remoteprof/core"
)

// WindowsSymbolLoader resolves a small, fixed set of named symbols
// against a PDB-backed module, without enumerating the full symbol
// table (SymEnumSymbolsW over a large PDB is too slow to do on every
// sample). It wraps dbghelp.dll's
// SymInitialize/SymLoadModuleExW/SymFromName.
type WindowsSymbolLoader struct {
	pid     uint32
	process syscall.Handle
}

var (
	dbghelp           = syscall.NewLazyDLL("dbghelp.dll")
	procSymInitialize = dbghelp.NewProc("SymInitializeW")
	procSymLoadModule = dbghelp.NewProc("SymLoadModuleExW")
	procSymFromName   = dbghelp.NewProc("SymFromName")
	procSymCleanup    = dbghelp.NewProc("SymCleanup")
)

// symbolInfo mirrors the fixed-size prefix of Win32's SYMBOL_INFO
// struct (the variable-length Name buffer follows inline; MaxNameLen
// bounds how much of it SymFromName is allowed to write).
type symbolInfo struct {
	SizeOfStruct uint32
	TypeIndex    uint32
	Reserved     [2]uint64
	Index        uint32
	Size         uint32
	ModBase      uint64
	Flags        uint32
	Value        uint64
	Address      uint64
	Register     uint32
	Scope        uint32
	Tag          uint32
	NameLen      uint32
	MaxNameLen   uint32
	Name         [260]uint16
}

// NewWindowsSymbolLoader opens a symbol handler for pid.
func NewWindowsSymbolLoader(pid uint32) (*WindowsSymbolLoader, error) {
	h, err := syscall.OpenProcess(syscall.PROCESS_QUERY_INFORMATION|syscall.PROCESS_VM_READ, false, pid)
	if err != nil {
		return nil, fmt.Errorf("remote: OpenProcess for symbols: %w", err)
	}
	r, _, _ := procSymInitialize.Call(uintptr(h), 0, 0)
	if r == 0 {
		syscall.CloseHandle(h)
		return nil, fmt.Errorf("remote: SymInitializeW failed")
	}
	return &WindowsSymbolLoader{pid: pid, process: h}, nil
}

func (l *WindowsSymbolLoader) Close() error {
	procSymCleanup.Call(uintptr(l.process))
	return syscall.CloseHandle(l.process)
}

// Lookup loads the module at path (mapped at baseAddr) and resolves
// names, returning whichever of them dbghelp could find. Callers should
// pass only the small, fixed set of names the locator actually needs
// ("current_thread_state", "interp_head", "runtime_singleton").
func (l *WindowsSymbolLoader) Lookup(path string, baseAddr core.Address, names []string) (map[string]core.Address, error) {
	pathPtr, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	base, _, _ := procSymLoadModule.Call(
		uintptr(l.process), 0,
		uintptr(unsafe.Pointer(pathPtr)), 0,
		uintptr(baseAddr), 0, 0, 0,
	)
	if base == 0 {
		base = uintptr(baseAddr)
	}

	out := map[string]core.Address{}
	for _, name := range names {
		namePtr, err := syscall.BytePtrFromString(name)
		if err != nil {
			continue
		}
		var info symbolInfo
		info.SizeOfStruct = uint32(unsafe.Sizeof(info)) - uint32(len(info.Name))*2
		info.MaxNameLen = uint32(len(info.Name))
		r, _, _ := procSymFromName.Call(uintptr(l.process), uintptr(unsafe.Pointer(namePtr)), uintptr(unsafe.Pointer(&info)))
		if r == 0 {
			continue
		}
		out[name] = core.Address(baseAddr) + core.Address(info.Address-info.ModBase)
	}
	return out, nil
}
