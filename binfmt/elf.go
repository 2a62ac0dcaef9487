// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package binfmt

import (
	"debug/elf"
	"fmt"
	"os"

	"remoteprof/core"
)

// inspectELF reads the symbol table and .bss section the way
// golang-debug/internal/core.Process.readDebugInfo and readExec do,
// minus the core-dump-specific mapping bookkeeping: this module reads a
// live executable/shared-object file, not a core file.
func inspectELF(f *os.File, loadAddr core.Address) (*Info, error) {
	e, err := elf.NewFile(f)
	if err != nil {
		return nil, fmt.Errorf("binfmt: parse ELF %s: %w", f.Name(), err)
	}

	info := &Info{Symbols: map[string]core.Address{}}

	// PIE binaries and shared libraries have symbol/section values
	// relative to a zero base, so they are shifted by the load bias
	// derived from loadAddr (the process map's start address for this
	// mapping); a non-PIE executable's values are already absolute and
	// its bias is 0.
	bias := loadBias(e, loadAddr)

	for _, sec := range e.Sections {
		if sec.Name == ".bss" {
			info.BSSAddr = core.Address(sec.Addr) + bias
			info.BSSSize = int64(sec.Size)
			break
		}
	}

	syms, err := e.Symbols()
	if err != nil {
		// Symbols might be stripped; dynamic symbols can still help.
		syms = nil
	}
	dynsyms, _ := e.DynamicSymbols()
	for _, s := range append(syms, dynsyms...) {
		if s.Name == "" || s.Value == 0 {
			continue
		}
		info.Symbols[s.Name] = core.Address(s.Value) + bias
	}

	return info, nil
}

// loadBias computes the offset to add to a binary's on-disk virtual
// addresses so they become absolute addresses in a process that mapped
// the binary's first PT_LOAD segment at loadAddr. For a non-PIE
// executable (ET_EXEC) this is always zero; for a PIE or shared object
// (ET_DYN) it is loadAddr minus the first PT_LOAD segment's own vaddr.
func loadBias(e *elf.File, loadAddr core.Address) core.Address {
	if e.Type == elf.ET_EXEC {
		return 0
	}
	for _, p := range e.Progs {
		if p.Type == elf.PT_LOAD {
			return loadAddr.Add(-int64(p.Vaddr))
		}
	}
	return 0
}
