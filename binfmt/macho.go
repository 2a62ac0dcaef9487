// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package binfmt

import (
	"debug/macho"
	"fmt"
	"os"

	"remoteprof/core"
)

// inspectMachO reads the symbol table and __DATA,__bss section via the
// standard library's debug/macho package. The Mach-O symbol-rebasing
// fixup (subtracting _mh_execute_header) is applied one layer up in the
// process layout probe, which is the only place that also has the
// memory region's start address; Inspect here returns each address as
// recorded in the file plus loadAddr.
func inspectMachO(f *os.File, loadAddr core.Address) (*Info, error) {
	m, err := macho.NewFile(f)
	if err != nil {
		return nil, fmt.Errorf("binfmt: parse Mach-O %s: %w", f.Name(), err)
	}

	info := &Info{Symbols: map[string]core.Address{}}

	for _, sec := range m.Sections {
		if sec.Seg == "__DATA" && sec.Name == "__bss" {
			info.BSSAddr = core.Address(sec.Addr) + loadAddr
			info.BSSSize = int64(sec.Size)
			break
		}
	}

	if m.Symtab != nil {
		for _, s := range m.Symtab.Syms {
			if s.Name == "" || s.Value == 0 {
				continue
			}
			info.Symbols[s.Name] = core.Address(s.Value) + loadAddr
		}
	}

	return info, nil
}
