// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package binfmt

import (
	"debug/pe"
	"fmt"
	"os"

	"remoteprof/core"
)

// inspectPE reads the exported symbol table and the .bss section via the
// standard library's debug/pe package. PE binaries that ship the
// interpreter's symbols in a side-car .pdb file instead of the export
// table are handled by remote.WindowsSymbolLoader rather than here:
// debug/pe alone cannot parse PDBs, and this module does not vendor a
// PDB parser (see DESIGN.md).
func inspectPE(f *os.File, loadAddr core.Address) (*Info, error) {
	p, err := pe.NewFile(f)
	if err != nil {
		return nil, fmt.Errorf("binfmt: parse PE %s: %w", f.Name(), err)
	}

	info := &Info{Symbols: map[string]core.Address{}}

	for _, sec := range p.Sections {
		if sec.Name == ".bss" {
			// VirtualAddress is relative to the image base, which is
			// where loadAddr says the image was mapped.
			info.BSSAddr = loadAddr.Add(int64(sec.VirtualAddress))
			info.BSSSize = int64(sec.VirtualSize)
			break
		}
	}

	for _, s := range p.Symbols {
		if s.Name == "" || s.Value == 0 {
			continue
		}
		info.Symbols[s.Name] = loadAddr.Add(int64(s.Value))
	}

	return info, nil
}

func imageBase(p *pe.File) uint64 {
	switch hdr := p.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		return uint64(hdr.ImageBase)
	case *pe.OptionalHeader64:
		return hdr.ImageBase
	}
	return 0
}
