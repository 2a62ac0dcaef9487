// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package binfmt inspects a binary on disk and reports the things a
// remote stack sampler needs from it: the location of its uninitialized
// data segment and its symbol table. Callers resolve a process's mapped
// files to paths themselves; this package never touches a running
// process, only the file on disk.
//
// Implementation follows golang-debug/internal/core.Process.readExec and
// readDebugInfo: the standard library's debug/elf, debug/macho, and
// debug/pe packages, sniffed by magic number rather than by file
// extension.
package binfmt

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"remoteprof/core"
)

// Info describes the uninitialized-data segment and the symbol table of
// one loaded binary.
type Info struct {
	BSSAddr core.Address
	BSSSize int64
	Symbols map[string]core.Address
}

// Symbol looks up name, returning (0, false) if absent.
func (i *Info) Symbol(name string) (core.Address, bool) {
	a, ok := i.Symbols[name]
	return a, ok
}

// Inspect parses the binary at path and returns its BSS location and
// symbol table, with every address rebased so it is absolute in the
// address space of a process that mapped the binary's first segment at
// loadAddr. Mach-O's additional _mh_execute_header rebasing fixup
// happens one layer up, in the process layout probe, since it
// additionally needs the region's start address from the process map.
func Inspect(path string, loadAddr core.Address) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("binfmt: open %s: %w", path, err)
	}
	defer f.Close()

	var magic [4]byte
	if _, err := io.ReadFull(bufio.NewReader(f), magic[:]); err != nil {
		return nil, fmt.Errorf("binfmt: read magic of %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	switch {
	case bytes.Equal(magic[:], []byte{0x7f, 'E', 'L', 'F'}):
		return inspectELF(f, loadAddr)
	case isMachOMagic(magic):
		return inspectMachO(f, loadAddr)
	case magic[0] == 'M' && magic[1] == 'Z':
		return inspectPE(f, loadAddr)
	default:
		return nil, fmt.Errorf("binfmt: %s: unrecognized binary format", path)
	}
}

func isMachOMagic(m [4]byte) bool {
	be := uint32(m[0])<<24 | uint32(m[1])<<16 | uint32(m[2])<<8 | uint32(m[3])
	switch be {
	case 0xfeedface, 0xfeedfacf, 0xcefaedfe, 0xcffaedfe, 0xcafebabe, 0xbebafeca:
		return true
	}
	return false
}
