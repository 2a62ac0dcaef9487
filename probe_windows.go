// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build windows

package remoteprof

import (
	"remoteprof/core"
	"remoteprof/remote"
)

// windowsSymbolNames are the only symbols the core ever needs from a
// side-car PDB: enumerating the full symbol table is too slow to do on
// every probe.
var windowsSymbolNames = []string{"current_thread_state", "interp_head", "runtime_singleton"}

func loadWindowsSymbols(h *remote.Handle, info *ProcessInfo, mainPath string, mainStart core.Address) error {
	loader, err := remote.NewWindowsSymbolLoader(uint32(h.Pid))
	if err != nil {
		return err
	}
	defer loader.Close()

	found, err := loader.Lookup(mainPath, mainStart, windowsSymbolNames)
	if err != nil {
		return err
	}
	if info.MainBinary.Symbols == nil {
		info.MainBinary.Symbols = map[string]core.Address{}
	}
	for name, addr := range found {
		info.MainBinary.Symbols[name] = addr
	}
	return nil
}
