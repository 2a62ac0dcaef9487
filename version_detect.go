// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remoteprof

import (
	"remoteprof/binfmt"
	"remoteprof/layout"
	"remoteprof/remote"
)

// versionSymbolName is a side channel some platforms export: a symbol
// whose address holds the interpreter's version string directly,
// avoiding a BSS scan entirely.
const versionSymbolName = "Py_GetVersion.version"

const versionSymbolReadLen = 128

// detectVersion finds the running interpreter's version: first via the
// special version symbol if the binary exports one, then by scanning
// the main binary's BSS, then the shared runtime binary's BSS.
func detectVersion(h *remote.Handle, info *ProcessInfo) (layout.Version, error) {
	if addr, ok := info.Symbol(versionSymbolName); ok {
		buf, err := h.ReadBytes(addr, versionSymbolReadLen)
		if err == nil {
			if v, err := layout.ScanBytes(buf); err == nil {
				return v, nil
			}
		}
	}

	if v, err := scanBinaryVersion(h, info.MainBinary); err == nil {
		return v, nil
	}
	if info.SharedRuntimeBinary != nil {
		if v, err := scanBinaryVersion(h, info.SharedRuntimeBinary); err == nil {
			return v, nil
		}
	}
	return layout.Version{}, ErrVersionNotFound
}

func scanBinaryVersion(h *remote.Handle, bin *binfmt.Info) (layout.Version, error) {
	if bin == nil || bin.BSSSize <= 0 {
		return layout.Version{}, ErrVersionNotFound
	}
	buf, err := h.ReadBytes(bin.BSSAddr, int(bin.BSSSize))
	if err != nil {
		return layout.Version{}, err
	}
	return layout.ScanBytes(buf)
}
