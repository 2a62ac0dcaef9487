// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remoteprof

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"remoteprof/arch"
	"remoteprof/binfmt"
	"remoteprof/core"
	"remoteprof/remote"
)

// runtimeName names the interpreter family this probe looks for in a
// process's memory map. The executable/library path patterns below are
// built from it ("bin/python" on POSIX, "python.exe" on Windows).
const runtimeName = "python"

// probe builds a ProcessInfo for pid: it lists the process's memory
// regions, finds the main interpreter executable and, if present, a
// companion shared interpreter library, and inspects both.
func probe(h *remote.Handle, a *arch.Architecture) (*ProcessInfo, error) {
	rawRegions, err := h.Regions()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCannotOpenProcess, err)
	}
	regions := core.NewRegionSet(rawRegions)

	mainPath, mainStart, found := findBinary(rawRegions, mainBinaryPattern())
	if !found {
		return nil, ErrRuntimeNotFound
	}
	mainInfo, err := binfmt.Inspect(mainPath, mainStart)
	if err != nil {
		return nil, fmt.Errorf("remoteprof: inspect main binary %s: %w", mainPath, err)
	}
	fixupMachO(mainInfo, mainPath, mainStart, rawRegions)

	info := &ProcessInfo{
		MainBinary:     mainInfo,
		Regions:        regions,
		ExecutablePath: mainPath,
	}

	if sharedPath, sharedStart, ok := findBinary(rawRegions, sharedBinaryPattern()); ok {
		sharedInfo, err := binfmt.Inspect(sharedPath, sharedStart)
		if err == nil {
			fixupMachO(sharedInfo, sharedPath, sharedStart, rawRegions)
			info.SharedRuntimeBinary = sharedInfo
		} else {
			// A companion library that fails to parse is not fatal: the
			// main binary may still carry everything the locator needs.
			info.Warnings = append(info.Warnings,
				fmt.Sprintf("shared runtime library %s found but could not be parsed: %v", sharedPath, err))
		}
	}

	if runtime.GOOS == "windows" {
		if err := loadWindowsSymbols(h, info, mainPath, mainStart); err != nil {
			// Side-car symbol loading is best-effort; the BSS scan
			// fallback still has a chance without it.
			info.Warnings = append(info.Warnings,
				fmt.Sprintf("windows symbol load failed: %v", err))
		}
	}

	return info, nil
}

func mainBinaryPattern() string {
	if runtime.GOOS == "windows" {
		return runtimeName + ".exe"
	}
	return "bin/" + runtimeName
}

func sharedBinaryPattern() string {
	switch runtime.GOOS {
	case "windows":
		return runtimeName
	case "darwin":
		return "lib" + runtimeName
	default:
		return "lib/lib" + runtimeName
	}
}

// findBinary returns the path and load (start) address of the first
// executable region whose path contains pattern.
func findBinary(regions []core.MemoryRegion, pattern string) (string, core.Address, bool) {
	pattern = strings.ToLower(pattern)
	for _, r := range regions {
		if r.Path == "" || r.Perm&core.Exec == 0 {
			continue
		}
		if strings.Contains(strings.ToLower(filepath.ToSlash(r.Path)), pattern) {
			return r.Path, r.Min, true
		}
	}
	return "", 0, false
}

// fixupMachO applies the Mach-O symbol-rebasing fixup: subtract the
// address of _mh_execute_header (minus the region's own start) from
// every symbol and from bss_addr, so values come out absolute again.
func fixupMachO(info *binfmt.Info, path string, loadAddr core.Address, regions []core.MemoryRegion) {
	if runtime.GOOS != "darwin" {
		return
	}
	header, ok := info.Symbol("_mh_execute_header")
	if !ok {
		return
	}
	bias := loadAddr.Sub(header)
	if bias == 0 {
		return
	}
	for name, addr := range info.Symbols {
		info.Symbols[name] = addr.Add(bias)
	}
	info.BSSAddr = info.BSSAddr.Add(bias)
}
