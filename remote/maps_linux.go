// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package remote

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"remoteprof/core"
)

// regions parses /proc/<pid>/maps the way marselester-diy-parca-agent's
// profiler reads a target's memory map, line by line with no external
// ELF/maps library required.
//
// Format: "<start>-<end> <perms> <offset> <dev> <inode>  <path>"
func (h *linuxHandle) regions() ([]core.MemoryRegion, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/maps", h.pid))
	if err != nil {
		return nil, classifyLinuxErr(0, 0, err)
	}
	defer f.Close()

	var out []core.MemoryRegion
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		addrs := strings.SplitN(fields[0], "-", 2)
		if len(addrs) != 2 {
			continue
		}
		min, err := strconv.ParseUint(addrs[0], 16, 64)
		if err != nil {
			continue
		}
		max, err := strconv.ParseUint(addrs[1], 16, 64)
		if err != nil {
			continue
		}
		perms := fields[1]
		off, _ := strconv.ParseUint(fields[2], 16, 64)

		var perm core.Perm
		if strings.Contains(perms, "r") {
			perm |= core.Read
		}
		if strings.Contains(perms, "w") {
			perm |= core.Write
		}
		if strings.Contains(perms, "x") {
			perm |= core.Exec
		}

		var path string
		if len(fields) >= 6 {
			path = strings.Join(fields[5:], " ")
		}

		out = append(out, core.MemoryRegion{
			Min:    core.Address(min),
			Max:    core.Address(max),
			Perm:   perm,
			Path:   path,
			Offset: int64(off),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, classifyLinuxErr(0, 0, err)
	}
	return out, nil
}
