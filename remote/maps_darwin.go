// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build darwin

package remote

/*
#include <mach/mach.h>
#include <mach/mach_vm.h>

static kern_return_t next_region(mach_port_t task, mach_vm_address_t *addr, mach_vm_size_t *size, unsigned int *prot) {
	vm_region_basic_info_data_64_t info;
	mach_msg_type_number_t count = VM_REGION_BASIC_INFO_COUNT_64;
	mach_port_t object_name = MACH_PORT_NULL;
	kern_return_t kr = mach_vm_region(task, addr, size, VM_REGION_BASIC_INFO_64, (vm_region_info_t)&info, &count, &object_name);
	if (kr == KERN_SUCCESS) {
		*prot = info.protection;
	}
	return kr;
}
*/
import "C"

import (
	"os/exec"
	"strconv"
	"strings"

	"remoteprof/core"
)

// regions walks the target's address space with mach_vm_region. Unlike
// /proc/<pid>/maps on Linux, Mach regions do not carry a backing file
// path, so paths are filled in separately from `vmmap`'s summary output
// when available; a region with no resolvable path is still usable for
// address-membership checks, just not for picking the main/shared
// binary by path pattern.
func (h *darwinHandle) regions() ([]core.MemoryRegion, error) {
	var out []core.MemoryRegion
	addr := C.mach_vm_address_t(0)
	for {
		var size C.mach_vm_size_t
		var prot C.uint
		kr := C.next_region(h.task, &addr, &size, &prot)
		if kr != C.KERN_SUCCESS {
			break // no more regions
		}
		var perm core.Perm
		if prot&0x1 != 0 {
			perm |= core.Read
		}
		if prot&0x2 != 0 {
			perm |= core.Write
		}
		if prot&0x4 != 0 {
			perm |= core.Exec
		}
		out = append(out, core.MemoryRegion{
			Min:  core.Address(addr),
			Max:  core.Address(addr) + core.Address(size),
			Perm: perm,
		})
		addr += C.mach_vm_address_t(size)
	}
	pathsByStart := vmmapPaths(h.pid)
	for i := range out {
		if p, ok := pathsByStart[uint64(out[i].Min)]; ok {
			out[i].Path = p
		}
	}
	return out, nil
}

// vmmapPaths shells out to the `vmmap` tool to recover the file backing
// each mapped region, since that information is not available through
// the low-level Mach vm_region call used above.
func vmmapPaths(pid int) map[uint64]string {
	result := map[uint64]string{}
	out, err := exec.Command("vmmap", "-w", strconv.Itoa(pid)).Output()
	if err != nil {
		return result
	}
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		// vmmap prints ranges as "0000000100000000-0000000100004000"
		rng := fields[len(fields)-2]
		parts := strings.SplitN(rng, "-", 2)
		if len(parts) != 2 {
			continue
		}
		start, err := strconv.ParseUint(parts[0], 16, 64)
		if err != nil {
			continue
		}
		path := fields[len(fields)-1]
		if strings.HasPrefix(path, "/") {
			result[start] = path
		}
	}
	return result
}
