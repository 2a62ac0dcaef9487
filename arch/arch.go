// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arch contains architecture-specific definitions needed to decode
// fixed-width integers and pointers read out of a target process, so that a
// single binary can sample targets of a different word size than itself
// (e.g. a 64-bit tool reading a 32-bit target on ARM).
package arch

import (
	"encoding/binary"
	"fmt"

	"remoteprof/core"
)

// Architecture describes the integer and pointer encoding of a target
// process's machine architecture.
type Architecture struct {
	Name        string
	IntSize     int // size of the interpreter's C `int`, in bytes
	PointerSize int // size of a pointer, in bytes
	ByteOrder   binary.ByteOrder
}

func (a *Architecture) Int(buf []byte) int64 {
	if a.IntSize == 4 {
		return int64(int32(a.ByteOrder.Uint32(buf[:4])))
	}
	return int64(a.Uint(buf))
}

func (a *Architecture) Uint(buf []byte) uint64 {
	switch a.IntSize {
	case 4:
		return uint64(a.ByteOrder.Uint32(buf[:4]))
	case 8:
		return a.ByteOrder.Uint64(buf[:8])
	}
	panic("bad IntSize")
}

// Pointer decodes a PointerSize-wide value from buf as a remote Address.
func (a *Architecture) Pointer(buf []byte) core.Address {
	switch a.PointerSize {
	case 4:
		return core.Address(a.ByteOrder.Uint32(buf[:4]))
	case 8:
		return core.Address(a.ByteOrder.Uint64(buf[:8]))
	}
	panic("bad PointerSize")
}

var AMD64 = Architecture{Name: "amd64", IntSize: 4, PointerSize: 8, ByteOrder: binary.LittleEndian}
var ARM64 = Architecture{Name: "arm64", IntSize: 4, PointerSize: 8, ByteOrder: binary.LittleEndian}
var X86 = Architecture{Name: "386", IntSize: 4, PointerSize: 4, ByteOrder: binary.LittleEndian}
var ARM = Architecture{Name: "arm", IntSize: 4, PointerSize: 4, ByteOrder: binary.LittleEndian}

// ByGOARCH returns the Architecture matching a Go runtime.GOARCH value.
func ByGOARCH(goarch string) (*Architecture, error) {
	switch goarch {
	case "amd64":
		return &AMD64, nil
	case "arm64":
		return &ARM64, nil
	case "386":
		return &X86, nil
	case "arm":
		return &ARM, nil
	default:
		return nil, fmt.Errorf("arch: unsupported architecture %q", goarch)
	}
}
