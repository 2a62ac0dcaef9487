// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package core defines the low-level address space vocabulary shared by
// every other package in this module: a remote virtual address, the
// permission bits on a mapping, and a lookup table from address to mapping.
//
// There is nothing interpreter-specific here; the same types would serve
// a core-dump reader or a live-process reader equally well.
package core

import "fmt"

// Address is a virtual address in the target process's address space.
type Address uint64

// Add returns a+n.
func (a Address) Add(n int64) Address {
	return Address(int64(a) + n)
}

// Sub returns a-b.
func (a Address) Sub(b Address) int64 {
	return int64(a) - int64(b)
}

func (a Address) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}

// IsZero reports whether a is the zero (null) address.
func (a Address) IsZero() bool {
	return a == 0
}
