// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import "strings"

// Perm represents the permissions observed on a mapped memory region.
type Perm uint8

const (
	Read Perm = 1 << iota
	Write
	Exec
)

func (p Perm) String() string {
	var parts []string
	if p&Read != 0 {
		parts = append(parts, "r")
	}
	if p&Write != 0 {
		parts = append(parts, "w")
	}
	if p&Exec != 0 {
		parts = append(parts, "x")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "")
}
