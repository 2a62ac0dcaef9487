// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remote

import (
	"errors"
	"fmt"
)

// ErrCannotOpenProcess reports that the OS refused to produce a handle on
// the requested pid (permissions, or no such process).
var ErrCannotOpenProcess = errors.New("remote: cannot open process")

// ReadErrorKind distinguishes the ways a remote memory read can fail.
type ReadErrorKind int

const (
	PermissionDenied ReadErrorKind = iota
	ProcessGone
	InvalidAddress
	ShortRead
)

func (k ReadErrorKind) String() string {
	switch k {
	case PermissionDenied:
		return "permission denied"
	case ProcessGone:
		return "process gone"
	case InvalidAddress:
		return "invalid address"
	case ShortRead:
		return "short read"
	default:
		return "unknown"
	}
}

// ErrReadFailed reports a failed ReadBytes/ReadStruct call against the
// target process.
type ErrReadFailed struct {
	Kind    ReadErrorKind
	Addr    uint64
	Len     int
	Wrapped error
}

func (e *ErrReadFailed) Error() string {
	return fmt.Sprintf("remote: read failed at 0x%x (%d bytes): %s: %v", e.Addr, e.Len, e.Kind, e.Wrapped)
}

func (e *ErrReadFailed) Unwrap() error {
	return e.Wrapped
}
