// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remoteprof

import "errors"

// Sentinel errors produced while opening a process and building a
// session. Each can be matched with errors.Is. A failed remote read
// instead surfaces as *remote.ErrReadFailed, since package remote is
// where reads happen.
var (
	ErrCannotOpenProcess   = errors.New("remoteprof: cannot open process")
	ErrRuntimeNotFound     = errors.New("remoteprof: interpreter executable not found in process map")
	ErrVersionNotFound     = errors.New("remoteprof: version string not found")
	ErrUnsupportedVersion  = errors.New("remoteprof: unsupported interpreter version")
	ErrInterpreterNotFound = errors.New("remoteprof: interpreter state not found")

	// errLayoutViolation rejects a BSS-scan candidate address during
	// interpreter-state discovery. It never escapes to a caller.
	errLayoutViolation = errors.New("remoteprof: candidate failed structural validation")
)
