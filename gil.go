// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remoteprof

import (
	"strings"

	"remoteprof/layout"
)

// attributeGIL dereferences the current_thread_state symbol, if one was
// resolved, to find which thread currently holds the interpreter lock,
// and marks the matching trace. If the symbol is absent or the pointer
// is null, no trace is marked — at most one trace ever carries
// OwnsGIL=true.
func attributeGIL(r *layout.Reader, info *ProcessInfo, desc layout.Descriptors, traces []StackTrace) {
	sym, ok := info.Symbol("current_thread_state")
	if !ok {
		return
	}
	current, err := r.Pointer(sym)
	if err != nil || current.IsZero() {
		return
	}
	threadID, err := desc.Thread.ThreadID(r, current)
	if err != nil {
		return
	}
	for i := range traces {
		if uint64(traces[i].ThreadID) == threadID {
			traces[i].OwnsGIL = true
			return
		}
	}
}

// shortenFilename strips, in order: the install root prefix, then a
// leading "lib" path segment, then the version tag, then
// "site-packages". Without the install root nothing is stripped, and
// without the "lib" segment nothing after it is; the version tag and
// "site-packages" are each stripped only where present. The result is
// always a suffix of filename.
func shortenFilename(filename, installRoot, versionTag string) string {
	if installRoot == "" || !strings.HasPrefix(filename, installRoot) {
		return filename
	}
	rest := filename[len(installRoot):]
	rest = strings.TrimPrefix(rest, "/")
	if !strings.HasPrefix(rest, "lib/") {
		return rest
	}
	rest = rest[len("lib/"):]
	if strings.HasPrefix(rest, versionTag) {
		rest = rest[len(versionTag):]
		rest = strings.TrimPrefix(rest, "/")
	}
	rest = strings.TrimPrefix(rest, "site-packages/")
	return rest
}
