// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !windows

package remoteprof

import (
	"remoteprof/core"
	"remoteprof/remote"
)

func loadWindowsSymbols(h *remote.Handle, info *ProcessInfo, mainPath string, mainStart core.Address) error {
	return nil
}
