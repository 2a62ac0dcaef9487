// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remoteprof

import (
	"errors"
	"fmt"

	"remoteprof/arch"
	"remoteprof/binfmt"
	"remoteprof/core"
	"remoteprof/layout"
	"remoteprof/remote"
)

// locateInterpreter finds the address of the running InterpreterState,
// trying the symbolic strategy first and falling back to a BSS scan.
func locateInterpreter(h *remote.Handle, a *arch.Architecture, info *ProcessInfo, desc layout.Descriptors) (core.Address, error) {
	r := &layout.Reader{H: h, A: a}

	if addr, err := locateSymbolic(r, info, desc); err == nil {
		return addr, nil
	}

	if addr, err := locateByScan(r, info.MainBinary, info, desc); err == nil {
		return addr, nil
	}
	if info.SharedRuntimeBinary != nil {
		if addr, err := locateByScan(r, info.SharedRuntimeBinary, info, desc); err == nil {
			return addr, nil
		}
	}

	return 0, ErrInterpreterNotFound
}

// locateSymbolic resolves the interpreter root via a known symbol. On
// the "3.7" family the runtime exposes a singleton struct whose field
// at desc.SingletonHeadOffset is the interpreters list head; on earlier
// families, the symbol historically named interp_head is itself a
// pointer-to-pointer to the InterpreterState, so resolving it costs one
// dereference.
func locateSymbolic(r *layout.Reader, info *ProcessInfo, desc layout.Descriptors) (core.Address, error) {
	if desc.Family == layout.Family37 {
		sym, ok := info.Symbol("runtime_singleton")
		if !ok {
			return 0, errors.New("remoteprof: runtime_singleton symbol not found")
		}
		return r.Pointer(sym.Add(desc.SingletonHeadOffset))
	}

	sym, ok := info.Symbol("interp_head")
	if !ok {
		return 0, errors.New("remoteprof: interp_head symbol not found")
	}
	return r.Pointer(sym)
}

// maxBSSScanCandidates bounds how many pointer-sized words of BSS are
// considered, guarding against a pathologically large data segment.
const maxBSSScanCandidates = 1 << 20

// locateByScan copies bin's BSS, reinterprets it as a sequence of
// pointer-sized values, and validates each as a candidate interpreter
// root: region membership (cheapest), then the thread's back-pointer
// to the candidate (structural), then a full stack walk (most
// expensive), in that order.
func locateByScan(r *layout.Reader, bin *binfmt.Info, info *ProcessInfo, desc layout.Descriptors) (core.Address, error) {
	if bin == nil || bin.BSSSize <= 0 {
		return 0, errors.New("remoteprof: no BSS to scan")
	}
	n := bin.BSSSize
	if n/int64(r.A.PointerSize) > maxBSSScanCandidates {
		n = maxBSSScanCandidates * int64(r.A.PointerSize)
	}
	buf, err := r.H.ReadBytes(bin.BSSAddr, int(n))
	if err != nil {
		return 0, fmt.Errorf("remoteprof: read BSS for scan: %w", err)
	}

	step := r.A.PointerSize
	for off := 0; off+step <= len(buf); off += step {
		p := r.A.Pointer(buf[off : off+step])
		if p.IsZero() {
			continue
		}
		if err := validateCandidate(r, p, info, desc); err == nil {
			return p, nil
		}
	}
	return 0, errLayoutViolation
}

// validateCandidate applies the three structural checks from cheapest
// to most expensive: region membership, the thread's back-reference to
// the candidate, then a full trial stack walk.
func validateCandidate(r *layout.Reader, p core.Address, info *ProcessInfo, desc layout.Descriptors) error {
	if !info.Regions.Contains(p) {
		return errLayoutViolation
	}

	t, err := desc.Interp.Head(r, p)
	if err != nil || !info.Regions.Contains(t) {
		return errLayoutViolation
	}

	back, err := desc.Thread.InterpreterPointer(r, t)
	if err != nil || back != p {
		return errLayoutViolation
	}

	if _, err := sampleFromRoot(r, p, desc); err != nil {
		return errLayoutViolation
	}
	return nil
}
