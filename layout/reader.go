// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"remoteprof/arch"
	"remoteprof/core"
	"remoteprof/remote"
)

// Reader bundles the two things every offset-based field access needs:
// something to read remote bytes through, and the pointer size/byte
// order to decode them with. Unlike remote.ReadStruct (reserved for
// naturally-aligned helper records), Reader never assumes a Go struct
// mirrors the target's C layout — every access names an explicit byte
// offset.
type Reader struct {
	H *remote.Handle
	A *arch.Architecture
}

// Pointer reads one pointer-sized value at addr.
func (r *Reader) Pointer(addr core.Address) (core.Address, error) {
	buf, err := r.H.ReadBytes(addr, r.A.PointerSize)
	if err != nil {
		return 0, err
	}
	return r.A.Pointer(buf), nil
}

// Uint reads one platform-int-sized unsigned value at addr.
func (r *Reader) Uint(addr core.Address) (uint64, error) {
	buf, err := r.H.ReadBytes(addr, r.A.IntSize)
	if err != nil {
		return 0, err
	}
	return r.A.Uint(buf), nil
}

// Int reads one platform-int-sized signed value at addr.
func (r *Reader) Int(addr core.Address) (int64, error) {
	buf, err := r.H.ReadBytes(addr, r.A.IntSize)
	if err != nil {
		return 0, err
	}
	return r.A.Int(buf), nil
}

// Bytes reads n raw bytes at addr.
func (r *Reader) Bytes(addr core.Address, n int) ([]byte, error) {
	return r.H.ReadBytes(addr, n)
}

// CString reads a length-prefixed string object: a platform-int-sized
// length at addr, followed immediately by that many bytes of character
// data, capped at maxLen to bound corrupt or misread data.
func (r *Reader) CString(addr core.Address, maxLen int) (string, error) {
	n, err := r.Uint(addr)
	if err != nil {
		return "", err
	}
	if int(n) > maxLen {
		n = uint64(maxLen)
	}
	buf, err := r.Bytes(addr.Add(int64(r.A.IntSize)), int(n))
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
