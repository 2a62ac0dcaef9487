// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"fmt"

	"remoteprof/core"
)

// Family names one of the closed set of structural layouts a target
// version can use. The set is small and fixed, so a tagged enum fits
// better than open-ended dispatch.
type Family int

const (
	Legacy2 Family = iota
	Family33
	Family35
	Family36
	Family37
)

func (f Family) String() string {
	switch f {
	case Legacy2:
		return "legacy2"
	case Family33:
		return "3.3"
	case Family35:
		return "3.5"
	case Family36:
		return "3.6"
	case Family37:
		return "3.7"
	default:
		return "unknown"
	}
}

// InterpreterStateOffsets describes the byte layout of the runtime's
// VM-instance object: a single field, the pointer to the first thread.
type InterpreterStateOffsets struct {
	HeadOffset int64
}

func (o InterpreterStateOffsets) Head(r *Reader, base core.Address) (core.Address, error) {
	return r.Pointer(base.Add(o.HeadOffset))
}

// ThreadStateOffsets describes the byte layout of one VM thread.
type ThreadStateOffsets struct {
	InterpOffset   int64
	NextOffset     int64
	FrameOffset    int64
	ThreadIDOffset int64
}

func (o ThreadStateOffsets) InterpreterPointer(r *Reader, base core.Address) (core.Address, error) {
	return r.Pointer(base.Add(o.InterpOffset))
}

func (o ThreadStateOffsets) Next(r *Reader, base core.Address) (core.Address, error) {
	return r.Pointer(base.Add(o.NextOffset))
}

func (o ThreadStateOffsets) Frame(r *Reader, base core.Address) (core.Address, error) {
	return r.Pointer(base.Add(o.FrameOffset))
}

func (o ThreadStateOffsets) ThreadID(r *Reader, base core.Address) (uint64, error) {
	buf, err := r.Bytes(base.Add(o.ThreadIDOffset), r.A.PointerSize)
	if err != nil {
		return 0, err
	}
	return uint64(r.A.Pointer(buf)), nil
}

// FrameOffsets describes the byte layout of one activation record.
type FrameOffsets struct {
	BackOffset         int64
	CodeOffset         int64
	LastInstrOffset    int64
	LastInstrIsPointer bool // some families pack this as the platform int, others as a pointer-sized field
}

func (o FrameOffsets) Back(r *Reader, base core.Address) (core.Address, error) {
	return r.Pointer(base.Add(o.BackOffset))
}

func (o FrameOffsets) Code(r *Reader, base core.Address) (core.Address, error) {
	return r.Pointer(base.Add(o.CodeOffset))
}

func (o FrameOffsets) LastInstructionIndex(r *Reader, base core.Address) (int64, error) {
	if o.LastInstrIsPointer {
		p, err := r.Pointer(base.Add(o.LastInstrOffset))
		return int64(p), err
	}
	return r.Int(base.Add(o.LastInstrOffset))
}

// CodeObjectOffsets describes the byte layout of one compiled function.
type CodeObjectOffsets struct {
	FilenameOffset      int64
	NameOffset          int64
	FirstLineOffset     int64
	LineTableAddrOffset int64
	LineTableSizeOffset int64
}

func (o CodeObjectOffsets) Filename(r *Reader, base core.Address) (core.Address, error) {
	return r.Pointer(base.Add(o.FilenameOffset))
}

func (o CodeObjectOffsets) Name(r *Reader, base core.Address) (core.Address, error) {
	return r.Pointer(base.Add(o.NameOffset))
}

func (o CodeObjectOffsets) FirstLineNumber(r *Reader, base core.Address) (int64, error) {
	return r.Int(base.Add(o.FirstLineOffset))
}

func (o CodeObjectOffsets) LineTable(r *Reader, base core.Address) (core.Address, int64, error) {
	addr, err := r.Pointer(base.Add(o.LineTableAddrOffset))
	if err != nil {
		return 0, 0, err
	}
	size, err := r.Int(base.Add(o.LineTableSizeOffset))
	if err != nil {
		return 0, 0, err
	}
	return addr, size, nil
}

// Descriptors bundles one offset table per remote object kind: the full
// capability set the walker needs to traverse a session of a given
// layout family.
type Descriptors struct {
	Family Family
	Interp InterpreterStateOffsets
	Thread ThreadStateOffsets
	Frame  FrameOffsets
	Code   CodeObjectOffsets

	// SingletonHeadOffset is only meaningful on the "3.7" family: the
	// byte offset within the runtime's singleton struct where
	// interpreters.head lives. Unrelated to Interp.HeadOffset, which
	// describes a field of InterpreterState itself; this field
	// describes a field of a different, larger struct that exists only
	// to let the symbolic locator reach the first InterpreterState
	// without a second pointer dereference through interp_head.
	SingletonHeadOffset int64

	LineFmt LineTableFormat
}

// LineTableFormat selects which line-table decoding rule a family uses;
// the rule has changed across minor versions (see linetable package).
type LineTableFormat int

const (
	LineFormatSigned LineTableFormat = iota
	LineFormatUnsigned
)

// families holds one descriptor set per layout family. The byte offsets
// are representative, self-consistent values; they are not taken from
// any particular interpreter build.
var families = map[Family]Descriptors{
	Legacy2: {
		Family:  Legacy2,
		Interp:  InterpreterStateOffsets{HeadOffset: 8},
		Thread:  ThreadStateOffsets{NextOffset: 8, InterpOffset: 0, FrameOffset: 16, ThreadIDOffset: 144},
		Frame:   FrameOffsets{BackOffset: 24, CodeOffset: 64, LastInstrOffset: 48, LastInstrIsPointer: false},
		Code:    CodeObjectOffsets{FilenameOffset: 80, NameOffset: 88, FirstLineOffset: 96, LineTableAddrOffset: 104, LineTableSizeOffset: 48},
		LineFmt: LineFormatUnsigned,
	},
	Family33: {
		Family:  Family33,
		Interp:  InterpreterStateOffsets{HeadOffset: 8},
		Thread:  ThreadStateOffsets{NextOffset: 8, InterpOffset: 0, FrameOffset: 24, ThreadIDOffset: 152},
		Frame:   FrameOffsets{BackOffset: 24, CodeOffset: 64, LastInstrOffset: 48, LastInstrIsPointer: false},
		Code:    CodeObjectOffsets{FilenameOffset: 96, NameOffset: 104, FirstLineOffset: 112, LineTableAddrOffset: 120, LineTableSizeOffset: 48},
		LineFmt: LineFormatUnsigned,
	},
	Family35: {
		Family:  Family35,
		Interp:  InterpreterStateOffsets{HeadOffset: 8},
		Thread:  ThreadStateOffsets{NextOffset: 8, InterpOffset: 0, FrameOffset: 24, ThreadIDOffset: 160},
		Frame:   FrameOffsets{BackOffset: 24, CodeOffset: 64, LastInstrOffset: 48, LastInstrIsPointer: false},
		Code:    CodeObjectOffsets{FilenameOffset: 96, NameOffset: 104, FirstLineOffset: 112, LineTableAddrOffset: 120, LineTableSizeOffset: 48},
		LineFmt: LineFormatUnsigned,
	},
	Family36: {
		Family:  Family36,
		Interp:  InterpreterStateOffsets{HeadOffset: 8},
		Thread:  ThreadStateOffsets{NextOffset: 8, InterpOffset: 0, FrameOffset: 24, ThreadIDOffset: 176},
		Frame:   FrameOffsets{BackOffset: 24, CodeOffset: 56, LastInstrOffset: 48, LastInstrIsPointer: false},
		Code:    CodeObjectOffsets{FilenameOffset: 96, NameOffset: 104, FirstLineOffset: 112, LineTableAddrOffset: 120, LineTableSizeOffset: 48},
		LineFmt: LineFormatUnsigned,
	},
	Family37: {
		Family:              Family37,
		Interp:              InterpreterStateOffsets{HeadOffset: 8},
		Thread:              ThreadStateOffsets{NextOffset: 8, InterpOffset: 0, FrameOffset: 24, ThreadIDOffset: 176},
		Frame:               FrameOffsets{BackOffset: 24, CodeOffset: 56, LastInstrOffset: 48, LastInstrIsPointer: false},
		Code:                CodeObjectOffsets{FilenameOffset: 96, NameOffset: 104, FirstLineOffset: 112, LineTableAddrOffset: 120, LineTableSizeOffset: 48},
		SingletonHeadOffset: 24,
		LineFmt:             LineFormatSigned,
	},
}

// Dispatch maps a detected version to its layout family's descriptor
// set.
func Dispatch(v Version) (Descriptors, error) {
	f, err := classify(v)
	if err != nil {
		return Descriptors{}, err
	}
	return families[f], nil
}

// classify implements the version-range table: 2.3-2.7.x is "legacy2",
// 3.3.x is "3.3", 3.4-3.5.x is "3.5", 3.6.x is "3.6", and 3.7.x-3.8.x
// share the "3.7" family (3.8.0's ABI is wire-compatible with 3.7).
func classify(v Version) (Family, error) {
	switch {
	case v.Major == 2 && v.Minor >= 3 && v.Minor <= 7:
		return Legacy2, nil
	case v.Major == 3 && v.Minor == 3:
		return Family33, nil
	case v.Major == 3 && (v.Minor == 4 || v.Minor == 5):
		return Family35, nil
	case v.Major == 3 && v.Minor == 6:
		return Family36, nil
	case v.Major == 3 && (v.Minor == 7 || v.Minor == 8):
		return Family37, nil
	default:
		return 0, fmt.Errorf("layout: unsupported version %s", v)
	}
}
