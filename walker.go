// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remoteprof

import (
	"fmt"

	"remoteprof/core"
	"remoteprof/layout"
	"remoteprof/linetable"
)

// maxThreads and maxFrames cap traversal of the remote thread list and
// each thread's frame chain: both are conceivably cyclic if the target
// is corrupt, and a visited-set alone isn't enough to bound the work an
// adversarial or torn read could demand.
const (
	maxThreads = 4096
	maxFrames  = 4096

	maxStringLen = 4096
)

// sampleFromRoot walks every thread reachable from root and, for each,
// every frame on its chain, producing one StackTrace per thread.
func sampleFromRoot(r *layout.Reader, root core.Address, desc layout.Descriptors) ([]StackTrace, error) {
	head, err := desc.Interp.Head(r, root)
	if err != nil {
		return nil, fmt.Errorf("remoteprof: read interpreter head: %w", err)
	}

	var traces []StackTrace
	visitedThreads := map[core.Address]bool{}

	for thread := head; !thread.IsZero() && len(traces) < maxThreads; {
		if visitedThreads[thread] {
			break
		}
		visitedThreads[thread] = true

		trace, err := sampleThread(r, thread, desc)
		if err != nil {
			return nil, err
		}
		traces = append(traces, trace)

		next, err := desc.Thread.Next(r, thread)
		if err != nil {
			break
		}
		thread = next
	}

	return traces, nil
}

func sampleThread(r *layout.Reader, thread core.Address, desc layout.Descriptors) (StackTrace, error) {
	threadID, err := desc.Thread.ThreadID(r, thread)
	if err != nil {
		return StackTrace{}, fmt.Errorf("remoteprof: read thread id: %w", err)
	}

	frame, err := desc.Thread.Frame(r, thread)
	if err != nil {
		return StackTrace{}, fmt.Errorf("remoteprof: read top frame: %w", err)
	}

	var frames []StackFrame
	visitedFrames := map[core.Address]bool{}

	for !frame.IsZero() && len(frames) < maxFrames {
		if visitedFrames[frame] {
			break
		}
		visitedFrames[frame] = true

		sf, err := sampleFrame(r, frame, desc)
		if err != nil {
			return StackTrace{}, err
		}
		frames = append(frames, sf)

		back, err := desc.Frame.Back(r, frame)
		if err != nil {
			break
		}
		frame = back
	}

	// The chain is innermost-first (current frame to caller to
	// caller's caller); reverse so the emitted order is outermost-first
	// (frames[0] is the module-level frame, the last entry the currently
	// executing one), consistently across every layout family.
	for i, j := 0, len(frames)-1; i < j; i, j = i+1, j-1 {
		frames[i], frames[j] = frames[j], frames[i]
	}

	return StackTrace{ThreadID: int64(threadID), Frames: frames}, nil
}

func sampleFrame(r *layout.Reader, frame core.Address, desc layout.Descriptors) (StackFrame, error) {
	code, err := desc.Frame.Code(r, frame)
	if err != nil {
		return StackFrame{}, fmt.Errorf("remoteprof: read frame code pointer: %w", err)
	}
	if code.IsZero() {
		return StackFrame{}, fmt.Errorf("remoteprof: frame %s has no code object", frame)
	}

	filenameAddr, err := desc.Code.Filename(r, code)
	if err != nil {
		return StackFrame{}, fmt.Errorf("remoteprof: read filename pointer: %w", err)
	}
	filename, err := r.CString(filenameAddr, maxStringLen)
	if err != nil {
		return StackFrame{}, fmt.Errorf("remoteprof: read filename string: %w", err)
	}

	nameAddr, err := desc.Code.Name(r, code)
	if err != nil {
		return StackFrame{}, fmt.Errorf("remoteprof: read function-name pointer: %w", err)
	}
	function, err := r.CString(nameAddr, maxStringLen)
	if err != nil {
		return StackFrame{}, fmt.Errorf("remoteprof: read function-name string: %w", err)
	}

	firstLine, err := desc.Code.FirstLineNumber(r, code)
	if err != nil {
		return StackFrame{}, fmt.Errorf("remoteprof: read first line number: %w", err)
	}

	lineTableAddr, lineTableSize, err := desc.Code.LineTable(r, code)
	if err != nil {
		return StackFrame{}, fmt.Errorf("remoteprof: read line table descriptor: %w", err)
	}
	var lineTable []byte
	if lineTableSize > 0 {
		lineTable, err = r.Bytes(lineTableAddr, int(lineTableSize))
		if err != nil {
			return StackFrame{}, fmt.Errorf("remoteprof: read line table: %w", err)
		}
	}

	lastInstr, err := desc.Frame.LastInstructionIndex(r, frame)
	if err != nil {
		return StackFrame{}, fmt.Errorf("remoteprof: read last instruction index: %w", err)
	}

	line := linetable.CurrentLine(lineTable, firstLine, lastInstr, desc.LineFmt)

	return StackFrame{Filename: filename, Function: function, Line: line}, nil
}
