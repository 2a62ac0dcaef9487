// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package remoteprof reconstructs call stacks of a running interpreter
// process from the outside: given only its pid, it locates the
// interpreter's root object inside the target's address space,
// identifies the runtime version, walks the thread and frame chains,
// and reports which thread holds the global interpreter lock — all by
// reading the target's memory through OS process-memory APIs. Nothing
// is injected, paused, or otherwise modified in the target.
package remoteprof

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"remoteprof/arch"
	"remoteprof/core"
	"remoteprof/layout"
	"remoteprof/remote"
)

// sessionState tracks the Opened/Sampling state machine: any
// remote-read failure during Sampling surfaces as an error on the
// sample call but leaves the session in Opened, ready for another
// attempt.
type sessionState int

const (
	stateOpened sessionState = iota
	stateSampling
)

// ProfilerSession is an open, immutable view onto one target process.
// Once constructed, its Pid, Version, ExecutablePath, InstallRootPath,
// and VersionTag never change; only SampleStacks does further work.
type ProfilerSession struct {
	Pid             int
	Version         layout.Version
	ExecutablePath  string
	InstallRootPath string
	VersionTag      string

	handle *remote.Handle
	arch   *arch.Architecture
	info   *ProcessInfo
	desc   layout.Descriptors
	root   core.Address

	state    sessionState
	warnings []string
}

// Open acquires a handle on pid, locates the interpreter inside it, and
// returns a ready-to-sample session. It performs, in order: opening the
// process handle, the layout probe, version detection, layout dispatch,
// and interpreter-state location.
func Open(pid int) (*ProfilerSession, error) {
	h, err := remote.Open(pid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCannotOpenProcess, err)
	}

	a := &arch.AMD64 // the overwhelming majority of supported targets; see DESIGN.md

	info, err := probe(h, a)
	if err != nil {
		h.Close()
		return nil, err
	}

	version, err := detectVersion(h, info)
	if err != nil {
		h.Close()
		return nil, err
	}

	desc, err := layout.Dispatch(version)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedVersion, err)
	}

	s := &ProfilerSession{
		Pid:            pid,
		Version:        version,
		ExecutablePath: info.ExecutablePath,
		VersionTag:     fmt.Sprintf("%s%d.%d", runtimeName, version.Major, version.Minor),
		handle:         h,
		arch:           a,
		info:           info,
		desc:           desc,
		state:          stateOpened,
		warnings:       info.Warnings,
	}
	s.InstallRootPath = installRootPath(info.ExecutablePath)

	root, err := locateInterpreter(h, a, info, desc)
	if err != nil {
		h.Close()
		return nil, err
	}
	s.root = root

	return s, nil
}

// OpenWithRetries attempts Open followed by one successful
// SampleStacks as a smoke test; on any failure it sleeps 20ms and
// retries, up to maxRetries times. Immediately after process start,
// symbols and interpreter state may not yet be initialized, and this
// catches the common race without masking a real, persistent failure.
func OpenWithRetries(pid int, maxRetries int) (*ProfilerSession, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		s, err := Open(pid)
		if err != nil {
			lastErr = err
		} else if _, sampleErr := s.SampleStacks(); sampleErr == nil {
			return s, nil
		} else {
			lastErr = sampleErr
			s.Close()
		}
		if attempt < maxRetries {
			time.Sleep(20 * time.Millisecond)
		}
	}
	return nil, fmt.Errorf("remoteprof: failed to open pid %d after %d retries: %w", pid, maxRetries, lastErr)
}

// SampleStacks performs one traversal of the interpreter's thread and
// frame chains, producing one StackTrace per thread. A read failure
// surfaces as an error here but does not invalidate the session: the
// target's addresses are stable across samples for its lifetime, and
// the caller may call SampleStacks again.
func (s *ProfilerSession) SampleStacks() ([]StackTrace, error) {
	s.state = stateSampling
	defer func() { s.state = stateOpened }()

	reader := &layout.Reader{H: s.handle, A: s.arch}
	traces, err := sampleFromRoot(reader, s.root, s.desc)
	if err != nil {
		return nil, err
	}
	attributeGIL(reader, s.info, s.desc, traces)
	for i := range traces {
		for j := range traces[i].Frames {
			traces[i].Frames[j].ShortFilename = s.ShortenFilename(traces[i].Frames[j].Filename)
		}
	}
	return traces, nil
}

// ShortenFilename strips the interpreter's install path, then common
// library-path boilerplate, from path. The result is always a suffix
// of path.
func (s *ProfilerSession) ShortenFilename(path string) string {
	return shortenFilename(path, s.InstallRootPath, s.VersionTag)
}

// Warnings returns human-readable notes about recoverable conditions
// encountered while building this session (e.g. a companion shared
// library that failed to parse). It never contains anything fatal.
func (s *ProfilerSession) Warnings() []string {
	return s.warnings
}

// Close releases the OS resources held on the target process.
func (s *ProfilerSession) Close() error {
	return s.handle.Close()
}

// installRootPath derives the interpreter's install root as its
// executable's parent directory, with a trailing "bin" segment
// stripped if present.
func installRootPath(executablePath string) string {
	dir := filepath.Dir(filepath.ToSlash(executablePath))
	dir = strings.TrimSuffix(dir, "/bin")
	if dir == "bin" {
		dir = ""
	}
	return dir
}
