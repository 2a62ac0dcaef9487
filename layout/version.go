// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package layout derives a target interpreter's version from its
// binary, maps that version to the family of structural descriptors
// that describe its remote objects, and exposes those descriptors
// (InterpreterState, ThreadState, Frame, CodeObject) to the walker
// above it.
package layout

import (
	"fmt"
	"regexp"
	"strconv"
)

// Version is MAJOR.MINOR.PATCH plus an optional release tag such as
// "rc1" or "a2". It orders by (Major, Minor, Patch); ReleaseFlags does
// not participate in ordering.
type Version struct {
	Major, Minor, Patch uint64
	ReleaseFlags        string
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d%s", v.Major, v.Minor, v.Patch, v.ReleaseFlags)
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater
// than o, comparing Major, then Minor, then Patch.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmp(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmp(v.Minor, o.Minor)
	default:
		return cmp(v.Patch, o.Patch)
	}
}

func cmp(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// versionPattern requires a non-digit (or start-of-data) immediately
// before the dotted triple, so "53.7.0" cannot match as "3.7.0" with a
// leading "5" swallowed; and a trailing space after the optional
// release tag, so "3.7.10fooboo" cannot match as "3.7.10" with
// "fooboo" ignored.
var versionPattern = regexp.MustCompile(`(?:\D|^)((\d)\.(\d)\.(\d{1,2}))((a|b|c|rc)\d{1,2})? (.{1,64})`)

// ScanBytes finds the first dotted MAJOR.MINOR.PATCH[release] version
// string in data and parses it. It returns an error if no such pattern
// occurs anywhere in data.
func ScanBytes(data []byte) (Version, error) {
	m := versionPattern.FindSubmatch(data)
	if m == nil {
		return Version{}, fmt.Errorf("layout: no version string found in %d bytes", len(data))
	}
	major, err := strconv.ParseUint(string(m[2]), 10, 64)
	if err != nil {
		return Version{}, fmt.Errorf("layout: parse major version: %w", err)
	}
	minor, err := strconv.ParseUint(string(m[3]), 10, 64)
	if err != nil {
		return Version{}, fmt.Errorf("layout: parse minor version: %w", err)
	}
	patch, err := strconv.ParseUint(string(m[4]), 10, 64)
	if err != nil {
		return Version{}, fmt.Errorf("layout: parse patch version: %w", err)
	}
	return Version{Major: major, Minor: minor, Patch: patch, ReleaseFlags: string(m[5])}, nil
}
