// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import "sort"

// MemoryRegion is a contiguous subset of a target process's address
// space, as reported by the OS (e.g. one line of /proc/<pid>/maps).
// A set of regions is treated as immutable for the duration of one
// sample: the core never mutates a MemoryRegion after it is built.
type MemoryRegion struct {
	Min, Max Address
	Perm     Perm
	Path     string // backing file, or "" for anonymous mappings
	Offset   int64  // offset into Path at Min, if Path != ""
}

// Size returns Max-Min.
func (m MemoryRegion) Size() int64 {
	return m.Max.Sub(m.Min)
}

// Contains reports whether a lies in [Min, Max).
func (m MemoryRegion) Contains(a Address) bool {
	return a >= m.Min && a < m.Max
}

// RegionSet is a sorted, non-overlapping list of MemoryRegions, supporting
// fast address-to-region lookup by binary search. Regions are assumed
// disjoint and sorted by Min, which is how every memory-map source in
// this module (procfs, VirtualQueryEx, mach vm_region) already
// produces them.
type RegionSet struct {
	regions []MemoryRegion
}

// NewRegionSet builds a RegionSet from an unsorted slice of regions.
func NewRegionSet(regions []MemoryRegion) *RegionSet {
	rs := &RegionSet{regions: append([]MemoryRegion(nil), regions...)}
	sort.Slice(rs.regions, func(i, j int) bool { return rs.regions[i].Min < rs.regions[j].Min })
	return rs
}

// All returns every region in the set, ordered by address.
func (rs *RegionSet) All() []MemoryRegion {
	return rs.regions
}

// Find returns the region containing a, or nil if a is unmapped.
func (rs *RegionSet) Find(a Address) *MemoryRegion {
	i := sort.Search(len(rs.regions), func(i int) bool { return rs.regions[i].Max > a })
	if i >= len(rs.regions) || !rs.regions[i].Contains(a) {
		return nil
	}
	return &rs.regions[i]
}

// Contains reports whether a falls in some region of the set.
func (rs *RegionSet) Contains(a Address) bool {
	return rs.Find(a) != nil
}
