// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import "testing"

func TestRegionSetFind(t *testing.T) {
	regions := []MemoryRegion{
		{Min: 0x2000, Max: 0x3000, Perm: Read},
		{Min: 0x1000, Max: 0x1500, Perm: Read | Exec},
		{Min: 0x5000, Max: 0x6000, Perm: Read | Write},
	}
	rs := NewRegionSet(regions)

	cases := []struct {
		addr Address
		want bool
	}{
		{0x1000, true},
		{0x14ff, true},
		{0x1500, false}, // half-open upper bound
		{0x1fff, false}, // gap between regions
		{0x2500, true},
		{0x5fff, true},
		{0x6000, false},
	}
	for _, c := range cases {
		if got := rs.Contains(c.addr); got != c.want {
			t.Errorf("Contains(%s) = %v, want %v", c.addr, got, c.want)
		}
	}
}

func TestRegionSetFindReturnsRegion(t *testing.T) {
	rs := NewRegionSet([]MemoryRegion{
		{Min: 0x1000, Max: 0x2000, Path: "/bin/python"},
	})
	r := rs.Find(0x1500)
	if r == nil {
		t.Fatal("Find(0x1500) = nil, want a region")
	}
	if r.Path != "/bin/python" {
		t.Errorf("Find(0x1500).Path = %q, want /bin/python", r.Path)
	}
	if rs.Find(0x500) != nil {
		t.Error("Find(0x500) = non-nil, want nil for unmapped address")
	}
}

func TestPermString(t *testing.T) {
	cases := []struct {
		p    Perm
		want string
	}{
		{0, "-"},
		{Read, "r"},
		{Read | Write, "rw"},
		{Read | Exec, "rx"},
		{Read | Write | Exec, "rwx"},
	}
	for _, c := range cases {
		if got := c.p.String(); got != c.want {
			t.Errorf("Perm(%v).String() = %q, want %q", c.p, got, c.want)
		}
	}
}
