// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import "testing"

func TestScanBytes(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Version
	}{
		{"plain", "2.7.10 (default, Oct  6 2017, 22:29:07)", Version{2, 7, 10, ""}},
		{"anaconda", "3.6.3 |Anaconda custom (64-bit)| (default, Oct  6 2017, 12:04:38)", Version{3, 6, 3, ""}},
		{"rc with prefix", "Python 3.7.0rc1 (v3.7.0rc1:dfad352267, Jul 20 2018, 13:27:54)", Version{3, 7, 0, "rc1"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ScanBytes([]byte(c.in))
			if err != nil {
				t.Fatalf("ScanBytes(%q): unexpected error: %v", c.in, err)
			}
			if got != c.want {
				t.Errorf("ScanBytes(%q) = %+v, want %+v", c.in, got, c.want)
			}
		})
	}
}

func TestScanBytesNegative(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"leading digit absorbs version", "53.7.0rc1 (v53.7.0rc1:dfad352267, Jul 20 2018, 13:27:54)"},
		{"undotted version", "3.7 10 "},
		{"suffix noise after patch", "3.7.10fooboo "},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := ScanBytes([]byte(c.in)); err == nil {
				t.Errorf("ScanBytes(%q): expected error, got none", c.in)
			}
		})
	}
}

func TestScanBytesIdempotence(t *testing.T) {
	versions := []Version{
		{2, 7, 10, ""},
		{3, 6, 3, ""},
		{3, 7, 0, "rc1"},
		{3, 8, 12, "a2"},
	}
	for _, v := range versions {
		formatted := v.String() + " (built for this test)"
		got, err := ScanBytes([]byte(formatted))
		if err != nil {
			t.Fatalf("ScanBytes(%q): %v", formatted, err)
		}
		if got != v {
			t.Errorf("round trip of %+v produced %+v", v, got)
		}
	}
}

func TestVersionCompare(t *testing.T) {
	a := Version{3, 6, 9, ""}
	b := Version{3, 7, 0, "rc1"}
	if a.Compare(b) >= 0 {
		t.Errorf("expected %s < %s", a, b)
	}
	if b.Compare(a) <= 0 {
		t.Errorf("expected %s > %s", b, a)
	}
	if a.Compare(a) != 0 {
		t.Errorf("expected %s == %s", a, a)
	}
}

func TestDispatchFamilies(t *testing.T) {
	cases := []struct {
		v    Version
		want Family
	}{
		{Version{2, 7, 18, ""}, Legacy2},
		{Version{3, 3, 7, ""}, Family33},
		{Version{3, 5, 9, ""}, Family35},
		{Version{3, 4, 10, ""}, Family35},
		{Version{3, 6, 15, ""}, Family36},
		{Version{3, 7, 0, "rc1"}, Family37},
		{Version{3, 8, 0, "a0"}, Family37},
	}
	for _, c := range cases {
		desc, err := Dispatch(c.v)
		if err != nil {
			t.Fatalf("Dispatch(%s): unexpected error: %v", c.v, err)
		}
		if desc.Family != c.want {
			t.Errorf("Dispatch(%s) family = %s, want %s", c.v, desc.Family, c.want)
		}
	}
}

func TestDispatchUnsupported(t *testing.T) {
	if _, err := Dispatch(Version{Major: 4}); err == nil {
		t.Errorf("Dispatch(4.x): expected error, got none")
	}
}
