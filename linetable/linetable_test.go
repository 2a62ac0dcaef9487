// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linetable

import (
	"testing"

	"remoteprof/layout"
)

func TestCurrentLineUnsigned(t *testing.T) {
	// Bytecode offset 0 is line 10; +6 bytecode reaches line 11; +4 more
	// (offset 10) reaches line 13.
	table := []byte{6, 1, 4, 2}
	cases := []struct {
		lastInstr int64
		want      int64
	}{
		{0, 10},
		{5, 10},
		{6, 11},
		{9, 11},
		{10, 13},
		{100, 13},
	}
	for _, c := range cases {
		got := CurrentLine(table, 10, c.lastInstr, layout.LineFormatUnsigned)
		if got != c.want {
			t.Errorf("CurrentLine(lastInstr=%d) = %d, want %d", c.lastInstr, got, c.want)
		}
	}
}

func TestCurrentLineSignedWithContinuation(t *testing.T) {
	// A line_delta of -128 (0x80) means "no line change yet, keep
	// accumulating bytecode offset".
	table := []byte{4, 0x80, 2, 5}
	got := CurrentLine(table, 1, 10, layout.LineFormatSigned)
	if want := int64(6); got != want {
		t.Errorf("CurrentLine = %d, want %d", got, want)
	}
}

func TestCurrentLineSignedNegativeDelta(t *testing.T) {
	table := []byte{4, 3, 4, 0xfe} // 0xfe as int8 is -2
	got := CurrentLine(table, 10, 100, layout.LineFormatSigned)
	if want := int64(11); got != want {
		t.Errorf("CurrentLine = %d, want %d", got, want)
	}
}
