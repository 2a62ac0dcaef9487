// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linetable decodes a compiled function's packed
// bytecode-offset-to-source-line table, the encoding every layout
// family's CodeObject.LineTable exposes as a raw byte slice.
package linetable

import "remoteprof/layout"

// CurrentLine walks table, a sequence of (bytecode_delta, line_delta)
// byte pairs applied cumulatively starting from firstLine, until the
// cumulative bytecode offset exceeds lastInstruction. It returns the
// line in effect at that point.
//
// Two encodings are in use across versions (see layout.LineTableFormat):
// in the unsigned encoding every delta is a plain byte; in the signed
// encoding a line_delta of -128 marks a multi-byte continuation and
// line deltas are interpreted as signed twos-complement bytes. Both
// walk the same bytecode-delta axis.
func CurrentLine(table []byte, firstLine int64, lastInstruction int64, format layout.LineTableFormat) int64 {
	switch format {
	case layout.LineFormatSigned:
		return currentLineSigned(table, firstLine, lastInstruction)
	default:
		return currentLineUnsigned(table, firstLine, lastInstruction)
	}
}

func currentLineUnsigned(table []byte, firstLine, lastInstruction int64) int64 {
	line := firstLine
	bytecodeOffset := int64(0)
	for i := 0; i+1 < len(table); i += 2 {
		bytecodeDelta := int64(table[i])
		lineDelta := int64(table[i+1])
		if bytecodeOffset+bytecodeDelta > lastInstruction {
			break
		}
		bytecodeOffset += bytecodeDelta
		line += lineDelta
	}
	return line
}

// currentLineSigned implements the newer encoding where a line delta of
// -128 (byte value 0x80) advances the bytecode offset without changing
// the line, and ordinary line deltas are signed.
func currentLineSigned(table []byte, firstLine, lastInstruction int64) int64 {
	line := firstLine
	bytecodeOffset := int64(0)
	for i := 0; i+1 < len(table); i += 2 {
		bytecodeDelta := int64(table[i])
		lineDelta := int64(int8(table[i+1]))
		if bytecodeOffset+bytecodeDelta > lastInstruction {
			break
		}
		bytecodeOffset += bytecodeDelta
		if lineDelta == -128 {
			continue
		}
		line += lineDelta
	}
	return line
}
