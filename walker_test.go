// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remoteprof

import (
	"encoding/binary"
	"sort"
	"testing"

	"remoteprof/arch"
	"remoteprof/binfmt"
	"remoteprof/core"
	"remoteprof/layout"
	"remoteprof/remote"
)

// fakeProcess builds a small, hand-laid-out "3.6"-family memory image:
// one InterpreterState with two threads, one idle and one running three
// nested frames, matching the seed scenario described for the walker.
type fakeProcess struct {
	mem map[core.Address][]byte
}

func newFakeProcess() *fakeProcess {
	return &fakeProcess{mem: map[core.Address][]byte{}}
}

func (p *fakeProcess) putPointer(addr core.Address, v core.Address) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))
	p.mem[addr] = buf
}

func (p *fakeProcess) putInt(addr core.Address, v int64) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(v))
	p.mem[addr] = buf
}

// putString writes a length-prefixed string the way layout.Reader.CString
// expects to read one back: a platform-int-sized length (4 bytes on
// amd64), then that many bytes of character data immediately after.
func (p *fakeProcess) putString(addr core.Address, s string) {
	// read serves only reads that start at a stored address, so the
	// length and the character data are stored as two entries.
	p.putInt(addr, int64(len(s)))
	p.mem[addr.Add(4)] = []byte(s)
}

func (p *fakeProcess) putBytes(addr core.Address, b []byte) {
	p.mem[addr] = append([]byte(nil), b...)
}

func (p *fakeProcess) read(addr core.Address, n int) ([]byte, error) {
	buf, ok := p.mem[addr]
	if !ok || len(buf) < n {
		return nil, &remote.ErrReadFailed{Kind: remote.InvalidAddress, Addr: uint64(addr), Len: n}
	}
	return buf[:n], nil
}

const (
	interpAddr  = core.Address(0x1000)
	idleThread  = core.Address(0x2000)
	runThread   = core.Address(0x2100)
	frameOuter  = core.Address(0x3200)
	frameMiddle = core.Address(0x3100)
	frameInner  = core.Address(0x3000)
	codeOuter   = core.Address(0x4000)
	codeMiddle  = core.Address(0x4400)
	codeInner   = core.Address(0x4800)
)

func buildFamily36Fixture() (*fakeProcess, layout.Descriptors) {
	desc, err := layout.Dispatch(layout.Version{Major: 3, Minor: 6, Patch: 9})
	if err != nil {
		panic(err)
	}

	p := newFakeProcess()

	// InterpreterState: head -> idle thread (first in chain).
	p.putPointer(interpAddr.Add(desc.Interp.HeadOffset), idleThread)

	// Idle thread: back-ref to interpreter, next -> running thread, no frame.
	p.putPointer(idleThread.Add(desc.Thread.InterpOffset), interpAddr)
	p.putPointer(idleThread.Add(desc.Thread.NextOffset), runThread)
	p.putPointer(idleThread.Add(desc.Thread.FrameOffset), 0)
	p.putPointer(idleThread.Add(desc.Thread.ThreadIDOffset), 111)

	// Running thread: back-ref, end of chain, top frame is the innermost.
	p.putPointer(runThread.Add(desc.Thread.InterpOffset), interpAddr)
	p.putPointer(runThread.Add(desc.Thread.NextOffset), 0)
	p.putPointer(runThread.Add(desc.Thread.FrameOffset), frameInner)
	p.putPointer(runThread.Add(desc.Thread.ThreadIDOffset), 222)

	buildFrame(p, desc, frameOuter, 0, codeOuter, 2)
	buildFrame(p, desc, frameMiddle, frameOuter, codeMiddle, 4)
	buildFrame(p, desc, frameInner, frameMiddle, codeInner, 6)

	buildCode(p, desc, codeOuter, "/opt/py/lib/runtime3.6/site-packages/app/main.py", "<module>", 1, []byte{6, 1})
	buildCode(p, desc, codeMiddle, "/opt/py/lib/runtime3.6/site-packages/app/main.py", "run", 10, []byte{4, 2})
	buildCode(p, desc, codeInner, "/opt/py/lib/runtime3.6/site-packages/app/worker.py", "step", 20, []byte{2, 3})

	return p, desc
}

func buildFrame(p *fakeProcess, desc layout.Descriptors, addr core.Address, back core.Address, code core.Address, lastInstr int64) {
	p.putPointer(addr.Add(desc.Frame.BackOffset), back)
	p.putPointer(addr.Add(desc.Frame.CodeOffset), code)
	p.putInt(addr.Add(desc.Frame.LastInstrOffset), lastInstr)
}

func buildCode(p *fakeProcess, desc layout.Descriptors, addr core.Address, filename, name string, firstLine int64, lineTable []byte) {
	filenameAddr := addr.Add(0x1000)
	nameAddr := addr.Add(0x1100)
	lineTableAddr := addr.Add(0x1200)

	p.putString(filenameAddr, filename)
	p.putString(nameAddr, name)
	p.putPointer(addr.Add(desc.Code.FilenameOffset), filenameAddr)
	p.putPointer(addr.Add(desc.Code.NameOffset), nameAddr)
	p.putInt(addr.Add(desc.Code.FirstLineOffset), firstLine)
	p.putPointer(addr.Add(desc.Code.LineTableAddrOffset), lineTableAddr)
	p.putInt(addr.Add(desc.Code.LineTableSizeOffset), int64(len(lineTable)))
	p.putBytes(lineTableAddr, lineTable)
}

func TestSampleFromRootTwoThreads(t *testing.T) {
	p, desc := buildFamily36Fixture()
	handle := remote.NewFake(4242, p.read, func() ([]core.MemoryRegion, error) { return nil, nil })
	r := &layout.Reader{H: handle, A: &arch.AMD64}

	traces, err := sampleFromRoot(r, interpAddr, desc)
	if err != nil {
		t.Fatalf("sampleFromRoot: %v", err)
	}
	if len(traces) != 2 {
		t.Fatalf("got %d traces, want 2", len(traces))
	}

	byThread := map[int64]StackTrace{}
	for _, tr := range traces {
		byThread[tr.ThreadID] = tr
	}

	idle, ok := byThread[111]
	if !ok {
		t.Fatal("missing trace for idle thread 111")
	}
	if len(idle.Frames) != 0 {
		t.Errorf("idle thread has %d frames, want 0", len(idle.Frames))
	}

	running, ok := byThread[222]
	if !ok {
		t.Fatal("missing trace for running thread 222")
	}
	if len(running.Frames) != 3 {
		t.Fatalf("running thread has %d frames, want 3", len(running.Frames))
	}

	// frames[0] is the outermost (module-level) frame, frames[last] the
	// currently executing one.
	if running.Frames[0].Function != "<module>" {
		t.Errorf("frames[0].Function = %q, want <module>", running.Frames[0].Function)
	}
	if running.Frames[len(running.Frames)-1].Function != "step" {
		t.Errorf("frames[last].Function = %q, want step", running.Frames[len(running.Frames)-1].Function)
	}
	if running.Frames[0].Line != 1 {
		t.Errorf("frames[0].Line = %d, want 1", running.Frames[0].Line)
	}
}

func TestAttributeGILExactlyOneHolder(t *testing.T) {
	p, desc := buildFamily36Fixture()
	const currentThreadStateSym = core.Address(0x1800)
	p.putPointer(currentThreadStateSym, runThread)

	handle := remote.NewFake(4242, p.read, func() ([]core.MemoryRegion, error) { return nil, nil })
	r := &layout.Reader{H: handle, A: &arch.AMD64}

	traces, err := sampleFromRoot(r, interpAddr, desc)
	if err != nil {
		t.Fatalf("sampleFromRoot: %v", err)
	}

	info := &ProcessInfo{
		MainBinary: &binfmt.Info{Symbols: map[string]core.Address{"current_thread_state": currentThreadStateSym}},
	}
	attributeGIL(r, info, desc, traces)

	owners := 0
	for _, tr := range traces {
		if tr.OwnsGIL {
			owners++
			if tr.ThreadID != 222 {
				t.Errorf("GIL attributed to thread %d, want 222", tr.ThreadID)
			}
		}
	}
	if owners != 1 {
		t.Errorf("got %d GIL owners, want exactly 1", owners)
	}
}

func TestShortenFilenameIsSuffix(t *testing.T) {
	cases := []struct {
		filename, install, tag string
	}{
		{"/opt/py/lib/runtime3.7/site-packages/requests/api.py", "/opt/py", "runtime3.7"},
		{"/opt/py/lib/runtime3.7/os.py", "/opt/py", "runtime3.7"},
		{"/usr/local/app.py", "/opt/py", "runtime3.7"},
		{"relative.py", "", ""},
	}
	for _, c := range cases {
		got := shortenFilename(c.filename, c.install, c.tag)
		if !hasSuffix(c.filename, got) {
			t.Errorf("shortenFilename(%q) = %q, not a suffix", c.filename, got)
		}
	}
}

func TestShortenFilenameExample(t *testing.T) {
	got := shortenFilename("/opt/py/lib/runtime3.7/site-packages/requests/api.py", "/opt/py", "runtime3.7")
	if want := "requests/api.py"; got != want {
		t.Errorf("shortenFilename = %q, want %q", got, want)
	}
}

func hasSuffix(full, suffix string) bool {
	return len(full) >= len(suffix) && full[len(full)-len(suffix):] == suffix
}

func TestRegionSetSortedForScan(t *testing.T) {
	regions := []core.MemoryRegion{
		{Min: 0x3000, Max: 0x4000},
		{Min: 0x1000, Max: 0x2000},
	}
	rs := core.NewRegionSet(regions)
	all := rs.All()
	if !sort.SliceIsSorted(all, func(i, j int) bool { return all[i].Min < all[j].Min }) {
		t.Error("RegionSet.All() not sorted by Min")
	}
}
