package gpubuf

import (
	"encoding/binary"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// readbackState is the four-state async map/read cycle a GPU buffer
// readback goes through: idle until a copy into the staging buffer is
// issued, copy-issued while that copy is in flight, map-requested once
// MapAsync has been called, then mapped once its callback fires and the
// data is safe to read. The CopyIssued state exists specifically so
// MapAsync is never called against a staging buffer no copy has
// targeted yet, and so a second copy can't land on a buffer still
// mapped from the previous cycle.
type readbackState int

const (
	readbackIdle readbackState = iota
	readbackCopyIssued
	readbackMapRequested
	readbackMapped
)

// ReadbackMachine wraps one staging buffer's async map/unmap cycle. A
// single instance is reused tick over tick rather than remapping on
// every request, mirroring the teacher's HiZMapped boolean-flag idiom
// but generalized to any fixed-size staging buffer (stats or pick).
type ReadbackMachine struct {
	Device *wgpu.Device
	Buffer *wgpu.Buffer

	mu    sync.Mutex
	state readbackState
	data  []byte

	// ReadbackTick counts completed cycles, so a caller holding a
	// snapshot can tell how stale it is without re-deriving it from tick
	// count bookkeeping elsewhere.
	ReadbackTick uint64
}

// NewReadbackMachine wraps buffer, which must already carry MapRead usage.
func NewReadbackMachine(device *wgpu.Device, buffer *wgpu.Buffer) *ReadbackMachine {
	return &ReadbackMachine{Device: device, Buffer: buffer}
}

// TryBeginCopy claims the machine for a new copy-then-map cycle,
// returning false if one is already in flight. The caller must actually
// issue the CopyBufferToBuffer into the staging buffer immediately
// after a true return; Poll won't call MapAsync until it does.
func (r *ReadbackMachine) TryBeginCopy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != readbackIdle {
		return false
	}
	r.state = readbackCopyIssued
	return true
}

// Poll drives the state machine forward by one step: issuing MapAsync
// once a copy has landed, polling the device if a map is in flight, and
// copying the mapped range out (then unmapping) once the callback has
// fired. Call once per frame; Data returns nil until a full cycle
// completes. Idle is a no-op here — nothing maps until TryBeginCopy has
// been called and its copy submitted.
func (r *ReadbackMachine) Poll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case readbackCopyIssued:
		r.state = readbackMapRequested
		r.Buffer.MapAsync(wgpu.MapModeRead, 0, r.Buffer.GetSize(), func(status wgpu.BufferMapAsyncStatus) {
			r.mu.Lock()
			defer r.mu.Unlock()
			if status == wgpu.BufferMapAsyncStatusSuccess {
				r.state = readbackMapped
			} else {
				r.state = readbackIdle
			}
		})

	case readbackMapRequested:
		r.Device.Poll(false, nil)

	case readbackMapped:
		size := r.Buffer.GetSize()
		mapped := r.Buffer.GetMappedRange(0, uint(size))
		r.data = append(r.data[:0], mapped...)
		r.Buffer.Unmap()
		r.state = readbackIdle
		r.ReadbackTick++
	}
}

// Data returns the most recently completed readback, or nil if no cycle
// has completed yet. The returned slice is owned by the caller; the next
// completed cycle allocates a fresh one rather than mutating it in place.
func (r *ReadbackMachine) Data() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data == nil {
		return nil
	}
	out := make([]byte, len(r.data))
	copy(out, r.data)
	return out
}

// StatsWords decodes the last completed stats readback into the 32-word
// layout UnpackStats expects, or ok=false if no cycle has completed yet.
func (r *ReadbackMachine) StatsWords() (words [32]uint32, ok bool) {
	data := r.Data()
	if len(data) < 32*4 {
		return words, false
	}
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4 : i*4+4])
	}
	return words, true
}
