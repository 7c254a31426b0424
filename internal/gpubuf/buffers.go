// Package gpubuf owns the GPU-resident buffers the five-phase tick
// pipeline reads and writes, and the compute pipelines that dispatch
// against them. It is the device-facing counterpart to internal/refmodel,
// which reimplements the same phases purely on the CPU for testing.
package gpubuf

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/voxlab/protocell"
	"github.com/voxlab/protocell/internal/sparse"
)

// statsBufferWords is the fixed size of the device-side stats reduction
// target: population, total energy (as two words), max energy, a 12-slot
// species histogram (id+count per slot), and other, followed by three
// reserved words.
const statsBufferWords = 32

// pickStagingBytes is one voxel's worth of pick-readback payload plus 16
// bytes that PickVoxel never writes; the picked grid coordinate is kept
// on the host by the caller, not in this buffer.
const pickStagingBytes = protocell.VoxelSize + 16

// safeBufferSizeLimit mirrors the teacher's warning threshold: buffers
// past this size still get created, but DESIGN.md's tier ladder exists
// specifically to keep real runs well under it.
const safeBufferSizeLimit = 1024 * 1024 * 1024

// GpuBuffers owns every buffer the tick pipeline's compute passes bind.
// The voxel and temperature fields are role-swapped each tick rather than
// copied: Read always holds the state the next dispatch consumes, Write
// always holds the phase's output.
type GpuBuffers struct {
	Device *wgpu.Device

	GridSize int
	Sparse   bool
	MaxVoxels int

	VoxelRead   *wgpu.Buffer
	VoxelWrite  *wgpu.Buffer
	TempRead    *wgpu.Buffer
	TempWrite   *wgpu.Buffer
	IntentBuf   *wgpu.Buffer
	CommandBuf  *wgpu.Buffer
	ParamsBuf   *wgpu.Buffer
	StatsBuf    *wgpu.Buffer
	StatsStage  *wgpu.Buffer
	PickStage   *wgpu.Buffer
	BrickTable  *wgpu.Buffer
}

// NewGpuBuffers allocates every buffer for the given tier. Sparse tiers
// size the voxel pool off the brick-pool's MaxBricks rather than the
// dense GridSize^3, and additionally own a brick table buffer.
func NewGpuBuffers(device *wgpu.Device, tier protocell.Tier, maxBricks int) (*GpuBuffers, error) {
	b := &GpuBuffers{
		Device:   device,
		GridSize: tier.GridSize,
		Sparse:   tier.Sparse,
	}

	if tier.Sparse {
		b.MaxVoxels = maxBricks * sparse.VoxelsPerBrick
	} else {
		b.MaxVoxels = tier.GridSize * tier.GridSize * tier.GridSize
	}

	voxelBytes := uint64(b.MaxVoxels) * protocell.VoxelSize
	tempBytes := uint64(b.MaxVoxels) * 4
	intentBytes := uint64(b.MaxVoxels) * 4

	var err error
	if b.VoxelRead, err = b.create("VoxelRead", voxelBytes, wgpu.BufferUsageStorage); err != nil {
		return nil, err
	}
	if b.VoxelWrite, err = b.create("VoxelWrite", voxelBytes, wgpu.BufferUsageStorage); err != nil {
		return nil, err
	}
	if b.TempRead, err = b.create("TempRead", tempBytes, wgpu.BufferUsageStorage); err != nil {
		return nil, err
	}
	if b.TempWrite, err = b.create("TempWrite", tempBytes, wgpu.BufferUsageStorage); err != nil {
		return nil, err
	}
	if b.IntentBuf, err = b.create("IntentBuf", intentBytes, wgpu.BufferUsageStorage); err != nil {
		return nil, err
	}
	if b.CommandBuf, err = b.create("CommandBuf", uint64(protocell.CommandBufferBytes), wgpu.BufferUsageStorage); err != nil {
		return nil, err
	}
	if b.ParamsBuf, err = b.create("ParamsBuf", uint64(protocell.ParamsSize), wgpu.BufferUsageUniform); err != nil {
		return nil, err
	}
	if b.StatsBuf, err = b.create("StatsBuf", statsBufferWords*4, wgpu.BufferUsageStorage); err != nil {
		return nil, err
	}
	if b.StatsStage, err = b.create("StatsStage", statsBufferWords*4, wgpu.BufferUsageMapRead); err != nil {
		return nil, err
	}
	if b.PickStage, err = b.create("PickStage", pickStagingBytes, wgpu.BufferUsageMapRead); err != nil {
		return nil, err
	}

	if tier.Sparse {
		bricksPerAxis := uint64(tier.GridSize / sparse.BrickEdge)
		tableBytes := bricksPerAxis * bricksPerAxis * bricksPerAxis * 4
		if b.BrickTable, err = b.create("BrickTable", tableBytes, wgpu.BufferUsageStorage); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// create allocates a buffer with CopySrc/CopyDst always added, matching
// the teacher's ensureBuffer convention so every buffer can later be
// resized or staged through without a separate usage migration.
func (b *GpuBuffers) create(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	if size == 0 {
		size = 4
	}
	usage |= wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc
	return b.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            usage,
		MappedAtCreation: false,
	})
}

// UploadParams writes the packed parameter block to the uniform buffer.
func (b *GpuBuffers) UploadParams(p protocell.Params) {
	b.Device.GetQueue().WriteBuffer(b.ParamsBuf, 0, p.Encode())
}

// UploadCommands writes this tick's drained command buffer.
func (b *GpuBuffers) UploadCommands(cmds []protocell.Command) {
	b.Device.GetQueue().WriteBuffer(b.CommandBuf, 0, protocell.EncodeCommandBuffer(cmds))
}

// UploadBrickTable pushes the brick pool's table words to the GPU, only
// when the allocator reports it dirty.
func (b *GpuBuffers) UploadBrickTable(bg *sparse.BrickGrid) {
	if !bg.Dirty {
		return
	}
	words := bg.TableWords()
	bytes := make([]byte, len(words)*4)
	for i, w := range words {
		le := i * 4
		bytes[le], bytes[le+1], bytes[le+2], bytes[le+3] = byte(w), byte(w>>8), byte(w>>16), byte(w>>24)
	}
	b.Device.GetQueue().WriteBuffer(b.BrickTable, 0, bytes)
}

// ClearStats zeroes the device-side stats accumulator before Phase 5
// dispatches; atomics in the shader only ever add to a clean slate.
func (b *GpuBuffers) ClearStats() {
	b.Device.GetQueue().WriteBuffer(b.StatsBuf, 0, make([]byte, statsBufferWords*4))
}

// ClearIntents zeroes the intent buffer before Phase 3 dispatches.
func (b *GpuBuffers) ClearIntents() {
	b.Device.GetQueue().WriteBuffer(b.IntentBuf, 0, make([]byte, b.MaxVoxels*4))
}

// SwapVoxelBuffers exchanges the read/write roles after a tick: what
// Phase 4 wrote becomes next tick's read buffer.
func (b *GpuBuffers) SwapVoxelBuffers() {
	b.VoxelRead, b.VoxelWrite = b.VoxelWrite, b.VoxelRead
}

// SwapTemperatureBuffers exchanges temperature read/write roles after a tick.
func (b *GpuBuffers) SwapTemperatureBuffers() {
	b.TempRead, b.TempWrite = b.TempWrite, b.TempRead
}

// Release frees every owned buffer. Safe to call on a partially
// constructed GpuBuffers (nil fields are skipped).
func (b *GpuBuffers) Release() {
	for _, buf := range []*wgpu.Buffer{
		b.VoxelRead, b.VoxelWrite, b.TempRead, b.TempWrite,
		b.IntentBuf, b.CommandBuf, b.ParamsBuf, b.StatsBuf,
		b.StatsStage, b.PickStage, b.BrickTable,
	} {
		if buf != nil {
			buf.Release()
		}
	}
}
