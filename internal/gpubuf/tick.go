package gpubuf

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/voxlab/protocell"
)

// workgroupEdge is the cube edge of one compute workgroup (4x4x4 = 64
// invocations), dividing evenly into every dense tier in protocell.Tiers.
const workgroupEdge = 4

func dispatchGroups(gridSize int) (x, y, z uint32) {
	n := uint32((gridSize + workgroupEdge - 1) / workgroupEdge)
	return n, n, n
}

// statsPublishInterval is how often, in ticks, the stats buffer is
// copied into its staging buffer for readback.
const statsPublishInterval = 10

// RunTick submits the five compute passes in order, then swaps the
// voxel and temperature read/write roles for the next tick. Commands
// and params must already be uploaded via GpuBuffers.UploadCommands and
// UploadParams before calling this. The stats buffer is copied into its
// staging buffer only every statsPublishInterval ticks, and only when
// statsReadback isn't already mid-cycle: copying into a buffer still
// mapped from a prior readback is invalid, and TryBeginCopy is the only
// thing that can tell a cycle just finished from one still in flight.
func RunTick(device *wgpu.Device, pipelines *Pipelines, buffers *GpuBuffers, statsReadback *ReadbackMachine, tick uint64) error {
	apply, diffuse, declare, resolve, stats, err := pipelines.BindGroups(device, buffers)
	if err != nil {
		return err
	}

	buffers.ClearIntents()
	buffers.ClearStats()

	encoder, err := device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}

	gx, gy, gz := dispatchGroups(buffers.GridSize)

	runPass := func(pipeline *wgpu.ComputePipeline, bg *wgpu.BindGroup) {
		pass := encoder.BeginComputePass(nil)
		pass.SetPipeline(pipeline)
		pass.SetBindGroup(0, bg, nil)
		pass.DispatchWorkgroups(gx, gy, gz)
		pass.End()
	}

	runPass(pipelines.ApplyCommands, apply)
	runPass(pipelines.TemperatureDiffusion, diffuse)
	runPass(pipelines.IntentDeclaration, declare)
	runPass(pipelines.ResolveExecute, resolve)
	runPass(pipelines.StatsReduction, stats)

	if tick%statsPublishInterval == 0 && statsReadback.TryBeginCopy() {
		encoder.CopyBufferToBuffer(buffers.StatsBuf, 0, buffers.StatsStage, 0, buffers.StatsStage.GetSize())
	}

	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	device.GetQueue().Submit(cmdBuf)

	buffers.SwapVoxelBuffers()
	buffers.SwapTemperatureBuffers()
	return nil
}

// UnpackStats decodes the 32-word stats buffer into protocell's host-side
// Stats shape. Mirrors refmodel.ReduceStats's output layout exactly so
// tests can assert GPU and CPU paths agree.
func UnpackStats(words [32]uint32) Stats {
	s := Stats{
		Population:  words[0],
		TotalEnergy: uint64(words[1]) | uint64(words[2])<<32,
		MaxEnergy:   words[3],
	}
	const histogramBase = 4
	for i := 0; i < 12; i++ {
		base := histogramBase + i*2
		s.SpeciesHistogram[i] = SpeciesCount{
			SpeciesID: uint16(words[base]),
			Count:     words[base+1],
		}
	}
	s.Other = words[histogramBase+12*2]
	return s
}

// Stats mirrors refmodel.Stats for the GPU readback path; kept as a
// distinct type so gpubuf has no import-cycle dependency on refmodel.
type Stats struct {
	Population       uint32
	TotalEnergy      uint64
	MaxEnergy        uint32
	SpeciesHistogram [12]SpeciesCount
	Other            uint32
}

// SpeciesCount mirrors refmodel.SpeciesCount.
type SpeciesCount struct {
	SpeciesID uint16
	Count     uint32
}

// PickVoxel issues a one-voxel copy from the current read buffer into
// the pick staging buffer, for readback via pickReadback. index is a
// dense grid index or, for sparse tiers, a resolved pool index. Returns
// issued=false without copying anything if pickReadback is already
// mid-cycle, the same "never copy into a buffer that might still be
// mapped" rule RunTick applies to the stats buffer.
func PickVoxel(device *wgpu.Device, buffers *GpuBuffers, pickReadback *ReadbackMachine, index int) (issued bool, err error) {
	if !pickReadback.TryBeginCopy() {
		return false, nil
	}

	encoder, err := device.CreateCommandEncoder(nil)
	if err != nil {
		return false, err
	}
	offset := uint64(index) * protocell.VoxelSize
	encoder.CopyBufferToBuffer(buffers.VoxelRead, offset, buffers.PickStage, 0, protocell.VoxelSize)
	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		return false, err
	}
	device.GetQueue().Submit(cmdBuf)
	return true, nil
}
