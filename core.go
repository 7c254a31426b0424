package protocell

import (
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/voxlab/protocell/internal/gpubuf"
	"github.com/voxlab/protocell/internal/refmodel"
	"github.com/voxlab/protocell/internal/sparse"
	"github.com/voxlab/protocell/seed"
)

// sparseMaxBricks bounds the sparse tier's pool to sparsePoolBudgetBytes
// worth of voxel storage, matching the budget DetectTier already checks
// when deciding whether the sparse tier fits at all.
func sparseMaxBricks() int {
	perBrickBytes := uint64(sparse.VoxelsPerBrick) * VoxelSize
	return int(sparsePoolBudgetBytes / perBrickBytes)
}

// CoreSnapshot is a read-only copy of the simulation's externally
// visible state, safe to pass to a renderer or CLI without exposing any
// GPU handle.
type CoreSnapshot struct {
	GridSize   int
	Sparse     bool
	TickCount  uint64
	Paused     bool
	Stats      gpubuf.Stats
	StatsTick  uint64
	LastPreset seed.Name
}

// Core owns the simulation engine end to end: GPU device acquisition,
// the packed buffers and compute pipelines the tick pipeline dispatches
// against, the host-side tick scheduler, and the async readback state
// machines a renderer or CLI polls for published results. It mirrors
// the teacher's App struct shape (owned fields, explicit Init/Frame
// methods, no package-level mutable state) but owns no window or
// surface: this package is a pure compute core.
type Core struct {
	logger Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device

	tier      Tier
	buffers   *gpubuf.GpuBuffers
	pipelines *gpubuf.Pipelines
	bricks    *sparse.BrickGrid

	statsReadback *gpubuf.ReadbackMachine
	pickReadback  *gpubuf.ReadbackMachine
	lastStats     gpubuf.Stats
	lastPickCoord [3]int

	timing *FrameTiming
	bridge *HostBridge
	params Params

	lastPreset seed.Name
}

// NewCore returns a Core with no device acquired yet; call Init before
// Frame. logger may be nil, in which case a DefaultLogger is installed.
func NewCore(logger Logger) *Core {
	if logger == nil {
		logger = NewDefaultLogger("protocell", false)
	}
	return &Core{
		logger: logger,
		timing: NewFrameTiming(30),
		bridge: NewHostBridge(),
	}
}

// Logger returns the core's logger. Never nil.
func (c *Core) Logger() Logger { return c.logger }

// HostBridge returns the core's host input/command bridge, for a
// renderer or CLI to queue paint commands and tool changes through.
func (c *Core) HostBridge() *HostBridge { return c.bridge }

// FrameTiming returns the core's tick scheduler, for a renderer to
// drive pause/single-step/tick-rate controls through.
func (c *Core) FrameTiming() *FrameTiming { return c.timing }

// Init acquires a GPU adapter/device, detects the tier to run at,
// allocates the tick pipeline's buffers, and seeds the initial grid
// state from presetName. It is the only place Core does fallible setup;
// everything it returns wraps the underlying wgpu error.
func (c *Core) Init(presetName seed.Name) error {
	return c.init(presetName, nil)
}

// InitAtGridSize is Init, except the tier is forced to the dense tier
// matching gridSize instead of autodetected from the adapter. A
// config-driven grid size override that doesn't land on a ladder entry
// falls back to autodetection rather than erroring.
func (c *Core) InitAtGridSize(presetName seed.Name, gridSize int) error {
	if t, ok := TierForGridSize(gridSize); ok {
		return c.init(presetName, &t)
	}
	return c.init(presetName, nil)
}

func (c *Core) init(presetName seed.Name, forced *Tier) error {
	c.instance = wgpu.CreateInstance(nil)

	adapter, err := c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	c.adapter = adapter

	c.device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}

	var tier Tier
	if forced != nil {
		tier = *forced
	} else {
		tier = DetectTier(adapter)
	}

	if err := c.allocateAtTier(tier); err != nil {
		return err
	}

	c.params = DefaultParams(uint32(c.tier.GridSize))
	c.seedInitialState(presetName)
	return nil
}

// allocateAtTier tries to build GPU buffers and pipelines at t, stepping
// down the tier ladder on allocation failure until one fits or the
// ladder is exhausted.
func (c *Core) allocateAtTier(t Tier) error {
	for {
		maxBricks := 0
		if t.Sparse {
			maxBricks = sparseMaxBricks()
		}

		buffers, err := gpubuf.NewGpuBuffers(c.device, t, maxBricks)
		if err != nil {
			c.logger.Warnf("buffer allocation failed at tier %s: %v", DescribeTier(t), err)
			next := StepDown(t)
			if next == t {
				return fmt.Errorf("allocate buffers: %w", err)
			}
			t = next
			continue
		}

		pipelines, err := gpubuf.NewPipelines(c.device, t.Sparse)
		if err != nil {
			buffers.Release()
			return fmt.Errorf("build pipelines: %w", err)
		}

		c.tier = t
		c.buffers = buffers
		c.pipelines = pipelines
		if t.Sparse {
			c.bricks = sparse.NewBrickGrid(t.GridSize, maxBricks)
		}
		c.statsReadback = gpubuf.NewReadbackMachine(c.device, buffers.StatsStage)
		c.pickReadback = gpubuf.NewReadbackMachine(c.device, buffers.PickStage)
		c.logger.Infof("running at tier %s", DescribeTier(t))
		return nil
	}
}

// seedInitialState builds a CPU-side reference grid, applies the named
// preset to it, and uploads the packed result as the tick pipeline's
// first read buffer. Sparse tiers route the upload through the brick
// table instead of a dense grid-ordered write, allocating a pool slot
// for every brick a non-empty voxel falls in.
func (c *Core) seedInitialState(presetName Name) {
	grid := refmodel.NewGrid(c.tier.GridSize, c.params.BaseAmbientTemp)
	if presetName, ok := seed.ParseName(string(presetName)); ok {
		seed.Apply(presetName, grid, c.params)
		c.lastPreset = presetName
	}

	if c.tier.Sparse {
		c.seedSparseState(grid)
		return
	}

	voxelBytes := make([]byte, len(grid.Voxels)*VoxelSize)
	for i, v := range grid.Voxels {
		packed := v.Pack()
		copy(voxelBytes[i*VoxelSize:], packed[:])
	}
	c.device.GetQueue().WriteBuffer(c.buffers.VoxelRead, 0, voxelBytes)

	tempBytes := make([]byte, len(grid.Temperature)*4)
	for i, t := range grid.Temperature {
		bits := math.Float32bits(t)
		le := i * 4
		tempBytes[le], tempBytes[le+1], tempBytes[le+2], tempBytes[le+3] = byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24)
	}
	c.device.GetQueue().WriteBuffer(c.buffers.TempRead, 0, tempBytes)
}

// seedSparseState replaces the brick table with a fresh one and walks
// grid for every non-Empty voxel, allocating its containing brick on
// first touch and writing the voxel and its temperature reading at the
// resulting pool slot. A voxel that can't get a brick because the pool
// budget is exhausted is dropped, matching EnsureBrick's own "caller
// drops the write" contract; a preset authored for a dense tier can
// touch more bricks than a sparse pool budgets for.
func (c *Core) seedSparseState(grid *refmodel.Grid) {
	maxBricks := sparseMaxBricks()
	c.bricks = sparse.NewBrickGrid(c.tier.GridSize, maxBricks)

	g := c.tier.GridSize
	voxelBytes := make([]byte, c.buffers.MaxVoxels*VoxelSize)
	tempBytes := make([]byte, c.buffers.MaxVoxels*4)
	dropped := 0

	for z := 0; z < g; z++ {
		for y := 0; y < g; y++ {
			for x := 0; x < g; x++ {
				idx := GridIndex(x, y, z, g)
				v := grid.Voxels[idx]
				if v.Type == TypeEmpty {
					continue
				}
				if _, ok := c.bricks.EnsureBrick(x/sparse.BrickEdge, y/sparse.BrickEdge, z/sparse.BrickEdge); !ok {
					dropped++
					continue
				}
				poolIdx, _ := c.bricks.VoxelPoolIndex(x, y, z)
				packed := v.Pack()
				copy(voxelBytes[int(poolIdx)*VoxelSize:], packed[:])

				bits := math.Float32bits(grid.Temperature[idx])
				le := int(poolIdx) * 4
				tempBytes[le], tempBytes[le+1], tempBytes[le+2], tempBytes[le+3] = byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24)
			}
		}
	}
	if dropped > 0 {
		c.logger.Warnf("sparse seed: dropped %d voxels, brick pool budget exhausted", dropped)
	}

	c.device.GetQueue().WriteBuffer(c.buffers.VoxelRead, 0, voxelBytes)
	c.device.GetQueue().WriteBuffer(c.buffers.TempRead, 0, tempBytes)
	c.buffers.UploadBrickTable(c.bricks)
}

// Name is an alias so headless callers can pass a preset by its string
// name, without importing the seed package directly.
type Name = seed.Name

// LoadPreset re-seeds the grid with a named preset, discarding current
// simulation state. Unknown names are a no-op, matching the rest of
// this package's "never error on a bad parameter edit" convention.
func (c *Core) LoadPreset(name Name) {
	if _, ok := seed.ParseName(string(name)); !ok {
		return
	}
	c.seedInitialState(name)
}

// Frame advances the simulation by dt seconds of wall time, running
// however many ticks FrameTiming.TicksDue says are due, draining the
// host bridge's command queue once before the first tick in the batch.
func (c *Core) Frame(dt float64) error {
	ticks := c.timing.TicksDue(dt)
	if ticks == 0 {
		c.pollReadbacks()
		return nil
	}

	cmds := c.bridge.Drain()
	for i := 0; i < ticks; i++ {
		if i == 0 && len(cmds) > 0 {
			c.buffers.UploadCommands(cmds)
		} else {
			c.buffers.UploadCommands(nil)
		}
		c.params.TickCount++
		c.buffers.UploadParams(c.params)

		if c.bricks != nil {
			if c.params.TickCount%sparse.BorderAllocationInterval == 0 {
				c.bricks.PreallocateBorders()
			}
			c.buffers.UploadBrickTable(c.bricks)
		}

		if err := gpubuf.RunTick(c.device, c.pipelines, c.buffers, c.statsReadback, c.params.TickCount); err != nil {
			c.logger.Warnf("tick %d failed: %v", c.params.TickCount, err)
			return nil
		}
	}

	c.pollReadbacks()
	return nil
}

func (c *Core) pollReadbacks() {
	c.statsReadback.Poll()
	if words, ok := c.statsReadback.StatsWords(); ok {
		c.lastStats = gpubuf.UnpackStats(words)
	}
	c.pickReadback.Poll()
}

// SetParam forwards a named parameter edit to the uniform block that
// gets re-uploaded at the start of the next tick.
func (c *Core) SetParam(name string, value float32) {
	c.params.SetParam(name, value)
}

// Snapshot copies out the simulation's externally visible state.
func (c *Core) Snapshot() CoreSnapshot {
	return CoreSnapshot{
		GridSize:   c.tier.GridSize,
		Sparse:     c.tier.Sparse,
		TickCount:  c.params.TickCount,
		Paused:     c.timing.Paused,
		Stats:      c.lastStats,
		StatsTick:  c.statsReadback.ReadbackTick,
		LastPreset: c.lastPreset,
	}
}

// Close releases the GPU buffers the core owns. Safe to call once;
// calling it twice double-releases them, matching wgpu's own
// single-release contract. The device, adapter, and instance are left
// to the process teardown, matching the teacher's own manager shutdown
// path, which releases individual buffers and textures but never calls
// back up to Device itself.
func (c *Core) Close() {
	if c.buffers != nil {
		c.buffers.Release()
	}
}
