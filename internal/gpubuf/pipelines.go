package gpubuf

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/voxlab/protocell/internal/shaders"
)

// Pipelines holds the five compute pipelines that make up one tick, each
// with its own bind group layout. Binding numbers are fixed across all
// five so a given buffer always lands on the same slot regardless of
// which phase is bound: 0 voxel-read, 1 voxel-write, 2 params uniform,
// 3 temperature-read, 4 temperature-write, 5 intent, 6 command buffer,
// 7 stats, 10 brick table (sparse tiers only).
type Pipelines struct {
	ApplyCommands       *wgpu.ComputePipeline
	TemperatureDiffusion *wgpu.ComputePipeline
	IntentDeclaration   *wgpu.ComputePipeline
	ResolveExecute      *wgpu.ComputePipeline
	StatsReduction      *wgpu.ComputePipeline

	applyCommandsLayout *wgpu.BindGroupLayout
	diffusionLayout     *wgpu.BindGroupLayout
	intentLayout        *wgpu.BindGroupLayout
	resolveLayout       *wgpu.BindGroupLayout
	statsLayout         *wgpu.BindGroupLayout
}

const (
	bindingVoxelRead  = 0
	bindingVoxelWrite = 1
	bindingParams     = 2
	bindingTempRead   = 3
	bindingTempWrite  = 4
	bindingIntent     = 5
	bindingCommands   = 6
	bindingStats      = 7
	bindingBrickTable = 10
)

func storageEntry(binding uint32, readOnly bool) wgpu.BindGroupLayoutEntry {
	t := wgpu.BufferBindingTypeStorage
	if readOnly {
		t = wgpu.BufferBindingTypeReadOnlyStorage
	}
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageCompute,
		Buffer:     wgpu.BufferBindingLayout{Type: t},
	}
}

func uniformEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageCompute,
		Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
	}
}

func newShaderModule(device *wgpu.Device, label, code string) (*wgpu.ShaderModule, error) {
	return device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
}

func buildPipeline(device *wgpu.Device, label string, code string, entries []wgpu.BindGroupLayoutEntry) (*wgpu.ComputePipeline, *wgpu.BindGroupLayout, error) {
	module, err := newShaderModule(device, label, code)
	if err != nil {
		return nil, nil, err
	}

	bgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   label + " BGL",
		Entries: entries,
	})
	if err != nil {
		return nil, nil, err
	}

	layout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		return nil, nil, err
	}

	pipeline, err := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  label,
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return nil, nil, err
	}
	return pipeline, bgl, nil
}

// NewPipelines compiles and binds all five phases. sparseTier swaps in
// each phase's brick-table-addressed shader body and adds the brick
// table binding to every layout, so a sparse pool's voxel/temperature/
// intent buffers (sized off the pool, not grid_size^3) are addressed
// correctly regardless of which phase is running.
func NewPipelines(device *wgpu.Device, sparseTier bool) (*Pipelines, error) {
	p := &Pipelines{}
	var err error

	applyCommandsWGSL := shaders.ApplyCommandsWGSL
	diffusionWGSL := shaders.TemperatureDiffusionWGSL
	intentWGSL := shaders.IntentDeclarationWGSL
	resolveWGSL := shaders.ResolveExecuteWGSL
	statsWGSL := shaders.StatsReductionWGSL
	if sparseTier {
		applyCommandsWGSL = shaders.ApplyCommandsSparseWGSL
		diffusionWGSL = shaders.TemperatureDiffusionSparseWGSL
		intentWGSL = shaders.IntentDeclarationSparseWGSL
		resolveWGSL = shaders.ResolveExecuteSparseWGSL
		statsWGSL = shaders.StatsReductionSparseWGSL
	}

	applyEntries := []wgpu.BindGroupLayoutEntry{
		storageEntry(bindingVoxelRead, false),
		storageEntry(bindingCommands, true),
		uniformEntry(bindingParams),
	}
	if sparseTier {
		applyEntries = append(applyEntries, storageEntry(bindingBrickTable, true))
	}
	p.ApplyCommands, p.applyCommandsLayout, err = buildPipeline(device, "ApplyCommands", applyCommandsWGSL, applyEntries)
	if err != nil {
		return nil, err
	}

	diffusionEntries := []wgpu.BindGroupLayoutEntry{
		storageEntry(bindingVoxelRead, true),
		storageEntry(bindingTempRead, true),
		storageEntry(bindingTempWrite, false),
		uniformEntry(bindingParams),
	}
	if sparseTier {
		diffusionEntries = append(diffusionEntries, storageEntry(bindingBrickTable, true))
	}
	p.TemperatureDiffusion, p.diffusionLayout, err = buildPipeline(device, "TemperatureDiffusion", diffusionWGSL, diffusionEntries)
	if err != nil {
		return nil, err
	}

	declEntries := []wgpu.BindGroupLayoutEntry{
		storageEntry(bindingVoxelRead, true),
		storageEntry(bindingIntent, false),
		uniformEntry(bindingParams),
		storageEntry(bindingTempRead, true),
	}
	if sparseTier {
		declEntries = append(declEntries, storageEntry(bindingBrickTable, true))
	}
	p.IntentDeclaration, p.intentLayout, err = buildPipeline(device, "IntentDeclaration", intentWGSL, declEntries)
	if err != nil {
		return nil, err
	}

	resolveEntries := []wgpu.BindGroupLayoutEntry{
		storageEntry(bindingVoxelRead, true),
		storageEntry(bindingVoxelWrite, false),
		storageEntry(bindingTempWrite, true),
		storageEntry(bindingIntent, true),
		uniformEntry(bindingParams),
	}
	if sparseTier {
		resolveEntries = append(resolveEntries, storageEntry(bindingBrickTable, true))
	}
	p.ResolveExecute, p.resolveLayout, err = buildPipeline(device, "ResolveExecute", resolveWGSL, resolveEntries)
	if err != nil {
		return nil, err
	}

	statsEntries := []wgpu.BindGroupLayoutEntry{
		// bindingVoxelRead's numeral (0), not bindingVoxelWrite's: Phase 5's
		// shader source declares its sole voxel buffer at binding 0 even
		// though the buffer handed in is b.VoxelWrite (this phase's own
		// input is whatever Phase 4 just produced).
		storageEntry(bindingVoxelRead, true),
		storageEntry(bindingStats, false),
		uniformEntry(bindingParams),
	}
	if sparseTier {
		statsEntries = append(statsEntries, storageEntry(bindingBrickTable, true))
	}
	p.StatsReduction, p.statsLayout, err = buildPipeline(device, "StatsReduction", statsWGSL, statsEntries)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// BindGroups materializes the five bind groups for one tick's buffer set.
// Called every tick rather than cached, since VoxelRead/Write and
// TempRead/Write swap roles each tick.
func (p *Pipelines) BindGroups(device *wgpu.Device, b *GpuBuffers) (apply, diffuse, declare, resolve, stats *wgpu.BindGroup, err error) {
	applyEntries := []wgpu.BindGroupEntry{
		{Binding: bindingVoxelRead, Buffer: b.VoxelRead, Size: wgpu.WholeSize},
		{Binding: bindingCommands, Buffer: b.CommandBuf, Size: wgpu.WholeSize},
		{Binding: bindingParams, Buffer: b.ParamsBuf, Size: wgpu.WholeSize},
	}
	if b.Sparse {
		applyEntries = append(applyEntries, wgpu.BindGroupEntry{Binding: bindingBrickTable, Buffer: b.BrickTable, Size: wgpu.WholeSize})
	}
	apply, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{Label: "ApplyCommands BG", Layout: p.applyCommandsLayout, Entries: applyEntries})
	if err != nil {
		return
	}

	diffuseEntries := []wgpu.BindGroupEntry{
		{Binding: bindingVoxelRead, Buffer: b.VoxelRead, Size: wgpu.WholeSize},
		{Binding: bindingTempRead, Buffer: b.TempRead, Size: wgpu.WholeSize},
		{Binding: bindingTempWrite, Buffer: b.TempWrite, Size: wgpu.WholeSize},
		{Binding: bindingParams, Buffer: b.ParamsBuf, Size: wgpu.WholeSize},
	}
	if b.Sparse {
		diffuseEntries = append(diffuseEntries, wgpu.BindGroupEntry{Binding: bindingBrickTable, Buffer: b.BrickTable, Size: wgpu.WholeSize})
	}
	diffuse, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{Label: "TemperatureDiffusion BG", Layout: p.diffusionLayout, Entries: diffuseEntries})
	if err != nil {
		return
	}

	declareEntries := []wgpu.BindGroupEntry{
		{Binding: bindingVoxelRead, Buffer: b.VoxelRead, Size: wgpu.WholeSize},
		{Binding: bindingIntent, Buffer: b.IntentBuf, Size: wgpu.WholeSize},
		{Binding: bindingParams, Buffer: b.ParamsBuf, Size: wgpu.WholeSize},
		// TempWrite, not TempRead: by the time intent declaration runs,
		// diffusion has already produced this tick's temperature there,
		// the same buffer ResolveExecute reads as "current" afterward.
		{Binding: bindingTempRead, Buffer: b.TempWrite, Size: wgpu.WholeSize},
	}
	if b.Sparse {
		declareEntries = append(declareEntries, wgpu.BindGroupEntry{Binding: bindingBrickTable, Buffer: b.BrickTable, Size: wgpu.WholeSize})
	}
	declare, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{Label: "IntentDeclaration BG", Layout: p.intentLayout, Entries: declareEntries})
	if err != nil {
		return
	}

	resolveEntries := []wgpu.BindGroupEntry{
		{Binding: bindingVoxelRead, Buffer: b.VoxelRead, Size: wgpu.WholeSize},
		{Binding: bindingVoxelWrite, Buffer: b.VoxelWrite, Size: wgpu.WholeSize},
		{Binding: bindingTempWrite, Buffer: b.TempWrite, Size: wgpu.WholeSize},
		{Binding: bindingIntent, Buffer: b.IntentBuf, Size: wgpu.WholeSize},
		{Binding: bindingParams, Buffer: b.ParamsBuf, Size: wgpu.WholeSize},
	}
	if b.Sparse {
		resolveEntries = append(resolveEntries, wgpu.BindGroupEntry{Binding: bindingBrickTable, Buffer: b.BrickTable, Size: wgpu.WholeSize})
	}
	resolve, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{Label: "ResolveExecute BG", Layout: p.resolveLayout, Entries: resolveEntries})
	if err != nil {
		return
	}

	statsEntries := []wgpu.BindGroupEntry{
		// bindingVoxelRead's numeral, matching the shader's literal
		// binding(0) declaration; see the matching comment in NewPipelines.
		{Binding: bindingVoxelRead, Buffer: b.VoxelWrite, Size: wgpu.WholeSize},
		{Binding: bindingStats, Buffer: b.StatsBuf, Size: wgpu.WholeSize},
		{Binding: bindingParams, Buffer: b.ParamsBuf, Size: wgpu.WholeSize},
	}
	if b.Sparse {
		statsEntries = append(statsEntries, wgpu.BindGroupEntry{Binding: bindingBrickTable, Buffer: b.BrickTable, Size: wgpu.WholeSize})
	}
	stats, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{Label: "StatsReduction BG", Layout: p.statsLayout, Entries: statsEntries})
	return
}
