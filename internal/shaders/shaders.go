// Package shaders embeds the WGSL source for the five tick-pipeline
// phases plus the sparse-tier occupancy pass. Each phase file is
// compiled standalone by the host, so the shared Params struct and
// helper functions in params.wgsl.inc are prefixed onto every phase's
// body here rather than relying on a WGSL #include, which doesn't exist.
package shaders

import _ "embed"

//go:embed params.wgsl.inc
var paramsInc string

//go:embed pool_index.wgsl.inc
var poolIndexInc string

//go:embed apply_commands.wgsl
var applyCommandsBody string

//go:embed apply_commands_sparse.wgsl
var applyCommandsSparseBody string

//go:embed temperature_diffusion.wgsl
var temperatureDiffusionBody string

//go:embed temperature_diffusion_sparse.wgsl
var temperatureDiffusionSparseBody string

//go:embed intent_declaration.wgsl
var intentDeclarationBody string

//go:embed intent_declaration_sparse.wgsl
var intentDeclarationSparseBody string

//go:embed resolve_execute.wgsl
var resolveExecuteBody string

//go:embed resolve_execute_sparse.wgsl
var resolveExecuteSparseBody string

//go:embed stats_reduction.wgsl
var statsReductionBody string

//go:embed stats_reduction_sparse.wgsl
var statsReductionSparseBody string

//go:embed stats_occupancy.wgsl
var statsOccupancyBody string

func withParams(body string) string {
	return paramsInc + "\n" + body
}

// withPoolIndex prefixes both the shared Params block and the brick
// table / pool_index helper onto a sparse-tier phase body. Kept
// distinct from withParams rather than layered underneath it, since
// grid_index and friends live in paramsInc regardless of tier and
// pool_index is the sparse-only addition on top.
func withPoolIndex(body string) string {
	return paramsInc + "\n" + poolIndexInc + "\n" + body
}

// ApplyCommandsWGSL is Phase 1: mutates the read buffer in place.
var ApplyCommandsWGSL = withParams(applyCommandsBody)

// ApplyCommandsSparseWGSL is Phase 1 for sparse tiers: same logic,
// addressed through the brick table instead of grid_index.
var ApplyCommandsSparseWGSL = withPoolIndex(applyCommandsSparseBody)

// TemperatureDiffusionWGSL is Phase 2: weighted 6-neighbor diffusion.
var TemperatureDiffusionWGSL = withParams(temperatureDiffusionBody)

// TemperatureDiffusionSparseWGSL is Phase 2 for sparse tiers.
var TemperatureDiffusionSparseWGSL = withPoolIndex(temperatureDiffusionSparseBody)

// IntentDeclarationWGSL is Phase 3: one intent word per protocell,
// atomic-max combined into its target's slot.
var IntentDeclarationWGSL = withParams(intentDeclarationBody)

// IntentDeclarationSparseWGSL is Phase 3 for sparse tiers.
var IntentDeclarationSparseWGSL = withPoolIndex(intentDeclarationSparseBody)

// ResolveExecuteWGSL is Phase 4: synthesizes the write buffer from the
// read buffer and the combined intent buffer.
var ResolveExecuteWGSL = withParams(resolveExecuteBody)

// ResolveExecuteSparseWGSL is Phase 4 for sparse tiers.
var ResolveExecuteSparseWGSL = withPoolIndex(resolveExecuteSparseBody)

// StatsReductionWGSL is Phase 5: population/energy/species histogram
// reduction over the freshly written grid.
var StatsReductionWGSL = withParams(statsReductionBody)

// StatsReductionSparseWGSL is Phase 5 for sparse tiers.
var StatsReductionSparseWGSL = withPoolIndex(statsReductionSparseBody)

// StatsOccupancyWGSL counts live voxels per brick pool slot so the host
// can reclaim empty bricks via sparse.BrickGrid.ReclaimEmpty.
var StatsOccupancyWGSL = withParams(statsOccupancyBody)
