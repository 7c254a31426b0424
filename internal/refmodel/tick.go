package refmodel

import (
	"github.com/voxlab/protocell"
)

// ApplyCommands mutates grid in place per the Phase 1 contract: every
// voxel within Chebyshev radius of a command's origin is touched
// according to the command's type. Safe to call because no other phase
// runs concurrently with it.
func ApplyCommands(grid *Grid, cmds []protocell.Command, tick uint64) {
	for _, cmd := range cmds {
		applyOneCommand(grid, cmd.ClampRadius(), tick)
	}
}

func applyOneCommand(grid *Grid, cmd protocell.Command, tick uint64) {
	g := grid.Size
	minX, maxX := clampAxis(cmd.X-cmd.Radius, g), clampAxis(cmd.X+cmd.Radius, g)
	minY, maxY := clampAxis(cmd.Y-cmd.Radius, g), clampAxis(cmd.Y+cmd.Radius, g)
	minZ, maxZ := clampAxis(cmd.Z-cmd.Radius, g), clampAxis(cmd.Z+cmd.Radius, g)

	for z := minZ; z <= maxZ; z++ {
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				if !cmd.ChebyshevAffected(x, y, z) {
					continue
				}
				applyCommandToCell(grid, cmd, x, y, z, tick)
			}
		}
	}
}

func clampAxis(v, g int) int {
	if v < 0 {
		return 0
	}
	if v >= g {
		return g - 1
	}
	return v
}

func applyCommandToCell(grid *Grid, cmd protocell.Command, x, y, z int, tick uint64) {
	switch cmd.Type {
	case protocell.CommandPlaceVoxel:
		grid.Set(x, y, z, protocell.Voxel{Type: protocell.VoxelType(cmd.Param0)})

	case protocell.CommandRemoveVoxel:
		grid.Set(x, y, z, protocell.EmptyVoxel)

	case protocell.CommandSeedProtocells:
		if grid.At(x, y, z).Type != protocell.TypeEmpty {
			return
		}
		rng := newCellRNG(tick, protocell.GridIndex(x, y, z, grid.Size))
		energy := cmd.Param0
		if energy <= 0 {
			energy = 100
		}
		genome := randomGenome(rng)
		grid.Set(x, y, z, protocell.Voxel{
			Type:      protocell.TypeProtocell,
			Energy:    uint16(energy),
			SpeciesID: genome.SpeciesID(),
			Genome:    genome,
		})

	case protocell.CommandApplyToxin:
		v := grid.At(x, y, z)
		if v.Type != protocell.TypeProtocell {
			return
		}
		resistance := float32(v.Genome.Trait(protocell.GeneToxinResistance)) / 255.0
		dose := cmd.Param0 * (1 - resistance)
		if dose < 0 {
			dose = 0
		}
		newEnergy := int(v.Energy) - int(dose)
		if newEnergy < 0 {
			newEnergy = 0
		}
		v.Energy = uint16(newEnergy)
		grid.Set(x, y, z, v)
	}
}

func randomGenome(rng *cellRNG) protocell.Genome {
	var g protocell.Genome
	for i := range g {
		g[i] = rng.Byte()
	}
	return g
}

// DiffuseTemperature computes Phase 2 into a freshly allocated
// temperature slice: T' = (1-k)*T + k*mean(neighbors) + source_term,
// clamped to [0,1]. Walls neither diffuse nor transmit heat: a wall
// cell's own temperature is left unchanged, and a wall neighbor
// contributes the reading cell's own value (no flow through it).
func DiffuseTemperature(grid *Grid, params protocell.Params) []float32 {
	g := grid.Size
	out := make([]float32, len(grid.Temperature))
	k := params.DiffusionRate

	for z := 0; z < g; z++ {
		for y := 0; y < g; y++ {
			for x := 0; x < g; x++ {
				idx := protocell.GridIndex(x, y, z, g)
				self := grid.Voxels[idx]
				t := grid.Temperature[idx]

				if self.Type == protocell.TypeWall {
					out[idx] = t
					continue
				}

				var sum float32
				for _, off := range protocell.VonNeumannOffsets {
					nx, ny, nz := x+off[0], y+off[1], z+off[2]
					if !protocell.InBounds(nx, ny, nz, g) {
						sum += t
						continue
					}
					nIdx := protocell.GridIndex(nx, ny, nz, g)
					if grid.Voxels[nIdx].Type == protocell.TypeWall {
						sum += t
						continue
					}
					sum += grid.Temperature[nIdx]
				}
				mean := sum / 6.0

				var source float32
				switch self.Type {
				case protocell.TypeHeatSource:
					source = params.TempSensitivity
				case protocell.TypeColdSource:
					source = -params.TempSensitivity
				}

				v := (1-k)*t + k*mean + source
				out[idx] = clamp01(v)
			}
		}
	}
	return out
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// DeclareIntents runs Phase 3: every Protocell cell computes its desired
// action and atomically combines its intent word into the target cell's
// slot. The returned slice is indexed exactly like the voxel grid and is
// zero-cleared for cells no agent targeted. temperature is the buffer
// Phase 2 just produced, the same one Phase 4 reads.
func DeclareIntents(grid *Grid, temperature []float32, params protocell.Params, tick uint64) []uint32 {
	g := grid.Size
	intents := make([]uint32, len(grid.Voxels))

	for z := 0; z < g; z++ {
		for y := 0; y < g; y++ {
			for x := 0; x < g; x++ {
				idx := protocell.GridIndex(x, y, z, g)
				v := grid.Voxels[idx]
				if v.Type != protocell.TypeProtocell {
					continue
				}
				targetIdx, intent := decideAction(grid, temperature, x, y, z, v, params, tick)
				current := protocell.DecodeIntent(intents[targetIdx])
				combined := current.Combine(intent)
				intents[targetIdx] = combined.Encode()
			}
		}
	}
	return intents
}

// neighbor is a face-adjacent cell considered as a movement, replication,
// or predation target.
type neighbor struct {
	axis protocell.Axis
	idx  int
	v    protocell.Voxel
}

// chooseMoveTarget picks a destination among empty neighbors. A chemotaxis
// gene that clears the activation threshold steers the cell up the local
// temperature gradient (toward its warmest empty neighbor, the earliest
// in axis order on a tie); below threshold the choice is made by RNG the
// same way every other multi-candidate pick in this phase is.
func chooseMoveTarget(empties []neighbor, temperature []float32, chemotaxis byte, rng *cellRNG) neighbor {
	if chemotaxis >= geneActivationThreshold {
		best := empties[0]
		for _, n := range empties[1:] {
			if temperature[n.idx] > temperature[best.idx] {
				best = n
			}
		}
		return best
	}
	return empties[rng.Uint32()%uint32(len(empties))]
}

// geneActivationThreshold is the midpoint a behavioral gene (movement
// bias, replication threshold, predation aggression) must clear to
// switch the corresponding behavior on. Genes are thresholds, not dice:
// the same grid and parameters always make the same decision, so a run
// is reproducible given its initial state (modulo GPU reduction order).
const geneActivationThreshold = 128

// decideAction is the pure per-cell decision function for Phase 3. It is
// deterministic given (grid, position, params, tick): the only source
// of randomness is which of several equally-valid empty/prey neighbors
// is chosen (absent a chemotaxis bias), and genome mutation on
// replication. temperature is the freshly diffused Phase 2 output, read
// here for chemotaxis and by the caller again in Phase 4.
func decideAction(grid *Grid, temperature []float32, x, y, z int, self protocell.Voxel, params protocell.Params, tick uint64) (targetIdx int, intent protocell.Intent) {
	g := grid.Size
	selfIdx := protocell.GridIndex(x, y, z, g)
	rng := newCellRNG(tick, selfIdx)

	if self.Energy == 0 {
		return selfIdx, protocell.Intent{Direction: protocell.AxisSelf, Action: protocell.ActionDie, Bid: 1}
	}

	var empties, prey []neighbor
	for axis := protocell.Axis(0); axis < 6; axis++ {
		dx, dy, dz := axis.Offset()
		nx, ny, nz := x+dx, y+dy, z+dz
		if !protocell.InBounds(nx, ny, nz, g) {
			continue
		}
		nIdx := protocell.GridIndex(nx, ny, nz, g)
		nv := grid.Voxels[nIdx]
		n := neighbor{axis: axis, idx: nIdx, v: nv}
		switch {
		case nv.Type == protocell.TypeEmpty:
			empties = append(empties, n)
		case nv.Type == protocell.TypeProtocell && nv.SpeciesID != self.SpeciesID:
			prey = append(prey, n)
		}
	}

	if float32(self.Energy) >= params.ReplicationEnergyMin && len(empties) > 0 {
		if self.Genome.Trait(protocell.GeneReplicationThreshold) >= geneActivationThreshold {
			n := empties[rng.Uint32()%uint32(len(empties))]
			bid := uint32(self.Energy)
			return n.idx, protocell.Intent{Direction: n.axis.Opposite(), Action: protocell.ActionReplicate, Bid: bid}
		}
	}

	if len(prey) > 0 {
		n := prey[rng.Uint32()%uint32(len(prey))]
		capability := self.Genome.Trait(protocell.GenePredationCapability)
		defense := n.v.Genome.Trait(protocell.GeneToxinResistance)
		if capability > defense && self.Genome.Trait(protocell.GenePredationAggression) >= geneActivationThreshold {
			bid := uint32(self.Energy)
			return n.idx, protocell.Intent{Direction: n.axis.Opposite(), Action: protocell.ActionPredate, Bid: bid}
		}
	}

	if len(empties) > 0 && self.Genome.Trait(protocell.GeneMovementBias) >= geneActivationThreshold {
		n := chooseMoveTarget(empties, temperature, self.Genome.Trait(protocell.GeneChemotaxisStrength), rng)
		bid := uint32(self.Energy)
		return n.idx, protocell.Intent{Direction: n.axis.Opposite(), Action: protocell.ActionMove, Bid: bid}
	}

	return selfIdx, protocell.Intent{Direction: protocell.AxisSelf, Action: protocell.ActionIdle, Bid: uint32(self.Energy)}
}

// ResolveExecute runs Phase 4, synthesizing the write-side grid from the
// read-side grid, the freshly diffused temperature, and the combined
// intent buffer.
func ResolveExecute(grid *Grid, temperature []float32, intents []uint32, params protocell.Params, tick uint64) *Grid {
	g := grid.Size
	out := NewGrid(g, params.BaseAmbientTemp)
	out.Temperature = temperature

	for idx := range grid.Voxels {
		x, y, z := protocell.GridCoords(idx, g)
		win := protocell.DecodeIntent(intents[idx])
		old := grid.Voxels[idx]

		switch {
		case win.Action == protocell.ActionMove:
			src := sourceVoxel(grid, x, y, z, win.Direction, g)
			moved := src
			moved.Energy = subEnergy(moved.Energy, params.MovementEnergyCost)
			if old.Type == protocell.TypeNutrient {
				moved.Energy = addEnergy(moved.Energy, params.EnergyFromNutrient, params.MaxEnergy)
			}
			moved.Age++
			out.Voxels[idx] = deadOrAlive(moved)

		case win.Action == protocell.ActionPredate:
			predator := sourceVoxel(grid, x, y, z, win.Direction, g)
			gain := params.PredationEnergyFraction * float32(old.Energy)
			predator.Energy = addEnergy(predator.Energy, gain, params.MaxEnergy)
			predator.Age++
			out.Voxels[idx] = deadOrAlive(predator)

		case win.Action == protocell.ActionReplicate:
			parent := sourceVoxel(grid, x, y, z, win.Direction, g)
			child := protocell.Voxel{
				Type:      protocell.TypeProtocell,
				Energy:    parent.Energy / 2,
				Genome:    mutateGenome(parent.Genome, params, tick, idx),
			}
			child.SpeciesID = child.Genome.SpeciesID()
			out.Voxels[idx] = child

		case win.Action == protocell.ActionDie:
			out.Voxels[idx] = protocell.Voxel{Type: protocell.TypeWaste, Age: 0}

		case win.Action == protocell.ActionIdle:
			updated := old
			updated.Age++
			cost := params.MetabolicCostBase
			if hasAdjacentEnergySource(grid, x, y, z, g) {
				updated.Energy = addEnergy(updated.Energy, params.EnergyFromSource, params.MaxEnergy)
			}
			updated.Energy = subEnergy(updated.Energy, cost)
			out.Voxels[idx] = deadOrAlive(updated)

		default: // NoAction targets this cell
			out.Voxels[idx] = resolveUntargeted(grid, temperature, x, y, z, old, intents, params, tick)
		}
	}
	return out
}

func sourceVoxel(grid *Grid, x, y, z int, dir protocell.Axis, g int) protocell.Voxel {
	dx, dy, dz := dir.Offset()
	sx, sy, sz := x+dx, y+dy, z+dz
	if !protocell.InBounds(sx, sy, sz, g) {
		return protocell.EmptyVoxel
	}
	return grid.Voxels[protocell.GridIndex(sx, sy, sz, g)]
}

func resolveUntargeted(grid *Grid, temperature []float32, x, y, z int, old protocell.Voxel, intents []uint32, params protocell.Params, tick uint64) protocell.Voxel {
	idx := protocell.GridIndex(x, y, z, grid.Size)

	if old.Type == protocell.TypeProtocell {
		// Nothing targets this cell, yet it held an agent: by
		// construction a live agent always declares an intent somewhere.
		// Recompute what it declared (a pure, side-effect-free replay of
		// Phase 3) and check whether that intent actually won at its
		// target — a losing bid leaves this cell exactly as it was,
		// since the agent never actually moved, predated, or replicated.
		targetIdx, declared := decideAction(grid, temperature, x, y, z, old, params, tick)
		won := intents[targetIdx] == declared.Encode()

		switch {
		case declared.Action == protocell.ActionReplicate && won:
			updated := old
			updated.Age++
			updated.Energy -= updated.Energy / 2 // the other half went to the child
			updated.Energy = subEnergy(updated.Energy, params.MetabolicCostBase)
			return deadOrAlive(updated)

		case (declared.Action == protocell.ActionMove || declared.Action == protocell.ActionPredate) && won:
			return protocell.EmptyVoxel

		default:
			// The attempt lost the bid at its target: this cell is
			// unaffected, exactly as it was before the tick.
			return old
		}
	}

	switch old.Type {
	case protocell.TypeEmpty:
		rng := newCellRNG(tick, idx)
		if rng.Float01() < params.NutrientSpawnRate {
			return protocell.Voxel{Type: protocell.TypeNutrient}
		}
		return protocell.EmptyVoxel

	case protocell.TypeWaste:
		age := old.Age + 1
		if uint32(age) > params.WasteDecayTicks {
			return protocell.Voxel{Type: protocell.TypeNutrient}
		}
		old.Age = age
		return old

	default:
		return old
	}
}

func hasAdjacentEnergySource(grid *Grid, x, y, z, g int) bool {
	for _, off := range protocell.VonNeumannOffsets {
		nx, ny, nz := x+off[0], y+off[1], z+off[2]
		if !protocell.InBounds(nx, ny, nz, g) {
			continue
		}
		if grid.Voxels[protocell.GridIndex(nx, ny, nz, g)].Type == protocell.TypeEnergySource {
			return true
		}
	}
	return false
}

func subEnergy(e uint16, cost float32) uint16 {
	v := int(e) - int(cost)
	if v < 0 {
		return 0
	}
	return uint16(v)
}

func addEnergy(e uint16, gain float32, max float32) uint16 {
	v := float32(e) + gain
	if v > max {
		v = max
	}
	if v < 0 {
		v = 0
	}
	return uint16(v)
}

// deadOrAlive converts a voxel whose energy has reached zero into Waste,
// per "if resulting energy <= 0, write Empty (or Waste)" — Waste is
// chosen so the corpse still recycles into a nutrient later.
func deadOrAlive(v protocell.Voxel) protocell.Voxel {
	if v.Energy == 0 {
		return protocell.Voxel{Type: protocell.TypeWaste, Age: 0}
	}
	return v
}

// mutateGenome copies parent with a per-byte mutation chance of
// mutation_rate/255, flipping one random bit in a byte that mutates.
func mutateGenome(parent protocell.Genome, params protocell.Params, tick uint64, childIdx int) protocell.Genome {
	rng := newCellRNG(tick, childIdx)
	mutationRate := parent.Trait(protocell.GeneMutationRate)

	out := parent
	for i := range out {
		if rng.Uint32()%255 < uint32(mutationRate) {
			bit := rng.Uint32() % 8
			out[i] ^= 1 << bit
		}
	}
	return out
}

// ReduceStats runs Phase 5 over the freshly written grid: population,
// total/max energy, and a 12-slot bounded species histogram with
// everything past the bound folded into Other.
func ReduceStats(grid *Grid) Stats {
	var stats Stats
	seen := make(map[uint16]int, 12)

	for _, v := range grid.Voxels {
		if v.Type != protocell.TypeProtocell {
			continue
		}
		stats.Population++
		stats.TotalEnergy += uint64(v.Energy)
		if uint32(v.Energy) > stats.MaxEnergy {
			stats.MaxEnergy = uint32(v.Energy)
		}

		if slot, ok := seen[v.SpeciesID]; ok {
			stats.SpeciesHistogram[slot].Count++
			continue
		}
		if stats.SpeciesCount < len(stats.SpeciesHistogram) {
			seen[v.SpeciesID] = stats.SpeciesCount
			stats.SpeciesHistogram[stats.SpeciesCount] = SpeciesCount{SpeciesID: v.SpeciesID, Count: 1}
			stats.SpeciesCount++
		} else {
			stats.Other++
		}
	}
	return stats
}

// Tick runs all five phases in order and returns the new grid (the
// would-be write buffer) and its freshly reduced stats. Commands are
// applied to grid in place before the read-only phases run, matching
// the Phase 1 "mutate read buffer in place" contract.
func Tick(grid *Grid, cmds []protocell.Command, params protocell.Params, tick uint64) (*Grid, Stats) {
	ApplyCommands(grid, cmds, tick)
	temperature := DiffuseTemperature(grid, params)
	intents := DeclareIntents(grid, temperature, params, tick)
	next := ResolveExecute(grid, temperature, intents, params, tick)
	stats := ReduceStats(next)
	return next, stats
}
