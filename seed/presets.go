// Package seed provides the named grid presets the headless CLI and the
// host bridge's "load preset" operation select between. Each preset is a
// pure, deterministic function of a freshly allocated grid and the
// current parameter block: no preset reads wall-clock time or any other
// external source of entropy, so the same (grid size, params) pair
// always produces the same initial state. Grounded on the same
// deterministic-hash idiom the benchmark preset and the teacher's sector
// hash grid both use (x*73856093 ^ y*19349663 ^ z*83492791).
package seed

import (
	"github.com/voxlab/protocell"
	"github.com/voxlab/protocell/internal/refmodel"
)

// Name identifies one of the four presets by its external wire name.
type Name string

const (
	PetriDish Name = "petri-dish"
	Gradient  Name = "gradient"
	Arena     Name = "arena"
	Benchmark Name = "benchmark"
)

// Apply direct-writes preset into grid according to name. Unknown names
// leave the grid untouched, matching the core's "never error on a bad
// parameter edit" convention elsewhere in this package tree.
func Apply(name Name, grid *refmodel.Grid, params protocell.Params) {
	switch name {
	case PetriDish:
		applyPetriDish(grid, params)
	case Gradient:
		applyGradient(grid, params)
	case Arena:
		applyArena(grid, params)
	case Benchmark:
		applyBenchmark(grid, params)
	}
}

// spatialHash mirrors the teacher's sector hash grid constant family,
// also used by spec's run_benchmark scenario: three large odd primes
// XORed together give a well-distributed, deterministic per-cell value
// with no dependency on tick or dispatch order.
func spatialHash(x, y, z int) uint32 {
	return uint32(x)*73856093 ^ uint32(y)*19349663 ^ uint32(z)*83492791
}

// presetRNG advances a local xorshift32 stream seeded from a grid
// position; used only for genome randomization at preset time, never
// for gameplay decisions (those stay on refmodel's own per-tick RNG).
type presetRNG struct{ state uint32 }

func newPresetRNG(x, y, z int) *presetRNG {
	s := spatialHash(x, y, z)
	if s == 0 {
		s = 1
	}
	return &presetRNG{state: s}
}

func (r *presetRNG) next() uint32 {
	s := r.state
	s ^= s << 13
	s ^= s >> 17
	s ^= s << 5
	r.state = s
	return s
}

func (r *presetRNG) byte() byte { return byte(r.next()) }

func randomGenome(rng *presetRNG) protocell.Genome {
	var g protocell.Genome
	for i := range g {
		g[i] = rng.byte()
	}
	return g
}

// seedProtocell writes a freshly generated protocell at (x,y,z) with the
// given starting energy, deriving its genome from the cell's position so
// two runs of the same preset always produce the same colony.
func seedProtocell(grid *refmodel.Grid, x, y, z int, energy uint16) {
	rng := newPresetRNG(x, y, z)
	genome := randomGenome(rng)
	grid.Set(x, y, z, protocell.Voxel{
		Type:      protocell.TypeProtocell,
		Energy:    energy,
		SpeciesID: genome.SpeciesID(),
		Genome:    genome,
	})
}

// seedProtocellWithGenome writes a protocell whose genome is a base
// genome with a handful of named traits overridden, used by arena to
// give its two colonies a consistent antagonistic profile instead of a
// fully random one.
func seedProtocellWithGenome(grid *refmodel.Grid, x, y, z int, energy uint16, genome protocell.Genome) {
	grid.Set(x, y, z, protocell.Voxel{
		Type:      protocell.TypeProtocell,
		Energy:    energy,
		SpeciesID: genome.SpeciesID(),
		Genome:    genome,
	})
}

const defaultSeedEnergy = 150

// applyPetriDish seeds a single circular colony at the grid center with
// randomized genomes, and scatters nutrients at low density everywhere
// else in the grid.
func applyPetriDish(grid *refmodel.Grid, params protocell.Params) {
	g := grid.Size
	cx, cy, cz := g/2, g/2, g/2
	radius := g / 8
	if radius < 2 {
		radius = 2
	}

	for z := 0; z < g; z++ {
		for y := 0; y < g; y++ {
			for x := 0; x < g; x++ {
				dx, dy, dz := x-cx, y-cy, z-cz
				distSq := dx*dx + dy*dy + dz*dz
				if distSq <= radius*radius {
					seedProtocell(grid, x, y, z, defaultSeedEnergy)
					continue
				}
				if spatialHash(x, y, z)%1000 < 5 {
					grid.Set(x, y, z, protocell.Voxel{Type: protocell.TypeNutrient})
				}
			}
		}
	}
}

// applyGradient pre-seeds the temperature field with a linear gradient
// from 0.0 on the cold face (z=0) to 1.0 on the warm opposite face
// (z=g-1), then drops a thin band of protocells across the midpoint so
// chemotaxis/thermotaxis genome traits have a gradient to respond to.
func applyGradient(grid *refmodel.Grid, params protocell.Params) {
	g := grid.Size
	for z := 0; z < g; z++ {
		t := float32(z) / float32(g-1)
		for y := 0; y < g; y++ {
			for x := 0; x < g; x++ {
				grid.Temperature[protocell.GridIndex(x, y, z, g)] = t
			}
		}
	}

	mid := g / 2
	band := 1
	if g >= 32 {
		band = 2
	}
	for z := mid - band; z <= mid+band; z++ {
		if z < 0 || z >= g {
			continue
		}
		for y := 0; y < g; y++ {
			for x := 0; x < g; x++ {
				if spatialHash(x, y, z)%4 == 0 {
					seedProtocell(grid, x, y, z, defaultSeedEnergy)
				}
			}
		}
	}
}

// applyArena builds two antagonistic colonies separated by a wall
// partition with a single gap: one colony biased toward predation
// aggression, the other toward toxin resistance, so the two fight over
// the gap when they meet.
func applyArena(grid *refmodel.Grid, params protocell.Params) {
	g := grid.Size
	wallX := g / 2
	gapY, gapZ := g/2, g/2
	gapRadius := 2

	for z := 0; z < g; z++ {
		for y := 0; y < g; y++ {
			dy, dz := y-gapY, z-gapZ
			if dy*dy+dz*dz <= gapRadius*gapRadius {
				continue
			}
			grid.Set(wallX, y, z, protocell.Voxel{Type: protocell.TypeWall})
		}
	}

	aggressorColony := g / 4
	defenderColony := g - g/4

	for z := 0; z < g; z++ {
		for y := 0; y < g; y++ {
			for x := 0; x < g; x++ {
				switch {
				case x == aggressorColony && spatialHash(x, y, z)%3 == 0:
					genome := randomGenome(newPresetRNG(x, y, z))
					genome[protocell.GenePredationAggression] = 255
					genome[protocell.GenePredationCapability] = 200
					seedProtocellWithGenome(grid, x, y, z, defaultSeedEnergy, genome)
				case x == defenderColony && spatialHash(x, y, z)%3 == 0:
					genome := randomGenome(newPresetRNG(x, y, z))
					genome[protocell.GeneToxinResistance] = 255
					genome[protocell.GeneMovementBias] = 200
					seedProtocellWithGenome(grid, x, y, z, defaultSeedEnergy, genome)
				}
			}
		}
	}
}

// applyBenchmark fills roughly 30% of the grid with protocells using the
// exact deterministic hash rule spec's run_benchmark scenario specifies,
// so repeated benchmark runs are apples-to-apples.
func applyBenchmark(grid *refmodel.Grid, params protocell.Params) {
	g := grid.Size
	for z := 0; z < g; z++ {
		for y := 0; y < g; y++ {
			for x := 0; x < g; x++ {
				if spatialHash(x, y, z)%10 < 3 {
					seedProtocell(grid, x, y, z, defaultSeedEnergy)
				}
			}
		}
	}
}

// ParseName maps an external preset name to its Name constant. ok is
// false for an unrecognized name; callers should leave the grid
// untouched rather than guess.
func ParseName(s string) (Name, bool) {
	switch Name(s) {
	case PetriDish, Gradient, Arena, Benchmark:
		return Name(s), true
	default:
		return "", false
	}
}
