package protocell

import (
	"encoding/binary"
	"math"
)

// ToolID selects the brush behavior the host bridge attaches to paint
// input events.
type ToolID uint32

const (
	ToolNone ToolID = iota
	ToolWall
	ToolEnergySource
	ToolNutrient
	ToolSeed
	ToolToxin
	ToolRemove
	ToolHeatSource
	ToolColdSource
)

// MaxToolID is the highest valid ToolID; set_tool clamps anything beyond
// it to ToolNone.
const MaxToolID = ToolColdSource

// OverlayMode selects what the renderer's debug overlay visualizes;
// cycling wraps modulo OverlayModeCount.
type OverlayMode uint32

const (
	OverlayNone OverlayMode = iota
	OverlayTemperature
	OverlayEnergy
	OverlaySpecies
)

// OverlayModeCount is the number of overlay modes the 't' key cycles through.
const OverlayModeCount = 4

// Next returns the overlay mode the 't' key cycles to.
func (m OverlayMode) Next() OverlayMode {
	return OverlayMode((uint32(m) + 1) % OverlayModeCount)
}

// Params is the uniform parameter block re-uploaded every tick. Only
// TickCount normally changes tick to tick; the rest change through
// explicit parameter edits from the host bridge.
type Params struct {
	GridSize               uint32
	TickCount              uint32
	Dt                     float32
	NutrientSpawnRate      float32
	WasteDecayTicks        uint32
	NutrientRecycleRate    float32
	MovementEnergyCost     float32
	BaseAmbientTemp        float32
	MetabolicCostBase      float32
	ReplicationEnergyMin   float32
	EnergyFromNutrient     float32
	EnergyFromSource       float32
	DiffusionRate          float32
	TempSensitivity        float32
	PredationEnergyFraction float32
	MaxEnergy              float32
	OverlayMode            uint32
}

// ParamsSize is the uniform block's byte size, padded to 16-byte alignment.
const ParamsSize = 80 // 17 fields * 4 bytes = 68, padded to the next multiple of 16

// DefaultParams returns the parameter block a freshly initialized core
// seeds with, before any preset or edit is applied.
func DefaultParams(gridSize uint32) Params {
	return Params{
		GridSize:                gridSize,
		TickCount:               0,
		Dt:                      1.0 / 30.0,
		NutrientSpawnRate:       0.002,
		WasteDecayTicks:         60,
		NutrientRecycleRate:     1.0,
		MovementEnergyCost:      1.0,
		BaseAmbientTemp:         0.5,
		MetabolicCostBase:       1.0,
		ReplicationEnergyMin:    50.0,
		EnergyFromNutrient:      20.0,
		EnergyFromSource:        5.0,
		DiffusionRate:           0.2,
		TempSensitivity:         0.1,
		PredationEnergyFraction: 0.5,
		MaxEnergy:               255.0,
		OverlayMode:             uint32(OverlayNone),
	}
}

// Encode packs the parameter block into its uniform byte layout,
// little-endian, zero-padded to ParamsSize.
func (p Params) Encode() []byte {
	buf := make([]byte, ParamsSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], p.GridSize)
	le.PutUint32(buf[4:8], p.TickCount)
	le.PutUint32(buf[8:12], math.Float32bits(p.Dt))
	le.PutUint32(buf[12:16], math.Float32bits(p.NutrientSpawnRate))
	le.PutUint32(buf[16:20], p.WasteDecayTicks)
	le.PutUint32(buf[20:24], math.Float32bits(p.NutrientRecycleRate))
	le.PutUint32(buf[24:28], math.Float32bits(p.MovementEnergyCost))
	le.PutUint32(buf[28:32], math.Float32bits(p.BaseAmbientTemp))
	le.PutUint32(buf[32:36], math.Float32bits(p.MetabolicCostBase))
	le.PutUint32(buf[36:40], math.Float32bits(p.ReplicationEnergyMin))
	le.PutUint32(buf[40:44], math.Float32bits(p.EnergyFromNutrient))
	le.PutUint32(buf[44:48], math.Float32bits(p.EnergyFromSource))
	le.PutUint32(buf[48:52], math.Float32bits(p.DiffusionRate))
	le.PutUint32(buf[52:56], math.Float32bits(p.TempSensitivity))
	le.PutUint32(buf[56:60], math.Float32bits(p.PredationEnergyFraction))
	le.PutUint32(buf[60:64], math.Float32bits(p.MaxEnergy))
	le.PutUint32(buf[64:68], p.OverlayMode)
	return buf
}

// SetParam sets a named parameter-block field by its wire name (matching
// the external set_param(name, value) interface). Unknown names are
// ignored; the core never errors on a bad parameter edit.
func (p *Params) SetParam(name string, value float32) {
	switch name {
	case "grid_size":
		p.GridSize = uint32(value)
	case "tick_count":
		p.TickCount = uint32(value)
	case "dt":
		p.Dt = value
	case "nutrient_spawn_rate":
		p.NutrientSpawnRate = value
	case "waste_decay_ticks":
		p.WasteDecayTicks = uint32(value)
	case "nutrient_recycle_rate":
		p.NutrientRecycleRate = value
	case "movement_energy_cost":
		p.MovementEnergyCost = value
	case "base_ambient_temp":
		p.BaseAmbientTemp = value
	case "metabolic_cost_base":
		p.MetabolicCostBase = value
	case "replication_energy_min":
		p.ReplicationEnergyMin = value
	case "energy_from_nutrient":
		p.EnergyFromNutrient = value
	case "energy_from_source":
		p.EnergyFromSource = value
	case "diffusion_rate":
		p.DiffusionRate = value
	case "temp_sensitivity":
		p.TempSensitivity = value
	case "predation_energy_fraction":
		p.PredationEnergyFraction = value
	case "max_energy":
		p.MaxEnergy = value
	case "overlay_mode":
		p.OverlayMode = uint32(value)
	}
}

// ClampToolID maps an out-of-range tool id to ToolNone rather than erroring.
func ClampToolID(id uint32) ToolID {
	if id > uint32(MaxToolID) {
		return ToolNone
	}
	return ToolID(id)
}

// ClampBrushRadius enforces r = min(r, MaxBrushRadius).
func ClampBrushRadius(r int) int {
	if r > MaxBrushRadius {
		return MaxBrushRadius
	}
	if r < 0 {
		return 0
	}
	return r
}

// ClampTickRate enforces the [1,60] tick-rate bound.
func ClampTickRate(r int) int {
	if r < 1 {
		return 1
	}
	if r > 60 {
		return 60
	}
	return r
}
