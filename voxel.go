// Package protocell implements the host side of a 3D voxel-grid
// artificial-life simulator: the packed voxel data model, the tick
// scheduler, the sparse brick allocator, and the async GPU readback state
// machines that drive a GPU compute pipeline defined in internal/shaders.
package protocell

import "encoding/binary"

// VoxelType tags the variant a grid cell currently holds.
type VoxelType uint8

const (
	TypeEmpty VoxelType = iota
	TypeWall
	TypeNutrient
	TypeEnergySource
	TypeProtocell
	TypeWaste
	TypeHeatSource
	TypeColdSource
)

func (t VoxelType) IsAgent() bool { return t == TypeProtocell }

func (t VoxelType) String() string {
	switch t {
	case TypeEmpty:
		return "Empty"
	case TypeWall:
		return "Wall"
	case TypeNutrient:
		return "Nutrient"
	case TypeEnergySource:
		return "EnergySource"
	case TypeProtocell:
		return "Protocell"
	case TypeWaste:
		return "Waste"
	case TypeHeatSource:
		return "HeatSource"
	case TypeColdSource:
		return "ColdSource"
	default:
		return "Unknown"
	}
}

// VoxelSize is the packed, on-wire size of a Voxel record: 8 32-bit words.
const VoxelSize = 32

// Voxel is the atomic unit of grid state, matching the 8x32-bit word
// layout the GPU compute shaders read and write directly.
type Voxel struct {
	Type      VoxelType
	Flags     uint8
	Energy    uint16
	Age       uint16
	SpeciesID uint16
	Genome    Genome
	Extra     [8]byte
}

// EmptyVoxel is the zero-value convention used for unallocated/cleared cells.
var EmptyVoxel = Voxel{}

// Pack encodes v into its 32-byte wire representation (8 little-endian
// 32-bit words), matching the byte-helper idiom used throughout the GPU
// buffer manager (word-at-a-time binary.LittleEndian.PutUint32 writes).
func (v Voxel) Pack() [VoxelSize]byte {
	var b [VoxelSize]byte

	word0 := uint32(v.Type) | uint32(v.Flags)<<8 | uint32(v.Energy)<<16
	word1 := uint32(v.Age) | uint32(v.SpeciesID)<<16

	binary.LittleEndian.PutUint32(b[0:4], word0)
	binary.LittleEndian.PutUint32(b[4:8], word1)
	copy(b[8:24], v.Genome[:])
	copy(b[24:32], v.Extra[:])
	return b
}

// UnpackVoxel decodes a 32-byte wire record into a Voxel. Round-trips
// exactly with Pack for any input: pack(unpack(x)) == x.
func UnpackVoxel(b [VoxelSize]byte) Voxel {
	word0 := binary.LittleEndian.Uint32(b[0:4])
	word1 := binary.LittleEndian.Uint32(b[4:8])

	var v Voxel
	v.Type = VoxelType(word0 & 0xFF)
	v.Flags = uint8((word0 >> 8) & 0xFF)
	v.Energy = uint16(word0 >> 16)
	v.Age = uint16(word1 & 0xFFFF)
	v.SpeciesID = uint16(word1 >> 16)
	copy(v.Genome[:], b[8:24])
	copy(v.Extra[:], b[24:32])
	return v
}

// Axis enumerates the six face-adjacent directions plus Self, matching
// the intent word's 3-bit target_direction field.
type Axis uint8

const (
	AxisPlusX Axis = iota
	AxisMinusX
	AxisPlusY
	AxisMinusY
	AxisPlusZ
	AxisMinusZ
	AxisSelf
)

// Offset returns the (dx,dy,dz) grid offset for the axis. AxisSelf is (0,0,0).
func (a Axis) Offset() (dx, dy, dz int) {
	switch a {
	case AxisPlusX:
		return 1, 0, 0
	case AxisMinusX:
		return -1, 0, 0
	case AxisPlusY:
		return 0, 1, 0
	case AxisMinusY:
		return 0, -1, 0
	case AxisPlusZ:
		return 0, 0, 1
	case AxisMinusZ:
		return 0, 0, -1
	default:
		return 0, 0, 0
	}
}

// Opposite returns the axis pointing the other way; AxisSelf maps to itself.
func (a Axis) Opposite() Axis {
	switch a {
	case AxisPlusX:
		return AxisMinusX
	case AxisMinusX:
		return AxisPlusX
	case AxisPlusY:
		return AxisMinusY
	case AxisMinusY:
		return AxisPlusY
	case AxisPlusZ:
		return AxisMinusZ
	case AxisMinusZ:
		return AxisPlusZ
	default:
		return AxisSelf
	}
}

// VonNeumannOffsets lists the six face-adjacent neighbor offsets in a
// fixed order matching Axis 0..5.
var VonNeumannOffsets = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// GridIndex computes the dense linear index for (x,y,z) on a G-edge cube:
// index = z*G^2 + y*G + x.
func GridIndex(x, y, z, g int) int {
	return z*g*g + y*g + x
}

// GridCoords is the inverse of GridIndex: grid_coords(grid_index(x,y,z,G), G) == (x,y,z).
func GridCoords(index, g int) (x, y, z int) {
	z = index / (g * g)
	rem := index - z*g*g
	y = rem / g
	x = rem - y*g
	return x, y, z
}

// InBounds reports whether (x,y,z) lies within a G-edge cube.
func InBounds(x, y, z, g int) bool {
	return x >= 0 && x < g && y >= 0 && y < g && z >= 0 && z < g
}
