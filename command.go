package protocell

import (
	"encoding/binary"
	"math"
)

// CommandType tags the effect a queued Command applies during Phase 1 of
// the tick pipeline.
type CommandType uint32

const (
	CommandPlaceVoxel CommandType = iota
	CommandRemoveVoxel
	CommandSeedProtocells
	CommandApplyToxin
)

// MaxBrushRadius is the largest Chebyshev radius a command may affect.
const MaxBrushRadius = 5

// MaxQueuedCommands is the number of command records drained into a
// single tick's command buffer; anything beyond this is discarded.
const MaxQueuedCommands = 64

// CommandWords is the fixed word stride of one encoded command record:
// 16 32-bit words (64 bytes), trailing words zero-padded.
const CommandWords = 16

// CommandBufferHeaderWords is the number of leading words before the
// first record: word 0 holds the live command count, words 1-3 are zero.
const CommandBufferHeaderWords = 4

// CommandBufferBytes is the exact declared size of the command buffer:
// (4 + 64*16) words of 4 bytes is 4112, declared as 4128, which leaves
// 16 trailing bytes unused.
const CommandBufferBytes = 4128

// Command is a single host-issued mutation applied in place to the read
// buffer at the start of a tick. Effects touch every voxel within
// Radius in Chebyshev distance of (X,Y,Z).
type Command struct {
	Type   CommandType
	X, Y, Z int
	Radius int
	Param0 float32
	Param1 float32
}

// ClampRadius returns c with Radius clamped to [0, MaxBrushRadius].
func (c Command) ClampRadius() Command {
	if c.Radius > MaxBrushRadius {
		c.Radius = MaxBrushRadius
	}
	if c.Radius < 0 {
		c.Radius = 0
	}
	return c
}

// ToWords encodes the command into its fixed 16-word record. Words 7
// through 15 are always zero; the decoder does not require them to stay
// that way but the encoder never writes them.
func (c Command) ToWords() [CommandWords]uint32 {
	c = c.ClampRadius()
	var w [CommandWords]uint32
	w[0] = uint32(c.Type)
	w[1] = uint32(int32(c.X))
	w[2] = uint32(int32(c.Y))
	w[3] = uint32(int32(c.Z))
	w[4] = uint32(c.Radius)
	w[5] = math.Float32bits(c.Param0)
	w[6] = math.Float32bits(c.Param1)
	return w
}

// CommandFromWords decodes a 16-word record back into a Command.
func CommandFromWords(w [CommandWords]uint32) Command {
	return Command{
		Type:   CommandType(w[0]),
		X:      int(int32(w[1])),
		Y:      int(int32(w[2])),
		Z:      int(int32(w[3])),
		Radius: int(w[4]),
		Param0: math.Float32frombits(w[5]),
		Param1: math.Float32frombits(w[6]),
	}
}

// EncodeCommandBuffer lays out up to MaxQueuedCommands commands into the
// exact byte layout Phase 1 expects: a leading word holding the live
// count, then 16-word records starting at word 4. Commands beyond
// MaxQueuedCommands are silently dropped.
func EncodeCommandBuffer(cmds []Command) []byte {
	buf := make([]byte, CommandBufferBytes)

	n := len(cmds)
	if n > MaxQueuedCommands {
		n = MaxQueuedCommands
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(n))

	offset := CommandBufferHeaderWords * 4
	for i := 0; i < n; i++ {
		words := cmds[i].ToWords()
		base := offset + i*CommandWords*4
		for wi, word := range words {
			binary.LittleEndian.PutUint32(buf[base+wi*4:base+wi*4+4], word)
		}
	}
	return buf
}

// ChebyshevAffected reports whether (x,y,z) lies within radius
// Chebyshev distance of the command's origin.
func (c Command) ChebyshevAffected(x, y, z int) bool {
	r := c.ClampRadius().Radius
	dx := abs(x - c.X)
	dy := abs(y - c.Y)
	dz := abs(z - c.Z)
	return dx <= r && dy <= r && dz <= r
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
