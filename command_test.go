package protocell

import "testing"

func TestCommandWordsRoundTrip(t *testing.T) {
	c := Command{Type: CommandApplyToxin, X: -3, Y: 17, Z: 200, Radius: 2, Param0: 3.5, Param1: -1.25}
	got := CommandFromWords(c.ToWords())
	if got != c {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, c)
	}
}

func TestCommandToWordsPadsTrailingWordsToZero(t *testing.T) {
	c := Command{Type: CommandPlaceVoxel, X: 1, Y: 2, Z: 3, Radius: 1, Param0: 1, Param1: 1}
	words := c.ToWords()
	for i := 7; i < CommandWords; i++ {
		if words[i] != 0 {
			t.Fatalf("word %d should be zero-padded, got %d", i, words[i])
		}
	}
}

func TestCommandClampRadius(t *testing.T) {
	over := Command{Radius: MaxBrushRadius + 10}.ClampRadius()
	if over.Radius != MaxBrushRadius {
		t.Fatalf("expected radius clamped to %d, got %d", MaxBrushRadius, over.Radius)
	}
	under := Command{Radius: -5}.ClampRadius()
	if under.Radius != 0 {
		t.Fatalf("expected negative radius clamped to 0, got %d", under.Radius)
	}
}

func TestCommandToWordsAppliesClampRadius(t *testing.T) {
	c := Command{Radius: 99}
	words := c.ToWords()
	if words[4] != MaxBrushRadius {
		t.Fatalf("expected encoded radius to be clamped to %d, got %d", MaxBrushRadius, words[4])
	}
}

func TestChebyshevAffected(t *testing.T) {
	c := Command{X: 5, Y: 5, Z: 5, Radius: 2}
	if !c.ChebyshevAffected(7, 7, 7) {
		t.Fatalf("corner at exactly radius distance should be affected")
	}
	if c.ChebyshevAffected(8, 5, 5) {
		t.Fatalf("cell one beyond radius should not be affected")
	}
	if !c.ChebyshevAffected(5, 5, 5) {
		t.Fatalf("origin should always be affected")
	}
}

func TestEncodeCommandBufferSize(t *testing.T) {
	buf := EncodeCommandBuffer(nil)
	if len(buf) != CommandBufferBytes {
		t.Fatalf("expected command buffer of %d bytes, got %d", CommandBufferBytes, len(buf))
	}
}

func TestEncodeCommandBufferHeaderCount(t *testing.T) {
	cmds := []Command{
		{Type: CommandPlaceVoxel, X: 1},
		{Type: CommandRemoveVoxel, X: 2},
		{Type: CommandApplyToxin, X: 3},
	}
	buf := EncodeCommandBuffer(cmds)
	count := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	if count != uint32(len(cmds)) {
		t.Fatalf("expected header count %d, got %d", len(cmds), count)
	}
}

func TestEncodeCommandBufferTruncatesBeyondMax(t *testing.T) {
	cmds := make([]Command, MaxQueuedCommands+20)
	for i := range cmds {
		cmds[i] = Command{Type: CommandPlaceVoxel, X: i}
	}
	buf := EncodeCommandBuffer(cmds)
	count := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	if count != MaxQueuedCommands {
		t.Fatalf("expected header count truncated to %d, got %d", MaxQueuedCommands, count)
	}
	if len(buf) != CommandBufferBytes {
		t.Fatalf("expected buffer to stay at the fixed size %d even when truncating, got %d", CommandBufferBytes, len(buf))
	}
}

func TestEncodeCommandBufferRecordRoundTrip(t *testing.T) {
	cmds := []Command{
		{Type: CommandSeedProtocells, X: 4, Y: 5, Z: 6, Radius: 1, Param0: 150, Param1: 0},
	}
	buf := EncodeCommandBuffer(cmds)

	base := CommandBufferHeaderWords * 4
	var words [CommandWords]uint32
	for i := 0; i < CommandWords; i++ {
		off := base + i*4
		words[i] = uint32(buf[off]) | uint32(buf[off+1])<<8 | uint32(buf[off+2])<<16 | uint32(buf[off+3])<<24
	}
	got := CommandFromWords(words)
	if got != cmds[0] {
		t.Fatalf("decoded first record mismatch: got %+v, want %+v", got, cmds[0])
	}
}
