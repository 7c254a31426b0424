package protocell

// HostBridge is the single owned structure carrying all host-side input
// and tool state; it is passed explicitly into every event handler
// rather than living behind a shared-mutable singleton. It accumulates
// commands the tick pipeline drains at the next tick boundary.
type HostBridge struct {
	queue []Command

	Tool        ToolID
	BrushRadius int
	Overlay     OverlayMode

	lastMouseX, lastMouseY int
	mouseButtons           uint8
}

// NewHostBridge returns a bridge with no tool selected and a brush
// radius of 1.
func NewHostBridge() *HostBridge {
	return &HostBridge{
		Tool:        ToolNone,
		BrushRadius: 1,
	}
}

// Enqueue appends a command to the pending queue. The queue is
// unbounded on the host side; truncation to MaxQueuedCommands happens
// at drain time, matching the "excess discarded this tick" rule.
func (hb *HostBridge) Enqueue(cmd Command) {
	hb.queue = append(hb.queue, cmd.ClampRadius())
}

// Drain removes and returns up to MaxQueuedCommands pending commands,
// discarding any beyond that. Call once per tick-bearing frame, only on
// the first tick of a multi-tick frame.
func (hb *HostBridge) Drain() []Command {
	if len(hb.queue) == 0 {
		return nil
	}
	n := len(hb.queue)
	if n > MaxQueuedCommands {
		n = MaxQueuedCommands
	}
	drained := make([]Command, n)
	copy(drained, hb.queue[:n])
	hb.queue = hb.queue[:0]
	return drained
}

// Pending reports how many commands are currently queued, mostly useful
// for diagnostics.
func (hb *HostBridge) Pending() int { return len(hb.queue) }

// SetTool selects the active paint tool; an out-of-range id maps to
// ToolNone rather than erroring.
func (hb *HostBridge) SetTool(id uint32) {
	hb.Tool = ClampToolID(id)
}

// SetBrushRadius clamps r to [0, MaxBrushRadius] before storing it.
func (hb *HostBridge) SetBrushRadius(r int) {
	hb.BrushRadius = ClampBrushRadius(r)
}

// SetOverlayMode installs m as the active overlay.
func (hb *HostBridge) SetOverlayMode(m OverlayMode) {
	hb.Overlay = m
}

// CycleOverlayMode advances the overlay mode by one, wrapping modulo
// OverlayModeCount. Bound to the 't' key.
func (hb *HostBridge) CycleOverlayMode() {
	hb.Overlay = hb.Overlay.Next()
}

// OnMouseMove records cursor deltas and the held-button mask. buttons is
// a small bitmask; bit 0 is the primary paint button.
func (hb *HostBridge) OnMouseMove(dx, dy int, buttons uint8) {
	hb.lastMouseX += dx
	hb.lastMouseY += dy
	hb.mouseButtons = buttons
}

// OnMouseDown records a screen-space click at (cx,cy) as the cursor
// position and marks the primary button held; it queues no command and
// does not use the (cw,ch) viewport size. The caller (renderer/input
// glue) is responsible for the actual ray projection and for calling
// PaintAt once a target voxel is known, keeping the core free of
// camera/projection concerns.
func (hb *HostBridge) OnMouseDown(cx, cy, cw, ch int) {
	hb.lastMouseX, hb.lastMouseY = cx, cy
	hb.mouseButtons = 1
}

// PaintAt queues the command that the currently selected tool implies
// at grid coordinate (x,y,z), using the bridge's current brush radius.
// ToolNone queues nothing.
func (hb *HostBridge) PaintAt(x, y, z int, param0, param1 float32) {
	var cmd Command
	switch hb.Tool {
	case ToolNone:
		return
	case ToolWall:
		cmd = Command{Type: CommandPlaceVoxel, X: x, Y: y, Z: z, Radius: hb.BrushRadius, Param0: float32(TypeWall)}
	case ToolEnergySource:
		cmd = Command{Type: CommandPlaceVoxel, X: x, Y: y, Z: z, Radius: hb.BrushRadius, Param0: float32(TypeEnergySource)}
	case ToolNutrient:
		cmd = Command{Type: CommandPlaceVoxel, X: x, Y: y, Z: z, Radius: hb.BrushRadius, Param0: float32(TypeNutrient)}
	case ToolSeed:
		cmd = Command{Type: CommandSeedProtocells, X: x, Y: y, Z: z, Radius: hb.BrushRadius, Param0: param0, Param1: param1}
	case ToolToxin:
		cmd = Command{Type: CommandApplyToxin, X: x, Y: y, Z: z, Radius: hb.BrushRadius, Param0: param0}
	case ToolRemove:
		cmd = Command{Type: CommandRemoveVoxel, X: x, Y: y, Z: z, Radius: hb.BrushRadius}
	case ToolHeatSource:
		cmd = Command{Type: CommandPlaceVoxel, X: x, Y: y, Z: z, Radius: hb.BrushRadius, Param0: float32(TypeHeatSource)}
	case ToolColdSource:
		cmd = Command{Type: CommandPlaceVoxel, X: x, Y: y, Z: z, Radius: hb.BrushRadius, Param0: float32(TypeColdSource)}
	default:
		return
	}
	hb.Enqueue(cmd)
}

// Key codes the bridge recognizes on OnKeyDown. Anything else is ignored.
const KeyCycleOverlay = 't'

// OnKeyDown handles a single recognized key press.
func (hb *HostBridge) OnKeyDown(key rune) {
	switch key {
	case KeyCycleOverlay:
		hb.CycleOverlayMode()
	}
}
