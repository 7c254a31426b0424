package protocell

// ActionType is the action a protocell declares intent to perform against
// a target cell, packed into bits [3:5] of an intent word.
type ActionType uint8

const (
	ActionNone ActionType = iota
	ActionDie
	ActionPredate
	ActionReplicate
	ActionMove
	ActionIdle
)

const (
	intentDirectionBits = 3
	intentDirectionMask = (1 << intentDirectionBits) - 1

	intentActionShift = intentDirectionBits
	intentActionBits  = 3
	intentActionMask  = (1 << intentActionBits) - 1

	intentBidShift = intentActionShift + intentActionBits // 6
	intentBidBits  = 32 - intentBidShift                  // 26
	intentBidMask  = (1 << intentBidBits) - 1

	// MaxIntentBid is the largest value the 26-bit bid field can hold.
	MaxIntentBid = intentBidMask
)

// Intent is the packed 32-bit word a protocell atomically combines into
// its target cell's intent slot during the declaration phase: direction
// toward the acting cell, the action it wants to perform, and a bid used
// to arbitrate conflicting claims on the same target.
type Intent struct {
	Direction Axis
	Action    ActionType
	Bid       uint32
}

// NoIntent is an intent with no action and a zero bid; it arbitrates to
// nothing. Intent slots are cleared to word 0 at the start of every
// tick, which decodes to the same action and bid with AxisPlusX as its
// direction.
var NoIntent = Intent{Direction: AxisSelf, Action: ActionNone, Bid: 0}

// Encode packs the intent into a single 32-bit word.
func (in Intent) Encode() uint32 {
	bid := in.Bid
	if bid > intentBidMask {
		bid = intentBidMask
	}
	return uint32(in.Direction)&intentDirectionMask |
		(uint32(in.Action)&intentActionMask)<<intentActionShift |
		bid<<intentBidShift
}

// DecodeIntent unpacks a 32-bit intent word.
func DecodeIntent(word uint32) Intent {
	return Intent{
		Direction: Axis(word & intentDirectionMask),
		Action:    ActionType((word >> intentActionShift) & intentActionMask),
		Bid:       (word >> intentBidShift) & intentBidMask,
	}
}

// Combine resolves two competing intents on the same target cell using
// the monotonic atomic-max rule the GPU declaration phase relies on:
// whichever encoded word is numerically larger wins, which by
// construction means higher bids win regardless of direction or action.
func (in Intent) Combine(other Intent) Intent {
	if other.Encode() > in.Encode() {
		return other
	}
	return in
}
