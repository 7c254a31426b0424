package protocell

import "testing"

func TestIntentEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Intent{
		NoIntent,
		{Direction: AxisPlusX, Action: ActionMove, Bid: 12345},
		{Direction: AxisMinusZ, Action: ActionReplicate, Bid: MaxIntentBid},
		{Direction: AxisSelf, Action: ActionDie, Bid: 0},
	}
	for _, in := range cases {
		got := DecodeIntent(in.Encode())
		if got != in {
			t.Fatalf("round-trip mismatch: got %+v, want %+v", got, in)
		}
	}
}

func TestIntentBidIsClampedToItsFieldWidth(t *testing.T) {
	in := Intent{Direction: AxisPlusY, Action: ActionPredate, Bid: MaxIntentBid + 100}
	got := DecodeIntent(in.Encode())
	if got.Bid != MaxIntentBid {
		t.Fatalf("expected bid to clamp to the 26-bit field width %d, got %d", MaxIntentBid, got.Bid)
	}
}

func TestIntentCombinePicksHigherBid(t *testing.T) {
	low := Intent{Direction: AxisPlusX, Action: ActionMove, Bid: 100}
	high := Intent{Direction: AxisMinusX, Action: ActionMove, Bid: 200}

	if got := low.Combine(high); got != high {
		t.Fatalf("expected higher bid to win, got %+v", got)
	}
	if got := high.Combine(low); got != high {
		t.Fatalf("expected higher bid to win regardless of combine order, got %+v", got)
	}
}

func TestIntentCombineWithNoIntentAlwaysLoses(t *testing.T) {
	in := Intent{Direction: AxisPlusZ, Action: ActionIdle, Bid: 1}
	if got := NoIntent.Combine(in); got != in {
		t.Fatalf("any nonzero intent should beat NoIntent, got %+v", got)
	}
}

func TestIntentCombineIsStableOnTie(t *testing.T) {
	a := Intent{Direction: AxisPlusX, Action: ActionMove, Bid: 50}
	b := a
	if got := a.Combine(b); got != a {
		t.Fatalf("combining equal intents should keep the existing one, got %+v", got)
	}
}
