package ir

import "testing"

func TestEffectiveTriggersExpandsStarFromReads(t *testing.T) {
	p := &Process{
		Triggers: []Trigger{{Kind: StarImplicit}},
		References: []SignalReference{
			{Signal: "a", Mode: Read},
			{Signal: "b", Mode: Read},
			{Signal: "out", Mode: Write},
		},
	}
	eff := p.EffectiveTriggers()
	if len(eff) != 2 {
		t.Fatalf("expected 2 effective triggers (one per distinct read), got %d: %+v", len(eff), eff)
	}
	seen := map[string]bool{}
	for _, tr := range eff {
		if tr.Kind != Level {
			t.Fatalf("expected Level triggers from star expansion, got %v", tr.Kind)
		}
		seen[tr.Signal] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Fatalf("expected triggers for a and b, got %+v", eff)
	}
}

func TestEffectiveTriggersPassesThroughExplicit(t *testing.T) {
	p := &Process{Triggers: []Trigger{{Kind: EdgePos, Signal: "clk"}}}
	eff := p.EffectiveTriggers()
	if len(eff) != 1 || !eff[0].Equal(Trigger{Kind: EdgePos, Signal: "clk"}) {
		t.Fatalf("expected explicit trigger passed through unchanged, got %+v", eff)
	}
}

func TestParticipatesInTR(t *testing.T) {
	initial := &Process{Triggers: []Trigger{{Kind: NoneInitial}}}
	if initial.ParticipatesInTR() {
		t.Fatalf("initial process should never participate in trigger hazard analysis")
	}
	clocked := &Process{Triggers: []Trigger{{Kind: EdgePos, Signal: "clk"}}}
	if !clocked.ParticipatesInTR() {
		t.Fatalf("a clocked process should participate in trigger hazard analysis")
	}
}

func TestDedupRemovesDuplicateFiveTuples(t *testing.T) {
	mk := func(target, a, b string) RaceRecord {
		return RaceRecord{Kind: WW, TargetSignal: target, AnchorA: Anchor{Label: a}, AnchorB: Anchor{Label: b}}
	}
	in := []RaceRecord{
		mk("q", "p1@clk", "p2@clk"),
		mk("q", "p1@clk", "p2@clk"),
		mk("q", "p1@clk", "p3@clk"),
	}
	out := Dedup(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 unique records after dedup, got %d", len(out))
	}
}

func TestRaceRecordLessOrdersByKindThenSignalThenAnchors(t *testing.T) {
	ww := RaceRecord{Kind: WW, TargetSignal: "z", AnchorA: Anchor{Label: "a"}, AnchorB: Anchor{Label: "b"}}
	rw := RaceRecord{Kind: RW, TargetSignal: "a", AnchorA: Anchor{Label: "a"}, AnchorB: Anchor{Label: "b"}}
	if !ww.Less(rw) {
		t.Fatalf("expected WW to sort before RW regardless of signal name")
	}
	a := RaceRecord{Kind: WW, TargetSignal: "sig", AnchorA: Anchor{Label: "p1@a"}, AnchorB: Anchor{Label: "p2@a"}}
	b := RaceRecord{Kind: WW, TargetSignal: "sig", AnchorA: Anchor{Label: "p1@b"}, AnchorB: Anchor{Label: "p2@a"}}
	if !a.Less(b) {
		t.Fatalf("expected anchor_a label to break ties within same kind/signal")
	}
}

func TestTriggerEqualIsStructural(t *testing.T) {
	a := Trigger{Kind: EdgePos, Signal: "clk"}
	b := Trigger{Kind: EdgePos, Signal: "clk"}
	c := Trigger{Kind: EdgeNeg, Signal: "clk"}
	if !a.Equal(b) {
		t.Fatalf("expected identical triggers to be equal")
	}
	if a.Equal(c) {
		t.Fatalf("expected posedge and negedge on the same signal to differ")
	}
}
