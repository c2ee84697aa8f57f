package validator

import (
	"testing"

	"github.com/robert-at-pretension-io/vracer/internal/ir"
)

func TestValidatorAcceptsWellFormedDesign(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	design := ir.Design{
		Modules: []ir.Module{{
			Name:       "top",
			Parameters: map[string]string{},
			Nets:       map[string]ir.Net{"clk": {Name: "clk", Width: 1, Kind: ir.Wire}},
			Processes: []ir.Process{{
				Kind:  ir.AlwaysFF,
				Label: "p0",
				Triggers: []ir.Trigger{{Kind: ir.EdgePos, Signal: "clk"}},
				Anchors:  []ir.Anchor{{ID: 0, Label: "p0@posedge clk"}},
				References: []ir.SignalReference{{
					Signal: "q", Mode: ir.Write, Assign: ir.NonBlocking, AnchorID: 0,
				}},
			}},
		}},
	}

	if err := v.Validate(design); err != nil {
		t.Fatalf("expected valid design, got %v", err)
	}
}

func TestValidatorRejectsEmptySignalName(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	design := ir.Design{
		Modules: []ir.Module{{
			Name:       "top",
			Parameters: map[string]string{},
			Nets:       map[string]ir.Net{},
			Processes: []ir.Process{{
				Kind:  ir.Initial,
				Label: "p0",
				Anchors: []ir.Anchor{{ID: 0, Label: "p0@none"}},
				References: []ir.SignalReference{{
					Signal: "", Mode: ir.Write, Assign: ir.Blocking, AnchorID: 0,
				}},
			}},
		}},
	}

	if err := v.Validate(design); err == nil {
		t.Fatalf("expected validation error for empty signal name")
	}
}

func TestOutputValidatorAcceptsRaceRecordList(t *testing.T) {
	ov, err := NewOutputValidator()
	if err != nil {
		t.Fatalf("new output validator: %v", err)
	}

	records := []ir.RaceRecord{{
		Kind:         ir.WW,
		ModuleName:   "top",
		ProcessA:     "p0",
		ProcessB:     "p1",
		TargetSignal: "count1",
		AnchorA:      ir.Anchor{ID: 0, Label: "p0@none"},
		AnchorB:      ir.Anchor{ID: 0, Label: "p1@none"},
	}}

	if err := ov.Validate(records); err != nil {
		t.Fatalf("expected valid race record list, got %v", err)
	}
}

func TestOutputValidatorRejectsMissingTargetSignal(t *testing.T) {
	ov, err := NewOutputValidator()
	if err != nil {
		t.Fatalf("new output validator: %v", err)
	}

	records := []ir.RaceRecord{{
		Kind:       ir.WW,
		ModuleName: "top",
		ProcessA:   "p0",
		ProcessB:   "p1",
		AnchorA:    ir.Anchor{ID: 0, Label: "p0@none"},
		AnchorB:    ir.Anchor{ID: 0, Label: "p1@none"},
	}}

	if err := ov.Validate(records); err == nil {
		t.Fatalf("expected validation error for missing target signal")
	}
}

func TestValidateReportRunsBothGates(t *testing.T) {
	design := ir.Design{
		Modules: []ir.Module{{
			Name:       "top",
			Parameters: map[string]string{},
			Nets:       map[string]ir.Net{},
			Processes: []ir.Process{{
				Kind:    ir.Initial,
				Label:   "p0",
				Anchors: []ir.Anchor{{ID: 0, Label: "p0@none"}},
			}},
		}},
	}
	records := []ir.RaceRecord{{
		Kind:         ir.WW,
		ModuleName:   "top",
		ProcessA:     "p0",
		ProcessB:     "p1",
		TargetSignal: "count1",
		AnchorA:      ir.Anchor{ID: 0, Label: "p0@none"},
		AnchorB:      ir.Anchor{ID: 0, Label: "p1@none"},
	}}

	if err := ValidateReport(design, records); err != nil {
		t.Fatalf("expected both gates to pass, got %v", err)
	}
}
