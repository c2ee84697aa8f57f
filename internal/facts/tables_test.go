package facts

import (
	"testing"

	"github.com/robert-at-pretension-io/vracer/internal/ir"
)

func sampleDesign() ir.Design {
	return ir.Design{
		Modules: []ir.Module{{
			Name:       "top",
			Parameters: map[string]string{},
			Nets: map[string]ir.Net{
				"clk": {Name: "clk", Width: 1, Kind: ir.Wire},
			},
			Processes: []ir.Process{{
				Kind:     ir.AlwaysFF,
				Label:    "p0",
				Triggers: []ir.Trigger{{Kind: ir.EdgePos, Signal: "clk"}},
				Anchors:  []ir.Anchor{{ID: 0, Label: "p0@posedge clk"}},
				References: []ir.SignalReference{
					{Signal: "q", Mode: ir.Write, Assign: ir.NonBlocking, AnchorID: 0},
					{Signal: "d", Mode: ir.Read, AnchorID: 0},
				},
			}},
		}},
	}
}

func TestBuildTablesFlattensModulesAndReferences(t *testing.T) {
	tables := BuildTables(sampleDesign(), nil)

	if len(tables.Modules) != 1 || tables.Modules[0].Name != "top" {
		t.Fatalf("expected one module row for top, got %+v", tables.Modules)
	}
	if len(tables.Nets) != 1 || tables.Nets[0].Name != "clk" {
		t.Fatalf("expected one net row for clk, got %+v", tables.Nets)
	}
	if len(tables.Processes) != 1 || tables.Processes[0].Label != "p0" {
		t.Fatalf("expected one process row for p0, got %+v", tables.Processes)
	}
	if len(tables.SignalReferences) != 2 {
		t.Fatalf("expected 2 signal reference rows, got %d", len(tables.SignalReferences))
	}
}

func TestBuildTablesFlattensRaceRecords(t *testing.T) {
	races := []ir.RaceRecord{{
		Kind:         ir.WW,
		ModuleName:   "top",
		ProcessA:     "p0",
		ProcessB:     "p1",
		TargetSignal: "count1",
		AnchorA:      ir.Anchor{ID: 0, Label: "p0@none"},
		AnchorB:      ir.Anchor{ID: 0, Label: "p1@none"},
	}}

	tables := BuildTables(ir.Design{}, races)
	if len(tables.Races) != 1 || tables.Races[0].Kind != "WW" {
		t.Fatalf("expected one WW race row, got %+v", tables.Races)
	}
}

func TestBuildTablesNeverReturnsNilSlices(t *testing.T) {
	tables := BuildTables(ir.Design{}, nil)
	if tables.Modules == nil || tables.Nets == nil || tables.Processes == nil ||
		tables.Triggers == nil || tables.Anchors == nil || tables.SignalReferences == nil || tables.Races == nil {
		t.Fatalf("expected every relation to default to an empty, non-nil slice: %+v", tables)
	}
}
