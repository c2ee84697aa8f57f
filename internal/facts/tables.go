// Package facts flattens VRacer's tree-shaped IR (internal/ir.Design) into
// a relational fact model: flat, independently-joinable tables, the shape
// cmd/vracer-facts dumps and the shape a Datalog-style consumer downstream
// of VRacer would actually want to query, rather than walking the nested
// Design/Module/Process tree itself.
package facts

import (
	"sort"

	"github.com/robert-at-pretension-io/vracer/internal/ir"
)

// Tables is the relational fact model: one slice per relation, flat rows.
type Tables struct {
	Modules          []ModuleRow          `json:"modules"`
	Nets             []NetRow             `json:"nets"`
	Processes        []ProcessRow         `json:"processes"`
	Triggers         []TriggerRow         `json:"triggers"`
	Anchors          []AnchorRow          `json:"anchors"`
	SignalReferences []SignalReferenceRow `json:"signal_references"`
	Races            []RaceRow            `json:"races"`
}

type ModuleRow struct {
	Name         string `json:"name"`
	ProcessCount int    `json:"process_count"`
	NetCount     int    `json:"net_count"`
}

type NetRow struct {
	Module string `json:"module"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Kind   string `json:"kind"`
}

type ProcessRow struct {
	Module string `json:"module"`
	Label  string `json:"label"`
	Kind   string `json:"kind"`
}

type TriggerRow struct {
	Module  string `json:"module"`
	Process string `json:"process"`
	Kind    string `json:"kind"`
	Signal  string `json:"signal"`
}

type AnchorRow struct {
	Module  string `json:"module"`
	Process string `json:"process"`
	ID      int    `json:"id"`
	Label   string `json:"label"`
}

type SignalReferenceRow struct {
	Module   string `json:"module"`
	Process  string `json:"process"`
	Signal   string `json:"signal"`
	Mode     string `json:"mode"`
	Assign   string `json:"assign"`
	AnchorID int    `json:"anchor_id"`
}

type RaceRow struct {
	Kind         string `json:"kind"`
	Module       string `json:"module"`
	ProcessA     string `json:"process_a"`
	ProcessB     string `json:"process_b"`
	TargetSignal string `json:"target_signal"`
	SourceSignal string `json:"source_signal"`
	AnchorA      string `json:"anchor_a"`
	AnchorB      string `json:"anchor_b"`
	Suppressed   bool   `json:"suppressed"`
	SuppressedBy string `json:"suppressed_by"`
}

func modeString(m ir.Mode) string {
	if m == ir.Write {
		return "write"
	}
	return "read"
}

func assignString(a ir.AssignmentKind) string {
	switch a {
	case ir.Blocking:
		return "blocking"
	case ir.NonBlocking:
		return "non_blocking"
	default:
		return "na"
	}
}

// BuildTables flattens a Design and its detected Race Records into a
// relational fact model.
func BuildTables(design ir.Design, races []ir.RaceRecord) Tables {
	tables := emptyTables()

	for _, m := range design.Modules {
		tables.Modules = append(tables.Modules, ModuleRow{
			Name:         m.Name,
			ProcessCount: len(m.Processes),
			NetCount:     len(m.Nets),
		})

		netNames := make([]string, 0, len(m.Nets))
		for name := range m.Nets {
			netNames = append(netNames, name)
		}
		sort.Strings(netNames)
		for _, name := range netNames {
			n := m.Nets[name]
			tables.Nets = append(tables.Nets, NetRow{
				Module: m.Name,
				Name:   n.Name,
				Width:  n.Width,
				Kind:   n.Kind.String(),
			})
		}

		for _, p := range m.Processes {
			tables.Processes = append(tables.Processes, ProcessRow{
				Module: m.Name,
				Label:  p.Label,
				Kind:   p.Kind.String(),
			})
			for _, t := range p.Triggers {
				tables.Triggers = append(tables.Triggers, TriggerRow{
					Module:  m.Name,
					Process: p.Label,
					Kind:    t.String(),
					Signal:  t.Signal,
				})
			}
			for _, a := range p.Anchors {
				tables.Anchors = append(tables.Anchors, AnchorRow{
					Module:  m.Name,
					Process: p.Label,
					ID:      a.ID,
					Label:   a.Label,
				})
			}
			for _, r := range p.References {
				tables.SignalReferences = append(tables.SignalReferences, SignalReferenceRow{
					Module:   m.Name,
					Process:  p.Label,
					Signal:   r.Signal,
					Mode:     modeString(r.Mode),
					Assign:   assignString(r.Assign),
					AnchorID: r.AnchorID,
				})
			}
		}
	}

	for _, r := range races {
		tables.Races = append(tables.Races, RaceRow{
			Kind:         r.Kind.String(),
			Module:       r.ModuleName,
			ProcessA:     r.ProcessA,
			ProcessB:     r.ProcessB,
			TargetSignal: r.TargetSignal,
			SourceSignal: r.SourceSignal,
			AnchorA:      r.AnchorA.Label,
			AnchorB:      r.AnchorB.Label,
			Suppressed:   r.Suppressed,
			SuppressedBy: r.SuppressedBy,
		})
	}

	sort.Slice(tables.Modules, func(i, j int) bool { return tables.Modules[i].Name < tables.Modules[j].Name })

	return tables
}

func emptyTables() Tables {
	return Tables{
		Modules:          []ModuleRow{},
		Nets:             []NetRow{},
		Processes:        []ProcessRow{},
		Triggers:         []TriggerRow{},
		Anchors:          []AnchorRow{},
		SignalReferences: []SignalReferenceRow{},
		Races:            []RaceRow{},
	}
}
