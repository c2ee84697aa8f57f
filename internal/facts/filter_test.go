package facts

import "testing"

func TestFilterTablesByModulesKeepsOnlyMatchingRows(t *testing.T) {
	tables := Tables{
		Modules:   []ModuleRow{{Name: "top"}, {Name: "sub"}},
		Processes: []ProcessRow{{Module: "top", Label: "p0"}, {Module: "sub", Label: "p1"}},
	}

	out := FilterTablesByModules(tables, map[string]bool{"top": true})

	if len(out.Modules) != 1 || out.Modules[0].Name != "top" {
		t.Fatalf("expected only the top module row, got %+v", out.Modules)
	}
	if len(out.Processes) != 1 || out.Processes[0].Module != "top" {
		t.Fatalf("expected only top's process row, got %+v", out.Processes)
	}
}

func TestFilterTablesByModulesEmptySetReturnsEmptyTables(t *testing.T) {
	tables := Tables{Modules: []ModuleRow{{Name: "top"}}}
	out := FilterTablesByModules(tables, nil)
	if len(out.Modules) != 0 {
		t.Fatalf("expected no rows with an empty module set, got %+v", out.Modules)
	}
}
