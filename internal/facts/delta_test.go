package facts

import "testing"

func TestComputeDeltaFindsAddedAndRemovedRows(t *testing.T) {
	prev := Tables{Modules: []ModuleRow{{Name: "top", ProcessCount: 1}}}
	next := Tables{Modules: []ModuleRow{{Name: "top", ProcessCount: 2}, {Name: "sub", ProcessCount: 1}}}

	delta := ComputeDelta(prev, next)

	if len(delta.Added.Modules) != 2 {
		t.Fatalf("expected 2 added module rows (changed top + new sub), got %+v", delta.Added.Modules)
	}
	if len(delta.Removed.Modules) != 1 || delta.Removed.Modules[0].Name != "top" {
		t.Fatalf("expected the stale top row to be removed, got %+v", delta.Removed.Modules)
	}
}

func TestComputeDeltaIsEmptyForIdenticalSnapshots(t *testing.T) {
	tables := Tables{Modules: []ModuleRow{{Name: "top", ProcessCount: 1}}}
	delta := ComputeDelta(tables, tables)
	if len(delta.Added.Modules) != 0 || len(delta.Removed.Modules) != 0 {
		t.Fatalf("expected no delta between identical snapshots, got %+v", delta)
	}
}
