package facts

// FilterTablesByModules returns a new Tables containing only rows whose
// module name is present in modules.
func FilterTablesByModules(tables Tables, modules map[string]bool) Tables {
	if len(modules) == 0 {
		return emptyTables()
	}
	out := emptyTables()

	for _, row := range tables.Modules {
		if modules[row.Name] {
			out.Modules = append(out.Modules, row)
		}
	}
	for _, row := range tables.Nets {
		if modules[row.Module] {
			out.Nets = append(out.Nets, row)
		}
	}
	for _, row := range tables.Processes {
		if modules[row.Module] {
			out.Processes = append(out.Processes, row)
		}
	}
	for _, row := range tables.Triggers {
		if modules[row.Module] {
			out.Triggers = append(out.Triggers, row)
		}
	}
	for _, row := range tables.Anchors {
		if modules[row.Module] {
			out.Anchors = append(out.Anchors, row)
		}
	}
	for _, row := range tables.SignalReferences {
		if modules[row.Module] {
			out.SignalReferences = append(out.SignalReferences, row)
		}
	}
	for _, row := range tables.Races {
		if modules[row.Module] {
			out.Races = append(out.Races, row)
		}
	}

	return out
}

// FilterDeltaByModules returns a new Delta containing only rows for the
// specified modules.
func FilterDeltaByModules(delta Delta, modules map[string]bool) Delta {
	if len(modules) == 0 {
		return Delta{Added: emptyTables(), Removed: emptyTables()}
	}
	return Delta{
		Added:   FilterTablesByModules(delta.Added, modules),
		Removed: FilterTablesByModules(delta.Removed, modules),
	}
}
