package facts

// Delta captures added and removed fact rows between two snapshots — for
// example, the fact tables from two successive runs of the driver over the
// same tree, to see what a source edit changed.
type Delta struct {
	Added   Tables `json:"added"`
	Removed Tables `json:"removed"`
}

// ComputeDelta computes row-level additions and removals between two
// snapshots.
func ComputeDelta(prev, next Tables) Delta {
	return Delta{
		Added:   diffTables(prev, next),
		Removed: diffTables(next, prev),
	}
}

func diffTables(from, to Tables) Tables {
	out := emptyTables()
	out.Modules = diffRows(from.Modules, to.Modules, func(r ModuleRow) string {
		return r.Name + "|" + intKey(r.ProcessCount) + "|" + intKey(r.NetCount)
	})
	out.Nets = diffRows(from.Nets, to.Nets, func(r NetRow) string {
		return r.Module + "|" + r.Name + "|" + intKey(r.Width) + "|" + r.Kind
	})
	out.Processes = diffRows(from.Processes, to.Processes, func(r ProcessRow) string {
		return r.Module + "|" + r.Label + "|" + r.Kind
	})
	out.Triggers = diffRows(from.Triggers, to.Triggers, func(r TriggerRow) string {
		return r.Module + "|" + r.Process + "|" + r.Kind + "|" + r.Signal
	})
	out.Anchors = diffRows(from.Anchors, to.Anchors, func(r AnchorRow) string {
		return r.Module + "|" + r.Process + "|" + intKey(r.ID) + "|" + r.Label
	})
	out.SignalReferences = diffRows(from.SignalReferences, to.SignalReferences, func(r SignalReferenceRow) string {
		return r.Module + "|" + r.Process + "|" + r.Signal + "|" + r.Mode + "|" + r.Assign + "|" + intKey(r.AnchorID)
	})
	out.Races = diffRows(from.Races, to.Races, func(r RaceRow) string {
		return r.Kind + "|" + r.Module + "|" + r.ProcessA + "|" + r.ProcessB + "|" + r.TargetSignal + "|" + r.AnchorA + "|" + r.AnchorB
	})
	return out
}

func diffRows[T any](from, to []T, key func(T) string) []T {
	fromSet := make(map[string]T, len(from))
	for _, row := range from {
		fromSet[key(row)] = row
	}
	diff := []T{}
	for _, row := range to {
		if _, ok := fromSet[key(row)]; !ok {
			diff = append(diff, row)
		}
	}
	return diff
}

func intKey(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
