// Package detector computes Write-Write, Read-Write, and Trigger race
// hazards over an internal/ir.Design. It is pure: no I/O, no global state,
// deterministic given the same Design and Options.
package detector

import "github.com/robert-at-pretension-io/vracer/internal/ir"

// Options enables or disables each hazard family independently; all three
// default to true.
type Options struct {
	EnableWW bool
	EnableRW bool
	EnableTR bool
}

// DefaultOptions returns every detector class enabled.
func DefaultOptions() Options {
	return Options{EnableWW: true, EnableRW: true, EnableTR: true}
}

// Detect computes every race hazard in design under opts, sorted by the
// canonical order (kind priority, target signal, anchor_a, anchor_b) with no
// duplicates. Process pairs within a module are iterated in lexicographic
// label order so the records a given (module, pair, signal) contributes are
// always built in the same sequence run to run.
func Detect(design ir.Design, opts Options) []ir.RaceRecord {
	var out []ir.RaceRecord

	for _, mod := range design.Modules {
		procs := make([]ir.Process, len(mod.Processes))
		copy(procs, mod.Processes)
		sortProcessesByLabel(procs)

		for ai := 0; ai < len(procs); ai++ {
			for bi := ai + 1; bi < len(procs); bi++ {
				p, q := procs[ai], procs[bi]
				if p.Label >= q.Label {
					p, q = q, p
				}
				if opts.EnableWW {
					out = append(out, detectWW(mod.Name, p, q)...)
				}
				if opts.EnableRW {
					out = append(out, detectRW(mod.Name, p, q)...)
				}
				if opts.EnableTR {
					out = append(out, detectTR(mod.Name, p, q)...)
				}
			}
		}
	}

	out = ir.Dedup(out)
	sortRecords(out)
	return out
}

func sortProcessesByLabel(procs []ir.Process) {
	for i := 1; i < len(procs); i++ {
		for j := i; j > 0 && procs[j].Label < procs[j-1].Label; j-- {
			procs[j], procs[j-1] = procs[j-1], procs[j]
		}
	}
}

func sortRecords(records []ir.RaceRecord) {
	for i := 1; i < len(records); i++ {
		for j := i; j > 0 && records[j].Less(records[j-1]); j-- {
			records[j], records[j-1] = records[j-1], records[j]
		}
	}
}

// firstBlockingWriteAnchor returns the anchor of the first (lowest AnchorID)
// blocking write of signal s in p's reference list, and whether one exists.
func firstBlockingWriteAnchor(p ir.Process, s string) (ir.Anchor, bool) {
	best := -1
	for _, r := range p.References {
		if r.Mode != ir.Write || r.Assign != ir.Blocking || r.Signal != s {
			continue
		}
		if best == -1 || r.AnchorID < best {
			best = r.AnchorID
		}
	}
	if best == -1 {
		return ir.Anchor{}, false
	}
	return anchorByID(p, best), true
}

// firstReadAnchor returns the anchor of the first read of signal s in p.
func firstReadAnchor(p ir.Process, s string) (ir.Anchor, bool) {
	best := -1
	for _, r := range p.References {
		if r.Mode != ir.Read || r.Signal != s {
			continue
		}
		if best == -1 || r.AnchorID < best {
			best = r.AnchorID
		}
	}
	if best == -1 {
		return ir.Anchor{}, false
	}
	return anchorByID(p, best), true
}

func anchorByID(p ir.Process, id int) ir.Anchor {
	for _, a := range p.Anchors {
		if a.ID == id {
			return a
		}
	}
	// Every reference is produced alongside a valid anchor id by the
	// extractor; a miss here would be a bug upstream, not a normal
	// not-found case, so fall back to anchor 0 (the entry anchor) rather
	// than panic.
	if len(p.Anchors) > 0 {
		return p.Anchors[0]
	}
	return ir.Anchor{}
}

func blockingWriteSignals(p ir.Process) map[string]bool {
	out := map[string]bool{}
	for _, r := range p.References {
		if r.Mode == ir.Write && r.Assign == ir.Blocking {
			out[r.Signal] = true
		}
	}
	return out
}

func readSignals(p ir.Process) map[string]bool {
	out := map[string]bool{}
	for _, r := range p.References {
		if r.Mode == ir.Read {
			out[r.Signal] = true
		}
	}
	return out
}

func anyWriteSignals(p ir.Process) map[string]bool {
	out := map[string]bool{}
	for _, r := range p.References {
		if r.Mode == ir.Write {
			out[r.Signal] = true
		}
	}
	return out
}

// detectWW emits one record per signal blocking-written by both p and q.
func detectWW(moduleName string, p, q ir.Process) []ir.RaceRecord {
	pw := blockingWriteSignals(p)
	qw := blockingWriteSignals(q)
	var out []ir.RaceRecord
	for s := range pw {
		if !qw[s] {
			continue
		}
		aAnchor, _ := firstBlockingWriteAnchor(p, s)
		bAnchor, _ := firstBlockingWriteAnchor(q, s)
		out = append(out, ir.RaceRecord{
			Kind: ir.WW, ModuleName: moduleName,
			ProcessA: p.Label, ProcessB: q.Label,
			TargetSignal: s, SourceSignal: s,
			AnchorA: aAnchor, AnchorB: bAnchor,
		})
	}
	return out
}

// detectRW emits one record per signal read by one side and
// blocking-written by the other; at most one per signal per pair, with the
// reader canonically in anchor_a.
func detectRW(moduleName string, p, q ir.Process) []ir.RaceRecord {
	pr, qr := readSignals(p), readSignals(q)
	pw, qw := blockingWriteSignals(p), blockingWriteSignals(q)

	var out []ir.RaceRecord
	seen := map[string]bool{}
	add := func(reader, writer ir.Process, s string) {
		if seen[s] {
			return
		}
		seen[s] = true
		readAnchor, _ := firstReadAnchor(reader, s)
		writeAnchor, _ := firstBlockingWriteAnchor(writer, s)
		out = append(out, ir.RaceRecord{
			Kind: ir.RW, ModuleName: moduleName,
			ProcessA: reader.Label, ProcessB: writer.Label,
			TargetSignal: s, SourceSignal: s,
			AnchorA: readAnchor, AnchorB: writeAnchor,
		})
	}
	for s := range pr {
		if qw[s] {
			add(p, q, s)
		}
	}
	for s := range qr {
		if pw[s] {
			add(q, p, s)
		}
	}
	return out
}

// detectTR emits one record if p and q share a trigger (structural
// equality) and also share a written signal, unless either process is
// excluded from trigger analysis (NoneInitial).
func detectTR(moduleName string, p, q ir.Process) []ir.RaceRecord {
	if !p.ParticipatesInTR() || !q.ParticipatesInTR() {
		return nil
	}
	pt := p.EffectiveTriggers()
	qt := q.EffectiveTriggers()

	var shared ir.Trigger
	found := false
	for _, a := range pt {
		for _, b := range qt {
			if a.Equal(b) {
				shared = a
				found = true
				break
			}
		}
		if found {
			break
		}
	}
	if !found {
		return nil
	}

	pw, qw := anyWriteSignals(p), anyWriteSignals(q)
	sharedSignal, haveSignal := "", false
	for s := range pw {
		if !qw[s] {
			continue
		}
		if !haveSignal || s < sharedSignal {
			sharedSignal = s
			haveSignal = true
		}
	}
	if !haveSignal {
		return nil
	}

	entryA := p.Anchors[0]
	entryB := q.Anchors[0]
	return []ir.RaceRecord{{
		Kind: ir.TR, ModuleName: moduleName,
		ProcessA: p.Label, ProcessB: q.Label,
		TargetSignal: sharedSignal, SourceSignal: shared.String(),
		AnchorA: entryA, AnchorB: entryB,
	}}
}
