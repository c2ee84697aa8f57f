// Package ir defines the analysis-ready intermediate representation that the
// extractor produces and the detector consumes: modules, processes,
// sensitivity anchors, and signal reference sets.
package ir

import "fmt"

// ProcessKind distinguishes the six process constructs VRacer understands.
type ProcessKind int

const (
	AlwaysGeneral ProcessKind = iota
	AlwaysFF
	AlwaysComb
	AlwaysLatch
	Initial
	Final
)

func (k ProcessKind) String() string {
	switch k {
	case AlwaysGeneral:
		return "always"
	case AlwaysFF:
		return "always_ff"
	case AlwaysComb:
		return "always_comb"
	case AlwaysLatch:
		return "always_latch"
	case Initial:
		return "initial"
	case Final:
		return "final"
	default:
		return "unknown"
	}
}

// NetKind is the declared kind of a Module-level net.
type NetKind int

const (
	Wire NetKind = iota
	Reg
	Int
	Real
	Unresolved
)

func (k NetKind) String() string {
	switch k {
	case Wire:
		return "wire"
	case Reg:
		return "reg"
	case Int:
		return "int"
	case Real:
		return "real"
	default:
		return "unresolved"
	}
}

// Net is a declared signal of a Module: a wire, reg/logic, int, or real.
type Net struct {
	Name  string
	Width int
	Kind  NetKind
}

// TriggerKind tags the variant of a Trigger.
type TriggerKind int

const (
	EdgePos TriggerKind = iota
	EdgeNeg
	Level
	StarImplicit
	NoneInitial
)

// Trigger is a tagged variant over the sensitivity semantics a process can
// have: a posedge/negedge edge on a signal, a level on a signal, the
// synthesised implicit star of always_comb/always_latch, or the absence of
// triggers for initial/final blocks. Equality is structural: two triggers
// are equal iff Kind and Signal both match.
type Trigger struct {
	Kind   TriggerKind
	Signal string // empty for StarImplicit and NoneInitial
}

// Equal reports whether two triggers are structurally identical — the
// matching rule the race detector uses for trigger-set intersection.
func (t Trigger) Equal(o Trigger) bool {
	return t.Kind == o.Kind && t.Signal == o.Signal
}

func (t Trigger) String() string {
	switch t.Kind {
	case EdgePos:
		return "posedge " + t.Signal
	case EdgeNeg:
		return "negedge " + t.Signal
	case Level:
		return t.Signal
	case StarImplicit:
		return "*"
	default:
		return "none"
	}
}

// Anchor designates a point within a process's execution: the entry point,
// or an embedded event control (@(...), wait(...)) encountered lexically in
// the body. Anchor ids are assigned in lexical order starting at 0.
type Anchor struct {
	ID    int
	Label string // "<process-label>@<desc>" or "<process-label>@<desc>#<k>"
}

// EntryAnchorLabel formats the label of a process's entry anchor from its
// trigger-set description (e.g. "posedge clk" or "posedge clk or negedge
// rst", "*", "none").
func EntryAnchorLabel(processLabel, triggerSetDesc string) string {
	return fmt.Sprintf("%s@%s", processLabel, triggerSetDesc)
}

// EventAnchorLabel formats the label of the k-th embedded event control
// anchor (k is 1-based, matching the order the control appears in the body).
func EventAnchorLabel(processLabel, eventDesc string, k int) string {
	return fmt.Sprintf("%s@%s#%d", processLabel, eventDesc, k)
}

// Mode is whether a Signal Reference reads or writes its signal.
type Mode int

const (
	Read Mode = iota
	Write
)

// AssignmentKind distinguishes blocking from non-blocking assignments; N/A
// applies to pure reads, which carry no assignment semantics.
type AssignmentKind int

const (
	NA AssignmentKind = iota
	Blocking
	NonBlocking
)

// SignalReference is the atomic analyzer input: one read or write of one
// signal, at one anchor, with an assignment kind (for writes).
type SignalReference struct {
	Signal   string
	Mode     Mode
	Assign   AssignmentKind
	AnchorID int
}

// Process is one top-level concurrent construct: an always/always_ff/
// always_comb/always_latch/initial/final block.
type Process struct {
	Kind       ProcessKind
	Label      string
	Triggers   []Trigger
	Anchors    []Anchor
	References []SignalReference
}

// HasTrigger reports whether t is structurally present in the process's
// trigger set.
func (p *Process) HasTrigger(t Trigger) bool {
	for _, pt := range p.Triggers {
		if pt.Equal(t) {
			return true
		}
	}
	return false
}

// EffectiveTriggers returns the trigger set used for trigger-race matching.
// StarImplicit expands to Level(r) for every signal the process reads — this
// must happen at detection time, not parse time, so that the raw
// StarImplicit marker stays available for anything that needs to know the
// sensitivity was implicit (see DESIGN.md on why this is not folded into
// Triggers during parsing).
func (p *Process) EffectiveTriggers() []Trigger {
	star := false
	var out []Trigger
	for _, t := range p.Triggers {
		if t.Kind == StarImplicit {
			star = true
			continue
		}
		out = append(out, t)
	}
	if !star {
		return out
	}
	seen := make(map[string]bool)
	for _, ref := range p.References {
		if ref.Mode != Read {
			continue
		}
		if seen[ref.Signal] {
			continue
		}
		seen[ref.Signal] = true
		out = append(out, Trigger{Kind: Level, Signal: ref.Signal})
	}
	return out
}

// ParticipatesInTR reports whether this process can take part in trigger
// hazard analysis at all (initial/final processes never do).
func (p *Process) ParticipatesInTR() bool {
	for _, t := range p.Triggers {
		if t.Kind == NoneInitial {
			return false
		}
	}
	return true
}

// Module is a Verilog module: its declared parameters, nets, and the
// ordered processes inside it.
type Module struct {
	Name       string
	Parameters map[string]string
	Nets       map[string]Net
	Processes  []Process
}

// Design is the ordered sequence of Modules produced by one analysis
// invocation. Immutable once built.
type Design struct {
	Modules []Module
}

// RaceKind is the hazard family a Race Record belongs to.
type RaceKind int

const (
	WW RaceKind = iota
	RW
	TR
)

func (k RaceKind) String() string {
	switch k {
	case WW:
		return "WW"
	case RW:
		return "RW"
	case TR:
		return "TR"
	default:
		return "?"
	}
}

// priority orders kinds for the canonical sort: WW < RW < TR.
func (k RaceKind) priority() int { return int(k) }

// RaceRecord is one detected hazard: a pair of anchors, in a pair of
// processes, tied back to the signal(s) they share.
type RaceRecord struct {
	Kind         RaceKind
	ModuleName   string
	ProcessA     string
	ProcessB     string
	TargetSignal string
	SourceSignal string
	AnchorA      Anchor
	AnchorB      Anchor

	// Suppressed is set by the optional policy stage (internal/policy); the
	// detector and aggregator never set it. A suppressed record stays in the
	// result — it is flagged, not dropped.
	Suppressed   bool   `json:"suppressed"`
	SuppressedBy string `json:"suppressedBy,omitempty"`
}

// Less implements the canonical ordering from spec §4.4: kind priority,
// then target signal, then anchor_a label, then anchor_b label.
func (r RaceRecord) Less(o RaceRecord) bool {
	if r.Kind.priority() != o.Kind.priority() {
		return r.Kind.priority() < o.Kind.priority()
	}
	if r.TargetSignal != o.TargetSignal {
		return r.TargetSignal < o.TargetSignal
	}
	if r.AnchorA.Label != o.AnchorA.Label {
		return r.AnchorA.Label < o.AnchorA.Label
	}
	return r.AnchorB.Label < o.AnchorB.Label
}

// key is the 5-tuple identity used for deduplication.
func (r RaceRecord) key() [5]string {
	return [5]string{
		r.Kind.String(), r.TargetSignal, r.SourceSignal, r.AnchorA.Label, r.AnchorB.Label,
	}
}

// Dedup returns records with duplicate 5-tuples removed, in their original
// relative order.
func Dedup(records []RaceRecord) []RaceRecord {
	seen := make(map[[5]string]bool, len(records))
	out := make([]RaceRecord, 0, len(records))
	for _, r := range records {
		k := r.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
