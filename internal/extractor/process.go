package extractor

import (
	"github.com/robert-at-pretension-io/vracer/internal/ir"
)

// parseProcessAt parses one top-level process construct starting at
// toks[i] (toks[i].Text is one of processKeywords). It returns the built
// Process, the index of the construct's last token (its closing "end" or
// terminating ";"), and any diagnostics raised along the way.
func parseProcessAt(file string, src []byte, toks []Token, i int, label string) (ir.Process, int, []ir.Diagnostic, error) {
	var diags []ir.Diagnostic
	kind := processKindFor(toks[i].Text)

	j := i + 1
	var triggers []ir.Trigger
	switch kind {
	case ir.AlwaysGeneral, ir.AlwaysFF:
		if j < len(toks) && toks[j].Kind == Punct && toks[j].Text == "@" {
			j++
			if j < len(toks) && toks[j].Kind == Punct && toks[j].Text == "*" {
				triggers = []ir.Trigger{{Kind: ir.StarImplicit}}
				j++
			} else if j < len(toks) && toks[j].Kind == Punct && toks[j].Text == "(" {
				if j+1 < len(toks) && toks[j+1].Kind == Punct && toks[j+1].Text == "*" {
					triggers = []ir.Trigger{{Kind: ir.StarImplicit}}
					end := matchParen(toks, j)
					if end < 0 {
						return ir.Process{}, 0, diags, &ir.ParseError{File: file, Offset: toks[j].Pos, Reason: "unterminated sensitivity list"}
					}
					j = end + 1
				} else {
					end := matchParen(toks, j)
					if end < 0 {
						return ir.Process{}, 0, diags, &ir.ParseError{File: file, Offset: toks[j].Pos, Reason: "unterminated sensitivity list"}
					}
					triggers = parseSensitivityList(toks[j+1 : end])
					j = end + 1
				}
			}
		}
	case ir.AlwaysComb, ir.AlwaysLatch:
		triggers = []ir.Trigger{{Kind: ir.StarImplicit}}
		if j < len(toks) && toks[j].Kind == Punct && toks[j].Text == "@" {
			j++
			if j < len(toks) && toks[j].Text == "*" {
				j++
			} else if j < len(toks) && toks[j].Text == "(" {
				end := matchParen(toks, j)
				if end >= 0 {
					j = end + 1
				}
			}
		}
	default: // Initial, Final
		triggers = []ir.Trigger{{Kind: ir.NoneInitial}}
	}

	if j >= len(toks) {
		return ir.Process{}, 0, diags, &ir.ParseError{File: file, Offset: toks[i].Pos, Reason: "process construct truncated"}
	}

	hasBegin := toks[j].Kind == Word && toks[j].Text == "begin"
	bodyStart := j
	if hasBegin {
		if j+2 < len(toks) && toks[j+1].Kind == Punct && toks[j+1].Text == ":" && toks[j+2].Kind == Word {
			label = toks[j+2].Text
		}
	}

	var bodyContentStart, bodyContentEnd, lastTokenIdx int
	if hasBegin {
		end := scanBlockFrom(toks, bodyStart)
		if end < 0 {
			return ir.Process{}, 0, diags, &ir.ParseError{File: file, Offset: toks[bodyStart].Pos, Reason: "unterminated begin"}
		}
		bodyContentStart = bodyStart + 1
		bodyContentEnd = end
		lastTokenIdx = end
	} else {
		end := indexOfSemicolon(toks, bodyStart, len(toks))
		if end >= len(toks) {
			return ir.Process{}, 0, diags, &ir.ParseError{File: file, Offset: toks[bodyStart].Pos, Reason: "unterminated process statement"}
		}
		bodyContentStart = bodyStart
		bodyContentEnd = end
		lastTokenIdx = end
	}

	entryDesc := triggerSetDesc(triggers)
	proc := ir.Process{
		Kind:     kind,
		Label:    label,
		Triggers: triggers,
		Anchors:  []ir.Anchor{{ID: 0, Label: ir.EntryAnchorLabel(label, entryDesc)}},
	}

	refs, anchors, bodyDiags := walkBody(file, src, label, toks, bodyContentStart, bodyContentEnd)
	proc.Anchors = append(proc.Anchors, anchors...)
	proc.References = refs
	diags = append(diags, bodyDiags...)

	return proc, lastTokenIdx, diags, nil
}

func processKindFor(w string) ir.ProcessKind {
	switch w {
	case "always":
		return ir.AlwaysGeneral
	case "always_ff":
		return ir.AlwaysFF
	case "always_comb":
		return ir.AlwaysComb
	case "always_latch":
		return ir.AlwaysLatch
	case "final":
		return ir.Final
	default:
		return ir.Initial
	}
}

// triggerSetDesc renders a trigger list the same way a sensitivity list
// reads in source, joined with "or" — used only for the entry anchor label
// suffix when a process has multiple edges.
func triggerSetDesc(triggers []ir.Trigger) string {
	if len(triggers) == 0 {
		return "none"
	}
	out := triggers[0].String()
	for _, t := range triggers[1:] {
		out += " or " + t.String()
	}
	return out
}

// parseSensitivityList splits the contents of an explicit @(...) list on
// top-level commas and the "or" keyword, classifying each item as an edge or
// level trigger.
func parseSensitivityList(toks []Token) []ir.Trigger {
	var items [][]Token
	depth := 0
	start := 0
	for i, t := range toks {
		if t.Kind == Punct && (t.Text == "(" || t.Text == "[") {
			depth++
		}
		if t.Kind == Punct && (t.Text == ")" || t.Text == "]") {
			depth--
		}
		isSep := depth == 0 && ((t.Kind == Punct && t.Text == ",") || (t.Kind == Word && t.Text == "or"))
		if isSep {
			items = append(items, toks[start:i])
			start = i + 1
		}
	}
	items = append(items, toks[start:])

	var out []ir.Trigger
	for _, item := range items {
		if len(item) == 0 {
			continue
		}
		switch {
		case item[0].Kind == Word && item[0].Text == "posedge" && len(item) > 1:
			out = append(out, ir.Trigger{Kind: ir.EdgePos, Signal: item[1].Text})
		case item[0].Kind == Word && item[0].Text == "negedge" && len(item) > 1:
			out = append(out, ir.Trigger{Kind: ir.EdgeNeg, Signal: item[1].Text})
		case item[0].Kind == Word:
			out = append(out, ir.Trigger{Kind: ir.Level, Signal: item[0].Text})
		}
	}
	return out
}

// parseLValueChain consumes an assignment target: a base identifier
// followed by any run of bit/part-selects ([...]) or field accesses (.name),
// which are skipped for naming purposes (the base name is the signal
// identity) but whose bracketed index expressions are themselves reads.
func parseLValueChain(toks []Token, i, limit int) (base string, next int, extraReads []string) {
	base = toks[i].Text
	j := i + 1
	for j < limit {
		if toks[j].Kind == Punct && toks[j].Text == "[" {
			end := matchBracket(toks, j)
			if end < 0 || end >= limit {
				break
			}
			extraReads = append(extraReads, identifiersIn(toks[j+1:end])...)
			j = end + 1
			continue
		}
		if toks[j].Kind == Punct && toks[j].Text == "." && j+1 < limit && toks[j+1].Kind == Word {
			j += 2
			continue
		}
		break
	}
	return base, j, extraReads
}

func collectReads(toks []Token, anchor int, refs *[]ir.SignalReference) {
	for _, name := range identifiersIn(toks) {
		*refs = append(*refs, ir.SignalReference{Signal: name, Mode: ir.Read, AnchorID: anchor})
	}
}

func addWrite(refs *[]ir.SignalReference, name string, assign ir.AssignmentKind, anchor int) {
	*refs = append(*refs, ir.SignalReference{Signal: name, Mode: ir.Write, Assign: assign, AnchorID: anchor})
}

func addRead(refs *[]ir.SignalReference, name string, anchor int) {
	*refs = append(*refs, ir.SignalReference{Signal: name, Mode: ir.Read, AnchorID: anchor})
}

// walkBody interprets the statements between bodyContentStart (exclusive of
// a leading "begin") and bodyContentEnd (exclusive of the trailing
// "end"/";"), building the signal-reference list and the embedded-anchor
// list. It never recurses: begin/end/fork/join/case/endcase are treated as
// no-op structural markers, since the enclosing span is already known to be
// balanced by the caller — only if/case conditions, wait(...), disable, and
// assignment/call statements carry semantic content.
func walkBody(file string, src []byte, label string, toks []Token, start, end int) ([]ir.SignalReference, []ir.Anchor, []ir.Diagnostic) {
	var refs []ir.SignalReference
	var anchors []ir.Anchor
	var diags []ir.Diagnostic

	currentAnchor := 0
	anchorID := 0
	eventIdx := 0

	i := start
	for i < end {
		tok := toks[i]

		switch {
		case tok.Kind == Punct && tok.Text == "@":
			j := i + 1
			desc := "*"
			if j < end && toks[j].Kind == Punct && toks[j].Text == "*" {
				j++
			} else if j < end && toks[j].Kind == Punct && toks[j].Text == "(" {
				pend := matchParen(toks, j)
				if pend < 0 || pend > end {
					diags = append(diags, ir.Diagnostic{Kind: ir.UnsupportedConstruct, File: file, Line: lineOf(src, tok.Pos), Message: "unterminated embedded event control"})
					j = end
				} else {
					trigs := parseSensitivityList(toks[j+1 : pend])
					desc = triggerSetDesc(trigs)
					j = pend + 1
				}
			} else if j < end && toks[j].Kind == Word {
				desc = toks[j].Text
				j++
			}
			eventIdx++
			anchorID++
			anchors = append(anchors, ir.Anchor{ID: anchorID, Label: ir.EventAnchorLabel(label, desc, eventIdx)})
			currentAnchor = anchorID
			i = j

		case tok.Kind == Word && tok.Text == "wait" && i+1 < end && toks[i+1].Kind == Punct && toks[i+1].Text == "(":
			pend := matchParen(toks, i+1)
			if pend < 0 || pend > end {
				i = end
				continue
			}
			collectReads(toks[i+2:pend], currentAnchor, &refs)
			eventIdx++
			anchorID++
			anchors = append(anchors, ir.Anchor{ID: anchorID, Label: ir.EventAnchorLabel(label, "wait", eventIdx)})
			currentAnchor = anchorID
			i = pend + 1

		case tok.Kind == Word && tok.Text == "if" && i+1 < end && toks[i+1].Kind == Punct && toks[i+1].Text == "(":
			pend := matchParen(toks, i+1)
			if pend < 0 || pend > end {
				i = end
				continue
			}
			collectReads(toks[i+2:pend], currentAnchor, &refs)
			i = pend + 1

		case tok.Kind == Word && (tok.Text == "case" || tok.Text == "casex" || tok.Text == "casez") && i+1 < end && toks[i+1].Kind == Punct && toks[i+1].Text == "(":
			pend := matchParen(toks, i+1)
			if pend < 0 || pend > end {
				i = end
				continue
			}
			collectReads(toks[i+2:pend], currentAnchor, &refs)
			i = pend + 1

		case tok.Kind == Word && tok.Text == "disable":
			i++
			if i < end && toks[i].Kind == Word {
				i++
			}

		case tok.Kind == Word && readOnlySystemTasks[tok.Text]:
			if i+1 < end && toks[i+1].Kind == Punct && toks[i+1].Text == "(" {
				pend := matchParen(toks, i+1)
				if pend < 0 || pend > end {
					i = end
					continue
				}
				collectReads(toks[i+2:pend], currentAnchor, &refs)
				i = pend + 1
			} else {
				i++
			}

		case tok.Kind == Word && nonSignalWords[tok.Text]:
			i++

		case tok.Kind == Word:
			base, afterLHS, extraReads := parseLValueChain(toks, i, end)
			for _, r := range extraReads {
				addRead(&refs, r, currentAnchor)
			}
			switch {
			case afterLHS < end && toks[afterLHS].Kind == Punct && toks[afterLHS].Text == nonBlockingOp:
				addWrite(&refs, base, ir.NonBlocking, currentAnchor)
				rhsEnd := indexOfSemicolon(toks, afterLHS+1, end)
				collectReads(toks[afterLHS+1:rhsEnd], currentAnchor, &refs)
				i = rhsEnd + 1
			case afterLHS < end && toks[afterLHS].Kind == Punct && blockingAssignOps[toks[afterLHS].Text]:
				op := toks[afterLHS].Text
				addWrite(&refs, base, ir.Blocking, currentAnchor)
				if compoundReadOps[op] {
					addRead(&refs, base, currentAnchor)
				}
				if op == "++" || op == "--" {
					i = afterLHS + 1
				} else {
					rhsEnd := indexOfSemicolon(toks, afterLHS+1, end)
					collectReads(toks[afterLHS+1:rhsEnd], currentAnchor, &refs)
					i = rhsEnd + 1
				}
			case afterLHS < end && toks[afterLHS].Kind == Punct && toks[afterLHS].Text == "(":
				pend := matchParen(toks, afterLHS)
				if pend < 0 || pend > end {
					i = end
					continue
				}
				collectReads(toks[afterLHS+1:pend], currentAnchor, &refs)
				i = pend + 1
			default:
				addRead(&refs, base, currentAnchor)
				i = afterLHS
			}

		default:
			i++
		}
	}

	return refs, anchors, diags
}

