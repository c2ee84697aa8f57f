// Package extractor turns raw Verilog/Verilog-AMS source into the
// structural slice of internal/ir the detector needs: module boundaries,
// declared nets, and process constructs with their signal references. There
// is no hosted Verilog grammar anywhere in reach, so extraction works over a
// flat, depth-tracked token stream (see lexer.go) rather than a typed parse
// tree; see the philosophy note at the top of lexer.go.
package extractor

import (
	"fmt"

	"github.com/robert-at-pretension-io/vracer/internal/ir"
)

// Extract parses one source file into its Modules. A malformed module
// (unbalanced module/endmodule or begin/end nesting) aborts the whole file
// with a *ir.ParseError; anything else unsupported (generate blocks,
// functions, tasks, nested modules) is skipped with an ir.Diagnostic and
// extraction continues.
func Extract(file string, source []byte) ([]ir.Module, []ir.Diagnostic, error) {
	clean := stripCommentsAndDirectives(source)
	toks := lex(clean)

	var modules []ir.Module
	var diags []ir.Diagnostic

	for i := 0; i < len(toks); i++ {
		if toks[i].Kind != Word || toks[i].Text != "module" {
			continue
		}
		mod, end, modDiags, err := extractModule(file, clean, toks, i)
		if err != nil {
			return nil, diags, err
		}
		diags = append(diags, modDiags...)
		modules = append(modules, mod)
		i = end
	}

	return modules, diags, nil
}

// extractModule parses the module starting at toks[i] (toks[i].Text ==
// "module") through its matching "endmodule", returning the built Module
// and the index of the "endmodule" token.
func extractModule(file string, src []byte, toks []Token, i int) (ir.Module, int, []ir.Diagnostic, error) {
	end := scanBlockFrom(toks, i)
	if end < 0 {
		return ir.Module{}, 0, nil, &ir.ParseError{File: file, Offset: toks[i].Pos, Reason: "unterminated module (missing endmodule)"}
	}

	j := i + 1
	if j >= len(toks) || toks[j].Kind != Word {
		return ir.Module{}, 0, nil, &ir.ParseError{File: file, Offset: toks[i].Pos, Reason: "module missing name"}
	}
	name := toks[j].Text
	j++

	// Skip the parameter/port header — "#( ... )" then/or "( ... )" — up to
	// its terminating ";". The port list itself isn't needed: every file
	// this extractor has to handle re-declares each port's kind with an
	// input/output/wire/reg statement in the body.
	headerEnd := indexOfSemicolon(toks, j, end)

	mod := ir.Module{
		Name:       name,
		Parameters: map[string]string{},
		Nets:       map[string]ir.Net{},
	}

	var diags []ir.Diagnostic

	k := headerEnd + 1
	procIndex := 0
	for k < end {
		tok := toks[k]
		if tok.Kind != Word {
			k++
			continue
		}
		switch {
		case processKeywords[tok.Text]:
			label := fmt.Sprintf("c_%s_%d", tok.Text, procIndex)
			proc, lastIdx, procDiags, err := parseProcessAt(file, src, toks, k, label)
			if err != nil {
				return ir.Module{}, 0, diags, err
			}
			diags = append(diags, procDiags...)
			mod.Processes = append(mod.Processes, proc)
			procIndex++
			k = lastIdx + 1

		case tok.Text == "parameter" || tok.Text == "localparam":
			values, declEnd := parseParamDecl(toks, k, end)
			for name, val := range values {
				mod.Parameters[name] = val
			}
			k = declEnd + 1

		case netKeywords[tok.Text]:
			names, width, kind, declEnd := parseNetDecl(toks, k, end)
			for _, nm := range names {
				if existing, ok := mod.Nets[nm]; ok && kind == ir.Wire {
					// A bare port re-declared without an explicit kind keeps
					// whatever (more specific) kind it already has.
					mod.Nets[nm] = existing
					continue
				}
				mod.Nets[nm] = ir.Net{Name: nm, Width: width, Kind: kind}
			}
			k = declEnd + 1

		case tok.Text == "generate" || tok.Text == "function" || tok.Text == "task":
			declEnd := scanBlockFrom(toks, k)
			if declEnd < 0 || declEnd > end {
				diags = append(diags, ir.Diagnostic{Kind: ir.UnsupportedConstruct, File: file, Line: lineOf(src, tok.Pos), Message: fmt.Sprintf("unterminated %s", tok.Text)})
				k = end
				continue
			}
			diags = append(diags, ir.Diagnostic{Kind: ir.UnsupportedConstruct, File: file, Line: lineOf(src, tok.Pos), Message: fmt.Sprintf("%s block skipped", tok.Text)})
			k = declEnd + 1

		case tok.Text == "module":
			declEnd := scanBlockFrom(toks, k)
			if declEnd < 0 || declEnd > end {
				k = end
				continue
			}
			diags = append(diags, ir.Diagnostic{Kind: ir.UnsupportedConstruct, File: file, Line: lineOf(src, tok.Pos), Message: "nested module skipped"})
			k = declEnd + 1

		default:
			k++
		}
	}

	return mod, end, diags, nil
}

// parseParamDecl parses a "parameter"/"localparam" statement, which may
// declare several comma-separated name=value pairs and may carry an
// optional type keyword before each name (e.g. "parameter integer W = 8").
// Only the last identifier before "=" in each segment is taken as the name;
// the value is kept as the raw joined token text, opaque to the rest of the
// analyzer.
func parseParamDecl(toks []Token, i, limit int) (map[string]string, int) {
	out := map[string]string{}
	end := indexOfSemicolon(toks, i+1, limit)

	j := i + 1
	for j < end {
		var name string
		for j < end && !(toks[j].Kind == Punct && (toks[j].Text == "=" || toks[j].Text == ",")) {
			if toks[j].Kind == Word {
				name = toks[j].Text
			}
			j++
		}
		if j < end && toks[j].Kind == Punct && toks[j].Text == "=" {
			j++
			var val string
			for j < end && !(toks[j].Kind == Punct && toks[j].Text == ",") {
				val += toks[j].Text
				j++
			}
			if name != "" {
				out[name] = val
			}
		}
		if j < end && toks[j].Kind == Punct && toks[j].Text == "," {
			j++
		}
	}
	return out, end
}

// parseNetDecl parses a net/port declaration statement: an optional run of
// declaration keywords (input/output/inout/wire/reg/logic/integer/real), an
// optional "[hi:lo]" range, and a comma-separated identifier list.
func parseNetDecl(toks []Token, i, limit int) (names []string, width int, kind ir.NetKind, end int) {
	kind = ir.Wire
	j := i
	for j < limit && toks[j].Kind == Word && netKeywords[toks[j].Text] {
		switch toks[j].Text {
		case "reg", "logic":
			kind = ir.Reg
		case "integer":
			kind = ir.Int
		case "real":
			kind = ir.Real
		}
		j++
	}

	width = 1
	if j < limit && toks[j].Kind == Punct && toks[j].Text == "[" {
		rangeEnd := matchBracket(toks, j)
		if rangeEnd > j && rangeEnd < limit {
			width = parseRangeWidth(toks[j+1 : rangeEnd])
			j = rangeEnd + 1
		}
	}

	end = indexOfSemicolon(toks, j, limit)
	for k := j; k < end; k++ {
		if toks[k].Kind != Word {
			continue
		}
		if netKeywords[toks[k].Text] {
			continue
		}
		names = append(names, toks[k].Text)
		// Skip any unpacked-array dimension following the name.
		if k+1 < end && toks[k+1].Kind == Punct && toks[k+1].Text == "[" {
			dimEnd := matchBracket(toks, k+1)
			if dimEnd > k && dimEnd < end {
				k = dimEnd
			}
		}
	}
	return names, width, kind, end
}

// parseRangeWidth interprets a "hi:lo" bit-range body as a width; falls back
// to 1 when either bound isn't a plain numeric literal (parameterized
// widths like "[WIDTH-1:0]" are common and deliberately left unresolved —
// the detector never needs widths to decide hazards).
func parseRangeWidth(toks []Token) int {
	if len(toks) != 3 || toks[0].Kind != Number || toks[2].Kind != Number {
		return 1
	}
	hi, err1 := atoiSimple(toks[0].Text)
	lo, err2 := atoiSimple(toks[2].Text)
	if err1 != nil || err2 != nil {
		return 1
	}
	if hi < lo {
		hi, lo = lo, hi
	}
	return hi - lo + 1
}

func atoiSimple(s string) (int, error) {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a plain integer: %q", s)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
