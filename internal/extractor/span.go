package extractor

// span.go holds the small generic scanners every extraction function is
// built from: matching parens/brackets, matching nested block openers
// against their closers, and pulling bare identifiers out of a token range.

// matchParen returns the index of the ')' matching an '(' at toks[open].
// Returns -1 if unbalanced before the token stream ends.
func matchParen(toks []Token, open int) int {
	return matchPunctPair(toks, open, "(", ")")
}

// matchBracket returns the index of the ']' matching a '[' at toks[open].
func matchBracket(toks []Token, open int) int {
	return matchPunctPair(toks, open, "[", "]")
}

func matchPunctPair(toks []Token, open int, o, c string) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		if toks[i].Kind != Punct {
			continue
		}
		switch toks[i].Text {
		case o:
			depth++
		case c:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// scanBlockFrom treats toks[open] as a block-opening keyword (one of the
// keys of opensFor) and returns the index of its matching closer, honoring
// arbitrary nesting of any opener/closer pair in opensFor (a case inside a
// begin inside a fork, etc.). Returns -1 if the stream ends unbalanced.
func scanBlockFrom(toks []Token, open int) int {
	if toks[open].Kind != Word || !isOpener(toks[open].Text) {
		return -1
	}
	stack := []string{toks[open].Text}
	for i := open + 1; i < len(toks); i++ {
		if toks[i].Kind != Word {
			continue
		}
		w := toks[i].Text
		if len(stack) > 0 && closesOpener(stack[len(stack)-1], w) {
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
			continue
		}
		if isOpener(w) {
			stack = append(stack, w)
		}
	}
	return -1
}

// indexOfSemicolon returns the index of the first top-level ';' at or after
// start (top-level meaning outside any paren/bracket nesting), stopping at
// limit. Returns limit if none is found.
func indexOfSemicolon(toks []Token, start, limit int) int {
	depth := 0
	for i := start; i < limit; i++ {
		if toks[i].Kind != Punct {
			continue
		}
		switch toks[i].Text {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		case ";":
			if depth <= 0 {
				return i
			}
		}
	}
	return limit
}

// nonSignalWords are keywords/operators that never denote a signal name,
// used to filter bare identifiers out of a read range.
var nonSignalWords = map[string]bool{
	"posedge": true, "negedge": true, "or": true,
	"begin": true, "end": true, "fork": true, "join": true, "join_any": true, "join_none": true,
	"case": true, "casex": true, "casez": true, "endcase": true, "default": true,
	"if": true, "else": true, "wait": true, "disable": true,
}

// identifiersIn returns the base signal names (Word tokens, with reserved
// words, process keywords and the readOnlySystemTasks names filtered out)
// found anywhere in the given range.
func identifiersIn(toks []Token) []string {
	var out []string
	for _, t := range toks {
		if t.Kind != Word {
			continue
		}
		if nonSignalWords[t.Text] || processKeywords[t.Text] || readOnlySystemTasks[t.Text] {
			continue
		}
		out = append(out, t.Text)
	}
	return out
}
