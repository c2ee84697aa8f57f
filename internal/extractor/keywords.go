package extractor

// opensFor maps a depth-opening keyword to the keywords that close it. Most
// close on exactly one spelling; fork closes on any of join/join_any/
// join_none, so it gets its own entry.
var opensFor = map[string][]string{
	"begin":    {"end"},
	"fork":     {"join", "join_any", "join_none"},
	"case":     {"endcase"},
	"casex":    {"endcase"},
	"casez":    {"endcase"},
	"module":   {"endmodule"},
	"generate": {"endgenerate"},
	"function": {"endfunction"},
	"task":     {"endtask"},
}

func isOpener(w string) bool {
	_, ok := opensFor[w]
	return ok
}

func closesOpener(opener, w string) bool {
	for _, c := range opensFor[opener] {
		if c == w {
			return true
		}
	}
	return false
}

// processKeywords identifies the start of a top-level process construct.
var processKeywords = map[string]bool{
	"always":       true,
	"always_ff":    true,
	"always_comb":  true,
	"always_latch": true,
	"initial":      true,
	"final":        true,
}

// blockingAssignOps are operators that both write and (for compound forms)
// read their LHS, classified as blocking.
var blockingAssignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
	"++": true, "--": true,
}

// compoundReadOps is the subset of blockingAssignOps that also reads the
// LHS: every operator except plain "=" ("++"/"--" included, since they read
// the value they update).
var compoundReadOps = map[string]bool{
	"+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
	"++": true, "--": true,
}

const nonBlockingOp = "<="

// readOnlySystemTasks never write a signal; their arguments are reads only.
// Grounded on spec.md §6's enumerated system tasks.
var readOnlySystemTasks = map[string]bool{
	"$display": true, "$write": true, "$strobe": true, "$monitor": true,
	"$time": true, "$realtime": true, "$random": true, "$urandom": true,
	"$urandom_range": true, "$timeformat": true, "assert": true,
}

// netKeywords are declaration keywords the extractor recognizes for Module
// nets. "input"/"output"/"inout" ports are folded in as wire unless later
// redeclared reg/logic (common in older Verilog) — we keep it simple and
// tag ports as wire, which is corrected if a reg/logic declaration for the
// same name follows.
var netKeywords = map[string]bool{
	"wire": true, "reg": true, "logic": true, "integer": true, "real": true,
	"input": true, "output": true, "inout": true,
}
