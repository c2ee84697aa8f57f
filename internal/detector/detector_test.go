package detector

import (
	"testing"

	"github.com/robert-at-pretension-io/vracer/internal/extractor"
	"github.com/robert-at-pretension-io/vracer/internal/ir"
)

func extractOne(t *testing.T, src string) ir.Design {
	t.Helper()
	mods, diags, err := extractor.Extract("bench.v", []byte(src))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	return ir.Design{Modules: mods}
}

func countKind(records []ir.RaceRecord, k ir.RaceKind) int {
	n := 0
	for _, r := range records {
		if r.Kind == k {
			n++
		}
	}
	return n
}

// race1: two processes sharing the posedge clk trigger, each blocking-
// incrementing count1 (the ++ operator both reads and writes its own LHS,
// which is what makes the RW leg fire alongside the WW and TR legs).
// Invariant 4 excludes any process carrying NoneInitial from TR, so both
// sides here are always @(posedge clk) rather than literal initial blocks.
// Expect WW on count1, RW on count1, and TR on count1 (shared posedge clk):
// 3 records.
func TestDetectRace1(t *testing.T) {
	design := extractOne(t, `
module race1(input clk);
  always @(posedge clk) begin
    count1++;
  end
  always @(posedge clk) begin
    count1++;
  end
endmodule
`)
	records := Detect(design, DefaultOptions())
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(records), records)
	}
	if countKind(records, ir.WW) != 1 || countKind(records, ir.RW) != 1 || countKind(records, ir.TR) != 1 {
		t.Fatalf("expected exactly one WW, one RW, one TR, got %+v", records)
	}
}

// race2: two initial processes, each waiting on @(posedge clk) and then
// blocking-incrementing count1. NoneInitial excludes TR. Expect WW + RW = 2.
func TestDetectRace2(t *testing.T) {
	design := extractOne(t, `
module race2();
  initial begin
    @(posedge clk);
    count1++;
  end
  initial begin
    @(posedge clk);
    count1++;
  end
endmodule
`)
	records := Detect(design, DefaultOptions())
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}
	if countKind(records, ir.TR) != 0 {
		t.Fatalf("expected no TR records for two initial processes, got %+v", records)
	}
}

// race2_debug: two initial processes blocking-incrementing count1 (without
// race2's embedded @(posedge clk)), one of them also calling $display;
// $display arguments are reads, contribute no writes, and do not change the
// record count.
func TestDetectRace2Debug(t *testing.T) {
	design := extractOne(t, `
module race2_debug();
  initial begin
    count1++;
    $display("count1=%d", count1);
  end
  initial begin
    count1++;
  end
endmodule
`)
	records := Detect(design, DefaultOptions())
	if len(records) != 2 {
		t.Fatalf("expected 2 records (WW+RW on count1), got %d: %+v", len(records), records)
	}
}

// no_race / example_8: counter1 uses count1 <= count1 + 1 (non-blocking),
// counter2 uses blocking count2++ and reads count1. Zero records.
func TestDetectNoRace(t *testing.T) {
	design := extractOne(t, `
module no_race();
  always @(posedge clk) begin
    count1 <= count1 + 1;
  end
  always @(posedge clk) begin
    count2++;
    if (count1) count2++;
  end
endmodule
`)
	records := Detect(design, DefaultOptions())
	if len(records) != 0 {
		t.Fatalf("expected 0 records, got %d: %+v", len(records), records)
	}
}

// example_7 / example_6: purely non-blocking multiple-writer scenes, each
// process driving its own signal. Zero records of every kind: no two
// processes share a blocking write (WW needs blocking on both sides), no
// blocking writer exists at all (RW needs one), and the two processes
// share no common written signal (TR needs one even for non-blocking
// writes).
func TestDetectNonBlockingOnlyIsRaceFree(t *testing.T) {
	design := extractOne(t, `
module example_7();
  always @(posedge clk) begin
    q1 <= d1;
  end
  always @(posedge clk) begin
    q2 <= d2;
  end
endmodule
`)
	records := Detect(design, DefaultOptions())
	if len(records) != 0 {
		t.Fatalf("expected 0 records for non-blocking-only writers, got %+v", records)
	}
}

func TestDetectOptionMonotonicity(t *testing.T) {
	design := extractOne(t, `
module race1(input clk);
  always @(posedge clk) begin
    count1++;
  end
  always @(posedge clk) begin
    count1++;
  end
endmodule
`)
	full := Detect(design, DefaultOptions())
	noTR := Detect(design, Options{EnableWW: true, EnableRW: true, EnableTR: false})
	if len(noTR) != len(full)-countKind(full, ir.TR) {
		t.Fatalf("disabling TR should remove exactly the TR records: full=%d noTR=%d", len(full), len(noTR))
	}
	for _, r := range noTR {
		if r.Kind == ir.TR {
			t.Fatalf("did not expect any TR records with EnableTR=false")
		}
	}
}

func TestDetectDeterministicOrdering(t *testing.T) {
	design := extractOne(t, `
module accum();
  initial begin
    a = 1;
  end
  initial begin
    a = 2;
  end
  always @(posedge clk) begin
    b <= a;
  end
endmodule
`)
	r1 := Detect(design, DefaultOptions())
	r2 := Detect(design, DefaultOptions())
	if len(r1) != len(r2) {
		t.Fatalf("non-deterministic record count: %d vs %d", len(r1), len(r2))
	}
	for i := range r1 {
		if r1[i] != r2[i] {
			t.Fatalf("non-deterministic ordering at index %d: %+v vs %+v", i, r1[i], r2[i])
		}
	}
}

// accum_tb_race1: three processes drive rst/en/data_in/model with blocking
// assignments (the first two both blocking-write "en"), plus a monitor
// process that only reads them. Expect WW on the signal with two blocking
// writers, RW between the monitor's reads and each driver's blocking
// writes, and TR on the shared posedge clk trigger — this is the one
// benchmark scenario with more than two processes. Each pair shares at most
// one written signal ("en"), so it does not exercise how detectTR picks
// among several shared written signals.
func TestDetectAccumTBRace1(t *testing.T) {
	design := extractOne(t, `
module accum_tb_race1(input clk);
  always @(posedge clk) begin
    rst = 0;
    en = 1;
  end
  always @(posedge clk) begin
    en = 1;
    data_in = 7;
  end
  always @(posedge clk) begin
    model = data_in;
  end
  always @(posedge clk) begin
    $display("rst=%d en=%d data_in=%d model=%d", rst, en, data_in, model);
  end
endmodule
`)
	records := Detect(design, DefaultOptions())
	if countKind(records, ir.WW) == 0 {
		t.Fatalf("expected at least one WW record, got %+v", records)
	}
	if countKind(records, ir.RW) == 0 {
		t.Fatalf("expected at least one RW record, got %+v", records)
	}
	if countKind(records, ir.TR) == 0 {
		t.Fatalf("expected at least one TR record, got %+v", records)
	}
}

func TestDetectCanonicalSortOrder(t *testing.T) {
	design := extractOne(t, `
module m(input clk);
  always @(posedge clk) begin
    count1++;
  end
  always @(posedge clk) begin
    count1++;
  end
endmodule
`)
	records := Detect(design, DefaultOptions())
	for i := 1; i < len(records); i++ {
		if records[i].Less(records[i-1]) {
			t.Fatalf("records not in canonical order at %d: %+v before %+v", i, records[i-1], records[i])
		}
	}
}
