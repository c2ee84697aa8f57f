package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/robert-at-pretension-io/vracer/internal/config"
)

func writeVerilog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testConfig(files []string, cacheDir string, cacheEnabled bool) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Files = files
	cfg.Cache.Dir = cacheDir
	enabled := cacheEnabled
	cfg.Cache.Enabled = &enabled
	return cfg
}

func TestRunCombinesModulesFromTwoFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeVerilog(t, dir, "a.v", `module a();
  always @(posedge clk) begin
    count1++;
  end
endmodule`)
	b := writeVerilog(t, dir, "b.v", `module b();
  always @(posedge clk) begin
    count1 <= count1 + 1;
  end
endmodule`)

	cfg := testConfig([]string{a, b}, filepath.Join(dir, ".cache"), false)
	d := New(cfg)

	report, err := d.Run(dir, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Files) != 2 {
		t.Fatalf("expected 2 file outcomes, got %d", len(report.Files))
	}
	for _, f := range report.Files {
		if f.Err != nil {
			t.Fatalf("unexpected file error for %s: %v", f.File, f.Err)
		}
	}
	if len(report.Design.Modules) != 2 {
		t.Fatalf("expected 2 modules in the combined design, got %d", len(report.Design.Modules))
	}
}

func TestRunSurfacesIoErrorWithoutAbortingOtherFiles(t *testing.T) {
	dir := t.TempDir()
	ok := writeVerilog(t, dir, "ok.v", "module ok(); endmodule")
	missing := filepath.Join(dir, "missing.v")

	cfg := testConfig(nil, filepath.Join(dir, ".cache"), false)
	d := New(cfg)

	report, err := d.Run(dir, []string{ok, missing})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var sawOK, sawErr bool
	for _, f := range report.Files {
		if f.File == ok && f.Err == nil {
			sawOK = true
		}
		if f.File == missing && f.Err != nil {
			sawErr = true
		}
	}
	if !sawOK || !sawErr {
		t.Fatalf("expected ok.v to succeed and missing.v to fail independently: %+v", report.Files)
	}
}

func TestRunPopulatesCacheOnSecondRun(t *testing.T) {
	dir := t.TempDir()
	a := writeVerilog(t, dir, "a.v", "module a(); initial begin count1++; end endmodule")
	cacheDir := filepath.Join(dir, ".cache")
	cfg := testConfig([]string{a}, cacheDir, true)

	d1 := New(cfg)
	if _, err := d1.Run(dir, nil); err != nil {
		t.Fatalf("first run: %v", err)
	}

	d2 := New(cfg)
	report, err := d2.Run(dir, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(report.Files) != 1 || !report.Files[0].FromCache {
		t.Fatalf("expected second run to be served from cache: %+v", report.Files)
	}
}

func TestRunResolvesFilesFromConfigWhenNoPathsGiven(t *testing.T) {
	dir := t.TempDir()
	writeVerilog(t, dir, "top.v", "module top(); endmodule")

	cfg := testConfig([]string{"*.v"}, filepath.Join(dir, ".cache"), false)
	d := New(cfg)

	report, err := d.Run(dir, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Files) != 1 {
		t.Fatalf("expected config glob to resolve exactly one file, got %d", len(report.Files))
	}
}
