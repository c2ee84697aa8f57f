// Package driver is the thin orchestration layer outside VRacer's two core
// components (the extractor and the detector): it resolves which files to
// analyze, runs extraction in parallel, builds the combined Design, runs
// the detector and aggregator, and optionally runs the CUE validator and
// the suppression policy.
package driver

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/robert-at-pretension-io/vracer/internal/config"
	"github.com/robert-at-pretension-io/vracer/internal/detector"
	"github.com/robert-at-pretension-io/vracer/internal/extractor"
	"github.com/robert-at-pretension-io/vracer/internal/ir"
	"github.com/robert-at-pretension-io/vracer/internal/policy"
	"github.com/robert-at-pretension-io/vracer/internal/validator"
)

// Driver runs VRacer's full pipeline over a set of files.
type Driver struct {
	Config *config.Config

	// Timing turns on JSONL stage/file timing events (see timing.go),
	// mirroring VRACER_TIMING/VRACER_TIMING_JSONL env var overrides.
	Timing     bool
	TimingPath string

	// Verbose prints per-file progress to stderr.
	Verbose bool

	// Validate runs the CUE schema gate over the result envelope before
	// policy evaluation.
	Validate bool

	cache *Cache
}

// New builds a Driver from cfg, falling back to config.DefaultConfig if cfg
// is nil.
func New(cfg *config.Config) *Driver {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Driver{Config: cfg}
}

// FileOutcome is one file's extraction/diagnostic result, reported back to
// the caller regardless of whether it fed into a successful Design.
type FileOutcome struct {
	File        string
	Diagnostics []ir.Diagnostic
	Err         error
	FromCache   bool
}

// Report is the end-to-end result of a Run: every file's outcome, the
// aggregated Design, and the final sorted, deduplicated Race Record list.
type Report struct {
	Files   []FileOutcome
	Design  ir.Design
	Records []ir.RaceRecord
}

// Run resolves paths (explicit files, or Config.Files globs against
// rootPath if paths is empty), extracts them in parallel, builds the
// Design, and runs the detector and aggregator. If Driver.Validate is set,
// the result envelope is validated against the embedded CUE schema before
// policy evaluation; if Config.PolicyFile is set, the policy stage marks
// records Suppressed in place.
func (d *Driver) Run(rootPath string, paths []string) (Report, error) {
	start := time.Now()
	timing := newTimingRecorder(start, d.resolveTimingPath(rootPath))
	defer timing.Close()

	files := paths
	if len(files) == 0 {
		resolved, err := d.Config.GetAllFiles(rootPath)
		if err != nil {
			return Report{}, fmt.Errorf("resolving files: %w", err)
		}
		files = resolved
	}

	if d.Config.Cache.Enabled != nil && *d.Config.Cache.Enabled {
		d.cache = NewCache(d.Config.Cache.Dir)
		if err := d.cache.Load(); err != nil {
			return Report{}, fmt.Errorf("loading cache: %w", err)
		}
	}

	scanStart := time.Now()
	outcomes, modules := d.extractAll(files, timing)
	timing.RecordStage("scan", scanStart, time.Since(scanStart), "ok")

	if d.cache != nil {
		if err := d.cache.Save(); err != nil {
			return Report{}, fmt.Errorf("saving cache: %w", err)
		}
	}

	design := ir.Design{Modules: modules}

	detectStart := time.Now()
	opts := detector.Options{
		EnableWW: boolOr(d.Config.EnableWW, true),
		EnableRW: boolOr(d.Config.EnableRW, true),
		EnableTR: boolOr(d.Config.EnableTR, true),
	}
	records := detector.Detect(design, opts)
	timing.RecordStage("detect", detectStart, time.Since(detectStart), "ok")

	report := Report{Files: outcomes, Design: design, Records: records}

	if d.Validate {
		if err := validator.ValidateReport(report.Design, report.Records); err != nil {
			return report, fmt.Errorf("result envelope failed schema validation: %w", err)
		}
	}

	if d.Config.PolicyFile != "" {
		engine, err := policy.Load(d.Config.PolicyFile)
		if err != nil {
			return report, fmt.Errorf("loading suppression policy: %w", err)
		}
		if err := engine.Apply(report.Records); err != nil {
			return report, fmt.Errorf("applying suppression policy: %w", err)
		}
	}

	timing.RecordStage("total", start, time.Since(start), "ok")
	return report, nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// extractAll runs Extract across files concurrently (one goroutine per
// file, buffered result channels sized to the file count so no goroutine
// blocks waiting for a reader), consulting and populating the cache around
// each file.
func (d *Driver) extractAll(files []string, timing *timingRecorder) ([]FileOutcome, []ir.Module) {
	type result struct {
		outcome FileOutcome
		modules []ir.Module
	}

	var wg sync.WaitGroup
	results := make(chan result, len(files))

	for _, f := range files {
		wg.Add(1)
		go func(file string) {
			defer wg.Done()
			fileStart := time.Now()
			outcome, modules := d.extractOne(file)
			status := "ok"
			if outcome.Err != nil {
				status = "error"
			}
			timing.RecordFile("extract", file, status, fileStart, time.Since(fileStart))
			if d.Verbose {
				fmt.Fprintf(os.Stderr, "extracted %s\n", file)
			}
			results <- result{outcome: outcome, modules: modules}
		}(f)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var outcomes []FileOutcome
	var modules []ir.Module
	for r := range results {
		outcomes = append(outcomes, r.outcome)
		modules = append(modules, r.modules...)
	}
	return outcomes, modules
}

func (d *Driver) extractOne(file string) (FileOutcome, []ir.Module) {
	source, err := os.ReadFile(file)
	if err != nil {
		return FileOutcome{File: file, Err: &ir.IoError{File: file, Err: err}}, nil
	}
	hash, err := hashFile(file)
	if err != nil {
		return FileOutcome{File: file, Err: &ir.IoError{File: file, Err: err}}, nil
	}

	if d.cache != nil {
		if cached, ok, err := d.cache.Get(file, hash); err == nil && ok {
			return FileOutcome{File: file, Diagnostics: cached.Diagnostics, FromCache: true}, []ir.Module{cached.Module}
		}
	}

	modules, diags, err := extractor.Extract(file, source)
	if err != nil {
		return FileOutcome{File: file, Diagnostics: diags, Err: err}, nil
	}

	if d.cache != nil && len(modules) == 1 {
		_ = d.cache.Put(file, hash, ir.FileResult{File: file, Module: modules[0], Diagnostics: diags})
	}

	return FileOutcome{File: file, Diagnostics: diags}, modules
}
