// VRacer statically analyzes Verilog/Verilog-AMS source for Write-Write,
// Read-Write, and Trigger race hazards.
//
// THE PIPELINE:
//  1. Extractor lexes and structurally parses each file into the IR
//     (internal/extractor, internal/ir)
//  2. Driver extracts files in parallel and builds the combined Design
//     (internal/driver)
//  3. Detector computes Race Records over the Design (internal/detector)
//  4. CUE validator enforces the result envelope contract, when enabled
//     (internal/validator)
//  5. Policy stage optionally waives known-acceptable records
//     (internal/policy)
//  6. Records are printed with module/signal/anchor locations
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/robert-at-pretension-io/vracer/internal/config"
	"github.com/robert-at-pretension-io/vracer/internal/driver"
	"github.com/robert-at-pretension-io/vracer/internal/ir"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch cmd := os.Args[1]; cmd {
	case "init":
		runInit()
	case "-v", "--verbose":
		if len(os.Args) < 3 {
			printUsage()
			os.Exit(1)
		}
		runAnalyze(os.Args[2], "", true)
	case "-h", "--help", "help":
		printUsage()
	case "-c", "--config":
		if len(os.Args) < 4 {
			printUsage()
			os.Exit(1)
		}
		runAnalyze(os.Args[3], os.Args[2], false)
	default:
		runAnalyze(cmd, "", false)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: vracer [command] [options] <path>

Commands:
  init              Create a vracer.json configuration file
  <path>            Analyze Verilog/Verilog-AMS files in the given path

Options:
  -v, --verbose     Enable verbose output
  -c, --config      Specify config file: vracer -c config.json <path>
  -h, --help        Show this help message

Configuration:
  vracer looks for configuration in:
    1. ./vracer.json
    2. ./.vracer.json
    3. <path>/vracer.json, <path>/.vracer.json (when <path> is a directory)
    4. ~/.config/vracer/config.json

  Run 'vracer init' to create a default configuration file.`)
}

func runInit() {
	configPath := "vracer.json"

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file %s already exists. Overwrite? [y/N]: ", configPath)
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("\nEdit this file to configure:")
	fmt.Println("  - Which detector classes run (enableWW/enableRW/enableTR)")
	fmt.Println("  - File globs and ignore patterns")
	fmt.Println("  - An optional Rego suppression policy")
}

func runAnalyze(path, configPath string, verbose bool) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config %s: %v\n", configPath, err)
			os.Exit(1)
		}
	} else {
		cfg, err = config.Load(path)
		if err != nil {
			fmt.Printf("Warning: could not load config: %v (using defaults)\n", err)
			cfg = config.DefaultConfig()
		}
	}

	d := driver.New(cfg)
	d.Verbose = verbose
	report, err := d.Run(path, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fatal := false
	for _, f := range report.Files {
		if f.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", f.File, f.Err)
			fatal = true
			continue
		}
		for _, diag := range f.Diagnostics {
			fmt.Fprintln(os.Stderr, diag.String())
		}
	}
	if fatal {
		os.Exit(1)
	}

	printRecords(report.Records)
}

func printRecords(records []ir.RaceRecord) {
	if len(records) == 0 {
		fmt.Println("No race hazards found.")
		return
	}
	for _, r := range records {
		suffix := ""
		if r.Suppressed {
			suffix = fmt.Sprintf(" [suppressed by %s]", r.SuppressedBy)
		}
		fmt.Printf("%s %s: %s <-> %s on %s (%s / %s)%s\n",
			r.Kind, r.ModuleName, r.AnchorA.Label, r.AnchorB.Label, r.TargetSignal, r.ProcessA, r.ProcessB, suffix)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(records)
}
