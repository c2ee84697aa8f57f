// vracer-facts dumps the extracted IR — flattened into relational fact
// tables, together with the detector's race rows — for a file or tree.
// Useful for diagnosing extractor bugs independent of detector bugs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/robert-at-pretension-io/vracer/internal/config"
	"github.com/robert-at-pretension-io/vracer/internal/driver"
	"github.com/robert-at-pretension-io/vracer/internal/facts"
)

func main() {
	output := flag.String("output", "", "write facts JSON to file (default: stdout)")
	flag.StringVar(output, "o", "", "write facts JSON to file (shorthand)")
	deltaFrom := flag.String("delta-from", "", "previous facts JSON to compute delta from")
	deltaOut := flag.String("delta-out", "", "write delta JSON to file (requires --delta-from)")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: vracer-facts [--output file] [--delta-from prev.json --delta-out delta.json] <path>")
		os.Exit(1)
	}

	path := args[0]
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	d := driver.New(cfg)
	report, err := d.Run(path, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, f := range report.Files {
		if f.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", f.File, f.Err)
		}
	}

	tables := facts.BuildTables(report.Design, report.Records)

	if *output != "" {
		if err := writeJSON(*output, tables); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing facts: %v\n", err)
			os.Exit(1)
		}
	} else {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(tables); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding facts: %v\n", err)
			os.Exit(1)
		}
	}

	if *deltaFrom != "" || *deltaOut != "" {
		if *deltaFrom == "" || *deltaOut == "" {
			fmt.Fprintln(os.Stderr, "Error: --delta-from and --delta-out must be used together")
			os.Exit(1)
		}
		prev, err := readTables(*deltaFrom)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading delta-from: %v\n", err)
			os.Exit(1)
		}
		delta := facts.ComputeDelta(prev, tables)
		if err := writeJSON(*deltaOut, delta); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing delta: %v\n", err)
			os.Exit(1)
		}
	}
}

func readTables(path string) (facts.Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return facts.Tables{}, err
	}
	defer func() { _ = f.Close() }()

	var tables facts.Tables
	if err := json.NewDecoder(f).Decode(&tables); err != nil {
		return facts.Tables{}, err
	}
	return tables, nil
}

func writeJSON(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
