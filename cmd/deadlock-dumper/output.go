package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	dumper "github.com/trueshadow1995/DeadLock-Dumper"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/offsets"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/store"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/types"
)

// consoleSink prints one line per attempted signature, mirroring the shape
// of the table the original tooling logged.
type consoleSink struct {
	out io.Writer
}

func (s *consoleSink) Found(module, name string, rva types.Rva, absolute uint64) {
	color.New(color.FgGreen).Fprintf(s.out, "found %q at %#x (%s + %#x)\n", name, absolute, module, uint32(rva))
}

func (s *consoleSink) Stale(module, name string) {
	color.New(color.FgRed).Fprintf(s.out, "outdated pattern: %s/%s\n", module, name)
}

// newSink returns the diagnostics sink for the current flags.
func newSink(errOut io.Writer) offsets.Sink {
	if quiet {
		return offsets.NopSink{}
	}
	return &consoleSink{out: errOut}
}

// writeTable serializes the result table in the requested format.
func writeTable(out io.Writer, table dumper.Table, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(table)
	case "human":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		defer w.Flush()

		fmt.Fprintf(w, "Module\tName\tRVA\n")
		fmt.Fprintf(w, "------\t----\t---\n")
		for _, module := range sortedKeys(table) {
			m := table[module]
			names := make([]string, 0, len(m))
			for name := range m {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(w, "%s\t%s\t%#x\n", module, name, uint32(m[name]))
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// outputTable writes the table to stdout or, when path is set, to a file.
func outputTable(cmd *cobra.Command, path, format string, table dumper.Table) error {
	if path == "" {
		return writeTable(cmd.OutOrStdout(), table, format)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := writeTable(f, table, format); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	}
	return nil
}

// persistTable stores the run when a database path was given.
func persistTable(errOut io.Writer, dbPath, process string, table dumper.Table) error {
	if dbPath == "" {
		return nil
	}
	s, err := store.New(store.Config{Path: dbPath})
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	id, err := s.AddRun(process, table)
	if err != nil {
		return fmt.Errorf("persisting run: %w", err)
	}
	if !quiet {
		fmt.Fprintf(errOut, "stored run %d in %s\n", id, dbPath)
	}
	return nil
}

func sortedKeys(table dumper.Table) []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
