package main

import (
	"fmt"

	"github.com/spf13/cobra"

	dumper "github.com/trueshadow1995/DeadLock-Dumper"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/signature"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/types"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/winmem"
)

var (
	dumpProcess    string
	dumpSignatures string
	dumpInclude    string
	dumpExclude    string
	dumpOutputPath string
	dumpFormat     string
	dumpDB         string
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump offsets from the running game",
	Long:  "Attach to the running Deadlock process, scan its loaded modules, and resolve all registered signatures",
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().StringVar(&dumpProcess, "process", dumper.DefaultProcess, "Game process executable name")
	dumpCmd.Flags().StringVar(&dumpSignatures, "signatures", "", "Path to a custom signature file")
	dumpCmd.Flags().StringVar(&dumpInclude, "include", "", "Include signatures matching regex pattern (comma-separated)")
	dumpCmd.Flags().StringVar(&dumpExclude, "exclude", "", "Exclude signatures matching regex pattern (comma-separated)")
	dumpCmd.Flags().StringVar(&dumpOutputPath, "output", "", "Write the table to a file instead of stdout")
	dumpCmd.Flags().StringVar(&dumpFormat, "format", "json", "Output format: json, human")
	dumpCmd.Flags().StringVar(&dumpDB, "db", "", "Also persist the run to a SQLite database")
}

func runDump(cmd *cobra.Command, args []string) error {
	sigs, err := loadSignatures(dumpSignatures, dumpInclude, dumpExclude)
	if err != nil {
		return err
	}

	provider, err := winmem.Open(dumpProcess)
	if err != nil {
		return err
	}
	defer provider.Close()

	d, err := dumper.New(
		dumper.WithSignatures(sigs),
		dumper.WithModules(signature.Modules(sigs)...),
		dumper.WithSink(newSink(cmd.ErrOrStderr())),
	)
	if err != nil {
		return err
	}

	table, err := d.Dump(provider)
	if err != nil {
		return fmt.Errorf("dumping offsets: %w", err)
	}

	if err := persistTable(cmd.ErrOrStderr(), dumpDB, dumpProcess, table); err != nil {
		return err
	}
	return outputTable(cmd, dumpOutputPath, dumpFormat, table)
}

// loadSignatures loads the registry (built-in or custom) and applies
// name filtering.
func loadSignatures(path, include, exclude string) ([]*types.Signature, error) {
	loader := signature.NewLoader()

	var sigs []*types.Signature
	var err error
	if path != "" {
		sigs, err = loader.LoadFile(path)
	} else {
		sigs, err = loader.LoadBuiltin()
	}
	if err != nil {
		return nil, fmt.Errorf("loading signatures: %w", err)
	}

	if include != "" || exclude != "" {
		sigs, err = signature.Filter(sigs, signature.FilterConfig{
			Include: signature.ParsePatterns(include),
			Exclude: signature.ParsePatterns(exclude),
		})
		if err != nil {
			return nil, fmt.Errorf("filtering signatures: %w", err)
		}
	}
	if len(sigs) == 0 {
		return nil, fmt.Errorf("no signatures selected")
	}
	return sigs, nil
}
