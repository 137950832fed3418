package main

import (
	"fmt"

	"github.com/spf13/cobra"

	dumper "github.com/trueshadow1995/DeadLock-Dumper"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/image"
	"github.com/trueshadow1995/DeadLock-Dumper/pkg/signature"
)

var (
	scanSignatures string
	scanInclude    string
	scanExclude    string
	scanOutputPath string
	scanFormat     string
	scanDB         string
)

var scanCmd = &cobra.Command{
	Use:   "scan [directory]",
	Short: "Scan module files copied out of a game install",
	Long: `Scan PE module files (client.dll, engine2.dll, ...) from a directory
instead of a live process. Each file is remapped to its virtual layout
before matching, so signatures resolve to the same RVAs a live dump
would produce.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanSignatures, "signatures", "", "Path to a custom signature file")
	scanCmd.Flags().StringVar(&scanInclude, "include", "", "Include signatures matching regex pattern (comma-separated)")
	scanCmd.Flags().StringVar(&scanExclude, "exclude", "", "Exclude signatures matching regex pattern (comma-separated)")
	scanCmd.Flags().StringVar(&scanOutputPath, "output", "", "Write the table to a file instead of stdout")
	scanCmd.Flags().StringVar(&scanFormat, "format", "json", "Output format: json, human")
	scanCmd.Flags().StringVar(&scanDB, "db", "", "Also persist the run to a SQLite database")
}

func runScan(cmd *cobra.Command, args []string) error {
	sigs, err := loadSignatures(scanSignatures, scanInclude, scanExclude)
	if err != nil {
		return err
	}

	d, err := dumper.New(
		dumper.WithSignatures(sigs),
		dumper.WithModules(signature.Modules(sigs)...),
		dumper.WithSink(newSink(cmd.ErrOrStderr())),
	)
	if err != nil {
		return err
	}

	table, err := d.Dump(image.NewFileProvider(args[0]))
	if err != nil {
		return fmt.Errorf("scanning %s: %w", args[0], err)
	}

	if err := persistTable(cmd.ErrOrStderr(), scanDB, args[0], table); err != nil {
		return err
	}
	return outputTable(cmd, scanOutputPath, scanFormat, table)
}
