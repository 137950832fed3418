package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var quiet bool

var rootCmd = &cobra.Command{
	Use:   "deadlock-dumper",
	Short: "Signature-based offset dumper for the Deadlock client",
	Long: `deadlock-dumper scans the Deadlock client's modules for known byte
signatures and resolves each to a named module-relative offset (RVA).

Offsets can be dumped from a running game process or from module files
copied out of a game install. Signatures that no longer match the current
build are reported as outdated and skipped.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress per-signature diagnostics")

	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(signaturesCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
