package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trueshadow1995/DeadLock-Dumper/pkg/types"
)

var (
	sigsPath    string
	sigsInclude string
	sigsExclude string
	sigsFormat  string
)

var signaturesCmd = &cobra.Command{
	Use:   "signatures",
	Short: "Manage offset signatures",
	Long:  "Commands for listing and inspecting the signature registry",
}

var signaturesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered signatures",
	Long:  "Display every registered signature with its module, pattern, and derivation rule",
	RunE:  runSignaturesList,
}

func init() {
	signaturesCmd.AddCommand(signaturesListCmd)
	signaturesListCmd.Flags().StringVar(&sigsPath, "signatures", "", "Path to a custom signature file")
	signaturesListCmd.Flags().StringVar(&sigsInclude, "include", "", "Include signatures matching regex pattern (comma-separated)")
	signaturesListCmd.Flags().StringVar(&sigsExclude, "exclude", "", "Exclude signatures matching regex pattern (comma-separated)")
	signaturesListCmd.Flags().StringVar(&sigsFormat, "format", "table", "Output format: table, json")
}

func runSignaturesList(cmd *cobra.Command, args []string) error {
	sigs, err := loadSignatures(sigsPath, sigsInclude, sigsExclude)
	if err != nil {
		return err
	}

	switch sigsFormat {
	case "json":
		return outputSignaturesJSON(cmd, sigs)
	case "table":
		return outputSignaturesTable(cmd, sigs)
	default:
		return fmt.Errorf("unknown output format: %s", sigsFormat)
	}
}

func outputSignaturesJSON(cmd *cobra.Command, sigs []*types.Signature) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(sigs)
}

func outputSignaturesTable(cmd *cobra.Command, sigs []*types.Signature) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Module\tName\tPattern\tDerive\n")
	fmt.Fprintf(w, "------\t----\t-------\t------\n")
	for _, sig := range sigs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", sig.Module, sig.Name, sig.Pattern, sig.Derive)
	}
	return nil
}
