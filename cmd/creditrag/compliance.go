package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/creditrag/internal/cli"
)

func complianceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compliance [text]",
		Short: "Check text for FDCPA/FCRA compliance issues",
		Long: `Scan a collection notice, letter or any other text against the regulation
rule table and list related regulation passages from the index.

Examples:
  creditrag compliance "We will call your workplace until you pay"
  creditrag compliance --file notice.txt --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompliance,
	}

	cmd.Flags().StringP("file", "f", "", "read the text from a file (\"-\" for stdin)")
	cmd.Flags().Bool("json", false, "print the report as JSON")

	return cmd
}

func runCompliance(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	file, _ := cmd.Flags().GetString("file")
	asJSON, _ := cmd.Flags().GetBool("json")

	var text string
	switch {
	case file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	case file != "":
		data, err := os.ReadFile(file) //nolint:gosec // operator-supplied input path
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		text = string(data)
	case len(args) == 1:
		text = args[0]
	default:
		return fmt.Errorf("provide text as an argument or with --file")
	}

	a, err := newApp(ctx, appNeeds{})
	if err != nil {
		return err
	}
	defer a.Close()

	report := a.engine.CheckCompliance(ctx, strings.TrimSpace(text))

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Fprintln(out, cli.RenderComplianceReport(report))
	return nil
}
