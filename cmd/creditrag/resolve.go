package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/creditrag/internal/classification"
	"github.com/Veraticus/creditrag/internal/cli"
)

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <items.json>",
		Short: "Resolve the letter category for a set of disputed items",
		Long: `Reduce a JSON array of disputed items to the single category their letter
is written for. Public records outrank inquiries, which outrank derogatory and
then late-payment items.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var inputs []classification.ItemInput
			if err := readJSONFile(args[0], &inputs); err != nil {
				return err
			}
			items, err := classification.ItemsFromInput(inputs)
			if err != nil {
				return err
			}

			category := classification.ResolveCategory(items)
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("%d items resolve to %s", len(items), category.Label())))
			return nil
		},
	}
}
