package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/creditrag/internal/cli"
)

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect recorded classifications and letters",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List dispute records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			asJSON, _ := cmd.Flags().GetBool("json")

			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.ListDisputeRecords(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			fmt.Fprintln(out, cli.RenderRecords(records))
			return nil
		},
	}
	list.Flags().IntP("limit", "n", 20, "maximum records to show (0 = all)")
	list.Flags().Bool("json", false, "print records as JSON")
	cmd.AddCommand(list)

	return cmd
}
