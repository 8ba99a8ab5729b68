package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/creditrag/internal/cli"
	"github.com/Veraticus/creditrag/internal/regindex"
)

func namespacesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "namespaces",
		Short: "Manage regulation index namespaces",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List namespaces with stored vectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), appNeeds{index: true})
			if err != nil {
				return err
			}
			defer a.Close()

			namespaces, err := a.index.ListNamespaces(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(namespaces) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No namespaces yet. Add one with: creditrag ingest FCRA=fcra.txt"))
				return nil
			}
			for _, ns := range namespaces {
				count, err := a.store.CountVectors(cmd.Context(), ns)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %s %s\n", cli.FolderIcon, cli.BoldStyle.Render(ns), cli.SubtleStyle.Render(fmt.Sprintf("(%d chunks)", count)))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <namespace>",
		Short: "Delete every vector in a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), appNeeds{index: true})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.index.DeleteNamespace(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted namespace "+args[0]))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-ids <namespace> <id>...",
		Short: "Delete specific chunks from a namespace",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), appNeeds{index: true})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.index.DeleteIDs(cmd.Context(), args[1:], args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %d ids from %s", len(args)-1, args[0])))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "user <email>",
		Short: "Print the per-user namespace for an email address",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), regindex.UserNamespace(args[0]))
		},
	})

	return cmd
}
