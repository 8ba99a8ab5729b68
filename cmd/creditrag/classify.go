package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/creditrag/internal/classification"
	"github.com/Veraticus/creditrag/internal/cli"
	"github.com/Veraticus/creditrag/internal/model"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify one account or a file of accounts",
		Long: `Classify credit-report accounts and decide whether each needs a dispute letter.

Rules decide the category. When classification.external is enabled the
configured model is consulted as well and its reasoning is merged in.

Examples:
  creditrag classify --status Open --days 45
  creditrag classify --status Derogatory --remark "valid"
  creditrag classify --file accounts.json --json`,
		RunE: runClassify,
	}

	cmd.Flags().String("status", "", "account status, e.g. Open, Closed, Derogatory")
	cmd.Flags().String("days", "", "days past due (number or label such as \"Late 60 Days\")")
	cmd.Flags().String("remark", "", "creditor remark")
	cmd.Flags().StringP("file", "f", "", "JSON array of accounts to classify")
	cmd.Flags().Bool("json", false, "print results as JSON")

	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	file, _ := cmd.Flags().GetString("file")
	asJSON, _ := cmd.Flags().GetBool("json")

	var items []model.LineItem
	if file != "" {
		var inputs []classification.ItemInput
		if err := readJSONFile(file, &inputs); err != nil {
			return err
		}
		var err error
		if items, err = classification.ItemsFromInput(inputs); err != nil {
			return err
		}
	} else {
		status, _ := cmd.Flags().GetString("status")
		rawDays, _ := cmd.Flags().GetString("days")
		days, err := classification.ParsePaymentDays(rawDays)
		if err != nil {
			return err
		}
		item := model.LineItem{AccountStatus: status, PaymentDays: days}
		if cmd.Flags().Changed("remark") {
			remark, _ := cmd.Flags().GetString("remark")
			item.CreditorRemark = &remark
		}
		items = []model.LineItem{item}
	}

	a, err := newApp(ctx, appNeeds{})
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.engine.ClassifyBatch(ctx, items)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		fmt.Fprintln(out, cli.RenderClassification(r))
	}
	return nil
}
