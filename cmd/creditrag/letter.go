package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/creditrag/internal/classification"
	"github.com/Veraticus/creditrag/internal/cli"
	"github.com/Veraticus/creditrag/internal/letter"
	"github.com/Veraticus/creditrag/internal/model"
)

func letterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "letter",
		Short: "Draft a dispute letter",
		Long: `Draft a dispute letter for a set of disputed items. The category is resolved
from the items unless --category is given. Output is markdown or HTML depending
on letters.format.

Examples:
  creditrag letter --details details.json --items items.json
  creditrag letter --details details.json --items items.json --category inquiry --render
  creditrag letter --details details.json --items items.json -o letter.md`,
		RunE: runLetter,
	}

	cmd.Flags().String("details", "", "JSON object of account details (consumer name, address, bureau, ...)")
	cmd.Flags().String("items", "", "JSON array of disputed items")
	cmd.Flags().String("category", "", "letter category (default: resolved from the items)")
	cmd.Flags().StringP("output", "o", "", "write the letter to a file instead of stdout")
	cmd.Flags().Bool("render", false, "render markdown letters for the terminal")
	_ = cmd.MarkFlagRequired("details")
	_ = cmd.MarkFlagRequired("items")

	return cmd
}

func runLetter(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	detailsPath, _ := cmd.Flags().GetString("details")
	itemsPath, _ := cmd.Flags().GetString("items")
	rawCategory, _ := cmd.Flags().GetString("category")
	outputPath, _ := cmd.Flags().GetString("output")
	render, _ := cmd.Flags().GetBool("render")

	var details model.AccountDetails
	if err := readJSONFile(detailsPath, &details); err != nil {
		return err
	}
	var inputs []classification.ItemInput
	if err := readJSONFile(itemsPath, &inputs); err != nil {
		return err
	}
	items, err := classification.ItemsFromInput(inputs)
	if err != nil {
		return err
	}

	var category model.Category
	if strings.TrimSpace(rawCategory) != "" {
		category = model.ParseCategory(rawCategory)
	}

	a, err := newApp(ctx, appNeeds{generator: true})
	if err != nil {
		return err
	}
	defer a.Close()

	text, err := a.engine.GenerateLetter(ctx, details, category, items)
	if err != nil {
		return err
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(text), 0o600); err != nil {
			return fmt.Errorf("failed to write letter: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess("Letter written to "+outputPath))
		return nil
	}

	format, _ := letter.ParseFormat(viper.GetString("letters.format"))
	if render && format == letter.FormatMarkdown {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			return fmt.Errorf("failed to create renderer: %w", err)
		}
		if text, err = renderer.Render(text); err != nil {
			return fmt.Errorf("failed to render letter: %w", err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
