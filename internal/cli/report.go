package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/creditrag/internal/model"
)

// RenderClassification formats one classification result.
func RenderClassification(result model.ClassificationResult) string {
	verdict := FormatSuccess("No dispute letter needed")
	if result.NeedsLetter() {
		verdict = FormatWarning("Dispute letter recommended")
	}
	content := strings.Join([]string{
		BoldStyle.Render("Category: ") + result.Category.Label(),
		BoldStyle.Render("Reason:   ") + result.Reason,
		BoldStyle.Render("Source:   ") + SubtleStyle.Render(string(result.Source)),
		"",
		verdict,
	}, "\n")
	return RenderBox("Classification", content)
}

func riskStyle(level model.RiskLevel) lipgloss.Style {
	switch level {
	case model.RiskHigh:
		return ErrorStyle.Bold(true)
	case model.RiskMedium:
		return WarningStyle.Bold(true)
	default:
		return SuccessStyle.Bold(true)
	}
}

// RenderComplianceReport formats a compliance scan for the terminal.
func RenderComplianceReport(report model.ComplianceReport) string {
	var b strings.Builder
	b.WriteString(BoldStyle.Render("Risk level: ") + riskStyle(report.RiskLevel).Render(string(report.RiskLevel)) + "\n")

	b.WriteString("\n" + BoldStyle.Render("Violations") + "\n")
	if len(report.Violations) == 0 {
		b.WriteString(SubtleStyle.Render("  none") + "\n")
	}
	for _, v := range report.Violations {
		fmt.Fprintf(&b, "  %s %s/%s (%s): %s\n",
			ErrorIcon, v.Namespace, v.RuleID, SeverityStyle(v.Severity).Render(string(v.Severity)), v.Description)
	}

	b.WriteString("\n" + BoldStyle.Render("Related regulation text") + "\n")
	if len(report.SemanticMatches) == 0 {
		b.WriteString(SubtleStyle.Render("  none") + "\n")
	}
	for _, m := range report.SemanticMatches {
		fmt.Fprintf(&b, "  %s %s p.%d (%.2f)\n    %s\n",
			m.Namespace, m.Source, m.Page, m.Score, SubtleStyle.Render(m.Content))
	}

	return RenderBox(ScalesIcon+" Compliance Report", strings.TrimRight(b.String(), "\n"))
}

// RenderRecords formats dispute records as a table.
func RenderRecords(records []model.DisputeRecord) string {
	if len(records) == 0 {
		return FormatInfo("No dispute records")
	}

	headers := []string{"ID", "Created", "Status", "Days", "Remark", "Type", "Letter"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		days := "-"
		if r.PaymentDays != nil {
			days = fmt.Sprintf("%d", *r.PaymentDays)
		}
		remark := "-"
		if r.CreditorRemark != nil {
			remark = *r.CreditorRemark
		}
		letter := "no"
		switch {
		case r.DisputeLetter != "":
			letter = "written"
		case r.DisputeLetterGenerated:
			letter = "needed"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.ID),
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.AccountStatus,
			days,
			remark,
			string(r.DisputeType),
			letter,
		})
	}
	return renderTable(headers, rows)
}

func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	renderRow := func(cells []string, style lipgloss.Style) string {
		rendered := make([]string, len(cells))
		for i, cell := range cells {
			rendered[i] = style.Width(widths[i] + TableCellStyle.GetPaddingRight()).Render(cell)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	}

	lines := []string{renderRow(headers, BoldStyle)}
	for _, row := range rows {
		lines = append(lines, renderRow(row, TableCellStyle))
	}
	return strings.Join(lines, "\n")
}
