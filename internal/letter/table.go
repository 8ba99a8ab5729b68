package letter

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Veraticus/creditrag/internal/model"
)

const emptyCell = "N/A"

type column struct {
	header string
	value  func(model.LineItem) string
}

type itemSection struct {
	title   string
	kind    model.ItemType
	columns []column
}

// itemSections fixes both the rendering order and the columns per item type.
var itemSections = []itemSection{
	{
		title: "Accounts",
		kind:  model.ItemTradeline,
		columns: []column{
			{"Creditor", func(li model.LineItem) string { return li.Creditor }},
			{"Account Number", func(li model.LineItem) string { return li.AccountNumber }},
			{"Last Reported Late", func(li model.LineItem) string { return li.LastReportedLate }},
			{"Reason", func(li model.LineItem) string { return li.Reason }},
		},
	},
	{
		title: "Inquiries",
		kind:  model.ItemInquiry,
		columns: []column{
			{"Creditor", func(li model.LineItem) string { return li.Creditor }},
			{"Type of Business", func(li model.LineItem) string { return li.TypeOfBusiness }},
			{"Date of Inquiry", func(li model.LineItem) string { return li.DateOfInquiry }},
			{"Credit Bureau", func(li model.LineItem) string { return li.CreditBureau }},
		},
	},
	{
		title: "Public Records",
		kind:  model.ItemPublicRecord,
		columns: []column{
			{"Creditor", func(model.LineItem) string { return "Public Record" }},
			{"Reason", func(li model.LineItem) string { return li.Reason }},
		},
	},
}

// RenderItems renders one table per item type present, tradelines first.
func RenderItems(items []model.LineItem, format Format) string {
	grouped := make(map[model.ItemType][]model.LineItem)
	for _, item := range items {
		kind := item.EffectiveType()
		grouped[kind] = append(grouped[kind], item)
	}

	var sections []string
	for _, sec := range itemSections {
		rows := grouped[sec.kind]
		if len(rows) == 0 {
			continue
		}
		if format == FormatHTML {
			sections = append(sections, htmlTable(sec, rows))
		} else {
			sections = append(sections, markdownTable(sec, rows))
		}
	}
	return strings.Join(sections, "\n\n")
}

func markdownTable(sec itemSection, rows []model.LineItem) string {
	var b strings.Builder
	b.WriteString("### " + sec.title + "\n\n|")
	for _, col := range sec.columns {
		b.WriteString(" " + col.header + " |")
	}
	b.WriteString("\n|")
	for range sec.columns {
		b.WriteString(" --- |")
	}
	for _, row := range rows {
		b.WriteString("\n|")
		for _, col := range sec.columns {
			b.WriteString(" " + markdownCell(col.value(row)) + " |")
		}
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

func markdownCell(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return emptyCell
	}
	return markdownEscaper.Replace(s)
}

var cellPolicy = bluemonday.StrictPolicy()

func htmlTable(sec itemSection, rows []model.LineItem) string {
	var b strings.Builder
	b.WriteString("<h3>" + sec.title + "</h3>\n<table>\n<thead><tr>")
	for _, col := range sec.columns {
		b.WriteString("<th>" + col.header + "</th>")
	}
	b.WriteString("</tr></thead>\n<tbody>\n")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, col := range sec.columns {
			b.WriteString("<td>" + htmlCell(col.value(row)) + "</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>")
	return b.String()
}

func htmlCell(s string) string {
	s = strings.TrimSpace(cellPolicy.Sanitize(s))
	if s == "" {
		return emptyCell
	}
	return s
}
