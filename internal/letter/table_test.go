package letter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/creditrag/internal/model"
)

func TestRenderItems_Markdown(t *testing.T) {
	items := []model.LineItem{
		{ItemType: model.ItemPublicRecord, Creditor: "County Court", Reason: "Judgment satisfied"},
		{ItemType: model.ItemInquiry, Creditor: "Auto Finance", TypeOfBusiness: "Auto", DateOfInquiry: "2024-01-02", CreditBureau: "Equifax"},
		{Creditor: "Pipe|Bank", AccountNumber: "99", Reason: "line one\nline two"},
	}

	got := RenderItems(items, FormatMarkdown)

	accounts := strings.Index(got, "### Accounts")
	inquiries := strings.Index(got, "### Inquiries")
	records := strings.Index(got, "### Public Records")
	assert.True(t, accounts >= 0 && accounts < inquiries && inquiries < records, "sections out of order:\n%s", got)

	assert.Contains(t, got, "| Creditor | Account Number | Last Reported Late | Reason |")
	assert.Contains(t, got, `| Pipe\|Bank | 99 | N/A | line one line two |`)
	assert.Contains(t, got, "| Auto Finance | Auto | 2024-01-02 | Equifax |")
	assert.Contains(t, got, "| Public Record | Judgment satisfied |")
	assert.NotContains(t, got, "County Court")
}

func TestRenderItems_HTMLSanitisesCells(t *testing.T) {
	items := []model.LineItem{
		{Creditor: "<script>alert(1)</script>AT&T", AccountNumber: "<b>42</b>"},
	}

	got := RenderItems(items, FormatHTML)

	assert.Contains(t, got, "<h3>Accounts</h3>")
	assert.Contains(t, got, "<th>Last Reported Late</th>")
	assert.NotContains(t, got, "<script>")
	assert.NotContains(t, got, "<b>")
	assert.Contains(t, got, "AT&amp;T")
	assert.Contains(t, got, "<td>42</td>")
	assert.Contains(t, got, "<td>N/A</td>")
}

func TestRenderItems_Empty(t *testing.T) {
	assert.Empty(t, RenderItems(nil, FormatMarkdown))
}
