package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/creditrag/internal/model"
)

func TestInterruptHandler(t *testing.T) {
	tests := []struct {
		writer io.Writer
		name   string
	}{
		{name: "with custom writer", writer: &bytes.Buffer{}},
		{name: "with nil writer", writer: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewInterruptHandler(tt.writer, "")
			assert.NotNil(t, handler.writer)
			assert.False(t, handler.WasInterrupted())
		})
	}

	out := &bytes.Buffer{}
	handler := NewInterruptHandler(out, "Committed batches are kept")
	ctx, stop := handler.HandleInterrupts(context.Background())
	defer stop()

	_, cancel := context.WithCancel(ctx)
	defer cancel()
	handler.interrupt(cancel)
	handler.interrupt(cancel)

	assert.True(t, handler.WasInterrupted())
	assert.Equal(t, 1, strings.Count(out.String(), "Interrupted!"))
	assert.Contains(t, out.String(), "Committed batches are kept")

	stop()
	<-ctx.Done()
}

func TestIngestProgress(t *testing.T) {
	p := NewIngestProgress(io.Discard, 10)

	p.OnBatch("FCRA", 4, 6)
	p.OnBatch("FDCPA", 2, 4)
	p.OnBatch("FCRA", 6, 6)
	p.OnBatch("FCRA", 6, 6)

	assert.Equal(t, 8, p.Committed())
}

func TestRenderComplianceReport(t *testing.T) {
	out := RenderComplianceReport(model.ComplianceReport{
		RiskLevel: model.RiskHigh,
		Violations: []model.Violation{
			{Namespace: "FDCPA", RuleID: "harassment", Severity: model.SeverityHigh, Description: "Potential harassment"},
		},
		SemanticMatches: []model.SemanticMatch{
			{Namespace: "FDCPA", Content: "A debt collector may not", Source: "fdcpa.txt", Page: 4, Score: 0.8},
		},
	})

	assert.Contains(t, out, "HIGH")
	assert.Contains(t, out, "FDCPA/harassment (high): Potential harassment")
	assert.Contains(t, out, "fdcpa.txt p.4 (0.80)")

	empty := RenderComplianceReport(model.ComplianceReport{RiskLevel: model.RiskLow})
	assert.Equal(t, 2, strings.Count(empty, "none"))
}

func TestRenderClassification(t *testing.T) {
	out := RenderClassification(model.ClassificationResult{
		Category: model.CategoryDelinquentLate,
		Reason:   "payment 45 days late",
		Source:   model.SourceRule,
	})
	assert.Contains(t, out, "Delinquent / Late")
	assert.Contains(t, out, "Dispute letter recommended")
}

func TestRenderRecords(t *testing.T) {
	assert.Contains(t, RenderRecords(nil), "No dispute records")

	days := 60
	out := RenderRecords([]model.DisputeRecord{
		{ID: 7, AccountStatus: "Open", PaymentDays: &days, DisputeType: model.CategoryDelinquentLate, DisputeLetterGenerated: true},
		{ID: 8, AccountStatus: "Closed", DisputeType: model.CategoryDerogatory, DisputeLetter: "text", DisputeLetterGenerated: true},
	})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Letter")
	assert.Contains(t, lines[1], "needed")
	assert.Contains(t, lines[2], "written")
}
