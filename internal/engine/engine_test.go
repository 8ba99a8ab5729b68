package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/creditrag/internal/classification"
	"github.com/Veraticus/creditrag/internal/common"
	"github.com/Veraticus/creditrag/internal/compliance"
	"github.com/Veraticus/creditrag/internal/letter"
	"github.com/Veraticus/creditrag/internal/model"
	"github.com/Veraticus/creditrag/internal/service"
	"github.com/Veraticus/creditrag/internal/testutil"
)

type failingRecorder struct{ calls int }

func (f *failingRecorder) SaveDisputeRecord(context.Context, *model.DisputeRecord) error {
	f.calls++
	return errors.New("disk full")
}

func (f *failingRecorder) ListDisputeRecords(context.Context, int) ([]model.DisputeRecord, error) {
	return nil, nil
}

func newTestEngine(t *testing.T, gen *testutil.FakeGenerator, recorder service.Recorder) *Engine {
	t.Helper()

	scanner, err := compliance.NewScanner(nil, compliance.Config{}, nil)
	require.NoError(t, err)

	cfg := Config{
		Classifier: classification.NewAccountClassifier(),
		Compliance: scanner,
		Recorder:   recorder,
	}
	if gen != nil {
		synth, err := letter.NewSynthesizer(gen, nil, nil, letter.Config{}, nil)
		require.NoError(t, err)
		cfg.Letters = synth
	}

	e, err := New(cfg)
	require.NoError(t, err)
	return e
}

func intPtr(i int) *int { return &i }

func TestEngine_ClassifyRecordsProcess(t *testing.T) {
	store := testutil.SetupTestDB(t)
	e := newTestEngine(t, nil, store)
	ctx := context.Background()

	tests := []struct {
		name         string
		status       string
		days         *int
		wantLetter   bool
		wantCategory model.Category
	}{
		{name: "current open account", status: "Open", days: intPtr(30), wantLetter: false, wantCategory: model.CategoryPositive},
		{name: "late open account", status: "Open", days: intPtr(31), wantLetter: true, wantCategory: model.CategoryDelinquentLate},
		{name: "paid account", status: "paid", days: intPtr(120), wantLetter: false, wantCategory: model.CategoryPositive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := e.Classify(ctx, tt.status, tt.days, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCategory, result.Category)
			assert.Equal(t, tt.wantLetter, result.NeedsLetter())
		})
	}

	records, err := e.Records(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, len(tests))
	assert.Equal(t, "paid", records[0].AccountStatus)
	assert.False(t, records[0].DisputeLetterGenerated)
	assert.True(t, records[1].DisputeLetterGenerated)
}

func TestEngine_ClassifyValidationErrorSkipsRecording(t *testing.T) {
	recorder := &failingRecorder{}
	e := newTestEngine(t, nil, recorder)

	_, err := e.Classify(context.Background(), "  ", nil, nil)
	require.ErrorIs(t, err, common.ErrInputValidation)
	assert.Zero(t, recorder.calls)

	_, err = e.ClassifyBatch(context.Background(), []model.LineItem{
		{AccountStatus: "Open", PaymentDays: intPtr(0)},
		{AccountStatus: "Open", PaymentDays: intPtr(-1)},
	})
	var validation *common.InputValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, 1, validation.Index)
	assert.Zero(t, recorder.calls)
}

func TestEngine_RecorderFailureIsNotFatal(t *testing.T) {
	recorder := &failingRecorder{}
	e := newTestEngine(t, &testutil.FakeGenerator{Response: "letter"}, recorder)

	result, err := e.Classify(context.Background(), "Closed", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryPositive, result.Category)

	text, err := e.GenerateLetter(context.Background(), model.AccountDetails{}, model.CategoryInquiry, nil)
	require.NoError(t, err)
	assert.Equal(t, "letter", text)
	assert.Equal(t, 2, recorder.calls)
}

func TestEngine_GenerateLetterResolvesEmptyCategory(t *testing.T) {
	store := testutil.SetupTestDB(t)
	gen := &testutil.FakeGenerator{Response: "# Letter"}
	e := newTestEngine(t, gen, store)
	ctx := context.Background()

	items := []model.LineItem{
		{AccountStatus: "Open", ItemType: model.ItemInquiry, Creditor: "Auto Finance"},
		{AccountStatus: "Open", Reason: "30 days late", Creditor: "Chase"},
	}
	text, err := e.GenerateLetter(ctx, model.AccountDetails{"consumer_name": "Jane Doe"}, "", items)
	require.NoError(t, err)
	assert.Equal(t, "# Letter", text)
	assert.Contains(t, gen.Prompts()[0], "Template (inquiry)")

	records, err := e.Records(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.CategoryInquiry, records[0].DisputeType)
	assert.Equal(t, "# Letter", records[0].DisputeLetter)
}

func TestEngine_GenerateLetterErrors(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	_, err := e.GenerateLetter(context.Background(), nil, model.CategoryDerogatory, nil)
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	e = newTestEngine(t, &testutil.FakeGenerator{Err: errors.New("boom")}, nil)
	_, err = e.GenerateLetter(context.Background(), nil, model.CategoryDerogatory, nil)
	assert.ErrorIs(t, err, common.ErrGenerationService)

	_, err = e.Records(context.Background(), 10)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestEngine_ResolveCategory(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	tests := []struct {
		name  string
		items []model.LineItem
		want  model.Category
	}{
		{
			name:  "inquiry beats late",
			items: []model.LineItem{{ItemType: model.ItemInquiry}, {Reason: "30 days late"}},
			want:  model.CategoryInquiry,
		},
		{
			name:  "public record beats inquiry",
			items: []model.LineItem{{ItemType: model.ItemPublicRecord}, {ItemType: model.ItemInquiry}},
			want:  model.CategoryPublicRecord,
		},
		{name: "empty", want: model.CategoryPositive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.ResolveCategory(tt.items))
		})
	}
}

func TestEngine_CheckCompliance(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	report := e.CheckCompliance(context.Background(), "We will continue to call your workplace until you pay")
	assert.Equal(t, model.RiskHigh, report.RiskLevel)
	require.NotEmpty(t, report.Violations)
	assert.Equal(t, "FDCPA", report.Violations[0].Namespace)

	report = e.CheckCompliance(context.Background(), "")
	assert.Empty(t, report.Violations)
	assert.Equal(t, model.RiskLow, report.RiskLevel)
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = New(Config{Classifier: classification.NewAccountClassifier()})
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestEngine_GenerateLetterNormalizesCategory(t *testing.T) {
	tests := []struct {
		name         string
		category     model.Category
		wantTemplate string
		wantRecorded model.Category
	}{
		{name: "unknown text", category: "generic_dispute", wantTemplate: "Template (generic_dispute)", wantRecorded: model.CategoryUncategorized},
		{name: "free-form known", category: "delinquent/late", wantTemplate: "Template (delinquent_late)", wantRecorded: model.CategoryDelinquentLate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.SetupTestDB(t)
			gen := &testutil.FakeGenerator{Response: "# Letter"}
			e := newTestEngine(t, gen, store)
			ctx := context.Background()

			items := []model.LineItem{{AccountStatus: "Open", Reason: "30 days late", Creditor: "Chase"}}
			text, err := e.GenerateLetter(ctx, model.AccountDetails{"consumer_name": "Jane Doe"}, tt.category, items)
			require.NoError(t, err)
			assert.Equal(t, "# Letter", text)
			assert.Contains(t, gen.Prompts()[0], tt.wantTemplate)

			records, err := e.Records(ctx, 0)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, tt.wantRecorded, records[0].DisputeType)
		})
	}
}
