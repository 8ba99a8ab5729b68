package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/creditrag/internal/common"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Verdict
		wantErr bool
	}{
		{
			name: "bare json",
			raw:  `{"category": "Derogatory", "reason": "charged off"}`,
			want: Verdict{Category: "Derogatory", Reason: "charged off"},
		},
		{
			name: "prose wrapped",
			raw:  `Sure! Here is my answer: {"category": "Inquiry", "reason": "hard pull"} Let me know if you need more.`,
			want: Verdict{Category: "Inquiry", Reason: "hard pull"},
		},
		{
			name: "markdown fenced",
			raw:  "```json\n{\"category\": \"Positive\", \"reason\": \"paid\"}\n```",
			want: Verdict{Category: "Positive", Reason: "paid"},
		},
		{
			name: "second brace group in prose falls back to first balanced object",
			raw:  `{"category": "Delinquent_Late", "reason": "60 days"} and also {note}`,
			want: Verdict{Category: "Delinquent_Late", Reason: "60 days"},
		},
		{
			name: "braces inside strings",
			raw:  `{"category": "Derogatory", "reason": "remark says {invalid}"} trailing }`,
			want: Verdict{Category: "Derogatory", Reason: "remark says {invalid}"},
		},
		{
			name:    "truncated",
			raw:     `{"category": "Derog`,
			want:    Verdict{Category: "Uncategorized", Reason: "unparseable response"},
			wantErr: true,
		},
		{
			name:    "no json at all",
			raw:     "I think this account is probably fine.",
			want:    Verdict{Category: "Uncategorized", Reason: "unparseable response"},
			wantErr: true,
		},
		{
			name:    "missing category",
			raw:     `{"reason": "no idea"}`,
			want:    Verdict{Category: "Uncategorized", Reason: "unparseable response"},
			wantErr: true,
		},
		{
			name:    "empty",
			raw:     "",
			want:    Verdict{Category: "Uncategorized", Reason: "unparseable response"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVerdict(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrClassificationParse)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanMarkdownWrapper(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanMarkdownWrapper("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanMarkdownWrapper(`  {"a":1}  `))
}
