package insight

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insighter-hq/researcher/internal/gateway"
	"github.com/insighter-hq/researcher/internal/model"
)

type stubProvider struct {
	response string
	err      error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(context.Context, string) (string, error) {
	return p.response, p.err
}

func companies() []*model.CompanyAnalysis {
	return []*model.CompanyAnalysis{
		{
			CompanyName:           "Acme AI",
			Locations:             []string{"Austin, US"},
			EstimatedRevenue:      "$10M+",
			EmployeeCountEstimate: "51-200",
			RelevanceScore:        85,
			Summary:               "Acme builds AI widgets.",
			StrategicGoals:        []string{"Expand EU", "Hire ML team", "IPO"},
		},
		{
			CompanyName:    "Widget Co",
			RelevanceScore: 40,
			Summary:        "Widgets.",
		},
	}
}

func TestComparisonTableDeterministic(t *testing.T) {
	first := ComparisonTable(companies())
	second := ComparisonTable(companies())
	assert.Equal(t, first, second)

	assert.Contains(t, first, "| Acme AI | Austin, US | $10M+ | 51-200 | 85/100 |")
	assert.Contains(t, first, "| Widget Co | Unknown | Unknown | Unknown | 40/100 |")
}

func TestGenerateNarrative(t *testing.T) {
	provider := &stubProvider{response: "# Market Landscape\nGrowing sector.\n# Competitive Analysis\n...\n# Strategic Opportunities\n...\n# Financial Benchmarks\n..."}
	agg := New(gateway.New([]gateway.Provider{provider}, 0))

	report := agg.Generate(context.Background(), companies())
	assert.Contains(t, report, "# Market Landscape")
	assert.Contains(t, report, "# Financial Benchmarks")
}

func TestGenerateFallbackTable(t *testing.T) {
	provider := &stubProvider{err: eris.New("model down")}
	agg := New(gateway.New([]gateway.Provider{provider}, 0))

	report := agg.Generate(context.Background(), companies())
	require.Contains(t, report, "# Market Analysis (Auto-Generated)")
	assert.Contains(t, report, "| Acme AI | Austin, US | $10M+ | 51-200 | 85/100 |")

	// Idempotent without a working model.
	assert.Equal(t, report, agg.Generate(context.Background(), companies()))
}

func TestGenerateEmptySet(t *testing.T) {
	agg := New(gateway.New(nil, 0))
	assert.Equal(t, "Not enough data to generate insights.", agg.Generate(context.Background(), nil))
}

func TestReportPromptGoalsCapped(t *testing.T) {
	prompt := reportPrompt(companies())
	assert.Contains(t, prompt, "Goals: Expand EU, Hire ML team")
	assert.NotContains(t, prompt, "IPO")
	assert.Contains(t, prompt, "Goals: None")
}
