package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchProfile_HashStable(t *testing.T) {
	p1 := SearchProfile{
		IncludedIndustries: []string{"Tech"},
		RequiredKeywords:   []string{"AI"},
		TargetCountries:    []string{"US"},
	}
	p2 := SearchProfile{
		IncludedIndustries: []string{"Tech"},
		RequiredKeywords:   []string{"AI"},
		TargetCountries:    []string{"US"},
	}

	assert.NotEmpty(t, p1.Hash())
	assert.Equal(t, p1.Hash(), p2.Hash())
}

func TestSearchProfile_HashDiffers(t *testing.T) {
	p1 := SearchProfile{IncludedIndustries: []string{"Tech"}}
	p2 := SearchProfile{IncludedIndustries: []string{"Manufacturing"}}

	assert.NotEqual(t, p1.Hash(), p2.Hash())
}

func TestProvenance_Synthetic(t *testing.T) {
	assert.True(t, ProvenanceFallback.Synthetic())
	assert.False(t, ProvenanceStrict.Synthetic())
	assert.False(t, ProvenanceSearch.Synthetic())
}

func TestPipelineEvent_MarshalShapes(t *testing.T) {
	tests := []struct {
		name  string
		event PipelineEvent
		want  string
	}{
		{
			name:  "status",
			event: StatusEvent("Starting research..."),
			want:  `{"type":"status","message":"Starting research..."}`,
		},
		{
			name:  "progress",
			event: ProgressEvent(1, 10),
			want:  `{"type":"progress","current":1,"total":10}`,
		},
		{
			name:  "insights",
			event: InsightsEvent("# Market Landscape"),
			want:  `{"type":"market_insights","data":"# Market Landscape"}`,
		},
		{
			name:  "error",
			event: ErrorEvent("search capability unavailable"),
			want:  `{"type":"error","message":"search capability unavailable"}`,
		},
		{
			name:  "done",
			event: DoneEvent(),
			want:  `{"type":"done"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.event)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
}

func TestPipelineEvent_MarshalCompanyResult(t *testing.T) {
	ev := CompanyEvent(CompanyAnalysis{
		CompanyName:    "Acme AI",
		Website:        "https://acme.ai",
		RelevanceScore: 85,
	})

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "company_result", decoded["type"])

	data, ok := decoded["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Acme AI", data["company_name"])
	assert.Equal(t, "https://acme.ai", data["website"])
	assert.EqualValues(t, 85, data["relevance_score"])
}
