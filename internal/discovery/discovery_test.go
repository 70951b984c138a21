package discovery

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insighter-hq/researcher/internal/gateway"
	"github.com/insighter-hq/researcher/internal/model"
	"github.com/insighter-hq/researcher/pkg/apify"
)

// scriptedProvider returns canned responses in sequence.
type scriptedProvider struct {
	responses []string
	errs      []error
	call      int
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) Complete(ctx context.Context, prompt string) (string, error) {
	i := s.call
	s.call++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", eris.New("no scripted response")
}

func newTestGateway(p gateway.Provider) *gateway.Gateway {
	return gateway.New([]gateway.Provider{p}, 0)
}

var testProfile = model.SearchProfile{
	IncludedIndustries: []string{"Tech"},
	RequiredKeywords:   []string{"AI"},
	TargetCountries:    []string{"US"},
}

// stubSearchClient serves canned search-actor items and records inputs.
type stubSearchClient struct {
	items  []map[string]any
	err    error
	inputs []any
}

func (s *stubSearchClient) RunActorSync(_ context.Context, _ string, input any) ([]map[string]any, error) {
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func organicItem(urls ...string) map[string]any {
	results := make([]any, 0, len(urls))
	for _, u := range urls {
		results = append(results, map[string]any{
			"url":         u,
			"title":       "Result for " + u,
			"description": "snippet",
		})
	}
	return map[string]any{
		"searchQuery":    map[string]any{"term": "q"},
		"organicResults": results,
	}
}

func TestDiscover_StrictTierSucceeds(t *testing.T) {
	p := &scriptedProvider{responses: []string{
		`[{"name":"Acme AI","url":"https://acme.ai","snippet":"AI anvils"}]`,
	}}
	stage := New(newTestGateway(p), 10)

	candidates := stage.Discover(context.Background(), testProfile)

	require.Len(t, candidates, 1)
	assert.Equal(t, "Acme AI", candidates[0].Name)
	assert.Equal(t, model.ProvenanceStrict, candidates[0].Provenance)
	assert.Equal(t, 1, p.call)
}

func TestDiscover_FallsThroughToBroad(t *testing.T) {
	p := &scriptedProvider{responses: []string{
		`[]`,
		`[{"name":"BigCo","url":"https://bigco.com"}]`,
	}}
	stage := New(newTestGateway(p), 10)

	candidates := stage.Discover(context.Background(), testProfile)

	require.Len(t, candidates, 1)
	assert.Equal(t, model.ProvenanceBroad, candidates[0].Provenance)
}

func TestDiscover_SearchTierSeedsCandidates(t *testing.T) {
	// Strict tier empty, then model-generated queries feed the actor.
	p := &scriptedProvider{responses: []string{
		`[]`,
		`["ai startups san francisco"]`,
	}}
	search := &stubSearchClient{items: []map[string]any{
		organicItem("https://acme.ai", "https://www.acme.ai/", "https://beta.dev"),
	}}
	stage := New(newTestGateway(p), 10, WithSearch(search, "search-actor"))

	candidates := stage.Discover(context.Background(), testProfile)

	require.Len(t, candidates, 2, "duplicate hosts collapse")
	assert.Equal(t, "https://acme.ai", candidates[0].URL)
	assert.Equal(t, "Result for https://acme.ai", candidates[0].Name)
	assert.Equal(t, model.ProvenanceSearch, candidates[0].Provenance)
	assert.False(t, candidates[0].Provenance.Synthetic())
	// Strict prompt + query generation; the broad tier never runs.
	assert.Equal(t, 2, p.call)
}

func TestDiscover_SearchTierFallbackQueries(t *testing.T) {
	// Query generation fails; deterministic profile queries go out instead.
	p := &scriptedProvider{errs: []error{eris.New("down"), eris.New("down")}}
	search := &stubSearchClient{items: []map[string]any{
		organicItem("https://acme.ai"),
	}}
	stage := New(newTestGateway(p), 10, WithSearch(search, "search-actor"))

	candidates := stage.Discover(context.Background(), testProfile)

	require.Len(t, candidates, 1)
	assert.Equal(t, model.ProvenanceSearch, candidates[0].Provenance)

	require.Len(t, search.inputs, 1)
	input, err := json.Marshal(search.inputs[0])
	require.NoError(t, err)
	assert.Contains(t, string(input), "Tech companies in US")
	assert.Contains(t, string(input), "Tech companies in US AI")
}

func TestDiscover_SearchTierDegradesWithoutToken(t *testing.T) {
	p := &scriptedProvider{responses: []string{
		`[]`,
		`["some query"]`,
		`[{"name":"BigCo","url":"https://bigco.com"}]`,
	}}
	search := &stubSearchClient{err: apify.ErrMissingToken}
	stage := New(newTestGateway(p), 10, WithSearch(search, "search-actor"))

	candidates := stage.Discover(context.Background(), testProfile)

	require.Len(t, candidates, 1)
	assert.Equal(t, model.ProvenanceBroad, candidates[0].Provenance)
}

func TestDiscover_NoSearchClientSkipsTier(t *testing.T) {
	p := &scriptedProvider{responses: []string{
		`[]`,
		`[{"name":"BigCo","url":"https://bigco.com"}]`,
	}}
	stage := New(newTestGateway(p), 10)

	candidates := stage.Discover(context.Background(), testProfile)

	require.Len(t, candidates, 1)
	assert.Equal(t, model.ProvenanceBroad, candidates[0].Provenance)
	// No query-generation call happens when the tier is unconfigured.
	assert.Equal(t, 2, p.call)
}

func TestDiscover_HardcodedFallbackAfterAllTiers(t *testing.T) {
	failure := eris.New("provider down")
	p := &scriptedProvider{errs: []error{failure, failure, failure}}
	stage := New(newTestGateway(p), 10)

	candidates := stage.Discover(context.Background(), testProfile)

	require.NotEmpty(t, candidates)
	for _, c := range candidates {
		assert.Equal(t, model.ProvenanceFallback, c.Provenance)
		assert.True(t, c.Provenance.Synthetic())
	}
	assert.Equal(t, 3, p.call)
}

func TestDiscover_NeverEmpty(t *testing.T) {
	// Garbage on every tier still yields the fallback list.
	p := &scriptedProvider{responses: []string{"no json here", "still none", "nope"}}
	stage := New(newTestGateway(p), 10)

	candidates := stage.Discover(context.Background(), testProfile)
	assert.NotEmpty(t, candidates)
}

func TestParseCandidates_CapAndDedupe(t *testing.T) {
	stage := New(nil, 2)

	out := stage.parseCandidates(`[
		{"name":"A","url":"https://a.com"},
		{"name":"A again","url":"https://www.a.com/"},
		{"name":"B","url":"https://b.com"},
		{"name":"C","url":"https://c.com"}
	]`, model.ProvenanceStrict)

	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Name)
	assert.Equal(t, "B", out[1].Name)
}

func TestParseCandidates_SkipsInvalidEntries(t *testing.T) {
	stage := New(nil, 10)

	out := stage.parseCandidates(`[
		{"name":"","url":"https://a.com"},
		{"name":"NoURL","url":"not-a-url"},
		{"name":"OK","url":"https://ok.com"}
	]`, model.ProvenanceStrict)

	require.Len(t, out, 1)
	assert.Equal(t, "OK", out[0].Name)
}

func TestParseCandidates_ToleratesFencesAndProse(t *testing.T) {
	stage := New(nil, 10)

	out := stage.parseCandidates("Here you go:\n```json\n[{\"name\":\"Acme\",\"url\":\"https://acme.com\"}]\n```", model.ProvenanceGeneric)

	require.Len(t, out, 1)
	assert.Equal(t, "Acme", out[0].Name)
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://www.Acme.com/", "acme.com"},
		{"http://acme.com/about/", "acme.com/about"},
		{"https://acme.com", "acme.com"},
		{"ACME.COM", "acme.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeURL(tt.in), tt.in)
	}
}

func TestDiscover_CanceledContextShortCircuits(t *testing.T) {
	p := &scriptedProvider{}
	stage := New(newTestGateway(p), 10)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	candidates := stage.Discover(ctx, testProfile)

	// Falls straight to the hardcoded list without provider calls.
	assert.NotEmpty(t, candidates)
	assert.Equal(t, 0, p.call)
}
