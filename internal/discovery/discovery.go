// Package discovery produces the initial candidate list. Ordered tiers
// relax the profile constraints step by step: a strict model prompt, an
// optional live web-search pass, broad and generic prompts, and finally a
// hardcoded demo list so the pipeline is never empty.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/insighter-hq/researcher/internal/gateway"
	"github.com/insighter-hq/researcher/internal/model"
	"github.com/insighter-hq/researcher/pkg/apify"
)

const strictPrompt = `Task: Identify %d companies relevant to:
Industry: %s
Keywords: %s
Location: %s

CRITICAL INSTRUCTION:
- Return ONLY the official homepage URL for each company.
- DO NOT return links to news articles, blog posts, definitions, or directories (like Wikipedia, Clutch, LinkedIn).
- If the official site is not known, exclude the company.

Output strictly a RAW JSON list of objects:
[{"name": "Company Name", "url": "https://company-official-website.com", "snippet": "Brief description."}]`

const broadPrompt = `Task: List %d major companies in the '%s' industry.
Ignore other constraints if necessary.
Output strictly a RAW JSON list of objects:
[{"name": "Company Name", "url": "https://company-official-website.com", "snippet": "Brief description."}]`

const genericPrompt = `Task: List %d major global technology or service companies.
Output strictly a RAW JSON list of objects:
[{"name": "Company Name", "url": "https://company-official-website.com", "snippet": "Brief description."}]`

const queryPrompt = `Generate 5 specific Google search queries to find companies matching:

Ind: %s
Loc: %s
Key: %s

Output strictly a RAW JSON array of strings. No markdown.
Example: ["query 1", "query 2"]`

// resultsPerQuery bounds each seeded search query.
const resultsPerQuery = 5

// fallbackSnippet marks the hardcoded tier so downstream consumers can
// tell demo data from genuine discoveries.
const fallbackSnippet = "Demonstration data: no discovery tier produced results."

// fallbackCandidates is the last-resort tier.
var fallbackCandidates = []model.CompanyCandidate{
	{Name: "Google (System Fallback)", URL: "https://google.com", Snippet: fallbackSnippet, Provenance: model.ProvenanceFallback},
	{Name: "Microsoft (System Fallback)", URL: "https://microsoft.com", Snippet: fallbackSnippet, Provenance: model.ProvenanceFallback},
	{Name: "OpenAI (System Fallback)", URL: "https://openai.com", Snippet: fallbackSnippet, Provenance: model.ProvenanceFallback},
}

// Stage runs tiered candidate discovery against the gateway and,
// optionally, a live search actor.
type Stage struct {
	gw          *gateway.Gateway
	limit       int
	actors      apify.Client
	searchActor string
}

// Option configures optional discovery signals.
type Option func(*Stage)

// WithSearch enables the web-search seeding tier between the strict and
// broad prompts.
func WithSearch(client apify.Client, actorID string) Option {
	return func(s *Stage) {
		s.actors = client
		s.searchActor = actorID
	}
}

// New creates a discovery stage. limit caps candidates per tier.
func New(gw *gateway.Gateway, limit int, opts ...Option) *Stage {
	if limit <= 0 {
		limit = 10
	}
	s := &Stage{gw: gw, limit: limit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Discover returns the candidate list for the profile. Tiers fall through
// only when the previous one parsed to zero candidates; the hardcoded
// fallback guarantees a non-empty result. Discovery itself never fails.
func (s *Stage) Discover(ctx context.Context, profile model.SearchProfile) []model.CompanyCandidate {
	log := zap.L().With(zap.String("stage", "discovery"))

	tiers := []struct {
		provenance model.Provenance
		run        func() []model.CompanyCandidate
	}{
		{model.ProvenanceStrict, func() []model.CompanyCandidate {
			return s.tryTier(ctx, fmt.Sprintf(strictPrompt, s.limit,
				strings.Join(profile.IncludedIndustries, ", "),
				strings.Join(profile.RequiredKeywords, ", "),
				strings.Join(profile.TargetCountries, ", ")), model.ProvenanceStrict)
		}},
		{model.ProvenanceSearch, func() []model.CompanyCandidate {
			return s.searchTier(ctx, profile)
		}},
		{model.ProvenanceBroad, func() []model.CompanyCandidate {
			return s.tryTier(ctx, fmt.Sprintf(broadPrompt, s.limit,
				strings.Join(profile.IncludedIndustries, ", ")), model.ProvenanceBroad)
		}},
		{model.ProvenanceGeneric, func() []model.CompanyCandidate {
			return s.tryTier(ctx, fmt.Sprintf(genericPrompt, s.limit), model.ProvenanceGeneric)
		}},
	}

	for _, tier := range tiers {
		if ctx.Err() != nil {
			break
		}
		candidates := tier.run()
		if len(candidates) > 0 {
			log.Info("discovery: tier produced candidates",
				zap.String("tier", string(tier.provenance)),
				zap.Int("count", len(candidates)),
			)
			return candidates
		}
		log.Debug("discovery: tier empty, broadening", zap.String("tier", string(tier.provenance)))
	}

	log.Warn("discovery: all tiers exhausted, using hardcoded fallback")
	out := make([]model.CompanyCandidate, len(fallbackCandidates))
	copy(out, fallbackCandidates)
	return out
}

// tryTier runs one prompt and parses candidates out of the response.
// Any provider or parse failure is treated as an empty tier.
func (s *Stage) tryTier(ctx context.Context, prompt string, provenance model.Provenance) []model.CompanyCandidate {
	text, err := s.gw.Complete(ctx, prompt)
	if err != nil {
		zap.L().Debug("discovery: tier call failed", zap.Error(err))
		return nil
	}
	return s.parseCandidates(text, provenance)
}

// searchTier seeds candidates from live web search. It only runs when a
// search client is configured; a missing token or actor failure leaves
// the tier empty and the chain continues.
func (s *Stage) searchTier(ctx context.Context, profile model.SearchProfile) []model.CompanyCandidate {
	if s.actors == nil || s.searchActor == "" {
		return nil
	}

	queries := s.searchQueries(ctx, profile)
	if len(queries) == 0 {
		return nil
	}

	results, err := apify.Search(ctx, s.actors, s.searchActor, queries, resultsPerQuery)
	if err != nil {
		if eris.Is(err, apify.ErrMissingToken) {
			zap.L().Debug("discovery: search seeding disabled, no API token configured")
		} else {
			zap.L().Warn("discovery: search seeding failed, skipping tier", zap.Error(err))
		}
		return nil
	}

	seen := make(map[string]bool)
	var out []model.CompanyCandidate
	for _, r := range results {
		if !strings.HasPrefix(strings.ToLower(r.URL), "http") {
			continue
		}
		key := NormalizeURL(r.URL)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		name := r.Title
		if name == "" {
			name = "Unknown"
		}
		out = append(out, model.CompanyCandidate{
			Name:       name,
			URL:        r.URL,
			Snippet:    r.Description,
			Provenance: model.ProvenanceSearch,
		})
		if len(out) >= s.limit {
			break
		}
	}
	return out
}

// searchQueries asks the gateway for targeted queries, falling back to
// deterministic ones built from the profile when the model is unavailable
// or answers with garbage.
func (s *Stage) searchQueries(ctx context.Context, profile model.SearchProfile) []string {
	prompt := fmt.Sprintf(queryPrompt,
		strings.Join(profile.IncludedIndustries, ", "),
		strings.Join(profile.TargetCountries, ", "),
		strings.Join(profile.RequiredKeywords, ", "))

	if text, err := s.gw.Complete(ctx, prompt); err == nil {
		if payload, err := gateway.ExtractJSON(text); err == nil {
			var queries []string
			if json.Unmarshal([]byte(payload), &queries) == nil && len(queries) > 0 {
				return queries
			}
		}
		zap.L().Debug("discovery: query generation unparsable, using fallback queries")
	}

	return fallbackQueries(profile)
}

func fallbackQueries(profile model.SearchProfile) []string {
	if len(profile.IncludedIndustries) == 0 {
		return nil
	}
	base := profile.IncludedIndustries[0] + " companies"
	if len(profile.TargetCountries) > 0 {
		base += " in " + profile.TargetCountries[0]
	}
	queries := []string{base}
	if len(profile.RequiredKeywords) > 0 {
		queries = append(queries, base+" "+profile.RequiredKeywords[0])
	}
	return queries
}

type rawCandidate struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// parseCandidates extracts, validates, deduplicates, and caps candidates
// from model output.
func (s *Stage) parseCandidates(text string, provenance model.Provenance) []model.CompanyCandidate {
	payload, err := gateway.ExtractJSON(text)
	if err != nil {
		return nil
	}

	var raw []rawCandidate
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		zap.L().Debug("discovery: candidate parse failed", zap.Error(err))
		return nil
	}

	seen := make(map[string]bool)
	var out []model.CompanyCandidate
	for _, c := range raw {
		if c.Name == "" || !strings.HasPrefix(strings.ToLower(c.URL), "http") {
			continue
		}
		key := NormalizeURL(c.URL)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		out = append(out, model.CompanyCandidate{
			Name:       c.Name,
			URL:        c.URL,
			Snippet:    c.Snippet,
			Provenance: provenance,
		})
		if len(out) >= s.limit {
			break
		}
	}
	return out
}

// NormalizeURL reduces a URL to a dedup key: lowercase host without a www
// prefix, plus the path with any trailing slash removed.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimRight(raw, "/"))
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	path := strings.TrimRight(u.Path, "/")
	return host + path
}
