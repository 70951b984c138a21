package apify

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

// SearchResult is one organic result from the batch search actor,
// annotated with the query that produced it.
type SearchResult struct {
	Query       string
	URL         string
	Title       string
	Description string
}

// searchInput mirrors the google-search-scraper actor input. Queries are
// newline-separated so one run covers the whole batch.
type searchInput struct {
	Queries                  string `json:"queries"`
	ResultsPerPage           int    `json:"resultsPerPage"`
	MaxPagesPerQuery         int    `json:"maxPagesPerQuery"`
	LanguageCode             string `json:"languageCode"`
	MobileResults            bool   `json:"mobileResults"`
	IncludeUnfilteredResults bool   `json:"includeUnfilteredResults"`
}

// Search runs the batch search actor for all queries in a single call and
// flattens the organic results.
func Search(ctx context.Context, c Client, actorID string, queries []string, resultsPerPage int) ([]SearchResult, error) {
	if len(queries) == 0 {
		return nil, nil
	}
	if resultsPerPage <= 0 {
		resultsPerPage = 5
	}

	items, err := c.RunActorSync(ctx, actorID, searchInput{
		Queries:          strings.Join(queries, "\n"),
		ResultsPerPage:   resultsPerPage,
		MaxPagesPerQuery: 1,
		LanguageCode:     "en",
	})
	if err != nil {
		return nil, eris.Wrap(err, "apify: batch search")
	}

	var results []SearchResult
	for _, item := range items {
		query := ""
		if sq, ok := item["searchQuery"].(map[string]any); ok {
			query = stringField(sq, "term")
		}

		organic, ok := item["organicResults"].([]any)
		if !ok {
			continue
		}
		for _, raw := range organic {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			resultURL := stringField(entry, "url")
			if resultURL == "" {
				continue
			}
			results = append(results, SearchResult{
				Query:       query,
				URL:         resultURL,
				Title:       stringField(entry, "title"),
				Description: stringField(entry, "description"),
			})
		}
	}

	return results, nil
}
