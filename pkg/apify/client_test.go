package apify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunActorSync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acts/apify~google-search-scraper/run-sync-get-dataset-items", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("token"))

		var input map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, "test query", input["queries"])

		w.Write([]byte(`[{"url":"https://acme.com","title":"Acme"}]`))
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL))
	items, err := c.RunActorSync(context.Background(), "apify~google-search-scraper", map[string]any{"queries": "test query"})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://acme.com", items[0]["url"])
}

func TestRunActorSync_MissingToken(t *testing.T) {
	c := NewClient("")
	_, err := c.RunActorSync(context.Background(), "any", nil)
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestRunActorSync_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"actor not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL))
	_, err := c.RunActorSync(context.Background(), "missing~actor", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestSearch_FlattensOrganicResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"searchQuery":{"term":"site:linkedin.com/company Acme"},
			 "organicResults":[
				{"url":"https://linkedin.com/company/acme","title":"Acme | LinkedIn","description":"Acme on LinkedIn"},
				{"url":"https://linkedin.com/company/acme-inc","title":"Acme Inc"}
			 ]},
			{"searchQuery":{"term":"no results query"},"organicResults":[]}
		]`))
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL))
	results, err := Search(context.Background(), c, "apify~google-search-scraper",
		[]string{"site:linkedin.com/company Acme", "no results query"}, 2)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "site:linkedin.com/company Acme", results[0].Query)
	assert.Equal(t, "https://linkedin.com/company/acme", results[0].URL)
	assert.Equal(t, "Acme | LinkedIn", results[0].Title)
}

func TestSearch_EmptyQueries(t *testing.T) {
	c := NewClient("tok")
	results, err := Search(context.Background(), c, "actor", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCrawl_ParsesMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var input crawlInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, 1, input.MaxCrawlDepth)
		assert.Equal(t, 5, input.MaxCrawlPages)
		require.Len(t, input.StartURLs, 1)

		w.Write([]byte(`[
			{"url":"https://acme.com","markdown":"# Acme","metadata":{"title":"Acme Corp","description":"We make anvils"}},
			{"url":"https://acme.com/about","text":"About Acme","title":"About"}
		]`))
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL))
	pages, err := Crawl(context.Background(), c, "apify~website-content-crawler",
		[]string{"https://acme.com", "not-a-url"}, 5, 1, 5)

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "Acme Corp", pages[0].Title)
	assert.Equal(t, "We make anvils", pages[0].Description)
	assert.Equal(t, "# Acme", pages[0].Text)
	assert.Equal(t, "About", pages[1].Title)
}

func TestCrawl_PageBudgetScalesWithBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var input crawlInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		require.Len(t, input.StartURLs, 3)
		// maxCrawlPages caps the whole actor run; each company keeps its
		// own page budget.
		assert.Equal(t, 15, input.MaxCrawlPages)

		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL))
	pages, err := Crawl(context.Background(), c, "apify~website-content-crawler",
		[]string{"https://a.com", "https://b.com", "https://c.com"}, 5, 1, 2)

	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestCrawl_NoValidURLs(t *testing.T) {
	c := NewClient("tok")
	pages, err := Crawl(context.Background(), c, "actor", []string{"ftp://nope"}, 5, 1, 5)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestScrapeProfiles_FiltersNonProfiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"companyName":"Acme","followerCount":1200},
			{"error":"profile not found"}
		]`))
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL))
	profiles, err := ScrapeProfiles(context.Background(), c, "dev_fusion~linkedin-company-scraper",
		[]string{"https://linkedin.com/company/acme"})

	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Acme", ProfileString(profiles[0], "companyName", "name"))
	assert.Equal(t, 1200, ProfileInt(profiles[0], "followerCount"))
}
