package fuse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insighter-hq/researcher/internal/model"
	"github.com/insighter-hq/researcher/pkg/apify"
)

func TestMatchPagesSubstring(t *testing.T) {
	candidates := []model.CompanyCandidate{
		{Name: "Acme AI", URL: "https://acme.com"},
		{Name: "Widget Co", URL: "https://widget.io"},
	}
	pages := []apify.CrawledPage{
		{URL: "https://acme.com", Title: "Acme", Text: "home"},
		{URL: "https://acme.com/about", Title: "About Acme", Text: "about page"},
		{URL: "https://unrelated.example.net", Title: "Nothing", Text: "noise"},
	}

	matched := MatchPages(candidates, pages)
	require.Len(t, matched, 1)

	content := matched["https://acme.com"]
	require.NotNil(t, content)
	assert.Equal(t, "https://acme.com", content.URL)
	assert.Equal(t, "home", content.Text)
	assert.Equal(t, "about page", content.SubPages["about"])
}

func TestMatchPagesShortestURLIsHomepage(t *testing.T) {
	candidates := []model.CompanyCandidate{{Name: "Acme", URL: "https://acme.com"}}
	pages := []apify.CrawledPage{
		{URL: "https://acme.com/products/widgets", Title: "Widgets", Text: "widget text"},
		{URL: "https://acme.com/", Title: "Home", Text: "home text"},
		{URL: "https://acme.com/team", Title: "Team", Text: "team text"},
	}

	matched := MatchPages(candidates, pages)
	content := matched["https://acme.com"]
	require.NotNil(t, content)
	assert.Equal(t, "home text", content.Text)
	assert.Equal(t, "Home", content.Title)
	assert.Equal(t, "widget text", content.SubPages["widgets"])
	assert.Equal(t, "team text", content.SubPages["team"])
}

func TestMatchPagesTruncation(t *testing.T) {
	candidates := []model.CompanyCandidate{{Name: "Acme", URL: "https://acme.com"}}
	pages := []apify.CrawledPage{
		{URL: "https://acme.com", Text: strings.Repeat("a", maxHomepageText+100)},
		{URL: "https://acme.com/about", Text: strings.Repeat("b", maxSubPageText+100)},
	}

	content := MatchPages(candidates, pages)["https://acme.com"]
	require.NotNil(t, content)
	assert.Len(t, content.Text, maxHomepageText)
	assert.Len(t, content.SubPages["about"], maxSubPageText)
}

func TestMatchPagesByName(t *testing.T) {
	candidates := []model.CompanyCandidate{{Name: "Café Robotics", URL: "https://caferobotics.example"}}
	pages := []apify.CrawledPage{
		{URL: "https://mirror.example/site", Title: "Cafe Robotics", Text: "mirrored"},
	}

	matched := MatchPages(candidates, pages)
	require.Len(t, matched, 1)
	assert.Equal(t, "mirrored", matched["https://caferobotics.example"].Text)
}

func TestMatchProfiles(t *testing.T) {
	candidates := []model.CompanyCandidate{
		{Name: "Acme AI", URL: "https://acme.com", ProfileURL: "https://linkedin.com/company/acme-ai"},
		{Name: "Widget Co", URL: "https://widget.io"},
	}
	items := []map[string]any{
		{
			"companyName":   "Acme AI Inc",
			"url":           "https://www.linkedin.com/company/acme-ai/",
			"website":       "https://acme.com",
			"industry":      "Software Development",
			"employeeCount": "51-200",
			"followerCount": float64(1200),
			"specialties":   []any{"machine learning", "nlp"},
			"foundedYear":   float64(2019),
		},
		{
			"companyName": "Widget Co",
			"url":         "https://linkedin.com/company/widget-co",
			"locations":   []any{map[string]any{"city": "Berlin"}},
		},
		{
			"companyName": "Stranger Corp",
			"url":         "https://linkedin.com/company/stranger",
		},
	}

	matched := MatchProfiles(candidates, items)
	require.Len(t, matched, 2)

	acme := matched["https://acme.com"]
	assert.Equal(t, "Acme AI Inc", acme.Name)
	assert.Equal(t, "51-200", acme.EmployeeCount)
	assert.Equal(t, 1200, acme.FollowerCount)
	assert.Equal(t, 2019, acme.FoundedYear)
	assert.Equal(t, []string{"machine learning", "nlp"}, acme.Specialties)

	widget := matched["https://widget.io"]
	assert.Equal(t, []string{"Berlin"}, widget.Locations)
}

func TestMatchProfilesFirstWins(t *testing.T) {
	candidates := []model.CompanyCandidate{{Name: "Acme", URL: "https://acme.com"}}
	items := []map[string]any{
		{"companyName": "Acme", "followerCount": float64(10)},
		{"companyName": "Acme", "followerCount": float64(99)},
	}

	matched := MatchProfiles(candidates, items)
	require.Len(t, matched, 1)
	assert.Equal(t, 10, matched["https://acme.com"].FollowerCount)
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Acme AI, Inc.", "acme ai inc"},
		{"Café   Robotics", "cafe robotics"},
		{"  WIDGET-CO  ", "widget co"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeName(tc.in), tc.in)
	}
}

func TestPathSlug(t *testing.T) {
	assert.Equal(t, "about", pathSlug("https://acme.com/about"))
	assert.Equal(t, "widgets", pathSlug("https://acme.com/products/widgets/"))
	assert.Equal(t, "subpage", pathSlug("https://acme.com/"))
	assert.Equal(t, "subpage", pathSlug("https://acme.com"))
}
