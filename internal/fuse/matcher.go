// Package fuse reconciles independently-fetched crawl and profile records
// back to one canonical company identity. A false merge corrupts
// relevance scoring, so unmatched items are dropped, never guessed.
package fuse

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/insighter-hq/researcher/internal/discovery"
	"github.com/insighter-hq/researcher/internal/model"
	"github.com/insighter-hq/researcher/pkg/apify"
)

// Caps on fused page text. The homepage body is what analysis prompts
// consume; sub-pages are kept shorter.
const (
	maxHomepageText = 15000
	maxSubPageText  = 5000
)

// MatchPages groups crawled pages by the candidate they belong to, keyed
// by candidate URL. Matching order: exact URL equality, substring
// containment in either direction, profile URL, normalized name against
// the page title. First match wins; unmatched pages are logged and
// dropped. The shortest matched URL per candidate becomes the homepage
// content; longer URLs are filed as sub-pages under their final path
// segment.
func MatchPages(candidates []model.CompanyCandidate, pages []apify.CrawledPage) map[string]*model.PageContent {
	type bucket struct {
		candidate model.CompanyCandidate
		pages     []apify.CrawledPage
	}
	buckets := make(map[string]*bucket)

	for _, page := range pages {
		idx := matchCandidate(candidates, page.URL, page.Title)
		if idx < 0 {
			zap.L().Warn("fuse: crawled page matches no candidate, dropping",
				zap.String("url", page.URL),
			)
			continue
		}
		key := candidates[idx].URL
		if buckets[key] == nil {
			buckets[key] = &bucket{candidate: candidates[idx]}
		}
		buckets[key].pages = append(buckets[key].pages, page)
	}

	out := make(map[string]*model.PageContent, len(buckets))
	for key, b := range buckets {
		out[key] = fusePages(b.candidate, b.pages)
	}
	return out
}

// fusePages merges one candidate's pages into a single PageContent.
func fusePages(candidate model.CompanyCandidate, pages []apify.CrawledPage) *model.PageContent {
	// Shortest URL is the homepage.
	home := 0
	for i, p := range pages {
		if len(p.URL) < len(pages[home].URL) {
			home = i
		}
	}

	content := &model.PageContent{
		URL:             candidate.URL,
		Title:           pages[home].Title,
		MetaDescription: pages[home].Description,
		Text:            truncate(pages[home].Text, maxHomepageText),
		HTML:            pages[home].HTML,
		SubPages:        make(map[string]string),
	}

	for i, p := range pages {
		if i == home {
			continue
		}
		slug := pathSlug(p.URL)
		content.SubPages[slug] = truncate(p.Text, maxSubPageText)
		if content.Title == "" {
			content.Title = p.Title
		}
		if content.MetaDescription == "" {
			content.MetaDescription = p.Description
		}
	}

	structurePage(content)
	return content
}

// structurePage fills the structured text fields from the homepage HTML
// when the crawler returned it.
func structurePage(content *model.PageContent) {
	if content.HTML == "" {
		return
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content.HTML))
	if err != nil {
		zap.L().Warn("fuse: unparsable homepage HTML", zap.String("url", content.URL))
		return
	}
	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			content.Headings = append(content.Headings, t)
		}
	})
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			content.Paragraphs = append(content.Paragraphs, t)
		}
	})
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			content.ListItems = append(content.ListItems, t)
		}
	})
}

// matchCandidate finds the index of the candidate an item belongs to, or
// -1 when no rule matches.
func matchCandidate(candidates []model.CompanyCandidate, itemURL, itemName string) int {
	// 1. Exact URL equality.
	for i, c := range candidates {
		if itemURL != "" && itemURL == c.URL {
			return i
		}
	}
	// 2. Substring containment in either direction, on normalized URLs.
	normItem := discovery.NormalizeURL(itemURL)
	if normItem != "" {
		for i, c := range candidates {
			normCand := discovery.NormalizeURL(c.URL)
			if normCand == "" {
				continue
			}
			if strings.Contains(normItem, normCand) || strings.Contains(normCand, normItem) {
				return i
			}
		}
	}
	// 3. Exact network-profile URL match.
	for i, c := range candidates {
		if c.ProfileURL != "" && itemURL == c.ProfileURL {
			return i
		}
	}
	// 4. Normalized-name exact match.
	if name := NormalizeName(itemName); name != "" {
		for i, c := range candidates {
			if NormalizeName(c.Name) == name {
				return i
			}
		}
	}
	return -1
}

// pathSlug returns the final path segment of a URL, or "subpage" when
// there is none.
func pathSlug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "subpage"
	}
	trimmed := strings.Trim(u.Path, "/")
	if trimmed == "" {
		return "subpage"
	}
	parts := strings.Split(trimmed, "/")
	return parts[len(parts)-1]
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// nameFolder strips diacritics so "Café Ltd" and "Cafe Ltd" compare equal.
var nameFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName reduces a company name to a comparison key: diacritics
// folded, lowercased, punctuation removed, whitespace collapsed.
func NormalizeName(s string) string {
	folded, _, err := transform.String(nameFolder, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
