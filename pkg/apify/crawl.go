package apify

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

// CrawledPage is one page returned by the website-content crawler.
type CrawledPage struct {
	URL         string
	Title       string
	Description string
	Text        string
	HTML        string
}

type crawlStartURL struct {
	URL string `json:"url"`
}

type crawlInput struct {
	StartURLs      []crawlStartURL `json:"startUrls"`
	MaxCrawlDepth  int             `json:"maxCrawlDepth"`
	MaxCrawlPages  int             `json:"maxCrawlPages"`
	MaxConcurrency int             `json:"maxConcurrency"`
	SaveMarkdown   bool            `json:"saveMarkdown"`
	SaveHTML       bool            `json:"saveHtml"`
}

// Crawl runs the content crawler over all URLs in a single actor call.
// Depth and page budget bound the cost per start URL.
func Crawl(ctx context.Context, c Client, actorID string, urls []string, maxPages, maxDepth, maxConcurrency int) ([]CrawledPage, error) {
	var start []crawlStartURL
	for _, u := range urls {
		if strings.HasPrefix(u, "http") {
			start = append(start, crawlStartURL{URL: u})
		}
	}
	if len(start) == 0 {
		return nil, nil
	}

	items, err := c.RunActorSync(ctx, actorID, crawlInput{
		StartURLs:      start,
		MaxCrawlDepth:  maxDepth,
		// maxCrawlPages caps the whole run; maxPages is a per-company
		// budget, so scale it by the batch size.
		MaxCrawlPages:  maxPages * len(start),
		MaxConcurrency: maxConcurrency,
		SaveMarkdown:   true,
		SaveHTML:       true,
	})
	if err != nil {
		return nil, eris.Wrap(err, "apify: crawl websites")
	}

	pages := make([]CrawledPage, 0, len(items))
	for _, item := range items {
		page := CrawledPage{
			URL:  stringField(item, "url"),
			Text: stringField(item, "markdown", "text"),
			HTML: stringField(item, "html"),
		}
		if page.URL == "" {
			continue
		}
		if meta, ok := item["metadata"].(map[string]any); ok {
			page.Title = stringField(meta, "title")
			page.Description = stringField(meta, "description")
		}
		if page.Title == "" {
			page.Title = stringField(item, "title")
		}
		if page.Description == "" {
			page.Description = stringField(item, "description")
		}
		pages = append(pages, page)
	}

	return pages, nil
}
