// Package enrich gathers third-party evidence about discovered
// candidates: website content via the crawl actor and company profiles
// via the profile actor. Every source is best-effort; a company the
// actors know nothing about still proceeds to analysis with whatever
// the discovery snippet gave us.
package enrich

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/insighter-hq/researcher/internal/config"
	"github.com/insighter-hq/researcher/internal/fuse"
	"github.com/insighter-hq/researcher/internal/model"
	"github.com/insighter-hq/researcher/pkg/apify"
)

// Result holds the enrichment output, keyed by candidate URL. Absent
// keys mean no source had anything for that candidate.
type Result struct {
	Pages    map[string]*model.PageContent
	Profiles map[string]model.NetworkProfile
}

// Coordinator runs the enrichment passes against batch actors.
type Coordinator struct {
	client apify.Client
	cfg    config.ApifyConfig
	crawl  config.CrawlConfig
	log    *zap.Logger
}

// New creates a Coordinator.
func New(client apify.Client, cfg config.ApifyConfig, crawl config.CrawlConfig) *Coordinator {
	return &Coordinator{
		client: client,
		cfg:    cfg,
		crawl:  crawl,
		log:    zap.L().With(zap.String("component", "enrich")),
	}
}

// Enrich resolves missing profile URLs, then fetches website content and
// company profiles concurrently. Candidates are updated in place with
// resolved profile URLs. Individual source failures degrade to empty
// maps; only context cancellation aborts the pass.
func (c *Coordinator) Enrich(ctx context.Context, candidates []model.CompanyCandidate) (*Result, error) {
	result := &Result{
		Pages:    map[string]*model.PageContent{},
		Profiles: map[string]model.NetworkProfile{},
	}
	if len(candidates) == 0 {
		return result, nil
	}

	c.resolveProfileURLs(ctx, candidates)
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "enrich: canceled")
	}

	var (
		pages    []apify.CrawledPage
		profiles []map[string]any
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		urls := make([]string, 0, len(candidates))
		for _, cand := range candidates {
			if !cand.Provenance.Synthetic() {
				urls = append(urls, cand.URL)
			}
		}
		crawled, err := apify.Crawl(gctx, c.client, c.cfg.CrawlActor, urls,
			c.crawl.MaxPages, c.crawl.MaxDepth, c.crawl.MaxConcurrency)
		if err != nil {
			c.warnSource(gctx, "website crawl", err)
			return nil
		}
		pages = crawled
		return nil
	})
	g.Go(func() error {
		var urls []string
		for _, cand := range candidates {
			if cand.ProfileURL != "" {
				urls = append(urls, cand.ProfileURL)
			}
		}
		scraped, err := apify.ScrapeProfiles(gctx, c.client, c.cfg.ProfileActor, urls)
		if err != nil {
			c.warnSource(gctx, "profile scrape", err)
			return nil
		}
		profiles = scraped
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "enrich: canceled")
	}

	result.Pages = fuse.MatchPages(candidates, pages)
	result.Profiles = fuse.MatchProfiles(candidates, profiles)

	c.log.Info("enrichment complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("pages_matched", len(result.Pages)),
		zap.Int("profiles_matched", len(result.Profiles)),
	)
	return result, nil
}

// resolveProfileURLs backfills missing network-profile URLs with one
// batched search call. Search failures leave the URLs empty.
func (c *Coordinator) resolveProfileURLs(ctx context.Context, candidates []model.CompanyCandidate) {
	var queries []string
	queryToIdx := map[string]int{}
	for i, cand := range candidates {
		if cand.ProfileURL != "" || cand.Provenance.Synthetic() {
			continue
		}
		q := "site:linkedin.com/company " + cand.Name
		queries = append(queries, q)
		queryToIdx[q] = i
	}
	if len(queries) == 0 {
		return
	}

	results, err := apify.Search(ctx, c.client, c.cfg.SearchActor, queries, 3)
	if err != nil {
		c.warnSource(ctx, "profile url search", err)
		return
	}

	for _, r := range results {
		idx, ok := queryToIdx[r.Query]
		if !ok || candidates[idx].ProfileURL != "" {
			continue
		}
		if strings.Contains(r.URL, "linkedin.com/company") {
			candidates[idx].ProfileURL = r.URL
		}
	}
}

// warnSource logs a degraded source unless the run itself was canceled.
func (c *Coordinator) warnSource(ctx context.Context, source string, err error) {
	if ctx.Err() != nil {
		return
	}
	if eris.Is(err, apify.ErrMissingToken) {
		c.log.Warn("enrichment source disabled, no API token configured",
			zap.String("source", source),
		)
		return
	}
	c.log.Warn("enrichment source failed, continuing without it",
		zap.String("source", source),
		zap.Error(err),
	)
}
