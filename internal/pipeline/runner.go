// Package pipeline orchestrates a research run end to end: discovery,
// enrichment, extraction, analysis, filtering, and insight aggregation,
// reported as one strictly ordered event stream per request.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/insighter-hq/researcher/internal/analyze"
	"github.com/insighter-hq/researcher/internal/config"
	"github.com/insighter-hq/researcher/internal/discovery"
	"github.com/insighter-hq/researcher/internal/enrich"
	"github.com/insighter-hq/researcher/internal/extract"
	"github.com/insighter-hq/researcher/internal/filter"
	"github.com/insighter-hq/researcher/internal/gateway"
	"github.com/insighter-hq/researcher/internal/insight"
	"github.com/insighter-hq/researcher/internal/model"
	"github.com/insighter-hq/researcher/internal/store"
	"github.com/insighter-hq/researcher/pkg/apify"
)

// Runner owns the stage sequence for research runs. Construct once and
// reuse across requests; each Run gets its own event channel.
type Runner struct {
	cfg       *config.Config
	discovery *discovery.Stage
	enricher  *enrich.Coordinator
	synth     *analyze.Synthesizer
	insights  *insight.Aggregator
	store     store.Store
	log       *zap.Logger
}

// New wires a Runner from its stage dependencies.
func New(cfg *config.Config, gw *gateway.Gateway, actors apify.Client, st store.Store) *Runner {
	return &Runner{
		cfg:       cfg,
		discovery: discovery.New(gw, cfg.Discovery.Limit,
			discovery.WithSearch(actors, cfg.Apify.SearchActor)),
		enricher:  enrich.New(actors, cfg.Apify, cfg.Crawl),
		synth:     analyze.New(gw),
		insights:  insight.New(gw),
		store:     st,
		log:       zap.L().With(zap.String("component", "pipeline")),
	}
}

// runPayload is the cached form of a completed run.
type runPayload struct {
	Companies []*model.CompanyAnalysis `json:"companies"`
	Insights  string                   `json:"insights"`
}

// Run executes the pipeline and streams ordered events. The channel is
// closed when the run finishes or the context is canceled; cancellation
// is checked between stages, never mid-call.
func (r *Runner) Run(ctx context.Context, profile model.SearchProfile, filterCfg *filter.Config) <-chan model.PipelineEvent {
	events := make(chan model.PipelineEvent)
	go func() {
		defer close(events)
		r.run(ctx, profile, filterCfg, events)
	}()
	return events
}

func (r *Runner) run(ctx context.Context, profile model.SearchProfile, filterCfg *filter.Config, events chan<- model.PipelineEvent) {
	if !r.emit(ctx, events, model.StatusEvent("Starting Deep Company Research...")) {
		return
	}

	if cached := r.lookupCache(ctx, profile); cached != nil {
		r.replay(ctx, events, cached)
		return
	}

	// Stage 1: discovery. Never errors and never returns empty; the
	// final tier is a synthetic fallback list.
	if !r.emit(ctx, events, model.StatusEvent("Discovering companies (Strict Domain Filter)...")) {
		return
	}
	candidates := r.discovery.Discover(ctx, profile)
	if ctx.Err() != nil {
		return
	}
	if len(candidates) == 0 {
		if !r.emit(ctx, events, model.StatusEvent("No companies found. Try broader keywords.")) {
			return
		}
		r.emit(ctx, events, model.DoneEvent())
		return
	}
	if !r.emit(ctx, events, model.StatusEvent(fmt.Sprintf("Identified %d candidates. Fetching Data...", len(candidates)))) {
		return
	}

	// Stage 2: enrichment. Both actor sources in one concurrent pass.
	if !r.emit(ctx, events, model.StatusEvent("Scraping profiles and websites...")) {
		return
	}
	evidence, err := r.enricher.Enrich(ctx, candidates)
	if err != nil {
		r.fail(ctx, events, err)
		return
	}

	// Stage 3: per-company analysis, bounded fan-out, results kept in
	// candidate order.
	type outcome struct {
		analysis   *model.CompanyAnalysis
		extraction *extract.Extraction
	}
	outcomes := make([]outcome, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Pipeline.MaxConcurrentAnalyses)
	for i, cand := range candidates {
		g.Go(func() error {
			page := evidence.Pages[cand.URL]
			ex := extract.FromPage(page)

			in := analyze.Input{
				Candidate:  cand,
				Page:       page,
				Extraction: ex,
			}
			if prof, ok := evidence.Profiles[cand.URL]; ok {
				in.Profile = &prof
			}
			outcomes[i] = outcome{
				analysis:   r.synth.Analyze(gctx, in, profile),
				extraction: ex,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.fail(ctx, events, err)
		return
	}
	if ctx.Err() != nil {
		return
	}

	// Stage 4: optional filtering.
	entries := make([]filter.Entry, len(outcomes))
	for i, o := range outcomes {
		entries[i] = filter.Entry{Analysis: o.analysis, Extraction: o.extraction}
	}
	matched := make([]*model.CompanyAnalysis, 0, len(entries))
	if filterCfg != nil && filterCfg.Active() {
		result := filter.Apply(entries, *filterCfg)
		matched = result.Matched
		if !r.emit(ctx, events, model.StatusEvent(fmt.Sprintf(
			"Filters applied: %d of %d matched (%s)",
			result.Stats.Matched, result.Stats.TotalCompanies, result.Stats.MatchRate,
		))) {
			return
		}
		for _, rej := range result.Rejected {
			r.log.Info("company rejected by filters",
				zap.String("company", rej.Company.CompanyName),
				zap.Strings("reasons", rej.Reasons),
			)
		}
	} else {
		for _, e := range entries {
			matched = append(matched, e.Analysis)
		}
	}

	// Stage 5: stream per-company results in candidate order.
	for i, analysis := range matched {
		if !r.emit(ctx, events, model.StatusEvent(fmt.Sprintf("Analyzing %s...", analysis.CompanyName))) {
			return
		}
		if !r.emit(ctx, events, model.CompanyEvent(*analysis)) {
			return
		}
		if !r.emit(ctx, events, model.ProgressEvent(i+1, len(matched))) {
			return
		}
	}

	// Stage 6: market insights. Always non-empty for a non-empty set.
	var insights string
	if len(matched) > 0 {
		if !r.emit(ctx, events, model.StatusEvent("Generating Final Market Insights...")) {
			return
		}
		insights = r.insights.Generate(ctx, matched)
		if ctx.Err() != nil {
			return
		}
		if !r.emit(ctx, events, model.InsightsEvent(insights)) {
			return
		}
	}

	r.storeCache(ctx, profile, runPayload{Companies: matched, Insights: insights})

	if !r.emit(ctx, events, model.StatusEvent("Research completed.")) {
		return
	}
	r.emit(ctx, events, model.DoneEvent())
}

// replay re-emits a cached run as a fresh event sequence.
func (r *Runner) replay(ctx context.Context, events chan<- model.PipelineEvent, payload *runPayload) {
	if !r.emit(ctx, events, model.StatusEvent("Serving cached research results...")) {
		return
	}
	for i, analysis := range payload.Companies {
		if !r.emit(ctx, events, model.CompanyEvent(*analysis)) {
			return
		}
		if !r.emit(ctx, events, model.ProgressEvent(i+1, len(payload.Companies))) {
			return
		}
	}
	if payload.Insights != "" {
		if !r.emit(ctx, events, model.InsightsEvent(payload.Insights)) {
			return
		}
	}
	if !r.emit(ctx, events, model.StatusEvent("Research completed.")) {
		return
	}
	r.emit(ctx, events, model.DoneEvent())
}

func (r *Runner) lookupCache(ctx context.Context, profile model.SearchProfile) *runPayload {
	if r.store == nil {
		return nil
	}
	if _, err := r.store.DeleteExpired(ctx); err != nil {
		r.log.Warn("cache housekeeping failed", zap.Error(err))
	}
	cached, err := r.store.GetCachedResult(ctx, profile.Hash())
	if err != nil {
		r.log.Warn("cache lookup failed", zap.Error(err))
		return nil
	}
	if cached == nil {
		return nil
	}
	var payload runPayload
	if err := json.Unmarshal(cached.Payload, &payload); err != nil {
		r.log.Warn("cached payload unreadable, ignoring", zap.Error(err))
		return nil
	}
	return &payload
}

func (r *Runner) storeCache(ctx context.Context, profile model.SearchProfile, payload runPayload) {
	if r.store == nil || ctx.Err() != nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		r.log.Warn("cache payload marshal failed", zap.Error(err))
		return
	}
	if err := r.store.SetCachedResult(ctx, profile.Hash(), data, r.cfg.Cache.TTL()); err != nil {
		r.log.Warn("cache write failed", zap.Error(err))
	}
}

// fail surfaces a fatal condition as an error event, keeping the stream
// contract intact. Cancellation is silent; the consumer is gone.
func (r *Runner) fail(ctx context.Context, events chan<- model.PipelineEvent, err error) {
	if ctx.Err() != nil {
		return
	}
	r.log.Error("pipeline run failed", zap.Error(err))
	r.emit(ctx, events, model.ErrorEvent(err.Error()))
}

// emit sends one event unless the consumer has disconnected.
func (r *Runner) emit(ctx context.Context, events chan<- model.PipelineEvent, ev model.PipelineEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
