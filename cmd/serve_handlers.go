package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/insighter-hq/researcher/internal/filter"
	"github.com/insighter-hq/researcher/internal/model"
	"github.com/insighter-hq/researcher/internal/pipeline"
)

// runFunc matches pipeline.Runner.Run, abstracted so handlers are
// testable without a live runner.
type runFunc func(ctx context.Context, profile model.SearchProfile, filterCfg *filter.Config) <-chan model.PipelineEvent

var _ runFunc = (*pipeline.Runner)(nil).Run

// researchRequest is the POST /research body: the search profile fields
// at the top level, plus optional filter criteria.
type researchRequest struct {
	model.SearchProfile
	Filters *filter.Config `json:"filters,omitempty"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// researchHandler streams one research run as server-sent events. The
// request context doubles as the run context, so a client disconnect
// cancels the pipeline.
func researchHandler(run runFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req researchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if len(req.IncludedIndustries) == 0 && len(req.RequiredKeywords) == 0 {
			http.Error(w, `{"error":"included_industries or required_keywords is required"}`, http.StatusBadRequest)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, `{"error":"streaming unsupported"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for ev := range run(r.Context(), req.SearchProfile, req.Filters) {
			if err := writeSSE(w, ev); err != nil {
				zap.L().Warn("client write failed, dropping stream", zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

// writeSSE frames one event as an SSE data line.
func writeSSE(w io.Writer, ev model.PipelineEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
