package filter

import (
	"fmt"

	"github.com/insighter-hq/researcher/internal/extract"
	"github.com/insighter-hq/researcher/internal/model"
)

// Entry pairs an analysis record with its extracted signals.
type Entry struct {
	Analysis   *model.CompanyAnalysis
	Extraction *extract.Extraction
}

// Rejection is a failed company with its ordered reasons.
type Rejection struct {
	Company *model.CompanyAnalysis `json:"company"`
	Reasons []string               `json:"rejection_reasons"`
}

// Stats summarizes one Apply pass.
type Stats struct {
	TotalCompanies int    `json:"total_companies"`
	Matched        int    `json:"matched"`
	Rejected       int    `json:"rejected"`
	MatchRate      string `json:"match_rate"`
	FiltersApplied int    `json:"filters_applied"`
}

// Result is the outcome of filtering a company set.
type Result struct {
	Matched  []*model.CompanyAnalysis `json:"matched"`
	Rejected []Rejection              `json:"rejected"`
	Stats    Stats                    `json:"stats"`
}

// Apply evaluates every entry and splits the set into matched and
// rejected, preserving input order.
func Apply(entries []Entry, cfg Config) Result {
	result := Result{
		Matched:  []*model.CompanyAnalysis{},
		Rejected: []Rejection{},
	}

	for _, entry := range entries {
		verdict := Evaluate(entry.Analysis, entry.Extraction, cfg)
		if verdict.Passes {
			result.Matched = append(result.Matched, entry.Analysis)
		} else {
			result.Rejected = append(result.Rejected, Rejection{
				Company: entry.Analysis,
				Reasons: verdict.Reasons,
			})
		}
	}

	result.Stats = Stats{
		TotalCompanies: len(entries),
		Matched:        len(result.Matched),
		Rejected:       len(result.Rejected),
		MatchRate:      "0%",
		FiltersApplied: cfg.criteriaCount(),
	}
	if len(entries) > 0 {
		result.Stats.MatchRate = fmt.Sprintf("%.1f%%", float64(len(result.Matched))/float64(len(entries))*100)
	}
	return result
}
