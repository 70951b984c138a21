// Package analyze converges each candidate's fused evidence into one
// structured CompanyAnalysis. Source precedence is tiered: network
// profile first, website content second, model knowledge third, and a
// deterministic fallback record last. A company that reaches this stage
// is never dropped.
package analyze

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/insighter-hq/researcher/internal/extract"
	"github.com/insighter-hq/researcher/internal/gateway"
	"github.com/insighter-hq/researcher/internal/model"
)

// Input is one candidate's evidence after enrichment and fusion. Page,
// Profile, and Extraction are nil when the corresponding source had
// nothing.
type Input struct {
	Candidate  model.CompanyCandidate
	Page       *model.PageContent
	Profile    *model.NetworkProfile
	Extraction *extract.Extraction
}

// Synthesizer produces analysis records through the gateway.
type Synthesizer struct {
	gw  *gateway.Gateway
	log *zap.Logger
}

// New creates a Synthesizer.
func New(gw *gateway.Gateway) *Synthesizer {
	return &Synthesizer{
		gw:  gw,
		log: zap.L().With(zap.String("component", "analyze")),
	}
}

// Analyze runs the tier ladder for one candidate. It always returns a
// record: when every model tier fails, the deterministic fallback is
// synthesized from raw page metadata with relevance forced to zero.
func (s *Synthesizer) Analyze(ctx context.Context, in Input, profile model.SearchProfile) *model.CompanyAnalysis {
	var analysis *model.CompanyAnalysis

	if in.Profile != nil {
		analysis = s.analyzeProfile(ctx, in, profile)
	}
	if analysis == nil && in.Page != nil {
		analysis = s.analyzeContent(ctx, in, profile)
	}
	if analysis == nil {
		analysis = s.analyzeKnowledge(ctx, in, profile)
	}
	if analysis == nil {
		s.log.Warn("all analysis tiers failed, synthesizing fallback record",
			zap.String("company", in.Candidate.Name),
		)
		analysis = fallbackRecord(in)
	}

	finalize(analysis, in)
	return analysis
}

// analyzeProfile is the highest tier: structured network-profile data.
func (s *Synthesizer) analyzeProfile(ctx context.Context, in Input, profile model.SearchProfile) *model.CompanyAnalysis {
	prompt := profilePrompt(in, profile)
	analysis := s.complete(ctx, "profile", in.Candidate.Name, prompt)
	if analysis == nil {
		return nil
	}
	// Backfill what the model omitted from the raw profile.
	if analysis.ProfileURL == "" {
		analysis.ProfileURL = in.Profile.URL
	}
	if analysis.FollowerCount == 0 {
		analysis.FollowerCount = in.Profile.FollowerCount
	}
	if len(analysis.Specialties) == 0 {
		analysis.Specialties = in.Profile.Specialties
	}
	if analysis.FoundedYear == 0 {
		analysis.FoundedYear = in.Profile.FoundedYear
	}
	return analysis
}

func (s *Synthesizer) analyzeContent(ctx context.Context, in Input, profile model.SearchProfile) *model.CompanyAnalysis {
	return s.complete(ctx, "content", in.Candidate.Name, contentPrompt(in, profile))
}

func (s *Synthesizer) analyzeKnowledge(ctx context.Context, in Input, profile model.SearchProfile) *model.CompanyAnalysis {
	return s.complete(ctx, "knowledge", in.Candidate.Name, knowledgePrompt(in, profile))
}

// complete runs one gateway call and parses the response. Any failure
// returns nil so the caller falls through to the next tier.
func (s *Synthesizer) complete(ctx context.Context, tier, company, prompt string) *model.CompanyAnalysis {
	text, err := s.gw.Complete(ctx, prompt)
	if err != nil {
		s.log.Warn("analysis tier failed",
			zap.String("tier", tier),
			zap.String("company", company),
			zap.Error(err),
		)
		return nil
	}

	payload, err := gateway.ExtractJSON(text)
	if err != nil {
		s.log.Warn("analysis response had no JSON payload",
			zap.String("tier", tier),
			zap.String("company", company),
		)
		return nil
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		s.log.Warn("analysis response failed to parse",
			zap.String("tier", tier),
			zap.String("company", company),
			zap.Error(err),
		)
		return nil
	}
	return raw.toAnalysis()
}

// fallbackRecord synthesizes a minimal record from raw page metadata.
func fallbackRecord(in Input) *model.CompanyAnalysis {
	name := in.Candidate.Name
	summary := "No summary available (Analysis Failed)."
	if in.Page != nil {
		if name == "" {
			name = in.Page.Title
		}
		if in.Page.MetaDescription != "" {
			summary = in.Page.MetaDescription
		}
	}
	if name == "" {
		name = "Unknown Company"
	}
	return &model.CompanyAnalysis{
		CompanyName:           name,
		Website:               in.Candidate.URL,
		IndustryMatch:         false,
		EmployeeCountEstimate: "Unknown",
		Locations:             []string{},
		Certifications:        []string{},
		ProductCategories:     []string{},
		Summary:               summary,
		RelevanceScore:        0,
	}
}

// finalize applies the correction rules that hold regardless of which
// tier produced the record.
func finalize(analysis *model.CompanyAnalysis, in Input) {
	if analysis.CompanyName == "" {
		analysis.CompanyName = in.Candidate.Name
	}

	// The website field always resolves to the company's own URL when
	// one is known, never the network-profile URL.
	if in.Candidate.URL != "" && !strings.Contains(in.Candidate.URL, "linkedin.com") {
		analysis.Website = in.Candidate.URL
	}

	// Upgrade contact info from extracted signals when the model came
	// back empty-handed.
	if in.Extraction != nil && needsContact(analysis.ContactInfo) {
		if best := in.Extraction.BestEmail(); best != "" {
			analysis.ContactInfo = best
		} else if best := in.Extraction.BestPhone(); best != "" {
			analysis.ContactInfo = best
		}
	}
	if in.Extraction != nil && len(analysis.Locations) == 0 {
		if loc := in.Extraction.PrimaryLocation(); loc != "" {
			analysis.Locations = []string{loc}
		}
	}

	if analysis.RelevanceScore < 0 {
		analysis.RelevanceScore = 0
	}
	if analysis.RelevanceScore > 100 {
		analysis.RelevanceScore = 100
	}
}

func needsContact(info string) bool {
	return info == "" || strings.EqualFold(info, "unknown")
}
