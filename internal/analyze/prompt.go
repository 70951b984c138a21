package analyze

import (
	"fmt"
	"sort"
	"strings"

	"github.com/insighter-hq/researcher/internal/model"
)

// Context caps keep prompt sizes bounded; the homepage gets the largest
// share, sub-pages a slice each.
const (
	maxHomepageContext = 1500
	maxSubPageContext  = 500
	maxAboutContext    = 5000
)

const analysisSchema = `{
"company_name": "str",
"website": "str",
"industry_match": bool,
"employee_count_estimate": "str/Unknown",
"locations": ["str"],
"certifications": ["str"],
"product_categories": ["str"],
"summary": "Short 1-sentence summary",
"contact_info": "email/phone/Unknown",
"relevance_score": int(0-100)
}`

const profileSchema = `{
"company_name": "str",
"website": "str (prefer external website if available)",
"industry_match": bool,
"employee_count_estimate": "str/Unknown",
"locations": ["str"],
"certifications": ["str"],
"product_categories": ["str"],
"summary": "Short 1-sentence summary",
"contact_info": "email/phone/Unknown",
"linkedin_url": "str",
"follower_count": int,
"founded_year": int or null,
"specialties": ["str"],
"relevance_score": int(0-100)
}`

const knowledgeSchema = `{
"company_name": "str",
"website": "str",
"industry_match": bool,
"employee_count_estimate": "str (e.g. 50-200)",
"locations": ["City, Country"],
"certifications": ["str"],
"product_categories": ["str"],
"summary": "Professional summary",
"contact_info": "email/phone/Unknown",
"estimated_revenue": "str (e.g. $10M+)",
"market_cap": "str (e.g. Private or $1B)",
"target_market": "B2B/B2C/Both",
"strategic_goals": ["Goal 1", "Goal 2"],
"linkedin_url": "str",
"follower_count": int (estimate),
"founded_year": int,
"specialties": ["str"],
"relevance_score": int(0-100)
}`

func profilePrompt(in Input, profile model.SearchProfile) string {
	p := in.Profile
	var ctx strings.Builder
	fmt.Fprintf(&ctx, "Company: %s\n", p.Name)
	fmt.Fprintf(&ctx, "Profile: %s\n", p.URL)
	fmt.Fprintf(&ctx, "Website: %s\n", p.Website)
	if p.Tagline != "" {
		fmt.Fprintf(&ctx, "Tagline: %s\n", p.Tagline)
	}
	fmt.Fprintf(&ctx, "About: %s\n", clip(p.About, maxAboutContext))
	fmt.Fprintf(&ctx, "Industry: %s\n", p.Industry)
	fmt.Fprintf(&ctx, "Specialties: %s\n", strings.Join(p.Specialties, ", "))
	fmt.Fprintf(&ctx, "Followers: %d\n", p.FollowerCount)
	fmt.Fprintf(&ctx, "Locations: %s\n", strings.Join(p.Locations, "; "))

	return fmt.Sprintf(`Analyze this company profile against requirements:
Reqs: Ind:%s, Loc:%s, Key:%s

Data:
%s
Output JSON (no markdown):
%s`, list(profile.IncludedIndustries), list(profile.TargetCountries), list(profile.RequiredKeywords), ctx.String(), profileSchema)
}

func contentPrompt(in Input, profile model.SearchProfile) string {
	page := in.Page
	var ctx strings.Builder
	fmt.Fprintf(&ctx, "URL:%s\nT:%s\nD:%s\nTXT:%s\n",
		page.URL, page.Title, page.MetaDescription, clip(page.Text, maxHomepageContext))

	slugs := make([]string, 0, len(page.SubPages))
	for slug := range page.SubPages {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	for _, slug := range slugs {
		fmt.Fprintf(&ctx, "%s:%s\n", strings.ToUpper(slug), clip(page.SubPages[slug], maxSubPageContext))
	}

	return fmt.Sprintf(`Analyze company vs reqs:
Reqs: Ind:%s, Loc:%s, Key:%s

Data:
%s
Output JSON (no markdown):
%s`, list(profile.IncludedIndustries), list(profile.TargetCountries), list(profile.RequiredKeywords), ctx.String(), analysisSchema)
}

func knowledgePrompt(in Input, profile model.SearchProfile) string {
	return fmt.Sprintf(`Analyze the company "%s" (%s).
Context: %s

Task: Populate the following fields based on your knowledge of this company.

Requirements check:
- Included Industries: %s
- Target Locations: %s
- Required Keywords: %s

Output JSON (no markdown):
%s`, in.Candidate.Name, in.Candidate.URL, in.Candidate.Snippet,
		list(profile.IncludedIndustries), list(profile.TargetCountries), list(profile.RequiredKeywords), knowledgeSchema)
}

func list(values []string) string {
	if len(values) == 0 {
		return "any"
	}
	return strings.Join(values, ", ")
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
