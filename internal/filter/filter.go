// Package filter scores analysis records against a user-supplied rule
// set. Evaluate is pure: identical inputs always produce the same pass
// flag and the same ordered rejection reasons.
package filter

import (
	"fmt"
	"strings"

	"github.com/insighter-hq/researcher/internal/extract"
	"github.com/insighter-hq/researcher/internal/model"
)

// Ordinal employee-size buckets, smallest to largest.
var sizeOrder = []string{"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+"}

// Config holds every filter criterion. Zero values mean "not
// configured"; an unconfigured criterion never rejects.
type Config struct {
	IncludedIndustries        []string `yaml:"included_industries" json:"included_industries,omitempty"`
	ExcludedIndustries        []string `yaml:"excluded_industries" json:"excluded_industries,omitempty"`
	RequiredKeywords          []string `yaml:"required_keywords" json:"required_keywords,omitempty"`
	ExcludedKeywords          []string `yaml:"excluded_keywords" json:"excluded_keywords,omitempty"`
	MinEmployeeSize           string   `yaml:"min_employee_size" json:"min_employee_size,omitempty"`
	MaxEmployeeSize           string   `yaml:"max_employee_size" json:"max_employee_size,omitempty"`
	TargetCountries           []string `yaml:"target_countries" json:"target_countries,omitempty"`
	ExcludedCountries         []string `yaml:"excluded_countries" json:"excluded_countries,omitempty"`
	RequiredCertifications    []string `yaml:"required_certifications" json:"required_certifications,omitempty"`
	RequiredProductCategories []string `yaml:"required_product_categories" json:"required_product_categories,omitempty"`
	RequiredTechnologies      []string `yaml:"required_technologies" json:"required_technologies,omitempty"`
	TargetMarket              string   `yaml:"target_market" json:"target_market,omitempty"`
	MinFoundedYear            int      `yaml:"min_founded_year" json:"min_founded_year,omitempty"`
	MaxFoundedYear            int      `yaml:"max_founded_year" json:"max_founded_year,omitempty"`
	RequiresCareersPage       bool     `yaml:"requires_careers_page" json:"requires_careers_page,omitempty"`
	RequiresContactInfo       bool     `yaml:"requires_contact_info" json:"requires_contact_info,omitempty"`
	MinConfidenceScore        float64  `yaml:"min_confidence_score" json:"min_confidence_score,omitempty"`
	RequiredSocialPlatforms   []string `yaml:"required_social_platforms" json:"required_social_platforms,omitempty"`
}

// Active reports whether any criterion is configured.
func (c Config) Active() bool {
	return c.criteriaCount() > 0
}

func (c Config) criteriaCount() int {
	n := 0
	for _, list := range [][]string{
		c.IncludedIndustries, c.ExcludedIndustries,
		c.RequiredKeywords, c.ExcludedKeywords,
		c.TargetCountries, c.ExcludedCountries,
		c.RequiredCertifications, c.RequiredProductCategories,
		c.RequiredTechnologies, c.RequiredSocialPlatforms,
	} {
		if len(list) > 0 {
			n++
		}
	}
	if c.MinEmployeeSize != "" {
		n++
	}
	if c.MaxEmployeeSize != "" {
		n++
	}
	if c.TargetMarket != "" {
		n++
	}
	if c.MinFoundedYear != 0 {
		n++
	}
	if c.MaxFoundedYear != 0 {
		n++
	}
	if c.RequiresCareersPage {
		n++
	}
	if c.RequiresContactInfo {
		n++
	}
	if c.MinConfidenceScore > 0 {
		n++
	}
	return n
}

// FilterResult is one company's verdict.
type FilterResult struct {
	Passes  bool
	Reasons []string
}

// Evaluate scores one analysis record against the config. Criteria run
// in a fixed order so the reason list is reproducible. Unknown or
// missing values fail required-match criteria but never trigger an
// exclusion.
func Evaluate(analysis *model.CompanyAnalysis, ex *extract.Extraction, cfg Config) FilterResult {
	var reasons []string
	if ex == nil {
		ex = &extract.Extraction{}
	}

	industries := lowerAll(append(append([]string{}, analysis.Specialties...), analysis.ProductCategories...))
	searchable := strings.ToLower(strings.Join(append([]string{
		analysis.Summary}, append(analysis.ProductCategories, analysis.Specialties...)...), " "))
	location := strings.ToLower(strings.Join(analysis.Locations, " "))

	// 1. Included industries.
	if len(cfg.IncludedIndustries) > 0 {
		if !analysis.IndustryMatch && !anySubstring(industries, cfg.IncludedIndustries) {
			reasons = append(reasons, fmt.Sprintf("Industry not in included list. Has: %v", industries))
		}
	}
	// 2. Excluded industries.
	if len(cfg.ExcludedIndustries) > 0 {
		if anySubstring(industries, cfg.ExcludedIndustries) {
			reasons = append(reasons, fmt.Sprintf("Industry in excluded list: %v", industries))
		}
	}
	// 3. Required keywords.
	if len(cfg.RequiredKeywords) > 0 {
		if missing := missingFrom(searchable, cfg.RequiredKeywords); len(missing) > 0 {
			reasons = append(reasons, fmt.Sprintf("Missing required keywords: %v", missing))
		}
	}
	// 4. Excluded keywords.
	if len(cfg.ExcludedKeywords) > 0 {
		if found := presentIn(searchable, cfg.ExcludedKeywords); len(found) > 0 {
			reasons = append(reasons, fmt.Sprintf("Contains excluded keywords: %v", found))
		}
	}
	// 5 and 6. Employee size range. An unknown or non-bucket estimate
	// exempts the criterion.
	if cfg.MinEmployeeSize != "" || cfg.MaxEmployeeSize != "" {
		if idx := sizeIndex(analysis.EmployeeCountEstimate); idx >= 0 {
			if lo := sizeIndex(cfg.MinEmployeeSize); lo >= 0 && idx < lo {
				reasons = append(reasons, fmt.Sprintf("Employee size %s below minimum %s", analysis.EmployeeCountEstimate, cfg.MinEmployeeSize))
			}
			if hi := sizeIndex(cfg.MaxEmployeeSize); hi >= 0 && idx > hi {
				reasons = append(reasons, fmt.Sprintf("Employee size %s above maximum %s", analysis.EmployeeCountEstimate, cfg.MaxEmployeeSize))
			}
		}
	}
	// 7. Target countries.
	if len(cfg.TargetCountries) > 0 {
		if !containsAny(location, cfg.TargetCountries) {
			reasons = append(reasons, fmt.Sprintf("Location %q not in target countries", location))
		}
	}
	// 8. Excluded countries.
	if len(cfg.ExcludedCountries) > 0 && location != "" {
		if containsAny(location, cfg.ExcludedCountries) {
			reasons = append(reasons, fmt.Sprintf("Location %q in excluded countries", location))
		}
	}
	// 9. Required certifications: each must appear within some company
	// certification.
	if len(cfg.RequiredCertifications) > 0 {
		certs := lowerAll(analysis.Certifications)
		var missing []string
		for _, want := range cfg.RequiredCertifications {
			if !anyContains(certs, want) {
				missing = append(missing, want)
			}
		}
		if len(missing) > 0 {
			reasons = append(reasons, fmt.Sprintf("Missing certifications: %v", missing))
		}
	}
	// 10. Required product categories.
	if len(cfg.RequiredProductCategories) > 0 {
		products := strings.ToLower(strings.Join(analysis.ProductCategories, " "))
		if missing := missingFrom(products, cfg.RequiredProductCategories); len(missing) > 0 {
			reasons = append(reasons, fmt.Sprintf("Missing product categories: %v", missing))
		}
	}
	// 11. Required technologies, matched against specialties.
	if len(cfg.RequiredTechnologies) > 0 {
		techs := lowerAll(analysis.Specialties)
		var missing []string
		for _, want := range cfg.RequiredTechnologies {
			if !anyContains(techs, want) {
				missing = append(missing, want)
			}
		}
		if len(missing) > 0 {
			reasons = append(reasons, fmt.Sprintf("Missing technologies: %v", missing))
		}
	}
	// 12. Target market. "Both" accepts anything.
	if cfg.TargetMarket != "" && cfg.TargetMarket != "Both" {
		if !strings.EqualFold(analysis.TargetMarket, cfg.TargetMarket) {
			reasons = append(reasons, fmt.Sprintf("Target market is %q, required %q", analysis.TargetMarket, cfg.TargetMarket))
		}
	}
	// 13. Founded year range. Zero means unknown and exempts.
	if analysis.FoundedYear != 0 {
		if cfg.MinFoundedYear != 0 && analysis.FoundedYear < cfg.MinFoundedYear {
			reasons = append(reasons, fmt.Sprintf("Founded year %d before minimum %d", analysis.FoundedYear, cfg.MinFoundedYear))
		}
		if cfg.MaxFoundedYear != 0 && analysis.FoundedYear > cfg.MaxFoundedYear {
			reasons = append(reasons, fmt.Sprintf("Founded year %d after maximum %d", analysis.FoundedYear, cfg.MaxFoundedYear))
		}
	}
	// 14. Careers page.
	if cfg.RequiresCareersPage && !ex.HasCareersPage {
		reasons = append(reasons, "No careers page found")
	}
	// 15. Contact info.
	if cfg.RequiresContactInfo {
		hasContact := ex.HasContactInfo() ||
			(analysis.ContactInfo != "" && !strings.EqualFold(analysis.ContactInfo, "unknown"))
		if !hasContact {
			reasons = append(reasons, "No contact information found")
		}
	}
	// 16. Minimum confidence.
	if cfg.MinConfidenceScore > 0 && ex.Confidence < cfg.MinConfidenceScore {
		reasons = append(reasons, fmt.Sprintf("Confidence score %.2f below minimum %.2f", ex.Confidence, cfg.MinConfidenceScore))
	}
	// 17. Required social platforms.
	if len(cfg.RequiredSocialPlatforms) > 0 {
		var missing []string
		for _, platform := range cfg.RequiredSocialPlatforms {
			if ex.Social[strings.ToLower(platform)] == "" {
				missing = append(missing, platform)
			}
		}
		if len(missing) > 0 {
			reasons = append(reasons, fmt.Sprintf("Missing social media: %v", missing))
		}
	}

	return FilterResult{Passes: len(reasons) == 0, Reasons: reasons}
}

func sizeIndex(size string) int {
	for i, s := range sizeOrder {
		if s == size {
			return i
		}
	}
	return -1
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

// anySubstring reports whether any want value appears within any have
// value.
func anySubstring(have, want []string) bool {
	for _, w := range want {
		if anyContains(have, w) {
			return true
		}
	}
	return false
}

func anyContains(have []string, want string) bool {
	want = strings.ToLower(want)
	for _, h := range have {
		if strings.Contains(h, want) {
			return true
		}
	}
	return false
}

func containsAny(text string, values []string) bool {
	for _, v := range values {
		if strings.Contains(text, strings.ToLower(v)) {
			return true
		}
	}
	return false
}

func missingFrom(text string, values []string) []string {
	var missing []string
	for _, v := range values {
		if !strings.Contains(text, strings.ToLower(v)) {
			missing = append(missing, v)
		}
	}
	return missing
}

func presentIn(text string, values []string) []string {
	var present []string
	for _, v := range values {
		if strings.Contains(text, strings.ToLower(v)) {
			present = append(present, v)
		}
	}
	return present
}
