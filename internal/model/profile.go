package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// SearchProfile is the user-supplied description of the companies to find.
// It is immutable for the lifetime of a research run; Hash derives the
// cache and request identity.
type SearchProfile struct {
	IncludedIndustries        []string `json:"included_industries" yaml:"included_industries"`
	ExcludedIndustries        []string `json:"excluded_industries,omitempty" yaml:"excluded_industries"`
	RequiredKeywords          []string `json:"required_keywords" yaml:"required_keywords"`
	ExcludedKeywords          []string `json:"excluded_keywords,omitempty" yaml:"excluded_keywords"`
	MinEmployees              int      `json:"min_employees,omitempty" yaml:"min_employees"`
	MaxEmployees              int      `json:"max_employees,omitempty" yaml:"max_employees"`
	TargetCountries           []string `json:"target_countries" yaml:"target_countries"`
	ExcludedCountries         []string `json:"excluded_countries,omitempty" yaml:"excluded_countries"`
	RequiredCertifications    []string `json:"required_certifications,omitempty" yaml:"required_certifications"`
	RequiredProductCategories []string `json:"required_product_categories,omitempty" yaml:"required_product_categories"`
}

// Hash returns a stable hex digest of the profile, used as the cache key
// for completed runs. Field order is fixed by the struct definition, so
// identical profiles always hash identically.
func (p SearchProfile) Hash() string {
	raw, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
