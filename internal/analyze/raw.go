package analyze

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/insighter-hq/researcher/internal/model"
)

// flexInt tolerates the numeric shapes models actually emit: numbers,
// quoted numbers, and null.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(v)
	return nil
}

// flexString tolerates numbers where a string was asked for.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*f = flexString(str)
		return nil
	}
	*f = flexString(strings.Trim(s, `"`))
	return nil
}

// rawAnalysis is the parse target for model responses.
type rawAnalysis struct {
	CompanyName           flexString `json:"company_name"`
	Website               flexString `json:"website"`
	IndustryMatch         bool       `json:"industry_match"`
	EmployeeCountEstimate flexString `json:"employee_count_estimate"`
	Locations             []string   `json:"locations"`
	Certifications        []string   `json:"certifications"`
	ProductCategories     []string   `json:"product_categories"`
	Summary               flexString `json:"summary"`
	ContactInfo           flexString `json:"contact_info"`
	EstimatedRevenue      flexString `json:"estimated_revenue"`
	MarketCap             flexString `json:"market_cap"`
	TargetMarket          flexString `json:"target_market"`
	StrategicGoals        []string   `json:"strategic_goals"`
	ProfileURL            flexString `json:"linkedin_url"`
	FollowerCount         flexInt    `json:"follower_count"`
	FoundedYear           flexInt    `json:"founded_year"`
	Specialties           []string   `json:"specialties"`
	RelevanceScore        flexInt    `json:"relevance_score"`
}

func (r rawAnalysis) toAnalysis() *model.CompanyAnalysis {
	return &model.CompanyAnalysis{
		CompanyName:           string(r.CompanyName),
		Website:               string(r.Website),
		IndustryMatch:         r.IndustryMatch,
		EmployeeCountEstimate: string(r.EmployeeCountEstimate),
		Locations:             emptyIfNil(r.Locations),
		Certifications:        emptyIfNil(r.Certifications),
		ProductCategories:     emptyIfNil(r.ProductCategories),
		Summary:               string(r.Summary),
		ContactInfo:           string(r.ContactInfo),
		EstimatedRevenue:      string(r.EstimatedRevenue),
		MarketCap:             string(r.MarketCap),
		TargetMarket:          string(r.TargetMarket),
		StrategicGoals:        r.StrategicGoals,
		ProfileURL:            string(r.ProfileURL),
		FollowerCount:         int(r.FollowerCount),
		FoundedYear:           int(r.FoundedYear),
		Specialties:           r.Specialties,
		RelevanceScore:        int(r.RelevanceScore),
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
