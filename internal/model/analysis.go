package model

// CompanyAnalysis is the converged per-company output passed to filtering
// and insight aggregation. Website always resolves to the company's own
// URL when one is known, never the network-profile URL.
type CompanyAnalysis struct {
	CompanyName           string   `json:"company_name"`
	Website               string   `json:"website"`
	IndustryMatch         bool     `json:"industry_match"`
	EmployeeCountEstimate string   `json:"employee_count_estimate,omitempty"`
	Locations             []string `json:"locations"`
	Certifications        []string `json:"certifications"`
	ProductCategories     []string `json:"product_categories"`
	Summary               string   `json:"summary"`
	ContactInfo           string   `json:"contact_info,omitempty"`
	EstimatedRevenue      string   `json:"estimated_revenue,omitempty"`
	MarketCap             string   `json:"market_cap,omitempty"`
	TargetMarket          string   `json:"target_market,omitempty"`
	StrategicGoals        []string `json:"strategic_goals,omitempty"`
	ProfileURL            string   `json:"linkedin_url,omitempty"`
	FollowerCount         int      `json:"follower_count,omitempty"`
	FoundedYear           int      `json:"founded_year,omitempty"`
	Specialties           []string `json:"specialties,omitempty"`
	RelevanceScore        int      `json:"relevance_score"`
}
