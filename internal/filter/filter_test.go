package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insighter-hq/researcher/internal/extract"
	"github.com/insighter-hq/researcher/internal/model"
)

func passingCompany() *model.CompanyAnalysis {
	return &model.CompanyAnalysis{
		CompanyName:           "Acme AI",
		Website:               "https://acme.ai",
		IndustryMatch:         true,
		EmployeeCountEstimate: "51-200",
		Locations:             []string{"Austin, US"},
		Certifications:        []string{"ISO 27001"},
		ProductCategories:     []string{"AI platform"},
		Summary:               "Acme builds AI widgets for enterprises.",
		TargetMarket:          "B2B",
		FoundedYear:           2019,
		Specialties:           []string{"machine learning", "python"},
		RelevanceScore:        85,
	}
}

func richExtraction() *extract.Extraction {
	return &extract.Extraction{
		Emails:         []model.ContactSignal{{Type: model.SignalEmail, Value: "info@acme.ai", Confidence: 0.9}},
		Social:         map[string]string{"linkedin": "https://linkedin.com/company/acme-ai"},
		HasCareersPage: true,
		Confidence:     0.6,
	}
}

func fullConfig() Config {
	return Config{
		IncludedIndustries:        []string{"AI"},
		ExcludedIndustries:        []string{"gambling"},
		RequiredKeywords:          []string{"AI"},
		ExcludedKeywords:          []string{"casino"},
		MinEmployeeSize:           "11-50",
		MaxEmployeeSize:           "501-1000",
		TargetCountries:           []string{"US"},
		ExcludedCountries:         []string{"Atlantis"},
		RequiredCertifications:    []string{"iso 27001"},
		RequiredProductCategories: []string{"ai"},
		RequiredTechnologies:      []string{"python"},
		TargetMarket:              "B2B",
		MinFoundedYear:            2010,
		MaxFoundedYear:            2025,
		RequiresCareersPage:       true,
		RequiresContactInfo:       true,
		MinConfidenceScore:        0.5,
		RequiredSocialPlatforms:   []string{"linkedin"},
	}
}

func TestEvaluatePassesFullConfig(t *testing.T) {
	verdict := Evaluate(passingCompany(), richExtraction(), fullConfig())
	assert.True(t, verdict.Passes)
	assert.Empty(t, verdict.Reasons)
}

func TestEvaluatePure(t *testing.T) {
	company := passingCompany()
	company.IndustryMatch = false
	company.Specialties = []string{"gambling tech"}
	company.EmployeeCountEstimate = "1-10"
	company.FoundedYear = 2005
	ex := &extract.Extraction{}
	cfg := fullConfig()

	first := Evaluate(company, ex, cfg)
	second := Evaluate(company, ex, cfg)
	require.False(t, first.Passes)
	assert.Equal(t, first.Reasons, second.Reasons)
	assert.NotEmpty(t, first.Reasons)
}

func TestEvaluateReasonOrder(t *testing.T) {
	company := passingCompany()
	company.EmployeeCountEstimate = "1-10"
	company.FoundedYear = 2030
	cfg := Config{
		MinEmployeeSize: "51-200",
		MaxFoundedYear:  2025,
	}

	verdict := Evaluate(company, nil, cfg)
	require.Len(t, verdict.Reasons, 2)
	// Employee size is criterion 5, founded year criterion 13.
	assert.Contains(t, verdict.Reasons[0], "Employee size")
	assert.Contains(t, verdict.Reasons[1], "Founded year")
}

func TestEvaluateUnknownSizeExempt(t *testing.T) {
	company := passingCompany()
	company.EmployeeCountEstimate = "Unknown"
	cfg := Config{MinEmployeeSize: "1000+"}

	verdict := Evaluate(company, nil, cfg)
	assert.True(t, verdict.Passes)

	// A non-bucket estimate is treated the same way.
	company.EmployeeCountEstimate = "about 40 people"
	verdict = Evaluate(company, nil, cfg)
	assert.True(t, verdict.Passes)
}

func TestEvaluateSizeBuckets(t *testing.T) {
	company := passingCompany()
	company.EmployeeCountEstimate = "1-10"
	verdict := Evaluate(company, nil, Config{MinEmployeeSize: "51-200"})
	assert.False(t, verdict.Passes)

	company.EmployeeCountEstimate = "1000+"
	verdict = Evaluate(company, nil, Config{MaxEmployeeSize: "501-1000"})
	assert.False(t, verdict.Passes)

	company.EmployeeCountEstimate = "51-200"
	verdict = Evaluate(company, nil, Config{MinEmployeeSize: "11-50", MaxEmployeeSize: "201-500"})
	assert.True(t, verdict.Passes)
}

func TestEvaluateAbsenceNeverViolatesExclusions(t *testing.T) {
	company := passingCompany()
	company.Locations = nil
	company.Specialties = nil
	company.ProductCategories = nil
	company.Summary = ""

	cfg := Config{
		ExcludedIndustries: []string{"gambling"},
		ExcludedKeywords:   []string{"casino"},
		ExcludedCountries:  []string{"Atlantis"},
	}
	verdict := Evaluate(company, nil, cfg)
	assert.True(t, verdict.Passes)
}

func TestEvaluateMissingFieldsFailRequirements(t *testing.T) {
	company := passingCompany()
	company.IndustryMatch = false
	company.Specialties = nil
	company.ProductCategories = nil

	verdict := Evaluate(company, nil, Config{IncludedIndustries: []string{"AI"}})
	require.False(t, verdict.Passes)
	assert.Contains(t, verdict.Reasons[0], "Industry not in included list")
}

func TestEvaluateContactAndSocial(t *testing.T) {
	company := passingCompany()
	company.ContactInfo = "Unknown"
	cfg := Config{
		RequiresContactInfo:     true,
		RequiredSocialPlatforms: []string{"linkedin", "twitter"},
	}

	verdict := Evaluate(company, &extract.Extraction{}, cfg)
	require.Len(t, verdict.Reasons, 2)
	assert.Equal(t, "No contact information found", verdict.Reasons[0])
	assert.Contains(t, verdict.Reasons[1], "Missing social media")

	// Extraction signals satisfy both.
	verdict = Evaluate(company, &extract.Extraction{
		Phones: []model.ContactSignal{{Type: model.SignalPhone, Value: "+1 415-555-2671", Confidence: 0.9}},
		Social: map[string]string{"linkedin": "x", "twitter": "y"},
	}, cfg)
	assert.True(t, verdict.Passes)
}

func TestApplyStats(t *testing.T) {
	pass := Entry{Analysis: passingCompany(), Extraction: richExtraction()}

	failCompany := passingCompany()
	failCompany.IndustryMatch = false
	failCompany.Specialties = []string{"logistics"}
	failCompany.ProductCategories = []string{"freight"}
	failCompany.Summary = "Freight broker."
	fail := Entry{Analysis: failCompany, Extraction: richExtraction()}

	cfg := Config{IncludedIndustries: []string{"AI"}, RequiredKeywords: []string{"AI"}}
	result := Apply([]Entry{pass, fail}, cfg)

	assert.Len(t, result.Matched, 1)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "Acme AI", result.Rejected[0].Company.CompanyName)
	assert.Equal(t, 2, result.Stats.TotalCompanies)
	assert.Equal(t, "50.0%", result.Stats.MatchRate)
	assert.Equal(t, 2, result.Stats.FiltersApplied)
}

func TestApplyEmpty(t *testing.T) {
	result := Apply(nil, Config{})
	assert.Equal(t, "0%", result.Stats.MatchRate)
	assert.False(t, Config{}.Active())
	assert.True(t, Config{RequiresContactInfo: true}.Active())
}
