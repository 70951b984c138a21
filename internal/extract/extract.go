// Package extract discovers contact, staff, and location signals in
// fetched page content and attaches deterministic confidence scores.
// Every score here is reproducible arithmetic over signal counts, never
// a model judgment.
package extract

import (
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/insighter-hq/researcher/internal/model"
)

// Employee is a person found on a team or about page.
type Employee struct {
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	Email      string `json:"email,omitempty"`
	ProfileURL string `json:"profile_url,omitempty"`
}

// Extraction is the full signal set pulled from one company's pages.
type Extraction struct {
	Emails         []model.ContactSignal
	Phones         []model.ContactSignal
	Employees      []Employee
	Locations      []string
	Social         map[string]string
	HasCareersPage bool
	Confidence     float64
}

// HasContactInfo reports whether any email or phone signal was found.
func (e *Extraction) HasContactInfo() bool {
	return len(e.Emails) > 0 || len(e.Phones) > 0
}

// BestEmail returns the highest-confidence email value, or "".
func (e *Extraction) BestEmail() string {
	if len(e.Emails) == 0 {
		return ""
	}
	return e.Emails[0].Value
}

// BestPhone returns the highest-confidence phone value, or "".
func (e *Extraction) BestPhone() string {
	if len(e.Phones) == 0 {
		return ""
	}
	return e.Phones[0].Value
}

// PrimaryLocation picks the most likely headquarters line. The shortest
// extracted location is usually the bare "City, Country" form.
func (e *Extraction) PrimaryLocation() string {
	if len(e.Locations) == 0 {
		return ""
	}
	primary := e.Locations[0]
	for _, loc := range e.Locations[1:] {
		if len(loc) < len(primary) {
			primary = loc
		}
	}
	return primary
}

// FromPage runs every extraction strategy over a company's fused page
// content. DOM strategies need the homepage HTML; text strategies also
// cover the sub-pages. A nil page yields an empty extraction.
func FromPage(page *model.PageContent) *Extraction {
	ex := &Extraction{Social: map[string]string{}}
	if page == nil {
		return ex
	}

	domain := hostOf(page.URL)
	texts := allTexts(page)

	var doc *goquery.Document
	if page.HTML != "" {
		parsed, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
		if err != nil {
			zap.L().Warn("extract: unparsable HTML, falling back to text strategies",
				zap.String("url", page.URL),
			)
		} else {
			doc = parsed
		}
	}

	ex.Emails = extractEmails(doc, texts, domain)
	ex.Phones = extractPhones(doc, texts)
	if doc != nil {
		ex.Employees = extractEmployees(doc)
		ex.Social = extractSocial(doc)
	}
	ex.Locations = extractLocations(doc, texts)
	ex.HasCareersPage = hasCareersPage(doc, page)
	ex.Confidence = overallConfidence(ex)
	return ex
}

var careersKeywords = []string{"careers", "jobs", "join-us", "work-with-us"}

// hasCareersPage checks the crawled sub-pages and homepage links for a
// hiring page.
func hasCareersPage(doc *goquery.Document, page *model.PageContent) bool {
	for slug := range page.SubPages {
		lower := strings.ToLower(slug)
		for _, kw := range careersKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	if doc == nil {
		return false
	}
	found := false
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		href = strings.ToLower(href)
		for _, kw := range careersKeywords {
			if strings.Contains(href, kw) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// overallConfidence is a weighted sum over signal presence counts. Each
// signal type contributes a fixed value once it crosses its count
// threshold.
func overallConfidence(ex *Extraction) float64 {
	var score float64
	switch {
	case len(ex.Emails) >= 3:
		score += 0.25
	case len(ex.Emails) >= 1:
		score += 0.15
	}
	switch {
	case len(ex.Phones) >= 2:
		score += 0.20
	case len(ex.Phones) >= 1:
		score += 0.10
	}
	switch {
	case len(ex.Employees) >= 5:
		score += 0.25
	case len(ex.Employees) >= 2:
		score += 0.15
	}
	switch {
	case len(ex.Locations) >= 2:
		score += 0.20
	case len(ex.Locations) >= 1:
		score += 0.10
	}
	switch {
	case len(ex.Social) >= 3:
		score += 0.10
	case len(ex.Social) >= 1:
		score += 0.05
	}
	return score
}

// allTexts returns the homepage text plus every sub-page body.
func allTexts(page *model.PageContent) []string {
	texts := make([]string, 0, 1+len(page.SubPages))
	if page.Text != "" {
		texts = append(texts, page.Text)
	}
	// Deterministic order for reproducible strategy tags.
	slugs := make([]string, 0, len(page.SubPages))
	for slug := range page.SubPages {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	for _, slug := range slugs {
		if body := page.SubPages[slug]; body != "" {
			texts = append(texts, body)
		}
	}
	return texts
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return strings.ToLower(rawURL)
	}
	return strings.ToLower(strings.TrimPrefix(u.Host, "www."))
}

// sortSignals orders by confidence descending, value ascending as a
// deterministic tiebreak.
func sortSignals(signals []model.ContactSignal) {
	sort.SliceStable(signals, func(i, j int) bool {
		if signals[i].Confidence != signals[j].Confidence {
			return signals[i].Confidence > signals[j].Confidence
		}
		return signals[i].Value < signals[j].Value
	})
}
