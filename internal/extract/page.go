package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

var (
	locationLineRe = regexp.MustCompile(`([A-Z][a-z]+(?:\s[A-Z][a-z]+)*),\s*([A-Z]{2,}|[A-Z][a-z]+)`)

	socialPatterns = map[string]*regexp.Regexp{
		"linkedin":  regexp.MustCompile(`(?i)linkedin\.com/(company|in)/[^/\s"']+`),
		"twitter":   regexp.MustCompile(`(?i)twitter\.com/[^/\s"']+`),
		"facebook":  regexp.MustCompile(`(?i)facebook\.com/[^/\s"']+`),
		"instagram": regexp.MustCompile(`(?i)instagram\.com/[^/\s"']+`),
		"youtube":   regexp.MustCompile(`(?i)youtube\.com/(channel|c|user|@)[^\s"']*`),
	}
)

// extractEmployees scans team-like sections for person cards. A card
// yields a name from its first heading when it looks like a person name
// (two or more words, under 50 chars, no digits), plus the nearest email
// and LinkedIn profile link in the same block.
func extractEmployees(doc *goquery.Document) []Employee {
	var employees []Employee
	seen := map[string]bool{}

	eachClassed(doc, "team|member|employee|staff|person", func(s *goquery.Selection) {
		name := strings.TrimSpace(s.Find("h2, h3, h4, strong, b").First().Text())
		if !looksLikePersonName(name) || seen[name] {
			return
		}
		seen[name] = true

		emp := Employee{Name: name}
		if m := emailRe.FindString(s.Text()); m != "" {
			emp.Email = strings.ToLower(m)
		}
		s.Find(`a[href*="linkedin.com/in/"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
			emp.ProfileURL, _ = a.Attr("href")
			return false
		})
		s.Find("p, span").EachWithBreak(func(_ int, tag *goquery.Selection) bool {
			class, _ := tag.Attr("class")
			class = strings.ToLower(class)
			if strings.Contains(class, "role") || strings.Contains(class, "title") || strings.Contains(class, "position") {
				emp.Role = strings.TrimSpace(tag.Text())
				return false
			}
			return true
		})
		employees = append(employees, emp)
	})

	// Standalone profile links outside card sections.
	doc.Find(`a[href*="linkedin.com/in/"]`).Each(func(_ int, a *goquery.Selection) {
		parent := a.ParentsFiltered("div, section, article").First()
		if parent.Length() == 0 {
			return
		}
		name := strings.TrimSpace(parent.Find("h2, h3, h4, strong").First().Text())
		if !looksLikePersonName(name) || seen[name] {
			return
		}
		seen[name] = true
		href, _ := a.Attr("href")
		employees = append(employees, Employee{Name: name, ProfileURL: href})
	})

	return employees
}

func looksLikePersonName(name string) bool {
	if name == "" || len(name) >= 50 {
		return false
	}
	if len(strings.Fields(name)) < 2 {
		return false
	}
	for _, r := range name {
		if unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// extractLocations unions structured address markup, address-classed
// regions, and "City, Country" text patterns. Results are sorted for
// reproducibility.
func extractLocations(doc *goquery.Document, texts []string) []string {
	seen := map[string]bool{}

	if doc != nil {
		doc.Find(`[itemprop="address"]`).Each(func(_ int, s *goquery.Selection) {
			if loc := strings.TrimSpace(s.Text()); loc != "" {
				seen[loc] = true
			}
		})
		eachClassed(doc, "address|location|office", func(s *goquery.Selection) {
			loc := strings.Join(strings.Fields(s.Text()), " ")
			if len(loc) > 20 && len(loc) < 200 {
				seen[loc] = true
			}
		})
	}

	for _, text := range texts {
		for _, m := range locationLineRe.FindAllStringSubmatch(text, -1) {
			seen[m[1]+", "+m[2]] = true
		}
	}

	if len(seen) == 0 {
		return nil
	}
	locations := make([]string, 0, len(seen))
	for loc := range seen {
		locations = append(locations, loc)
	}
	sort.Strings(locations)
	return locations
}

// extractSocial maps platform name to the first profile link found.
func extractSocial(doc *goquery.Document) map[string]string {
	social := map[string]string{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		for platform, pattern := range socialPatterns {
			if social[platform] != "" {
				continue
			}
			if pattern.MatchString(href) {
				social[platform] = href
			}
		}
	})
	return social
}
