package extract

import (
	"math"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/insighter-hq/researcher/internal/model"
)

var (
	emailRe      = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	obfuscatedRe = regexp.MustCompile(`(?i)([A-Za-z0-9._%+-]+)\s*\[at\]\s*([A-Za-z0-9-]+)\s*\[dot\]\s*([A-Za-z]{2,})`)
	// Syntax check stricter than the scan pattern: one @, sane local part,
	// domain with at least one dot.
	emailSyntaxRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9-]+(\.[A-Za-z0-9-]+)*\.[A-Za-z]{2,}$`)
)

// Placeholder and template domains that never identify a real mailbox.
var emailBlacklist = []string{
	"example.com", "test.com", "domain.com", "email.com",
	"wixpress.com", "placeholder", "yourcompany", "sentry.io",
}

var freeMailDomains = []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com"}

var genericPrefixes = []string{"info@", "contact@", "hello@", "support@"}

// extractEmails runs every email strategy over the document and texts,
// then validates and scores the union. Higher-trust strategies claim an
// address first.
func extractEmails(doc *goquery.Document, texts []string, domain string) []model.ContactSignal {
	found := map[string]string{}
	record := func(email, strategy string) {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			return
		}
		if _, seen := found[email]; !seen {
			found[email] = strategy
		}
	}

	if doc != nil {
		// mailto: links.
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			if len(href) > 7 && strings.EqualFold(href[:7], "mailto:") {
				addr := href[7:]
				if q := strings.IndexByte(addr, '?'); q >= 0 {
					addr = addr[:q]
				}
				record(addr, "mailto_link")
			}
		})
		// Contact-classed regions.
		eachClassed(doc, "contact", func(s *goquery.Selection) {
			for _, m := range emailRe.FindAllString(s.Text(), -1) {
				record(m, "contact_section")
			}
		})
		// Footer.
		doc.Find("footer").Each(func(_ int, s *goquery.Selection) {
			for _, m := range emailRe.FindAllString(s.Text(), -1) {
				record(m, "footer")
			}
		})
		// Team sections.
		eachClassed(doc, "team|member|employee|staff|person", func(s *goquery.Selection) {
			for _, m := range emailRe.FindAllString(s.Text(), -1) {
				record(m, "team_section")
			}
		})
	}

	for _, text := range texts {
		for _, m := range obfuscatedRe.FindAllStringSubmatch(text, -1) {
			record(m[1]+"@"+m[2]+"."+m[3], "obfuscated")
		}
		for _, m := range emailRe.FindAllString(text, -1) {
			record(m, "page_text")
		}
	}

	signals := make([]model.ContactSignal, 0, len(found))
	for email, strategy := range found {
		signal, ok := validateEmail(email, strategy, domain)
		if ok {
			signals = append(signals, signal)
		}
	}
	sortSignals(signals)
	return signals
}

// validateEmail applies the blacklist and syntax checks and computes the
// confidence score: base 0.5, +0.3 for a company-domain match, +0.1 for
// generic business prefixes, -0.2 for free consumer mail, clamped to
// [0.1, 1.0].
func validateEmail(email, strategy, domain string) (model.ContactSignal, bool) {
	for _, bl := range emailBlacklist {
		if strings.Contains(email, bl) {
			return model.ContactSignal{}, false
		}
	}
	if !emailSyntaxRe.MatchString(email) {
		return model.ContactSignal{}, false
	}

	emailDomain := email[strings.LastIndexByte(email, '@')+1:]
	domainMatch := domain != "" && (strings.Contains(emailDomain, domain) || strings.Contains(domain, emailDomain))

	confidence := 0.5
	if domainMatch {
		confidence += 0.3
	}
	for _, prefix := range genericPrefixes {
		if strings.HasPrefix(email, prefix) {
			confidence += 0.1
			break
		}
	}
	for _, free := range freeMailDomains {
		if emailDomain == free {
			confidence -= 0.2
			break
		}
	}
	confidence = math.Min(1.0, math.Max(0.1, confidence))

	return model.ContactSignal{
		Type:                 model.SignalEmail,
		Value:                email,
		Raw:                  email,
		Strategy:             strategy,
		Confidence:           confidence,
		IsPrimaryDomainMatch: domainMatch,
	}, true
}

// eachClassed visits every section/div whose class attribute matches any
// of the |-separated keywords, case-insensitively.
func eachClassed(doc *goquery.Document, keywords string, fn func(*goquery.Selection)) {
	words := strings.Split(keywords, "|")
	doc.Find("section, div, article").Each(func(_ int, s *goquery.Selection) {
		class, ok := s.Attr("class")
		if !ok {
			return
		}
		class = strings.ToLower(class)
		for _, w := range words {
			if strings.Contains(class, w) {
				fn(s)
				return
			}
		}
	})
}
