package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nyaruka/phonenumbers"

	"github.com/insighter-hq/researcher/internal/model"
)

var (
	phoneRe      = regexp.MustCompile(`[+]?[(]?\d{1,4}[)]?[-\s.(]?\d{1,4}[-\s.)]?\d{1,4}[-\s.]?\d{1,9}`)
	phoneLabelRe = regexp.MustCompile(`(?i)(Phone|Tel|Call|Contact)[\s:]+([+\d\s\-()]{10,})`)
	nonDigitRe   = regexp.MustCompile(`\D`)
)

// extractPhones runs the phone strategies, dedupes by digit string, and
// scores each number via libphonenumber parsing.
func extractPhones(doc *goquery.Document, texts []string) []model.ContactSignal {
	found := map[string]string{}
	record := func(phone, strategy string) {
		phone = strings.TrimSpace(phone)
		if phone == "" {
			return
		}
		if _, seen := found[phone]; !seen {
			found[phone] = strategy
		}
	}

	if doc != nil {
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			if len(href) > 4 && strings.EqualFold(href[:4], "tel:") {
				record(href[4:], "tel_link")
			}
		})
		eachClassed(doc, "contact", func(s *goquery.Selection) {
			for _, m := range phoneRe.FindAllString(s.Text(), -1) {
				record(m, "contact_section")
			}
		})
	}

	// Label-anchored recovery: text after "Phone"/"Tel"/"Call" labels,
	// accepted only with at least 10 digits.
	for _, text := range texts {
		for _, m := range phoneLabelRe.FindAllStringSubmatch(text, -1) {
			candidate := strings.TrimSpace(m[2])
			if len(nonDigitRe.ReplaceAllString(candidate, "")) >= 10 {
				record(candidate, "label")
			}
		}
	}

	// Deterministic dedupe order so the surviving raw form is stable.
	raws := make([]string, 0, len(found))
	for phone := range found {
		raws = append(raws, phone)
	}
	sort.Strings(raws)

	seen := map[string]bool{}
	var signals []model.ContactSignal
	for _, phone := range raws {
		digits := nonDigitRe.ReplaceAllString(phone, "")
		if len(digits) < 10 || seen[digits] {
			continue
		}
		seen[digits] = true
		signals = append(signals, scorePhone(phone, digits, found[phone]))
	}
	sortSignals(signals)
	return signals
}

// scorePhone parses against the international numbering plan. Valid
// numbers score 0.9, parsed-but-invalid 0.5, unparsable are kept as-is
// with 0.3.
func scorePhone(raw, digits, strategy string) model.ContactSignal {
	toParse := raw
	if !strings.HasPrefix(raw, "+") {
		toParse = "+" + digits
	}

	signal := model.ContactSignal{
		Type:     model.SignalPhone,
		Value:    raw,
		Raw:      raw,
		Strategy: strategy,
	}

	parsed, err := phonenumbers.Parse(toParse, "")
	if err != nil {
		signal.Confidence = 0.3
		return signal
	}
	if phonenumbers.IsValidNumber(parsed) {
		signal.Value = phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL)
		signal.Confidence = 0.9
		return signal
	}
	signal.Value = phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL)
	signal.Confidence = 0.5
	return signal
}
