package apify

import (
	"context"

	"github.com/rotisserie/eris"
)

type profileInput struct {
	URLs []string `json:"urls"`
}

// ScrapeProfiles runs the company-profile actor over all profile URLs in
// one batch call. Items come back as raw payloads; the source matcher
// converts them to a typed schema at its boundary.
func ScrapeProfiles(ctx context.Context, c Client, actorID string, urls []string) ([]map[string]any, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	items, err := c.RunActorSync(ctx, actorID, profileInput{URLs: urls})
	if err != nil {
		return nil, eris.Wrap(err, "apify: scrape profiles")
	}

	// Drop entries that are not company profiles (actor error markers etc).
	var profiles []map[string]any
	for _, item := range items {
		if stringField(item, "companyName", "name") == "" {
			continue
		}
		profiles = append(profiles, item)
	}

	return profiles, nil
}

// ProfileString extracts the first non-empty string among keys from a raw
// profile payload.
func ProfileString(item map[string]any, keys ...string) string {
	return stringField(item, keys...)
}

// ProfileInt extracts the first numeric value among keys from a raw
// profile payload.
func ProfileInt(item map[string]any, keys ...string) int {
	return intField(item, keys...)
}
