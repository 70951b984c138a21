package fuse

import (
	"strings"

	"go.uber.org/zap"

	"github.com/insighter-hq/researcher/internal/discovery"
	"github.com/insighter-hq/researcher/internal/model"
	"github.com/insighter-hq/researcher/pkg/apify"
)

// MatchProfiles pairs scraped network profiles with candidates, keyed by
// candidate URL. A profile matches on its profile URL first, then on its
// declared website, then on normalized name. Unmatched profiles are
// logged and dropped.
func MatchProfiles(candidates []model.CompanyCandidate, items []map[string]any) map[string]model.NetworkProfile {
	out := make(map[string]model.NetworkProfile)
	for _, item := range items {
		profile := toNetworkProfile(item)
		idx := matchProfile(candidates, profile)
		if idx < 0 {
			zap.L().Warn("fuse: network profile matches no candidate, dropping",
				zap.String("name", profile.Name),
				zap.String("url", profile.URL),
			)
			continue
		}
		key := candidates[idx].URL
		if _, exists := out[key]; exists {
			continue
		}
		out[key] = profile
	}
	return out
}

func matchProfile(candidates []model.CompanyCandidate, profile model.NetworkProfile) int {
	if profile.URL != "" {
		normProf := discovery.NormalizeURL(profile.URL)
		for i, c := range candidates {
			if c.ProfileURL != "" && discovery.NormalizeURL(c.ProfileURL) == normProf {
				return i
			}
		}
	}
	if profile.Website != "" {
		idx := matchCandidate(candidates, profile.Website, "")
		if idx >= 0 {
			return idx
		}
	}
	if name := NormalizeName(profile.Name); name != "" {
		for i, c := range candidates {
			if NormalizeName(c.Name) == name {
				return i
			}
		}
	}
	return -1
}

// toNetworkProfile converts a raw actor item into the typed profile.
// Field names vary between actor versions, so each field tries the
// variants seen in the wild.
func toNetworkProfile(item map[string]any) model.NetworkProfile {
	p := model.NetworkProfile{
		Name:          apify.ProfileString(item, "companyName", "name"),
		URL:           apify.ProfileString(item, "url", "linkedinUrl", "profileUrl"),
		Website:       apify.ProfileString(item, "website", "websiteUrl"),
		Tagline:       apify.ProfileString(item, "tagline", "slogan"),
		About:         apify.ProfileString(item, "about", "description"),
		Industry:      apify.ProfileString(item, "industry"),
		FollowerCount: apify.ProfileInt(item, "followerCount", "followers"),
		EmployeeCount: apify.ProfileString(item, "employeeCount", "companySize", "employeesRange"),
		FoundedYear:   apify.ProfileInt(item, "foundedYear", "founded"),
	}
	p.Specialties = stringSlice(item["specialties"])
	p.Locations = stringSlice(item["locations"])
	return p
}

// stringSlice flattens a list-or-string field. Locations sometimes come
// as objects with a "city" key.
func stringSlice(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, e := range val {
			switch entry := e.(type) {
			case string:
				if entry != "" {
					out = append(out, entry)
				}
			case map[string]any:
				if city := apify.ProfileString(entry, "city"); city != "" {
					out = append(out, city)
				} else if full := apify.ProfileString(entry, "fullAddress"); full != "" {
					out = append(out, full)
				}
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	default:
		return nil
	}
}
