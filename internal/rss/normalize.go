package rss

import (
	"net/url"
	"strings"
)

// Tracking parameters stripped during URL normalization.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"utm_id":       {},
	"gclid":        {},
	"fbclid":       {},
	"mc_cid":       {},
	"mc_eid":       {},
}

// NormalizeURL canonicalizes a URL for identity comparison: the fragment is
// dropped, tracking parameters are removed and the remaining query is
// re-encoded in its original key order. The result is the dedup key and is
// re-applied after every redirect.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}

	parsed.Fragment = ""
	parsed.RawQuery = cleanQuery(parsed.RawQuery)
	return parsed.String()
}

func cleanQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	var kept []string
	for _, segment := range strings.Split(rawQuery, "&") {
		if segment == "" {
			continue
		}

		rawKey, rawValue, _ := strings.Cut(segment, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			key = rawKey
		}
		if _, tracking := trackingParams[key]; tracking {
			continue
		}

		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			value = rawValue
		}
		kept = append(kept, url.QueryEscape(key)+"="+url.QueryEscape(value))
	}

	return strings.Join(kept, "&")
}
