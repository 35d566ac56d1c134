package viagogo

import (
	"fmt"
	"net/url"
	"strings"
)

const dateTimeSeparator = " • "

// UpdateQueryParam sets key to value on rawURL, keeping every other
// parameter and the existing parameter order. A missing key is appended.
func UpdateQueryParam(rawURL, key, value string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}

	pair := url.QueryEscape(key) + "=" + url.QueryEscape(value)
	var (
		parts    []string
		replaced bool
	)
	if u.RawQuery != "" {
		for _, part := range strings.Split(u.RawQuery, "&") {
			name, _, _ := strings.Cut(part, "=")
			if decoded, err := url.QueryUnescape(name); err == nil && decoded == key {
				if !replaced {
					parts = append(parts, pair)
					replaced = true
				}
				continue
			}
			parts = append(parts, part)
		}
	}
	if !replaced {
		parts = append(parts, pair)
	}

	u.RawQuery = strings.Join(parts, "&")
	return u.String(), nil
}

// SplitDateTime splits "Jan 5, 2025 • 7:00 PM" into its date and time. Without
// the separator the whole string is the date.
func SplitDateTime(s string) (date, clock string) {
	date, clock, found := strings.Cut(s, dateTimeSeparator)
	if !found {
		return s, ""
	}
	return date, clock
}

// resolveLink turns href into an absolute URL relative to base.
func resolveLink(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base %q: %w", base, err)
	}
	r, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parse href %q: %w", href, err)
	}
	return b.ResolveReference(r).String(), nil
}

// siteRoot returns scheme://host/ of rawURL.
func siteRoot(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/"
}

func pathSegments(rawURL string) []string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	var segs []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// stateFromURL takes the first path segment: /Colorado/... -> Colorado.
func stateFromURL(rawURL string) string {
	segs := pathSegments(rawURL)
	if len(segs) == 0 {
		return ""
	}
	return segs[0]
}

// cityFromURL takes the last path segment: /Colorado/Denver -> Denver.
func cityFromURL(rawURL string) string {
	segs := pathSegments(rawURL)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}
