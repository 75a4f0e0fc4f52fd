// Package urlnorm canonicalizes result URLs so that the same page expressed
// differently deduplicates to one entry. Search providers decorate links
// with tracking parameters and vary case, ports and trailing slashes;
// normalization happens once, before URLs are compared or cached.
package urlnorm

import (
	"net/url"
	"path"
	"sort"
	"strings"
)

// trackingParams lists query parameters stripped during normalization.
// Advertising and analytics trackers do not affect page content.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"fbclid":       {},
	"gclid":        {},
	"gclsrc":       {},
	"dclid":        {},
	"msclkid":      {},
}

// defaultPorts maps schemes to their default port strings.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Canonical applies deterministic transformations to a result URL:
// lowercased scheme and host, default ports removed, dot-segments resolved,
// trailing slashes trimmed, fragment dropped, query parameters sorted and
// trackers stripped. Input that does not parse as an absolute URL is
// returned lowercased and trimmed, so comparison still works.
func Canonical(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.ToLower(rawURL)
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = normalizeHost(parsed)
	parsed.Fragment = ""
	parsed.RawQuery = cleanQuery(parsed.Query())
	parsed.Path = normalizePath(parsed.Path)

	return parsed.String()
}

// normalizeHost lowercases the hostname and removes the scheme's default
// port.
func normalizeHost(u *url.URL) string {
	hostname := strings.ToLower(u.Hostname())
	port := u.Port()
	if port == "" || port == defaultPorts[strings.ToLower(u.Scheme)] {
		return hostname
	}
	return hostname + ":" + port
}

// cleanQuery strips tracking parameters and sorts the remaining keys so
// parameter order never distinguishes two URLs.
func cleanQuery(values url.Values) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		if _, isTracking := trackingParams[key]; !isTracking {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		for j, val := range values[key] {
			if j > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(val))
		}
	}
	return b.String()
}

// normalizePath resolves dot-segments and removes trailing slashes while
// preserving the root "/".
func normalizePath(p string) string {
	if p == "" || p == "/" {
		return ""
	}
	return strings.TrimRight(path.Clean(p), "/")
}
