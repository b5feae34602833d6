package scrape

import (
	"log/slog"
	"net/url"
	"strings"
)

// ResolveURL turns a link found in scraped markup into an absolute URL
// against the page it was found on. Already-absolute links pass through
// unchanged. Relative links are joined to the base's scheme and host;
// no trailing-slash or query canonicalization is performed. A malformed
// base is logged and the raw link returned rather than failing the
// crawl.
func ResolveURL(raw, baseURL string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		slog.Warn("cannot resolve link against malformed base URL", "link", raw, "base", baseURL)
		return raw
	}

	if strings.HasPrefix(raw, "/") {
		return base.Scheme + "://" + base.Host + raw
	}
	return base.Scheme + "://" + base.Host + "/" + raw
}
