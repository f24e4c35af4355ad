package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// NoContent is returned when a page cannot be fetched or parsed.
const NoContent = NoTitle + "\n\n"

type ContentFetcher struct {
	httpClient       *http.Client
	userAgent        string
	extractor        *ContentExtractor
	readabilityHosts map[string]bool
}

func NewContentFetcher(cfg Config, httpClient *http.Client) *ContentFetcher {
	cfg = cfg.withDefaults()
	return &ContentFetcher{
		httpClient:       httpClient,
		userAgent:        cfg.UserAgent,
		extractor:        NewContentExtractor(cfg.ContentLimit),
		readabilityHosts: make(map[string]bool),
	}
}

// UseReadabilityFor enables main-content extraction for pages on the hosts
// of the given URLs.
func (f *ContentFetcher) UseReadabilityFor(siteURLs ...string) {
	for _, siteURL := range siteURLs {
		if u, err := url.Parse(siteURL); err == nil && u.Host != "" {
			f.readabilityHosts[strings.ToLower(u.Host)] = true
		}
	}
}

// Content returns the page title and body text, or NoContent on failure.
func (f *ContentFetcher) Content(ctx context.Context, pageURL string) string {
	data, err := get(ctx, f.httpClient, f.userAgent, pageURL)
	if err != nil {
		slog.Warn("Failed to fetch page content", "url", pageURL, "error", err)
		return NoContent
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		parsed = nil
	}
	useReadability := parsed != nil && f.readabilityHosts[strings.ToLower(parsed.Host)]

	content, err := f.extractor.Run(data, parsed, useReadability)
	if err != nil {
		slog.Warn("Failed to extract page content", "url", pageURL, "error", err)
		return NoContent
	}

	slog.Debug("Content extracted", "url", pageURL, "readability", useReadability, "content_length", len(content))
	return content
}
