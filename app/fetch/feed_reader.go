package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"
)

// FeedReader lists the item links of an RSS, Atom or JSON feed.
type FeedReader struct {
	httpClient   *http.Client
	userAgent    string
	gofeedParser *gofeed.Parser
}

func NewFeedReader(cfg Config, httpClient *http.Client) *FeedReader {
	cfg = cfg.withDefaults()
	return &FeedReader{
		httpClient:   httpClient,
		userAgent:    cfg.UserAgent,
		gofeedParser: gofeed.NewParser(),
	}
}

func (r *FeedReader) ItemLinks(ctx context.Context, feedURL string) ([]string, error) {
	data, err := get(ctx, r.httpClient, r.userAgent, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	feed, err := r.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	links := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		if link := strings.TrimSpace(item.Link); link != "" {
			links = append(links, link)
		}
	}

	return links, nil
}

// isFeedType reports whether a <link type> advertises a feed.
func isFeedType(mimeType string) bool {
	mimeType = strings.ToLower(mimeType)
	return strings.Contains(mimeType, "rss+xml") ||
		strings.Contains(mimeType, "atom+xml") ||
		strings.Contains(mimeType, "feed+json")
}
