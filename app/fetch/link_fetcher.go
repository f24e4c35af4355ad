package fetch

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gocolly/colly/v2"
)

// LinkFetcher collects the href of every anchor on a page. Sites marked with
// DiscoverFeedsFor also contribute the item links of the feeds they advertise.
type LinkFetcher struct {
	collector *colly.Collector
	feeds     *FeedReader
	feedSites map[string]bool
}

func NewLinkFetcher(cfg Config, httpClient *http.Client, feeds *FeedReader) *LinkFetcher {
	cfg = cfg.withDefaults()

	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.MaxBodySize(maxBodyBytes),
	)
	collector.WithTransport(httpClient.Transport)
	collector.SetRequestTimeout(cfg.RequestTimeout())

	return &LinkFetcher{
		collector: collector,
		feeds:     feeds,
		feedSites: make(map[string]bool),
	}
}

func (f *LinkFetcher) DiscoverFeedsFor(pageURLs ...string) {
	for _, pageURL := range pageURLs {
		f.feedSites[pageURL] = true
	}
}

// Links never fails: any fetch error yields nil.
func (f *LinkFetcher) Links(ctx context.Context, pageURL string) []string {
	c := f.collector.Clone()
	c.Context = ctx

	var hrefs []string
	var feedURLs []string

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		hrefs = append(hrefs, e.Attr("href"))
	})

	if f.feeds != nil && f.feedSites[pageURL] {
		c.OnHTML(`link[rel="alternate"][href]`, func(e *colly.HTMLElement) {
			if isFeedType(e.Attr("type")) {
				feedURLs = append(feedURLs, e.Request.AbsoluteURL(e.Attr("href")))
			}
		})
	}

	if err := c.Visit(pageURL); err != nil {
		slog.Warn("Failed to fetch links", "url", pageURL, "error", err)
		return nil
	}

	for _, feedURL := range feedURLs {
		if feedURL == "" {
			continue
		}
		itemLinks, err := f.feeds.ItemLinks(ctx, feedURL)
		if err != nil {
			slog.Warn("Failed to read advertised feed", "url", pageURL, "feed_url", feedURL, "error", err)
			continue
		}
		slog.Debug("Feed links discovered", "url", pageURL, "feed_url", feedURL, "count", len(itemLinks))
		hrefs = append(hrefs, itemLinks...)
	}

	return hrefs
}
