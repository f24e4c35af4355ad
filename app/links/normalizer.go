package links

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/lysyi3m/event-comb/app/run"
)

type Options struct {
	KeepSameDomain bool
	Denylist       Denylist
	Stamp          run.Stamp
}

func DefaultOptions() Options {
	return Options{
		KeepSameDomain: true,
		Denylist:       DefaultDenylist(),
	}
}

type Normalizer struct {
	options Options
}

func NewNormalizer(options Options) *Normalizer {
	options.Stamp = options.Stamp.OrNow()
	return &Normalizer{options: options}
}

func (n *Normalizer) Stamp() run.Stamp {
	return n.options.Stamp
}

// Run normalizes the links of every homepage with the normalizer's options.
func (n *Normalizer) Run(ctx context.Context, homepages []string, source Source) ([]Record, error) {
	targets := make([]Target, 0, len(homepages))
	for _, homepage := range homepages {
		targets = append(targets, Target{
			URL:            homepage,
			KeepSameDomain: n.options.KeepSameDomain,
			Denylist:       n.options.Denylist,
		})
	}
	return n.RunTargets(ctx, targets, source)
}

// RunTargets collects, filters and deduplicates the links of each target in
// input order. Only context cancellation returns an error; the records
// gathered so far are returned with it.
func (n *Normalizer) RunTargets(ctx context.Context, targets []Target, source Source) ([]Record, error) {
	runDate := n.options.Stamp.Date()
	scrapedAt := n.options.Stamp.PlainTimestamp()

	var rows []Record
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return Dedupe(rows), err
		}

		base, err := url.Parse(target.URL)
		if err != nil {
			slog.Warn("Invalid homepage URL, skipping", "page_url", target.URL, "error", err)
			continue
		}

		hrefs := source.Links(ctx, target.URL)
		if len(hrefs) == 0 {
			slog.Debug("No links found", "page_url", target.URL)
			continue
		}

		kept := 0
		for _, href := range hrefs {
			raw, absURL, ok := n.normalize(base, target, href)
			if !ok {
				continue
			}

			rows = append(rows, Record{
				RunDate:     runDate,
				ScrapedAt:   scrapedAt,
				PageURL:     target.URL,
				EventURLRaw: raw,
				EventURLAbs: absURL,
				LinkID:      LinkID(absURL),
			})
			kept++
		}

		slog.Debug("Links normalized", "page_url", target.URL, "found", len(hrefs), "kept", kept)
	}

	return Dedupe(rows), nil
}

func (n *Normalizer) normalize(base *url.URL, target Target, href string) (string, string, bool) {
	raw := strings.TrimSpace(href)
	if raw == "" {
		return "", "", false
	}

	if reason := target.Denylist.Match(raw); reason != "" {
		slog.Debug("Junk href, skipping", "page_url", target.URL, "href", raw, "reason", reason)
		return "", "", false
	}

	ref, err := url.Parse(raw)
	if err != nil {
		slog.Debug("Unresolvable href, skipping", "page_url", target.URL, "href", raw, "error", err)
		return "", "", false
	}
	resolved := base.ResolveReference(ref)

	if target.KeepSameDomain && resolved.Host != base.Host {
		return "", "", false
	}

	absURL := resolved.String()
	if strings.TrimRight(absURL, "/") == strings.TrimRight(target.URL, "/") {
		return "", "", false
	}

	return raw, absURL, true
}

// Match reports why href is junk, or "" when it is not.
func (d Denylist) Match(href string) string {
	for _, prefix := range d.Prefixes {
		if strings.HasPrefix(href, prefix) {
			return fmt.Sprintf("prefix %q", prefix)
		}
	}

	lower := strings.ToLower(href)
	for _, substring := range d.Substrings {
		if strings.Contains(lower, strings.ToLower(substring)) {
			return fmt.Sprintf("contains %q", substring)
		}
	}

	return ""
}

// LinkID is the hex MD5 digest of the absolute URL.
func LinkID(absURL string) string {
	hash := md5.Sum([]byte(absURL))
	return hex.EncodeToString(hash[:])
}

// Dedupe keeps the first record for each (page_url, event_url_abs) pair.
func Dedupe(rows []Record) []Record {
	seen := make(map[[2]string]struct{}, len(rows))
	unique := make([]Record, 0, len(rows))
	for _, row := range rows {
		key := [2]string{row.PageURL, row.EventURLAbs}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, row)
	}
	return unique
}
