package classify

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/lysyi3m/event-comb/app/llm"
	"github.com/lysyi3m/event-comb/app/run"
)

const (
	DefaultLimit = 50

	pdfConfidence = 0.3
)

type Options struct {
	Limit int
	Stamp run.Stamp // zero means "now" at the start of Run
}

func DefaultOptions() Options {
	return Options{Limit: DefaultLimit}
}

// Classifier fetches each candidate page and asks the model what kind of
// event page it is. Candidates are processed one at a time in input order.
type Classifier struct {
	content ContentSource
	model   ModelCaller
	options Options
}

func NewClassifier(content ContentSource, model ModelCaller, options Options) *Classifier {
	if options.Limit <= 0 {
		options.Limit = DefaultLimit
	}
	return &Classifier{
		content: content,
		model:   model,
		options: options,
	}
}

// Run classifies up to Limit deduplicated candidates. On a model failure or
// a malformed response it returns the rows classified so far together with
// the error.
func (c *Classifier) Run(ctx context.Context, candidates []Candidate) ([]EventRecord, error) {
	return c.RunAt(ctx, c.options.Stamp.OrNow(), candidates)
}

// RunAt is Run with the run stamp chosen by the caller.
func (c *Classifier) RunAt(ctx context.Context, stamp run.Stamp, candidates []Candidate) ([]EventRecord, error) {
	runDate, extractedAt := stamp.Date(), stamp.Timestamp()

	queue := DedupeCandidates(candidates)
	if len(queue) > c.options.Limit {
		slog.Info("Limiting classification batch", "candidates", len(queue), "limit", c.options.Limit)
		queue = queue[:c.options.Limit]
	}

	rows := make([]EventRecord, 0, len(queue))
	for i, candidate := range queue {
		if err := ctx.Err(); err != nil {
			return rows, err
		}

		var record EventRecord
		if IsPDF(candidate.URL) {
			record = pdfRecord(candidate)
		} else {
			content := c.content.Content(ctx, candidate.URL)

			raw, err := c.model.Classify(ctx, ModelRequest{
				URL:         candidate.URL,
				HomepageURL: candidate.HomepageURL,
				Content:     content,
			})
			if err != nil {
				slog.Error("Model call failed",
					"url", candidate.URL,
					"error_type", llm.GetErrorType(err),
					"error", err)
				return rows, fmt.Errorf("failed to classify %s: %w", candidate.URL, err)
			}

			record, err = ParseResponse(raw, candidate)
			if err != nil {
				return rows, err
			}
		}

		record.RunDate = runDate
		record.ExtractedAt = extractedAt
		rows = append(rows, record)

		slog.Debug("Page classified",
			"position", i+1,
			"total", len(queue),
			"url", candidate.URL,
			"page_type", record.PageType,
			"category", record.Category,
			"confidence", record.Confidence)
	}

	return rows, nil
}

// DedupeCandidates drops repeated (homepage_url, url) pairs, keeping the
// first occurrence.
func DedupeCandidates(candidates []Candidate) []Candidate {
	seen := make(map[Candidate]bool, len(candidates))
	unique := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if seen[candidate] {
			continue
		}
		seen[candidate] = true
		unique = append(unique, candidate)
	}
	return unique
}

// IsPDF reports whether the URL path ends in ".pdf", ignoring case. Query
// strings and fragments are not part of the check.
func IsPDF(rawURL string) bool {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		path = u.Path
	}
	return strings.HasSuffix(strings.ToLower(path), ".pdf")
}

func pdfRecord(candidate Candidate) EventRecord {
	return EventRecord{
		URL:         candidate.URL,
		HomepageURL: candidate.HomepageURL,
		PageType:    PageTypePDF,
		Category:    CategoryOther,
		Tags:        []string{},
		Confidence:  pdfConfidence,
	}
}
