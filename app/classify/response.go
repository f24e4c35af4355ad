package classify

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ResponseError is a model reply that is not valid JSON or breaks the
// record schema.
type ResponseError struct {
	URL    string
	Raw    string
	Reason string
	Err    error
}

func (e *ResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed model response for %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed model response for %s: %s", e.URL, e.Reason)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

type modelResponse struct {
	PageType   *string  `json:"page_type"`
	Title      *string  `json:"title"`
	Summary    *string  `json:"summary"`
	Category   *string  `json:"category"`
	StartDate  *string  `json:"start_date"`
	StartTime  *string  `json:"start_time"`
	Venue      *string  `json:"venue"`
	Price      *string  `json:"price"`
	IsFree     *bool    `json:"is_free"`
	Tags       []string `json:"tags"`
	Confidence *float64 `json:"confidence"`
}

// ParseResponse decodes and validates a model reply. url and homepage_url
// always come from the candidate, whatever the model echoed back.
func ParseResponse(raw string, candidate Candidate) (EventRecord, error) {
	fail := func(reason string, err error) (EventRecord, error) {
		return EventRecord{}, &ResponseError{URL: candidate.URL, Raw: raw, Reason: reason, Err: err}
	}

	var resp modelResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return fail("invalid JSON", err)
	}

	if resp.PageType == nil {
		return fail("missing page_type", nil)
	}
	pageType, err := ParsePageType(*resp.PageType)
	if err != nil {
		return fail("invalid page_type", err)
	}

	if resp.Category == nil {
		return fail("missing category", nil)
	}
	category, err := ParseCategory(*resp.Category)
	if err != nil {
		return fail("invalid category", err)
	}

	if resp.Confidence == nil {
		return fail("missing confidence", nil)
	}
	if *resp.Confidence < 0 || *resp.Confidence > 1 {
		return fail(fmt.Sprintf("confidence %v outside [0, 1]", *resp.Confidence), nil)
	}

	startDate := optional(resp.StartDate)
	if startDate != nil {
		if _, err := time.Parse("2006-01-02", *startDate); err != nil {
			return fail("invalid start_date", err)
		}
	}

	startTime := optional(resp.StartTime)
	if startTime != nil {
		if _, err := time.Parse("15:04", *startTime); err != nil {
			return fail("invalid start_time", err)
		}
	}

	tags := make([]string, 0, len(resp.Tags))
	for _, tag := range resp.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return EventRecord{
		URL:         candidate.URL,
		HomepageURL: candidate.HomepageURL,
		PageType:    pageType,
		Title:       optional(resp.Title),
		Summary:     optional(resp.Summary),
		Category:    category,
		StartDate:   startDate,
		StartTime:   startTime,
		Venue:       optional(resp.Venue),
		Price:       optional(resp.Price),
		IsFree:      resp.IsFree,
		Tags:        tags,
		Confidence:  *resp.Confidence,
	}, nil
}

// optional trims s and maps blank strings to nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
