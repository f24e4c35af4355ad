package classify

import (
	"context"
	"fmt"

	"github.com/lysyi3m/event-comb/app/links"
)

type PageType string

const (
	PageTypeEventDetail PageType = "event_detail"
	PageTypeListing     PageType = "listing"
	PageTypeTicket      PageType = "ticket"
	PageTypePDF         PageType = "pdf"
	PageTypeOther       PageType = "other"
)

var pageTypes = []PageType{PageTypeEventDetail, PageTypeListing, PageTypeTicket, PageTypePDF, PageTypeOther}

func ParsePageType(value string) (PageType, error) {
	for _, pageType := range pageTypes {
		if string(pageType) == value {
			return pageType, nil
		}
	}
	return "", fmt.Errorf("unknown page_type %q", value)
}

type Category string

const (
	CategoryTheatre    Category = "theatre"
	CategoryMusic      Category = "music"
	CategoryExhibition Category = "exhibition"
	CategoryCinema     Category = "cinema"
	CategoryDance      Category = "dance"
	CategoryTalk       Category = "talk"
	CategoryWorkshop   Category = "workshop"
	CategoryOther      Category = "other"
)

var categories = []Category{
	CategoryTheatre, CategoryMusic, CategoryExhibition, CategoryCinema,
	CategoryDance, CategoryTalk, CategoryWorkshop, CategoryOther,
}

func ParseCategory(value string) (Category, error) {
	for _, category := range categories {
		if string(category) == value {
			return category, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", value)
}

// Candidate is a page queued for classification.
type Candidate struct {
	URL         string
	HomepageURL string
}

// CandidatesFromLinks turns harvested links into classification candidates,
// preserving order.
func CandidatesFromLinks(records []links.Record) []Candidate {
	candidates := make([]Candidate, 0, len(records))
	for _, record := range records {
		candidates = append(candidates, Candidate{URL: record.EventURLAbs, HomepageURL: record.PageURL})
	}
	return candidates
}

// EventRecord is one classified page. Nil pointers are unknown values.
type EventRecord struct {
	URL         string
	HomepageURL string
	PageType    PageType
	Title       *string
	Summary     *string
	Category    Category
	StartDate   *string // YYYY-MM-DD
	StartTime   *string // HH:MM
	Venue       *string
	Price       *string
	IsFree      *bool
	Tags        []string
	Confidence  float64
	RunDate     string
	ExtractedAt string
}

// ContentSource returns "title\n\ntext" for a page, or a sentinel with an
// empty body when the page cannot be fetched.
type ContentSource interface {
	Content(ctx context.Context, pageURL string) string
}

type ContentSourceFunc func(ctx context.Context, pageURL string) string

func (f ContentSourceFunc) Content(ctx context.Context, pageURL string) string {
	return f(ctx, pageURL)
}

// ModelRequest is the JSON document sent to the model for one page.
type ModelRequest struct {
	URL         string `json:"url"`
	HomepageURL string `json:"homepage_url"`
	Content     string `json:"content"`
}

// ModelCaller returns the raw JSON text the model produced for a request.
type ModelCaller interface {
	Classify(ctx context.Context, req ModelRequest) (string, error)
}

type ModelCallerFunc func(ctx context.Context, req ModelRequest) (string, error)

func (f ModelCallerFunc) Classify(ctx context.Context, req ModelRequest) (string, error) {
	return f(ctx, req)
}
