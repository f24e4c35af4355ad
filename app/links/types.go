package links

import (
	"context"
	"slices"
)

// Record is one normalized candidate link.
type Record struct {
	RunDate     string
	ScrapedAt   string
	PageURL     string
	EventURLRaw string
	EventURLAbs string
	LinkID      string
}

// Source returns the raw href values found on a page. Network failures
// yield an empty slice.
type Source interface {
	Links(ctx context.Context, pageURL string) []string
}

type SourceFunc func(ctx context.Context, pageURL string) []string

func (f SourceFunc) Links(ctx context.Context, pageURL string) []string {
	return f(ctx, pageURL)
}

// Denylist drops non-content links. Prefixes are matched case-sensitively
// against the trimmed href, substrings against its lower-cased form.
type Denylist struct {
	Prefixes   []string `yaml:"prefixes"`
	Substrings []string `yaml:"substrings"`
}

func DefaultDenylist() Denylist {
	return Denylist{
		Prefixes: []string{"#", "mailto:", "tel:", "javascript:"},
		Substrings: []string{
			"cdn-cgi/l/email-protection",
			"/privacy", "privacy",
			"/terminos", "terminos",
			"/terms", "terms",
			"cookies",
		},
	}
}

// Override replaces each non-empty list of d with the one from other.
func (d Denylist) Override(other Denylist) Denylist {
	result := Denylist{
		Prefixes:   slices.Clone(d.Prefixes),
		Substrings: slices.Clone(d.Substrings),
	}
	if len(other.Prefixes) > 0 {
		result.Prefixes = slices.Clone(other.Prefixes)
	}
	if len(other.Substrings) > 0 {
		result.Substrings = slices.Clone(other.Substrings)
	}
	return result
}

// Target is a homepage together with the options used to normalize its links.
type Target struct {
	URL            string
	KeepSameDomain bool
	Denylist       Denylist
}
