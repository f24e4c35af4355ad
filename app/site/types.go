package site

import (
	"github.com/lysyi3m/event-comb/app/links"
)

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Settings ConfigSettings `yaml:"settings"`
	Denylist links.Denylist `yaml:"denylist"` // Non-empty lists replace the defaults
}

type ConfigSettings struct {
	Enabled        *bool `yaml:"enabled"`          // default true
	KeepSameDomain *bool `yaml:"keep_same_domain"` // default true
	DiscoverFeeds  bool  `yaml:"discover_feeds"`
	Readability    bool  `yaml:"readability"` // main-content extraction for this site's pages
}

func (c *Config) IsEnabled() bool {
	return c.Settings.Enabled == nil || *c.Settings.Enabled
}

// Target builds the normalization target for this site on top of the
// run-wide denylist.
func (c *Config) Target(base links.Denylist) links.Target {
	return links.Target{
		URL:            c.URL,
		KeepSameDomain: c.Settings.KeepSameDomain == nil || *c.Settings.KeepSameDomain,
		Denylist:       base.Override(c.Denylist),
	}
}
