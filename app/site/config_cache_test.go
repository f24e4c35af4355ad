package site

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/lysyi3m/event-comb/app/links"
)

func writeSite(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	writeSite(t, tempDir, "teatro", `
url: "https://teatro.example/"

settings:
  enabled: true
  keep_same_domain: false
  discover_feeds: true
  readability: true

denylist:
  substrings:
    - "newsletter"
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 siteConfig, got %d", configCache.GetConfigCount())
	}

	siteConfig, err := configCache.GetConfig("teatro")
	if err != nil {
		t.Fatal(err)
	}

	if siteConfig.Name != "teatro" {
		t.Errorf("Expected name 'teatro', got '%s'", siteConfig.Name)
	}
	if siteConfig.URL != "https://teatro.example/" {
		t.Errorf("Expected URL 'https://teatro.example/', got '%s'", siteConfig.URL)
	}
	if !siteConfig.Settings.DiscoverFeeds || !siteConfig.Settings.Readability {
		t.Error("Expected discover_feeds and readability to be enabled")
	}

	target := siteConfig.Target(links.DefaultDenylist())
	if target.KeepSameDomain {
		t.Error("Expected keep_same_domain false to be honoured")
	}
	if len(target.Denylist.Substrings) != 1 || target.Denylist.Substrings[0] != "newsletter" {
		t.Errorf("Expected site substrings to replace the defaults, got %v", target.Denylist.Substrings)
	}
	if len(target.Denylist.Prefixes) != len(links.DefaultDenylist().Prefixes) {
		t.Errorf("Expected default prefixes to be kept, got %v", target.Denylist.Prefixes)
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()
	writeSite(t, tempDir, "minimal", `url: "http://minimal.example"`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	siteConfig, err := configCache.GetConfig("minimal")
	if err != nil {
		t.Fatal(err)
	}

	if !siteConfig.IsEnabled() {
		t.Error("Expected sites to be enabled by default")
	}
	if siteConfig.Settings.DiscoverFeeds || siteConfig.Settings.Readability {
		t.Error("Expected optional features to be off by default")
	}

	target := siteConfig.Target(links.DefaultDenylist())
	if !target.KeepSameDomain {
		t.Error("Expected keep_same_domain to default to true")
	}
	if len(target.Denylist.Substrings) != len(links.DefaultDenylist().Substrings) {
		t.Errorf("Expected default denylist, got %v", target.Denylist)
	}
}

func TestConfigCacheValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"missing url", `settings: {enabled: true}`, "URL is required"},
		{"ftp url", `url: "ftp://files.example/"`, "http or https"},
		{"no host", `url: "https:///path"`, "no host"},
		{"empty prefix", "url: \"https://x.example\"\ndenylist:\n  prefixes: [\"\"]", "empty denylist prefix"},
		{"empty substring", "url: \"https://x.example\"\ndenylist:\n  substrings: [\"ok\", \" \"]", "empty denylist substring"},
		{"bad yaml", "url: [unterminated", "failed to parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			writeSite(t, tempDir, "site", tt.content)

			err := NewConfigCache(tempDir).Run()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("Expected error containing '%s', got '%v'", tt.errPart, err)
			}
		})
	}
}

func TestConfigCacheEnabledConfigsSorted(t *testing.T) {
	tempDir := t.TempDir()
	writeSite(t, tempDir, "zeta", `url: "https://zeta.example/"`)
	writeSite(t, tempDir, "alpha", `url: "https://alpha.example/"`)
	writeSite(t, tempDir, "off", "url: \"https://off.example/\"\nsettings:\n  enabled: false")

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	enabled := configCache.GetEnabledConfigs()
	if len(enabled) != 2 {
		t.Fatalf("Expected 2 enabled sites, got %d", len(enabled))
	}
	if enabled[0].Name != "alpha" || enabled[1].Name != "zeta" {
		t.Errorf("Expected [alpha zeta], got [%s %s]", enabled[0].Name, enabled[1].Name)
	}
}

func TestConfigCacheMissingDirectory(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "nope"))
	if err := configCache.Run(); err != nil {
		t.Errorf("Expected no error for missing directory, got %v", err)
	}
	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected no configs, got %d", configCache.GetConfigCount())
	}
	if _, err := configCache.GetConfig("x"); err == nil {
		t.Error("Expected error for unknown site")
	}
}

func TestConfigCacheExampleSiteKeepsDefaultDenylist(t *testing.T) {
	configCache := NewConfigCache(filepath.Join("..", "..", "sites"))
	if err := configCache.Run(); err != nil {
		t.Fatalf("Failed to load sites directory: %v", err)
	}

	siteConfig, err := configCache.GetConfig("example")
	if err != nil {
		t.Fatalf("Expected example site: %v", err)
	}
	if siteConfig.IsEnabled() {
		t.Error("Expected the example site to be disabled")
	}

	denylist := siteConfig.Target(links.DefaultDenylist()).Denylist
	for _, substring := range links.DefaultDenylist().Substrings {
		if !slices.Contains(denylist.Substrings, substring) {
			t.Errorf("Expected example denylist to keep default substring '%s'", substring)
		}
	}
	if !slices.Contains(denylist.Substrings, "/tienda") {
		t.Error("Expected example denylist to add '/tienda'")
	}
}
