package site

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type ConfigCache struct {
	sitesDir string
	cache    map[string]*Config
	mu       sync.RWMutex
}

func NewConfigCache(sitesDir string) *ConfigCache {
	return &ConfigCache{
		sitesDir: sitesDir,
		cache:    make(map[string]*Config),
	}
}

// Run loads every *.yml file in the sites directory. A missing directory
// is not an error.
func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.sitesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.sitesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		siteName := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := cc.LoadConfig(siteName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Configuration loaded",
			"site", siteName,
			"enabled", config.IsEnabled(),
			"discover_feeds", config.Settings.DiscoverFeeds,
			"readability", config.Settings.Readability)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(siteName string) (*Config, error) {
	configFile := cc.getConfigFilePath(siteName)
	siteConfig, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	siteConfig.Name = siteName

	if err := cc.validateConfig(siteConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[siteConfig.Name] = siteConfig

	return siteConfig, nil
}

func (cc *ConfigCache) GetConfig(siteName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	siteConfig, ok := cc.cache[siteName]
	if !ok {
		return nil, fmt.Errorf("site config with name '%s' not found", siteName)
	}
	return siteConfig, nil
}

// GetEnabledConfigs returns enabled sites ordered by name.
func (cc *ConfigCache) GetEnabledConfigs() []*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabled := make([]*Config, 0, len(cc.cache))
	for _, v := range cc.cache {
		if v.IsEnabled() {
			enabled = append(enabled, v)
		}
	}
	sort.Slice(enabled, func(i, j int) bool {
		return enabled[i].Name < enabled[j].Name
	})
	return enabled
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var siteConfig Config
	if err := yaml.Unmarshal(data, &siteConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	siteConfig.URL = strings.TrimSpace(siteConfig.URL)

	return &siteConfig, nil
}

func (cc *ConfigCache) validateConfig(siteConfig *Config) error {
	if siteConfig == nil {
		return fmt.Errorf("siteConfig is nil")
	}

	if siteConfig.URL == "" {
		return fmt.Errorf("site URL is required")
	}

	u, err := url.Parse(siteConfig.URL)
	if err != nil {
		return fmt.Errorf("invalid site URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("site URL must use http or https: %s", siteConfig.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("site URL has no host: %s", siteConfig.URL)
	}

	for i, prefix := range siteConfig.Denylist.Prefixes {
		if strings.TrimSpace(prefix) == "" {
			return fmt.Errorf("empty denylist prefix at index %d", i)
		}
	}
	for i, substring := range siteConfig.Denylist.Substrings {
		if strings.TrimSpace(substring) == "" {
			return fmt.Errorf("empty denylist substring at index %d", i)
		}
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(siteName string) string {
	return filepath.Join(cc.sitesDir, siteName+".yml")
}
