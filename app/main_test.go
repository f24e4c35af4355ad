package main

import (
	"testing"

	"github.com/lysyi3m/event-comb/app/cfg"
	"github.com/lysyi3m/event-comb/app/links"
	"github.com/lysyi3m/event-comb/app/site"
)

func TestBuildTargets(t *testing.T) {
	keep := false
	sites := []*site.Config{
		{Name: "museo", URL: "https://museo.test/", Denylist: links.Denylist{Substrings: []string{"tienda"}}},
		{Name: "teatro", URL: "https://teatro.test/", Settings: site.ConfigSettings{KeepSameDomain: &keep}},
	}
	appCfg := &cfg.Cfg{URLs: []string{"https://cli.test/"}, KeepSameDomain: true}

	targets := buildTargets(appCfg, sites)

	if len(targets) != 3 {
		t.Fatalf("Expected 3 targets, got %d", len(targets))
	}
	if targets[0].URL != "https://cli.test/" || !targets[0].KeepSameDomain {
		t.Errorf("Expected command line URL first with same-domain filtering, got %+v", targets[0])
	}
	if targets[1].URL != "https://museo.test/" || len(targets[1].Denylist.Substrings) != 1 {
		t.Errorf("Expected site denylist override, got %+v", targets[1])
	}
	if len(targets[1].Denylist.Prefixes) == 0 {
		t.Error("Expected default prefixes to be kept")
	}
	if targets[2].KeepSameDomain {
		t.Error("Expected site setting to disable same-domain filtering")
	}

	appCfg.KeepSameDomain = false
	for _, target := range buildTargets(appCfg, sites) {
		if target.KeepSameDomain {
			t.Errorf("Expected --all-domains to apply to %s", target.URL)
		}
	}
}
