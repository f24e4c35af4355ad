package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lysyi3m/event-comb/app/api"
	"github.com/lysyi3m/event-comb/app/cfg"
	"github.com/lysyi3m/event-comb/app/classify"
	"github.com/lysyi3m/event-comb/app/database"
	"github.com/lysyi3m/event-comb/app/fetch"
	"github.com/lysyi3m/event-comb/app/links"
	"github.com/lysyi3m/event-comb/app/llm"
	"github.com/lysyi3m/event-comb/app/run"
	"github.com/lysyi3m/event-comb/app/site"
	"github.com/lysyi3m/event-comb/app/store"
	"github.com/lysyi3m/event-comb/app/tasks"
)

func main() {
	appCfg, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogger(appCfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Debug("Starting Event Comb", "version", appCfg.Version, "command", appCfg.Command)

	if err := execute(ctx, appCfg); err != nil {
		slog.Error("Command failed", "command", appCfg.Command, "error", err)
		stop()
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func execute(ctx context.Context, appCfg *cfg.Cfg) error {
	switch appCfg.Command {
	case cfg.CommandLinks, cfg.CommandClassify, cfg.CommandRun:
		return runPipeline(ctx, appCfg)
	case cfg.CommandRuns:
		return showRuns(appCfg)
	case cfg.CommandServe:
		return serve(ctx, appCfg)
	default:
		return fmt.Errorf("unknown command: %s", appCfg.Command)
	}
}

func runPipeline(ctx context.Context, appCfg *cfg.Cfg) error {
	sites, err := loadSites(appCfg.SitesDir)
	if err != nil {
		return err
	}

	runRepo, closeLedger, err := openLedger(appCfg.LedgerPath)
	if err != nil {
		return err
	}
	defer closeLedger()

	fetchCfg := fetch.Config{
		UserAgent:      appCfg.UserAgent,
		ConnectTimeout: appCfg.ConnectTimeout,
		ReadTimeout:    appCfg.ReadTimeout,
		ContentLimit:   appCfg.ContentLimit,
	}
	httpClient := fetch.NewHTTPClient(fetchCfg)
	writer := store.NewWriter(appCfg.OutputDir)
	pipeline := tasks.NewPipeline(runRepo)

	var linksTask *tasks.ExtractLinksTask
	if appCfg.Command != cfg.CommandClassify {
		targets := buildTargets(appCfg, sites)
		if len(targets) == 0 {
			return fmt.Errorf("no homepages to process: pass URLs or add site configurations to %s", appCfg.SitesDir)
		}

		feedReader := fetch.NewFeedReader(fetchCfg, httpClient)
		linkFetcher := fetch.NewLinkFetcher(fetchCfg, httpClient, feedReader)
		for _, siteCfg := range sites {
			if siteCfg.Settings.DiscoverFeeds {
				linkFetcher.DiscoverFeedsFor(siteCfg.URL)
			}
		}

		normalizer := links.NewNormalizer(links.Options{
			KeepSameDomain: appCfg.KeepSameDomain,
			Denylist:       links.DefaultDenylist(),
			Stamp:          appCfg.RunStamp,
		})

		linksTask = tasks.NewExtractLinksTask(targets, normalizer, linkFetcher, writer)
		pipeline.Add(linksTask)
	}

	if appCfg.Command != cfg.CommandLinks {
		classifyTask, err := newClassifyTask(appCfg, sites, fetchCfg, httpClient, writer, linksTask)
		if err != nil {
			return err
		}
		pipeline.Add(classifyTask)
	}

	return pipeline.Run(ctx)
}

// newClassifyTask leaves the classification stamp unset unless
// --run-timestamp pins it, so extracted_at marks the start of the loop.
func newClassifyTask(appCfg *cfg.Cfg, sites []*site.Config, fetchCfg fetch.Config,
	httpClient *http.Client, writer *store.Writer, linksTask *tasks.ExtractLinksTask) (*tasks.ClassifyEventsTask, error) {
	llmClient, err := llm.NewClient(llm.Config{
		Provider: appCfg.LLMProvider,
		Endpoint: appCfg.LLMEndpoint,
		Model:    appCfg.LLMModel,
		APIKey:   appCfg.LLMAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	contentFetcher := fetch.NewContentFetcher(fetchCfg, httpClient)
	for _, siteCfg := range sites {
		if siteCfg.Settings.Readability {
			contentFetcher.UseReadabilityFor(siteCfg.URL)
		}
	}

	classifier := classify.NewClassifier(contentFetcher, classify.NewLLMModel(llmClient), classify.Options{
		Limit: appCfg.Limit,
	})

	var source tasks.CandidateSource
	if linksTask != nil {
		source = func() ([]classify.Candidate, error) {
			return classify.CandidatesFromLinks(linksTask.Rows), nil
		}
	} else {
		input := appCfg.Input
		if input == "" {
			input = run.PartitionPath(appCfg.OutputDir, appCfg.RunStamp.OrNow().Date(), store.LinksFilename)
		}
		slog.Info("Reading candidates", "path", input)
		source = func() ([]classify.Candidate, error) {
			return store.ReadCandidates(input)
		}
	}

	return tasks.NewClassifyEventsTask(appCfg.RunStamp, source, classifier, writer), nil
}

func loadSites(sitesDir string) ([]*site.Config, error) {
	configCache := site.NewConfigCache(sitesDir)
	if err := configCache.Run(); err != nil {
		return nil, fmt.Errorf("failed to load site configurations: %w", err)
	}

	sites := configCache.GetEnabledConfigs()
	slog.Debug("Site configurations loaded", "dir", sitesDir, "total", configCache.GetConfigCount(), "enabled", len(sites))

	return sites, nil
}

// buildTargets puts homepages given on the command line before the
// configured sites. --all-domains applies to both.
func buildTargets(appCfg *cfg.Cfg, sites []*site.Config) []links.Target {
	targets := make([]links.Target, 0, len(appCfg.URLs)+len(sites))

	for _, homepage := range appCfg.URLs {
		targets = append(targets, links.Target{
			URL:            homepage,
			KeepSameDomain: appCfg.KeepSameDomain,
			Denylist:       links.DefaultDenylist(),
		})
	}

	for _, siteCfg := range sites {
		target := siteCfg.Target(links.DefaultDenylist())
		target.KeepSameDomain = target.KeepSameDomain && appCfg.KeepSameDomain
		targets = append(targets, target)
	}

	return targets
}

func openLedger(path string) (database.RunRepository, func(), error) {
	db, err := database.NewConnection(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run ledger: %w", err)
	}

	return database.NewRunRepository(db), func() { db.Close() }, nil
}

func showRuns(appCfg *cfg.Cfg) error {
	runRepo, closeLedger, err := openLedger(appCfg.LedgerPath)
	if err != nil {
		return err
	}
	defer closeLedger()

	runs, err := runRepo.ListRuns(appCfg.Limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Started", "Stage", "Run Date", "Status", "Rows", "Duration", "Output", "Error"})

	for _, r := range runs {
		duration := "-"
		if r.FinishedAt != nil {
			duration = r.Duration().Round(time.Millisecond).String()
		}
		t.AppendRow(table.Row{
			r.StartedAt.Local().Format(time.DateTime),
			r.TaskType,
			r.RunDate,
			r.Status,
			r.RowCount,
			duration,
			r.OutputPath,
			r.Error,
		})
	}

	t.Render()
	return nil
}

func serve(ctx context.Context, appCfg *cfg.Cfg) error {
	runRepo, closeLedger, err := openLedger(appCfg.LedgerPath)
	if err != nil {
		return err
	}
	defer closeLedger()

	handler := api.NewHandler(runRepo, store.ReadRows, appCfg.Version)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	slog.Info("HTTP server stopped")
	return nil
}
