// Command autoposter polls repository activity on a schedule, turns
// notable signals into draft posts, and serves the operator review API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/api"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/classify"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/config"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/enrich"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/generate"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/github"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/image"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/ledger"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/logging"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/pipeline"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/prompt"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/publish"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/source"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	once := flag.Bool("once", false, "run a single pipeline pass and exit")
	flag.Parse()

	if err := run(*configPath, *once); err != nil {
		fmt.Fprintf(os.Stderr, "autoposter: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, once bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	runID := time.Now().UTC().Format("20060102-150405")
	logger, err := logging.NewLogger(cfg.Logging.Dir, runID)
	if err != nil {
		return err
	}
	defer logger.Close()
	if cfg.Logging.Level != "" {
		logger.SetMinLevel(logging.Level(cfg.Logging.Level))
	}

	if dir := filepath.Dir(cfg.Engine.StatePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating state directory: %w", err)
		}
	}
	led := ledger.Load(cfg.Engine.StatePath, logger)

	ghClient := github.NewClient(cfg.GitHub.BaseURL, cfg.GitHub.Token, cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.Timeout)
	liClient := publish.NewLinkedInClient("", cfg.LinkedIn.AccessToken, cfg.LinkedIn.AuthorURN, cfg.LinkedIn.Timeout)

	checkers := []pipeline.Checker{ghClient, liClient}

	var primary generate.TextGenerator
	if cfg.Providers.OpenAI.APIKey != "" {
		openaiGen := generate.NewOpenAIGenerator(cfg.Providers.OpenAI.BaseURL, cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.Model, cfg.Generation.Timeout)
		primary = openaiGen
		checkers = append(checkers, openaiGen)
	} else {
		logger.Warn(logging.CategoryGenerate, "no_api_key", "no text provider key, all posts use the fallback template", nil)
	}

	var searchers []image.Searcher
	if cfg.Image.PexelsAPIKey != "" {
		searchers = append(searchers, image.NewPexelsSearcher("", cfg.Image.PexelsAPIKey, cfg.Image.Timeout))
	}
	if cfg.Image.UnsplashAPIKey != "" {
		searchers = append(searchers, image.NewUnsplashSearcher("", cfg.Image.UnsplashAPIKey, cfg.Image.Timeout))
	}

	queue := publish.NewQueue()
	publisher := publish.NewPublisher(liClient, queue, cfg.LinkedIn.AutoPublish, cfg.Generation.MaxChars, cfg.LinkedIn.Timeout, logger)

	pacing := rate.Limit(0)
	if cfg.Generation.LookupPacing > 0 {
		pacing = rate.Every(cfg.Generation.LookupPacing)
	}

	engine := pipeline.NewEngine(pipeline.Options{
		Source:     source.NewGitHubSource(ghClient, led, logger, cfg.GitHub.CommitLimit, cfg.GitHub.IssueLimit),
		Classifier: classify.NewClassifier(logger),
		Enricher:   enrich.NewEnricher(enrich.NewWikipediaLookup("", cfg.GitHub.Timeout), pacing, logger),
		Normalizer: enrich.NewNormalizer(logger),
		Builder: prompt.NewBuilder(prompt.Policy{
			MinWords:    cfg.Generation.MinWords,
			MaxWords:    cfg.Generation.MaxWords,
			MinHashtags: cfg.Generation.MinHashtags,
			MaxHashtags: cfg.Generation.MaxHashtags,
			Tone:        cfg.Generation.Tone,
		}),
		Generator: generate.NewGenerator(primary, cfg.Generation.MinInterval, cfg.Generation.Timeout, logger),
		Images:    image.NewFinder(searchers, logger),
		Publisher: publisher,
		Queue:     queue,
		Ledger:    led,
		Logger:    logger,
		Threshold: cfg.Engine.ConfidenceThreshold,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if once {
		_, err := engine.Run(ctx)
		return err
	}

	var httpServer *http.Server
	if cfg.API.Enabled {
		apiServer := api.NewServer(queue, publisher, checkers, led, logger)
		httpServer = &http.Server{
			Addr:              cfg.API.Bind,
			Handler:           apiServer.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info(logging.CategoryAPI, "listening", "operator API listening", map[string]any{"bind": cfg.API.Bind})
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(logging.CategoryAPI, "serve_failed", "operator API stopped", map[string]any{"error": err.Error()})
			}
		}()
	}

	logger.Info(logging.CategoryPipeline, "started", "engine started", map[string]any{
		"poll_interval": cfg.Engine.PollInterval.String(),
		"repo":          cfg.GitHub.Owner + "/" + cfg.GitHub.Repo,
		"auto_publish":  cfg.LinkedIn.AutoPublish,
	})

	if cfg.Engine.RunOnStart {
		if _, err := engine.Run(ctx); err != nil {
			logger.Error(logging.CategoryPipeline, "run_failed", "pipeline run failed", map[string]any{"error": err.Error()})
		}
	}

	ticker := time.NewTicker(cfg.Engine.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(logging.CategoryPipeline, "stopping", "shutdown signal received", nil)
			if httpServer != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					logger.Warn(logging.CategoryAPI, "shutdown_failed", "operator API shutdown incomplete", map[string]any{"error": err.Error()})
				}
			}
			return nil
		case <-ticker.C:
			if _, err := engine.Run(ctx); err != nil {
				logger.Error(logging.CategoryPipeline, "run_failed", "pipeline run failed", map[string]any{"error": err.Error()})
			}
		}
	}
}
