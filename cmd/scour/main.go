package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scourhq/scour/internal/ai"
	"github.com/scourhq/scour/internal/config"
	"github.com/scourhq/scour/internal/crawler"
	"github.com/scourhq/scour/internal/extractor"
	"github.com/scourhq/scour/internal/fetcher"
	"github.com/scourhq/scour/internal/search"
	"github.com/scourhq/scour/internal/store"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scour",
		Short: "Scour — adaptive query-driven web crawler",
		Long: `Scour crawls the web outward from search-engine seeds, keeping only
pages relevant to your question, and answers queries from the ranked
content it has collected.

Features:
  • Adaptive breadth-first crawling with per-depth relevance thresholds
  • Heuristic plus TF-IDF ranking over collected content
  • Seed discovery through Bing and DuckDuckGo
  • Content-hash deduplication and persistent crawl state
  • Optional LLM query expansion, answer synthesis, and evaluation
  • REST API for programmatic access`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Scour %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Crawler:\n")
			fmt.Printf("  Max Depth:           %d\n", cfg.Crawler.MaxDepth)
			fmt.Printf("  Max Workers:         %d\n", cfg.Crawler.MaxWorkers)
			fmt.Printf("  Batch Size:          %d\n", cfg.Crawler.BatchSize)
			fmt.Printf("  Num Results:         %d\n", cfg.Crawler.NumResults)
			fmt.Printf("  Seed URLs:           %d\n", cfg.Crawler.NumSeedURLs)
			fmt.Printf("  Relevance Threshold: %.2f (floor %.2f, step %.2f)\n",
				cfg.Crawler.BaseRelevanceThreshold, cfg.Crawler.MinRelevanceThreshold, cfg.Crawler.DepthThresholdStep)
			fmt.Printf("  Score Blend:         %.2f heuristic / %.2f cosine\n",
				cfg.Crawler.HeuristicWeight, cfg.Crawler.CosineWeight)
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Type:                %s\n", cfg.Fetcher.Type)
			fmt.Printf("  Request Timeout:     %s\n", cfg.Fetcher.RequestTimeout)
			fmt.Printf("  Max Body Size:       %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Printf("\nStore:\n")
			fmt.Printf("  State Dir:           %s\n", cfg.Store.StateDir)
			fmt.Printf("  Mongo Archive:       %v\n", cfg.Store.MongoURI != "")
			fmt.Printf("\nSearch:\n")
			fmt.Printf("  Engines:             %s\n", strings.Join(cfg.Search.Engines, ", "))
			fmt.Printf("\nLLM:\n")
			fmt.Printf("  Enabled:             %v\n", cfg.LLM.Enabled)
			fmt.Printf("  Provider:            %s\n", cfg.LLM.Provider)
			fmt.Printf("  Model:               %s\n", cfg.LLM.Model)
			fmt.Printf("\nAPI:\n")
			fmt.Printf("  Addr:                %s\n", cfg.API.Addr)
			return nil
		},
	}
}

// setupLogger creates a structured logger from the logging config, with
// the --verbose flag forcing debug level.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.Logging.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// buildOrchestrator assembles the full crawl stack from configuration.
// The returned cleanup function releases the fetcher and any archive
// connection.
func buildOrchestrator(cfg *config.Config, logger *slog.Logger) (*crawler.Orchestrator, func(), error) {
	var fetch crawler.Fetcher
	var closeFetcher func() error
	switch cfg.Fetcher.Type {
	case "browser":
		bf, err := fetcher.NewBrowserFetcher(cfg, logger, fetcher.WithStealth())
		if err != nil {
			return nil, nil, fmt.Errorf("create browser fetcher: %w", err)
		}
		fetch, closeFetcher = bf, bf.Close
	default:
		hf := fetcher.NewHTTPFetcher(cfg, logger)
		fetch, closeFetcher = hf, hf.Close
	}

	pipeline := crawler.NewPipeline(fetch, extractor.New(logger), cfg.Crawler.MinPageWords, logger)

	opts := []crawler.OrchestratorOption{
		crawler.WithSeedProvider(search.NewProvider(cfg, logger)),
		crawler.WithSnapshotter(store.NewSnapshotter(cfg.Store.StateDir)),
	}

	var closeArchive func() error
	if cfg.Store.MongoURI != "" {
		archive, err := store.NewMongoArchive(cfg.Store.MongoURI, cfg.Store.MongoDatabase, cfg.Store.MongoCollection, logger)
		if err != nil {
			logger.Warn("mongo archive unavailable, continuing without it", "error", err)
		} else {
			opts = append(opts, crawler.WithArchiver(archive))
			closeArchive = archive.Close
		}
	}

	if cfg.LLM.Enabled {
		llm := ai.NewClient(&cfg.LLM, logger)
		opts = append(opts, crawler.WithLLM(
			ai.NewQueryEnricher(llm, cfg.LLM.ExpansionKeywords, logger),
			ai.NewAnswerSynthesizer(llm, logger),
			ai.NewJudge(llm, logger),
		))
	}

	o := crawler.NewOrchestrator(cfg, store.New(), pipeline, logger, opts...)
	cleanup := func() {
		if closeFetcher != nil {
			if err := closeFetcher(); err != nil {
				logger.Warn("fetcher close failed", "error", err)
			}
		}
		if closeArchive != nil {
			if err := closeArchive(); err != nil {
				logger.Warn("archive close failed", "error", err)
			}
		}
	}
	return o, cleanup, nil
}
