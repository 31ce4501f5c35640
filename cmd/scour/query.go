package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scourhq/scour/internal/config"
	"github.com/scourhq/scour/internal/types"
)

var (
	queryURLs       []string
	queryStrict     bool
	queryForceCrawl bool
	queryNumResults int
	queryMaxDepth   int
	queryNoLLM      bool
)

// queryCmd creates the "query" subcommand.
func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [prompt]",
		Short: "Crawl the web to answer a question",
		Long: "Crawl outward from search-engine seeds (or the given URLs), collect\n" +
			"relevant content, and print the ranked results as JSON.",
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().StringSliceVarP(&queryURLs, "url", "u", nil, "seed URL (repeatable)")
	cmd.Flags().BoolVar(&queryStrict, "strict", false, "crawl only the given URLs, skip search engines")
	cmd.Flags().BoolVar(&queryForceCrawl, "force-crawl", false, "crawl even when cached content already answers the query")
	cmd.Flags().IntVarP(&queryNumResults, "num-results", "n", 0, "number of results to return (0 = config default)")
	cmd.Flags().IntVarP(&queryMaxDepth, "depth", "d", -1, "maximum crawl depth (-1 = config default)")
	cmd.Flags().BoolVar(&queryNoLLM, "no-llm", false, "skip LLM answer synthesis even when configured")

	return cmd
}

// runQuery executes the query command.
func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if queryNoLLM {
		cfg.LLM.Enabled = false
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := setupLogger(cfg)

	if queryStrict && len(queryURLs) == 0 {
		return fmt.Errorf("--strict requires at least one --url")
	}

	orch, cleanup, err := buildOrchestrator(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	req := types.CrawlRequest{
		Prompt:     args[0],
		URLs:       queryURLs,
		Strict:     queryStrict,
		ForceCrawl: queryForceCrawl,
		NumResults: queryNumResults,
		UseLLM:     cfg.LLM.Enabled,
	}
	if queryMaxDepth >= 0 {
		req.MaxDepth = &queryMaxDepth
	}

	resp := orch.CrawlAndQuery(ctx, req)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if resp.Status == types.StatusError {
		return fmt.Errorf("query failed: %v", resp.Errors)
	}
	return nil
}
