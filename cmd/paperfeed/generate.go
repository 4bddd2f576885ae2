// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/amitness/paperfeed/internal/arxiv"
	"github.com/amitness/paperfeed/internal/bluesky"
	"github.com/amitness/paperfeed/internal/feed"
	"github.com/amitness/paperfeed/internal/filter"
	"github.com/amitness/paperfeed/internal/httputil"
	"github.com/amitness/paperfeed/internal/site"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Fetch, filter, rank, and write the feed documents",
	Long: `Generate runs one batch: it logs into Bluesky, pages through the
configured source feed, optionally applies the topical filter (arXiv
primary-category classification with a venue-keyword fallback), ranks posts
by time-decayed engagement, and regenerates the DID document, the feed
description, and the feed skeleton under the site output directory.

The process holds no state between runs; schedule it externally (e.g. cron
or CI) and serve the output directory statically.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("output-dir", "", "site output directory (default from config)")
	generateCmd.Flags().Bool("filter", false, "override filter.enabled for this run")
	generateCmd.Flags().Int("workers", 0, "concurrent classification lookups (default from config)")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if cmd.Flags().Changed("filter") {
		cfg.Filter.Enabled, _ = cmd.Flags().GetBool("filter")
	}
	if v, _ := cmd.Flags().GetString("output-dir"); v != "" {
		cfg.Site.OutputDir = v
	}
	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		cfg.Classify.Workers = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := cmd.Context()

	client := bluesky.NewClient(httputil.NewClient(cfg.Bluesky.HTTPConfig, logger), cfg.Bluesky, logger)
	if err := client.Login(ctx); err != nil {
		return err
	}

	classifier := arxiv.NewClassifier(httputil.NewClient(cfg.Classify.HTTPConfig, logger), cfg.Classify, logger)

	g := &feed.Generator{
		Source: client,
		Filter: filter.New(cfg.Filter, classifier, logger),
		Writer: site.Writer{Root: cfg.Site.OutputDir},
		Config: cfg,
		Logger: logger,
	}
	_, err := g.Run(ctx, os.Stdout)
	return err
}
