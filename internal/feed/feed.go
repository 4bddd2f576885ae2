// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feed runs the batch pipeline: fetch posts, apply the topical
// filter, rank, and write the protocol documents.
// See docs/ARCHITECTURE.md § Pipeline.
package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/amitness/paperfeed/internal/rank"
	"github.com/amitness/paperfeed/internal/site"
	"github.com/amitness/paperfeed/pkg/types"
)

const defaultWorkers = 8

// Source fetches the raw posts for one run. *bluesky.Client implements it.
type Source interface {
	FetchPosts(ctx context.Context) ([]types.Post, error)
}

// PostFilter decides per post whether it passes the relevance policy.
// *filter.Filter implements it.
type PostFilter interface {
	Passes(ctx context.Context, post types.Post) bool
}

// Stats summarizes one generate run.
type Stats struct {
	Fetched int
	Kept    int
}

// Generator wires the pipeline together. All collaborators are provided
// explicitly; a Generator holds no hidden state between runs.
type Generator struct {
	Source Source
	Filter PostFilter
	Writer site.Writer
	Config types.Config
	Logger *slog.Logger

	// Now supplies the ranking clock; tests pin it. Defaults to UTC now.
	Now func() time.Time
}

// Run executes one batch: a failed fetch aborts the run, everything
// downstream degrades per post. Progress is reported on w.
func (g *Generator) Run(ctx context.Context, w io.Writer) (Stats, error) {
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now().UTC()
	if g.Now != nil {
		now = g.Now()
	}

	posts, err := g.Source.FetchPosts(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("fetching posts: %w", err)
	}
	stats := Stats{Fetched: len(posts)}
	fmt.Fprintf(w, "fetched %d posts\n", len(posts))

	kept := posts
	if g.Config.Filter.Enabled && g.Filter != nil {
		kept = g.applyFilter(ctx, posts, logger)
		fmt.Fprintf(w, "filter kept %d of %d posts\n", len(kept), len(posts))
	}
	stats.Kept = len(kept)

	ranked := rank.Rank(kept, now, g.Config.Rank)
	uris := make([]string, len(ranked))
	for i, p := range ranked {
		uris[i] = p.URI
	}

	if err := g.Writer.WriteAll(g.Config.Site, uris); err != nil {
		return stats, fmt.Errorf("writing site documents: %w", err)
	}
	fmt.Fprintf(w, "wrote %d entries to %s\n", len(uris), g.Writer.Root)
	return stats, nil
}

// applyFilter evaluates the filter over posts on a bounded worker pool.
// Results recombine by original index, so completion order never affects
// the output. A panicking task drops only its own post.
func (g *Generator) applyFilter(ctx context.Context, posts []types.Post, logger *slog.Logger) []types.Post {
	workers := g.Config.Classify.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	keep := make([]bool, len(posts))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := range posts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("filter task panicked", "uri", posts[i].URI, "panic", r)
					keep[i] = false
				}
			}()
			keep[i] = g.Filter.Passes(ctx, posts[i])
		}(i)
	}
	wg.Wait()

	kept := make([]types.Post, 0, len(posts))
	for i, ok := range keep {
		if ok {
			kept = append(kept, posts[i])
		}
	}
	return kept
}
