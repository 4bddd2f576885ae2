// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank orders posts by a time-decayed engagement score.
// See docs/ARCHITECTURE.md § Ranking.
//
// The score is the Hacker News formula: total engagement divided by
// (hours + 2)^gravity. Posts at or past the age cutoff score exactly 0.
// The sort is stable, so equal scores keep fetch order.
package rank

import (
	"math"
	"sort"
	"time"

	"github.com/amitness/paperfeed/pkg/types"
)

// Score computes the decayed-engagement score of p at instant now.
// A future-dated timestamp (clock skew) is treated as age zero so the
// decay base never goes negative.
func Score(p types.Post, now time.Time, cfg types.RankConfig) float64 {
	hours := now.Sub(p.IndexedAt).Hours()
	if hours >= cfg.MaxAgeHours {
		return 0
	}
	if hours < 0 {
		hours = 0
	}
	return float64(p.Engagement()) / math.Pow(hours+2, cfg.Gravity)
}

// Rank returns posts in descending score order. The input slice is not
// mutated. Ties (including the score-0 floor) preserve input order.
func Rank(posts []types.Post, now time.Time, cfg types.RankConfig) []types.Post {
	type scored struct {
		post  types.Post
		score float64
	}
	items := make([]scored, len(posts))
	for i, p := range posts {
		items[i] = scored{post: p, score: Score(p, now, cfg)}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})

	ranked := make([]types.Post, len(items))
	for i, it := range items {
		ranked[i] = it.post
	}
	return ranked
}
