// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"math"
	"testing"
	"time"

	"github.com/amitness/paperfeed/pkg/types"
)

var cfg = types.RankConfig{Gravity: 2.5, MaxAgeHours: 12}

func post(uri string, age time.Duration, likes int64, now time.Time) types.Post {
	return types.Post{URI: uri, IndexedAt: now.Add(-age), Likes: likes}
}

func TestScoreFormula(t *testing.T) {
	now := time.Now().UTC()
	p := types.Post{IndexedAt: now.Add(-1 * time.Hour), Likes: 4, Quotes: 3, Replies: 2, Reposts: 1}

	want := 10 / math.Pow(3, 2.5)
	got := Score(p, now, cfg)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Score() = %v, want %v", got, want)
	}
}

func TestScoreZeroAtCutoff(t *testing.T) {
	now := time.Now().UTC()
	tests := []struct {
		name string
		age  time.Duration
	}{
		{"exactly 12h", 12 * time.Hour},
		{"20h", 20 * time.Hour},
		{"days old", 90 * 24 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := post("at://p", tt.age, 100000, now)
			if got := Score(p, now, cfg); got != 0 {
				t.Errorf("Score(age=%v) = %v, want exactly 0", tt.age, got)
			}
		})
	}
}

func TestScoreFutureTimestampClampsToAgeZero(t *testing.T) {
	now := time.Now().UTC()
	// Indexed 3h in the future: without clamping, the decay base would
	// be negative and the score NaN.
	p := post("at://skewed", -3*time.Hour, 8, now)

	got := Score(p, now, cfg)
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("Score() = %v, want finite", got)
	}
	want := 8 / math.Pow(2, 2.5)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Score() = %v, want %v (age clamped to 0)", got, want)
	}
}

func TestScoreEqualInputsEqualScores(t *testing.T) {
	now := time.Now().UTC()
	a := post("at://a", time.Hour, 7, now)
	b := post("at://b", time.Hour, 7, now)
	if Score(a, now, cfg) != Score(b, now, cfg) {
		t.Error("identical age and engagement must give identical scores")
	}
}

func TestScoreMonotoneInEngagement(t *testing.T) {
	now := time.Now().UTC()
	prev := -1.0
	for likes := int64(0); likes <= 50; likes += 5 {
		s := Score(post("at://p", 3*time.Hour, likes, now), now, cfg)
		if s < prev {
			t.Fatalf("score decreased when likes rose to %d: %v < %v", likes, s, prev)
		}
		prev = s
	}
}

func TestScoreMonotoneInAge(t *testing.T) {
	now := time.Now().UTC()
	prev := math.Inf(1)
	for h := 0; h < 12; h++ {
		s := Score(post("at://p", time.Duration(h)*time.Hour, 10, now), now, cfg)
		if s > prev {
			t.Fatalf("score increased when age rose to %dh: %v > %v", h, s, prev)
		}
		prev = s
	}
}

func TestRankDescending(t *testing.T) {
	now := time.Now().UTC()
	posts := []types.Post{
		post("at://old", 20*time.Hour, 100, now),
		post("at://fresh", 30*time.Minute, 5, now),
		post("at://mid", 3*time.Hour, 50, now),
	}

	ranked := Rank(posts, now, cfg)

	if ranked[2].URI != "at://old" {
		t.Errorf("floored post should rank last, got order %v %v %v",
			ranked[0].URI, ranked[1].URI, ranked[2].URI)
	}
	for i := 0; i+1 < len(ranked); i++ {
		if Score(ranked[i], now, cfg) < Score(ranked[i+1], now, cfg) {
			t.Errorf("ranked[%d] scores below ranked[%d]", i, i+1)
		}
	}
}

func TestRankStableTies(t *testing.T) {
	now := time.Now().UTC()
	// All past the cutoff: everything ties at score 0.
	posts := []types.Post{
		post("at://first", 13*time.Hour, 1, now),
		post("at://second", 14*time.Hour, 99, now),
		post("at://third", 15*time.Hour, 0, now),
	}

	ranked := Rank(posts, now, cfg)

	want := []string{"at://first", "at://second", "at://third"}
	for i, w := range want {
		if ranked[i].URI != w {
			t.Errorf("ranked[%d] = %s, want %s (fetch order must survive ties)", i, ranked[i].URI, w)
		}
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	now := time.Now().UTC()
	posts := []types.Post{
		post("at://a", 10*time.Hour, 1, now),
		post("at://b", time.Hour, 100, now),
	}

	Rank(posts, now, cfg)

	if posts[0].URI != "at://a" || posts[1].URI != "at://b" {
		t.Error("Rank must not reorder its input slice")
	}
}
