// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paperfeed pipeline.
// See docs/ARCHITECTURE.md § Data Structures.
package types

import "time"

// Post is an immutable snapshot of a Bluesky post as fetched for one run.
// Posts are never mutated or persisted; they are evaluated and either make
// it into the emitted feed skeleton or are dropped.
type Post struct {
	// URI is the at:// record URI identifying the post.
	URI string `json:"uri"`

	// Handle is the author's handle (e.g. "alice.bsky.social").
	Handle string `json:"handle"`

	// IndexedAt is the instant the network indexed the post, in UTC.
	IndexedAt time.Time `json:"indexed_at"`

	// Engagement counters at fetch time.
	Likes   int64 `json:"likes"`
	Quotes  int64 `json:"quotes"`
	Replies int64 `json:"replies"`
	Reposts int64 `json:"reposts"`

	// Text is the post's record text.
	Text string `json:"text"`

	// Links holds the targets of rich-text link facets, in facet order.
	// Plain URL-looking substrings of Text do not appear here.
	Links []string `json:"links,omitempty"`
}

// Engagement returns the sum of all engagement counters.
func (p Post) Engagement() int64 {
	return p.Likes + p.Quotes + p.Replies + p.Reposts
}

// Verdict is the outcome of classifying one arXiv identifier. It is
// deliberately three-valued: a failed or empty lookup is VerdictUnknown,
// which callers must treat as not passing, never as allowed.
type Verdict int

const (
	// VerdictUnknown means the lookup failed or the identifier is missing
	// from the index. Never cached.
	VerdictUnknown Verdict = iota

	// VerdictAllowed means the paper's primary category is in the allow-list.
	VerdictAllowed

	// VerdictOther means the paper resolved to a category outside the allow-list.
	VerdictOther
)

func (v Verdict) String() string {
	switch v {
	case VerdictAllowed:
		return "allowed"
	case VerdictOther:
		return "other"
	default:
		return "unknown"
	}
}
