// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperfeed/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retry attempts for transient failures
	// (connection errors, 5xx, 429). Default 3.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RetryWaitMin and RetryWaitMax bound the exponential backoff between
	// retries. Defaults 1s and 10s.
	RetryWaitMin time.Duration `json:"retry_wait_min" yaml:"retry_wait_min"`
	RetryWaitMax time.Duration `json:"retry_wait_max" yaml:"retry_wait_max"`
}

// BlueskyConfig holds settings for the Bluesky feed source.
type BlueskyConfig struct {
	HTTPConfig `yaml:",inline"`

	// Host is the PDS/AppView endpoint (default "https://bsky.social").
	Host string `json:"host" yaml:"host"`

	// Handle is the account handle used to authenticate.
	Handle string `json:"handle" yaml:"handle"`

	// Password is the app password. Loaded from the environment or the
	// secrets directory, never from the config file.
	Password string `json:"-" yaml:"-"`

	// SourceFeed is the at:// URI of the feed posts are pulled from.
	SourceFeed string `json:"source_feed" yaml:"source_feed"`

	// PageSize is the number of posts requested per getFeed call (max 100).
	PageSize int64 `json:"page_size" yaml:"page_size"`

	// Pages is the number of getFeed pages fetched per run.
	Pages int `json:"pages" yaml:"pages"`
}

// ClassifyConfig holds settings for arXiv classification.
type ClassifyConfig struct {
	HTTPConfig `yaml:",inline"`

	// AllowedCategories lists the arXiv primary categories that count as
	// ML research. Reference: https://arxiv.org/category_taxonomy
	AllowedCategories []string `json:"allowed_categories" yaml:"allowed_categories"`

	// Workers bounds the number of concurrent classification lookups.
	Workers int `json:"workers" yaml:"workers"`
}

// FilterConfig holds the topical relevance policy settings.
type FilterConfig struct {
	// Enabled toggles the topical filter for the generate run. The filter
	// is built and tested regardless of this setting.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// DeniedAuthors lists handle prefixes (or exact handles) rejected
	// outright, e.g. known duplicate-aggregator bots.
	DeniedAuthors []string `json:"denied_authors" yaml:"denied_authors"`

	// Keywords is the case-insensitive fallback list matched against post
	// text when a post carries no arXiv links.
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// RankConfig holds the decayed-engagement ranking parameters.
type RankConfig struct {
	// Gravity is the decay exponent (default 2.5).
	Gravity float64 `json:"gravity" yaml:"gravity"`

	// MaxAgeHours floors posts at score 0 once their age reaches it
	// (default 12).
	MaxAgeHours float64 `json:"max_age_hours" yaml:"max_age_hours"`
}

// SiteConfig holds the static-site output settings.
type SiteConfig struct {
	// Domain is the hostname serving the generated documents
	// (e.g. "feed.example.com"). The DID document derives did:web from it.
	Domain string `json:"domain" yaml:"domain"`

	// ServiceDID is the DID announced by describeFeedGenerator. Defaults
	// to "did:web:<domain>" when empty.
	ServiceDID string `json:"service_did" yaml:"service_did"`

	// FeedURI is the at:// URI of the published feed-generator record.
	FeedURI string `json:"feed_uri" yaml:"feed_uri"`

	// OutputDir is the site root the documents are written under
	// (default "_site").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// Config groups all component configurations. It is built once at startup
// and passed down explicitly; nothing reads configuration ambiently.
type Config struct {
	Bluesky  BlueskyConfig  `json:"bluesky" yaml:"bluesky"`
	Classify ClassifyConfig `json:"classify" yaml:"classify"`
	Filter   FilterConfig   `json:"filter" yaml:"filter"`
	Rank     RankConfig     `json:"rank" yaml:"rank"`
	Site     SiteConfig     `json:"site" yaml:"site"`
}

// Validate reports the first missing required setting. It runs before any
// network call so configuration errors fail fast.
func (c Config) Validate() error {
	switch {
	case c.Bluesky.Handle == "":
		return fmt.Errorf("bluesky.handle is required")
	case c.Bluesky.Password == "":
		return fmt.Errorf("bluesky app password is required (set BLUESKY_APP_PASSWORD or .secrets/bluesky-app-password)")
	case c.Bluesky.SourceFeed == "":
		return fmt.Errorf("bluesky.source_feed is required")
	case c.Site.Domain == "":
		return fmt.Errorf("site.domain is required")
	case c.Site.FeedURI == "":
		return fmt.Errorf("site.feed_uri is required")
	case c.Rank.Gravity <= 0:
		return fmt.Errorf("rank.gravity must be positive, got %v", c.Rank.Gravity)
	case c.Rank.MaxAgeHours <= 0:
		return fmt.Errorf("rank.max_age_hours must be positive, got %v", c.Rank.MaxAgeHours)
	}
	return nil
}

// DID returns the effective service DID, defaulting to did:web over the
// configured domain.
func (s SiteConfig) DID() string {
	if s.ServiceDID != "" {
		return s.ServiceDID
	}
	return "did:web:" + s.Domain
}
