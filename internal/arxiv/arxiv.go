// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv extracts arXiv identifiers from links and classifies them
// against the arXiv API's primary category.
// See docs/ARCHITECTURE.md § Classification.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/amitness/paperfeed/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ExtractID derives a normalized arXiv identifier from a link
// (e.g. "https://arxiv.org/abs/2301.07041v2" → "2301.07041").
//
// It takes the last path segment, strips fragment and query string, a
// trailing ".pdf" extension, and a trailing version suffix. Extraction is
// idempotent and never fails: malformed input yields an identifier the
// classifier simply won't resolve.
func ExtractID(rawURL string) string {
	id := rawURL
	if idx := strings.LastIndex(id, "/"); idx >= 0 {
		id = id[idx+1:]
	}
	if idx := strings.IndexByte(id, '#'); idx >= 0 {
		id = id[:idx]
	}
	if idx := strings.IndexByte(id, '?'); idx >= 0 {
		id = id[:idx]
	}
	id = strings.TrimSuffix(id, ".pdf")

	// Strip version suffix (e.g. "v1", "v12") only when digits follow.
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

// Classifier decides whether an arXiv identifier belongs to the allowed
// category set. Lookup failures degrade to VerdictUnknown and are logged,
// never propagated, so a batch of classifications cannot abort as a whole.
type Classifier struct {
	client    *http.Client
	allowed   []string
	userAgent string
	logger    *slog.Logger
}

// NewClassifier builds a Classifier from the classification settings.
// client should already carry timeout and retry behavior.
func NewClassifier(client *http.Client, cfg types.ClassifyConfig, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		client:    client,
		allowed:   cfg.AllowedCategories,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// Classify looks up id and returns the three-valued verdict.
func (c *Classifier) Classify(ctx context.Context, id string) types.Verdict {
	term, err := c.primaryCategory(ctx, id)
	if err != nil {
		c.logger.Warn("arxiv lookup failed", "arxiv_id", id, "err", err)
		return types.VerdictUnknown
	}
	if term == "" {
		c.logger.Warn("arxiv id missing from index", "arxiv_id", id)
		return types.VerdictUnknown
	}
	if slices.Contains(c.allowed, term) {
		return types.VerdictAllowed
	}
	return types.VerdictOther
}

// primaryCategory queries the arXiv API restricted to id and returns the
// first entry's primary category term, or "" when the id is not indexed.
func (c *Classifier) primaryCategory(ctx context.Context, id string) (string, error) {
	u := fmt.Sprintf("%s?id_list=%s&max_results=1", arxivAPIBase, url.QueryEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return "", fmt.Errorf("parsing arXiv response: %w", err)
	}
	if len(feed.Entries) == 0 {
		return "", nil
	}
	return strings.TrimSpace(feed.Entries[0].PrimaryCategory.Term), nil
}

// arXiv Atom feed XML structures.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID              string       `xml:"id"`
	PrimaryCategory atomCategory `xml:"primary_category"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}
