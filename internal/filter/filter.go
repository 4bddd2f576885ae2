// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter implements the topical relevance policy for posts.
// See docs/ARCHITECTURE.md § Filtering.
//
// The policy is two-tier: posts linking to arXiv are kept only when at
// least one linked paper classifies into the allowed category set; posts
// without arXiv links fall back to a keyword match on the text, which
// recovers posts that discuss published venues without preprint links.
package filter

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/amitness/paperfeed/internal/arxiv"
	"github.com/amitness/paperfeed/pkg/types"
)

// arxivHost is the bibliographic-service domain qualifying links carry.
const arxivHost = "arxiv.org"

// Classifier resolves an arXiv identifier to a category verdict.
// *arxiv.Classifier implements it; tests substitute fakes.
type Classifier interface {
	Classify(ctx context.Context, id string) types.Verdict
}

// Filter decides per post whether it passes the relevance policy.
// It is safe for concurrent use as long as the classifier is.
type Filter struct {
	denied     []string
	keywords   []string
	classifier Classifier
	logger     *slog.Logger
}

// New builds a Filter from the policy settings.
func New(cfg types.FilterConfig, classifier Classifier, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{
		denied:     cfg.DeniedAuthors,
		keywords:   cfg.Keywords,
		classifier: classifier,
		logger:     logger,
	}
}

// Passes reports whether post survives the policy. Order matters: the
// cheap deny-list check always runs first, then arXiv-link classification
// (OR across links, unknown counts as non-passing), then the keyword
// fallback for posts without qualifying links.
func (f *Filter) Passes(ctx context.Context, post types.Post) bool {
	for _, d := range f.denied {
		if strings.HasPrefix(post.Handle, d) {
			f.logger.Debug("rejected by deny-list", "handle", post.Handle, "uri", post.URI)
			return false
		}
	}

	if links := ArxivLinks(post.Links); len(links) > 0 {
		for _, link := range links {
			if f.classifier.Classify(ctx, arxiv.ExtractID(link)) == types.VerdictAllowed {
				return true
			}
		}
		return false
	}

	text := strings.ToLower(post.Text)
	for _, kw := range f.keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// ArxivLinks selects the links whose target host contains the arXiv
// domain. Unparseable links are skipped.
func ArxivLinks(links []string) []string {
	var out []string
	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil {
			continue
		}
		if strings.Contains(u.Host, arxivHost) {
			out = append(out, link)
		}
	}
	return out
}
