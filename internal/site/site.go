// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package site emits the static documents a Bluesky feed-generator host
// must serve: the DID document, the feed description, and the feed
// skeleton. Each is a pure function of configuration and the ranked URI
// list, fully regenerated every run.
// See docs/ARCHITECTURE.md § Output Documents.
package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amitness/paperfeed/pkg/types"
)

// Output paths, fixed relative to the site root by the serving protocol.
const (
	DIDPath      = ".well-known/did.json"
	DescribePath = "xrpc/app.bsky.feed.describeFeedGenerator"
	SkeletonPath = "xrpc/app.bsky.feed.getFeedSkeleton"
)

// DIDDocument is the did:web document served at /.well-known/did.json.
type DIDDocument struct {
	Context []string  `json:"@context"`
	ID      string    `json:"id"`
	Service []Service `json:"service"`
}

// Service is one service entry of the DID document.
type Service struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	ServiceEndpoint string `json:"serviceEndpoint"`
}

// DescribeDocument is the static describeFeedGenerator response.
type DescribeDocument struct {
	Encoding string       `json:"encoding"`
	Body     DescribeBody `json:"body"`
}

type DescribeBody struct {
	DID   string    `json:"did"`
	Feeds []FeedRef `json:"feeds"`
}

type FeedRef struct {
	URI string `json:"uri"`
}

// SkeletonDocument is the static getFeedSkeleton response: post URIs in
// ranked order.
type SkeletonDocument struct {
	Feed []SkeletonItem `json:"feed"`
}

type SkeletonItem struct {
	Post string `json:"post"`
}

// NewDIDDocument builds the DID document for the configured domain.
func NewDIDDocument(cfg types.SiteConfig) DIDDocument {
	return DIDDocument{
		Context: []string{"https://www.w3.org/ns/did/v1"},
		ID:      "did:web:" + cfg.Domain,
		Service: []Service{{
			ID:              "#bsky_fg",
			Type:            "BskyFeedGenerator",
			ServiceEndpoint: "https://" + cfg.Domain,
		}},
	}
}

// NewDescribeDocument builds the feed-description document.
func NewDescribeDocument(cfg types.SiteConfig) DescribeDocument {
	return DescribeDocument{
		Encoding: "application/json",
		Body: DescribeBody{
			DID:   cfg.DID(),
			Feeds: []FeedRef{{URI: cfg.FeedURI}},
		},
	}
}

// NewSkeletonDocument builds the feed skeleton from ranked post URIs,
// preserving order. An empty input yields an empty feed array, not null.
func NewSkeletonDocument(uris []string) SkeletonDocument {
	feed := make([]SkeletonItem, 0, len(uris))
	for _, uri := range uris {
		feed = append(feed, SkeletonItem{Post: uri})
	}
	return SkeletonDocument{Feed: feed}
}

// Writer writes the document set under a site root directory.
type Writer struct {
	Root string
}

// WriteAll regenerates all three documents for the given ranked URIs.
func (w Writer) WriteAll(cfg types.SiteConfig, uris []string) error {
	docs := []struct {
		path string
		data interface{}
	}{
		{DIDPath, NewDIDDocument(cfg)},
		{DescribePath, NewDescribeDocument(cfg)},
		{SkeletonPath, NewSkeletonDocument(uris)},
	}
	for _, doc := range docs {
		if err := w.writeJSON(doc.path, doc.data); err != nil {
			return err
		}
	}
	return nil
}

// writeJSON marshals v with 4-space indentation and overwrites the file
// whole, creating parent directories as needed.
func (w Writer) writeJSON(rel string, v interface{}) error {
	path := filepath.Join(w.Root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", rel, err)
	}

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", rel, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	return nil
}
