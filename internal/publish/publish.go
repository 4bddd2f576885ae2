// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish registers the feed generator with the network: it
// writes an app.bsky.feed.generator record pointing at the hosting
// service. One-shot; run it once per feed, then paste the printed URI
// into the site configuration.
// See docs/ARCHITECTURE.md § Registration.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/amitness/paperfeed/pkg/types"
)

// generatorCollection is the lexicon collection for feed-generator records.
const generatorCollection = "app.bsky.feed.generator"

// Metadata describes the feed record, loaded from a YAML file so the
// operator edits a document instead of source constants.
type Metadata struct {
	// RecordName is the record key that shows in feed URLs
	// (lowercase, no spaces, e.g. "arxiv-feed").
	RecordName string `yaml:"record_name"`

	// DisplayName is the feed's human-readable name.
	DisplayName string `yaml:"display_name"`

	// Description is shown on the feed's page. Optional.
	Description string `yaml:"description,omitempty"`

	// AvatarPath points at a local png/jpeg used as the feed avatar. Optional.
	AvatarPath string `yaml:"avatar_path,omitempty"`
}

// LoadMetadata reads and validates a Metadata YAML file.
func LoadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("reading feed metadata: %w", err)
	}
	var m Metadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Metadata{}, fmt.Errorf("parsing feed metadata %s: %w", path, err)
	}
	if m.RecordName == "" {
		return Metadata{}, fmt.Errorf("%s: record_name is required", path)
	}
	if m.DisplayName == "" {
		return Metadata{}, fmt.Errorf("%s: display_name is required", path)
	}
	return m, nil
}

// Record is the wire shape of an app.bsky.feed.generator record.
type Record struct {
	Type        string          `json:"$type"`
	DID         string          `json:"did"`
	DisplayName string          `json:"displayName"`
	Description string          `json:"description,omitempty"`
	Avatar      json.RawMessage `json:"avatar,omitempty"`
	CreatedAt   string          `json:"createdAt"`
}

// RepoClient is the slice of the XRPC client publishing needs.
// *bluesky.Client implements it.
type RepoClient interface {
	UploadBlob(ctx context.Context, data []byte, mimeType string) (json.RawMessage, error)
	PutRecord(ctx context.Context, collection, rkey string, record interface{}) (string, error)
}

// Publisher performs the one-shot registration.
type Publisher struct {
	Client RepoClient
	Site   types.SiteConfig

	// Now supplies the record's creation time; tests pin it.
	Now func() time.Time
}

// Publish uploads the avatar (when configured), writes the record, and
// returns the feed URI. The caller must already hold a session.
func (p Publisher) Publish(ctx context.Context, meta Metadata, w io.Writer) (string, error) {
	now := time.Now().UTC()
	if p.Now != nil {
		now = p.Now()
	}

	var avatar json.RawMessage
	if meta.AvatarPath != "" {
		data, err := os.ReadFile(meta.AvatarPath)
		if err != nil {
			return "", fmt.Errorf("reading avatar: %w", err)
		}
		avatar, err = p.Client.UploadBlob(ctx, data, avatarMIME(meta.AvatarPath))
		if err != nil {
			return "", err
		}
		fmt.Fprintf(w, "uploaded avatar %s (%d bytes)\n", meta.AvatarPath, len(data))
	}

	record := Record{
		Type:        generatorCollection,
		DID:         p.Site.DID(),
		DisplayName: meta.DisplayName,
		Description: meta.Description,
		Avatar:      avatar,
		CreatedAt:   now.Format(time.RFC3339),
	}

	uri, err := p.Client.PutRecord(ctx, generatorCollection, meta.RecordName, record)
	if err != nil {
		return "", err
	}

	fmt.Fprintln(w, "Successfully published!")
	fmt.Fprintf(w, "Feed URI (set site.feed_uri in paperfeed.yaml): %s\n", uri)
	return uri, nil
}

// avatarMIME guesses the blob MIME type from the file extension.
func avatarMIME(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}
