// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package site

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amitness/paperfeed/pkg/types"
)

func siteCfg() types.SiteConfig {
	return types.SiteConfig{
		Domain:  "feed.example.com",
		FeedURI: "at://did:plc:abc/app.bsky.feed.generator/papers",
	}
}

func TestNewDIDDocument(t *testing.T) {
	doc := NewDIDDocument(siteCfg())

	assert.Equal(t, []string{"https://www.w3.org/ns/did/v1"}, doc.Context)
	assert.Equal(t, "did:web:feed.example.com", doc.ID)
	require.Len(t, doc.Service, 1)
	assert.Equal(t, "#bsky_fg", doc.Service[0].ID)
	assert.Equal(t, "BskyFeedGenerator", doc.Service[0].Type)
	assert.Equal(t, "https://feed.example.com", doc.Service[0].ServiceEndpoint)
}

func TestNewDescribeDocument(t *testing.T) {
	cfg := siteCfg()
	doc := NewDescribeDocument(cfg)

	assert.Equal(t, "application/json", doc.Encoding)
	assert.Equal(t, "did:web:feed.example.com", doc.Body.DID)
	assert.Equal(t, []FeedRef{{URI: cfg.FeedURI}}, doc.Body.Feeds)

	// An explicit service DID wins over the did:web default.
	cfg.ServiceDID = "did:plc:custom"
	assert.Equal(t, "did:plc:custom", NewDescribeDocument(cfg).Body.DID)
}

func TestSkeletonExactShape(t *testing.T) {
	doc := NewSkeletonDocument([]string{"uriA", "uriB"})

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"feed":[{"post":"uriA"},{"post":"uriB"}]}`, string(data))
}

func TestSkeletonEmptyIsArrayNotNull(t *testing.T) {
	data, err := json.Marshal(NewSkeletonDocument(nil))
	require.NoError(t, err)
	assert.Equal(t, `{"feed":[]}`, string(data))
}

func TestWriteAll(t *testing.T) {
	root := t.TempDir()
	w := Writer{Root: root}

	require.NoError(t, w.WriteAll(siteCfg(), []string{"at://p1", "at://p2"}))

	for _, rel := range []string{DIDPath, DescribePath, SkeletonPath} {
		if _, err := os.Stat(filepath.Join(root, rel)); err != nil {
			t.Errorf("missing output document %s: %v", rel, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(root, SkeletonPath))
	require.NoError(t, err)

	var doc SkeletonDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Feed, 2)
	assert.Equal(t, "at://p1", doc.Feed[0].Post)
	assert.Equal(t, "at://p2", doc.Feed[1].Post)
}

func TestWriteAllOverwrites(t *testing.T) {
	root := t.TempDir()
	w := Writer{Root: root}

	require.NoError(t, w.WriteAll(siteCfg(), []string{"at://old"}))
	require.NoError(t, w.WriteAll(siteCfg(), []string{"at://new"}))

	data, err := os.ReadFile(filepath.Join(root, SkeletonPath))
	require.NoError(t, err)

	var doc SkeletonDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Feed, 1)
	assert.Equal(t, "at://new", doc.Feed[0].Post)
}
