// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bluesky

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/amitness/paperfeed/pkg/types"
)

// linkFeatureType marks a rich-text facet feature carrying a link target.
const linkFeatureType = "app.bsky.richtext.facet#link"

// Wire shapes for app.bsky.feed.getFeed, mirroring the lexicon JSON.
type feedResponse struct {
	Cursor *string        `json:"cursor"`
	Feed   []feedViewPost `json:"feed"`
}

type feedViewPost struct {
	Post postView `json:"post"`
}

type postView struct {
	URI    string `json:"uri"`
	Author struct {
		Handle string `json:"handle"`
	} `json:"author"`
	Record      postRecord `json:"record"`
	IndexedAt   string     `json:"indexedAt"`
	LikeCount   *int64     `json:"likeCount"`
	QuoteCount  *int64     `json:"quoteCount"`
	ReplyCount  *int64     `json:"replyCount"`
	RepostCount *int64     `json:"repostCount"`
}

type postRecord struct {
	Text   string  `json:"text"`
	Facets []facet `json:"facets"`
}

type facet struct {
	Features []facetFeature `json:"features"`
}

type facetFeature struct {
	Type string `json:"$type"`
	URI  string `json:"uri"`
}

// FetchPosts pulls the configured number of pages from the source feed
// and returns them as immutable Post snapshots in feed order. Any page
// failing to fetch fails the whole call; a single post with a malformed
// indexed timestamp is dropped with an error log instead.
func (c *Client) FetchPosts(ctx context.Context) ([]types.Post, error) {
	var posts []types.Post
	cursor := ""

	for page := 0; page < c.pages; page++ {
		params := url.Values{}
		params.Set("feed", c.sourceFeed)
		params.Set("limit", strconv.FormatInt(c.pageSize, 10))
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var resp feedResponse
		if err := c.do(ctx, query, "app.bsky.feed.getFeed", "", params, nil, &resp); err != nil {
			return nil, fmt.Errorf("fetching feed page %d: %w", page+1, err)
		}

		for _, item := range resp.Feed {
			p, err := item.Post.toPost()
			if err != nil {
				c.logger.Error("dropping post", "uri", item.Post.URI, "err", err)
				continue
			}
			posts = append(posts, p)
		}

		if resp.Cursor == nil || *resp.Cursor == "" {
			break
		}
		cursor = *resp.Cursor
	}
	return posts, nil
}

// toPost converts the wire view into the pipeline's Post. The indexed
// timestamp must parse as timezone-aware RFC 3339; the ranker is never
// handed a post without a well-defined instant.
func (v postView) toPost() (types.Post, error) {
	indexedAt, err := time.Parse(time.RFC3339, v.IndexedAt)
	if err != nil {
		return types.Post{}, fmt.Errorf("parsing indexedAt %q: %w", v.IndexedAt, err)
	}

	var links []string
	for _, f := range v.Record.Facets {
		for _, feat := range f.Features {
			if feat.Type == linkFeatureType && feat.URI != "" {
				links = append(links, feat.URI)
			}
		}
	}

	return types.Post{
		URI:       v.URI,
		Handle:    v.Author.Handle,
		IndexedAt: indexedAt.UTC(),
		Likes:     count(v.LikeCount),
		Quotes:    count(v.QuoteCount),
		Replies:   count(v.ReplyCount),
		Reposts:   count(v.RepostCount),
		Text:      v.Record.Text,
		Links:     links,
	}, nil
}

func count(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}
