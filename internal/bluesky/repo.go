// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// UploadBlob stores data on the authenticated account's repo and returns
// the blob reference verbatim, for embedding into records.
func (c *Client) UploadBlob(ctx context.Context, data []byte, mimeType string) (json.RawMessage, error) {
	var out struct {
		Blob json.RawMessage `json:"blob"`
	}
	if err := c.do(ctx, procedure, "com.atproto.repo.uploadBlob", mimeType, nil, bytes.NewReader(data), &out); err != nil {
		return nil, fmt.Errorf("uploading blob: %w", err)
	}
	return out.Blob, nil
}

// PutRecord writes record under collection/rkey in the authenticated
// account's repo and returns the resulting at:// URI.
func (c *Client) PutRecord(ctx context.Context, collection, rkey string, record interface{}) (string, error) {
	if c.session == nil {
		return "", fmt.Errorf("putRecord requires a session; call Login first")
	}
	body := map[string]interface{}{
		"repo":       c.session.Did,
		"collection": collection,
		"rkey":       rkey,
		"record":     record,
	}
	var out struct {
		URI string `json:"uri"`
		Cid string `json:"cid"`
	}
	if err := c.do(ctx, procedure, "com.atproto.repo.putRecord", "application/json", nil, body, &out); err != nil {
		return "", fmt.Errorf("writing %s record: %w", collection, err)
	}
	return out.URI, nil
}
