// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bluesky is a minimal atproto XRPC client covering the calls the
// feed generator needs: session login, feed fetching, blob upload, and
// record writes.
// See docs/ARCHITECTURE.md § Feed Source.
package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/amitness/paperfeed/pkg/types"
)

// DefaultHost is the public PDS entrypoint.
const DefaultHost = "https://bsky.social"

type requestType int

const (
	query requestType = iota
	procedure
)

// Error is an XRPC-level failure, carrying the HTTP status and the
// endpoint's error/message fields.
type Error struct {
	StatusCode int
	ErrStr     string `json:"error"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("XRPC ERROR %d: %s: %s", e.StatusCode, e.ErrStr, e.Message)
}

// Session holds the tokens returned by com.atproto.server.createSession.
type Session struct {
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt"`
	Handle     string `json:"handle"`
	Did        string `json:"did"`
}

// Client talks XRPC to one host. Configure it once, Login, then issue
// calls; it is not safe for concurrent mutation but read-only calls after
// login may run in parallel.
type Client struct {
	host       string
	http       *http.Client
	userAgent  string
	handle     string
	password   string
	sourceFeed string
	pageSize   int64
	pages      int
	session    *Session
	logger     *slog.Logger
}

// NewClient builds a Client from the feed-source settings. httpClient
// should already carry timeout and retry behavior.
func NewClient(httpClient *http.Client, cfg types.BlueskyConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	pages := cfg.Pages
	if pages <= 0 {
		pages = 1
	}
	return &Client{
		host:       host,
		http:       httpClient,
		userAgent:  cfg.UserAgent,
		handle:     cfg.Handle,
		password:   cfg.Password,
		sourceFeed: cfg.SourceFeed,
		pageSize:   pageSize,
		pages:      pages,
		logger:     logger,
	}
}

// Login authenticates with the configured handle and app password.
func (c *Client) Login(ctx context.Context) error {
	body := map[string]string{
		"identifier": c.handle,
		"password":   c.password,
	}
	var sess Session
	if err := c.do(ctx, procedure, "com.atproto.server.createSession", "application/json", nil, body, &sess); err != nil {
		return fmt.Errorf("logging in as %s: %w", c.handle, err)
	}
	c.session = &sess
	c.logger.Info("logged in", "handle", sess.Handle, "did", sess.Did)
	return nil
}

// DID returns the authenticated account's DID. Empty before Login.
func (c *Client) DID() string {
	if c.session == nil {
		return ""
	}
	return c.session.Did
}

// do issues one XRPC call. Queries become GETs with params, procedures
// become POSTs with a JSON (or raw io.Reader) body. Non-200 responses
// decode into *Error.
func (c *Client) do(ctx context.Context, kind requestType, method, inpenc string, params url.Values, bodyobj, out interface{}) error {
	var body io.Reader
	if bodyobj != nil {
		if r, ok := bodyobj.(io.Reader); ok {
			body = r
		} else {
			b, err := json.Marshal(bodyobj)
			if err != nil {
				return fmt.Errorf("encoding request body: %w", err)
			}
			body = bytes.NewReader(b)
		}
	}

	httpMethod := http.MethodGet
	if kind == procedure {
		httpMethod = http.MethodPost
	}

	uri := c.host + "/xrpc/" + method
	if len(params) > 0 {
		uri += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, httpMethod, uri, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if bodyobj != nil && inpenc != "" {
		req.Header.Set("Content-Type", inpenc)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.session != nil {
		req.Header.Set("Authorization", "Bearer "+c.session.AccessJwt)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		xe := &Error{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(xe); err != nil {
			return fmt.Errorf("%s returned HTTP %d", method, resp.StatusCode)
		}
		return xe
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding %s response: %w", method, err)
		}
	}
	return nil
}
