// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across components.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/amitness/paperfeed/pkg/types"
)

// NewClient returns an *http.Client that retries transient failures:
// connection errors, 5xx responses (except 501), and 429 responses,
// honoring Retry-After. Retry count and backoff bounds come from cfg;
// zero values fall back to retryablehttp defaults shaped for a CLI run.
//
// Intermediate failures are logged through logger at warn level so rate
// limiting stays visible without failing the run.
func NewClient(cfg types.HTTPConfig, logger *slog.Logger) *http.Client {
	if logger == nil {
		logger = slog.Default()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	if cfg.MaxRetries > 0 {
		rc.RetryMax = cfg.MaxRetries
	}
	if cfg.RetryWaitMin > 0 {
		rc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rc.RetryWaitMax = cfg.RetryWaitMax
	}
	rc.Logger = retryablehttp.LeveledLogger(leveledSlog{logger})

	client := rc.StandardClient()
	client.Timeout = cfg.Timeout
	return client
}

// leveledSlog adapts slog to retryablehttp's LeveledLogger.
type leveledSlog struct {
	inner *slog.Logger
}

// re-writes HTTP client ERROR to WARN level (because of retries)
func (l leveledSlog) Error(msg string, keysAndValues ...interface{}) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l leveledSlog) Warn(msg string, keysAndValues ...interface{}) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l leveledSlog) Info(msg string, keysAndValues ...interface{}) {
	l.inner.Info(msg, keysAndValues...)
}

// re-writes HTTP client DEBUG to INFO level (this is where retry is logged)
func (l leveledSlog) Debug(msg string, keysAndValues ...interface{}) {
	l.inner.Info(msg, keysAndValues...)
}
