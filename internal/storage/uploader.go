// Package storage persists raw case-file bytes to durable object storage.
//
// Writes try the primary S3-compatible store first, fall back to the
// Supabase storage API, and in development only synthesize a data URL so
// local work never hard-fails on missing credentials.
package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/caseflow/casepipe/internal/common"
)

// Location is where an uploaded object can be retrieved from.
type Location struct {
	URL      string
	Pathname string
}

// ObjectStore is one backing object-storage provider.
type ObjectStore interface {
	// Put writes data under pathname and returns a retrievable URL.
	Put(ctx context.Context, pathname string, data []byte, contentType string) (string, error)
}

// Uploader is what the ingestion coordinator depends on.
type Uploader interface {
	Upload(ctx context.Context, userID, filename string, data []byte, contentType string) (Location, error)
}

// Chain tries each configured backend in order. A nil backend means
// "unconfigured" and is skipped; a write error on one backend escalates to
// the next rather than failing the upload.
type Chain struct {
	primary   ObjectStore
	secondary ObjectStore
	devMode   bool
	now       func() time.Time
	logger    *slog.Logger
}

func NewChain(primary, secondary ObjectStore, devMode bool, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		primary:   primary,
		secondary: secondary,
		devMode:   devMode,
		now:       time.Now,
		logger:    logger,
	}
}

func (c *Chain) Upload(ctx context.Context, userID, filename string, data []byte, contentType string) (Location, error) {
	pathname := BuildPathname(userID, filename, c.now())

	var lastErr error
	if c.primary != nil {
		url, err := c.primary.Put(ctx, pathname, data, contentType)
		if err == nil {
			return Location{URL: url, Pathname: pathname}, nil
		}
		lastErr = err
		c.logger.Warn("primary storage write failed, falling back", "pathname", pathname, "error", err)
	}

	if c.secondary != nil {
		url, err := c.secondary.Put(ctx, pathname, data, contentType)
		if err == nil {
			return Location{URL: url, Pathname: pathname}, nil
		}
		lastErr = err
		c.logger.Warn("secondary storage write failed", "pathname", pathname, "error", err)
	}

	if c.devMode {
		c.logger.Info("no storage backend available, synthesizing data url", "pathname", pathname)
		url := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
		return Location{URL: url, Pathname: pathname}, nil
	}

	// A configured backend that failed to write is a dependency failure,
	// not a configuration problem.
	if lastErr != nil {
		return Location{}, common.UpstreamErrorf("all storage backends failed: %v", lastErr)
	}

	return Location{}, common.ConfigError(
		"no object storage backend is configured: set STORAGE_ENDPOINT/STORAGE_ACCESS_KEY/STORAGE_SECRET_KEY " +
			"or SUPABASE_URL/SUPABASE_SERVICE_KEY, or run with APP_ENV=development")
}
