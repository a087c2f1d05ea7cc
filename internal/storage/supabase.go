package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// SupabaseConfig configures the fallback storage provider.
type SupabaseConfig struct {
	URL        string // project base URL
	ServiceKey string // service role key; backend use only
	Bucket     string
}

// SupabaseStore writes through the Supabase storage HTTP API.
type SupabaseStore struct {
	http    *resty.Client
	baseURL string
	bucket  string
}

// NewSupabaseStore returns nil when the provider is unconfigured so the
// chain can skip it.
func NewSupabaseStore(cfg SupabaseConfig) *SupabaseStore {
	if cfg.URL == "" || cfg.ServiceKey == "" {
		return nil
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetAuthToken(cfg.ServiceKey)
	return &SupabaseStore{http: client, baseURL: strings.TrimRight(cfg.URL, "/"), bucket: cfg.Bucket}
}

func (s *SupabaseStore) Put(ctx context.Context, pathname string, data []byte, contentType string) (string, error) {
	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(data).
		Post(fmt.Sprintf("/storage/v1/object/%s/%s", s.bucket, pathname))
	if err != nil {
		return "", fmt.Errorf("supabase put %q: %w", pathname, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("supabase put %q: status %d: %s", pathname, resp.StatusCode(), resp.String())
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, pathname), nil
}
