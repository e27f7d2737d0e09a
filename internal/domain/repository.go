package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// BannerSink receives accepted banner records. Delivery failure is the
// sink's concern; the detection core only reports it.
type BannerSink interface {
	Submit(ctx context.Context, banner *DetectedBanner) error
}

// PolicyFetcher retrieves the main-content plain text of a remote policy
// page, already stripped of navigation, scripts and styling.
type PolicyFetcher interface {
	FetchPolicyText(ctx context.Context, policyURL string) (string, error)
}
