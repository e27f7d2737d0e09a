package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/cookielens/backend/internal/domain"
)

// Client forwards accepted banner records to the collection endpoint as
// JSON. It implements domain.BannerSink.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// NewClient creates a new collector client
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		endpoint: endpoint,
		apiKey:   apiKey,
	}
}

// Submit posts one banner record. Any non-2xx response counts as a delivery
// failure so the caller can queue the record for retry.
func (c *Client) Submit(ctx context.Context, banner *domain.DetectedBanner) error {
	payload, err := json.Marshal(banner)
	if err != nil {
		return fmt.Errorf("failed to encode banner: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCollectorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("[COLLECT] Upload rejected - Status: %d, Body: %s", resp.StatusCode, string(body))
		return fmt.Errorf("%w: status %d", domain.ErrCollectorUnavailable, resp.StatusCode)
	}

	return nil
}
