package fetcher

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cookielens/backend/internal/domain"
	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a policy page we read. Real policies are
// well under 2 MB of HTML; anything bigger is not a policy page.
const maxBodyBytes = 2 << 20

// chromeTags are removed wholesale before text extraction; they carry page
// chrome and code, never policy prose.
var chromeTags = []string{"script", "style", "noscript", "nav", "footer", "header", "aside"}

// Client fetches privacy policy pages and reduces them to plain text.
// Outbound requests are rate limited so a burst of analyze calls cannot
// hammer the target site.
type Client struct {
	httpClient  *http.Client
	userAgent   string
	rateLimiter *rate.Limiter
}

// NewClient creates a new policy fetcher
func NewClient(userAgent string, timeout time.Duration) *Client {
	if userAgent == "" {
		userAgent = "CookieLens/1.0"
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	// One request per second sustained, small burst for link pairs
	limiter := rate.NewLimiter(rate.Limit(1), 3)

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent:   userAgent,
		rateLimiter: limiter,
	}
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailure, err)
	}

	return resp, nil
}

// FetchPolicyText downloads a policy page and returns its main-content text,
// stripped of scripts, styling and navigation chrome.
func (c *Client) FetchPolicyText(ctx context.Context, policyURL string) (string, error) {
	log.Printf("[FETCH] FetchPolicyText called with url: %q", policyURL)

	// Retry up to 3 times for transient failures
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			log.Printf("[FETCH] Rate limiter error: %v", err)
			return "", fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, policyURL)
		if err != nil {
			log.Printf("[FETCH] Request error (attempt %d): %v", attempt, err)
			lastErr = err
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()

		// Retry on non-OK status except 404, which is terminal
		if resp.StatusCode != http.StatusOK {
			log.Printf("[FETCH] HTTP error (attempt %d) - Status: %d, URL: %s", attempt, resp.StatusCode, policyURL)
			if resp.StatusCode == http.StatusNotFound {
				return "", domain.ErrPolicyNotFound
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrFetchFailure, resp.StatusCode)
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		text, err := ExtractText(string(body))
		if err != nil {
			log.Printf("[FETCH] HTML parse error: %v", err)
			return "", fmt.Errorf("failed to parse policy page: %w", err)
		}

		log.Printf("[FETCH] Extracted %d bytes of policy text from %q", len(text), policyURL)
		return text, nil
	}

	log.Printf("[FETCH] All retries failed for url: %q", policyURL)
	return "", lastErr
}

// ExtractText reduces a policy page's HTML to whitespace-normalized body
// text. Boilerplate containers are dropped first so menus and cookie widgets
// don't leak into the scored text.
func ExtractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find(strings.Join(chromeTags, ", ")).Remove()

	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		// Fragment without a body element; fall back to the whole document
		text = doc.Text()
	}

	return strings.Join(strings.Fields(text), " "), nil
}
