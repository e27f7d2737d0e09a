package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cookielens/backend/config"
	"github.com/cookielens/backend/internal/domain"
	"github.com/cookielens/backend/internal/infrastructure/cache"
	"github.com/cookielens/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	exitCode := m.Run()

	os.Exit(exitCode)
}

// stubFetcher serves canned policy text without network access.
type stubFetcher struct {
	text string
	err  error
}

func (s *stubFetcher) FetchPolicyText(ctx context.Context, policyURL string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

// setupTestRouter creates a test router with real services. Banner records
// go nowhere (nil sink); policy pages come from the stub fetcher.
func setupTestRouter(fetcher *stubFetcher) *gin.Engine {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"chrome-extension://*", "http://localhost:3000"},
		},
		Cache: config.CacheConfig{
			Type: "memory",
		},
	}

	detector := usecase.NewDetectorService(nil, usecase.DetectorConfig{})
	analysis := usecase.NewAnalysisService(cache.NewMemoryCache(), fetcher, usecase.AnalysisServiceConfig{})

	handler := NewHandler(detector, analysis)
	return SetupRouter(cfg, handler)
}

func postJSON(router *gin.Engine, path, payload string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter(&stubFetcher{})

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "cookielens-backend" {
			t.Errorf("service = %v, want cookielens-backend", response["service"])
		}
		if _, ok := response["pendingSubmissions"]; !ok {
			t.Error("pendingSubmissions missing from health response")
		}
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter(&stubFetcher{})

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			req, _ := http.NewRequest(method, "/health", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

func TestDetectBannersEndpoint(t *testing.T) {
	bannerHTML := `<html><head></head><body><div class=\"cookie-banner notice\">We use cookies to improve your experience. Read our Cookie Policy. <a href=\"/cookie-policy\">Cookie Policy</a> <button id=\"accept-btn\">Accept</button></div></body></html>`

	validSnapshot := func() string {
		nodes := `{"style":{"position":"fixed","zIndex":"9999","display":"block","visibility":"visible","opacity":"1"},"rect":{"top":650,"left":0,"width":1200,"height":150}}`
		repeated := nodes
		for i := 0; i < 7; i++ {
			repeated += "," + nodes
		}
		return `{
			"url": "https://example.com/page",
			"domain": "example.com",
			"html": "` + bannerHTML + `",
			"viewport": {"width": 1200, "height": 800},
			"nodes": [` + repeated + `]
		}`
	}

	t.Run("detects banner in valid snapshot", func(t *testing.T) {
		router := setupTestRouter(&stubFetcher{})

		w := postJSON(router, "/api/v1/banners/detect", validSnapshot())

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var response struct {
			URL     string                  `json:"url"`
			Count   int                     `json:"count"`
			Banners []domain.DetectedBanner `json:"banners"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if response.Count != 1 {
			t.Fatalf("count = %d, want 1", response.Count)
		}
		if response.Banners[0].DetectionMethod != domain.DetectionKnownSelector {
			t.Errorf("detectionMethod = %s, want %s", response.Banners[0].DetectionMethod, domain.DetectionKnownSelector)
		}
		if response.Banners[0].Domain != "example.com" {
			t.Errorf("domain = %s, want example.com", response.Banners[0].Domain)
		}
	})

	t.Run("rejects snapshot without html", func(t *testing.T) {
		router := setupTestRouter(&stubFetcher{})

		w := postJSON(router, "/api/v1/banners/detect", `{"url": "https://example.com"}`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		router := setupTestRouter(&stubFetcher{})

		w := postJSON(router, "/api/v1/banners/detect", `{not json`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestScorePolicyEndpoint(t *testing.T) {
	t.Run("scores supplied text", func(t *testing.T) {
		router := setupTestRouter(&stubFetcher{})

		w := postJSON(router, "/api/v1/policy/score",
			`{"text": "we collect minimal data necessary for our purpose. you may access, delete or export your data."}`)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var result domain.ScoreResult
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if result.TotalScore <= 0 || result.TotalScore > 100 {
			t.Errorf("totalScore = %d, want within (0, 100]", result.TotalScore)
		}
		if result.LetterGrade == "" {
			t.Error("letterGrade is empty")
		}
		if len(result.Breakdown) != len(domain.FactorOrder) {
			t.Errorf("breakdown has %d factors, want %d", len(result.Breakdown), len(domain.FactorOrder))
		}
	})

	t.Run("rejects missing text", func(t *testing.T) {
		router := setupTestRouter(&stubFetcher{})

		w := postJSON(router, "/api/v1/policy/score", `{}`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestAnalyzePolicyEndpoint(t *testing.T) {
	policyText := "we collect minimal data necessary for our purpose. tls encryption protects your data. you may delete it anytime."

	t.Run("analyzes a policy url", func(t *testing.T) {
		router := setupTestRouter(&stubFetcher{text: policyText})

		w := postJSON(router, "/api/v1/policy/analyze",
			`{"domain": "example.com", "policyUrl": "https://example.com/privacy"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var analysis domain.PolicyAnalysis
		if err := json.Unmarshal(w.Body.Bytes(), &analysis); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if analysis.Source != "Live" {
			t.Errorf("source = %s, want Live", analysis.Source)
		}
		if analysis.Domain != "example.com" {
			t.Errorf("domain = %s, want example.com", analysis.Domain)
		}
		if analysis.Result.TotalScore <= 0 {
			t.Errorf("totalScore = %d, want > 0", analysis.Result.TotalScore)
		}
	})

	t.Run("second request is served from cache", func(t *testing.T) {
		router := setupTestRouter(&stubFetcher{text: policyText})
		payload := `{"domain": "example.com", "policyUrl": "https://example.com/privacy"}`

		if w := postJSON(router, "/api/v1/policy/analyze", payload); w.Code != http.StatusOK {
			t.Fatalf("first request status = %d, want %d", w.Code, http.StatusOK)
		}

		w := postJSON(router, "/api/v1/policy/analyze", payload)
		if w.Code != http.StatusOK {
			t.Fatalf("second request status = %d, want %d", w.Code, http.StatusOK)
		}

		var analysis domain.PolicyAnalysis
		if err := json.Unmarshal(w.Body.Bytes(), &analysis); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if analysis.Source != "Cache" {
			t.Errorf("source = %s, want Cache", analysis.Source)
		}
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		router := setupTestRouter(&stubFetcher{text: policyText})

		for _, payload := range []string{
			`{}`,
			`{"domain": "example.com"}`,
			`{"policyUrl": "https://example.com/privacy"}`,
			`{"domain": "example.com", "policyUrl": "not a url"}`,
		} {
			w := postJSON(router, "/api/v1/policy/analyze", payload)
			if w.Code != http.StatusBadRequest {
				t.Errorf("payload %s: status = %d, want %d", payload, w.Code, http.StatusBadRequest)
			}
		}
	})

	t.Run("maps missing policy to 404", func(t *testing.T) {
		router := setupTestRouter(&stubFetcher{err: domain.ErrPolicyNotFound})

		w := postJSON(router, "/api/v1/policy/analyze",
			`{"domain": "example.com", "policyUrl": "https://example.com/privacy"}`)

		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("maps fetch failure to 502", func(t *testing.T) {
		router := setupTestRouter(&stubFetcher{err: domain.ErrFetchFailure})

		w := postJSON(router, "/api/v1/policy/analyze",
			`{"domain": "example.com", "policyUrl": "https://example.com/privacy"}`)

		if w.Code != http.StatusBadGateway {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadGateway)
		}
	})
}

func TestUnknownRoutes(t *testing.T) {
	router := setupTestRouter(&stubFetcher{})

	for _, path := range []string{"/api/v1/unknown", "/api/v2/policy/score", "/banners/detect"} {
		req, _ := http.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s: status = %d, want %d", path, w.Code, http.StatusNotFound)
		}
	}
}
