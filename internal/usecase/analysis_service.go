package usecase

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/cookielens/backend/internal/domain"
)

// nonHostCharsRegex strips characters that don't belong in a cache key
// derived from a domain name.
var nonHostCharsRegex = regexp.MustCompile(`[^a-z0-9.\-]`)

// AnalysisServiceConfig holds configuration for the analysis service
type AnalysisServiceConfig struct {
	CacheTTL time.Duration
}

// AnalysisService scores privacy policies, fetching the policy text live and
// caching the finished analysis per domain.
type AnalysisService struct {
	cache    domain.CacheRepository
	fetcher  domain.PolicyFetcher
	scorer   *PolicyScorer
	cacheTTL time.Duration
}

// NewAnalysisService creates a new analysis service with dependencies
func NewAnalysisService(
	cache domain.CacheRepository,
	fetcher domain.PolicyFetcher,
	config AnalysisServiceConfig,
) *AnalysisService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour // Policies change; don't hold scores for long
	}

	return &AnalysisService{
		cache:    cache,
		fetcher:  fetcher,
		scorer:   NewPolicyScorer(),
		cacheTTL: cacheTTL,
	}
}

// ScoreText scores policy text supplied directly by the caller. No fetching
// and no caching happen here; the same text always yields the same result.
func (s *AnalysisService) ScoreText(text string) (*domain.ScoreResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.scorer.ScorePolicy(text), nil
}

// AnalyzePolicy fetches and scores the policy for a domain.
// Flow: check cache -> fetch policy text -> score -> cache -> return
func (s *AnalysisService) AnalyzePolicy(
	ctx context.Context,
	domainName string,
	policyURL string,
) (*domain.PolicyAnalysis, error) {
	if domainName == "" || policyURL == "" {
		return nil, domain.ErrInvalidRequest
	}

	cacheKey := s.generateCacheKey(domainName)

	// Try cache first
	cached, err := s.getFromCache(ctx, cacheKey)
	if err == nil && cached != nil {
		cached.Source = "Cache"
		return cached, nil
	}

	// Cache miss - fetch the policy text
	text, err := s.fetcher.FetchPolicyText(ctx, policyURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrPolicyNotFound
	}

	result := s.scorer.ScorePolicy(text)

	analysis := &domain.PolicyAnalysis{
		Domain:    domainName,
		PolicyURL: policyURL,
		Result:    *result,
		TextBytes: len(text),
		Source:    "Live",
	}

	if err := s.cache.Set(ctx, cacheKey, analysis, s.cacheTTL); err != nil {
		log.Printf("[SCORE] failed to cache analysis for %s: %v", domainName, err)
	}

	return analysis, nil
}

// generateCacheKey creates a normalized cache key from a domain name.
// Format: "policy:{normalized_domain}"
func (s *AnalysisService) generateCacheKey(domainName string) string {
	normalized := strings.ToLower(strings.TrimSpace(domainName))
	normalized = strings.TrimPrefix(normalized, "www.")
	normalized = nonHostCharsRegex.ReplaceAllString(normalized, "")
	return fmt.Sprintf("policy:%s", normalized)
}

// getFromCache retrieves a cached analysis
func (s *AnalysisService) getFromCache(ctx context.Context, key string) (*domain.PolicyAnalysis, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	analysis, ok := value.(*domain.PolicyAnalysis)
	if !ok {
		// Try to handle if stored as map
		if dataMap, ok := value.(map[string]interface{}); ok {
			return mapToPolicyAnalysis(dataMap), nil
		}
		return nil, domain.ErrCacheMiss
	}

	return analysis, nil
}

// mapToPolicyAnalysis converts a map (from JSON cache) to PolicyAnalysis
func mapToPolicyAnalysis(data map[string]interface{}) *domain.PolicyAnalysis {
	analysis := &domain.PolicyAnalysis{}

	if v, ok := data["domain"].(string); ok {
		analysis.Domain = v
	}
	if v, ok := data["policyUrl"].(string); ok {
		analysis.PolicyURL = v
	}
	if v, ok := data["textBytes"].(float64); ok {
		analysis.TextBytes = int(v)
	}
	if v, ok := data["source"].(string); ok {
		analysis.Source = v
	}

	if result, ok := data["result"].(map[string]interface{}); ok {
		if v, ok := result["totalScore"].(float64); ok {
			analysis.Result.TotalScore = int(v)
		}
		if v, ok := result["letterGrade"].(string); ok {
			analysis.Result.LetterGrade = v
		}
		if breakdown, ok := result["breakdown"].(map[string]interface{}); ok {
			analysis.Result.Breakdown = make(map[string]int, len(breakdown))
			for factor, raw := range breakdown {
				if v, ok := raw.(float64); ok {
					analysis.Result.Breakdown[factor] = int(v)
				}
			}
		}
		if recs, ok := result["recommendations"].([]interface{}); ok {
			for _, raw := range recs {
				if v, ok := raw.(string); ok {
					analysis.Result.Recommendations = append(analysis.Result.Recommendations, v)
				}
			}
		}
		if details, ok := result["details"].(map[string]interface{}); ok {
			analysis.Result.Details = make(map[string]domain.FactorDetail, len(details))
			for factor, raw := range details {
				if detailMap, ok := raw.(map[string]interface{}); ok {
					analysis.Result.Details[factor] = mapToFactorDetail(detailMap)
				}
			}
		}
	}

	return analysis
}

// mapToFactorDetail converts a map (from JSON cache) to FactorDetail
func mapToFactorDetail(data map[string]interface{}) domain.FactorDetail {
	detail := domain.FactorDetail{}
	detail.Collected = toStringSlice(data["collected"])
	detail.ThirdParties = toStringSlice(data["thirdParties"])
	detail.Rights = toStringSlice(data["rights"])
	detail.Measures = toStringSlice(data["measures"])
	detail.Positive = toStringSlice(data["positive"])
	detail.Negative = toStringSlice(data["negative"])
	return detail
}

func toStringSlice(raw interface{}) []string {
	values, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			result = append(result, s)
		}
	}
	return result
}
