package usecase

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/cookielens/backend/internal/domain"
	"github.com/cookielens/backend/internal/infrastructure/dom"
)

// Signal weights for candidate scoring
const (
	keywordWeight     = 1.5 // per distinct cookie keyword in text
	acceptButtonBonus = 3.0
	declineButtonBonus = 2.0
	bothButtonsBonus  = 1.0
	policyLinkBonus   = 1.0
	indicatorWeight   = 0.5 // per distinct class/id banner indicator
	cmpBonus          = 2.0 // class/id matches a known CMP name
	phraseWeight      = 0.5 // per canonical cookie-banner phrase

	oversizePenaltyHeavy = 2.0 // element covers > 80% of the viewport
	oversizePenaltyLight = 1.0 // element covers > 60% of the viewport
	undersizePenalty     = 1.0 // element smaller than a plausible banner
)

// Geometric gates for the position/content strategy
const (
	topBannerMaxTop       = 50.0
	bottomBannerMaxOffset = 50.0
	wideBannerWidthRatio  = 0.5
	cornerBannerMinWidth  = 250.0
	cornerBannerMinHeight = 80.0
	cornerBannerMaxRatio  = 0.8
	overlayMinRatio       = 0.3
	overlayMinZIndex      = 100
	nearZeroOpacity       = 0.01
	minBannerWidth        = 200.0
	minBannerHeight       = 50.0
)

// cookieKeywords are the high-weight text signals for banner candidates,
// shared with the visibility check for transform-hidden banners.
var cookieKeywords = []string{
	"cookie", "cookies", "consent", "privacy", "gdpr", "ccpa",
	"tracking", "analytics", "we use cookies", "this site uses",
	"accept cookies", "cookie policy", "privacy policy",
}

// knownSelectorPatterns are class/id substrings of known cookie banner
// markup and CMP containers. Matching any of them feeds the element into the
// lenient known-selector strategy.
var knownSelectorPatterns = []string{
	"cookie-banner", "cookie-consent", "cookie-notice", "cookie-bar",
	"gdpr", "privacy-banner", "consent-banner",
	"onetrust", "cookiebot", "cybotcookiebotdialog",
	"quantcast", "qc-cmp", "didomi", "trustarc", "cookiefirst",
	"cookiealert", "cookie-alert", "cc-banner", "cookieconsent",
}

// bannerIndicators are generic class/id substrings worth half a point each.
var bannerIndicators = []string{"cookie", "consent", "privacy", "gdpr", "banner", "notice"}

// cmpNames identify consent management platforms in class/id values.
var cmpNames = []string{"onetrust", "cookiebot", "quantcast", "didomi", "trustarc"}

// bannerPhrases are canonical cookie-banner sentences.
var bannerPhrases = []string{
	"we use cookies",
	"this site uses cookies",
	"by continuing to use",
	"by clicking accept",
	"to improve your experience",
	"necessary cookies",
	"analytics cookies",
	"marketing cookies",
}

// Button semantics
var (
	acceptWords  = []string{"accept", "agree", "allow", "ok", "got it", "understand"}
	declineWords = []string{"decline", "reject", "deny", "refuse"}
)

// containerTags are the element types the position/content strategy walks.
var containerTags = map[string]bool{
	"div": true, "section": true, "aside": true, "header": true, "footer": true,
}

const buttonSelector = `button, input[type="button"], input[type="submit"], [role="button"]`

// DetectorConfig holds configuration for the detector service
type DetectorConfig struct {
	KnownSelectorThreshold   float64
	PositionContentThreshold float64
	DedupTextDelta           int
	SubmitTimeout            time.Duration
	MaxPendingSubmissions    int
	EnableDebugLogging       bool
}

// DetectorService scans page snapshots for cookie consent banners. Dedup
// state is scoped to the service instance; the per-scan "checked" set lives
// only for one ProcessSnapshot call.
type DetectorService struct {
	knownSelectorThreshold   float64
	positionContentThreshold float64
	dedupTextDelta           int
	submitTimeout            time.Duration
	maxPending               int
	debug                    bool

	links *LinkClassifier
	sink  domain.BannerSink

	mu              sync.Mutex
	emittedTextLens map[string][]int
	failed          []*domain.DetectedBanner
}

// NewDetectorService creates a detector with the given configuration. A nil
// sink disables record hand-off; detection still runs.
func NewDetectorService(sink domain.BannerSink, config DetectorConfig) *DetectorService {
	knownThreshold := config.KnownSelectorThreshold
	if knownThreshold <= 0 {
		knownThreshold = 2.0
	}
	positionThreshold := config.PositionContentThreshold
	if positionThreshold <= 0 {
		positionThreshold = 5.0
	}
	dedupDelta := config.DedupTextDelta
	if dedupDelta <= 0 {
		dedupDelta = 100
	}
	submitTimeout := config.SubmitTimeout
	if submitTimeout <= 0 {
		submitTimeout = 10 * time.Second
	}
	maxPending := config.MaxPendingSubmissions
	if maxPending <= 0 {
		maxPending = 20
	}

	return &DetectorService{
		knownSelectorThreshold:   knownThreshold,
		positionContentThreshold: positionThreshold,
		dedupTextDelta:           dedupDelta,
		submitTimeout:            submitTimeout,
		maxPending:               maxPending,
		debug:                    config.EnableDebugLogging,
		links:                    NewLinkClassifier(),
		sink:                     sink,
		emittedTextLens:          make(map[string][]int),
	}
}

// ProcessSnapshot runs both scan strategies over one snapshot and returns
// the deduplicated banner records. Accepted records are handed to the sink
// asynchronously so scanning is never blocked by delivery.
func (s *DetectorService) ProcessSnapshot(ctx context.Context, snap *domain.PageSnapshot) ([]*domain.DetectedBanner, error) {
	page, err := dom.Parse(snap)
	if err != nil {
		return nil, err
	}

	checked := make(map[int]bool)
	var banners []*domain.DetectedBanner

	accept := func(el *dom.Element, method domain.DetectionMethod, score float64) {
		record := s.extractRecord(page, el, method, score)
		if s.isDuplicate(record) {
			if s.debug {
				log.Printf("[DETECT] duplicate banner on %s, skipping (%s)", record.Domain, el.Describe())
			}
			return
		}
		s.registerEmitted(record)
		banners = append(banners, record)
		s.submitAsync(record)

		if s.debug {
			log.Printf("[DETECT] banner accepted on %s: %s (method=%s score=%.1f)",
				record.Domain, el.Describe(), method, score)
		}
	}

	// Strategy 1: known cookie banner selectors, lenient threshold.
	for _, el := range page.Elements {
		select {
		case <-ctx.Done():
			return banners, ctx.Err()
		default:
		}

		if checked[el.Index] || !matchesKnownSelector(el) {
			continue
		}
		if !s.isElementVisible(el) {
			continue
		}
		checked[el.Index] = true

		if score := s.calculateBannerScore(el, page.Viewport); score >= s.knownSelectorThreshold {
			accept(el, domain.DetectionKnownSelector, score)
		}
	}

	// Strategy 2: position + content analysis for unknown patterns, higher
	// threshold since the candidate set is unconstrained.
	for _, el := range page.Elements {
		select {
		case <-ctx.Done():
			return banners, ctx.Err()
		default:
		}

		if checked[el.Index] || !containerTags[el.Tag] {
			continue
		}
		if !s.isLikelyBannerPosition(el, page.Viewport) {
			continue
		}
		checked[el.Index] = true

		score := s.calculateBannerScore(el, page.Viewport)
		if s.debug {
			log.Printf("[DETECT] positioned candidate %s score=%.1f", el.Describe(), score)
		}
		if score >= s.positionContentThreshold {
			accept(el, domain.DetectionPositionContent, score)
		}
	}

	return banners, nil
}

// calculateBannerScore computes the additive cookie-banner-likelihood score
// for one element.
func (s *DetectorService) calculateBannerScore(el *dom.Element, viewport domain.Viewport) float64 {
	score := 0.0
	text := NormalizeText(el.Text())
	classID := strings.ToLower(el.Class() + " " + el.ID())

	// 1. Cookie-specific keywords in text
	score += float64(CountDistinctPhrases(text, cookieKeywords)) * keywordWeight

	// 2. Accept/decline button semantics
	hasAccept, hasDecline := s.findConsentButtons(el)
	if hasAccept {
		score += acceptButtonBonus
	}
	if hasDecline {
		score += declineButtonBonus
	}
	if hasAccept && hasDecline {
		score += bothButtonsBonus
	}

	// 3. Policy/privacy links
	if s.hasPolicyLink(el) {
		score += policyLinkBonus
	}

	// 4. Class/id banner indicators
	score += float64(CountDistinctPhrases(classID, bannerIndicators)) * indicatorWeight

	// 5. Known CMP markup
	if ContainsAny(classID, cmpNames) {
		score += cmpBonus
	}

	// 6. Canonical cookie banner phrases
	score += float64(CountDistinctPhrases(text, bannerPhrases)) * phraseWeight

	// 7. Size sanity: cookie banners are neither full-page nor tiny
	if screenArea := viewport.Area(); screenArea > 0 {
		areaRatio := el.Rect.Area() / screenArea
		if areaRatio > 0.8 {
			score -= oversizePenaltyHeavy
		} else if areaRatio > 0.6 {
			score -= oversizePenaltyLight
		}
	}
	if el.Rect.Width < minBannerWidth || el.Rect.Height < minBannerHeight {
		score -= undersizePenalty
	}

	return score
}

// findConsentButtons reports whether the element contains accept-style and
// decline-style buttons, judged by button text, class and id.
func (s *DetectorService) findConsentButtons(el *dom.Element) (hasAccept, hasDecline bool) {
	el.Selection().Find(buttonSelector).EachWithBreak(func(_ int, btn *goquery.Selection) bool {
		text := NormalizeText(btn.Text())
		class := strings.ToLower(btn.AttrOr("class", ""))
		id := strings.ToLower(btn.AttrOr("id", ""))

		if !hasAccept && (ContainsAny(text, acceptWords) ||
			strings.Contains(class, "accept") || strings.Contains(id, "accept")) {
			hasAccept = true
		}
		if !hasDecline && (ContainsAny(text, declineWords) ||
			strings.Contains(class, "decline") || strings.Contains(class, "reject") ||
			strings.Contains(id, "decline") || strings.Contains(id, "reject")) {
			hasDecline = true
		}
		return !(hasAccept && hasDecline)
	})
	return hasAccept, hasDecline
}

// hasPolicyLink reports whether any anchor in the element looks like a
// privacy/cookie/terms policy link.
func (s *DetectorService) hasPolicyLink(el *dom.Element) bool {
	found := false
	el.Selection().Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		text := NormalizeText(link.Text())
		href := strings.ToLower(link.AttrOr("href", ""))
		if ContainsAny(text, []string{"privacy", "cookie", "policy", "terms"}) ||
			ContainsAny(href, []string{"privacy", "cookie", "policy"}) {
			found = true
			return false
		}
		return true
	})
	return found
}

// isElementVisible applies CSS-level visibility checks. Elements with a zero
// bounding box still count as visible when their text or class/id indicates
// cookie content, to catch transform-hidden banners.
func (s *DetectorService) isElementVisible(el *dom.Element) bool {
	style := el.Style
	if style.Display == "none" || style.Visibility == "hidden" {
		return false
	}
	if dom.ParseOpacity(style.Opacity) <= nearZeroOpacity {
		return false
	}

	if el.Rect.Width == 0 || el.Rect.Height == 0 {
		text := NormalizeText(el.Text())
		classID := strings.ToLower(el.Class() + " " + el.ID())
		return ContainsAny(text, cookieKeywords) || strings.Contains(classID, "cookie")
	}

	return true
}

// isLikelyBannerPosition gates the position/content strategy: the element
// must be rendered as an overlay and shaped like a top banner, bottom
// banner, corner/modal box, or high-z full overlay.
func (s *DetectorService) isLikelyBannerPosition(el *dom.Element, viewport domain.Viewport) bool {
	if !s.isElementVisible(el) {
		return false
	}

	switch el.Style.Position {
	case "fixed", "sticky", "absolute":
	default:
		return false
	}

	rect := el.Rect
	isTopBanner := rect.Top <= topBannerMaxTop && rect.Width > viewport.Width*wideBannerWidthRatio
	isBottomBanner := rect.Bottom() >= viewport.Height-bottomBannerMaxOffset &&
		rect.Width > viewport.Width*wideBannerWidthRatio
	isCornerBanner := rect.Width > cornerBannerMinWidth && rect.Width < viewport.Width*cornerBannerMaxRatio &&
		rect.Height > cornerBannerMinHeight && rect.Height < viewport.Height*cornerBannerMaxRatio
	isFullOverlay := rect.Width > viewport.Width*overlayMinRatio &&
		rect.Height > viewport.Height*overlayMinRatio &&
		dom.ParseZIndex(el.Style.ZIndex) > overlayMinZIndex

	return isTopBanner || isBottomBanner || isCornerBanner || isFullOverlay
}

// matchesKnownSelector checks class/id against the known banner patterns.
func matchesKnownSelector(el *dom.Element) bool {
	classID := strings.ToLower(el.Class() + " " + el.ID())
	if classID == " " {
		return false
	}
	return ContainsAny(classID, knownSelectorPatterns)
}

// extractRecord builds the immutable DetectedBanner record for an accepted
// element.
func (s *DetectorService) extractRecord(page *dom.Page, el *dom.Element, method domain.DetectionMethod, score float64) *domain.DetectedBanner {
	var buttons []domain.BannerButton
	el.Selection().Find(buttonSelector + ", .btn").Each(func(_ int, btn *goquery.Selection) {
		text := strings.TrimSpace(btn.Text())
		if text == "" {
			text = strings.TrimSpace(btn.AttrOr("value", ""))
		}
		if text == "" {
			return
		}
		buttons = append(buttons, domain.BannerButton{
			Text:    text,
			Type:    btn.AttrOr("type", "button"),
			Classes: btn.AttrOr("class", ""),
			ID:      btn.AttrOr("id", ""),
		})
	})

	privacyLinks := s.links.ExtractPrivacyLinks(el.Selection())

	return &domain.DetectedBanner{
		ID:              uuid.NewString(),
		URL:             page.URL,
		Domain:          page.Domain,
		Timestamp:       time.Now().UTC(),
		DetectionMethod: method,
		Score:           score,
		TextContent:     el.Text(),
		HTMLContent:     el.HTML(),
		Buttons:         buttons,
		PolicyLinks:     s.links.ExtractPolicyLinks(el.Selection()),
		PrivacyLinks:    privacyLinks,
		AnalysisURL:     s.links.BestAnalysisLink(privacyLinks),
		Position:        el.Rect,
		Styling: domain.BannerStyling{
			Position:        el.Style.Position,
			ZIndex:          el.Style.ZIndex,
			BackgroundColor: el.Style.BackgroundColor,
		},
		Selector:  el.Selector(),
		Classes:   el.Class(),
		ElementID: el.ID(),
	}
}

// isDuplicate checks a record against previously emitted records for the
// same domain: text lengths within dedupTextDelta characters are treated as
// the same banner.
func (s *DetectorService) isDuplicate(record *domain.DetectedBanner) bool {
	textLen := len(record.TextContent)
	if textLen == 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.emittedTextLens[record.Domain] {
		if existing == 0 {
			continue
		}
		delta := existing - textLen
		if delta < 0 {
			delta = -delta
		}
		if delta < s.dedupTextDelta {
			return true
		}
	}
	return false
}

// registerEmitted records a banner's text length for future dedup checks.
func (s *DetectorService) registerEmitted(record *domain.DetectedBanner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emittedTextLens[record.Domain] = append(s.emittedTextLens[record.Domain], len(record.TextContent))
}

// submitAsync hands a record to the sink without blocking the scan path.
// Failed submissions are queued for the retry sweep.
func (s *DetectorService) submitAsync(record *domain.DetectedBanner) {
	if s.sink == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.submitTimeout)
		defer cancel()

		if err := s.sink.Submit(ctx, record); err != nil {
			log.Printf("[DETECT] banner submission failed for %s: %v", record.Domain, err)
			s.queueFailed(record)
		}
	}()
}

// queueFailed keeps the most recent undelivered records, bounded by
// maxPending.
func (s *DetectorService) queueFailed(record *domain.DetectedBanner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, record)
	if len(s.failed) > s.maxPending {
		s.failed = s.failed[len(s.failed)-s.maxPending:]
	}
}

// PendingSubmissions returns the number of undelivered records awaiting the
// retry sweep.
func (s *DetectorService) PendingSubmissions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.failed)
}

// RetryFailed attempts delivery of every queued record once. Records that
// fail again are re-queued.
func (s *DetectorService) RetryFailed(ctx context.Context) {
	if s.sink == nil {
		return
	}

	s.mu.Lock()
	pending := s.failed
	s.failed = nil
	s.mu.Unlock()

	for _, record := range pending {
		submitCtx, cancel := context.WithTimeout(ctx, s.submitTimeout)
		err := s.sink.Submit(submitCtx, record)
		cancel()
		if err != nil {
			log.Printf("[DETECT] retry submission failed for %s: %v", record.Domain, err)
			s.queueFailed(record)
		}
	}
}

// StartRetrySweep launches the periodic retry loop for failed submissions,
// decoupled from the scan path. It stops when ctx is cancelled.
func (s *DetectorService) StartRetrySweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RetryFailed(ctx)
			}
		}
	}()
}
