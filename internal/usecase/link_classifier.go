package usecase

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cookielens/backend/internal/domain"
)

// Compiled pattern tables for link classification. Kept declarative so the
// rule set is auditable per category.
var (
	// directPolicyRegex matches link text that names a policy document or a
	// privacy-bearing action outright.
	directPolicyRegex = regexp.MustCompile(`(?i)privacy\s*policy|privacy\s*notice|privacy\s*statement|data\s*protection|data\s*privacy|\bgdpr\b|\bccpa\b|cookie\s*policy|cookie\s*notice|terms\s*of\s*service|terms\s*and\s*conditions|legal\s*notice|legal\s*information|manage\s*cookies|cookie\s*settings|privacy\s*settings|consent\s*management|opt[\s-]*out|opt[\s-]*in`)

	// genericActionRegex matches action phrases that only count as privacy
	// links when their surroundings carry a privacy signal.
	genericActionRegex = regexp.MustCompile(`(?i)click\s*here|\bhere\b|learn\s*more|read\s*more|find\s*out\s*more|see\s*more|view\s*more|\bdetails\b|more\s*info(rmation)?|full\s*details|complete\s*details|this\s*link|\bpreferences\b|\bsettings\b|\bcustomize\b|\bconfigure\b|accept\s*all|reject\s*all|accept\s*selected|save\s*preferences|\bcontinue\b|\bproceed\b|\bok\b|got\s*it|\bunderstand\b|\bagree\b|\bdisagree\b`)

	// privacySignalRegex detects privacy-related keywords in hrefs, titles,
	// aria labels and surrounding text.
	privacySignalRegex = regexp.MustCompile(`(?i)privacy|gdpr|ccpa|cookie|terms|legal|policy|notice|statement`)

	// containerSignalRegex detects privacy-related ancestors.
	containerSignalRegex = regexp.MustCompile(`(?i)privacy|gdpr|ccpa|cookie|consent|policy|notice|legal`)
)

// Categorization patterns, checked in priority order: exact policy names
// first, then settings/action phrases, then generic fallbacks.
var (
	privacyPolicyRegex  = regexp.MustCompile(`(?i)privacy\s*policy`)
	cookiePolicyRegex   = regexp.MustCompile(`(?i)cookie\s*policy`)
	termsRegex          = regexp.MustCompile(`(?i)terms`)
	gdprRegex           = regexp.MustCompile(`(?i)gdpr`)
	legalRegex          = regexp.MustCompile(`(?i)legal`)
	cookieSettingsRegex = regexp.MustCompile(`(?i)manage\s*cookies|cookie\s*settings|privacy\s*settings|consent\s*management`)
	preferencesRegex    = regexp.MustCompile(`(?i)preferences|settings|customize|configure`)
	optOutInRegex       = regexp.MustCompile(`(?i)opt[\s-]*out|opt[\s-]*in`)
	genericLinkRegex    = regexp.MustCompile(`(?i)click\s*here|\bhere\b|learn\s*more|read\s*more|more\s*info|\bdetails\b`)
	consentButtonRegex  = regexp.MustCompile(`(?i)accept\s*all|reject\s*all|accept\s*selected|save\s*preferences`)
	actionButtonRegex   = regexp.MustCompile(`(?i)continue|proceed|\bok\b|got\s*it|understand|agree|disagree`)
)

const (
	surroundingContextChars = 50  // window inspected for privacy context
	surroundingStoredChars  = 100 // window stored on the record
	privacyContainerDepth   = 5   // ancestor levels checked for privacy signals
)

// LinkClassifier extracts and categorizes privacy-related links from a
// banner element. Classification is a pure function of link text, href and
// surrounding context.
type LinkClassifier struct{}

// NewLinkClassifier creates a new link classifier
func NewLinkClassifier() *LinkClassifier {
	return &LinkClassifier{}
}

// ExtractPrivacyLinks walks every anchor inside the banner and returns those
// classified as privacy links. A link qualifies if its text names a policy,
// its href/title/aria-label carries a privacy keyword, or it is a generic
// action phrase sitting in a privacy context.
func (c *LinkClassifier) ExtractPrivacyLinks(banner *goquery.Selection) []domain.PrivacyLink {
	var links []domain.PrivacyLink

	banner.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		href := sel.AttrOr("href", "")
		title := strings.TrimSpace(sel.AttrOr("title", ""))
		ariaLabel := strings.TrimSpace(sel.AttrOr("aria-label", ""))

		isDirect := directPolicyRegex.MatchString(text)
		hrefSignal := privacySignalRegex.MatchString(href)
		titleSignal := privacySignalRegex.MatchString(title)
		ariaSignal := privacySignalRegex.MatchString(ariaLabel)

		surrounding := surroundingText(sel)
		contextWindow := surrounding
		if len(contextWindow) > surroundingContextChars {
			contextWindow = contextWindow[:surroundingContextChars]
		}

		isGeneric := genericLinkRegex.MatchString(text)
		isAction := genericActionRegex.MatchString(text)
		hasContext := privacySignalRegex.MatchString(contextWindow) || titleSignal || ariaSignal
		inContainer := isInPrivacyContainer(sel)

		accepted := isDirect || hrefSignal || titleSignal || ariaSignal ||
			(isAction && (hasContext || inContainer))
		if !accepted {
			return
		}

		stored := surrounding
		if len(stored) > surroundingStoredChars {
			stored = stored[:surroundingStoredChars]
		}

		links = append(links, domain.PrivacyLink{
			Text:            text,
			Href:            href,
			Title:           title,
			AriaLabel:       ariaLabel,
			Type:            c.Categorize(text, href),
			Classes:         sel.AttrOr("class", ""),
			ID:              sel.AttrOr("id", ""),
			SurroundingText: stored,
			Context: domain.LinkContext{
				HasPrivacyContext:    hasContext,
				IsInPrivacyContainer: inContainer,
				IsGenericLink:        isGeneric,
			},
		})
	})

	return links
}

// ExtractPolicyLinks returns the plain policy anchors found by href
// inspection alone.
func (c *LinkClassifier) ExtractPolicyLinks(banner *goquery.Selection) []domain.PolicyLink {
	var links []domain.PolicyLink

	banner.Find(`a[href*="policy"], a[href*="privacy"], a[href*="terms"], a[href*="cookie"]`).
		Each(func(_ int, sel *goquery.Selection) {
			href := sel.AttrOr("href", "")
			if href == "" {
				return
			}
			links = append(links, domain.PolicyLink{
				Text:    strings.TrimSpace(sel.Text()),
				Href:    href,
				Classes: sel.AttrOr("class", ""),
				ID:      sel.AttrOr("id", ""),
			})
		})

	return links
}

// BestAnalysisLink picks the link worth fetching for a policy analysis.
// Privacy policies win over cookie policies; everything else is too vague a
// target to score. Returns the empty string when no link qualifies.
func (c *LinkClassifier) BestAnalysisLink(links []domain.PrivacyLink) string {
	var cookiePolicy string
	for _, link := range links {
		switch link.Type {
		case domain.LinkPrivacyPolicy:
			if link.Href != "" {
				return link.Href
			}
		case domain.LinkCookiePolicy:
			if cookiePolicy == "" {
				cookiePolicy = link.Href
			}
		}
	}
	return cookiePolicy
}

// Categorize assigns the link type by priority: exact policy names, then
// settings/action phrases, then generic fallbacks, then other_policy.
func (c *LinkClassifier) Categorize(text, href string) domain.PrivacyLinkType {
	switch {
	case privacyPolicyRegex.MatchString(text) || privacyPolicyRegex.MatchString(href):
		return domain.LinkPrivacyPolicy
	case cookiePolicyRegex.MatchString(text) || cookiePolicyRegex.MatchString(href):
		return domain.LinkCookiePolicy
	case termsRegex.MatchString(text) || termsRegex.MatchString(href):
		return domain.LinkTermsOfService
	case gdprRegex.MatchString(text) || gdprRegex.MatchString(href):
		return domain.LinkGDPRInfo
	case legalRegex.MatchString(text) || legalRegex.MatchString(href):
		return domain.LinkLegalNotice
	case cookieSettingsRegex.MatchString(text):
		return domain.LinkCookieSettings
	case preferencesRegex.MatchString(text):
		return domain.LinkPreferences
	case optOutInRegex.MatchString(text):
		return domain.LinkOptOutIn
	case genericLinkRegex.MatchString(text):
		return domain.LinkGenericAction
	case consentButtonRegex.MatchString(text):
		return domain.LinkConsentButton
	case actionButtonRegex.MatchString(text):
		return domain.LinkActionButton
	default:
		return domain.LinkOtherPolicy
	}
}

// surroundingText gathers the textual neighborhood of a link: parent text
// plus immediate sibling text.
func surroundingText(sel *goquery.Selection) string {
	var parts []string
	if parent := sel.Parent(); parent.Length() > 0 {
		parts = append(parts, parent.Text())
	}
	if prev := sel.Prev(); prev.Length() > 0 {
		parts = append(parts, prev.Text())
	}
	if next := sel.Next(); next.Length() > 0 {
		parts = append(parts, next.Text())
	}
	return strings.Join(parts, " ")
}

// isInPrivacyContainer climbs the ancestor chain looking for a privacy
// signal in class, id or text, up to privacyContainerDepth levels.
func isInPrivacyContainer(sel *goquery.Selection) bool {
	current := sel.Parent()
	for depth := 0; depth < privacyContainerDepth && current.Length() > 0; depth++ {
		if containerSignalRegex.MatchString(current.AttrOr("class", "")) ||
			containerSignalRegex.MatchString(current.AttrOr("id", "")) ||
			containerSignalRegex.MatchString(current.Text()) {
			return true
		}
		current = current.Parent()
	}
	return false
}
