package domain

import "time"

// DetectionMethod identifies which scan strategy accepted a banner candidate.
type DetectionMethod string

const (
	// DetectionKnownSelector means the element matched a known CMP/cookie
	// banner selector pattern before scoring.
	DetectionKnownSelector DetectionMethod = "known-selector"

	// DetectionPositionContent means the element was found by positional
	// and content heuristics alone.
	DetectionPositionContent DetectionMethod = "position-content"
)

// PrivacyLinkType categorizes a privacy-related link found inside a banner.
type PrivacyLinkType string

const (
	LinkPrivacyPolicy  PrivacyLinkType = "privacy_policy"
	LinkCookiePolicy   PrivacyLinkType = "cookie_policy"
	LinkTermsOfService PrivacyLinkType = "terms_of_service"
	LinkGDPRInfo       PrivacyLinkType = "gdpr_info"
	LinkLegalNotice    PrivacyLinkType = "legal_notice"
	LinkCookieSettings PrivacyLinkType = "cookie_settings"
	LinkPreferences    PrivacyLinkType = "preferences"
	LinkOptOutIn       PrivacyLinkType = "opt_out_in"
	LinkGenericAction  PrivacyLinkType = "generic_action"
	LinkConsentButton  PrivacyLinkType = "consent_button"
	LinkActionButton   PrivacyLinkType = "action_button"
	LinkOtherPolicy    PrivacyLinkType = "other_policy"
)

// DetectedBanner is the record produced for each accepted banner candidate.
// It is immutable once created and JSON-serializable for the storage
// collector.
type DetectedBanner struct {
	ID              string          `json:"id"`
	URL             string          `json:"url"`
	Domain          string          `json:"domain"`
	Timestamp       time.Time       `json:"timestamp"`
	DetectionMethod DetectionMethod `json:"detectionMethod"`
	Score           float64         `json:"score"`
	TextContent     string          `json:"textContent"`
	HTMLContent     string          `json:"htmlContent"`
	Buttons         []BannerButton  `json:"buttons"`
	PolicyLinks     []PolicyLink    `json:"policyLinks"`
	PrivacyLinks    []PrivacyLink   `json:"privacyLinks"`
	AnalysisURL     string          `json:"analysisUrl,omitempty"`
	Position        Rect            `json:"position"`
	Styling         BannerStyling   `json:"styling"`
	Selector        string          `json:"selector"`
	Classes         string          `json:"classes"`
	ElementID       string          `json:"elementId"`
}

// BannerButton describes a clickable control inside a detected banner.
type BannerButton struct {
	Text    string `json:"text"`
	Type    string `json:"type"`
	Classes string `json:"classes,omitempty"`
	ID      string `json:"id,omitempty"`
}

// PolicyLink is a plain policy/terms anchor found by href inspection.
type PolicyLink struct {
	Text    string `json:"text"`
	Href    string `json:"href"`
	Classes string `json:"classes,omitempty"`
	ID      string `json:"id,omitempty"`
}

// PrivacyLink is a classified privacy-related anchor with the context that
// justified its acceptance.
type PrivacyLink struct {
	Text            string          `json:"text"`
	Href            string          `json:"href"`
	Title           string          `json:"title,omitempty"`
	AriaLabel       string          `json:"ariaLabel,omitempty"`
	Type            PrivacyLinkType `json:"type"`
	Classes         string          `json:"classes,omitempty"`
	ID              string          `json:"id,omitempty"`
	SurroundingText string          `json:"surroundingText,omitempty"`
	Context         LinkContext     `json:"context"`
}

// LinkContext records why a link was classified as privacy-related.
type LinkContext struct {
	HasPrivacyContext    bool `json:"hasPrivacyContext"`
	IsInPrivacyContainer bool `json:"isInPrivacyContainer"`
	IsGenericLink        bool `json:"isGenericLink"`
}

// BannerStyling captures the computed style facts kept on the record.
type BannerStyling struct {
	Position        string `json:"position"`
	ZIndex          string `json:"zIndex"`
	BackgroundColor string `json:"backgroundColor"`
}
