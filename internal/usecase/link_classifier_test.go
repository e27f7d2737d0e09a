package usecase

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/cookielens/backend/internal/domain"
)

func selectionFor(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return doc.Find("body")
}

func TestLinkClassifier_ExtractPrivacyLinks(t *testing.T) {
	classifier := NewLinkClassifier()

	t.Run("accepts named policy links", func(t *testing.T) {
		banner := selectionFor(t, `<div><a href="/privacy">Privacy Policy</a></div>`)

		links := classifier.ExtractPrivacyLinks(banner)
		if len(links) != 1 {
			t.Fatalf("got %d links, want 1", len(links))
		}
		if links[0].Type != domain.LinkPrivacyPolicy {
			t.Errorf("Type = %s, want %s", links[0].Type, domain.LinkPrivacyPolicy)
		}
		if links[0].Href != "/privacy" {
			t.Errorf("Href = %s, want /privacy", links[0].Href)
		}
	})

	t.Run("accepts links with privacy-bearing href", func(t *testing.T) {
		banner := selectionFor(t, `<div><a href="/our-privacy-practices">More</a></div>`)

		links := classifier.ExtractPrivacyLinks(banner)
		if len(links) != 1 {
			t.Fatalf("got %d links, want 1", len(links))
		}
		if links[0].Type != domain.LinkOtherPolicy {
			t.Errorf("Type = %s, want %s", links[0].Type, domain.LinkOtherPolicy)
		}
	})

	t.Run("accepts generic action link in privacy context", func(t *testing.T) {
		banner := selectionFor(t, `<div class="cookie-notice">
			We use cookies to improve your experience.
			<a href="/about-us">Learn more</a>
		</div>`)

		links := classifier.ExtractPrivacyLinks(banner)
		if len(links) != 1 {
			t.Fatalf("got %d links, want 1", len(links))
		}
		if links[0].Type != domain.LinkGenericAction {
			t.Errorf("Type = %s, want %s", links[0].Type, domain.LinkGenericAction)
		}
		if !links[0].Context.IsGenericLink {
			t.Error("Context.IsGenericLink = false, want true")
		}
		if !links[0].Context.HasPrivacyContext && !links[0].Context.IsInPrivacyContainer {
			t.Error("expected a privacy context or container signal to be recorded")
		}
	})

	t.Run("rejects generic action link without privacy context", func(t *testing.T) {
		banner := selectionFor(t, `<div class="promo">
			Welcome to our store, enjoy the summer sale.
			<a href="/about-us">Learn more</a>
		</div>`)

		links := classifier.ExtractPrivacyLinks(banner)
		if len(links) != 0 {
			t.Errorf("got %d links, want 0 for generic link outside privacy context", len(links))
		}
	})

	t.Run("accepts links whose aria label carries a privacy signal", func(t *testing.T) {
		banner := selectionFor(t, `<div class="promo">
			<a href="/about-us" aria-label="read the cookie notice">Details</a>
		</div>`)

		links := classifier.ExtractPrivacyLinks(banner)
		if len(links) != 1 {
			t.Fatalf("got %d links, want 1", len(links))
		}
		if links[0].AriaLabel != "read the cookie notice" {
			t.Errorf("AriaLabel = %q, want the aria label preserved", links[0].AriaLabel)
		}
	})

	t.Run("stored surrounding text is bounded", func(t *testing.T) {
		long := strings.Repeat("cookie policy details ", 30)
		banner := selectionFor(t, `<div>`+long+`<a href="/privacy">Privacy Policy</a></div>`)

		links := classifier.ExtractPrivacyLinks(banner)
		if len(links) != 1 {
			t.Fatalf("got %d links, want 1", len(links))
		}
		if len(links[0].SurroundingText) > 100 {
			t.Errorf("SurroundingText length = %d, want <= 100", len(links[0].SurroundingText))
		}
	})
}

func TestLinkClassifier_ExtractPolicyLinks(t *testing.T) {
	classifier := NewLinkClassifier()

	t.Run("finds policy anchors by href", func(t *testing.T) {
		banner := selectionFor(t, `<div>
			<a href="/cookie-policy">Cookie Policy</a>
			<a href="/contact">Contact</a>
		</div>`)

		links := classifier.ExtractPolicyLinks(banner)
		if len(links) != 1 {
			t.Fatalf("got %d links, want 1", len(links))
		}
		if links[0].Href != "/cookie-policy" {
			t.Errorf("Href = %s, want /cookie-policy", links[0].Href)
		}
	})

	t.Run("empty banner yields no links", func(t *testing.T) {
		banner := selectionFor(t, `<div>We use cookies.</div>`)

		if links := classifier.ExtractPolicyLinks(banner); len(links) != 0 {
			t.Errorf("got %d links, want 0", len(links))
		}
	})
}

func TestLinkClassifier_Categorize(t *testing.T) {
	classifier := NewLinkClassifier()

	tests := []struct {
		name string
		text string
		href string
		want domain.PrivacyLinkType
	}{
		{"privacy policy by text", "Privacy Policy", "/p", domain.LinkPrivacyPolicy},
		{"privacy policy wins over cookie href", "Privacy Policy", "/cookie-policy", domain.LinkPrivacyPolicy},
		{"cookie policy", "Cookie Policy", "/c", domain.LinkCookiePolicy},
		{"terms", "Terms of Service", "/t", domain.LinkTermsOfService},
		{"gdpr", "GDPR information", "/g", domain.LinkGDPRInfo},
		{"legal notice", "Legal", "/l", domain.LinkLegalNotice},
		{"cookie settings", "Manage Cookies", "/m", domain.LinkCookieSettings},
		{"preferences", "Customize", "/pref", domain.LinkPreferences},
		{"opt out", "Opt out", "/o", domain.LinkOptOutIn},
		{"generic", "Learn more", "/lm", domain.LinkGenericAction},
		{"consent button", "Accept all", "/a", domain.LinkConsentButton},
		{"action button", "Got it", "/gi", domain.LinkActionButton},
		{"fallback", "Information", "/i", domain.LinkOtherPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.Categorize(tt.text, tt.href); got != tt.want {
				t.Errorf("Categorize(%q, %q) = %s, want %s", tt.text, tt.href, got, tt.want)
			}
		})
	}
}

func TestLinkClassifier_BestAnalysisLink(t *testing.T) {
	classifier := NewLinkClassifier()

	link := func(typ domain.PrivacyLinkType, href string) domain.PrivacyLink {
		return domain.PrivacyLink{Type: typ, Href: href}
	}

	t.Run("prefers privacy policy over cookie policy", func(t *testing.T) {
		links := []domain.PrivacyLink{
			link(domain.LinkCookiePolicy, "/cookie-policy"),
			link(domain.LinkPrivacyPolicy, "/privacy"),
		}
		if got := classifier.BestAnalysisLink(links); got != "/privacy" {
			t.Errorf("BestAnalysisLink() = %q, want /privacy", got)
		}
	})

	t.Run("falls back to first cookie policy", func(t *testing.T) {
		links := []domain.PrivacyLink{
			link(domain.LinkCookieSettings, "/settings"),
			link(domain.LinkCookiePolicy, "/cookies-1"),
			link(domain.LinkCookiePolicy, "/cookies-2"),
		}
		if got := classifier.BestAnalysisLink(links); got != "/cookies-1" {
			t.Errorf("BestAnalysisLink() = %q, want /cookies-1", got)
		}
	})

	t.Run("returns empty when nothing qualifies", func(t *testing.T) {
		links := []domain.PrivacyLink{
			link(domain.LinkGenericAction, "/learn-more"),
			link(domain.LinkTermsOfService, "/terms"),
		}
		if got := classifier.BestAnalysisLink(links); got != "" {
			t.Errorf("BestAnalysisLink() = %q, want empty", got)
		}
	})

	t.Run("skips privacy policy links without href", func(t *testing.T) {
		links := []domain.PrivacyLink{
			link(domain.LinkPrivacyPolicy, ""),
			link(domain.LinkCookiePolicy, "/cookies"),
		}
		if got := classifier.BestAnalysisLink(links); got != "/cookies" {
			t.Errorf("BestAnalysisLink() = %q, want /cookies", got)
		}
	})

	t.Run("handles nil slice", func(t *testing.T) {
		if got := classifier.BestAnalysisLink(nil); got != "" {
			t.Errorf("BestAnalysisLink(nil) = %q, want empty", got)
		}
	})
}
