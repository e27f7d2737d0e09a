package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cookielens/backend/internal/domain"
)

// Base scores per factor. They sit deliberately below each factor's
// midpoint: a policy that says nothing earns a mediocre-to-poor score, not a
// neutral one.
const (
	dataCollectionBase    = 8
	dataSharingBase       = 5
	userRightsBase        = 3
	dataSecurityBase      = 3
	clarityBase           = 6
	dataRetentionBase     = 3
	consentMechanismsBase = 4
)

// partnerCountRegex parses "N companies/partners/vendors" phrasing for the
// sharing-breadth penalty. Only the counting thresholds are load-bearing.
var partnerCountRegex = regexp.MustCompile(`(\d+)\s*(?:companies?|partners?|vendors?)`)

// dataCollectionIndicators categorize what a policy admits to collecting.
var dataCollectionIndicators = IndicatorSet{
	{Name: "personalInfo", Phrases: []string{"personal information", "personal data", "name", "email", "address", "phone"}},
	{Name: "sensitiveData", Phrases: []string{"health", "medical", "financial", "credit card", "ssn", "social security", "biometric"}},
	{Name: "locationData", Phrases: []string{"location", "gps", "ip address", "geolocation", "precise geolocation"}},
	{Name: "behavioralData", Phrases: []string{"browsing history", "search history", "click data", "behavioral", "messages", "posts", "likes"}},
	{Name: "minimalCollection", Phrases: []string{"minimal", "necessary", "essential", "required only"}},
	{Name: "anonymized", Phrases: []string{"anonymized", "anonymous", "de-identified", "pseudonymized"}},
	{Name: "extensiveCollection", Phrases: []string{"any other data", "everything", "all data", "comprehensive", "extensive"}},
}

// userRightsIndicators categorize the rights a policy grants.
var userRightsIndicators = IndicatorSet{
	{Name: "access", Phrases: []string{"access", "view", "see", "obtain"}},
	{Name: "modify", Phrases: []string{"modify", "update", "correct", "edit"}},
	{Name: "delete", Phrases: []string{"delete", "remove", "erase", "forget"}},
	{Name: "portability", Phrases: []string{"portable", "export", "download", "transfer"}},
	{Name: "optOut", Phrases: []string{"opt out", "opt-out", "unsubscribe", "withdraw"}},
}

// securityMeasureIndicators categorize the protections a policy describes.
var securityMeasureIndicators = IndicatorSet{
	{Name: "encryption", Phrases: []string{"encrypt", "encryption", "ssl", "tls", "secure"}},
	{Name: "accessControl", Phrases: []string{"access control", "authentication", "authorization", "password"}},
	{Name: "monitoring", Phrases: []string{"monitor", "audit", "log", "detect"}},
	{Name: "training", Phrases: []string{"training", "employee", "staff", "personnel"}},
	{Name: "incident", Phrases: []string{"incident", "breach", "notification", "response"}},
}

// thirdPartyTerms flag any third-party involvement; every matching term is
// recorded on the detail.
var thirdPartyTerms = []string{"third party", "third-party", "partner", "vendor", "service provider", "affiliate"}

// complexLegaleseTerms penalize clarity when more than two are present.
var complexLegaleseTerms = []string{"notwithstanding", "hereby", "aforementioned", "pursuant to"}

// retentionTimeframeUnits signal that a policy states concrete retention
// periods.
var retentionTimeframeUnits = []string{"days", "weeks", "months", "years"}

// PolicyScorer maps raw privacy policy text to a weighted multi-factor
// score. All factor scorers are pure functions of the normalized text; the
// scorer is total over any string input, including empty text.
type PolicyScorer struct{}

// NewPolicyScorer creates a new policy scorer
func NewPolicyScorer() *PolicyScorer {
	return &PolicyScorer{}
}

// ScorePolicy scores one policy text and returns the complete result:
// per-factor breakdown, explanatory details, letter grade and
// recommendations. It never fails; pathological input degrades to base
// scores with every recommendation firing.
func (p *PolicyScorer) ScorePolicy(content string) *domain.ScoreResult {
	text := NormalizeText(content)

	breakdown := make(map[string]int, len(domain.FactorOrder))
	details := make(map[string]domain.FactorDetail, len(domain.FactorOrder))
	total := 0

	for _, factor := range domain.FactorOrder {
		var score int
		var detail domain.FactorDetail
		switch factor {
		case domain.FactorDataCollection:
			score, detail = p.scoreDataCollection(text)
		case domain.FactorDataSharing:
			score, detail = p.scoreDataSharing(text)
		case domain.FactorUserRights:
			score, detail = p.scoreUserRights(text)
		case domain.FactorDataSecurity:
			score, detail = p.scoreDataSecurity(text)
		case domain.FactorClarity:
			score, detail = p.scoreClarity(text)
		case domain.FactorDataRetention:
			score, detail = p.scoreDataRetention(text)
		case domain.FactorConsentMechanisms:
			score, detail = p.scoreConsentMechanisms(text)
		}
		breakdown[factor] = score
		details[factor] = detail
		total += score
	}

	return &domain.ScoreResult{
		TotalScore:      total,
		LetterGrade:     LetterGrade(total),
		Breakdown:       breakdown,
		Details:         details,
		Recommendations: Recommendations(breakdown),
	}
}

// scoreDataCollection scores data collection practices (max 20).
func (p *PolicyScorer) scoreDataCollection(text string) (int, domain.FactorDetail) {
	score := 0
	detail := domain.FactorDetail{}

	collected := MatchCategories(text, dataCollectionIndicators)
	detail.Collected = collected

	if hasCategory(collected, "extensiveCollection") {
		score -= 8
		detail.Negative = append(detail.Negative, "Extensive/blanket data collection")
	}
	if hasCategory(collected, "sensitiveData") {
		score -= 6
		detail.Negative = append(detail.Negative, "Sensitive data collection detected")
	}
	if hasCategory(collected, "behavioralData") {
		score -= 4
		detail.Negative = append(detail.Negative, "Behavioral data collection")
	}
	if hasCategory(collected, "locationData") {
		score -= 3
		detail.Negative = append(detail.Negative, "Location data collection")
	}

	if ContainsAny(text, []string{"any other", "everything", "all data"}) {
		score -= 5
		detail.Negative = append(detail.Negative, "Broad/blanket data collection language")
	}

	if hasCategory(collected, "minimalCollection") {
		score += 8
		detail.Positive = append(detail.Positive, "Minimal data collection mentioned")
	}
	if hasCategory(collected, "anonymized") {
		score += 6
		detail.Positive = append(detail.Positive, "Data anonymization practices mentioned")
	}
	if strings.Contains(text, "collect") && strings.Contains(text, "purpose") {
		score += 3
		detail.Positive = append(detail.Positive, "Clear purpose for data collection")
	}

	if len(collected) > 4 {
		score -= 4
		detail.Negative = append(detail.Negative, "Extensive data collection detected")
	}

	return clampScore(score+dataCollectionBase, domain.FactorMaxPoints[domain.FactorDataCollection]), detail
}

// scoreDataSharing scores third-party sharing practices (max 15).
func (p *PolicyScorer) scoreDataSharing(text string) (int, domain.FactorDetail) {
	score := 0
	detail := domain.FactorDetail{}

	for _, term := range thirdPartyTerms {
		if strings.Contains(text, term) {
			detail.ThirdParties = append(detail.ThirdParties, term)
		}
	}

	if len(detail.ThirdParties) > 0 {
		if ContainsAny(text, []string{"any third party", "business purposes"}) {
			score -= 8
			detail.Negative = append(detail.Negative, "Broad third-party sharing without restrictions")
		}
		if ContainsAny(text, []string{"sell", "rent"}) {
			score -= 8
			detail.Negative = append(detail.Negative, "Data selling practices detected")
		}

		if match := partnerCountRegex.FindStringSubmatch(text); match != nil {
			if count, err := strconv.Atoi(match[1]); err == nil {
				if count > 20 {
					score -= 6
					detail.Negative = append(detail.Negative, fmt.Sprintf("Sharing with %d partners", count))
				} else if count > 10 {
					score -= 3
					detail.Negative = append(detail.Negative, fmt.Sprintf("Sharing with %d partners", count))
				}
			}
		}

		if ContainsAny(text, []string{"specific", "named", "list"}) {
			score += 5
			detail.Positive = append(detail.Positive, "Specific third parties mentioned")
		}
		if strings.Contains(text, "consent") && strings.Contains(text, "third party") {
			score += 4
			detail.Positive = append(detail.Positive, "Consent required for third-party sharing")
		}
		if strings.Contains(text, "minimal") && strings.Contains(text, "share") {
			score += 3
			detail.Positive = append(detail.Positive, "Minimal data sharing practices")
		}
		if ContainsAny(text, []string{"as required", "deem necessary"}) {
			score -= 4
			detail.Negative = append(detail.Negative, "Broad sharing discretion")
		}
	} else {
		score += 8
		detail.Positive = append(detail.Positive, "No third-party sharing mentioned")
	}

	return clampScore(score+dataSharingBase, domain.FactorMaxPoints[domain.FactorDataSharing]), detail
}

// scoreUserRights scores user rights and control (max 15).
func (p *PolicyScorer) scoreUserRights(text string) (int, domain.FactorDetail) {
	score := 0
	detail := domain.FactorDetail{}

	rights := MatchCategories(text, userRightsIndicators)
	detail.Rights = rights

	if ContainsAny(text, []string{"may be retained", "business reasons", "legal reasons"}) {
		score -= 4
		detail.Negative = append(detail.Negative, "Limited deletion rights")
	}
	if strings.Contains(text, "up to") && strings.Contains(text, "days") && strings.Contains(text, "process") {
		score -= 2
		detail.Negative = append(detail.Negative, "Slow processing of requests")
	}
	if ContainsAny(text, []string{"not easily accessible", "difficult", "complicated"}) {
		score -= 3
		detail.Negative = append(detail.Negative, "Difficult to exercise rights")
	}

	if hasCategory(rights, "access") {
		score += 3
		detail.Positive = append(detail.Positive, "Right to access data")
	}
	if hasCategory(rights, "modify") {
		score += 3
		detail.Positive = append(detail.Positive, "Right to modify data")
	}
	if hasCategory(rights, "delete") {
		score += 4
		detail.Positive = append(detail.Positive, "Right to delete data")
	}
	if hasCategory(rights, "portability") {
		score += 2
		detail.Positive = append(detail.Positive, "Data portability rights")
	}
	if hasCategory(rights, "optOut") {
		score += 3
		detail.Positive = append(detail.Positive, "Opt-out rights")
	}

	if strings.Contains(text, "contact") && strings.Contains(text, "request") {
		score += 2
		detail.Positive = append(detail.Positive, "Clear process for exercising rights")
	}
	if len(rights) < 3 {
		score -= 2
		detail.Negative = append(detail.Negative, "Limited user rights provided")
	}

	return clampScore(score+userRightsBase, domain.FactorMaxPoints[domain.FactorUserRights]), detail
}

// scoreDataSecurity scores described security measures (max 10).
func (p *PolicyScorer) scoreDataSecurity(text string) (int, domain.FactorDetail) {
	score := 0
	detail := domain.FactorDetail{}

	measures := MatchCategories(text, securityMeasureIndicators)
	detail.Measures = measures

	if hasCategory(measures, "encryption") {
		score += 3
		detail.Positive = append(detail.Positive, "Encryption mentioned")
	}
	if hasCategory(measures, "accessControl") {
		score += 2
		detail.Positive = append(detail.Positive, "Access controls mentioned")
	}
	if hasCategory(measures, "monitoring") {
		score += 2
		detail.Positive = append(detail.Positive, "Security monitoring mentioned")
	}
	if hasCategory(measures, "training") {
		score += 1
		detail.Positive = append(detail.Positive, "Employee training mentioned")
	}
	if hasCategory(measures, "incident") {
		score += 2
		detail.Positive = append(detail.Positive, "Incident response plan mentioned")
	}

	if len(measures) == 0 {
		score -= 2
		detail.Negative = append(detail.Negative, "No security measures mentioned")
	}

	return clampScore(score+dataSecurityBase, domain.FactorMaxPoints[domain.FactorDataSecurity]), detail
}

// scoreClarity scores readability and transparency (max 15).
func (p *PolicyScorer) scoreClarity(text string) (int, domain.FactorDetail) {
	score := 0
	detail := domain.FactorDetail{}

	if ContainsAny(text, []string{"clear", "plain language", "understandable"}) {
		score += 3
		detail.Positive = append(detail.Positive, "Clear language commitment")
	}
	if ContainsAny(text, []string{"example", "such as", "including"}) {
		score += 2
		detail.Positive = append(detail.Positive, "Examples provided")
	}
	if strings.Contains(text, "contact") && ContainsAny(text, []string{"email", "phone", "address"}) {
		score += 3
		detail.Positive = append(detail.Positive, "Contact information provided")
	}
	if strings.Contains(text, "update") && strings.Contains(text, "policy") {
		score += 2
		detail.Positive = append(detail.Positive, "Policy update process mentioned")
	}
	if ContainsAny(text, []string{"section", "part", "chapter"}) {
		score += 2
		detail.Positive = append(detail.Positive, "Structured policy format")
	}

	if CountDistinctPhrases(text, complexLegaleseTerms) > 2 {
		score -= 2
		detail.Negative = append(detail.Negative, "Complex legal language detected")
	}
	if ContainsAny(text, []string{"deem necessary", "as required", "any other"}) {
		score -= 3
		detail.Negative = append(detail.Negative, "Vague and broad language")
	}

	return clampScore(score+clarityBase, domain.FactorMaxPoints[domain.FactorClarity]), detail
}

// scoreDataRetention scores retention and deletion practices (max 10).
func (p *PolicyScorer) scoreDataRetention(text string) (int, domain.FactorDetail) {
	score := 0
	detail := domain.FactorDetail{}

	if ContainsAny(text, []string{"indefinitely", "as long as", "deem necessary"}) {
		score -= 6
		detail.Negative = append(detail.Negative, "Indefinite data retention")
	}
	if ContainsAny(text, []string{"even after you delete", "retained after deletion"}) {
		score -= 4
		detail.Negative = append(detail.Negative, "Data retained after account deletion")
	}

	if ContainsAny(text, []string{"retain", "retention", "keep"}) {
		score += 3
		detail.Positive = append(detail.Positive, "Data retention policy mentioned")
	}
	if ContainsAny(text, retentionTimeframeUnits) {
		score += 2
		detail.Positive = append(detail.Positive, "Specific retention timeframes")
	}
	if strings.Contains(text, "delete") && strings.Contains(text, "process") {
		score += 3
		detail.Positive = append(detail.Positive, "Deletion process described")
	}
	if strings.Contains(text, "automatic") && strings.Contains(text, "delete") {
		score += 2
		detail.Positive = append(detail.Positive, "Automatic deletion mentioned")
	}

	return clampScore(score+dataRetentionBase, domain.FactorMaxPoints[domain.FactorDataRetention]), detail
}

// scoreConsentMechanisms scores consent and opt-out mechanisms (max 15).
func (p *PolicyScorer) scoreConsentMechanisms(text string) (int, domain.FactorDetail) {
	score := 0
	detail := domain.FactorDetail{}

	if strings.Contains(text, "implied") && strings.Contains(text, "consent") {
		score -= 6
		detail.Negative = append(detail.Negative, "Implied consent practices")
	}
	if ContainsAny(text, []string{"not easily accessible", "difficult to find"}) {
		score -= 4
		detail.Negative = append(detail.Negative, "Difficult opt-out mechanisms")
	}
	if strings.Contains(text, "up to") && strings.Contains(text, "days") && strings.Contains(text, "process") {
		score -= 3
		detail.Negative = append(detail.Negative, "Slow opt-out processing")
	}

	if strings.Contains(text, "consent") && strings.Contains(text, "required") {
		score += 4
		detail.Positive = append(detail.Positive, "Explicit consent required")
	}
	if ContainsAny(text, []string{"opt out", "opt-out", "withdraw"}) {
		score += 4
		detail.Positive = append(detail.Positive, "Opt-out mechanisms available")
	}
	if ContainsAny(text, []string{"granular", "specific", "category"}) {
		score += 3
		detail.Positive = append(detail.Positive, "Granular consent options")
	}
	if strings.Contains(text, "easy") && strings.Contains(text, "withdraw") {
		score += 2
		detail.Positive = append(detail.Positive, "Easy consent withdrawal")
	}
	if strings.Contains(text, "default") && strings.Contains(text, "opt in") {
		score += 2
		detail.Positive = append(detail.Positive, "Opt-in default settings")
	}

	return clampScore(score+consentMechanismsBase, domain.FactorMaxPoints[domain.FactorConsentMechanisms]), detail
}

// clampScore bounds a score to [0, max].
func clampScore(score, max int) int {
	if score < 0 {
		return 0
	}
	if score > max {
		return max
	}
	return score
}
