package usecase

import "github.com/cookielens/backend/internal/domain"

// recommendationThresholds hold the per-factor score below which the
// corresponding recommendation fires.
var recommendationThresholds = map[string]int{
	domain.FactorDataCollection:    12,
	domain.FactorDataSharing:       8,
	domain.FactorUserRights:        8,
	domain.FactorDataSecurity:      6,
	domain.FactorClarity:           8,
	domain.FactorDataRetention:     6,
	domain.FactorConsentMechanisms: 8,
}

var recommendationText = map[string]string{
	domain.FactorDataCollection:    "Improve data collection transparency and minimize data collection",
	domain.FactorDataSharing:       "Provide clearer information about third-party data sharing and limit sharing scope",
	domain.FactorUserRights:        "Enhance user rights and provide clear processes for data access/modification",
	domain.FactorDataSecurity:      "Strengthen data security measures and provide more security details",
	domain.FactorClarity:           "Improve policy clarity and use more accessible language",
	domain.FactorDataRetention:     "Provide clearer data retention policies and deletion processes",
	domain.FactorConsentMechanisms: "Improve consent mechanisms and provide better opt-out options",
}

// LetterGrade maps a total score on the 0-100 scale to a letter grade.
func LetterGrade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 75:
		return "B"
	case score >= 60:
		return "C"
	case score >= 45:
		return "D"
	case score >= 30:
		return "E"
	default:
		return "F"
	}
}

// Recommendations returns improvement suggestions for every factor scoring
// below its threshold, in fixed factor order so identical breakdowns always
// produce identical output.
func Recommendations(breakdown map[string]int) []string {
	recommendations := make([]string, 0, len(domain.FactorOrder))
	for _, factor := range domain.FactorOrder {
		if breakdown[factor] < recommendationThresholds[factor] {
			recommendations = append(recommendations, recommendationText[factor])
		}
	}
	return recommendations
}
