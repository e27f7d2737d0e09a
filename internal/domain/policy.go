package domain

// Factor names as they appear in score breakdowns and details. The order of
// FactorOrder is the declaration order used for recommendation generation.
const (
	FactorDataCollection    = "dataCollection"
	FactorDataSharing       = "dataSharing"
	FactorUserRights        = "userRights"
	FactorDataSecurity      = "dataSecurity"
	FactorClarity           = "clarity"
	FactorDataRetention     = "dataRetention"
	FactorConsentMechanisms = "consentMechanisms"
)

// FactorOrder fixes the iteration order over factors everywhere a stable
// order matters (aggregation, recommendations, JSON detail assembly).
var FactorOrder = []string{
	FactorDataCollection,
	FactorDataSharing,
	FactorUserRights,
	FactorDataSecurity,
	FactorClarity,
	FactorDataRetention,
	FactorConsentMechanisms,
}

// FactorMaxPoints maps each factor to its score ceiling. The maxima sum to
// 100, which bounds the total score.
var FactorMaxPoints = map[string]int{
	FactorDataCollection:    20,
	FactorDataSharing:       15,
	FactorUserRights:        15,
	FactorDataSecurity:      10,
	FactorClarity:           15,
	FactorDataRetention:     10,
	FactorConsentMechanisms: 15,
}

// ScoreResult is the complete outcome of scoring one policy text. It is
// produced fresh per call and never mutated.
type ScoreResult struct {
	TotalScore      int                     `json:"totalScore"`
	LetterGrade     string                  `json:"letterGrade"`
	Breakdown       map[string]int          `json:"breakdown"`
	Details         map[string]FactorDetail `json:"details"`
	Recommendations []string                `json:"recommendations"`
}

// FactorDetail explains one factor's score: which indicator categories were
// matched and the human-readable findings. The category slice used varies by
// factor (collected data types, third-party terms, rights, security
// measures); factors without one leave all four empty.
type FactorDetail struct {
	Collected    []string `json:"collected,omitempty"`
	ThirdParties []string `json:"thirdParties,omitempty"`
	Rights       []string `json:"rights,omitempty"`
	Measures     []string `json:"measures,omitempty"`
	Positive     []string `json:"positive"`
	Negative     []string `json:"negative"`
}

// PolicyAnalysis wraps a ScoreResult with the request context and caching
// metadata, mirroring what the analyze endpoint returns.
type PolicyAnalysis struct {
	Domain    string      `json:"domain"`
	PolicyURL string      `json:"policyUrl,omitempty"`
	Result    ScoreResult `json:"result"`
	TextBytes int         `json:"textBytes"`
	Source    string      `json:"source"` // "Live" or "Cache"
}
