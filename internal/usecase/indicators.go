package usecase

import (
	"regexp"
	"strings"
)

// Package-level compiled regex pattern for performance
var whitespaceRegex = regexp.MustCompile(`\s+`)

// IndicatorCategory pairs a category name with the phrases that trigger it.
// Categories are kept in slices rather than maps so matching and detail
// output stay deterministic.
type IndicatorCategory struct {
	Name    string
	Phrases []string
}

// IndicatorSet is an ordered list of indicator categories consumed by
// MatchCategories.
type IndicatorSet []IndicatorCategory

// NormalizeText lowercases text and collapses all whitespace runs to single
// spaces. It is total over any string input; empty input yields "".
func NormalizeText(text string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(strings.ToLower(text), " "))
}

// MatchCategories returns the names of every category with at least one
// phrase appearing as a substring of text. Scanning a category stops at its
// first hit. Text is expected to be normalized already.
func MatchCategories(text string, set IndicatorSet) []string {
	var matched []string
	for _, category := range set {
		for _, phrase := range category.Phrases {
			if strings.Contains(text, phrase) {
				matched = append(matched, category.Name)
				break
			}
		}
	}
	return matched
}

// CountDistinctPhrases returns how many of the given phrases appear as
// substrings of text.
func CountDistinctPhrases(text string, phrases []string) int {
	count := 0
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			count++
		}
	}
	return count
}

// ContainsAny reports whether any of the phrases is a substring of text.
func ContainsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// hasCategory checks a MatchCategories result for a category name.
func hasCategory(matched []string, name string) bool {
	for _, m := range matched {
		if m == name {
			return true
		}
	}
	return false
}
