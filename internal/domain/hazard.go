package domain

import "strings"

// hazardVocabulary is the fixed set of substrings that flag a weather
// status as dangerous.
var hazardVocabulary = []string{
	"thunderstorm",
	"rain",
	"snow",
	"tornado",
	"hurricane",
}

// IsHazardous reports whether the status text contains any hazard
// vocabulary entry, case-insensitively. Matching is by substring, not
// whole word, so "rain" inside "drain" or "rainbow" also matches; this
// imprecision is documented source behavior, not a defect.
func IsHazardous(status string) bool {
	s := strings.ToLower(status)
	for _, word := range hazardVocabulary {
		if strings.Contains(s, word) {
			return true
		}
	}
	return false
}
