package calculation

import (
	"github.com/agnivade/levenshtein"
)

// maxSuggestionDistance bounds how different a suggested code may be.
const maxSuggestionDistance = 2

// SuggestJurisdiction returns the known code closest to code by edit
// distance. known is expected in sorted order so ties resolve stably.
func SuggestJurisdiction(code string, known []string) (string, bool) {
	best := ""
	bestDist := maxSuggestionDistance + 1
	for _, candidate := range known {
		d := levenshtein.ComputeDistance(code, candidate)
		if d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if best == "" || bestDist >= len(code) {
		return "", false
	}
	return best, true
}
