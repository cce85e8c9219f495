package evidence

import (
	"persuasive-dialogue-be/pkg/store"
)

// FilterByScore drops snippets scoring below min. Survivors keep their order,
// so applying the same threshold twice changes nothing.
func FilterByScore(snippets []store.Evidence, min float64) []store.Evidence {
	filtered := make([]store.Evidence, 0, len(snippets))
	for _, s := range snippets {
		if s.Score >= min {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// FilterByStandpoint keeps snippets tagged with the session standpoint and
// every untagged snippet. Untagged evidence is neutral and retained for both
// standpoints.
func FilterByStandpoint(snippets []store.Evidence, standpoint store.Standpoint) []store.Evidence {
	filtered := make([]store.Evidence, 0, len(snippets))
	for _, s := range snippets {
		if s.StandpointTag == nil || *s.StandpointTag == standpoint {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// BestScore returns the highest score, or 0 for an empty set
func BestScore(snippets []store.Evidence) float64 {
	best := 0.0
	for _, s := range snippets {
		if s.Score > best {
			best = s.Score
		}
	}
	return best
}
