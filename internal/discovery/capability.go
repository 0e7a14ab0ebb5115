package discovery

import (
	"github.com/mcpdex/mcpdex/internal/filter"
)

// DefaultPreferredWeight is how much a preferred-tag hit counts relative to a
// required-tag hit. Tunable per engine via WithPreferredWeight.
const DefaultPreferredWeight = 0.7

// matchCapabilities scores a candidate's tag set against the capability query.
// Returns the match score in [0, 1] and whether the candidate survives.
//
// Elimination rules:
//   - any exclude tag present eliminates the candidate
//   - operator AND eliminates unless every required tag is present
//   - operator NOT eliminates when any required tag is present
//   - a candidate matching nothing at all is eliminated
//
// Score = weighted hits / weighted total over required ∪ preferred, with
// preferred hits counting at preferredWeight of a required hit. The
// minimum_match cutoff applies to this combined score.
func matchCapabilities(tags []string, q CapabilityQuery, preferredWeight float64) (float64, bool) {
	tagSet := filter.NormalizeSet(tags)

	for _, e := range q.Exclude {
		if _, ok := tagSet[e]; ok {
			return 0, false
		}
	}

	required := dedupe(q.Required)
	preferred := dedupe(q.Preferred)
	// A tag named in both sets counts once, as required.
	preferred = subtract(preferred, required)

	if q.Operator == OperatorNot {
		for _, r := range required {
			if _, ok := tagSet[r]; ok {
				return 0, false
			}
		}
		// Only preferred tags contribute to the score below.
		required = nil
	}

	if len(required) == 0 && len(preferred) == 0 {
		// Nothing to score against; the candidate passes with a neutral score.
		return 1, true
	}

	requiredHits := 0
	for _, r := range required {
		if _, ok := tagSet[r]; ok {
			requiredHits++
		}
	}
	if q.Operator == OperatorAnd && requiredHits < len(required) {
		return 0, false
	}

	preferredHits := 0
	for _, p := range preferred {
		if _, ok := tagSet[p]; ok {
			preferredHits++
		}
	}

	if requiredHits == 0 && preferredHits == 0 {
		return 0, false
	}

	total := float64(len(required)) + preferredWeight*float64(len(preferred))
	score := (float64(requiredHits) + preferredWeight*float64(preferredHits)) / total

	if score < q.MinimumMatch {
		return score, false
	}
	return score, true
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func subtract(values, remove []string) []string {
	removeSet := filter.NormalizeSet(remove)
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := removeSet[v]; ok {
			continue
		}
		out = append(out, v)
	}
	return out
}
