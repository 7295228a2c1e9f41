// Package similarity implements the pairwise scoring and aggregation
// engine: lexical Jaccard similarity, embedding-based semantic
// similarity, weighted combination with confidence bands, and
// median-of-best-match repository aggregation.
package similarity

import "strings"

// TokenSimilarity returns the Jaccard index of the unique
// whitespace-delimited token sets of two normalized texts.
// Symmetric and order-independent by construction. Returns 0.0 when
// either set is empty.
func TokenSimilarity(textA, textB string) float64 {
	setA := tokenSet(textA)
	setB := tokenSet(textB)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(text) {
		set[tok] = struct{}{}
	}
	return set
}
