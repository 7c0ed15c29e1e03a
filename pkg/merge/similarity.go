package merge

import (
	"bytes"
	"strings"
)

// DefaultSimilarity is the built-in content similarity metric: the share
// of lines the two contents have in common, counted as a multiset, scaled
// to [0,100]. Identical contents score 100; disjoint contents score 0.
func DefaultSimilarity(a, b []byte) int {
	if bytes.Equal(a, b) {
		return 100
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	linesA := strings.Split(string(a), "\n")
	linesB := strings.Split(string(b), "\n")

	counts := make(map[string]int, len(linesA))
	for _, l := range linesA {
		counts[l]++
	}

	common := 0
	for _, l := range linesB {
		if counts[l] > 0 {
			counts[l]--
			common++
		}
	}

	return 2 * common * 100 / (len(linesA) + len(linesB))
}
