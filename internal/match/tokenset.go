package match

import (
	"sort"
	"strings"
)

// TokenSetRatio scores two strings in [0,1] using token-set similarity:
// both sides are split into unique word sets, and the score is the best
// normalized indel similarity among the sorted intersection and each side's
// intersection-plus-remainder string. The metric is insensitive to word
// order and duplication, which is what legal names need ("Inc.",
// "Corporation" boilerplate, reordered words across filings).
//
// A query whose tokens are a subset of the candidate's tokens scores 1.0.
func TokenSetRatio(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var inter, diffA, diffB []string
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			inter = append(inter, tok)
		} else {
			diffA = append(diffA, tok)
		}
	}
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			diffB = append(diffB, tok)
		}
	}
	sort.Strings(inter)
	sort.Strings(diffA)
	sort.Strings(diffB)

	base := strings.Join(inter, " ")
	combinedA := joinNonEmpty(base, strings.Join(diffA, " "))
	combinedB := joinNonEmpty(base, strings.Join(diffB, " "))

	best := indelRatio(combinedA, combinedB)
	if base != "" {
		// Sorted intersection versus each combined string. When one token
		// set contains the other, one of these comparisons is an exact
		// match.
		if r := indelRatio(base, combinedA); r > best {
			best = r
		}
		if r := indelRatio(base, combinedB); r > best {
			best = r
		}
	}
	return best
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

// indelRatio is the normalized insert/delete similarity:
// 2*LCS(a,b) / (len(a)+len(b)).
func indelRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	lcs := lcsLength(a, b)
	return float64(2*lcs) / float64(len(a)+len(b))
}

// lcsLength computes the longest common subsequence length with a rolling
// row, keeping memory linear in the shorter string.
func lcsLength(a, b string) int {
	if len(b) > len(a) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
