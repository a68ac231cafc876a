package paramcore

import (
	"strings"

	"golang.org/x/text/cases"
)

var fuzzyCaser = cases.Fold()

// normalizeForMatch lowercases and folds case per Unicode rules, and
// normalizes path separators to "/", so "Characters\\Good\\Hero" and
// "characters/good/hero" compare equal.
func normalizeForMatch(s string) string {
	s = strings.ReplaceAll(s, "\\", "/")
	return fuzzyCaser.String(s)
}

// fuzzyBestMatch finds the candidate closest to query by normalized edit
// distance, the same tolerance-by-ratio approach used elsewhere in this
// codebase for near-duplicate text comparison. An exact normalized match
// always wins outright; otherwise the closest candidate under a 0.3
// normalized-distance threshold is returned. If no candidate is that close,
// the shortest candidate whose normalized name contains the normalized
// query is returned (so "detail" resolves to "detail-canonical").
func fuzzyBestMatch(query string, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	nq := normalizeForMatch(query)

	best := ""
	bestDist := -1.0
	for _, c := range candidates {
		nc := normalizeForMatch(c)
		if nc == nq {
			return c, true
		}
		maxLen := max(len(nc), len(nq))
		if maxLen == 0 {
			continue
		}
		dist := float64(levenshteinDistance(nq, nc)) / float64(maxLen)
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = c
		}
	}
	if bestDist >= 0 && bestDist < 0.3 {
		return best, true
	}
	if nq == "" {
		return "", false
	}
	best = ""
	for _, c := range candidates {
		if strings.Contains(normalizeForMatch(c), nq) && (best == "" || len(c) < len(best)) {
			best = c
		}
	}
	return best, best != ""
}

// levenshteinDistance computes the edit distance between a and b using a
// two-row dynamic-programming table.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	aRunes := []rune(a)
	bRunes := []rune(b)

	prev := make([]int, len(bRunes)+1)
	curr := make([]int, len(bRunes)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(aRunes); i++ {
		curr[0] = i
		for j := 1; j <= len(bRunes); j++ {
			cost := 1
			if aRunes[i-1] == bRunes[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min(del, min(ins, sub))
		}
		prev, curr = curr, prev
	}
	return prev[len(bRunes)]
}
