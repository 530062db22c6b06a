package errors

import "fmt"

// maxSuggestionDistance bounds how different a candidate may be to be suggested.
const maxSuggestionDistance = 3

// SuggestName returns a "Did you mean" hint for unknown when a close
// candidate exists, or "" otherwise.
func SuggestName(unknown string, candidates []string) string {
	best, ok := closest(unknown, candidates)
	if !ok {
		return ""
	}
	return fmt.Sprintf("Did you mean '%s'?", best)
}

// SuggestQualified hints at qualifying an ambiguous element name.
func SuggestQualified(qualifiedNames []string) string {
	if len(qualifiedNames) == 0 {
		return ""
	}
	return fmt.Sprintf("Qualify the name, e.g. '%s'", qualifiedNames[0])
}

func closest(unknown string, candidates []string) (string, bool) {
	minDistance := maxSuggestionDistance + 1
	var bestMatch string
	for _, c := range candidates {
		if c == unknown {
			continue
		}
		if d := levenshteinDistance(unknown, c); d < minDistance {
			minDistance = d
			bestMatch = c
		}
	}
	if bestMatch == "" || minDistance >= len(unknown) {
		return "", false
	}
	return bestMatch, true
}

// levenshteinDistance computes the Levenshtein distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}

	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // Deletion
				matrix[i][j-1]+1,      // Insertion
				matrix[i-1][j-1]+cost, // Substitution
			)
		}
	}

	return matrix[len1][len2]
}
