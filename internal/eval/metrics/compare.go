package metrics

import (
	"regexp"
	"strings"

	"github.com/learnmore-edu/extractor/internal/models"
)

// FieldMatch is the comparison outcome for a single question field
type FieldMatch struct {
	Expected string  `json:"expected" yaml:"expected"`
	Actual   string  `json:"actual" yaml:"actual"`
	Score    float64 `json:"score" yaml:"score"`
	Method   string  `json:"method" yaml:"method"`
}

// QuestionComparison holds per-field scores for one recognized question
// against its labeled ground truth
type QuestionComparison struct {
	Content      FieldMatch `json:"content" yaml:"content"`
	Type         FieldMatch `json:"type" yaml:"type"`
	Answer       FieldMatch `json:"answer" yaml:"answer"`
	OverallScore float64    `json:"overall_score" yaml:"overall_score"`
}

// CompareQuestion scores a recognized candidate against the labeled record.
// Content and answer tolerate fuzzy matches; type is graded exact-or-nothing
// since it drives downstream answer normalization.
func CompareQuestion(expectedContent, expectedType, expectedAnswer string, candidate models.QuestionCandidate) *QuestionComparison {
	comparison := &QuestionComparison{
		Content: compareField(expectedContent, candidate.Content),
		Type:    compareTypeField(expectedType, string(candidate.Type)),
		Answer:  compareField(expectedAnswer, candidate.Answer.String()),
	}

	comparison.OverallScore = (comparison.Content.Score + comparison.Type.Score + comparison.Answer.Score) / 3.0
	return comparison
}

// compareField compares two field values and returns a match score
func compareField(expected, actual string) FieldMatch {
	match := FieldMatch{
		Expected: expected,
		Actual:   actual,
	}

	expectedNorm := normalizeForComparison(expected)
	actualNorm := normalizeForComparison(actual)

	// Both empty
	if expectedNorm == "" && actualNorm == "" {
		match.Score = 0.5
		match.Method = "both_missing"
		return match
	}

	// One is empty
	if expectedNorm == "" {
		match.Score = 0.0
		match.Method = "expected_missing"
		return match
	}
	if actualNorm == "" {
		match.Score = 0.0
		match.Method = "actual_missing"
		return match
	}

	// Exact match after normalization
	if expectedNorm == actualNorm {
		match.Score = 1.0
		match.Method = "exact"
		return match
	}

	// Substring match
	if strings.Contains(expectedNorm, actualNorm) || strings.Contains(actualNorm, expectedNorm) {
		match.Score = 0.8
		match.Method = "substring"
		return match
	}

	// Fuzzy match using Levenshtein distance
	similarity := calculateSimilarity(expectedNorm, actualNorm)
	match.Score = similarity
	if similarity > 0.7 {
		match.Method = "fuzzy_high"
	} else if similarity > 0.4 {
		match.Method = "fuzzy_medium"
	} else {
		match.Method = "no_match"
	}

	return match
}

// compareTypeField grades question types with no partial credit
func compareTypeField(expected, actual string) FieldMatch {
	match := FieldMatch{
		Expected: expected,
		Actual:   actual,
	}

	expectedNorm := normalizeForComparison(expected)
	actualNorm := normalizeForComparison(actual)

	switch {
	case expectedNorm == "" && actualNorm == "":
		match.Score = 0.5
		match.Method = "both_missing"
	case expectedNorm == "":
		match.Method = "expected_missing"
	case actualNorm == "":
		match.Method = "actual_missing"
	case expectedNorm == actualNorm:
		match.Score = 1.0
		match.Method = "exact"
	default:
		match.Method = "no_match"
	}

	return match
}

// normalizeForComparison normalizes a string for comparison
func normalizeForComparison(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	// Remove punctuation
	s = regexp.MustCompile(`[^\w\s]`).ReplaceAllString(s, "")
	// Normalize whitespace
	s = regexp.MustCompile(`\s+`).ReplaceAllString(s, " ")
	return s
}

// calculateSimilarity calculates string similarity using Levenshtein distance
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	maxLen := max(len(s1), len(s2))
	if maxLen == 0 {
		return 1.0
	}

	distance := levenshteinDistance(s1, s2)
	return 1.0 - float64(distance)/float64(maxLen)
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)

	rows := len(r1) + 1
	cols := len(r2) + 1

	matrix := make([][]int, rows)
	for i := range matrix {
		matrix[i] = make([]int, cols)
		matrix[i][0] = i
	}
	for j := 1; j < cols; j++ {
		matrix[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[rows-1][cols-1]
}
