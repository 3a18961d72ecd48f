// Package diagnosis matches equipment-failure complaints against a catalog of known issues.
package diagnosis

import (
	"math"
	"strconv"
	"strings"
)

const (
	// exactPhraseWeight is credited when a keyword phrase appears verbatim in the complaint.
	exactPhraseWeight = 2.0
	// keywordSeparator splits an issue's keyword list into phrases.
	keywordSeparator = "|"
)

// Score returns how well complaint matches a pipe-separated keyword list, in [0, 1].
//
// Each phrase found verbatim in the complaint earns 2 points. A phrase that is not
// found verbatim earns the fraction of its words present in the complaint. The sum
// is normalized by the maximum of 2 points per phrase and rounded to 2 decimals.
func Score(complaint, keywords string) float64 {
	if keywords == "" {
		return 0.0
	}

	complaintLower := strings.ToLower(complaint)
	complaintWords := wordSet(complaintLower)

	phrases := strings.Split(keywords, keywordSeparator)
	totalKeywords := len(phrases)
	if totalKeywords == 0 {
		return 0.0
	}

	matches := 0.0
	for _, phrase := range phrases {
		matches += phraseScore(complaintLower, complaintWords, strings.ToLower(strings.TrimSpace(phrase)))
	}

	score := math.Min(matches/(float64(totalKeywords)*exactPhraseWeight), 1.0)
	return roundScore(score)
}

// phraseScore scores a single lowercased phrase against the lowercased complaint.
func phraseScore(complaintLower string, complaintWords map[string]struct{}, phrase string) float64 {
	// The empty phrase is a substring of every complaint.
	if strings.Contains(complaintLower, phrase) {
		return exactPhraseWeight
	}

	phraseWords := wordSet(phrase)
	if len(phraseWords) == 0 {
		return 0.0
	}

	overlap := 0
	for word := range phraseWords {
		if _, ok := complaintWords[word]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(phraseWords))
}

// wordSet splits text on whitespace into a set of words.
func wordSet(text string) map[string]struct{} {
	words := strings.Fields(text)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// roundScore rounds to 2 decimal places. Exact binary ties round half to even,
// so 0.625 becomes 0.62 and 0.875 becomes 0.88.
func roundScore(score float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(score, 'f', 2, 64), 64)
	if err != nil {
		return score
	}
	return rounded
}
