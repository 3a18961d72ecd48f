package diagnosis

import (
	"math"
	"sort"

	"github.com/jonathan/fieldsync/internal/types"
)

const (
	// errorCodeBoost is added to an issue's score when it lists the reported error code.
	errorCodeBoost = 0.3
	// maxSuggestions is the number of issues returned with a diagnosis.
	maxSuggestions = 3
)

// candidate is a catalog issue that matched the complaint.
type candidate struct {
	issue *types.Issue
	score float64
}

// Rank scores every issue against the complaint and builds the diagnosis.
//
// errorCode may be empty. match is the resolved error code record, or nil when
// no code was given or none was found. Issues are visited in catalog order and
// equal scores keep that order.
func Rank(complaint, errorCode string, match *types.ErrorCodeMatch, issues []types.Issue) *types.DiagnosisResult {
	candidates := scoreIssues(complaint, errorCode, issues)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}

	suggested := make([]types.SuggestedIssue, 0, len(candidates))
	for _, c := range candidates {
		suggested = append(suggested, toSuggestedIssue(c))
	}

	return &types.DiagnosisResult{
		ErrorCodeMatch:  match,
		SuggestedIssues: suggested,
		Recommendation:  recommendFor(match, suggested),
	}
}

// scoreIssues returns every issue scoring above zero, in catalog order.
func scoreIssues(complaint, errorCode string, issues []types.Issue) []candidate {
	candidates := make([]candidate, 0)
	for i := range issues {
		issue := &issues[i]

		score := Score(complaint, issue.Keywords)
		if errorCode != "" && issue.RelatesTo(errorCode) {
			score = roundScore(math.Min(score+errorCodeBoost, 1.0))
		}

		if score > 0 {
			candidates = append(candidates, candidate{issue: issue, score: score})
		}
	}
	return candidates
}

// recommendFor derives the overall recommendation.
// A high severity error code overrides everything; no match at all falls back to a technician.
func recommendFor(match *types.ErrorCodeMatch, suggested []types.SuggestedIssue) types.Recommendation {
	if match != nil && match.Severity == types.SeverityHigh {
		return types.RecommendScheduleTechnician
	}
	if len(suggested) > 0 {
		top := suggested[0]
		return Recommend(top.Severity, top.DIYDifficulty)
	}
	return types.RecommendScheduleTechnician
}

func toSuggestedIssue(c candidate) types.SuggestedIssue {
	issue := *c.issue
	issue.ApplyDefaults()

	return types.SuggestedIssue{
		IssueID:        issue.ID,
		IssueName:      issue.IssueName,
		Category:       issue.Category,
		Confidence:     c.score,
		Severity:       issue.Severity,
		DIYDifficulty:  issue.DIYDifficulty,
		EstimatedTime:  issue.EstimatedTime(),
		PartsNeeded:    issue.PartsNeeded,
		ToolsRequired:  issue.ToolsRequired,
		Symptoms:       issue.Symptoms,
		PossibleCauses: issue.PossibleCauses,
	}
}
