package diagnosis

import "github.com/jonathan/fieldsync/internal/types"

// Recommend decides between DIY repair and a technician visit for an issue.
//
// High severity and professional-only repairs always need a technician, as do
// hard repairs of medium severity. Hard repairs of low severity are left to DIY.
func Recommend(severity types.Severity, difficulty types.DIYDifficulty) types.Recommendation {
	if severity == types.SeverityHigh {
		return types.RecommendScheduleTechnician
	}

	if difficulty == types.DifficultyProfessionalOnly {
		return types.RecommendScheduleTechnician
	}

	if difficulty == types.DifficultyHard && severity == types.SeverityMedium {
		return types.RecommendScheduleTechnician
	}

	return types.RecommendTryDIY
}
