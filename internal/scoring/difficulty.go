package scoring

import (
	"strings"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

// BaselineDifficulty is used whenever the learner has no usable level yet.
const BaselineDifficulty = models.DifficultyIntermediate

var levelDifficulty = map[models.LearningLevel]models.Difficulty{
	models.LearningLevelLow:    models.DifficultyBeginner,
	models.LearningLevelMedium: models.DifficultyIntermediate,
	models.LearningLevelHigh:   models.DifficultyAdvanced,
}

// MapLearningLevelToDifficulty never fails: unset or unknown levels get the
// baseline difficulty.
func MapLearningLevelToDifficulty(level string) models.Difficulty {
	normalized := models.LearningLevel(strings.ToLower(strings.TrimSpace(level)))
	if difficulty, ok := levelDifficulty[normalized]; ok {
		return difficulty
	}
	return BaselineDifficulty
}
