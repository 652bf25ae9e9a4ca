package scoring

import (
	"github.com/SAP-F-2025/learning-service/internal/models"
)

// LevelBand maps every total score at or above Min to Level, until the next
// band starts.
type LevelBand struct {
	Min   int
	Level models.LearningLevel
}

// LearningLevelBands is ordered by ascending Min. Scores below the first band
// fall into it as well.
var LearningLevelBands = []LevelBand{
	{Min: 0, Level: models.LearningLevelLow},
	{Min: 40, Level: models.LearningLevelMedium},
	{Min: 60, Level: models.LearningLevelHigh},
}

// CalculateLearningLevel resolves a total assessment score to a learning level.
// Band edges belong to the band that starts there.
func CalculateLearningLevel(totalScore int) models.LearningLevel {
	level := LearningLevelBands[0].Level
	for _, band := range LearningLevelBands {
		if totalScore < band.Min {
			break
		}
		level = band.Level
	}
	return level
}
