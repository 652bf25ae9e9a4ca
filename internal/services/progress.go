package services

import (
	"fmt"
	"sort"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

const (
	recentActivityLimit = 10
	recentModulesLimit  = 5
	recentAttemptsLimit = 5
)

// BuildProgressSummary assembles the progress view from already loaded rows.
// modules must be newest first and attempts newest first; latest maps module
// ID to that module's newest attempt. Nothing here touches storage.
func BuildProgressSummary(
	result *models.PersonalityResult,
	modules []*models.LearningModule,
	latest map[uint]*models.ModuleTestAttempt,
	attempts []*models.ModuleTestAttempt,
) *ProgressSummary {
	summary := &ProgressSummary{
		Modules:        make([]ModuleProgress, 0, len(modules)),
		RecentActivity: []Activity{},
	}

	if result != nil {
		summary.PersonalityResult = &PersonalitySummary{
			LearningLevel: result.LearningLevel,
			TotalScore:    result.TotalScore,
			CompletedAt:   result.CreatedAt,
		}
		level := result.LearningLevel
		summary.Stats.LearningLevel = &level

		summary.RecentActivity = append(summary.RecentActivity, Activity{
			Type:        ActivityPersonalityTest,
			Title:       "Completed Personality Assessment",
			Description: fmt.Sprintf("Learning level: %s", result.LearningLevel),
			Date:        result.CreatedAt,
		})
	}

	for _, m := range modules {
		progress := ModuleProgress{
			ID:          m.ID,
			Topic:       m.Topic,
			Difficulty:  m.Difficulty,
			IsCompleted: m.IsCompleted,
			RetryCount:  m.RetryCount,
			CreatedAt:   m.CreatedAt,
		}
		if a, ok := latest[m.ID]; ok && a != nil {
			progress.LatestTest = &LatestTest{
				Score:      a.Score,
				Percentage: a.Percentage,
				Passed:     a.Passed,
				Date:       a.CreatedAt,
			}
		}
		summary.Modules = append(summary.Modules, progress)

		if m.IsCompleted {
			summary.Stats.CompletedModules++
		}
	}
	summary.Stats.TotalModules = len(modules)

	for i, m := range modules {
		if i == recentModulesLimit {
			break
		}
		summary.RecentActivity = append(summary.RecentActivity, Activity{
			Type:        ActivityModuleCreated,
			Title:       fmt.Sprintf("Started learning: %s", m.Topic),
			Description: fmt.Sprintf("Difficulty: %s", m.Difficulty),
			Date:        m.CreatedAt,
		})
	}

	for i, a := range attempts {
		if i == recentAttemptsLimit {
			break
		}
		verb := "Attempted"
		if a.Passed {
			verb = "Passed"
		}
		topic := ""
		if a.Module != nil {
			topic = a.Module.Topic
		}
		summary.RecentActivity = append(summary.RecentActivity, Activity{
			Type:        ActivityTestAttempt,
			Title:       fmt.Sprintf("%s: %s Test", verb, topic),
			Description: fmt.Sprintf("Score: %.0f%%", a.Percentage),
			Date:        a.CreatedAt,
		})
	}

	sort.SliceStable(summary.RecentActivity, func(i, j int) bool {
		return summary.RecentActivity[i].Date.After(summary.RecentActivity[j].Date)
	})
	if len(summary.RecentActivity) > recentActivityLimit {
		summary.RecentActivity = summary.RecentActivity[:recentActivityLimit]
	}

	return summary
}
