package services

import (
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// answersWithScore picks, for every seeded question, the option carrying score.
func answersWithScore(t *testing.T, env *testEnv, score int) []scoring.AssessmentAnswer {
	t.Helper()
	questions, err := env.services.Assessment.ListQuestions(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, questions)

	answers := make([]scoring.AssessmentAnswer, 0, len(questions))
	for _, q := range questions {
		var picked uint
		for _, o := range q.Options {
			if o.Score == score {
				picked = o.ID
			}
		}
		require.NotZero(t, picked, "question %d has no option scored %d", q.ID, score)
		answers = append(answers, scoring.AssessmentAnswer{QuestionID: q.ID, OptionID: picked})
	}
	return answers
}

func TestAssessmentService_ListQuestions(t *testing.T) {
	env := newTestEnv(t)

	questions, err := env.services.Assessment.ListQuestions(context.Background())
	require.NoError(t, err)
	require.Len(t, questions, 8)
	for _, q := range questions {
		assert.Len(t, q.Options, 4)
	}
}

func TestAssessmentService_Submit(t *testing.T) {
	tests := []struct {
		name          string
		score         int
		expectedTotal int
		expectedLevel models.LearningLevel
	}{
		{"all lowest", 2, 16, models.LearningLevelLow},
		{"all second", 5, 40, models.LearningLevelMedium},
		{"all third", 8, 64, models.LearningLevelHigh},
		{"all highest", 10, 80, models.LearningLevelHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			userID := env.registerVerified(t, "quiz@example.com")

			resp, err := env.services.Assessment.Submit(ctx, userID, &SubmitAssessmentRequest{
				Answers: answersWithScore(t, env, tt.score),
			})
			require.NoError(t, err)
			assert.Equal(t, "Test submitted successfully", resp.Message)
			assert.Equal(t, tt.expectedTotal, resp.Score)
			assert.Equal(t, tt.expectedLevel, resp.LearningLevel)

			profile, err := env.repo.Profile().GetByUserID(ctx, nil, userID)
			require.NoError(t, err)
			assert.Equal(t, string(tt.expectedLevel), profile.LearningRate)

			assert.Equal(t, models.StageAssessmentComplete, env.user(t, userID).OnboardingStage)
			assert.Len(t, env.publisher.EventsOfType(events.EventAssessmentCompleted), 1)
		})
	}
}

func TestAssessmentService_ResubmitReplacesResult(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.registerVerified(t, "again@example.com")

	_, err := env.services.Assessment.Submit(ctx, userID, &SubmitAssessmentRequest{Answers: answersWithScore(t, env, 10)})
	require.NoError(t, err)
	resp, err := env.services.Assessment.Submit(ctx, userID, &SubmitAssessmentRequest{Answers: answersWithScore(t, env, 2)})
	require.NoError(t, err)
	assert.Equal(t, models.LearningLevelLow, resp.LearningLevel)

	result, err := env.repo.Personality().GetResultByUserID(ctx, nil, userID)
	require.NoError(t, err)
	assert.Equal(t, 16, result.TotalScore)
	assert.Equal(t, models.LearningLevelLow, result.LearningLevel)

	// The stage stays final and modules now target beginners
	assert.Equal(t, models.StageAssessmentComplete, env.user(t, userID).OnboardingStage)
	module, err := env.services.Module.Generate(ctx, userID, &GenerateModuleRequest{Topic: "Loops"})
	require.NoError(t, err)
	assert.Equal(t, models.DifficultyBeginner, module.Difficulty)
}

func TestAssessmentService_SubmitRejectsBadAnswers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.registerVerified(t, "bad@example.com")

	questions, err := env.services.Assessment.ListQuestions(ctx)
	require.NoError(t, err)
	first, second := questions[0], questions[1]

	tests := []struct {
		name    string
		answers []scoring.AssessmentAnswer
	}{
		{"empty", nil},
		{"option from another question", []scoring.AssessmentAnswer{
			{QuestionID: first.ID, OptionID: second.Options[0].ID},
		}},
		{"unknown option", []scoring.AssessmentAnswer{{QuestionID: first.ID, OptionID: 99999}}},
		{"missing option", []scoring.AssessmentAnswer{{QuestionID: first.ID}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.services.Assessment.Submit(ctx, userID, &SubmitAssessmentRequest{Answers: tt.answers})
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}

	_, err = env.repo.Personality().GetResultByUserID(ctx, nil, userID)
	assert.Error(t, err)
	assert.Equal(t, models.StageVerified, env.user(t, userID).OnboardingStage)
}

func TestAssessmentService_Progress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.registerVerified(t, "progress@example.com")

	empty, err := env.services.Assessment.Progress(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, empty.PersonalityResult)
	assert.Empty(t, empty.Modules)
	assert.Empty(t, empty.RecentActivity)
	assert.Nil(t, empty.Stats.LearningLevel)

	_, err = env.services.Assessment.Submit(ctx, userID, &SubmitAssessmentRequest{Answers: answersWithScore(t, env, 5)})
	require.NoError(t, err)

	module, err := env.services.Module.Generate(ctx, userID, &GenerateModuleRequest{Topic: "Structs"})
	require.NoError(t, err)
	_, err = env.services.Module.SubmitTest(ctx, userID, module.ID, &SubmitTestRequest{Answers: fallbackAnswers(5)})
	require.NoError(t, err)
	_, err = env.services.Module.Generate(ctx, userID, &GenerateModuleRequest{Topic: "Methods"})
	require.NoError(t, err)

	summary, err := env.services.Assessment.Progress(ctx, userID)
	require.NoError(t, err)

	require.NotNil(t, summary.PersonalityResult)
	assert.Equal(t, models.LearningLevelMedium, summary.PersonalityResult.LearningLevel)
	assert.Equal(t, 2, summary.Stats.TotalModules)
	assert.Equal(t, 1, summary.Stats.CompletedModules)
	require.NotNil(t, summary.Stats.LearningLevel)
	assert.Equal(t, models.LearningLevelMedium, *summary.Stats.LearningLevel)

	require.Len(t, summary.Modules, 2)
	assert.Equal(t, "Methods", summary.Modules[0].Topic)
	assert.Nil(t, summary.Modules[0].LatestTest)
	require.NotNil(t, summary.Modules[1].LatestTest)
	assert.True(t, summary.Modules[1].LatestTest.Passed)

	// personality + two modules + one attempt
	assert.Len(t, summary.RecentActivity, 4)
	for i := 1; i < len(summary.RecentActivity); i++ {
		assert.False(t, summary.RecentActivity[i].Date.After(summary.RecentActivity[i-1].Date))
	}
}

func TestBuildProgressSummary(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	result := &models.PersonalityResult{
		TotalScore:    58,
		LearningLevel: models.LearningLevelMedium,
		CreatedAt:     base,
	}

	var modules []*models.LearningModule
	for i := 0; i < 7; i++ {
		modules = append(modules, &models.LearningModule{
			ID:          uint(7 - i),
			Topic:       "Topic",
			Difficulty:  models.DifficultyIntermediate,
			IsCompleted: i%2 == 0,
			CreatedAt:   base.Add(time.Duration(7-i) * time.Hour),
		})
	}

	passed := &models.ModuleTestAttempt{
		ModuleID:   7,
		Score:      4,
		Percentage: 80,
		Passed:     true,
		Module:     modules[0],
		CreatedAt:  base.Add(10 * time.Hour),
	}
	failed := &models.ModuleTestAttempt{
		ModuleID:   6,
		Score:      1,
		Percentage: 20,
		Module:     modules[1],
		CreatedAt:  base.Add(9 * time.Hour),
	}
	latest := map[uint]*models.ModuleTestAttempt{7: passed, 6: failed}

	summary := BuildProgressSummary(result, modules, latest, []*models.ModuleTestAttempt{passed, failed})

	assert.Equal(t, 7, summary.Stats.TotalModules)
	assert.Equal(t, 4, summary.Stats.CompletedModules)
	require.NotNil(t, summary.Stats.LearningLevel)
	assert.Equal(t, 58, summary.PersonalityResult.TotalScore)
	assert.Equal(t, base, summary.PersonalityResult.CompletedAt)

	require.NotNil(t, summary.Modules[0].LatestTest)
	assert.Equal(t, 80.0, summary.Modules[0].LatestTest.Percentage)
	assert.Nil(t, summary.Modules[2].LatestTest)

	// 1 personality + 5 modules + 2 attempts, newest first
	require.Len(t, summary.RecentActivity, 8)
	assert.Equal(t, ActivityTestAttempt, summary.RecentActivity[0].Type)
	assert.Equal(t, "Passed: Topic Test", summary.RecentActivity[0].Title)
	assert.Equal(t, "Score: 80%", summary.RecentActivity[0].Description)
	assert.Equal(t, "Attempted: Topic Test", summary.RecentActivity[1].Title)
	assert.Equal(t, "Started learning: Topic", summary.RecentActivity[2].Title)
	assert.Equal(t, "Difficulty: intermediate", summary.RecentActivity[2].Description)

	last := summary.RecentActivity[len(summary.RecentActivity)-1]
	assert.Equal(t, ActivityPersonalityTest, last.Type)
	assert.Equal(t, "Learning level: medium", last.Description)
}

func TestBuildProgressSummaryTruncatesActivity(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	var modules []*models.LearningModule
	var attempts []*models.ModuleTestAttempt
	for i := 0; i < 6; i++ {
		m := &models.LearningModule{ID: uint(i + 1), Topic: "T", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		modules = append(modules, m)
		attempts = append(attempts, &models.ModuleTestAttempt{ModuleID: m.ID, Module: m, CreatedAt: base.Add(time.Hour)})
	}

	summary := BuildProgressSummary(&models.PersonalityResult{CreatedAt: base}, modules, nil, attempts)
	assert.Len(t, summary.RecentActivity, 10)
	assert.Len(t, summary.Modules, 6)
}
