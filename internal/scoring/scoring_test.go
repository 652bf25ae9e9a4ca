package scoring

import (
	"testing"

	apperrors "github.com/SAP-F-2025/learning-service/internal/errors"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateLearningLevel(t *testing.T) {
	tests := []struct {
		score int
		want  models.LearningLevel
	}{
		{-5, models.LearningLevelLow},
		{0, models.LearningLevelLow},
		{39, models.LearningLevelLow},
		{40, models.LearningLevelMedium},
		{42, models.LearningLevelMedium},
		{59, models.LearningLevelMedium},
		{60, models.LearningLevelHigh},
		{250, models.LearningLevelHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateLearningLevel(tt.score), "score %d", tt.score)
	}
}

func TestMapLearningLevelToDifficulty(t *testing.T) {
	tests := []struct {
		level string
		want  models.Difficulty
	}{
		{"low", models.DifficultyBeginner},
		{"medium", models.DifficultyIntermediate},
		{"high", models.DifficultyAdvanced},
		{" HIGH ", models.DifficultyAdvanced},
		{"", models.DifficultyIntermediate},
		{"genius", models.DifficultyIntermediate},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapLearningLevelToDifficulty(tt.level), "level %q", tt.level)
	}
}

func fiveQuestions() []models.QuizQuestion {
	answers := []string{"A", "B", "C", "B", "C"}
	questions := make([]models.QuizQuestion, len(answers))
	for i, a := range answers {
		questions[i] = models.QuizQuestion{
			ID:            i + 1,
			Question:      "q",
			Options:       models.QuizOptions{A: "a", B: "b", C: "c", D: "d"},
			CorrectAnswer: a,
		}
	}
	return questions
}

func TestEvaluateTest_FourOfFive(t *testing.T) {
	answers := []models.TestAnswer{
		{QuestionID: 1, Answer: "A"},
		{QuestionID: 2, Answer: "b"},
		{QuestionID: 3, Answer: "C"},
		{QuestionID: 4, Answer: "B"},
		{QuestionID: 5, Answer: "D"},
	}

	eval, err := EvaluateTest(fiveQuestions(), answers)
	require.NoError(t, err)
	assert.Equal(t, 4, eval.Score)
	assert.Equal(t, 5, eval.Total)
	assert.Equal(t, 80.0, eval.Percentage)
	assert.True(t, Passed(eval.Percentage, models.DefaultPassPercentage))
	assert.False(t, eval.Results[4].Correct)
}

func TestEvaluateTest_Idempotent(t *testing.T) {
	answers := []models.TestAnswer{{QuestionID: 1, Answer: "A"}, {QuestionID: 3, Answer: "A"}}

	first, err := EvaluateTest(fiveQuestions(), answers)
	require.NoError(t, err)
	second, err := EvaluateTest(fiveQuestions(), answers)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// unanswered questions count as wrong
	assert.Equal(t, 1, first.Score)
	assert.Equal(t, 20.0, first.Percentage)
}

func TestEvaluateTest_FullPrecisionComparison(t *testing.T) {
	questions := fiveQuestions()[:3]
	answers := []models.TestAnswer{
		{QuestionID: 1, Answer: "A"},
		{QuestionID: 2, Answer: "B"},
		{QuestionID: 3, Answer: "D"},
	}

	eval, err := EvaluateTest(questions, answers)
	require.NoError(t, err)
	assert.Equal(t, 66.67, DisplayPercentage(eval.Percentage))
	// 66.666... is below 66.67 even though it displays as 66.67
	assert.False(t, Passed(eval.Percentage, 66.67))
	assert.True(t, Passed(eval.Percentage, 66.66))
}

func TestEvaluateTest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		answers []models.TestAnswer
		field   string
	}{
		{"empty", nil, "answers"},
		{"missing question id", []models.TestAnswer{{Answer: "A"}}, "answers[0].question_id"},
		{"missing answer", []models.TestAnswer{{QuestionID: 1}}, "answers[0].answer"},
		{"bad label", []models.TestAnswer{{QuestionID: 1, Answer: "E"}}, "answers[0].answer"},
		{"unknown question", []models.TestAnswer{{QuestionID: 9, Answer: "A"}}, "answers[0].question_id"},
		{"duplicate", []models.TestAnswer{{QuestionID: 1, Answer: "A"}, {QuestionID: 1, Answer: "B"}}, "answers[1].question_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EvaluateTest(fiveQuestions(), tt.answers)
			require.Error(t, err)

			var verrs apperrors.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestEvaluateTest_NoQuestions(t *testing.T) {
	_, err := EvaluateTest(nil, []models.TestAnswer{{QuestionID: 1, Answer: "A"}})
	assert.ErrorIs(t, err, ErrEmptyTest)
}

func TestScoreAssessment(t *testing.T) {
	options := map[uint]models.PersonalityOption{
		10: {ID: 10, QuestionID: 1, Score: 20},
		11: {ID: 11, QuestionID: 1, Score: 5},
		20: {ID: 20, QuestionID: 2, Score: 22},
	}

	total, err := ScoreAssessment([]AssessmentAnswer{
		{QuestionID: 1, OptionID: 10},
		{QuestionID: 2, OptionID: 20},
	}, options)
	require.NoError(t, err)
	assert.Equal(t, 42, total)
	assert.Equal(t, models.LearningLevelMedium, CalculateLearningLevel(total))
}

func TestScoreAssessment_Validation(t *testing.T) {
	options := map[uint]models.PersonalityOption{
		10: {ID: 10, QuestionID: 1, Score: 20},
		20: {ID: 20, QuestionID: 2, Score: 22},
	}

	tests := []struct {
		name    string
		answers []AssessmentAnswer
		field   string
	}{
		{"empty", nil, "answers"},
		{"missing option", []AssessmentAnswer{{QuestionID: 1}}, "answers[0].option_id"},
		{"missing question", []AssessmentAnswer{{OptionID: 10}}, "answers[0].question_id"},
		{"option of another question", []AssessmentAnswer{{QuestionID: 1, OptionID: 20}}, "answers[0].option_id"},
		{"unknown option", []AssessmentAnswer{{QuestionID: 1, OptionID: 99}}, "answers[0].option_id"},
		{"duplicate question", []AssessmentAnswer{{QuestionID: 1, OptionID: 10}, {QuestionID: 1, OptionID: 10}}, "answers[1].question_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ScoreAssessment(tt.answers, options)
			var verrs apperrors.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestOptionIDs(t *testing.T) {
	ids := OptionIDs([]AssessmentAnswer{{QuestionID: 1, OptionID: 3}, {QuestionID: 2}})
	assert.Equal(t, []uint{3}, ids)
}
