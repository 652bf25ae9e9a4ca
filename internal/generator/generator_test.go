package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validQuiz = `[
 {"id": 1, "question": "What does go fmt do?", "options": {"A": "Formats code", "B": "Runs tests", "C": "Builds", "D": "Lints"}, "correct_answer": "A"},
 {"id": 2, "question": "Q2", "options": {"A": "a", "B": "b", "C": "c", "D": "d"}, "correct_answer": "B"},
 {"id": 3, "question": "Q3", "options": {"A": "a", "B": "b", "C": "c", "D": "d"}, "correct_answer": "C"},
 {"id": 4, "question": "Q4", "options": {"A": "a", "B": "b", "C": "c", "D": "d"}, "correct_answer": "D"},
 {"id": 5, "question": "Q5", "options": {"A": "a", "B": "b", "C": "c", "D": "d"}, "correct_answer": "A"}
]`

func TestParseQuiz(t *testing.T) {
	questions, err := ParseQuiz(validQuiz)
	require.NoError(t, err)
	require.Len(t, questions, models.QuizQuestionCount)
	assert.Equal(t, "Formats code", questions[0].Options.A)
	assert.Equal(t, "D", questions[3].CorrectAnswer)
}

func TestParseQuiz_StripsCodeFences(t *testing.T) {
	questions, err := ParseQuiz("```json\n" + validQuiz + "\n```")
	require.NoError(t, err)
	assert.Len(t, questions, 5)

	questions, err = ParseQuiz(`{"questions": ` + validQuiz + `}`)
	require.NoError(t, err)
	assert.Len(t, questions, 5)
}

func TestParseQuiz_Rejects(t *testing.T) {
	tests := map[string]string{
		"not json":      "Here are your questions!",
		"too few":       `[{"id": 1, "question": "Q", "options": {"A": "a", "B": "b", "C": "c", "D": "d"}, "correct_answer": "A"}]`,
		"bad label":     `[` + repeatQuestion(`"E"`) + `]`,
		"missing D":     `[{"id": 1, "question": "Q", "options": {"A": "a", "B": "b", "C": "c"}, "correct_answer": "A"}]`,
		"duplicate ids": `[` + repeatQuestion(`"A"`) + `]`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseQuiz(body)
			var invalid *ErrInvalidResponse
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func repeatQuestion(answer string) string {
	q := `{"id": 1, "question": "Q", "options": {"A": "a", "B": "b", "C": "c", "D": "d"}, "correct_answer": ` + answer + `}`
	return q + "," + q + "," + q + "," + q + "," + q
}

func TestGenerator_UsesProviderOutput(t *testing.T) {
	provider := NewMockProvider(
		MockResponse{Text: "# Go channels\n\nStep one..."},
		MockResponse{Text: validQuiz},
		MockResponse{Text: "# Roadmap"},
	)
	g := NewGenerator(provider, time.Second, utils.NewNopLogger())
	ctx := context.Background()

	content := g.GenerateContent(ctx, "Go channels", models.DifficultyAdvanced)
	assert.False(t, content.IsFallback())
	assert.Equal(t, "# Go channels\n\nStep one...", content.Value)

	quiz := g.GenerateQuiz(ctx, "Go channels", models.DifficultyAdvanced)
	assert.False(t, quiz.IsFallback())
	assert.Len(t, quiz.Value, 5)
	assert.True(t, provider.Calls[1].JSON)
	assert.Contains(t, provider.Calls[1].Prompt, "advanced")

	roadmap := g.GenerateRoadmap(ctx, "Go channels")
	assert.Equal(t, models.SourceGenerated, roadmap.Source)
	assert.Equal(t, 3, provider.CallCount())
}

func TestGenerator_FallsBackOnProviderError(t *testing.T) {
	provider := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{Err: errors.New("quota")}},
		MockResponse{Text: "sorry, I cannot produce JSON today"},
	)
	g := NewGenerator(provider, time.Second, utils.NewNopLogger())
	ctx := context.Background()

	content := g.GenerateContent(ctx, "Rust", models.DifficultyBeginner)
	assert.True(t, content.IsFallback())
	assert.Equal(t, FallbackContent("Rust", models.DifficultyBeginner), content.Value)
	var rl *ErrRateLimit
	assert.ErrorAs(t, content.Cause, &rl)

	quiz := g.GenerateQuiz(ctx, "Rust", models.DifficultyBeginner)
	assert.True(t, quiz.IsFallback())
	assert.Equal(t, FallbackQuiz("Rust"), quiz.Value)

	// queue is empty now, so the provider reports itself unavailable
	roadmap := g.GenerateRoadmap(ctx, "Rust")
	assert.True(t, roadmap.IsFallback())
	assert.Equal(t, "# Learning Roadmap: Rust\n\nOur AI-guided learning service is currently experiencing high load. Please try again in 1 minute.", roadmap.Value)
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, &ErrProviderUnavailable{Err: ctx.Err()}
}

func (slowProvider) ModelID() string { return "slow" }

func TestGenerator_TimeoutFeedsFallback(t *testing.T) {
	g := NewGenerator(slowProvider{}, 10*time.Millisecond, utils.NewNopLogger())

	res := g.GenerateContent(context.Background(), "Kubernetes", models.DifficultyIntermediate)
	assert.True(t, res.IsFallback())
	assert.ErrorIs(t, res.Cause, context.DeadlineExceeded)
}

type panickyProvider struct{}

func (panickyProvider) Generate(context.Context, Request) (*Response, error) {
	panic("sdk bug")
}

func (panickyProvider) ModelID() string { return "panicky" }

func TestGenerator_RecoversFromProviderPanic(t *testing.T) {
	g := NewGenerator(panickyProvider{}, time.Second, utils.NewNopLogger())
	res := g.GenerateQuiz(context.Background(), "SQL", models.DifficultyBeginner)
	assert.True(t, res.IsFallback())
	assert.Len(t, res.Value, models.QuizQuestionCount)
}

func TestGenerator_NilProvider(t *testing.T) {
	g := NewGenerator(nil, 0, utils.NewNopLogger())
	res := g.GenerateRoadmap(context.Background(), "Docker")
	assert.True(t, res.IsFallback())
	assert.ErrorIs(t, res.Cause, ErrNoProvider)
}

func TestFallbackQuiz_AnswerKey(t *testing.T) {
	quiz := FallbackQuiz("Python")
	require.Len(t, quiz, models.QuizQuestionCount)

	var key []string
	for _, q := range quiz {
		key = append(key, q.CorrectAnswer)
	}
	assert.Equal(t, []string{"A", "B", "C", "B", "C"}, key)
	assert.Equal(t, "What is a key concept in Python?", quiz[0].Question)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())

	_, err = NewProvider(context.Background(), Config{Provider: "openai"})
	assert.Error(t, err)

	_, err = NewProvider(context.Background(), Config{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}
