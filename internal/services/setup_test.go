package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/auth"
	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/generator"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/learning-service/internal/testutil"
	"github.com/SAP-F-2025/learning-service/internal/throttle"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret-0123456789abcdef-0123456789"

type testEnv struct {
	db        *gorm.DB
	repo      *postgres.Repository
	cache     *cache.MemoryCache
	guard     *throttle.Guard
	tokens    *auth.TokenManager
	provider  *generator.MockProvider
	publisher *events.MockEventPublisher
	services  *Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	nop := utils.NewNopLogger()

	db := testutil.NewSeededDB(t)
	repo := postgres.NewRepository(db)
	memCache := cache.NewMemoryCache()
	guard := throttle.NewGuard(memCache, throttle.Config{}, nop)
	tokens, err := auth.NewTokenManager(auth.TokenConfig{Secret: testSecret, Issuer: "learning-service-test"})
	require.NoError(t, err)

	provider := generator.NewMockProvider()
	publisher := events.NewMockEventPublisher(logger)

	manager := NewManager(Dependencies{
		Repo:           repo,
		Cache:          memCache,
		Guard:          guard,
		Tokens:         tokens,
		Hasher:         auth.NewPasswordHasher(bcrypt.MinCost),
		Generator:      generator.NewGenerator(provider, time.Second, nop),
		Publisher:      publisher,
		Logger:         logger,
		PassPercentage: models.DefaultPassPercentage,
	})

	return &testEnv{
		db:        db,
		repo:      repo,
		cache:     memCache,
		guard:     guard,
		tokens:    tokens,
		provider:  provider,
		publisher: publisher,
		services:  manager,
	}
}

// registerVerified registers and verifies a student, returning the user ID.
func (e *testEnv) registerVerified(t *testing.T, email string) uint {
	t.Helper()
	ctx := context.Background()

	resp, err := e.services.Auth.Register(ctx, &RegisterRequest{
		Email:           email,
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
	})
	require.NoError(t, err)

	_, err = e.services.Auth.VerifyEmail(ctx, resp.VerificationToken)
	require.NoError(t, err)
	return resp.User.ID
}

func (e *testEnv) setLearningRate(t *testing.T, userID uint, level string) {
	t.Helper()
	require.NoError(t, e.repo.Profile().UpdateLearningRate(context.Background(), nil, userID, level))
}

func (e *testEnv) user(t *testing.T, userID uint) *models.User {
	t.Helper()
	user, err := e.repo.User().GetByID(context.Background(), nil, userID)
	require.NoError(t, err)
	return user
}

// quizJSON renders a valid five question quiz whose answers are all correct.
func quizJSON(t *testing.T, prefix string, correct string) string {
	t.Helper()
	questions := make([]models.QuizQuestion, models.QuizQuestionCount)
	for i := range questions {
		questions[i] = models.QuizQuestion{
			ID:       i + 1,
			Question: fmt.Sprintf("%s question %d?", prefix, i+1),
			Options: models.QuizOptions{
				A: "first", B: "second", C: "third", D: "fourth",
			},
			CorrectAnswer: correct,
		}
	}
	raw, err := json.Marshal(questions)
	require.NoError(t, err)
	return string(raw)
}

// fallbackAnswers returns answers to the fallback quiz with the given number
// of correct entries, answering the rest wrong.
func fallbackAnswers(correct int) []models.TestAnswer {
	key := []string{"A", "B", "C", "B", "C"}
	answers := make([]models.TestAnswer, len(key))
	for i, label := range key {
		if i >= correct {
			label = "D"
		}
		answers[i] = models.TestAnswer{QuestionID: i + 1, Answer: label}
	}
	return answers
}

// raiseStageBeforeUpdate commits stage for userID right before the first
// UPDATE on table runs, the way a concurrent request would slip in between a
// read and a write.
func (e *testEnv) raiseStageBeforeUpdate(t *testing.T, table string, userID uint, stage models.OnboardingStage) {
	t.Helper()

	fired := false
	err := e.db.Callback().Update().Before("gorm:update").Register("test:raise_stage", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		tx.AddError(tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE users SET onboarding_stage = ? WHERE id = ?", stage, userID).Error)
	})
	require.NoError(t, err)
}
