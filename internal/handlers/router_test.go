package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/auth"
	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/generator"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/testutil"
	"github.com/SAP-F-2025/learning-service/internal/throttle"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	nop := utils.NewNopLogger()
	memCache := cache.NewMemoryCache()
	tokens, err := auth.NewTokenManager(auth.TokenConfig{Secret: "handler-test-secret-0123456789abcdef"})
	require.NoError(t, err)

	manager := services.NewManager(services.Dependencies{
		Repo:           postgres.NewRepository(testutil.NewSeededDB(t)),
		Cache:          memCache,
		Guard:          throttle.NewGuard(memCache, throttle.Config{}, nop),
		Tokens:         tokens,
		Hasher:         auth.NewPasswordHasher(bcrypt.MinCost),
		Generator:      generator.NewGenerator(generator.NewMockProvider(), time.Second, nop),
		Publisher:      events.NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil))),
		Logger:         nop.Slog(),
		PassPercentage: models.DefaultPassPercentage,
	})

	router := gin.New()
	router.Use(CORS([]string{"http://localhost:3000"}))
	NewHandlerManager(manager, nop).SetupRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// signUp registers, verifies and logs in, returning the access token.
func signUp(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": email, "password": "correct-horse", "confirm_password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var registered services.RegisterResponse
	decode(t, w, &registered)

	w = doJSON(t, router, http.MethodGet, "/api/v1/auth/verify-email/"+registered.VerificationToken, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": email, "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login services.LoginResponse
	decode(t, w, &login)
	return login.Tokens.AccessToken
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "learning-service")

	w = doJSON(t, router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/profile", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := signUp(t, router, "auth@example.com")
	w = doJSON(t, router, http.MethodGet, "/api/v1/profile", token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAuthEndpoints_ErrorMapping(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": "bad", "password": "short", "confirm_password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errResp ErrorResponse
	decode(t, w, &errResp)
	assert.Equal(t, "validation_failed", errResp.Code)

	body := gin.H{"email": "pending@example.com", "password": "correct-horse", "confirm_password": "correct-horse"}
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code)

	// Unverified re-registration hands back a fresh verification token
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "verification_token")

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "pending@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	signUp(t, router, "taken@example.com")
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": "taken@example.com", "password": "correct-horse", "confirm_password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/auth/verify-email/garbage", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginThrottle(t *testing.T) {
	router := newTestRouter(t)
	signUp(t, router, "locked@example.com")

	for i := 0; i < 3; i++ {
		w := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
			"email": "locked@example.com", "password": "wrong-password",
		})
		require.Equal(t, http.StatusUnauthorized, w.Code, "attempt %d", i+1)
	}

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "locked@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRefreshAndLogout(t *testing.T) {
	router := newTestRouter(t)
	signUp(t, router, "tokens@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "tokens@example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var login services.LoginResponse
	decode(t, w, &login)

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refresh": login.Tokens.RefreshToken})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", "", gin.H{"refresh": login.Tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	stranger := signUp(t, router, "stranger@example.com")
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", stranger, gin.H{"refresh": login.Tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", login.Tokens.AccessToken, gin.H{"refresh": login.Tokens.RefreshToken})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refresh": login.Tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileAndAssessmentFlow(t *testing.T) {
	router := newTestRouter(t)
	token := signUp(t, router, "flow@example.com")

	w := doJSON(t, router, http.MethodPatch, "/api/v1/profile", token, gin.H{"full_name": "Flow Tester"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var profile services.ProfileResponse
	decode(t, w, &profile)
	assert.Equal(t, int(models.StageProfileComplete), profile.OnboardingStage)

	w = doJSON(t, router, http.MethodPut, "/api/v1/profile", token, gin.H{"learning_rate": "fast"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/assessment/questions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"score"`)
	var questions []models.PersonalityQuestion
	decode(t, w, &questions)
	require.NotEmpty(t, questions)

	answers := make([]gin.H, 0, len(questions))
	for _, q := range questions {
		answers = append(answers, gin.H{"question_id": q.ID, "option_id": q.Options[len(q.Options)-1].ID})
	}
	w = doJSON(t, router, http.MethodPost, "/api/v1/assessment/submit", token, gin.H{"answers": answers})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var submitted services.SubmitAssessmentResponse
	decode(t, w, &submitted)
	assert.Equal(t, "Test submitted successfully", submitted.Message)
	assert.Equal(t, models.LearningLevelHigh, submitted.LearningLevel)

	w = doJSON(t, router, http.MethodGet, "/api/v1/profile", token, nil)
	decode(t, w, &profile)
	assert.Equal(t, int(models.StageAssessmentComplete), profile.OnboardingStage)

	w = doJSON(t, router, http.MethodGet, "/api/v1/assessment/progress", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var progress services.ProgressSummary
	decode(t, w, &progress)
	require.NotNil(t, progress.PersonalityResult)
	assert.Equal(t, models.LearningLevelHigh, progress.PersonalityResult.LearningLevel)
}

func TestModuleFlow(t *testing.T) {
	router := newTestRouter(t)
	token := signUp(t, router, "modules@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/v1/modules/generate", token, gin.H{"topic": "Concurrency"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var module services.ModuleResponse
	decode(t, w, &module)
	assert.Equal(t, models.DifficultyIntermediate, module.Difficulty)
	require.NotNil(t, module.Test)
	assert.NotContains(t, w.Body.String(), "correct_answer")

	base := fmt.Sprintf("/api/v1/modules/%d", module.ID)

	w = doJSON(t, router, http.MethodGet, base+"/test", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "correct_answer")

	w = doJSON(t, router, http.MethodPost, base+"/test/submit", token, gin.H{
		"answers": []gin.H{{"question_id": 1, "answer": "Z"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Fallback quiz key: A B C B C
	w = doJSON(t, router, http.MethodPost, base+"/test/submit", token, gin.H{
		"answers": []gin.H{
			{"question_id": 1, "answer": "A"},
			{"question_id": 2, "answer": "B"},
			{"question_id": 3, "answer": "C"},
			{"question_id": 4, "answer": "B"},
			{"question_id": 5, "answer": "D"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result services.SubmitTestResponse
	decode(t, w, &result)
	assert.Equal(t, 80.0, result.Percentage)
	assert.True(t, result.Passed)
	assert.True(t, result.IsCompleted)

	w = doJSON(t, router, http.MethodPost, base+"/test/regenerate", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &module)
	assert.True(t, module.IsCompleted)

	w = doJSON(t, router, http.MethodPost, "/api/v1/modules/search", token, gin.H{"topic": "Kubernetes"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/modules/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []services.ModuleSummary
	decode(t, w, &history)
	require.Len(t, history, 2)
	assert.Equal(t, models.ModuleKindRoadmap, history[0].Kind)

	w = doJSON(t, router, http.MethodGet, "/api/v1/modules/history?kind=lesson&completed=true", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &history)
	require.Len(t, history, 1)
	assert.Equal(t, models.ModuleKindLesson, history[0].Kind)
	assert.True(t, history[0].IsCompleted)

	w = doJSON(t, router, http.MethodGet, "/api/v1/modules/history/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
}

func TestModuleEndpoints_NotFoundAndBadID(t *testing.T) {
	router := newTestRouter(t)
	owner := signUp(t, router, "owner@example.com")
	stranger := signUp(t, router, "stranger@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/v1/modules/generate", owner, gin.H{"topic": "Private"})
	require.Equal(t, http.StatusCreated, w.Code)
	var module services.ModuleResponse
	decode(t, w, &module)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/modules/%d", module.ID), stranger, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/modules/abc", owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/modules/0/test", owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/modules/history?kind=quiz", owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/modules/history?limit=many", owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
