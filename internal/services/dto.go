package services

import (
	"time"

	"github.com/SAP-F-2025/learning-service/internal/auth"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/scoring"
)

// ===== AUTH =====

type RegisterRequest struct {
	Email           string          `json:"email" validate:"required,email,max=255"`
	Password        string          `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string          `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            models.UserRole `json:"role" validate:"omitempty,user_role"`
}

type RegisterResponse struct {
	User   *models.User    `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
	// VerificationToken is returned directly since email delivery is handled
	// by whoever consumes the user.registered event.
	VerificationToken string `json:"verification_token"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User   *models.User    `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

type RefreshResponse struct {
	AccessToken string    `json:"access"`
	ExpiresAt   time.Time `json:"access_expires_at"`
}

type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=8,max=128,nefield=OldPassword"`
	ConfirmNewPassword string `json:"confirm_new_password" validate:"required,eqfield=NewPassword"`
}

// PrivilegedAccountRequest must set every elevated flag explicitly.
type PrivilegedAccountRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
	IsVerified  bool   `json:"is_verified"`
}

// ===== PROFILE =====

// UpdateProfileRequest is a partial update: nil fields are left unchanged.
type UpdateProfileRequest struct {
	FullName         *string   `json:"full_name" validate:"omitempty,max=255"`
	Location         *string   `json:"location" validate:"omitempty,max=255"`
	Bio              *string   `json:"bio" validate:"omitempty,max=5000"`
	Skills           *[]string `json:"skills" validate:"omitempty,max=50,dive,max=100"`
	ExperienceLevel  *string   `json:"experience_level" validate:"omitempty,max=50"`
	PortfolioLinks   *[]string `json:"portfolio_links" validate:"omitempty,max=20,dive,url"`
	GithubURL        *string   `json:"github_url" validate:"omitempty,url,max=500"`
	LearningRate     *string   `json:"learning_rate" validate:"omitempty,learning_level"`
	StudyTime        *string   `json:"study_time" validate:"omitempty,max=50"`
	LearningStyle    *string   `json:"learning_style" validate:"omitempty,max=50"`
	Motivation       *string   `json:"motivation" validate:"omitempty,max=100"`
	PriorKnowledge   *string   `json:"prior_knowledge" validate:"omitempty,max=50"`
	Confidence       *string   `json:"confidence" validate:"omitempty,max=50"`
	TestPreference   *string   `json:"test_preference" validate:"omitempty,max=50"`
	ModulePreference *string   `json:"module_preference" validate:"omitempty,max=50"`
}

type ProfileResponse struct {
	Profile         *models.Profile `json:"profile"`
	OnboardingStage int             `json:"onboarding_stage"`
}

// ===== ASSESSMENT =====

type SubmitAssessmentRequest struct {
	Answers []scoring.AssessmentAnswer `json:"answers"`
}

type SubmitAssessmentResponse struct {
	Message       string               `json:"message"`
	LearningLevel models.LearningLevel `json:"learning_level"`
	Score         int                  `json:"score"`
}

type PersonalitySummary struct {
	LearningLevel models.LearningLevel `json:"learning_level"`
	TotalScore    int                  `json:"total_score"`
	CompletedAt   time.Time            `json:"completed_at"`
}

type LatestTest struct {
	Score      int       `json:"score"`
	Percentage float64   `json:"percentage"`
	Passed     bool      `json:"passed"`
	Date       time.Time `json:"date"`
}

type ModuleProgress struct {
	ID          uint              `json:"id"`
	Topic       string            `json:"topic"`
	Difficulty  models.Difficulty `json:"difficulty"`
	IsCompleted bool              `json:"is_completed"`
	RetryCount  int               `json:"retry_count"`
	CreatedAt   time.Time         `json:"created_at"`
	LatestTest  *LatestTest       `json:"latest_test"`
}

type ActivityType string

const (
	ActivityPersonalityTest ActivityType = "personality_test"
	ActivityModuleCreated   ActivityType = "module_created"
	ActivityTestAttempt     ActivityType = "test_attempt"
)

type Activity struct {
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Date        time.Time    `json:"date"`
}

type ProgressStats struct {
	TotalModules     int                   `json:"total_modules"`
	CompletedModules int                   `json:"completed_modules"`
	LearningLevel    *models.LearningLevel `json:"learning_level"`
}

type ProgressSummary struct {
	PersonalityResult *PersonalitySummary `json:"personality_result"`
	Modules           []ModuleProgress    `json:"modules"`
	RecentActivity    []Activity          `json:"recent_activity"`
	Stats             ProgressStats       `json:"stats"`
}

// ===== MODULES =====

type GenerateModuleRequest struct {
	Topic string `json:"topic" validate:"required,min=2,max=255"`
}

type RoadmapRequest struct {
	Topic string `json:"topic" validate:"required,min=2,max=255"`
}

// HistoryQuery narrows the module history. Zero values leave a field unfiltered.
type HistoryQuery struct {
	Kind      string `json:"kind" form:"kind" validate:"omitempty,oneof=lesson roadmap"`
	Completed *bool  `json:"completed" form:"completed"`
	Limit     int    `json:"limit" form:"limit" validate:"min=0,max=100"`
	Offset    int    `json:"offset" form:"offset" validate:"min=0"`
}

type ModuleResponse struct {
	ID            uint                 `json:"id"`
	Topic         string               `json:"topic"`
	Difficulty    models.Difficulty    `json:"difficulty"`
	Kind          models.ModuleKind    `json:"kind"`
	Content       string               `json:"content"`
	ContentSource models.ContentSource `json:"content_source"`
	IsCompleted   bool                 `json:"is_completed"`
	RetryCount    int                  `json:"retry_count"`
	CreatedAt     time.Time            `json:"created_at"`
	// Test is attached right after generation.
	Test *TestResponse `json:"test,omitempty"`
}

// PublicQuestion is a quiz question without its answer key.
type PublicQuestion struct {
	ID       int                `json:"id"`
	Question string             `json:"question"`
	Options  models.QuizOptions `json:"options"`
}

type TestResponse struct {
	ID             uint                 `json:"id"`
	ModuleID       uint                 `json:"module_id"`
	Topic          string               `json:"topic"`
	Questions      []PublicQuestion     `json:"questions"`
	PassPercentage float64              `json:"pass_percentage"`
	QuestionSource models.ContentSource `json:"question_source"`
}

type SubmitTestRequest struct {
	Answers []models.TestAnswer `json:"answers"`
}

type SubmitTestResponse struct {
	AttemptID      uint                     `json:"attempt_id"`
	Score          int                      `json:"score"`
	TotalQuestions int                      `json:"total_questions"`
	Percentage     float64                  `json:"percentage"`
	Passed         bool                     `json:"passed"`
	PassPercentage float64                  `json:"pass_percentage"`
	RetryCount     int                      `json:"retry_count"`
	IsCompleted    bool                     `json:"module_completed"`
	Results        []scoring.QuestionResult `json:"results"`
}

type ModuleSummary struct {
	ID          uint              `json:"id"`
	Topic       string            `json:"topic"`
	Difficulty  models.Difficulty `json:"difficulty"`
	Kind        models.ModuleKind `json:"kind"`
	IsCompleted bool              `json:"is_completed"`
	RetryCount  int               `json:"retry_count"`
	CreatedAt   time.Time         `json:"created_at"`
}
