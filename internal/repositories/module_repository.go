package repositories

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"gorm.io/gorm"
)

type PersonalityRepository interface {
	// ListQuestions returns questions by display order, options included.
	ListQuestions(ctx context.Context, tx *gorm.DB) ([]*models.PersonalityQuestion, error)
	CountQuestions(ctx context.Context, tx *gorm.DB) (int64, error)
	CreateQuestions(ctx context.Context, tx *gorm.DB, questions []*models.PersonalityQuestion) error
	GetOptionsByIDs(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]models.PersonalityOption, error)

	// UpsertResult keeps one result per user.
	UpsertResult(ctx context.Context, tx *gorm.DB, result *models.PersonalityResult) error
	GetResultByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.PersonalityResult, error)
}

// ModuleRepository scopes every read to the owning user.
type ModuleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, module *models.LearningModule) error
	GetByIDForUser(ctx context.Context, tx *gorm.DB, id, userID uint) (*models.LearningModule, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint, filters ModuleFilters) ([]*models.LearningModule, error)

	IncrementRetryCount(ctx context.Context, tx *gorm.DB, id uint) error
	MarkCompleted(ctx context.Context, tx *gorm.DB, id uint) error
}

type TestRepository interface {
	Create(ctx context.Context, tx *gorm.DB, test *models.ModuleTest) error
	ReplaceQuestions(ctx context.Context, tx *gorm.DB, testID uint, questions []models.QuizQuestion, source models.ContentSource) error
}

// AttemptRepository is append-only.
type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *models.ModuleTestAttempt) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint, limit int) ([]*models.ModuleTestAttempt, error)
	ListByModule(ctx context.Context, tx *gorm.DB, moduleID, userID uint) ([]*models.ModuleTestAttempt, error)
	// LatestByModule maps module ID to its most recent attempt by userID.
	LatestByModule(ctx context.Context, tx *gorm.DB, userID uint, moduleIDs []uint) (map[uint]*models.ModuleTestAttempt, error)
}
