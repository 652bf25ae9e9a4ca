package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository stores identities. Emails are expected already lowercased.
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)

	// MarkVerified sets is_verified and lifts the stage to StageVerified in one
	// statement. Returns false when the user was already verified.
	MarkVerified(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	// AdvanceStage raises the stage to stage only while it is lower. Returns
	// false when the stored stage was already at or past it.
	AdvanceStage(ctx context.Context, tx *gorm.DB, id uint, stage models.OnboardingStage) (bool, error)
	UpdateStage(ctx context.Context, tx *gorm.DB, id uint, stage models.OnboardingStage) error
	UpdatePassword(ctx context.Context, tx *gorm.DB, id uint, passwordHash string) error
	UpdateLastLogin(ctx context.Context, tx *gorm.DB, id uint, loginTime time.Time) error
}

type ProfileRepository interface {
	Create(ctx context.Context, tx *gorm.DB, profile *models.Profile) error
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.Profile, error)
	Update(ctx context.Context, tx *gorm.DB, profile *models.Profile) error
	UpdateLearningRate(ctx context.Context, tx *gorm.DB, userID uint, learningRate string) error
}
