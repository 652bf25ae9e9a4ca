package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	return pick(u.db, tx)
}

func (u UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return u.getDB(tx).WithContext(ctx).Create(user).Error
}

func (u UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).Preload("Profile").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u UserPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	err := u.getDB(tx).WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (u UserPostgreSQL) MarkVerified(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	result := u.getDB(tx).WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_verified = ?", id, false).
		Updates(map[string]interface{}{
			"is_verified":      true,
			"onboarding_stage": stageAtLeast(models.StageVerified),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (u UserPostgreSQL) AdvanceStage(ctx context.Context, tx *gorm.DB, id uint, stage models.OnboardingStage) (bool, error) {
	result := u.getDB(tx).WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND onboarding_stage < ?", id, stage).
		Update("onboarding_stage", stage)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// stageAtLeast evaluates against the row being written, never a value read earlier.
func stageAtLeast(stage models.OnboardingStage) clause.Expr {
	return gorm.Expr("CASE WHEN onboarding_stage < ? THEN ? ELSE onboarding_stage END", stage, stage)
}

func (u UserPostgreSQL) UpdateStage(ctx context.Context, tx *gorm.DB, id uint, stage models.OnboardingStage) error {
	return u.getDB(tx).WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("onboarding_stage", stage).Error
}

func (u UserPostgreSQL) UpdatePassword(ctx context.Context, tx *gorm.DB, id uint, passwordHash string) error {
	result := u.getDB(tx).WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (u UserPostgreSQL) UpdateLastLogin(ctx context.Context, tx *gorm.DB, id uint, loginTime time.Time) error {
	return u.getDB(tx).WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login_at", loginTime).Error
}

type ProfilePostgreSQL struct {
	db *gorm.DB
}

func NewProfilePostgreSQL(db *gorm.DB) repositories.ProfileRepository {
	return &ProfilePostgreSQL{db: db}
}

func (p ProfilePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	return pick(p.db, tx)
}

func (p ProfilePostgreSQL) Create(ctx context.Context, tx *gorm.DB, profile *models.Profile) error {
	return p.getDB(tx).WithContext(ctx).Create(profile).Error
}

func (p ProfilePostgreSQL) GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := p.getDB(tx).WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (p ProfilePostgreSQL) Update(ctx context.Context, tx *gorm.DB, profile *models.Profile) error {
	return p.getDB(tx).WithContext(ctx).Save(profile).Error
}

func (p ProfilePostgreSQL) UpdateLearningRate(ctx context.Context, tx *gorm.DB, userID uint, learningRate string) error {
	result := p.getDB(tx).WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("learning_rate", learningRate)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
