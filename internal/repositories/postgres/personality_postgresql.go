package postgres

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PersonalityPostgreSQL struct {
	db *gorm.DB
}

func NewPersonalityPostgreSQL(db *gorm.DB) repositories.PersonalityRepository {
	return &PersonalityPostgreSQL{db: db}
}

func (p PersonalityPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	return pick(p.db, tx)
}

func (p PersonalityPostgreSQL) ListQuestions(ctx context.Context, tx *gorm.DB) ([]*models.PersonalityQuestion, error) {
	var questions []*models.PersonalityQuestion
	err := p.getDB(tx).WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Order("sort_order ASC, id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (p PersonalityPostgreSQL) CountQuestions(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := p.getDB(tx).WithContext(ctx).Model(&models.PersonalityQuestion{}).Count(&count).Error
	return count, err
}

func (p PersonalityPostgreSQL) CreateQuestions(ctx context.Context, tx *gorm.DB, questions []*models.PersonalityQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return p.getDB(tx).WithContext(ctx).Create(&questions).Error
}

func (p PersonalityPostgreSQL) GetOptionsByIDs(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]models.PersonalityOption, error) {
	result := make(map[uint]models.PersonalityOption, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var options []models.PersonalityOption
	if err := p.getDB(tx).WithContext(ctx).Where("id IN ?", ids).Find(&options).Error; err != nil {
		return nil, err
	}
	for _, o := range options {
		result[o.ID] = o
	}
	return result, nil
}

func (p PersonalityPostgreSQL) UpsertResult(ctx context.Context, tx *gorm.DB, result *models.PersonalityResult) error {
	return p.getDB(tx).WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_score", "learning_level", "updated_at"}),
	}).Create(result).Error
}

func (p PersonalityPostgreSQL) GetResultByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.PersonalityResult, error) {
	var result models.PersonalityResult
	if err := p.getDB(tx).WithContext(ctx).Where("user_id = ?", userID).First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
