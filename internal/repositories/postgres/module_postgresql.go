package postgres

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ModulePostgreSQL struct {
	db *gorm.DB
}

func NewModulePostgreSQL(db *gorm.DB) repositories.ModuleRepository {
	return &ModulePostgreSQL{db: db}
}

func (m ModulePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	return pick(m.db, tx)
}

// Create inserts the module. An attached Test is inserted with it.
func (m ModulePostgreSQL) Create(ctx context.Context, tx *gorm.DB, module *models.LearningModule) error {
	return m.getDB(tx).WithContext(ctx).Create(module).Error
}

func (m ModulePostgreSQL) GetByIDForUser(ctx context.Context, tx *gorm.DB, id, userID uint) (*models.LearningModule, error) {
	var module models.LearningModule
	if err := m.getDB(tx).WithContext(ctx).
		Preload("Test").
		Where("id = ? AND user_id = ?", id, userID).
		First(&module).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (m ModulePostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID uint, filters repositories.ModuleFilters) ([]*models.LearningModule, error) {
	var modules []*models.LearningModule

	query := m.getDB(tx).WithContext(ctx).Model(&models.LearningModule{}).Where("user_id = ?", userID)
	if filters.Kind != nil {
		query = query.Where("kind = ?", *filters.Kind)
	}
	if filters.Completed != nil {
		query = query.Where("is_completed = ?", *filters.Completed)
	}

	// created_at can tie within one clock tick, id keeps the order stable
	query = query.Order("created_at DESC, id DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (m ModulePostgreSQL) IncrementRetryCount(ctx context.Context, tx *gorm.DB, id uint) error {
	return m.getDB(tx).WithContext(ctx).Model(&models.LearningModule{}).
		Where("id = ?", id).
		Update("retry_count", gorm.Expr("retry_count + 1")).Error
}

func (m ModulePostgreSQL) MarkCompleted(ctx context.Context, tx *gorm.DB, id uint) error {
	return m.getDB(tx).WithContext(ctx).Model(&models.LearningModule{}).
		Where("id = ?", id).
		Update("is_completed", true).Error
}

type TestPostgreSQL struct {
	db *gorm.DB
}

func NewTestPostgreSQL(db *gorm.DB) repositories.TestRepository {
	return &TestPostgreSQL{db: db}
}

func (t TestPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	return pick(t.db, tx)
}

func (t TestPostgreSQL) Create(ctx context.Context, tx *gorm.DB, test *models.ModuleTest) error {
	return t.getDB(tx).WithContext(ctx).Create(test).Error
}

func (t TestPostgreSQL) ReplaceQuestions(ctx context.Context, tx *gorm.DB, testID uint, questions []models.QuizQuestion, source models.ContentSource) error {
	result := t.getDB(tx).WithContext(ctx).Model(&models.ModuleTest{ID: testID}).
		Updates(map[string]interface{}{
			"questions":       datatypes.NewJSONSlice(questions),
			"question_source": source,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
