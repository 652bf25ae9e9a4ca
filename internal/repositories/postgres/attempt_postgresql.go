package postgres

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a AttemptPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	return pick(a.db, tx)
}

func (a AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.ModuleTestAttempt) error {
	return a.getDB(tx).WithContext(ctx).Omit("Module").Create(attempt).Error
}

func (a AttemptPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID uint, limit int) ([]*models.ModuleTestAttempt, error) {
	var attempts []*models.ModuleTestAttempt

	query := a.getDB(tx).WithContext(ctx).
		Preload("Module").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a AttemptPostgreSQL) ListByModule(ctx context.Context, tx *gorm.DB, moduleID, userID uint) ([]*models.ModuleTestAttempt, error) {
	var attempts []*models.ModuleTestAttempt
	if err := a.getDB(tx).WithContext(ctx).
		Where("module_id = ? AND user_id = ?", moduleID, userID).
		Order("created_at DESC, id DESC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a AttemptPostgreSQL) LatestByModule(ctx context.Context, tx *gorm.DB, userID uint, moduleIDs []uint) (map[uint]*models.ModuleTestAttempt, error) {
	latest := make(map[uint]*models.ModuleTestAttempt, len(moduleIDs))
	if len(moduleIDs) == 0 {
		return latest, nil
	}

	var attempts []*models.ModuleTestAttempt
	if err := a.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND module_id IN ?", userID, moduleIDs).
		Order("created_at DESC, id DESC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}

	// rows arrive newest first, keep the first seen per module
	for _, attempt := range attempts {
		if _, ok := latest[attempt.ModuleID]; !ok {
			latest[attempt.ModuleID] = attempt
		}
	}
	return latest, nil
}
