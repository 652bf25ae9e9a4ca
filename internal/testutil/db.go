// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/learning-service/internal/repositories/postgres"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite database private to t. The pool
// is pinned to one connection since every :memory: connection is its own
// database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, postgres.Migrate(db))
	return db
}

// NewSeededDB is NewTestDB plus the default personality question bank.
func NewSeededDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := NewTestDB(t)
	_, err := postgres.SeedPersonalityQuestions(context.Background(), db)
	require.NoError(t, err)
	return db
}
