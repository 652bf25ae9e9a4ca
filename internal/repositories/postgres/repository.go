package postgres

import (
	"context"

	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB

	user        repositories.UserRepository
	profile     repositories.ProfileRepository
	personality repositories.PersonalityRepository
	module      repositories.ModuleRepository
	test        repositories.TestRepository
	attempt     repositories.AttemptRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:          db,
		user:        NewUserPostgreSQL(db),
		profile:     NewProfilePostgreSQL(db),
		personality: NewPersonalityPostgreSQL(db),
		module:      NewModulePostgreSQL(db),
		test:        NewTestPostgreSQL(db),
		attempt:     NewAttemptPostgreSQL(db),
	}
}

func (r *Repository) User() repositories.UserRepository               { return r.user }
func (r *Repository) Profile() repositories.ProfileRepository         { return r.profile }
func (r *Repository) Personality() repositories.PersonalityRepository { return r.personality }
func (r *Repository) Module() repositories.ModuleRepository           { return r.module }
func (r *Repository) Test() repositories.TestRepository               { return r.test }
func (r *Repository) Attempt() repositories.AttemptRepository         { return r.attempt }

func (r *Repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// pick returns tx when the caller is inside a transaction.
func pick(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
