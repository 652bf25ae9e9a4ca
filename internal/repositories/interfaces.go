package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository groups every store behind one handle so services can run several
// writes in a single transaction.
type Repository interface {
	User() UserRepository
	Profile() ProfileRepository
	Personality() PersonalityRepository
	Module() ModuleRepository
	Test() TestRepository
	Attempt() AttemptRepository

	// Transaction runs fn inside a database transaction. Pass tx to the
	// repository methods to enlist them.
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ===== SHARED FILTER STRUCTS =====

type ModuleFilters struct {
	Kind      *string `json:"kind"`
	Completed *bool   `json:"completed"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
}

// ===== ERROR HELPERS =====

func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError needs TranslateError enabled on the gorm config.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
