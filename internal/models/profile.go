package models

import (
	"time"

	"gorm.io/datatypes"
)

// Profile holds free-form learner attributes. LearningRate is written by the
// personality assessment and read when choosing module difficulty.
type Profile struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"uniqueIndex;not null"`

	FullName        string                      `json:"full_name" gorm:"size:255"`
	Location        string                      `json:"location" gorm:"size:255"`
	Bio             string                      `json:"bio" gorm:"type:text"`
	Skills          datatypes.JSONSlice[string] `json:"skills"`
	ExperienceLevel string                      `json:"experience_level" gorm:"size:50"`
	PortfolioLinks  datatypes.JSONSlice[string] `json:"portfolio_links"`
	GithubURL       *string                     `json:"github_url" gorm:"size:500"`

	// Study preferences
	LearningRate     string `json:"learning_rate" gorm:"size:50"`
	StudyTime        string `json:"study_time" gorm:"size:50"`
	LearningStyle    string `json:"learning_style" gorm:"size:50"`
	Motivation       string `json:"motivation" gorm:"size:100"`
	PriorKnowledge   string `json:"prior_knowledge" gorm:"size:50"`
	Confidence       string `json:"confidence" gorm:"size:50"`
	TestPreference   string `json:"test_preference" gorm:"size:50"`
	ModulePreference string `json:"module_preference" gorm:"size:50"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
