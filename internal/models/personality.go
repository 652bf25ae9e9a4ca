package models

import "time"

type LearningLevel string

const (
	LearningLevelLow    LearningLevel = "low"
	LearningLevelMedium LearningLevel = "medium"
	LearningLevelHigh   LearningLevel = "high"
)

func (l LearningLevel) Valid() bool {
	switch l {
	case LearningLevelLow, LearningLevelMedium, LearningLevelHigh:
		return true
	}
	return false
}

type PersonalityQuestion struct {
	ID      uint                `json:"id" gorm:"primaryKey"`
	Text    string              `json:"text" gorm:"type:text;not null"`
	Order   int                 `json:"order" gorm:"column:sort_order;not null;default:0;index"`
	Options []PersonalityOption `json:"options" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
}

func (PersonalityQuestion) TableName() string {
	return "personality_questions"
}

type PersonalityOption struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"size:255;not null"`
	// Score is never sent to learners.
	Score int `json:"-" gorm:"not null;default:0"`
}

func (PersonalityOption) TableName() string {
	return "personality_options"
}

// PersonalityResult is upserted per user on every assessment submission.
type PersonalityResult struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	UserID        uint          `json:"user_id" gorm:"uniqueIndex;not null"`
	TotalScore    int           `json:"total_score" gorm:"not null"`
	LearningLevel LearningLevel `json:"learning_level" gorm:"size:20;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PersonalityResult) TableName() string {
	return "personality_results"
}
