package models

import (
	"time"

	"gorm.io/datatypes"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

type ModuleKind string

const (
	ModuleKindLesson  ModuleKind = "lesson"
	ModuleKindRoadmap ModuleKind = "roadmap"
)

// ContentSource records whether a piece of content came from the generator or
// from the built-in fallback.
type ContentSource string

const (
	SourceGenerated ContentSource = "generated"
	SourceFallback  ContentSource = "fallback"
)

const (
	QuizQuestionCount     = 5
	DefaultPassPercentage = 70.0
)

// OptionLabels are the only accepted answer labels, in display order.
var OptionLabels = []string{"A", "B", "C", "D"}

type LearningModule struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	UserID        uint          `json:"user_id" gorm:"not null;index"`
	Topic         string        `json:"topic" gorm:"size:255;not null"`
	Difficulty    Difficulty    `json:"difficulty" gorm:"size:20;not null;default:intermediate"`
	Kind          ModuleKind    `json:"kind" gorm:"size:20;not null;default:lesson"`
	Content       string        `json:"content" gorm:"type:text"`
	ContentSource ContentSource `json:"content_source" gorm:"size:20;default:generated"`
	IsCompleted   bool          `json:"is_completed" gorm:"default:false"`
	RetryCount    int           `json:"retry_count" gorm:"not null;default:0"`

	Test *ModuleTest `json:"test,omitempty" gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LearningModule) TableName() string {
	return "learning_modules"
}

type QuizOptions struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

// Get returns the option text for label, or "" for an unknown label.
func (o QuizOptions) Get(label string) string {
	switch label {
	case "A":
		return o.A
	case "B":
		return o.B
	case "C":
		return o.C
	case "D":
		return o.D
	}
	return ""
}

type QuizQuestion struct {
	ID            int         `json:"id"`
	Question      string      `json:"question"`
	Options       QuizOptions `json:"options"`
	CorrectAnswer string      `json:"correct_answer"`
}

type ModuleTest struct {
	ID             uint                              `json:"id" gorm:"primaryKey"`
	ModuleID       uint                              `json:"module_id" gorm:"uniqueIndex;not null"`
	Questions      datatypes.JSONSlice[QuizQuestion] `json:"questions" gorm:"not null"`
	PassPercentage float64                           `json:"pass_percentage" gorm:"not null;default:70"`
	QuestionSource ContentSource                     `json:"question_source" gorm:"size:20;default:generated"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ModuleTest) TableName() string {
	return "module_tests"
}

// TestAnswer is one submitted answer label for a quiz question.
type TestAnswer struct {
	QuestionID int    `json:"question_id"`
	Answer     string `json:"answer"`
}

// ModuleTestAttempt is written once per submission and never updated.
type ModuleTestAttempt struct {
	ID             uint                            `json:"id" gorm:"primaryKey"`
	ModuleID       uint                            `json:"module_id" gorm:"not null;index"`
	TestID         uint                            `json:"test_id" gorm:"not null;index"`
	UserID         uint                            `json:"user_id" gorm:"not null;index"`
	Answers        datatypes.JSONSlice[TestAnswer] `json:"answers"`
	Score          int                             `json:"score" gorm:"not null"`
	TotalQuestions int                             `json:"total_questions" gorm:"not null"`
	Percentage     float64                         `json:"percentage" gorm:"not null"`
	Passed         bool                            `json:"passed" gorm:"not null"`

	Module *LearningModule `json:"module,omitempty" gorm:"foreignKey:ModuleID"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (ModuleTestAttempt) TableName() string {
	return "module_test_attempts"
}
