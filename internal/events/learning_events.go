package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	// Account events
	EventUserRegistered EventType = "user.registered"
	EventUserVerified   EventType = "user.verified"
	EventLoginBlocked   EventType = "auth.login_blocked"

	// Onboarding events
	EventAssessmentCompleted EventType = "assessment.completed"

	// Module events
	EventModuleCreated       EventType = "module.created"
	EventModuleTestSubmitted EventType = "module.test_submitted"
	EventModuleCompleted     EventType = "module.completed"
)

const (
	eventSource  = "learning-service"
	eventVersion = "1.0"
)

// LearningEvent is the envelope for everything this service publishes.
type LearningEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	UserID    uint                   `json:"user_id"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

func NewLearningEvent(eventType EventType, userID uint, data interface{}) *LearningEvent {
	return &LearningEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

type UserRegisteredEvent struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	// VerificationToken lets a mailer consumer send the verification link.
	VerificationToken string `json:"verification_token"`
}

type UserVerifiedEvent struct {
	Email string `json:"email"`
}

type LoginBlockedEvent struct {
	Email      string `json:"email"`
	RetryAfter int    `json:"retry_after_seconds"`
}

type AssessmentCompletedEvent struct {
	TotalScore    int    `json:"total_score"`
	LearningLevel string `json:"learning_level"`
}

type ModuleCreatedEvent struct {
	ModuleID      uint   `json:"module_id"`
	Topic         string `json:"topic"`
	Difficulty    string `json:"difficulty"`
	Kind          string `json:"kind"`
	ContentSource string `json:"content_source"`
	QuizSource    string `json:"quiz_source"`
}

type ModuleTestSubmittedEvent struct {
	ModuleID   uint    `json:"module_id"`
	AttemptID  uint    `json:"attempt_id"`
	Score      int     `json:"score"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
	RetryCount int     `json:"retry_count"`
}

type ModuleCompletedEvent struct {
	ModuleID   uint   `json:"module_id"`
	Topic      string `json:"topic"`
	RetryCount int    `json:"retry_count"`
}
