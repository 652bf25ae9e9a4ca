package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/models"
)

// EventNotifier publishes domain events after the state they describe has been
// committed. Publishing never fails the calling operation.
type EventNotifier interface {
	UserRegistered(ctx context.Context, user *models.User, verificationToken string)
	UserVerified(ctx context.Context, user *models.User)
	LoginBlocked(ctx context.Context, email string, retryAfterSeconds int)
	AssessmentCompleted(ctx context.Context, userID uint, result *models.PersonalityResult)
	ModuleCreated(ctx context.Context, module *models.LearningModule)
	TestSubmitted(ctx context.Context, module *models.LearningModule, attempt *models.ModuleTestAttempt)
	ModuleCompleted(ctx context.Context, module *models.LearningModule)
}

type eventNotifier struct {
	eventPublisher events.EventPublisher
	logger         *slog.Logger
}

func NewEventNotifier(eventPublisher events.EventPublisher, logger *slog.Logger) EventNotifier {
	return &eventNotifier{
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (n *eventNotifier) publish(ctx context.Context, eventType events.EventType, userID uint, data interface{}) {
	if n.eventPublisher == nil {
		return
	}

	event := events.NewLearningEvent(eventType, userID, data)
	if err := n.eventPublisher.Publish(ctx, event); err != nil {
		n.logger.WarnContext(ctx, "Failed to publish event",
			"event_type", eventType,
			"event_id", event.ID,
			"user_id", userID,
			"error", err)
	}
}

// ===== ACCOUNT EVENTS =====

func (n *eventNotifier) UserRegistered(ctx context.Context, user *models.User, verificationToken string) {
	n.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredEvent{
		Email:             user.Email,
		Role:              string(user.Role),
		VerificationToken: verificationToken,
	})
}

func (n *eventNotifier) UserVerified(ctx context.Context, user *models.User) {
	n.publish(ctx, events.EventUserVerified, user.ID, events.UserVerifiedEvent{Email: user.Email})
}

func (n *eventNotifier) LoginBlocked(ctx context.Context, email string, retryAfterSeconds int) {
	n.publish(ctx, events.EventLoginBlocked, 0, events.LoginBlockedEvent{
		Email:      email,
		RetryAfter: retryAfterSeconds,
	})
}

// ===== LEARNING EVENTS =====

func (n *eventNotifier) AssessmentCompleted(ctx context.Context, userID uint, result *models.PersonalityResult) {
	n.publish(ctx, events.EventAssessmentCompleted, userID, events.AssessmentCompletedEvent{
		TotalScore:    result.TotalScore,
		LearningLevel: string(result.LearningLevel),
	})
}

func (n *eventNotifier) ModuleCreated(ctx context.Context, module *models.LearningModule) {
	data := events.ModuleCreatedEvent{
		ModuleID:      module.ID,
		Topic:         module.Topic,
		Difficulty:    string(module.Difficulty),
		Kind:          string(module.Kind),
		ContentSource: string(module.ContentSource),
	}
	if module.Test != nil {
		data.QuizSource = string(module.Test.QuestionSource)
	}
	n.publish(ctx, events.EventModuleCreated, module.UserID, data)
}

func (n *eventNotifier) TestSubmitted(ctx context.Context, module *models.LearningModule, attempt *models.ModuleTestAttempt) {
	n.publish(ctx, events.EventModuleTestSubmitted, attempt.UserID, events.ModuleTestSubmittedEvent{
		ModuleID:   module.ID,
		AttemptID:  attempt.ID,
		Score:      attempt.Score,
		Percentage: attempt.Percentage,
		Passed:     attempt.Passed,
		RetryCount: module.RetryCount,
	})
}

func (n *eventNotifier) ModuleCompleted(ctx context.Context, module *models.LearningModule) {
	n.publish(ctx, events.EventModuleCompleted, module.UserID, events.ModuleCompletedEvent{
		ModuleID:   module.ID,
		Topic:      module.Topic,
		RetryCount: module.RetryCount,
	})
}
