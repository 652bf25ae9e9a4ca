package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/scoring"
	"gorm.io/gorm"
)

// progressAttemptLimit bounds the attempts read for the activity feed.
const progressAttemptLimit = 5

type assessmentService struct {
	repo      repositories.Repository
	notifier  EventNotifier
	logger    *slog.Logger
	svcLogger *ServiceLogger
}

func NewAssessmentService(repo repositories.Repository, notifier EventNotifier, logger *slog.Logger) AssessmentService {
	return &assessmentService{
		repo:      repo,
		notifier:  notifier,
		logger:    logger,
		svcLogger: NewServiceLogger(logger, "assessment"),
	}
}

func (s *assessmentService) ListQuestions(ctx context.Context) ([]*models.PersonalityQuestion, error) {
	questions, err := s.repo.Personality().ListQuestions(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

// Submit scores the answers and, in one transaction, stores the result, copies
// the learning level onto the profile and forces the onboarding stage to its
// final value.
func (s *assessmentService) Submit(ctx context.Context, userID uint, req *SubmitAssessmentRequest) (resp *SubmitAssessmentResponse, err error) {
	op := s.svcLogger.WithOperation(ctx, "submit_assessment", userID)
	defer func() { op.LogResult(0, "personality_result", err) }()

	options, err := s.repo.Personality().GetOptionsByIDs(ctx, nil, scoring.OptionIDs(req.Answers))
	if err != nil {
		return nil, fmt.Errorf("failed to load options: %w", err)
	}

	total, err := scoring.ScoreAssessment(req.Answers, options)
	if err != nil {
		return nil, err
	}

	result := &models.PersonalityResult{
		UserID:        userID,
		TotalScore:    total,
		LearningLevel: scoring.CalculateLearningLevel(total),
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		user, err := s.repo.User().GetByID(ctx, tx, userID)
		if err != nil {
			return err
		}

		if err := s.repo.Personality().UpsertResult(ctx, tx, result); err != nil {
			return err
		}

		if user.Profile == nil {
			err = s.repo.Profile().Create(ctx, tx, &models.Profile{
				UserID:       userID,
				LearningRate: string(result.LearningLevel),
			})
		} else {
			err = s.repo.Profile().UpdateLearningRate(ctx, tx, userID, string(result.LearningLevel))
		}
		if err != nil {
			return err
		}

		user.MarkAssessmentComplete()
		return s.repo.User().UpdateStage(ctx, tx, userID, user.OnboardingStage)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to store assessment result: %w", err)
	}

	s.notifier.AssessmentCompleted(ctx, userID, result)

	return &SubmitAssessmentResponse{
		Message:       "Test submitted successfully",
		LearningLevel: result.LearningLevel,
		Score:         total,
	}, nil
}

func (s *assessmentService) Progress(ctx context.Context, userID uint) (*ProgressSummary, error) {
	result, err := s.repo.Personality().GetResultByUserID(ctx, nil, userID)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to get personality result: %w", err)
		}
		result = nil
	}

	modules, err := s.repo.Module().ListByUser(ctx, nil, userID, repositories.ModuleFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}

	ids := make([]uint, len(modules))
	for i, m := range modules {
		ids[i] = m.ID
	}
	latest, err := s.repo.Attempt().LatestByModule(ctx, nil, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest attempts: %w", err)
	}

	recent, err := s.repo.Attempt().ListByUser(ctx, nil, userID, progressAttemptLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	return BuildProgressSummary(result, modules, latest, recent), nil
}
