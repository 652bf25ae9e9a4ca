package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/learning-service/internal/generator"
	"github.com/SAP-F-2025/learning-service/internal/metrics"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/scoring"
	"github.com/SAP-F-2025/learning-service/internal/validator"
	"gorm.io/gorm"
)

type moduleService struct {
	repo           repositories.Repository
	generator      generator.ContentGenerator
	notifier       EventNotifier
	passPercentage float64
	logger         *slog.Logger
	svcLogger      *ServiceLogger
	validator      *validator.Validator
}

func NewModuleService(
	repo repositories.Repository,
	gen generator.ContentGenerator,
	notifier EventNotifier,
	passPercentage float64,
	logger *slog.Logger,
	validator *validator.Validator,
) ModuleService {
	if passPercentage <= 0 || passPercentage > 100 {
		passPercentage = models.DefaultPassPercentage
	}
	return &moduleService{
		repo:           repo,
		generator:      gen,
		notifier:       notifier,
		passPercentage: passPercentage,
		logger:         logger,
		svcLogger:      NewServiceLogger(logger, "module"),
		validator:      validator,
	}
}

// ===== CREATION =====

// Generate builds a lesson module and its quiz. Both generator calls happen
// before the transaction and always yield usable content, so the module and
// its test are written together or not at all.
func (s *moduleService) Generate(ctx context.Context, userID uint, req *GenerateModuleRequest) (resp *ModuleResponse, err error) {
	op := s.svcLogger.WithOperation(ctx, "generate_module", userID)
	defer func() {
		var id uint
		if resp != nil {
			id = resp.ID
		}
		op.LogResult(id, "module", err)
	}()

	req.Topic = strings.TrimSpace(req.Topic)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	difficulty, err := s.resolveDifficulty(ctx, userID)
	if err != nil {
		return nil, err
	}

	content := s.generator.GenerateContent(ctx, req.Topic, difficulty)
	quiz := s.generator.GenerateQuiz(ctx, req.Topic, difficulty)

	module := s.newModule(userID, req.Topic, difficulty, models.ModuleKindLesson, content, quiz)
	if err := s.persist(ctx, module); err != nil {
		return nil, err
	}

	return s.toModuleResponse(module, true), nil
}

// SearchRoadmap stores a roadmap as a module of kind roadmap. It gets a quiz
// like any other module.
func (s *moduleService) SearchRoadmap(ctx context.Context, userID uint, req *RoadmapRequest) (resp *ModuleResponse, err error) {
	op := s.svcLogger.WithOperation(ctx, "search_roadmap", userID)
	defer func() {
		var id uint
		if resp != nil {
			id = resp.ID
		}
		op.LogResult(id, "module", err)
	}()

	req.Topic = strings.TrimSpace(req.Topic)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	difficulty, err := s.resolveDifficulty(ctx, userID)
	if err != nil {
		return nil, err
	}

	content := s.generator.GenerateRoadmap(ctx, req.Topic)
	quiz := s.generator.GenerateQuiz(ctx, req.Topic, difficulty)

	module := s.newModule(userID, req.Topic, difficulty, models.ModuleKindRoadmap, content, quiz)
	if err := s.persist(ctx, module); err != nil {
		return nil, err
	}

	return s.toModuleResponse(module, true), nil
}

// resolveDifficulty reads the learner's level from the profile. A missing
// profile or level is not an error.
func (s *moduleService) resolveDifficulty(ctx context.Context, userID uint) (models.Difficulty, error) {
	profile, err := s.repo.Profile().GetByUserID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return scoring.BaselineDifficulty, nil
		}
		return "", fmt.Errorf("failed to get profile: %w", err)
	}
	return scoring.MapLearningLevelToDifficulty(profile.LearningRate), nil
}

func (s *moduleService) newModule(
	userID uint,
	topic string,
	difficulty models.Difficulty,
	kind models.ModuleKind,
	content generator.Result[string],
	quiz generator.Result[[]models.QuizQuestion],
) *models.LearningModule {
	return &models.LearningModule{
		UserID:        userID,
		Topic:         topic,
		Difficulty:    difficulty,
		Kind:          kind,
		Content:       content.Value,
		ContentSource: content.Source,
		Test: &models.ModuleTest{
			Questions:      quiz.Value,
			PassPercentage: s.passPercentage,
			QuestionSource: quiz.Source,
		},
	}
}

func (s *moduleService) persist(ctx context.Context, module *models.LearningModule) error {
	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Module().Create(ctx, tx, module)
	})
	if err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}

	s.logger.Info("Module created",
		"module_id", module.ID,
		"user_id", module.UserID,
		"kind", module.Kind,
		"difficulty", module.Difficulty,
		"content_source", module.ContentSource,
		"quiz_source", module.Test.QuestionSource)
	s.notifier.ModuleCreated(ctx, module)
	return nil
}

// ===== READS =====

func (s *moduleService) getModule(ctx context.Context, tx *gorm.DB, userID, moduleID uint) (*models.LearningModule, error) {
	module, err := s.repo.Module().GetByIDForUser(ctx, tx, moduleID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	return module, nil
}

func (s *moduleService) getModuleWithTest(ctx context.Context, tx *gorm.DB, userID, moduleID uint) (*models.LearningModule, error) {
	module, err := s.getModule(ctx, tx, userID, moduleID)
	if err != nil {
		return nil, err
	}
	if module.Test == nil {
		return nil, ErrTestNotFound
	}
	return module, nil
}

func (s *moduleService) Get(ctx context.Context, userID, moduleID uint) (*ModuleResponse, error) {
	module, err := s.getModule(ctx, nil, userID, moduleID)
	if err != nil {
		return nil, err
	}
	return s.toModuleResponse(module, false), nil
}

func (s *moduleService) GetTest(ctx context.Context, userID, moduleID uint) (*TestResponse, error) {
	module, err := s.getModuleWithTest(ctx, nil, userID, moduleID)
	if err != nil {
		return nil, err
	}
	return toTestResponse(module, module.Test), nil
}

// History lists the user's modules newest first. A nil query lists all of them.
func (s *moduleService) History(ctx context.Context, userID uint, query *HistoryQuery) ([]*ModuleSummary, error) {
	var filters repositories.ModuleFilters
	if query != nil {
		if err := s.validator.Validate(query); err != nil {
			return nil, err
		}
		filters = historyFilters(query)
	}

	modules, err := s.repo.Module().ListByUser(ctx, nil, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}

	summaries := make([]*ModuleSummary, len(modules))
	for i, m := range modules {
		summaries[i] = &ModuleSummary{
			ID:          m.ID,
			Topic:       m.Topic,
			Difficulty:  m.Difficulty,
			Kind:        m.Kind,
			IsCompleted: m.IsCompleted,
			RetryCount:  m.RetryCount,
			CreatedAt:   m.CreatedAt,
		}
	}
	return summaries, nil
}

func historyFilters(q *HistoryQuery) repositories.ModuleFilters {
	filters := repositories.ModuleFilters{
		Completed: q.Completed,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
	if q.Kind != "" {
		kind := q.Kind
		filters.Kind = &kind
	}
	return filters
}

// ===== TESTS =====

// SubmitTest grades the answers, appends an attempt and moves the module:
// a pass completes it, a fail bumps retry_count by one. Completion is never
// undone by a later failing attempt.
func (s *moduleService) SubmitTest(ctx context.Context, userID, moduleID uint, req *SubmitTestRequest) (resp *SubmitTestResponse, err error) {
	op := s.svcLogger.WithOperation(ctx, "submit_test", userID)
	defer func() { op.LogResult(moduleID, "module", err) }()

	module, err := s.getModuleWithTest(ctx, nil, userID, moduleID)
	if err != nil {
		return nil, err
	}
	test := module.Test

	eval, err := scoring.EvaluateTest(test.Questions, req.Answers)
	if err != nil {
		if errors.Is(err, scoring.ErrEmptyTest) {
			return nil, NewBusinessRuleError("test_has_questions", "the test has no questions, regenerate it", map[string]interface{}{
				"module_id": moduleID,
			})
		}
		return nil, err
	}
	passed := scoring.Passed(eval.Percentage, test.PassPercentage)

	attempt := &models.ModuleTestAttempt{
		ModuleID:       module.ID,
		TestID:         test.ID,
		UserID:         userID,
		Answers:        req.Answers,
		Score:          eval.Score,
		TotalQuestions: eval.Total,
		Percentage:     eval.Percentage,
		Passed:         passed,
	}
	wasCompleted := module.IsCompleted

	var updated *models.LearningModule
	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Attempt().Create(ctx, tx, attempt); err != nil {
			return err
		}

		var err error
		switch {
		case passed && !wasCompleted:
			err = s.repo.Module().MarkCompleted(ctx, tx, module.ID)
		case !passed:
			err = s.repo.Module().IncrementRetryCount(ctx, tx, module.ID)
		}
		if err != nil {
			return err
		}

		updated, err = s.getModule(ctx, tx, userID, module.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	metrics.RecordSubmission(passed)
	s.notifier.TestSubmitted(ctx, updated, attempt)
	if passed && !wasCompleted {
		s.notifier.ModuleCompleted(ctx, updated)
	}

	return &SubmitTestResponse{
		AttemptID:      attempt.ID,
		Score:          eval.Score,
		TotalQuestions: eval.Total,
		Percentage:     scoring.DisplayPercentage(eval.Percentage),
		Passed:         passed,
		PassPercentage: test.PassPercentage,
		RetryCount:     updated.RetryCount,
		IsCompleted:    updated.IsCompleted,
		Results:        eval.Results,
	}, nil
}

// RegenerateTest swaps in a fresh question set on the same test row. Pass
// threshold, retry count and completion are left alone.
func (s *moduleService) RegenerateTest(ctx context.Context, userID, moduleID uint) (resp *TestResponse, err error) {
	op := s.svcLogger.WithOperation(ctx, "regenerate_test", userID)
	defer func() { op.LogResult(moduleID, "module", err) }()

	module, err := s.getModuleWithTest(ctx, nil, userID, moduleID)
	if err != nil {
		return nil, err
	}

	quiz := s.generator.GenerateQuiz(ctx, module.Topic, module.Difficulty)

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Test().ReplaceQuestions(ctx, tx, module.Test.ID, quiz.Value, quiz.Source)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to regenerate test: %w", err)
	}

	module.Test.Questions = quiz.Value
	module.Test.QuestionSource = quiz.Source
	return toTestResponse(module, module.Test), nil
}

// ===== RESPONSE BUILDERS =====

func (s *moduleService) toModuleResponse(m *models.LearningModule, withTest bool) *ModuleResponse {
	resp := &ModuleResponse{
		ID:            m.ID,
		Topic:         m.Topic,
		Difficulty:    m.Difficulty,
		Kind:          m.Kind,
		Content:       m.Content,
		ContentSource: m.ContentSource,
		IsCompleted:   m.IsCompleted,
		RetryCount:    m.RetryCount,
		CreatedAt:     m.CreatedAt,
	}
	if withTest && m.Test != nil {
		resp.Test = toTestResponse(m, m.Test)
	}
	return resp
}

// toTestResponse drops the answer key.
func toTestResponse(m *models.LearningModule, t *models.ModuleTest) *TestResponse {
	questions := make([]PublicQuestion, len(t.Questions))
	for i, q := range t.Questions {
		questions[i] = PublicQuestion{
			ID:       q.ID,
			Question: q.Question,
			Options:  q.Options,
		}
	}
	return &TestResponse{
		ID:             t.ID,
		ModuleID:       m.ID,
		Topic:          m.Topic,
		Questions:      questions,
		PassPercentage: t.PassPercentage,
		QuestionSource: t.QuestionSource,
	}
}
