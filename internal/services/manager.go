package services

import (
	"log/slog"

	"github.com/SAP-F-2025/learning-service/internal/auth"
	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/generator"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/throttle"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

// Dependencies are the collaborators shared by every service.
type Dependencies struct {
	Repo           repositories.Repository
	Cache          cache.CacheService
	Guard          *throttle.Guard
	Tokens         *auth.TokenManager
	Hasher         *auth.PasswordHasher
	Generator      generator.ContentGenerator
	Publisher      events.EventPublisher
	Validator      *validator.Validator
	Logger         *slog.Logger
	PassPercentage float64
}

type Manager struct {
	Auth       AuthService
	Profile    ProfileService
	Assessment AssessmentService
	Module     ModuleService
	Export     ExportService
}

func NewManager(deps Dependencies) *Manager {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	notifier := NewEventNotifier(deps.Publisher, deps.Logger)

	return &Manager{
		Auth: NewAuthService(deps.Repo, deps.Guard, deps.Tokens, deps.Hasher, deps.Cache,
			notifier, deps.Logger, deps.Validator),
		Profile:    NewProfileService(deps.Repo, deps.Logger, deps.Validator),
		Assessment: NewAssessmentService(deps.Repo, notifier, deps.Logger),
		Module: NewModuleService(deps.Repo, deps.Generator, notifier, deps.PassPercentage,
			deps.Logger, deps.Validator),
		Export: NewExportService(deps.Repo, deps.Logger),
	}
}
