package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type profileService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewProfileService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) ProfileService {
	return &profileService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *profileService) Get(ctx context.Context, userID uint) (*ProfileResponse, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Profile == nil {
		return nil, ErrProfileNotFound
	}

	return &ProfileResponse{
		Profile:         user.Profile,
		OnboardingStage: int(user.OnboardingStage),
	}, nil
}

// Update applies the non-nil fields of req and fires the profile onboarding
// trigger in the same transaction.
func (s *profileService) Update(ctx context.Context, userID uint, req *UpdateProfileRequest) (*ProfileResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		profile *models.Profile
		user    *models.User
	)
	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		user, err = s.repo.User().GetByID(ctx, tx, userID)
		if err != nil {
			return err
		}

		profile = user.Profile
		if profile == nil {
			profile = &models.Profile{UserID: userID}
		}
		applyProfileUpdate(profile, req)

		if profile.ID == 0 {
			err = s.repo.Profile().Create(ctx, tx, profile)
		} else {
			err = s.repo.Profile().Update(ctx, tx, profile)
		}
		if err != nil {
			return err
		}

		if user.OnboardingStage >= models.StageProfileComplete {
			return nil
		}
		advanced, err := s.repo.User().AdvanceStage(ctx, tx, user.ID, models.StageProfileComplete)
		if err != nil {
			return err
		}
		if advanced {
			user.MarkProfileUpdated()
		}
		return nil
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("Profile updated", "user_id", userID, "onboarding_stage", user.OnboardingStage.String())
	return &ProfileResponse{
		Profile:         profile,
		OnboardingStage: int(user.OnboardingStage),
	}, nil
}

func applyProfileUpdate(p *models.Profile, req *UpdateProfileRequest) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	setString(&p.FullName, req.FullName)
	setString(&p.Location, req.Location)
	setString(&p.Bio, req.Bio)
	setString(&p.ExperienceLevel, req.ExperienceLevel)
	setString(&p.LearningRate, req.LearningRate)
	setString(&p.StudyTime, req.StudyTime)
	setString(&p.LearningStyle, req.LearningStyle)
	setString(&p.Motivation, req.Motivation)
	setString(&p.PriorKnowledge, req.PriorKnowledge)
	setString(&p.Confidence, req.Confidence)
	setString(&p.TestPreference, req.TestPreference)
	setString(&p.ModulePreference, req.ModulePreference)

	if req.Skills != nil {
		p.Skills = datatypes.NewJSONSlice(*req.Skills)
	}
	if req.PortfolioLinks != nil {
		p.PortfolioLinks = datatypes.NewJSONSlice(*req.PortfolioLinks)
	}
	if req.GithubURL != nil {
		if *req.GithubURL == "" {
			p.GithubURL = nil
		} else {
			url := *req.GithubURL
			p.GithubURL = &url
		}
	}
}
