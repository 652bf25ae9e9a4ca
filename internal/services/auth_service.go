package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/auth"
	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/repositories"
	"github.com/SAP-F-2025/learning-service/internal/throttle"
	"github.com/SAP-F-2025/learning-service/internal/validator"
	"gorm.io/gorm"
)

const revokedTokenPrefix = "revoked:"

type authService struct {
	repo      repositories.Repository
	guard     *throttle.Guard
	tokens    *auth.TokenManager
	hasher    *auth.PasswordHasher
	cache     cache.CacheService
	notifier  EventNotifier
	logger    *slog.Logger
	svcLogger *ServiceLogger
	validator *validator.Validator
	now       func() time.Time
}

func NewAuthService(
	repo repositories.Repository,
	guard *throttle.Guard,
	tokens *auth.TokenManager,
	hasher *auth.PasswordHasher,
	cacheService cache.CacheService,
	notifier EventNotifier,
	logger *slog.Logger,
	validator *validator.Validator,
) AuthService {
	return &authService{
		repo:      repo,
		guard:     guard,
		tokens:    tokens,
		hasher:    hasher,
		cache:     cacheService,
		notifier:  notifier,
		logger:    logger,
		svcLogger: NewServiceLogger(logger, "auth"),
		validator: validator,
		now:       time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ===== REGISTRATION =====

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (resp *RegisterResponse, err error) {
	op := s.svcLogger.WithOperation(ctx, "register", 0)
	defer func() {
		var id uint
		if resp != nil {
			id = resp.User.ID
		}
		op.LogResult(id, "user", err)
	}()

	req.Email = normalizeEmail(req.Email)
	if req.Role == "" {
		req.Role = models.RoleStudent
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	switch {
	case err == nil:
		if existing.IsVerified {
			return nil, ErrEmailTaken
		}
		// Unverified duplicates get a fresh verification token instead of a
		// second account.
		token, _, err := s.tokens.Issue(existing.ID, auth.TokenVerify)
		if err != nil {
			return nil, err
		}
		return nil, &UnverifiedError{Email: existing.Email, VerificationToken: token}
	case !repositories.IsNotFoundError(err):
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:           req.Email,
		PasswordHash:    hash,
		Role:            req.Role,
		IsActive:        true,
		OnboardingStage: models.StageRegistered,
	}
	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.User().Create(ctx, tx, user); err != nil {
			return err
		}
		profile := &models.Profile{UserID: user.ID}
		if err := s.repo.Profile().Create(ctx, tx, profile); err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	tokens, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, err
	}
	verifyToken, _, err := s.tokens.Issue(user.ID, auth.TokenVerify)
	if err != nil {
		return nil, err
	}

	s.notifier.UserRegistered(ctx, user, verifyToken)

	return &RegisterResponse{
		User:              user,
		Tokens:            tokens,
		VerificationToken: verifyToken,
	}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token, auth.TokenVerify)
	if err != nil {
		s.svcLogger.LogSecurityEvent(ctx, SecurityEventInvalidToken, 0, "verification token rejected", "error", err)
		return nil, ErrInvalidToken
	}

	user, err := s.repo.User().GetByID(ctx, nil, claims.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.IsVerified {
		return nil, ErrAlreadyVerified
	}

	// Conditional write: a stage raised by another request since the read
	// above is kept.
	verified, err := s.repo.User().MarkVerified(ctx, nil, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}
	if !verified {
		return nil, ErrAlreadyVerified
	}

	user, err = s.repo.User().GetByID(ctx, nil, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	s.logger.Info("Email verified", "user_id", user.ID, "onboarding_stage", user.OnboardingStage.String())
	s.notifier.UserVerified(ctx, user)
	return user, nil
}

// ===== LOGIN =====

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	email := normalizeEmail(req.Email)

	// A blocked identity is rejected before credentials are looked at.
	if err := s.guard.Check(ctx, email); err != nil {
		return nil, err
	}

	req.Email = email
	if err := s.validator.Validate(req); err != nil {
		s.recordFailure(ctx, email)
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, email)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !s.passwordMatches(user, req.Password) || !user.IsActive {
		s.recordFailure(ctx, email)
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		token, _, err := s.tokens.Issue(user.ID, auth.TokenVerify)
		if err != nil {
			return nil, err
		}
		return nil, &UnverifiedError{Email: user.Email, VerificationToken: token}
	}

	if err := s.guard.Reset(ctx, email); err != nil {
		s.logger.Warn("Failed to reset login throttle", "email", MaskEmail(email), "error", err)
	}

	now := s.now().UTC()
	if err := s.repo.User().UpdateLastLogin(ctx, nil, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLoginAt = &now

	tokens, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return &LoginResponse{User: user, Tokens: tokens}, nil
}

func (s *authService) passwordMatches(user *models.User, password string) bool {
	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		s.logger.Error("Stored password hash unreadable", "user_id", user.ID, "error", err)
		return false
	}
	return ok
}

func (s *authService) recordFailure(ctx context.Context, email string) {
	s.svcLogger.LogSecurityEvent(ctx, SecurityEventLoginFailed, 0, "login failed", "email", MaskEmail(email))

	blockedFor, err := s.guard.RecordFailure(ctx, email)
	if err != nil {
		s.logger.Warn("Failed to record login failure", "email", MaskEmail(email), "error", err)
		return
	}
	if blockedFor == 0 {
		return
	}

	retryAfter := (&RateLimitedError{RetryAfter: blockedFor}).RetryAfterSeconds()
	s.svcLogger.LogSecurityEvent(ctx, SecurityEventRateLimitExceeded, 0, "login blocked",
		"email", MaskEmail(email),
		"retry_after", retryAfter)
	s.notifier.LoginBlocked(ctx, email, retryAfter)
}

// ===== TOKENS =====

// Logout revokes refreshToken. The token must belong to userID.
func (s *authService) Logout(ctx context.Context, userID uint, refreshToken string) error {
	claims, err := s.tokens.Parse(refreshToken, auth.TokenRefresh)
	if err != nil {
		return ErrInvalidToken
	}
	if claims.UserID != userID {
		s.svcLogger.LogSecurityEvent(ctx, SecurityEventInvalidToken, userID, "logout with another user's refresh token")
		return ErrInvalidToken
	}

	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.Set(ctx, revokedTokenPrefix+claims.ID, true, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.logger.Info("User logged out", "user_id", claims.UserID)
	return nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.TokenRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}

	revoked, err := s.cache.Exists(ctx, revokedTokenPrefix+claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.User().GetByID(ctx, nil, claims.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	access, accessClaims, err := s.tokens.Issue(user.ID, auth.TokenAccess)
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{AccessToken: access, ExpiresAt: accessClaims.ExpiresAt.Time}, nil
}

func (s *authService) Authenticate(_ context.Context, accessToken string) (uint, error) {
	claims, err := s.tokens.Parse(accessToken, auth.TokenAccess)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

// ===== PASSWORDS =====

func (s *authService) ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if !s.passwordMatches(user, req.OldPassword) {
		return ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.User().UpdatePassword(ctx, nil, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Password changed", "user_id", userID)
	return nil
}

// ===== PRIVILEGED ACCOUNTS =====

func (s *authService) CreatePrivilegedAccount(ctx context.Context, req *PrivilegedAccountRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var errs ValidationErrors
	if !req.IsStaff {
		errs = append(errs, *NewValidationError("is_staff", "must be true for a privileged account", req.IsStaff))
	}
	if !req.IsSuperuser {
		errs = append(errs, *NewValidationError("is_superuser", "must be true for a privileged account", req.IsSuperuser))
	}
	if !req.IsVerified {
		errs = append(errs, *NewValidationError("is_verified", "must be true for a privileged account", req.IsVerified))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:           req.Email,
		PasswordHash:    hash,
		Role:            models.RoleAdmin,
		IsVerified:      true,
		IsActive:        true,
		IsStaff:         true,
		IsSuperuser:     true,
		OnboardingStage: models.StageAssessmentComplete,
	}
	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.User().Create(ctx, tx, user); err != nil {
			return err
		}
		return s.repo.Profile().Create(ctx, tx, &models.Profile{UserID: user.ID})
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create privileged account: %w", err)
	}

	s.svcLogger.LogSecurityEvent(ctx, SecurityEventPrivilegedAccount, user.ID, "privileged account created",
		"email", MaskEmail(user.Email))
	return user, nil
}
