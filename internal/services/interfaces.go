package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error)
	VerifyEmail(ctx context.Context, token string) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, userID uint, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error)
	ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error

	// CreatePrivilegedAccount is the only way to create an admin.
	CreatePrivilegedAccount(ctx context.Context, req *PrivilegedAccountRequest) (*models.User, error)

	// Authenticate resolves an access token to the user it was issued for.
	Authenticate(ctx context.Context, accessToken string) (uint, error)
}

type ProfileService interface {
	Get(ctx context.Context, userID uint) (*ProfileResponse, error)
	Update(ctx context.Context, userID uint, req *UpdateProfileRequest) (*ProfileResponse, error)
}

type AssessmentService interface {
	ListQuestions(ctx context.Context) ([]*models.PersonalityQuestion, error)
	Submit(ctx context.Context, userID uint, req *SubmitAssessmentRequest) (*SubmitAssessmentResponse, error)
	Progress(ctx context.Context, userID uint) (*ProgressSummary, error)
}

type ModuleService interface {
	Generate(ctx context.Context, userID uint, req *GenerateModuleRequest) (*ModuleResponse, error)
	Get(ctx context.Context, userID, moduleID uint) (*ModuleResponse, error)
	GetTest(ctx context.Context, userID, moduleID uint) (*TestResponse, error)
	SubmitTest(ctx context.Context, userID, moduleID uint, req *SubmitTestRequest) (*SubmitTestResponse, error)
	RegenerateTest(ctx context.Context, userID, moduleID uint) (*TestResponse, error)
	SearchRoadmap(ctx context.Context, userID uint, req *RoadmapRequest) (*ModuleResponse, error)
	History(ctx context.Context, userID uint, query *HistoryQuery) ([]*ModuleSummary, error)
}

type ExportService interface {
	// ExportHistory writes an XLSX workbook of the user's modules and attempts.
	ExportHistory(ctx context.Context, userID uint, w io.Writer) error
}
