package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleClient  UserRole = "client"
	RoleAdmin   UserRole = "admin"
)

// OnboardingStage tracks how far a user has progressed through account setup.
type OnboardingStage int

const (
	StageRegistered         OnboardingStage = 0
	StageVerified           OnboardingStage = 1
	StageProfileComplete    OnboardingStage = 2
	StageAssessmentComplete OnboardingStage = 3
)

func (s OnboardingStage) String() string {
	switch s {
	case StageRegistered:
		return "registered"
	case StageVerified:
		return "verified"
	case StageProfileComplete:
		return "profile_complete"
	case StageAssessmentComplete:
		return "assessment_complete"
	default:
		return "unknown"
	}
}

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string   `json:"-" gorm:"not null;size:255"`
	Role         UserRole `json:"role" gorm:"not null;size:20;default:student"`

	// Status
	IsVerified      bool            `json:"verified" gorm:"default:false"`
	IsActive        bool            `json:"is_active" gorm:"default:true"`
	IsStaff         bool            `json:"is_staff" gorm:"default:false"`
	IsSuperuser     bool            `json:"is_superuser" gorm:"default:false"`
	OnboardingStage OnboardingStage `json:"onboarding_stage" gorm:"not null;default:0"`
	LastLoginAt     *time.Time      `json:"last_login_at"`

	Profile *Profile `json:"profile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// AdvanceTo moves the user forward to stage. It never moves backwards and
// reports whether the stage changed.
func (u *User) AdvanceTo(stage OnboardingStage) bool {
	if stage <= u.OnboardingStage {
		return false
	}
	u.OnboardingStage = stage
	return true
}

// MarkVerified flags the account as verified. Returns false when it already was.
func (u *User) MarkVerified() bool {
	if u.IsVerified {
		return false
	}
	u.IsVerified = true
	u.AdvanceTo(StageVerified)
	return true
}

// MarkProfileUpdated fires the profile trigger. Only the first update past
// verification changes the stage.
func (u *User) MarkProfileUpdated() bool {
	if u.OnboardingStage >= StageProfileComplete {
		return false
	}
	u.OnboardingStage = StageProfileComplete
	return true
}

// MarkAssessmentComplete always leaves the user at the final stage, even on a
// repeated submission.
func (u *User) MarkAssessmentComplete() {
	u.OnboardingStage = StageAssessmentComplete
}

func (u *User) IsPrivileged() bool {
	return u.Role == RoleAdmin && u.IsStaff && u.IsSuperuser
}
