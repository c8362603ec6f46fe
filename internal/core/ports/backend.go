package ports

import (
	"context"
	"time"

	"github.com/carenet/portal/internal/core/domain"
)

// BearerSink receives the current credential. Every request issued after
// SetBearer returns must carry (or stop carrying) the token.
type BearerSink interface {
	SetBearer(token string)
}

// TokenInspector reads the expiry of an opaque bearer token.
type TokenInspector interface {
	ExpiresAt(token string) (time.Time, bool)
}

// AuthGateway talks to the authentication endpoints.
type AuthGateway interface {
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
}

// CareseekerGateway reads and writes the caller's careseeker profile.
// A missing record is reported as domain.ErrNotFound.
type CareseekerGateway interface {
	CareseekerProfile(ctx context.Context) (*domain.CareseekerProfile, error)
	SaveCareseekerProfile(ctx context.Context, p domain.CareseekerProfile) error
}

// CaregiverGateway reads and writes the caller's caregiver profile and the
// public caregiver directory.
type CaregiverGateway interface {
	CaregiverProfile(ctx context.Context) (*domain.CaregiverProfile, error)
	SaveCaregiverProfile(ctx context.Context, p domain.CaregiverProfile) error
	PublicCaregivers(ctx context.Context) ([]domain.PublicCaregiver, error)
	PublicCaregiver(ctx context.Context, id string) (*domain.PublicCaregiver, error)
}

// FeedbackGateway covers the caller-scoped feedback endpoints.
type FeedbackGateway interface {
	SubmitFeedback(ctx context.Context, f domain.Feedback) (*domain.Feedback, error)
	MyFeedback(ctx context.Context, email string) ([]domain.Feedback, error)
	Feedback(ctx context.Context, id, email string) (*domain.Feedback, error)
	UpdateFeedback(ctx context.Context, id, email string, f domain.Feedback) error
}

// AdminGateway covers the admin-only endpoints.
type AdminGateway interface {
	Careseekers(ctx context.Context) ([]domain.CareseekerAccount, error)
	SetCareseekerStatus(ctx context.Context, id string, status domain.AccountStatus) error
	AdminFeedback(ctx context.Context) ([]domain.Feedback, error)
	FeedbackSummary(ctx context.Context) (*domain.FeedbackSummary, error)
	DeleteFeedback(ctx context.Context, id string) error
}

// FileGateway uploads files and returns their public URL.
type FileGateway interface {
	Upload(ctx context.Context, f UploadFile) (string, error)
}

// Backend is the complete HTTP collaborator.
type Backend interface {
	BearerSink
	AuthGateway
	CareseekerGateway
	CaregiverGateway
	FeedbackGateway
	AdminGateway
	FileGateway
}
