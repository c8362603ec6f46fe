package service

import (
	"context"
	"io"
	"sync"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/ports"
)

// stubBackend is an in-memory ports.Backend. Each field, when set, is the
// canned answer of the matching endpoint.
type stubBackend struct {
	mu     sync.Mutex
	bearer string

	stubAuth

	careseeker     *domain.CareseekerProfile
	careseekerErr  error
	savedSeeker    []domain.CareseekerProfile
	saveSeekerErr  error
	caregiver      *domain.CaregiverProfile
	caregiverErr   error
	savedCaregiver []domain.CaregiverProfile
	public         []domain.PublicCaregiver

	feedback    map[string]domain.Feedback
	submitted   []domain.Feedback
	updated     map[string]domain.Feedback
	feedbackErr error

	accounts []domain.CareseekerAccount
	statuses map[string]domain.AccountStatus
	summary  *domain.FeedbackSummary
	deleted  []string
	adminErr error

	uploadURL  string
	uploadErr  error
	uploads    []string
	uploadHook func()
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		feedback: make(map[string]domain.Feedback),
		updated:  make(map[string]domain.Feedback),
		statuses: make(map[string]domain.AccountStatus),
	}
}

var _ ports.Backend = (*stubBackend)(nil)

func (b *stubBackend) SetBearer(token string) {
	b.mu.Lock()
	b.bearer = token
	b.mu.Unlock()
}

func (b *stubBackend) CareseekerProfile(context.Context) (*domain.CareseekerProfile, error) {
	if b.careseekerErr != nil {
		return nil, b.careseekerErr
	}
	if b.careseeker == nil {
		return nil, &domain.APIError{Op: "careseeker_profile_get", Status: 404, Message: "not found"}
	}
	p := b.careseeker.Clone()
	return &p, nil
}

func (b *stubBackend) SaveCareseekerProfile(_ context.Context, p domain.CareseekerProfile) error {
	if b.saveSeekerErr != nil {
		return b.saveSeekerErr
	}
	b.mu.Lock()
	b.savedSeeker = append(b.savedSeeker, p)
	b.mu.Unlock()
	return nil
}

func (b *stubBackend) CaregiverProfile(context.Context) (*domain.CaregiverProfile, error) {
	if b.caregiverErr != nil {
		return nil, b.caregiverErr
	}
	if b.caregiver == nil {
		return nil, &domain.APIError{Op: "caregiver_profile_get", Status: 404}
	}
	p := b.caregiver.Clone()
	return &p, nil
}

func (b *stubBackend) SaveCaregiverProfile(_ context.Context, p domain.CaregiverProfile) error {
	b.mu.Lock()
	b.savedCaregiver = append(b.savedCaregiver, p)
	b.mu.Unlock()
	return nil
}

func (b *stubBackend) PublicCaregivers(context.Context) ([]domain.PublicCaregiver, error) {
	return b.public, b.caregiverErr
}

func (b *stubBackend) PublicCaregiver(_ context.Context, id string) (*domain.PublicCaregiver, error) {
	for _, c := range b.public {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, &domain.APIError{Op: "public_caregiver_get", Status: 404}
}

func (b *stubBackend) SubmitFeedback(_ context.Context, f domain.Feedback) (*domain.Feedback, error) {
	if b.feedbackErr != nil {
		return nil, b.feedbackErr
	}
	b.submitted = append(b.submitted, f)
	f.ID = "fb-new"
	return &f, nil
}

func (b *stubBackend) MyFeedback(_ context.Context, email string) ([]domain.Feedback, error) {
	if b.feedbackErr != nil {
		return nil, b.feedbackErr
	}
	var out []domain.Feedback
	for _, f := range b.feedback {
		if f.Email == email {
			out = append(out, f)
		}
	}
	return out, nil
}

func (b *stubBackend) Feedback(_ context.Context, id, _ string) (*domain.Feedback, error) {
	if b.feedbackErr != nil {
		return nil, b.feedbackErr
	}
	f, ok := b.feedback[id]
	if !ok {
		return nil, &domain.APIError{Op: "feedback_get", Status: 404}
	}
	return &f, nil
}

func (b *stubBackend) UpdateFeedback(_ context.Context, id, _ string, f domain.Feedback) error {
	if b.feedbackErr != nil {
		return b.feedbackErr
	}
	b.updated[id] = f
	return nil
}

func (b *stubBackend) Careseekers(context.Context) ([]domain.CareseekerAccount, error) {
	if b.adminErr != nil {
		return nil, b.adminErr
	}
	return append([]domain.CareseekerAccount(nil), b.accounts...), nil
}

func (b *stubBackend) SetCareseekerStatus(_ context.Context, id string, status domain.AccountStatus) error {
	if b.adminErr != nil {
		return b.adminErr
	}
	b.statuses[id] = status
	return nil
}

func (b *stubBackend) AdminFeedback(context.Context) ([]domain.Feedback, error) {
	if b.adminErr != nil {
		return nil, b.adminErr
	}
	out := make([]domain.Feedback, 0, len(b.feedback))
	for _, f := range b.feedback {
		out = append(out, f)
	}
	return out, nil
}

func (b *stubBackend) FeedbackSummary(context.Context) (*domain.FeedbackSummary, error) {
	if b.adminErr != nil {
		return nil, b.adminErr
	}
	if b.summary == nil {
		s := domain.NewFeedbackSummary()
		return &s, nil
	}
	s := b.summary.Clone()
	return &s, nil
}

func (b *stubBackend) DeleteFeedback(_ context.Context, id string) error {
	if b.adminErr != nil {
		return b.adminErr
	}
	b.deleted = append(b.deleted, id)
	return nil
}

func (b *stubBackend) Upload(_ context.Context, f ports.UploadFile) (string, error) {
	if b.uploadHook != nil {
		b.uploadHook()
	}
	if _, err := io.Copy(io.Discard, f.Data); err != nil {
		return "", err
	}
	b.uploads = append(b.uploads, f.Name)
	return b.uploadURL, b.uploadErr
}
