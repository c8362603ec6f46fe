package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carenet/portal/internal/api/middleware"
	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/ports"
	"github.com/carenet/portal/internal/core/service"
	"github.com/carenet/portal/internal/infrastructure/store"
)

// stubBackend answers the endpoints the handler tests reach. Calling any
// other ports.Backend method panics on the nil embedded interface.
type stubBackend struct {
	ports.Backend

	role       domain.Role
	careseeker *domain.CareseekerProfile
	saved      []domain.CareseekerProfile
	saveErr    error
	uploadURL  string
	uploaded   []byte

	caregiver      *domain.CaregiverProfile
	savedCaregiver []domain.CaregiverProfile

	feedback  map[string]domain.Feedback
	submitted []domain.Feedback
	updated   map[string]domain.Feedback

	accounts []domain.CareseekerAccount
	statuses map[string]domain.AccountStatus
	summary  *domain.FeedbackSummary
	deleted  []string
}

func newStubBackend(role domain.Role) *stubBackend {
	return &stubBackend{
		role:     role,
		feedback: make(map[string]domain.Feedback),
		updated:  make(map[string]domain.Feedback),
		statuses: make(map[string]domain.AccountStatus),
	}
}

func (b *stubBackend) SetBearer(string) {}

func (b *stubBackend) Login(context.Context, ports.Credentials) (*ports.AuthResult, error) {
	first, last := "Ann", "Lee"
	return &ports.AuthResult{
		Token: "tok", UserID: "u1", Email: "ann@x.io", Role: string(b.role),
		FirstName: &first, LastName: &last,
	}, nil
}

func (b *stubBackend) CareseekerProfile(context.Context) (*domain.CareseekerProfile, error) {
	if b.careseeker == nil {
		return nil, &domain.APIError{Op: "careseeker_profile_get", Status: 404, Message: "not found"}
	}
	p := b.careseeker.Clone()
	return &p, nil
}

func (b *stubBackend) SaveCareseekerProfile(_ context.Context, p domain.CareseekerProfile) error {
	if b.saveErr != nil {
		return b.saveErr
	}
	b.saved = append(b.saved, p)
	return nil
}

func (b *stubBackend) CaregiverProfile(context.Context) (*domain.CaregiverProfile, error) {
	if b.caregiver == nil {
		return nil, &domain.APIError{Op: "caregiver_profile_get", Status: 404, Message: "not found"}
	}
	p := b.caregiver.Clone()
	return &p, nil
}

func (b *stubBackend) SaveCaregiverProfile(_ context.Context, p domain.CaregiverProfile) error {
	b.savedCaregiver = append(b.savedCaregiver, p)
	return nil
}

func (b *stubBackend) Upload(_ context.Context, f ports.UploadFile) (string, error) {
	data, err := io.ReadAll(f.Data)
	if err != nil {
		return "", err
	}
	b.uploaded = data
	return b.uploadURL, nil
}

func (b *stubBackend) SubmitFeedback(_ context.Context, f domain.Feedback) (*domain.Feedback, error) {
	f.ID = "new"
	b.submitted = append(b.submitted, f)
	return &f, nil
}

func (b *stubBackend) Feedback(_ context.Context, id, _ string) (*domain.Feedback, error) {
	f, ok := b.feedback[id]
	if !ok {
		return nil, &domain.APIError{Op: "feedback_get", Status: 404, Message: "not found"}
	}
	return &f, nil
}

func (b *stubBackend) UpdateFeedback(_ context.Context, id, _ string, f domain.Feedback) error {
	b.updated[id] = f
	return nil
}

func (b *stubBackend) Careseekers(context.Context) ([]domain.CareseekerAccount, error) {
	return append([]domain.CareseekerAccount(nil), b.accounts...), nil
}

func (b *stubBackend) SetCareseekerStatus(_ context.Context, id string, s domain.AccountStatus) error {
	b.statuses[id] = s
	return nil
}

func (b *stubBackend) AdminFeedback(context.Context) ([]domain.Feedback, error) {
	rows := make([]domain.Feedback, 0, len(b.feedback))
	for _, f := range b.feedback {
		rows = append(rows, f)
	}
	return rows, nil
}

func (b *stubBackend) FeedbackSummary(context.Context) (*domain.FeedbackSummary, error) {
	if b.summary == nil {
		return nil, nil
	}
	s := b.summary.Clone()
	return &s, nil
}

func (b *stubBackend) DeleteFeedback(_ context.Context, id string) error {
	b.deleted = append(b.deleted, id)
	return nil
}

// newPortal signs in against b with its role and returns the portal.
func newPortal(t *testing.T, b *stubBackend) *service.Portal {
	t.Helper()
	rules := service.NewValidator(nil)
	sessions, err := service.NewSessionManager(context.Background(), store.NewMemory(), b, b, nil, rules, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	if _, err := sessions.Login(context.Background(), "ann@x.io", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	return service.NewPortal(service.PortalDeps{
		Sessions: sessions,
		Backend:  b,
		Rules:    rules,
		Logger:   zerolog.Nop(),
	})
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator(service.NewValidator(nil))
	return e
}

// jsonContext builds an echo context for a JSON request, with the portal's
// user attached the way the Session middleware does.
func jsonContext(e *echo.Echo, p *service.Portal, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		if u := p.Sessions.Current().User; u != nil {
			c.Set(middleware.UserKey, *u)
		}
	}
	return c, rec
}
