package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/ports"
)

type stubSessions struct {
	current    domain.Session
	loginFn    func(ctx context.Context, email, password string) (domain.Session, error)
	registerFn func(ctx context.Context, in ports.RegisterInput) (domain.Session, error)
	logouts    int
}

func (s *stubSessions) Current() domain.Session { return s.current }

func (s *stubSessions) Login(ctx context.Context, email, password string) (domain.Session, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubSessions) Register(ctx context.Context, in ports.RegisterInput) (domain.Session, error) {
	return s.registerFn(ctx, in)
}

func (s *stubSessions) Logout(context.Context) error {
	s.logouts++
	s.current = domain.Session{}
	return nil
}

func caregiverSession() domain.Session {
	return domain.Session{Token: "tok", User: &domain.User{ID: "u1", Email: "c@x.io", Role: domain.RoleCaregiver}}
}

func TestSessionHandler_Login_Success(t *testing.T) {
	e := echo.New()
	stub := &stubSessions{
		loginFn: func(ctx context.Context, email, password string) (domain.Session, error) {
			if email != "c@x.io" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return caregiverSession(), nil
		},
	}
	h := NewSessionHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/session/login", strings.NewReader(`{"email":"c@x.io","password":"secret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["authenticated"] != true || resp["home"] != "/caregiver" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "tok") {
		t.Fatalf("token leaked into the response: %s", rec.Body.String())
	}
}

func TestSessionHandler_Login_InvalidCredentials(t *testing.T) {
	e := echo.New()
	stub := &stubSessions{
		loginFn: func(context.Context, string, string) (domain.Session, error) {
			return domain.Session{}, &domain.AuthError{Op: "login", Err: domain.ErrInvalidCredentials}
		},
	}
	h := NewSessionHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/session/login", strings.NewReader(`{"email":"c@x.io","password":"nope"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestSessionHandler_Login_BadPayload(t *testing.T) {
	e := echo.New()
	h := NewSessionHandler(&stubSessions{})

	req := httptest.NewRequest(http.MethodPost, "/session/login", strings.NewReader(`{"email":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	var he *echo.HTTPError
	if err := h.Login(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestSessionHandler_Register(t *testing.T) {
	e := echo.New()
	stub := &stubSessions{
		registerFn: func(_ context.Context, in ports.RegisterInput) (domain.Session, error) {
			if in.FirstName != "Cal" || in.Role != "CAREGIVER" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return caregiverSession(), nil
		},
	}
	h := NewSessionHandler(stub)

	body := `{"firstName":"Cal","lastName":"Rees","email":"c@x.io","password":"secret","role":"CAREGIVER"}`
	req := httptest.NewRequest(http.MethodPost, "/session/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestSessionHandler_LogoutAndDashboard(t *testing.T) {
	e := echo.New()
	stub := &stubSessions{current: caregiverSession()}
	h := NewSessionHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/dashboard", nil), rec)
	if err := h.Dashboard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/caregiver" {
		t.Fatalf("expected redirect to /caregiver, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}

	for range 2 {
		rec = httptest.NewRecorder()
		c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/session", nil), rec)
		if err := h.Logout(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/dashboard", nil), rec)
	_ = h.Dashboard(c)
	if rec.Header().Get(echo.HeaderLocation) != "/login" {
		t.Fatalf("signed-out landing = %q", rec.Header().Get(echo.HeaderLocation))
	}
}
