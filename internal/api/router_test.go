package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/carenet/portal/internal/core/service"
	"github.com/carenet/portal/internal/infrastructure/backend"
	"github.com/carenet/portal/internal/infrastructure/http/handlers"
	"github.com/carenet/portal/internal/infrastructure/store"
)

// fakeBackend plays the CareNet REST backend for a careseeker.
type fakeBackend struct {
	mu         sync.Mutex
	requestIDs []string
	expireSave bool
}

func (f *fakeBackend) routes(e *echo.Echo) {
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			f.mu.Lock()
			f.requestIDs = append(f.requestIDs, c.Request().Header.Get(backend.HeaderRequestID))
			f.mu.Unlock()
			return next(c)
		}
	})
	e.POST("/api/auth/login", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"accessToken": "tok", "role": "CARE_SEEKER", "userId": "u1",
			"email": "ann@x.io", "firstName": "Ann", "lastName": "Lee",
		})
	})
	e.GET("/api/careseeker/profile/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"firstName": "Ann", "lastName": "Lee", "phone": "0771234567",
			"city": "Kandy", "dob": "1990-01-01", "careTypes": []string{},
		})
	})
	e.PUT("/api/careseeker/profile/me", func(c echo.Context) error {
		f.mu.Lock()
		expire := f.expireSave
		f.mu.Unlock()
		if expire {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "token expired"})
		}
		return c.NoContent(http.StatusOK)
	})
}

type testServer struct {
	*httptest.Server
	fake   *fakeBackend
	portal *service.Portal
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	fake := &fakeBackend{}
	be := echo.New()
	fake.routes(be)
	backendSrv := httptest.NewServer(be)
	t.Cleanup(backendSrv.Close)

	client, err := backend.New(backend.Config{BaseURL: backendSrv.URL, Timeout: 2 * time.Second, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}
	rules := service.NewValidator(nil)
	kv := store.NewMemory()
	sessions, err := service.NewSessionManager(context.Background(), kv, client, client, backend.NewClaimsInspector(), rules, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	portal := service.NewPortal(service.PortalDeps{Sessions: sessions, Backend: client, Rules: rules, Logger: zerolog.Nop()})

	reg := prometheus.NewRegistry()
	e := NewRouter(Deps{
		Portal:            portal,
		Ready:             []handlers.Dependency{{Name: "session_store", Pinger: kv}},
		AuthRatePerMinute: 60,
		AuthBurst:         10,
		Logger:            zerolog.Nop(),
		Registerer:        reg,
		Gatherer:          reg,
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, fake: fake, portal: portal}
}

// noRedirect keeps 302s visible to the test.
var noRedirect = &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}}

func (s *testServer) do(t *testing.T, method, path, body string, jsonClient bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if jsonClient {
		req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	}
	resp, err := noRedirect.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		if resp := s.do(t, http.MethodGet, path, "", false); resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestRouter_GateRedirectsBeforeLogin(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/careseeker/profile", "", false)
	if resp.StatusCode != http.StatusFound || resp.Header.Get(echo.HeaderLocation) != "/dashboard" {
		t.Fatalf("expected redirect to /dashboard, got %d %q", resp.StatusCode, resp.Header.Get(echo.HeaderLocation))
	}
	resp = s.do(t, http.MethodGet, "/dashboard", "", false)
	if resp.Header.Get(echo.HeaderLocation) != "/login" {
		t.Fatalf("signed-out landing = %q", resp.Header.Get(echo.HeaderLocation))
	}
}

func TestRouter_LoginEditSave(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/session/login", `{"email":"ann@x.io","password":"secret"}`, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}

	resp = s.do(t, http.MethodGet, "/careseeker/profile", "", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", resp.StatusCode)
	}
	var snap service.ProfileSnapshot[struct {
		Location string `json:"location"`
	}]
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if snap.Working.Location != "Kandy" {
		t.Fatalf("city not used as location: %+v", snap.Working)
	}

	if resp := s.do(t, http.MethodGet, "/admin/careseekers", "", true); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("admin area: expected 403, got %d", resp.StatusCode)
	}

	resp = s.do(t, http.MethodPatch, "/careseeker/profile", `{"firstName":"Ann1"}`, true)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("invalid name: expected 422, got %d", resp.StatusCode)
	}
	var body errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Field != "firstName" {
		t.Fatalf("unexpected error body: %+v", body)
	}

	if resp := s.do(t, http.MethodPatch, "/careseeker/profile", `{"location":"Galle"}`, true); resp.StatusCode != http.StatusOK {
		t.Fatalf("edit: expected 200, got %d", resp.StatusCode)
	}
	if resp := s.do(t, http.MethodPost, "/careseeker/profile/save", "", true); resp.StatusCode != http.StatusOK {
		t.Fatalf("save: expected 200, got %d", resp.StatusCode)
	}

	s.fake.mu.Lock()
	ids := append([]string(nil), s.fake.requestIDs...)
	s.fake.mu.Unlock()
	for i, id := range ids {
		if id == "" {
			t.Fatalf("backend call %d carried no request id", i)
		}
	}
}

func TestRouter_UnauthorizedSaveKeepsEditsForSignIn(t *testing.T) {
	s := newTestServer(t)
	s.fake.expireSave = true

	s.do(t, http.MethodPost, "/session/login", `{"email":"ann@x.io","password":"secret"}`, true)
	s.do(t, http.MethodPatch, "/careseeker/profile", `{"location":"Galle"}`, true)

	resp := s.do(t, http.MethodPost, "/careseeker/profile/save", "", true)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if s.portal.Sessions.Current().Authenticated() {
		t.Fatal("session survived a 401")
	}
	if resp := s.do(t, http.MethodGet, "/careseeker/profile", "", true); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 from the gate, got %d", resp.StatusCode)
	}

	s.fake.mu.Lock()
	s.fake.expireSave = false
	s.fake.mu.Unlock()
	s.do(t, http.MethodPost, "/session/login", `{"email":"ann@x.io","password":"secret"}`, true)

	resp = s.do(t, http.MethodGet, "/careseeker/profile", "", true)
	var snap service.ProfileSnapshot[struct {
		Location string `json:"location"`
	}]
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if snap.Working.Location != "Galle" || !snap.Dirty {
		t.Fatalf("edit lost across sign-in: location=%q dirty=%v", snap.Working.Location, snap.Dirty)
	}
	if resp := s.do(t, http.MethodPost, "/careseeker/profile/save", "", true); resp.StatusCode != http.StatusOK {
		t.Fatalf("save after sign-in: expected 200, got %d", resp.StatusCode)
	}
}
