package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/ports"
	"github.com/carenet/portal/internal/infrastructure/metrics"
)

// SessionEvent names the transition an observer is told about.
type SessionEvent string

const (
	EventLogin    SessionEvent = "login"
	EventRegister SessionEvent = "register"
	EventLogout   SessionEvent = "logout"
	EventExpire   SessionEvent = "expire"
	EventUpdate   SessionEvent = "update"
)

// SessionManager owns the client-side authentication state. Token and user
// are always changed, persisted and cleared together.
type SessionManager struct {
	store     ports.KeyValueStore
	auth      ports.AuthGateway
	bearer    ports.BearerSink
	inspector ports.TokenInspector
	rules     *Validator
	logger    zerolog.Logger

	mu        sync.Mutex
	state     domain.Session
	pending   int
	lapsed    bool // expired with no sign-in or logout since
	observers []func(SessionEvent, domain.Session)
}

// NewSessionManager restores the persisted session from store. A malformed,
// partial or unreadable record yields a signed-out session and is removed
// from the store. Only a failing store is an error.
// inspector may be nil, in which case token expiry is never checked locally.
func NewSessionManager(ctx context.Context, store ports.KeyValueStore, auth ports.AuthGateway, bearer ports.BearerSink, inspector ports.TokenInspector, rules *Validator, logger zerolog.Logger) (*SessionManager, error) {
	if rules == nil {
		rules = NewValidator(nil)
	}
	m := &SessionManager{
		store:     store,
		auth:      auth,
		bearer:    bearer,
		inspector: inspector,
		rules:     rules,
		logger:    logger,
	}
	if err := m.restore(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SessionManager) restore(ctx context.Context) error {
	token, hasToken, err := m.store.Get(ctx, ports.KeyToken)
	var raw string
	var hasUser bool
	if err == nil {
		raw, hasUser, err = m.store.Get(ctx, ports.KeyUser)
	}
	corrupt := errors.Is(err, ports.ErrCorruptState)
	if err != nil && !corrupt {
		return fmt.Errorf("restore session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !corrupt && !hasToken && !hasUser {
		m.bearer.SetBearer("")
		return nil
	}

	var user *domain.User
	var reason string
	if corrupt {
		m.logger.Warn().Err(err).Msg("persisted session unreadable")
		reason = "unreadable store"
	} else {
		user, reason = decodeUser(token, raw, hasToken, hasUser)
	}
	if reason == "" && m.expired(token, time.Now()) {
		reason = "token expired"
	}
	if reason != "" {
		m.logger.Warn().Str("reason", reason).Msg("discarding persisted session")
		m.bearer.SetBearer("")
		if err := m.store.Delete(ctx, ports.KeyToken, ports.KeyUser); err != nil {
			m.logger.Error().Err(err).Msg("failed to clear persisted session")
		}
		return nil
	}

	m.state = domain.Session{Token: token, User: user}
	m.bearer.SetBearer(token)
	metrics.SessionTransitionsTotal.WithLabelValues("restore").Inc()
	m.logger.Info().Str("email", user.Email).Str("role", string(user.Role)).Msg("session restored")
	return nil
}

func decodeUser(token, raw string, hasToken, hasUser bool) (*domain.User, string) {
	if !hasToken || token == "" {
		return nil, "user without token"
	}
	if !hasUser {
		return nil, "token without user"
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, "malformed user"
	}
	if !u.Role.Valid() {
		return nil, "unknown role"
	}
	return &u, ""
}

func (m *SessionManager) expired(token string, now time.Time) bool {
	if m.inspector == nil {
		return false
	}
	exp, ok := m.inspector.ExpiresAt(token)
	return ok && !exp.After(now)
}

// Current returns a copy of the session.
func (m *SessionManager) Current() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state.Clone()
	s.Loading = m.pending > 0
	return s
}

// Observe registers fn to be called after every session transition.
func (m *SessionManager) Observe(fn func(SessionEvent, domain.Session)) {
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	m.mu.Unlock()
}

func (m *SessionManager) begin() {
	m.mu.Lock()
	m.pending++
	m.mu.Unlock()
}

func (m *SessionManager) end() {
	m.mu.Lock()
	m.pending--
	m.mu.Unlock()
}

// Login authenticates against the backend. On failure the current session is
// left untouched.
func (m *SessionManager) Login(ctx context.Context, email, password string) (domain.Session, error) {
	creds := ports.Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := m.rules.Struct(creds); err != nil {
		metrics.AuthFailuresTotal.WithLabelValues("login", "validation").Inc()
		return domain.Session{}, err
	}

	m.begin()
	settled := false
	defer func() {
		if !settled {
			m.end()
		}
	}()

	res, err := m.auth.Login(ctx, creds)
	if err != nil {
		m.authFailed("login", err)
		return domain.Session{}, err
	}
	user, err := userFromResult(res, nil, nil)
	if err != nil {
		m.authFailed("login", err)
		return domain.Session{}, err
	}
	settled = true
	return m.establish(ctx, EventLogin, res.Token, user)
}

// Register creates an account and signs it in. Names missing from the
// backend answer fall back to the submitted ones.
func (m *SessionManager) Register(ctx context.Context, in ports.RegisterInput) (domain.Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Role = strings.ToUpper(strings.TrimSpace(in.Role))
	if err := m.rules.Struct(in); err != nil {
		metrics.AuthFailuresTotal.WithLabelValues("register", "validation").Inc()
		return domain.Session{}, err
	}

	m.begin()
	settled := false
	defer func() {
		if !settled {
			m.end()
		}
	}()

	res, err := m.auth.Register(ctx, in)
	if err != nil {
		m.authFailed("register", err)
		return domain.Session{}, err
	}
	user, err := userFromResult(res, &in.FirstName, &in.LastName)
	if err != nil {
		m.authFailed("register", err)
		return domain.Session{}, err
	}
	settled = true
	return m.establish(ctx, EventRegister, res.Token, user)
}

func userFromResult(res *ports.AuthResult, firstName, lastName *string) (domain.User, error) {
	if res == nil || res.Token == "" {
		return domain.User{}, errors.New("auth response carried no token")
	}
	role, err := domain.ParseRole(res.Role)
	if err != nil {
		return domain.User{}, err
	}
	u := domain.User{ID: res.UserID, Email: res.Email, Role: role}
	switch {
	case res.FirstName != nil:
		u.FirstName = *res.FirstName
	case firstName != nil:
		u.FirstName = *firstName
	}
	switch {
	case res.LastName != nil:
		u.LastName = *res.LastName
	case lastName != nil:
		u.LastName = *lastName
	}
	return u, nil
}

func (m *SessionManager) authFailed(op string, err error) {
	var ne *domain.NetworkError
	reason := "error"
	switch {
	case domain.IsAuth(err):
		reason = "credentials"
	case errors.As(err, &ne):
		reason = "network"
	}
	metrics.AuthFailuresTotal.WithLabelValues(op, reason).Inc()
	m.logger.Warn().Err(err).Str("op", op).Msg("authentication failed")
}

// establish persists and publishes a new session and ends the operation begun
// by the caller, so the published session no longer counts it as loading. If
// persistence fails the in-memory session is not changed.
func (m *SessionManager) establish(ctx context.Context, event SessionEvent, token string, user domain.User) (domain.Session, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		m.end()
		return domain.Session{}, fmt.Errorf("encode session user: %w", err)
	}

	m.mu.Lock()
	m.pending--
	if err := m.store.SetAll(ctx, map[string]string{ports.KeyToken: token, ports.KeyUser: string(raw)}); err != nil {
		m.mu.Unlock()
		m.logger.Error().Err(err).Msg("failed to persist session")
		return domain.Session{}, fmt.Errorf("persist session: %w", err)
	}
	m.state = domain.Session{Token: token, User: &user}
	m.lapsed = false
	m.bearer.SetBearer(token)
	snap, observers := m.publishLocked()
	m.mu.Unlock()

	metrics.SessionTransitionsTotal.WithLabelValues(string(event)).Inc()
	m.logger.Info().Str("event", string(event)).Str("email", user.Email).Str("role", string(user.Role)).Msg("session established")
	notify(observers, event, snap)
	return snap, nil
}

// Logout clears the session. Calling it without a session still makes sure
// nothing is left in the store, and observers hear of it only when the
// session had expired.
func (m *SessionManager) Logout(ctx context.Context) error {
	return m.clear(ctx, EventLogout, "")
}

// Expire clears the session after a fatal authentication error.
func (m *SessionManager) Expire(ctx context.Context, reason string) error {
	return m.clear(ctx, EventExpire, reason)
}

func (m *SessionManager) clear(ctx context.Context, event SessionEvent, reason string) error {
	m.mu.Lock()
	had := m.state.Authenticated()
	// A logout after expiry is still announced, so views kept for the
	// expired user are dropped.
	announce := had || (event == EventLogout && m.lapsed)
	m.lapsed = event == EventExpire && (had || m.lapsed)
	m.state = domain.Session{}
	m.bearer.SetBearer("")
	err := m.store.Delete(ctx, ports.KeyToken, ports.KeyUser)
	snap, observers := m.publishLocked()
	m.mu.Unlock()

	if err != nil {
		m.logger.Error().Err(err).Str("event", string(event)).Msg("failed to clear persisted session")
		err = fmt.Errorf("clear session: %w", err)
	}
	if had {
		metrics.SessionTransitionsTotal.WithLabelValues(string(event)).Inc()
		evt := m.logger.Info()
		if event == EventExpire {
			evt = m.logger.Warn().Str("reason", reason)
		}
		evt.Str("event", string(event)).Msg("session cleared")
	}
	if announce {
		notify(observers, event, snap)
	}
	return err
}

// UpdateProfile merges fields into the current user. Without a session it
// does nothing. A persistence failure is logged, not returned.
func (m *SessionManager) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) domain.Session {
	m.mu.Lock()
	if !m.state.Authenticated() {
		snap := m.state.Clone()
		m.mu.Unlock()
		return snap
	}
	user := upd.Apply(*m.state.User)
	raw, err := json.Marshal(user)
	if err == nil {
		err = m.store.SetAll(ctx, map[string]string{ports.KeyToken: m.state.Token, ports.KeyUser: string(raw)})
	}
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to persist profile update")
	}
	m.state.User = &user
	snap, observers := m.publishLocked()
	m.mu.Unlock()

	notify(observers, EventUpdate, snap)
	return snap
}

// EnsureFresh expires the session if its token has passed its exp claim and
// reports whether a session is still active.
func (m *SessionManager) EnsureFresh(ctx context.Context, now time.Time) bool {
	m.mu.Lock()
	active := m.state.Authenticated()
	stale := active && m.expired(m.state.Token, now)
	m.mu.Unlock()

	if stale {
		_ = m.Expire(ctx, "token expired")
		return false
	}
	return active
}

func (m *SessionManager) publishLocked() (domain.Session, []func(SessionEvent, domain.Session)) {
	snap := m.state.Clone()
	snap.Loading = m.pending > 0
	observers := make([]func(SessionEvent, domain.Session), len(m.observers))
	copy(observers, m.observers)
	return snap, observers
}

func notify(observers []func(SessionEvent, domain.Session), event SessionEvent, s domain.Session) {
	for _, fn := range observers {
		fn(event, s.Clone())
	}
}
