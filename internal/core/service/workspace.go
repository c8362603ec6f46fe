package service

import (
	"maps"
	"sync"

	"github.com/rs/zerolog"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/infrastructure/metrics"
)

// View is an open page whose outstanding work stops when it is closed.
type View interface {
	Close()
}

// Workspace tracks the views currently open for the session. Closing a view
// is what unmounting a page means here.
type Workspace struct {
	logger zerolog.Logger

	mu    sync.Mutex
	views map[string]View
	owner string
}

func NewWorkspace(logger zerolog.Logger) *Workspace {
	return &Workspace{logger: logger, views: make(map[string]View)}
}

// OpenView returns the view under key, creating it with create when absent
// or of another type. created reports whether create ran.
func OpenView[V View](w *Workspace, key string, create func() V) (v V, created bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if existing, ok := w.views[key]; ok {
		if typed, ok := existing.(V); ok {
			return typed, false
		}
		existing.Close()
		delete(w.views, key)
	}
	v = create()
	w.views[key] = v
	metrics.OpenViews.Set(float64(len(w.views)))
	w.logger.Debug().Str("view", key).Msg("view opened")
	return v, true
}

// LookupView returns the open view under key.
func LookupView[V View](w *Workspace, key string) (V, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.views[key].(V)
	return v, ok
}

// CloseView closes and forgets the view under key.
func (w *Workspace) CloseView(key string) bool {
	w.mu.Lock()
	v, ok := w.views[key]
	delete(w.views, key)
	metrics.OpenViews.Set(float64(len(w.views)))
	w.mu.Unlock()
	if ok {
		v.Close()
		w.logger.Debug().Str("view", key).Msg("view closed")
	}
	return ok
}

// CloseAll closes every open view and returns how many there were.
func (w *Workspace) CloseAll() int {
	w.mu.Lock()
	views := w.views
	w.views = make(map[string]View)
	metrics.OpenViews.Set(0)
	w.mu.Unlock()
	for _, v := range views {
		v.Close()
	}
	if len(views) > 0 {
		w.logger.Info().Int("views", len(views)).Msg("closed all views")
	}
	return len(views)
}

func (w *Workspace) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.views)
}

// unsaved is a view that can hold edits not yet sent to the backend.
type unsaved interface {
	Dirty() bool
}

// Follow ties the open views to the session. Logout and a change of user
// close them all. When the session expires, views holding unsaved edits stay
// open for the same user to pick up after signing in again; the rest close.
func (w *Workspace) Follow(sessions *SessionManager) {
	if u := sessions.Current().User; u != nil {
		w.mu.Lock()
		w.owner = u.Email
		w.mu.Unlock()
	}
	sessions.Observe(func(ev SessionEvent, s domain.Session) {
		switch ev {
		case EventExpire:
			w.closeSaved()
			return
		case EventLogout:
			w.mu.Lock()
			w.owner = ""
			w.mu.Unlock()
			w.CloseAll()
			return
		}
		owner := ""
		if s.User != nil {
			owner = s.User.Email
		}
		w.mu.Lock()
		changed := owner != w.owner
		w.owner = owner
		w.mu.Unlock()
		if changed {
			w.CloseAll()
		}
	})
}

// closeSaved closes every view that has nothing left to save.
func (w *Workspace) closeSaved() {
	w.mu.Lock()
	open := maps.Clone(w.views)
	w.mu.Unlock()

	kept := 0
	for key, v := range open {
		if u, ok := v.(unsaved); ok && u.Dirty() {
			kept++
			continue
		}
		w.mu.Lock()
		if w.views[key] == v {
			delete(w.views, key)
		}
		metrics.OpenViews.Set(float64(len(w.views)))
		w.mu.Unlock()
		v.Close()
	}
	if kept > 0 {
		w.logger.Info().Int("views", kept).Msg("keeping views with unsaved edits until sign-in")
	}
}
