package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/infrastructure/metrics"
)

// Record is a value an Editable can hold. Equal must compare normalized
// values so that an edit undone by hand is not reported as dirty.
type Record[T any] interface {
	Clone() T
	Equal(T) bool
}

// EntityState is the lifecycle state of an Editable.
type EntityState string

const (
	StateLoading EntityState = "loading"
	StateReady   EntityState = "ready"
	StateSaving  EntityState = "saving"
)

// EntityConfig wires an Editable to its backend calls. Load, Save and Default
// are required; the hooks are optional.
type EntityConfig[T any] struct {
	// Name labels metrics and logs, e.g. "careseeker_profile".
	Name    string
	Load    func(ctx context.Context) (T, error)
	Save    func(ctx context.Context, v T) error
	Default func() T

	Validate func(v T) error
	// OnSaved runs after a successful save, outside the entity lock.
	OnSaved func(ctx context.Context, v T)
	// OnAuthError runs when a load or save fails with an authentication error.
	OnAuthError func(ctx context.Context, err error)

	Logger zerolog.Logger
}

// EntitySnapshot is a consistent copy of an Editable for rendering.
type EntitySnapshot[T any] struct {
	State   EntityState `json:"state"`
	Working T           `json:"working"`
	Remote  T           `json:"remote"`
	Dirty   bool        `json:"dirty"`
	Error   string      `json:"error,omitempty"`
	Info    string      `json:"info,omitempty"`
	Warning string      `json:"warning,omitempty"`
}

// Editable keeps a remote record, a working copy the user edits, and the
// messages shown alongside them. Network calls run outside the lock. Loads
// and saves are sequenced separately: a load result is dropped when a later
// load superseded it or a save landed while it was in flight, and a save
// result is kept even if a load started meanwhile.
type Editable[T Record[T]] struct {
	cfg EntityConfig[T]

	life context.Context
	stop context.CancelFunc

	mu      sync.Mutex
	loadGen uint64 // latest Load started
	loads   uint64 // Load results applied
	saves   uint64 // Save results applied
	loading bool
	saving  bool
	closed  bool
	remote  T
	working T
	errMsg  string
	info    string
	warning string
}

// NewEditable returns an entity in the loading state holding the default
// record, so there is always something to render.
func NewEditable[T Record[T]](cfg EntityConfig[T]) *Editable[T] {
	life, stop := context.WithCancel(context.Background())
	def := cfg.Default()
	return &Editable[T]{
		cfg:     cfg,
		life:    life,
		stop:    stop,
		loading: true,
		remote:  def.Clone(),
		working: def.Clone(),
	}
}

// request derives a context that is cancelled by either ctx or Close.
func (e *Editable[T]) request(ctx context.Context) (context.Context, context.CancelFunc) {
	reqCtx, cancel := context.WithCancel(ctx)
	release := context.AfterFunc(e.life, cancel)
	return reqCtx, func() {
		release()
		cancel()
	}
}

// Load fetches the record. A missing record yields the default silently; any
// other failure yields the default with a warning. Load only fails when the
// entity is closed.
func (e *Editable[T]) Load(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.ErrEntityClosed
	}
	e.loadGen++
	gen, saves := e.loadGen, e.saves
	e.loading = true
	e.mu.Unlock()

	reqCtx, done := e.request(ctx)
	v, err := e.cfg.Load(reqCtx)
	done()

	e.mu.Lock()
	if e.closed || gen != e.loadGen {
		closed := e.closed
		e.mu.Unlock()
		metrics.EntityLoadsTotal.WithLabelValues(e.cfg.Name, "stale").Inc()
		e.cfg.Logger.Debug().Str("entity", e.cfg.Name).Msg("discarding superseded load")
		if closed {
			return domain.ErrEntityClosed
		}
		return nil
	}
	e.loading = false
	if saves != e.saves {
		// The fetch may predate the save; the saved record stays current.
		e.mu.Unlock()
		metrics.EntityLoadsTotal.WithLabelValues(e.cfg.Name, "stale").Inc()
		e.cfg.Logger.Debug().Str("entity", e.cfg.Name).Msg("discarding load that raced a save")
		return nil
	}
	e.loads++
	e.errMsg, e.info, e.warning = "", "", ""
	outcome := "ok"
	switch {
	case err == nil:
		e.remote, e.working = v.Clone(), v.Clone()
	case errors.Is(err, domain.ErrNotFound):
		outcome = "empty"
		def := e.cfg.Default()
		e.remote, e.working = def.Clone(), def.Clone()
	default:
		outcome = "fallback"
		def := e.cfg.Default()
		e.remote, e.working = def.Clone(), def.Clone()
		e.warning = domain.MsgLoadFallback
		if domain.IsAuth(err) {
			e.errMsg = domain.MsgSessionExpired
		}
	}
	e.mu.Unlock()

	metrics.EntityLoadsTotal.WithLabelValues(e.cfg.Name, outcome).Inc()
	if outcome == "fallback" {
		e.cfg.Logger.Warn().Err(err).Str("entity", e.cfg.Name).Msg("load failed, using defaults")
		e.authFailed(ctx, err)
	}
	return nil
}

func (e *Editable[T]) authFailed(ctx context.Context, err error) {
	if e.cfg.OnAuthError != nil && domain.IsAuth(err) {
		e.cfg.OnAuthError(context.WithoutCancel(ctx), err)
	}
}

// Mutate applies fn to the working copy.
func (e *Editable[T]) Mutate(fn func(*T)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrEntityClosed
	}
	if e.loading {
		return domain.ErrNotReady
	}
	fn(&e.working)
	return nil
}

// TryMutate is Mutate for edits that can be rejected; a non-nil error from fn
// leaves the working copy unchanged.
func (e *Editable[T]) TryMutate(fn func(*T) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrEntityClosed
	}
	if e.loading {
		return domain.ErrNotReady
	}
	next := e.working.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	e.working = next
	return nil
}

// Save submits the working copy. It is a no-op when nothing changed, and is
// rejected with domain.ErrSaveInFlight while another save is running.
// Validation failures never reach the network.
func (e *Editable[T]) Save(ctx context.Context) error {
	e.mu.Lock()
	switch {
	case e.closed:
		e.mu.Unlock()
		return domain.ErrEntityClosed
	case e.loading:
		e.mu.Unlock()
		return domain.ErrNotReady
	case e.saving:
		e.mu.Unlock()
		return domain.ErrSaveInFlight
	case e.working.Equal(e.remote):
		e.mu.Unlock()
		return nil
	}
	submitted := e.working.Clone()
	if e.cfg.Validate != nil {
		if err := e.cfg.Validate(submitted); err != nil {
			e.errMsg, e.info = domain.UserMessage(err), ""
			e.mu.Unlock()
			metrics.EntitySavesTotal.WithLabelValues(e.cfg.Name, "validation").Inc()
			return err
		}
	}
	e.saving = true
	e.errMsg, e.info = "", ""
	loads := e.loads
	e.mu.Unlock()

	reqCtx, done := e.request(ctx)
	err := e.cfg.Save(reqCtx, submitted.Clone())
	done()

	e.mu.Lock()
	e.saving = false
	if e.closed {
		e.mu.Unlock()
		metrics.EntitySavesTotal.WithLabelValues(e.cfg.Name, "stale").Inc()
		return domain.ErrEntityClosed
	}
	if err != nil {
		e.errMsg = domain.UserMessage(err)
		e.mu.Unlock()
		metrics.EntitySavesTotal.WithLabelValues(e.cfg.Name, saveOutcome(err)).Inc()
		e.cfg.Logger.Warn().Err(err).Str("entity", e.cfg.Name).Msg("save failed")
		e.authFailed(ctx, err)
		return err
	}
	e.saves++
	e.remote = submitted
	if loads != e.loads {
		// A reload replaced the working copy with data older than this save.
		e.working = submitted.Clone()
	}
	e.info, e.warning = domain.MsgSaved, ""
	e.mu.Unlock()

	metrics.EntitySavesTotal.WithLabelValues(e.cfg.Name, "ok").Inc()
	e.cfg.Logger.Info().Str("entity", e.cfg.Name).Msg("saved")
	if e.cfg.OnSaved != nil {
		e.cfg.OnSaved(context.WithoutCancel(ctx), submitted.Clone())
	}
	return nil
}

func saveOutcome(err error) string {
	var ne *domain.NetworkError
	switch {
	case domain.IsAuth(err):
		return "auth"
	case errors.As(err, &ne):
		return "network"
	}
	return "error"
}

// Reset discards edits. It does nothing while a save is running.
func (e *Editable[T]) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrEntityClosed
	}
	if e.loading || e.saving {
		return nil
	}
	e.working = e.remote.Clone()
	e.errMsg, e.info = "", domain.MsgReverted
	return nil
}

// Report shows err to the user in place of any previous message.
func (e *Editable[T]) Report(err error) {
	e.mu.Lock()
	e.errMsg, e.info = domain.UserMessage(err), ""
	e.mu.Unlock()
}

// Announce shows an informational message and clears any error.
func (e *Editable[T]) Announce(msg string) {
	e.mu.Lock()
	e.errMsg, e.info = "", msg
	e.mu.Unlock()
}

// Close cancels outstanding requests; their results are discarded.
func (e *Editable[T]) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.stop()
}

// Closed reports whether Close was called.
func (e *Editable[T]) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Working returns a copy of the working record.
func (e *Editable[T]) Working() T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.working.Clone()
}

// Dirty reports whether the working copy differs from the remote snapshot.
func (e *Editable[T]) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.loading && !e.working.Equal(e.remote)
}

func (e *Editable[T]) Snapshot() EntitySnapshot[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	state := StateReady
	switch {
	case e.loading:
		state = StateLoading
	case e.saving:
		state = StateSaving
	}
	return EntitySnapshot[T]{
		State:   state,
		Working: e.working.Clone(),
		Remote:  e.remote.Clone(),
		Dirty:   !e.loading && !e.working.Equal(e.remote),
		Error:   e.errMsg,
		Info:    e.info,
		Warning: e.warning,
	}
}
