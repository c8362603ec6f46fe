package service

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/ports"
)

// board is the state shared by the admin listings: rows fetched once and
// filtered locally, with the same stale and close guards as an Editable.
type board struct {
	sessions *SessionManager
	logger   zerolog.Logger

	mu     sync.Mutex
	gen    uint64
	closed bool
}

func (b *board) start() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, domain.ErrEntityClosed
	}
	b.gen++
	return b.gen, nil
}

// current reports whether gen is still the latest load. Callers hold b.mu.
func (b *board) current(gen uint64) bool {
	return !b.closed && gen == b.gen
}

func (b *board) failed(ctx context.Context, op string, err error) error {
	b.logger.Warn().Err(err).Str("op", op).Msg("admin request failed")
	if domain.IsAuth(err) {
		_ = b.sessions.Expire(context.WithoutCancel(ctx), err.Error())
	}
	return err
}

func (b *board) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}

// AccountBoard is the admin careseeker listing.
type AccountBoard struct {
	board
	gw   ports.AdminGateway
	rows []domain.CareseekerAccount
}

func NewAccountBoard(gw ports.AdminGateway, sessions *SessionManager, logger zerolog.Logger) *AccountBoard {
	return &AccountBoard{
		board: board{sessions: sessions, logger: logger.With().Str("view", "admin_accounts").Logger()},
		gw:    gw,
	}
}

// Load fetches every careseeker account.
func (b *AccountBoard) Load(ctx context.Context) error {
	gen, err := b.start()
	if err != nil {
		return err
	}
	rows, err := b.gw.Careseekers(ctx)
	if err != nil {
		return b.failed(ctx, "careseekers", err)
	}
	for i := range rows {
		if !rows[i].Status.Valid() {
			rows[i].Status = domain.StatusActive
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current(gen) {
		b.rows = rows
	}
	return nil
}

// List filters by q across every column and returns one page.
func (b *AccountBoard) List(q ports.AccountQuery) domain.Page[domain.CareseekerAccount] {
	needle := strings.ToLower(strings.TrimSpace(q.Query))
	b.mu.Lock()
	defer b.mu.Unlock()
	matched := make([]domain.CareseekerAccount, 0, len(b.rows))
	for _, r := range b.rows {
		if r.Matches(needle) {
			matched = append(matched, r)
		}
	}
	return domain.Paginate(matched, q.Page, domain.PageSize)
}

// SetStatus changes an account's status and updates the listed row.
func (b *AccountBoard) SetStatus(ctx context.Context, id string, status domain.AccountStatus) error {
	if !status.Valid() {
		return &domain.ValidationError{Field: "status", Rule: "oneof", Message: "Status must be ACTIVE or DEACTIVATED."}
	}
	if err := b.gw.SetCareseekerStatus(ctx, id, status); err != nil {
		return b.failed(ctx, "set_status", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.rows {
		if b.rows[i].ID == id {
			b.rows[i].Status = status
		}
	}
	b.logger.Info().Str("careseeker_id", id).Str("status", string(status)).Msg("careseeker status changed")
	return nil
}

// FeedbackBoard is the admin feedback listing with its summary.
type FeedbackBoard struct {
	board
	gw      ports.AdminGateway
	rows    []domain.Feedback
	summary domain.FeedbackSummary
}

func NewFeedbackBoard(gw ports.AdminGateway, sessions *SessionManager, logger zerolog.Logger) *FeedbackBoard {
	return &FeedbackBoard{
		board:   board{sessions: sessions, logger: logger.With().Str("view", "admin_feedback").Logger()},
		gw:      gw,
		summary: domain.NewFeedbackSummary(),
	}
}

// Load fetches the summary and the rows together.
func (b *FeedbackBoard) Load(ctx context.Context) error {
	gen, err := b.start()
	if err != nil {
		return err
	}

	var (
		summary *domain.FeedbackSummary
		rows    []domain.Feedback
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = b.gw.FeedbackSummary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = b.gw.AdminFeedback(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return b.failed(ctx, "feedback", err)
	}
	sortNewestFirst(rows)
	if summary == nil {
		empty := domain.NewFeedbackSummary()
		summary = &empty
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current(gen) {
		b.rows, b.summary = rows, summary.Clone()
	}
	return nil
}

// List filters rows by text and star bucket and returns one page.
func (b *FeedbackBoard) List(q ports.FeedbackQuery) domain.Page[domain.Feedback] {
	needle := strings.ToLower(strings.TrimSpace(q.Query))
	b.mu.Lock()
	defer b.mu.Unlock()
	matched := make([]domain.Feedback, 0, len(b.rows))
	for _, r := range b.rows {
		if !r.Matches(needle) {
			continue
		}
		if q.Stars != 0 && r.Stars() != q.Stars {
			continue
		}
		matched = append(matched, r)
	}
	return domain.Paginate(matched, q.Page, domain.PageSize)
}

func (b *FeedbackBoard) Summary() domain.FeedbackSummary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.summary.Clone()
}

// Delete removes a row on the backend, then drops it locally and adjusts the
// summary without a refetch.
func (b *FeedbackBoard) Delete(ctx context.Context, id string) error {
	if err := b.gw.DeleteFeedback(ctx, id); err != nil {
		return b.failed(ctx, "delete_feedback", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range b.rows {
		if r.ID != id {
			continue
		}
		b.rows = append(b.rows[:i:i], b.rows[i+1:]...)
		b.summary = b.summary.Without(r)
		break
	}
	b.logger.Info().Str("feedback_id", id).Msg("feedback deleted")
	return nil
}

// DirectoryService serves the public caregiver directory.
type DirectoryService struct {
	gw       ports.CaregiverGateway
	sessions *SessionManager
}

func NewDirectoryService(gw ports.CaregiverGateway, sessions *SessionManager) *DirectoryService {
	return &DirectoryService{gw: gw, sessions: sessions}
}

// Caregivers lists public profiles whose name, tagline or skills match q.
func (d *DirectoryService) Caregivers(ctx context.Context, q string) ([]domain.PublicCaregiver, error) {
	all, err := d.gw.PublicCaregivers(ctx)
	if err != nil {
		return nil, d.expireOnAuth(ctx, err)
	}
	needle := strings.ToLower(strings.TrimSpace(q))
	out := make([]domain.PublicCaregiver, 0, len(all))
	for _, c := range all {
		if needle == "" || caregiverMatches(c, needle) {
			out = append(out, c)
		}
	}
	return out, nil
}

func caregiverMatches(c domain.PublicCaregiver, q string) bool {
	if strings.Contains(strings.ToLower(c.Username), q) || strings.Contains(strings.ToLower(c.Tagline), q) {
		return true
	}
	for _, s := range c.Skills {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

func (d *DirectoryService) Caregiver(ctx context.Context, id string) (*domain.PublicCaregiver, error) {
	c, err := d.gw.PublicCaregiver(ctx, id)
	if err != nil {
		return nil, d.expireOnAuth(ctx, err)
	}
	return c, nil
}

func (d *DirectoryService) expireOnAuth(ctx context.Context, err error) error {
	if domain.IsAuth(err) {
		_ = d.sessions.Expire(context.WithoutCancel(ctx), err.Error())
	}
	return err
}
