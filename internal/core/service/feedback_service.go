package service

import (
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/ports"
)

// FeedbackService submits and lists the signed-in user's feedback.
type FeedbackService struct {
	gw       ports.FeedbackGateway
	sessions *SessionManager
	rules    *Validator
	logger   zerolog.Logger
}

func NewFeedbackService(gw ports.FeedbackGateway, sessions *SessionManager, rules *Validator, logger zerolog.Logger) *FeedbackService {
	return &FeedbackService{gw: gw, sessions: sessions, rules: rules, logger: logger}
}

func (s *FeedbackService) user() (domain.User, error) {
	u := s.sessions.Current().User
	if u == nil {
		return domain.User{}, domain.ErrNoSession
	}
	return *u, nil
}

// expireOnAuth ends the session when err is an authentication failure.
func (s *FeedbackService) expireOnAuth(ctx context.Context, err error) error {
	if domain.IsAuth(err) {
		_ = s.sessions.Expire(context.WithoutCancel(ctx), err.Error())
	}
	return err
}

// Form returns a blank form prefilled from the session user.
func (s *FeedbackService) Form() (domain.Feedback, error) {
	u, err := s.user()
	if err != nil {
		return domain.Feedback{}, err
	}
	return domain.NewFeedback(u), nil
}

// Submit validates f and posts it.
func (s *FeedbackService) Submit(ctx context.Context, f domain.Feedback) (*domain.Feedback, error) {
	if _, err := s.user(); err != nil {
		return nil, err
	}
	f = f.Normalized()
	if err := s.checkFeatures(f); err != nil {
		return nil, err
	}
	if err := s.rules.Feedback(f); err != nil {
		return nil, err
	}
	created, err := s.gw.SubmitFeedback(ctx, f)
	if err != nil {
		s.logger.Warn().Err(err).Msg("feedback submit failed")
		return nil, s.expireOnAuth(ctx, err)
	}
	s.logger.Info().Str("email", f.Email).Msg("feedback submitted")
	return created, nil
}

func (s *FeedbackService) checkFeatures(f domain.Feedback) error {
	for _, v := range f.Useful {
		if !slices.Contains(domain.FeaturesUseful, v) {
			return &domain.ValidationError{Field: "useful", Rule: "oneof", Message: "Unknown feature: " + v}
		}
	}
	for _, v := range f.Missing {
		if !slices.Contains(domain.FeaturesMissing, v) {
			return &domain.ValidationError{Field: "missing", Rule: "oneof", Message: "Unknown feature: " + v}
		}
	}
	return nil
}

// Mine lists the user's own feedback, newest first.
func (s *FeedbackService) Mine(ctx context.Context) ([]domain.Feedback, error) {
	u, err := s.user()
	if err != nil {
		return nil, err
	}
	rows, err := s.gw.MyFeedback(ctx, u.Email)
	if err != nil {
		return nil, s.expireOnAuth(ctx, err)
	}
	sortNewestFirst(rows)
	return rows, nil
}

func sortNewestFirst(rows []domain.Feedback) {
	slices.SortStableFunc(rows, func(a, b domain.Feedback) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

// FeedbackView edits one of the user's own feedback rows.
type FeedbackView struct {
	*Editable[domain.Feedback]
	ID string
}

// Edit opens an editable view over the feedback row id.
func (s *FeedbackService) Edit(id string) (*FeedbackView, error) {
	u, err := s.user()
	if err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	v := &FeedbackView{ID: id}
	v.Editable = NewEditable(EntityConfig[domain.Feedback]{
		Name: "feedback",
		Load: func(ctx context.Context) (domain.Feedback, error) {
			f, err := s.gw.Feedback(ctx, id, u.Email)
			if err != nil {
				return domain.Feedback{}, err
			}
			return *f, nil
		},
		Save: func(ctx context.Context, f domain.Feedback) error {
			return s.gw.UpdateFeedback(ctx, id, u.Email, f.Normalized())
		},
		Default: func() domain.Feedback {
			f := domain.NewFeedback(u)
			f.ID = id
			return f
		},
		Validate: s.rules.Feedback,
		OnAuthError: func(ctx context.Context, err error) {
			_ = s.sessions.Expire(ctx, err.Error())
		},
		Logger: s.logger.With().Str("view", "feedback").Str("feedback_id", id).Logger(),
	})
	return v, nil
}

func rating(field string, n int) error {
	if n < 1 || n > 5 {
		return &domain.ValidationError{Field: field, Rule: "range", Message: label(field) + " must be between 1 and 5."}
	}
	return nil
}

// FeedbackEdit is a batch of edits to a feedback row. Nil fields are left
// alone; features are toggled in order.
type FeedbackEdit struct {
	Quality       *int
	Support       *int
	Notes         *string
	Role          *string
	ToggleUseful  []string
	ToggleMissing []string
}

func (e FeedbackEdit) apply(f *domain.Feedback) error {
	if e.Quality != nil {
		if err := rating("quality", *e.Quality); err != nil {
			return err
		}
		f.Quality = *e.Quality
	}
	if e.Support != nil {
		if err := rating("support", *e.Support); err != nil {
			return err
		}
		f.Support = *e.Support
	}
	if e.Notes != nil {
		f.Notes = *e.Notes
	}
	if e.Role != nil {
		f.Role = *e.Role
	}
	for _, feature := range e.ToggleUseful {
		if !slices.Contains(domain.FeaturesUseful, feature) {
			return &domain.ValidationError{Field: "useful", Rule: "oneof", Message: "Unknown feature: " + feature}
		}
		f.ToggleUseful(feature)
	}
	for _, feature := range e.ToggleMissing {
		if !slices.Contains(domain.FeaturesMissing, feature) {
			return &domain.ValidationError{Field: "missing", Rule: "oneof", Message: "Unknown feature: " + feature}
		}
		f.ToggleMissing(feature)
	}
	return nil
}

// Apply makes every edit in e or, if any is rejected, none of them.
func (v *FeedbackView) Apply(e FeedbackEdit) error {
	return v.TryMutate(e.apply)
}
