package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/ports"
)

// Workspace keys of the views a portal opens.
const (
	ViewCareseekerProfile = "careseeker.profile"
	ViewCaregiverProfile  = "caregiver.profile"
	ViewAdminAccounts     = "admin.accounts"
	ViewAdminFeedback     = "admin.feedback"
	viewFeedbackPrefix    = "feedback."
)

// FeedbackViewKey is the workspace key of the edit view for feedback id.
func FeedbackViewKey(id string) string { return viewFeedbackPrefix + id }

// Portal ties the session, the open views and the backend together. It is
// what the HTTP handlers talk to.
type Portal struct {
	Sessions  *SessionManager
	Views     *Workspace
	Rules     *Validator
	Avatars   *AvatarUploader
	Previews  *Previews
	Feedback  *FeedbackService
	Directory *DirectoryService

	backend ports.Backend
	logger  zerolog.Logger
}

// PortalDeps are the collaborators NewPortal needs.
type PortalDeps struct {
	Sessions       *SessionManager
	Backend        ports.Backend
	Rules          *Validator
	MaxAvatarBytes int64
	Logger         zerolog.Logger
}

func NewPortal(d PortalDeps) *Portal {
	rules := d.Rules
	if rules == nil {
		rules = NewValidator(nil)
	}
	previews := NewPreviews()
	p := &Portal{
		Sessions:  d.Sessions,
		Views:     NewWorkspace(d.Logger.With().Str("component", "workspace").Logger()),
		Rules:     rules,
		Avatars:   NewAvatarUploader(d.Backend, previews, d.MaxAvatarBytes, d.Logger.With().Str("component", "avatar").Logger()),
		Previews:  previews,
		Feedback:  NewFeedbackService(d.Backend, d.Sessions, rules, d.Logger.With().Str("component", "feedback").Logger()),
		Directory: NewDirectoryService(d.Backend, d.Sessions),
		backend:   d.Backend,
		logger:    d.Logger,
	}
	p.Views.Follow(d.Sessions)
	return p
}

func (p *Portal) requireSession() error {
	if !p.Sessions.Current().Authenticated() {
		return domain.ErrNoSession
	}
	return nil
}

// detached keeps a first load running when the request that opened the view
// goes away; Close still cancels it.
func detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

// CareseekerProfile opens (or returns the open) careseeker profile view.
func (p *Portal) CareseekerProfile(ctx context.Context) (*CareseekerView, error) {
	if err := p.requireSession(); err != nil {
		return nil, err
	}
	v, created := OpenView(p.Views, ViewCareseekerProfile, func() *CareseekerView {
		return NewCareseekerView(p.backend, p.Sessions, p.Rules, p.logger)
	})
	if created {
		if err := v.Load(detached(ctx)); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// CaregiverProfile opens (or returns the open) caregiver profile view.
func (p *Portal) CaregiverProfile(ctx context.Context) (*CaregiverView, error) {
	if err := p.requireSession(); err != nil {
		return nil, err
	}
	v, created := OpenView(p.Views, ViewCaregiverProfile, func() *CaregiverView {
		return NewCaregiverView(p.backend, p.Sessions, p.Rules, p.logger)
	})
	if created {
		if err := v.Load(detached(ctx)); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// EditFeedback opens the edit view of one of the user's feedback rows.
func (p *Portal) EditFeedback(ctx context.Context, id string) (*FeedbackView, error) {
	key := FeedbackViewKey(id)
	if v, ok := LookupView[*FeedbackView](p.Views, key); ok {
		return v, nil
	}
	fv, err := p.Feedback.Edit(id)
	if err != nil {
		return nil, err
	}
	v, created := OpenView(p.Views, key, func() *FeedbackView { return fv })
	if !created {
		fv.Close()
		return v, nil
	}
	if err := v.Load(detached(ctx)); err != nil {
		return nil, err
	}
	return v, nil
}

// Accounts opens the admin careseeker listing; refresh forces a refetch.
func (p *Portal) Accounts(ctx context.Context, refresh bool) (*AccountBoard, error) {
	if err := p.requireSession(); err != nil {
		return nil, err
	}
	b, created := OpenView(p.Views, ViewAdminAccounts, func() *AccountBoard {
		return NewAccountBoard(p.backend, p.Sessions, p.logger)
	})
	if created || refresh {
		if err := b.Load(ctx); err != nil {
			if created {
				p.Views.CloseView(ViewAdminAccounts)
			}
			return nil, err
		}
	}
	return b, nil
}

// FeedbackBoard opens the admin feedback listing; refresh forces a refetch.
func (p *Portal) FeedbackBoard(ctx context.Context, refresh bool) (*FeedbackBoard, error) {
	if err := p.requireSession(); err != nil {
		return nil, err
	}
	b, created := OpenView(p.Views, ViewAdminFeedback, func() *FeedbackBoard {
		return NewFeedbackBoard(p.backend, p.Sessions, p.logger)
	})
	if created || refresh {
		if err := b.Load(ctx); err != nil {
			if created {
				p.Views.CloseView(ViewAdminFeedback)
			}
			return nil, err
		}
	}
	return b, nil
}
