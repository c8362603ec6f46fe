package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/ports"
)

const defaultTagline = "Always be creative"

// CaregiverView is the caregiver's profile page.
type CaregiverView struct {
	*Editable[domain.CaregiverProfile]
	avatar Tentative[string]
	rules  *Validator
}

// NewCaregiverView builds the view for the signed-in caregiver. When the
// backend record has no email, the session's is used.
func NewCaregiverView(gw ports.CaregiverGateway, sessions *SessionManager, rules *Validator, logger zerolog.Logger) *CaregiverView {
	user := func() domain.User {
		if u := sessions.Current().User; u != nil {
			return *u
		}
		return domain.User{}
	}
	v := &CaregiverView{rules: rules}
	v.Editable = NewEditable(EntityConfig[domain.CaregiverProfile]{
		Name: "caregiver_profile",
		Load: func(ctx context.Context) (domain.CaregiverProfile, error) {
			p, err := gw.CaregiverProfile(ctx)
			if err != nil {
				return domain.CaregiverProfile{}, err
			}
			return fillCaregiver(*p, user()), nil
		},
		Save: func(ctx context.Context, p domain.CaregiverProfile) error {
			return gw.SaveCaregiverProfile(ctx, p.Normalized())
		},
		Default: func() domain.CaregiverProfile {
			p := domain.DefaultCaregiverProfile(user())
			p.Tagline = defaultTagline
			return p
		},
		Validate: rules.Caregiver,
		OnAuthError: func(ctx context.Context, err error) {
			_ = sessions.Expire(ctx, err.Error())
		},
		Logger: logger.With().Str("view", "caregiver_profile").Logger(),
	})
	return v
}

func fillCaregiver(p domain.CaregiverProfile, u domain.User) domain.CaregiverProfile {
	if p.Email == "" {
		p.Email = u.Email
	}
	if p.Tagline == "" {
		p.Tagline = defaultTagline
	}
	if p.Languages == nil {
		p.Languages = []domain.Language{}
	}
	if p.Certifications == nil {
		p.Certifications = []domain.Certification{}
	}
	if p.WorkHistory == nil {
		p.WorkHistory = []domain.WorkEntry{}
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return p
}

func (v *CaregiverView) avatarSlot() *Tentative[string] { return &v.avatar }

func (v *CaregiverView) commitAvatar(url string) error {
	return v.Mutate(func(p *domain.CaregiverProfile) { p.AvatarURL = url })
}

// CaregiverEdit is a batch of profile edits. Nil fields are left alone.
type CaregiverEdit struct {
	Username      *string
	Tagline       *string
	About         *string
	ServiceRadius *string
	Years         *string
}

func (e CaregiverEdit) apply(p *domain.CaregiverProfile) error {
	if e.About != nil && utf8.RuneCountInString(*e.About) > domain.AboutCharLimit {
		return &domain.ValidationError{
			Field:   "about",
			Rule:    "max",
			Message: fmt.Sprintf("About must be at most %d characters.", domain.AboutCharLimit),
		}
	}
	if e.Username != nil {
		p.Username = *e.Username
	}
	if e.Tagline != nil {
		p.Tagline = *e.Tagline
	}
	if e.About != nil {
		p.About = *e.About
	}
	if e.ServiceRadius != nil {
		p.ServiceRadius = *e.ServiceRadius
	}
	if e.Years != nil {
		p.Years = *e.Years
	}
	return nil
}

// Apply makes every edit in e or, if any is rejected, none of them. About
// longer than the about limit is rejected.
func (v *CaregiverView) Apply(e CaregiverEdit) error {
	return v.TryMutate(e.apply)
}

// AddSkill adds a trimmed skill; blanks and duplicates are ignored.
func (v *CaregiverView) AddSkill(s string) error {
	return v.Mutate(func(p *domain.CaregiverProfile) { p.AddSkill(s) })
}

func (v *CaregiverView) RemoveSkill(s string) error {
	return v.Mutate(func(p *domain.CaregiverProfile) { p.RemoveSkill(s) })
}

// PutLanguage adds a language or updates the level of an existing one.
func (v *CaregiverView) PutLanguage(l domain.Language) error {
	l.Lang = strings.TrimSpace(l.Lang)
	if err := v.rules.Struct(l); err != nil {
		return err
	}
	return v.Mutate(func(p *domain.CaregiverProfile) { p.PutLanguage(l) })
}

func (v *CaregiverView) RemoveLanguage(lang string) error {
	return v.Mutate(func(p *domain.CaregiverProfile) { p.RemoveLanguage(lang) })
}

func (v *CaregiverView) AddCertification(c domain.Certification) error {
	c.Name, c.Issuer, c.Year = strings.TrimSpace(c.Name), strings.TrimSpace(c.Issuer), strings.TrimSpace(c.Year)
	if err := v.rules.Struct(c); err != nil {
		return err
	}
	return v.Mutate(func(p *domain.CaregiverProfile) {
		p.Certifications = append(p.Certifications[:len(p.Certifications):len(p.Certifications)], c)
	})
}

// RemoveCertification drops the entry at index i.
func (v *CaregiverView) RemoveCertification(i int) error {
	return v.TryMutate(func(p *domain.CaregiverProfile) error {
		if i < 0 || i >= len(p.Certifications) {
			return fmt.Errorf("certification %d: %w", i, domain.ErrNotFound)
		}
		p.Certifications = append(p.Certifications[:i:i], p.Certifications[i+1:]...)
		return nil
	})
}

// AddWork appends a work history entry; entries stay in the order added.
func (v *CaregiverView) AddWork(w domain.WorkEntry) error {
	w.Role, w.Company = strings.TrimSpace(w.Role), strings.TrimSpace(w.Company)
	if err := v.rules.Struct(w); err != nil {
		return err
	}
	return v.Mutate(func(p *domain.CaregiverProfile) {
		p.WorkHistory = append(p.WorkHistory[:len(p.WorkHistory):len(p.WorkHistory)], w)
	})
}

func (v *CaregiverView) RemoveWork(i int) error {
	return v.TryMutate(func(p *domain.CaregiverProfile) error {
		if i < 0 || i >= len(p.WorkHistory) {
			return fmt.Errorf("work entry %d: %w", i, domain.ErrNotFound)
		}
		p.WorkHistory = append(p.WorkHistory[:i:i], p.WorkHistory[i+1:]...)
		return nil
	})
}

func (v *CaregiverView) Snapshot() ProfileSnapshot[domain.CaregiverProfile] {
	snap := v.Editable.Snapshot()
	return ProfileSnapshot[domain.CaregiverProfile]{
		EntitySnapshot: snap,
		AvatarDisplay:  v.avatar.Value(snap.Working.AvatarURL),
		Uploading:      v.avatar.Pending(),
	}
}
