package service

import (
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/ports"
)

// ProfileSnapshot adds the displayed avatar to an entity snapshot. While an
// upload is in flight AvatarDisplay is the local preview.
type ProfileSnapshot[T any] struct {
	EntitySnapshot[T]
	AvatarDisplay string `json:"avatarDisplay"`
	Uploading     bool   `json:"uploading"`
}

// CareseekerView is the careseeker's profile page.
type CareseekerView struct {
	*Editable[domain.CareseekerProfile]
	avatar Tentative[string]
}

// NewCareseekerView builds the view for the signed-in careseeker. Names,
// email and avatar missing from the backend record are taken from the session.
func NewCareseekerView(gw ports.CareseekerGateway, sessions *SessionManager, rules *Validator, logger zerolog.Logger) *CareseekerView {
	user := func() domain.User {
		if u := sessions.Current().User; u != nil {
			return *u
		}
		return domain.User{}
	}
	v := &CareseekerView{}
	v.Editable = NewEditable(EntityConfig[domain.CareseekerProfile]{
		Name: "careseeker_profile",
		Load: func(ctx context.Context) (domain.CareseekerProfile, error) {
			p, err := gw.CareseekerProfile(ctx)
			if err != nil {
				return domain.CareseekerProfile{}, err
			}
			return fillCareseeker(*p, user()), nil
		},
		Save: func(ctx context.Context, p domain.CareseekerProfile) error {
			return gw.SaveCareseekerProfile(ctx, p.Normalized())
		},
		Default:  func() domain.CareseekerProfile { return domain.DefaultCareseekerProfile(user()) },
		Validate: rules.Careseeker,
		OnSaved: func(ctx context.Context, p domain.CareseekerProfile) {
			first, last := strings.TrimSpace(p.FirstName), strings.TrimSpace(p.LastName)
			sessions.UpdateProfile(ctx, domain.ProfileUpdate{FirstName: &first, LastName: &last})
		},
		OnAuthError: func(ctx context.Context, err error) {
			_ = sessions.Expire(ctx, err.Error())
		},
		Logger: logger.With().Str("view", "careseeker_profile").Logger(),
	})
	return v
}

func fillCareseeker(p domain.CareseekerProfile, u domain.User) domain.CareseekerProfile {
	if p.FirstName == "" {
		p.FirstName = u.FirstName
	}
	if p.LastName == "" {
		p.LastName = u.LastName
	}
	if p.Email == "" {
		p.Email = u.Email
	}
	if p.AvatarURL == "" {
		p.AvatarURL = domain.FallbackAvatar(p.Email)
	}
	if p.CareTypes == nil {
		p.CareTypes = []string{}
	}
	return p
}

func (v *CareseekerView) avatarSlot() *Tentative[string] { return &v.avatar }

func (v *CareseekerView) commitAvatar(url string) error {
	return v.Mutate(func(p *domain.CareseekerProfile) { p.AvatarURL = url })
}

func nameRejected(field string) error {
	return &domain.ValidationError{Field: field, Rule: "personname", Message: label(field) + " can contain letters and spaces only."}
}

// CareseekerEdit is a batch of profile edits. Nil fields are left alone.
type CareseekerEdit struct {
	FirstName       *string
	LastName        *string
	Phone           *string
	Location        *string
	Gender          *string
	DOB             *string
	ToggleCareTypes []string
}

// apply edits p in place and stops at the first rejected field. Names may
// hold letters and spaces only, the phone keeps its first ten digits and the
// date is stored as typed, to be checked on save.
func (e CareseekerEdit) apply(p *domain.CareseekerProfile) error {
	if e.FirstName != nil {
		if !AllowedName(*e.FirstName) {
			return nameRejected("firstName")
		}
		p.FirstName = *e.FirstName
	}
	if e.LastName != nil {
		if !AllowedName(*e.LastName) {
			return nameRejected("lastName")
		}
		p.LastName = *e.LastName
	}
	if e.Phone != nil {
		p.Phone = DigitsOnly(*e.Phone, phoneLen)
	}
	if e.Location != nil {
		p.Location = *e.Location
	}
	if e.Gender != nil {
		if *e.Gender != "" && !slices.Contains(domain.Genders, *e.Gender) {
			return &domain.ValidationError{Field: "gender", Rule: "oneof", Message: "Please choose a gender from the list."}
		}
		p.Gender = *e.Gender
	}
	if e.DOB != nil {
		p.DOB = strings.TrimSpace(*e.DOB)
	}
	for _, c := range e.ToggleCareTypes {
		if !domain.KnownCareType(c) {
			return &domain.ValidationError{Field: "careTypes", Rule: "oneof", Message: "Unknown care type."}
		}
		p.ToggleCareType(c)
	}
	return nil
}

// Apply makes every edit in e or, if any is rejected, none of them.
func (v *CareseekerView) Apply(e CareseekerEdit) error {
	return v.TryMutate(e.apply)
}

func (v *CareseekerView) SetFirstName(s string) error {
	return v.Apply(CareseekerEdit{FirstName: &s})
}

func (v *CareseekerView) SetLastName(s string) error {
	return v.Apply(CareseekerEdit{LastName: &s})
}

func (v *CareseekerView) SetPhone(s string) error {
	return v.Apply(CareseekerEdit{Phone: &s})
}

func (v *CareseekerView) SetLocation(s string) error {
	return v.Apply(CareseekerEdit{Location: &s})
}

func (v *CareseekerView) SetGender(s string) error {
	return v.Apply(CareseekerEdit{Gender: &s})
}

func (v *CareseekerView) SetDOB(s string) error {
	return v.Apply(CareseekerEdit{DOB: &s})
}

// ToggleCareType adds or removes a catalog care type.
func (v *CareseekerView) ToggleCareType(c string) error {
	return v.Apply(CareseekerEdit{ToggleCareTypes: []string{c}})
}

// Avatar returns the avatar to display.
func (v *CareseekerView) Avatar() string {
	return v.avatar.Value(v.Working().AvatarURL)
}

func (v *CareseekerView) Snapshot() ProfileSnapshot[domain.CareseekerProfile] {
	snap := v.Editable.Snapshot()
	return ProfileSnapshot[domain.CareseekerProfile]{
		EntitySnapshot: snap,
		AvatarDisplay:  v.avatar.Value(snap.Working.AvatarURL),
		Uploading:      v.avatar.Pending(),
	}
}
