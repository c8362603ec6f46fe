package backend

import (
	"time"

	"github.com/carenet/portal/internal/core/domain"
	"github.com/carenet/portal/internal/core/ports"
)

// Wire shapes. Optional fields are pointers so that a missing key and an
// empty value stay distinguishable until the mapper decides.

type authResponse struct {
	AccessToken *string `json:"accessToken"`
	Token       *string `json:"token"`
	Role        *string `json:"role"`
	UserID      *string `json:"userId"`
	Email       *string `json:"email"`
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
}

func (r authResponse) result() *ports.AuthResult {
	res := &ports.AuthResult{
		Token:  str(r.AccessToken),
		Role:   str(r.Role),
		UserID: str(r.UserID),
		Email:  str(r.Email),
	}
	if res.Token == "" {
		res.Token = str(r.Token)
	}
	if r.FirstName != nil && *r.FirstName != "" {
		res.FirstName = r.FirstName
	}
	if r.LastName != nil && *r.LastName != "" {
		res.LastName = r.LastName
	}
	return res
}

type careseekerDTO struct {
	FirstName *string  `json:"firstName,omitempty"`
	LastName  *string  `json:"lastName,omitempty"`
	Email     *string  `json:"email,omitempty"`
	Phone     *string  `json:"phone,omitempty"`
	AvatarURL *string  `json:"avatarUrl,omitempty"`
	Location  *string  `json:"location,omitempty"`
	City      *string  `json:"city,omitempty"`
	Gender    *string  `json:"gender,omitempty"`
	DOB       *string  `json:"dob,omitempty"`
	CareTypes []string `json:"careTypes"`
}

func (d careseekerDTO) profile() domain.CareseekerProfile {
	loc := str(d.Location)
	if d.Location == nil {
		loc = str(d.City)
	}
	care := d.CareTypes
	if care == nil {
		care = []string{}
	}
	return domain.CareseekerProfile{
		FirstName: str(d.FirstName),
		LastName:  str(d.LastName),
		Email:     str(d.Email),
		Phone:     str(d.Phone),
		AvatarURL: str(d.AvatarURL),
		Location:  loc,
		Gender:    str(d.Gender),
		DOB:       str(d.DOB),
		CareTypes: care,
	}
}

// careseekerPayload is the PUT body. Email is identity data and not sent.
type careseekerPayload struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Phone     string   `json:"phone"`
	AvatarURL string   `json:"avatarUrl"`
	Location  string   `json:"location"`
	Gender    string   `json:"gender"`
	DOB       string   `json:"dob"`
	CareTypes []string `json:"careTypes"`
}

func newCareseekerPayload(p domain.CareseekerProfile) careseekerPayload {
	return careseekerPayload{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
		AvatarURL: p.AvatarURL,
		Location:  p.Location,
		Gender:    p.Gender,
		DOB:       p.DOB,
		CareTypes: nonNil(p.CareTypes),
	}
}

// userRef is the nested user some caregiver records carry instead of email.
type userRef struct {
	Email string `json:"email"`
}

type caregiverDTO struct {
	ID             *string                `json:"id,omitempty"`
	Email          *string                `json:"email,omitempty"`
	User           *userRef               `json:"user,omitempty"`
	Username       *string                `json:"username,omitempty"`
	AvatarURL      *string                `json:"avatarUrl,omitempty"`
	Tagline        *string                `json:"tagline,omitempty"`
	About          *string                `json:"about,omitempty"`
	Languages      []domain.Language      `json:"languages"`
	Certifications []domain.Certification `json:"certifications"`
	WorkHistory    []domain.WorkEntry     `json:"workHistory"`
	ServiceRadius  *string                `json:"serviceRadius,omitempty"`
	Years          *string                `json:"years,omitempty"`
	Skills         []string               `json:"skills"`
}

func (d caregiverDTO) profile() domain.CaregiverProfile {
	email := str(d.Email)
	if email == "" && d.User != nil {
		email = d.User.Email
	}
	return domain.CaregiverProfile{
		Email:          email,
		Username:       str(d.Username),
		AvatarURL:      str(d.AvatarURL),
		Tagline:        str(d.Tagline),
		About:          str(d.About),
		Languages:      nonNil(d.Languages),
		Certifications: nonNil(d.Certifications),
		WorkHistory:    nonNil(d.WorkHistory),
		ServiceRadius:  str(d.ServiceRadius),
		Years:          str(d.Years),
		Skills:         nonNil(d.Skills),
	}
}

func (d caregiverDTO) public() domain.PublicCaregiver {
	p := d.profile()
	return domain.PublicCaregiver{
		ID:            str(d.ID),
		Username:      p.Username,
		AvatarURL:     p.AvatarURL,
		Tagline:       p.Tagline,
		About:         p.About,
		Languages:     p.Languages,
		Years:         p.Years,
		ServiceRadius: p.ServiceRadius,
		Skills:        p.Skills,
	}
}

type caregiverPayload struct {
	Username       string                 `json:"username"`
	AvatarURL      string                 `json:"avatarUrl"`
	Tagline        string                 `json:"tagline"`
	About          string                 `json:"about"`
	Languages      []domain.Language      `json:"languages"`
	Certifications []domain.Certification `json:"certifications"`
	WorkHistory    []domain.WorkEntry     `json:"workHistory"`
	ServiceRadius  string                 `json:"serviceRadius"`
	Years          string                 `json:"years"`
	Skills         []string               `json:"skills"`
}

func newCaregiverPayload(p domain.CaregiverProfile) caregiverPayload {
	return caregiverPayload{
		Username:       p.Username,
		AvatarURL:      p.AvatarURL,
		Tagline:        p.Tagline,
		About:          p.About,
		Languages:      nonNil(p.Languages),
		Certifications: nonNil(p.Certifications),
		WorkHistory:    nonNil(p.WorkHistory),
		ServiceRadius:  p.ServiceRadius,
		Years:          p.Years,
		Skills:         nonNil(p.Skills),
	}
}

type feedbackDTO struct {
	ID             *string    `json:"id,omitempty"`
	First          *string    `json:"first,omitempty"`
	Last           *string    `json:"last,omitempty"`
	Email          *string    `json:"email,omitempty"`
	Role           *string    `json:"role,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	Quality        *int       `json:"quality,omitempty"`
	Support        *int       `json:"support,omitempty"`
	Useful         []string   `json:"useful"`
	Missing        []string   `json:"missing"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	ComputedRating *float64   `json:"computedRating,omitempty"`
}

func (d feedbackDTO) feedback() domain.Feedback {
	f := domain.Feedback{
		ID:             str(d.ID),
		First:          str(d.First),
		Last:           str(d.Last),
		Email:          str(d.Email),
		Role:           str(d.Role),
		Notes:          str(d.Notes),
		Useful:         nonNil(d.Useful),
		Missing:        nonNil(d.Missing),
		ComputedRating: d.ComputedRating,
	}
	if d.Quality != nil {
		f.Quality = *d.Quality
	}
	if d.Support != nil {
		f.Support = *d.Support
	}
	if d.CreatedAt != nil {
		f.CreatedAt = *d.CreatedAt
	}
	return f
}

type feedbackPayload struct {
	First   string   `json:"first"`
	Last    string   `json:"last"`
	Email   string   `json:"email"`
	Role    string   `json:"role"`
	Notes   string   `json:"notes"`
	Quality int      `json:"quality"`
	Support int      `json:"support"`
	Useful  []string `json:"useful"`
	Missing []string `json:"missing"`
}

func newFeedbackPayload(f domain.Feedback) feedbackPayload {
	return feedbackPayload{
		First:   f.First,
		Last:    f.Last,
		Email:   f.Email,
		Role:    f.Role,
		Notes:   f.Notes,
		Quality: f.Quality,
		Support: f.Support,
		Useful:  nonNil(f.Useful),
		Missing: nonNil(f.Missing),
	}
}

type summaryDTO struct {
	Total    *int               `json:"total"`
	ByStars  map[int]int        `json:"byStars"`
	Averages map[string]float64 `json:"averages"`
}

func (d summaryDTO) summary() domain.FeedbackSummary {
	s := domain.NewFeedbackSummary()
	if d.Total != nil {
		s.Total = *d.Total
	}
	for star, n := range d.ByStars {
		if star >= 1 && star <= 5 {
			s.ByStars[star] = n
		}
	}
	for k, v := range d.Averages {
		s.Averages[k] = v
	}
	return s
}

type accountDTO struct {
	ID        *string `json:"id"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Status    *string `json:"status"`
}

func (d accountDTO) account() domain.CareseekerAccount {
	return domain.CareseekerAccount{
		ID:        str(d.ID),
		FirstName: str(d.FirstName),
		LastName:  str(d.LastName),
		Email:     str(d.Email),
		Phone:     str(d.Phone),
		Status:    domain.AccountStatus(str(d.Status)),
	}
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
