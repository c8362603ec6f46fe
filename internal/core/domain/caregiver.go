package domain

import (
	"slices"
	"strings"
)

// LanguageLevels in increasing order of fluency.
var LanguageLevels = []string{"Basic", "Conversational", "Fluent", "Native"}

// AboutCharLimit caps the caregiver's long description.
const AboutCharLimit = 600

type Language struct {
	Lang  string `json:"lang"  validate:"required"`
	Level string `json:"level" validate:"required,oneof=Basic Conversational Fluent Native"`
}

type Certification struct {
	Name   string `json:"name"   validate:"required"`
	Issuer string `json:"issuer" validate:"required"`
	Year   string `json:"year"   validate:"required,numeric,len=4"`
}

// WorkEntry is one line of the chronological work history.
type WorkEntry struct {
	Role    string `json:"role"    validate:"required"`
	Company string `json:"company" validate:"required"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// CaregiverProfile is the caregiver's own editable profile.
type CaregiverProfile struct {
	Email          string          `json:"email"`
	Username       string          `json:"username"`
	AvatarURL      string          `json:"avatarUrl"`
	Tagline        string          `json:"tagline"`
	About          string          `json:"about"          validate:"max=600"`
	Languages      []Language      `json:"languages"      validate:"dive"`
	Certifications []Certification `json:"certifications" validate:"dive"`
	WorkHistory    []WorkEntry     `json:"workHistory"    validate:"dive"`
	ServiceRadius  string          `json:"serviceRadius"`
	Years          string          `json:"years"`
	Skills         []string        `json:"skills"`
}

// DefaultCaregiverProfile seeds an editable profile from the session user.
func DefaultCaregiverProfile(u User) CaregiverProfile {
	return CaregiverProfile{
		Email:          u.Email,
		Username:       u.DisplayName(),
		AvatarURL:      FallbackAvatar(u.Email),
		Languages:      []Language{},
		Certifications: []Certification{},
		WorkHistory:    []WorkEntry{},
		Skills:         []string{},
	}
}

func (p CaregiverProfile) Clone() CaregiverProfile {
	p.Languages = slices.Clone(p.Languages)
	p.Certifications = slices.Clone(p.Certifications)
	p.WorkHistory = slices.Clone(p.WorkHistory)
	p.Skills = slices.Clone(p.Skills)
	return p
}

// Normalized trims text and sorts the skill set. Languages, certifications and
// work history keep their order.
func (p CaregiverProfile) Normalized() CaregiverProfile {
	p.Username = strings.TrimSpace(p.Username)
	p.Tagline = strings.TrimSpace(p.Tagline)
	p.About = strings.TrimSpace(p.About)
	p.ServiceRadius = strings.TrimSpace(p.ServiceRadius)
	p.Years = strings.TrimSpace(p.Years)
	p.Skills = sortedSet(p.Skills)
	return p
}

func (p CaregiverProfile) Equal(o CaregiverProfile) bool {
	a, b := p.Normalized(), o.Normalized()
	return a.Username == b.Username &&
		a.AvatarURL == b.AvatarURL &&
		a.Tagline == b.Tagline &&
		a.About == b.About &&
		a.ServiceRadius == b.ServiceRadius &&
		a.Years == b.Years &&
		slices.Equal(a.Languages, b.Languages) &&
		slices.Equal(a.Certifications, b.Certifications) &&
		slices.Equal(a.WorkHistory, b.WorkHistory) &&
		slices.Equal(a.Skills, b.Skills)
}

// AddSkill inserts a trimmed skill unless it is empty or already present.
func (p *CaregiverProfile) AddSkill(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || slices.Contains(p.Skills, s) {
		return false
	}
	p.Skills = append(slices.Clone(p.Skills), s)
	return true
}

func (p *CaregiverProfile) RemoveSkill(s string) {
	p.Skills = slices.DeleteFunc(slices.Clone(p.Skills), func(v string) bool { return v == s })
}

// PutLanguage updates the entry for the same language or appends a new one.
func (p *CaregiverProfile) PutLanguage(l Language) {
	langs := slices.Clone(p.Languages)
	for i := range langs {
		if strings.EqualFold(langs[i].Lang, l.Lang) {
			langs[i] = l
			p.Languages = langs
			return
		}
	}
	p.Languages = append(langs, l)
}

func (p *CaregiverProfile) RemoveLanguage(lang string) {
	p.Languages = slices.DeleteFunc(slices.Clone(p.Languages), func(l Language) bool {
		return strings.EqualFold(l.Lang, lang)
	})
}

// SpeaksLine renders the languages as "English (Native), Sinhala (Fluent)".
func (p CaregiverProfile) SpeaksLine() string {
	parts := make([]string, 0, len(p.Languages))
	for _, l := range p.Languages {
		parts = append(parts, l.Lang+" ("+l.Level+")")
	}
	return strings.Join(parts, ", ")
}

// PublicCaregiver is a caregiver as seen in the careseeker directory.
type PublicCaregiver struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	AvatarURL     string     `json:"avatarUrl"`
	Tagline       string     `json:"tagline"`
	About         string     `json:"about,omitempty"`
	Languages     []Language `json:"languages,omitempty"`
	Years         string     `json:"years,omitempty"`
	ServiceRadius string     `json:"serviceRadius,omitempty"`
	Skills        []string   `json:"skills"`
}
