package domain

import (
	"net/url"
	"slices"
	"strings"
)

// CareTypes is the catalog a careseeker picks from.
var CareTypes = []string{"Elderly Care", "Patient Care", "Child Care", "Pet Care"}

// Genders offered by the profile form. Empty means not selected.
var Genders = []string{"Female", "Male", "Non-binary", "Prefer not to say"}

// KnownCareType reports whether c is in the catalog.
func KnownCareType(c string) bool {
	return slices.Contains(CareTypes, c)
}

// CareseekerProfile is the careseeker's own editable profile.
type CareseekerProfile struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	AvatarURL string   `json:"avatarUrl"`
	Location  string   `json:"location"`
	Gender    string   `json:"gender"`
	DOB       string   `json:"dob"`
	CareTypes []string `json:"careTypes"`
}

// DefaultCareseekerProfile seeds an editable profile from the session user
// when the backend has no record (or could not be reached).
func DefaultCareseekerProfile(u User) CareseekerProfile {
	return CareseekerProfile{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		AvatarURL: FallbackAvatar(u.Email),
		CareTypes: []string{},
	}
}

// FallbackAvatar returns a generated avatar URL seeded by email.
func FallbackAvatar(email string) string {
	seed := email
	if seed == "" {
		seed = "user"
	}
	return "https://api.dicebear.com/8.0/thumbs/svg?seed=" + url.QueryEscape(seed)
}

func (p CareseekerProfile) Clone() CareseekerProfile {
	p.CareTypes = slices.Clone(p.CareTypes)
	return p
}

// Normalized trims free-text fields and sorts the care type set.
func (p CareseekerProfile) Normalized() CareseekerProfile {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Location = strings.TrimSpace(p.Location)
	p.CareTypes = sortedSet(p.CareTypes)
	return p
}

// Equal compares the normalized forms. Email is identity data and not editable,
// so it does not take part in the comparison.
func (p CareseekerProfile) Equal(o CareseekerProfile) bool {
	a, b := p.Normalized(), o.Normalized()
	return a.FirstName == b.FirstName &&
		a.LastName == b.LastName &&
		a.Phone == b.Phone &&
		a.AvatarURL == b.AvatarURL &&
		a.Location == b.Location &&
		a.Gender == b.Gender &&
		a.DOB == b.DOB &&
		slices.Equal(a.CareTypes, b.CareTypes)
}

// ToggleCareType adds c when absent and removes it when present.
func (p *CareseekerProfile) ToggleCareType(c string) {
	if i := slices.Index(p.CareTypes, c); i >= 0 {
		p.CareTypes = slices.Delete(slices.Clone(p.CareTypes), i, i+1)
		return
	}
	p.CareTypes = append(slices.Clone(p.CareTypes), c)
}

// sortedSet returns a sorted copy of set; nil becomes empty so that a missing
// list and an empty one compare equal.
func sortedSet(set []string) []string {
	out := make([]string, len(set))
	copy(out, set)
	slices.Sort(out)
	return out
}
