package domain

import (
	"maps"
	"math"
	"slices"
	"strings"
	"time"
)

// Feature catalogs offered by the feedback form.
var (
	FeaturesUseful = []string{
		"Customizable dashboards",
		"Real-time analytics",
		"Integration with existing systems",
	}
	FeaturesMissing = []string{
		"An offline mode for remote usage",
		"More detailed reporting options",
		"Enhanced mobile app functionality",
	}
)

// Feedback is one submitted feedback form.
type Feedback struct {
	ID             string    `json:"id,omitempty"`
	First          string    `json:"first"   validate:"required"`
	Last           string    `json:"last"    validate:"required"`
	Email          string    `json:"email"   validate:"required,email"`
	Role           string    `json:"role"`
	Notes          string    `json:"notes"`
	Quality        int       `json:"quality" validate:"min=1,max=5"`
	Support        int       `json:"support" validate:"min=1,max=5"`
	Useful         []string  `json:"useful"`
	Missing        []string  `json:"missing"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
	ComputedRating *float64  `json:"computedRating,omitempty"`
}

// NewFeedback returns the form defaults for u.
func NewFeedback(u User) Feedback {
	return Feedback{
		First:   u.FirstName,
		Last:    u.LastName,
		Email:   u.Email,
		Quality: 4,
		Support: 4,
		Useful:  []string{},
		Missing: []string{},
	}
}

func (f Feedback) Clone() Feedback {
	f.Useful = slices.Clone(f.Useful)
	f.Missing = slices.Clone(f.Missing)
	if f.ComputedRating != nil {
		r := *f.ComputedRating
		f.ComputedRating = &r
	}
	return f
}

func (f Feedback) Normalized() Feedback {
	f.First = strings.TrimSpace(f.First)
	f.Last = strings.TrimSpace(f.Last)
	f.Email = strings.TrimSpace(f.Email)
	f.Role = strings.TrimSpace(f.Role)
	f.Notes = strings.TrimSpace(f.Notes)
	f.Useful = sortedSet(f.Useful)
	f.Missing = sortedSet(f.Missing)
	return f
}

// Equal compares the editable fields; id, timestamps and the server rating
// are not user input.
func (f Feedback) Equal(o Feedback) bool {
	a, b := f.Normalized(), o.Normalized()
	return a.First == b.First &&
		a.Last == b.Last &&
		a.Email == b.Email &&
		a.Role == b.Role &&
		a.Notes == b.Notes &&
		a.Quality == b.Quality &&
		a.Support == b.Support &&
		slices.Equal(a.Useful, b.Useful) &&
		slices.Equal(a.Missing, b.Missing)
}

// ToggleUseful flips membership of feature in the useful set.
func (f *Feedback) ToggleUseful(feature string) { f.Useful = toggle(f.Useful, feature) }

// ToggleMissing flips membership of feature in the missing set.
func (f *Feedback) ToggleMissing(feature string) { f.Missing = toggle(f.Missing, feature) }

func toggle(set []string, v string) []string {
	if i := slices.Index(set, v); i >= 0 {
		return slices.Delete(slices.Clone(set), i, i+1)
	}
	return append(slices.Clone(set), v)
}

// FullName is "first last", trimmed.
func (f Feedback) FullName() string {
	return strings.TrimSpace(f.First + " " + f.Last)
}

// Overall is the row's rating: the server-computed value when present,
// otherwise the mean of quality and support, or whichever one is set.
func (f Feedback) Overall() float64 {
	if f.ComputedRating != nil {
		return *f.ComputedRating
	}
	q, s := float64(f.Quality), float64(f.Support)
	switch {
	case q > 0 && s > 0:
		return (q + s) / 2
	case q > 0:
		return q
	}
	return s
}

// Stars buckets Overall into 1..5 (0 when unrated).
func (f Feedback) Stars() int {
	return int(math.Round(f.Overall()))
}

// Matches reports whether q (already lower-cased) occurs in any searchable field.
func (f Feedback) Matches(q string) bool {
	if q == "" {
		return true
	}
	for _, field := range []string{f.ID, f.Notes, f.Email, f.FullName(), f.Role} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// FeedbackSummary aggregates every feedback row.
type FeedbackSummary struct {
	Total    int                `json:"total"`
	ByStars  map[int]int        `json:"byStars"`
	Averages map[string]float64 `json:"averages"`
}

// NewFeedbackSummary returns a zeroed summary with every bucket present.
func NewFeedbackSummary() FeedbackSummary {
	return FeedbackSummary{
		ByStars:  map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		Averages: map[string]float64{"quality": 0, "support": 0},
	}
}

func (s FeedbackSummary) Clone() FeedbackSummary {
	s.ByStars = maps.Clone(s.ByStars)
	s.Averages = maps.Clone(s.Averages)
	return s
}

// Without returns the summary adjusted for the removal of f. Averages are left
// as reported by the backend until the next refresh.
func (s FeedbackSummary) Without(f Feedback) FeedbackSummary {
	out := s.Clone()
	out.Total = max(0, s.Total-1)
	if out.ByStars == nil {
		out.ByStars = make(map[int]int)
	}
	if star := f.Stars(); star >= 1 && star <= 5 {
		out.ByStars[star] = max(0, out.ByStars[star]-1)
	}
	return out
}

// Percent is the share of rows in the star bucket, 0..100.
func (s FeedbackSummary) Percent(star int) float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.ByStars[star]) / float64(s.Total) * 100
}
